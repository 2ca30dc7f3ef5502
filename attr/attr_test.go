package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCoversAllKinds(t *testing.T) {
	for _, k := range Kinds() {
		d := Lookup(k)
		assert.Equal(t, k, d.Kind)
		assert.NotEmpty(t, d.UUID, "kind %s must have a UUID", k)
		assert.NotNil(t, d.Decode, "kind %s must decode", k)
		assert.NotNil(t, d.Default, "kind %s must declare a default", k)
		if d.Writable {
			assert.NotNil(t, d.Encode, "writable kind %s must encode", k)
		}
	}
}

func TestByUUID(t *testing.T) {
	t.Run("dashed form", func(t *testing.T) {
		d, ok := ByUUID(UUIDPower)
		require.True(t, ok)
		assert.Equal(t, Power, d.Kind)
	})

	t.Run("normalized form", func(t *testing.T) {
		d, ok := ByUUID(NormalizeUUID(UUIDBrightness))
		require.True(t, ok)
		assert.Equal(t, Brightness, d.Kind)
	})

	t.Run("uppercase input", func(t *testing.T) {
		d, ok := ByUUID("932C32BD-0002-47A2-835A-A8D455B859DD")
		require.True(t, ok)
		assert.Equal(t, Power, d.Kind)
	})

	t.Run("unknown uuid", func(t *testing.T) {
		_, ok := ByUUID("00000000-0000-0000-0000-000000000000")
		assert.False(t, ok)
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "power", Power.String())
	assert.Equal(t, "colour_xy", ColourXY.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestSubscribableSet(t *testing.T) {
	subscribable := map[Kind]bool{Power: true, Brightness: true, ColourTemp: true, ColourXY: true}
	for _, k := range Kinds() {
		assert.Equal(t, subscribable[k], Lookup(k).Subscribable, "kind %s", k)
	}
}
