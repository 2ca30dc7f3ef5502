package hueble

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flip-dots/hueble-go/attr"
)

func TestCacheDefaultsBeforeFirstObservation(t *testing.T) {
	c := newStateCache()

	assert.Equal(t, SupportUnknown, c.support(attr.Power))
	assert.Equal(t, false, c.value(attr.Power))
	assert.Equal(t, uint8(0), c.value(attr.Brightness))
	assert.Equal(t, "Unknown", c.value(attr.Name))
	assert.Equal(t, attr.XY{}, c.value(attr.ColourXY))
}

func TestCacheStoreRequiresSupport(t *testing.T) {
	c := newStateCache()

	assert.False(t, c.store(attr.Power, true), "values are not cached before support is known")
	assert.Equal(t, false, c.value(attr.Power))

	c.setSupport(attr.Power, Supported)
	assert.True(t, c.store(attr.Power, true))
	assert.Equal(t, true, c.value(attr.Power))
}

func TestCacheStoreDetectsChange(t *testing.T) {
	c := newStateCache()
	c.setSupport(attr.Brightness, Supported)

	assert.True(t, c.store(attr.Brightness, uint8(10)))
	assert.False(t, c.store(attr.Brightness, uint8(10)), "identical value is a no-op")
	assert.True(t, c.store(attr.Brightness, uint8(20)))
}

func TestCacheComparesDomainValues(t *testing.T) {
	c := newStateCache()
	c.setSupport(attr.ColourXY, Supported)

	xy := attr.XY{X: 0.5, Y: 0.25}
	assert.True(t, c.store(attr.ColourXY, xy))
	assert.False(t, c.store(attr.ColourXY, attr.XY{X: 0.5, Y: 0.25}))
}

func TestCacheUnsupportedClearsValue(t *testing.T) {
	c := newStateCache()
	c.setSupport(attr.ColourTemp, Supported)
	c.store(attr.ColourTemp, uint16(300))

	c.setSupport(attr.ColourTemp, Unsupported)
	assert.Equal(t, Unsupported, c.support(attr.ColourTemp))
	assert.Equal(t, uint16(0), c.value(attr.ColourTemp), "falls back to the declared default")
	assert.False(t, c.store(attr.ColourTemp, uint16(400)))
}

func TestCacheSnapshot(t *testing.T) {
	c := newStateCache()
	c.setSupport(attr.Power, Supported)
	c.store(attr.Power, true)

	snap := c.snapshot()
	assert.Len(t, snap, len(attr.Kinds()))
	assert.Equal(t, Supported, snap[attr.Power].Support)
	assert.Equal(t, true, snap[attr.Power].Value)
	assert.Equal(t, SupportUnknown, snap[attr.Model].Support)
}
