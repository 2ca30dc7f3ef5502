package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerCodec(t *testing.T) {
	d := Lookup(Power)

	v, err := d.Decode([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = d.Decode([]byte{0x00})
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = d.Decode(nil)
	assert.Error(t, err)

	data, err := d.Encode(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, data)

	data, err = d.Encode(false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, data)

	_, err = d.Encode("on")
	assert.Error(t, err)
}

func TestBrightnessCodec(t *testing.T) {
	d := Lookup(Brightness)

	v, err := d.Decode([]byte{0x7F})
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7F), v)

	t.Run("encode clamps to light's accepted range", func(t *testing.T) {
		data, err := d.Encode(uint8(0))
		require.NoError(t, err)
		assert.Equal(t, []byte{1}, data)

		data, err = d.Encode(uint8(255))
		require.NoError(t, err)
		assert.Equal(t, []byte{254}, data)

		data, err = d.Encode(uint8(128))
		require.NoError(t, err)
		assert.Equal(t, []byte{128}, data)
	})
}

func TestColourTempCodec(t *testing.T) {
	d := Lookup(ColourTemp)

	v, err := d.Decode([]byte{0xF4, 0x01})
	require.NoError(t, err)
	assert.Equal(t, uint16(500), v)

	// 0xFFFF marks XY colour mode; still decodes.
	v, err = d.Decode([]byte{0xFF, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), v)

	_, err = d.Decode([]byte{0xF4})
	assert.Error(t, err)

	data, err := d.Encode(uint16(153))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x99, 0x00}, data)
}

func TestColourXYCodec(t *testing.T) {
	d := Lookup(ColourXY)

	v, err := d.Decode([]byte{0xFF, 0xFF, 0x00, 0x00})
	require.NoError(t, err)
	xy := v.(XY)
	assert.InDelta(t, 1.0, xy.X, 1e-9)
	assert.InDelta(t, 0.0, xy.Y, 1e-9)

	_, err = d.Decode([]byte{0x01, 0x02})
	assert.Error(t, err)

	t.Run("round trip", func(t *testing.T) {
		data, err := d.Encode(XY{X: 0.5, Y: 0.25})
		require.NoError(t, err)
		back, err := d.Decode(data)
		require.NoError(t, err)
		got := back.(XY)
		assert.InDelta(t, 0.5, got.X, 1e-4)
		assert.InDelta(t, 0.25, got.Y, 1e-4)
	})

	t.Run("rejects out of range coordinates", func(t *testing.T) {
		_, err := d.Encode(XY{X: 1.5, Y: 0})
		assert.Error(t, err)
	})
}

func TestStringCodec(t *testing.T) {
	d := Lookup(Name)

	v, err := d.Decode([]byte("Bedside lamp"))
	require.NoError(t, err)
	assert.Equal(t, "Bedside lamp", v)

	t.Run("drops non-ascii bytes", func(t *testing.T) {
		v, err := d.Decode([]byte{'H', 0xC3, 0xA9, 'i'})
		require.NoError(t, err)
		assert.Equal(t, "Hi", v)
	})

	data, err := d.Encode("Desk")
	require.NoError(t, err)
	assert.Equal(t, []byte("Desk"), data)
}

func TestZigbeeAddressCodec(t *testing.T) {
	d := Lookup(ZigbeeAddress)

	v, err := d.Decode([]byte{0x00, 0x17, 0x88})
	require.NoError(t, err)
	assert.Equal(t, "00:17:88", v)

	_, err = d.Decode(nil)
	assert.Error(t, err)
}
