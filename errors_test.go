package hueble

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flip-dots/hueble-go/attr"
)

func TestErrorFamily(t *testing.T) {
	cases := []error{
		&ConnectionError{Address: "AA", Attempts: 3, Err: ErrNotConnected},
		&InitialConnectionError{Address: "AA", Attempts: 3, Err: ErrNotConnected},
		&PairingError{Address: "AA"},
		&ReadWriteError{Op: "read", Kind: attr.Power, Attempts: 2, Err: errors.New("boom")},
		&ServicesError{Address: "AA", Err: errors.New("boom")},
		&CallbackError{ID: "cb", Err: errors.New("boom")},
		&ValidationError{Kind: attr.ColourTemp, Value: 100, Min: attr.MinMireds, Max: attr.MaxMireds},
	}
	for _, err := range cases {
		t.Run(fmt.Sprintf("%T", err), func(t *testing.T) {
			var family LightError
			assert.ErrorAs(t, err, &family)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	inner := errors.New("radio fell over")
	err := &ConnectionError{Address: "AA", Attempts: 1, Err: inner}
	assert.ErrorIs(t, err, inner)

	rw := &ReadWriteError{Op: "write", Kind: attr.Brightness, Attempts: 3, Err: ErrNotConnected}
	assert.ErrorIs(t, rw, ErrNotConnected)
}

func TestNormalizeError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		linkDown bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("att timeout"), false},
		{"not connected", errors.New("ble: not connected"), true},
		{"disconnected", errors.New("peripheral Disconnected mid-read"), true},
		{"connection canceled", errors.New("connection canceled by remote"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"already classified", fmt.Errorf("read: %w", ErrNotConnected), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeError(tc.err)
			assert.Equal(t, tc.linkDown, isLinkDown(got))
			if tc.err == nil {
				assert.NoError(t, got)
			}
		})
	}
}

func TestUnsupportedErrorMatchesSentinel(t *testing.T) {
	err := unsupportedError(attr.ColourXY)
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "colour_xy")
}
