package hueble_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hueble "github.com/flip-dots/hueble-go"
	"github.com/flip-dots/hueble-go/attr"
	"github.com/flip-dots/hueble-go/internal/testutils"
)

func TestSetPowerRoundTrip(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)

	require.NoError(t, light.SetPower(context.Background(), false))
	assert.False(t, light.PowerState())

	require.NoError(t, light.SetPower(context.Background(), true))
	assert.True(t, light.PowerState())
}

func TestSetBrightnessWriteBackUpdatesCache(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)

	var reasons []hueble.EventReason
	require.NoError(t, light.OnStateChanged("test", func(l *hueble.Light) {
		for _, ev := range l.Events() {
			reasons = append(reasons, ev.Reason)
		}
	}))

	// The fake never notifies on writes; the cache must still pick up the
	// new value via the post-write read-back.
	require.NoError(t, light.SetBrightness(context.Background(), 200))
	assert.Equal(t, uint8(200), light.Brightness())
	assert.Contains(t, reasons, hueble.ReasonWriteBack)
}

func TestSetWithoutWriteBackLeavesCacheStale(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	cfg := fastConfig()
	cfg.PollWritesState = false
	light := hueble.New(testAddress, transport, cfg, testutils.NewTestLogger())
	t.Cleanup(func() { _ = light.Close() })

	require.NoError(t, light.SetBrightness(context.Background(), 200))
	assert.Equal(t, uint8(0), light.Brightness(), "no read-back, no notification, no cache update")
	assert.Equal(t, 0, transport.ReadCalls)
}

func TestValidationRunsBeforeIO(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)

	cases := []struct {
		name string
		op   func() error
	}{
		{"temp below range", func() error { return light.SetColourTemp(context.Background(), 100) }},
		{"temp above range", func() error { return light.SetColourTemp(context.Background(), 600) }},
		{"xy out of range", func() error { return light.SetColourXY(context.Background(), attr.XY{X: 1.5, Y: 0.5}) }},
		{"xy negative", func() error { return light.SetColourXY(context.Background(), attr.XY{X: -0.1, Y: 0.5}) }},
		{"empty name", func() error { return light.SetLightName(context.Background(), "") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			var valErr *hueble.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, 0, transport.TransportCalls(), "rejected values must cause zero transport calls")
		})
	}
}

func TestSetColourTempBounds(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)

	require.NoError(t, light.SetColourTemp(context.Background(), uint16(attr.MinMireds)))
	require.NoError(t, light.SetColourTemp(context.Background(), uint16(attr.MaxMireds)))
	assert.Equal(t, uint16(attr.MaxMireds), light.ColourTemp())
}

func TestSetUnsupportedAttributeNeedsNoIO(t *testing.T) {
	transport := testutils.NewHueLightTransport().WithoutAttribute(attr.UUIDColourXY)
	light := newTestLight(t, transport)
	require.NoError(t, light.EnsureReady(context.Background()))

	calls := transport.TransportCalls()
	err := light.SetColourXY(context.Background(), attr.XY{X: 0.5, Y: 0.5})
	assert.ErrorIs(t, err, hueble.ErrUnsupported)
	assert.Equal(t, calls, transport.TransportCalls())
}

func TestSetColourXYRoundTrip(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)

	want := attr.XY{X: 0.675, Y: 0.322}
	require.NoError(t, light.SetColourXY(context.Background(), want))

	got := light.ColourXY()
	assert.InDelta(t, want.X, got.X, 1e-4)
	assert.InDelta(t, want.Y, got.Y, 1e-4)
}

func TestSetLightName(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)

	require.NoError(t, light.SetLightName(context.Background(), "Reading lamp"))
	assert.Equal(t, "Reading lamp", light.NameInApp())
}

func TestWriteRetriesThenFails(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)
	require.NoError(t, light.EnsureReady(context.Background()))

	transport.FailWrites(attr.UUIDPower, 1)
	require.NoError(t, light.SetPower(context.Background(), true), "one transient failure fits the budget")

	transport.FailWrites(attr.UUIDPower, 100)
	err := light.SetPower(context.Background(), false)
	var rwErr *hueble.ReadWriteError
	require.ErrorAs(t, err, &rwErr)
	assert.Equal(t, "write", rwErr.Op)
	assert.Equal(t, attr.Power, rwErr.Kind)
	assert.Equal(t, 2, rwErr.Attempts)
}

func TestWriteSucceedsDespiteReadBackFailure(t *testing.T) {
	transport := testutils.NewHueLightTransport()
	light := newTestLight(t, transport)
	require.NoError(t, light.EnsureReady(context.Background()))

	transport.FailReads(attr.UUIDBrightness, 100)
	require.NoError(t, light.SetBrightness(context.Background(), 42),
		"a failed read-back must not fail the write")
}
