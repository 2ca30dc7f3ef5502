package hueble

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/flip-dots/hueble-go/attr"
)

// Control operations validate before any I/O, ensure readiness, write
// through the retry executor and, when Config.PollWritesState is set, read
// the attribute back so the cache reflects the new value even if the light
// never sends a notification. Setting attributes is allowed while the
// light is off; values take effect without toggling power.

// SetPower turns the light on or off.
func (l *Light) SetPower(ctx context.Context, on bool) error {
	return l.setAttr(ctx, attr.Power, on)
}

// SetBrightness sets the brightness. The wire value is clamped to the
// light's accepted 1-254 range.
func (l *Light) SetBrightness(ctx context.Context, brightness uint8) error {
	return l.setAttr(ctx, attr.Brightness, brightness)
}

// SetColourTemp sets the colour temperature in mireds, 153-500.
func (l *Light) SetColourTemp(ctx context.Context, mireds uint16) error {
	d := attr.Lookup(attr.ColourTemp)
	if int(mireds) < d.Min || int(mireds) > d.Max {
		return &ValidationError{Kind: attr.ColourTemp, Value: mireds, Min: d.Min, Max: d.Max}
	}
	return l.setAttr(ctx, attr.ColourTemp, mireds)
}

// SetColourXY sets the colour in CIE xy coordinates, each in [0.0, 1.0].
func (l *Light) SetColourXY(ctx context.Context, xy attr.XY) error {
	if xy.X < 0 || xy.X > 1 || xy.Y < 0 || xy.Y > 1 {
		return &ValidationError{Kind: attr.ColourXY, Value: xy, Min: 0, Max: 1}
	}
	return l.setAttr(ctx, attr.ColourXY, xy)
}

// SetLightName renames the light as shown in the Hue app.
func (l *Light) SetLightName(ctx context.Context, name string) error {
	if name == "" {
		return &ValidationError{Kind: attr.Name, Value: name, Min: 1, Max: 0}
	}
	return l.setAttr(ctx, attr.Name, name)
}

func (l *Light) setAttr(ctx context.Context, k attr.Kind, value interface{}) error {
	if l.closed.Load() {
		return ErrClosed
	}
	// Known-unsupported attributes are rejected with zero transport calls.
	if l.cache.support(k) == Unsupported {
		return unsupportedError(k)
	}

	d := attr.Lookup(k)
	data, err := d.Encode(value)
	if err != nil {
		return &ValidationError{Kind: k, Value: value, Min: d.Min, Max: d.Max}
	}

	if err := l.EnsureReady(ctx); err != nil {
		return err
	}

	_, attempts, err := runAttempts(ctx, l.logger, "write "+k.String(), l.cfg.writePolicy(),
		func(c context.Context) (struct{}, error) {
			if !l.transport.Connected() {
				if err := l.EnsureReady(c); err != nil {
					return struct{}{}, err
				}
			}
			return struct{}{}, l.transport.Write(c, d.UUID, data)
		})
	if err != nil {
		return &ReadWriteError{Op: "write", Kind: k, Attempts: attempts, Err: err}
	}

	l.logger.WithFields(logrus.Fields{
		"attribute": k.String(),
		"value":     value,
	}).Debug("Wrote attribute")

	if l.cfg.PollWritesState {
		changed, err := l.pollValue(ctx, k)
		if err != nil {
			// The write itself succeeded; a failed read-back only means
			// the cache lags until the next poll or notification.
			l.logger.WithFields(logrus.Fields{
				"attribute": k.String(),
				"error":     err,
			}).Warn("Post-write read-back failed")
			return nil
		}
		if changed {
			l.events.record(ReasonWriteBack, k.String())
			l.callbacks.dispatch(l, l.logger)
		}
	}
	return nil
}
