package hueble

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/flip-dots/hueble-go/attr"
)

// Poll methods bypass the cache on the way in: they issue a real read,
// write the decoded result through the cache and report whether the cached
// value changed. The new value itself is read from the accessors.

// PollPower reads the power state from the light.
func (l *Light) PollPower(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.Power)
}

// PollBrightness reads the brightness from the light.
func (l *Light) PollBrightness(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.Brightness)
}

// PollColourTemp reads the colour temperature from the light.
func (l *Light) PollColourTemp(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.ColourTemp)
}

// PollColourXY reads the XY colour from the light.
func (l *Light) PollColourXY(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.ColourXY)
}

// PollName reads the light's name as shown in the Hue app.
func (l *Light) PollName(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.Name)
}

// PollManufacturer reads the manufacturer string.
func (l *Light) PollManufacturer(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.Manufacturer)
}

// PollModel reads the model string.
func (l *Light) PollModel(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.Model)
}

// PollFirmware reads the firmware revision.
func (l *Light) PollFirmware(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.Firmware)
}

// PollZigbeeAddress reads the light's Zigbee address.
func (l *Light) PollZigbeeAddress(ctx context.Context) (bool, error) {
	return l.pollAttr(ctx, attr.ZigbeeAddress)
}

// pollAttr polls one attribute and dispatches callbacks if its cached
// value changed.
func (l *Light) pollAttr(ctx context.Context, k attr.Kind) (bool, error) {
	changed, err := l.pollValue(ctx, k)
	if err != nil {
		return false, err
	}
	if changed {
		l.events.record(ReasonPoll, k.String())
		l.callbacks.dispatch(l, l.logger)
	}
	return changed, nil
}

// pollValue reads, decodes and caches one attribute without dispatching.
func (l *Light) pollValue(ctx context.Context, k attr.Kind) (bool, error) {
	if l.closed.Load() {
		return false, ErrClosed
	}
	if l.cache.support(k) == Unsupported {
		return false, unsupportedError(k)
	}
	if err := l.EnsureReady(ctx); err != nil {
		return false, err
	}

	d := attr.Lookup(k)
	data, attempts, err := runAttempts(ctx, l.logger, "read "+k.String(), l.cfg.readPolicy(),
		func(c context.Context) ([]byte, error) {
			// A read may outlive the link; reconnect within the attempt
			// budget like any other transient failure.
			if !l.transport.Connected() {
				if err := l.EnsureReady(c); err != nil {
					return nil, err
				}
			}
			return l.transport.Read(c, d.UUID)
		})
	if err != nil {
		return false, &ReadWriteError{Op: "read", Kind: k, Attempts: attempts, Err: err}
	}

	value, err := d.Decode(data)
	if err != nil {
		return false, &ReadWriteError{Op: "read", Kind: k, Attempts: attempts, Err: err}
	}

	// A successful read is proof of support even if discovery was
	// inconclusive for this attribute.
	if l.cache.support(k) == SupportUnknown {
		l.cache.setSupport(k, Supported)
	}
	return l.cache.store(k, value), nil
}

// PollState polls every attribute not known to be unsupported and reports
// whether any cached value changed. A failure reading one attribute is
// recorded and that attribute skipped; only if every attempted read fails
// does the call return an error. Callbacks run at most once per call,
// outside the state-update lock.
func (l *Light) PollState(ctx context.Context) (bool, error) {
	if l.closed.Load() {
		return false, ErrClosed
	}

	pollCtx, cancel := context.WithTimeout(ctx, l.cfg.PollTimeout)
	defer cancel()

	if err := l.EnsureReady(pollCtx); err != nil {
		return false, err
	}

	l.pollMu.Lock()
	var (
		anyChanged bool
		attempted  int
		failures   []error
	)
	for _, k := range attr.Kinds() {
		if l.cache.support(k) == Unsupported {
			continue
		}
		attempted++
		changed, err := l.pollValue(pollCtx, k)
		if err != nil {
			l.logger.WithFields(logrus.Fields{
				"attribute": k.String(),
				"error":     err,
			}).Debug("Skipping attribute for this poll cycle")
			failures = append(failures, err)
			continue
		}
		if changed {
			anyChanged = true
		}
	}
	l.pollMu.Unlock()

	if attempted > 0 && len(failures) == attempted {
		return false, &ReadWriteError{Op: "poll", Attempts: attempted, Err: errors.Join(failures...)}
	}

	if anyChanged {
		l.events.record(ReasonPoll, "state")
		l.callbacks.dispatch(l, l.logger)
	}
	return anyChanged, nil
}
