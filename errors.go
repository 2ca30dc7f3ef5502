package hueble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flip-dots/hueble-go/attr"
)

// LightError is the common family for every error the session raises.
// Callers can catch broadly with errors.As(err, new(hueble.LightError)) or
// match one of the concrete types below.
type LightError interface {
	error
	lightError()
}

// Sentinel errors shared across operations.
var (
	// ErrUnsupported is returned when an operation targets an attribute
	// the light's discovery marked as not present. No transport I/O is
	// performed in that case.
	ErrUnsupported = errors.New("attribute not supported by light")

	// ErrNotConnected classifies transport failures that mean the link
	// itself is gone. The retry executor does not retry on a dead link.
	ErrNotConnected = errors.New("not connected")

	// ErrClosed is returned for operations on a session after Close.
	ErrClosed = errors.New("session closed")
)

// ConnectionError reports a failure to establish or keep the link,
// including reconnection exhaustion.
type ConnectionError struct {
	Address  string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %q failed after %d attempt(s): %v", e.Address, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
func (e *ConnectionError) lightError()   {}

// InitialConnectionError reports that the first ever connection attempt for
// a session failed. It is distinct from ConnectionError because sessions
// that never connected successfully are not auto-reconnected.
type InitialConnectionError struct {
	Address  string
	Attempts int
	Err      error
}

func (e *InitialConnectionError) Error() string {
	return fmt.Sprintf("initial connection to %q failed after %d attempt(s): %v", e.Address, e.Attempts, e.Err)
}

func (e *InitialConnectionError) Unwrap() error { return e.Err }
func (e *InitialConnectionError) lightError()   {}

// PairingError reports that pairing could not be confirmed. Pairing is not
// auto-retried to avoid hammering a light that is not in pairing mode.
type PairingError struct {
	Address string
	Err     error
}

func (e *PairingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pairing with %q could not be confirmed", e.Address)
	}
	return fmt.Sprintf("pairing with %q failed: %v", e.Address, e.Err)
}

func (e *PairingError) Unwrap() error { return e.Err }
func (e *PairingError) lightError()   {}

// ReadWriteError reports attribute I/O that exhausted its retry budget, or
// a full-state poll in which every attempted attribute failed.
type ReadWriteError struct {
	Op string // "read", "write" or "poll"

	// Kind names the attribute for single-attribute operations. For a
	// full-state poll Attempts counts attributes attempted and Err joins
	// the per-attribute failures.
	Kind     attr.Kind
	Attempts int
	Err      error
}

func (e *ReadWriteError) Error() string {
	if e.Op == "poll" {
		return fmt.Sprintf("poll failed for all %d attribute(s): %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s of %s failed after %d attempt(s): %v", e.Op, e.Kind, e.Attempts, e.Err)
}

func (e *ReadWriteError) Unwrap() error { return e.Err }
func (e *ReadWriteError) lightError()   {}

// ServicesError reports failed or inconsistent attribute discovery.
type ServicesError struct {
	Address string
	Err     error
}

func (e *ServicesError) Error() string {
	return fmt.Sprintf("attribute discovery for %q failed: %v", e.Address, e.Err)
}

func (e *ServicesError) Unwrap() error { return e.Err }
func (e *ServicesError) lightError()   {}

// CallbackError wraps a panic raised by an application callback. It is
// logged and reported but never interrupts dispatch to later callbacks.
type CallbackError struct {
	ID  string
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("state-changed callback %q panicked: %v", e.ID, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
func (e *CallbackError) lightError()   {}

// ValidationError reports an out-of-range control value. It is raised
// before any transport I/O happens.
type ValidationError struct {
	Kind  attr.Kind
	Value interface{}
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("value %v out of range for %s (expected %d..%d)", e.Value, e.Kind, e.Min, e.Max)
}

func (e *ValidationError) lightError() {}

// unsupportedError tags ErrUnsupported with the attribute it refers to.
func unsupportedError(k attr.Kind) error {
	return fmt.Errorf("%s: %w", k, ErrUnsupported)
}

// isLinkDown reports whether err indicates the link itself dropped rather
// than a failure local to one operation. Link failures are handed straight
// to the reconnection policy instead of being retried.
func isLinkDown(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotConnected)
}

// NormalizeError maps known transport error strings to ErrNotConnected so
// link drops are classified consistently even if the underlying library
// changes its messages slightly.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not connected"),
		strings.Contains(msg, "connection canceled"),
		strings.Contains(msg, "connection closed"),
		strings.Contains(msg, "disconnected"):
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	default:
		return err
	}
}
