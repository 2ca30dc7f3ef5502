package hueble

import (
	"context"
)

// PairStatus is the transport's knowledge of the pairing state. Not every
// platform can tell whether the link is paired and trusted; those report
// PairStatusUnknown and the session assumes pairing succeeded.
type PairStatus int

const (
	PairStatusUnknown PairStatus = iota
	PairStatusPaired
	PairStatusNotPaired
)

func (s PairStatus) String() string {
	switch s {
	case PairStatusPaired:
		return "paired"
	case PairStatusNotPaired:
		return "not_paired"
	default:
		return "unknown"
	}
}

// Transport is the capability interface the session consumes for all radio
// I/O. One Transport instance manages a single physical link. The goble
// package provides the production implementation; tests inject fakes.
//
// All blocking calls honor their context; implementations must not block
// past cancellation. Read, Write and Subscribe address characteristics by
// UUID in either dashed or normalized form.
type Transport interface {
	// Connect establishes the link and performs whatever low-level setup
	// the platform needs. Calling Connect while connected is an error.
	Connect(ctx context.Context, address string) error

	// Disconnect tears the link down. Best effort; safe to call when
	// already disconnected.
	Disconnect() error

	// Connected reports whether the link is currently up.
	Connected() bool

	// Pair requests protocol-level pairing on the live link.
	Pair(ctx context.Context) error

	// PairStatus reports the platform's knowledge of the pairing state.
	PairStatus() PairStatus

	// DiscoverCharacteristics enumerates the characteristic UUIDs present
	// on the peripheral, in normalized form.
	DiscoverCharacteristics(ctx context.Context) ([]string, error)

	// Read returns the raw value of a characteristic.
	Read(ctx context.Context, uuid string) ([]byte, error)

	// Write writes a raw value to a characteristic, with response.
	Write(ctx context.Context, uuid string, data []byte) error

	// Subscribe registers fn for unsolicited value notifications of a
	// characteristic. Subscriptions die with the link and must be
	// re-established after a reconnect.
	Subscribe(uuid string, fn func(data []byte)) error

	// SetDisconnectHandler registers fn to be invoked once per unsolicited
	// link loss. Explicit Disconnect calls do not trigger it.
	SetDisconnectHandler(fn func())
}
