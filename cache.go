package hueble

import (
	"sync"

	"github.com/flip-dots/hueble-go/attr"
)

// Support is the tri-state knowledge of whether the light exposes an
// attribute. It is deliberately distinct from "value present" so that
// "never asked" is not conflated with "asked, not there".
type Support int

const (
	SupportUnknown Support = iota
	Supported
	Unsupported
)

func (s Support) String() string {
	switch s {
	case Supported:
		return "supported"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// stateCache holds the last known value and support flag per attribute.
// The session is the single writer; accessors may be called from any
// goroutine. A value is only ever stored for a supported attribute.
type stateCache struct {
	mu      sync.RWMutex
	entries map[attr.Kind]*cacheEntry
}

type cacheEntry struct {
	support Support
	value   interface{} // nil until the first successful read/notification
}

func newStateCache() *stateCache {
	c := &stateCache{entries: make(map[attr.Kind]*cacheEntry, len(attr.Kinds()))}
	for _, k := range attr.Kinds() {
		c.entries[k] = &cacheEntry{support: SupportUnknown}
	}
	return c
}

func (c *stateCache) support(k attr.Kind) Support {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[k].support
}

// value returns the cached domain value, falling back to the codec's
// declared default while no value has been observed. Never fabricates a
// value for unsupported or unknown attributes.
func (c *stateCache) value(k attr.Kind) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e := c.entries[k]
	if e.support == Supported && e.value != nil {
		return e.value
	}
	return attr.Lookup(k).Default
}

// setSupport records the discovery verdict for one attribute. Discovery is
// authoritative: marking Unsupported clears any stale value.
func (c *stateCache) setSupport(k attr.Kind, s Support) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[k]
	e.support = s
	if s != Supported {
		e.value = nil
	}
}

// store writes a decoded value and reports whether the cached value
// changed. Equality is by decoded domain value, not raw bytes; identical
// values are a no-op so spurious callbacks do not fire. Values for
// attributes not marked Supported are dropped.
func (c *stateCache) store(k attr.Kind, v interface{}) (changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[k]
	if e.support != Supported {
		return false
	}
	if e.value != nil && e.value == v {
		return false
	}
	e.value = v
	return true
}

// snapshot returns a copy of all entries, for logging and the CLI.
func (c *stateCache) snapshot() map[attr.Kind]struct {
	Support Support
	Value   interface{}
} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[attr.Kind]struct {
		Support Support
		Value   interface{}
	}, len(c.entries))
	for k, e := range c.entries {
		out[k] = struct {
			Support Support
			Value   interface{}
		}{e.support, e.value}
	}
	return out
}
