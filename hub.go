package hueble

import (
	"errors"
	"strings"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
)

// TransportFactory builds a fresh Transport for one peripheral. Each
// session owns exactly one physical link, so the Hub needs a new instance
// per light.
type TransportFactory func() Transport

// Hub is a concurrent registry of sessions keyed by peripheral address,
// for hosts that manage several lights. Sessions for different lights are
// fully independent; the Hub only deduplicates construction.
type Hub struct {
	lights  *hashmap.Map[string, *Light]
	cfg     *Config
	logger  *logrus.Logger
	factory TransportFactory
}

// NewHub creates a registry that builds sessions with the given config,
// logger and transport factory.
func NewHub(cfg *Config, logger *logrus.Logger, factory TransportFactory) *Hub {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		lights:  hashmap.New[string, *Light](),
		cfg:     cfg,
		logger:  logger,
		factory: factory,
	}
}

func normalizeAddress(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}

// Get returns the session for an address, if one exists.
func (h *Hub) Get(address string) (*Light, bool) {
	return h.lights.Get(normalizeAddress(address))
}

// GetOrCreate returns the session for an address, constructing it on first
// use. The new session is not connected; the first operation on it is.
func (h *Hub) GetOrCreate(address string) *Light {
	key := normalizeAddress(address)
	if light, ok := h.lights.Get(key); ok {
		return light
	}
	light := New(key, h.factory(), h.cfg, h.logger)
	if actual, loaded := h.lights.GetOrInsert(key, light); loaded {
		// Lost the race; discard ours before it ever connects.
		_ = light.Close()
		return actual
	}
	return light
}

// Lights returns all registered sessions.
func (h *Hub) Lights() []*Light {
	out := make([]*Light, 0, h.lights.Len())
	h.lights.Range(func(_ string, l *Light) bool {
		out = append(out, l)
		return true
	})
	return out
}

// Len reports the number of registered sessions.
func (h *Hub) Len() int {
	return h.lights.Len()
}

// CloseAll closes every session and empties the registry.
func (h *Hub) CloseAll() error {
	var errs []error
	h.lights.Range(func(key string, l *Light) bool {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
		h.lights.Del(key)
		return true
	})
	return errors.Join(errs...)
}
