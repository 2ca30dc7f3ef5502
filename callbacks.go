package hueble

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Callback receives the session whose state changed. Callbacks run
// synchronously, in registration order, on whichever goroutine triggered
// the change (a poll, a notification, or the reconnect loop). They fire for
// changes regardless of origin: a Zigbee switch or the Hue app toggling the
// light triggers them just like a local Set call does.
type Callback func(light *Light)

// callbackRegistry keeps callbacks in registration order with O(1) removal
// by identity.
type callbackRegistry struct {
	mu sync.Mutex
	m  *orderedmap.OrderedMap[string, Callback]
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{m: orderedmap.New[string, Callback]()}
}

func (r *callbackRegistry) add(id string, fn Callback) error {
	if fn == nil {
		return fmt.Errorf("callback %q is nil", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.m.Get(id); exists {
		return fmt.Errorf("callback %q already registered", id)
	}
	r.m.Set(id, fn)
	return nil
}

func (r *callbackRegistry) remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, present := r.m.Delete(id); !present {
		return fmt.Errorf("callback %q is not registered", id)
	}
	return nil
}

func (r *callbackRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m.Len()
}

// dispatch invokes every registered callback in order. A panic inside one
// callback is wrapped as a CallbackError and logged, and never prevents the
// remaining callbacks from running.
func (r *callbackRegistry) dispatch(l *Light, logger *logrus.Entry) {
	type entry struct {
		id string
		fn Callback
	}

	r.mu.Lock()
	snapshot := make([]entry, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		snapshot = append(snapshot, entry{pair.Key, pair.Value})
	}
	r.mu.Unlock()

	for _, e := range snapshot {
		invokeCallback(l, e.id, e.fn, logger)
	}
}

func invokeCallback(l *Light, id string, fn Callback, logger *logrus.Entry) {
	defer func() {
		if rec := recover(); rec != nil {
			cbErr := &CallbackError{ID: id, Err: fmt.Errorf("%v", rec)}
			logger.WithFields(logrus.Fields{
				"callback": id,
				"error":    cbErr,
			}).Error("State-changed callback panicked")
		}
	}()
	fn(l)
}
