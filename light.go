package hueble

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flip-dots/hueble-go/attr"
)

// State is the session's position in the connection lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnectedUnpaired
	StatePairing
	StateConnectedPaired
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnectedUnpaired:
		return "connected_unpaired"
	case StatePairing:
		return "pairing"
	case StateConnectedPaired:
		return "connected_paired"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "invalid"
	}
}

// Light is a session with one Hue BLE light. It owns the connection and
// pairing lifecycle, a cache of the light's last known state, and the
// registered state-changed callbacks. All methods are safe for concurrent
// use; operations on different Light instances are fully independent.
//
// A Light never connects on construction. The first control or poll call
// (or an explicit Connect) establishes and pairs the link.
type Light struct {
	address   string
	cfg       *Config
	transport Transport
	logger    *logrus.Entry

	// connSem serializes every connection, pairing and disconnection
	// transition so only one is in flight per session. A channel rather
	// than a mutex so waiters can honor their context.
	connSem chan struct{}

	// pollMu serializes full state updates.
	pollMu sync.Mutex

	state            atomic.Int32
	everPaired       atomic.Bool
	expectDisconnect atomic.Bool
	closed           atomic.Bool

	cache     *stateCache
	callbacks *callbackRegistry
	events    *eventLog

	reconnectMu     sync.Mutex
	reconnectCancel context.CancelFunc
	reconnectDone   chan struct{}
}

// New constructs a session for the light at the given address. cfg may be
// nil for DefaultConfig, logger may be nil for a default logger. The
// transport carries all radio I/O; use goble.New for the production
// implementation.
func New(address string, transport Transport, cfg *Config, logger *logrus.Logger) *Light {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	l := &Light{
		address:   address,
		cfg:       cfg,
		transport: transport,
		logger:    logger.WithField("light", address),
		connSem:   make(chan struct{}, 1),
		cache:     newStateCache(),
		callbacks: newCallbackRegistry(),
		events:    newEventLog(cfg.EventBufferSize),
	}
	transport.SetDisconnectHandler(l.handleUnsolicitedDisconnect)

	l.logger.Debug("Initialized light session")
	return l
}

// Address returns the peripheral address this session was built for.
func (l *Light) Address() string { return l.address }

// State returns the current lifecycle state.
func (l *Light) State() State { return State(l.state.Load()) }

func (l *Light) setState(s State) {
	old := State(l.state.Swap(int32(s)))
	if old != s {
		l.logger.WithFields(logrus.Fields{
			"from": old,
			"to":   s,
		}).Debug("Session state changed")
	}
}

// Connected reports whether the link is up. It does not imply commands can
// be sent; see Available.
func (l *Light) Connected() bool {
	return l.transport.Connected()
}

// Available reports whether the session is connected and paired, i.e. able
// to exchange authenticated attribute traffic.
func (l *Light) Available() bool {
	return l.State() == StateConnectedPaired && l.transport.Connected()
}

// EverConnected reports whether this session has reached the paired state
// at least once in its lifetime. Sessions that never have are not
// auto-reconnected after a link loss.
func (l *Light) EverConnected() bool { return l.everPaired.Load() }

// OnStateChanged registers a callback under an identity. Callbacks run in
// registration order. Registering the same identity twice is an error.
func (l *Light) OnStateChanged(id string, fn Callback) error {
	return l.callbacks.add(id, fn)
}

// RemoveCallback removes a callback by identity. Removing an identity that
// was never registered is an error.
func (l *Light) RemoveCallback(id string) error {
	return l.callbacks.remove(id)
}

// Events drains the bounded state-event history, oldest first.
func (l *Light) Events() []StateEvent {
	return l.events.drain()
}

// Connect establishes the link, pairs if necessary, and subscribes to
// notifications. Idempotent: returns immediately with no transport I/O if
// the session is already connected and paired.
func (l *Light) Connect(ctx context.Context) error {
	return l.EnsureReady(ctx)
}

// EnsureReady returns once the session is connected and paired, or with a
// typed connection, discovery or pairing error. Concurrent calls serialize;
// only one connection attempt is ever in flight per session.
func (l *Light) EnsureReady(ctx context.Context) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if l.Available() {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.cfg.ConnectWaitTimeout)
	defer cancel()
	if err := l.acquireConn(waitCtx); err != nil {
		return &ConnectionError{Address: l.address, Attempts: 0, Err: err}
	}
	defer l.releaseConn()

	// Another caller may have finished the job while we waited.
	if l.Available() {
		l.logger.Debug("Connected while waiting for connection lock")
		return nil
	}

	return l.connectLocked(ctx, StateDisconnected)
}

func (l *Light) acquireConn(ctx context.Context) error {
	select {
	case l.connSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Light) releaseConn() {
	<-l.connSem
}

// connectLocked runs the full connect -> discover -> pair -> subscribe
// sequence, settling in failState on failure so the reconnect loop can
// keep reporting StateReconnecting between attempts. Caller must hold the
// connection semaphore.
func (l *Light) connectLocked(ctx context.Context, failState State) error {
	l.expectDisconnect.Store(false)
	l.setState(StateConnecting)

	_, attempts, err := runAttempts(ctx, l.logger, "connect", l.cfg.connectPolicy(),
		func(c context.Context) (struct{}, error) {
			return struct{}{}, l.transport.Connect(c, l.address)
		})
	if err != nil {
		l.setState(failState)
		if !l.everPaired.Load() {
			return &InitialConnectionError{Address: l.address, Attempts: attempts, Err: err}
		}
		return &ConnectionError{Address: l.address, Attempts: attempts, Err: err}
	}
	l.setState(StateConnectedUnpaired)

	if err := l.discoverLocked(ctx); err != nil {
		l.teardownLocked(failState)
		return err
	}

	if err := l.pairLocked(ctx); err != nil {
		l.teardownLocked(failState)
		return err
	}

	if err := l.subscribeLocked(); err != nil {
		l.teardownLocked(failState)
		return err
	}

	l.setState(StateConnectedPaired)
	l.everPaired.Store(true)
	l.logger.Info("Connected and paired")
	return nil
}

// discoverLocked enumerates the peripheral's characteristics and records
// the support verdict per attribute. Runs once per successful connection
// and is treated as authoritative for that connection's lifetime.
func (l *Light) discoverLocked(ctx context.Context) error {
	discoverCtx, cancel := context.WithTimeout(ctx, l.cfg.DiscoverTimeout)
	defer cancel()

	uuids, err := l.transport.DiscoverCharacteristics(discoverCtx)
	if err != nil {
		return &ServicesError{Address: l.address, Err: err}
	}

	present := make(map[string]bool, len(uuids))
	for _, uuid := range uuids {
		present[attr.NormalizeUUID(uuid)] = true
	}

	for _, k := range attr.Kinds() {
		d := attr.Lookup(k)
		if present[attr.NormalizeUUID(d.UUID)] {
			l.cache.setSupport(k, Supported)
		} else {
			l.cache.setSupport(k, Unsupported)
			l.logger.WithField("attribute", k.String()).Debug("Attribute not offered by light")
		}
	}

	if l.cache.support(attr.Power) == Unsupported {
		l.logger.Warn("Light does not appear to support turning on and off")
	}
	return nil
}

// pairLocked pairs the link if the transport does not already report it
// paired, waits the settle delay, then verifies. Pairing failure tears the
// link down and is not auto-retried: a light that is not in pairing mode
// should not be hammered.
func (l *Light) pairLocked(ctx context.Context) error {
	if l.transport.PairStatus() == PairStatusPaired {
		l.logger.Debug("Link already paired")
		return nil
	}

	l.setState(StatePairing)
	l.logger.Debug("Requesting pairing")

	if err := l.transport.Pair(ctx); err != nil {
		return &PairingError{Address: l.address, Err: err}
	}

	select {
	case <-ctx.Done():
		return &PairingError{Address: l.address, Err: ctx.Err()}
	case <-time.After(l.cfg.PairDelay):
	}

	if !l.transport.Connected() {
		return &PairingError{Address: l.address, Err: ErrNotConnected}
	}
	if l.transport.PairStatus() == PairStatusNotPaired {
		return &PairingError{Address: l.address}
	}
	// Unknown pairing status means the platform cannot tell; assume the
	// pairing took and let the first authenticated read prove it.
	return nil
}

// subscribeLocked registers notification handlers for every supported
// subscribable attribute. Must run after discovery on each (re)connection
// since subscriptions die with the link.
func (l *Light) subscribeLocked() error {
	for _, k := range attr.Kinds() {
		d := attr.Lookup(k)
		if !d.Subscribable || l.cache.support(k) != Supported {
			continue
		}
		if err := l.transport.Subscribe(d.UUID, l.notificationHandler(k)); err != nil {
			return &ServicesError{Address: l.address, Err: fmt.Errorf("subscribe %s: %w", k, err)}
		}
		l.logger.WithField("attribute", k.String()).Debug("Subscribed to notifications")
	}
	return nil
}

// notificationHandler decodes pushed values, updates the cache and runs
// callbacks when the decoded value actually changed.
func (l *Light) notificationHandler(k attr.Kind) func([]byte) {
	d := attr.Lookup(k)
	return func(data []byte) {
		value, err := d.Decode(data)
		if err != nil {
			l.logger.WithFields(logrus.Fields{
				"attribute": k.String(),
				"error":     err,
			}).Warn("Dropping malformed notification")
			return
		}
		if l.cache.store(k, value) {
			l.logger.WithFields(logrus.Fields{
				"attribute": k.String(),
				"value":     value,
			}).Debug("Notification changed cached state")
			l.events.record(ReasonNotification, k.String())
			l.callbacks.dispatch(l, l.logger)
		}
	}
}

// teardownLocked drops the link after a failed connect stage. Expected
// disconnect: no callbacks, no reconnect.
func (l *Light) teardownLocked(failState State) {
	l.expectDisconnect.Store(true)
	if err := l.transport.Disconnect(); err != nil {
		l.logger.WithField("error", err).Warn("Error tearing down link")
	}
	l.setState(failState)
}

// Disconnect closes the link on application request. It always succeeds
// locally: the session ends up Disconnected whatever the transport says,
// state-changed callbacks are not run, and any background reconnection loop
// is halted before it returns.
func (l *Light) Disconnect() error {
	l.expectDisconnect.Store(true)
	l.stopReconnectLoop()

	l.connSem <- struct{}{}
	defer l.releaseConn()

	err := l.transport.Disconnect()
	if err != nil {
		l.logger.WithField("error", err).Warn("Transport disconnect reported an error")
	}
	l.setState(StateDisconnected)
	l.logger.Info("Disconnected on request")
	return err
}

// Close releases the session. The link is disconnected best-effort and all
// subsequent operations fail with ErrClosed.
func (l *Light) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.Disconnect()
}

// handleUnsolicitedDisconnect is invoked by the transport when the link
// drops without an application request. Previously paired sessions start
// the background reconnection loop; sessions that never paired stay down,
// since retrying against a light that never accepted us only drains its
// radio and ours.
func (l *Light) handleUnsolicitedDisconnect() {
	if l.closed.Load() || l.expectDisconnect.Load() {
		l.logger.Debug("Expected disconnect")
		return
	}

	l.logger.Warn("Unexpected disconnect")
	l.setState(StateDisconnected)
	l.events.record(ReasonDisconnect, "")
	l.callbacks.dispatch(l, l.logger)

	if !l.everPaired.Load() {
		l.logger.Debug("Session never paired, not reconnecting")
		return
	}
	l.startReconnectLoop()
}

func (l *Light) startReconnectLoop() {
	l.reconnectMu.Lock()
	defer l.reconnectMu.Unlock()

	// A disconnect callback may already have repaired the session, e.g. by
	// calling EnsureReady itself.
	if l.Available() {
		l.logger.Debug("Session already repaired, not reconnecting")
		return
	}

	if l.reconnectDone != nil {
		select {
		case <-l.reconnectDone:
			// Previous loop finished, start a fresh one.
		default:
			l.logger.Debug("Reconnect loop already running")
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.reconnectCancel = cancel
	l.reconnectDone = done
	l.setState(StateReconnecting)

	go l.reconnectLoop(ctx, done)
}

// stopReconnectLoop synchronously halts an in-progress reconnection loop.
func (l *Light) stopReconnectLoop() {
	l.reconnectMu.Lock()
	cancel := l.reconnectCancel
	done := l.reconnectDone
	l.reconnectMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// reconnectLoop retries the connect sequence in the background. Its errors
// are never raised into caller code; the terminal failure is surfaced via
// the log, the event history and a callback dispatch.
func (l *Light) reconnectLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for attempt := 1; attempt <= l.cfg.ReconnectAttempts; attempt++ {
		if err := l.acquireConn(ctx); err != nil {
			return
		}
		// A foreground call may have repaired the session while the loop
		// waited for the connection lock. Connecting over the live link
		// would fail and wrongly mark the session disconnected.
		if l.Available() {
			l.releaseConn()
			l.logger.Debug("Session repaired while reconnect loop waited")
			return
		}
		err := l.connectLocked(ctx, StateReconnecting)
		l.releaseConn()

		if err == nil {
			l.logger.WithField("attempt", attempt).Info("Reconnected")
			l.events.record(ReasonReconnect, "")
			l.callbacks.dispatch(l, l.logger)
			return
		}

		l.logger.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": l.cfg.ReconnectAttempts,
			"error":        err,
		}).Warn("Reconnect attempt failed")

		if attempt < l.cfg.ReconnectAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.cfg.ReconnectDelay):
			}
		}
	}

	l.setState(StateDisconnected)
	connErr := &ConnectionError{Address: l.address, Attempts: l.cfg.ReconnectAttempts, Err: ErrNotConnected}
	l.logger.WithField("error", connErr).Error("Giving up on reconnection")
	l.events.record(ReasonGaveUp, "")
	l.callbacks.dispatch(l, l.logger)
}
