// Package goble implements the hueble.Transport capability over
// github.com/go-ble/ble. One Transport drives one physical link.
package goble

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	hueble "github.com/flip-dots/hueble-go"
	"github.com/flip-dots/hueble-go/attr"
	"github.com/flip-dots/hueble-go/internal/groutine"
)

// Transport is the production hueble.Transport. It is not safe to share
// between sessions; build one per Light (see NewLight and hueble.Hub).
type Transport struct {
	logger *logrus.Logger

	mu         sync.RWMutex
	client     ble.Client
	chars      map[string]*ble.Characteristic // normalized UUID -> live handle
	monitorRef context.CancelFunc

	connected    atomic.Bool
	pairStatus   atomic.Int32
	onDisconnect func()
}

// New returns a disconnected Transport. logger may be nil.
func New(logger *logrus.Logger) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	return &Transport{logger: logger}
}

// NewLight builds a session for the light at the given address backed by a
// fresh go-ble transport.
func NewLight(address string, cfg *hueble.Config, logger *logrus.Logger) *hueble.Light {
	return hueble.New(address, New(logger), cfg, logger)
}

// SetDisconnectHandler registers the unsolicited-disconnect hook. Must be
// called before Connect; the session does this at construction.
func (t *Transport) SetDisconnectHandler(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDisconnect = fn
}

// Connected reports whether the link is up.
func (t *Transport) Connected() bool {
	return t.connected.Load()
}

// Connect creates the platform BLE device and dials the peripheral. The
// link is monitored for unsolicited drops via the client's Disconnected
// channel where the platform provides one.
func (t *Transport) Connect(ctx context.Context, address string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("device address is not set")
	}
	if t.client != nil && t.connected.Load() {
		return fmt.Errorf("already connected")
	}

	dev, err := DeviceFactory()
	if err != nil {
		return fmt.Errorf("failed to create BLE device: %w", err)
	}
	ble.SetDefaultDevice(dev)

	t.logger.WithField("address", address).Info("Dialing BLE device...")
	client, err := ble.Dial(ctx, ble.NewAddr(address))
	if err != nil {
		return fmt.Errorf("failed to connect to %q: %w", address, err)
	}

	t.client = client
	t.chars = nil
	t.connected.Store(true)
	t.pairStatus.Store(int32(hueble.PairStatusUnknown))
	t.startMonitor(client)

	t.logger.WithField("address", address).Info("BLE link established")
	return nil
}

// startMonitor watches the client's Disconnected channel and fires the
// registered handler exactly once per link loss. Caller holds t.mu.
func (t *Transport) startMonitor(client ble.Client) {
	monitorCtx, cancel := context.WithCancel(context.Background())
	t.monitorRef = cancel

	groutine.Go(monitorCtx, "ble-disconnect-monitor", func(ctx context.Context) {
		select {
		case <-client.Disconnected():
			t.logger.Warn("BLE stack reported link loss")
			if !t.connected.CompareAndSwap(true, false) {
				return
			}
			t.mu.RLock()
			handler := t.onDisconnect
			t.mu.RUnlock()
			if handler != nil {
				handler()
			}
		case <-ctx.Done():
		}
	})
}

// Disconnect tears the link down. Safe to call when already disconnected.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	client := t.client
	cancel := t.monitorRef
	t.client = nil
	t.chars = nil
	t.monitorRef = nil
	t.connected.Store(false)
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if client == nil {
		t.logger.Debug("Already disconnected")
		return nil
	}
	if err := client.CancelConnection(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	t.logger.Info("BLE link closed")
	return nil
}

// PairStatus reports the last observed pairing state. go-ble does not
// surface the platform's bonding database, so this stays unknown until a
// pairing probe has run.
func (t *Transport) PairStatus() hueble.PairStatus {
	return hueble.PairStatus(t.pairStatus.Load())
}

// Pair triggers protocol-level pairing. go-ble has no explicit pairing
// primitive, but reading an authenticated characteristic makes the
// platform agent (BlueZ, CoreBluetooth) initiate bonding, exactly as the
// Hue app relies on. An insufficient-authentication failure means the
// light did not accept us, typically because it is not in pairing mode.
func (t *Transport) Pair(ctx context.Context) error {
	data, err := t.Read(ctx, attr.UUIDName)
	if err != nil {
		if isAuthError(err) {
			t.pairStatus.Store(int32(hueble.PairStatusNotPaired))
			return fmt.Errorf("pairing rejected: %w", err)
		}
		return err
	}
	t.logger.WithField("bytes", len(data)).Debug("Pairing probe read succeeded")
	t.pairStatus.Store(int32(hueble.PairStatusPaired))
	return nil
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "authorization") ||
		strings.Contains(msg, "encryption") ||
		strings.Contains(msg, "insufficient")
}

// DiscoverCharacteristics enumerates the peripheral's GATT profile and
// returns all characteristic UUIDs in normalized form.
func (t *Transport) DiscoverCharacteristics(ctx context.Context) ([]string, error) {
	t.mu.RLock()
	client := t.client
	t.mu.RUnlock()
	if client == nil {
		return nil, hueble.ErrNotConnected
	}

	profile, err := await(ctx, func() (*ble.Profile, error) {
		return client.DiscoverProfile(true)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover profile: %w", err)
	}

	chars := make(map[string]*ble.Characteristic)
	var uuids []string
	for _, svc := range profile.Services {
		for _, c := range svc.Characteristics {
			uuid := attr.NormalizeUUID(c.UUID.String())
			if _, seen := chars[uuid]; seen {
				continue
			}
			chars[uuid] = c
			uuids = append(uuids, uuid)
			t.logger.WithFields(logrus.Fields{
				"service": svc.UUID.String(),
				"char":    uuid,
			}).Debug("Found characteristic")
		}
	}

	t.mu.Lock()
	t.chars = chars
	t.mu.Unlock()
	return uuids, nil
}

func (t *Transport) characteristic(uuid string) (ble.Client, *ble.Characteristic, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.client == nil || !t.connected.Load() {
		return nil, nil, hueble.ErrNotConnected
	}
	if t.chars == nil {
		return nil, nil, fmt.Errorf("characteristics not discovered yet")
	}
	c, ok := t.chars[attr.NormalizeUUID(uuid)]
	if !ok {
		return nil, nil, fmt.Errorf("characteristic %q not found", uuid)
	}
	return t.client, c, nil
}

// Read returns the raw value of a characteristic, bounded by ctx.
func (t *Transport) Read(ctx context.Context, uuid string) ([]byte, error) {
	client, c, err := t.characteristic(uuid)
	if err != nil {
		return nil, err
	}
	return await(ctx, func() ([]byte, error) {
		return client.ReadCharacteristic(c)
	})
}

// Write writes a raw value with response, bounded by ctx.
func (t *Transport) Write(ctx context.Context, uuid string, data []byte) error {
	client, c, err := t.characteristic(uuid)
	if err != nil {
		return err
	}
	_, err = await(ctx, func() (struct{}, error) {
		return struct{}{}, client.WriteCharacteristic(c, data, false)
	})
	return err
}

// Subscribe registers fn for notifications of a characteristic. The
// payload is copied before fn runs; go-ble reuses its buffers.
func (t *Transport) Subscribe(uuid string, fn func(data []byte)) error {
	client, c, err := t.characteristic(uuid)
	if err != nil {
		return err
	}
	return client.Subscribe(c, false, func(data []byte) {
		cp := make([]byte, len(data))
		copy(cp, data)
		fn(cp)
	})
}

// await runs op in its own goroutine and honors ctx. go-ble calls block
// without taking a context; abandoning the goroutine on timeout is the
// only way to bound them. The goroutine exits when the call returns.
func await[T any](ctx context.Context, op func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := op()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
