// Package testutils provides a scriptable fake transport and helpers for
// exercising sessions without a radio.
package testutils

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	hueble "github.com/flip-dots/hueble-go"
	"github.com/flip-dots/hueble-go/attr"
)

// NewTestLogger returns a quiet debug-level logger for tests.
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger
}

// FakeTransport is an in-memory hueble.Transport with scriptable failures
// and notification injection. Build one with NewFakeTransport or
// NewHueLightTransport and chain the With/Fail methods.
type FakeTransport struct {
	mu sync.Mutex

	attrs map[string][]byte // normalized uuid -> current raw value
	subs  map[string]func([]byte)

	connected    bool
	pairStatus   hueble.PairStatus
	onDisconnect func()

	connectFailures int // fail the next N Connect calls
	pairErr         error
	discoverErr     error
	readFailures    map[string]int // fail the next N reads per uuid
	writeFailures   map[string]int

	ConnectCalls    int
	DisconnectCalls int
	PairCalls       int
	DiscoverCalls   int
	ReadCalls       int
	WriteCalls      int
	SubscribeCalls  int
}

// NewFakeTransport returns an empty fake with no attributes.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		attrs:         make(map[string][]byte),
		subs:          make(map[string]func([]byte)),
		pairStatus:    hueble.PairStatusUnknown,
		readFailures:  make(map[string]int),
		writeFailures: make(map[string]int),
	}
}

// NewHueLightTransport returns a fake configured like a colour-capable Hue
// light with every attribute present.
func NewHueLightTransport() *FakeTransport {
	return NewFakeTransport().
		WithAttribute(attr.UUIDManufacturer, []byte("Signify Netherlands B.V.")).
		WithAttribute(attr.UUIDModel, []byte("LCA006")).
		WithAttribute(attr.UUIDFirmware, []byte("1.104.2")).
		WithAttribute(attr.UUIDZigbeeAddress, []byte{0x00, 0x17, 0x88, 0x01, 0x02}).
		WithAttribute(attr.UUIDName, []byte("Bedside lamp")).
		WithAttribute(attr.UUIDPower, []byte{0x01}).
		WithAttribute(attr.UUIDBrightness, []byte{0x7F}).
		WithAttribute(attr.UUIDColourTemp, []byte{0xF4, 0x01}). // 500 mireds
		WithAttribute(attr.UUIDColourXY, []byte{0x00, 0x80, 0x00, 0x80})
}

// WithAttribute adds or replaces a characteristic and its raw value.
func (f *FakeTransport) WithAttribute(uuid string, value []byte) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attrs[attr.NormalizeUUID(uuid)] = value
	return f
}

// WithoutAttribute removes a characteristic so discovery reports it absent.
func (f *FakeTransport) WithoutAttribute(uuid string) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.attrs, attr.NormalizeUUID(uuid))
	return f
}

// FailConnects makes the next n Connect calls fail.
func (f *FakeTransport) FailConnects(n int) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectFailures = n
	return f
}

// FailReads makes the next n reads of a characteristic fail.
func (f *FakeTransport) FailReads(uuid string, n int) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readFailures[attr.NormalizeUUID(uuid)] = n
	return f
}

// FailWrites makes the next n writes of a characteristic fail.
func (f *FakeTransport) FailWrites(uuid string, n int) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeFailures[attr.NormalizeUUID(uuid)] = n
	return f
}

// WithPairStatus fixes the reported pairing state.
func (f *FakeTransport) WithPairStatus(s hueble.PairStatus) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairStatus = s
	return f
}

// WithPairError makes Pair fail.
func (f *FakeTransport) WithPairError(err error) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairErr = err
	return f
}

// WithDiscoverError makes discovery fail.
func (f *FakeTransport) WithDiscoverError(err error) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discoverErr = err
	return f
}

// TransportCalls counts every I/O entry point, for zero-I/O assertions.
func (f *FakeTransport) TransportCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ConnectCalls + f.DisconnectCalls + f.PairCalls +
		f.DiscoverCalls + f.ReadCalls + f.WriteCalls + f.SubscribeCalls
}

// Notify simulates an unsolicited value notification from the light. The
// stored value is updated so subsequent reads agree with the push.
func (f *FakeTransport) Notify(uuid string, data []byte) {
	key := attr.NormalizeUUID(uuid)
	f.mu.Lock()
	f.attrs[key] = data
	fn := f.subs[key]
	f.mu.Unlock()
	if fn != nil {
		fn(data)
	}
}

// DropLink simulates an unsolicited link loss.
func (f *FakeTransport) DropLink() {
	f.mu.Lock()
	f.connected = false
	f.subs = make(map[string]func([]byte))
	handler := f.onDisconnect
	f.mu.Unlock()
	if handler != nil {
		handler()
	}
}

// --- hueble.Transport implementation ---

func (f *FakeTransport) Connect(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCalls++
	if f.connected {
		return fmt.Errorf("already connected")
	}
	if f.connectFailures > 0 {
		f.connectFailures--
		return fmt.Errorf("simulated connect failure")
	}
	f.connected = true
	return nil
}

func (f *FakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DisconnectCalls++
	f.connected = false
	f.subs = make(map[string]func([]byte))
	return nil
}

func (f *FakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeTransport) Pair(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PairCalls++
	if f.pairErr != nil {
		return f.pairErr
	}
	return nil
}

func (f *FakeTransport) PairStatus() hueble.PairStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairStatus
}

func (f *FakeTransport) DiscoverCharacteristics(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DiscoverCalls++
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	if !f.connected {
		return nil, hueble.ErrNotConnected
	}
	uuids := make([]string, 0, len(f.attrs))
	for uuid := range f.attrs {
		uuids = append(uuids, uuid)
	}
	return uuids, nil
}

func (f *FakeTransport) Read(ctx context.Context, uuid string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := attr.NormalizeUUID(uuid)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadCalls++
	if !f.connected {
		return nil, hueble.ErrNotConnected
	}
	if n := f.readFailures[key]; n > 0 {
		f.readFailures[key] = n - 1
		return nil, fmt.Errorf("simulated read failure")
	}
	value, ok := f.attrs[key]
	if !ok {
		return nil, fmt.Errorf("characteristic %q not found", uuid)
	}
	return value, nil
}

func (f *FakeTransport) Write(ctx context.Context, uuid string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := attr.NormalizeUUID(uuid)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WriteCalls++
	if !f.connected {
		return hueble.ErrNotConnected
	}
	if n := f.writeFailures[key]; n > 0 {
		f.writeFailures[key] = n - 1
		return fmt.Errorf("simulated write failure")
	}
	if _, ok := f.attrs[key]; !ok {
		return fmt.Errorf("characteristic %q not found", uuid)
	}
	f.attrs[key] = append([]byte(nil), data...)
	return nil
}

func (f *FakeTransport) Subscribe(uuid string, fn func(data []byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubscribeCalls++
	if !f.connected {
		return hueble.ErrNotConnected
	}
	f.subs[attr.NormalizeUUID(uuid)] = fn
	return nil
}

func (f *FakeTransport) SetDisconnectHandler(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDisconnect = fn
}
