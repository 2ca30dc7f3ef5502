package hueble

import (
	"fmt"
	"time"

	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"
)

// Config carries every tunable of a session. It is immutable after the
// session is constructed; pass nil to New to get DefaultConfig. The default
// values below are part of the public contract.
type Config struct {
	// ConnectAttempts bounds link establishment tries per connect call.
	ConnectAttempts int `default:"3" yaml:"connect_attempts"`

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration `default:"30s" yaml:"connect_timeout"`

	// ConnectWaitTimeout bounds how long a caller waits for another
	// in-flight connect on the same session to finish.
	ConnectWaitTimeout time.Duration `default:"120s" yaml:"connect_wait_timeout"`

	// ReconnectAttempts bounds the background reconnection loop that runs
	// after an unsolicited disconnect of a previously paired session.
	ReconnectAttempts int `default:"3" yaml:"reconnect_attempts"`

	// ReconnectDelay is the pause between background reconnection attempts.
	ReconnectDelay time.Duration `default:"5s" yaml:"reconnect_delay"`

	// PairDelay is the settle time between requesting pairing and
	// verifying that it took effect.
	PairDelay time.Duration `default:"1s" yaml:"pair_delay"`

	// DiscoverTimeout bounds attribute discovery on a fresh connection.
	DiscoverTimeout time.Duration `default:"10s" yaml:"discover_timeout"`

	// PollTimeout bounds one whole PollState call.
	PollTimeout time.Duration `default:"30s" yaml:"poll_timeout"`

	// ReadAttempts and ReadTimeout govern a single attribute read. The
	// timeout must be large enough to cover an implicit reconnect.
	ReadAttempts int           `default:"3" yaml:"read_attempts"`
	ReadTimeout  time.Duration `default:"15s" yaml:"read_timeout"`

	// WriteAttempts and WriteTimeout govern a single attribute write.
	WriteAttempts int           `default:"3" yaml:"write_attempts"`
	WriteTimeout  time.Duration `default:"15s" yaml:"write_timeout"`

	// RetryDelay is the pause between read/write attempts.
	RetryDelay time.Duration `default:"500ms" yaml:"retry_delay"`

	// PollWritesState makes every successful control write poll the
	// attribute back so the cache reflects the new value even if the
	// light never sends a notification.
	PollWritesState bool `default:"true" yaml:"poll_writes_state"`

	// EventBufferSize bounds the state-event history ring. Oldest events
	// are overwritten when full.
	EventBufferSize uint32 `default:"64" yaml:"event_buffer_size"`
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// ParseConfig unmarshals YAML over the defaults, so a partial file only
// overrides what it names.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the session cannot honor.
func (c *Config) Validate() error {
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("connect_attempts must be >= 1, got %d", c.ConnectAttempts)
	}
	if c.ReadAttempts < 1 {
		return fmt.Errorf("read_attempts must be >= 1, got %d", c.ReadAttempts)
	}
	if c.WriteAttempts < 1 {
		return fmt.Errorf("write_attempts must be >= 1, got %d", c.WriteAttempts)
	}
	if c.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect_attempts must be >= 0, got %d", c.ReconnectAttempts)
	}
	if c.EventBufferSize == 0 {
		return fmt.Errorf("event_buffer_size must be > 0")
	}
	return nil
}
