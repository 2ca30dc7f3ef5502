package hueble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.ConnectAttempts)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 120*time.Second, cfg.ConnectWaitTimeout)
	assert.Equal(t, 3, cfg.ReconnectAttempts)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, time.Second, cfg.PairDelay)
	assert.Equal(t, 10*time.Second, cfg.DiscoverTimeout)
	assert.Equal(t, 30*time.Second, cfg.PollTimeout)
	assert.Equal(t, 3, cfg.ReadAttempts)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 3, cfg.WriteAttempts)
	assert.Equal(t, 15*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.True(t, cfg.PollWritesState)
	assert.Equal(t, uint32(64), cfg.EventBufferSize)
	require.NoError(t, cfg.Validate())
}

func TestParseConfigOverridesOnlyNamedFields(t *testing.T) {
	cfg, err := ParseConfig([]byte("connect_attempts: 5\nreconnect_delay: 1s\npoll_writes_state: false\n"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.ConnectAttempts)
	assert.Equal(t, time.Second, cfg.ReconnectDelay)
	assert.False(t, cfg.PollWritesState)

	// Untouched fields keep their defaults.
	assert.Equal(t, 3, cfg.ReadAttempts)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
}

func TestParseConfigRejectsMalformedYAML(t *testing.T) {
	_, err := ParseConfig([]byte("connect_attempts: [not a number"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero connect attempts", func(c *Config) { c.ConnectAttempts = 0 }},
		{"zero read attempts", func(c *Config) { c.ReadAttempts = 0 }},
		{"zero write attempts", func(c *Config) { c.WriteAttempts = 0 }},
		{"negative reconnect attempts", func(c *Config) { c.ReconnectAttempts = -1 }},
		{"zero event buffer", func(c *Config) { c.EventBufferSize = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("zero reconnect attempts disables reconnection", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ReconnectAttempts = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestParseConfigValidates(t *testing.T) {
	_, err := ParseConfig([]byte("connect_attempts: 0\n"))
	assert.Error(t, err)
}
