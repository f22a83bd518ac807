package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "agentstep-runs", cfg.Temporal.TaskQueue)
	assert.Equal(t, "localhost:8233", cfg.Server.Addr())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing temporal host",
			mutate:  func(c *Config) { c.Temporal.HostPort = "" },
			wantErr: "temporal.host_port",
		},
		{
			name:    "missing task queue",
			mutate:  func(c *Config) { c.Temporal.TaskQueue = "" },
			wantErr: "temporal.task_queue",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.Agent.Model = "" },
			wantErr: "agent.model",
		},
		{
			name:    "non-positive iterations",
			mutate:  func(c *Config) { c.Agent.MaxIterations = 0 },
			wantErr: "agent.max_iterations",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSecret(t *testing.T) {
	t.Run("redacts in string form", func(t *testing.T) {
		s := Secret("sk-super-secret")
		assert.Equal(t, "[REDACTED]", s.String())
		assert.Equal(t, "Secret([REDACTED])", s.GoString())
		assert.Equal(t, "sk-super-secret", s.Value())
		assert.True(t, s.IsSet())
	})

	t.Run("empty secret", func(t *testing.T) {
		s := Secret("")
		assert.Equal(t, "", s.String())
		assert.False(t, s.IsSet())
	})

	t.Run("redacts in JSON", func(t *testing.T) {
		b, err := Secret("topsecret").MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `"[REDACTED]"`, string(b))
	})
}

func TestDuration(t *testing.T) {
	t.Run("parses from text", func(t *testing.T) {
		var d Duration
		require.NoError(t, d.UnmarshalText([]byte("90s")))
		assert.Equal(t, "1m30s", d.Duration().String())
	})

	t.Run("rejects negative", func(t *testing.T) {
		var d Duration
		assert.Error(t, d.UnmarshalText([]byte("-5s")))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var d Duration
		assert.Error(t, d.UnmarshalText([]byte("soon")))
	})
}
