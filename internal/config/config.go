// Package config provides configuration loading for the agentstep worker.
package config

import (
	"fmt"
	"time"
)

// Config is the worker's full configuration tree.
type Config struct {
	Temporal TemporalConfig `koanf:"temporal"`
	Server   ServerConfig   `koanf:"server"`
	Agent    AgentConfig    `koanf:"agent"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// TemporalConfig locates the durability runtime.
type TemporalConfig struct {
	HostPort  string `koanf:"host_port"`
	Namespace string `koanf:"namespace"`
	TaskQueue string `koanf:"task_queue"`
}

// ServerConfig configures the worker's HTTP surface.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AgentConfig configures the demo agent run.
type AgentConfig struct {
	Model         string   `koanf:"model"`
	OpenAIAPIKey  Secret   `koanf:"openai_api_key"`
	BaseURL       string   `koanf:"base_url"`
	MaxIterations int      `koanf:"max_iterations"`
	StepTimeout   Duration `koanf:"step_timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// NewDefaultConfig returns config with local-development defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Temporal: TemporalConfig{
			HostPort:  "localhost:7233",
			Namespace: "default",
			TaskQueue: "agentstep-runs",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8233,
		},
		Agent: AgentConfig{
			Model:         "gpt-4o",
			MaxIterations: 8,
			StepTimeout:   Duration(2 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values the worker cannot run with.
func (c *Config) Validate() error {
	if c.Temporal.HostPort == "" {
		return fmt.Errorf("temporal.host_port is required")
	}
	if c.Temporal.TaskQueue == "" {
		return fmt.Errorf("temporal.task_queue is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Agent.Model == "" {
		return fmt.Errorf("agent.model is required")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
