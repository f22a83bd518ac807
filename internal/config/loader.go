package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces worker environment variables.
const envPrefix = "AGENTSTEP_"

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides.
//
// Precedence (highest to lowest):
//  1. Environment variables (AGENTSTEP_TEMPORAL_HOST_PORT, AGENTSTEP_AGENT_MODEL, ...)
//  2. YAML config file, when configPath is non-empty
//  3. Defaults from NewDefaultConfig
//
// Environment variables map to config keys by stripping the prefix,
// lowercasing, and splitting on the first underscore:
//
//	AGENTSTEP_TEMPORAL_HOST_PORT -> temporal.host_port
//	AGENTSTEP_AGENT_OPENAI_API_KEY -> agent.openai_api_key
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envTransform maps an environment variable name to its config key. The
// first underscore after the prefix separates the section from the field, so
// compound field names keep their underscores.
func envTransform(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
