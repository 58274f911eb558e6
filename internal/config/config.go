// Package config loads the server configuration from YAML, expanding
// ${ENV_VAR} references so secrets stay out of the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cauceflow/cauce/pkg/adapters/httpapi"
)

// Duration parses YAML strings like "45m" or "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full server configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	FlowsDir string         `yaml:"flows_dir"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Engine   EngineConfig   `yaml:"engine"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Payments PaymentsConfig `yaml:"payments"`

	// Endpoints is the tenant API table for api_call nodes.
	Endpoints map[string]EndpointConfig `yaml:"endpoints"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RedisConfig selects the session backend. With an empty Addr sessions live
// in process memory.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`

	// DistributedLock enables the cross-instance per-identity lock. Only
	// meaningful when more than one replica shares this Redis.
	DistributedLock bool `yaml:"distributed_lock"`
}

// SessionConfig controls how sessions look at rest, independently of the
// backend chosen under redis.
type SessionConfig struct {
	// EncryptionKey encrypts sessions with AES-256-GCM before they reach
	// the store. 32 bytes, raw or base64. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`

	// FallbackKeys are previous encryption keys still accepted for reads.
	FallbackKeys []string `yaml:"fallback_keys"`

	// MaskVariables are regexes over variable names whose values are
	// replaced with a mask before persisting. Masking is lossy.
	MaskVariables []string `yaml:"mask_variables"`
}

type EngineConfig struct {
	MaxSteps       int      `yaml:"max_steps"`
	MaxAttempts    int      `yaml:"max_attempts"`
	SessionMaxIdle Duration `yaml:"session_max_idle"`
	CancelKeywords []string `yaml:"cancel_keywords"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type PaymentsConfig struct {
	AccessToken string `yaml:"access_token"`
	BaseURL     string `yaml:"base_url"`
}

// EndpointConfig mirrors httpapi.Endpoint with YAML-friendly durations.
type EndpointConfig struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Timeout Duration          `yaml:"timeout"`
}

// EndpointTable converts the configured endpoints for the API executor.
func (c *Config) EndpointTable() map[string]httpapi.Endpoint {
	table := make(map[string]httpapi.Endpoint, len(c.Endpoints))
	for id, ep := range c.Endpoints {
		table[id] = httpapi.Endpoint{
			URL:     ep.URL,
			Method:  ep.Method,
			Headers: ep.Headers,
			Timeout: ep.Timeout.Std(),
		}
	}
	return table
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		FlowsDir: "flows",
		Log:      LogConfig{Level: "info", Format: "json"},
		Engine: EngineConfig{
			SessionMaxIdle: Duration(30 * time.Minute),
		},
	}
}

// Load reads and parses the file at path, layered over Default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	expanded := os.Expand(string(data), func(name string) string {
		return os.Getenv(name)
	})
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}
