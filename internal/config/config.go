package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full phishtrail configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Storage   StorageConfig   `yaml:"storage"`
	Serve     ServeConfig     `yaml:"serve"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig points at the scanning service.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig selects where scan history is persisted.
type StorageConfig struct {
	// Backend is one of "file", "sqlite", or "memory".
	Backend string `yaml:"backend"`

	// Dir is the directory for file and sqlite backends. Empty means
	// the per-user data directory, resolved at startup.
	Dir string `yaml:"dir,omitempty"`

	// Record names the history record within the backend.
	Record string `yaml:"record,omitempty"`
}

// ServeConfig holds settings for the local HTTP server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled        bool              `yaml:"enabled"`
	Endpoint       string            `yaml:"endpoint,omitempty"`
	Protocol       string            `yaml:"protocol,omitempty"`
	Insecure       bool              `yaml:"insecure,omitempty"`
	SampleRate     float64           `yaml:"sample_rate,omitempty"`
	ServiceName    string            `yaml:"service_name,omitempty"`
	ServiceVersion string            `yaml:"service_version,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
}

// Validate checks that the configuration is valid and ready to use
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got: %d", c.API.TimeoutSeconds)
	}

	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend must be 'file', 'sqlite', or 'memory', got: %s", c.Storage.Backend)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http" {
			return fmt.Errorf("telemetry.protocol must be 'grpc' or 'http', got: %s", c.Telemetry.Protocol)
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got: %v", c.Telemetry.SampleRate)
		}
	}

	return nil
}

// MergeConfigs merges configs in order of increasing precedence.
// Later configs override earlier ones. Non-zero fields override;
// boolean fields latch on, since an unset false is indistinguishable
// from an explicit one.
func MergeConfigs(configs ...*Config) *Config {
	result := &Config{}

	for _, cfg := range configs {
		if cfg == nil {
			continue
		}

		if cfg.API.BaseURL != "" {
			result.API.BaseURL = cfg.API.BaseURL
		}
		if cfg.API.TimeoutSeconds > 0 {
			result.API.TimeoutSeconds = cfg.API.TimeoutSeconds
		}

		if cfg.Storage.Backend != "" {
			result.Storage.Backend = cfg.Storage.Backend
		}
		if cfg.Storage.Dir != "" {
			result.Storage.Dir = cfg.Storage.Dir
		}
		if cfg.Storage.Record != "" {
			result.Storage.Record = cfg.Storage.Record
		}

		if cfg.Serve.Addr != "" {
			result.Serve.Addr = cfg.Serve.Addr
		}

		if cfg.Telemetry.Enabled {
			result.Telemetry.Enabled = true
		}
		if cfg.Telemetry.Endpoint != "" {
			result.Telemetry.Endpoint = cfg.Telemetry.Endpoint
		}
		if cfg.Telemetry.Protocol != "" {
			result.Telemetry.Protocol = cfg.Telemetry.Protocol
		}
		if cfg.Telemetry.Insecure {
			result.Telemetry.Insecure = true
		}
		if cfg.Telemetry.SampleRate > 0 {
			result.Telemetry.SampleRate = cfg.Telemetry.SampleRate
		}
		if cfg.Telemetry.ServiceName != "" {
			result.Telemetry.ServiceName = cfg.Telemetry.ServiceName
		}
		if cfg.Telemetry.ServiceVersion != "" {
			result.Telemetry.ServiceVersion = cfg.Telemetry.ServiceVersion
		}
		for k, v := range cfg.Telemetry.Headers {
			if result.Telemetry.Headers == nil {
				result.Telemetry.Headers = make(map[string]string)
			}
			result.Telemetry.Headers[k] = v
		}
	}

	return result
}

// LoadFromFile reads a YAML config file. Returns nil, nil if the file doesn't exist.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadTiered loads system defaults, then machine config, then project config,
// and merges them in order of increasing precedence. The PHISHTRAIL_API_URL
// environment variable beats every file tier.
func LoadTiered(machinePath, projectPath string) (*Config, error) {
	system := SystemDefaults()

	machine, err := LoadFromFile(machinePath)
	if err != nil {
		return nil, fmt.Errorf("loading machine config: %w", err)
	}

	project, err := LoadFromFile(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := MergeConfigs(system, machine, project)

	if url := os.Getenv("PHISHTRAIL_API_URL"); url != "" {
		merged.API.BaseURL = url
	}

	return merged, nil
}
