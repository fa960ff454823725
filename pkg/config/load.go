package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention CURATOR_SECTION_FIELD (e.g., CURATOR_REPOSITORY_BACKEND) and
// always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Repository overrides
	if val := os.Getenv("CURATOR_REPOSITORY_BACKEND"); val != "" {
		cfg.Repository.Backend = val
	}
	if val := os.Getenv("CURATOR_REPOSITORY_SQLITE_PATH"); val != "" {
		cfg.Repository.SQLite.Path = val
	}
	if val := os.Getenv("CURATOR_REPOSITORY_POSTGRES_DSN"); val != "" {
		cfg.Repository.Postgres.DSN = val
	}
	if val := os.Getenv("CURATOR_REPOSITORY_CONSISTENCY"); val != "" {
		cfg.Repository.Consistency = val
	}
	if val := os.Getenv("CURATOR_REPOSITORY_BATCH_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Repository.BatchSize = i
		}
	}
	if val := os.Getenv("CURATOR_REPOSITORY_RETRY_MAX_TRIES"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 32); err == nil {
			cfg.Repository.Retry.MaxTries = uint(i)
		}
	}

	// Export overrides
	if val := os.Getenv("CURATOR_EXPORT_BASE_PATH"); val != "" {
		cfg.Export.BasePath = val
	}
	if val := os.Getenv("CURATOR_EXPORT_MAX_DOCS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Export.MaxDocs = i
		}
	}
	if val := os.Getenv("CURATOR_EXPORT_SWEEP_MAX_DOCS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Export.SweepMaxDocs = i
		}
	}
	if val := os.Getenv("CURATOR_EXPORT_KEYWORD"); val != "" {
		cfg.Export.Keyword = val
	}
	if val := os.Getenv("CURATOR_EXPORT_MIMETYPE"); val != "" {
		cfg.Export.Mimetype = val
	}

	// Retention overrides
	if val := os.Getenv("CURATOR_RETENTION_POLICY_FILE"); val != "" {
		cfg.Retention.PolicyFile = val
	}
	if val := os.Getenv("CURATOR_RETENTION_DEFAULT_YEARS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.DefaultYears = i
		}
	}
	if val := os.Getenv("CURATOR_RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}
	if val := os.Getenv("CURATOR_RETENTION_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.Watch = b
		}
	}
	if val := os.Getenv("CURATOR_RETENTION_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retention.DebounceInterval = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("CURATOR_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CURATOR_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CURATOR_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
