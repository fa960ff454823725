// Package config defines the configuration model for the curator pipeline:
// repository backend selection, export and retention run defaults, and
// telemetry settings. Configuration is loaded from a YAML file with
// CURATOR_* environment variable overrides.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Repository configures the content repository backend.
	Repository RepositoryConfig `yaml:"repository"`

	// Export configures export run defaults and the output sink.
	Export ExportConfig `yaml:"export"`

	// Retention configures the purge policy and sweep scheduling.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RepositoryConfig selects and tunes the repository backend.
type RepositoryConfig struct {
	// Backend is one of "memory", "sqlite", "postgres".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Postgres configures the postgres backend.
	Postgres PostgresConfig `yaml:"postgres"`

	// Consistency is the search consistency mode: "eventual" or
	// "transactional".
	Consistency string `yaml:"consistency"`

	// BatchSize is the search page size used by the paginator.
	BatchSize int `yaml:"batch_size"`

	// Retry tunes the conflict retry helper.
	Retry RetryConfig `yaml:"retry"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path         string        `yaml:"path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	WALMode      bool          `yaml:"wal_mode"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// PostgresConfig configures the Postgres backend.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RetryConfig tunes conflict retries of transactional units of work.
type RetryConfig struct {
	MaxTries        uint          `yaml:"max_tries"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// ExportConfig holds export run defaults.
type ExportConfig struct {
	// BasePath is the output base directory. It must exist and be
	// writable before any run starts.
	BasePath string `yaml:"base_path"`

	// MaxDocs is the default document cap for targeted export runs.
	MaxDocs int `yaml:"max_docs"`

	// SweepMaxDocs is the default document cap for sweep runs.
	SweepMaxDocs int `yaml:"sweep_max_docs"`

	// Keyword is the default keyword filter, empty for none.
	Keyword string `yaml:"keyword"`

	// Mimetype is the default mimetype filter, empty for none.
	Mimetype string `yaml:"mimetype"`
}

// RetentionConfig holds purge policy and sweep scheduling settings.
type RetentionConfig struct {
	// PolicyFile is an optional path to a retention policy file;
	// built-in defaults apply when empty.
	PolicyFile string `yaml:"policy_file"`

	// DefaultYears applies when an item carries no retention property.
	DefaultYears int `yaml:"default_years"`

	// AutoArchiveStates is the allow-list of pre-states eligible for
	// auto-archive.
	AutoArchiveStates []string `yaml:"auto_archive_states"`

	// Schedule is the cron expression for recurring sweeps.
	Schedule string `yaml:"schedule"`

	// Watch enables hot reload of the policy file during sweeps.
	Watch bool `yaml:"watch"`

	// DebounceInterval is the policy watcher quiet period.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`

	// RunDurationBuckets overrides the run duration histogram buckets.
	RunDurationBuckets []float64 `yaml:"run_duration_buckets"`
}
