package config

import "time"

// DefaultConfig returns a configuration populated with default values.
// The export base path has no default: it must be set explicitly.
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			Backend: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "data/repository.db",
				MaxOpenConns: 10,
				MaxIdleConns: 5,
				WALMode:      true,
				BusyTimeout:  5 * time.Second,
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    20,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
			},
			Consistency: "transactional",
			BatchSize:   50,
			Retry: RetryConfig{
				MaxTries:        4,
				InitialInterval: 50 * time.Millisecond,
				MaxInterval:     time.Second,
			},
		},
		Export: ExportConfig{
			MaxDocs:      250,
			SweepMaxDocs: 40000,
		},
		Retention: RetentionConfig{
			DefaultYears:      5,
			AutoArchiveStates: []string{"REFERENCE"},
			Schedule:          "0 2 * * *",
			DebounceInterval:  100 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "curator",
				Subsystem: "pipeline",
			},
		},
	}
}

// ApplyDefaults fills zero-valued fields with defaults. Explicitly set
// values are never overwritten.
func ApplyDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.Repository.Backend == "" {
		cfg.Repository.Backend = def.Repository.Backend
	}
	if cfg.Repository.SQLite.Path == "" {
		cfg.Repository.SQLite.Path = def.Repository.SQLite.Path
	}
	if cfg.Repository.SQLite.MaxOpenConns == 0 {
		cfg.Repository.SQLite.MaxOpenConns = def.Repository.SQLite.MaxOpenConns
		cfg.Repository.SQLite.WALMode = def.Repository.SQLite.WALMode
	}
	if cfg.Repository.SQLite.MaxIdleConns == 0 {
		cfg.Repository.SQLite.MaxIdleConns = def.Repository.SQLite.MaxIdleConns
	}
	if cfg.Repository.SQLite.BusyTimeout == 0 {
		cfg.Repository.SQLite.BusyTimeout = def.Repository.SQLite.BusyTimeout
	}
	if cfg.Repository.Postgres.MaxOpenConns == 0 {
		cfg.Repository.Postgres.MaxOpenConns = def.Repository.Postgres.MaxOpenConns
	}
	if cfg.Repository.Postgres.MaxIdleConns == 0 {
		cfg.Repository.Postgres.MaxIdleConns = def.Repository.Postgres.MaxIdleConns
	}
	if cfg.Repository.Postgres.ConnMaxLifetime == 0 {
		cfg.Repository.Postgres.ConnMaxLifetime = def.Repository.Postgres.ConnMaxLifetime
	}
	if cfg.Repository.Consistency == "" {
		cfg.Repository.Consistency = def.Repository.Consistency
	}
	if cfg.Repository.BatchSize == 0 {
		cfg.Repository.BatchSize = def.Repository.BatchSize
	}
	if cfg.Repository.Retry.MaxTries == 0 {
		cfg.Repository.Retry.MaxTries = def.Repository.Retry.MaxTries
	}
	if cfg.Repository.Retry.InitialInterval == 0 {
		cfg.Repository.Retry.InitialInterval = def.Repository.Retry.InitialInterval
	}
	if cfg.Repository.Retry.MaxInterval == 0 {
		cfg.Repository.Retry.MaxInterval = def.Repository.Retry.MaxInterval
	}

	if cfg.Export.MaxDocs == 0 {
		cfg.Export.MaxDocs = def.Export.MaxDocs
	}
	if cfg.Export.SweepMaxDocs == 0 {
		cfg.Export.SweepMaxDocs = def.Export.SweepMaxDocs
	}

	if cfg.Retention.DefaultYears == 0 {
		cfg.Retention.DefaultYears = def.Retention.DefaultYears
	}
	if cfg.Retention.AutoArchiveStates == nil {
		cfg.Retention.AutoArchiveStates = def.Retention.AutoArchiveStates
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = def.Retention.Schedule
	}
	if cfg.Retention.DebounceInterval == 0 {
		cfg.Retention.DebounceInterval = def.Retention.DebounceInterval
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = def.Telemetry.Logging.Level
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = def.Telemetry.Logging.Format
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = def.Telemetry.Metrics.Namespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = def.Telemetry.Metrics.Subsystem
	}
}
