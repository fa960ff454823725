package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"contentops/curator/pkg/config"
	"contentops/curator/pkg/lifecycle"
	"contentops/curator/pkg/pipeline"
	"contentops/curator/pkg/repository"
	"contentops/curator/pkg/telemetry/logging"
	"contentops/curator/pkg/telemetry/metrics"
)

// bootstrap loads configuration and installs the process logger. Every
// command starts here.
func bootstrap() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	if _, err := logging.Setup(logCfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openRepository opens the configured repository backend.
func openRepository(cfg *config.Config) (repository.Port, error) {
	switch cfg.Repository.Backend {
	case "memory":
		return repository.NewMemoryRepository(), nil

	case "sqlite":
		return repository.NewSQLiteRepository(&repository.SQLiteConfig{
			Path:         cfg.Repository.SQLite.Path,
			MaxOpenConns: cfg.Repository.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Repository.SQLite.MaxIdleConns,
			WALMode:      cfg.Repository.SQLite.WALMode,
			BusyTimeout:  cfg.Repository.SQLite.BusyTimeout,
		})

	case "postgres":
		return repository.NewPostgresRepository(&repository.PostgresConfig{
			DSN:             cfg.Repository.Postgres.DSN,
			MaxOpenConns:    cfg.Repository.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Repository.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Repository.Postgres.ConnMaxLifetime,
		})

	default:
		return nil, fmt.Errorf("unknown repository backend %q", cfg.Repository.Backend)
	}
}

// loadPolicy loads the configured retention policy, falling back to the
// config-level defaults when no policy file is set.
func loadPolicy(cfg *config.Config) (*lifecycle.Policy, error) {
	if cfg.Retention.PolicyFile != "" {
		return lifecycle.LoadPolicy(cfg.Retention.PolicyFile)
	}

	policy := &lifecycle.Policy{
		DefaultRetentionYears: cfg.Retention.DefaultYears,
		Schedule:              cfg.Retention.Schedule,
	}
	for _, s := range cfg.Retention.AutoArchiveStates {
		policy.AutoArchiveStates = append(policy.AutoArchiveStates, lifecycle.State(s))
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// newRunner assembles the batch runner with metrics wired in.
func newRunner(cfg *config.Config, repo repository.Port, policy *lifecycle.Policy) *pipeline.Runner {
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	return pipeline.NewRunner(repo, pipeline.RunnerOptions{
		Policy:    policy,
		Collector: collector,
		Retry: &repository.RetryConfig{
			MaxTries:        cfg.Repository.Retry.MaxTries,
			InitialInterval: cfg.Repository.Retry.InitialInterval,
			MaxInterval:     cfg.Repository.Retry.MaxInterval,
		},
		BatchSize:   cfg.Repository.BatchSize,
		Consistency: repository.Consistency(cfg.Repository.Consistency),
	})
}
