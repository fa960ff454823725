package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g.,
	// "repository.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. Configuration errors are fatal and abort a run before any
// repository mutation.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRepository(&cfg.Repository)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateRepository(cfg *RepositoryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, FieldError{
			Field:   "repository.backend",
			Message: fmt.Sprintf("unknown backend %q, must be memory, sqlite or postgres", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "repository.sqlite.path",
			Message: "sqlite path is required",
		})
	}
	if cfg.Backend == "postgres" && cfg.Postgres.DSN == "" {
		errs = append(errs, FieldError{
			Field:   "repository.postgres.dsn",
			Message: "postgres dsn is required",
		})
	}

	switch cfg.Consistency {
	case "eventual", "transactional":
	default:
		errs = append(errs, FieldError{
			Field:   "repository.consistency",
			Message: fmt.Sprintf("unknown consistency %q, must be eventual or transactional", cfg.Consistency),
		})
	}

	if cfg.BatchSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "repository.batch_size",
			Message: "batch size must be positive",
		})
	}
	if cfg.Retry.MaxTries == 0 {
		errs = append(errs, FieldError{
			Field:   "repository.retry.max_tries",
			Message: "max tries must be positive",
		})
	}

	return errs
}

func validateExport(cfg *ExportConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxDocs <= 0 {
		errs = append(errs, FieldError{
			Field:   "export.max_docs",
			Message: "max docs must be positive",
		})
	}
	if cfg.SweepMaxDocs <= 0 {
		errs = append(errs, FieldError{
			Field:   "export.sweep_max_docs",
			Message: "sweep max docs must be positive",
		})
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultYears <= 0 {
		errs = append(errs, FieldError{
			Field:   "retention.default_years",
			Message: "default years must be positive",
		})
	}
	if cfg.Watch && cfg.PolicyFile == "" {
		errs = append(errs, FieldError{
			Field:   "retention.watch",
			Message: "watch requires a policy file",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text", "":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q", cfg.Logging.Format),
		})
	}

	return errs
}

// ValidateOutputPath checks the hard run precondition on the export base
// path: it must be set, exist, be a directory and be writable. Called
// before any pipeline run that writes output.
func ValidateOutputPath(basePath string) error {
	if basePath == "" {
		return ValidationError{Errors: []FieldError{{
			Field:   "export.base_path",
			Message: "output base path is required",
		}}}
	}

	info, err := os.Stat(basePath)
	if err != nil {
		return ValidationError{Errors: []FieldError{{
			Field:   "export.base_path",
			Message: fmt.Sprintf("output base path %q does not exist", basePath),
		}}}
	}
	if !info.IsDir() {
		return ValidationError{Errors: []FieldError{{
			Field:   "export.base_path",
			Message: fmt.Sprintf("output base path %q is not a directory", basePath),
		}}}
	}

	// Probe writability; a permission-bit check misreads ACLs and
	// read-only mounts.
	probe := filepath.Join(basePath, ".curator-write-check")
	f, err := os.Create(probe)
	if err != nil {
		return ValidationError{Errors: []FieldError{{
			Field:   "export.base_path",
			Message: fmt.Sprintf("output base path %q is not writable", basePath),
		}}}
	}
	f.Close()
	os.Remove(probe)

	return nil
}
