package repository

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite repository backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/repository.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteRepository implements Port on a SQLite database.
type SQLiteRepository struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteRepository opens (creating if needed) a SQLite-backed repository.
func NewSQLiteRepository(config *SQLiteConfig) (*SQLiteRepository, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "repository.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteRepository{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite repository initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the schema and connection pragmas.
func (s *SQLiteRepository) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(sqliteInsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "record_schema_version", err)
	}

	return nil
}

// classify wraps a backend error, surfacing busy/locked conditions as
// retryable conflicts.
func (s *SQLiteRepository) classify(op string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && (serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked) {
		return NewStorageError("sqlite", op, fmt.Errorf("%w: %v", ErrConflict, err))
	}
	return NewStorageError("sqlite", op, err)
}

// Search executes the compiled predicate set and returns matching refs in
// ascending order.
func (s *SQLiteRepository) Search(ctx context.Context, q Query, skip, limit int) ([]Ref, error) {
	query, args := compileSearchSQL(q, skip, limit, dialectSQLite)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.classify("search", err)
	}
	defer rows.Close()

	var refs []Ref
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, s.classify("search", err)
		}
		refs = append(refs, Ref(ref))
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify("search", err)
	}
	return refs, nil
}

// Exists reports whether the item row is present.
func (s *SQLiteRepository) Exists(ctx context.Context, ref Ref) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM items WHERE ref = ?", string(ref)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.classify("exists", err)
	}
	return true, nil
}

// Create inserts the item row and its initial properties atomically.
func (s *SQLiteRepository) Create(ctx context.Context, ref Ref, props map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.classify("create", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO items (ref, created_at) VALUES (?, ?)",
		string(ref), time.Now().UTC()); err != nil {
		return s.classify("create", err)
	}
	for k, v := range props {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_properties (ref, key, value) VALUES (?, ?, ?)",
			string(ref), k, v); err != nil {
			return s.classify("create", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s.classify("create", err)
	}
	return nil
}

func (s *SQLiteRepository) requireItem(ctx context.Context, ref Ref) error {
	ok, err := s.Exists(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError(ref)
	}
	return nil
}

// GetProperty returns the named property, "" when unset.
func (s *SQLiteRepository) GetProperty(ctx context.Context, ref Ref, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM item_properties WHERE ref = ? AND key = ?",
		string(ref), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.requireItem(ctx, ref); err != nil {
			return "", err
		}
		return "", nil
	}
	if err != nil {
		return "", s.classify("get_property", err)
	}
	return value, nil
}

// SetProperty upserts one property value.
func (s *SQLiteRepository) SetProperty(ctx context.Context, ref Ref, key, value string) error {
	if err := s.requireItem(ctx, ref); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_properties (ref, key, value) VALUES (?, ?, ?)
		ON CONFLICT(ref, key) DO UPDATE SET value = excluded.value`,
		string(ref), key, value)
	if err != nil {
		return s.classify("set_property", err)
	}
	return nil
}

// Properties returns the full property bag.
func (s *SQLiteRepository) Properties(ctx context.Context, ref Ref) (map[string]string, error) {
	if err := s.requireItem(ctx, ref); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM item_properties WHERE ref = ?", string(ref))
	if err != nil {
		return nil, s.classify("properties", err)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, s.classify("properties", err)
		}
		props[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify("properties", err)
	}
	return props, nil
}

// HasFlag reports whether the flag row exists.
func (s *SQLiteRepository) HasFlag(ctx context.Context, ref Ref, flag string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM item_flags WHERE ref = ? AND flag = ?",
		string(ref), flag).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.requireItem(ctx, ref); err != nil {
			return false, err
		}
		return false, nil
	}
	if err != nil {
		return false, s.classify("has_flag", err)
	}
	return true, nil
}

// SetFlag durably sets the flag; re-setting is a no-op.
func (s *SQLiteRepository) SetFlag(ctx context.Context, ref Ref, flag string) error {
	if err := s.requireItem(ctx, ref); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_flags (ref, flag) VALUES (?, ?)
		ON CONFLICT(ref, flag) DO NOTHING`,
		string(ref), flag)
	if err != nil {
		return s.classify("set_flag", err)
	}
	return nil
}

// OpenContent streams the stored content blob.
func (s *SQLiteRepository) OpenContent(ctx context.Context, ref Ref) (io.ReadCloser, string, error) {
	var (
		mimetype string
		data     []byte
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT mimetype, data FROM item_content WHERE ref = ?",
		string(ref)).Scan(&mimetype, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", NewNotFoundError(ref)
	}
	if err != nil {
		return nil, "", s.classify("open_content", err)
	}
	return io.NopCloser(bytes.NewReader(data)), mimetype, nil
}

// PutContent replaces the stored content blob.
func (s *SQLiteRepository) PutContent(ctx context.Context, ref Ref, mimetype string, r io.Reader) error {
	if err := s.requireItem(ctx, ref); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return NewStorageError("sqlite", "put_content", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO item_content (ref, mimetype, data) VALUES (?, ?, ?)
		ON CONFLICT(ref) DO UPDATE SET mimetype = excluded.mimetype, data = excluded.data`,
		string(ref), mimetype, data)
	if err != nil {
		return s.classify("put_content", err)
	}
	return s.SetProperty(ctx, ref, PropMimetype, mimetype)
}

// Delete removes the item and every dependent row.
func (s *SQLiteRepository) Delete(ctx context.Context, ref Ref) error {
	if err := s.requireItem(ctx, ref); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.classify("delete", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM item_content WHERE ref = ?",
		"DELETE FROM item_flags WHERE ref = ?",
		"DELETE FROM item_properties WHERE ref = ?",
		"DELETE FROM items WHERE ref = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, string(ref)); err != nil {
			return s.classify("delete", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s.classify("delete", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}
