package repository

// SchemaVersion is the current repository database schema version.
const SchemaVersion = 1

// sqliteSchema contains the SQL statements to create the repository schema.
// The same statements are valid for Postgres except for the BLOB column
// type, which postgres.go overrides.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
    ref TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS item_properties (
    ref TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (ref, key)
);

CREATE TABLE IF NOT EXISTS item_flags (
    ref TEXT NOT NULL,
    flag TEXT NOT NULL,
    PRIMARY KEY (ref, flag)
);

CREATE TABLE IF NOT EXISTS item_content (
    ref TEXT PRIMARY KEY,
    mimetype TEXT NOT NULL,
    data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_properties_key_value ON item_properties(key, value);
CREATE INDEX IF NOT EXISTS idx_flags_flag ON item_flags(flag);
`

const sqliteInsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`
