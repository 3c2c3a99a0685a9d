package db

import (
	"fmt"
)

// sqliteSchema is the full SQLite database schema.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('hod', 'employee')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS assets (
    id                INTEGER PRIMARY KEY,
    year_of_purchase  INTEGER NOT NULL DEFAULT 0,
    item_name         TEXT NOT NULL DEFAULT '',
    quantity          INTEGER NOT NULL DEFAULT 0,
    inventory_number  TEXT NOT NULL DEFAULT '',
    room_number       TEXT NOT NULL DEFAULT '',
    floor_number      TEXT NOT NULL DEFAULT '',
    building_block    TEXT NOT NULL DEFAULT '',
    remarks           TEXT NOT NULL DEFAULT '',
    department_origin TEXT NOT NULL DEFAULT 'own' CHECK (department_origin IN ('own', 'other')),
    last_updated      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (typeof(year_of_purchase) = 'integer'),
    CHECK (typeof(quantity) = 'integer')
)`,
	`CREATE TABLE IF NOT EXISTS login_logs (
    id               INTEGER PRIMARY KEY,
    user_id          INTEGER NOT NULL REFERENCES users(id),
    login_time       DATETIME NOT NULL,
    logout_time      DATETIME,
    duration_minutes INTEGER,
    ip_address       TEXT,
    user_agent       TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_login_logs_user ON login_logs(user_id)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
}

// postgresSchema mirrors sqliteSchema for PostgreSQL.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('hod', 'employee')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    TIMESTAMPTZ
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS assets (
    id                BIGSERIAL PRIMARY KEY,
    year_of_purchase  INTEGER NOT NULL DEFAULT 0,
    item_name         TEXT NOT NULL DEFAULT '',
    quantity          INTEGER NOT NULL DEFAULT 0,
    inventory_number  TEXT NOT NULL DEFAULT '',
    room_number       TEXT NOT NULL DEFAULT '',
    floor_number      TEXT NOT NULL DEFAULT '',
    building_block    TEXT NOT NULL DEFAULT '',
    remarks           TEXT NOT NULL DEFAULT '',
    department_origin TEXT NOT NULL DEFAULT 'own' CHECK (department_origin IN ('own', 'other')),
    last_updated      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS login_logs (
    id               BIGSERIAL PRIMARY KEY,
    user_id          BIGINT NOT NULL REFERENCES users(id),
    login_time       TIMESTAMPTZ NOT NULL,
    logout_time      TIMESTAMPTZ,
    duration_minutes INTEGER,
    ip_address       TEXT,
    user_agent       TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_login_logs_user ON login_logs(user_id)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *DB) error {
	schema := sqliteSchema
	if db.Dialect == DialectPostgres {
		schema = postgresSchema
	}

	for i, stmt := range schema {
		if _, err := db.DB.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}
	return nil
}
