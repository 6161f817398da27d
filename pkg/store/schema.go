//go:build !wasm

package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the SQLite schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}
	if err := createResultsTable(db); err != nil {
		return fmt.Errorf("creating results table: %w", err)
	}
	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Insert version if table is empty
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	return nil
}

// Times are unix nanoseconds so MIN and MAX order them correctly.
func createResultsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY NOT NULL,
			user_agent TEXT NOT NULL,
			browser_family TEXT NOT NULL,
			os_family TEXT NOT NULL,
			device_family TEXT NOT NULL,
			device_type TEXT NOT NULL,
			parsed_json TEXT NOT NULL,
			count INTEGER NOT NULL,
			first_seen INTEGER NOT NULL,
			last_seen INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_results_count ON results(count DESC)
	`)
	return err
}

// postgresSchema mirrors the SQLite schema with native PostgreSQL types.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,
	`INSERT INTO schema_version (version)
		SELECT $1::integer WHERE NOT EXISTS (SELECT 1 FROM schema_version)`,
	`CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY NOT NULL,
		user_agent TEXT NOT NULL,
		browser_family TEXT NOT NULL,
		os_family TEXT NOT NULL,
		device_family TEXT NOT NULL,
		device_type TEXT NOT NULL,
		parsed_json JSONB NOT NULL,
		count BIGINT NOT NULL,
		first_seen TIMESTAMPTZ NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_results_count ON results(count DESC)`,
}
