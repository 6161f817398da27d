//go:build !wasm

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// a single connection serializes writers and keeps ":memory:" databases
	// from being private to each pooled connection
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record stores r or merges it into the existing record.
func (s *SQLiteStore) Record(ctx context.Context, r *types.Result) error {
	parsed, err := json.Marshal(r.Parsed)
	if err != nil {
		return fmt.Errorf("marshaling parsed user agent: %w", err)
	}

	// Parsed fields follow the most recent sighting.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, user_agent, browser_family, os_family, device_family,
			device_type, parsed_json, count, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			count = results.count + excluded.count,
			first_seen = MIN(results.first_seen, excluded.first_seen),
			browser_family = CASE WHEN excluded.last_seen > results.last_seen THEN excluded.browser_family ELSE results.browser_family END,
			os_family = CASE WHEN excluded.last_seen > results.last_seen THEN excluded.os_family ELSE results.os_family END,
			device_family = CASE WHEN excluded.last_seen > results.last_seen THEN excluded.device_family ELSE results.device_family END,
			device_type = CASE WHEN excluded.last_seen > results.last_seen THEN excluded.device_type ELSE results.device_type END,
			parsed_json = CASE WHEN excluded.last_seen > results.last_seen THEN excluded.parsed_json ELSE results.parsed_json END,
			last_seen = MAX(results.last_seen, excluded.last_seen)
	`,
		r.ID,
		r.UserAgent,
		r.Parsed.Browser.Family,
		r.Parsed.OS.Family,
		r.Parsed.Device.Family,
		r.DeviceType.String(),
		string(parsed),
		r.Count,
		r.FirstSeen.UnixNano(),
		r.LastSeen.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

const selectResults = `
	SELECT id, user_agent, device_type, parsed_json, count, first_seen, last_seen
	FROM results`

// Get retrieves the result for id.
func (s *SQLiteStore) Get(ctx context.Context, id types.ID) (*types.Result, error) {
	row := s.db.QueryRowContext(ctx, selectResults+` WHERE id = ?`, id)
	r, err := scanSQLiteResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// All retrieves every result, most frequently seen first.
func (s *SQLiteStore) All(ctx context.Context) ([]*types.Result, error) {
	rows, err := s.db.QueryContext(ctx, selectResults+` ORDER BY count DESC, user_agent ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	results := []*types.Result{}
	for rows.Next() {
		r, err := scanSQLiteResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// Count returns the number of distinct user agents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting results: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteResult(row rowScanner) (*types.Result, error) {
	var (
		r           types.Result
		deviceType  string
		parsedJSON  string
		first, last int64
	)
	err := row.Scan(&r.ID, &r.UserAgent, &deviceType, &parsedJSON, &r.Count, &first, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning result: %w", err)
	}
	if err := decodeColumns(&r, deviceType, []byte(parsedJSON)); err != nil {
		return nil, err
	}
	r.FirstSeen = time.Unix(0, first).UTC()
	r.LastSeen = time.Unix(0, last).UTC()
	return &r, nil
}

// decodeColumns fills the fields every backend stores as text.
func decodeColumns(r *types.Result, deviceType string, parsedJSON []byte) error {
	dt, err := types.ParseDeviceType(deviceType)
	if err != nil {
		return fmt.Errorf("result %s: %w", r.ID, err)
	}
	r.DeviceType = dt
	if err := json.Unmarshal(parsedJSON, &r.Parsed); err != nil {
		return fmt.Errorf("unmarshaling parsed user agent: %w", err)
	}
	return nil
}
