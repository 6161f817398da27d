//go:build !wasm

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// PostgresStore implements Store using a PostgreSQL connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database at dsn and creates the schema.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Verify connection with actual database ping to catch authentication issues.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	for _, stmt := range postgresSchema {
		var args []any
		if stmt == postgresSchema[1] {
			args = append(args, SchemaVersion)
		}
		if _, err := pool.Exec(ctx, stmt, args...); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

// Record stores r or merges it into the existing record.
func (s *PostgresStore) Record(ctx context.Context, r *types.Result) error {
	parsed, err := json.Marshal(r.Parsed)
	if err != nil {
		return fmt.Errorf("marshaling parsed user agent: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO results (id, user_agent, browser_family, os_family, device_family,
			device_type, parsed_json, count, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			count = results.count + EXCLUDED.count,
			first_seen = LEAST(results.first_seen, EXCLUDED.first_seen),
			browser_family = CASE WHEN EXCLUDED.last_seen > results.last_seen THEN EXCLUDED.browser_family ELSE results.browser_family END,
			os_family = CASE WHEN EXCLUDED.last_seen > results.last_seen THEN EXCLUDED.os_family ELSE results.os_family END,
			device_family = CASE WHEN EXCLUDED.last_seen > results.last_seen THEN EXCLUDED.device_family ELSE results.device_family END,
			device_type = CASE WHEN EXCLUDED.last_seen > results.last_seen THEN EXCLUDED.device_type ELSE results.device_type END,
			parsed_json = CASE WHEN EXCLUDED.last_seen > results.last_seen THEN EXCLUDED.parsed_json ELSE results.parsed_json END,
			last_seen = GREATEST(results.last_seen, EXCLUDED.last_seen)
	`,
		r.ID.Hex(),
		r.UserAgent,
		r.Parsed.Browser.Family,
		r.Parsed.OS.Family,
		r.Parsed.Device.Family,
		r.DeviceType.String(),
		string(parsed),
		r.Count,
		r.FirstSeen,
		r.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

const selectPostgresResults = `
	SELECT id, user_agent, device_type, parsed_json::text, count, first_seen, last_seen
	FROM results`

// Get retrieves the result for id.
func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*types.Result, error) {
	row := s.pool.QueryRow(ctx, selectPostgresResults+` WHERE id = $1`, id.Hex())
	r, err := scanPostgresResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// All retrieves every result, most frequently seen first.
func (s *PostgresStore) All(ctx context.Context) ([]*types.Result, error) {
	rows, err := s.pool.Query(ctx, selectPostgresResults+` ORDER BY count DESC, user_agent ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	results := []*types.Result{}
	for rows.Next() {
		r, err := scanPostgresResult(rows)
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
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM results").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting results: %w", err)
	}
	return count, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPostgresResult(row pgx.Row) (*types.Result, error) {
	var (
		r          types.Result
		id         string
		deviceType string
		parsedJSON string
	)
	err := row.Scan(&id, &r.UserAgent, &deviceType, &parsedJSON, &r.Count, &r.FirstSeen, &r.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning result: %w", err)
	}
	if r.ID, err = types.ParseID(id); err != nil {
		return nil, fmt.Errorf("parsing result id: %w", err)
	}
	if err := decodeColumns(&r, deviceType, []byte(parsedJSON)); err != nil {
		return nil, err
	}
	r.FirstSeen = r.FirstSeen.UTC()
	r.LastSeen = r.LastSeen.UTC()
	return &r, nil
}
