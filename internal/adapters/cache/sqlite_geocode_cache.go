package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// SQLite backed cache mapping geocode queries to resolved locations.
// Query keys are expected to be consistent (e.g., normalized)
// by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch the cached result for a query, if present.
func (s *SqliteGeocodeCache) Get(ctx context.Context, query string) (ports.GeocodeResult, bool, error) {
	if s.DB == nil {
		return ports.GeocodeResult{}, false, errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return ports.GeocodeResult{}, false, errors.New("get geocode cache: query must not be empty")
	}

	q := `
	SELECT lat, lon, name, address
    FROM geocode_cache
    WHERE query = ?;
	`

	var out ports.GeocodeResult
	err := s.DB.QueryRowContext(ctx, q, query).Scan(&out.Lat, &out.Lon, &out.Name, &out.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.GeocodeResult{}, false, nil
	}
	if err != nil {
		return ports.GeocodeResult{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return out, true, nil
}

// Store a query -> location mapping in the cache.
func (s *SqliteGeocodeCache) Put(ctx context.Context, query string, result ports.GeocodeResult) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("insert geocode cache: query must not be empty")
	}

	q := `
	INSERT OR REPLACE INTO geocode_cache (
        query,
        lat,
        lon,
        name,
        address
    )
    VALUES (?, ?, ?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, q, query, result.Lat, result.Lon, result.Name, result.Address); err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}
