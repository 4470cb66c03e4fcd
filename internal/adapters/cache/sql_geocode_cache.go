package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nmtamm/IntelligentTourPlanner/internal/platform/obs"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// SQLGeocodeCache is a Postgres-backed cache mapping geocode queries to
// resolved locations.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch the cached result for a query, if present.
func (s *SQLGeocodeCache) Get(ctx context.Context, query string) (_ ports.GeocodeResult, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

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
    WHERE query = $1;
	`

	var out ports.GeocodeResult
	err = s.DB.QueryRowContext(ctx, q, query).Scan(&out.Lat, &out.Lon, &out.Name, &out.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.GeocodeResult{}, false, nil
	}
	if err != nil {
		return ports.GeocodeResult{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return out, true, nil
}

// Store a query -> location mapping in the cache.
func (s *SQLGeocodeCache) Put(ctx context.Context, query string, result ports.GeocodeResult) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("insert geocode cache: query must not be empty")
	}

	q := `
	INSERT INTO geocode_cache (query, lat, lon, name, address)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (query) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		name = EXCLUDED.name,
		address = EXCLUDED.address;
	`

	if _, err := s.DB.ExecContext(ctx, q, query, result.Lat, result.Lon, result.Name, result.Address); err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}
