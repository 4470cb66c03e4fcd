package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		trip_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		members INTEGER NOT NULL DEFAULT 1,
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL
	);
	`

	createDaysQuery := `
	CREATE TABLE IF NOT EXISTS days (
		trip_id INTEGER NOT NULL,
		day_number INTEGER NOT NULL,
		optimized_order TEXT NOT NULL DEFAULT '[]',
		route_distance_km REAL NOT NULL DEFAULT 0,
		route_duration_min REAL NOT NULL DEFAULT 0,
		route_geometry TEXT NOT NULL DEFAULT '',
		route_instructions TEXT NOT NULL DEFAULT '[]',
		route_segment_geometries TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (trip_id, day_number)
	);
	`

	createDestinationsQuery := `
	CREATE TABLE IF NOT EXISTS destinations (
		destination_id TEXT PRIMARY KEY,
		trip_id INTEGER NOT NULL,
		day_number INTEGER NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		latitude REAL NOT NULL,
		longitude REAL NOT NULL
	);
	`

	createCostItemsQuery := `
	CREATE TABLE IF NOT EXISTS cost_items (
		cost_id TEXT PRIMARY KEY,
		destination_id TEXT NOT NULL,
		trip_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		display_amount TEXT NOT NULL DEFAULT '',
		original_amount TEXT NOT NULL DEFAULT '',
		original_currency TEXT NOT NULL DEFAULT ''
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        query TEXT PRIMARY KEY,
        lat REAL NOT NULL,
        lon REAL NOT NULL,
        name TEXT NOT NULL DEFAULT '',
        address TEXT NOT NULL DEFAULT ''
    );
	`

	createPlacesQuery := `
	CREATE TABLE IF NOT EXISTS places (
		place_id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		rating REAL NOT NULL DEFAULT 0,
		price TEXT NOT NULL DEFAULT ''
	);
	`

	createDestinationIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_destinations_trip_day
    ON destinations(trip_id, day_number, position);
	`

	createCostIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_cost_items_trip
    ON cost_items(trip_id, destination_id, position);
	`

	statements := []string{
		createTripsQuery,
		createDaysQuery,
		createDestinationsQuery,
		createCostItemsQuery,
		createGeocodeCacheQuery,
		createPlacesQuery,
		createDestinationIndexQuery,
		createCostIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	PlaceID   int     `json:"place_id"`
	Title     string  `json:"title"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Rating    float64 `json:"rating"`
	Price     string  `json:"price"`
}

// Populate the database with importable places from a JSON file.
func SeedPlacesFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed places: parse json: %w", err)
	}

	rows := make([]PlaceSeed, 0, len(data))
	for i, item := range data {
		if item.PlaceID <= 0 {
			return fmt.Errorf("seed places: invalid place_id at index %d: %d", i+1, item.PlaceID)
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			return fmt.Errorf("seed places: item at index %d: title cannot be empty", i+1)
		}
		item.Title = title
		rows = append(rows, item)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT OR REPLACE INTO places (
		place_id,
		title,
		address,
		latitude,
		longitude,
		rating,
		price
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		if _, err := stmt.Exec(p.PlaceID, p.Title, p.Address, p.Latitude, p.Longitude, p.Rating, p.Price); err != nil {
			return fmt.Errorf("seed places: insert place_id=%d: %w", p.PlaceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}
