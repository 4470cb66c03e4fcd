package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// SQLite-backed implementation of the TripRepository port.
//
// A trip is stored as one trips row plus per-day and per-destination child
// rows. Saving replaces the whole subtree inside a single transaction, so a
// loaded trip is always one consistent snapshot.
type SqliteTripRepository struct{ DB *sql.DB }

func NewSqliteTripRepository(db *sql.DB) *SqliteTripRepository {
	return &SqliteTripRepository{DB: db}
}

var ErrTripNotFound = errors.New("trip not found")

// SaveTrip stores the trip and returns its identifier.
func (s *SqliteTripRepository) SaveTrip(ctx context.Context, tripID int64, trip domain.Trip) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite trip repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save trip: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if tripID == 0 {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO trips (name, members, start_date, end_date, currency)
		VALUES (?, ?, ?, ?, ?);
		`, trip.Name, trip.Members, trip.StartDate, trip.EndDate, trip.Currency)
		if err != nil {
			return 0, fmt.Errorf("save trip: insert trips row: %w", err)
		}
		tripID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("save trip: last insert id: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
		UPDATE trips
		SET name = ?, members = ?, start_date = ?, end_date = ?, currency = ?
		WHERE trip_id = ?;
		`, trip.Name, trip.Members, trip.StartDate, trip.EndDate, trip.Currency, tripID)
		if err != nil {
			return 0, fmt.Errorf("save trip: update trips row: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("save trip: rows affected: %w", err)
		}
		if n == 0 {
			return 0, fmt.Errorf("save trip id=%d: %w", tripID, ErrTripNotFound)
		}

		// Replace the whole subtree.
		if err := deleteChildren(ctx, tx, tripID); err != nil {
			return 0, fmt.Errorf("save trip: %w", err)
		}
	}

	if err := insertDays(ctx, tx, tripID, trip.Days); err != nil {
		return 0, fmt.Errorf("save trip: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save trip: commit tx: %w", err)
	}

	return tripID, nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, tripID int64) error {
	for _, table := range []string{"cost_items", "destinations", "days"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE trip_id = ?;`, tripID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertDays(ctx context.Context, tx *sql.Tx, tripID int64, days []domain.Day) error {
	dayStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO days (
		trip_id,
		day_number,
		optimized_order,
		route_distance_km,
		route_duration_min,
		route_geometry,
		route_instructions,
		route_segment_geometries
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare day insert: %w", err)
	}
	defer dayStmt.Close()

	destStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO destinations (
		destination_id,
		trip_id,
		day_number,
		position,
		name,
		address,
		latitude,
		longitude
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare destination insert: %w", err)
	}
	defer destStmt.Close()

	costStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO cost_items (
		cost_id,
		destination_id,
		trip_id,
		position,
		detail,
		display_amount,
		original_amount,
		original_currency
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare cost insert: %w", err)
	}
	defer costStmt.Close()

	for _, day := range days {
		order := make([]string, 0, len(day.OptimizedRoute))
		for _, d := range day.OptimizedRoute {
			order = append(order, d.ID)
		}

		orderJSON, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("day %d: marshal optimized order: %w", day.DayNumber, err)
		}
		instructionsJSON, err := json.Marshal(day.RouteInstructions)
		if err != nil {
			return fmt.Errorf("day %d: marshal instructions: %w", day.DayNumber, err)
		}
		segmentsJSON, err := json.Marshal(day.RouteSegmentGeometries)
		if err != nil {
			return fmt.Errorf("day %d: marshal segment geometries: %w", day.DayNumber, err)
		}

		if _, err := dayStmt.ExecContext(ctx,
			tripID, day.DayNumber, string(orderJSON),
			day.RouteDistanceKm, day.RouteDurationMin, day.RouteGeometry,
			string(instructionsJSON), string(segmentsJSON),
		); err != nil {
			return fmt.Errorf("insert day %d: %w", day.DayNumber, err)
		}

		for pos, dest := range day.Destinations {
			if _, err := destStmt.ExecContext(ctx,
				dest.ID, tripID, day.DayNumber, pos,
				dest.Name, dest.Address, dest.Latitude, dest.Longitude,
			); err != nil {
				return fmt.Errorf("insert destination %q: %w", dest.Name, err)
			}

			for cpos, cost := range dest.Costs {
				if _, err := costStmt.ExecContext(ctx,
					cost.ID, dest.ID, tripID, cpos,
					cost.Detail, cost.DisplayAmount, cost.OriginalAmount, cost.OriginalCurrency,
				); err != nil {
					return fmt.Errorf("insert cost item for %q: %w", dest.Name, err)
				}
			}
		}
	}

	return nil
}

// GetTrip loads a stored trip with days, destinations and costs in order.
func (s *SqliteTripRepository) GetTrip(ctx context.Context, tripID int64) (domain.Trip, error) {
	if s.DB == nil {
		return domain.Trip{}, errors.New("sqlite trip repository: DB is nil")
	}

	var trip domain.Trip
	err := s.DB.QueryRowContext(ctx, `
	SELECT name, members, start_date, end_date, currency
	FROM trips
	WHERE trip_id = ?;
	`, tripID).Scan(&trip.Name, &trip.Members, &trip.StartDate, &trip.EndDate, &trip.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trip{}, fmt.Errorf("get trip id=%d: %w", tripID, ErrTripNotFound)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("get trip: query trips table: %w", err)
	}

	days, err := s.loadDays(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("get trip id=%d: %w", tripID, err)
	}
	trip.Days = days

	return trip, nil
}

type storedDay struct {
	day            domain.Day
	optimizedOrder []string
}

func (s *SqliteTripRepository) loadDays(ctx context.Context, tripID int64) ([]domain.Day, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		day_number,
		optimized_order,
		route_distance_km,
		route_duration_min,
		route_geometry,
		route_instructions,
		route_segment_geometries
	FROM days
	WHERE trip_id = ?
	ORDER BY day_number;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("query days table: %w", err)
	}
	defer rows.Close()

	stored := make([]storedDay, 0, 8)
	for rows.Next() {
		var d storedDay
		var orderJSON, instructionsJSON, segmentsJSON string
		if err := rows.Scan(
			&d.day.DayNumber, &orderJSON,
			&d.day.RouteDistanceKm, &d.day.RouteDurationMin, &d.day.RouteGeometry,
			&instructionsJSON, &segmentsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan day row: %w", err)
		}

		if err := json.Unmarshal([]byte(orderJSON), &d.optimizedOrder); err != nil {
			return nil, fmt.Errorf("day %d: parse optimized order: %w", d.day.DayNumber, err)
		}
		if err := json.Unmarshal([]byte(instructionsJSON), &d.day.RouteInstructions); err != nil {
			return nil, fmt.Errorf("day %d: parse instructions: %w", d.day.DayNumber, err)
		}
		if err := json.Unmarshal([]byte(segmentsJSON), &d.day.RouteSegmentGeometries); err != nil {
			return nil, fmt.Errorf("day %d: parse segment geometries: %w", d.day.DayNumber, err)
		}

		d.day.ID = fmt.Sprintf("%d", d.day.DayNumber)
		stored = append(stored, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("day row iteration: %w", err)
	}

	destsByDay, err := s.loadDestinations(ctx, tripID)
	if err != nil {
		return nil, err
	}

	days := make([]domain.Day, 0, len(stored))
	for _, d := range stored {
		d.day.Destinations = destsByDay[d.day.DayNumber]

		// Rebuild the optimized permutation from stored destination IDs.
		// An order referencing a destination that no longer exists means
		// the stored route is stale; drop it rather than fail the load.
		byID := make(map[string]domain.Destination, len(d.day.Destinations))
		for _, dest := range d.day.Destinations {
			byID[dest.ID] = dest
		}

		route := make([]domain.Destination, 0, len(d.optimizedOrder))
		valid := true
		for _, id := range d.optimizedOrder {
			dest, ok := byID[id]
			if !ok {
				valid = false
				break
			}
			route = append(route, dest)
		}
		if valid && len(route) > 0 {
			d.day.OptimizedRoute = route
		} else {
			d.day.OptimizedRoute = nil
			if !valid {
				d.day.RouteDistanceKm = 0
				d.day.RouteDurationMin = 0
				d.day.RouteGeometry = ""
				d.day.RouteInstructions = nil
				d.day.RouteSegmentGeometries = nil
			}
		}

		days = append(days, d.day)
	}

	return days, nil
}

func (s *SqliteTripRepository) loadDestinations(ctx context.Context, tripID int64) (map[int][]domain.Destination, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT destination_id, day_number, name, address, latitude, longitude
	FROM destinations
	WHERE trip_id = ?
	ORDER BY day_number, position;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("query destinations table: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]domain.Destination)
	for rows.Next() {
		var dest domain.Destination
		var dayNumber int
		if err := rows.Scan(&dest.ID, &dayNumber, &dest.Name, &dest.Address, &dest.Latitude, &dest.Longitude); err != nil {
			return nil, fmt.Errorf("scan destination row: %w", err)
		}
		out[dayNumber] = append(out[dayNumber], dest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("destination row iteration: %w", err)
	}

	costs, err := s.loadCosts(ctx, tripID)
	if err != nil {
		return nil, err
	}

	for dayNumber, dests := range out {
		for i := range dests {
			dests[i].Costs = costs[dests[i].ID]
		}
		out[dayNumber] = dests
	}

	return out, nil
}

func (s *SqliteTripRepository) loadCosts(ctx context.Context, tripID int64) (map[string][]domain.CostItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT cost_id, destination_id, detail, display_amount, original_amount, original_currency
	FROM cost_items
	WHERE trip_id = ?
	ORDER BY destination_id, position;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("query cost_items table: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.CostItem)
	for rows.Next() {
		var cost domain.CostItem
		var destID string
		if err := rows.Scan(&cost.ID, &destID, &cost.Detail, &cost.DisplayAmount, &cost.OriginalAmount, &cost.OriginalCurrency); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		out[destID] = append(out[destID], cost)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cost row iteration: %w", err)
	}

	return out, nil
}

// ListTrips returns summaries of all stored trips.
func (s *SqliteTripRepository) ListTrips(ctx context.Context) ([]ports.TripSummary, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite trip repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT t.trip_id, t.name, t.currency, COUNT(d.day_number)
	FROM trips t
	LEFT JOIN days d ON d.trip_id = t.trip_id
	GROUP BY t.trip_id
	ORDER BY t.trip_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trips table: %w", err)
	}
	defer rows.Close()

	summaries := make([]ports.TripSummary, 0, 16)
	for rows.Next() {
		var sm ports.TripSummary
		if err := rows.Scan(&sm.TripID, &sm.Name, &sm.Currency, &sm.DayCount); err != nil {
			return nil, fmt.Errorf("list trips: scan row: %w", err)
		}
		summaries = append(summaries, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}

	return summaries, nil
}

// DeleteTrip removes a stored trip and its whole subtree.
func (s *SqliteTripRepository) DeleteTrip(ctx context.Context, tripID int64) error {
	if s.DB == nil {
		return errors.New("sqlite trip repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete trip: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteChildren(ctx, tx, tripID); err != nil {
		return fmt.Errorf("delete trip id=%d: %w", tripID, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE trip_id = ?;`, tripID)
	if err != nil {
		return fmt.Errorf("delete trip id=%d: %w", tripID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trip id=%d: rows affected: %w", tripID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete trip id=%d: %w", tripID, ErrTripNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete trip: commit tx: %w", err)
	}

	return nil
}
