package dto

// SaveTripRequest stores a whole trip. A zero trip_id creates a new plan.
type SaveTripRequest struct {
	TripID int64   `json:"trip_id"`
	Trip   TripDTO `json:"trip"`
}

type TripResponse struct {
	TripID int64   `json:"trip_id"`
	Trip   TripDTO `json:"trip"`
}

type TripSummaryResponse struct {
	TripID   int64  `json:"trip_id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	DayCount int    `json:"day_count"`
}

type ListTripsResponse struct {
	Trips []TripSummaryResponse `json:"trips"`
}

// OptimizeRequest optimizes one day of a stored trip. When current_location
// is present the route is anchored at the traveler's position; when local is
// true (or no remote optimizer is configured) the local heuristic is used.
type OptimizeRequest struct {
	TripID          int64        `json:"trip_id"`
	DayID           string       `json:"day_id"`
	CurrentLocation *Coordinates `json:"current_location"`
	Local           bool         `json:"local"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ConvertTripRequest switches a stored trip's display currency.
type ConvertTripRequest struct {
	TripID   int64  `json:"trip_id"`
	Currency string `json:"currency"`
}

type GeocodeResponse struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
}

type ExchangeRateResponse struct {
	Amount float64 `json:"amount"`
}

type TotalResponse struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	IsApprox bool    `json:"is_approx"`
	Display  string  `json:"display"`
}

type TripTotalsResponse struct {
	Currency  string          `json:"currency"`
	TripTotal TotalResponse   `json:"trip_total"`
	DayTotals []TotalResponse `json:"day_totals"`
}

type GuidanceResponse struct {
	From         DestinationDTO `json:"from"`
	To           DestinationDTO `json:"to"`
	Geometry     [][]float64    `json:"geometry"`
	Instructions []string       `json:"instructions"`
}
