package ports

import "context"

// Geocode hit: coordinates plus the display name/address the provider knows
// the location under.
type GeocodeResult struct {
	Lat     float64
	Lon     float64
	Name    string
	Address string
}

// Contract for resolving free-text locations and map coordinates.
type Geocoder interface {
	// Forward resolves a free-text query to coordinates and a display address.
	Forward(ctx context.Context, query string) (GeocodeResult, error)
	// Reverse resolves a map coordinate to a name and address.
	Reverse(ctx context.Context, lat, lon float64) (GeocodeResult, error)
}
