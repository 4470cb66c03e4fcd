package domain

// Place is an importable point of interest from a bulk places dataset.
// Importing one creates a regular Destination on the selected day.
type Place struct {
	PlaceID   int
	Title     string
	Address   string
	Latitude  float64
	Longitude float64
	Rating    float64
	Price     string
}

// AsDestination converts an imported place into a Destination.
func (p Place) AsDestination() Destination {
	return NewDestination(p.Title, p.Address, p.Latitude, p.Longitude)
}
