package api

import (
	"net/http"

	"github.com/nmtamm/IntelligentTourPlanner/internal/api/handlers"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
	"github.com/nmtamm/IntelligentTourPlanner/internal/services"
)

// Deps bundles the ports and services the HTTP layer is wired against.
type Deps struct {
	Trips     ports.TripRepository
	Places    ports.PlaceRepository
	Geocoder  ports.Geocoder
	Converter ports.CurrencyConverter
	Planner   *services.RoutePlanner
	Resolver  *services.CostResolver
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	tripHandler := &handlers.TripHandler{
		Repo:     deps.Trips,
		Planner:  deps.Planner,
		Resolver: deps.Resolver,
	}
	placeHandler := &handlers.PlaceHandler{Repo: deps.Places}
	geocodeHandler := &handlers.GeocodeHandler{Geocoder: deps.Geocoder}
	exchangeHandler := &handlers.ExchangeHandler{Converter: deps.Converter}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/trips", tripHandler.Trips)
	mux.HandleFunc("/trips/optimize", tripHandler.Optimize)
	mux.HandleFunc("/trips/guidance", tripHandler.Guidance)
	mux.HandleFunc("/trips/convert", tripHandler.Convert)
	mux.HandleFunc("/trips/totals", tripHandler.Totals)
	mux.HandleFunc("/geocode", geocodeHandler.Forward)
	mux.HandleFunc("/geocode/reverse", geocodeHandler.Reverse)
	mux.HandleFunc("/exchangerate", exchangeHandler.Convert)
	mux.HandleFunc("/places", placeHandler.List)

	return requestIDMiddleware(loggingMiddleware(mux))
}
