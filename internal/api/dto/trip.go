package dto

import (
	"encoding/json"
	"fmt"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
)

// Amount is free-text cost input. Clients may send a JSON string ("10-20",
// "~15") or a bare number; numbers are normalized to their string form.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*a = Amount(n.String())
		return nil
	}

	return fmt.Errorf("amount must be a string or a number, got %s", string(b))
}

type CostItemDTO struct {
	ID               string `json:"id,omitempty"`
	Detail           string `json:"detail"`
	Amount           Amount `json:"amount"`
	OriginalAmount   Amount `json:"original_amount"`
	OriginalCurrency string `json:"original_currency"`
}

type DestinationDTO struct {
	ID        string        `json:"id,omitempty"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Costs     []CostItemDTO `json:"costs"`
}

type DayDTO struct {
	ID                     string           `json:"id"`
	DayNumber              int              `json:"day_number"`
	Destinations           []DestinationDTO `json:"destinations"`
	OptimizedRoute         []DestinationDTO `json:"optimized_route,omitempty"`
	RouteDistanceKm        float64          `json:"route_distance_km,omitempty"`
	RouteDurationMin       float64          `json:"route_duration_min,omitempty"`
	RouteGeometry          string           `json:"route_geometry,omitempty"`
	RouteInstructions      [][]string       `json:"route_instructions,omitempty"`
	RouteSegmentGeometries []string         `json:"route_segment_geometries,omitempty"`
}

type TripDTO struct {
	Name      string   `json:"name"`
	Members   int      `json:"members"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Currency  string   `json:"currency"`
	Days      []DayDTO `json:"days"`
}

func FromDomainTrip(t domain.Trip) TripDTO {
	days := make([]DayDTO, 0, len(t.Days))
	for _, d := range t.Days {
		days = append(days, fromDomainDay(d))
	}
	return TripDTO{
		Name:      t.Name,
		Members:   t.Members,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		Currency:  t.Currency,
		Days:      days,
	}
}

func fromDomainDay(d domain.Day) DayDTO {
	dests := make([]DestinationDTO, 0, len(d.Destinations))
	for _, dest := range d.Destinations {
		dests = append(dests, FromDomainDestination(dest))
	}

	var route []DestinationDTO
	for _, dest := range d.OptimizedRoute {
		route = append(route, FromDomainDestination(dest))
	}

	return DayDTO{
		ID:                     d.ID,
		DayNumber:              d.DayNumber,
		Destinations:           dests,
		OptimizedRoute:         route,
		RouteDistanceKm:        d.RouteDistanceKm,
		RouteDurationMin:       d.RouteDurationMin,
		RouteGeometry:          d.RouteGeometry,
		RouteInstructions:      d.RouteInstructions,
		RouteSegmentGeometries: d.RouteSegmentGeometries,
	}
}

func FromDomainDestination(d domain.Destination) DestinationDTO {
	costs := make([]CostItemDTO, 0, len(d.Costs))
	for _, c := range d.Costs {
		costs = append(costs, CostItemDTO{
			ID:               c.ID,
			Detail:           c.Detail,
			Amount:           Amount(c.DisplayAmount),
			OriginalAmount:   Amount(c.OriginalAmount),
			OriginalCurrency: c.OriginalCurrency,
		})
	}
	return DestinationDTO{
		ID:        d.ID,
		Name:      d.Name,
		Address:   d.Address,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Costs:     costs,
	}
}

// ToDomain rebuilds the domain tree from a decoded payload. Day ids and
// numbers are recomputed from position, never trusted from the wire;
// destinations and costs without ids get fresh ones.
func (t TripDTO) ToDomain() domain.Trip {
	trip := domain.Trip{
		Name:      t.Name,
		Members:   t.Members,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		Currency:  t.Currency,
	}

	if len(t.Days) == 0 {
		return trip.AddDay()
	}

	for _, dayDTO := range t.Days {
		trip = trip.AddDay()
		day := trip.Days[len(trip.Days)-1]

		for _, destDTO := range dayDTO.Destinations {
			day = day.WithDestination(destDTO.toDomain())
		}

		// Rebuild the optimized permutation against the fresh destination
		// values so identities line up.
		if len(dayDTO.OptimizedRoute) > 0 && len(dayDTO.OptimizedRoute) == len(day.Destinations) {
			route := make([]domain.Destination, 0, len(dayDTO.OptimizedRoute))
			used := make([]bool, len(day.Destinations))
			ok := true
			for _, p := range dayDTO.OptimizedRoute {
				idx := -1
				for i, dest := range day.Destinations {
					if !used[i] && dest.Name == p.Name {
						idx = i
						break
					}
				}
				if idx < 0 {
					ok = false
					break
				}
				used[idx] = true
				route = append(route, day.Destinations[idx])
			}
			if ok {
				day = day.WithRoute(domain.RouteResult{
					Route:             route,
					DistanceKm:        dayDTO.RouteDistanceKm,
					DurationMin:       dayDTO.RouteDurationMin,
					Geometry:          dayDTO.RouteGeometry,
					Instructions:      dayDTO.RouteInstructions,
					SegmentGeometries: dayDTO.RouteSegmentGeometries,
				})
			}
		}

		trip = trip.WithDay(day)
	}

	return trip
}

func (d DestinationDTO) toDomain() domain.Destination {
	dest := domain.NewDestination(d.Name, d.Address, d.Latitude, d.Longitude)
	if d.ID != "" {
		dest.ID = d.ID
	}

	if len(d.Costs) > 0 {
		costs := make([]domain.CostItem, 0, len(d.Costs))
		for _, c := range d.Costs {
			item := domain.CostItem{
				ID:               c.ID,
				Detail:           c.Detail,
				DisplayAmount:    string(c.Amount),
				OriginalAmount:   string(c.OriginalAmount),
				OriginalCurrency: c.OriginalCurrency,
			}
			if item.ID == "" {
				item.ID = domain.NewCostItemID()
			}
			costs = append(costs, item)
		}
		dest.Costs = costs
	}

	return dest
}
