package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// CostItem is one charge attached to a Destination. OriginalAmount and
// OriginalCurrency are set at creation/edit time and are the source of truth;
// DisplayAmount is a derived cache recomputed from them on every currency
// switch, never edited independently.
type CostItem struct {
	ID               string
	Detail           string
	DisplayAmount    string
	OriginalAmount   string
	OriginalCurrency string
}

// Destination is a place to visit with location and one or more costs.
// ID is assigned at creation and stable thereafter; it correlates a
// Destination across Destinations and OptimizedRoute.
type Destination struct {
	ID        string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Costs     []CostItem
}

// Day holds an ordered destination list and, once computed, an optimized
// visiting order with its route metrics. ID and DayNumber always equal the
// Day's 1-based position within the Trip and are recomputed on every
// structural change to the day list.
//
// OptimizedRoute, when non-empty, is a permutation of Destinations.
// Instructions and SegmentGeometries are parallel arrays where segment i
// connects OptimizedRoute[i] to OptimizedRoute[i+1].
type Day struct {
	ID                     string
	DayNumber              int
	Destinations           []Destination
	OptimizedRoute         []Destination
	RouteDistanceKm        float64
	RouteDurationMin       float64
	RouteGeometry          string
	RouteInstructions      [][]string
	RouteSegmentGeometries []string
}

// Trip is the top-level itinerary container. All operations are value
// operations: they return a new Trip and leave the receiver untouched, so
// concurrent readers never observe a half-applied mutation.
type Trip struct {
	Name      string
	Members   int
	StartDate string
	EndDate   string
	Currency  string
	Days      []Day
}

// RouteResult is the outcome of a route optimization over one Day.
// Route lists persisted destinations only: a synthetic current-location
// anchor supplied to the optimizer is excluded.
type RouteResult struct {
	Route             []Destination
	DistanceKm        float64
	DurationMin       float64
	Geometry          string
	Instructions      [][]string
	SegmentGeometries []string
}

// NewTrip creates a Trip with a single empty day.
func NewTrip(name, currency string) Trip {
	t := Trip{Name: name, Currency: currency}
	return t.AddDay()
}

// NewDestination builds a Destination with a fresh id and the mandatory
// initial zero-valued cost item.
func NewDestination(name, address string, lat, lon float64) Destination {
	id := uuid.NewString()
	return Destination{
		ID:        id,
		Name:      name,
		Address:   address,
		Latitude:  lat,
		Longitude: lon,
		Costs: []CostItem{
			{ID: uuid.NewString(), OriginalAmount: "0"},
		},
	}
}

// NewCostItemID mints an identifier for a cost item created outside
// NewDestination (manual adds, decoded payloads without ids).
func NewCostItemID() string {
	return uuid.NewString()
}

// AddDay appends an empty Day with the next sequential id and day number.
func (t Trip) AddDay() Trip {
	days := make([]Day, len(t.Days), len(t.Days)+1)
	copy(days, t.Days)
	days = append(days, Day{})
	t.Days = renumberDays(days)
	return t
}

// RemoveDay removes the Day and renumbers the remainder. Removing the last
// remaining Day is rejected.
func (t Trip) RemoveDay(dayID string) (Trip, error) {
	if len(t.Days) == 1 {
		return t, NewValidationError(CodeMinimumOneDay, "a trip must keep at least one day")
	}

	days := make([]Day, 0, len(t.Days)-1)
	found := false
	for _, d := range t.Days {
		if d.ID == dayID {
			found = true
			continue
		}
		days = append(days, d)
	}
	if !found {
		return t, fmt.Errorf("remove day: no day with id %q", dayID)
	}

	t.Days = renumberDays(days)
	return t, nil
}

// InsertDayAfter inserts a new empty Day immediately after the given Day and
// renumbers. If the id is absent the trip is returned unchanged.
func (t Trip) InsertDayAfter(dayID string) Trip {
	idx := -1
	for i, d := range t.Days {
		if d.ID == dayID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return t
	}

	days := make([]Day, 0, len(t.Days)+1)
	days = append(days, t.Days[:idx+1]...)
	days = append(days, Day{})
	days = append(days, t.Days[idx+1:]...)
	t.Days = renumberDays(days)
	return t
}

// SwapDays exchanges two Days' positions and renumbers. No-op when either id
// is absent or they are equal.
func (t Trip) SwapDays(dayIDA, dayIDB string) Trip {
	if dayIDA == dayIDB {
		return t
	}

	ia, ib := -1, -1
	for i, d := range t.Days {
		switch d.ID {
		case dayIDA:
			ia = i
		case dayIDB:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return t
	}

	days := make([]Day, len(t.Days))
	copy(days, t.Days)
	days[ia], days[ib] = days[ib], days[ia]
	t.Days = renumberDays(days)
	return t
}

// Day returns the Day with the given id.
func (t Trip) Day(dayID string) (Day, bool) {
	for _, d := range t.Days {
		if d.ID == dayID {
			return d, true
		}
	}
	return Day{}, false
}

// WithDay replaces the Day carrying the same id and returns the new Trip.
// Unknown ids leave the trip unchanged.
func (t Trip) WithDay(day Day) Trip {
	days := make([]Day, len(t.Days))
	copy(days, t.Days)
	for i, d := range days {
		if d.ID == day.ID {
			days[i] = day
			break
		}
	}
	t.Days = days
	return t
}

// Day ids double as array positions; deriving both here on every day-list
// mutation keeps them from ever drifting apart.
func renumberDays(days []Day) []Day {
	for i := range days {
		days[i].ID = strconv.Itoa(i + 1)
		days[i].DayNumber = i + 1
	}
	return days
}

// WithDestination appends a destination. The optimized route is cleared:
// its position-derived metrics would be stale.
func (d Day) WithDestination(dest Destination) Day {
	dests := make([]Destination, len(d.Destinations), len(d.Destinations)+1)
	copy(dests, d.Destinations)
	d.Destinations = append(dests, dest)
	return d.clearRoute()
}

// WithoutDestination removes the destination with the given id and clears
// the optimized route.
func (d Day) WithoutDestination(destinationID string) Day {
	dests := make([]Destination, 0, len(d.Destinations))
	for _, dest := range d.Destinations {
		if dest.ID != destinationID {
			dests = append(dests, dest)
		}
	}
	d.Destinations = dests
	return d.clearRoute()
}

// RenameDestination rewrites the name of the matching destination in both
// the destination list and the optimized route. The route itself stays
// valid: metrics derive from positions, not names.
func (d Day) RenameDestination(destinationID, name string) Day {
	d.Destinations = renameIn(d.Destinations, destinationID, name)
	d.OptimizedRoute = renameIn(d.OptimizedRoute, destinationID, name)
	return d
}

func renameIn(dests []Destination, id, name string) []Destination {
	out := make([]Destination, len(dests))
	copy(out, dests)
	for i, dest := range out {
		if dest.ID == id {
			dest.Name = name
			out[i] = dest
		}
	}
	return out
}

// WithDestinationReplaced swaps in an edited destination (costs, address)
// by id, in both lists, without invalidating the route.
func (d Day) WithDestinationReplaced(dest Destination) Day {
	d.Destinations = replaceIn(d.Destinations, dest)
	d.OptimizedRoute = replaceIn(d.OptimizedRoute, dest)
	return d
}

func replaceIn(dests []Destination, dest Destination) []Destination {
	out := make([]Destination, len(dests))
	copy(out, dests)
	for i := range out {
		if out[i].ID == dest.ID {
			out[i] = dest
		}
	}
	return out
}

// WithRoute stores an optimization result on the Day, replacing any prior
// optimized route.
func (d Day) WithRoute(res RouteResult) Day {
	d.OptimizedRoute = res.Route
	d.RouteDistanceKm = res.DistanceKm
	d.RouteDurationMin = res.DurationMin
	d.RouteGeometry = res.Geometry
	d.RouteInstructions = res.Instructions
	d.RouteSegmentGeometries = res.SegmentGeometries
	return d
}

func (d Day) clearRoute() Day {
	d.OptimizedRoute = nil
	d.RouteDistanceKm = 0
	d.RouteDurationMin = 0
	d.RouteGeometry = ""
	d.RouteInstructions = nil
	d.RouteSegmentGeometries = nil
	return d
}

// WithCostItem appends a cost item to the destination.
func (dst Destination) WithCostItem(c CostItem) Destination {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	costs := make([]CostItem, len(dst.Costs), len(dst.Costs)+1)
	copy(costs, dst.Costs)
	dst.Costs = append(costs, c)
	return dst
}

// WithoutCostItem removes the cost item with the given id. Removing the last
// remaining cost item is rejected.
func (dst Destination) WithoutCostItem(costID string) (Destination, error) {
	if len(dst.Costs) == 1 {
		return dst, NewValidationError(CodeMinimumOneCostItem, "a destination must keep at least one cost item")
	}

	costs := make([]CostItem, 0, len(dst.Costs)-1)
	for _, c := range dst.Costs {
		if c.ID != costID {
			costs = append(costs, c)
		}
	}
	dst.Costs = costs
	return dst, nil
}

// WithCostItemReplaced swaps in an edited cost item by id.
func (dst Destination) WithCostItemReplaced(c CostItem) Destination {
	costs := make([]CostItem, len(dst.Costs))
	copy(costs, dst.Costs)
	for i := range costs {
		if costs[i].ID == c.ID {
			costs[i] = c
		}
	}
	dst.Costs = costs
	return dst
}
