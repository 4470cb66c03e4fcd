package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nmtamm/IntelligentTourPlanner/internal/adapters/currency"
	"github.com/nmtamm/IntelligentTourPlanner/internal/api/dto"
	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
	"github.com/nmtamm/IntelligentTourPlanner/internal/services"
)

// memoryTripRepository keeps trips in a map; enough for handler tests.
type memoryTripRepository struct {
	mu     sync.Mutex
	nextID int64
	trips  map[int64]domain.Trip
}

func newMemoryTripRepository() *memoryTripRepository {
	return &memoryTripRepository{nextID: 1, trips: make(map[int64]domain.Trip)}
}

func (m *memoryTripRepository) SaveTrip(ctx context.Context, tripID int64, trip domain.Trip) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tripID == 0 {
		tripID = m.nextID
		m.nextID++
	} else if _, ok := m.trips[tripID]; !ok {
		return 0, fmt.Errorf("save trip id=%d: no such trip", tripID)
	}
	m.trips[tripID] = trip
	return tripID, nil
}

func (m *memoryTripRepository) GetTrip(ctx context.Context, tripID int64) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return domain.Trip{}, fmt.Errorf("get trip id=%d: no such trip", tripID)
	}
	return trip, nil
}

func (m *memoryTripRepository) ListTrips(ctx context.Context) ([]ports.TripSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.TripSummary, 0, len(m.trips))
	for id, t := range m.trips {
		out = append(out, ports.TripSummary{TripID: id, Name: t.Name, Currency: t.Currency, DayCount: len(t.Days)})
	}
	return out, nil
}

func (m *memoryTripRepository) DeleteTrip(ctx context.Context, tripID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, tripID)
	return nil
}

func newTripHandler() (*TripHandler, *memoryTripRepository) {
	repo := newMemoryTripRepository()
	return &TripHandler{
		Repo:    repo,
		Planner: services.NewRoutePlanner(nil),
		Resolver: services.NewCostResolver(currency.NewMockConverter(map[string]float64{
			"USD|VND": 25000,
		})),
	}, repo
}

const saveBody = `{
	"trip": {
		"name": "Vietnam",
		"currency": "USD",
		"days": [{
			"destinations": [
				{"name": "A", "latitude": 10.0, "longitude": 106.0,
				 "costs": [{"amount": "10", "original_amount": 10, "original_currency": "USD"}]},
				{"name": "B", "latitude": 10.1, "longitude": 106.1,
				 "costs": [{"original_amount": "20-30", "original_currency": "USD"}]},
				{"name": "C", "latitude": 10.2, "longitude": 106.2}
			]
		}]
	}
}`

func saveSampleTrip(t *testing.T, h *TripHandler) int64 {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(saveBody))
	rec := httptest.NewRecorder()
	h.Trips(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res dto.TripResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	return res.TripID
}

func TestSaveAndGetTrip(t *testing.T) {
	h, _ := newTripHandler()
	id := saveSampleTrip(t, h)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/trips?id=%d", id), nil)
	rec := httptest.NewRecorder()
	h.Trips(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var res dto.TripResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Trip.Days) != 1 || res.Trip.Days[0].DayNumber != 1 {
		t.Fatalf("unexpected days: %+v", res.Trip.Days)
	}
	dests := res.Trip.Days[0].Destinations
	if len(dests) != 3 {
		t.Fatalf("got %d destinations, want 3", len(dests))
	}
	// Numeric amount input is normalized to its string form.
	if dests[0].Costs[0].OriginalAmount != "10" {
		t.Fatalf("numeric amount not normalized: %q", dests[0].Costs[0].OriginalAmount)
	}
	// A destination without costs gets the mandatory zero item.
	if len(dests[2].Costs) != 1 || dests[2].Costs[0].OriginalAmount != "0" {
		t.Fatalf("missing initial cost item: %+v", dests[2].Costs)
	}
}

func TestSaveTripRejectsMissingFields(t *testing.T) {
	h, _ := newTripHandler()

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(`{"trip":{"currency":"USD"}}`))
	rec := httptest.NewRecorder()
	h.Trips(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOptimizeEndpointLocalFallback(t *testing.T) {
	h, _ := newTripHandler()
	id := saveSampleTrip(t, h)

	body := fmt.Sprintf(`{"trip_id": %d, "day_id": "1"}`, id)
	req := httptest.NewRequest(http.MethodPost, "/trips/optimize", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Optimize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("optimize status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res dto.TripResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Trip.Days[0].OptimizedRoute) != 3 {
		t.Fatalf("route not stored: %+v", res.Trip.Days[0])
	}
}

func TestOptimizeEndpointInsufficientDestinations(t *testing.T) {
	h, repo := newTripHandler()

	trip := domain.NewTrip("solo", "USD")
	day := trip.Days[0].WithDestination(domain.NewDestination("A", "", 0, 0))
	id, _ := repo.SaveTrip(context.Background(), 0, trip.WithDay(day))

	body := fmt.Sprintf(`{"trip_id": %d, "day_id": "1", "local": true}`, id)
	req := httptest.NewRequest(http.MethodPost, "/trips/optimize", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Optimize(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var res map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res["code"] != domain.CodeInsufficientDestinations {
		t.Fatalf("code = %q, want %q", res["code"], domain.CodeInsufficientDestinations)
	}
}

func TestGuidanceEndpointInvalidSegment(t *testing.T) {
	h, _ := newTripHandler()
	id := saveSampleTrip(t, h)

	// No optimized route yet: every segment is invalid.
	url := fmt.Sprintf("/trips/guidance?trip_id=%d&day_id=1&segment=0", id)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.Guidance(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var res map[string]string
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res["code"] != domain.CodeInvalidSegment {
		t.Fatalf("code = %q, want %q", res["code"], domain.CodeInvalidSegment)
	}
}

func TestGuidanceEndpointAfterOptimize(t *testing.T) {
	h, _ := newTripHandler()
	id := saveSampleTrip(t, h)

	body := fmt.Sprintf(`{"trip_id": %d, "day_id": "1", "local": true}`, id)
	req := httptest.NewRequest(http.MethodPost, "/trips/optimize", strings.NewReader(body))
	h.Optimize(httptest.NewRecorder(), req)

	url := fmt.Sprintf("/trips/guidance?trip_id=%d&day_id=1&segment=1", id)
	rec := httptest.NewRecorder()
	h.Guidance(rec, httptest.NewRequest(http.MethodGet, url, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res dto.GuidanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.From.Name == "" || res.To.Name == "" {
		t.Fatalf("segment endpoints missing: %+v", res)
	}
}

func TestConvertEndpointSwitchesCurrency(t *testing.T) {
	h, _ := newTripHandler()
	id := saveSampleTrip(t, h)

	body := fmt.Sprintf(`{"trip_id": %d, "currency": "vnd"}`, id)
	req := httptest.NewRequest(http.MethodPost, "/trips/convert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Convert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("convert status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res dto.TripResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Trip.Currency != "VND" {
		t.Fatalf("currency = %q, want VND", res.Trip.Currency)
	}
	if got := res.Trip.Days[0].Destinations[0].Costs[0].Amount; got != "250000" {
		t.Fatalf("display amount = %q, want 250000", got)
	}
}

func TestConvertEndpointFailureLeavesTripStored(t *testing.T) {
	h, repo := newTripHandler()
	id := saveSampleTrip(t, h)

	body := fmt.Sprintf(`{"trip_id": %d, "currency": "XXX"}`, id)
	req := httptest.NewRequest(http.MethodPost, "/trips/convert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Convert(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	stored, err := repo.GetTrip(context.Background(), id)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.Currency != "USD" {
		t.Fatalf("failed conversion changed the stored trip: %q", stored.Currency)
	}
}

func TestTotalsEndpoint(t *testing.T) {
	h, _ := newTripHandler()
	id := saveSampleTrip(t, h)

	url := fmt.Sprintf("/trips/totals?trip_id=%d", id)
	rec := httptest.NewRecorder()
	h.Totals(rec, httptest.NewRequest(http.MethodGet, url, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res dto.TripTotalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 10 exact + 20-30 range + 0 = 30-40, approximate.
	if res.TripTotal.Min != 30 || res.TripTotal.Max != 40 || !res.TripTotal.IsApprox {
		t.Fatalf("trip total = %+v", res.TripTotal)
	}
	if res.TripTotal.Display != "30-40" {
		t.Fatalf("display = %q, want 30-40", res.TripTotal.Display)
	}
}
