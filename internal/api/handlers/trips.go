package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nmtamm/IntelligentTourPlanner/internal/api/dto"
	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
	"github.com/nmtamm/IntelligentTourPlanner/internal/services"
)

// TripHandler exposes trip persistence plus the day-level operations that
// need stored state: optimization, guidance lookup, currency conversion and
// totals.
type TripHandler struct {
	Repo     ports.TripRepository
	Planner  *services.RoutePlanner
	Resolver *services.CostResolver
}

// Trips dispatches /trips by method: list or load on GET, save on POST,
// delete on DELETE.
func (h *TripHandler) Trips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("id") == "" {
			h.list(w, r)
			return
		}
		h.get(w, r)
	case http.MethodPost:
		h.save(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func tripIDParam(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *TripHandler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Repo.ListTrips(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListTripsResponse{Trips: make([]dto.TripSummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		res.Trips = append(res.Trips, dto.TripSummaryResponse{
			TripID:   s.TripID,
			Name:     s.Name,
			Currency: s.Currency,
			DayCount: s.DayCount,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *TripHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	trip, err := h.Repo.GetTrip(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.TripResponse{TripID: id, Trip: dto.FromDomainTrip(trip)})
}

func (h *TripHandler) save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveTripRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Trip.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "trip name is required")
		return
	}
	if strings.TrimSpace(req.Trip.Currency) == "" {
		writeError(w, r, http.StatusBadRequest, "trip currency is required")
		return
	}

	trip := req.Trip.ToDomain()
	id, err := h.Repo.SaveTrip(r.Context(), req.TripID, trip)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if req.TripID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, dto.TripResponse{TripID: id, Trip: dto.FromDomainTrip(trip)})
}

func (h *TripHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	if err := h.Repo.DeleteTrip(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Optimize computes an optimized visiting order for one day of a stored
// trip and persists the updated trip.
func (h *TripHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TripID <= 0 || req.DayID == "" {
		writeError(w, r, http.StatusBadRequest, "trip_id and day_id are required")
		return
	}

	trip, err := h.Repo.GetTrip(r.Context(), req.TripID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.Local {
		trip, err = h.Planner.OptimizeDayLocal(trip, req.DayID)
	} else {
		var current *domain.Coordinates
		if req.CurrentLocation != nil {
			current = &domain.Coordinates{Lat: req.CurrentLocation.Lat, Lon: req.CurrentLocation.Lon}
		}
		trip, err = h.Planner.OptimizeDay(r.Context(), trip, req.DayID, current)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if _, err := h.Repo.SaveTrip(r.Context(), req.TripID, trip); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.TripResponse{TripID: req.TripID, Trip: dto.FromDomainTrip(trip)})
}

// Guidance returns navigation data for one segment of a day's optimized
// route.
func (h *TripHandler) Guidance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := tripIDParam(r, "trip_id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "trip_id must be a positive integer")
		return
	}
	dayID := r.URL.Query().Get("day_id")
	segment, err := strconv.Atoi(r.URL.Query().Get("segment"))
	if dayID == "" || err != nil {
		writeError(w, r, http.StatusBadRequest, "day_id and segment are required")
		return
	}

	trip, err := h.Repo.GetTrip(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	day, found := trip.Day(dayID)
	if !found {
		writeError(w, r, http.StatusNotFound, "no such day")
		return
	}

	g, err := services.GuidanceForSegment(day, segment)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GuidanceResponse{
		From:         dto.FromDomainDestination(g.From),
		To:           dto.FromDomainDestination(g.To),
		Geometry:     g.Geometry,
		Instructions: g.Instructions,
	})
}

// Convert switches a stored trip's display currency, re-resolving every cost
// item, and persists the result. All-or-nothing: on failure the stored trip
// is untouched.
func (h *TripHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ConvertTripRequest
	if !decodeBody(w, r, &req) {
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.TripID <= 0 || currency == "" {
		writeError(w, r, http.StatusBadRequest, "trip_id and currency are required")
		return
	}

	trip, err := h.Repo.GetTrip(r.Context(), req.TripID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	converted, err := h.Resolver.ConvertTrip(r.Context(), trip, currency)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if _, err := h.Repo.SaveTrip(r.Context(), req.TripID, converted); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.TripResponse{TripID: req.TripID, Trip: dto.FromDomainTrip(converted)})
}

// Totals returns per-day and whole-trip cost totals in the requested
// currency (defaulting to the trip's own).
func (h *TripHandler) Totals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := tripIDParam(r, "trip_id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "trip_id must be a positive integer")
		return
	}

	trip, err := h.Repo.GetTrip(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if currency == "" {
		currency = trip.Currency
	}

	res := dto.TripTotalsResponse{Currency: currency}
	for _, day := range trip.Days {
		total, err := h.Resolver.DayTotal(r.Context(), day, currency)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		res.DayTotals = append(res.DayTotals, totalResponse(total))
		res.TripTotal.Min += total.Min
		res.TripTotal.Max += total.Max
		res.TripTotal.IsApprox = res.TripTotal.IsApprox || total.IsApprox
	}
	res.TripTotal.Display = services.FormatAmount(services.ParsedAmount{
		Min:      res.TripTotal.Min,
		Max:      res.TripTotal.Max,
		IsApprox: res.TripTotal.IsApprox,
	})

	writeJSON(w, r, http.StatusOK, res)
}

func totalResponse(a services.ParsedAmount) dto.TotalResponse {
	return dto.TotalResponse{
		Min:      a.Min,
		Max:      a.Max,
		IsApprox: a.IsApprox,
		Display:  services.FormatAmount(a),
	}
}
