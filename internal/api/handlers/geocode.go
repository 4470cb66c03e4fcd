package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/nmtamm/IntelligentTourPlanner/internal/api/dto"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// GeocodeHandler exposes forward and reverse geocoding lookups.
type GeocodeHandler struct {
	Geocoder ports.Geocoder
}

func (h *GeocodeHandler) Forward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}

	result, err := h.Geocoder.Forward(r.Context(), query)
	if err != nil {
		log.Printf("forward geocode failed: q=%q err=%v", query, err)
		writeError(w, r, http.StatusBadGateway, "geocoding failed")
		return
	}

	writeJSON(w, r, http.StatusOK, geocodeResponse(result))
}

func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, r, http.StatusBadRequest, "lat and lon out of range")
		return
	}

	result, err := h.Geocoder.Reverse(r.Context(), lat, lon)
	if err != nil {
		log.Printf("reverse geocode failed: lat=%v lon=%v err=%v", lat, lon, err)
		writeError(w, r, http.StatusBadGateway, "geocoding failed")
		return
	}

	writeJSON(w, r, http.StatusOK, geocodeResponse(result))
}

func geocodeResponse(g ports.GeocodeResult) dto.GeocodeResponse {
	return dto.GeocodeResponse{
		Lat:     g.Lat,
		Lon:     g.Lon,
		Name:    g.Name,
		Address: g.Address,
	}
}
