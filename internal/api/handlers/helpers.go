package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nmtamm/IntelligentTourPlanner/internal/adapters/repositories"
	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/services"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps known failure categories onto HTTP statuses.
// Validation failures carry their code so clients can show the matching
// message; everything unknown becomes an opaque 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{
			"error": verr.Message,
			"code":  verr.Code,
		})
		return
	}

	if errors.Is(err, repositories.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return
	}

	if errors.Is(err, services.ErrSuperseded) {
		writeError(w, r, http.StatusConflict, "superseded by a newer request")
		return
	}

	var oerr *domain.OptimizationError
	var cerr *domain.ConversionError
	if errors.As(err, &oerr) || errors.As(err, &cerr) {
		log.Printf("upstream failure: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusBadGateway, "upstream service failure")
		return
	}

	log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// decodeBody reads a single JSON object into dst, rejecting trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if dec.More() {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
