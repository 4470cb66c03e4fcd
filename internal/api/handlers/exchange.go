package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/nmtamm/IntelligentTourPlanner/internal/api/dto"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// ExchangeHandler proxies single-amount currency conversions.
type ExchangeHandler struct {
	Converter ports.CurrencyConverter
}

func (h *ExchangeHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "amount must be a number")
		return
	}

	source := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("source")))
	target := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("target")))
	if source == "" || target == "" {
		writeError(w, r, http.StatusBadRequest, "source and target are required")
		return
	}

	out, err := h.Converter.Convert(r.Context(), amount, source, target)
	if err != nil {
		log.Printf("exchange rate lookup failed: %s->%s err=%v", source, target, err)
		writeError(w, r, http.StatusBadGateway, "conversion failed")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ExchangeRateResponse{Amount: out})
}
