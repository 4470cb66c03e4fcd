package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// ParsedAmount is the numeric interpretation of a cost's free text.
// Min == Max and IsApprox == false for exact values.
type ParsedAmount struct {
	Min      float64
	Max      float64
	IsApprox bool
}

// CostResolver converts cost amounts between currencies and aggregates
// day/trip totals. Conversions always read from a cost item's original
// amount and currency, never from a previously converted value, so repeated
// display-currency toggles cannot drift.
type CostResolver struct {
	Converter ports.CurrencyConverter
}

func NewCostResolver(converter ports.CurrencyConverter) *CostResolver {
	return &CostResolver{Converter: converter}
}

// ParseAmount interprets free-text cost input.
//
// Accepted forms: a bare number ("10"), a hyphen or en-dash separated range
// ("10-20", swapped when reversed), and a "~" approximation prefix ("~15").
// Anything else degrades to a zero exact amount: cost entry is user free
// text and must never block aggregation.
func ParseAmount(raw string) ParsedAmount {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParsedAmount{}
	}

	approx := false
	if strings.HasPrefix(s, "~") {
		approx = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "~"))
	}

	s = strings.ReplaceAll(s, "–", "-")

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return ParsedAmount{Min: v, Max: v, IsApprox: approx}
	}

	// Split on the first interior hyphen so negative bounds stay intact.
	if i := strings.Index(s[1:], "-"); i >= 0 {
		lo, loErr := strconv.ParseFloat(strings.TrimSpace(s[:i+1]), 64)
		hi, hiErr := strconv.ParseFloat(strings.TrimSpace(s[i+2:]), 64)
		if loErr == nil && hiErr == nil {
			if lo > hi {
				lo, hi = hi, lo
			}
			return ParsedAmount{Min: lo, Max: hi, IsApprox: true}
		}
	}

	return ParsedAmount{}
}

// FormatAmount renders a parsed amount back to its canonical text form.
func FormatAmount(a ParsedAmount) string {
	min := strconv.FormatFloat(a.Min, 'f', -1, 64)
	if a.Min == a.Max {
		if a.IsApprox {
			return "~" + min
		}
		return min
	}
	return min + "-" + strconv.FormatFloat(a.Max, 'f', -1, 64)
}

// Convert converts an amount between currencies via the conversion service.
// Identity conversions never leave the process.
func (r *CostResolver) Convert(ctx context.Context, amount float64, source, target string) (float64, error) {
	if source == target || amount == 0 {
		return amount, nil
	}
	if r.Converter == nil {
		return 0, &domain.ConversionError{Cause: fmt.Errorf("no currency converter configured")}
	}

	out, err := r.Converter.Convert(ctx, amount, source, target)
	if err != nil {
		return 0, &domain.ConversionError{Cause: err}
	}
	return out, nil
}

// ResolveCostItem returns a copy of the cost item whose DisplayAmount
// expresses the original amount in the display currency. The original
// amount and currency are left untouched, which makes repeated resolution
// with the same display currency idempotent.
func (r *CostResolver) ResolveCostItem(ctx context.Context, c domain.CostItem, displayCurrency string) (domain.CostItem, error) {
	parsed := ParseAmount(c.OriginalAmount)

	min, err := r.Convert(ctx, parsed.Min, c.OriginalCurrency, displayCurrency)
	if err != nil {
		return c, err
	}
	max := min
	if parsed.Max != parsed.Min {
		max, err = r.Convert(ctx, parsed.Max, c.OriginalCurrency, displayCurrency)
		if err != nil {
			return c, err
		}
	}

	c.DisplayAmount = FormatAmount(ParsedAmount{Min: min, Max: max, IsApprox: parsed.IsApprox})
	return c, nil
}

// DayTotal sums all cost items of a day in the display currency. A single
// approximate component makes the whole total approximate.
func (r *CostResolver) DayTotal(ctx context.Context, day domain.Day, displayCurrency string) (ParsedAmount, error) {
	var total ParsedAmount
	for _, dest := range day.Destinations {
		for _, c := range dest.Costs {
			parsed := ParseAmount(c.OriginalAmount)

			min, err := r.Convert(ctx, parsed.Min, c.OriginalCurrency, displayCurrency)
			if err != nil {
				return ParsedAmount{}, fmt.Errorf("day %d total: %w", day.DayNumber, err)
			}
			max := min
			if parsed.Max != parsed.Min {
				max, err = r.Convert(ctx, parsed.Max, c.OriginalCurrency, displayCurrency)
				if err != nil {
					return ParsedAmount{}, fmt.Errorf("day %d total: %w", day.DayNumber, err)
				}
			}

			total.Min += min
			total.Max += max
			total.IsApprox = total.IsApprox || parsed.IsApprox
		}
	}
	return total, nil
}

// TripTotal sums all days in the display currency.
func (r *CostResolver) TripTotal(ctx context.Context, trip domain.Trip, displayCurrency string) (ParsedAmount, error) {
	var total ParsedAmount
	for _, day := range trip.Days {
		dayTotal, err := r.DayTotal(ctx, day, displayCurrency)
		if err != nil {
			return ParsedAmount{}, fmt.Errorf("trip total: %w", err)
		}
		total.Min += dayTotal.Min
		total.Max += dayTotal.Max
		total.IsApprox = total.IsApprox || dayTotal.IsApprox
	}
	return total, nil
}
