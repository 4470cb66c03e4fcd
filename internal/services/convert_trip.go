package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
)

type costItemRef struct {
	dayIdx  int
	destIdx int
	costIdx int
}

type convertResult struct {
	ref      costItemRef
	resolved domain.CostItem
	err      error
}

// ConvertTrip re-resolves every cost item's display amount into the given
// display currency. Per-item conversions run concurrently, bounded, and the
// whole operation is all-or-nothing: on any failure the original trip is
// returned unchanged so the caller never displays a mixed-currency total.
func (r *CostResolver) ConvertTrip(ctx context.Context, trip domain.Trip, displayCurrency string) (domain.Trip, error) {
	refs := make([]costItemRef, 0, 32)
	for di, day := range trip.Days {
		for si, dest := range day.Destinations {
			for ci := range dest.Costs {
				refs = append(refs, costItemRef{dayIdx: di, destIdx: si, costIdx: ci})
			}
		}
	}
	if len(refs) == 0 {
		return trip, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, 5)
	resultsCh := make(chan convertResult, len(refs))
	var wg sync.WaitGroup

	for _, ref := range refs {
		item := trip.Days[ref.dayIdx].Destinations[ref.destIdx].Costs[ref.costIdx]

		wg.Add(1)
		go func(ref costItemRef, item domain.CostItem) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			resolved, err := r.ResolveCostItem(ctx, item, displayCurrency)
			if err != nil {
				resultsCh <- convertResult{ref: ref, err: fmt.Errorf("convert trip: cost item %q: %w", item.ID, err)}
				cancel()
				return
			}
			resultsCh <- convertResult{ref: ref, resolved: resolved}
		}(ref, item)
	}

	wg.Wait()
	close(resultsCh)

	resolved := make(map[costItemRef]domain.CostItem, len(refs))
	var convertErr error
	for res := range resultsCh {
		if res.err != nil {
			if convertErr == nil {
				convertErr = res.err
			}
			continue
		}
		resolved[res.ref] = res.resolved
	}
	if convertErr != nil {
		return trip, convertErr
	}

	// All conversions succeeded: rebuild the changed path of the tree.
	days := make([]domain.Day, len(trip.Days))
	copy(days, trip.Days)
	for di := range days {
		dests := make([]domain.Destination, len(days[di].Destinations))
		copy(dests, days[di].Destinations)
		for si := range dests {
			costs := make([]domain.CostItem, len(dests[si].Costs))
			copy(costs, dests[si].Costs)
			dests[si].Costs = costs
		}
		days[di].Destinations = dests
	}
	for ref, item := range resolved {
		days[ref.dayIdx].Destinations[ref.destIdx].Costs[ref.costIdx] = item
	}

	trip.Days = days
	trip.Currency = displayCurrency
	return trip, nil
}
