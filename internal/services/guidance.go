package services

import (
	"fmt"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/geo"
)

// SegmentGuidance is everything a navigation view needs for one leg of an
// optimized route: the two endpoint destinations, the leg's decoded path,
// and its turn-by-turn instructions.
type SegmentGuidance struct {
	From         domain.Destination
	To           domain.Destination
	Geometry     [][]float64
	Instructions []string
}

// GuidanceForSegment resolves segment segmentIndex of the day's optimized
// route. A route of length N has segments 0..N-2; anything else, or an empty
// route, is an invalid-segment validation failure.
//
// Pure lookup: the day is never mutated. Geometry decoding drops non-finite
// pairs instead of failing the segment.
func GuidanceForSegment(day domain.Day, segmentIndex int) (SegmentGuidance, error) {
	n := len(day.OptimizedRoute)
	if n < 2 {
		return SegmentGuidance{}, domain.NewValidationError(domain.CodeInvalidSegment,
			"day has no optimized route to navigate")
	}
	if segmentIndex < 0 || segmentIndex > n-2 {
		return SegmentGuidance{}, domain.NewValidationError(domain.CodeInvalidSegment,
			fmt.Sprintf("segment %d out of range [0, %d]", segmentIndex, n-2))
	}

	g := SegmentGuidance{
		From: day.OptimizedRoute[segmentIndex],
		To:   day.OptimizedRoute[segmentIndex+1],
	}

	if segmentIndex < len(day.RouteSegmentGeometries) {
		g.Geometry = geo.DecodePolyline(day.RouteSegmentGeometries[segmentIndex])
	}
	if segmentIndex < len(day.RouteInstructions) {
		g.Instructions = day.RouteInstructions[segmentIndex]
	}

	return g, nil
}
