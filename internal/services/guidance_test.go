package services

import (
	"errors"
	"testing"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/geo"
)

func optimizedDay(t *testing.T) domain.Day {
	t.Helper()

	a := domain.NewDestination("A", "", 10.0, 106.0)
	b := domain.NewDestination("B", "", 10.1, 106.1)
	c := domain.NewDestination("C", "", 10.2, 106.2)

	seg0 := geo.EncodePolyline([][]float64{{10.0, 106.0}, {10.1, 106.1}})
	seg1 := geo.EncodePolyline([][]float64{{10.1, 106.1}, {10.2, 106.2}})

	day := domain.Day{ID: "1", DayNumber: 1, Destinations: []domain.Destination{a, b, c}}
	return day.WithRoute(domain.RouteResult{
		Route:             []domain.Destination{a, b, c},
		Instructions:      [][]string{{"Head north", "Arrive at B"}, {"Continue", "Arrive at C"}},
		SegmentGeometries: []string{seg0, seg1},
	})
}

func TestGuidanceForSegment(t *testing.T) {
	day := optimizedDay(t)

	g, err := GuidanceForSegment(day, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.From.Name != "A" || g.To.Name != "B" {
		t.Fatalf("got %s -> %s, want A -> B", g.From.Name, g.To.Name)
	}
	if len(g.Instructions) != 2 || g.Instructions[0] != "Head north" {
		t.Fatalf("unexpected instructions: %v", g.Instructions)
	}
	if len(g.Geometry) != 2 {
		t.Fatalf("got %d geometry points, want 2", len(g.Geometry))
	}

	g, err = GuidanceForSegment(day, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.From.Name != "B" || g.To.Name != "C" {
		t.Fatalf("got %s -> %s, want B -> C", g.From.Name, g.To.Name)
	}
}

func TestGuidanceForSegmentRejectsOutOfRange(t *testing.T) {
	day := optimizedDay(t)

	for _, idx := range []int{-1, 2, 99} {
		_, err := GuidanceForSegment(day, idx)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Code != domain.CodeInvalidSegment {
			t.Fatalf("segment %d: got %v, want invalid-segment", idx, err)
		}
	}
}

func TestGuidanceForSegmentRequiresARoute(t *testing.T) {
	day := domain.Day{ID: "1", DayNumber: 1}

	_, err := GuidanceForSegment(day, 0)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Code != domain.CodeInvalidSegment {
		t.Fatalf("got %v, want invalid-segment", err)
	}

	// A single-point route has no segments either.
	day.OptimizedRoute = []domain.Destination{domain.NewDestination("A", "", 0, 0)}
	if _, err := GuidanceForSegment(day, 0); err == nil {
		t.Fatalf("expected error for single-point route")
	}
}
