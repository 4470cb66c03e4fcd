package geo

import (
	"math"

	"github.com/twpayne/go-polyline"
)

// DecodePolyline decodes an encoded polyline (signed, scaled lat/lng delta
// encoding at 1e-5 precision) into ordered [lat, lon] pairs.
//
// Decoding is lenient: a malformed tail loses only the pairs it would have
// produced, and any decoded pair containing a non-finite value is dropped
// rather than failing the whole segment.
func DecodePolyline(encoded string) [][]float64 {
	if encoded == "" {
		return nil
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil && len(coords) == 0 {
		return nil
	}

	out := make([][]float64, 0, len(coords))
	for _, c := range coords {
		if len(c) != 2 || !isFinite(c[0]) || !isFinite(c[1]) {
			continue
		}
		out = append(out, []float64{c[0], c[1]})
	}
	return out
}

// EncodePolyline encodes ordered [lat, lon] pairs into a polyline string.
func EncodePolyline(coords [][]float64) string {
	if len(coords) == 0 {
		return ""
	}
	return string(polyline.EncodeCoords(coords))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
