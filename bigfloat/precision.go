package bigfloat

import (
	"math"

	mu "github.com/avdva/deepzoom/internal/mathutil"
)

const (
	// MinLimbs is the smallest precision Limbs returns.
	MinLimbs = 4
	// MaxLimbs caps the precision. Zooming deeper than MaxLimbs*LimbBits-PrecisionMargin
	// bits does not fail, the result just loses accuracy.
	MaxLimbs = 16
	// PrecisionMargin is the number of extra bits kept for round-off growth during iteration.
	PrecisionMargin = 30

	nativeBits = 53
)

// Limbs returns the number of limbs needed to iterate at the given zoom depth,
// where zoomLog is log2 of the magnification.
func Limbs(zoomLog float64) int {
	bits := math.Max(nativeBits, zoomLog+PrecisionMargin)
	return mu.ClampInt(mu.CeilLimbs(bits, LimbBits), MinLimbs, MaxLimbs)
}

// MaxZoomLog returns the deepest zoom, for which Limbs still provides the full margin.
func MaxZoomLog() float64 {
	return MaxLimbs*LimbBits - PrecisionMargin
}
