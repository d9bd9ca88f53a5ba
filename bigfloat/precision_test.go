package bigfloat

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimbs(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		zoomLog float64
		limbs   int
	}{
		{0, MinLimbs},
		{-100, MinLimbs},
		{13, MinLimbs},
		{50, MinLimbs},
		{66, 4},  // 96 bits
		{67, 5},
		{100, 6}, // 130 bits
		{162, 8},
		{MaxZoomLog(), MaxLimbs},
		{MaxZoomLog() + 1, MaxLimbs},
		{10000, MaxLimbs},
		{math.Inf(1), MaxLimbs},
		{math.NaN(), MinLimbs},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			l := Limbs(test.zoomLog)
			a.Equal(test.limbs, l)
			a.GreaterOrEqual(l, MinLimbs)
			a.LessOrEqual(l, MaxLimbs)
		})
	}
}

func TestLimbsMonotonic(t *testing.T) {
	a := assert.New(t)
	prev := Limbs(0)
	for z := 0.0; z < 1000; z += 0.5 {
		l := Limbs(z)
		a.GreaterOrEqual(l, prev)
		prev = l
	}
}
