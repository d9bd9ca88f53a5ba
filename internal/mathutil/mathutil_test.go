package mathutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorCeilDiv(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		a, b        int
		floor, ceil int
	}{
		{0, 24, 0, 0},
		{1, 24, 0, 1},
		{24, 24, 1, 1},
		{25, 24, 1, 2},
		{-1, 24, -1, 0},
		{-24, 24, -1, -1},
		{-25, 24, -2, -1},
		{83, 24, 3, 4},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			a.Equal(test.floor, FloorDiv(test.a, test.b))
			a.Equal(test.ceil, CeilDiv(test.a, test.b))
		})
	}
}

func TestClampInt(t *testing.T) {
	a := assert.New(t)
	a.Equal(4, ClampInt(1, 4, 16))
	a.Equal(16, ClampInt(100, 4, 16))
	a.Equal(7, ClampInt(7, 4, 16))
}

func TestCeilLimbs(t *testing.T) {
	a := assert.New(t)
	a.Equal(3, CeilLimbs(53, 24))
	a.Equal(4, CeilLimbs(96, 24))
	a.Equal(5, CeilLimbs(96.5, 24))
	a.Equal(0, CeilLimbs(-1, 24))
	a.Equal(0, CeilLimbs(math.NaN(), 24))
	a.Equal(math.MaxInt32, CeilLimbs(math.Inf(1), 24))
}

func TestSigns(t *testing.T) {
	a := assert.New(t)
	a.Equal(-1, IntSign(-3))
	a.Equal(0, IntSign(0))
	a.Equal(1, IntSign(3))
	a.Equal(-1, Uint64Cmp(1, 2))
	a.Equal(0, Uint64Cmp(2, 2))
	a.Equal(1, Uint64Cmp(3, 2))
}

func BenchmarkIntSign(b *testing.B) {
	var dummy int
	for i := 0; i < b.N; i++ {
		dummy += IntSign(i) + IntSign(-i) + IntSign(i-i)
	}
	// this metric is just to prevent unwanted optimisations in calculations of `dummy.`
	b.ReportMetric(float64(dummy), "dummy_metric")
}
