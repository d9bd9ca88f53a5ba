package mathutil

import (
	"math"
	"unsafe"
)

// IntSign returns -1, 0 or 1.
func IntSign(v int) int {
	if v == 0 {
		return 0
	}
	return [...]int{1, -1}[uint(v)>>(unsafe.Sizeof(int(0))*8-1)]
}

// FloorDiv returns floor(a/b) for b > 0.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// CeilDiv returns ceil(a/b) for b > 0.
func CeilDiv(a, b int) int {
	return -FloorDiv(-a, b)
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CeilLimbs returns the number of w-bit limbs needed to hold bits bits.
// Non-finite or negative inputs yield 0.
func CeilLimbs(bits float64, w int) int {
	if bits <= 0 || math.IsNaN(bits) {
		return 0
	}
	if math.IsInf(bits, 1) || bits > float64(math.MaxInt32) {
		return math.MaxInt32
	}
	return int(math.Ceil(bits / float64(w)))
}

// Uint64Cmp compares a and b.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func Uint64Cmp(a, b uint64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
