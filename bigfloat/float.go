// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package bigfloat implements a multi-limb binary floating-point number
// and a complex number built from two of them.
//
// A Float is a sign, an exponent counted in limbs, and a mantissa made of
// LimbBits-wide limbs, most significant first:
//
//	value = sign * 0.l0 l1 l2 ... ln (base 2^LimbBits) * 2^(LimbBits*exp)
//
// The limb width is small enough for a limb product, and a whole column of
// the multiplication convolution, to stay exact in 53-bit arithmetic.
// All operations return new values and never modify their operands.
package bigfloat

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/avdva/deepzoom/ds"
	mu "github.com/avdva/deepzoom/internal/mathutil"
)

const (
	// LimbBits is the width of a limb in bits.
	LimbBits = 24
	// LimbBase is the radix of the mantissa.
	LimbBase = 1 << LimbBits

	limbMask = LimbBase - 1
)

// Float is an arbitrary-precision binary floating-point number.
// The zero value is a zero of precision 0, which behaves as zero in all operations.
type Float struct {
	neg  bool
	exp  int
	mant []uint32
}

// Zero returns the canonical zero with prec limbs.
func Zero(prec int) Float {
	return Float{mant: make([]uint32, normPrec(prec))}
}

func normPrec(prec int) int {
	if prec < 1 {
		return 1
	}
	return prec
}

// FromFloat64 converts x into a Float with prec limbs.
// The conversion is exact for any prec >= 4: the leading limb may carry a single bit.
// Infinities and NaNs are not expected and produce zero.
func FromFloat64(x float64, prec int) Float {
	prec = normPrec(prec)
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return Zero(prec)
	}
	res := Float{neg: x < 0, mant: make([]uint32, prec)}
	m, e2 := math.Frexp(math.Abs(x)) // 0.5 <= m < 1
	// move the exponent up to a limb boundary, the mantissa absorbs the difference,
	// so that m*2^24 >= 1 and the leading limb is never zero.
	res.exp = mu.CeilDiv(e2, LimbBits)
	m = math.Ldexp(m, e2-res.exp*LimbBits)
	for i := range res.mant {
		m *= LimbBase
		d := math.Floor(m)
		res.mant[i] = uint32(d)
		m -= d
		if m == 0 {
			break
		}
	}
	return res
}

// Prec returns the number of limbs.
func (f Float) Prec() int {
	return len(f.mant)
}

// Exp returns the exponent in limbs.
func (f Float) Exp() int {
	return f.exp
}

// Limbs returns a copy of the mantissa.
func (f Float) Limbs() []uint32 {
	return append([]uint32(nil), f.mant...)
}

// IsZero returns true if f == 0.
func (f Float) IsZero() bool {
	// a normalized non-zero value always has a non-zero leading limb.
	return len(f.mant) == 0 || f.mant[0] == 0
}

// Sign returns -1 if f < 0, 0 if f == 0, 1 if f > 0.
func (f Float) Sign() int {
	if f.IsZero() {
		return 0
	}
	if f.neg {
		return -1
	}
	return 1
}

// Neg returns -f.
func (f Float) Neg() Float {
	if f.IsZero() {
		return f
	}
	f.neg = !f.neg
	return f
}

// Abs returns |f|.
func (f Float) Abs() Float {
	f.neg = false
	return f
}

// SetPrec returns f with prec limbs.
// Extra limbs are truncated, missing ones are zero-filled.
func (f Float) SetPrec(prec int) Float {
	prec = normPrec(prec)
	if prec == len(f.mant) {
		return f
	}
	if f.IsZero() {
		return Zero(prec)
	}
	mant := make([]uint32, prec)
	copy(mant, f.mant)
	return Float{neg: f.neg, exp: f.exp, mant: mant}
}

// Float64 returns the nearest float64 approximation of f.
// The conversion is lossy and only meant for places where native precision suffices.
func (f Float) Float64() float64 {
	if f.IsZero() {
		return 0
	}
	// collect the top 64 significant bits, the rest only matters as a sticky bit for rounding.
	var m uint64
	var n int
	var sticky bool
	for i, l := range f.mant {
		w := LimbBits
		if i == 0 {
			w = bits.Len32(l)
		}
		switch {
		case n+w <= 64:
			m = m<<uint(w) | uint64(l)
			n += w
		case n < 64:
			take := uint(64 - n)
			rest := uint(w) - take
			m = m<<take | uint64(l)>>rest
			sticky = sticky || l&(1<<rest-1) != 0
			n = 64
		default:
			sticky = sticky || l != 0
		}
	}
	// the full mantissa has bits.Len32(l0)+LimbBits*(prec-1) bits, m holds the top n of them.
	total := bits.Len32(f.mant[0]) + LimbBits*(len(f.mant)-1)
	e := total - n + LimbBits*(f.exp-len(f.mant))
	if shift := minSubnormalExp - e; shift > 0 && e+n-1 < minNormalExp {
		// a subnormal result has fewer than 53 bits, round to them here,
		// so that neither float64(m) nor Ldexp rounds again.
		m, e = roundShift(m, sticky, uint(shift)), minSubnormalExp
	} else if sticky {
		m |= 1
	}
	res := math.Ldexp(float64(m), e)
	if f.neg {
		return -res
	}
	return res
}

const (
	minNormalExp    = -1022
	minSubnormalExp = -1074
)

// roundShift returns m / 2^shift rounded half to even.
// sticky marks nonzero bits below m.
func roundShift(m uint64, sticky bool, shift uint) uint64 {
	if shift > 64 {
		return 0
	}
	var q, rem, half uint64
	if shift == 64 {
		rem, half = m, 1<<63
	} else {
		q, rem, half = m>>shift, m&(1<<shift-1), 1<<(shift-1)
	}
	if rem > half || rem == half && (sticky || q&1 == 1) {
		q++
	}
	return q
}

// HiLo returns f as a double-single pair.
func (f Float) HiLo() ds.Pair {
	return ds.Split(f.Float64())
}

// CmpAbs compares |f| and |other|.
// Returns -1 if |f| < |other|, 0 if |f| == |other|, 1 if |f| > |other|.
func (f Float) CmpAbs(other Float) int {
	fz, oz := f.IsZero(), other.IsZero()
	switch {
	case fz && oz:
		return 0
	case fz:
		return -1
	case oz:
		return 1
	}
	if f.exp != other.exp {
		return mu.IntSign(f.exp - other.exp)
	}
	n := mu.MaxInt(len(f.mant), len(other.mant))
	for i := 0; i < n; i++ {
		if c := mu.Uint64Cmp(uint64(limbAt(f.mant, i)), uint64(limbAt(other.mant, i))); c != 0 {
			return c
		}
	}
	return 0
}

// Cmp compares two values.
// Returns -1 if f < other, 0 if f == other, 1 if f > other.
func (f Float) Cmp(other Float) int {
	s1, s2 := f.Sign(), other.Sign()
	if s1 != s2 {
		return mu.IntSign(s1 - s2)
	}
	return f.CmpAbs(other) * s1
}

// Add returns f+other with the precision of the larger operand.
func (f Float) Add(other Float) Float {
	prec := mu.MaxInt(len(f.mant), len(other.mant))
	if f.IsZero() {
		return other.SetPrec(prec)
	}
	if other.IsZero() {
		return f.SetPrec(prec)
	}
	if f.neg == other.neg {
		// f+other
		// or -f+(-other) = -(f+other)
		return addAbs(f, other, prec, f.neg)
	}
	switch f.CmpAbs(other) {
	case 1: // f-other or -(f-other)
		return subAbs(f, other, prec, f.neg)
	case -1:
		return subAbs(other, f, prec, other.neg)
	default:
		return Zero(prec)
	}
}

// Sub returns f-other.
func (f Float) Sub(other Float) Float {
	return f.Add(other.Neg())
}

// Double returns 2*f.
func (f Float) Double() Float {
	return f.Add(f)
}

// Mul returns f*other truncated to the precision of the larger operand.
func (f Float) Mul(other Float) Float {
	prec := mu.MaxInt(len(f.mant), len(other.mant))
	if f.IsZero() || other.IsZero() {
		return Zero(prec)
	}
	// acc[i+j+1] collects l_i*l_j; every column stays below 2^53.
	acc := make([]uint64, len(f.mant)+len(other.mant))
	for i, a := range f.mant {
		if a == 0 {
			continue
		}
		for j, b := range other.mant {
			acc[i+j+1] += uint64(a) * uint64(b)
		}
	}
	for k := len(acc) - 1; k > 0; k-- {
		acc[k-1] += acc[k] >> LimbBits
		acc[k] &= limbMask
	}
	lead := 0
	for acc[lead] == 0 {
		lead++
	}
	res := Float{
		neg:  f.neg != other.neg,
		exp:  f.exp + other.exp - lead,
		mant: make([]uint32, prec),
	}
	for i := range res.mant {
		if k := lead + i; k < len(acc) {
			res.mant[i] = uint32(acc[k])
		}
	}
	return res
}

// Sqr returns f*f.
func (f Float) Sqr() Float {
	return f.Mul(f)
}

// String returns f formatted as the nearest float64.
func (f Float) String() string {
	return strconv.FormatFloat(f.Float64(), 'g', -1, 64)
}

// GoString returns debug string representation.
func (f Float) GoString() string {
	var builder strings.Builder
	builder.WriteString(f.String())
	builder.WriteString(" {")
	if f.neg {
		builder.WriteRune('-')
	} else {
		builder.WriteRune('+')
	}
	builder.WriteString(fmt.Sprintf(", %d, %v}", f.exp, f.mant))
	return builder.String()
}

// addAbs returns |a|+|b| with the given sign. Both values must be non-zero.
func addAbs(a, b Float, prec int, neg bool) Float {
	if a.exp < b.exp {
		a, b = b, a
	}
	acc := make([]uint64, prec)
	for i, l := range a.mant {
		acc[i] = uint64(l)
	}
	// alignment happens in whole limbs, the limbs of b shifted past prec are dropped.
	shift := a.exp - b.exp
	for i, l := range b.mant {
		j := i + shift
		if j >= prec {
			break
		}
		acc[j] += uint64(l)
	}
	for i := prec - 1; i > 0; i-- {
		acc[i-1] += acc[i] >> LimbBits
		acc[i] &= limbMask
	}
	res := Float{neg: neg, exp: a.exp, mant: make([]uint32, prec)}
	if carry := acc[0] >> LimbBits; carry > 0 {
		// mantissa overflow: shift right by one limb.
		acc[0] &= limbMask
		res.exp++
		res.mant[0] = uint32(carry)
		for i := 1; i < prec; i++ {
			res.mant[i] = uint32(acc[i-1])
		}
		return res
	}
	for i := range res.mant {
		res.mant[i] = uint32(acc[i])
	}
	return res
}

// subAbs returns |a|-|b| with the given sign. Requires |a| > |b| > 0.
func subAbs(a, b Float, prec int, neg bool) Float {
	acc := make([]int64, prec)
	for i, l := range a.mant {
		acc[i] = int64(l)
	}
	shift := a.exp - b.exp
	for i, l := range b.mant {
		j := i + shift
		if j >= prec {
			break
		}
		acc[j] -= int64(l)
	}
	for i := prec - 1; i > 0; i-- {
		if acc[i] < 0 {
			acc[i] += LimbBase
			acc[i-1]--
		}
	}
	res := Float{neg: neg, exp: a.exp, mant: make([]uint32, prec)}
	for i := range res.mant {
		res.mant[i] = uint32(acc[i])
	}
	return res.normalize()
}

// normalize strips leading zero limbs in place.
// An all-zero mantissa becomes the canonical zero.
func (f Float) normalize() Float {
	lead := 0
	for lead < len(f.mant) && f.mant[lead] == 0 {
		lead++
	}
	switch {
	case lead == len(f.mant):
		return Zero(len(f.mant))
	case lead > 0:
		n := copy(f.mant, f.mant[lead:])
		for i := n; i < len(f.mant); i++ {
			f.mant[i] = 0
		}
		f.exp -= lead
	}
	return f
}

func limbAt(mant []uint32, i int) uint32 {
	if i < len(mant) {
		return mant[i]
	}
	return 0
}
