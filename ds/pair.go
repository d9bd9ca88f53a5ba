// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package ds implements double-single numbers: an extended-precision value
// stored as an unevaluated sum of two float32 values.
// It is the format shared by the camera state and the data uploaded to a GPU,
// where float32 is the only reliably available floating-point type.
package ds

import (
	"fmt"
	"math"
)

// Pair is a double-single number Hi+Lo, where Lo holds the rounding residual of Hi.
// |Lo| <= ulp(Hi)/2 for normalized pairs.
type Pair struct {
	Hi, Lo float32
}

// Zero is the zero pair.
var Zero Pair

// Split converts a float64 value into a pair.
// About 48 bits of the mantissa survive the conversion.
func Split(x float64) Pair {
	hi := float32(x)
	if math.IsInf(float64(hi), 0) || math.IsNaN(x) {
		return Pair{Hi: hi}
	}
	return Pair{Hi: hi, Lo: float32(x - float64(hi))}
}

// FromFloat32 returns a pair with zero residual.
func FromFloat32(f float32) Pair {
	return Pair{Hi: f}
}

// Float64 returns Hi+Lo evaluated in float64.
func (p Pair) Float64() float64 {
	return float64(p.Hi) + float64(p.Lo)
}

// IsZero returns true if both parts are zero.
func (p Pair) IsZero() bool {
	return p.Hi == 0 && p.Lo == 0
}

// Neg returns -p.
func (p Pair) Neg() Pair {
	return Pair{Hi: -p.Hi, Lo: -p.Lo}
}

// Add returns p+other computed in float32 arithmetic.
func (p Pair) Add(other Pair) Pair {
	s, e := TwoSum(p.Hi, other.Hi)
	e = float32(e + float32(p.Lo+other.Lo))
	hi, lo := QuickTwoSum(s, e)
	return Pair{Hi: hi, Lo: lo}
}

// Sub returns p-other.
func (p Pair) Sub(other Pair) Pair {
	return p.Add(other.Neg())
}

// Mul returns p*other computed in float32 arithmetic.
func (p Pair) Mul(other Pair) Pair {
	m, e := TwoProd(p.Hi, other.Hi)
	e = float32(e + float32(float32(p.Hi*other.Lo)+float32(p.Lo*other.Hi)))
	hi, lo := QuickTwoSum(m, e)
	return Pair{Hi: hi, Lo: lo}
}

// MulFloat32 returns p*f.
func (p Pair) MulFloat32(f float32) Pair {
	return p.Mul(FromFloat32(f))
}

// AddFloat64 returns p+f, where f is split into a pair first.
func (p Pair) AddFloat64(f float64) Pair {
	return p.Add(Split(f))
}

// String returns the value as a float64 string.
func (p Pair) String() string {
	return fmt.Sprintf("%g", p.Float64())
}

// GoString returns debug string representation.
func (p Pair) GoString() string {
	return p.String() + fmt.Sprintf(" {%v, %v}", p.Hi, p.Lo)
}

// TwoSum returns s = fl(a+b) and the exact error e, so that a+b = s+e.
func TwoSum(a, b float32) (s, e float32) {
	s = float32(a + b)
	bb := float32(s - a)
	e = float32(float32(a-float32(s-bb)) + float32(b-bb))
	return s, e
}

// QuickTwoSum is TwoSum for |a| >= |b|.
func QuickTwoSum(a, b float32) (s, e float32) {
	s = float32(a + b)
	e = float32(b - float32(s-a))
	return s, e
}

// TwoProd returns p = fl(a*b) and the exact error e, so that a*b = p+e.
// A product of two float32 values is exact in float64, so no splitting is needed.
func TwoProd(a, b float32) (p, e float32) {
	exact := float64(a) * float64(b)
	p = float32(exact)
	e = float32(exact - float64(p))
	return p, e
}
