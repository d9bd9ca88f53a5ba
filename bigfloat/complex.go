package bigfloat

import (
	"github.com/avdva/deepzoom/ds"
	mu "github.com/avdva/deepzoom/internal/mathutil"
)

// Complex is a complex number with Float parts of equal precision.
type Complex struct {
	Re, Im Float
}

// NewComplex returns re+im*i, both parts extended to the larger precision.
func NewComplex(re, im Float) Complex {
	prec := mu.MaxInt(re.Prec(), im.Prec())
	return Complex{Re: re.SetPrec(prec), Im: im.SetPrec(prec)}
}

// ComplexFromFloat64 returns re+im*i with prec limbs.
func ComplexFromFloat64(re, im float64, prec int) Complex {
	return Complex{Re: FromFloat64(re, prec), Im: FromFloat64(im, prec)}
}

// ComplexZero returns 0+0i with prec limbs.
func ComplexZero(prec int) Complex {
	return Complex{Re: Zero(prec), Im: Zero(prec)}
}

// Prec returns the number of limbs.
func (c Complex) Prec() int {
	return mu.MaxInt(c.Re.Prec(), c.Im.Prec())
}

// SetPrec returns c with prec limbs.
func (c Complex) SetPrec(prec int) Complex {
	return Complex{Re: c.Re.SetPrec(prec), Im: c.Im.SetPrec(prec)}
}

// IsZero returns true if both parts are zero.
func (c Complex) IsZero() bool {
	return c.Re.IsZero() && c.Im.IsZero()
}

// Add returns c+other.
func (c Complex) Add(other Complex) Complex {
	return Complex{Re: c.Re.Add(other.Re), Im: c.Im.Add(other.Im)}
}

// Sub returns c-other.
func (c Complex) Sub(other Complex) Complex {
	return Complex{Re: c.Re.Sub(other.Re), Im: c.Im.Sub(other.Im)}
}

// Mul returns c*other.
func (c Complex) Mul(other Complex) Complex {
	// (a+bi)(x+yi) = (ax-by) + (ay+bx)i
	return Complex{
		Re: c.Re.Mul(other.Re).Sub(c.Im.Mul(other.Im)),
		Im: c.Re.Mul(other.Im).Add(c.Im.Mul(other.Re)),
	}
}

// Sqr returns c*c.
func (c Complex) Sqr() Complex {
	// (a+bi)^2 = (a^2-b^2) + 2abi
	return Complex{
		Re: c.Re.Sqr().Sub(c.Im.Sqr()),
		Im: c.Re.Mul(c.Im).Double(),
	}
}

// Double returns 2*c.
func (c Complex) Double() Complex {
	return Complex{Re: c.Re.Double(), Im: c.Im.Double()}
}

// AbsSqr returns re^2+im^2.
func (c Complex) AbsSqr() Float {
	return c.Re.Sqr().Add(c.Im.Sqr())
}

// Float64 returns the float64 approximations of both parts.
func (c Complex) Float64() (re, im float64) {
	return c.Re.Float64(), c.Im.Float64()
}

// Complex128 returns c as a native complex number.
func (c Complex) Complex128() complex128 {
	return complex(c.Re.Float64(), c.Im.Float64())
}

// HiLo returns both parts as double-single pairs.
func (c Complex) HiLo() [2]ds.Pair {
	return [2]ds.Pair{c.Re.HiLo(), c.Im.HiLo()}
}

// String returns c formatted as (re, im).
func (c Complex) String() string {
	return "(" + c.Re.String() + ", " + c.Im.String() + ")"
}
