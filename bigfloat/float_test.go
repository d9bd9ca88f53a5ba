package bigfloat

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	of "github.com/robaho/fixed"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromFloat64(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		f     float64
		exp   int
		limbs []uint32
	}{
		{0, 0, []uint32{0, 0, 0, 0}},
		{1, 1, []uint32{1, 0, 0, 0}},
		{0.75, 0, []uint32{0xc00000, 0, 0, 0}},
		{-0.75, 0, []uint32{0xc00000, 0, 0, 0}},
		{1.5, 1, []uint32{1, 0x800000, 0, 0}},
		{1 << 24, 2, []uint32{1, 0, 0, 0}},
		{math.Ldexp(1, -25), -1, []uint32{0x800000, 0, 0, 0}},
		{math.NaN(), 0, []uint32{0, 0, 0, 0}},
		{math.Inf(-1), 0, []uint32{0, 0, 0, 0}},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			f := FromFloat64(test.f, 4)
			a.Equal(test.exp, f.Exp())
			a.Equal(test.limbs, f.Limbs())
			a.Equal(4, f.Prec())
			if test.f < 0 {
				a.Equal(-1, f.Sign())
			}
		})
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	a := assert.New(t)
	tests := []float64{
		1, -1, 0.1, -0.3, math.Pi, 1e-300, -1e300, math.MaxFloat64, math.SmallestNonzeroFloat64,
		2.2250738585072014e-308, 123456789.123456789, -0.7436438870371587, 1 - math.Ldexp(1, -53),
	}
	for i, x := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			for _, prec := range []int{4, 8, 16} {
				a.Equal(x, FromFloat64(x, prec).Float64())
			}
		})
	}
}

func TestFloat64Subnormal(t *testing.T) {
	a := assert.New(t)
	pow2 := func(e int) Float {
		// split, so that each factor is a normal float64.
		return FromFloat64(math.Ldexp(1, e/2), 8).Mul(FromFloat64(math.Ldexp(1, e-e/2), 8))
	}
	tiny := math.SmallestNonzeroFloat64
	tests := []struct {
		f   Float
		res float64
	}{
		// exactly half of the smallest subnormal rounds to even.
		{pow2(-1075), 0},
		{pow2(-1075).Neg(), 0},
		// 1.5 ulp ties to 2 ulp.
		{pow2(-1074).Add(pow2(-1075)), 2 * tiny},
		// a bit far below the half makes it round up.
		{pow2(-1075).Add(pow2(-1134)), tiny},
		{pow2(-1074).Add(pow2(-1075)).Sub(pow2(-1134)), tiny},
		{pow2(-1076), 0},
		{pow2(-1100), 0},
		{pow2(-1050).Add(pow2(-1130)), math.Ldexp(1, -1050)},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			a.Equal(test.res, test.f.Float64())
		})
	}
}

func TestFloat64RoundTripRandom(t *testing.T) {
	a := assert.New(t)
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	for i := 0; i < 10000; i++ {
		x := math.Float64frombits(rnd.Uint64())
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if !a.Equal(x, FromFloat64(x, MinLimbs).Float64()) {
			return
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := assert.New(t)
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	for i := 0; i < 5000; i++ {
		x, y := rnd.Float64()*20-10, rnd.Float64()*20-10
		if i%10 == 0 {
			y = -x * (1 + rnd.Float64()*1e-9) // near cancellation
		}
		bx, by := FromFloat64(x, MinLimbs), FromFloat64(y, MinLimbs)
		tol := 1e-10 * (math.Abs(x) + math.Abs(y))
		a.InDelta(x+y, bx.Add(by).Float64(), tol, "%v + %v", x, y)
		a.InDelta(x-y, bx.Sub(by).Float64(), tol, "%v - %v", x, y)
		a.InDelta(x*y, bx.Mul(by).Float64(), 1e-10*math.Abs(x*y), "%v * %v", x, y)
		a.InDelta(x*x, bx.Sqr().Float64(), 1e-10*x*x, "%v ^ 2", x)
	}
}

func TestAddCarry(t *testing.T) {
	a := assert.New(t)
	f := FromFloat64(0.75, 4).Add(FromFloat64(0.75, 4))
	a.Equal(1, f.Exp())
	a.Equal([]uint32{1, 0x800000, 0, 0}, f.Limbs())
	a.Equal(1.5, f.Float64())

	f = FromFloat64(LimbBase-1, 4).Add(FromFloat64(1, 4))
	a.Equal(2, f.Exp())
	a.Equal([]uint32{1, 0, 0, 0}, f.Limbs())
}

func TestSubBorrow(t *testing.T) {
	a := assert.New(t)
	f := FromFloat64(1, 4).Sub(FromFloat64(math.Ldexp(1, -72), 4))
	a.Equal(0, f.Exp())
	a.Equal([]uint32{limbMask, limbMask, limbMask, 0}, f.Limbs())

	f = FromFloat64(-2, 4).Add(FromFloat64(0.5, 4))
	a.Equal(-1.5, f.Float64())
	f = FromFloat64(0.5, 4).Sub(FromFloat64(2, 4))
	a.Equal(-1.5, f.Float64())
}

func TestZero(t *testing.T) {
	a := assert.New(t)
	x := FromFloat64(3.25, 4)
	zeros := []Float{
		x.Sub(x),
		x.Add(x.Neg()),
		x.Mul(Zero(4)),
		Zero(4).Mul(x),
		Zero(4).Sqr(),
		Zero(4).Neg(),
		Float{}.Add(Float{}),
	}
	for i, z := range zeros {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			a.True(z.IsZero())
			a.Equal(0, z.Sign())
			a.Equal(0, z.Exp())
			a.Equal(float64(0), z.Float64())
			for _, l := range z.Limbs() {
				a.Equal(uint32(0), l)
			}
		})
	}
	a.Equal(3.25, x.Add(Zero(4)).Float64())
	a.Equal(3.25, Zero(4).Add(x).Float64())
	a.Equal(-3.25, Zero(4).Sub(x).Float64())
	a.Equal(6, x.Add(Zero(6)).Prec())
}

func TestMulPrecision(t *testing.T) {
	a := assert.New(t)
	a.Equal(6, FromFloat64(3, 4).Mul(FromFloat64(3, 6)).Prec())
	a.Equal(-6.0, FromFloat64(-2, 4).Mul(FromFloat64(3, 4)).Float64())
	a.Equal(6.0, FromFloat64(-2, 4).Mul(FromFloat64(-3, 4)).Float64())
	// the leading product limb is zero, the result is shifted by one limb.
	f := FromFloat64(1, 4).Mul(FromFloat64(1, 4))
	a.Equal(1, f.Exp())
	a.Equal([]uint32{1, 0, 0, 0}, f.Limbs())
}

func TestCmpAbs(t *testing.T) {
	a := assert.New(t)
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	for i := 0; i < 2000; i++ {
		x, y := rnd.Float64()*20-10, rnd.Float64()*20-10
		if i%7 == 0 {
			y = x
		}
		if i%2 == 0 { // same sign
			y = math.Copysign(y, x)
		}
		bx, by := FromFloat64(x, MinLimbs), FromFloat64(y, MinLimbs)
		expected := 0
		switch {
		case math.Abs(x) < math.Abs(y):
			expected = -1
		case math.Abs(x) > math.Abs(y):
			expected = 1
		}
		a.Equal(expected, bx.CmpAbs(by), "%v %v", x, y)
		if math.Signbit(x) == math.Signbit(y) {
			exp := 0
			if x < y {
				exp = -1
			} else if x > y {
				exp = 1
			}
			a.Equal(exp, bx.Cmp(by), "%v %v", x, y)
		}
	}
	a.Equal(-1, Zero(4).CmpAbs(FromFloat64(1e-300, 4)))
	a.Equal(1, FromFloat64(-1e-300, 4).CmpAbs(Zero(4)))
	a.Equal(0, Zero(4).CmpAbs(Zero(8)))
	a.Equal(-1, FromFloat64(-1, 4).Cmp(FromFloat64(0.5, 4)))
	a.Equal(1, FromFloat64(1, 4).CmpAbs(FromFloat64(1, 8).Sub(FromFloat64(math.Ldexp(1, -150), 8))))
}

func TestSetPrec(t *testing.T) {
	a := assert.New(t)
	f := FromFloat64(math.Pi, 4)
	ext := f.SetPrec(8)
	a.Equal(8, ext.Prec())
	a.Equal(math.Pi, ext.Float64())
	tr := f.SetPrec(2)
	a.Equal(2, tr.Prec())
	a.InDelta(math.Pi, tr.Float64(), 1e-6)
	a.Equal(1, f.SetPrec(0).Prec())
}

func TestHiLo(t *testing.T) {
	a := assert.New(t)
	x := -0.7436438870371587
	p := FromFloat64(x, 4).HiLo()
	a.Equal(float32(x), p.Hi)
	a.InDelta(x, p.Float64(), 1e-14)
}

func TestDeepArithmetic(t *testing.T) {
	a := assert.New(t)
	const prec = 8
	x := MustParseExact("-0.743643887037158704752191506114774", prec)
	d := MustParseExact("1e-30", prec)
	y := x.Add(d)
	// float64 cannot tell them apart.
	a.Equal(x.Float64(), y.Float64())
	diff := y.Sub(x).Decimal().Sub(decimal.New(1, -30)).Abs()
	a.True(diff.LessThan(decimal.New(1, -45)), diff.String())

	sq := x.Sqr().Decimal()
	exact := x.Decimal().Mul(x.Decimal())
	a.True(sq.Sub(exact).Abs().LessThan(decimal.New(1, -48)), sq.String())
}

func TestString(t *testing.T) {
	a := assert.New(t)
	a.Equal("1.5", FromFloat64(1.5, 4).String())
	a.Equal("-0.25", fmt.Sprint(FromFloat64(-0.25, 4)))
	a.Equal("1 {+, 1, [1 0 0 0]}", FromFloat64(1, 4).GoString())
	a.Equal("-1 {-, 1, [1 0 0 0]}", fmt.Sprintf("%#v", FromFloat64(-1, 4)))
}

func BenchmarkMul(b *testing.B) {
	f0 := FromFloat64(123456789.9, MaxLimbs)
	f1 := FromFloat64(1234.9, MaxLimbs)
	for i := 0; i < b.N; i++ {
		f0.Mul(f1)
	}
}

func BenchmarkMulOtherFixed(b *testing.B) {
	f0 := of.NewF(123456789.9)
	f1 := of.NewF(1234.9)
	for i := 0; i < b.N; i++ {
		f0.Mul(f1)
	}
}

func BenchmarkMulDecimal(b *testing.B) {
	f0 := decimal.NewFromFloat(123456789.9)
	f1 := decimal.NewFromFloat(1234.9)
	for i := 0; i < b.N; i++ {
		f0.Mul(f1)
	}
}

func BenchmarkAdd(b *testing.B) {
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	f0 := FromFloat64(rnd.Float64(), MaxLimbs)
	f1 := FromFloat64(-rnd.Float64()*1e-9, MaxLimbs)
	for i := 0; i < b.N; i++ {
		f0.Add(f1)
	}
}
