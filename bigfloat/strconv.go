package bigfloat

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	mu "github.com/avdva/deepzoom/internal/mathutil"
)

var (
	bigLimbMask = big.NewInt(limbMask)
	bigTen      = big.NewInt(10)
	bigFive     = big.NewInt(5)
)

// FromString parses a decimal string into a Float with prec limbs.
// The string is parsed as a float64 first, so only 53 bits survive.
// Use ParseExact for coordinates deeper than float64.
func FromString(s string, prec int) (Float, error) {
	s, offset, err := prepareString(s)
	if err != nil {
		return Zero(prec), err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if pe := scanNumber(s); pe != nil {
			err = pe.shift(offset)
		}
		return Zero(prec), fmt.Errorf("parsing failed: %w", err)
	}
	return FromFloat64(f, prec), nil
}

// MustFromString is like FromString, but panics on error.
func MustFromString(s string, prec int) Float {
	f, err := FromString(s, prec)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseExact parses a decimal string into a Float with prec limbs
// without going through float64.
func ParseExact(s string, prec int) (Float, error) {
	s, offset, err := prepareString(s)
	if err != nil {
		return Zero(prec), err
	}
	if pe := scanNumber(s); pe != nil {
		return Zero(prec), fmt.Errorf("parsing failed: %w", pe.shift(offset))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero(prec), fmt.Errorf("parsing failed: %w", err)
	}
	return FromDecimal(d, prec), nil
}

// MustParseExact is like ParseExact, but panics on error.
func MustParseExact(s string, prec int) Float {
	f, err := ParseExact(s, prec)
	if err != nil {
		panic(err)
	}
	return f
}

// FromDecimal converts d into a Float with prec limbs.
// The result is d truncated to prec limbs.
func FromDecimal(d decimal.Decimal, prec int) Float {
	prec = normPrec(prec)
	if d.Sign() == 0 {
		return Zero(prec)
	}
	num := new(big.Int).Abs(d.Coefficient())
	den := big.NewInt(1)
	if e := d.Exponent(); e > 0 {
		num.Mul(num, new(big.Int).Exp(bigTen, big.NewInt(int64(e)), nil))
	} else if e < 0 {
		den.Exp(bigTen, big.NewInt(int64(-e)), nil)
	}
	return fromRatio(num, den, d.Sign() < 0, prec)
}

// fromRatio returns num/den truncated to prec limbs. num and den must be positive.
func fromRatio(num, den *big.Int, neg bool, prec int) Float {
	// num/den is in [2^(bl-1), 2^(bl+1)), so B^exp is above it.
	bl := num.BitLen() - den.BitLen()
	exp := mu.CeilDiv(bl+1, LimbBits)
	var m *big.Int
	for {
		m = scaledQuo(num, den, LimbBits*(prec-exp))
		if m.BitLen() > LimbBits*(prec-1) {
			break
		}
		// the leading limb came out zero, the estimate was one limb too high.
		exp--
	}
	res := Float{neg: neg, exp: exp, mant: make([]uint32, prec)}
	limb := new(big.Int)
	for i := prec - 1; i >= 0; i-- {
		res.mant[i] = uint32(limb.And(m, bigLimbMask).Uint64())
		m.Rsh(m, LimbBits)
	}
	return res
}

// scaledQuo returns floor(num*2^shift/den).
func scaledQuo(num, den *big.Int, shift int) *big.Int {
	n, d := new(big.Int).Set(num), new(big.Int).Set(den)
	if shift >= 0 {
		n.Lsh(n, uint(shift))
	} else {
		d.Lsh(d, uint(-shift))
	}
	return n.Quo(n, d)
}

// Decimal returns the exact decimal value of f.
func (f Float) Decimal() decimal.Decimal {
	if f.IsZero() {
		return decimal.Zero
	}
	n := new(big.Int)
	for _, l := range f.mant {
		n.Lsh(n, LimbBits)
		n.Or(n, big.NewInt(int64(l)))
	}
	if f.neg {
		n.Neg(n)
	}
	e2 := LimbBits * (f.exp - len(f.mant))
	if e2 >= 0 {
		return decimal.NewFromBigInt(n.Lsh(n, uint(e2)), 0)
	}
	// n*2^-k == n*5^k*10^-k
	k := -e2
	n.Mul(n, new(big.Int).Exp(bigFive, big.NewInt(int64(k)), nil))
	return decimal.NewFromBigInt(n, int32(-k))
}

// Text returns f as a decimal string rounded to places digits after the point.
func (f Float) Text(places int32) string {
	return f.Decimal().StringFixed(places)
}

type posError struct {
	pos int
	err string
}

func newPosError(err string, pos int) *posError {
	return &posError{err: err, pos: pos}
}

func (pe posError) Error() string {
	return pe.err + fmt.Sprintf(" at pos %d", pe.pos)
}

// shift makes pe.pos point into the original input, counting from 1.
func (pe *posError) shift(offset int) *posError {
	pe.pos += offset + 1
	return pe
}

// prepareString removes surrounding quotes and spaces.
// offset is the number of bytes removed from the beginning of s.
func prepareString(s string) (prepared string, offset int, err error) {
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
		offset++
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	if trimmed := strings.TrimLeftFunc(s, unicode.IsSpace); len(trimmed) != len(s) {
		offset += len(s) - len(trimmed)
		s = trimmed
	}
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if len(s) == 0 {
		return "", 0, fmt.Errorf("empty input")
	}
	return s, offset, nil
}

// scanNumber checks that s is a decimal number with an optional exponent,
// like "-1.25e-30". It returns the position of the first bad symbol.
func scanNumber(s string) *posError {
	digits, expDigits := 0, 0
	point, exp := false, false
	for i, r := range s {
		switch {
		case '0' <= r && r <= '9':
			if exp {
				expDigits++
			} else {
				digits++
			}
		case r == '-' || r == '+':
			if i > 0 && !(exp && expDigits == 0 && (s[i-1] == 'e' || s[i-1] == 'E')) {
				return newPosError("unexpected sign", i)
			}
		case r == '.':
			if point || exp {
				return newPosError("unexpected delimiter", i)
			}
			point = true
		case r == 'e' || r == 'E':
			if exp || digits == 0 {
				return newPosError("unexpected exponent", i)
			}
			exp = true
		default:
			return newPosError(fmt.Sprintf("unexpected symbol %q", r), i)
		}
	}
	switch {
	case digits == 0:
		return newPosError("no digits", len(s))
	case exp && expDigits == 0:
		return newPosError("no exponent digits", len(s))
	}
	return nil
}

// MarshalJSON marshals f as an exact decimal string, like `"-0.75"`.
func (f Float) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(f.Decimal().String())), nil
}

// UnmarshalJSON parses a quoted or a bare decimal number.
// The precision of f is kept, a zero Float gets MinLimbs limbs.
func (f *Float) UnmarshalJSON(data []byte) error {
	prec := len(f.mant)
	if prec == 0 {
		prec = MinLimbs
	}
	parsed, err := ParseExact(string(data), prec)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
