// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package orbit computes the reference orbit of the Mandelbrot recurrence
// z = z^2 + c at arbitrary precision and exports it as float64 samples.
//
// A shader evaluating only near-machine precision reconstructs every pixel
// from this single trajectory with the perturbation identity
//
//	d(n+1) = 2*Z(n)*d(n) + d(n)^2 + dC
//
// where dC is the pixel's offset from the reference point and stays small
// at any zoom depth.
package orbit

import (
	"context"
	"math"
	"runtime"

	"github.com/avdva/deepzoom/bigfloat"
	"github.com/avdva/deepzoom/ds"
	mu "github.com/avdva/deepzoom/internal/mathutil"
)

const (
	// EscapeRadiusSq is the squared escape radius.
	// It is larger than the conventional 4 to reduce banding near the boundary.
	EscapeRadiusSq = 256
	// HardIterationCap is the maximum number of samples in an orbit.
	HardIterationCap = 65536
	// ChunkSize is the number of iterations Compute performs between yields.
	ChunkSize = 500
	// StaleFraction is the share of the orbit length, which the requested
	// iteration count may reach before the orbit is recomputed.
	StaleFraction = 0.9
	// centerSlackBits is how many bits below the zoom scale the center may drift.
	centerSlackBits = 20
)

// Orbit is a reference orbit with its cache keys.
// It is not safe for concurrent use.
type Orbit struct {
	re, im, re2, im2 []float64

	length  int
	limit   int
	escaped bool
	valid   bool

	ref     bigfloat.Complex
	refHiLo [2]ds.Pair

	centerRe, centerIm float64
	zoomLog            float64
	maxIter            int
}

// New returns an empty orbit.
func New() *Orbit {
	return &Orbit{}
}

// IterLimit returns the number of iterations computed for maxIter requested ones.
// The orbit gets 2x headroom, so that small iteration increases do not trigger a recompute.
func IterLimit(maxIter int) int {
	return mu.ClampInt(2*maxIter, 1, HardIterationCap)
}

// CenterThreshold returns how far the view center may move before the orbit becomes stale.
func CenterThreshold(zoomLog float64) float64 {
	return math.Exp2(-zoomLog - centerSlackBits)
}

// Compute iterates the orbit of (cRe, cIm) with the precision required by zoomLog.
// It yields the processor every ChunkSize iterations and checks ctx at the same points,
// a chunk in progress is never interrupted.
// On error the previously computed orbit is kept.
func (o *Orbit) Compute(ctx context.Context, cRe, cIm, zoomLog float64, maxIter int) error {
	c := bigfloat.ComplexFromFloat64(cRe, cIm, bigfloat.Limbs(zoomLog))
	return o.compute(ctx, c, cRe, cIm, zoomLog, maxIter, true)
}

// ComputeFrom is like Compute, but takes the center at full precision.
// The precision of c is raised to what zoomLog requires, if needed.
func (o *Orbit) ComputeFrom(ctx context.Context, c bigfloat.Complex, zoomLog float64, maxIter int) error {
	if prec := bigfloat.Limbs(zoomLog); c.Prec() < prec {
		c = c.SetPrec(prec)
	}
	cRe, cIm := c.Float64()
	return o.compute(ctx, c, cRe, cIm, zoomLog, maxIter, true)
}

// ComputeSync iterates the orbit without yielding.
// It is up to the caller to decide if blocking for the whole computation is acceptable.
func (o *Orbit) ComputeSync(cRe, cIm, zoomLog float64, maxIter int) {
	c := bigfloat.ComplexFromFloat64(cRe, cIm, bigfloat.Limbs(zoomLog))
	// cannot fail without a context to cancel.
	_ = o.compute(context.Background(), c, cRe, cIm, zoomLog, maxIter, false)
}

func (o *Orbit) compute(ctx context.Context, c bigfloat.Complex, cRe, cIm, zoomLog float64, maxIter int, yield bool) error {
	limit := IterLimit(maxIter)
	re, im := make([]float64, limit), make([]float64, limit)
	re2, im2 := make([]float64, limit), make([]float64, limit)
	z := bigfloat.ComplexZero(c.Prec())
	n, escaped := 0, false
	for n < limit && !escaped {
		end := mu.MinInt(n+ChunkSize, limit)
		for ; n < end; n++ {
			zr, zi := z.Float64()
			re[n], im[n] = zr, zi
			re2[n], im2[n] = 2*zr, 2*zi
			if zr*zr+zi*zi > EscapeRadiusSq {
				escaped = true
				break
			}
			z = z.Sqr().Add(c)
		}
		if yield && n < limit && !escaped {
			if err := ctx.Err(); err != nil {
				return err
			}
			runtime.Gosched()
		}
	}
	*o = Orbit{
		re:       re,
		im:       im,
		re2:      re2,
		im2:      im2,
		length:   n,
		limit:    limit,
		escaped:  escaped,
		valid:    true,
		ref:      c,
		refHiLo:  c.HiLo(),
		centerRe: cRe,
		centerIm: cIm,
		zoomLog:  zoomLog,
		maxIter:  maxIter,
	}
	return nil
}

// NeedsUpdate returns true, if the orbit cannot serve a view with given parameters:
//   - nothing has been computed yet;
//   - the zoom requires more limbs than the orbit was computed with;
//   - the orbit is not complete and maxIter exceeds StaleFraction of its length;
//   - the center moved more than CenterThreshold(zoomLog) on either axis.
//
// An orbit is complete, if it escaped or reached HardIterationCap samples.
// Recomputing a complete orbit would not extend it, so the iteration rule
// does not apply to it.
func (o *Orbit) NeedsUpdate(cRe, cIm, zoomLog float64, maxIter int) bool {
	if !o.valid {
		return true
	}
	if bigfloat.Limbs(zoomLog) > o.ref.Prec() {
		return true
	}
	if !o.Complete() && float64(maxIter) > StaleFraction*float64(o.length) {
		return true
	}
	thr := CenterThreshold(zoomLog)
	return math.Abs(cRe-o.centerRe) > thr || math.Abs(cIm-o.centerIm) > thr
}

// Valid returns true if the orbit has been computed.
func (o *Orbit) Valid() bool {
	return o.valid
}

// Len returns the number of stored samples.
// Len() < IterLimit() if and only if the orbit escaped.
func (o *Orbit) Len() int {
	return o.length
}

// IterLimit returns the iteration limit of the last computation.
func (o *Orbit) IterLimit() int {
	return o.limit
}

// Escaped returns true if the reference point escaped.
// A non-escaped orbit only means the point stayed bounded up to IterLimit iterations,
// which does not prove it belongs to the set.
func (o *Orbit) Escaped() bool {
	return o.escaped
}

// Complete returns true, if no iteration count could extend the orbit.
func (o *Orbit) Complete() bool {
	return o.escaped || o.length >= HardIterationCap
}

// Precision returns the number of limbs used for the computation.
func (o *Orbit) Precision() int {
	return o.ref.Prec()
}

// Center returns the center the orbit was computed for.
func (o *Orbit) Center() (re, im float64) {
	return o.centerRe, o.centerIm
}

// ZoomLog returns the zoom depth the orbit was computed for.
func (o *Orbit) ZoomLog() float64 {
	return o.zoomLog
}

// MaxIter returns the requested iteration count of the last computation.
func (o *Orbit) MaxIter() int {
	return o.maxIter
}

// Reference returns the reference point at full precision.
func (o *Orbit) Reference() bigfloat.Complex {
	return o.ref
}

// ReferenceHiLo returns the reference point as double-single pairs.
func (o *Orbit) ReferenceHiLo() [2]ds.Pair {
	return o.refHiLo
}

// At returns Z(n).
func (o *Orbit) At(n int) (re, im float64) {
	return o.re[n], o.im[n]
}

// DoubledAt returns 2*Z(n).
func (o *Orbit) DoubledAt(n int) (re, im float64) {
	return o.re2[n], o.im2[n]
}

// HiLoAt returns Z(n).re, Z(n).im, 2*Z(n).re, 2*Z(n).im as double-single pairs.
func (o *Orbit) HiLoAt(n int) [4]ds.Pair {
	return [4]ds.Pair{ds.Split(o.re[n]), ds.Split(o.im[n]), ds.Split(o.re2[n]), ds.Split(o.im2[n])}
}

// Samples returns the stored samples. The slices must not be modified.
func (o *Orbit) Samples() (re, im, re2, im2 []float64) {
	return o.re[:o.length], o.im[:o.length], o.re2[:o.length], o.im2[:o.length]
}
