// Package view keeps the camera state of a fractal viewer.
package view

import (
	"math"

	"github.com/avdva/deepzoom"
	"github.com/avdva/deepzoom/ds"
	mu "github.com/avdva/deepzoom/internal/mathutil"
)

const (
	// BaseSpan is the width of the visible region of the complex plane at zoom 0.
	BaseSpan = 4.0
	// MinIterations and MaxIterations bound AutoIterations.
	MinIterations = 200
	MaxIterations = 50000
	iterationsPerZoom = 40
)

// Camera is a view on the complex plane.
// The center is kept as double-single pairs, as a shader would receive it.
type Camera struct {
	Re, Im ds.Pair
	// ZoomLog is log2 of the magnification.
	ZoomLog float64
	// Iterations is the iteration target. If 0, it is derived from ZoomLog.
	Iterations    int
	Width, Height int
}

// NewCamera returns a camera showing the whole set.
func NewCamera(width, height int) *Camera {
	return &Camera{
		Re:     ds.Split(-0.5),
		Width:  width,
		Height: height,
	}
}

// AutoIterations returns an iteration target for a zoom depth.
// Deeper views need more iterations to resolve the boundary.
func AutoIterations(zoomLog float64) int {
	if math.IsNaN(zoomLog) || zoomLog <= 0 {
		return MinIterations
	}
	n := MinIterations + iterationsPerZoom*zoomLog
	if n >= MaxIterations {
		return MaxIterations
	}
	return int(n)
}

// SetCenter moves the camera to (re, im).
func (c *Camera) SetCenter(re, im float64) {
	c.Re, c.Im = ds.Split(re), ds.Split(im)
}

// Center returns the center as float64 values.
func (c *Camera) Center() (re, im float64) {
	return c.Re.Float64(), c.Im.Float64()
}

// PixelSize returns the width of a pixel in the complex plane.
func (c *Camera) PixelSize() float64 {
	return BaseSpan * math.Exp2(-c.ZoomLog) / float64(mu.MaxInt(c.Width, 1))
}

// PixelOffset returns the offset of pixel (px, py) from the center.
// The imaginary axis points up.
func (c *Camera) PixelOffset(px, py float64) (dRe, dIm float64) {
	s := c.PixelSize()
	return (px - float64(c.Width)/2) * s, (float64(c.Height)/2 - py) * s
}

// Pan moves the content by (dx, dy) pixels.
func (c *Camera) Pan(dx, dy float64) {
	s := c.PixelSize()
	c.Re = c.Re.AddFloat64(-dx * s)
	c.Im = c.Im.AddFloat64(dy * s)
}

// ZoomAt changes the zoom by steps (log2 units), keeping the point under pixel (px, py) in place.
func (c *Camera) ZoomAt(px, py, steps float64) {
	dRe, dIm := c.PixelOffset(px, py)
	c.ZoomLog += steps
	k := 1 - math.Exp2(-steps)
	c.Re = c.Re.AddFloat64(dRe * k)
	c.Im = c.Im.AddFloat64(dIm * k)
}

// MaxIter returns the iteration target of the view.
func (c *Camera) MaxIter() int {
	if c.Iterations > 0 {
		return c.Iterations
	}
	return AutoIterations(c.ZoomLog)
}

// View returns the per-frame view for deepzoom.Manager.
func (c *Camera) View() deepzoom.View {
	re, im := c.Center()
	return deepzoom.View{
		CenterRe:   re,
		CenterIm:   im,
		ZoomLog:    c.ZoomLog,
		Iterations: c.MaxIter(),
	}
}
