// Package render shades Mandelbrot views on the CPU.
//
// With an enabled deepzoom.Snapshot every pixel is iterated as an offset from the
// reference orbit stored in the snapshot's texture. Otherwise the standard float64
// iteration is used.
package render

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/avdva/deepzoom"
	"github.com/avdva/deepzoom/view"
)

// DefaultTileSize is the default side of a square tile.
const DefaultTileSize = 64

// Mode is the iteration method used for a frame.
type Mode int

const (
	// ModeStandard is the float64 iteration.
	ModeStandard Mode = iota
	// ModePerturbation iterates offsets from the reference orbit.
	ModePerturbation
)

func (m Mode) String() string {
	if m == ModePerturbation {
		return "perturbation"
	}
	return "standard"
}

// Field holds smooth iteration counts of a frame, row by row.
type Field struct {
	Width, Height int
	MaxIter       int
	Mode          Mode
	Mu            []float64
}

// At returns the value of pixel (x, y).
func (f *Field) At(x, y int) float64 {
	return f.Mu[y*f.Width+x]
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithWorkers sets the number of tiles rendered in parallel.
// If n <= 0, GOMAXPROCS is used.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		r.workers = n
	}
}

// WithTileSize sets the tile side. Values < 1 are ignored.
func WithTileSize(size int) Option {
	return func(r *Renderer) {
		if size > 0 {
			r.tileSize = size
		}
	}
}

// Renderer turns camera views into images.
type Renderer struct {
	fetcher  TexelFetcher
	logger   logrus.FieldLogger
	workers  int
	tileSize int
}

// New returns a renderer reading orbit textures with f.
func New(f TexelFetcher, opts ...Option) *Renderer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := &Renderer{
		fetcher:  f,
		logger:   logger,
		tileSize: DefaultTileSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// Field computes smooth iteration counts for every pixel of the camera view.
// If the snapshot is not enabled, or its texture cannot be read, the standard iteration is used.
func (r *Renderer) Field(ctx context.Context, cam *view.Camera, snap deepzoom.Snapshot) (*Field, error) {
	maxIter := cam.MaxIter()
	f := &Field{
		Width:   cam.Width,
		Height:  cam.Height,
		MaxIter: maxIter,
		Mu:      make([]float64, cam.Width*cam.Height),
	}
	cRe, cIm := cam.Center()
	var ref *Reference
	if snap.Enabled {
		var err error
		if ref, err = LoadReference(r.fetcher, snap); err != nil {
			r.logger.WithError(err).Warn("falling back to standard precision")
		}
	}
	// offset of the camera center from the reference point.
	var delta complex128
	if ref != nil {
		f.Mode = ModePerturbation
		delta = complex(diff(cam.Re.Hi, cam.Re.Lo, snap.Reference[0].Hi, snap.Reference[0].Lo),
			diff(cam.Im.Hi, cam.Im.Lo, snap.Reference[1].Hi, snap.Reference[1].Lo))
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, tile := range splitRectNoClip(image.Rect(0, 0, cam.Width, cam.Height), r.tileSize, r.tileSize) {
		tile := tile
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for py := tile.Min.Y; py < tile.Max.Y; py++ {
				for px := tile.Min.X; px < tile.Max.X; px++ {
					dRe, dIm := cam.PixelOffset(float64(px)+0.5, float64(py)+0.5)
					var mu float64
					if ref != nil {
						mu = ref.Perturb(delta+complex(dRe, dIm), maxIter)
					} else {
						mu = Direct(complex(cRe+dRe, cIm+dIm), maxIter)
					}
					f.Mu[py*f.Width+px] = mu
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"mode":   f.Mode,
		"zoom":   cam.ZoomLog,
		"iter":   maxIter,
		"length": snap.OrbitLength,
	}).Debug("frame rendered")
	return f, nil
}

// Render draws the camera view.
func (r *Renderer) Render(ctx context.Context, cam *view.Camera, snap deepzoom.Snapshot) (*image.RGBA, error) {
	f, err := r.Field(ctx, cam, snap)
	if err != nil {
		return nil, err
	}
	return f.Image(), nil
}

// Image colours the field: points that did not escape are black, the rest are coloured by hue.
func (f *Field) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, Color(f.At(x, y), f.MaxIter))
		}
	}
	return img
}

// Color maps a smooth iteration count to a colour.
func Color(mu float64, maxIter int) color.RGBA {
	if mu >= float64(maxIter) {
		return color.RGBA{A: 255}
	}
	return hsv(math.Mod(mu*0.02, 1), 1, 1)
}

// diff returns (aHi+aLo) - (bHi+bLo) in float64.
func diff(aHi, aLo, bHi, bLo float32) float64 {
	return (float64(aHi) - float64(bHi)) + (float64(aLo) - float64(bLo))
}

// splitRectNoClip splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func splitRectNoClip(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}
	var tiles []image.Rectangle
	for oy := r.Min.Y; oy < r.Max.Y; oy += tileH {
		maxY := oy + tileH
		if maxY > r.Max.Y {
			maxY = r.Max.Y
		}
		for ox := r.Min.X; ox < r.Max.X; ox += tileW {
			maxX := ox + tileW
			if maxX > r.Max.X {
				maxX = r.Max.X
			}
			tiles = append(tiles, image.Rect(ox, oy, maxX, maxY))
		}
	}
	return tiles
}

// hsv converts a colour from HSV to RGB. All components are in [0, 1].
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}
