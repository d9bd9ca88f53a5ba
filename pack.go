package deepzoom

import (
	"github.com/avdva/deepzoom/orbit"
	mu "github.com/avdva/deepzoom/internal/mathutil"
)

const (
	// DefaultMaxTextureWidth is the default texture width limit.
	DefaultMaxTextureWidth = 4096
	// TextureLayers is the number of layers in an orbit texture.
	// Layer 0 holds the high parts of the samples, layer 1 the residuals.
	TextureLayers = 2
	texelSize     = 4
)

// TextureSize returns the dimensions of a texture holding length texels in rows
// of at most maxWidth texels.
func TextureSize(length, maxWidth int) (width, height int) {
	if length <= 0 {
		return 0, 0
	}
	width = mu.MinInt(length, mu.MaxInt(maxWidth, 1))
	return width, mu.CeilDiv(length, width)
}

// TexelCoord returns the position of the n-th sample in a texture of given width.
func TexelCoord(n, width int) (x, y int) {
	return n % width, n / width
}

// TexelOffset returns the index of the first channel of texel (x, y) of a layer
// in a buffer passed to TextureBackend.CreateArrayTexture.
func TexelOffset(layer, x, y, width, height int) int {
	return ((layer*height+y)*width + x) * texelSize
}

// PackOrbit lays the orbit out as a two-layer RGBA texture.
// A texel holds (Z.re, Z.im, 2*Z.re, 2*Z.im): the high parts in layer 0, the low parts in layer 1.
// Texels past the orbit length are zero.
func PackOrbit(o *orbit.Orbit, width, height int) []float32 {
	texels := make([]float32, TextureLayers*width*height*texelSize)
	for n := 0; n < o.Len(); n++ {
		x, y := TexelCoord(n, width)
		hi := TexelOffset(0, x, y, width, height)
		lo := TexelOffset(1, x, y, width, height)
		for i, p := range o.HiLoAt(n) {
			texels[hi+i] = p.Hi
			texels[lo+i] = p.Lo
		}
	}
	return texels
}
