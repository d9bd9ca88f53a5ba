// Package memtex implements deepzoom.TextureBackend in memory.
// It stands in for a GPU where none is available: the CPU renderer and tests
// read texels back with Fetch.
package memtex

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/avdva/deepzoom"
)

var (
	// ErrBadDimensions is returned for textures with non-positive dimensions
	// or a texel buffer of a wrong size.
	ErrBadDimensions = errors.New("bad texture dimensions")
)

type texture struct {
	width, height int
	layers        [][]mgl32.Vec4
}

// Backend is an in-memory array texture store.
type Backend struct {
	mu            sync.Mutex
	floatTextures bool
	last          deepzoom.TextureHandle
	textures      map[deepzoom.TextureHandle]*texture
	created       int
}

// New returns a backend. floatTextures sets the reported float texture capability.
func New(floatTextures bool) *Backend {
	return &Backend{
		floatTextures: floatTextures,
		textures:      make(map[deepzoom.TextureHandle]*texture),
	}
}

// SetFloatTextures changes the reported capability.
func (b *Backend) SetFloatTextures(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.floatTextures = ok
}

// SupportsFloatTextures implements deepzoom.TextureBackend.
func (b *Backend) SupportsFloatTextures() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.floatTextures
}

// CreateArrayTexture implements deepzoom.TextureBackend.
func (b *Backend) CreateArrayTexture(width, height, layers int, texels []float32) (deepzoom.TextureHandle, error) {
	if width <= 0 || height <= 0 || layers <= 0 {
		return 0, fmt.Errorf("%w: %dx%dx%d", ErrBadDimensions, width, height, layers)
	}
	layerSize := width * height
	if len(texels) != layers*layerSize*4 {
		return 0, fmt.Errorf("%w: %d values for %dx%dx%d", ErrBadDimensions, len(texels), width, height, layers)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.floatTextures {
		return 0, deepzoom.ErrNoFloatTextures
	}
	tex := &texture{width: width, height: height, layers: make([][]mgl32.Vec4, layers)}
	for l := range tex.layers {
		data := make([]mgl32.Vec4, layerSize)
		for i := range data {
			off := (l*layerSize + i) * 4
			data[i] = mgl32.Vec4{texels[off], texels[off+1], texels[off+2], texels[off+3]}
		}
		tex.layers[l] = data
	}
	b.last++
	b.textures[b.last] = tex
	b.created++
	return b.last, nil
}

// DeleteTexture implements deepzoom.TextureBackend.
func (b *Backend) DeleteTexture(h deepzoom.TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, h)
}

// Fetch returns texel (x, y) of a layer.
// ok is false if there is no such texture or the coordinates are out of range.
func (b *Backend) Fetch(h deepzoom.TextureHandle, layer, x, y int) (v mgl32.Vec4, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tex, found := b.textures[h]
	if !found || layer < 0 || layer >= len(tex.layers) || x < 0 || x >= tex.width || y < 0 || y >= tex.height {
		return mgl32.Vec4{}, false
	}
	return tex.layers[layer][y*tex.width+x], true
}

// Live returns the number of textures not yet deleted.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

// Created returns the number of textures created so far.
func (b *Backend) Created() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.created
}

var _ deepzoom.TextureBackend = (*Backend)(nil)
