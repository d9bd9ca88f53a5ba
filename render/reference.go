package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/avdva/deepzoom"
	"github.com/avdva/deepzoom/orbit"
)

var (
	// ErrTextureUnavailable is returned, if a snapshot has no usable orbit texture.
	ErrTextureUnavailable = errors.New("orbit texture unavailable")
)

// TexelFetcher reads texels of an array texture.
type TexelFetcher interface {
	Fetch(h deepzoom.TextureHandle, layer, x, y int) (mgl32.Vec4, bool)
}

// Reference is a reference orbit read back from its texture.
type Reference struct {
	// C is the reference point.
	C complex128
	// Z holds Z(n), Z2 holds 2*Z(n).
	Z, Z2 []complex128
}

// LoadReference reads the orbit of an enabled snapshot.
func LoadReference(f TexelFetcher, snap deepzoom.Snapshot) (*Reference, error) {
	if !snap.Enabled || snap.Texture.IsZero() {
		return nil, ErrTextureUnavailable
	}
	tex := snap.Texture
	ref := &Reference{
		C:  complex(snap.Reference[0].Float64(), snap.Reference[1].Float64()),
		Z:  make([]complex128, snap.OrbitLength),
		Z2: make([]complex128, snap.OrbitLength),
	}
	for n := 0; n < snap.OrbitLength; n++ {
		x, y := deepzoom.TexelCoord(n, tex.Width)
		hi, ok := f.Fetch(tex.Handle, 0, x, y)
		if !ok {
			return nil, fmt.Errorf("%w: texel %d", ErrTextureUnavailable, n)
		}
		lo, ok := f.Fetch(tex.Handle, 1, x, y)
		if !ok {
			return nil, fmt.Errorf("%w: texel %d", ErrTextureUnavailable, n)
		}
		ref.Z[n] = complex(join(hi[0], lo[0]), join(hi[1], lo[1]))
		ref.Z2[n] = complex(join(hi[2], lo[2]), join(hi[3], lo[3]))
	}
	return ref, nil
}

func join(hi, lo float32) float64 {
	return float64(hi) + float64(lo)
}

// Perturb returns the smooth iteration count of the point C+dc.
// Every step applies d = 2*Z*d + d^2 + dc. The iteration is moved back to the start of
// the reference, once the reference ends or |Z+d| < |d|.
func (r *Reference) Perturb(dc complex128, maxIter int) float64 {
	last := len(r.Z) - 1
	if last < 1 {
		return Direct(r.C+dc, maxIter)
	}
	var dz complex128
	n := 0
	for i := 0; i < maxIter; i++ {
		dz = r.Z2[n]*dz + dz*dz + dc
		n++
		z := r.Z[n] + dz
		zAbs := absSq(z)
		if zAbs > orbit.EscapeRadiusSq {
			return smooth(i, z)
		}
		if zAbs < absSq(dz) || n == last {
			dz = z
			n = 0
		}
	}
	return float64(maxIter)
}

// Direct returns the smooth iteration count of c computed with float64 values.
func Direct(c complex128, maxIter int) float64 {
	var z complex128
	for i := 0; i < maxIter; i++ {
		z = z*z + c
		if absSq(z) > orbit.EscapeRadiusSq {
			return smooth(i, z)
		}
	}
	return float64(maxIter)
}

func smooth(i int, z complex128) float64 {
	return float64(i) + 1 - math.Log2(0.5*math.Log(absSq(z)))
}

func absSq(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
