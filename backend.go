package deepzoom

// TextureHandle identifies a texture within its backend.
type TextureHandle uint32

// TextureBackend creates and releases GPU array textures.
type TextureBackend interface {
	// SupportsFloatTextures returns true, if RGBA float32 textures can be created.
	SupportsFloatTextures() bool
	// CreateArrayTexture uploads an RGBA float32 array texture.
	// texels holds layers*height*width*4 values, layer-major, then row-major.
	CreateArrayTexture(width, height, layers int, texels []float32) (TextureHandle, error)
	// DeleteTexture releases a texture. Unknown handles are ignored.
	DeleteTexture(h TextureHandle)
}

// Texture describes a packed orbit texture.
type Texture struct {
	Handle        TextureHandle
	Width, Height int
	Layers        int
	// Length is the number of valid texels in each layer.
	Length int
}

// IsZero returns true if t does not describe a texture.
func (t Texture) IsZero() bool {
	return t.Length == 0
}
