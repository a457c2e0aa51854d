package arbor

import "fmt"

// Sort key layout, most to least significant bits.
const (
	sortKeyLayerShift   = 25
	sortKeyBlendBit     = uint32(1) << 24
	sortKeyTextureShift = 16
	sortKeyCompShift    = 12
	sortKeyMatShift     = 8
	sortKeyPolyShift    = 4

	// MinLayer and MaxLayer bound the rendering layer of an Appearance.
	MinLayer = -63
	MaxLayer = 63

	// MaxTextureUnits is the number of texture units an Appearance carries.
	MaxTextureUnits = 2
)

// BlendMode selects how fragments combine with the frame buffer.
type BlendMode uint8

const (
	BlendReplace BlendMode = iota // opaque; no blending
	BlendAlpha
	BlendAlphaAdd
	BlendModulate
	BlendModulateX2
)

// CompositingMode holds per-fragment compositing state.
type CompositingMode struct {
	id             uint32
	Blending       BlendMode
	DepthTest      bool
	DepthWrite     bool
	AlphaThreshold float32
}

// NewCompositingMode returns an opaque, depth-tested compositing mode.
func NewCompositingMode() *CompositingMode {
	return &CompositingMode{id: nextID(), DepthTest: true, DepthWrite: true}
}

// Material holds lighting colors.
type Material struct {
	id                  uint32
	Ambient             Color
	Diffuse             Color
	Emissive            Color
	Specular            Color
	Shininess           float32
	VertexColorTracking bool
}

// NewMaterial returns a material with a white diffuse color.
func NewMaterial() *Material {
	return &Material{
		id:       nextID(),
		Ambient:  Color{0.2, 0.2, 0.2, 1},
		Diffuse:  Color{0.8, 0.8, 0.8, 1},
		Emissive: Color{0, 0, 0, 1},
		Specular: Color{0, 0, 0, 1},
	}
}

// CullFace selects which polygon faces are discarded.
type CullFace uint8

const (
	CullBack CullFace = iota
	CullFront
	CullNone
)

// PolygonMode holds rasterization state.
type PolygonMode struct {
	id               uint32
	Culling          CullFace
	CounterClockwise bool
	SmoothShading    bool
	TwoSidedLighting bool
}

// NewPolygonMode returns back-face culling with counter-clockwise winding.
func NewPolygonMode() *PolygonMode {
	return &PolygonMode{id: nextID(), CounterClockwise: true, SmoothShading: true}
}

// Texture binds an image to a texture unit. Image is backend specific; the
// core never inspects it.
type Texture struct {
	id    uint32
	Image any
	Blend Color
}

// NewTexture wraps a backend image.
func NewTexture(image any) *Texture {
	return &Texture{id: nextID(), Image: image, Blend: ColorWhite}
}

// FogMode selects the fog falloff.
type FogMode uint8

const (
	FogLinear FogMode = iota
	FogExponential
)

// Fog holds fog parameters.
type Fog struct {
	id      uint32
	Mode    FogMode
	Color   Color
	Density float32
	Near    float32
	Far     float32
}

// NewFog returns linear fog from 0 to 1.
func NewFog() *Fog {
	return &Fog{id: nextID(), Mode: FogLinear, Color: ColorBlack, Density: 1, Far: 1}
}

// Appearance groups the rendering state of a submesh or sprite. Its sort key
// is derived from the identities of its components and cached until a
// component reference or the layer changes. Mutating the fields of a
// component in place does not change the key.
type Appearance struct {
	id          uint32
	layer       int
	compositing *CompositingMode
	material    *Material
	polygon     *PolygonMode
	textures    [MaxTextureUnits]*Texture
	fog         *Fog

	sortKey  uint32
	keyDirty bool
}

// NewAppearance returns an empty appearance on layer 0.
func NewAppearance() *Appearance {
	return &Appearance{id: nextID(), keyDirty: true}
}

// SetLayer sets the rendering layer. Panics outside [MinLayer, MaxLayer].
func (a *Appearance) SetLayer(layer int) {
	if layer < MinLayer || layer > MaxLayer {
		panic(fmt.Sprintf("arbor: layer %d out of range [%d, %d]", layer, MinLayer, MaxLayer))
	}
	a.layer = layer
	a.keyDirty = true
}

// Layer returns the rendering layer.
func (a *Appearance) Layer() int { return a.layer }

// SetCompositingMode sets or clears the compositing mode.
func (a *Appearance) SetCompositingMode(c *CompositingMode) {
	a.compositing = c
	a.keyDirty = true
}

// CompositingMode returns the compositing mode, or nil.
func (a *Appearance) CompositingMode() *CompositingMode { return a.compositing }

// SetMaterial sets or clears the material.
func (a *Appearance) SetMaterial(m *Material) {
	a.material = m
	a.keyDirty = true
}

// Material returns the material, or nil.
func (a *Appearance) Material() *Material { return a.material }

// SetPolygonMode sets or clears the polygon mode.
func (a *Appearance) SetPolygonMode(p *PolygonMode) {
	a.polygon = p
	a.keyDirty = true
}

// PolygonMode returns the polygon mode, or nil.
func (a *Appearance) PolygonMode() *PolygonMode { return a.polygon }

// SetTexture sets or clears the texture on the given unit.
func (a *Appearance) SetTexture(unit int, t *Texture) {
	if unit < 0 || unit >= MaxTextureUnits {
		panic("arbor: texture unit out of range")
	}
	a.textures[unit] = t
	a.keyDirty = true
}

// Texture returns the texture on the given unit, or nil.
func (a *Appearance) Texture(unit int) *Texture {
	if unit < 0 || unit >= MaxTextureUnits {
		panic("arbor: texture unit out of range")
	}
	return a.textures[unit]
}

// SetFog sets or clears the fog.
func (a *Appearance) SetFog(f *Fog) {
	a.fog = f
	a.keyDirty = true
}

// Fog returns the fog, or nil.
func (a *Appearance) Fog() *Fog { return a.fog }

// HasBlending reports whether the compositing mode blends with the frame
// buffer. It reads live state and is not part of the cached key.
func (a *Appearance) HasBlending() bool {
	return a.compositing != nil && a.compositing.Blending != BlendReplace
}

// SortKey returns the precomputed sort key: layer and state hashes, without
// the blend bit.
func (a *Appearance) SortKey() uint32 {
	if a.keyDirty {
		a.sortKey = a.computeSortKey()
		a.keyDirty = false
	}
	return a.sortKey
}

func (a *Appearance) computeSortKey() uint32 {
	key := uint32(a.layer-MinLayer) << sortKeyLayerShift
	key |= textureHash(a.textures) << sortKeyTextureShift
	if a.compositing != nil {
		key |= identityHash(a.compositing.id, 4) << sortKeyCompShift
	}
	if a.material != nil {
		key |= identityHash(a.material.id, 4) << sortKeyMatShift
	}
	if a.polygon != nil {
		key |= identityHash(a.polygon.id, 4) << sortKeyPolyShift
	}
	if a.fog != nil {
		key |= identityHash(a.fog.id, 4)
	}
	return key
}

// identityHash folds an object ID into the given number of bits.
func identityHash(id uint32, bits uint) uint32 {
	return hashID(id) >> (32 - bits)
}

func textureHash(units [MaxTextureUnits]*Texture) uint32 {
	var h uint32
	bound := false
	for _, t := range units {
		h *= 31
		if t != nil {
			h += t.id
			bound = true
		}
	}
	if !bound {
		return 0
	}
	return identityHash(h, 8)
}

// layerFromKey extracts the signed layer from a sort key.
func layerFromKey(key uint32) int {
	return int(key>>sortKeyLayerShift) + MinLayer
}
