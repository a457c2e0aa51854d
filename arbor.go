package arbor

import "github.com/go-gl/mathgl/mgl32"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default material and background tint.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is opaque black.
var ColorBlack = Color{0, 0, 0, 1}

// Vec4 returns the color as an mgl32 vector (r, g, b, a).
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Scale returns the color with every component multiplied by f.
func (c Color) Scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A * f}
}

// NodeType distinguishes traversal and draw behavior for a Node.
type NodeType uint8

const (
	NodeTypeGroup  NodeType = iota // ordered container of child nodes
	NodeTypeWorld                  // root group carrying the active camera and background
	NodeTypeCamera                 // projection source; seeds RenderWorld traversal
	NodeTypeLight                  // registered into the light manager when traversed
	NodeTypeMesh                   // indexed triangle submeshes, one draw per submesh
	NodeTypeSprite                 // screen-facing textured quad
)

// String returns the lowercase name of the node type.
func (t NodeType) String() string {
	switch t {
	case NodeTypeGroup:
		return "group"
	case NodeTypeWorld:
		return "world"
	case NodeTypeCamera:
		return "camera"
	case NodeTypeLight:
		return "light"
	case NodeTypeMesh:
		return "mesh"
	case NodeTypeSprite:
		return "sprite"
	default:
		return "unknown"
	}
}

// isGroupType reports whether nodes of type t may hold children.
func (t NodeType) isGroupType() bool {
	return t == NodeTypeGroup || t == NodeTypeWorld
}

// isRenderable reports whether nodes of type t insert drawables into the
// render queue.
func (t NodeType) isRenderable() bool {
	return t == NodeTypeMesh || t == NodeTypeSprite
}

// Enable bits.
const (
	enableRender uint8 = 1 << iota
	enablePick
)

// Dirty bits.
const (
	dirtyBBox       uint8 = 1 << iota // cached bounding box no longer matches the subtree
	dirtyTransforms                   // a transform somewhere in this subtree changed
)

// ScopeAll is the default scope: the node is visible to every camera.
const ScopeAll uint32 = 0xFFFFFFFF

// Alpha factors are stored in 1.16 fixed point.
const (
	alphaShift        = 16
	alphaOne   uint32 = 1 << alphaShift
)

// alphaToFixed converts a float alpha factor in [0, 1] to 1.16 fixed point.
func alphaToFixed(a float32) uint32 {
	if a <= 0 {
		return 0
	}
	if a >= 1 {
		return alphaOne
	}
	return uint32(a*float32(alphaOne) + 0.5)
}

// alphaToFloat converts a 1.16 fixed point alpha factor to a float.
func alphaToFloat(a uint32) float32 {
	return float32(a) / float32(alphaOne)
}

// mulAlpha multiplies two 1.16 fixed point alpha factors.
func mulAlpha(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> alphaShift)
}
