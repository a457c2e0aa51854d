package arbor

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionKind describes how a camera projection was specified.
type ProjectionKind uint8

const (
	ProjectionGeneric ProjectionKind = iota
	ProjectionParallel
	ProjectionPerspective
)

// String returns the lowercase name of the projection kind.
func (k ProjectionKind) String() string {
	switch k {
	case ProjectionParallel:
		return "parallel"
	case ProjectionPerspective:
		return "perspective"
	default:
		return "generic"
	}
}

// projection is the camera state of a NodeTypeCamera node.
type projection struct {
	kind   ProjectionKind
	params [4]float32 // fovy or height, aspect, near, far
	m      mgl32.Mat4

	frustum      Frustum
	frustumValid bool
}

// NewCamera creates a camera with an identity projection. The camera looks
// down its local -Z axis.
func (e *Engine) NewCamera(name string) *Node {
	n := e.newNode(name, NodeTypeCamera)
	n.projection.m = mgl32.Ident4()
	return n
}

func (n *Node) mustBeCamera() {
	if n.Type != NodeTypeCamera {
		panic(fmt.Sprintf("arbor: %s is not a camera", n))
	}
}

func checkClipRange(aspect, near, far float32) {
	if aspect <= 0 {
		panic("arbor: aspect ratio must be positive")
	}
	if math32.Abs(far-near) < 1e-6 {
		panic("arbor: near and far planes must differ")
	}
}

// SetPerspective sets a perspective projection. fovy is the vertical field
// of view in degrees and must lie in (0, 180); near must be positive.
func (n *Node) SetPerspective(fovy, aspect, near, far float32) {
	n.mustBeCamera()
	if fovy <= 0 || fovy >= 180 {
		panic("arbor: field of view must lie in (0, 180)")
	}
	if near <= 0 || far <= 0 {
		panic("arbor: perspective clip planes must be positive")
	}
	checkClipRange(aspect, near, far)
	n.setProjection(ProjectionPerspective,
		mgl32.Perspective(mgl32.DegToRad(fovy), aspect, near, far),
		[4]float32{fovy, aspect, near, far})
}

// SetParallel sets an orthographic projection showing height units
// vertically and height*aspect units horizontally.
func (n *Node) SetParallel(height, aspect, near, far float32) {
	n.mustBeCamera()
	if height <= 0 {
		panic("arbor: parallel projection height must be positive")
	}
	checkClipRange(aspect, near, far)
	hw, hh := height*aspect/2, height/2
	n.setProjection(ProjectionParallel,
		mgl32.Ortho(-hw, hw, -hh, hh, near, far),
		[4]float32{height, aspect, near, far})
}

// SetGeneric sets an arbitrary projection matrix.
func (n *Node) SetGeneric(m mgl32.Mat4) {
	n.mustBeCamera()
	n.setProjection(ProjectionGeneric, m, [4]float32{})
}

func (n *Node) setProjection(kind ProjectionKind, m mgl32.Mat4, params [4]float32) {
	n.projection.kind = kind
	n.projection.m = m
	n.projection.params = params
	n.projection.frustumValid = false
}

// Projection returns the projection matrix and how it was specified.
func (n *Node) Projection() (mgl32.Mat4, ProjectionKind) {
	n.mustBeCamera()
	return n.projection.m, n.projection.kind
}

// ProjectionParams returns the parameters of the last SetPerspective
// (fovy, aspect, near, far) or SetParallel (height, aspect, near, far) call.
func (n *Node) ProjectionParams() [4]float32 {
	n.mustBeCamera()
	return n.projection.params
}

// Frustum returns the camera-space clip planes of the projection.
func (n *Node) Frustum() *Frustum {
	n.mustBeCamera()
	if !n.projection.frustumValid {
		n.projection.frustum = FrustumFromProjection(n.projection.m)
		n.projection.frustumValid = true
	}
	return &n.projection.frustum
}
