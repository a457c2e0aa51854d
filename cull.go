package arbor

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CullMask records, for each of the six frustum planes, whether the current
// subtree is inside, outside, or still intersecting that plane. Each plane
// uses two bits; planes are ordered left, right, bottom, top, near, far.
// Only intersecting planes are tested again further down the tree.
type CullMask uint16

// Per-plane cull states.
const (
	cullInside     CullMask = 0
	cullIntersects CullMask = 1
	cullOutside    CullMask = 2

	cullPlaneCount = 6
	cullPlaneBits  = 2
)

const (
	// CullMaskAll marks every plane as still to be tested: nothing is known
	// to be culled, so everything is potentially visible. Traversal resets
	// to this mask whenever it enters a group from the side.
	CullMaskAll CullMask = 0x555

	// cullMaskInside means fully inside every plane; no tests remain.
	cullMaskInside CullMask = 0

	cullMaskOutsideBits CullMask = 0xAAA
)

// Plane returns the state of frustum plane i.
func (m CullMask) Plane(i int) CullMask {
	return (m >> (cullPlaneBits * i)) & 3
}

// Culled reports whether the subtree lies fully outside at least one plane.
func (m CullMask) Culled() bool {
	return m&cullMaskOutsideBits != 0
}

// FullyInside reports whether no plane needs further testing.
func (m CullMask) FullyInside() bool {
	return m == cullMaskInside
}

func (m CullMask) withPlane(i int, state CullMask) CullMask {
	shift := cullPlaneBits * i
	return m&^(3<<shift) | state<<shift
}

// String renders the mask as one letter per plane: i(nside), x (intersects),
// o(utside).
func (m CullMask) String() string {
	var b [cullPlaneCount]byte
	for i := range b {
		switch m.Plane(i) {
		case cullInside:
			b[i] = 'i'
		case cullIntersects:
			b[i] = 'x'
		case cullOutside:
			b[i] = 'o'
		default:
			b[i] = '?'
		}
	}
	return string(b[:])
}

// validate panics if any plane holds the unused 0b11 state.
func (m CullMask) validate() {
	for i := 0; i < cullPlaneCount; i++ {
		if m.Plane(i) == 3 {
			panic(fmt.Sprintf("arbor debug: cull mask %#x has invalid state on plane %d", uint16(m), i))
		}
	}
	if m>>(cullPlaneBits*cullPlaneCount) != 0 {
		panic(fmt.Sprintf("arbor debug: cull mask %#x has bits above plane %d", uint16(m), cullPlaneCount-1))
	}
}

// Frustum holds the six clip planes (a, b, c, d) in camera space. A point p
// is on the inner side of a plane when a*x + b*y + c*z + d >= 0.
type Frustum [cullPlaneCount]mgl32.Vec4

// FrustumFromProjection extracts the clip planes from a projection matrix
// using the Gribb/Hartmann method.
func FrustumFromProjection(p mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := p.Row(0), p.Row(1), p.Row(2), p.Row(3)
	f := Frustum{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	for i := range f {
		f[i] = normalizePlane(f[i])
	}
	return f
}

func normalizePlane(pl mgl32.Vec4) mgl32.Vec4 {
	l := math32.Sqrt(pl[0]*pl[0] + pl[1]*pl[1] + pl[2]*pl[2])
	if l == 0 {
		return pl
	}
	return pl.Mul(1 / l)
}

// CullBox refines mask by testing box, given in node-local coordinates,
// against the planes that are still intersecting. toCamera maps the node's
// local space to camera space. Testing stops at the first plane the box is
// fully outside of.
func (f *Frustum) CullBox(box AABB, toCamera mgl32.Mat4, mask CullMask) CullMask {
	if mask.Culled() || mask.FullyInside() || box.IsEmpty() {
		return mask
	}
	// A camera-space plane pl maps to node space as pl * toCamera.
	t := toCamera.Transpose()
	for i := 0; i < cullPlaneCount; i++ {
		if mask.Plane(i) != cullIntersects {
			continue
		}
		pl := t.Mul4x1(f[i])
		var pv, nv mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if pl[axis] >= 0 {
				pv[axis], nv[axis] = box.Max[axis], box.Min[axis]
			} else {
				pv[axis], nv[axis] = box.Min[axis], box.Max[axis]
			}
		}
		if planeDistance(pl, pv) < 0 {
			return mask.withPlane(i, cullOutside)
		}
		if planeDistance(pl, nv) >= 0 {
			mask = mask.withPlane(i, cullInside)
		}
	}
	return mask
}

func planeDistance(pl mgl32.Vec4, p mgl32.Vec3) float32 {
	return pl[0]*p[0] + pl[1]*p[1] + pl[2]*p[2] + pl[3]
}
