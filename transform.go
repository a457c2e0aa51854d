package arbor

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// singularEpsilon bounds |det| relative to the product of the column
// lengths (Hadamard's bound), below which a matrix is treated as
// non-invertible. The ratio does not depend on the matrix's scale.
const singularEpsilon = 1e-6

// computeComposite composes the local transform of n.
//
// Composition order:
//
//	T * R * S * M
func computeComposite(n *Node) mgl32.Mat4 {
	m := mgl32.Translate3D(n.translation[0], n.translation[1], n.translation[2]).
		Mul4(n.orientation.Mat4()).
		Mul4(mgl32.Scale3D(n.scale[0], n.scale[1], n.scale[2]))
	if n.hasMatrix {
		m = m.Mul4(n.matrix)
	}
	return m
}

// composite returns the composite transform of n through the engine cache.
func (n *Node) composite() mgl32.Mat4 {
	if n.eng == nil {
		return computeComposite(n)
	}
	if m, ok := n.eng.tc.Composite(n); ok {
		return m
	}
	m := computeComposite(n)
	n.eng.tc.CacheComposite(n, m)
	return m
}

// invertTransform inverts m, reporting false if it is singular. Affine
// matrices are judged by their upper-left 3x3 block, so a distant
// translation does not make a well-conditioned matrix look singular.
func invertTransform(m mgl32.Mat4) (mgl32.Mat4, bool) {
	if !isAffine(m) {
		bound := float32(1)
		for c := 0; c < 4; c++ {
			bound *= m.Col(c).Len()
		}
		return invertScaled(m, bound)
	}

	a := m.Mat3()
	bound := a.Col(0).Len() * a.Col(1).Len() * a.Col(2).Len()
	det := a.Det()
	if det == 0 || math32.Abs(det) <= singularEpsilon*bound {
		return mgl32.Mat4{}, false
	}
	// mgl32 treats tiny determinants as zero, so invert a rescaled block:
	// inv(A) = k * inv(k*A).
	k := 1 / maxAbs(a[:])
	ai := a.Mul(k).Inv().Mul(k)
	t := ai.Mul3x1(m.Col(3).Vec3()).Mul(-1)
	inv := ai.Mat4()
	inv[12], inv[13], inv[14] = t[0], t[1], t[2]
	return inv, finite(inv[:])
}

// invertScaled inverts a general 4x4 matrix with the same relative
// singularity test as the affine path.
func invertScaled(m mgl32.Mat4, bound float32) (mgl32.Mat4, bool) {
	det := m.Det()
	if det == 0 || math32.Abs(det) <= singularEpsilon*bound {
		return mgl32.Mat4{}, false
	}
	k := 1 / maxAbs(m[:])
	inv := m.Mul(k).Inv().Mul(k)
	return inv, finite(inv[:])
}

func maxAbs(vs []float32) float32 {
	var k float32
	for _, v := range vs {
		k = math32.Max(k, math32.Abs(v))
	}
	return k
}

func finite(vs []float32) bool {
	for _, v := range vs {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// transformChanged applies cache invalidation and bbox staleness after a
// local transform mutation.
func (n *Node) transformChanged() {
	if n.eng != nil {
		n.eng.transformChanged(n)
	}
	invalidateBBox(n.parent)
	n.markTransformsDirty()
}

// --- Setters ---

// SetTranslation sets the node's translation.
func (n *Node) SetTranslation(x, y, z float32) {
	n.translation = mgl32.Vec3{x, y, z}
	n.transformChanged()
}

// Translate adds (dx, dy, dz) to the node's translation.
func (n *Node) Translate(dx, dy, dz float32) {
	n.translation = n.translation.Add(mgl32.Vec3{dx, dy, dz})
	n.transformChanged()
}

// Translation returns the node's translation.
func (n *Node) Translation() mgl32.Vec3 {
	return n.translation
}

// SetOrientation sets the orientation to a rotation of angle degrees about
// axis. A zero axis with a non-zero angle panics.
func (n *Node) SetOrientation(angle float32, axis mgl32.Vec3) {
	n.orientation = axisAngleQuat(angle, axis)
	n.transformChanged()
}

// PostRotate multiplies the current orientation by a rotation of angle
// degrees about axis.
func (n *Node) PostRotate(angle float32, axis mgl32.Vec3) {
	n.orientation = n.orientation.Mul(axisAngleQuat(angle, axis)).Normalize()
	n.transformChanged()
}

// SetOrientationQuat sets the orientation directly.
func (n *Node) SetOrientationQuat(q mgl32.Quat) {
	n.orientation = q.Normalize()
	n.transformChanged()
}

// Orientation returns the orientation quaternion.
func (n *Node) Orientation() mgl32.Quat {
	return n.orientation
}

func axisAngleQuat(angle float32, axis mgl32.Vec3) mgl32.Quat {
	if angle == 0 {
		return mgl32.QuatIdent()
	}
	if axis.Len() == 0 {
		panic("arbor: rotation axis must not be zero")
	}
	return mgl32.QuatRotate(mgl32.DegToRad(angle), axis.Normalize())
}

// SetScale sets the node's scale factors.
func (n *Node) SetScale(sx, sy, sz float32) {
	n.scale = mgl32.Vec3{sx, sy, sz}
	n.transformChanged()
}

// Scale returns the node's scale factors.
func (n *Node) Scale() mgl32.Vec3 {
	return n.scale
}

// SetTransform sets the generic matrix component M, applied before scale.
func (n *Node) SetTransform(m mgl32.Mat4) {
	n.matrix = m
	n.hasMatrix = m != mgl32.Ident4()
	n.transformChanged()
}

// Transform returns the generic matrix component.
func (n *Node) Transform() mgl32.Mat4 {
	return n.matrix
}

// CompositeTransform returns T * R * S * M for this node.
func (n *Node) CompositeTransform() mgl32.Mat4 {
	return n.composite()
}

// --- Paths ---

// toAncestor returns the transform from n's local coordinates to the local
// coordinates of ancestor, which must be n or one of its ancestors.
func (n *Node) toAncestor(ancestor *Node) mgl32.Mat4 {
	m := mgl32.Ident4()
	for p := n; p != ancestor; p = p.parent {
		m = p.composite().Mul4(m)
	}
	return m
}

// WorldTransform returns the transform from n's local coordinates to the
// coordinates of its root.
func (n *Node) WorldTransform() mgl32.Mat4 {
	return n.toAncestor(nil)
}

// TransformTo returns the transform mapping n's local coordinates to
// target's local coordinates. Results are served from and stored into the
// engine path cache.
func (n *Node) TransformTo(target *Node) (mgl32.Mat4, error) {
	if n == target {
		return mgl32.Ident4(), nil
	}
	var tc *TCache
	if n.eng != nil {
		tc = n.eng.tc
		if m, ok := tc.Path(n, target); ok {
			return m, nil
		}
	}
	lca := commonAncestor(n, target)
	if lca == nil {
		return mgl32.Mat4{}, ErrNotConnected
	}
	up := n.toAncestor(lca)
	down, ok := invertTransform(target.toAncestor(lca))
	if !ok {
		return mgl32.Mat4{}, ErrSingularTransform
	}
	m := down.Mul4(up)
	if tc != nil {
		tc.CachePath(n, target, m)
	}
	return m, nil
}

// commonAncestor returns the lowest common ancestor of a and b, or nil if
// they are in different trees.
func commonAncestor(a, b *Node) *Node {
	da, db := depth(a), depth(b)
	for ; da > db; da-- {
		a = a.parent
	}
	for ; db > da; db-- {
		b = b.parent
	}
	for a != b {
		a, b = a.parent, b.parent
	}
	return a
}

func depth(n *Node) int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}
