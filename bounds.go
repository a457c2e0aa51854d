package arbor

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. The empty box has Min > Max.
type AABB struct {
	Min, Max mgl32.Vec3
}

// EmptyAABB returns a box that contains nothing and is the identity for Union.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend returns the smallest box containing b and p.
func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := range c {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[i][axis] = b.Max[axis]
			} else {
				c[i][axis] = b.Min[axis]
			}
		}
	}
	return c
}

// Transform returns the axis-aligned box enclosing b after transformation
// by m. Affine matrices use Arvo's method; projective ones transform all
// eight corners with a perspective divide.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	if !isAffine(m) {
		out := EmptyAABB()
		for _, c := range b.Corners() {
			out = out.Extend(mgl32.TransformCoordinate(c, m))
		}
		return out
	}
	out := AABB{
		Min: mgl32.Vec3{m[12], m[13], m[14]},
		Max: mgl32.Vec3{m[12], m[13], m[14]},
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			e := m.At(row, col)
			lo := e * b.Min[col]
			hi := e * b.Max[col]
			if lo > hi {
				lo, hi = hi, lo
			}
			out.Min[row] += lo
			out.Max[row] += hi
		}
	}
	return out
}

// aabbFromPoints returns the bounds of pts, or the empty box if pts is empty.
func aabbFromPoints(pts []mgl32.Vec3) AABB {
	b := EmptyAABB()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}
