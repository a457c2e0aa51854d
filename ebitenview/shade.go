package ebitenview

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/arbor"
)

// minClipW is the smallest clip-space w accepted for a projected vertex.
// Triangles with a vertex at or behind the eye plane are dropped rather
// than clipped.
const minClipW = 1e-4

// project maps a local-space point through mvp to screen pixels. ok is false
// when the point lies behind the eye.
func project(mvp mgl32.Mat4, p mgl32.Vec3, width, height float32) (x, y, depth float32, ok bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w <= minClipW {
		return 0, 0, 0, false
	}
	nx, ny := clip[0]/w, clip[1]/w
	x = (nx + 1) * 0.5 * width
	y = (1 - ny) * 0.5 * height
	return x, y, w, true
}

// frontFacing reports whether the screen-space triangle winds
// counter-clockwise as seen by the viewer. Screen Y points down, so the sign
// is flipped relative to normalized device coordinates.
func frontFacing(x0, y0, x1, y1, x2, y2 float32) bool {
	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	return area < 0
}

// culled reports whether a triangle with the given facing is discarded by
// the polygon mode. A nil mode culls back faces with counter-clockwise
// winding.
func culled(pm *arbor.PolygonMode, ccw bool) bool {
	cull, front := arbor.CullBack, ccw
	if pm != nil {
		cull = pm.Culling
		if !pm.CounterClockwise {
			front = !ccw
		}
	}
	switch cull {
	case arbor.CullBack:
		return !front
	case arbor.CullFront:
		return front
	default:
		return false
	}
}

// faceNormal returns the unit normal of the camera-space triangle, or the
// zero vector for a degenerate one.
func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return n.Mul(1 / l)
}

// lightTerms accumulates the ambient and diffuse light reaching a surface
// point p with normal n, both in camera space.
func lightTerms(lights []arbor.RegisteredLight, p, n mgl32.Vec3, twoSided bool) (ambient, diffuse mgl32.Vec3) {
	for i := range lights {
		l := &lights[i]
		c := mgl32.Vec3{l.Params.Color.R, l.Params.Color.G, l.Params.Color.B}.Mul(l.Params.Intensity)
		if l.Params.Mode == arbor.LightAmbient {
			ambient = ambient.Add(c)
			continue
		}

		var toLight mgl32.Vec3
		atten := float32(1)
		if l.Params.Mode == arbor.LightDirectional {
			toLight = l.Direction.Mul(-1)
		} else {
			d := l.Position.Sub(p)
			dist := d.Len()
			if dist == 0 {
				continue
			}
			toLight = d.Mul(1 / dist)
			den := l.Params.ConstantAttenuation + l.Params.LinearAttenuation*dist + l.Params.QuadraticAttenuation*dist*dist
			if den > 0 {
				atten = 1 / den
			}
			if l.Params.Mode == arbor.LightSpot {
				cos := toLight.Mul(-1).Dot(l.Direction)
				if cos < math32.Cos(mgl32.DegToRad(l.Params.SpotAngle)) {
					continue
				}
				atten *= math32.Pow(cos, l.Params.SpotExponent)
			}
		}

		lambert := n.Dot(toLight)
		if twoSided {
			lambert = math32.Abs(lambert)
		}
		if lambert <= 0 {
			continue
		}
		diffuse = diffuse.Add(c.Mul(lambert * atten))
	}
	return ambient, diffuse
}

// shade returns the lit color of a surface. base is the vertex or white
// color; without a material the surface is unlit.
func shade(m *arbor.Material, base arbor.Color, ambient, diffuse mgl32.Vec3, lit bool) arbor.Color {
	if m == nil || !lit {
		return base
	}
	kd := m.Diffuse
	if m.VertexColorTracking {
		kd = base
	}
	out := arbor.Color{
		R: m.Emissive.R + ambient[0]*m.Ambient.R + diffuse[0]*kd.R,
		G: m.Emissive.G + ambient[1]*m.Ambient.G + diffuse[1]*kd.G,
		B: m.Emissive.B + ambient[2]*m.Ambient.B + diffuse[2]*kd.B,
		A: kd.A,
	}
	out.R = clamp01(out.R)
	out.G = clamp01(out.G)
	out.B = clamp01(out.B)
	return out
}

// fogFactor returns how much of the surface color survives fog at the
// given camera distance: 1 means no fog.
func fogFactor(f *arbor.Fog, dist float32) float32 {
	if f == nil {
		return 1
	}
	switch f.Mode {
	case arbor.FogExponential:
		return clamp01(math32.Exp(-f.Density * dist))
	default:
		if f.Far <= f.Near {
			return 1
		}
		return clamp01((f.Far - dist) / (f.Far - f.Near))
	}
}

// applyFog blends c toward the fog color by 1 - k.
func applyFog(f *arbor.Fog, c arbor.Color, k float32) arbor.Color {
	if f == nil || k >= 1 {
		return c
	}
	return arbor.Color{
		R: f.Color.R + (c.R-f.Color.R)*k,
		G: f.Color.G + (c.G-f.Color.G)*k,
		B: f.Color.B + (c.B-f.Color.B)*k,
		A: c.A,
	}
}

// ebitenBlend returns the ebiten.Blend for an appearance. Ebitengine has no
// doubling multiply, so ModulateX2 draws like Modulate.
func ebitenBlend(a *arbor.Appearance) ebiten.Blend {
	if a == nil || a.CompositingMode() == nil {
		return ebiten.BlendSourceOver
	}
	switch a.CompositingMode().Blending {
	case arbor.BlendAlphaAdd:
		return ebiten.BlendLighter
	case arbor.BlendModulate, arbor.BlendModulateX2:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
