package ebitenview

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/arbor"
)

const tol = 1e-4

func TestProject(t *testing.T) {
	mvp := mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 100)

	x, y, depth, ok := project(mvp, mgl32.Vec3{0, 0, -10}, 200, 100)
	require.True(t, ok)
	assert.InDelta(t, 100, x, tol)
	assert.InDelta(t, 50, y, tol)
	assert.InDelta(t, 10, depth, tol)

	// Up in camera space is up on screen.
	_, y, _, ok = project(mvp, mgl32.Vec3{0, 5, -10}, 200, 100)
	require.True(t, ok)
	assert.InDelta(t, 25, y, tol)

	_, _, _, ok = project(mvp, mgl32.Vec3{0, 0, 10}, 200, 100)
	assert.False(t, ok, "points behind the eye do not project")
}

func TestFrontFacingAndCulling(t *testing.T) {
	// Counter-clockwise on screen with Y down.
	ccw := frontFacing(0, 10, 10, 10, 5, 0)
	cw := frontFacing(0, 10, 5, 0, 10, 10)
	assert.True(t, ccw)
	assert.False(t, cw)

	assert.False(t, culled(nil, true), "default mode keeps front faces")
	assert.True(t, culled(nil, false), "default mode culls back faces")

	pm := arbor.NewPolygonMode()
	pm.Culling = arbor.CullFront
	assert.True(t, culled(pm, true))
	pm.CounterClockwise = false
	assert.False(t, culled(pm, true), "clockwise winding swaps the front face")
	pm.Culling = arbor.CullNone
	assert.False(t, culled(pm, true))
	assert.False(t, culled(pm, false))
}

func TestFaceNormal(t *testing.T) {
	n := faceNormal(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 0, 0}, mgl32.Vec3{0, 2, 0})
	assert.InDelta(t, 1, n[2], tol)
	assert.Equal(t, mgl32.Vec3{}, faceNormal(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 0, 0}))
}

func registered(mode arbor.LightMode, pos, dir mgl32.Vec3) arbor.RegisteredLight {
	return arbor.RegisteredLight{
		Params:    arbor.DefaultLightParams(mode),
		Position:  pos,
		Direction: dir,
		Scope:     arbor.ScopeAll,
	}
}

func TestLightTerms(t *testing.T) {
	up := mgl32.Vec3{0, 0, 1}
	lights := []arbor.RegisteredLight{
		registered(arbor.LightAmbient, mgl32.Vec3{}, mgl32.Vec3{}),
		registered(arbor.LightDirectional, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}),
	}
	ambient, diffuse := lightTerms(lights, mgl32.Vec3{}, up, false)
	assert.InDelta(t, 1, ambient[0], tol)
	assert.InDelta(t, 1, diffuse[0], tol)

	// A directional light from behind the face contributes nothing unless
	// the surface is two-sided.
	back := []arbor.RegisteredLight{registered(arbor.LightDirectional, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})}
	_, diffuse = lightTerms(back, mgl32.Vec3{}, up, false)
	assert.Equal(t, mgl32.Vec3{}, diffuse)
	_, diffuse = lightTerms(back, mgl32.Vec3{}, up, true)
	assert.InDelta(t, 1, diffuse[1], tol)
}

func TestLightTermsAttenuationAndSpot(t *testing.T) {
	up := mgl32.Vec3{0, 0, 1}
	omni := registered(arbor.LightOmni, mgl32.Vec3{0, 0, 2}, mgl32.Vec3{})
	omni.Params.LinearAttenuation = 1
	_, diffuse := lightTerms([]arbor.RegisteredLight{omni}, mgl32.Vec3{}, up, false)
	assert.InDelta(t, 1.0/3, diffuse[0], tol, "1 / (1 + 1*2)")

	spot := registered(arbor.LightSpot, mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, -1})
	spot.Params.SpotAngle = 10
	_, diffuse = lightTerms([]arbor.RegisteredLight{spot}, mgl32.Vec3{}, up, false)
	assert.InDelta(t, 1, diffuse[0], tol, "on axis")
	_, diffuse = lightTerms([]arbor.RegisteredLight{spot}, mgl32.Vec3{5, 0, 0}, up, false)
	assert.Equal(t, mgl32.Vec3{}, diffuse, "outside the cone")
}

func TestShade(t *testing.T) {
	base := arbor.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	assert.Equal(t, base, shade(nil, base, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{}, true), "no material is unlit")

	m := arbor.NewMaterial()
	assert.Equal(t, base, shade(m, base, mgl32.Vec3{}, mgl32.Vec3{}, false), "no lights is unlit")

	got := shade(m, base, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, true)
	assert.InDelta(t, 1.0, got.R, tol, "0.2 ambient + 0.8 diffuse")

	m.VertexColorTracking = true
	got = shade(m, base, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, true)
	assert.InDelta(t, 0.5, got.G, tol, "diffuse tracks the vertex color")
}

func TestFog(t *testing.T) {
	assert.Equal(t, float32(1), fogFactor(nil, 100))

	f := arbor.NewFog()
	f.Near, f.Far = 10, 20
	assert.InDelta(t, 1, fogFactor(f, 5), tol)
	assert.InDelta(t, 0.5, fogFactor(f, 15), tol)
	assert.InDelta(t, 0, fogFactor(f, 30), tol)

	f.Mode = arbor.FogExponential
	f.Density = 0
	assert.InDelta(t, 1, fogFactor(f, 30), tol)

	f.Color = arbor.Color{R: 1, G: 0, B: 0, A: 1}
	c := applyFog(f, arbor.Color{R: 0, G: 1, B: 0, A: 0.5}, 0.25)
	assert.InDelta(t, 0.75, c.R, tol)
	assert.InDelta(t, 0.25, c.G, tol)
	assert.InDelta(t, 0.5, c.A, tol, "fog keeps the surface alpha")
}

func TestEbitenBlend(t *testing.T) {
	assert.Equal(t, ebiten.BlendSourceOver, ebitenBlend(nil))

	a := arbor.NewAppearance()
	assert.Equal(t, ebiten.BlendSourceOver, ebitenBlend(a))

	cm := arbor.NewCompositingMode()
	a.SetCompositingMode(cm)
	cm.Blending = arbor.BlendAlphaAdd
	assert.Equal(t, ebiten.BlendLighter, ebitenBlend(a))
	cm.Blending = arbor.BlendModulate
	mod := ebitenBlend(a)
	cm.Blending = arbor.BlendModulateX2
	assert.Equal(t, mod, ebitenBlend(a))
	assert.Equal(t, ebiten.BlendFactorDestinationColor, mod.BlendFactorSourceRGB)
}

func TestToRGBA(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 127, G: 0, B: 0, A: 127}, toRGBA(arbor.Color{R: 1, A: 0.5}))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, toRGBA(arbor.Color{R: 2, G: 1, B: 1, A: 1}))
}

func TestScopedLights(t *testing.T) {
	a := registered(arbor.LightAmbient, mgl32.Vec3{}, mgl32.Vec3{})
	a.Scope = 0x1
	b := registered(arbor.LightAmbient, mgl32.Vec3{}, mgl32.Vec3{})
	b.Scope = 0x2
	got := scopedLights(nil, []arbor.RegisteredLight{a, b}, 0x2)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(0x2), got[0].Scope)
}
