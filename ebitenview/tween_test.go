package ebitenview

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestTweenTranslationReachesTarget(t *testing.T) {
	eng := newTestEngine(t)
	node := eng.NewGroup("pos")
	node.SetTranslation(10, 20, 0)

	g := TweenTranslation(node, mgl32.Vec3{100, 200, -5}, 1.0, ease.Linear)

	// Run for full duration using exact halves to avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	require.True(t, g.Done)
	assertVecNear(t, mgl32.Vec3{100, 200, -5}, node.Translation())
}

func TestTweenScaleReachesTarget(t *testing.T) {
	eng := newTestEngine(t)
	node := eng.NewGroup("scale")

	g := TweenScale(node, mgl32.Vec3{2, 3, 1}, 0.5, ease.Linear)
	g.Update(0.25)
	g.Update(0.25)

	require.True(t, g.Done)
	assertVecNear(t, mgl32.Vec3{2, 3, 1}, node.Scale())
}

func TestTweenAlphaInterpolates(t *testing.T) {
	eng := newTestEngine(t)
	node := eng.NewGroup("alpha")

	tw := TweenAlpha(node, 0, 1.0, ease.Linear)

	tw.Update(0.5)
	require.False(t, tw.Done, "should not be done at halfway")
	assert.InDelta(t, 0.5, node.AlphaFactor(), 0.01)

	tw.Update(0.5)
	require.True(t, tw.Done)
	assert.InDelta(t, 0, node.AlphaFactor(), 0.001)
}

func TestTweenSpinInvalidatesComposite(t *testing.T) {
	eng := newTestEngine(t)
	node := eng.NewGroup("spin")
	before := node.CompositeTransform()

	tw := TweenSpin(node, mgl32.Vec3{0, 1, 0}, 0, 90, 1.0, ease.Linear)
	tw.Update(1.0)

	require.True(t, tw.Done)
	after := node.CompositeTransform()
	assert.NotEqual(t, before, after)
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, after))
}

func TestTweenGroupDoneFlagTransition(t *testing.T) {
	eng := newTestEngine(t)
	node := eng.NewGroup("done")
	g := TweenTranslation(node, mgl32.Vec3{50, 50, 0}, 0.5, ease.Linear)

	require.False(t, g.Done)
	g.Update(0.25)
	require.False(t, g.Done, "partway through")
	g.Update(0.25)
	require.True(t, g.Done)

	// Update after done is a no-op.
	g.Update(0.1)
	assert.True(t, g.Done)
}

func TestTweenGroupDisposedMidAnimation(t *testing.T) {
	eng := newTestEngine(t)
	node := eng.NewGroup("mid-dispose")

	g := TweenTranslation(node, mgl32.Vec3{100, 100, 0}, 1.0, ease.Linear)
	g.Update(0.1)
	g.Update(0.1)
	require.False(t, g.Done)

	node.Dispose()
	saved := node.Translation()

	g.Update(0.1)
	require.True(t, g.Done, "disposal stops the group")
	assert.Equal(t, saved, node.Translation())
}

func TestTweenEasingFunctionsProduceDifferentCurves(t *testing.T) {
	eng := newTestEngine(t)
	nodeL, nodeC := eng.NewGroup("linear"), eng.NewGroup("cubic")

	gL := TweenTranslation(nodeL, mgl32.Vec3{100, 0, 0}, 1.0, ease.Linear)
	gC := TweenTranslation(nodeC, mgl32.Vec3{100, 0, 0}, 1.0, ease.OutCubic)
	gL.Update(0.5)
	gC.Update(0.5)

	assert.Greater(t, nodeC.Translation()[0]-nodeL.Translation()[0], float32(1), "OutCubic leads linear at the midpoint")
}

func TestTweenGroupUpdateZeroAlloc(t *testing.T) {
	eng := newTestEngine(t)
	node := eng.NewGroup("alloc")
	g := TweenTranslation(node, mgl32.Vec3{100, 100, 0}, 1.0, ease.Linear)
	g.Update(0.01)

	allocs := testing.AllocsPerRun(100, func() {
		g.Update(0.001)
	})
	assert.Zero(t, allocs)
}
