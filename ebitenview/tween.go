package ebitenview

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/arbor"
)

// TweenGroup animates up to 4 float32 values of an arbor node at once.
// Create one with TweenTranslation, TweenScale, TweenAlpha or TweenSpin and
// call Update(dt) each frame; the group writes the values through the
// node's setters. If the target node is disposed, the group stops
// immediately.
//
// There is no global animation manager; callers call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	values [4]float32
	apply  func(n *arbor.Node, v [4]float32)
	target *arbor.Node
	Done   bool
}

// Update advances all tweens by dt seconds and applies the values to the
// target. If the target has been disposed, Done is set and nothing is
// written.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(g.target, g.values)
}

func newTweenGroup(node *arbor.Node, from, to []float32, duration float32, fn ease.TweenFunc, apply func(*arbor.Node, [4]float32)) *TweenGroup {
	g := &TweenGroup{count: len(from), target: node, apply: apply}
	for i := range from {
		g.tweens[i] = gween.New(from[i], to[i], duration, fn)
		g.values[i] = from[i]
	}
	return g
}

// TweenTranslation animates the node's translation to the given point.
func TweenTranslation(node *arbor.Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := node.Translation()
	return newTweenGroup(node, from[:], to[:], duration, fn, func(n *arbor.Node, v [4]float32) {
		n.SetTranslation(v[0], v[1], v[2])
	})
}

// TweenScale animates the node's scale to the given factors.
func TweenScale(node *arbor.Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := node.Scale()
	return newTweenGroup(node, from[:], to[:], duration, fn, func(n *arbor.Node, v [4]float32) {
		n.SetScale(v[0], v[1], v[2])
	})
}

// TweenAlpha animates the node's alpha factor.
func TweenAlpha(node *arbor.Node, to float32, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, []float32{node.AlphaFactor()}, []float32{to}, duration, fn, func(n *arbor.Node, v [4]float32) {
		n.SetAlphaFactor(v[0])
	})
}

// TweenSpin animates the node's orientation as a rotation about axis from
// fromDeg to toDeg degrees. The axis must not be zero.
func TweenSpin(node *arbor.Node, axis mgl32.Vec3, fromDeg, toDeg float32, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, []float32{fromDeg}, []float32{toDeg}, duration, fn, func(n *arbor.Node, v [4]float32) {
		n.SetOrientation(v[0], axis)
	})
}
