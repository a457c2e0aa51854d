package arbor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// renderPass is the state shared by every setupRender call of one render
// call.
type renderPass struct {
	queue   *RenderQueue
	root    *Node
	lights  *LightManager
	frustum *Frustum
	scope   uint32
	stats   *Stats
}

// setupState is what flows along the traversal: the transform from the
// current node's local space to camera space, and the cull mask inherited
// from the node it was reached from.
type setupState struct {
	toCamera mgl32.Mat4
	mask     CullMask
}

// setupRender visits n as part of the walk started at the pass root (or at
// the camera). caller is the node n was reached from:
//
//   - caller == n.parent, or nil with n the pass root: downward. s holds
//     n's camera-space transform and the inherited cull mask.
//   - caller is a child of n, or nil with n not the pass root: upward. s
//     holds n's camera-space transform; n renders its other children and
//     then hands over to its parent.
//
// The first failure aborts the whole chain.
func (p *renderPass) setupRender(n, caller *Node, s setupState) error {
	p.stats.Visited++
	switch n.Type {
	case NodeTypeGroup, NodeTypeWorld:
		return p.setupGroup(n, caller, s)
	case NodeTypeCamera:
		return p.setupCamera(n, caller, s)
	case NodeTypeLight:
		return p.setupLight(n, caller, s)
	case NodeTypeMesh:
		return p.setupMesh(n, caller, s)
	case NodeTypeSprite:
		return p.setupSprite(n, caller, s)
	default:
		panic(fmt.Sprintf("arbor: setupRender on unknown node type %d", n.Type))
	}
}

// downward reports whether n was reached from its parent side.
func (p *renderPass) downward(n, caller *Node) bool {
	if caller == nil {
		return n == p.root
	}
	return caller == n.parent
}

func (p *renderPass) setupGroup(n, caller *Node, s setupState) error {
	var enabled bool
	if caller != nil && caller == n.parent {
		enabled = n.enableBits&enableRender != 0
	} else {
		// Entered from the side: nothing inherited can be trusted.
		enabled = hasEnabledPath(n, p.root)
		s.mask = CullMaskAll
	}

	if enabled && (n.numRenderables > 0 || n.numNonCullables > 0) {
		n.updateCullingPolicy()
		if n.bbox != nil && !s.mask.FullyInside() && !s.mask.Culled() {
			p.stats.BoxTests++
			s.mask = p.frustum.CullBox(n.Bounds(), s.toCamera, s.mask)
			if n.eng.debug {
				s.mask.validate()
			}
		}
		for _, c := range n.children {
			if c == caller {
				continue
			}
			if s.mask.Culled() && !c.nonCullable() {
				if p.wouldDraw(c) {
					p.stats.Culled += c.subtreeCounts().renderables
				}
				continue
			}
			cs := setupState{
				toCamera: s.toCamera.Mul4(c.composite()),
				mask:     s.mask,
			}
			if err := p.setupRender(c, n, cs); err != nil {
				return err
			}
		}
	}

	if p.downward(n, caller) || n == p.root {
		return nil
	}
	return p.ascend(n, s.toCamera)
}

// ascend continues the walk at n's parent, converting toCamera from n's
// space to the parent's space.
func (p *renderPass) ascend(n *Node, toCamera mgl32.Mat4) error {
	if n.parent == nil {
		return ErrCameraNotInWorld
	}
	inv, ok := invertTransform(n.composite())
	if !ok {
		return fmt.Errorf("%w: %s", ErrSingularTransform, n)
	}
	return p.setupRender(n.parent, n, setupState{
		toCamera: toCamera.Mul4(inv),
		mask:     CullMaskAll,
	})
}

// Cameras only seed the upward walk.
func (p *renderPass) setupCamera(n, caller *Node, s setupState) error {
	if caller != nil || n == p.root {
		return nil
	}
	return p.ascend(n, s.toCamera)
}

// Lights register with the pass light manager when reached downward.
func (p *renderPass) setupLight(n, caller *Node, s setupState) error {
	if !p.downward(n, caller) || p.lights == nil {
		return nil
	}
	if n.enableBits&enableRender == 0 {
		return nil
	}
	p.lights.Insert(n, s.toCamera, n.scope)
	p.stats.Lights++
	return nil
}

// renderable reports whether a mesh or sprite reached by s should queue
// itself, refining the cull mask against its own bounds.
func (p *renderPass) renderable(n, caller *Node, s setupState, bounds AABB) bool {
	if !p.downward(n, caller) {
		return false
	}
	if n.enableBits&enableRender == 0 || n.scope&p.scope == 0 {
		return false
	}
	mask := s.mask
	if n == p.root {
		mask = CullMaskAll
	}
	if !mask.Culled() && !mask.FullyInside() {
		mask = p.frustum.CullBox(bounds, s.toCamera, mask)
	}
	if mask.Culled() {
		p.stats.Culled++
		return false
	}
	return true
}

// drawKey ORs the blend bit into an appearance key. Translucency from the
// alpha factor sorts like blending.
func drawKey(a *Appearance, alpha uint32) uint32 {
	key := a.SortKey()
	if a.HasBlending() || alpha < alphaOne {
		key |= sortKeyBlendBit
	}
	return key
}

func (p *renderPass) setupMesh(n, caller *Node, s setupState) error {
	if !p.renderable(n, caller, s, n.meshBounds()) {
		return nil
	}
	alpha := totalAlphaFactor(n, p.root)
	for i, sm := range n.submeshes {
		if sm.Appearance == nil {
			continue
		}
		if err := p.queue.InsertDrawable(n, s.toCamera, i, drawKey(sm.Appearance, alpha)); err != nil {
			return err
		}
		p.stats.Queued++
	}
	return nil
}

func (p *renderPass) setupSprite(n, caller *Node, s setupState) error {
	a := n.sprite.appearance
	if a == nil || !p.renderable(n, caller, s, n.spriteBounds()) {
		return nil
	}
	if err := p.queue.InsertDrawable(n, s.toCamera, 0, drawKey(a, totalAlphaFactor(n, p.root))); err != nil {
		return err
	}
	p.stats.Queued++
	return nil
}

// wouldDraw reports whether a child skipped by culling would otherwise have
// been visited: its render bit is on and, for a leaf, it is in scope.
func (p *renderPass) wouldDraw(c *Node) bool {
	if c.enableBits&enableRender == 0 {
		return false
	}
	return c.Type.isGroupType() || c.scope&p.scope != 0
}
