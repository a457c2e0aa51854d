package arbor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// --- ID counter ---

// idCounter is a plain counter (no atomic; arbor is single-threaded). Node
// and appearance IDs share it, and 0 is never handed out.
var idCounter uint32

func nextID() uint32 {
	idCounter++
	if idCounter == 0 {
		idCounter++
	}
	return idCounter
}

// --- Node ---

// Node is the scene graph element. A single flat struct is used for every
// node type; per-type behavior is selected by switching on Type.
type Node struct {
	// Identity
	ID       uint32
	Name     string
	Type     NodeType
	UserData any

	eng *Engine

	// Hierarchy. parent is a weak back-pointer; the parent owns the ordered
	// child slice.
	parent   *Node
	children []*Node

	// Transform (local). Composite = T * R * S * M.
	translation mgl32.Vec3
	orientation mgl32.Quat
	scale       mgl32.Vec3
	matrix      mgl32.Mat4
	hasMatrix   bool

	// State
	scope       uint32
	enableBits  uint8
	alphaFactor uint32 // 1.16 fixed point
	dirty       uint8
	bone        bool
	disposed    bool

	// Group bookkeeping, exact over the whole subtree.
	bbox            *AABB // nil when the group does not maintain a box
	numRenderables  int
	numNonCullables int
	numTriangles    int
	numBones        int

	// World fields (NodeTypeWorld)
	activeCamera *Node
	background   Color

	// Camera fields (NodeTypeCamera)
	projection projection

	// Light fields (NodeTypeLight)
	light LightParams

	// Mesh fields (NodeTypeMesh)
	mesh          VertexData
	submeshes     []Submesh
	meshBBox      AABB
	meshBBoxDirty bool

	// Sprite fields (NodeTypeSprite)
	sprite spriteParams
}

func (e *Engine) newNode(name string, typ NodeType) *Node {
	return &Node{
		ID:          nextID(),
		Name:        name,
		Type:        typ,
		eng:         e,
		orientation: mgl32.QuatIdent(),
		scale:       mgl32.Vec3{1, 1, 1},
		matrix:      mgl32.Ident4(),
		scope:       ScopeAll,
		enableBits:  enableRender | enablePick,
		alphaFactor: alphaOne,
		dirty:       dirtyBBox,
	}
}

// NewGroup creates an empty group node.
func (e *Engine) NewGroup(name string) *Node {
	return e.newNode(name, NodeTypeGroup)
}

// NewWorld creates a world: a root group that carries the active camera and
// a background color. A world can never be added as a child.
func (e *Engine) NewWorld(name string) *Node {
	n := e.newNode(name, NodeTypeWorld)
	n.background = ColorBlack
	return n
}

// Engine returns the engine that created the node.
func (n *Node) Engine() *Engine {
	return n.eng
}

// String returns a short description for logs.
func (n *Node) String() string {
	return fmt.Sprintf("%s %q (ID %d)", n.Type, n.Name, n.ID)
}

// --- Tree manipulation ---

// AddChild appends child to this group's children.
// If child already has a parent, it is removed from that parent first.
// Panics if n cannot hold children, child is nil, child is a World, child
// belongs to another engine, or child is an ancestor of n (cycle).
func (n *Node) AddChild(child *Node) {
	n.checkAddChild(child)
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	n.children = append(n.children, child)
	n.attach(child)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	n.checkAddChild(child)
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	if index < 0 || index > len(n.children) {
		panic("arbor: child index out of range")
	}
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.attach(child)
}

func (n *Node) checkAddChild(child *Node) {
	if child == nil {
		panic("arbor: cannot add nil child")
	}
	if n.eng != nil && n.eng.debug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if !n.Type.isGroupType() {
		panic(fmt.Sprintf("arbor: %s nodes cannot have children", n.Type))
	}
	if child.Type == NodeTypeWorld {
		panic("arbor: a world cannot be a child")
	}
	if child.eng != n.eng {
		panic("arbor: nodes belong to different engines")
	}
	if isAncestor(child, n) {
		panic("arbor: adding child would create a cycle")
	}
}

// attach links child (already placed in n.children) into the tree.
func (n *Node) attach(child *Node) {
	child.parent = n
	adjustCounts(n, child.subtreeCounts(), 1)
	invalidateBBox(n)
	child.markTransformsDirty()
	n.eng.tc.InvalidatePaths()
	if n.eng.debug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// detach unlinks child (already removed from n.children) from the tree.
func (n *Node) detach(child *Node) {
	child.markTransformsDirty()
	adjustCounts(n, child.subtreeCounts(), -1)
	invalidateBBox(n)
	child.parent = nil
	n.eng.tc.InvalidatePaths()
	if n.activeCamera == child {
		n.activeCamera = nil
	}
}

// RemoveChild detaches child from this node.
// Panics if child's parent is not n.
func (n *Node) RemoveChild(child *Node) {
	if child.parent != n {
		panic("arbor: child's parent is not this node")
	}
	for i, c := range n.children {
		if c == child {
			n.removeChildAt(i)
			return
		}
	}
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("arbor: child index out of range")
	}
	return n.removeChildAt(index)
}

// removeChildAt uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (n *Node) removeChildAt(index int) *Node {
	child := n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	n.detach(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.removeChildAt(len(n.children) - 1)
	}
}

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Root returns the topmost ancestor of n (n itself when it has no parent).
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsDescendantOf reports whether ancestor is n or one of n's ancestors.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	return isAncestor(ancestor, n)
}

// --- Enable bits, scope, alpha ---

// SetRenderingEnable enables or disables rendering of this node and its
// subtree.
func (n *Node) SetRenderingEnable(enabled bool) {
	if n.RenderingEnabled() == enabled {
		return
	}
	if enabled {
		n.enableBits |= enableRender
	} else {
		n.enableBits &^= enableRender
	}
	invalidateBBox(n.parent)
}

// RenderingEnabled reports the node's own render enable bit.
func (n *Node) RenderingEnabled() bool {
	return n.enableBits&enableRender != 0
}

// SetPickingEnable enables or disables picking of this node and its subtree.
func (n *Node) SetPickingEnable(enabled bool) {
	if enabled {
		n.enableBits |= enablePick
	} else {
		n.enableBits &^= enablePick
	}
}

// PickingEnabled reports the node's own pick enable bit.
func (n *Node) PickingEnabled() bool {
	return n.enableBits&enablePick != 0
}

// SetScope sets the scope bitmask. A node is rendered by a camera only if
// their scopes share at least one bit; lights carry their scope into the
// light manager.
func (n *Node) SetScope(scope uint32) {
	n.scope = scope
}

// Scope returns the scope bitmask.
func (n *Node) Scope() uint32 {
	return n.scope
}

// SetAlphaFactor sets the node's alpha factor, clamped to [0, 1]. It is
// stored in 1.16 fixed point.
func (n *Node) SetAlphaFactor(alpha float32) {
	n.alphaFactor = alphaToFixed(alpha)
}

// AlphaFactor returns the node's own alpha factor.
func (n *Node) AlphaFactor() float32 {
	return alphaToFloat(n.alphaFactor)
}

// totalAlphaFactor multiplies the alpha factors of n and every ancestor up to
// and including root. It is recomputed on every call.
func totalAlphaFactor(n, root *Node) uint32 {
	a := n.alphaFactor
	for p := n; p != root && p.parent != nil; {
		p = p.parent
		a = mulAlpha(a, p.alphaFactor)
	}
	return a
}

// hasEnabledPath reports whether n and every ancestor up to and including
// root have rendering enabled.
func hasEnabledPath(n, root *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p.enableBits&enableRender == 0 {
			return false
		}
		if p == root {
			break
		}
	}
	return true
}

// --- Bones ---

// SetBone marks the node as a skeleton bone. Transform changes below an
// ancestor that contains bones raise that ancestor's transforms-dirty bit.
func (n *Node) SetBone(bone bool) {
	if n.bone == bone {
		return
	}
	n.bone = bone
	d := subtreeCounts{bones: 1}
	if bone {
		adjustCounts(n.parent, d, 1)
	} else {
		adjustCounts(n.parent, d, -1)
	}
}

// IsBone reports whether the node is marked as a skeleton bone.
func (n *Node) IsBone() bool {
	return n.bone
}

// HasBones reports whether the node is a bone or has bone descendants.
func (n *Node) HasBones() bool {
	return n.bone || n.numBones > 0
}

// HasRenderables reports whether the subtree rooted at n contains meshes or
// sprites.
func (n *Node) HasRenderables() bool {
	return n.subtreeCounts().renderables > 0
}

// TransformsDirty reports whether a transform in a bone-carrying subtree
// rooted at n changed since the last ClearTransformsDirty.
func (n *Node) TransformsDirty() bool {
	return n.dirty&dirtyTransforms != 0
}

// ClearTransformsDirty clears the transforms-dirty bit of n and its
// descendants. Skinning consumers call it after refreshing bone matrices.
func (n *Node) ClearTransformsDirty() {
	n.dirty &^= dirtyTransforms
	for _, c := range n.children {
		if c.dirty&dirtyTransforms != 0 {
			c.ClearTransformsDirty()
		}
	}
}

// markTransformsDirty raises the transforms-dirty bit on n and on every
// ancestor that contains bones.
func (n *Node) markTransformsDirty() {
	for p := n; p != nil; p = p.parent {
		if !p.HasBones() {
			continue
		}
		p.dirty |= dirtyTransforms
	}
}

// --- Disposal ---

// Dispose removes this node from its parent, evicts its cache entries and
// recursively disposes all descendants. A disposed node must not be reused.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
	if n.eng != nil {
		// Descendants were cut loose without detach.
		n.eng.tc.InvalidatePaths()
	}
}

func (n *Node) dispose() {
	n.disposed = true
	if n.eng != nil {
		n.eng.tc.InvalidateComposite(n)
		if n.bbox != nil {
			n.eng.alloc.Free(sizeAABB)
		}
	}
	for _, child := range n.children {
		child.parent = nil
		child.dispose()
	}
	n.children = nil
	n.activeCamera = nil
	n.submeshes = nil
	n.mesh = VertexData{}
	n.sprite.appearance = nil
	n.bbox = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// subtreeCounts are the per-subtree totals a group keeps for its
// descendants.
type subtreeCounts struct {
	renderables  int
	nonCullables int
	triangles    int
	bones        int
}

// subtreeCounts returns what the subtree rooted at n contributes to the
// counters of its ancestors.
func (n *Node) subtreeCounts() subtreeCounts {
	var c subtreeCounts
	switch n.Type {
	case NodeTypeGroup, NodeTypeWorld:
		c = subtreeCounts{
			renderables:  n.numRenderables,
			nonCullables: n.numNonCullables,
			triangles:    n.numTriangles,
			bones:        n.numBones,
		}
	case NodeTypeMesh:
		c = subtreeCounts{renderables: 1, triangles: n.meshTriangles()}
	case NodeTypeSprite:
		c = subtreeCounts{renderables: 1, triangles: 2}
	case NodeTypeLight:
		c = subtreeCounts{nonCullables: 1}
	}
	if n.bone {
		c.bones++
	}
	return c
}

// adjustCounts adds sign*d to the counters of p and all its ancestors.
func adjustCounts(p *Node, d subtreeCounts, sign int) {
	for ; p != nil; p = p.parent {
		p.numRenderables += sign * d.renderables
		p.numNonCullables += sign * d.nonCullables
		p.numTriangles += sign * d.triangles
		p.numBones += sign * d.bones
	}
}

// nonCullable reports whether the subtree at n must be visited even when
// its parent is fully outside the frustum.
func (n *Node) nonCullable() bool {
	return n.subtreeCounts().nonCullables > 0
}

// invalidateBBox marks the bounding boxes of p and all its ancestors stale.
func invalidateBBox(p *Node) {
	for ; p != nil; p = p.parent {
		p.dirty |= dirtyBBox
	}
}
