package arbor

// Bounds returns the local-space bounding box of the node's content. Meshes
// and sprites report their geometry; groups report the union of their
// enabled renderable children's bounds, transformed into the group's space.
// Cameras and lights have no bounds.
//
// Groups that maintain a cached box (see updateCullingPolicy) serve it until
// it goes stale.
func (n *Node) Bounds() AABB {
	switch n.Type {
	case NodeTypeMesh:
		return n.meshBounds()
	case NodeTypeSprite:
		return n.spriteBounds()
	case NodeTypeGroup, NodeTypeWorld:
		if n.bbox != nil && n.dirty&dirtyBBox == 0 {
			return *n.bbox
		}
		b := n.groupBounds()
		if n.bbox != nil {
			*n.bbox = b
			n.dirty &^= dirtyBBox
		}
		return b
	default:
		return EmptyAABB()
	}
}

// HasCachedBounds reports whether the group currently maintains a cached
// bounding box.
func (n *Node) HasCachedBounds() bool {
	return n.bbox != nil
}

func (n *Node) groupBounds() AABB {
	b := EmptyAABB()
	for _, c := range n.children {
		if c.enableBits&enableRender == 0 || !c.HasRenderables() {
			continue
		}
		b = b.Union(c.Bounds().Transform(c.composite()))
	}
	return b
}

// cullingYield estimates what culling the group's subtree saves, in the
// cost units of Config.
func (n *Node) cullingYield() int {
	cfg := &n.eng.cfg
	return n.numRenderables*cfg.RenderCallCost + n.numTriangles*cfg.TriangleCost
}

// updateCullingPolicy adds a cached bounding box to the group when culling
// it would pay for at least two box tests, and drops it when the yield falls
// below one. The gap keeps a group near the threshold from flapping. A box is
// a cache: when the allocator refuses it the group simply goes without.
func (n *Node) updateCullingPolicy() {
	cost := n.eng.cfg.BoxTestCost
	yield := n.cullingYield()
	switch {
	case n.bbox == nil && yield >= 2*cost:
		if err := n.eng.alloc.Alloc(sizeAABB); err != nil {
			return
		}
		n.bbox = &AABB{}
		n.dirty |= dirtyBBox
	case n.bbox != nil && yield < cost:
		n.eng.alloc.Free(sizeAABB)
		n.bbox = nil
	}
}
