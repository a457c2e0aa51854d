package arbor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexData holds the vertex attributes of a mesh. Colors and TexCoords are
// optional; when present they must match Positions in length.
type VertexData struct {
	Positions []mgl32.Vec3
	Colors    []Color
	TexCoords []mgl32.Vec2
}

// Submesh is one independently drawn part of a mesh: a triangle list over the
// mesh vertices and the appearance it is drawn with. A submesh without an
// appearance is not drawn.
type Submesh struct {
	Appearance *Appearance
	Indices    []uint16
}

// Triangles returns the number of triangles in the submesh.
func (s Submesh) Triangles() int {
	return len(s.Indices) / 3
}

// NewMesh creates a mesh node. Index lists must be triangle lists that only
// reference existing vertices.
func (e *Engine) NewMesh(name string, vertices VertexData, submeshes ...Submesh) *Node {
	n := e.newNode(name, NodeTypeMesh)
	validateVertexData(vertices)
	for _, sm := range submeshes {
		validateSubmesh(sm, len(vertices.Positions))
	}
	n.mesh = vertices
	n.submeshes = append([]Submesh(nil), submeshes...)
	n.meshBBoxDirty = true
	return n
}

func validateVertexData(v VertexData) {
	if v.Colors != nil && len(v.Colors) != len(v.Positions) {
		panic("arbor: vertex colors do not match positions")
	}
	if v.TexCoords != nil && len(v.TexCoords) != len(v.Positions) {
		panic("arbor: vertex texture coordinates do not match positions")
	}
}

func validateSubmesh(sm Submesh, numVertices int) {
	if len(sm.Indices)%3 != 0 {
		panic("arbor: submesh indices must form a triangle list")
	}
	for _, idx := range sm.Indices {
		if int(idx) >= numVertices {
			panic(fmt.Sprintf("arbor: submesh index %d out of range (%d vertices)", idx, numVertices))
		}
	}
}

func (n *Node) mustBeMesh() {
	if n.Type != NodeTypeMesh {
		panic(fmt.Sprintf("arbor: %s is not a mesh", n))
	}
}

// VertexData returns the mesh vertex attributes. The slices MUST NOT be
// mutated; use SetVertexData.
func (n *Node) VertexData() VertexData {
	n.mustBeMesh()
	return n.mesh
}

// SetVertexData replaces the mesh vertices. Existing submeshes must remain
// valid for the new vertex count.
func (n *Node) SetVertexData(v VertexData) {
	n.mustBeMesh()
	validateVertexData(v)
	for _, sm := range n.submeshes {
		validateSubmesh(sm, len(v.Positions))
	}
	n.mesh = v
	n.meshBBoxDirty = true
	invalidateBBox(n.parent)
}

// NumSubmeshes returns the number of submeshes.
func (n *Node) NumSubmeshes() int {
	n.mustBeMesh()
	return len(n.submeshes)
}

// Submesh returns submesh i.
func (n *Node) Submesh(i int) Submesh {
	n.mustBeMesh()
	return n.submeshes[i]
}

// SetSubmesh replaces submesh i, keeping ancestor triangle counts exact.
func (n *Node) SetSubmesh(i int, sm Submesh) {
	n.mustBeMesh()
	validateSubmesh(sm, len(n.mesh.Positions))
	delta := sm.Triangles() - n.submeshes[i].Triangles()
	n.submeshes[i] = sm
	if delta != 0 {
		adjustCounts(n.parent, subtreeCounts{triangles: delta}, 1)
	}
}

// SetAppearance sets the appearance of submesh i. A nil appearance hides
// the submesh.
func (n *Node) SetAppearance(i int, a *Appearance) {
	n.mustBeMesh()
	n.submeshes[i].Appearance = a
}

// meshTriangles returns the total triangle count over all submeshes.
func (n *Node) meshTriangles() int {
	t := 0
	for _, sm := range n.submeshes {
		t += sm.Triangles()
	}
	return t
}

// meshBounds returns the local bounds of the mesh vertices, recomputing
// them lazily after the vertex data changed.
func (n *Node) meshBounds() AABB {
	if n.meshBBoxDirty {
		n.meshBBox = aabbFromPoints(n.mesh.Positions)
		n.meshBBoxDirty = false
	}
	return n.meshBBox
}
