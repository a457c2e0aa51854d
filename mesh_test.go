package arbor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewMeshValidation(t *testing.T) {
	eng := newTestEngine(t)
	pos := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	expectPanic(t, "colors", func() {
		eng.NewMesh("m", VertexData{Positions: pos, Colors: []Color{ColorWhite}})
	})
	expectPanic(t, "texture coordinates", func() {
		eng.NewMesh("m", VertexData{Positions: pos, TexCoords: []mgl32.Vec2{{0, 0}}})
	})
	expectPanic(t, "triangle list", func() {
		eng.NewMesh("m", VertexData{Positions: pos}, Submesh{Indices: []uint16{0, 1}})
	})
	expectPanic(t, "out of range", func() {
		eng.NewMesh("m", VertexData{Positions: pos}, Submesh{Indices: []uint16{0, 1, 3}})
	})
}

func TestMeshOperationsPanicOnOtherNodes(t *testing.T) {
	eng := newTestEngine(t)
	g := eng.NewGroup("g")
	expectPanic(t, "not a mesh", func() { g.VertexData() })
	expectPanic(t, "not a mesh", func() { g.NumSubmeshes() })
}

func TestSetVertexDataKeepsSubmeshesValid(t *testing.T) {
	eng := newTestEngine(t)
	m := newQuad(eng, "quad", NewAppearance())
	expectPanic(t, "out of range", func() {
		m.SetVertexData(VertexData{Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}})
	})
	if got := len(m.VertexData().Positions); got != 4 {
		t.Errorf("vertices after rejected update = %d, want 4", got)
	}
}

func TestSetSubmeshAdjustsAncestorTriangles(t *testing.T) {
	eng := newTestEngine(t)
	root := eng.NewGroup("root")
	g := eng.NewGroup("g")
	m := newQuad(eng, "quad", NewAppearance())
	g.AddChild(m)
	root.AddChild(g)
	if root.numTriangles != 2 {
		t.Fatalf("root triangles = %d, want 2", root.numTriangles)
	}

	m.SetSubmesh(0, Submesh{Appearance: m.Submesh(0).Appearance, Indices: []uint16{0, 1, 2}})
	if root.numTriangles != 1 || g.numTriangles != 1 {
		t.Errorf("triangles = %d, %d, want 1, 1", root.numTriangles, g.numTriangles)
	}

	m.RemoveFromParent()
	if root.numTriangles != 0 {
		t.Errorf("root triangles after removal = %d, want 0", root.numTriangles)
	}
}

func TestSetAppearanceHidesSubmesh(t *testing.T) {
	eng := newTestEngine(t)
	m := newTriangle(eng, "tri", NewAppearance())
	m.SetAppearance(0, nil)
	if m.Submesh(0).Appearance != nil {
		t.Error("appearance should be cleared")
	}
	if m.NumSubmeshes() != 1 || m.Submesh(0).Triangles() != 1 {
		t.Error("clearing the appearance should keep the indices")
	}
}

func TestNewMeshCopiesSubmeshList(t *testing.T) {
	eng := newTestEngine(t)
	subs := []Submesh{{Appearance: NewAppearance(), Indices: []uint16{0, 1, 2}}}
	m := eng.NewMesh("m", VertexData{Positions: []mgl32.Vec3{{}, {1, 0, 0}, {0, 1, 0}}}, subs...)
	subs[0].Appearance = nil
	if m.Submesh(0).Appearance == nil {
		t.Error("mesh should not alias the caller's submesh slice")
	}
}
