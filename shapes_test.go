package arbor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// --- Box ---

func TestNewBox(t *testing.T) {
	eng := newTestEngine(t)
	b := eng.NewBox("box", 2, 4, 6, NewAppearance())

	vd := b.VertexData()
	if len(vd.Positions) != 24 {
		t.Errorf("vertices = %d, want 24", len(vd.Positions))
	}
	if got := b.Submesh(0).Triangles(); got != 12 {
		t.Errorf("triangles = %d, want 12", got)
	}
	assertVec3(t, "min", b.Bounds().Min, mgl32.Vec3{-1, -2, -3})
	assertVec3(t, "max", b.Bounds().Max, mgl32.Vec3{1, 2, 3})
}

func TestNewBoxFacesPointOutward(t *testing.T) {
	eng := newTestEngine(t)
	b := eng.NewBox("box", 1, 1, 1, nil)
	vd := b.VertexData()
	inds := b.Submesh(0).Indices
	for i := 0; i < len(inds); i += 3 {
		p0, p1, p2 := vd.Positions[inds[i]], vd.Positions[inds[i+1]], vd.Positions[inds[i+2]]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		centroid := p0.Add(p1).Add(p2).Mul(1.0 / 3)
		if n.Dot(centroid) <= 0 {
			t.Errorf("triangle %d faces inward", i/3)
		}
	}
}

// --- HeightGrid ---

func TestHeightGridLayout(t *testing.T) {
	eng := newTestEngine(t)
	g := eng.NewHeightGrid("grid", 4, 2, 4, 2, nil)
	if g.Cols() != 4 || g.Rows() != 2 {
		t.Fatalf("cols, rows = %d, %d", g.Cols(), g.Rows())
	}
	n := g.Node()
	if got := len(n.VertexData().Positions); got != 15 {
		t.Errorf("vertices = %d, want 15", got)
	}
	if got := n.Submesh(0).Triangles(); got != 16 {
		t.Errorf("triangles = %d, want 16", got)
	}
	assertVec3(t, "min", n.Bounds().Min, mgl32.Vec3{-2, 0, -1})
	assertVec3(t, "max", n.Bounds().Max, mgl32.Vec3{2, 0, 1})

	// Cells face up.
	vd := n.VertexData()
	inds := n.Submesh(0).Indices
	p0, p1, p2 := vd.Positions[inds[0]], vd.Positions[inds[1]], vd.Positions[inds[2]]
	if nrm := p1.Sub(p0).Cross(p2.Sub(p0)); nrm[1] <= 0 {
		t.Errorf("cell normal = %v, want +Y", nrm)
	}
}

func TestHeightGridClampsCells(t *testing.T) {
	eng := newTestEngine(t)
	g := eng.NewHeightGrid("grid", 1, 1, 0, -3, nil)
	if g.Cols() != 1 || g.Rows() != 1 {
		t.Errorf("cols, rows = %d, %d, want 1, 1", g.Cols(), g.Rows())
	}
}

func TestHeightGridSetHeight(t *testing.T) {
	eng := newTestEngine(t)
	g := eng.NewHeightGrid("grid", 2, 2, 2, 2, nil)
	before := g.Node().VertexData().Positions

	g.SetHeight(1, 1, 3)
	if got := g.Node().Bounds().Max[1]; got != 3 {
		t.Errorf("max y = %v, want 3", got)
	}
	if before[4][1] != 0 {
		t.Error("SetHeight mutated vertex data previously handed out")
	}

	g.Reset()
	if got := g.Node().Bounds().Max[1]; got != 0 {
		t.Errorf("max y after Reset = %v, want 0", got)
	}
}

func TestHeightGridSetAllHeights(t *testing.T) {
	eng := newTestEngine(t)
	g := eng.NewHeightGrid("grid", 2, 2, 2, 2, nil)
	calls := 0
	g.SetAllHeights(func(col, row int, rest mgl32.Vec3) float32 {
		calls++
		return float32(col + row)
	})
	if calls != 9 {
		t.Errorf("calls = %d, want 9", calls)
	}
	assertVec3(t, "corner", g.Node().VertexData().Positions[8], mgl32.Vec3{1, 4, 1})
}

func TestHeightGridUpdatesParentBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxTestCost = 1
	eng, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	root := eng.NewGroup("root")
	g := eng.NewHeightGrid("grid", 2, 2, 1, 1, nil)
	root.AddChild(g.Node())
	root.updateCullingPolicy()
	if !root.HasCachedBounds() {
		t.Fatal("expected a cached box")
	}

	g.SetHeight(0, 0, 5)
	if got := root.Bounds().Max[1]; got != 5 {
		t.Errorf("root max y = %v, want 5", got)
	}
}

// --- Polygon ---

func TestNewPolygon(t *testing.T) {
	eng := newTestEngine(t)
	p := eng.NewPolygon("hex", []mgl32.Vec2{{1, 0}, {0.5, 1}, {-0.5, 1}, {-1, 0}, {-0.5, -1}, {0.5, -1}}, nil)
	if got := p.Submesh(0).Triangles(); got != 4 {
		t.Errorf("triangles = %d, want 4", got)
	}
	inds := p.Submesh(0).Indices
	for i := 0; i < len(inds); i += 3 {
		if inds[i] != 0 {
			t.Errorf("triangle %d hub = %d, want 0", i/3, inds[i])
		}
	}
	uv := p.VertexData().TexCoords
	if uv[3] != (mgl32.Vec2{0, 0.5}) {
		t.Errorf("uv of left vertex = %v", uv[3])
	}
}

func TestNewPolygonDegenerate(t *testing.T) {
	eng := newTestEngine(t)
	p := eng.NewPolygon("line", []mgl32.Vec2{{0, 0}, {1, 0}}, nil)
	if p.Submesh(0).Triangles() != 0 {
		t.Error("fewer than three points should give no triangles")
	}
}

func TestSetPolygonPoints(t *testing.T) {
	eng := newTestEngine(t)
	app := NewAppearance()
	g := eng.NewGroup("g")
	p := eng.NewPolygon("p", []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, app)
	g.AddChild(p)

	SetPolygonPoints(p, []mgl32.Vec2{{0, 0}, {2, 0}, {0, 2}})
	if got := p.Submesh(0).Triangles(); got != 1 {
		t.Errorf("triangles = %d, want 1", got)
	}
	if p.Submesh(0).Appearance != app {
		t.Error("appearance should be kept")
	}
	assertVec3(t, "max", p.Bounds().Max, mgl32.Vec3{2, 2, 0})
}
