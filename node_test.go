package arbor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, got none", contains)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, contains) {
			t.Errorf("panic = %q, want it to contain %q", msg, contains)
		}
	}()
	fn()
}

// --- Constructor defaults ---

func assertNodeDefaults(t *testing.T, n *Node, name string, typ NodeType) {
	t.Helper()
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Type != typ {
		t.Errorf("Type = %v, want %v", n.Type, typ)
	}
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if !n.RenderingEnabled() || !n.PickingEnabled() {
		t.Error("render and pick should be enabled by default")
	}
	if n.Scope() != ScopeAll {
		t.Errorf("Scope = %#x, want %#x", n.Scope(), ScopeAll)
	}
	if n.AlphaFactor() != 1 {
		t.Errorf("AlphaFactor = %v, want 1", n.AlphaFactor())
	}
	if n.Scale() != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("Scale = %v, want (1,1,1)", n.Scale())
	}
	if n.Parent() != nil || n.NumChildren() != 0 {
		t.Error("new node should be detached and childless")
	}
}

func TestConstructorDefaults(t *testing.T) {
	eng := newTestEngine(t)
	assertNodeDefaults(t, eng.NewGroup("g"), "g", NodeTypeGroup)
	assertNodeDefaults(t, eng.NewWorld("w"), "w", NodeTypeWorld)
	assertNodeDefaults(t, eng.NewCamera("c"), "c", NodeTypeCamera)
	assertNodeDefaults(t, eng.NewLight("l", DefaultLightParams(LightOmni)), "l", NodeTypeLight)
	assertNodeDefaults(t, newTriangle(eng, "m", NewAppearance()), "m", NodeTypeMesh)
	assertNodeDefaults(t, eng.NewSprite("s", true, SpriteImage{Width: 4, Height: 4}, nil), "s", NodeTypeSprite)
}

func TestUniqueIDs(t *testing.T) {
	eng := newTestEngine(t)
	seen := map[uint32]bool{}
	for i := 0; i < 100; i++ {
		id := eng.NewGroup("g").ID
		if seen[id] {
			t.Fatalf("duplicate ID %d", id)
		}
		seen[id] = true
	}
}

// --- Tree manipulation ---

func TestAddChildOrder(t *testing.T) {
	eng := newTestEngine(t)
	p := eng.NewGroup("p")
	a, b, c := eng.NewGroup("a"), eng.NewGroup("b"), eng.NewGroup("c")
	p.AddChild(a)
	p.AddChild(c)
	p.AddChildAt(b, 1)

	if p.NumChildren() != 3 {
		t.Fatalf("NumChildren = %d, want 3", p.NumChildren())
	}
	for i, want := range []*Node{a, b, c} {
		if p.ChildAt(i) != want {
			t.Errorf("ChildAt(%d) = %s, want %s", i, p.ChildAt(i), want)
		}
		if want.Parent() != p {
			t.Errorf("%s parent = %v, want p", want, want.Parent())
		}
	}
}

func TestAddChildReparents(t *testing.T) {
	eng := newTestEngine(t)
	p1, p2 := eng.NewGroup("p1"), eng.NewGroup("p2")
	c := eng.NewGroup("c")
	p1.AddChild(c)
	p2.AddChild(c)
	if p1.NumChildren() != 0 {
		t.Errorf("old parent still has %d children", p1.NumChildren())
	}
	if c.Parent() != p2 {
		t.Error("child should belong to new parent")
	}
}

func TestRemoveChild(t *testing.T) {
	eng := newTestEngine(t)
	p := eng.NewGroup("p")
	a, b := eng.NewGroup("a"), eng.NewGroup("b")
	p.AddChild(a)
	p.AddChild(b)

	p.RemoveChild(a)
	if p.NumChildren() != 1 || p.ChildAt(0) != b {
		t.Error("RemoveChild should keep the remaining order")
	}
	if a.Parent() != nil {
		t.Error("removed child should have no parent")
	}

	b.RemoveFromParent()
	if p.NumChildren() != 0 {
		t.Error("RemoveFromParent should detach")
	}
	b.RemoveFromParent() // no-op
}

func TestRemoveChildAtAndRemoveChildren(t *testing.T) {
	eng := newTestEngine(t)
	p := eng.NewGroup("p")
	for i := 0; i < 4; i++ {
		p.AddChild(eng.NewGroup(fmt.Sprint(i)))
	}
	got := p.RemoveChildAt(1)
	if got.Name != "1" || got.Parent() != nil {
		t.Errorf("RemoveChildAt(1) = %s", got)
	}
	p.RemoveChildren()
	if p.NumChildren() != 0 {
		t.Errorf("NumChildren = %d after RemoveChildren", p.NumChildren())
	}
}

func TestRemoveChildWrongParentPanics(t *testing.T) {
	eng := newTestEngine(t)
	p, other := eng.NewGroup("p"), eng.NewGroup("other")
	c := eng.NewGroup("c")
	other.AddChild(c)
	expectPanic(t, "parent is not this node", func() { p.RemoveChild(c) })
}

func TestAddChildCyclePanics(t *testing.T) {
	eng := newTestEngine(t)
	a, b := eng.NewGroup("a"), eng.NewGroup("b")
	a.AddChild(b)
	expectPanic(t, "cycle", func() { b.AddChild(a) })
	expectPanic(t, "cycle", func() { a.AddChild(a) })
}

func TestAddChildInvalidPanics(t *testing.T) {
	eng := newTestEngine(t)
	other := newTestEngine(t)
	g := eng.NewGroup("g")

	expectPanic(t, "nil child", func() { g.AddChild(nil) })
	expectPanic(t, "world cannot be a child", func() { g.AddChild(eng.NewWorld("w")) })
	expectPanic(t, "different engines", func() { g.AddChild(other.NewGroup("x")) })
	expectPanic(t, "cannot have children", func() {
		eng.NewCamera("cam").AddChild(eng.NewGroup("x"))
	})
	expectPanic(t, "out of range", func() { g.AddChildAt(eng.NewGroup("x"), 5) })
}

func TestRootAndDescendant(t *testing.T) {
	eng := newTestEngine(t)
	a, b, c := eng.NewGroup("a"), eng.NewGroup("b"), eng.NewGroup("c")
	a.AddChild(b)
	b.AddChild(c)
	if c.Root() != a {
		t.Error("Root should be the topmost ancestor")
	}
	if !c.IsDescendantOf(a) || !c.IsDescendantOf(c) || a.IsDescendantOf(c) {
		t.Error("IsDescendantOf mismatch")
	}
}

// --- Counters ---

func TestCountersOnAttachDetach(t *testing.T) {
	eng := newTestEngine(t)
	root := eng.NewGroup("root")
	mid := eng.NewGroup("mid")
	root.AddChild(mid)

	mid.AddChild(newTriangle(eng, "m", NewAppearance()))
	mid.AddChild(eng.NewSprite("s", true, SpriteImage{}, NewAppearance()))
	mid.AddChild(eng.NewLight("l", DefaultLightParams(LightAmbient)))

	if root.numRenderables != 2 || root.numNonCullables != 1 || root.numTriangles != 3 {
		t.Errorf("root counters = %d/%d/%d, want 2/1/3",
			root.numRenderables, root.numNonCullables, root.numTriangles)
	}

	mid.RemoveFromParent()
	if root.numRenderables != 0 || root.numNonCullables != 0 || root.numTriangles != 0 {
		t.Errorf("root counters = %d/%d/%d after detach, want 0/0/0",
			root.numRenderables, root.numNonCullables, root.numTriangles)
	}
	if mid.numRenderables != 2 {
		t.Errorf("detached subtree keeps its own counters, got %d", mid.numRenderables)
	}
}

func TestSetSubmeshAdjustsTriangles(t *testing.T) {
	eng := newTestEngine(t)
	root := eng.NewGroup("root")
	m := newQuad(eng, "q", NewAppearance())
	root.AddChild(m)
	if root.numTriangles != 2 {
		t.Fatalf("numTriangles = %d, want 2", root.numTriangles)
	}
	m.SetSubmesh(0, Submesh{Appearance: NewAppearance(), Indices: []uint16{0, 1, 2}})
	if root.numTriangles != 1 {
		t.Errorf("numTriangles = %d after SetSubmesh, want 1", root.numTriangles)
	}
}

// --- Flags ---

func TestAlphaFactorClampAndProduct(t *testing.T) {
	eng := newTestEngine(t)
	root := eng.NewGroup("root")
	mid := eng.NewGroup("mid")
	leaf := eng.NewGroup("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)

	leaf.SetAlphaFactor(2)
	assertNear(t, "clamped high", leaf.AlphaFactor(), 1)
	leaf.SetAlphaFactor(-1)
	assertNear(t, "clamped low", leaf.AlphaFactor(), 0)

	leaf.SetAlphaFactor(0.5)
	mid.SetAlphaFactor(0.5)
	root.SetAlphaFactor(0.5)
	assertNear(t, "to root", alphaToFloat(totalAlphaFactor(leaf, root)), 0.125)
	assertNear(t, "to mid", alphaToFloat(totalAlphaFactor(leaf, mid)), 0.25)
}

func TestHasEnabledPath(t *testing.T) {
	eng := newTestEngine(t)
	root := eng.NewGroup("root")
	mid := eng.NewGroup("mid")
	leaf := eng.NewGroup("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)

	if !hasEnabledPath(leaf, root) {
		t.Error("all enabled: path should be enabled")
	}
	root.SetRenderingEnable(false)
	if hasEnabledPath(leaf, root) {
		t.Error("disabled root should disable the path")
	}
	if !hasEnabledPath(leaf, mid) {
		t.Error("path stops at the given root")
	}
}

func TestTransformsDirtyTracksBones(t *testing.T) {
	eng := newTestEngine(t)
	root := eng.NewGroup("root")
	skel := eng.NewGroup("skeleton")
	bone := eng.NewGroup("bone")
	other := eng.NewGroup("other")
	root.AddChild(skel)
	root.AddChild(other)
	skel.AddChild(bone)
	bone.SetBone(true)
	root.ClearTransformsDirty()

	if !root.HasBones() || !skel.HasBones() || other.HasBones() {
		t.Fatal("bone counters not propagated")
	}

	other.SetTranslation(1, 0, 0)
	if other.TransformsDirty() || skel.TransformsDirty() {
		t.Error("only ancestors containing bones are marked")
	}
	if !root.TransformsDirty() {
		t.Error("root contains bones and should be marked")
	}
	root.ClearTransformsDirty()

	bone.SetTranslation(0, 1, 0)
	if !bone.TransformsDirty() || !skel.TransformsDirty() || !root.TransformsDirty() {
		t.Error("bone transform change should mark the bone chain dirty")
	}
	root.ClearTransformsDirty()
	if bone.TransformsDirty() || skel.TransformsDirty() || root.TransformsDirty() {
		t.Error("ClearTransformsDirty should clear the subtree")
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	eng := newTestEngine(t)
	p := eng.NewGroup("p")
	c := eng.NewGroup("c")
	gc := eng.NewGroup("gc")
	p.AddChild(c)
	c.AddChild(gc)

	c.Dispose()
	if p.NumChildren() != 0 {
		t.Error("disposed node should be detached")
	}
	if !c.IsDisposed() || !gc.IsDisposed() {
		t.Error("Dispose should be recursive")
	}
	c.Dispose() // second call is a no-op
}

func TestDebugDisposedNodePanics(t *testing.T) {
	eng := newTestEngine(t)
	eng.SetDebugMode(true)
	p := eng.NewGroup("p")
	c := eng.NewGroup("c")
	c.Dispose()
	expectPanic(t, "disposed", func() { p.AddChild(c) })
}
