package arbor

import (
	"github.com/go-gl/mathgl/mgl32"
)

// --- Box ---

// boxFaces lists the corner indices of each box face, counter-clockwise
// seen from outside.
var boxFaces = [6][4]uint16{
	{4, 5, 7, 6}, // +Z
	{1, 0, 2, 3}, // -Z
	{5, 1, 3, 7}, // +X
	{0, 4, 6, 2}, // -X
	{6, 7, 3, 2}, // +Y
	{0, 1, 5, 4}, // -Y
}

// NewBox creates a box mesh centered on the origin with the given extents.
// Every face gets its own four vertices so texture coordinates span each
// face from (0,0) to (1,1).
func (e *Engine) NewBox(name string, width, height, depth float32, app *Appearance) *Node {
	hx, hy, hz := width/2, height/2, depth/2
	corners := [8]mgl32.Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {-hx, hy, hz}, {hx, hy, hz},
	}
	uvs := [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vd := VertexData{
		Positions: make([]mgl32.Vec3, 0, 24),
		TexCoords: make([]mgl32.Vec2, 0, 24),
	}
	inds := make([]uint16, 0, 36)
	for _, f := range boxFaces {
		base := uint16(len(vd.Positions))
		for i, c := range f {
			vd.Positions = append(vd.Positions, corners[c])
			vd.TexCoords = append(vd.TexCoords, uvs[i])
		}
		inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	}
	return e.NewMesh(name, vd, Submesh{Appearance: app, Indices: inds})
}

// --- HeightGrid ---

// HeightGrid is a flat grid mesh in the XZ plane whose vertices can be
// raised or lowered individually.
type HeightGrid struct {
	node    *Node
	cols    int
	rows    int
	restPos []mgl32.Vec3
	vd      VertexData
}

// NewHeightGrid creates a grid of cols by rows cells covering width by
// depth, centered on the origin, with (cols+1)*(rows+1) vertices.
func (e *Engine) NewHeightGrid(name string, width, depth float32, cols, rows int, app *Appearance) *HeightGrid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	vcols, vrows := cols+1, rows+1
	numVerts := vcols * vrows
	vd := VertexData{
		Positions: make([]mgl32.Vec3, numVerts),
		TexCoords: make([]mgl32.Vec2, numVerts),
	}
	restPos := make([]mgl32.Vec3, numVerts)

	cellW := width / float32(cols)
	cellD := depth / float32(rows)
	for r := 0; r < vrows; r++ {
		for c := 0; c < vcols; c++ {
			idx := r*vcols + c
			p := mgl32.Vec3{float32(c)*cellW - width/2, 0, float32(r)*cellD - depth/2}
			vd.Positions[idx] = p
			vd.TexCoords[idx] = mgl32.Vec2{float32(c) / float32(cols), float32(r) / float32(rows)}
			restPos[idx] = p
		}
	}

	// Rows run toward +Z, so tl, bl, tr winds counter-clockwise seen from +Y.
	inds := make([]uint16, 0, cols*rows*6)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tl := uint16(r*vcols + c)
			tr := tl + 1
			bl := uint16((r+1)*vcols + c)
			br := bl + 1
			inds = append(inds, tl, bl, tr, tr, bl, br)
		}
	}

	g := &HeightGrid{cols: cols, rows: rows, restPos: restPos, vd: vd}
	g.node = e.NewMesh(name, g.snapshot(), Submesh{Appearance: app, Indices: inds})
	return g
}

// Node returns the underlying mesh node.
func (g *HeightGrid) Node() *Node { return g.node }

// Cols returns the number of grid columns.
func (g *HeightGrid) Cols() int { return g.cols }

// Rows returns the number of grid rows.
func (g *HeightGrid) Rows() int { return g.rows }

// SetHeight raises a single grid vertex by h above its rest position.
func (g *HeightGrid) SetHeight(col, row int, h float32) {
	idx := row*(g.cols+1) + col
	g.vd.Positions[idx][1] = g.restPos[idx][1] + h
	g.commit()
}

// SetAllHeights calls fn for each vertex with its column, row and rest
// position; fn returns the height above rest.
func (g *HeightGrid) SetAllHeights(fn func(col, row int, rest mgl32.Vec3) float32) {
	vcols := g.cols + 1
	for r := 0; r <= g.rows; r++ {
		for c := 0; c < vcols; c++ {
			idx := r*vcols + c
			g.vd.Positions[idx][1] = g.restPos[idx][1] + fn(c, r, g.restPos[idx])
		}
	}
	g.commit()
}

// Reset returns all vertices to their rest positions.
func (g *HeightGrid) Reset() {
	copy(g.vd.Positions, g.restPos)
	g.commit()
}

func (g *HeightGrid) commit() {
	g.node.SetVertexData(g.snapshot())
}

// snapshot copies the working positions so the mesh never aliases them.
func (g *HeightGrid) snapshot() VertexData {
	vd := g.vd
	vd.Positions = append([]mgl32.Vec3(nil), g.vd.Positions...)
	return vd
}

// --- Polygon ---

// NewPolygon creates a flat polygon mesh in the XY plane from a convex
// outline using fan triangulation. Outlines with fewer than three points
// give a mesh without triangles. Texture coordinates map the outline's
// bounding rectangle to (0,0)-(1,1).
func (e *Engine) NewPolygon(name string, points []mgl32.Vec2, app *Appearance) *Node {
	vd, inds := buildPolygonFan(points)
	return e.NewMesh(name, vd, Submesh{Appearance: app, Indices: inds})
}

// SetPolygonPoints replaces the outline of a mesh made by NewPolygon.
func SetPolygonPoints(n *Node, points []mgl32.Vec2) {
	vd, inds := buildPolygonFan(points)
	app := n.Submesh(0).Appearance
	// Shrink the index list first so it stays valid for the new vertex count.
	n.SetSubmesh(0, Submesh{Appearance: app})
	n.SetVertexData(vd)
	n.SetSubmesh(0, Submesh{Appearance: app, Indices: inds})
}

// buildPolygonFan returns N vertices and 3*(N-2) indices.
func buildPolygonFan(points []mgl32.Vec2) (VertexData, []uint16) {
	n := len(points)
	if n < 3 {
		return VertexData{}, nil
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = mgl32.Vec2{min(lo[0], p[0]), min(lo[1], p[1])}
		hi = mgl32.Vec2{max(hi[0], p[0]), max(hi[1], p[1])}
	}
	size := hi.Sub(lo)

	vd := VertexData{
		Positions: make([]mgl32.Vec3, n),
		TexCoords: make([]mgl32.Vec2, n),
	}
	for i, p := range points {
		vd.Positions[i] = mgl32.Vec3{p[0], p[1], 0}
		var u, v float32
		if size[0] > 0 {
			u = (p[0] - lo[0]) / size[0]
		}
		if size[1] > 0 {
			v = (hi[1] - p[1]) / size[1]
		}
		vd.TexCoords[i] = mgl32.Vec2{u, v}
	}

	// Vertex 0 is the hub.
	inds := make([]uint16, 0, (n-2)*3)
	for i := 0; i < n-2; i++ {
		inds = append(inds, 0, uint16(i+1), uint16(i+2))
	}
	return vd, inds
}
