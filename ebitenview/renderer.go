package ebitenview

import (
	"errors"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/arbor"
)

// ErrNoTarget is returned when the Renderer is asked to draw before Begin.
var ErrNoTarget = errors.New("ebitenview: no render target")

// whiteImage is a 3x3 white image; whiteSubImage is its center texel, so
// sampling never touches the edge.
var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

func ensureWhiteImage() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// DrawStats counts what the Renderer did since the last Begin.
type DrawStats struct {
	Meshes      int
	Sprites     int
	Triangles   int // triangles submitted to Ebitengine
	BackFaces   int // triangles removed by the polygon mode
	BehindEye   int // triangles dropped because a vertex was behind the eye
	ClearColors int
}

// Renderer is an arbor.Backend that rasterizes meshes and sprites with
// Ebitengine's DrawTriangles32. It has no depth buffer: triangles land in
// render queue order, and within a submesh in index order.
//
// Lighting is per face, computed from the lights registered for the pass.
// Textures are taken from unit 0 when its Image is an *ebiten.Image.
type Renderer struct {
	target        *ebiten.Image
	width, height float32

	verts  []ebiten.Vertex
	inds   []uint32
	camPos []mgl32.Vec3
	lights []arbor.RegisteredLight

	stats DrawStats
}

var (
	_ arbor.Backend = (*Renderer)(nil)
	_ arbor.Clearer = (*Renderer)(nil)
)

// NewRenderer returns a Renderer with no target.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Begin sets the image drawn into and resets the draw statistics.
func (r *Renderer) Begin(target *ebiten.Image) {
	r.target = target
	b := target.Bounds()
	r.width, r.height = float32(b.Dx()), float32(b.Dy())
	r.stats = DrawStats{}
}

// Stats returns the draw statistics since the last Begin.
func (r *Renderer) Stats() DrawStats { return r.stats }

// Clear fills the target with the background color.
func (r *Renderer) Clear(bg arbor.Color) error {
	if r.target == nil {
		return ErrNoTarget
	}
	r.target.Fill(toRGBA(bg))
	r.stats.ClearColors++
	return nil
}

// DrawMesh implements arbor.Backend.
func (r *Renderer) DrawMesh(ctx *arbor.RenderContext, mesh *arbor.Node, modelView mgl32.Mat4, submesh int) error {
	if r.target == nil {
		return ErrNoTarget
	}
	r.stats.Meshes++

	vd := mesh.VertexData()
	sm := mesh.Submesh(submesh)
	app := sm.Appearance
	mvp := ctx.Projection().Mul4(modelView)
	alpha := ctx.EffectiveAlpha(mesh)

	src, sw, sh := r.textureOf(app)
	lit := app.Material() != nil && len(ctx.Lights()) > 0
	r.lights = scopedLights(r.lights[:0], ctx.Lights(), mesh.Scope())
	twoSided := app.PolygonMode() != nil && app.PolygonMode().TwoSidedLighting

	r.camPos = r.camPos[:0]
	for _, p := range vd.Positions {
		r.camPos = append(r.camPos, mgl32.TransformCoordinate(p, modelView))
	}

	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	for t := 0; t+2 < len(sm.Indices); t += 3 {
		i0, i1, i2 := sm.Indices[t], sm.Indices[t+1], sm.Indices[t+2]
		x0, y0, d0, ok0 := project(mvp, vd.Positions[i0], r.width, r.height)
		x1, y1, d1, ok1 := project(mvp, vd.Positions[i1], r.width, r.height)
		x2, y2, d2, ok2 := project(mvp, vd.Positions[i2], r.width, r.height)
		if !ok0 || !ok1 || !ok2 {
			r.stats.BehindEye++
			continue
		}
		if culled(app.PolygonMode(), frontFacing(x0, y0, x1, y1, x2, y2)) {
			r.stats.BackFaces++
			continue
		}

		var ambient, diffuse mgl32.Vec3
		if lit {
			a, b, c := r.camPos[i0], r.camPos[i1], r.camPos[i2]
			centroid := a.Add(b).Add(c).Mul(1.0 / 3)
			ambient, diffuse = lightTerms(r.lights, centroid, faceNormal(a, b, c), twoSided)
		}

		base := len(r.verts)
		for _, v := range [3]struct {
			idx     uint16
			x, y, d float32
		}{{i0, x0, y0, d0}, {i1, x1, y1, d1}, {i2, x2, y2, d2}} {
			col := arbor.ColorWhite
			if vd.Colors != nil {
				col = vd.Colors[v.idx]
			}
			col = shade(app.Material(), col, ambient, diffuse, lit)
			col = applyFog(app.Fog(), col, fogFactor(app.Fog(), v.d))
			col.A *= alpha

			sx, sy := float32(0.5), float32(0.5)
			if vd.TexCoords != nil && sw > 0 {
				uv := vd.TexCoords[v.idx]
				sx, sy = uv[0]*sw, uv[1]*sh
			}
			r.verts = append(r.verts, vertex(v.x, v.y, src.Bounds().Min, sx, sy, col))
		}
		r.inds = append(r.inds, uint32(base), uint32(base+1), uint32(base+2))
		r.stats.Triangles++
	}

	if len(r.inds) == 0 {
		return nil
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = ebitenBlend(app)
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	r.target.DrawTriangles32(r.verts, r.inds, src, &op)
	return nil
}

// DrawSprite implements arbor.Backend. Scaled sprites are a unit quad in the
// node's XY plane; unscaled sprites keep the pixel size of their crop and
// are centered on the projected origin.
func (r *Renderer) DrawSprite(ctx *arbor.RenderContext, sprite *arbor.Node, modelView mgl32.Mat4) error {
	if r.target == nil {
		return ErrNoTarget
	}
	r.stats.Sprites++

	img, w, h, flipX, flipY := spriteSource(sprite)
	alpha := ctx.EffectiveAlpha(sprite)
	mvp := ctx.Projection().Mul4(modelView)
	app := sprite.SpriteAppearance()

	if !sprite.IsScaled() {
		x, y, _, ok := project(mvp, mgl32.Vec3{}, r.width, r.height)
		if !ok {
			r.stats.BehindEye++
			return nil
		}
		b := img.Bounds()
		sx := float64(w) / float64(b.Dx())
		sy := float64(h) / float64(b.Dy())
		if flipX {
			sx = -sx
		}
		if flipY {
			sy = -sy
		}
		var op ebiten.DrawImageOptions
		op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
		op.GeoM.Scale(sx, sy)
		op.GeoM.Translate(float64(x), float64(y))
		op.ColorScale.ScaleAlpha(alpha)
		op.Blend = ebitenBlend(app)
		r.target.DrawImage(img, &op)
		r.stats.Triangles += 2
		return nil
	}

	corners := [4]mgl32.Vec3{{-0.5, 0.5, 0}, {0.5, 0.5, 0}, {0.5, -0.5, 0}, {-0.5, -0.5, 0}}
	b := img.Bounds()
	u0, u1 := float32(0), float32(b.Dx())
	v0, v1 := float32(0), float32(b.Dy())
	if flipX {
		u0, u1 = u1, u0
	}
	if flipY {
		v0, v1 = v1, v0
	}
	uvs := [4][2]float32{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}}

	r.verts = r.verts[:0]
	col := arbor.Color{R: 1, G: 1, B: 1, A: alpha}
	for i, c := range corners {
		x, y, _, ok := project(mvp, c, r.width, r.height)
		if !ok {
			r.stats.BehindEye += 2
			return nil
		}
		r.verts = append(r.verts, vertex(x, y, b.Min, uvs[i][0], uvs[i][1], col))
	}
	r.inds = append(r.inds[:0], 0, 1, 2, 0, 2, 3)
	var op ebiten.DrawTrianglesOptions
	op.Blend = ebitenBlend(app)
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	r.target.DrawTriangles32(r.verts, r.inds, img, &op)
	r.stats.Triangles += 2
	return nil
}

// textureOf returns the image sampled by an appearance and its size in
// texels. Untextured appearances sample a white texel.
func (r *Renderer) textureOf(a *arbor.Appearance) (img *ebiten.Image, w, h float32) {
	if t := a.Texture(0); t != nil {
		if ei, ok := t.Image.(*ebiten.Image); ok {
			b := ei.Bounds()
			return ei, float32(b.Dx()), float32(b.Dy())
		}
	}
	return ensureWhiteImage(), 0, 0
}

// spriteSource returns the image a sprite samples, the on-screen size of
// its crop in pixels, and whether the crop mirrors it. Sprites without an
// Ebitengine image draw a white rectangle of the crop size.
func spriteSource(s *arbor.Node) (img *ebiten.Image, w, h int, flipX, flipY bool) {
	c := s.Crop()
	x, y := c.X, c.Y
	w, h = c.Width, c.Height
	if w < 0 {
		flipX, x, w = true, x+w, -w
	}
	if h < 0 {
		flipY, y, h = true, y+h, -h
	}
	ei, ok := s.SpriteImage().Image.(*ebiten.Image)
	if !ok || w == 0 || h == 0 {
		return ensureWhiteImage(), max(w, 1), max(h, 1), flipX, flipY
	}
	return ei.SubImage(image.Rect(x, y, x+w, y+h)).(*ebiten.Image), w, h, flipX, flipY
}

// scopedLights appends the lights whose scope overlaps scope.
func scopedLights(dst, lights []arbor.RegisteredLight, scope uint32) []arbor.RegisteredLight {
	for _, l := range lights {
		if l.Scope&scope != 0 {
			dst = append(dst, l)
		}
	}
	return dst
}

// vertex builds a premultiplied-alpha Ebitengine vertex. Source coordinates
// are offset by the image origin so sub-images sample correctly.
func vertex(x, y float32, origin image.Point, sx, sy float32, c arbor.Color) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   x,
		DstY:   y,
		SrcX:   float32(origin.X) + sx,
		SrcY:   float32(origin.Y) + sy,
		ColorR: c.R * c.A,
		ColorG: c.G * c.A,
		ColorB: c.B * c.A,
		ColorA: c.A,
	}
}

// toRGBA converts an arbor Color to a premultiplied color.RGBA.
func toRGBA(c arbor.Color) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}
