package ebitenview

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/arbor"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowStats draws a StatsOverlay on top of the world.
	ShowStats bool
	// Update is called once per tick, before the world is drawn, with the
	// tick length in seconds. A non-nil error ends the game loop.
	Update func(dt float32) error
	// Orbit, when set, is advanced every tick and can be driven by Script.
	Orbit *Orbit
	// Script runs one step per tick before Update.
	Script *Script
	// ScreenshotDir defaults to DefaultScreenshotDir.
	ScreenshotDir string
}

// Game is an ebiten.Game that renders an arbor world through its active
// camera. Use it directly when you need control over the window; otherwise
// call Run.
type Game struct {
	World    *arbor.Node
	Renderer *Renderer

	ctx     *arbor.RenderContext
	overlay *StatsOverlay
	cfg     RunConfig
	shots   []string

	// err is the last render failure. Draw cannot return errors, so the
	// next Update does.
	err error
}

// NewGame creates a Game for world. The render context draws through a new
// Renderer and is charged to the world's engine.
func NewGame(world *arbor.Node, cfg RunConfig) *Game {
	r := NewRenderer()
	g := &Game{
		World:    world,
		Renderer: r,
		ctx:      world.Engine().NewRenderContext(r),
		cfg:      cfg,
	}
	if cfg.ShowStats {
		g.overlay = NewStatsOverlay()
	}
	return g
}

// Context returns the render context used by Draw.
func (g *Game) Context() *arbor.RenderContext { return g.ctx }

// SetScript replaces the script run by Update. nil stops scripting.
func (g *Game) SetScript(s *Script) { g.cfg.Script = s }

// Close releases the render context.
func (g *Game) Close() { g.ctx.Close() }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	dt := 1 / float32(ebiten.TPS())
	if g.cfg.Script != nil {
		if err := g.cfg.Script.step(g); err != nil {
			return err
		}
	}
	if g.cfg.Update != nil {
		if err := g.cfg.Update(dt); err != nil {
			return err
		}
	}
	if g.cfg.Orbit != nil {
		g.cfg.Orbit.Update(dt)
	}
	if g.overlay != nil {
		g.overlay.Update(dt, g.ctx.Stats(), g.Renderer.Stats())
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.Renderer.Begin(screen)
	if err := g.ctx.RenderWorld(g.World); err != nil {
		g.err = fmt.Errorf("ebitenview: render %s: %w", g.World.Name, err)
		return
	}
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The screen keeps the configured size; a
// perspective or parallel active camera has its aspect ratio matched to it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.cfg.Width, g.cfg.Height
	if w <= 0 || h <= 0 {
		w, h = outsideWidth, outsideHeight
	}
	matchAspect(g.World.ActiveCamera(), float32(w)/float32(h))
	return w, h
}

// matchAspect re-applies the camera projection with the given aspect ratio
// when it differs.
func matchAspect(cam *arbor.Node, aspect float32) {
	if cam == nil {
		return
	}
	p := cam.ProjectionParams()
	if p[1] == aspect {
		return
	}
	switch _, kind := cam.Projection(); kind {
	case arbor.ProjectionPerspective:
		cam.SetPerspective(p[0], aspect, p[2], p[3])
	case arbor.ProjectionParallel:
		cam.SetParallel(p[0], aspect, p[2], p[3])
	}
}

// Run opens a window and renders world until the window closes, an update
// or render fails, or the script exits.
func Run(world *arbor.Node, cfg RunConfig) error {
	g := NewGame(world, cfg)
	defer g.Close()

	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	arbor.Logger().Info("ebitenview: starting game loop", "world", world.Name, "width", cfg.Width, "height", cfg.Height)
	return ebiten.RunGame(g)
}
