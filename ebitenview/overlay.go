package ebitenview

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/arbor"
)

// StatsOverlay draws frame rate, render pass and cache statistics in the
// top-left corner. The text is redrawn every ~0.5 seconds.
type StatsOverlay struct {
	img        *ebiten.Image
	lastUpdate float32
	text       string
}

// NewStatsOverlay creates an overlay with its own backing image.
func NewStatsOverlay() *StatsOverlay {
	// 220x112 fits the eight lines of statsText.
	return &StatsOverlay{img: ebiten.NewImage(220, 112)}
}

// Update records the latest statistics. dt is the frame time in seconds.
func (o *StatsOverlay) Update(dt float32, pass arbor.Stats, draw DrawStats) {
	o.lastUpdate += dt
	if o.text != "" && o.lastUpdate < 0.5 {
		return
	}
	o.lastUpdate = 0
	o.text = statsText(ebiten.ActualFPS(), ebiten.ActualTPS(), pass, draw)

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
}

// Draw composites the overlay onto screen.
func (o *StatsOverlay) Draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, nil)
}

func statsText(fps, tps float64, pass arbor.Stats, draw DrawStats) string {
	return fmt.Sprintf(
		"FPS: %.1f  TPS: %.1f\n"+
			"visited: %d  culled: %d\n"+
			"box tests: %d  lights: %d\n"+
			"queued: %d  drawn: %d\n"+
			"triangles: %d\n"+
			"back faces: %d  behind: %d\n"+
			"composite hits: %d/%d\n"+
			"path hits: %d/%d",
		fps, tps,
		pass.Visited, pass.Culled,
		pass.BoxTests, pass.Lights,
		pass.Queued, pass.Drawn,
		draw.Triangles,
		draw.BackFaces, draw.BehindEye,
		pass.Cache.CompositeHits, pass.Cache.CompositeHits+pass.Cache.CompositeMisses,
		pass.Cache.PathHits, pass.Cache.PathHits+pass.Cache.PathMisses,
	)
}
