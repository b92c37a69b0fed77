package ebitencam

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how many ticks pass between FPS readouts (about 0.5s at the
// default 60 TPS).
const fpsRefresh = 30

// FPS displays ebiten's measured FPS and TPS in the top-left corner.
type FPS struct {
	img   *ebiten.Image
	ticks int
}

// NewFPS creates the overlay. 100x32 is enough for "FPS: 60.0\nTPS: 60.0".
func NewFPS() *FPS {
	return &FPS{img: ebiten.NewImage(100, 32), ticks: fpsRefresh}
}

// Update refreshes the readout every fpsRefresh ticks.
func (f *FPS) Update() {
	f.ticks++
	if f.ticks < fpsRefresh {
		return
	}
	f.ticks = 0
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

// Draw composites the overlay onto screen.
func (f *FPS) Draw(screen *ebiten.Image) {
	screen.DrawImage(f.img, nil)
}
