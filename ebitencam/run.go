package ebitencam

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/orrery"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// Host is an orrery.FrameScheduler and an ebiten.Game. Every ebiten Update
// fires the frame the Loop requested, which simulates and draws into the
// cameras' back buffers; ebiten's Draw blits the presented buffers.
type Host struct {
	loop *orrery.Loop
	cfg  RunConfig
	fps  *FPS
	now  func() time.Time

	pending func(time.Time)
	gen     uint64
}

// NewHost creates a host for cfg. Attach a Loop before running it.
func NewHost(cfg RunConfig) *Host {
	h := &Host{cfg: cfg, now: time.Now}
	if cfg.ShowFPS {
		h.fps = NewFPS()
	}
	return h
}

// Attach sets the Loop whose errors and state end the game.
func (h *Host) Attach(loop *orrery.Loop) { h.loop = loop }

// RequestFrame implements orrery.FrameScheduler.
func (h *Host) RequestFrame(fn func(time.Time)) func() {
	h.gen++
	gen := h.gen
	h.pending = fn
	return func() {
		if h.gen == gen {
			h.pending = nil
		}
	}
}

// Update implements ebiten.Game. It returns the Loop's error once an update
// failed, and ebiten.Termination once the Loop stopped cleanly.
func (h *Host) Update() error {
	if fn := h.pending; fn != nil {
		h.pending = nil
		fn(h.now())
	}
	if h.fps != nil {
		h.fps.Update()
	}
	if h.loop == nil {
		return nil
	}
	if err := h.loop.Err(); err != nil {
		return err
	}
	if h.loop.State() == orrery.LoopStopped {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.loop != nil {
		for _, obj := range h.loop.World().Filter(orrery.CameraTag) {
			if cam, ok := obj.(*Camera); ok {
				cam.Blit(screen)
			}
		}
	}
	if h.fps != nil {
		h.fps.Draw(screen)
	}
}

// Layout implements ebiten.Game with a fixed logical size.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if h.cfg.Width <= 0 || h.cfg.Height <= 0 {
		return outsideWidth, outsideHeight
	}
	return h.cfg.Width, h.cfg.Height
}

// Run opens a window, starts loop and blocks until the window closes or the
// Loop stops. The Loop must have been created with h as its scheduler.
func Run(loop *orrery.Loop, h *Host) error {
	h.Attach(loop)
	if h.cfg.Title != "" {
		ebiten.SetWindowTitle(h.cfg.Title)
	}
	if h.cfg.Width > 0 && h.cfg.Height > 0 {
		ebiten.SetWindowSize(h.cfg.Width, h.cfg.Height)
	}
	loop.Start()
	err := ebiten.RunGame(h)
	loop.Stop()
	if err != nil {
		return err
	}
	return loop.Err()
}
