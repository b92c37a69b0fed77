// Balls bounces a box of balls under gravity. Space pauses, D toggles the
// debug overlay, B spawns a ball and Escape quits.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/orrery"
	"github.com/phanxgames/orrery/collision"
	"github.com/phanxgames/orrery/ebitencam"
	"github.com/phanxgames/orrery/physics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "TOML config file (defaults apply when empty)")
	count := flag.Int("balls", 16, "number of balls to start with")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	cfg := orrery.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = orrery.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	log, err := orrery.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	w := orrery.NewWorld(log)
	host := ebitencam.NewHost(ebitencam.RunConfig{
		Title:   cfg.Window.Title,
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
		ShowFPS: true,
	})
	loop := orrery.NewLoop(w, host, cfg.Loop, log)

	width, height := float64(cfg.Window.Width), float64(cfg.Window.Height)
	cam := ebitencam.New("camera", orrery.Rect{Width: width, Height: height})
	cam.X, cam.Y = width/2, height/2
	cam.Background = orrery.Color{R: 0.05, G: 0.05, B: 0.08, A: 1}

	bounds := orrery.Rect{X: 20, Y: 20, Width: width - 40, Height: height - 40}
	bodies := &orrery.GameObject{Name: "bodies"}
	for _, obj := range []orrery.Object{
		cam,
		physics.NewContainer("walls", bounds),
		bodies,
		collision.NewSystem(w, cfg.Collision, log),
	} {
		if _, err := w.Add(obj); err != nil {
			return err
		}
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	spawned := 0
	spawn := func() {
		spawned++
		r := 6 + rng.Float64()*14
		pos := orrery.Vec2{
			X: bounds.X + r + rng.Float64()*(bounds.Width-2*r),
			Y: bounds.Y + r + rng.Float64()*(bounds.Height/2-2*r),
		}
		c := orrery.Color{R: 0.3 + 0.7*rng.Float64(), G: 0.3 + 0.7*rng.Float64(), B: 0.3 + 0.7*rng.Float64(), A: 1}
		ball := physics.NewBall(fmt.Sprintf("ball-%d", spawned), pos, r, r*r, c)
		ball.Vel = orrery.Vec2{X: (rng.Float64() - 0.5) * 400, Y: (rng.Float64() - 0.5) * 400}
		ball.Gravity = orrery.Vec2{Y: 400}
		ball.Restitution = 0.85
		ball.AttachSpeed = 30
		if _, err := w.AddToObject(ball, bodies); err != nil {
			log.Warn("spawn failed", zap.Error(err))
		}
	}
	for range *count {
		spawn()
	}
	w.Commit()

	keys := ebitencam.NewKeyboard()
	keys.Bind(ebiten.KeySpace, loop.TogglePause)
	keys.Bind(ebiten.KeyD, func() { loop.SetDebug(!loop.Debug()) })
	keys.Bind(ebiten.KeyB, spawn)
	keys.Bind(ebiten.KeyEscape, loop.Stop)
	loop.SetInput(keys)

	return ebitencam.Run(loop, host)
}
