// Nbody runs a YAML scenario of bodies under mutual gravity. The camera
// follows the heaviest body; Tab scrolls back to the origin, F resumes
// following, Space pauses, D toggles debug and Escape quits.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/orrery"
	"github.com/phanxgames/orrery/collision"
	"github.com/phanxgames/orrery/ebitencam"
	"github.com/phanxgames/orrery/scenario"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "TOML config file (defaults apply when empty)")
	scenarioPath := flag.String("scenario", "scenarios/binary.yaml", "YAML scenario file")
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

	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		return err
	}

	w := orrery.NewWorld(log)
	host := ebitencam.NewHost(ebitencam.RunConfig{
		Title:   sc.Name,
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
		ShowFPS: true,
	})
	loop := orrery.NewLoop(w, host, cfg.Loop, log)

	cam := ebitencam.New("camera", orrery.Rect{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)})
	if _, err := w.Add(cam); err != nil {
		return err
	}
	scene, err := sc.Build(w)
	if err != nil {
		return err
	}
	if _, err := w.Add(collision.NewSystem(w, cfg.Collision, log)); err != nil {
		return err
	}
	w.Commit()

	follow := func() {
		if scene.Field == nil {
			return
		}
		if id, ok := scene.Field.Heaviest(); ok {
			cam.Follow(w, id, orrery.Vec2{}, 0.1)
		}
	}
	follow()

	keys := ebitencam.NewKeyboard()
	keys.Bind(ebiten.KeyTab, func() {
		cam.Unfollow()
		cam.ScrollTo(0, 0, 1.5, ease.InOutQuad)
	})
	keys.Bind(ebiten.KeyF, follow)
	keys.Bind(ebiten.KeyEqual, func() { cam.Zoom *= 1.25 })
	keys.Bind(ebiten.KeyMinus, func() { cam.Zoom /= 1.25 })
	keys.Bind(ebiten.KeySpace, loop.TogglePause)
	keys.Bind(ebiten.KeyD, func() { loop.SetDebug(!loop.Debug()) })
	keys.Bind(ebiten.KeyEscape, loop.Stop)
	loop.SetInput(keys)

	return ebitencam.Run(loop, host)
}
