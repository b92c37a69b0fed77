// Termballs bounces balls in the terminal. Space pauses, d toggles the
// debug overlay and q or Escape quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/orrery"
	"github.com/phanxgames/orrery/collision"
	"github.com/phanxgames/orrery/physics"
	"github.com/phanxgames/orrery/termcam"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "TOML config file (defaults apply when empty)")
	count := flag.Int("balls", 8, "number of balls")
	fps := flag.Int("fps", 30, "frames per second")
	flag.Parse()

	cfg := orrery.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = orrery.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	// The terminal owns stdout, so logs go to stderr at warn and above only.
	cfg.Logging.Level = "warn"
	log, err := orrery.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	defer screen.Fini()
	cols, rows := screen.Size()

	w := orrery.NewWorld(log)
	host := orrery.NewTickerHost(time.Second / time.Duration(max(*fps, 1)))
	loop := orrery.NewLoop(w, host, cfg.Loop, log)

	cam := termcam.New("terminal", screen, 0, 0, cols, rows)
	width, height := cam.Viewport.Width, cam.Viewport.Height
	cam.X, cam.Y = width/2, height/2

	bounds := orrery.Rect{X: 1, Y: 1, Width: width - 2, Height: height - 2}
	for _, obj := range []orrery.Object{cam, physics.NewContainer("walls", bounds)} {
		if _, err := w.Add(obj); err != nil {
			return err
		}
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range *count {
		ball := physics.NewBall(fmt.Sprintf("ball-%d", i),
			orrery.Vec2{X: bounds.X + 3 + rng.Float64()*(bounds.Width-6), Y: bounds.Y + 3 + rng.Float64()*(bounds.Height/2)},
			1.5, 1, orrery.Color{R: rng.Float64(), G: rng.Float64(), B: 1, A: 1})
		ball.Vel = orrery.Vec2{X: (rng.Float64() - 0.5) * 40, Y: (rng.Float64() - 0.5) * 40}
		ball.Gravity = orrery.Vec2{Y: 30}
		ball.Restitution = 0.9
		if _, err := w.Add(ball); err != nil {
			return err
		}
	}
	if _, err := w.Add(collision.NewSystem(w, cfg.Collision, log)); err != nil {
		return err
	}
	w.Commit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys := termcam.NewKeys(termcam.Poll(screen))
	keys.BindRune(' ', loop.TogglePause)
	keys.BindRune('d', func() { loop.SetDebug(!loop.Debug()) })
	keys.BindRune('q', loop.Stop)
	keys.BindKey(tcell.KeyEscape, loop.Stop)
	keys.BindKey(tcell.KeyCtrlC, loop.Stop)
	keys.OnResize = func(cols, rows int) {
		screen.Sync()
		cam.Resize(cols, rows)
		log.Debug("resized", zap.Int("cols", cols), zap.Int("rows", rows))
	}
	loop.SetInput(keys)

	loop.Start()
	if err := host.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	loop.Stop()
	return loop.Err()
}
