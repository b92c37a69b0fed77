package orrery

import (
	"time"

	"go.uber.org/zap"
)

// LoopState is the scheduler's run state.
type LoopState uint8

const (
	LoopStopped LoopState = iota
	LoopRunning
	LoopPaused
)

func (s LoopState) String() string {
	switch s {
	case LoopStopped:
		return "stopped"
	case LoopRunning:
		return "running"
	case LoopPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// FrameScheduler is the host's per-frame primitive (a display refresh,
// a ticker, a test harness). RequestFrame arranges for fn to run once on the
// simulation goroutine and returns a function that cancels the request.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// InputController processes input devices once per frame, before any fixed
// step runs. Bound command callbacks fire from inside Update.
type InputController interface {
	Update()
}

// Loop is the fixed-step scheduler. Each frame it processes input, drains
// accumulated wall time in fixed steps (update traversal then commit), and
// draws exactly once with the leftover fraction as interpolation.
type Loop struct {
	world *World
	host  FrameScheduler
	input InputController
	log   *zap.Logger

	minUpdateTime time.Duration
	timeScale     float64
	maxDebtSteps  int
	debug         bool

	state    LoopState
	cancel   func()
	frameFn  func(time.Time)
	last     time.Time
	debt     time.Duration
	animTime time.Duration
	ticks    uint64
	err      error
	time     Time
}

// NewLoop creates a stopped Loop over world, scheduled by host. Zero or
// negative config values fall back to the defaults. A nil logger uses the
// World's logger.
func NewLoop(world *World, host FrameScheduler, cfg LoopConfig, log *zap.Logger) *Loop {
	if log == nil {
		log = world.Logger()
	}
	l := &Loop{
		world:         world,
		host:          host,
		log:           log,
		minUpdateTime: cfg.MinUpdateTime,
		timeScale:     cfg.TimeScale,
		maxDebtSteps:  cfg.MaxDebtSteps,
		debug:         cfg.Debug,
	}
	if l.minUpdateTime <= 0 {
		l.minUpdateTime = DefaultMinUpdateTime
	}
	if l.timeScale <= 0 {
		l.timeScale = 1
	}
	if l.maxDebtSteps <= 0 {
		l.maxDebtSteps = DefaultMaxDebtSteps
	}
	l.frameFn = func(now time.Time) { _ = l.Frame(now) }
	world.SetDebugMode(l.debug)
	return l
}

// World returns the scheduled World.
func (l *Loop) World() *World { return l.world }

// SetInput sets the input controller processed at the start of each frame.
func (l *Loop) SetInput(in InputController) { l.input = in }

// State returns the current run state.
func (l *Loop) State() LoopState { return l.state }

// Err returns the error that stopped the Loop, if any.
func (l *Loop) Err() error { return l.err }

// Ticks returns the number of fixed steps run since the Loop was created.
func (l *Loop) Ticks() uint64 { return l.ticks }

// MinUpdateTime returns the fixed step length in wall time.
func (l *Loop) MinUpdateTime() time.Duration { return l.minUpdateTime }

// TimeScale returns the simulation speed multiplier.
func (l *Loop) TimeScale() float64 { return l.timeScale }

// SetTimeScale changes the simulation speed multiplier. Non-positive values
// are ignored.
func (l *Loop) SetTimeScale(s float64) {
	if s > 0 {
		l.timeScale = s
	}
}

// Debug reports whether debug drawing and frame stats are on.
func (l *Loop) Debug() bool { return l.debug }

// SetDebug toggles debug drawing, frame stats, and the World's debug checks.
func (l *Loop) SetDebug(enabled bool) {
	l.debug = enabled
	l.world.SetDebugMode(enabled)
}

// Start moves a stopped Loop to running and requests the first frame.
// Starting a running or paused Loop is a no-op.
func (l *Loop) Start() {
	if l.state != LoopStopped {
		return
	}
	l.state = LoopRunning
	l.err = nil
	l.last = time.Time{}
	l.debt = 0
	l.log.Info("loop started",
		zap.Duration("step", l.minUpdateTime),
		zap.Float64("timeScale", l.timeScale))
	l.cancel = l.host.RequestFrame(l.frameFn)
}

// Stop cancels the pending frame and moves the Loop to stopped. Outstanding
// add/remove/move handles are rejected with ErrStopped. Idempotent.
func (l *Loop) Stop() {
	if l.state == LoopStopped {
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.state = LoopStopped
	if n := l.world.PendingOps(); n > 0 {
		l.log.Info("rejecting pending operations", zap.Int("count", n))
	}
	l.world.Discard(ErrStopped)
	l.log.Info("loop stopped", zap.Uint64("ticks", l.ticks))
}

// Pause freezes simulation time. Frames keep drawing.
func (l *Loop) Pause() {
	if l.state == LoopRunning {
		l.state = LoopPaused
		l.log.Info("loop paused")
	}
}

// Resume continues a paused Loop.
func (l *Loop) Resume() {
	if l.state == LoopPaused {
		l.state = LoopRunning
		l.log.Info("loop resumed")
	}
}

// TogglePause pauses a running Loop or resumes a paused one.
func (l *Loop) TogglePause() {
	switch l.state {
	case LoopRunning:
		l.Pause()
	case LoopPaused:
		l.Resume()
	}
}

// Frame runs one frame at wall time now. Hosts reach it through the callback
// passed to RequestFrame; tests may call it directly. The returned error is
// the update failure that stopped the Loop during this frame, if any.
func (l *Loop) Frame(now time.Time) error {
	l.cancel = nil
	if l.state == LoopStopped {
		return nil
	}

	var elapsed time.Duration
	last := l.last
	if last.IsZero() {
		last = now
	} else if now.After(last) {
		elapsed = now.Sub(last)
	}
	l.last = now
	l.animTime += elapsed

	if l.input != nil {
		l.input.Update()
		if l.state == LoopStopped {
			return nil
		}
	}

	var stats frameStats
	var t0 time.Time

	step := l.minUpdateTime
	t := &l.time
	t.Now = now
	t.Last = last
	t.TimeScale = l.timeScale
	t.Delta = step.Seconds() * l.timeScale
	t.AnimationTime = l.animTime.Seconds()

	if l.state == LoopRunning {
		l.debt += elapsed
		if limit := step * time.Duration(l.maxDebtSteps); l.debt > limit {
			l.log.Warn("update debt exceeded, dropping frames",
				zap.Duration("debt", l.debt),
				zap.Duration("limit", limit))
			l.debt = 0
		}
		for l.debt >= step {
			l.ticks++
			t.Tick = l.ticks
			if l.debug {
				t0 = time.Now()
			}
			if err := l.world.Update(t); err != nil {
				l.fail(err)
				return err
			}
			if l.debug {
				stats.updateTime += time.Since(t0)
				t0 = time.Now()
			}
			l.world.Commit()
			if l.debug {
				stats.commitTime += time.Since(t0)
			}
			l.debt -= step
			stats.steps++
			if l.state == LoopStopped {
				return nil
			}
		}
	}

	t.Interpolation = float64(l.debt) / float64(step)
	if l.debug {
		t0 = time.Now()
	}
	stats.cameraCount = l.world.Draw(t, l.debug)
	if l.debug {
		stats.drawTime = time.Since(t0)
		stats.objectCount = l.world.Len()
		l.debugLog(stats)
	}

	if l.state != LoopStopped {
		l.cancel = l.host.RequestFrame(l.frameFn)
	}
	return nil
}

func (l *Loop) fail(err error) {
	l.err = err
	l.log.Error("loop stopped by update error", zap.Error(err))
	l.Stop()
}
