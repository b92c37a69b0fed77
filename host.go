package orrery

import (
	"context"
	"time"
)

// StepHost is a FrameScheduler driven by hand. Each Advance moves its clock
// and fires the pending frame, which makes runs fully deterministic.
type StepHost struct {
	now     time.Time
	pending func(time.Time)
	gen     uint64
}

// NewStepHost creates a StepHost whose clock starts at start.
func NewStepHost(start time.Time) *StepHost {
	return &StepHost{now: start}
}

// RequestFrame implements FrameScheduler.
func (h *StepHost) RequestFrame(fn func(time.Time)) func() {
	h.gen++
	gen := h.gen
	h.pending = fn
	return func() {
		if h.gen == gen {
			h.pending = nil
		}
	}
}

// Now returns the host clock.
func (h *StepHost) Now() time.Time { return h.now }

// Pending reports whether a frame is requested.
func (h *StepHost) Pending() bool { return h.pending != nil }

// Advance moves the clock by d and fires the pending frame. It reports
// whether a frame ran.
func (h *StepHost) Advance(d time.Duration) bool {
	h.now = h.now.Add(d)
	fn := h.pending
	if fn == nil {
		return false
	}
	h.pending = nil
	fn(h.now)
	return true
}

// TickerHost is a FrameScheduler backed by a time.Ticker, for hosts without
// a display refresh (terminals, headless runs). Run must be called on the
// goroutine that owns the World.
type TickerHost struct {
	interval time.Duration
	pending  func(time.Time)
	gen      uint64
}

// NewTickerHost creates a host firing at most once per interval.
func NewTickerHost(interval time.Duration) *TickerHost {
	return &TickerHost{interval: interval}
}

// RequestFrame implements FrameScheduler.
func (h *TickerHost) RequestFrame(fn func(time.Time)) func() {
	h.gen++
	gen := h.gen
	h.pending = fn
	return func() {
		if h.gen == gen {
			h.pending = nil
		}
	}
}

// Run fires requested frames on every tick until ctx is done or no frame is
// pending (the Loop stopped). It returns ctx.Err() on cancellation.
func (h *TickerHost) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		if h.pending == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			fn := h.pending
			if fn == nil {
				return nil
			}
			h.pending = nil
			fn(now)
		}
	}
}
