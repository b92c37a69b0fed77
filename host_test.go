package orrery

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestStepHostCancel(t *testing.T) {
	h := NewStepHost(time.Unix(0, 0))
	fired := 0
	cancel := h.RequestFrame(func(time.Time) { fired++ })
	cancel()
	if h.Pending() || h.Advance(time.Millisecond) || fired != 0 {
		t.Error("cancelled frame still fired")
	}

	stale := h.RequestFrame(func(time.Time) { fired++ })
	h.RequestFrame(func(time.Time) { fired += 10 })
	stale()
	if !h.Pending() {
		t.Fatal("stale cancel dropped the newer request")
	}
	var at time.Time
	h.RequestFrame(func(now time.Time) { at = now })
	h.Advance(5 * time.Millisecond)
	if want := time.Unix(0, 0).Add(6 * time.Millisecond); !at.Equal(want) {
		t.Errorf("frame time = %v, want %v", at, want)
	}
}

func TestTickerHostRunsUntilStopped(t *testing.T) {
	w := NewWorld(nil)
	probe := newNode("probe")
	mustAdd(t, w, probe)
	w.Commit()

	host := NewTickerHost(time.Millisecond)
	loop := NewLoop(w, host, LoopConfig{MinUpdateTime: time.Millisecond}, zap.NewNop())
	probe.onUpdate = func(*Time) error {
		if probe.updates >= 5 {
			loop.Stop()
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	loop.Start()
	if err := host.Run(ctx); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if probe.updates < 5 {
		t.Errorf("updates = %d, want at least 5", probe.updates)
	}
}

func TestTickerHostCancel(t *testing.T) {
	w := NewWorld(nil)
	host := NewTickerHost(time.Hour)
	loop := NewLoop(w, host, LoopConfig{}, zap.NewNop())
	loop.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := host.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestTickerHostNothingPending(t *testing.T) {
	if err := NewTickerHost(time.Millisecond).Run(context.Background()); err != nil {
		t.Errorf("Run with no frame = %v", err)
	}
}
