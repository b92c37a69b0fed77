package orrery

import (
	"time"

	"go.uber.org/zap"
)

// frameStats holds per-frame timing and counts. Only populated when the
// Loop's debug flag is set.
type frameStats struct {
	updateTime  time.Duration
	commitTime  time.Duration
	drawTime    time.Duration
	steps       int
	objectCount int
	cameraCount int
}

// debugLog writes one frame's stats at debug level.
func (l *Loop) debugLog(stats frameStats) {
	l.log.Debug("frame",
		zap.Duration("update", stats.updateTime),
		zap.Duration("commit", stats.commitTime),
		zap.Duration("draw", stats.drawTime),
		zap.Int("steps", stats.steps),
		zap.Int("objects", stats.objectCount),
		zap.Int("cameras", stats.cameraCount))
}

// debugMaxTreeDepth is the depth past which commit logs a warning.
const debugMaxTreeDepth = 32

func (w *World) debugCheckTreeDepth(b *GameObject) {
	depth := 1
	for id := b.parent; ; depth++ {
		if id == RootID {
			break
		}
		p, ok := w.objects[id]
		if !ok {
			break
		}
		id = p.Base().parent
	}
	if depth > debugMaxTreeDepth {
		w.log.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
			zap.String("name", b.Name))
	}
}

// debugMaxChildCount is the child count past which commit logs a warning.
const debugMaxChildCount = 1000

func (w *World) debugCheckChildCount(b *GameObject) {
	if len(b.children) > debugMaxChildCount {
		w.log.Warn("child count exceeds threshold",
			zap.String("name", b.Name),
			zap.Int("children", len(b.children)),
			zap.Int("threshold", debugMaxChildCount))
	}
}
