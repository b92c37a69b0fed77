package orrery

import "time"

// Time is the read-only payload passed to Update and Draw callbacks.
type Time struct {
	// Delta is the simulated length of one fixed step in seconds, already
	// multiplied by TimeScale.
	Delta float64
	// Interpolation is the leftover fraction of a fixed step not yet
	// simulated, in [0, 1). Drawers blend previous and current state with it.
	Interpolation float64
	// AnimationTime is the total wall time in seconds since the Loop started.
	// It keeps advancing while paused.
	AnimationTime float64
	// Now and Last are the raw timestamps of this frame and the previous one.
	Now, Last time.Time
	// TimeScale is the active simulation speed multiplier.
	TimeScale float64
	// Tick counts fixed steps since the Loop started.
	Tick uint64
}
