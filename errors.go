package orrery

import "errors"

// Usage errors are returned synchronously by the call that violates the
// precondition. Commit-time races reject only the affected Handle.
var (
	ErrAlreadyAdded   = errors.New("orrery: object already added")
	ErrParentMissing  = errors.New("orrery: parent does not exist")
	ErrRoot           = errors.New("orrery: root cannot be added, removed, or moved")
	ErrNotAdded       = errors.New("orrery: object was never added")
	ErrPendingMove    = errors.New("orrery: object has a pending move")
	ErrPendingRemoval = errors.New("orrery: object has a pending removal")
	ErrCycle          = errors.New("orrery: move would create a cycle")
	ErrStopped        = errors.New("orrery: loop stopped before commit")

	// ErrNonFinite marks a numerical defect: a NaN or infinite time of impact
	// or position. It is always returned, never clamped.
	ErrNonFinite = errors.New("orrery: non-finite value")
)
