package orrery

// CameraTag is the tag the draw pass uses to find cameras.
const CameraTag = "camera"

// Camera is the rendering collaborator. Cameras live in the World like any
// other object and are found through CameraTag. For each drawable node the
// draw pass calls SaveState, DrawObject (and DebugDrawObject in debug mode),
// then RestoreState once the node's subtree is done.
type Camera interface {
	Object
	Clear()
	CalculateView(t *Time)
	SaveState()
	RestoreState()
	DrawObject(obj Object, t *Time)
	DebugDrawObject(obj Object, t *Time)
}

// Presenter is implemented by double-buffered cameras. Present runs after
// every camera has drawn.
type Presenter interface {
	Present()
}

// Disabler is implemented by cameras that can be switched off. Disabled
// cameras are skipped entirely.
type Disabler interface {
	IsDisabled() bool
}

// Canvas is the drawing surface cameras expose to Drawers. Coordinates are
// in the space of the current transform.
type Canvas interface {
	FillCircle(center Vec2, radius float64, c Color)
	StrokeCircle(center Vec2, radius, width float64, c Color)
	FillRect(r Rect, c Color)
	StrokeRect(r Rect, width float64, c Color)
	Line(from, to Vec2, width float64, c Color)
	Text(pos Vec2, s string)
}
