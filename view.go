package orrery

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Locator is implemented by objects with a world position a View can follow.
type Locator interface {
	Location() Vec2
}

// View is the camera math shared by the rendering backends: position, zoom,
// rotation and viewport, follow and scroll-to, plus the transform stack
// driven by SaveState and RestoreState. Backends embed it next to
// GameObject and supply Clear, DrawObject and DebugDrawObject.
type View struct {
	// X and Y are the world-space position the view centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the view rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle the view renders into.
	Viewport Rect

	// BoundsEnabled clamps the position so the visible area stays within
	// Bounds.
	BoundsEnabled bool
	Bounds        Rect

	world        *World
	follow       ID
	following    bool
	followOffset Vec2
	followLerp   float64

	scroll *TweenGroup

	matrix  Affine
	inverse Affine
	current Affine
	stack   []Affine
}

// NewView creates a View at the origin with zoom 1.
func NewView(viewport Rect) View {
	v := View{Zoom: 1, Viewport: viewport}
	v.computeMatrix()
	v.current = v.matrix
	return v
}

// Follow tracks the object id in w, which must implement Locator. A lerp of
// 1 snaps every frame; lower values trail behind.
func (v *View) Follow(w *World, id ID, offset Vec2, lerp float64) {
	v.world = w
	v.follow = id
	v.following = true
	v.followOffset = offset
	v.followLerp = lerp
}

// Unfollow stops tracking.
func (v *View) Unfollow() {
	v.following = false
	v.world = nil
}

// Following returns the followed ID.
func (v *View) Following() (ID, bool) { return v.follow, v.following }

// ScrollTo animates the position to (x, y) over duration seconds of
// animation time. It cancels any scroll in progress.
func (v *View) ScrollTo(x, y float64, duration float32, fn ease.TweenFunc) {
	v.scroll = TweenXY(&v.X, &v.Y, x, y, duration, fn)
}

// Scrolling reports whether a ScrollTo is in progress.
func (v *View) Scrolling() bool { return v.scroll != nil }

// SetBounds enables bounds clamping.
func (v *View) SetBounds(bounds Rect) {
	v.BoundsEnabled = true
	v.Bounds = bounds
}

// ClearBounds disables bounds clamping.
func (v *View) ClearBounds() { v.BoundsEnabled = false }

// ClampToBounds immediately clamps the position. No-op if BoundsEnabled is
// false.
func (v *View) ClampToBounds() {
	if v.BoundsEnabled {
		v.clampToBounds()
	}
}

// CalculateView advances follow and scroll, clamps, recomputes the view
// matrix and resets the transform stack to it. It runs once per frame
// before the draw pass.
func (v *View) CalculateView(t *Time) {
	if v.following {
		obj, ok := v.world.Get(v.follow)
		loc, isLocator := obj.(Locator)
		if !ok || !isLocator {
			v.Unfollow()
		} else {
			target := loc.Location().Add(v.followOffset)
			v.X += (target.X - v.X) * v.followLerp
			v.Y += (target.Y - v.Y) * v.followLerp
		}
	}

	if v.scroll != nil {
		v.scroll.Advance(t)
		if v.scroll.Done {
			v.scroll = nil
		}
	}

	if v.BoundsEnabled {
		v.clampToBounds()
	}

	v.computeMatrix()
	v.current = v.matrix
	v.stack = v.stack[:0]
}

// SaveState pushes the current transform.
func (v *View) SaveState() {
	v.stack = append(v.stack, v.current)
}

// RestoreState pops the transform pushed by the matching SaveState.
// Unbalanced calls leave the view transform in place.
func (v *View) RestoreState() {
	n := len(v.stack)
	if n == 0 {
		v.current = v.matrix
		return
	}
	v.current = v.stack[n-1]
	v.stack = v.stack[:n-1]
}

// Depth returns the number of saved states.
func (v *View) Depth() int { return len(v.stack) }

// Compose applies obj's local transform, if it has one, to the current
// transform.
func (v *View) Compose(obj Object, t *Time) {
	if tr, ok := obj.(Transformer); ok {
		v.current = v.current.Mul(tr.LocalTransform(t))
	}
}

// Current returns the transform from the current object space to the
// screen.
func (v *View) Current() Affine { return v.current }

// Matrix returns the world-to-screen view matrix.
func (v *View) Matrix() Affine { return v.matrix }

// WorldToScreen converts world coordinates to screen coordinates.
func (v *View) WorldToScreen(p Vec2) Vec2 { return v.matrix.Apply(p) }

// ScreenToWorld converts screen coordinates to world coordinates.
func (v *View) ScreenToWorld(p Vec2) Vec2 { return v.inverse.Apply(p) }

// VisibleBounds returns the axis-aligned world rectangle the viewport sees.
func (v *View) VisibleBounds() Rect {
	vp := v.Viewport
	corners := [4]Vec2{
		v.inverse.Apply(Vec2{vp.X, vp.Y}),
		v.inverse.Apply(Vec2{vp.X + vp.Width, vp.Y}),
		v.inverse.Apply(Vec2{vp.X + vp.Width, vp.Y + vp.Height}),
		v.inverse.Apply(Vec2{vp.X, vp.Y + vp.Height}),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// clampToBounds restricts the position so the visible area stays within
// Bounds, centering when Bounds is smaller than the visible area.
func (v *View) clampToBounds() {
	halfW := v.Viewport.Width / (2 * v.Zoom)
	halfH := v.Viewport.Height / (2 * v.Zoom)

	minX := v.Bounds.X + halfW
	maxX := v.Bounds.X + v.Bounds.Width - halfW
	minY := v.Bounds.Y + halfH
	maxY := v.Bounds.Y + v.Bounds.Height - halfH

	if minX > maxX {
		v.X = v.Bounds.X + v.Bounds.Width/2
	} else {
		v.X = math.Max(minX, math.Min(v.X, maxX))
	}
	if minY > maxY {
		v.Y = v.Bounds.Y + v.Bounds.Height/2
	} else {
		v.Y = math.Max(minY, math.Min(v.Y, maxY))
	}
}

// computeMatrix builds
//
//	Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
//
// where (cx, cy) is the viewport center.
func (v *View) computeMatrix() {
	c := v.Viewport.Center()
	v.matrix = Translate(c.X, c.Y).
		Mul(ComposeAffine(0, 0, -v.Rotation, v.Zoom, v.Zoom)).
		Mul(Translate(-v.X, -v.Y))
	v.inverse = v.matrix.Invert()
}
