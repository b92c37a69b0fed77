// Package ebitencam renders an orrery World with Ebitengine: a
// double-buffered Camera that is also an orrery.Canvas, a frame host that
// drives an orrery.Loop from ebiten's Update, a keyboard input controller and
// an FPS overlay.
package ebitencam

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/orrery"
)

// Camera draws into an offscreen back buffer and swaps it to the front on
// Present, so a frame is never shown half drawn. Add it to the World; the
// draw pass finds it through orrery.CameraTag.
type Camera struct {
	orrery.GameObject
	orrery.View

	// Background fills the back buffer on Clear.
	Background orrery.Color
	// Disabled cameras are skipped by the draw pass.
	Disabled bool
	// Antialias smooths shape edges.
	Antialias bool

	back  *ebiten.Image
	front *ebiten.Image
}

// New creates a camera rendering into viewport, in screen pixels.
func New(name string, viewport orrery.Rect) *Camera {
	c := &Camera{
		View:       orrery.NewView(viewport),
		Background: orrery.Color{A: 1},
		Antialias:  true,
	}
	c.Name = name
	c.ClassTags = []string{orrery.CameraTag}
	return c
}

// IsDisabled implements orrery.Disabler.
func (c *Camera) IsDisabled() bool { return c.Disabled }

// Clear implements orrery.Camera. Buffers are (re)allocated when the
// viewport size changes.
func (c *Camera) Clear() {
	w, h := bufferSize(c.Viewport)
	if c.back == nil || c.back.Bounds().Dx() != w || c.back.Bounds().Dy() != h {
		if c.back != nil {
			c.back.Deallocate()
		}
		if c.front != nil {
			c.front.Deallocate()
		}
		c.back = ebiten.NewImage(w, h)
		c.front = ebiten.NewImage(w, h)
	}
	c.back.Fill(c.Background.RGBA())
}

func bufferSize(vp orrery.Rect) (int, int) {
	return max(1, int(math.Ceil(vp.Width))), max(1, int(math.Ceil(vp.Height)))
}

// DrawObject implements orrery.Camera. The object's local transform, if any,
// is composed onto the current state before it draws.
func (c *Camera) DrawObject(obj orrery.Object, t *orrery.Time) {
	c.Compose(obj, t)
	if d, ok := obj.(orrery.Drawer); ok {
		d.Draw(c, t)
	}
}

// DebugDrawObject implements orrery.Camera.
func (c *Camera) DebugDrawObject(obj orrery.Object, t *orrery.Time) {
	if d, ok := obj.(orrery.DebugDrawer); ok {
		d.DebugDraw(c, t)
	}
}

// Present implements orrery.Presenter.
func (c *Camera) Present() {
	c.back, c.front = c.front, c.back
}

// Blit draws the last presented frame onto screen at the viewport origin.
func (c *Camera) Blit(screen *ebiten.Image) {
	if c.front == nil || c.Disabled {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(c.Viewport.X, c.Viewport.Y)
	screen.DrawImage(c.front, op)
}

// toBuffer maps p from the current object space into back buffer pixels.
func (c *Camera) toBuffer(p orrery.Vec2) (float32, float32) {
	s := c.Current().Apply(p)
	return float32(s.X - c.Viewport.X), float32(s.Y - c.Viewport.Y)
}

func (c *Camera) scaled(v float64) float32 {
	return float32(v * c.Current().ScaleFactor())
}

// FillCircle implements orrery.Canvas.
func (c *Camera) FillCircle(center orrery.Vec2, radius float64, col orrery.Color) {
	x, y := c.toBuffer(center)
	vector.DrawFilledCircle(c.back, x, y, c.scaled(radius), col.RGBA(), c.Antialias)
}

// StrokeCircle implements orrery.Canvas.
func (c *Camera) StrokeCircle(center orrery.Vec2, radius, width float64, col orrery.Color) {
	x, y := c.toBuffer(center)
	vector.StrokeCircle(c.back, x, y, c.scaled(radius), float32(width), col.RGBA(), c.Antialias)
}

// FillRect implements orrery.Canvas. Under a rotated view the rectangle's
// screen-space bounding box is filled.
func (c *Camera) FillRect(r orrery.Rect, col orrery.Color) {
	pts := c.corners(r)
	minX, minY := pts[0][0], pts[0][1]
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}
	vector.DrawFilledRect(c.back, minX, minY, maxX-minX, maxY-minY, col.RGBA(), c.Antialias)
}

// StrokeRect implements orrery.Canvas.
func (c *Camera) StrokeRect(r orrery.Rect, width float64, col orrery.Color) {
	pts := c.corners(r)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		vector.StrokeLine(c.back, a[0], a[1], b[0], b[1], float32(width), col.RGBA(), c.Antialias)
	}
}

func (c *Camera) corners(r orrery.Rect) [4][2]float32 {
	var out [4][2]float32
	for i, p := range [4]orrery.Vec2{
		r.Min(),
		{X: r.X + r.Width, Y: r.Y},
		r.Max(),
		{X: r.X, Y: r.Y + r.Height},
	} {
		out[i][0], out[i][1] = c.toBuffer(p)
	}
	return out
}

// Line implements orrery.Canvas.
func (c *Camera) Line(from, to orrery.Vec2, width float64, col orrery.Color) {
	x0, y0 := c.toBuffer(from)
	x1, y1 := c.toBuffer(to)
	vector.StrokeLine(c.back, x0, y0, x1, y1, float32(width), col.RGBA(), c.Antialias)
}

// Text implements orrery.Canvas with ebiten's debug font.
func (c *Camera) Text(pos orrery.Vec2, s string) {
	x, y := c.toBuffer(pos)
	ebitenutil.DebugPrintAt(c.back, s, int(x), int(y))
}
