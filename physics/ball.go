package physics

import (
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/orrery"
	"github.com/phanxgames/orrery/collision"
)

// flashDuration is how long a ball glows after a hit, in seconds.
const flashDuration = 0.35

// Ball is a Body with a circle collider that draws itself as a filled
// circle and flashes white on every hit.
type Ball struct {
	Body

	Radius float64
	Color  orrery.Color

	collider *collision.Collider
	tint     orrery.Color
	flash    *orrery.TweenGroup
}

// NewBall creates a ball with its collider declared as a nested child, so
// adding the ball adds both.
func NewBall(name string, pos orrery.Vec2, radius, mass float64, c orrery.Color) *Ball {
	b := &Ball{Radius: radius, Color: c, tint: c}
	b.Pos, b.PrevPos, b.Mass = pos, pos, mass
	b.Name = name
	b.ClassTags = []string{BodyTag}
	b.collider = collision.NewCircle(name+"/collider", radius)
	b.Children = []orrery.Object{b.collider}
	b.OnHit = b.hit
	return b
}

// Collider returns the ball's circle collider.
func (b *Ball) Collider() *collision.Collider { return b.collider }

func (b *Ball) hit(_, _ *collision.Side) {
	b.tint = orrery.ColorWhite
	b.flash = orrery.TweenColor(&b.tint, b.Color, flashDuration, ease.OutQuad)
}

// Flashing reports whether the hit flash is still playing.
func (b *Ball) Flashing() bool { return b.flash != nil && !b.flash.Done }

// Draw implements orrery.Drawer.
func (b *Ball) Draw(cam orrery.Camera, t *orrery.Time) {
	if b.flash != nil {
		b.flash.Advance(t)
		if b.flash.Done {
			b.flash = nil
			b.tint = b.Color
		}
	}
	cv, ok := cam.(orrery.Canvas)
	if !ok {
		return
	}
	cv.FillCircle(b.PrevPos.Lerp(b.Pos, t.Interpolation), b.Radius, b.tint)
}

// DebugDraw implements orrery.DebugDrawer with the velocity vector.
func (b *Ball) DebugDraw(cam orrery.Camera, t *orrery.Time) {
	cv, ok := cam.(orrery.Canvas)
	if !ok {
		return
	}
	pos := b.PrevPos.Lerp(b.Pos, t.Interpolation)
	cv.Line(pos, pos.Add(b.Vel.Scale(0.1)), 1, orrery.Color{R: 1, G: 1, A: 1})
}
