package physics

import (
	"fmt"

	"github.com/phanxgames/orrery"
	"github.com/phanxgames/orrery/collision"
)

// BodyTag is the class tag carried by every Body.
const BodyTag = "body"

// Massive is implemented by collision owners that take part in impulse
// exchange. Owners without it, and static colliders, behave as if their mass
// were infinite.
type Massive interface {
	InvMass() float64
}

// Body is a point mass integrated with semi-implicit Euler. Give it collider
// children to make it collide.
type Body struct {
	orrery.GameObject

	Pos     orrery.Vec2
	PrevPos orrery.Vec2 // position before the last step, for interpolation
	Vel     orrery.Vec2
	// Force is the total force applied during the last step.
	Force orrery.Vec2

	Mass        float64
	Restitution float64
	// Gravity is a constant acceleration.
	Gravity orrery.Vec2
	// AttachSpeed is the normal speed below which a body landing on a static
	// surface sticks to it instead of bouncing. Zero disables attachment.
	AttachSpeed float64

	// OnHit runs after the body's position has been corrected for a contact.
	OnHit func(self, other *collision.Side)

	accum    orrery.Vec2
	attached bool
	surface  orrery.Vec2
}

// NewBody creates a body at pos. A non-positive mass is treated as 1.
func NewBody(name string, pos orrery.Vec2, mass float64) *Body {
	b := &Body{Pos: pos, PrevPos: pos, Mass: mass}
	b.Name = name
	b.ClassTags = []string{BodyTag}
	return b
}

func (b *Body) mass() float64 {
	if b.Mass <= 0 {
		return 1
	}
	return b.Mass
}

// InvMass implements Massive.
func (b *Body) InvMass() float64 { return 1 / b.mass() }

// Kinematics implements collision.Kinematic.
func (b *Body) Kinematics() (pos, vel, force orrery.Vec2) {
	return b.Pos, b.Vel, b.Force
}

// Location implements orrery.Locator.
func (b *Body) Location() orrery.Vec2 { return b.Pos }

// ApplyForce adds f to the force applied during the next step.
func (b *Body) ApplyForce(f orrery.Vec2) { b.accum = b.accum.Add(f) }

// Attached reports whether the body rests on a surface, and its normal.
func (b *Body) Attached() (orrery.Vec2, bool) { return b.surface, b.attached }

// Detach releases the body from its surface.
func (b *Body) Detach() {
	b.attached = false
	b.surface = orrery.Vec2{}
}

// Update implements orrery.Updater.
func (b *Body) Update(t *orrery.Time) error {
	dt := t.Delta
	b.PrevPos = b.Pos

	force := b.accum.Add(b.Gravity.Scale(b.mass()))
	b.accum = orrery.Vec2{}
	if b.attached {
		fn := force.Dot(b.surface)
		switch {
		case fn > 0:
			b.Detach()
		default:
			force = force.Sub(b.surface.Scale(fn))
			if vn := b.Vel.Dot(b.surface); vn < 0 {
				b.Vel = b.Vel.Sub(b.surface.Scale(vn))
			} else if vn > 0 {
				b.Detach()
			}
		}
	}
	b.Force = force

	b.Vel = b.Vel.Add(force.Scale(dt / b.mass()))
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	if !b.Pos.IsFinite() || !b.Vel.IsFinite() {
		return fmt.Errorf("physics: body %q at %v moving %v: %w", b.Name, b.Pos, b.Vel, orrery.ErrNonFinite)
	}
	return nil
}

// OnCollision implements collision.Handler. It applies an impulse along the
// contact normal computed from the pre-collision relative velocity, sharing
// it by inverse mass with the other side.
func (b *Body) OnCollision(self, other *collision.Side) {
	n := self.Normal
	vn := self.RelVelocity.Dot(n)
	if vn >= 0 {
		return
	}
	invA := b.InvMass()
	var invB float64
	staticOther := other.Owner == nil || other.Collider.IsStatic()
	if !staticOther {
		if m, ok := other.Owner.(Massive); ok {
			invB = m.InvMass()
		}
	}
	e := b.Restitution
	if h, ok := other.Owner.(bodyHolder); ok && h.body().Restitution < e {
		e = h.body().Restitution
	}
	j := -(1 + e) * vn / (invA + invB)
	b.Vel = b.Vel.Add(n.Scale(j * invA))

	if staticOther && b.AttachSpeed > 0 && -vn < b.AttachSpeed && b.Force.Dot(n) < 0 {
		b.attached = true
		b.surface = n
		if v := b.Vel.Dot(n); v != 0 {
			b.Vel = b.Vel.Sub(n.Scale(v))
		}
	}
}

// OnCollided implements collision.Handler. It moves the body along the
// normal to the contact position plus its new velocity over the time left in
// the step.
func (b *Body) OnCollided(self, other *collision.Side) {
	target := self.Position.Add(b.Vel.Scale(self.TimeLeft))
	d := target.Sub(b.Pos).Dot(self.Normal)
	b.Pos = b.Pos.Add(self.Normal.Scale(d))
	if b.OnHit != nil {
		b.OnHit(self, other)
	}
}
