package collision

import (
	"math"

	"github.com/phanxgames/orrery"
)

// ColliderTag is the class tag every Collider carries. The System finds its
// colliders through it.
const ColliderTag = "collider"

// Kind is the closed set of collider shapes.
type Kind uint8

const (
	KindCircle Kind = iota
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindBox:
		return "box"
	default:
		return "unknown"
	}
}

// Containment is the result of classifying a collider against a region.
type Containment uint8

const (
	Outside Containment = iota
	Overlapping
	Inside
)

func (c Containment) String() string {
	switch c {
	case Outside:
		return "outside"
	case Overlapping:
		return "overlapping"
	case Inside:
		return "inside"
	default:
		return "unknown"
	}
}

// Kinematic is implemented by objects that own colliders. A Collider whose
// parent implements it mirrors the parent's state before every pass.
type Kinematic interface {
	Kinematics() (pos, vel, force orrery.Vec2)
}

// Handler receives collision events. Both methods get the receiver's half of
// the result as self. OnCollision runs for every contact of the pass before
// any OnCollided runs.
type Handler interface {
	OnCollision(self, other *Side)
	OnCollided(self, other *Side)
}

// Collider is a collision shape living in the scene graph, usually as a child
// of the entity it belongs to. Its owner is its parent, looked up by ID.
//
// A circle is centered on Position. A box spans Position+Min to Position+Max.
type Collider struct {
	orrery.GameObject

	Kind   Kind
	Radius float64
	Min    orrery.Vec2
	Max    orrery.Vec2

	// Static colliders never mirror an owner and never forward events.
	// Colliders whose parent is not Kinematic are static too.
	Static bool

	// Position, Velocity and Force are mirrored from the owner each pass.
	// Set them directly on static colliders.
	Position orrery.Vec2
	Velocity orrery.Vec2
	Force    orrery.Vec2

	// DebugColor is used for the outline in debug mode.
	DebugColor orrery.Color

	owner    orrery.ID
	hasOwner bool
}

// NewCircle creates a circle collider.
func NewCircle(name string, radius float64) *Collider {
	c := &Collider{Kind: KindCircle, Radius: radius}
	c.init(name)
	return c
}

// NewBox creates a box collider spanning min to max relative to its position.
func NewBox(name string, min, max orrery.Vec2) *Collider {
	c := &Collider{Kind: KindBox, Min: min, Max: max}
	c.init(name)
	return c
}

func (c *Collider) init(name string) {
	c.Name = name
	c.ClassTags = []string{ColliderTag}
	c.DebugColor = orrery.Color{R: 0.2, G: 1, B: 0.2, A: 1}
}

// Owner returns the ID of the object this collider mirrors, as of the last
// pass.
func (c *Collider) Owner() (orrery.ID, bool) { return c.owner, c.hasOwner }

// IsStatic reports whether the collider had no owner during the last pass.
func (c *Collider) IsStatic() bool { return c.Static || !c.hasOwner }

// Bounds returns the world-space bounding rectangle.
func (c *Collider) Bounds() orrery.Rect {
	switch c.Kind {
	case KindCircle:
		return orrery.Rect{
			X:      c.Position.X - c.Radius,
			Y:      c.Position.Y - c.Radius,
			Width:  2 * c.Radius,
			Height: 2 * c.Radius,
		}
	default:
		return orrery.RectFromMinMax(c.Position.Add(c.Min), c.Position.Add(c.Max))
	}
}

// Classify reports whether the collider lies outside r, straddles its
// boundary, or fits entirely inside it.
func (c *Collider) Classify(r orrery.Rect) Containment {
	b := c.Bounds()
	if !r.Intersects(b) {
		return Outside
	}
	if r.ContainsRect(b) {
		return Inside
	}
	if c.Kind == KindCircle {
		// The bounds overlap but the circle itself may miss a corner.
		cx := math.Max(r.X, math.Min(c.Position.X, r.X+r.Width))
		cy := math.Max(r.Y, math.Min(c.Position.Y, r.Y+r.Height))
		dx, dy := c.Position.X-cx, c.Position.Y-cy
		if dx*dx+dy*dy > c.Radius*c.Radius {
			return Outside
		}
	}
	return Overlapping
}

// DebugDraw outlines the shape when the camera exposes a Canvas.
func (c *Collider) DebugDraw(cam orrery.Camera, _ *orrery.Time) {
	cv, ok := cam.(orrery.Canvas)
	if !ok {
		return
	}
	switch c.Kind {
	case KindCircle:
		cv.StrokeCircle(c.Position, c.Radius, 1, c.DebugColor)
	default:
		cv.StrokeRect(c.Bounds(), 1, c.DebugColor)
	}
}

// mirror refreshes the collider from its owner, if it has one.
func (c *Collider) mirror(w *orrery.World) {
	c.owner, c.hasOwner = 0, false
	if c.Static {
		return
	}
	pid, ok := w.Parent(c.ID())
	if !ok || pid == orrery.RootID {
		return
	}
	parent, ok := w.Get(pid)
	if !ok {
		return
	}
	k, ok := parent.(Kinematic)
	if !ok {
		return
	}
	c.Position, c.Velocity, c.Force = k.Kinematics()
	c.owner, c.hasOwner = pid, true
}
