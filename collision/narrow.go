package collision

import (
	"fmt"
	"math"

	"github.com/phanxgames/orrery"
)

// Side is one collider's half of a collision result.
type Side struct {
	Collider *Collider

	// Owner is the object the collider mirrors. Nil for static colliders.
	Owner   orrery.Object
	OwnerID orrery.ID

	// Position is where this side is judged to have first touched the
	// other, already pushed apart so the shapes no longer overlap.
	Position orrery.Vec2
	// Normal is a unit vector pointing from the other side toward this one.
	Normal orrery.Vec2
	// RelVelocity is this side's velocity relative to the other, captured
	// before any response runs.
	RelVelocity orrery.Vec2
	// TimeLeft is the time in seconds remaining in the step after the
	// moment of contact. Re-integrating Position over it catches the
	// object up with the rest of the step.
	TimeLeft float64
	// Depth is the penetration that was resolved.
	Depth float64
	// Radius is the collider radius for circles, zero otherwise.
	Radius float64
}

// Result is a detected contact between two colliders.
type Result struct {
	A, B Side
}

func (r Result) swap() Result { return Result{A: r.B, B: r.A} }

// TestFunc is a narrow-phase test. dt is the step length in seconds and
// bounds how far back in time a contact can be placed.
type TestFunc func(a, b *Collider, dt float64) []Result

// dispatch maps a collider kind to the tests it knows, keyed by the other
// collider's kind. Pairs without a direct entry use the mirrored entry.
var dispatch = map[Kind]map[Kind]TestFunc{
	KindCircle: {
		KindCircle: circleCircle,
		KindBox:    circleBox,
	},
	KindBox: {
		KindBox: boxBox,
	},
}

// Register installs the test for the a/b kind pair, replacing any existing
// one. The b/a pair is served by mirroring unless registered separately.
// Register is not safe to call while a collision pass runs.
func Register(a, b Kind, fn TestFunc) {
	m, ok := dispatch[a]
	if !ok {
		m = make(map[Kind]TestFunc)
		dispatch[a] = m
	}
	m[b] = fn
}

// Test runs the narrow phase for one pair. Side A of every result belongs
// to a. A result with a non-finite time or position is reported as an error
// wrapping orrery.ErrNonFinite.
func Test(a, b *Collider, dt float64) ([]Result, error) {
	var results []Result
	if fn, ok := dispatch[a.Kind][b.Kind]; ok {
		results = fn(a, b, dt)
	} else if fn, ok := dispatch[b.Kind][a.Kind]; ok {
		results = fn(b, a, dt)
		for i := range results {
			results[i] = results[i].swap()
		}
	} else {
		return nil, nil
	}
	for i := range results {
		if err := checkSide(&results[i].A, a.Kind, b.Kind); err != nil {
			return nil, err
		}
		if err := checkSide(&results[i].B, b.Kind, a.Kind); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func checkSide(s *Side, self, other Kind) error {
	if !orrery.IsFinite(s.TimeLeft) || s.TimeLeft < 0 {
		return fmt.Errorf("collision: %s/%s time left %v: %w", self, other, s.TimeLeft, orrery.ErrNonFinite)
	}
	if !s.Position.IsFinite() || !s.Normal.IsFinite() {
		return fmt.Errorf("collision: %s/%s contact %v normal %v: %w", self, other, s.Position, s.Normal, orrery.ErrNonFinite)
	}
	return nil
}

// circleCircle finds how long ago two overlapping, approaching circles first
// touched, rewinds both to that moment, and pushes them apart to exactly the
// sum of their radii.
func circleCircle(a, b *Collider, dt float64) []Result {
	sum := a.Radius + b.Radius
	d := a.Position.Sub(b.Position)
	distSq := d.LenSq()
	if distSq >= sum*sum {
		return nil
	}
	v := a.Velocity.Sub(b.Velocity)
	dv := d.Dot(v)
	vv := v.LenSq()
	if vv != 0 && dv >= 0 {
		// Overlapping but already separating.
		return nil
	}

	// Solve |d - v*t| = sum for the positive root. c < 0 so the
	// discriminant is positive whenever vv > 0.
	var t float64
	if vv != 0 {
		c := distSq - sum*sum
		t = (dv + math.Sqrt(dv*dv-vv*c)) / vv
		if dt > 0 && t > dt {
			t = dt
		}
	}
	pa := a.Position.Sub(a.Velocity.Scale(t))
	pb := b.Position.Sub(b.Velocity.Scale(t))

	n := pa.Sub(pb)
	dist := n.Len()
	switch {
	case dist > 0:
		n = n.Scale(1 / dist)
	case vv > 0:
		n = v.Neg().Normalize()
	default:
		n = orrery.Vec2{X: 1}
	}

	// Push apart along the normal. The side pressing harder into the
	// other takes the larger share.
	overlap := sum - dist
	share := 0.5
	fa := math.Max(0, -a.Force.Dot(n))
	fb := math.Max(0, b.Force.Dot(n))
	if fa+fb > 0 {
		share = fa / (fa + fb)
	}
	if overlap > 0 {
		pa = pa.Add(n.Scale(overlap * share))
		pb = pb.Sub(n.Scale(overlap * (1 - share)))
	}

	return []Result{{
		A: Side{
			Collider:    a,
			Position:    pa,
			Normal:      n,
			RelVelocity: v,
			TimeLeft:    t,
			Depth:       sum - math.Sqrt(distSq),
			Radius:      a.Radius,
		},
		B: Side{
			Collider:    b,
			Position:    pb,
			Normal:      n.Neg(),
			RelVelocity: v.Neg(),
			TimeLeft:    t,
			Depth:       sum - math.Sqrt(distSq),
			Radius:      b.Radius,
		},
	}}
}

// circleBox treats the box as a container and reports one result for every
// wall the circle has crossed. A circle in a corner crosses two. On an axis
// where the box is narrower than the circle, the shrunk box collapses to the
// centre line, so at most one of the two opposing walls reports.
func circleBox(c, box *Collider, dt float64) []Result {
	r := c.Radius
	lo := box.Position.Add(box.Min).Add(orrery.Vec2{X: r, Y: r})
	hi := box.Position.Add(box.Max).Sub(orrery.Vec2{X: r, Y: r})
	if lo.X > hi.X {
		lo.X = (lo.X + hi.X) / 2
		hi.X = lo.X
	}
	if lo.Y > hi.Y {
		lo.Y = (lo.Y + hi.Y) / 2
		hi.Y = lo.Y
	}
	p := c.Position
	if p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y {
		return nil
	}
	v := c.Velocity.Sub(box.Velocity)

	var out []Result
	if p.X < lo.X {
		out = append(out, wallContact(c, box, orrery.Vec2{X: 1}, lo.X, lo.X-p.X, -v.X, v, dt))
	}
	if p.X > hi.X {
		out = append(out, wallContact(c, box, orrery.Vec2{X: -1}, hi.X, p.X-hi.X, v.X, v, dt))
	}
	if p.Y < lo.Y {
		out = append(out, wallContact(c, box, orrery.Vec2{Y: 1}, lo.Y, lo.Y-p.Y, -v.Y, v, dt))
	}
	if p.Y > hi.Y {
		out = append(out, wallContact(c, box, orrery.Vec2{Y: -1}, hi.Y, p.Y-hi.Y, v.Y, v, dt))
	}
	return out
}

// wallContact builds the result for a single crossed wall. n points into the
// box, plane is the wall coordinate shrunk by the radius, and speed is the
// circle's speed out through the wall.
func wallContact(c, box *Collider, n orrery.Vec2, plane, depth, speed float64, v orrery.Vec2, dt float64) Result {
	var t float64
	if speed > 0 {
		t = depth / speed
		if dt > 0 && t > dt {
			t = dt
		}
	}
	pos := c.Position.Sub(v.Scale(t))
	if n.X != 0 {
		pos.X = plane
	} else {
		pos.Y = plane
	}
	return Result{
		A: Side{
			Collider:    c,
			Position:    pos,
			Normal:      n,
			RelVelocity: v,
			TimeLeft:    t,
			Depth:       depth,
			Radius:      c.Radius,
		},
		B: Side{
			Collider:    box,
			Position:    pos.Sub(n.Scale(c.Radius)),
			Normal:      n.Neg(),
			RelVelocity: v.Neg(),
			TimeLeft:    t,
			Depth:       depth,
		},
	}
}

// boxBox is a static overlap test. It ignores velocity and is only reliable
// when at least one box does not move.
func boxBox(a, b *Collider, _ float64) []Result {
	ra, rb := a.Bounds(), b.Bounds()
	amin, amax := ra.Min(), ra.Max()
	bmin, bmax := rb.Min(), rb.Max()
	ox := math.Min(amax.X, bmax.X) - math.Max(amin.X, bmin.X)
	oy := math.Min(amax.Y, bmax.Y) - math.Max(amin.Y, bmin.Y)
	if ox <= 0 || oy <= 0 {
		return nil
	}
	ca, cb := ra.Center(), rb.Center()
	var n orrery.Vec2
	depth := ox
	if ox < oy {
		n.X = sign(ca.X - cb.X)
	} else {
		n.Y = sign(ca.Y - cb.Y)
		depth = oy
	}
	v := a.Velocity.Sub(b.Velocity)
	return []Result{{
		A: Side{Collider: a, Position: a.Position, Normal: n, RelVelocity: v, Depth: depth},
		B: Side{Collider: b, Position: b.Position, Normal: n.Neg(), RelVelocity: v.Neg(), Depth: depth},
	}}
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
