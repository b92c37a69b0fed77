package collision

import (
	"errors"
	"math"
	"testing"

	"github.com/phanxgames/orrery"
)

// puck is a minimal Kinematic handler that bounces elastically.
type puck struct {
	orrery.GameObject
	pos, vel, force orrery.Vec2

	events    *[]string
	collision []Side
	collided  []Side
}

func (p *puck) Kinematics() (orrery.Vec2, orrery.Vec2, orrery.Vec2) {
	return p.pos, p.vel, p.force
}

func (p *puck) OnCollision(self, other *Side) {
	p.collision = append(p.collision, *self)
	if p.events != nil {
		*p.events = append(*p.events, "collision:"+p.Name)
	}
	if vn := p.vel.Dot(self.Normal); vn < 0 {
		p.vel = p.vel.Sub(self.Normal.Scale(2 * vn))
	}
}

func (p *puck) OnCollided(self, other *Side) {
	p.collided = append(p.collided, *self)
	if p.events != nil {
		*p.events = append(*p.events, "collided:"+p.Name)
	}
	p.pos = self.Position.Add(p.vel.Scale(self.TimeLeft))
}

func (p *puck) step(dt float64) { p.pos = p.pos.Add(p.vel.Scale(dt)) }

func newPuck(w *orrery.World, name string, pos, vel orrery.Vec2, radius float64) (*puck, *Collider) {
	p := &puck{pos: pos, vel: vel}
	p.Name = name
	c := NewCircle(name+"-collider", radius)
	p.Children = []orrery.Object{c}
	if _, err := w.Add(p); err != nil {
		panic(err)
	}
	return p, c
}

// wall is static: it handles events but has no kinematics.
type wall struct {
	orrery.GameObject
	calls int
}

func (w *wall) OnCollision(self, other *Side) { w.calls++ }
func (w *wall) OnCollided(self, other *Side) { w.calls++ }

func newSystem(w *orrery.World) *System {
	s := NewSystem(w, orrery.CollisionConfig{Capacity: 4, MaxDepth: 8}, nil)
	if _, err := w.Add(s); err != nil {
		panic(err)
	}
	return s
}

func TestSystemHeadOnScenario(t *testing.T) {
	w := orrery.NewWorld(nil)
	left, lc := newPuck(w, "left", orrery.Vec2{X: -5}, orrery.Vec2{X: 1}, 1)
	right, _ := newPuck(w, "right", orrery.Vec2{X: 5}, orrery.Vec2{X: -1}, 1)
	sys := newSystem(w)
	w.Commit()

	const dt = 0.01
	contacts := 0
	for tick := 0; tick < 1000; tick++ {
		left.step(dt)
		right.step(dt)
		if err := sys.Step(dt); err != nil {
			t.Fatal(err)
		}
		contacts += sys.Stats().Contacts
	}

	if contacts != 1 {
		t.Fatalf("contacts = %d, want 1", contacts)
	}
	if len(left.collision) != 1 || len(right.collision) != 1 {
		t.Fatalf("collision calls = %d/%d, want 1/1", len(left.collision), len(right.collision))
	}
	ls, rs := left.collision[0], right.collision[0]
	if !approxEqual(math.Abs(ls.Normal.X), 1, 1e-9) || !approxEqual(ls.Normal.Y, 0, 1e-9) {
		t.Errorf("left normal = %v, want (±1, 0)", ls.Normal)
	}
	if ls.Normal.X != -rs.Normal.X {
		t.Errorf("normals not opposite: %v vs %v", ls.Normal, rs.Normal)
	}
	for _, s := range []Side{ls, rs} {
		if s.TimeLeft < 0 || s.TimeLeft > dt+1e-12 {
			t.Errorf("TimeLeft = %v, want within one step", s.TimeLeft)
		}
	}
	if ls.Collider != lc || ls.Owner != orrery.Object(left) || ls.OwnerID != left.ID() {
		t.Error("left side does not reference its collider and owner")
	}
	if left.vel.X >= 0 || right.vel.X <= 0 {
		t.Errorf("pucks did not bounce: %v %v", left.vel, right.vel)
	}
}

func TestSystemTwoPassOrdering(t *testing.T) {
	w := orrery.NewWorld(nil)
	var events []string
	a, _ := newPuck(w, "a", orrery.Vec2{X: 0}, orrery.Vec2{X: 1}, 1)
	b, _ := newPuck(w, "b", orrery.Vec2{X: 1.5}, orrery.Vec2{X: -1}, 1)
	c, _ := newPuck(w, "c", orrery.Vec2{X: 3}, orrery.Vec2{X: -1}, 1)
	for _, p := range []*puck{a, b, c} {
		p.events = &events
	}
	sys := newSystem(w)
	w.Commit()

	if err := sys.Step(0.01); err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 {
		t.Fatal("no events delivered")
	}
	lastCollision, firstCollided := -1, len(events)
	for i, e := range events {
		if e[:9] == "collision" {
			lastCollision = i
		} else if i < firstCollided {
			firstCollided = i
		}
	}
	if lastCollision > firstCollided {
		t.Errorf("OnCollided ran before every OnCollision finished: %v", events)
	}
	// b touches both neighbours.
	if len(b.collision) != 2 || len(b.collided) != 2 {
		t.Errorf("b events = %d/%d, want 2/2", len(b.collision), len(b.collided))
	}
}

func TestSystemResponseSeesPreCollisionState(t *testing.T) {
	w := orrery.NewWorld(nil)
	a, _ := newPuck(w, "a", orrery.Vec2{X: 0}, orrery.Vec2{X: 1}, 1)
	b, _ := newPuck(w, "b", orrery.Vec2{X: 1.5}, orrery.Vec2{X: -1}, 1)
	sys := newSystem(w)
	w.Commit()

	if err := sys.Step(0.01); err != nil {
		t.Fatal(err)
	}
	// Both snapshots come from before either puck responded.
	assertVec(t, "a RelVelocity", a.collision[0].RelVelocity, orrery.Vec2{X: 2})
	assertVec(t, "b RelVelocity", b.collision[0].RelVelocity, orrery.Vec2{X: -2})
}

func TestSystemStaticCollidersDoNotPropagate(t *testing.T) {
	w := orrery.NewWorld(nil)
	p, _ := newPuck(w, "p", orrery.Vec2{X: 0.5, Y: 5}, orrery.Vec2{X: -3}, 1)
	owner := &wall{}
	owner.Name = "walls"
	box := NewBox("bounds", orrery.Vec2{}, orrery.Vec2{X: 10, Y: 10})
	owner.Children = []orrery.Object{box}
	if _, err := w.Add(owner); err != nil {
		t.Fatal(err)
	}
	sys := newSystem(w)
	w.Commit()

	if err := sys.Step(0.01); err != nil {
		t.Fatal(err)
	}
	if !box.IsStatic() {
		t.Error("box under a non-kinematic parent should be static")
	}
	if owner.calls != 0 {
		t.Errorf("static owner received %d calls", owner.calls)
	}
	if len(p.collision) != 1 {
		t.Fatalf("puck collisions = %d, want 1", len(p.collision))
	}
	if other := sys.Contacts(box); len(other) != 1 || other[0].Self.Owner != nil {
		t.Errorf("box contacts = %v", other)
	}
	assertVec(t, "puck normal", p.collision[0].Normal, orrery.Vec2{X: 1})
}

func TestSystemCatchesCircleThatLeftTheBox(t *testing.T) {
	w := orrery.NewWorld(nil)
	p, _ := newPuck(w, "fast", orrery.Vec2{X: 112, Y: 50}, orrery.Vec2{X: 1500}, 5)
	owner := &wall{}
	owner.Name = "walls"
	box := NewBox("bounds", orrery.Vec2{}, orrery.Vec2{X: 100, Y: 100})
	owner.Children = []orrery.Object{box}
	if _, err := w.Add(owner); err != nil {
		t.Fatal(err)
	}
	sys := newSystem(w)
	w.Commit()

	if err := sys.Step(0.01); err != nil {
		t.Fatal(err)
	}
	if st := sys.Stats(); st.Contacts != 1 {
		t.Fatalf("contacts = %d, want 1 for a circle past the wall", st.Contacts)
	}
	if len(p.collision) != 1 {
		t.Fatalf("puck collisions = %d, want 1", len(p.collision))
	}
	assertVec(t, "normal", p.collision[0].Normal, orrery.Vec2{X: -1})
	if p.pos.X > 95 || p.vel.X >= 0 {
		t.Errorf("puck at %v moving %v, want back inside and heading in", p.pos, p.vel)
	}
}

func TestSystemContactsOrderedEarliestFirst(t *testing.T) {
	w := orrery.NewWorld(nil)
	_, pc := newPuck(w, "p", orrery.Vec2{X: 9.5, Y: 9.8}, orrery.Vec2{X: 5, Y: 4}, 1)
	walls := &orrery.GameObject{Name: "walls"}
	walls.Children = []orrery.Object{NewBox("bounds", orrery.Vec2{}, orrery.Vec2{X: 10, Y: 10})}
	if _, err := w.Add(walls); err != nil {
		t.Fatal(err)
	}
	sys := newSystem(w)
	w.Commit()

	if err := sys.Step(1); err != nil {
		t.Fatal(err)
	}
	list := sys.Contacts(pc)
	if len(list) != 2 {
		t.Fatalf("contacts = %d, want 2", len(list))
	}
	if list[0].Self.TimeLeft < list[1].Self.TimeLeft {
		t.Errorf("contacts not ordered by TimeLeft: %v, %v", list[0].Self.TimeLeft, list[1].Self.TimeLeft)
	}
	assertVec(t, "first normal", list[0].Self.Normal, orrery.Vec2{Y: -1})
}

func TestSystemSkipsColliderPairsOfOneOwner(t *testing.T) {
	w := orrery.NewWorld(nil)
	p := &puck{}
	p.Name = "twin"
	p.Children = []orrery.Object{NewCircle("one", 1), NewCircle("two", 1)}
	if _, err := w.Add(p); err != nil {
		t.Fatal(err)
	}
	sys := newSystem(w)
	w.Commit()

	if err := sys.Step(0.01); err != nil {
		t.Fatal(err)
	}
	if st := sys.Stats(); st.Colliders != 2 || st.Candidates != 0 || st.Contacts != 0 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestSystemNonFiniteStopsPass(t *testing.T) {
	Register(kindBroken, KindCircle, func(x, y *Collider, _ float64) []Result {
		return []Result{{A: Side{Collider: x, TimeLeft: math.NaN()}, B: Side{Collider: y}}}
	})
	defer delete(dispatch, kindBroken)

	w := orrery.NewWorld(nil)
	a, ac := newPuck(w, "a", orrery.Vec2{X: 0}, orrery.Vec2{X: 1}, 1)
	newPuck(w, "b", orrery.Vec2{X: 1}, orrery.Vec2{X: -1}, 1)
	sys := newSystem(w)
	w.Commit()
	ac.Kind = kindBroken
	ac.Max = orrery.Vec2{X: 1, Y: 1}

	err := sys.Step(0.01)
	if !errors.Is(err, orrery.ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
	if len(a.collision) != 0 {
		t.Error("events delivered after a failed pass")
	}
}

func TestSystemRunsInsideWorldUpdate(t *testing.T) {
	w := orrery.NewWorld(nil)
	left, _ := newPuck(w, "left", orrery.Vec2{X: -1.5}, orrery.Vec2{X: 1}, 1)
	newPuck(w, "right", orrery.Vec2{X: 0.25}, orrery.Vec2{X: -1}, 1)
	newSystem(w)
	w.Commit()

	if err := w.Update(&orrery.Time{Delta: 0.01}); err != nil {
		t.Fatal(err)
	}
	if len(left.collision) != 1 {
		t.Errorf("collisions via World.Update = %d, want 1", len(left.collision))
	}
}

type recordingCanvas struct {
	orrery.GameObject
	rects, circles int
}

func (r *recordingCanvas) Clear() {}
func (r *recordingCanvas) CalculateView(*orrery.Time) {}
func (r *recordingCanvas) SaveState() {}
func (r *recordingCanvas) RestoreState() {}
func (r *recordingCanvas) DrawObject(orrery.Object, *orrery.Time) {}
func (r *recordingCanvas) DebugDrawObject(orrery.Object, *orrery.Time) {}
func (r *recordingCanvas) FillCircle(orrery.Vec2, float64, orrery.Color) {}
func (r *recordingCanvas) StrokeCircle(orrery.Vec2, float64, float64, orrery.Color) {
	r.circles++
}
func (r *recordingCanvas) FillRect(orrery.Rect, orrery.Color) {}
func (r *recordingCanvas) StrokeRect(orrery.Rect, float64, orrery.Color) {
	r.rects++
}
func (r *recordingCanvas) Line(orrery.Vec2, orrery.Vec2, float64, orrery.Color) {}
func (r *recordingCanvas) Text(orrery.Vec2, string) {}

func TestDebugDraw(t *testing.T) {
	w := orrery.NewWorld(nil)
	_, c := newPuck(w, "p", orrery.Vec2{X: 1, Y: 1}, orrery.Vec2{}, 1)
	sys := newSystem(w)
	w.Commit()
	if err := sys.Step(0.01); err != nil {
		t.Fatal(err)
	}

	cv := &recordingCanvas{}
	sys.DebugDraw(cv, &orrery.Time{})
	if cv.rects != sys.Tree().NodeCount() {
		t.Errorf("node outlines = %d, want %d", cv.rects, sys.Tree().NodeCount())
	}
	c.DebugDraw(cv, &orrery.Time{})
	if cv.circles != 1 {
		t.Errorf("circle outlines = %d, want 1", cv.circles)
	}
}
