package collision

import (
	"slices"

	"go.uber.org/zap"

	"github.com/phanxgames/orrery"
)

// Contact is one entry in a collider's per-pass collision list.
type Contact struct {
	Self  Side
	Other Side
}

// Stats describes the last collision pass.
type Stats struct {
	Colliders  int
	Candidates int
	Contacts   int
	Nodes      int
}

// System is the collision pass. Add it to the World after the entities it
// serves so it runs once they have integrated. Each Update it mirrors owned
// colliders, rebuilds the quadtree, runs the narrow phase on every candidate
// pair, and delivers the contacts in two passes: OnCollision for every
// contact, then OnCollided for every contact.
type System struct {
	orrery.GameObject

	world     *orrery.World
	tree      *Quadtree
	bounds    orrery.Rect
	log       *zap.Logger
	colliders []*Collider
	order     []*Collider
	contacts  map[*Collider][]Contact
	stats     Stats
	err       error

	// NodeColor is the debug outline color of quadtree nodes.
	NodeColor orrery.Color
}

// NewSystem creates a collision pass over w's colliders. An empty
// cfg.Bounds fits the root region to the colliders every pass.
func NewSystem(w *orrery.World, cfg orrery.CollisionConfig, log *zap.Logger) *System {
	if log == nil {
		log = w.Logger()
	}
	s := &System{
		world:     w,
		tree:      NewQuadtree(cfg.Bounds, cfg.Capacity, cfg.MaxDepth),
		bounds:    cfg.Bounds,
		log:       log.Named("collision"),
		contacts:  make(map[*Collider][]Contact),
		NodeColor: orrery.Color{R: 0.3, G: 0.3, B: 1, A: 0.6},
	}
	s.Name = "collision"
	return s
}

// Stats returns the counts from the last pass.
func (s *System) Stats() Stats { return s.stats }

// Tree returns the quadtree built by the last pass.
func (s *System) Tree() *Quadtree { return s.tree }

// Contacts returns c's contacts from the last pass, earliest impact first.
func (s *System) Contacts(c *Collider) []Contact { return s.contacts[c] }

// Update implements orrery.Updater.
func (s *System) Update(t *orrery.Time) error {
	return s.Step(t.Delta)
}

// Step runs one collision pass for a step of dt seconds.
func (s *System) Step(dt float64) error {
	s.reset()
	s.gather()
	if len(s.colliders) == 0 {
		return nil
	}

	bounds := s.bounds
	if bounds.IsEmpty() {
		bounds = s.colliders[0].Bounds()
		for _, c := range s.colliders[1:] {
			bounds = bounds.Union(c.Bounds())
		}
	}
	s.tree.Reset(bounds)
	for _, c := range s.colliders {
		s.tree.Insert(c)
	}
	s.stats.Nodes = s.tree.NodeCount()

	s.tree.Test(s.testPair(dt))
	if s.err != nil {
		s.log.Error("narrow phase failed", zap.Error(s.err))
		return s.err
	}

	for _, c := range s.order {
		list := s.contacts[c]
		slices.SortStableFunc(list, func(a, b Contact) int {
			switch {
			case a.Self.TimeLeft > b.Self.TimeLeft:
				return -1
			case a.Self.TimeLeft < b.Self.TimeLeft:
				return 1
			default:
				return 0
			}
		})
	}

	s.deliver(func(h Handler, c *Contact) { h.OnCollision(&c.Self, &c.Other) })
	s.deliver(func(h Handler, c *Contact) { h.OnCollided(&c.Self, &c.Other) })
	return nil
}

func (s *System) reset() {
	clear(s.contacts)
	s.order = s.order[:0]
	s.colliders = s.colliders[:0]
	s.err = nil
	s.stats = Stats{}
}

// gather mirrors every live collider from its owner.
func (s *System) gather() {
	for _, obj := range s.world.Filter(ColliderTag) {
		c, ok := obj.(*Collider)
		if !ok {
			continue
		}
		c.mirror(s.world)
		s.colliders = append(s.colliders, c)
	}
	s.stats.Colliders = len(s.colliders)
}

func (s *System) testPair(dt float64) func(a, b *Collider) {
	return func(a, b *Collider) {
		if s.err != nil {
			return
		}
		if a.IsStatic() && b.IsStatic() {
			return
		}
		if a.hasOwner && b.hasOwner && a.owner == b.owner {
			return
		}
		// No bounds prefilter: a box contains circles, so a circle that
		// left it entirely is still a contact.
		s.stats.Candidates++
		results, err := Test(a, b, dt)
		if err != nil {
			s.err = err
			return
		}
		for _, r := range results {
			s.fillOwner(&r.A)
			s.fillOwner(&r.B)
			s.record(a, Contact{Self: r.A, Other: r.B})
			s.record(b, Contact{Self: r.B, Other: r.A})
			s.stats.Contacts++
		}
	}
}

func (s *System) fillOwner(side *Side) {
	id, ok := side.Collider.Owner()
	if !ok {
		return
	}
	side.OwnerID = id
	side.Owner, _ = s.world.Get(id)
}

func (s *System) record(c *Collider, contact Contact) {
	list, seen := s.contacts[c]
	if !seen {
		s.order = append(s.order, c)
	}
	s.contacts[c] = append(list, contact)
}

// deliver runs fn for every contact of every owned collider, in the order
// the colliders first appeared in the pass.
func (s *System) deliver(fn func(h Handler, c *Contact)) {
	for _, c := range s.order {
		if c.IsStatic() {
			continue
		}
		id, _ := c.Owner()
		owner, ok := s.world.Get(id)
		if !ok {
			continue
		}
		h, ok := owner.(Handler)
		if !ok {
			continue
		}
		list := s.contacts[c]
		for i := range list {
			fn(h, &list[i])
		}
	}
}

// DebugDraw outlines the quadtree nodes of the last pass.
func (s *System) DebugDraw(cam orrery.Camera, _ *orrery.Time) {
	cv, ok := cam.(orrery.Canvas)
	if !ok || s.stats.Colliders == 0 {
		return
	}
	s.tree.EachNode(func(bounds orrery.Rect, _ int) {
		cv.StrokeRect(bounds, 1, s.NodeColor)
	})
}
