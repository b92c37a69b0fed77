package physics

import (
	"math"

	"github.com/phanxgames/orrery"
)

// GravityField applies pairwise Newtonian attraction between every object
// tagged BodyTag that is a *Body or embeds one. Add it before the bodies so
// its forces land in the same step.
type GravityField struct {
	orrery.GameObject

	// G is the gravitational constant in world units.
	G float64
	// Softening is added to squared distances so close passes stay finite.
	Softening float64

	world  *orrery.World
	bodies []*Body
}

// NewGravityField creates a field over w's bodies.
func NewGravityField(w *orrery.World, g, softening float64) *GravityField {
	f := &GravityField{G: g, Softening: softening, world: w}
	f.Name = "gravity"
	return f
}

type bodyHolder interface {
	body() *Body
}

func (b *Body) body() *Body { return b }

// Update implements orrery.Updater.
func (f *GravityField) Update(_ *orrery.Time) error {
	f.bodies = f.bodies[:0]
	for _, obj := range f.world.Filter(BodyTag) {
		if h, ok := obj.(bodyHolder); ok {
			f.bodies = append(f.bodies, h.body())
		}
	}
	soft := f.Softening * f.Softening
	for i := 0; i < len(f.bodies); i++ {
		a := f.bodies[i]
		for j := i + 1; j < len(f.bodies); j++ {
			b := f.bodies[j]
			d := b.Pos.Sub(a.Pos)
			distSq := d.LenSq() + soft
			if distSq == 0 {
				continue
			}
			mag := f.G * a.mass() * b.mass() / distSq
			dir := d.Scale(1 / math.Sqrt(distSq))
			a.ApplyForce(dir.Scale(mag))
			b.ApplyForce(dir.Scale(-mag))
		}
	}
	return nil
}

// Heaviest returns the ID of the heaviest live body, or false if there is
// none.
func (f *GravityField) Heaviest() (orrery.ID, bool) {
	var best *Body
	for _, obj := range f.world.Filter(BodyTag) {
		h, ok := obj.(bodyHolder)
		if !ok {
			continue
		}
		if b := h.body(); best == nil || b.mass() > best.mass() {
			best = b
		}
	}
	if best == nil {
		return 0, false
	}
	return best.ID(), true
}
