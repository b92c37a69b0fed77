package physics

import (
	"github.com/phanxgames/orrery"
	"github.com/phanxgames/orrery/collision"
)

// Container is a static box that keeps circles inside it.
type Container struct {
	orrery.GameObject

	Bounds orrery.Rect
	Color  orrery.Color
	Width  float64
}

// NewContainer creates a container over bounds with its box collider as a
// nested child.
func NewContainer(name string, bounds orrery.Rect) *Container {
	c := &Container{Bounds: bounds, Color: orrery.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}, Width: 2}
	c.Name = name
	box := collision.NewBox(name+"/collider", bounds.Min(), bounds.Max())
	box.Static = true
	c.Children = []orrery.Object{box}
	return c
}

// Draw implements orrery.Drawer.
func (c *Container) Draw(cam orrery.Camera, _ *orrery.Time) {
	if cv, ok := cam.(orrery.Canvas); ok {
		cv.StrokeRect(c.Bounds, c.Width, c.Color)
	}
}
