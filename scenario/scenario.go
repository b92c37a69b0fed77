// Package scenario loads demo scenes from YAML: a list of balls, an
// optional container, and an optional gravity field.
//
//	name: binary
//	gravity:
//	  g: 400
//	  softening: 4
//	bodies:
//	  - name: sun
//	    pos: [0, 0]
//	    radius: 24
//	    mass: 1000
//	    color: "#ffcc33"
//	  - name: planet
//	    pos: [300, 0]
//	    vel: [0, 36]
//	    radius: 8
//	    mass: 1
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/orrery"
	"github.com/phanxgames/orrery/physics"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name      string       `yaml:"name"`
	Gravity   *GravitySpec `yaml:"gravity"`
	Container *RectSpec    `yaml:"container"`
	Bodies    []BodySpec   `yaml:"bodies"`
}

// GravitySpec configures a physics.GravityField.
type GravitySpec struct {
	G         float64 `yaml:"g"`
	Softening float64 `yaml:"softening"`
}

// RectSpec is a rectangle in world units.
type RectSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// BodySpec describes one ball.
type BodySpec struct {
	Name        string    `yaml:"name"`
	Pos         []float64 `yaml:"pos"`
	Vel         []float64 `yaml:"vel"`
	Gravity     []float64 `yaml:"gravity"` // constant acceleration
	Radius      float64   `yaml:"radius"`
	Mass        float64   `yaml:"mass"`
	Restitution float64   `yaml:"restitution"`
	AttachSpeed float64   `yaml:"attach_speed"`
	Color       string    `yaml:"color"` // "#rrggbb" or "#rrggbbaa"
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates scenario YAML. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every body and the container.
func (s *Scenario) Validate() error {
	if len(s.Bodies) == 0 {
		return errors.New("scenario has no bodies")
	}
	if c := s.Container; c != nil && (c.Width <= 0 || c.Height <= 0) {
		return fmt.Errorf("container must have positive size, got %vx%v", c.Width, c.Height)
	}
	for i, b := range s.Bodies {
		label := b.Name
		if label == "" {
			label = "#" + strconv.Itoa(i)
		}
		if b.Radius <= 0 {
			return fmt.Errorf("body %s: radius must be positive", label)
		}
		if b.Mass < 0 {
			return fmt.Errorf("body %s: mass must not be negative", label)
		}
		for _, v := range []struct {
			field string
			val   []float64
		}{{"pos", b.Pos}, {"vel", b.Vel}, {"gravity", b.Gravity}} {
			if v.val != nil && len(v.val) != 2 {
				return fmt.Errorf("body %s: %s needs 2 components, got %d", label, v.field, len(v.val))
			}
		}
		if b.Color != "" {
			if _, err := ParseColor(b.Color); err != nil {
				return fmt.Errorf("body %s: %w", label, err)
			}
		}
	}
	return nil
}

// Scene holds the objects Build created.
type Scene struct {
	Field     *physics.GravityField
	Container *physics.Container
	Balls     []*physics.Ball
}

// Build queues the scenario's objects on w: the gravity field first so its
// forces apply in the same step, then the container, then the balls. The
// objects become live at the next commit.
func (s *Scenario) Build(w *orrery.World) (*Scene, error) {
	scene := &Scene{}
	if s.Gravity != nil {
		scene.Field = physics.NewGravityField(w, s.Gravity.G, s.Gravity.Softening)
		if _, err := w.Add(scene.Field); err != nil {
			return nil, err
		}
	}
	if c := s.Container; c != nil {
		scene.Container = physics.NewContainer("container", orrery.Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height})
		if _, err := w.Add(scene.Container); err != nil {
			return nil, err
		}
	}
	for i, bs := range s.Bodies {
		name := bs.Name
		if name == "" {
			name = "body-" + strconv.Itoa(i)
		}
		col := orrery.ColorWhite
		if bs.Color != "" {
			col, _ = ParseColor(bs.Color)
		}
		ball := physics.NewBall(name, vec(bs.Pos), bs.Radius, bs.Mass, col)
		ball.Vel = vec(bs.Vel)
		ball.Gravity = vec(bs.Gravity)
		ball.Restitution = bs.Restitution
		ball.AttachSpeed = bs.AttachSpeed
		if _, err := w.Add(ball); err != nil {
			return nil, err
		}
		scene.Balls = append(scene.Balls, ball)
	}
	return scene, nil
}

func vec(v []float64) orrery.Vec2 {
	if len(v) != 2 {
		return orrery.Vec2{}
	}
	return orrery.Vec2{X: v[0], Y: v[1]}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (orrery.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return orrery.Color{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return orrery.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return orrery.Color{
		R: float64(n>>24&0xff) / 255,
		G: float64(n>>16&0xff) / 255,
		B: float64(n>>8&0xff) / 255,
		A: float64(n&0xff) / 255,
	}, nil
}
