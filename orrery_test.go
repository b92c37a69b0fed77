package orrery

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func assertVec(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	if !approxEqual(got.X, want.X, 1e-9) || !approxEqual(got.Y, want.Y, 1e-9) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestVec2Ops(t *testing.T) {
	a := Vec2{3, 4}
	b := Vec2{1, -2}
	assertVec(t, "Add", a.Add(b), Vec2{4, 2})
	assertVec(t, "Sub", a.Sub(b), Vec2{2, 6})
	assertVec(t, "Scale", a.Scale(2), Vec2{6, 8})
	assertVec(t, "Neg", a.Neg(), Vec2{-3, -4})
	assertVec(t, "Normalize", a.Normalize(), Vec2{0.6, 0.8})
	assertVec(t, "Normalize zero", Vec2{}.Normalize(), Vec2{})
	assertVec(t, "Lerp", a.Lerp(b, 0.5), Vec2{2, 1})
	if a.Dot(b) != -5 {
		t.Errorf("Dot = %v, want -5", a.Dot(b))
	}
	if a.Len() != 5 || a.LenSq() != 25 {
		t.Errorf("Len = %v, LenSq = %v", a.Len(), a.LenSq())
	}
}

func TestVec2IsFinite(t *testing.T) {
	tests := []struct {
		v    Vec2
		want bool
	}{
		{Vec2{1, 2}, true},
		{Vec2{math.NaN(), 0}, false},
		{Vec2{0, math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := tt.v.IsFinite(); got != tt.want {
			t.Errorf("%v.IsFinite() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 20}
	if !r.Contains(10, 20) || r.Contains(10.1, 0) {
		t.Error("Contains edge handling wrong")
	}
	if !r.ContainsRect(Rect{X: 1, Y: 1, Width: 2, Height: 2}) || r.ContainsRect(Rect{X: 9, Y: 0, Width: 2, Height: 2}) {
		t.Error("ContainsRect wrong")
	}
	if !r.Intersects(Rect{X: 10, Y: 0, Width: 5, Height: 5}) {
		t.Error("adjacent rects should intersect")
	}
	if r.Intersects(Rect{X: 11, Y: 0, Width: 5, Height: 5}) {
		t.Error("disjoint rects should not intersect")
	}
	if u := r.Union(Rect{X: -5, Y: 5, Width: 5, Height: 30}); u != (Rect{X: -5, Y: 0, Width: 15, Height: 35}) {
		t.Errorf("Union = %v", u)
	}
	if in := r.Inset(2); in != (Rect{X: 2, Y: 2, Width: 6, Height: 16}) {
		t.Errorf("Inset = %v", in)
	}
	if !r.Inset(6).IsEmpty() {
		t.Error("over-inset rect should be empty")
	}
	if got := RectFromMinMax(Vec2{1, 2}, Vec2{4, 8}); got != (Rect{X: 1, Y: 2, Width: 3, Height: 6}) {
		t.Errorf("RectFromMinMax = %v", got)
	}
	assertVec(t, "Center", r.Center(), Vec2{5, 10})
}

func TestRectQuadrants(t *testing.T) {
	q := Rect{X: 0, Y: 0, Width: 8, Height: 4}.Quadrants()
	want := [4]Rect{
		{X: 0, Y: 0, Width: 4, Height: 2},
		{X: 4, Y: 0, Width: 4, Height: 2},
		{X: 0, Y: 2, Width: 4, Height: 2},
		{X: 4, Y: 2, Width: 4, Height: 2},
	}
	if q != want {
		t.Errorf("Quadrants = %v, want %v", q, want)
	}
}

func TestColorRGBAPremultiplies(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: 2, A: 0.5}.RGBA()
	if c.R != 127 || c.G != 63 || c.B != 255 || c.A != 127 {
		t.Errorf("RGBA = %+v", c)
	}
}
