package collision

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/phanxgames/orrery"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !approxEqual(got, want, epsilon) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want orrery.Vec2) {
	t.Helper()
	if !approxEqual(got.X, want.X, epsilon) || !approxEqual(got.Y, want.Y, epsilon) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func circleAt(x, y, r, vx, vy float64) *Collider {
	c := NewCircle("c", r)
	c.Position = orrery.Vec2{X: x, Y: y}
	c.Velocity = orrery.Vec2{X: vx, Y: vy}
	return c
}

func boxAt(minX, minY, maxX, maxY float64) *Collider {
	return NewBox("box", orrery.Vec2{X: minX, Y: minY}, orrery.Vec2{X: maxX, Y: maxY})
}

// --- Circle vs circle ---

func TestCircleCircleHeadOn(t *testing.T) {
	a := circleAt(0, 0, 1, 1, 0)
	b := circleAt(1.5, 0, 1, -1, 0)
	results, err := Test(a, b, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	r := results[0]
	if r.A.Collider != a || r.B.Collider != b {
		t.Error("sides not in argument order")
	}
	assertNear(t, "A.TimeLeft", r.A.TimeLeft, 0.25)
	assertNear(t, "B.TimeLeft", r.B.TimeLeft, 0.25)
	assertVec(t, "A.Position", r.A.Position, orrery.Vec2{X: -0.25})
	assertVec(t, "B.Position", r.B.Position, orrery.Vec2{X: 1.75})
	assertVec(t, "A.Normal", r.A.Normal, orrery.Vec2{X: -1})
	assertVec(t, "B.Normal", r.B.Normal, orrery.Vec2{X: 1})
	assertVec(t, "A.RelVelocity", r.A.RelVelocity, orrery.Vec2{X: 2})
	assertNear(t, "A.Radius", r.A.Radius, 1)
}

func TestCircleCircleSymmetry(t *testing.T) {
	tests := []struct {
		name string
		a, b *Collider
	}{
		{"head on", circleAt(0, 0, 1, 2, 0), circleAt(1.9, 0, 1, -2, 0)},
		{"glancing", circleAt(0, 0, 1, 1, 1), circleAt(1, 1, 1, 0, 0)},
		{"one still", circleAt(5, 5, 2, 0, 0), circleAt(8, 6, 1.5, -3, -1)},
		{"different radii", circleAt(0, 0, 0.5, 0, 3), circleAt(0, 2, 2, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Test(tt.a, tt.b, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != 1 {
				t.Fatalf("results = %d, want 1", len(results))
			}
			r := results[0]
			assertVec(t, "A.Normal", r.A.Normal, r.B.Normal.Neg())
			assertNear(t, "Normal length", r.A.Normal.Len(), 1)
			if r.A.TimeLeft != r.B.TimeLeft {
				t.Errorf("TimeLeft differs: %v vs %v", r.A.TimeLeft, r.B.TimeLeft)
			}
			if r.A.TimeLeft < 0 {
				t.Errorf("TimeLeft = %v, want >= 0", r.A.TimeLeft)
			}
		})
	}
}

func TestCircleCircleNoOverlapAfterNudge(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		ra := 0.5 + rng.Float64()
		rb := 0.5 + rng.Float64()
		a := circleAt(0, 0, ra, rng.Float64()*4-2, rng.Float64()*4-2)
		// Place b overlapping a at a random angle.
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * (ra + rb)
		b := circleAt(math.Cos(angle)*dist, math.Sin(angle)*dist, rb, rng.Float64()*4-2, rng.Float64()*4-2)
		a.Force = orrery.Vec2{X: rng.Float64()*10 - 5, Y: rng.Float64()*10 - 5}
		b.Force = orrery.Vec2{X: rng.Float64()*10 - 5, Y: rng.Float64()*10 - 5}

		results, err := Test(a, b, 0.01)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range results {
			got := r.A.Position.Sub(r.B.Position).Len()
			if got < ra+rb-1e-9 {
				t.Fatalf("case %d: corrected distance %v < %v", i, got, ra+rb)
			}
			if r.A.TimeLeft > 0.01 {
				t.Fatalf("case %d: TimeLeft %v beyond step", i, r.A.TimeLeft)
			}
		}
	}
}

func TestCircleCircleNudgeFavorsPressingSide(t *testing.T) {
	a := circleAt(0, 0, 1, 0, 0)
	b := circleAt(1, 0, 1, 0, 0)
	// a is pushed toward b; b feels nothing along the normal.
	a.Force = orrery.Vec2{X: 10}
	results, err := Test(a, b, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	assertVec(t, "A.Position", results[0].A.Position, orrery.Vec2{X: -1})
	assertVec(t, "B.Position", results[0].B.Position, orrery.Vec2{X: 1})
}

func TestCircleCircleCases(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Collider
		want     int
		wantTime float64
	}{
		{"apart", circleAt(0, 0, 1, 1, 0), circleAt(3, 0, 1, -1, 0), 0, 0},
		{"touching", circleAt(0, 0, 1, 1, 0), circleAt(2, 0, 1, -1, 0), 0, 0},
		{"separating", circleAt(0, 0, 1, -1, 0), circleAt(1, 0, 1, 1, 0), 0, 0},
		{"zero relative speed", circleAt(0, 0, 1, 1, 1), circleAt(1, 0, 1, 1, 1), 1, 0},
		{"moving together", circleAt(0, 0, 1, 0, 0), circleAt(1, 0, 1, 0, 0), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Test(tt.a, tt.b, 0.01)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.want {
				t.Fatalf("results = %d, want %d", len(results), tt.want)
			}
			if tt.want > 0 {
				assertNear(t, "TimeLeft", results[0].A.TimeLeft, tt.wantTime)
			}
		})
	}
}

func TestCircleCircleTimeClampedToStep(t *testing.T) {
	// Deep overlap at low speed would rewind far past the start of the step.
	a := circleAt(0, 0, 1, 0.1, 0)
	b := circleAt(0.5, 0, 1, 0, 0)
	results, err := Test(a, b, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	assertNear(t, "TimeLeft", results[0].A.TimeLeft, 0.01)
	got := results[0].A.Position.Sub(results[0].B.Position).Len()
	assertNear(t, "distance", got, 2)
}

// --- Circle vs box ---

func TestCircleBoxInside(t *testing.T) {
	box := boxAt(0, 0, 10, 10)
	c := circleAt(5, 5, 1, 3, 3)
	results, err := Test(c, box, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestCircleBoxWall(t *testing.T) {
	tests := []struct {
		name       string
		pos, vel   orrery.Vec2
		wantNormal orrery.Vec2
		wantPos    orrery.Vec2
		wantTime   float64
	}{
		{"left", orrery.Vec2{X: 0.5, Y: 5}, orrery.Vec2{X: -10}, orrery.Vec2{X: 1}, orrery.Vec2{X: 1, Y: 5}, 0.05},
		{"right", orrery.Vec2{X: 9.8, Y: 5}, orrery.Vec2{X: 4}, orrery.Vec2{X: -1}, orrery.Vec2{X: 9, Y: 5}, 0.2},
		{"top", orrery.Vec2{X: 5, Y: 0.9}, orrery.Vec2{Y: -1}, orrery.Vec2{Y: 1}, orrery.Vec2{X: 5, Y: 1}, 0.1},
		{"bottom", orrery.Vec2{X: 5, Y: 9.5}, orrery.Vec2{X: 2, Y: 5}, orrery.Vec2{Y: -1}, orrery.Vec2{X: 4.8, Y: 9}, 0.1},
		{"resting", orrery.Vec2{X: 5, Y: 9.5}, orrery.Vec2{}, orrery.Vec2{Y: -1}, orrery.Vec2{X: 5, Y: 9}, 0},
		{"leaving", orrery.Vec2{X: 5, Y: 9.5}, orrery.Vec2{Y: -3}, orrery.Vec2{Y: -1}, orrery.Vec2{X: 5, Y: 9}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := boxAt(0, 0, 10, 10)
			c := circleAt(tt.pos.X, tt.pos.Y, 1, tt.vel.X, tt.vel.Y)
			results, err := Test(c, box, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != 1 {
				t.Fatalf("results = %d, want 1", len(results))
			}
			r := results[0]
			assertVec(t, "Normal", r.A.Normal, tt.wantNormal)
			assertVec(t, "box Normal", r.B.Normal, tt.wantNormal.Neg())
			assertVec(t, "Position", r.A.Position, tt.wantPos)
			assertNear(t, "TimeLeft", r.A.TimeLeft, tt.wantTime)
			if r.B.Collider != box {
				t.Error("B side should be the box")
			}
		})
	}
}

func TestCircleBoxCornerYieldsTwoResults(t *testing.T) {
	box := boxAt(0, 0, 10, 10)
	c := circleAt(9.5, 9.8, 1, 5, 4)
	results, err := Test(c, box, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	assertVec(t, "first Normal", results[0].A.Normal, orrery.Vec2{X: -1})
	assertNear(t, "first TimeLeft", results[0].A.TimeLeft, 0.1)
	assertVec(t, "second Normal", results[1].A.Normal, orrery.Vec2{Y: -1})
	assertNear(t, "second TimeLeft", results[1].A.TimeLeft, 0.2)
}

func TestCircleBoxNarrowerThanCircle(t *testing.T) {
	box := boxAt(0, 0, 4, 10)
	tests := []struct {
		name       string
		x          float64
		wantNormal orrery.Vec2
		wantX      float64
	}{
		{"left of centre", 1, orrery.Vec2{X: 1}, 2},
		{"right of centre", 3.5, orrery.Vec2{X: -1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Test(circleAt(tt.x, 5, 3, 0, 0), box, 0.01)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != 1 {
				t.Fatalf("results = %d, want one wall", len(results))
			}
			assertVec(t, "Normal", results[0].A.Normal, tt.wantNormal)
			assertNear(t, "Position.X", results[0].A.Position.X, tt.wantX)
		})
	}

	if results, _ := Test(circleAt(2, 5, 3, 0, 0), box, 0.01); len(results) != 0 {
		t.Errorf("centred circle results = %d, want 0", len(results))
	}
}

func TestBoxCircleMirrorsDispatch(t *testing.T) {
	box := boxAt(0, 0, 10, 10)
	c := circleAt(0.5, 5, 1, -1, 0)
	results, err := Test(box, c, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].A.Collider != box || results[0].B.Collider != c {
		t.Error("mirrored result not swapped back into argument order")
	}
	assertVec(t, "A.Normal", results[0].A.Normal, orrery.Vec2{X: -1})
	assertVec(t, "B.Normal", results[0].B.Normal, orrery.Vec2{X: 1})
}

// --- Box vs box ---

func TestBoxBox(t *testing.T) {
	tests := []struct {
		name       string
		a, b       *Collider
		want       int
		wantNormal orrery.Vec2
		wantDepth  float64
	}{
		{"apart", boxAt(0, 0, 1, 1), boxAt(2, 0, 3, 1), 0, orrery.Vec2{}, 0},
		{"edge", boxAt(0, 0, 1, 1), boxAt(1, 0, 2, 1), 0, orrery.Vec2{}, 0},
		{"x axis", boxAt(0, 0, 2, 4), boxAt(1.5, 0, 4, 4), 1, orrery.Vec2{X: -1}, 0.5},
		{"y axis", boxAt(0, 3, 4, 6), boxAt(0, 0, 4, 3.25), 1, orrery.Vec2{Y: 1}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Test(tt.a, tt.b, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.want {
				t.Fatalf("results = %d, want %d", len(results), tt.want)
			}
			if tt.want == 0 {
				return
			}
			r := results[0]
			assertVec(t, "A.Normal", r.A.Normal, tt.wantNormal)
			assertVec(t, "B.Normal", r.B.Normal, tt.wantNormal.Neg())
			assertNear(t, "Depth", r.A.Depth, tt.wantDepth)
			assertNear(t, "TimeLeft", r.A.TimeLeft, 0)
		})
	}
}

// --- Dispatch ---

const kindBroken Kind = 200

func TestNonFiniteTimeLeftIsAnError(t *testing.T) {
	Register(kindBroken, KindCircle, func(a, b *Collider, _ float64) []Result {
		return []Result{{
			A: Side{Collider: a, TimeLeft: math.Inf(1)},
			B: Side{Collider: b, TimeLeft: math.Inf(1)},
		}}
	})
	defer delete(dispatch, kindBroken)

	a := &Collider{Kind: kindBroken}
	b := circleAt(0, 0, 1, 0, 0)
	_, err := Test(a, b, 1)
	if !errors.Is(err, orrery.ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
	// The mirrored direction must catch it too.
	if _, err := Test(b, a, 1); !errors.Is(err, orrery.ErrNonFinite) {
		t.Fatalf("mirrored err = %v, want ErrNonFinite", err)
	}
}

func TestUnknownPairIsIgnored(t *testing.T) {
	a := &Collider{Kind: kindBroken}
	b := circleAt(0, 0, 1, 0, 0)
	results, err := Test(a, b, 1)
	if err != nil || results != nil {
		t.Errorf("Test = %v, %v; want nil, nil", results, err)
	}
}

func TestKindString(t *testing.T) {
	if KindCircle.String() != "circle" || KindBox.String() != "box" || kindBroken.String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}

// --- Classify ---

func TestClassify(t *testing.T) {
	region := orrery.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		c    *Collider
		want Containment
	}{
		{"circle inside", circleAt(5, 5, 1, 0, 0), Inside},
		{"circle straddling", circleAt(9.5, 5, 1, 0, 0), Overlapping},
		{"circle outside", circleAt(20, 5, 1, 0, 0), Outside},
		{"circle near corner", circleAt(10.8, 10.8, 1, 0, 0), Outside},
		{"circle on corner", circleAt(10.5, 10.5, 1, 0, 0), Overlapping},
		{"box inside", boxAt(1, 1, 2, 2), Inside},
		{"box straddling", boxAt(8, 8, 12, 12), Overlapping},
		{"box outside", boxAt(11, 11, 12, 12), Outside},
		{"box enclosing", boxAt(-1, -1, 11, 11), Overlapping},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Classify(region); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}
