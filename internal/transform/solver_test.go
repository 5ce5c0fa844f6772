package transform

import (
	"math"
	"testing"
)

func testConstraints(lock AspectLock) Constraints {
	return Constraints{
		MinWidth:     18,
		MinHeight:    18,
		Lock:         lock,
		Bounds:       BoundsClamp,
		SourceWidth:  1000,
		SourceHeight: 800,
	}
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

func TestSolveInvariants(t *testing.T) {
	prev := Rect{X: 100, Y: 100, Width: 300, Height: 300}
	edits := []Edit{
		{Width: Value(-40)},
		{Height: Value(0)},
		{X: Value(10.7), Y: Value(3.3)},
		{X: Value(-50), Width: Value(2.5), Height: Value(1000.9)},
		{Width: Value(333.3), Height: Value(12.1)},
	}
	for _, lock := range []AspectLock{Free(), Fixed(1), Fixed(2), Fixed(0.5)} {
		for i, e := range edits {
			got := Solve(prev, e, testConstraints(lock))
			if got.Width < 18 || got.Height < 18 {
				t.Errorf("lock %v edit %d: below minimum: %v", lock, i, got)
			}
			if !isWhole(got.X) || !isWhole(got.Y) || !isWhole(got.Width) || !isWhole(got.Height) {
				t.Errorf("lock %v edit %d: not integral: %v", lock, i, got)
			}
			if got.X < 0 || got.Y < 0 || got.Right() > 1000 || got.Bottom() > 800 {
				t.Errorf("lock %v edit %d: outside source: %v", lock, i, got)
			}
		}
	}
}

func TestSolveCornerAnchors(t *testing.T) {
	prev := Rect{X: 100, Y: 100, Width: 300, Height: 300}
	tests := []struct {
		name string
		lock AspectLock
		edit Edit
		want Rect
	}{
		{
			name: "br square",
			lock: Fixed(1),
			edit: Edit{Width: Value(337.5), Height: Value(312.25)},
			want: Rect{X: 100, Y: 100, Width: 337, Height: 337},
		},
		{
			name: "br free",
			lock: Free(),
			edit: Edit{Width: Value(337.5), Height: Value(312.25)},
			want: Rect{X: 100, Y: 100, Width: 337, Height: 312},
		},
		{
			name: "tl square",
			lock: Fixed(1),
			edit: Edit{X: Value(125.5), Y: Value(110.25), Width: Value(274.5), Height: Value(289.75)},
			want: Rect{X: 125, Y: 125, Width: 274, Height: 274},
		},
		{
			name: "tl past minimum",
			lock: Free(),
			edit: Edit{X: Value(500), Y: Value(100), Width: Value(-100), Height: Value(300)},
			want: Rect{X: 382, Y: 100, Width: 18, Height: 300},
		},
		{
			name: "tr keeps bottom left",
			lock: Fixed(1),
			edit: Edit{Y: Value(50), Width: Value(350), Height: Value(350)},
			want: Rect{X: 100, Y: 50, Width: 350, Height: 350},
		},
		{
			name: "height leads",
			lock: Fixed(2),
			edit: Edit{Height: Value(150)},
			want: Rect{X: 100, Y: 100, Width: 300, Height: 150},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Solve(prev, tt.edit, testConstraints(tt.lock))
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestSolveTopLeftKeepsBottomRight(t *testing.T) {
	prev := Rect{X: 200, Y: 150, Width: 400, Height: 400}
	for _, d := range []float64{-30.4, -7.5, 0.3, 12.9, 57.25, 150} {
		e := Edit{
			X:      Value(prev.X + d),
			Y:      Value(prev.Y + d/2),
			Width:  Value(prev.Width - d),
			Height: Value(prev.Height - d/2),
		}
		for _, lock := range []AspectLock{Free(), Fixed(1)} {
			got := Solve(prev, e, testConstraints(lock))
			if math.Abs(got.Right()-prev.Right()) > 1 || math.Abs(got.Bottom()-prev.Bottom()) > 1 {
				t.Errorf("delta %v lock %v: bottom-right moved from (%v,%v) to (%v,%v)",
					d, lock, prev.Right(), prev.Bottom(), got.Right(), got.Bottom())
			}
		}
	}
}

func TestSolveBounds(t *testing.T) {
	prev := Rect{X: 800, Y: 600, Width: 100, Height: 100}
	e := Edit{Width: Value(400), Height: Value(150)}

	got := Solve(prev, e, testConstraints(Fixed(1)))
	if want := (Rect{X: 800, Y: 600, Width: 200, Height: 200}); got != want {
		t.Fatalf("clamped square: got %v want %v", got, want)
	}

	got = Solve(prev, e, testConstraints(Free()))
	if want := (Rect{X: 800, Y: 600, Width: 200, Height: 150}); got != want {
		t.Fatalf("clamped free: got %v want %v", got, want)
	}

	c := testConstraints(Fixed(1))
	c.Bounds = BoundsFree
	got = Solve(prev, e, c)
	if want := (Rect{X: 800, Y: 600, Width: 400, Height: 400}); got != want {
		t.Fatalf("free bounds: got %v want %v", got, want)
	}

	got = Solve(prev, Edit{X: Value(950), Y: Value(-20)}, testConstraints(Fixed(1)))
	if want := (Rect{X: 900, Y: 0, Width: 100, Height: 100}); got != want {
		t.Fatalf("translation: got %v want %v", got, want)
	}
}

func TestSolveRatioRespectsMinimum(t *testing.T) {
	got := Solve(Rect{Width: 100, Height: 50}, Edit{Width: Value(4)}, testConstraints(Fixed(2)))
	if want := (Rect{Width: 36, Height: 18}); got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFitAspect(t *testing.T) {
	c := testConstraints(Free())
	tests := []struct {
		lock AspectLock
		want Rect
	}{
		{Free(), Rect{Width: 1000, Height: 800}},
		{Fixed(1), Rect{Width: 800, Height: 800}},
		{Fixed(2), Rect{Width: 1000, Height: 500}},
		{Fixed(0.5), Rect{Width: 400, Height: 800}},
	}
	for _, tt := range tests {
		if got := FitAspect(tt.lock, 1000, 800, c); got != tt.want {
			t.Errorf("%v: got %v want %v", tt.lock, got, tt.want)
		}
	}
}

func TestParseAspect(t *testing.T) {
	tests := []struct {
		in    string
		ratio float64
		fixed bool
		err   bool
	}{
		{in: "free"},
		{in: "", fixed: false},
		{in: "square", ratio: 1, fixed: true},
		{in: "Wide", ratio: 2, fixed: true},
		{in: "tall", ratio: 0.5, fixed: true},
		{in: "source", ratio: 1.25, fixed: true},
		{in: "16:9", ratio: 16.0 / 9.0, fixed: true},
		{in: "3/4", ratio: 0.75, fixed: true},
		{in: "1.5", ratio: 1.5, fixed: true},
		{in: "0:4", err: true},
		{in: "-2", err: true},
		{in: "banana", err: true},
	}
	for _, tt := range tests {
		lock, err := ParseAspect(tt.in, 1000, 800)
		if tt.err {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		ratio, fixed := lock.Ratio()
		if fixed != tt.fixed || math.Abs(ratio-tt.ratio) > 1e-9 {
			t.Errorf("%q: got (%v, %v) want (%v, %v)", tt.in, ratio, fixed, tt.ratio, tt.fixed)
		}
	}
}

func TestParseBounds(t *testing.T) {
	if b, err := ParseBounds("free"); err != nil || b != BoundsFree {
		t.Fatalf("free: got %v %v", b, err)
	}
	if b, err := ParseBounds(""); err != nil || b != BoundsClamp {
		t.Fatalf("default: got %v %v", b, err)
	}
	if _, err := ParseBounds("wrap"); err == nil {
		t.Fatalf("expected error")
	}
}
