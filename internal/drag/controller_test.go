package drag

import (
	"testing"

	"github.com/example/emotecrop/internal/transform"
)

func loaded(lock transform.AspectLock) *transform.State {
	st := transform.New(transform.WithLock(lock))
	st.Load(1000, 800, "test")
	st.SetCrop(transform.Edit{
		X:      transform.Value(100),
		Y:      transform.Value(100),
		Width:  transform.Value(300),
		Height: transform.Value(300),
	})
	return st
}

func pt(x, y float64) transform.Point { return transform.Point{X: x, Y: y} }

func TestDragBottomRightKeepsOrigin(t *testing.T) {
	st := loaded(transform.Free())
	c := NewController(st)
	if !c.Press(BottomRight, pt(500, 500)) {
		t.Fatalf("press refused")
	}
	c.Drag(pt(540, 520), Modifiers{})
	got := st.Crop()
	if got.X != 100 || got.Y != 100 {
		t.Fatalf("origin moved: %v", got)
	}
	if got.Width != 340 || got.Height != 320 {
		t.Fatalf("size: %v", got)
	}
}

func TestDragTopLeftKeepsCorner(t *testing.T) {
	st := loaded(transform.Fixed(1))
	c := NewController(st)
	c.Press(TopLeft, pt(0, 0))
	for _, p := range []transform.Point{pt(10, 3), pt(33.3, 41.7), pt(-20, -5), pt(80, 90)} {
		c.Drag(p, Modifiers{})
		got := st.Crop()
		if d := got.Right() - 400; d > 1 || d < -1 {
			t.Fatalf("right edge moved to %v", got.Right())
		}
		if d := got.Bottom() - 400; d > 1 || d < -1 {
			t.Fatalf("bottom edge moved to %v", got.Bottom())
		}
	}
}

func TestDragDeltaUsesScale(t *testing.T) {
	st := loaded(transform.Free())
	st.SetScale(2)
	c := NewController(st)
	c.Press(Move, pt(0, 0))
	c.Drag(pt(50, 20), Modifiers{})
	if got := st.Crop(); got.X != 125 || got.Y != 110 {
		t.Fatalf("got %v", got)
	}
}

func TestDragShiftLocksAxis(t *testing.T) {
	st := loaded(transform.Free())
	c := NewController(st)
	c.Press(Move, pt(0, 0))
	c.Drag(pt(30, 10), Modifiers{Shift: true})
	if got := st.Crop(); got.X != 130 || got.Y != 100 {
		t.Fatalf("horizontal lock: got %v", got)
	}
	c.Drag(pt(5, -40), Modifiers{Shift: true})
	if got := st.Crop(); got.X != 100 || got.Y != 60 {
		t.Fatalf("vertical lock: got %v", got)
	}
}

func TestDragControlOverridesLock(t *testing.T) {
	st := loaded(transform.Fixed(1))
	c := NewController(st)
	c.Press(BottomRight, pt(0, 0))
	c.Drag(pt(100, 0), Modifiers{Control: true})
	if got := st.Crop(); got.Width != 400 || got.Height != 300 {
		t.Fatalf("override: got %v", got)
	}
	if !st.LockSuspended() {
		t.Fatalf("lock should be suspended during the drag")
	}
	c.Release()
	if st.LockSuspended() {
		t.Fatalf("lock should be restored on release")
	}
	if ratio, fixed := st.Lock().Ratio(); !fixed || ratio != 400.0/300.0 {
		t.Fatalf("lock after release: %v %v", ratio, fixed)
	}
}

func TestSingleActiveDrag(t *testing.T) {
	st := loaded(transform.Free())
	c := NewController(st)
	c.Press(BottomRight, pt(0, 0))
	if c.Press(TopLeft, pt(10, 10)) {
		t.Fatalf("second press should be ignored")
	}
	if c.Handle() != BottomRight {
		t.Fatalf("handle changed to %v", c.Handle())
	}
	c.Release()
	if c.Phase() != Idle {
		t.Fatalf("phase: %v", c.Phase())
	}
	if !c.Press(TopLeft, pt(10, 10)) {
		t.Fatalf("press after release refused")
	}
}

func TestMoveWhileIdleIgnored(t *testing.T) {
	st := loaded(transform.Free())
	before := st.Crop()
	c := NewController(st)
	if c.Drag(pt(300, 300), Modifiers{}) {
		t.Fatalf("idle drag reported as handled")
	}
	if st.Crop() != before {
		t.Fatalf("crop changed while idle")
	}
	if c.Release() {
		t.Fatalf("idle release reported as handled")
	}
}

func TestOnRelease(t *testing.T) {
	st := loaded(transform.Free())
	c := NewController(st)
	var released []Handle
	c.OnRelease = func(h Handle) { released = append(released, h) }
	c.Press(Move, pt(0, 0))
	c.Release()
	if len(released) != 1 || released[0] != Move {
		t.Fatalf("got %v", released)
	}
}

func TestParseHandle(t *testing.T) {
	for _, h := range []Handle{TopLeft, TopRight, BottomLeft, BottomRight, Move} {
		got, err := ParseHandle(h.String())
		if err != nil || got != h {
			t.Errorf("%v: got %v %v", h, got, err)
		}
	}
	if _, err := ParseHandle("none"); err == nil {
		t.Errorf("none should not parse")
	}
}
