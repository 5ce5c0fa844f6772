package drag

import (
	"math"

	"github.com/example/emotecrop/internal/transform"
)

// Modifiers is the keyboard state sampled with a pointer event.
type Modifiers struct {
	Shift   bool
	Control bool
}

// Target is the state a crop drag edits. *transform.State implements it.
type Target interface {
	Crop() transform.Rect
	Scale() float64
	SetCrop(transform.Edit)
	SuspendLock()
	ResumeLock()
}

// Phase is the controller state.
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller turns pointer movement on a handle into crop edits. Only one
// handle can be captured at a time.
type Controller struct {
	target Target

	phase     Phase
	handle    Handle
	start     transform.Point
	startCrop transform.Rect
	override  bool

	// OnRelease runs after a drag ends, for example to record history.
	OnRelease func(h Handle)
}

// NewController returns an idle controller editing t.
func NewController(t Target) *Controller {
	return &Controller{target: t}
}

func (c *Controller) Phase() Phase   { return c.phase }
func (c *Controller) Active() bool   { return c.phase == Dragging }
func (c *Controller) Handle() Handle { return c.handle }

// Press captures h at screen point p. It returns false and changes nothing
// when a drag is already active or h is None.
func (c *Controller) Press(h Handle, p transform.Point) bool {
	if c.phase == Dragging || h == None {
		return false
	}
	c.phase = Dragging
	c.handle = h
	c.start = p
	c.startCrop = c.target.Crop()
	c.override = false
	return true
}

// Drag moves the captured handle to screen point p. Moves while idle are
// ignored and return false.
func (c *Controller) Drag(p transform.Point, mods Modifiers) bool {
	if c.phase != Dragging {
		return false
	}
	scale := c.target.Scale()
	if scale <= 0 {
		scale = transform.MinScale
	}
	dx := (p.X - c.start.X) / scale
	dy := (p.Y - c.start.Y) / scale
	if mods.Shift {
		if math.Abs(dx) < math.Abs(dy) {
			dx = 0
		} else {
			dy = 0
		}
	}
	if mods.Control && !c.override {
		c.override = true
		c.target.SuspendLock()
	}
	c.target.SetCrop(edit(c.handle, c.startCrop, dx, dy))
	return true
}

// Release ends the drag and restores the aspect lock.
func (c *Controller) Release() bool {
	if c.phase != Dragging {
		return false
	}
	h := c.handle
	c.phase = Idle
	c.handle = None
	c.startCrop = transform.Rect{}
	c.override = false
	c.target.ResumeLock()
	if c.OnRelease != nil {
		c.OnRelease(h)
	}
	return true
}

func edit(h Handle, r transform.Rect, dx, dy float64) transform.Edit {
	v := transform.Value
	switch h {
	case TopLeft:
		return transform.Edit{X: v(r.X + dx), Y: v(r.Y + dy), Width: v(r.Width - dx), Height: v(r.Height - dy)}
	case TopRight:
		return transform.Edit{Y: v(r.Y + dy), Width: v(r.Width + dx), Height: v(r.Height - dy)}
	case BottomLeft:
		return transform.Edit{X: v(r.X + dx), Width: v(r.Width - dx), Height: v(r.Height + dy)}
	case BottomRight:
		return transform.Edit{Width: v(r.Width + dx), Height: v(r.Height + dy)}
	case Move:
		return transform.Edit{X: v(r.X + dx), Y: v(r.Y + dy)}
	}
	return transform.Edit{}
}
