package drag

import "github.com/example/emotecrop/internal/transform"

// ZoomStep is the scale change per wheel notch.
const ZoomStep = 0.075

// View is the view state panned and zoomed by pointer gestures.
type View interface {
	Scale() float64
	SetScale(float64)
	Pan(dx, dy float64)
}

// Pan is the middle-button pan gesture. It is captured independently of
// the crop Controller.
type Pan struct {
	view   View
	active bool
	last   transform.Point
}

// NewPan returns an idle pan gesture for v.
func NewPan(v View) *Pan {
	return &Pan{view: v}
}

func (p *Pan) Active() bool { return p.active }

// Press starts panning at screen point pt.
func (p *Pan) Press(pt transform.Point) bool {
	if p.active {
		return false
	}
	p.active = true
	p.last = pt
	return true
}

// Drag moves the view origin by the pointer movement divided by the scale.
func (p *Pan) Drag(pt transform.Point) bool {
	if !p.active {
		return false
	}
	scale := p.view.Scale()
	if scale <= 0 {
		scale = transform.MinScale
	}
	p.view.Pan((pt.X-p.last.X)/scale, (pt.Y-p.last.Y)/scale)
	p.last = pt
	return true
}

// Release ends the gesture.
func (p *Pan) Release() bool {
	if !p.active {
		return false
	}
	p.active = false
	return true
}

// Zoom changes the scale by notches wheel steps; positive zooms in.
func Zoom(v View, notches float64) {
	v.SetScale(v.Scale() + notches*ZoomStep)
}
