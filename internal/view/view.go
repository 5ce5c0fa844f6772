// Package view projects an editing session onto the editor window: the
// viewport mapping, handle hit testing and the overlay raster.
package view

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/example/emotecrop/internal/drag"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/transform"
)

// HandleRadius is the corner handle radius in screen pixels.
const HandleRadius = 6

// State is what the view reads from the session. *transform.State
// implements it.
type State interface {
	render.Scene
	Scale() float64
	Origin() transform.Point
}

// Viewport is the size of the drawing area in screen pixels.
type Viewport struct {
	Width, Height int
}

func (v Viewport) center() transform.Point {
	return transform.Point{X: float64(v.Width) / 2, Y: float64(v.Height) / 2}
}

// ToScreen maps a canvas point to screen pixels. The source is centered in
// the viewport and shifted by the view origin.
func (v Viewport) ToScreen(s State, p transform.Point) transform.Point {
	w, h := s.SourceSize()
	c, o, k := v.center(), s.Origin(), s.Scale()
	return transform.Point{
		X: c.X + (p.X-float64(w)/2+o.X)*k,
		Y: c.Y + (p.Y-float64(h)/2+o.Y)*k,
	}
}

// ToSource is the inverse of ToScreen.
func (v Viewport) ToSource(s State, p transform.Point) transform.Point {
	w, h := s.SourceSize()
	c, o, k := v.center(), s.Origin(), s.Scale()
	if k <= 0 {
		k = transform.MinScale
	}
	return transform.Point{
		X: (p.X-c.X)/k + float64(w)/2 - o.X,
		Y: (p.Y-c.Y)/k + float64(h)/2 - o.Y,
	}
}

// Matrix maps source pixels to screen pixels, including flip and rotation.
func (v Viewport) Matrix(s State) gg.Matrix {
	w, h := s.SourceSize()
	c, o, k := v.center(), s.Origin(), s.Scale()
	return gg.Translate(c.X, c.Y).
		Multiply(gg.Scale(k, k)).
		Multiply(gg.Translate(o.X-float64(w)/2, o.Y-float64(h)/2)).
		Multiply(render.CanvasMatrix(s))
}

// CropRect returns the crop rectangle in screen pixels as top-left and
// bottom-right corners.
func (v Viewport) CropRect(s State) (transform.Point, transform.Point) {
	r := s.Crop()
	return v.ToScreen(s, transform.Point{X: r.X, Y: r.Y}),
		v.ToScreen(s, transform.Point{X: r.Right(), Y: r.Bottom()})
}

// HitTest finds the handle under screen point p. Corners win over the crop
// interior.
func HitTest(s State, v Viewport, p transform.Point) (drag.Handle, bool) {
	crop := s.Crop()
	for _, h := range drag.Corners() {
		corner, _ := h.Anchor(crop)
		sc := v.ToScreen(s, corner)
		if math.Hypot(p.X-sc.X, p.Y-sc.Y) <= HandleRadius {
			return h, true
		}
	}
	tl, br := v.CropRect(s)
	if p.X >= tl.X && p.X < br.X && p.Y >= tl.Y && p.Y < br.Y {
		return drag.Move, true
	}
	return drag.None, false
}
