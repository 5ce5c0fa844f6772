package transform

import (
	"fmt"
	"math"
	"strings"
)

// BoundsPolicy decides whether crops may leave the source image.
type BoundsPolicy int

const (
	// BoundsClamp keeps the crop inside the source image.
	BoundsClamp BoundsPolicy = iota
	// BoundsFree lets the crop extend past the source, padding the output
	// with transparency.
	BoundsFree
)

func (b BoundsPolicy) String() string {
	switch b {
	case BoundsFree:
		return "free"
	default:
		return "clamp"
	}
}

// ParseBounds reads "clamp" or "free".
func ParseBounds(s string) (BoundsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return BoundsClamp, nil
	case "free", "overflow":
		return BoundsFree, nil
	}
	return BoundsClamp, fmt.Errorf("unknown bounds policy %q", s)
}

// Constraints are the limits Solve applies to a crop edit.
type Constraints struct {
	MinWidth, MinHeight       float64
	Lock                      AspectLock
	Bounds                    BoundsPolicy
	SourceWidth, SourceHeight float64
}

func (c Constraints) clamps() bool {
	return c.Bounds == BoundsClamp && c.SourceWidth > 0 && c.SourceHeight > 0
}

// Solve applies e to prev and returns a rectangle that honours the minimum
// size, the aspect lock and the bounds policy. Fields supplied together with
// their size (X with Width, Y with Height) mark a dragged edge: the opposite
// edge stays where the caller put it. The result is floored to whole pixels.
func Solve(prev Rect, e Edit, c Constraints) Rect {
	r := prev
	if e.X != nil {
		r.X = *e.X
	}
	if e.Y != nil {
		r.Y = *e.Y
	}
	if e.Width != nil {
		r.Width = *e.Width
	}
	if e.Height != nil {
		r.Height = *e.Height
	}
	anchorRight := e.X != nil && e.Width != nil
	anchorBottom := e.Y != nil && e.Height != nil
	right, bottom := r.Right(), r.Bottom()
	resizing := e.Resizes()

	r.Width = math.Max(r.Width, c.MinWidth)
	r.Height = math.Max(r.Height, c.MinHeight)

	ratio, locked := c.Lock.Ratio()
	locked = locked && resizing
	if locked {
		if widthLeads(prev, r, e, ratio) {
			r.Height = r.Width / ratio
		} else {
			r.Width = r.Height * ratio
		}
		r.Width, r.Height = growToMinimum(r.Width, r.Height, c)
	}

	if c.clamps() {
		maxW, maxH := c.SourceWidth, c.SourceHeight
		if resizing {
			maxW, maxH = c.SourceWidth-r.X, c.SourceHeight-r.Y
			if anchorRight {
				maxW = right
			}
			if anchorBottom {
				maxH = bottom
			}
		}
		maxW = math.Max(maxW, c.MinWidth)
		maxH = math.Max(maxH, c.MinHeight)
		if locked && r.Width > 0 && r.Height > 0 {
			k := math.Min(1, math.Min(maxW/r.Width, maxH/r.Height))
			r.Width, r.Height = growToMinimum(r.Width*k, r.Height*k, c)
		} else {
			r.Width = math.Min(r.Width, maxW)
			r.Height = math.Min(r.Height, maxH)
		}
	}

	if anchorRight {
		r.X = right - r.Width
	}
	if anchorBottom {
		r.Y = bottom - r.Height
	}
	if c.clamps() {
		r.X = clampAxis(r.X, r.Width, c.SourceWidth)
		r.Y = clampAxis(r.Y, r.Height, c.SourceHeight)
	}
	return r.floor()
}

// widthLeads picks the dimension the user is dragging. When both change the
// larger change wins, measured in width units.
func widthLeads(prev, r Rect, e Edit, ratio float64) bool {
	switch {
	case e.Width != nil && e.Height == nil:
		return true
	case e.Height != nil && e.Width == nil:
		return false
	}
	dw := math.Abs(r.Width - prev.Width)
	dh := math.Abs(r.Height-prev.Height) * ratio
	return dw >= dh
}

func growToMinimum(w, h float64, c Constraints) (float64, float64) {
	k := 1.0
	if c.MinWidth > 0 && w < c.MinWidth {
		k = c.MinWidth / w
	}
	if c.MinHeight > 0 && h*k < c.MinHeight {
		k = c.MinHeight / h
	}
	return w * k, h * k
}

func clampAxis(pos, size, limit float64) float64 {
	if size >= limit {
		return 0
	}
	return math.Min(math.Max(pos, 0), limit-size)
}

// FitAspect returns the largest rectangle of lock's ratio placed at the
// origin inside a srcW by srcH image. A free lock returns the full image.
func FitAspect(lock AspectLock, srcW, srcH int, c Constraints) Rect {
	w, h := float64(srcW), float64(srcH)
	if ratio, ok := lock.Ratio(); ok {
		h = w / ratio
		if h > float64(srcH) {
			h = float64(srcH)
			w = h * ratio
		}
		w, h = growToMinimum(w, h, c)
	} else {
		w = math.Max(w, c.MinWidth)
		h = math.Max(h, c.MinHeight)
	}
	return Rect{Width: w, Height: h}.floor()
}
