package transform

import (
	"fmt"
	"math"
)

// Point is a position or offset in source pixels.
type Point struct {
	X, Y float64
}

// Rect is a crop rectangle in source pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("%gx%g+%g+%g", r.Width, r.Height, r.X, r.Y)
}

// floorEpsilon absorbs float error from ratio division so 149.99999999
// truncates to 150.
const floorEpsilon = 1e-6

func (r Rect) floor() Rect {
	return Rect{
		X:      math.Floor(r.X + floorEpsilon),
		Y:      math.Floor(r.Y + floorEpsilon),
		Width:  math.Floor(r.Width + floorEpsilon),
		Height: math.Floor(r.Height + floorEpsilon),
	}
}

// Edit is a partial crop update. A nil field keeps the current value, which
// is different from an explicit zero.
type Edit struct {
	X, Y, Width, Height *float64
}

// Value returns a pointer to v for use in Edit literals.
func Value(v float64) *float64 {
	return &v
}

// Resizes reports whether the edit touches the width or height.
func (e Edit) Resizes() bool {
	return e.Width != nil || e.Height != nil
}
