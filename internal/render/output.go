package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/example/emotecrop/internal/transform"
)

var (
	// ErrInvalidSize is returned for non-positive output or export sizes.
	ErrInvalidSize = errors.New("render: invalid size")
	// ErrNoSurface is returned when there is nothing to render from.
	ErrNoSurface = errors.New("render: no source surface")
)

// Scene is the part of the editing session the rasterizer reads.
// *transform.State implements it.
type Scene interface {
	SourceSize() (int, int)
	Crop() transform.Rect
	Rotation() float64
	Flipped() bool
}

// CanvasMatrix maps source pixels onto the canvas: the source is mirrored
// over its width when flipped, then rotated about the crop center.
func CanvasMatrix(s Scene) gg.Matrix {
	m := gg.Identity()
	c := s.Crop().Center()
	if r := math.Mod(s.Rotation(), 360); r != 0 {
		m = gg.Translate(c.X, c.Y).
			Multiply(gg.Rotate(r * math.Pi / 180)).
			Multiply(gg.Translate(-c.X, -c.Y))
	}
	if s.Flipped() {
		w, _ := s.SourceSize()
		m = m.Multiply(gg.Matrix{A: -1, C: float64(w), E: 1})
	}
	return m
}

// OutputMatrix maps source pixels into the output raster, whose origin is
// the crop's top-left corner.
func OutputMatrix(s Scene) gg.Matrix {
	crop := s.Crop()
	return gg.Translate(-crop.X, -crop.Y).Multiply(CanvasMatrix(s))
}

// Aff3 converts m for use with x/image/draw transforms.
func Aff3(m gg.Matrix) f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}

// pixelAligned reports whether m maps pixel centers onto pixel centers.
func pixelAligned(m gg.Matrix) bool {
	unit := func(v float64) bool { return v == 1 || v == -1 }
	whole := func(v float64) bool { return v == math.Trunc(v) }
	return m.B == 0 && m.D == 0 && unit(m.A) && unit(m.E) && whole(m.C) && whole(m.F)
}

// Interpolator picks the resampler for m.
func Interpolator(m gg.Matrix, smooth bool) draw.Interpolator {
	if !smooth || pixelAligned(m) {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

// Output rasterizes the crop of surface at native resolution. Pixels that
// fall outside the source stay transparent.
func Output(s Scene, surface image.Image, smooth bool) (*image.NRGBA, error) {
	if surface == nil || surface.Bounds().Empty() {
		return nil, ErrNoSurface
	}
	crop := s.Crop()
	w, h := int(crop.Width), int(crop.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("output %dx%d: %w", w, h, ErrInvalidSize)
	}
	sr := surface.Bounds()
	m := OutputMatrix(s).Multiply(gg.Translate(float64(-sr.Min.X), float64(-sr.Min.Y)))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	Interpolator(m, smooth).Transform(dst, Aff3(m), surface, sr, draw.Src, nil)
	return dst, nil
}
