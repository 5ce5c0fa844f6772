package view

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"

	"github.com/example/emotecrop/internal/drag"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/theme"
)

const checkerSize = 8

// Render draws the session into dst: a checkerboard, the keyed surface
// through the view transform, then the crop overlay.
func Render(dst *image.RGBA, s State, surface image.Image, th *theme.Theme) error {
	if th == nil {
		th = theme.Default()
	}
	b := dst.Bounds()
	v := Viewport{Width: b.Dx(), Height: b.Dy()}
	Checkerboard(dst, th.CheckerLight, th.CheckerDark)
	if surface == nil || surface.Bounds().Empty() {
		return nil
	}

	sr := surface.Bounds()
	m := gg.Translate(float64(b.Min.X), float64(b.Min.Y)).
		Multiply(v.Matrix(s)).
		Multiply(gg.Translate(float64(-sr.Min.X), float64(-sr.Min.Y)))
	render.Interpolator(m, s.Scale() < 1).Transform(dst, render.Aff3(m), surface, sr, draw.Over, nil)

	return Overlay(dst, s, th)
}

// Checkerboard fills dst with alternating tiles.
func Checkerboard(dst *image.RGBA, light, dark color.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := light
			if ((x-b.Min.X)/checkerSize+(y-b.Min.Y)/checkerSize)%2 == 1 {
				c = dark
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

// Overlay dims everything outside the crop and draws the dashed border and
// the corner handles.
func Overlay(dst *image.RGBA, s State, th *theme.Theme) error {
	b := dst.Bounds()
	v := Viewport{Width: b.Dx(), Height: b.Dy()}
	dc := gg.NewContextForImage(dst)
	defer dc.Close()

	tl, br := v.CropRect(s)
	w, h := br.X-tl.X, br.Y-tl.Y

	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.DrawRectangle(0, 0, float64(v.Width), float64(v.Height))
	dc.DrawRectangle(tl.X, tl.Y, w, h)
	dc.SetColor(th.Overlay)
	if err := dc.Fill(); err != nil {
		return err
	}

	dc.SetLineWidth(1)
	dc.SetDash(6, 4)
	dc.DrawRectangle(tl.X+0.5, tl.Y+0.5, w-1, h-1)
	dc.SetColor(th.CropBorder)
	if err := dc.Stroke(); err != nil {
		return err
	}
	dc.SetDash()

	crop := s.Crop()
	for _, hd := range drag.Corners() {
		corner, _ := hd.Anchor(crop)
		p := v.ToScreen(s, corner)
		dc.DrawCircle(p.X, p.Y, HandleRadius)
		dc.SetColor(th.Handle)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetColor(th.HandleBorder)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}

	draw.Draw(dst, b, dc.Image(), image.Point{}, draw.Src)
	return nil
}
