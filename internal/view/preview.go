package view

import (
	"image"
	"image/draw"

	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/theme"
)

// PreviewPadding separates the assets in the preview sheet.
const PreviewPadding = 8

// PreviewSheet lays the exported sizes out side by side on a chat-colored
// strip, bottom aligned like emotes on a message line.
func PreviewSheet(assets []render.Asset, th *theme.Theme) *image.RGBA {
	if th == nil {
		th = theme.Default()
	}
	width, height := PreviewPadding, 0
	for _, a := range assets {
		width += a.Size + PreviewPadding
		height = max(height, a.Size)
	}
	height += 2 * PreviewPadding
	sheet := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(th.PreviewBackground), image.Point{}, draw.Src)

	x := PreviewPadding
	for _, a := range assets {
		if a.Image == nil {
			x += a.Size + PreviewPadding
			continue
		}
		y := height - PreviewPadding - a.Size
		r := image.Rect(x, y, x+a.Size, y+a.Size)
		draw.Draw(sheet, r, a.Image, a.Image.Bounds().Min, draw.Over)
		x += a.Size + PreviewPadding
	}
	return sheet
}
