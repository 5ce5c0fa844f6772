package appstate

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	labelSize   = 13
	messageSize = 28
)

var (
	fontOnce sync.Once
	fontErr  error
	uiFont   *opentype.Font
	faces    sync.Map // map[float64]font.Face
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		uiFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return uiFont, fontErr
}

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 || math.IsNaN(size) {
		size = labelSize
	}
	if face, ok := faces.Load(size); ok {
		return face.(font.Face), nil
	}
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// MeasureText returns the box text occupies at size and the offset of its
// baseline from the top.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline = metrics.Ascent.Ceil()
	height = baseline + metrics.Descent.Ceil()
	return
}

// DrawText renders text with its top-left corner at (x, y).
func DrawText(img *image.RGBA, x, y int, text string, col color.Color, size float64) error {
	face, err := faceForSize(size)
	if err != nil {
		return err
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)
	return nil
}
