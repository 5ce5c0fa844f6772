package theme

import (
	"image/color"
	"reflect"
)

// Theme is the editor's color palette.
type Theme struct {
	Name string

	Background color.RGBA // window behind the canvas
	Foreground color.RGBA // status and label text

	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Transparent areas of the source.
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Crop overlay. Overlay is drawn over everything outside the crop and
	// normally carries alpha.
	Overlay      color.RGBA
	CropBorder   color.RGBA
	Handle       color.RGBA
	HandleBorder color.RGBA

	// Chat preview strip.
	PreviewBackground color.RGBA
	PreviewText       color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		Overlay:               color.RGBA{0, 0, 0, 128},
		CropBorder:            color.RGBA{255, 255, 255, 255},
		Handle:                color.RGBA{255, 255, 255, 255},
		HandleBorder:          color.RGBA{40, 40, 40, 255},
		PreviewBackground:     color.RGBA{255, 255, 255, 255},
		PreviewText:           color.RGBA{14, 14, 16, 255},
	}
}

// Field is one named color of a theme.
type Field struct {
	Name  string
	Color color.RGBA
}

// Fields lists the theme's colors in declaration order.
func (t *Theme) Fields() []Field {
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	var fields []Field
	for i := 0; i < typ.NumField(); i++ {
		c, ok := val.Field(i).Interface().(color.RGBA)
		if !ok {
			continue
		}
		fields = append(fields, Field{Name: typ.Field(i).Name, Color: c})
	}
	return fields
}
