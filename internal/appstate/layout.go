package appstate

import (
	"image"

	"github.com/example/emotecrop/internal/view"
)

const (
	toolbarHeight = 28
	statusHeight  = 24
	previewHeight = 112 + 2*view.PreviewPadding
	buttonPadding = 8
	buttonGap     = 4
)

// Layout splits the window into its panels, top to bottom.
type Layout struct {
	Toolbar image.Rectangle
	Canvas  image.Rectangle
	Preview image.Rectangle
	Status  image.Rectangle
}

// ComputeLayout places the panels in a width by height window. The canvas
// takes whatever the fixed-height bars leave, and the preview strip is
// dropped when the window is too short to show it.
func ComputeLayout(width, height int) Layout {
	width, height = max(width, 0), max(height, 0)
	preview := previewHeight
	if height-toolbarHeight-statusHeight-preview < preview {
		preview = 0
	}
	l := Layout{
		Toolbar: image.Rect(0, 0, width, min(toolbarHeight, height)),
		Status:  image.Rect(0, max(height-statusHeight, 0), width, height),
	}
	l.Preview = image.Rect(0, l.Status.Min.Y-preview, width, l.Status.Min.Y)
	l.Canvas = image.Rect(0, l.Toolbar.Max.Y, width, max(l.Preview.Min.Y, l.Toolbar.Max.Y))
	return l
}

// Viewport is the canvas size as seen by the view package.
func (l Layout) Viewport() view.Viewport {
	return view.Viewport{Width: l.Canvas.Dx(), Height: l.Canvas.Dy()}
}
