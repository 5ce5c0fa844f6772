package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/theme"
	"github.com/example/emotecrop/internal/transform"
	"github.com/example/emotecrop/internal/view"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// scene is a copy of the transform state handed to the paint goroutine.
type scene struct {
	srcW, srcH int
	crop       transform.Rect
	rotation   float64
	flip       bool
	scale      float64
	origin     transform.Point
}

var _ view.State = scene{}

func freeze(s *transform.State) scene {
	w, h := s.SourceSize()
	return scene{
		srcW: w, srcH: h,
		crop:     s.Crop(),
		rotation: s.Rotation(),
		flip:     s.Flipped(),
		scale:    s.Scale(),
		origin:   s.Origin(),
	}
}

func (s scene) SourceSize() (int, int)  { return s.srcW, s.srcH }
func (s scene) Crop() transform.Rect    { return s.crop }
func (s scene) Rotation() float64       { return s.rotation }
func (s scene) Flipped() bool           { return s.flip }
func (s scene) Scale() float64          { return s.scale }
func (s scene) Origin() transform.Point { return s.origin }

type paintState struct {
	width, height int
	layout        Layout
	theme         *theme.Theme
	scene         scene
	surface       func() (*image.NRGBA, error)
	version       int
	smooth        bool
	previewSizes  []int
	buttons       []*CacheButton
	hover         int
	status        string
	message       string
	messageUntil  time.Time
}

// painter owns the paint goroutine's caches.
type painter struct {
	previewVersion int
	preview        *image.RGBA
	canvas         *image.RGBA
}

func (p *painter) previewFor(st paintState, surface image.Image) *image.RGBA {
	if surface == nil || len(st.previewSizes) == 0 {
		return nil
	}
	if p.preview != nil && p.previewVersion == st.version {
		return p.preview
	}
	p.preview = nil
	out, err := render.Output(st.scene, surface, st.smooth)
	if err != nil {
		log.Printf("preview: %v", err)
		return nil
	}
	assets, err := render.ExportAt(out, st.previewSizes, st.smooth)
	if err != nil {
		log.Printf("preview: %v", err)
		return nil
	}
	p.preview = view.PreviewSheet(assets, st.theme)
	p.previewVersion = st.version
	return p.preview
}

func (p *painter) canvasFor(r image.Rectangle) *image.RGBA {
	size := r.Size()
	if p.canvas == nil || p.canvas.Bounds().Size() != size {
		p.canvas = image.NewRGBA(image.Rectangle{Max: size})
	}
	return p.canvas
}

func (p *painter) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()
	th := st.theme

	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)

	var surface image.Image
	if st.surface != nil {
		if nrgba, err := st.surface(); err == nil {
			surface = nrgba
		}
	}
	if ctx.Err() != nil {
		return
	}

	if !st.layout.Canvas.Empty() {
		canvas := p.canvasFor(st.layout.Canvas)
		if surface == nil {
			view.Checkerboard(canvas, th.CheckerLight, th.CheckerDark)
			drawCentered(canvas, "Paste an image with Ctrl+V", th.Foreground, labelSize)
		} else if err := view.Render(canvas, st.scene, surface, th); err != nil {
			log.Printf("render: %v", err)
		}
		draw.Draw(dst, st.layout.Canvas, canvas, image.Point{}, draw.Src)
	}
	if ctx.Err() != nil {
		return
	}

	drawToolbar(dst, st)
	drawPreview(dst, st.layout.Preview, p.previewFor(st, surface), th)
	drawStatus(dst, st.layout.Status, st.status, th)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, st.layout.Canvas, st.message, th)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawToolbar(dst *image.RGBA, st paintState) {
	draw.Draw(dst, st.layout.Toolbar, image.NewUniform(st.theme.ToolbarBackground), image.Point{}, draw.Src)
	for i, cb := range st.buttons {
		if cb.Rect().Max.X > st.layout.Toolbar.Max.X {
			break
		}
		state := StateDefault
		if i == st.hover {
			state = StateHover
		}
		cb.Draw(dst, state)
	}
}

func drawPreview(dst *image.RGBA, r image.Rectangle, sheet *image.RGBA, th *theme.Theme) {
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(th.PreviewBackground), image.Point{}, draw.Src)
	if sheet == nil {
		return
	}
	sb := sheet.Bounds()
	at := image.Pt(r.Min.X, r.Max.Y-sb.Dy())
	draw.Draw(dst, sb.Add(at).Intersect(r), sheet, sb.Min, draw.Src)
}

func drawStatus(dst *image.RGBA, r image.Rectangle, text string, th *theme.Theme) {
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	_, h, _, err := MeasureText(text, labelSize)
	if err != nil {
		log.Printf("status: %v", err)
		return
	}
	if err := DrawText(dst, r.Min.X+buttonPadding, r.Min.Y+(r.Dy()-h)/2, text, th.Foreground, labelSize); err != nil {
		log.Printf("status: %v", err)
	}
}

func drawCentered(dst *image.RGBA, text string, col color.Color, size float64) {
	w, h, _, err := MeasureText(text, size)
	if err != nil {
		log.Printf("text: %v", err)
		return
	}
	b := dst.Bounds()
	if err := DrawText(dst, b.Min.X+(b.Dx()-w)/2, b.Min.Y+(b.Dy()-h)/2, text, col, size); err != nil {
		log.Printf("text: %v", err)
	}
}

func drawMessage(dst *image.RGBA, area image.Rectangle, msg string, th *theme.Theme) {
	w, h, _, err := MeasureText(msg, messageSize)
	if err != nil {
		log.Printf("message: %v", err)
		return
	}
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2
	box := image.Rect(x-8, y-8, x+w+8, y+h+8)
	draw.Draw(dst, box, image.NewUniform(th.PreviewBackground), image.Point{}, draw.Over)
	strokeRect(dst, box, th.ButtonBorder)
	if err := DrawText(dst, x, y, msg, th.PreviewText, messageSize); err != nil {
		log.Printf("message: %v", err)
	}
}
