package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"log"

	"github.com/example/emotecrop/internal/theme"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button is a clickable toolbar element.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		img := image.NewRGBA(cb.Button.Rect())
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

// CommandButton runs an editor command when clicked.
type CommandButton struct {
	Label   string
	Command string
	Theme   *theme.Theme
	Trigger func(command string)

	rect image.Rectangle
}

func (b *CommandButton) Draw(dst *image.RGBA, state ButtonState) {
	th := b.Theme
	if th == nil {
		th = theme.Default()
	}
	bg := th.ButtonBackground
	switch state {
	case StateHover:
		bg = th.ButtonBackgroundHover
	case StatePressed:
		bg = th.ButtonBackgroundPress
	}
	draw.Draw(dst, b.rect, image.NewUniform(bg), image.Point{}, draw.Src)
	strokeRect(dst, b.rect, th.ButtonBorder)
	_, h, _, err := MeasureText(b.Label, labelSize)
	if err != nil {
		log.Printf("button %s: %v", b.Command, err)
		return
	}
	y := b.rect.Min.Y + (b.rect.Dy()-h)/2
	if err := DrawText(dst, b.rect.Min.X+buttonPadding, y, b.Label, th.ButtonText, labelSize); err != nil {
		log.Printf("button %s: %v", b.Command, err)
	}
}

func (b *CommandButton) Rect() image.Rectangle { return b.rect }

func (b *CommandButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *CommandButton) Activate() {
	if b.Trigger != nil {
		b.Trigger(b.Command)
	}
}

// Width is the label width plus padding.
func (b *CommandButton) Width() int {
	w, _, _, err := MeasureText(b.Label, labelSize)
	if err != nil {
		return 2 * buttonPadding
	}
	return w + 2*buttonPadding
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	u := image.NewUniform(c)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, edge.Intersect(dst.Bounds()), u, image.Point{}, draw.Src)
	}
}

// toolbarButtons returns the buttons shown across the top bar.
func toolbarButtons(th *theme.Theme, trigger func(string)) []*CacheButton {
	specs := []struct{ label, command string }{
		{"Paste ^V", "import.clipboard"},
		{"Emotes ^E", "export.emotes"},
		{"Badges ^+E", "export.badges"},
		{"Copy ^C", "export.clipboard"},
		{"Flip ^F", "editor.canvas.flip"},
		{"Rot L", "editor.rotate.left"},
		{"Rot R", "editor.rotate.right"},
		{"1:1", "editor.aspect.square"},
		{"2:1", "editor.aspect.wide"},
		{"1:2", "editor.aspect.tall"},
		{"Free", "editor.aspect.free"},
		{"Source", "editor.aspect.source"},
		{"Undo ^Z", "editor.undo"},
		{"Redo ^Y", "editor.redo"},
	}
	buttons := make([]*CacheButton, 0, len(specs))
	for _, s := range specs {
		buttons = append(buttons, &CacheButton{Button: &CommandButton{
			Label: s.label, Command: s.command, Theme: th, Trigger: trigger,
		}})
	}
	return buttons
}

// layoutButtons assigns rectangles left to right inside bar.
func layoutButtons(buttons []*CacheButton, bar image.Rectangle) {
	x := bar.Min.X + buttonGap
	for _, cb := range buttons {
		w := 2 * buttonPadding
		if cmd, ok := cb.Button.(*CommandButton); ok {
			w = cmd.Width()
		}
		cb.SetRect(image.Rect(x, bar.Min.Y+buttonGap/2, x+w, bar.Max.Y-buttonGap/2))
		x += w + buttonGap
	}
}

// buttonAt returns the index of the button containing p, or -1.
func buttonAt(buttons []*CacheButton, p image.Point) int {
	for i, cb := range buttons {
		if p.In(cb.Rect()) {
			return i
		}
	}
	return -1
}
