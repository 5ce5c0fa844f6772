package appstate

import (
	"image"
	"testing"

	"golang.org/x/mobile/event/key"

	"github.com/example/emotecrop/internal/editor"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/theme"
	"github.com/example/emotecrop/internal/transform"
)

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(800, 600)
	if l.Toolbar != image.Rect(0, 0, 800, toolbarHeight) {
		t.Fatalf("toolbar %v", l.Toolbar)
	}
	if l.Status != image.Rect(0, 600-statusHeight, 800, 600) {
		t.Fatalf("status %v", l.Status)
	}
	if l.Preview.Dy() != previewHeight || l.Preview.Max.Y != l.Status.Min.Y {
		t.Fatalf("preview %v", l.Preview)
	}
	if l.Canvas.Min.Y != l.Toolbar.Max.Y || l.Canvas.Max.Y != l.Preview.Min.Y {
		t.Fatalf("canvas %v", l.Canvas)
	}
	v := l.Viewport()
	if v.Width != 800 || v.Height != l.Canvas.Dy() {
		t.Fatalf("viewport %+v", v)
	}

	small := ComputeLayout(300, 200)
	if !small.Preview.Empty() {
		t.Fatalf("preview should collapse in a short window: %v", small.Preview)
	}
	if small.Canvas.Dy() != 200-toolbarHeight-statusHeight {
		t.Fatalf("canvas %v", small.Canvas)
	}
}

func TestShortcutFromKey(t *testing.T) {
	tests := []struct {
		name string
		ev   key.Event
		want string
		ok   bool
	}{
		{"ctrl e", key.Event{Code: key.CodeE, Modifiers: key.ModControl}, "Ctrl+E", true},
		{"ctrl shift e", key.Event{Code: key.CodeE, Modifiers: key.ModControl | key.ModShift}, "Ctrl+Shift+E", true},
		{"meta v", key.Event{Code: key.CodeV, Modifiers: key.ModMeta}, "Ctrl+V", true},
		{"ctrl 0", key.Event{Code: key.Code0, Modifiers: key.ModControl}, "Ctrl+0", true},
		{"ctrl 1", key.Event{Code: key.Code1, Modifiers: key.ModControl}, "Ctrl+1", true},
		{"ctrl left", key.Event{Code: key.CodeLeftArrow, Modifiers: key.ModControl}, "Ctrl+Left", true},
		{"alt e", key.Event{Code: key.CodeE, Modifiers: key.ModAlt}, "", false},
		{"escape", key.Event{Code: key.CodeEscape}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ok := shortcutFromKey(tt.ev)
			if ok != tt.ok || sc.String() != tt.want {
				t.Fatalf("got %q %v, want %q %v", sc, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestShortcutsReachCommands(t *testing.T) {
	ed := editor.New()
	sc, _ := shortcutFromKey(key.Event{Code: key.CodeRightArrow, Modifiers: key.ModControl})
	cmd, ok := ed.CommandForShortcut(sc)
	if !ok || cmd.Name != "editor.rotate.right" {
		t.Fatalf("ctrl+right -> %q %v", cmd.Name, ok)
	}
}

func TestPreviewSizes(t *testing.T) {
	got := previewSizes([]render.Preset{render.Emotes, render.Badges, {Name: "dup", Sizes: []int{28, 0}}})
	want := []int{18, 28, 36, 56, 72, 112}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFreezeCopiesState(t *testing.T) {
	st := transform.New(transform.WithMinimum(1, 1), transform.WithLock(transform.Free()))
	st.Load(40, 20, "f")
	st.SetRotation(90)
	sc := freeze(st)
	st.SetRotation(0)
	st.FlipCanvas()
	if sc.Rotation() != 90 || sc.Flipped() {
		t.Fatalf("scene follows live state: %+v", sc)
	}
	if w, h := sc.SourceSize(); w != 40 || h != 20 {
		t.Fatalf("size %dx%d", w, h)
	}
}

func TestPainterCachesPreviewByVersion(t *testing.T) {
	st := transform.New(transform.WithMinimum(1, 1))
	st.Load(32, 32, "p")
	surface := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := range surface.Pix {
		surface.Pix[i] = 200
	}
	ps := paintState{theme: theme.Default(), scene: freeze(st), version: 3, smooth: true, previewSizes: []int{18, 28}}

	p := &painter{}
	first := p.previewFor(ps, surface)
	if first == nil {
		t.Fatal("no preview")
	}
	if again := p.previewFor(ps, surface); again != first {
		t.Fatal("same version should reuse the sheet")
	}
	ps.version++
	if next := p.previewFor(ps, surface); next == first {
		t.Fatal("new version should rebuild the sheet")
	}
	if p.previewFor(ps, nil) != nil {
		t.Fatal("preview without a surface")
	}
}

func TestToolbarButtons(t *testing.T) {
	var fired []string
	buttons := toolbarButtons(theme.Default(), func(c string) { fired = append(fired, c) })
	layoutButtons(buttons, image.Rect(0, 0, 4000, toolbarHeight))
	prev := 0
	for _, b := range buttons {
		r := b.Rect()
		if r.Empty() || r.Min.X < prev {
			t.Fatalf("bad layout %v after %d", r, prev)
		}
		prev = r.Max.X
	}
	idx := buttonAt(buttons, buttons[2].Rect().Min)
	if idx != 2 {
		t.Fatalf("buttonAt = %d", idx)
	}
	buttons[idx].Activate()
	if len(fired) != 1 || fired[0] != "export.badges" {
		t.Fatalf("fired %v", fired)
	}
	if buttonAt(buttons, image.Pt(-5, -5)) != -1 {
		t.Fatal("hit outside the toolbar")
	}

	dst := image.NewRGBA(image.Rect(0, 0, 4000, toolbarHeight))
	buttons[0].Draw(dst, StateHover)
	r := buttons[0].Rect()
	if got := dst.RGBAAt(r.Min.X, r.Min.Y); got != theme.Default().ButtonBorder {
		t.Fatalf("border pixel %v", got)
	}
	if got := dst.RGBAAt(r.Max.X-2, r.Max.Y-2); got != theme.Default().ButtonBackgroundHover {
		t.Fatalf("hover fill %v", got)
	}
}
