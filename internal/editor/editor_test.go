package editor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/transform"
	"github.com/example/emotecrop/internal/view"
)

type recordingNotifier struct {
	mu       sync.Mutex
	exports  [][]string
	copies   []string
	failures []string
}

func (n *recordingNotifier) Export(paths []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.exports = append(n.exports, paths)
}

func (n *recordingNotifier) Copy(detail string, _ image.Image) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.copies = append(n.copies, detail)
}

func (n *recordingNotifier) Failure(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, message)
}

type fakeClipboard struct {
	img     image.Image
	link    string
	err     error
	written image.Image
}

func (c *fakeClipboard) ReadImageOrURL() (image.Image, string, error) {
	return c.img, c.link, c.err
}

func (c *fakeClipboard) WriteImage(img image.Image) error {
	c.written = img
	return nil
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 40, A: 255})
		}
	}
	return img
}

func newEditor(t *testing.T, opts ...Option) (*Editor, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	s := DefaultSettings()
	s.SaveDir = t.TempDir()
	base := []Option{WithSettings(s), WithNotifier(n), WithClipboard(&fakeClipboard{err: errors.New("empty")})}
	return New(append(base, opts...)...), n
}

func TestLoadImageRejectsInvalid(t *testing.T) {
	e, n := newEditor(t)
	if err := e.LoadImage(gradient(40, 30), "kappa"); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := e.State().Snapshot()

	for _, img := range []image.Image{nil, image.NewNRGBA(image.Rect(0, 0, 0, 5))} {
		if err := e.LoadImage(img, "broken"); !errors.Is(err, ErrInvalidImage) {
			t.Fatalf("expected ErrInvalidImage, got %v", err)
		}
	}
	if got := e.State().Snapshot(); got != before {
		t.Fatalf("state changed on rejected load: %+v", got)
	}
	if len(n.failures) != 2 || n.failures[0] != "Failed loading image." {
		t.Fatalf("unexpected failures %q", n.failures)
	}
}

func TestLoadImageFitsViewport(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want float64
	}{
		{"wide", 1600, 400, 0.45},
		{"tall", 300, 1200, 0.45},
		{"small", 100, 100, 1},
		{"huge", 20000, 100, transform.MinScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEditor(t, WithViewport(view.Viewport{Width: 800, Height: 600}))
			if err := e.LoadImage(image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.name); err != nil {
				t.Fatalf("load: %v", err)
			}
			if got := e.State().Scale(); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("scale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadImageKeepsFullCrop(t *testing.T) {
	e, _ := newEditor(t)
	if err := e.LoadImage(image.NewNRGBA(image.Rect(0, 0, 1000, 800)), "cat"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := e.State().Crop(), (transform.Rect{Width: 1000, Height: 800}); got != want {
		t.Fatalf("crop after load = %v, want %v", got, want)
	}
	if r, fixed := e.State().Lock().Ratio(); !fixed || r != 1 {
		t.Fatalf("square setting not applied to the lock: %v", e.State().Lock())
	}
	if e.FileName() != "cat" {
		t.Fatalf("file name = %q", e.FileName())
	}

	e.State().SetCrop(transform.Edit{Width: transform.Value(500)})
	if got, want := e.State().Crop(), (transform.Rect{Width: 500, Height: 500}); got != want {
		t.Fatalf("crop after edit = %v, want %v", got, want)
	}
}

func TestExecuteErrors(t *testing.T) {
	e, _ := newEditor(t)
	if err := e.Execute("editor.explode"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if err := e.Execute("editor.canvas.flip"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if err := e.Execute("editor.reset.scale"); err != nil {
		t.Fatalf("reset scale without image: %v", err)
	}
}

func TestRotateCommands(t *testing.T) {
	e, _ := newEditor(t)
	if err := e.LoadImage(gradient(40, 40), "r"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"editor.rotate.right", "editor.rotate.right", "editor.rotate.left"} {
		if err := e.Execute(name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if got := e.State().Rotation(); got != 90 {
		t.Fatalf("rotation = %v", got)
	}
	if err := e.Execute("editor.reset.rotation"); err != nil {
		t.Fatal(err)
	}
	if got := e.State().Rotation(); got != 0 {
		t.Fatalf("rotation after reset = %v", got)
	}
}

func TestAspectCommands(t *testing.T) {
	e, _ := newEditor(t)
	if err := e.LoadImage(gradient(300, 100), "a"); err != nil {
		t.Fatal(err)
	}
	if err := e.Execute("editor.aspect.source"); err != nil {
		t.Fatal(err)
	}
	if r, ok := e.State().Lock().Ratio(); !ok || r != 3 {
		t.Fatalf("source lock = %v %v", r, ok)
	}
	if err := e.Execute("editor.aspect.free"); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.State().Lock().Ratio(); ok {
		t.Fatalf("free command left a fixed lock")
	}
}

func TestUndoRedoKeepsView(t *testing.T) {
	e, _ := newEditor(t)
	if err := e.LoadImage(gradient(40, 40), "u"); err != nil {
		t.Fatal(err)
	}
	if e.CanRedo() {
		t.Fatalf("fresh session has redo")
	}
	if err := e.Execute("editor.canvas.flip"); err != nil {
		t.Fatal(err)
	}
	e.SetScale(2)

	if err := e.Execute("editor.undo"); err != nil {
		t.Fatal(err)
	}
	if e.State().Flipped() {
		t.Fatalf("undo did not restore flip")
	}
	if e.State().Scale() != 2 {
		t.Fatalf("undo changed zoom to %v", e.State().Scale())
	}
	if !e.Redo() || !e.State().Flipped() {
		t.Fatalf("redo did not reapply flip")
	}
	if !e.Undo() || e.State().Flipped() {
		t.Fatalf("second undo did not restore flip")
	}
	if e.Undo() {
		t.Fatalf("undo past the loaded state")
	}
}

func TestUndoAfterNewEdit(t *testing.T) {
	e, _ := newEditor(t)
	if err := e.LoadImage(gradient(40, 40), "u"); err != nil {
		t.Fatal(err)
	}
	_ = e.Execute("editor.rotate.right")
	e.Undo()
	_ = e.Execute("editor.canvas.flip")
	if e.CanRedo() {
		t.Fatalf("new edit should clear redo")
	}
	if !e.Undo() || e.State().Flipped() || e.State().Rotation() != 0 {
		t.Fatalf("undo after new edit: flip=%v rot=%v", e.State().Flipped(), e.State().Rotation())
	}
}

func TestSurfaceIgnoresCropChanges(t *testing.T) {
	e, _ := newEditor(t)
	if _, err := e.Surface(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if err := e.LoadImage(gradient(40, 40), "s"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Surface(); err != nil {
		t.Fatal(err)
	}
	e.SetCrop(transform.Edit{X: transform.Value(4)})
	e.SetRotation(45)
	if _, err := e.Surface(); err != nil {
		t.Fatal(err)
	}
	if hits, misses := e.Compositor().Stats(); hits != 1 || misses != 1 {
		t.Fatalf("stats = %d/%d", hits, misses)
	}
	if err := e.LoadImage(gradient(40, 40), "s"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Surface(); err != nil {
		t.Fatal(err)
	}
	if _, misses := e.Compositor().Stats(); misses != 2 {
		t.Fatalf("new source should miss, misses = %d", misses)
	}
}

func TestRenderOutputMatchesCrop(t *testing.T) {
	e, _ := newEditor(t)
	if err := e.LoadImage(gradient(64, 48), "o"); err != nil {
		t.Fatal(err)
	}
	out, err := e.RenderOutput()
	if err != nil {
		t.Fatal(err)
	}
	c := e.State().Crop()
	if out.Bounds().Dx() != int(c.Width) || out.Bounds().Dy() != int(c.Height) {
		t.Fatalf("output %v for crop %v", out.Bounds(), c)
	}
	assets, err := e.ExportAt([]int{18, 36})
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 2 || assets[1].Image.Bounds().Dx() != 36 {
		t.Fatalf("unexpected assets %+v", assets)
	}
}

func TestExportSyncWritesPreset(t *testing.T) {
	e, n := newEditor(t)
	if err := e.LoadImage(gradient(64, 64), "kappa"); err != nil {
		t.Fatal(err)
	}
	res, err := e.ExportSync(context.Background(), render.Badges)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(res.Paths) != 3 {
		t.Fatalf("paths = %v", res.Paths)
	}
	for _, name := range []string{"kappa_18x18.png", "kappa_36x36.png", "kappa_72x72.png"} {
		if _, err := os.Stat(filepath.Join(e.Settings().SaveDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if len(n.exports) != 1 {
		t.Fatalf("export notifications = %d", len(n.exports))
	}
}

func TestExportAsyncNotifies(t *testing.T) {
	done := make(chan error, 1)
	e, n := newEditor(t, OnExport(func(_ render.Result, err error) { done <- err }))
	if err := e.LoadImage(gradient(64, 64), "pog"); err != nil {
		t.Fatal(err)
	}
	if err := e.Execute("export.emotes"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("export did not finish")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.exports) != 1 || len(n.exports[0]) != 3 {
		t.Fatalf("exports = %v", n.exports)
	}
}

func TestExportFailureNotifies(t *testing.T) {
	e, n := newEditor(t)
	if err := e.LoadImage(gradient(32, 32), "bad"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ExportSync(context.Background(), render.Preset{Name: "broken", Sizes: []int{0}}); err == nil {
		t.Fatal("expected invalid size error")
	}
	if len(n.failures) != 1 {
		t.Fatalf("failures = %q", n.failures)
	}
	if !e.Loaded() {
		t.Fatal("failed export unloaded the image")
	}
}

func TestCopyToClipboard(t *testing.T) {
	clip := &fakeClipboard{}
	e, n := newEditor(t, WithClipboard(clip))
	if err := e.LoadImage(gradient(30, 30), "copyme"); err != nil {
		t.Fatal(err)
	}
	if err := e.Execute("export.clipboard"); err != nil {
		t.Fatal(err)
	}
	if clip.written == nil || clip.written.Bounds().Dx() != 30 {
		t.Fatalf("clipboard got %v", clip.written)
	}
	if len(n.copies) != 1 || n.copies[0] != "copyme" {
		t.Fatalf("copies = %q", n.copies)
	}
}

func TestImportClipboard(t *testing.T) {
	e, n := newEditor(t)
	if err := e.Execute("import.clipboard"); err == nil {
		t.Fatal("expected clipboard error")
	}
	if e.Loaded() || len(n.failures) != 1 {
		t.Fatalf("loaded=%v failures=%q", e.Loaded(), n.failures)
	}

	e, _ = newEditor(t, WithClipboard(&fakeClipboard{img: gradient(20, 20)}))
	if err := e.Execute("import.clipboard"); err != nil {
		t.Fatal(err)
	}
	if !e.Loaded() || e.FileName() != "untitled" {
		t.Fatalf("loaded=%v name=%q", e.Loaded(), e.FileName())
	}
}

func TestImportClipboardURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, gradient(24, 24))
	}))
	defer srv.Close()

	clip := &fakeClipboard{link: srv.URL + "/emotes/catjam.png"}
	e, _ := newEditor(t, WithClipboard(clip), WithHTTPClient(srv.Client()))
	if err := e.ImportClipboard(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w, h := e.State().SourceSize(); w != 24 || h != 24 {
		t.Fatalf("source %dx%d", w, h)
	}
	if e.FileName() != "catjam" {
		t.Fatalf("name = %q", e.FileName())
	}
}

func TestSubscribe(t *testing.T) {
	e, _ := newEditor(t)
	var kinds []transform.ChangeKind
	stop := e.Subscribe(func(c transform.Change) { kinds = append(kinds, c.Kind) })
	e.SetRotation(10)
	stop()
	e.SetRotation(20)
	if len(kinds) != 1 || kinds[0] != transform.ChangeRotation {
		t.Fatalf("changes = %v", kinds)
	}
}

func TestCommandsAndShortcuts(t *testing.T) {
	e, _ := newEditor(t)
	names := map[string]bool{}
	for _, c := range e.Commands() {
		names[c.Name] = true
	}
	for _, want := range []string{
		"export.emotes", "export.badges", "import.clipboard", "export.clipboard",
		"editor.reset.rotation", "editor.reset.scale", "editor.reset.crop", "editor.canvas.flip",
		"editor.rotate.left", "editor.rotate.right", "editor.undo", "editor.redo",
		"editor.aspect.square", "editor.aspect.wide", "editor.aspect.tall", "editor.aspect.free", "editor.aspect.source",
	} {
		if !names[want] {
			t.Errorf("missing command %s", want)
		}
	}

	sc, err := ParseShortcut("ctrl+shift+e")
	if err != nil {
		t.Fatal(err)
	}
	c, ok := e.CommandForShortcut(sc)
	if !ok || c.Name != "export.badges" {
		t.Fatalf("ctrl+shift+e -> %v %v", c.Name, ok)
	}
	if _, ok := e.CommandForShortcut(Shortcut{Ctrl: true, Key: "Q"}); ok {
		t.Fatal("unbound shortcut matched")
	}
}
