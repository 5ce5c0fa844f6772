// Package editor holds one crop session: the loaded source, its transform
// state, the keyed surface cache and the export pipeline.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"net/http"

	"github.com/example/emotecrop/internal/chromakey"
	"github.com/example/emotecrop/internal/clipboard"
	"github.com/example/emotecrop/internal/config"
	"github.com/example/emotecrop/internal/imageio"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/transform"
	"github.com/example/emotecrop/internal/view"
)

var (
	// ErrInvalidImage is returned for nil or zero-area images.
	ErrInvalidImage = errors.New("editor: invalid image")
	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("editor: no image loaded")
	// ErrUnknownCommand is returned by Execute for unregistered names.
	ErrUnknownCommand = errors.New("editor: unknown command")
)

const (
	loadFailedMessage = "Failed loading image."
	historyLimit      = 100
	fitMargin         = 0.05
)

// Notifier receives user-facing outcomes. *notify.Notifier implements it.
type Notifier interface {
	Export(paths []string)
	Copy(detail string, img image.Image)
	Failure(message string)
}

// Clipboard is the system clipboard as seen by the editor.
type Clipboard interface {
	ReadImageOrURL() (image.Image, string, error)
	WriteImage(img image.Image) error
}

type systemClipboard struct{}

func (systemClipboard) ReadImageOrURL() (image.Image, string, error) { return clipboard.ReadImageOrURL() }
func (systemClipboard) WriteImage(img image.Image) error              { return clipboard.WriteImage(img) }

type nopNotifier struct{}

func (nopNotifier) Export([]string)          {}
func (nopNotifier) Copy(string, image.Image) {}
func (nopNotifier) Failure(string)           {}

// Settings are the session-wide options read from configuration.
type Settings struct {
	Smooth    bool
	ChromaKey chromakey.Config
	SaveDir   string
	Format    render.Format
	Presets   []render.Preset
	MinWidth  int
	MinHeight int
	Bounds    transform.BoundsPolicy
	Aspect    string
}

// DefaultSettings matches an empty configuration file.
func DefaultSettings() Settings {
	return SettingsFrom(config.New())
}

// SettingsFrom extracts the editor settings from cfg.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		Smooth:    cfg.Rendering.Smooth,
		ChromaKey: cfg.ChromaKey,
		SaveDir:   cfg.SaveDir,
		Format:    cfg.Format,
		Presets:   cfg.Presets(),
		MinWidth:  cfg.Crop.MinWidth,
		MinHeight: cfg.Crop.MinHeight,
		Bounds:    cfg.Crop.Bounds,
		Aspect:    cfg.Crop.Aspect,
	}
}

// Preset finds an export preset by name.
func (s Settings) Preset(name string) (render.Preset, bool) {
	for _, p := range s.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return render.Preset{}, false
}

// Option configures an Editor.
type Option func(*Editor)

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(e *Editor) { e.settings = s }
}

// WithNotifier sets the receiver of export, copy and failure events.
func WithNotifier(n Notifier) Option {
	return func(e *Editor) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(e *Editor) {
		if c != nil {
			e.clipboard = c
		}
	}
}

// WithHTTPClient sets the client used for URL imports.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Editor) { e.client = c }
}

// WithLogger overrides the package logger for this editor.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithViewport sets the initial window size used to fit loaded images.
func WithViewport(v view.Viewport) Option {
	return func(e *Editor) { e.viewport = v }
}

// WithContext sets the context export commands run under.
func WithContext(ctx context.Context) Option {
	return func(e *Editor) { e.ctx = ctx }
}

// OnExport registers fn to run after every asynchronous export, on the
// export goroutine.
func OnExport(fn func(render.Result, error)) Option {
	return func(e *Editor) { e.onExport = fn }
}

// Editor is one editing session. Its methods must be called from a single
// goroutine; Surface and the exporter may be used concurrently with it.
type Editor struct {
	settings  Settings
	state     *transform.State
	source    chromakey.Source
	comp      *chromakey.Compositor
	exporter  *render.Exporter
	history   *transform.History
	notifier  Notifier
	clipboard Clipboard
	client    *http.Client
	logger    *slog.Logger
	viewport  view.Viewport
	ctx       context.Context
	onExport  func(render.Result, error)

	commands []Command
	byName   map[string]Command
}

// New returns an editor with no image loaded.
func New(opts ...Option) *Editor {
	e := &Editor{
		settings:  DefaultSettings(),
		exporter:  render.NewExporter(),
		history:   transform.NewHistory(historyLimit),
		notifier:  nopNotifier{},
		clipboard: systemClipboard{},
		logger:    Logger(),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = transform.New(
		transform.WithMinimum(e.settings.MinWidth, e.settings.MinHeight),
		transform.WithBounds(e.settings.Bounds),
	)
	if lock, err := transform.ParseAspect(e.settings.Aspect, 0, 0); err == nil {
		e.state.SetAspectRatio(lock)
	}
	e.comp = chromakey.NewCompositor(chromakey.WithLogger(e.logger))
	e.registerCommands()
	return e
}

// State exposes the transform state for rendering and dragging.
func (e *Editor) State() *transform.State { return e.state }

// Settings returns the active settings.
func (e *Editor) Settings() Settings { return e.settings }

// Loaded reports whether an image is loaded.
func (e *Editor) Loaded() bool { return e.source.Valid() }

// Source returns the loaded image, or nil.
func (e *Editor) Source() image.Image { return e.source.Image() }

// Compositor exposes the surface cache.
func (e *Editor) Compositor() *chromakey.Compositor { return e.comp }

// Exporting reports whether an asynchronous export is running.
func (e *Editor) Exporting() bool { return e.exporter.Busy() }

// SetViewport records the window size used when fitting new images.
func (e *Editor) SetViewport(v view.Viewport) { e.viewport = v }

// Viewport returns the last recorded window size.
func (e *Editor) Viewport() view.Viewport { return e.viewport }

// Subscribe forwards state changes to fn until the returned function is
// called.
func (e *Editor) Subscribe(fn func(transform.Change)) func() {
	return e.state.Subscribe(fn)
}

// LoadImage replaces the source with the crop covering the whole image.
// The configured aspect lock applies to later edits. Nil and zero-area images are rejected
// with ErrInvalidImage and leave the session as it was.
func (e *Editor) LoadImage(img image.Image, name string) error {
	if img == nil || img.Bounds().Empty() {
		e.notifier.Failure(loadFailedMessage)
		return ErrInvalidImage
	}
	b := img.Bounds()
	e.comp.Invalidate()
	e.source = chromakey.NewSource(img)
	e.state.Load(b.Dx(), b.Dy(), name)
	if lock, err := transform.ParseAspect(e.settings.Aspect, b.Dx(), b.Dy()); err == nil {
		e.state.SetLock(lock)
	} else {
		e.logger.Warn("ignoring aspect setting", "aspect", e.settings.Aspect, "err", err)
	}
	e.state.SetScale(e.fitScale())
	e.history.Clear()
	e.Checkpoint()
	e.logger.Debug("image loaded", "name", e.state.FileName(), "size", b.Size())
	return nil
}

// LoadFile decodes and loads the image at p, a path or http(s) URL.
func (e *Editor) LoadFile(ctx context.Context, p string) error {
	img, name, err := imageio.Load(ctx, e.client, p)
	if err != nil {
		e.notifier.Failure(loadFailedMessage)
		return fmt.Errorf("load %s: %w", p, err)
	}
	return e.LoadImage(img, name)
}

// Fit zooms so the whole source fits the viewport.
func (e *Editor) Fit() { e.state.SetScale(e.fitScale()) }

func (e *Editor) fitScale() float64 {
	w, h := e.state.SourceSize()
	if e.viewport.Width <= 0 || e.viewport.Height <= 0 || w <= 0 || h <= 0 {
		return 1
	}
	var scale float64
	if w >= h {
		scale = float64(e.viewport.Width) / float64(w)
	} else {
		scale = float64(e.viewport.Height) / float64(h)
	}
	return math.Max(math.Min(scale-fitMargin, 1), transform.MinScale)
}

// SetCrop applies a partial crop edit.
func (e *Editor) SetCrop(ed transform.Edit) { e.state.SetCrop(ed) }

// SetScale sets the view zoom.
func (e *Editor) SetScale(v float64) { e.state.SetScale(v) }

// SetRotation sets the rotation in degrees.
func (e *Editor) SetRotation(deg float64) { e.state.SetRotation(deg) }

// FlipCanvas toggles the horizontal mirror.
func (e *Editor) FlipCanvas() { e.state.FlipCanvas() }

// SetAspectRatio changes the lock and refits the crop.
func (e *Editor) SetAspectRatio(l transform.AspectLock) { e.state.SetAspectRatio(l) }

// SetAspect parses name with transform.ParseAspect against the loaded
// source and applies it.
func (e *Editor) SetAspect(name string) error {
	w, h := e.state.SourceSize()
	lock, err := transform.ParseAspect(name, w, h)
	if err != nil {
		return err
	}
	e.state.SetAspectRatio(lock)
	return nil
}

// SetBounds parses a bounds policy name ("clamp" or "free") and applies it
// to later crop edits.
func (e *Editor) SetBounds(name string) error {
	b, err := transform.ParseBounds(name)
	if err != nil {
		return err
	}
	e.state.SetBounds(b)
	return nil
}

// SetFileName changes the export base name.
func (e *Editor) SetFileName(name string) { e.state.SetFileName(name) }

// FileName returns the export base name.
func (e *Editor) FileName() string { return e.state.FileName() }

// SetChromaKey changes the key configuration for later surfaces.
func (e *Editor) SetChromaKey(cfg chromakey.Config) { e.settings.ChromaKey = cfg }

// Surface returns the keyed source at native resolution. The result is
// shared with the cache and must not be modified.
func (e *Editor) Surface() (*image.NRGBA, error) {
	if !e.source.Valid() {
		return nil, ErrNoImage
	}
	return e.comp.Surface(e.source, e.settings.ChromaKey)
}

// SurfaceFunc captures the current source and key configuration. The
// returned function may run on another goroutine, such as a paint loop.
func (e *Editor) SurfaceFunc() func() (*image.NRGBA, error) {
	src, cfg, comp := e.source, e.settings.ChromaKey, e.comp
	return func() (*image.NRGBA, error) {
		if !src.Valid() {
			return nil, ErrNoImage
		}
		return comp.Surface(src, cfg)
	}
}

// RenderOutput rasterizes the crop at crop size.
func (e *Editor) RenderOutput() (*image.NRGBA, error) {
	surface, err := e.Surface()
	if err != nil {
		return nil, err
	}
	return render.Output(e.state, surface, e.settings.Smooth)
}

// ExportAt renders the crop and resamples it to each size.
func (e *Editor) ExportAt(sizes []int) ([]render.Asset, error) {
	out, err := e.RenderOutput()
	if err != nil {
		return nil, err
	}
	return render.ExportAt(out, sizes, e.settings.Smooth)
}

func (e *Editor) job(preset render.Preset) (render.Job, error) {
	out, err := e.RenderOutput()
	if err != nil {
		return render.Job{}, err
	}
	return render.Job{
		Image:  out,
		Sizes:  preset.Sizes,
		Smooth: e.settings.Smooth,
		Dir:    e.settings.SaveDir,
		Base:   e.state.FileName(),
		Format: e.settings.Format,
	}, nil
}

// Export writes preset in the background. The output raster is taken
// synchronously so later edits do not leak into the files. Completion is
// reported through the notifier.
func (e *Editor) Export(ctx context.Context, preset render.Preset) error {
	job, err := e.job(preset)
	if err != nil {
		return err
	}
	err = e.exporter.Start(ctx, job, func(res render.Result, err error) {
		e.finishExport(preset, res, err)
		if e.onExport != nil {
			e.onExport(res, err)
		}
	})
	if err != nil {
		e.logger.Warn("export rejected", "preset", preset.Name, "err", err)
	}
	return err
}

// ExportSync writes preset and returns once the files exist.
func (e *Editor) ExportSync(ctx context.Context, preset render.Preset) (render.Result, error) {
	job, err := e.job(preset)
	if err != nil {
		return render.Result{}, err
	}
	res, err := e.exporter.Run(ctx, job)
	e.finishExport(preset, res, err)
	return res, err
}

func (e *Editor) finishExport(preset render.Preset, res render.Result, err error) {
	if err != nil {
		e.logger.Error("export failed", "preset", preset.Name, "err", err)
		e.notifier.Failure(fmt.Sprintf("Export failed: %v", err))
		return
	}
	e.logger.Info("exported", "preset", preset.Name, "files", len(res.Paths))
	e.notifier.Export(res.Paths)
}

// CopyToClipboard puts the crop-size output on the clipboard.
func (e *Editor) CopyToClipboard() error {
	out, err := e.RenderOutput()
	if err != nil {
		return err
	}
	if err := e.clipboard.WriteImage(out); err != nil {
		e.notifier.Failure(fmt.Sprintf("Copy failed: %v", err))
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	e.notifier.Copy(e.state.FileName(), out)
	return nil
}

// ImportClipboard loads the clipboard image, or the image behind a copied
// URL.
func (e *Editor) ImportClipboard(ctx context.Context) error {
	img, link, err := e.clipboard.ReadImageOrURL()
	if err != nil {
		e.notifier.Failure(loadFailedMessage)
		return fmt.Errorf("read clipboard: %w", err)
	}
	if link != "" {
		return e.LoadFile(ctx, link)
	}
	return e.LoadImage(img, imageio.DefaultName)
}

func (e *Editor) historySnapshot() transform.Snapshot {
	snap := e.state.Snapshot()
	snap.Scale = 0
	snap.Origin = transform.Point{}
	return snap
}

// Checkpoint records the current transform for Undo. Zoom and pan are not
// part of the history.
func (e *Editor) Checkpoint() {
	if e.source.Valid() {
		e.history.Push(e.historySnapshot())
	}
}

// Undo restores the previous checkpoint and reports whether one existed.
func (e *Editor) Undo() bool {
	snap, ok := e.history.Undo(e.historySnapshot())
	if !ok {
		return false
	}
	return e.restore(snap)
}

// Redo reapplies the last undone checkpoint.
func (e *Editor) Redo() bool {
	snap, ok := e.history.Redo(e.historySnapshot())
	if !ok {
		return false
	}
	return e.restore(snap)
}

func (e *Editor) restore(snap transform.Snapshot) bool {
	snap.Scale = e.state.Scale()
	snap.Origin = e.state.Origin()
	return e.state.Restore(snap)
}

// CanUndo reports whether Undo has anything to restore.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo has anything to restore.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }
