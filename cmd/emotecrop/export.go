package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/example/emotecrop/internal/chromakey"
	"github.com/example/emotecrop/internal/editor"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/transform"
)

type exportCmd struct {
	*root
	fs *flag.FlagSet

	source        string
	preset        string
	sizes         string
	format        string
	dir           string
	name          string
	aspect        string
	crop          string
	rotate        float64
	flip          bool
	key           string
	threshold     float64
	pixelated     bool
	fromClipboard bool
	toClipboard   bool
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.preset, "preset", render.Emotes.Name, "export preset (see the presets command)")
	fs.StringVar(&c.sizes, "sizes", "", "comma separated sizes, overrides -preset")
	fs.StringVar(&c.format, "format", "", "file format: png or webp (default from config)")
	fs.StringVar(&c.dir, "dir", "", "output directory (default from config)")
	fs.StringVar(&c.name, "name", "", "base file name (default from the input)")
	fs.StringVar(&c.aspect, "aspect", "", "aspect lock applied before cropping (square, wide, tall, free, source or w:h)")
	fs.StringVar(&c.crop, "crop", "", "crop rectangle x,y,w,h in source pixels")
	fs.Float64Var(&c.rotate, "rotate", 0, "rotation in degrees")
	fs.BoolVar(&c.flip, "flip", false, "mirror the canvas horizontally")
	fs.StringVar(&c.key, "key", "", "chroma key color #RRGGBB or none (default from config)")
	fs.Float64Var(&c.threshold, "threshold", 0, "chroma key threshold (default from config)")
	fs.BoolVar(&c.pixelated, "pixelated", false, "resample with nearest neighbour instead of smoothing")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "read the source image from the clipboard")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "also copy the cropped image to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch {
	case c.fromClipboard && fs.NArg() == 0:
	case !c.fromClipboard && fs.NArg() == 1:
		c.source = fs.Arg(0)
	default:
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *exportCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *exportCmd) Program() string { return c.root.Program() + " export" }

func (c *exportCmd) settings() (editor.Settings, error) {
	s := editor.SettingsFrom(c.config)
	if c.format != "" {
		f, err := render.ParseFormat(c.format)
		if err != nil {
			return s, err
		}
		s.Format = f
	}
	if c.dir != "" {
		s.SaveDir = c.dir
	}
	if c.key != "" {
		k, err := chromakey.ParseKey(c.key)
		if err != nil {
			return s, err
		}
		s.ChromaKey.Key = k
	}
	if c.threshold > 0 {
		s.ChromaKey.Threshold = c.threshold
	}
	if c.pixelated {
		s.Smooth = false
	}
	return s, nil
}

func (c *exportCmd) resolvePreset(s editor.Settings) (render.Preset, error) {
	if c.sizes != "" {
		sizes, err := render.ParseSizes(c.sizes)
		if err != nil {
			return render.Preset{}, err
		}
		return render.Preset{Name: "custom", Sizes: sizes}, nil
	}
	p, ok := s.Preset(c.preset)
	if !ok {
		return render.Preset{}, fmt.Errorf("unknown preset %q", c.preset)
	}
	return p, nil
}

func (c *exportCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings, err := c.settings()
	if err != nil {
		return err
	}
	preset, err := c.resolvePreset(settings)
	if err != nil {
		return err
	}
	opts := append(c.editorOptions(), editor.WithSettings(settings), editor.WithContext(ctx))
	ed := editor.New(opts...)

	if c.fromClipboard {
		err = ed.ImportClipboard(ctx)
	} else {
		err = ed.LoadFile(ctx, c.source)
	}
	if err != nil {
		return err
	}
	if err := c.apply(ed); err != nil {
		return err
	}

	res, err := ed.ExportSync(ctx, preset)
	if err != nil {
		return fmt.Errorf("export %s: %w", preset.Name, err)
	}
	for _, p := range res.Paths {
		fmt.Fprintln(c.stdout, p)
	}
	if c.toClipboard {
		if err := ed.CopyToClipboard(); err != nil {
			return err
		}
	}
	return nil
}

// apply replays the transform flags on a loaded session.
func (c *exportCmd) apply(ed *editor.Editor) error {
	if c.name != "" {
		ed.SetFileName(c.name)
	}
	if c.aspect != "" {
		if err := ed.SetAspect(c.aspect); err != nil {
			return fmt.Errorf("aspect: %w", err)
		}
	}
	if c.crop != "" {
		e, err := parseCrop(c.crop)
		if err != nil {
			return err
		}
		ed.SetCrop(e)
	}
	if c.rotate != 0 {
		ed.SetRotation(c.rotate)
	}
	if c.flip {
		ed.FlipCanvas()
	}
	return nil
}

var errCropFormat = errors.New("crop wants x,y,w,h")

func parseCrop(s string) (transform.Edit, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != 4 {
		return transform.Edit{}, fmt.Errorf("%w: %q", errCropFormat, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return transform.Edit{}, fmt.Errorf("%w: %q: %v", errCropFormat, s, err)
		}
		v[i] = f
	}
	return transform.Edit{
		X:      transform.Value(v[0]),
		Y:      transform.Value(v[1]),
		Width:  transform.Value(v[2]),
		Height: transform.Value(v[3]),
	}, nil
}
