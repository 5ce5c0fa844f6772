package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/emotecrop/internal/chromakey"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/theme"
	"github.com/example/emotecrop/internal/transform"
)

// Notify holds notification settings.
type Notify struct {
	Export  bool
	Copy    bool
	Failure bool
}

// Rendering holds resampling settings.
type Rendering struct {
	Smooth bool
}

// Crop holds the crop constraints applied to every session.
type Crop struct {
	MinWidth  int
	MinHeight int
	Bounds    transform.BoundsPolicy
	Aspect    string
}

// Export holds the export size presets.
type Export struct {
	Emotes []int
	Badges []int
}

// Config holds the application configuration.
type Config struct {
	Theme     string
	SaveDir   string
	Format    render.Format
	Rendering Rendering
	ChromaKey chromakey.Config
	Crop      Crop
	Export    Export
	Notify    Notify
	Themes    map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:     "",
		Format:    render.PNG,
		Rendering: Rendering{Smooth: true},
		ChromaKey: chromakey.Disabled(),
		Crop: Crop{
			MinWidth:  18,
			MinHeight: 18,
			Bounds:    transform.BoundsClamp,
			Aspect:    "square",
		},
		Export: Export{
			Emotes: append([]int(nil), render.Emotes.Sizes...),
			Badges: append([]int(nil), render.Badges.Sizes...),
		},
		Notify: Notify{
			Export:  true,
			Copy:    false,
			Failure: true,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// Presets returns the configured export presets.
func (c *Config) Presets() []render.Preset {
	return []render.Preset{
		{Name: render.Emotes.Name, Sizes: c.Export.Emotes},
		{Name: render.Badges.Name, Sizes: c.Export.Badges},
	}
}

// Preset looks up an export preset by name.
func (c *Config) Preset(name string) (render.Preset, bool) {
	for _, p := range c.Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return render.Preset{}, false
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "format = %s\n\n", c.Format)

	sb.WriteString("[rendering]\n")
	fmt.Fprintf(&sb, "smooth = %v\n\n", c.Rendering.Smooth)

	sb.WriteString("[chromakey]\n")
	fmt.Fprintf(&sb, "key = %s\n", c.ChromaKey.KeyHex())
	fmt.Fprintf(&sb, "threshold = %g\n\n", c.ChromaKey.Threshold)

	sb.WriteString("[crop]\n")
	fmt.Fprintf(&sb, "min_width = %d\n", c.Crop.MinWidth)
	fmt.Fprintf(&sb, "min_height = %d\n", c.Crop.MinHeight)
	fmt.Fprintf(&sb, "bounds = %s\n", c.Crop.Bounds)
	fmt.Fprintf(&sb, "aspect = %s\n\n", c.Crop.Aspect)

	sb.WriteString("[export]\n")
	fmt.Fprintf(&sb, "emotes = %s\n", render.FormatSizes(c.Export.Emotes))
	fmt.Fprintf(&sb, "badges = %s\n\n", render.FormatSizes(c.Export.Badges))

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "failure = %v\n", c.Notify.Failure)
	sb.WriteString("\n")

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
