package render

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Asset is one exported square raster.
type Asset struct {
	Size  int
	Image *image.NRGBA
}

// Preset is a named list of export sizes.
type Preset struct {
	Name  string
	Sizes []int
}

func (p Preset) String() string {
	return p.Name + " " + FormatSizes(p.Sizes)
}

var (
	Emotes = Preset{Name: "emotes", Sizes: []int{28, 56, 112}}
	Badges = Preset{Name: "badges", Sizes: []int{18, 36, 72}}
)

// DefaultPresets returns copies of the built-in presets.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: Emotes.Name, Sizes: append([]int(nil), Emotes.Sizes...)},
		{Name: Badges.Name, Sizes: append([]int(nil), Badges.Sizes...)},
	}
}

// ParseSizes reads a comma separated size list such as "28,56,112".
func ParseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("size %q: %w", part, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("size %d: %w", n, ErrInvalidSize)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes in %q: %w", s, ErrInvalidSize)
	}
	return sizes, nil
}

// FormatSizes is the inverse of ParseSizes.
func FormatSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, n := range sizes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ExportAt resamples img to each size×size square. Sizes are independent
// of each other and of the crop dimensions.
func ExportAt(img image.Image, sizes []int, smooth bool) ([]Asset, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoSurface
	}
	filter := imaging.Lanczos
	if !smooth {
		filter = imaging.NearestNeighbor
	}
	assets := make([]Asset, 0, len(sizes))
	for _, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("export size %d: %w", size, ErrInvalidSize)
		}
		assets = append(assets, Asset{Size: size, Image: imaging.Resize(img, size, size, filter)})
	}
	return assets, nil
}

// FileName returns base_{size}x{size} with the format's extension.
func FileName(base string, size int, f Format) string {
	return fmt.Sprintf("%s_%dx%d%s", base, size, size, f.Ext())
}
