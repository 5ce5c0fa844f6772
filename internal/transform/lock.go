package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AspectLock holds the crop aspect-ratio policy. The zero value is Free.
// Ratios are expressed as width divided by height.
type AspectLock struct {
	ratio float64
}

// Free returns an unlocked aspect policy.
func Free() AspectLock {
	return AspectLock{}
}

// Fixed locks the crop to ratio. Non-positive or non-finite ratios unlock.
func Fixed(ratio float64) AspectLock {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return Free()
	}
	return AspectLock{ratio: ratio}
}

// Ratio returns the locked ratio and whether the lock is fixed.
func (l AspectLock) Ratio() (float64, bool) {
	return l.ratio, l.ratio > 0
}

func (l AspectLock) String() string {
	if l.ratio <= 0 {
		return "free"
	}
	for _, p := range AspectPresets() {
		if p.Ratio == l.ratio {
			return p.Name
		}
	}
	return strconv.FormatFloat(l.ratio, 'g', 6, 64)
}

// AspectPreset is a named ratio offered by the editor.
type AspectPreset struct {
	Name  string
	Ratio float64
	Label string
}

// AspectPresets lists the fixed presets. "free" and "source" are handled by
// ParseAspect because they carry no constant ratio.
func AspectPresets() []AspectPreset {
	return []AspectPreset{
		{Name: "square", Ratio: 1, Label: "1 / 1"},
		{Name: "wide", Ratio: 2, Label: "2 / 1"},
		{Name: "tall", Ratio: 0.5, Label: "1 / 2"},
	}
}

// ParseAspect reads a lock from a preset name, "free", "source", a
// "w:h" or "w/h" pair, or a decimal ratio. srcW and srcH resolve "source".
func ParseAspect(s string, srcW, srcH int) (AspectLock, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "free", "none":
		return Free(), nil
	case "source":
		if srcW <= 0 || srcH <= 0 {
			return Free(), fmt.Errorf("source aspect needs a loaded image")
		}
		return Fixed(float64(srcW) / float64(srcH)), nil
	}
	for _, p := range AspectPresets() {
		if p.Name == s {
			return Fixed(p.Ratio), nil
		}
	}
	if w, h, ok := cutPair(s); ok {
		fw, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return Free(), fmt.Errorf("invalid aspect %q: %w", s, err)
		}
		fh, err := strconv.ParseFloat(h, 64)
		if err != nil {
			return Free(), fmt.Errorf("invalid aspect %q: %w", s, err)
		}
		if fw <= 0 || fh <= 0 {
			return Free(), fmt.Errorf("invalid aspect %q: sides must be positive", s)
		}
		return Fixed(fw / fh), nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Free(), fmt.Errorf("invalid aspect %q: %w", s, err)
	}
	if r <= 0 {
		return Free(), fmt.Errorf("invalid aspect %q: ratio must be positive", s)
	}
	return Fixed(r), nil
}

func cutPair(s string) (string, string, bool) {
	for _, sep := range []string{":", "/"} {
		if a, b, ok := strings.Cut(s, sep); ok {
			return strings.TrimSpace(a), strings.TrimSpace(b), true
		}
	}
	return "", "", false
}
