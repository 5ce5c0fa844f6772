package chromakey

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// DefaultThreshold is the per-channel containment threshold used when none
// is configured.
const DefaultThreshold = 0.1

// softEdge is the color distance below which pixels are attenuated.
const softEdge = 0.5

// Config selects the key color and threshold. Key channels are normalized
// to [0,1]; an all-zero key disables keying.
type Config struct {
	Key       [3]float64
	Threshold float64
}

// Disabled returns a config that passes every pixel through.
func Disabled() Config {
	return Config{Threshold: DefaultThreshold}
}

// Enabled reports whether the key is set.
func (c Config) Enabled() bool {
	return c.Key[0]+c.Key[1]+c.Key[2] != 0
}

// WithColor returns c keyed on col.
func (c Config) WithColor(col color.Color) Config {
	nc := color.NRGBAModel.Convert(col).(color.NRGBA)
	c.Key = [3]float64{float64(nc.R) / 255, float64(nc.G) / 255, float64(nc.B) / 255}
	return c
}

// KeyHex formats the key as #RRGGBB, or "none" when disabled.
func (c Config) KeyHex() string {
	if !c.Enabled() {
		return "none"
	}
	to8 := func(v float64) uint8 { return uint8(math.Round(math.Min(math.Max(v, 0), 1) * 255)) }
	return fmt.Sprintf("#%02X%02X%02X", to8(c.Key[0]), to8(c.Key[1]), to8(c.Key[2]))
}

func (c Config) String() string {
	return fmt.Sprintf("key=%s threshold=%g", c.KeyHex(), c.Threshold)
}

// ParseKey reads "#RRGGBB", "RRGGBB" or "none".
func ParseKey(s string) ([3]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "off") {
		return [3]float64{}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return [3]float64{}, fmt.Errorf("invalid key color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [3]float64{}, fmt.Errorf("invalid key color %q: %w", s, err)
	}
	return [3]float64{
		float64(v>>16&0xFF) / 255,
		float64(v>>8&0xFF) / 255,
		float64(v&0xFF) / 255,
	}, nil
}

// Verdict is the outcome of keying one pixel.
type Verdict int

const (
	Keep Verdict = iota
	Discard
	Attenuate
)

// Classify keys one normalized color. For Attenuate the returned factor is
// the color distance, which becomes the pixel's alpha.
func (c Config) Classify(r, g, b float64) (Verdict, float64) {
	if !c.Enabled() {
		return Keep, 1
	}
	dr, dg, db := r-c.Key[0], g-c.Key[1], b-c.Key[2]
	if math.Abs(dr) < c.Threshold && math.Abs(dg) < c.Threshold && math.Abs(db) < c.Threshold {
		return Discard, 0
	}
	d := math.Sqrt(dr*dr + dg*dg + db*db)
	if d < softEdge {
		return Attenuate, d
	}
	return Keep, 1
}
