package drag

import (
	"fmt"
	"strings"

	"github.com/example/emotecrop/internal/transform"
)

// Handle names an interactive control on the crop rectangle.
type Handle int

const (
	None Handle = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
	Move
)

var handleNames = map[Handle]string{
	None:        "none",
	TopLeft:     "tl",
	TopRight:    "tr",
	BottomLeft:  "bl",
	BottomRight: "br",
	Move:        "move",
}

func (h Handle) String() string {
	if n, ok := handleNames[h]; ok {
		return n
	}
	return fmt.Sprintf("handle(%d)", int(h))
}

// Corners lists the resize handles in drawing order.
func Corners() []Handle {
	return []Handle{TopLeft, TopRight, BottomLeft, BottomRight}
}

// Anchor returns the corner of r that h drags.
func (h Handle) Anchor(r transform.Rect) (transform.Point, bool) {
	switch h {
	case TopLeft:
		return transform.Point{X: r.X, Y: r.Y}, true
	case TopRight:
		return transform.Point{X: r.Right(), Y: r.Y}, true
	case BottomLeft:
		return transform.Point{X: r.X, Y: r.Bottom()}, true
	case BottomRight:
		return transform.Point{X: r.Right(), Y: r.Bottom()}, true
	}
	return transform.Point{}, false
}

// ParseHandle reads a handle name as printed by String.
func ParseHandle(s string) (Handle, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for h, n := range handleNames {
		if n == s && h != None {
			return h, nil
		}
	}
	return None, fmt.Errorf("unknown handle %q", s)
}
