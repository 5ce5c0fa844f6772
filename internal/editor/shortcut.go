package editor

import (
	"fmt"
	"strings"
)

// Shortcut is a key chord bound to a command. Key is an upper-case
// letter, a digit, or one of "Left", "Right", "Up", "Down".
type Shortcut struct {
	Ctrl  bool
	Shift bool
	Key   string
}

// IsZero reports whether no key is bound.
func (s Shortcut) IsZero() bool { return s.Key == "" }

func (s Shortcut) String() string {
	if s.Key == "" {
		return ""
	}
	var parts []string
	if s.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if s.Shift {
		parts = append(parts, "Shift")
	}
	return strings.Join(append(parts, s.Key), "+")
}

var namedKeys = map[string]string{
	"left":  "Left",
	"right": "Right",
	"up":    "Up",
	"down":  "Down",
}

// ParseShortcut reads chords such as "Ctrl+Shift+E" or "ctrl+left".
func ParseShortcut(s string) (Shortcut, error) {
	var sc Shortcut
	fields := strings.Split(strings.TrimSpace(s), "+")
	for i, f := range fields {
		f = strings.TrimSpace(f)
		last := i == len(fields)-1
		switch lower := strings.ToLower(f); {
		case !last && (lower == "ctrl" || lower == "control"):
			sc.Ctrl = true
		case !last && lower == "shift":
			sc.Shift = true
		case !last:
			return Shortcut{}, fmt.Errorf("unknown modifier %q in %q", f, s)
		default:
			key, err := normalizeKey(f)
			if err != nil {
				return Shortcut{}, fmt.Errorf("shortcut %q: %w", s, err)
			}
			sc.Key = key
		}
	}
	return sc, nil
}

func normalizeKey(k string) (string, error) {
	if named, ok := namedKeys[strings.ToLower(k)]; ok {
		return named, nil
	}
	if len(k) == 1 {
		c := k[0]
		switch {
		case c >= 'a' && c <= 'z':
			return string(c - 'a' + 'A'), nil
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported key %q", k)
}

func mustShortcut(s string) Shortcut {
	sc, err := ParseShortcut(s)
	if err != nil {
		panic(err)
	}
	return sc
}
