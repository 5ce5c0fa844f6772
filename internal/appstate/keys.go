package appstate

import (
	"golang.org/x/mobile/event/key"

	"github.com/example/emotecrop/internal/editor"
)

var arrowKeys = map[key.Code]string{
	key.CodeLeftArrow:  "Left",
	key.CodeRightArrow: "Right",
	key.CodeUpArrow:    "Up",
	key.CodeDownArrow:  "Down",
}

// shortcutFromKey converts a key press to an editor chord. Meta counts as
// Ctrl so the macOS command key works. Chords with Alt never match.
func shortcutFromKey(e key.Event) (editor.Shortcut, bool) {
	if e.Modifiers&key.ModAlt != 0 {
		return editor.Shortcut{}, false
	}
	sc := editor.Shortcut{
		Ctrl:  e.Modifiers&(key.ModControl|key.ModMeta) != 0,
		Shift: e.Modifiers&key.ModShift != 0,
	}
	switch {
	case e.Code >= key.CodeA && e.Code <= key.CodeZ:
		sc.Key = string(rune('A' + (e.Code - key.CodeA)))
	case e.Code >= key.Code1 && e.Code <= key.Code9:
		sc.Key = string(rune('1' + (e.Code - key.Code1)))
	case e.Code == key.Code0:
		sc.Key = "0"
	default:
		name, ok := arrowKeys[e.Code]
		if !ok {
			return editor.Shortcut{}, false
		}
		sc.Key = name
	}
	return sc, true
}
