// Package hotkey binds a system-wide shortcut that pastes the clipboard
// image into the running editor.
package hotkey

import (
	"errors"
	"fmt"

	"github.com/example/emotecrop/internal/editor"
)

// DefaultPaste is the chord registered when none is configured.
const DefaultPaste = "Ctrl+Shift+V"

// ErrUnsupported is returned by Register on platforms without a global
// hotkey backend.
var ErrUnsupported = errors.New("hotkey: global shortcuts are not supported on this platform")

// Parse reads a chord for global registration. Global chords need at
// least one modifier.
func Parse(s string) (editor.Shortcut, error) {
	sc, err := editor.ParseShortcut(s)
	if err != nil {
		return editor.Shortcut{}, err
	}
	if !sc.Ctrl && !sc.Shift {
		return editor.Shortcut{}, fmt.Errorf("global shortcut %q needs Ctrl or Shift", s)
	}
	return sc, nil
}
