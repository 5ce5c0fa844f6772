//go:build !(((linux || darwin) && cgo) || windows)

package hotkey

import "github.com/example/emotecrop/internal/editor"

// Binding is a registered global shortcut.
type Binding struct{}

// Register always fails with ErrUnsupported on this platform.
func Register(editor.Shortcut, func()) (*Binding, error) {
	return nil, ErrUnsupported
}

// Close is a no-op.
func (b *Binding) Close() error { return nil }
