//go:build ((linux || darwin) && cgo) || windows

package hotkey

import (
	"fmt"
	"log"
	"sync"

	"golang.design/x/hotkey"

	"github.com/example/emotecrop/internal/editor"
)

var keys = map[string]hotkey.Key{
	"A": hotkey.KeyA,
	"B": hotkey.KeyB,
	"C": hotkey.KeyC,
	"D": hotkey.KeyD,
	"E": hotkey.KeyE,
	"F": hotkey.KeyF,
	"G": hotkey.KeyG,
	"H": hotkey.KeyH,
	"I": hotkey.KeyI,
	"J": hotkey.KeyJ,
	"K": hotkey.KeyK,
	"L": hotkey.KeyL,
	"M": hotkey.KeyM,
	"N": hotkey.KeyN,
	"O": hotkey.KeyO,
	"P": hotkey.KeyP,
	"Q": hotkey.KeyQ,
	"R": hotkey.KeyR,
	"S": hotkey.KeyS,
	"T": hotkey.KeyT,
	"U": hotkey.KeyU,
	"V": hotkey.KeyV,
	"W": hotkey.KeyW,
	"X": hotkey.KeyX,
	"Y": hotkey.KeyY,
	"Z": hotkey.KeyZ,
	"0": hotkey.Key0,
	"1": hotkey.Key1,
	"2": hotkey.Key2,
	"3": hotkey.Key3,
	"4": hotkey.Key4,
	"5": hotkey.Key5,
	"6": hotkey.Key6,
	"7": hotkey.Key7,
	"8": hotkey.Key8,
	"9": hotkey.Key9,

	"Left":  hotkey.KeyLeft,
	"Right": hotkey.KeyRight,
	"Up":    hotkey.KeyUp,
	"Down":  hotkey.KeyDown,
}

func modifiers(sc editor.Shortcut) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if sc.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if sc.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	return mods
}

// Binding is a registered global shortcut.
type Binding struct {
	hk   *hotkey.Hotkey
	done chan struct{}
	once sync.Once
}

// Register grabs sc system-wide and calls fn on every key press until
// Close. fn runs on the listener goroutine.
func Register(sc editor.Shortcut, fn func()) (*Binding, error) {
	key, ok := keys[sc.Key]
	if !ok {
		return nil, fmt.Errorf("hotkey: unsupported key %q", sc.Key)
	}
	hk := hotkey.New(modifiers(sc), key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register %s: %w", sc, err)
	}
	b := &Binding{hk: hk, done: make(chan struct{})}
	go b.listen(fn)
	log.Printf("global hotkey %s registered", sc)
	return b, nil
}

func (b *Binding) listen(fn func()) {
	for {
		select {
		case <-b.done:
			return
		case <-b.hk.Keydown():
			if fn != nil {
				fn()
			}
		}
	}
}

// Close releases the shortcut.
func (b *Binding) Close() error {
	var err error
	b.once.Do(func() {
		close(b.done)
		err = b.hk.Unregister()
	})
	return err
}
