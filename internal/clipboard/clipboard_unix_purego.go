//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// transferProperty is the window property selection data is delivered into.
const transferProperty = "EMOTECROP_CLIPBOARD"

var errTargetUnavailable = errors.New("clipboard owner does not offer the requested target")

var (
	ownerOnce sync.Once
	ownerErr  error
	owner     *x11Owner
)

func x11() (*x11Owner, error) {
	ownerOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			ownerErr = errNoDisplay
			return
		}
		owner, ownerErr = newX11Owner()
	})
	return owner, ownerErr
}

func resetBackend() {
	ownerOnce = sync.Once{}
	ownerErr = nil
	owner = nil
}

// WriteImage takes ownership of CLIPBOARD and serves img as image/png.
func WriteImage(img image.Image) error {
	o, err := x11()
	if err != nil {
		return err
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	return o.offer(data)
}

// ReadImage decodes the first image target the current owner converts.
func ReadImage() (image.Image, error) {
	o, err := x11()
	if err != nil {
		return nil, err
	}
	lastErr := ErrNoImage
	for _, target := range []xproto.Atom{o.atoms.png, o.atoms.webp, o.atoms.bmp} {
		data, err := o.convert(target)
		if err != nil {
			lastErr = err
			continue
		}
		img, err := decodeImage(data)
		if err == nil {
			return img, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ReadText returns the clipboard text, preferring UTF8_STRING.
func ReadText() (string, error) {
	o, err := x11()
	if err != nil {
		return "", err
	}
	for _, target := range []xproto.Atom{o.atoms.utf8, xproto.AtomString} {
		if data, err := o.convert(target); err == nil {
			return trimText(data)
		}
	}
	return "", ErrNoText
}

type x11Atoms struct {
	clipboard, targets, utf8 xproto.Atom
	png, webp, bmp           xproto.Atom
	transfer                 xproto.Atom
}

// x11Owner keeps a hidden window alive to answer selection requests for
// the last image written.
type x11Owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  x11Atoms

	mu  sync.RWMutex
	png []byte
}

func newX11Owner() (*x11Owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	window, err := hiddenWindow(conn, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify)
	if err != nil {
		conn.Close()
		return nil, err
	}
	atoms, err := lookupAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &x11Owner{conn: conn, window: window, atoms: atoms}
	go o.serve()
	return o, nil
}

func hiddenWindow(conn *xgb.Conn, mask uint32) (xproto.Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{mask}).Check()
	return window, err
}

func lookupAtoms(conn *xgb.Conn) (x11Atoms, error) {
	var a x11Atoms
	names := map[string]*xproto.Atom{
		"CLIPBOARD":      &a.clipboard,
		"TARGETS":        &a.targets,
		"UTF8_STRING":    &a.utf8,
		"image/png":      &a.png,
		"image/webp":     &a.webp,
		"image/bmp":      &a.bmp,
		transferProperty: &a.transfer,
	}
	for name, dst := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return x11Atoms{}, fmt.Errorf("intern %s: %w", name, err)
		}
		*dst = reply.Atom
	}
	return a, nil
}

func (o *x11Owner) offer(png []byte) error {
	o.mu.Lock()
	o.png = png
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *x11Owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.png = nil
			o.mu.Unlock()
		}
	}
}

// answer writes the requested target onto the requestor's property and
// notifies it. Unsupported targets are refused with property None.
func (o *x11Owner) answer(e xproto.SelectionRequestEvent) {
	o.mu.RLock()
	png := o.png
	o.mu.RUnlock()

	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	switch {
	case e.Target == o.atoms.targets:
		targets := []xproto.Atom{o.atoms.targets}
		if png != nil {
			targets = append(targets, o.atoms.png)
		}
		buf := make([]byte, 4*len(targets))
		for i, t := range targets {
			xgb.Put32(buf[4*i:], uint32(t))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	case e.Target == o.atoms.png && png != nil:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, o.atoms.png, 8, uint32(len(png)), png)
	default:
		property = xproto.AtomNone
	}

	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// convert asks the current owner for target on a short-lived connection so
// reads never race the owner's event loop.
func (o *x11Owner) convert(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	window, err := hiddenWindow(conn, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, o.atoms.clipboard, target, o.atoms.transfer, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		n, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if n.Property == xproto.AtomNone {
			return nil, errTargetUnavailable
		}
		prop, perr := xproto.GetProperty(conn, true, window, n.Property, xproto.GetPropertyTypeAny, 0, 1<<30).Reply()
		if perr != nil {
			return nil, perr
		}
		return append([]byte(nil), prop.Value...), nil
	}
}
