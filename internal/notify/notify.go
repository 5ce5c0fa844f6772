// Package notify turns editor outcomes into desktop notifications.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/emotecrop/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	EventExport  Event = "export"
	EventCopy    Event = "copy"
	EventFailure Event = "failure"
)

// Events lists every event in configuration order.
func Events() []Event {
	return []Event{EventExport, EventCopy, EventFailure}
}

func (e Event) bit() uint8 {
	for i, ev := range Events() {
		if ev == e {
			return 1 << i
		}
	}
	return 0
}

// Preferences holds the notification title and one fmt template per
// event. A template receives the event detail as its only operand.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in title and templates.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Emote Crop",
		Templates: map[Event]string{
			EventExport:  "Exported %s",
			EventCopy:    "Copied %s to clipboard",
			EventFailure: "%s",
		},
	}
}

// LoadPreferences reads EMOTECROP_NOTIFY_TITLE and
// EMOTECROP_NOTIFY_<EVENT>_TEXT over the defaults.
func LoadPreferences() Preferences {
	p := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("EMOTECROP_NOTIFY_TITLE")); v != "" {
		p.Title = v
	}
	for _, ev := range Events() {
		if v := strings.TrimSpace(os.Getenv(envTemplateKey(ev))); v != "" {
			p.Templates[ev] = v
		}
	}
	return p
}

func envTemplateKey(ev Event) string {
	return "EMOTECROP_NOTIFY_" + strings.ToUpper(string(ev)) + "_TEXT"
}

// Sender delivers one notification to the desktop.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends notifications for the events switched on with Enable.
// A nil Notifier is silent.
type Notifier struct {
	title     string
	templates map[Event]string
	on        uint8
	send      Sender
}

// New returns a Notifier backed by platform.Notify.
func New(p Preferences) *Notifier {
	return NewWithSender(p, platform.Notify)
}

func NewWithSender(p Preferences, send Sender) *Notifier {
	n := &Notifier{title: p.Title, templates: make(map[Event]string, len(p.Templates)), send: send}
	for ev, tmpl := range p.Templates {
		n.templates[ev] = strings.TrimSpace(tmpl)
	}
	return n
}

func (n *Notifier) Enable(ev Event, on bool) {
	if n == nil {
		return
	}
	if on {
		n.on |= ev.bit()
	} else {
		n.on &^= ev.bit()
	}
}

func (n *Notifier) Enabled(ev Event) bool {
	return n != nil && n.on&ev.bit() != 0
}

// Export reports written files. The largest output, written last, becomes
// the icon.
func (n *Notifier) Export(paths []string) {
	if len(paths) == 0 || !n.Enabled(EventExport) {
		return
	}
	var detail string
	if len(paths) == 1 {
		detail = filepath.Base(paths[0])
	} else {
		detail = fmt.Sprintf("%d images to %s", len(paths), filepath.Dir(paths[0]))
	}
	var opts platform.Options
	last, err := filepath.Abs(paths[len(paths)-1])
	if err == nil {
		if _, err := os.Stat(last); err == nil {
			opts.IconPath = last
		}
	}
	n.deliver(EventExport, detail, opts)
}

// Copy reports a clipboard copy, showing img as the icon when given.
func (n *Notifier) Copy(detail string, img image.Image) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	var opts platform.Options
	if img != nil {
		icon, err := writeIcon(img)
		if err != nil {
			log.Printf("notification icon: %v", err)
		} else {
			defer icon.remove()
			opts.IconPath = string(icon)
		}
	}
	n.deliver(EventCopy, detail, opts)
}

// Failure reports message as an urgent notification.
func (n *Notifier) Failure(message string) {
	if !n.Enabled(EventFailure) {
		return
	}
	n.deliver(EventFailure, message, platform.Options{Urgent: true})
}

// body fills the event template with detail. Empty templates and empty
// results disable delivery.
func (n *Notifier) body(ev Event, detail string) (string, bool) {
	tmpl := n.templates[ev]
	if tmpl == "" {
		return "", false
	}
	text := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	return text, text != ""
}

func (n *Notifier) deliver(ev Event, detail string, opts platform.Options) {
	text, ok := n.body(ev, detail)
	if !ok || n.send == nil {
		return
	}
	if err := n.send(n.title, text, opts); err != nil {
		log.Printf("notify %s: %v", ev, err)
	}
}

// iconFile is a temporary PNG shown as a notification icon.
type iconFile string

func writeIcon(img image.Image) (iconFile, error) {
	f, err := os.CreateTemp("", "emotecrop-icon-*.png")
	if err != nil {
		return "", err
	}
	icon := iconFile(f.Name())
	encErr := png.Encode(f, img)
	closeErr := f.Close()
	if encErr != nil || closeErr != nil {
		icon.remove()
		if encErr != nil {
			return "", encErr
		}
		return "", closeErr
	}
	return icon, nil
}

func (f iconFile) remove() {
	if err := os.Remove(string(f)); err != nil && !os.IsNotExist(err) {
		log.Printf("remove %s: %v", f, err)
	}
}
