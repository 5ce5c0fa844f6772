package notify

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/emotecrop/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func recorder(out *[]sent) Sender {
	return func(title, body string, opts platform.Options) error {
		*out = append(*out, sent{title, body, opts})
		return nil
	}
}

func TestDisabledEventsAreSilent(t *testing.T) {
	var got []sent
	n := NewWithSender(DefaultPreferences(), recorder(&got))
	n.Failure("Failed loading image.")
	n.Copy("emote", nil)
	if len(got) != 0 {
		t.Fatalf("sent %d notifications while disabled", len(got))
	}
}

func TestFailureUsesMessageVerbatim(t *testing.T) {
	var got []sent
	n := NewWithSender(DefaultPreferences(), recorder(&got))
	n.Enable(EventFailure, true)
	n.Failure("Failed loading image.")
	if len(got) != 1 || got[0].body != "Failed loading image." || got[0].title != "Emote Crop" {
		t.Fatalf("got %+v", got)
	}
}

func TestExportSummarisesPaths(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"pog_28x28.png", "pog_56x56.png", "pog_112x112.png"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	var got []sent
	n := NewWithSender(DefaultPreferences(), recorder(&got))
	n.Enable(EventExport, true)
	n.Export(paths)
	if len(got) != 1 {
		t.Fatalf("sent %d", len(got))
	}
	if !strings.HasPrefix(got[0].body, "Exported 3 images to ") {
		t.Errorf("body: %q", got[0].body)
	}
	if filepath.Base(got[0].opts.IconPath) != "pog_112x112.png" {
		t.Errorf("icon: %q", got[0].opts.IconPath)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("EMOTECROP_NOTIFY_TITLE", "Crop")
	t.Setenv("EMOTECROP_NOTIFY_COPY_TEXT", "Clipboard has %s")
	prefs := LoadPreferences()
	if prefs.Title != "Crop" {
		t.Errorf("title: %q", prefs.Title)
	}
	if prefs.Templates[EventCopy] != "Clipboard has %s" {
		t.Errorf("copy template: %q", prefs.Templates[EventCopy])
	}
	if prefs.Templates[EventExport] != "Exported %s" {
		t.Errorf("export template changed: %q", prefs.Templates[EventExport])
	}
}

func TestEnableToggles(t *testing.T) {
	var n *Notifier
	n.Enable(EventCopy, true)
	if n.Enabled(EventCopy) {
		t.Fatal("nil notifier reports enabled")
	}

	var got []sent
	n = NewWithSender(DefaultPreferences(), recorder(&got))
	n.Enable(EventCopy, true)
	n.Enable(EventExport, true)
	n.Enable(EventCopy, false)
	if n.Enabled(EventCopy) || !n.Enabled(EventExport) || n.Enabled(EventFailure) {
		t.Fatalf("bits %08b", n.on)
	}
}

func TestCopyWithImageUsesTemporaryIcon(t *testing.T) {
	var got []sent
	n := NewWithSender(DefaultPreferences(), recorder(&got))
	n.Enable(EventCopy, true)
	n.Copy("", image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if len(got) != 1 || got[0].body != "Copied image to clipboard" {
		t.Fatalf("got %+v", got)
	}
	if got[0].opts.IconPath == "" {
		t.Fatal("missing icon")
	}
	if _, err := os.Stat(got[0].opts.IconPath); !os.IsNotExist(err) {
		t.Fatalf("icon left behind: %v", err)
	}
}

func TestEmptyTemplateSuppresses(t *testing.T) {
	var got []sent
	p := DefaultPreferences()
	p.Templates[EventFailure] = "  "
	n := NewWithSender(p, recorder(&got))
	n.Enable(EventFailure, true)
	n.Failure("boom")
	if len(got) != 0 {
		t.Fatalf("got %+v", got)
	}
}
