package editor

import (
	"fmt"
	"sort"

	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/transform"
)

// Command is a named editor action with an optional keyboard shortcut.
type Command struct {
	Name        string
	Description string
	Shortcut    Shortcut

	// NeedsImage commands fail with ErrNoImage while nothing is loaded.
	NeedsImage bool
	// History commands skip the automatic checkpoint.
	History bool

	run func(e *Editor) error
}

func (e *Editor) registerCommands() {
	cmds := []Command{
		{Name: "export.emotes", Description: "Export emote images", Shortcut: mustShortcut("Ctrl+E"), NeedsImage: true,
			run: func(e *Editor) error { return e.exportPreset(render.Emotes.Name) }},
		{Name: "export.badges", Description: "Export badge images", Shortcut: mustShortcut("Ctrl+Shift+E"), NeedsImage: true,
			run: func(e *Editor) error { return e.exportPreset(render.Badges.Name) }},
		{Name: "export.clipboard", Description: "Copy the cropped image", Shortcut: mustShortcut("Ctrl+C"), NeedsImage: true,
			run: (*Editor).CopyToClipboard},
		{Name: "import.clipboard", Description: "Paste an image or image URL", Shortcut: mustShortcut("Ctrl+V"),
			run: func(e *Editor) error { return e.ImportClipboard(e.ctx) }},
		{Name: "editor.reset.rotation", Description: "Reset canvas rotation", Shortcut: mustShortcut("Ctrl+R"), NeedsImage: true,
			run: func(e *Editor) error { e.SetRotation(0); return nil }},
		{Name: "editor.reset.scale", Description: "Reset editor scale", Shortcut: mustShortcut("Ctrl+1"),
			run: func(e *Editor) error { e.SetScale(1); return nil }},
		{Name: "editor.reset.crop", Description: "Reset the crop to the largest fit", Shortcut: mustShortcut("Ctrl+0"), NeedsImage: true,
			run: func(e *Editor) error { e.SetAspectRatio(e.state.Lock()); return nil }},
		{Name: "editor.canvas.flip", Description: "Flip canvas", Shortcut: mustShortcut("Ctrl+F"), NeedsImage: true,
			run: func(e *Editor) error { e.FlipCanvas(); return nil }},
		{Name: "editor.rotate.left", Description: "Rotate 90 degrees counter-clockwise", Shortcut: mustShortcut("Ctrl+Left"), NeedsImage: true,
			run: func(e *Editor) error { e.rotateBy(-90); return nil }},
		{Name: "editor.rotate.right", Description: "Rotate 90 degrees clockwise", Shortcut: mustShortcut("Ctrl+Right"), NeedsImage: true,
			run: func(e *Editor) error { e.rotateBy(90); return nil }},
		{Name: "editor.undo", Description: "Undo", Shortcut: mustShortcut("Ctrl+Z"), History: true,
			run: func(e *Editor) error { e.Undo(); return nil }},
		{Name: "editor.redo", Description: "Redo", Shortcut: mustShortcut("Ctrl+Y"), History: true,
			run: func(e *Editor) error { e.Redo(); return nil }},
	}
	for _, p := range transform.AspectPresets() {
		cmds = append(cmds, aspectCommand(p.Name, fmt.Sprintf("Lock the crop to %s", p.Label)))
	}
	cmds = append(cmds,
		aspectCommand("free", "Unlock the crop aspect"),
		aspectCommand("source", "Lock the crop to the image aspect"),
	)

	e.commands = cmds
	e.byName = make(map[string]Command, len(cmds))
	for _, c := range cmds {
		e.byName[c.Name] = c
	}
}

func aspectCommand(name, desc string) Command {
	return Command{
		Name:        "editor.aspect." + name,
		Description: desc,
		NeedsImage:  true,
		run:         func(e *Editor) error { return e.SetAspect(name) },
	}
}

func (e *Editor) rotateBy(deg float64) {
	e.SetRotation(e.state.Rotation() + deg)
}

func (e *Editor) exportPreset(name string) error {
	p, ok := e.settings.Preset(name)
	if !ok {
		return fmt.Errorf("unknown export preset %q", name)
	}
	return e.Export(e.ctx, p)
}

// Commands lists the registered commands sorted by name.
func (e *Editor) Commands() []Command {
	out := append([]Command(nil), e.commands...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Command looks up a registered command.
func (e *Editor) Command(name string) (Command, bool) {
	c, ok := e.byName[name]
	return c, ok
}

// CommandForShortcut returns the command bound to sc.
func (e *Editor) CommandForShortcut(sc Shortcut) (Command, bool) {
	if sc.IsZero() {
		return Command{}, false
	}
	for _, c := range e.commands {
		if c.Shortcut == sc {
			return c, true
		}
	}
	return Command{}, false
}

// Execute runs the named command. Every command except undo and redo is
// followed by a history checkpoint.
func (e *Editor) Execute(name string) error {
	c, ok := e.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if c.NeedsImage && !e.Loaded() {
		return fmt.Errorf("%s: %w", name, ErrNoImage)
	}
	e.logger.Debug("command", "name", name)
	if err := c.run(e); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !c.History {
		e.Checkpoint()
	}
	return nil
}
