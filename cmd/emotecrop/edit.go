package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/example/emotecrop/internal/appstate"
	"github.com/example/emotecrop/internal/editor"
	"github.com/example/emotecrop/internal/hotkey"
	"github.com/example/emotecrop/internal/render"
)

type editCmd struct {
	*root
	fs     *flag.FlagSet
	source string
	aspect string
	paste  string
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.aspect, "aspect", "", "initial aspect lock (square, wide, tall, free, source or w:h)")
	fs.StringVar(&c.paste, "paste-hotkey", hotkey.DefaultPaste, "global shortcut that pastes the clipboard into the editor (empty disables)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		c.source = fs.Arg(0)
	default:
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *editCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *editCmd) Program() string { return c.root.Program() + " edit" }

func (c *editCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var app *appstate.AppState
	opts := append(c.editorOptions(),
		editor.WithContext(ctx),
		editor.OnExport(func(res render.Result, err error) {
			if app != nil {
				app.ExportDone(res, err)
			}
		}),
	)
	ed := editor.New(opts...)
	if c.source != "" {
		if err := ed.LoadFile(ctx, c.source); err != nil {
			return err
		}
	}
	if c.aspect != "" {
		if err := ed.SetAspect(c.aspect); err != nil {
			return fmt.Errorf("aspect: %w", err)
		}
		ed.Checkpoint()
	}

	app = appstate.New(ed,
		appstate.WithTheme(c.activeTheme),
		appstate.WithTitle(windowTitle(c.root.Program(), ed)),
		appstate.WithOnClose(stop),
	)

	if c.paste != "" {
		sc, err := hotkey.Parse(c.paste)
		if err != nil {
			return fmt.Errorf("paste-hotkey: %w", err)
		}
		b, err := hotkey.Register(sc, func() { app.Execute("import.clipboard") })
		switch {
		case errors.Is(err, hotkey.ErrUnsupported):
			log.Printf("global paste shortcut unavailable: %v", err)
		case err != nil:
			log.Printf("register %s: %v", sc, err)
		default:
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("unregister %s: %v", sc, err)
				}
			}()
		}
	}

	app.Run()
	return nil
}

func windowTitle(program string, ed *editor.Editor) string {
	if !ed.Loaded() {
		return program
	}
	return ed.FileName() + " - " + program
}
