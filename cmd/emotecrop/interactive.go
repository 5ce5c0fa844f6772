package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/example/emotecrop/internal/chromakey"
	"github.com/example/emotecrop/internal/editor"
	"github.com/example/emotecrop/internal/render"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

type interactiveCmd struct {
	*root
	fs     *flag.FlagSet
	execs  commandList
	source string

	ctx    context.Context
	ed     *editor.Editor
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	c := newInteractiveCmd(r)
	c.fs = fs
	fs.Usage = usageFunc(c)
	fs.Var(&c.execs, "e", "execute a command in immediate mode (may be specified multiple times)")
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

func newInteractiveCmd(r *root) *interactiveCmd {
	c := &interactiveCmd{root: r, ctx: context.Background(), stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if r != nil {
		c.stdout, c.stderr = r.stdout, r.stderr
	}
	return c
}

func (c *interactiveCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *interactiveCmd) Program() string { return c.root.Program() + " interactive" }

func (c *interactiveCmd) session() *editor.Editor {
	if c.ed == nil {
		opts := append(c.editorOptions(), editor.WithContext(c.ctx))
		c.ed = editor.New(opts...)
	}
	return c.ed
}

func (c *interactiveCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	c.ctx = ctx

	if c.source != "" {
		if err := c.session().LoadFile(ctx, c.source); err != nil {
			return err
		}
		c.printState(c.ed)
	}
	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(c.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(c.stdin)
	for {
		fmt.Fprint(c.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := c.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(c.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

// executeLine runs one REPL line. done is true when the session should end.
func (c *interactiveCmd) executeLine(line string) (done bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	ed := c.session()
	name, rest := strings.ToLower(args[0]), args[1:]

	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		c.printHelp(ed)
		return false, nil
	case "load", "open":
		if len(rest) != 1 {
			return false, fmt.Errorf("usage: load <file|url>")
		}
		if err := ed.LoadFile(c.ctx, rest[0]); err != nil {
			return false, err
		}
		c.printState(ed)
		return false, nil
	case "paste":
		if err := ed.ImportClipboard(c.ctx); err != nil {
			return false, err
		}
		c.printState(ed)
		return false, nil
	case "state":
		c.printState(ed)
		return false, nil
	case "undo":
		if !ed.Undo() {
			return false, fmt.Errorf("nothing to undo")
		}
		c.printState(ed)
		return false, nil
	case "redo":
		if !ed.Redo() {
			return false, fmt.Errorf("nothing to redo")
		}
		c.printState(ed)
		return false, nil
	}

	// The registered export commands run in the background; the REPL waits.
	if preset, ok := strings.CutPrefix(name, "export."); ok && preset != "clipboard" {
		return false, c.export(ed, []string{preset})
	}
	if cmd, ok := ed.Command(args[0]); ok {
		if err := ed.Execute(cmd.Name); err != nil {
			return false, err
		}
		c.printState(ed)
		return false, nil
	}

	if !ed.Loaded() && name != "key" && name != "bounds" {
		return false, fmt.Errorf("%s: %w", name, editor.ErrNoImage)
	}
	if err := c.edit(ed, name, rest); err != nil {
		return false, err
	}
	ed.Checkpoint()
	c.printState(ed)
	return false, nil
}

// edit handles the commands that take arguments.
func (c *interactiveCmd) edit(ed *editor.Editor, name string, rest []string) error {
	switch name {
	case "crop":
		e, err := parseCrop(strings.Join(rest, ","))
		if err != nil {
			return err
		}
		ed.SetCrop(e)
	case "scale", "zoom":
		v, err := oneFloat(name, rest)
		if err != nil {
			return err
		}
		ed.SetScale(v)
	case "rotate":
		v, err := oneFloat(name, rest)
		if err != nil {
			return err
		}
		ed.SetRotation(v)
	case "flip":
		ed.FlipCanvas()
	case "aspect":
		if len(rest) != 1 {
			return fmt.Errorf("usage: aspect <square|wide|tall|free|source|w:h>")
		}
		return ed.SetAspect(rest[0])
	case "bounds":
		if len(rest) != 1 {
			return fmt.Errorf("usage: bounds <clamp|free>")
		}
		return ed.SetBounds(rest[0])
	case "name":
		if len(rest) != 1 {
			return fmt.Errorf("usage: name <base>")
		}
		ed.SetFileName(rest[0])
	case "key":
		if len(rest) < 1 || len(rest) > 2 {
			return fmt.Errorf("usage: key <#RRGGBB|none> [threshold]")
		}
		cfg := ed.Settings().ChromaKey
		k, err := chromakey.ParseKey(rest[0])
		if err != nil {
			return err
		}
		cfg.Key = k
		if len(rest) == 2 {
			t, err := strconv.ParseFloat(rest[1], 64)
			if err != nil {
				return fmt.Errorf("threshold: %w", err)
			}
			cfg.Threshold = t
		}
		ed.SetChromaKey(cfg)
	case "export":
		return c.export(ed, rest)
	case "copy":
		return ed.CopyToClipboard()
	default:
		return fmt.Errorf("%w: %s", editor.ErrUnknownCommand, name)
	}
	return nil
}

func (c *interactiveCmd) export(ed *editor.Editor, rest []string) error {
	if len(rest) != 1 {
		return fmt.Errorf("usage: export <preset|sizes>")
	}
	preset, ok := ed.Settings().Preset(rest[0])
	if !ok {
		sizes, err := render.ParseSizes(rest[0])
		if err != nil {
			return fmt.Errorf("unknown preset %q", rest[0])
		}
		preset = render.Preset{Name: "custom", Sizes: sizes}
	}
	res, err := ed.ExportSync(c.ctx, preset)
	if err != nil {
		return err
	}
	for _, p := range res.Paths {
		fmt.Fprintln(c.stdout, p)
	}
	return nil
}

func oneFloat(name string, rest []string) (float64, error) {
	if len(rest) != 1 {
		return 0, fmt.Errorf("usage: %s <value>", name)
	}
	v, err := strconv.ParseFloat(rest[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func (c *interactiveCmd) printState(ed *editor.Editor) {
	if !ed.Loaded() {
		fmt.Fprintln(c.stdout, "no image")
		return
	}
	st := ed.State()
	w, h := st.SourceSize()
	fmt.Fprintf(c.stdout, "%s %dx%d crop=%s rotation=%g flip=%t aspect=%s scale=%g\n",
		ed.FileName(), w, h, st.Crop(), st.Rotation(), st.Flipped(), st.Lock(), st.Scale())
}

func (c *interactiveCmd) printHelp(ed *editor.Editor) {
	fmt.Fprintln(c.stdout, "load <file|url>, paste, state, crop x y w h, scale v, rotate deg, flip,")
	fmt.Fprintln(c.stdout, "aspect <name|w:h>, bounds <clamp|free>, name <base>,")
	fmt.Fprintln(c.stdout, "key <#RRGGBB|none> [threshold], export <preset|sizes>, copy, undo, redo, exit")
	for _, cmd := range ed.Commands() {
		sc := ""
		if !cmd.Shortcut.IsZero() {
			sc = " (" + cmd.Shortcut.String() + ")"
		}
		fmt.Fprintf(c.stdout, "  %s%s: %s\n", cmd.Name, sc, cmd.Description)
	}
}
