package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/example/emotecrop/internal/config"
	"github.com/example/emotecrop/internal/editor"
	"github.com/example/emotecrop/internal/notify"
	"github.com/example/emotecrop/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	notifier      *notify.Notifier
	config        *config.Config
	exportAlerts  bool
	copyAlerts    bool
	failureAlerts bool
	verbose       bool
	themeName     string
	activeTheme   *theme.Theme
	stdout        io.Writer
	stderr        io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	r := newRootWith(cfg, os.Stdout, os.Stderr)
	r.notifier = notify.New(notify.LoadPreferences())
	return r
}

// newRootWith builds the command tree without touching the environment's
// config file or notification backend.
func newRootWith(cfg *config.Config, stdout, stderr io.Writer) *root {
	r := &root{
		fs:      flag.NewFlagSet("emotecrop", flag.ExitOnError),
		program: "emotecrop",
		config:  cfg,
		stdout:  stdout,
		stderr:  stderr,
	}
	r.fs.SetOutput(stderr)
	// Precedence: CLI > Env > Config > Default
	r.fs.BoolVar(&r.exportAlerts, "notify-export", envBool("EMOTECROP_NOTIFY_EXPORT", cfg.Notify.Export), "show a desktop notification after exporting")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", envBool("EMOTECROP_NOTIFY_COPY", cfg.Notify.Copy), "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.failureAlerts, "notify-failure", envBool("EMOTECROP_NOTIFY_FAILURE", cfg.Notify.Failure), "show a desktop notification when loading or exporting fails")
	r.fs.BoolVar(&r.verbose, "verbose", false, "log editor activity to stderr")
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.Usage = usageFunc(r)
	return r
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring %s=%q: %v\n", key, v, err)
		return fallback
	}
	return b
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
		r.notifier.Enable(notify.EventFailure, r.failureAlerts)
	}
	if r.verbose {
		editor.SetLogger(slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "presets":
		cmd, err = parsePresetsCmd(subArgs, r)
	case "shader":
		cmd, err = parseShaderCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// resolveTheme picks the theme named by the flag, EMOTECROP_THEME or the
// config file, in that order.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("EMOTECROP_THEME")
	}
	if name == "" {
		name = r.config.Theme
	}
	if t, ok := r.config.Themes[name]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && name != "default" {
			fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

// editorOptions are the options every subcommand's session starts from.
func (r *root) editorOptions() []editor.Option {
	opts := []editor.Option{editor.WithSettings(editor.SettingsFrom(r.config))}
	if r.notifier != nil {
		opts = append(opts, editor.WithNotifier(r.notifier))
	}
	return opts
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
