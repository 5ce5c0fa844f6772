package main

import (
	"flag"
	"fmt"

	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/transform"
)

type presetsCmd struct {
	*root
	fs *flag.FlagSet
}

func parsePresetsCmd(args []string, r *root) (*presetsCmd, error) {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	c := &presetsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *presetsCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *presetsCmd) Program() string { return c.root.Program() + " presets" }

func (c *presetsCmd) Run() error {
	fmt.Fprintln(c.stdout, "export presets:")
	for _, p := range c.config.Presets() {
		names := make([]string, len(p.Sizes))
		for i, s := range p.Sizes {
			names[i] = render.FileName("name", s, c.config.Format)
		}
		fmt.Fprintf(c.stdout, "  %-8s %-12s %v\n", p.Name, render.FormatSizes(p.Sizes), names)
	}
	fmt.Fprintln(c.stdout, "aspect presets:")
	for _, a := range transform.AspectPresets() {
		fmt.Fprintf(c.stdout, "  %-8s %s\n", a.Name, a.Label)
	}
	fmt.Fprintf(c.stdout, "  %-8s %s\n", "free", "unlocked")
	fmt.Fprintf(c.stdout, "  %-8s %s\n", "source", "image aspect")
	return nil
}
