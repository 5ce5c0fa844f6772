package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/example/emotecrop/internal/chromakey"
)

type shaderCmd struct {
	*root
	fs     *flag.FlagSet
	spirv  string
	layout bool
}

func parseShaderCmd(args []string, r *root) (*shaderCmd, error) {
	fs := flag.NewFlagSet("shader", flag.ExitOnError)
	c := &shaderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.spirv, "spirv", "", "compile the program and write SPIR-V to this file")
	fs.BoolVar(&c.layout, "layout", false, "print the bind group layout instead of the source")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *shaderCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *shaderCmd) Program() string { return c.root.Program() + " shader" }

func (c *shaderCmd) Run() error {
	switch {
	case c.spirv != "":
		return c.writeSPIRV()
	case c.layout:
		for _, u := range chromakey.Uniforms {
			e := u.LayoutEntry()
			fmt.Fprintf(c.stdout, "@group(0) @binding(%d) %s: %s", e.Binding, u.Name, u.Kind)
			if u.Size > 0 {
				fmt.Fprintf(c.stdout, " (%d bytes)", u.Size)
			}
			fmt.Fprintln(c.stdout)
		}
		return nil
	}
	_, err := fmt.Fprint(c.stdout, chromakey.ShaderSource())
	return err
}

func (c *shaderCmd) writeSPIRV() error {
	words, err := chromakey.CompileShader()
	if err != nil {
		return err
	}
	f, err := os.Create(c.spirv)
	if err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, words); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", c.spirv, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.stderr, "wrote %d words to %s\n", len(words), c.spirv)
	return nil
}
