package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/emotecrop/internal/chromakey"
	"github.com/example/emotecrop/internal/render"
	"github.com/example/emotecrop/internal/theme"
	"github.com/example/emotecrop/internal/transform"
)

type fieldSetter func(cfg *Config, key, value string) error

var sections = map[string]fieldSetter{
	"":          setRootField,
	"rendering": setRenderingField,
	"chromakey": setChromaKeyField,
	"crop":      setCropField,
	"export":    setExportField,
	"notify":    setNotifyField,
}

// Parse reads configuration from an io.Reader. Unknown sections and keys
// are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			currentTheme = nil
			if name, ok := strings.CutPrefix(currentSection, "theme."); ok {
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			}
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}

		if currentTheme != nil {
			if err := currentTheme.Set(key, value); err != nil {
				return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
			}
			continue
		}
		set, ok := sections[currentSection]
		if !ok {
			continue
		}
		if err := set(cfg, strings.ToLower(key), value); err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

// splitKeyValue accepts "key = value" and "Key: value".
func splitKeyValue(line string) (string, string, bool) {
	sep := "="
	if !strings.Contains(line, "=") {
		sep = ":"
	}
	key, value, ok := strings.Cut(line, sep)
	if !ok {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(key), value, true
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "format":
		f, err := render.ParseFormat(value)
		if err != nil {
			return err
		}
		cfg.Format = f
	}
	return nil
}

func setRenderingField(cfg *Config, key, value string) error {
	if key != "smooth" {
		return nil
	}
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	cfg.Rendering.Smooth = b
	return nil
}

func setChromaKeyField(cfg *Config, key, value string) error {
	switch key {
	case "key":
		k, err := chromakey.ParseKey(value)
		if err != nil {
			return err
		}
		cfg.ChromaKey.Key = k
	case "threshold":
		t, err := strconv.ParseFloat(value, 64)
		if err != nil || t < 0 {
			return fmt.Errorf("invalid threshold %q", value)
		}
		cfg.ChromaKey.Threshold = t
	}
	return nil
}

func setCropField(cfg *Config, key, value string) error {
	switch key {
	case "min_width", "min_height":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		if key == "min_width" {
			cfg.Crop.MinWidth = n
		} else {
			cfg.Crop.MinHeight = n
		}
	case "bounds":
		b, err := transform.ParseBounds(value)
		if err != nil {
			return err
		}
		cfg.Crop.Bounds = b
	case "aspect":
		if _, err := transform.ParseAspect(value, 1, 1); err != nil {
			return err
		}
		cfg.Crop.Aspect = value
	}
	return nil
}

func setExportField(cfg *Config, key, value string) error {
	switch key {
	case "emotes", "badges":
		sizes, err := render.ParseSizes(value)
		if err != nil {
			return err
		}
		if key == "emotes" {
			cfg.Export.Emotes = sizes
		} else {
			cfg.Export.Badges = sizes
		}
	}
	return nil
}

func setNotifyField(cfg *Config, key, value string) error {
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	switch key {
	case "export":
		cfg.Notify.Export = b
	case "copy":
		cfg.Notify.Copy = b
	case "failure":
		cfg.Notify.Failure = b
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	return b, nil
}
