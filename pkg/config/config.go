// Package config loads the optional sprout.yaml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/sprout/pkg/graphics"
)

// FileName is the name of the configuration file looked up by LoadOptional.
const FileName = "sprout.yaml"

// Default viewport used when neither the file nor the host provides one.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Config represents the optional sprout.yaml configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Viewport ViewportConfig `yaml:"viewport"`
	Layout   LayoutConfig   `yaml:"layout"`
	Debug    DebugConfig    `yaml:"debug"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// ViewportConfig is the initial viewport size.
type ViewportConfig struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// LayoutConfig contains layout engine settings.
type LayoutConfig struct {
	// PixelSnap defaults to true when omitted.
	PixelSnap *bool `yaml:"pixel_snap,omitempty"`
}

// DebugConfig contains diagnostics settings.
type DebugConfig struct {
	Verbose        bool `yaml:"verbose,omitempty"`
	LayoutWarnings bool `yaml:"layout_warnings,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root           string
	ModulePath     string
	AppName        string
	Viewport       graphics.Size
	PixelSnap      bool
	Verbose        bool
	LayoutWarnings bool
}

// Default returns the configuration used when there is no sprout.yaml.
func Default() *Resolved {
	return &Resolved{
		AppName:   "sprout_app",
		Viewport:  graphics.Size{Width: DefaultWidth, Height: DefaultHeight},
		PixelSnap: true,
	}
}

// Parse decodes sprout.yaml content.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if cfg.Viewport.Width < 0 || cfg.Viewport.Height < 0 {
		return nil, fmt.Errorf("invalid viewport %gx%g in %s", cfg.Viewport.Width, cfg.Viewport.Height, FileName)
	}
	return &cfg, nil
}

// LoadOptional reads sprout.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Resolve loads sprout.yaml (if present) from dir and fills in defaults.
// The app name defaults to the last element of the module path in dir's
// go.mod, or to the directory name when there is no go.mod.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	r := Default()
	r.Root = dir
	r.ModulePath = modulePath(dir)

	r.AppName = strings.TrimSpace(cfg.App.Name)
	if r.AppName == "" {
		r.AppName = defaultAppName(r.ModulePath, dir)
	}
	if cfg.Viewport.Width > 0 {
		r.Viewport.Width = cfg.Viewport.Width
	}
	if cfg.Viewport.Height > 0 {
		r.Viewport.Height = cfg.Viewport.Height
	}
	if cfg.Layout.PixelSnap != nil {
		r.PixelSnap = *cfg.Layout.PixelSnap
	}
	r.Verbose = cfg.Debug.Verbose
	r.LayoutWarnings = cfg.Debug.LayoutWarnings
	return r, nil
}

// FindProjectRoot walks up from the current directory to the nearest
// directory containing sprout.yaml or go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s or go.mod found", FileName)
		}
		dir = parent
	}
}

func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		prefix, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "sprout_app"
	}
	return base
}
