package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/sprout/cmd/sprout/internal/demo"
	"github.com/go-drift/sprout/cmd/sprout/internal/term"
	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/engine"
	"github.com/go-drift/sprout/pkg/graphics"
)

func init() {
	RegisterCommand(&Command{
		Name:  "tree",
		Short: "Print the demo's widget tree",
		Long: `Render one frame of the demo without a terminal and print the
laid-out widget tree as JSON, the same document the debug server
serves at /tree.

Flags:
  --size WxH   Viewport in cells (default: the configured viewport)`,
		Usage: "sprout tree [--size WxH]",
		Run:   runTree,
	})
}

func runTree(args []string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}
	installErrorHandler(cfg)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--size":
			if i+1 >= len(args) {
				return fmt.Errorf("--size requires a value like 80x24")
			}
			size, err := parseSize(args[i+1])
			if err != nil {
				return err
			}
			cfg.Viewport = size
			i++
		default:
			return fmt.Errorf("unknown flag %q", args[i])
		}
	}

	e := engine.New(cfg, core.Of(demo.App{Title: cfg.AppName}), term.CellMeasurer{})
	if _, err := e.Frame(); err != nil {
		return err
	}
	return e.DumpTree(output)
}

func parseSize(s string) (graphics.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return graphics.Size{}, fmt.Errorf("invalid size %q (want WxH)", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return graphics.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return graphics.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	return graphics.Size{Width: float64(width), Height: float64(height)}, nil
}
