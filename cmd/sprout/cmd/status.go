package cmd

import (
	"fmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show project configuration",
		Long: `Show the resolved configuration of the current project.

Settings come from sprout.yaml in the project root, falling back to
defaults. The app name defaults to the last element of the module path
in go.mod.`,
		Usage: "sprout status",
		Run:   runStatus,
	})
}

func runStatus(args []string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	root := cfg.Root
	if root == "" {
		root = "(none, using defaults)"
	}
	fmt.Fprintf(output, "Project: %s\n", cfg.AppName)
	fmt.Fprintf(output, "  root:            %s\n", root)
	if cfg.ModulePath != "" {
		fmt.Fprintf(output, "  module:          %s\n", cfg.ModulePath)
	}
	fmt.Fprintf(output, "  viewport:        %gx%g\n", cfg.Viewport.Width, cfg.Viewport.Height)
	fmt.Fprintf(output, "  pixel snap:      %t\n", cfg.PixelSnap)
	fmt.Fprintf(output, "  verbose errors:  %t\n", cfg.Verbose)
	fmt.Fprintf(output, "  layout warnings: %t\n", cfg.LayoutWarnings)
	return nil
}
