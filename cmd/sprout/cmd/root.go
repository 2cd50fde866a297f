// Package cmd implements the sprout CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (run, status, tree).
package cmd

import (
	"fmt"
	"io"
	"os"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "sprout",
	Short: "Sprout - retained-mode reactive UI in Go",
	Long: `Sprout renders a reactive widget tree into flat draw primitives.
The CLI hosts the demo application in a terminal and inspects the
project configuration and widget tree.

Use "sprout <command> --help" for more information about a command.`,
	Usage: "sprout <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// output receives help and command output. Tests replace it.
var output io.Writer = os.Stdout

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	switch args[0] {
	case "-h", "--help", "help":
		printHelp(rootCmd)
		return nil
	case "-v", "--version", "version":
		fmt.Fprintf(output, "sprout version %s (built %s)\n", Version, BuildTime)
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	if err := cmd.Run(cmdArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func printHelp(cmd *Command) {
	fmt.Fprintln(output, cmd.Long)
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Usage:")
	fmt.Fprintf(output, "  %s\n", cmd.Usage)
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(output, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Flags:")
	fmt.Fprintln(output, "  -h, --help           Show help for a command")
	fmt.Fprintln(output, "  -v, --version        Show version information")
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Examples:")
	fmt.Fprintln(output, "  sprout run                  Run the demo in this terminal")
	fmt.Fprintln(output, "  sprout run --debug-port 0   Run with the debug server on a free port")
	fmt.Fprintln(output, "  sprout tree --size 80x24    Print the demo's laid-out tree as JSON")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(output, cmd.Long)
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Usage:")
	fmt.Fprintf(output, "  %s\n", cmd.Usage)
}
