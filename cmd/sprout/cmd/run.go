package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/sprout/cmd/sprout/internal/demo"
	"github.com/go-drift/sprout/cmd/sprout/internal/term"
	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/errors"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run the demo in this terminal",
		Long: `Run the demo application in the current terminal.

Click the buttons, type into the field and press Enter to append to the
log, scroll the log with the mouse wheel. Press Escape or Ctrl-C to quit.

The terminal owns stdout and stderr while the app runs, so error reports
go to the --log file (discarded when unset).

Flags:
  --debug-port PORT   Serve /tree, /stats and /health on 127.0.0.1:PORT
                      (0 picks a free port, printed to the log)
  --log FILE          Append error reports and debug output to FILE`,
		Usage: "sprout run [--debug-port PORT] [--log FILE]",
		Run:   runRun,
	})
}

type runOptions struct {
	debugPort int
	logFile   string
}

func parseRunArgs(args []string) (runOptions, error) {
	opts := runOptions{debugPort: -1}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--debug-port":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--debug-port requires a port number")
			}
			port, err := strconv.Atoi(args[i+1])
			if err != nil || port < 0 || port > 65535 {
				return opts, fmt.Errorf("invalid port %q", args[i+1])
			}
			opts.debugPort = port
			i++
		case "--log":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--log requires a file path")
			}
			opts.logFile = args[i+1]
			i++
		default:
			return opts, fmt.Errorf("unknown flag %q", args[i])
		}
	}
	return opts, nil
}

func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log.SetOutput(logOut)
	errors.SetHandler(&errors.LogHandler{Verbose: cfg.Verbose, Out: logOut})
	defer errors.SetHandler(nil)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	host := term.NewHost(screen, cfg, core.Of(demo.App{Title: cfg.AppName}))
	if opts.debugPort >= 0 {
		port, err := host.Engine().StartDebugServer(opts.debugPort)
		if err != nil {
			return err
		}
		defer host.Engine().StopDebugServer()
		log.Printf("debug server listening on http://127.0.0.1:%d", port)
	}
	return host.Run()
}
