// Command textgrid renders text, markdown, CSV and declarative tables for
// the terminal, exports tables, and serves rendering over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// app holds the process streams so commands can be run against buffers.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// newScreen builds the screen for view.
	newScreen func() (tcell.Screen, error)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		newScreen: tcell.NewScreen,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdin, os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

type command func(ctx context.Context, args []string) error

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.printHelp()
		return exitUsage
	}
	commands := map[string]command{
		"text":     a.runText,
		"markdown": a.runMarkdown,
		"md":       a.runMarkdown,
		"csv":      a.runCSV,
		"table":    a.runTable,
		"export":   a.runExport,
		"view":     a.runView,
		"serve":    a.runServe,
		"config":   a.runConfig,
	}
	switch args[0] {
	case "--version", "-v", "version":
		a.printVersion()
		return exitOK
	case "--help", "-h", "help":
		a.printHelp()
		return exitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(a.stderr, "Error: unknown flag: %s\n", args[0])
		} else {
			fmt.Fprintf(a.stderr, "Error: unknown command: %s\n", args[0])
		}
		fmt.Fprintln(a.stderr, "Run 'textgrid --help' for usage.")
		return exitUsage
	}
	return a.runCommand(ctx, cmd, args[1:])
}

func (a *app) runCommand(ctx context.Context, cmd command, args []string) int {
	if err := cmd(ctx, args); err != nil {
		if err == errHelpShown {
			return exitOK
		}
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitCodeForError(err)
	}
	return exitOK
}

func (a *app) printHelp() {
	fmt.Fprint(a.stdout, `textgrid - render text, markdown and tables for the terminal

USAGE:
  textgrid COMMAND [FLAGS] [FILE...]

COMMANDS:
  text FILE...                     Wrap plain or ANSI-styled text
  markdown FILE...                 Render markdown (alias: md)
  csv FILE...                      Render CSV files as tables
  table FILE...                    Render YAML or JSON table documents
  export --format csv|xlsx FILE    Export a table document or CSV file
  view FILE                        Render a file into a scrollable pager
  serve [--bind host:port]         Start the HTTP render service
  config show|check|path           Inspect configuration
  version                          Print version information

Use "-" to read from standard input. Every render command accepts
--width, --color, --theme, --config and --watch.
`)
}

func (a *app) printVersion() {
	fmt.Fprintf(a.stdout, "textgrid %s\n", version)
	if commit != "unknown" {
		fmt.Fprintf(a.stdout, "  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Fprintf(a.stdout, "  Built:      %s\n", buildDate)
	}
	fmt.Fprintf(a.stdout, "  Go version: %s\n", runtime.Version())
}
