package main

import (
	stdliberrors "errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/pflag"

	"github.com/odvcencio/textgrid/pkg/config"
	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/terminal"
	"github.com/odvcencio/textgrid/pkg/theme"
)

var errHelpShown = stdliberrors.New("help shown")

// commonFlags are accepted by every command that renders.
type commonFlags struct {
	configPath string
	width      int
	color      string
	theme      string
	border     string
	noLinks    bool
	logLevel   string
	watch      bool
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.configPath, "config", "c", "", "config file (default: user and project config)")
	fs.IntVarP(&c.width, "width", "w", 0, "render width in cells (default: terminal width)")
	fs.StringVar(&c.color, "color", "", "color level: auto, none, ansi16, ansi256 or truecolor")
	fs.StringVar(&c.theme, "theme", "", "theme: "+strings.Join(theme.Names(), ", "))
	fs.StringVar(&c.border, "border", "", "table border type")
	fs.BoolVar(&c.noLinks, "no-hyperlinks", false, "never emit OSC 8 hyperlinks")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&c.watch, "watch", false, "re-render when input files change")
}

// env is everything a command needs once flags and config are resolved.
type env struct {
	cfg    *config.Config
	theme  *theme.Theme
	logger *logging.Logger
	info   terminal.Info
	width  int
	out    *terminal.Writer
	errOut *terminal.Writer
}

func (e *env) Close() error {
	return e.logger.Close()
}

// newFlagSet builds a flag set whose --help prints usage to stdout.
func (a *app) newFlagSet(name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stdout, "Usage: textgrid %s %s\n\nFlags:\n%s", name, usage, fs.FlagUsages())
	}
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if stdliberrors.Is(err, pflag.ErrHelp) {
			return errHelpShown
		}
		return withExitCode(err, exitUsage)
	}
	return nil
}

// setup loads config, applies flag overrides and detects the terminal.
func (a *app) setup(c *commonFlags, fs *pflag.FlagSet) (*env, error) {
	var cfg *config.Config
	var err error
	if c.configPath != "" {
		cfg, err = config.LoadFromPath(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, withExitCode(err, exitConfig)
	}

	if fs.Changed("width") {
		cfg.Render.Width = c.width
	}
	if c.color != "" {
		cfg.Output.ColorLevel = c.color
	}
	if c.theme != "" {
		cfg.Render.Theme = c.theme
	}
	if c.border != "" {
		cfg.Table.BorderType = c.border
	}
	if c.noLinks {
		cfg.Output.Hyperlinks = false
	}
	if c.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(c.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(err, exitConfig)
	}

	t, err := cfg.Theme()
	if err != nil {
		return nil, withExitCode(err, exitConfig)
	}

	logger, err := a.newLogger(cfg)
	if err != nil {
		return nil, withExitCode(err, exitConfig)
	}

	info := terminal.Detect(a.stdout)
	level, err := info.Resolve(cfg.Output.ColorLevel)
	if err != nil {
		return nil, withExitCode(err, exitConfig)
	}
	errInfo := terminal.Detect(a.stderr)
	errLevel, _ := errInfo.Resolve(cfg.Output.ColorLevel)

	width := cfg.Render.Width
	if width <= 0 {
		width = info.Width
	}

	return &env{
		cfg:    cfg,
		theme:  t,
		logger: logger,
		info:   info,
		width:  width,
		out:    terminal.NewWithOutput(a.stdout, info.Renderer(level, cfg.Output.Hyperlinks)),
		errOut: terminal.NewWithOutput(a.stderr, errInfo.Renderer(errLevel, false)),
	}, nil
}

// newLogger writes JSONL events to logging.dir when set, otherwise to
// stderr.
func (a *app) newLogger(cfg *config.Config) (*logging.Logger, error) {
	runID := ulid.Make().String()
	var logger *logging.Logger
	if cfg.Logging.Dir != "" {
		l, err := logging.NewFileLogger(cfg.Logging.Dir, runID)
		if err != nil {
			return nil, err
		}
		logger = l
	} else {
		logger = logging.New(a.stderr, runID)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.SetMinLevel(level)
	return logger, nil
}
