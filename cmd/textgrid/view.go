package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/terminal"
	"github.com/odvcencio/textgrid/pkg/watch"
)

// pagerGutter keeps the last column free so wide glyphs never wrap.
const pagerGutter = 1

func (a *app) runView(ctx context.Context, args []string) error {
	var common commonFlags
	fs := a.newFlagSet("view", "[FLAGS] FILE")
	common.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 || fs.Arg(0) == stdinPath {
		return withExitCode(fmt.Errorf("view takes exactly one file"), exitUsage)
	}
	path := fs.Arg(0)

	e, err := a.setup(&common, fs)
	if err != nil {
		return err
	}
	defer e.Close()
	if e.cfg.Logging.Dir == "" {
		// stderr shares the terminal with the pager.
		e.logger = logging.New(nil, e.logger.RunID())
	}

	load, err := loaderFor(e, path)
	if err != nil {
		return err
	}

	screen, err := a.newScreen()
	if err != nil {
		return fmt.Errorf("opening screen: %w", err)
	}
	width := e.cfg.Render.Width
	if width <= 0 {
		width = max(e.info.Width-pagerGutter, 1)
	}

	render := func() ([]rendering.Lines, error) {
		return a.renderAll(ctx, e, []string{path}, load, width)
	}
	results, err := render()
	if err != nil {
		return err
	}
	pager, err := terminal.NewPager(screen, filepath.Base(path), results[0])
	if err != nil {
		return err
	}

	if !common.watch {
		return pager.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- a.watchInputs(ctx, e, []string{path}, func([]watch.Change) {
			if results, err := render(); err == nil {
				pager.SetLines(results[0])
			}
		})
	}()
	if err := pager.Run(ctx); err != nil {
		return err
	}
	cancel()
	return <-watchErr
}
