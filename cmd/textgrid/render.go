package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/markdown"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/table"
	"github.com/odvcencio/textgrid/pkg/watch"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

const stdinPath = "-"

// loader turns one input into a widget.
type loader func(path string, data []byte) (rendering.Widget, error)

func (a *app) runText(ctx context.Context, args []string) error {
	var common commonFlags
	var align, whitespace, overflow string
	fs := a.newFlagSet("text", "[FLAGS] FILE...")
	common.register(fs)
	fs.StringVar(&align, "align", "", "none, left, right, center or justify")
	fs.StringVar(&whitespace, "whitespace", "", "normal, nowrap, pre, pre-wrap or pre-line")
	fs.StringVar(&overflow, "overflow", "", "normal, break-word or ellipses")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	return a.renderCommand(ctx, &common, fs, func(e *env) (loader, error) {
		if align != "" {
			e.cfg.Render.Align = align
		}
		if whitespace != "" {
			e.cfg.Render.Whitespace = whitespace
		}
		if overflow != "" {
			e.cfg.Render.Overflow = overflow
		}
		if err := e.cfg.Validate(); err != nil {
			return nil, withExitCode(err, exitUsage)
		}
		return textLoader(e), nil
	})
}

func (a *app) runMarkdown(ctx context.Context, args []string) error {
	var common commonFlags
	var codeTheme string
	fs := a.newFlagSet("markdown", "[FLAGS] FILE...")
	common.register(fs)
	fs.StringVar(&codeTheme, "code-theme", "", "chroma style for fenced code (default: theme palette)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	return a.renderCommand(ctx, &common, fs, func(e *env) (loader, error) {
		if codeTheme != "" {
			e.cfg.Markdown.CodeTheme = codeTheme
		}
		return markdownLoader(e)
	})
}

func (a *app) runCSV(ctx context.Context, args []string) error {
	var common commonFlags
	var delimiter string
	var noHeader bool
	fs := a.newFlagSet("csv", "[FLAGS] FILE...")
	common.register(fs)
	fs.StringVarP(&delimiter, "delimiter", "d", "", "field delimiter (default: export.csv_delimiter)")
	fs.BoolVar(&noHeader, "no-header", false, "treat the first record as data")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	return a.renderCommand(ctx, &common, fs, func(e *env) (loader, error) {
		if delimiter != "" {
			e.cfg.Export.CSVDelimiter = delimiter
		}
		if noHeader {
			e.cfg.Table.Header = false
		}
		if err := e.cfg.Validate(); err != nil {
			return nil, withExitCode(err, exitUsage)
		}
		return csvLoader(e), nil
	})
}

func (a *app) runTable(ctx context.Context, args []string) error {
	var common commonFlags
	fs := a.newFlagSet("table", "[FLAGS] FILE...")
	common.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	return a.renderCommand(ctx, &common, fs, func(e *env) (loader, error) {
		return tableLoader(e), nil
	})
}

// renderCommand renders every positional argument and, with --watch,
// renders again whenever one of them changes.
func (a *app) renderCommand(ctx context.Context, common *commonFlags, fs *pflag.FlagSet, configure func(*env) (loader, error)) error {
	paths := fs.Args()
	if len(paths) == 0 {
		return withExitCode(fmt.Errorf("no input files (use - for stdin)"), exitUsage)
	}
	e, err := a.setup(common, fs)
	if err != nil {
		return err
	}
	defer e.Close()

	load, err := configure(e)
	if err != nil {
		return err
	}

	if err := a.renderInputs(ctx, e, paths, load); err != nil {
		if !common.watch {
			return err
		}
		e.errOut.Error("%v", err)
	}
	if !common.watch {
		return nil
	}
	e.errOut.Dim("watching for changes; press Ctrl-C to stop")
	return a.watchInputs(ctx, e, paths, func([]watch.Change) {
		if e.info.Interactive {
			fmt.Fprint(a.stdout, "\x1b[2J\x1b[H")
		}
		if err := a.renderInputs(ctx, e, paths, load); err != nil {
			e.errOut.Error("%v", err)
		}
	})
}

// renderInputs loads and renders paths concurrently and prints them in
// argument order, separated by blank lines.
func (a *app) renderInputs(ctx context.Context, e *env, paths []string, load loader) error {
	results, err := a.renderAll(ctx, e, paths, load, e.width)
	if err != nil {
		return err
	}
	for i, lines := range results {
		if i > 0 {
			e.out.Println("")
		}
		if err := e.out.Lines(lines); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}

func (a *app) renderAll(ctx context.Context, e *env, paths []string, load loader, width int) ([]rendering.Lines, error) {
	stdin, err := a.readStdinOnce(paths)
	if err != nil {
		return nil, err
	}

	results := make([]rendering.Lines, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			data := stdin
			if p != stdinPath {
				b, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("reading %s: %w", p, err)
				}
				data = b
			}
			w, err := load(p, data)
			if err != nil {
				e.logger.Error(logging.CategoryRender, "load_failed", err, map[string]any{"path": p})
				return fmt.Errorf("%s: %w", p, err)
			}
			results[i] = w.Render(e.cfg.RenderContext(), width)
			e.logger.Debug(logging.CategoryRender, "rendered", "rendered "+p, map[string]any{
				"path":        p,
				"width":       width,
				"lines":       len(results[i]),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readStdinOnce reads standard input when any path is "-"; every "-"
// then renders the same data.
func (a *app) readStdinOnce(paths []string) ([]byte, error) {
	for _, p := range paths {
		if p == stdinPath {
			data, err := io.ReadAll(a.stdin)
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return data, nil
		}
	}
	return nil, nil
}

// watchInputs blocks until ctx is done, calling onChange with each
// debounced batch of changes to paths.
func (a *app) watchInputs(ctx context.Context, e *env, paths []string, onChange watch.Handler) error {
	w, err := watch.New(e.cfg.Watch.Debounce, e.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	watched := 0
	for _, p := range paths {
		if p == stdinPath {
			continue
		}
		if err := w.Add(p); err != nil {
			return err
		}
		watched++
	}
	if watched == 0 {
		return withExitCode(fmt.Errorf("--watch needs at least one file argument"), exitUsage)
	}
	w.Subscribe("", onChange)
	return w.Run(ctx)
}

func textLoader(e *env) loader {
	opts := e.cfg.TextOptions()
	return func(_ string, data []byte) (rendering.Widget, error) {
		return widgets.NewText(string(data), rendering.DefaultStyle, opts...)
	}
}

func markdownLoader(e *env) (loader, error) {
	md, err := markdown.NewRenderer(e.theme, e.cfg.MarkdownOptions()...)
	if err != nil {
		return nil, withExitCode(err, exitConfig)
	}
	return func(_ string, data []byte) (rendering.Widget, error) {
		return md.Render(string(data))
	}, nil
}

func csvLoader(e *env) loader {
	delimiter := []rune(e.cfg.Export.CSVDelimiter)[0]
	defaults := e.cfg.TableDefaults(e.theme)
	header := e.cfg.Table.Header
	return func(_ string, data []byte) (rendering.Widget, error) {
		doc, err := readCSVDocument(data, delimiter, header)
		if err != nil {
			return nil, err
		}
		return doc.Build(defaults)
	}
}

func tableLoader(e *env) loader {
	defaults := e.cfg.TableDefaults(e.theme)
	return func(_ string, data []byte) (rendering.Widget, error) {
		doc, err := table.ParseDocument(data)
		if err != nil {
			return nil, err
		}
		return doc.Build(defaults)
	}
}

// readCSVDocument parses CSV records; rows may have differing lengths.
func readCSVDocument(data []byte, delimiter rune, header bool) (*table.Document, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "parsing csv")
	}
	return table.DocumentFromRecords(records, header), nil
}

// loaderFor picks a loader from the file extension.
func loaderFor(e *env, path string) (loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return markdownLoader(e)
	case ".csv":
		return csvLoader(e), nil
	case ".tsv":
		e.cfg.Export.CSVDelimiter = "\t"
		return csvLoader(e), nil
	case ".yaml", ".yml", ".json":
		return tableLoader(e), nil
	}
	return textLoader(e), nil
}
