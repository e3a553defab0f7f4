package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/table"
)

func (a *app) runExport(ctx context.Context, args []string) error {
	var common commonFlags
	var format, output, sheet, quoting, delimiter string
	var noHeader bool
	fs := a.newFlagSet("export", "--format csv|xlsx [FLAGS] FILE")
	common.register(fs)
	fs.StringVarP(&format, "format", "f", "", "csv or xlsx (default: from --output extension, else csv)")
	fs.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	fs.StringVar(&sheet, "sheet", "", "xlsx worksheet name (default: export.sheet)")
	fs.StringVar(&quoting, "quoting", "", "csv quoting: all, minimal, nonnumeric or none")
	fs.StringVarP(&delimiter, "delimiter", "d", "", "csv delimiter for input and output")
	fs.BoolVar(&noHeader, "no-header", false, "treat the first record of a CSV input as data")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return withExitCode(fmt.Errorf("export takes exactly one input file"), exitUsage)
	}
	input := fs.Arg(0)

	e, err := a.setup(&common, fs)
	if err != nil {
		return err
	}
	defer e.Close()

	if delimiter != "" {
		e.cfg.Export.CSVDelimiter = delimiter
	}
	if quoting != "" {
		e.cfg.Export.CSVQuoting = quoting
	}
	if sheet != "" {
		e.cfg.Export.Sheet = sheet
	}
	if noHeader {
		e.cfg.Table.Header = false
	}
	if err := e.cfg.Validate(); err != nil {
		return withExitCode(err, exitUsage)
	}

	if format == "" {
		format = "csv"
		if strings.EqualFold(filepath.Ext(output), ".xlsx") {
			format = "xlsx"
		}
	}
	format = strings.ToLower(format)
	if format != "csv" && format != "xlsx" {
		return withExitCode(fmt.Errorf("unknown export format %q (use csv or xlsx)", format), exitUsage)
	}

	t, err := a.loadTable(e, input)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case "csv":
		out, err := table.ContentToCSV(t, e.cfg.CSVOptions())
		if err != nil {
			return err
		}
		buf.WriteString(out)
	case "xlsx":
		if err := table.ContentToXLSX(t, &buf, e.cfg.Export.Sheet); err != nil {
			return err
		}
	}

	if err := a.writeOutput(output, buf.Bytes()); err != nil {
		return err
	}
	e.logger.Info(logging.CategoryExport, "exported", fmt.Sprintf("exported %s as %s", input, format), map[string]any{
		"input":  input,
		"output": output,
		"format": format,
		"rows":   t.Grid().RowCount(),
		"bytes":  buf.Len(),
	})
	return nil
}

// loadTable reads a CSV file or a table document.
func (a *app) loadTable(e *env, path string) (*table.Table, error) {
	var data []byte
	var err error
	if path == stdinPath {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc *table.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		delimiter := []rune(e.cfg.Export.CSVDelimiter)[0]
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			delimiter = '\t'
		}
		doc, err = readCSVDocument(data, delimiter, e.cfg.Table.Header)
	default:
		doc, err = table.ParseDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t, err := doc.Build(e.cfg.TableDefaults(nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (a *app) writeOutput(path string, data []byte) error {
	if path == "" || path == stdinPath {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
