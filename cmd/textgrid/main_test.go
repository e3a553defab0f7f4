package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odvcencio/textgrid/pkg/server"
)

const tableYAML = `
header:
  - [name, size]
body:
  - [a, 12]
`

type harness struct {
	app    *app
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("NO_COLOR", "1")
	t.Setenv("COLUMNS", "60")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = newApp(strings.NewReader(stdin), h.stdout, h.stderr)
	return h
}

func (h *harness) run(args ...string) int {
	return h.app.run(context.Background(), args)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func trimLines(s string) []string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}

func TestHelpVersionAndUnknown(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, exitOK, h.run("--help"))
	assert.Contains(t, h.stdout.String(), "COMMANDS:")

	h.stdout.Reset()
	assert.Equal(t, exitOK, h.run("version"))
	assert.True(t, strings.HasPrefix(h.stdout.String(), "textgrid "+version))

	assert.Equal(t, exitUsage, h.run("frobnicate"))
	assert.Contains(t, h.stderr.String(), "unknown command: frobnicate")

	assert.Equal(t, exitUsage, h.run())
}

func TestSubcommandHelp(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, exitOK, h.run("markdown", "--help"))
	assert.Contains(t, h.stdout.String(), "--code-theme")
}

func TestTextCommand(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "a.txt", "hello world")

	require.Equal(t, exitOK, h.run("text", "--width", "5", "--color", "none", p), h.stderr.String())
	assert.Equal(t, []string{"hello", "world"}, trimLines(h.stdout.String()))
}

func TestTextAlignFlag(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "a.txt", "ab")

	require.Equal(t, exitOK, h.run("text", "-w", "6", "--align", "right", p), h.stderr.String())
	assert.Equal(t, "    ab\n", h.stdout.String())

	assert.Equal(t, exitUsage, h.run("text", "--align", "middle", p))
}

func TestStdinInput(t *testing.T) {
	h := newHarness(t, "from stdin")
	require.Equal(t, exitOK, h.run("text", "--width", "40", "-"), h.stderr.String())
	assert.Equal(t, []string{"from stdin"}, trimLines(h.stdout.String()))
}

func TestMarkdownKeepsArgumentOrder(t *testing.T) {
	h := newHarness(t, "")
	first := writeFile(t, "one.md", "first *file*")
	second := writeFile(t, "two.md", "second file")

	require.Equal(t, exitOK, h.run("markdown", "--width", "30", first, second), h.stderr.String())
	out := h.stdout.String()
	require.Contains(t, out, "first file")
	require.Contains(t, out, "second file")
	assert.Less(t, strings.Index(out, "first file"), strings.Index(out, "second file"))
	assert.Contains(t, trimLines(out), "", "inputs are separated by a blank line")
}

func TestCSVCommand(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "data.csv", "name;size\na;12\nragged\n")

	require.Equal(t, exitOK, h.run("csv", "--border", "ascii", "-d", ";", "--width", "40", p), h.stderr.String())
	lines := trimLines(h.stdout.String())
	assert.True(t, strings.HasPrefix(lines[0], "+"), lines[0])
	assert.Contains(t, h.stdout.String(), "| name")
	assert.Contains(t, h.stdout.String(), "ragged")
}

func TestTableCommand(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "t.yaml", tableYAML)

	require.Equal(t, exitOK, h.run("table", "--width", "40", p), h.stderr.String())
	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "┌"), out)
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "12")
}

func TestTableCommandInvalidDocument(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "bad.yaml", "border: wavy\n")

	assert.Equal(t, exitFailed, h.run("table", p))
	assert.Contains(t, h.stderr.String(), "invalid border")
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "t.yaml", tableYAML)

	require.Equal(t, exitOK, h.run("export", "--format", "csv", p), h.stderr.String())
	assert.Equal(t, "name,size\na,12\n", h.stdout.String())

	h.stdout.Reset()
	require.Equal(t, exitOK, h.run("export", "--quoting", "all", p), h.stderr.String())
	assert.Equal(t, "\"name\",\"size\"\n\"a\",\"12\"\n", h.stdout.String())
}

func TestExportXLSXFromCSV(t *testing.T) {
	h := newHarness(t, "")
	in := writeFile(t, "data.csv", "name,size\na,12\n")
	out := filepath.Join(t.TempDir(), "out.xlsx")

	require.Equal(t, exitOK, h.run("export", "-o", out, "--sheet", "Data", in), h.stderr.String())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestExportUsageErrors(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "t.yaml", tableYAML)

	assert.Equal(t, exitUsage, h.run("export", "--format", "pdf", p))
	assert.Equal(t, exitUsage, h.run("export"))
}

func TestInputErrors(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, exitUsage, h.run("text"))
	assert.Equal(t, exitFailed, h.run("text", filepath.Join(t.TempDir(), "missing.txt")))
	assert.Contains(t, h.stderr.String(), "reading")
	assert.Equal(t, exitConfig, h.run("text", "--color", "sepia", "-"))
	assert.Equal(t, exitUsage, h.run("text", "--bogus"))
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, exitOK, h.run("config", "show"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "border_type: square")

	h.stdout.Reset()
	require.Equal(t, exitOK, h.run("config", "check", "--theme", "plain"))
	assert.Contains(t, h.stdout.String(), "configuration is valid")

	h.stdout.Reset()
	require.Equal(t, exitOK, h.run("config", "path"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(h.stdout.String()), "config.yaml"))

	assert.Equal(t, exitUsage, h.run("config", "edit"))

	bad := writeFile(t, "config.yaml", "render:\n  width: -1\n")
	assert.Equal(t, exitConfig, h.run("config", "check", "--config", bad))
}

type fakeServer struct{ started bool }

func (f *fakeServer) Start(context.Context) error {
	f.started = true
	return nil
}

func TestServeUsesConfig(t *testing.T) {
	h := newHarness(t, "")
	fake := &fakeServer{}
	var gotBind string
	var gotTrace bool
	orig := newServerFn
	newServerFn = func(e *env, opts server.Options) (renderServer, error) {
		gotBind = e.cfg.Server.Bind
		gotTrace = e.cfg.Server.Trace
		assert.NotNil(t, opts.Hub)
		return fake, nil
	}
	t.Cleanup(func() { newServerFn = orig })

	require.Equal(t, exitOK, h.run("serve", "--bind", "127.0.0.1:9999", "--trace"), h.stderr.String())
	assert.True(t, fake.started)
	assert.Equal(t, "127.0.0.1:9999", gotBind)
	assert.True(t, gotTrace)
	assert.Contains(t, h.stderr.String(), "serving on http://127.0.0.1:9999")
}

func TestViewRunsPager(t *testing.T) {
	h := newHarness(t, "")
	p := writeFile(t, "doc.md", "# Title\n\nbody")

	var screen tcell.SimulationScreen
	h.app.newScreen = func() (tcell.Screen, error) {
		screen = tcell.NewSimulationScreen("UTF-8")
		return screen, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)
	defer cancel()

	assert.Equal(t, exitOK, h.app.run(ctx, []string{"view", p}))
	assert.NotNil(t, screen)

	assert.Equal(t, exitUsage, h.run("view", "-"))
}
