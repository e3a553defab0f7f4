package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/textgrid/pkg/config"
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/table"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"TEXTGRID_WIDTH", "TEXTGRID_TAB_WIDTH", "TEXTGRID_THEME", "TEXTGRID_WHITESPACE", "TEXTGRID_BORDER",
		"TEXTGRID_COLOR", "TEXTGRID_HYPERLINKS", "TEXTGRID_CODE_THEME", "TEXTGRID_SERVER_BIND",
		"TEXTGRID_RATE_LIMIT", "TEXTGRID_TRACE", "TEXTGRID_LOG_LEVEL", "TEXTGRID_LOG_DIR",
		"TEXTGRID_WATCH_DEBOUNCE",
	} {
		t.Setenv(key, "")
	}
	return home
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	require.NoError(t, os.Chdir(dir))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Render.TabWidth)
	assert.Equal(t, "square", cfg.Table.BorderType)
	assert.True(t, cfg.Table.OuterBorder)
	assert.Equal(t, widgets.HorizontalPadding(1), cfg.Table.Padding)
	assert.Equal(t, config.DefaultDebounce, cfg.Watch.Debounce)
}

func TestLoadHierarchy(t *testing.T) {
	home := isolate(t)
	project := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "textgrid", "config.yaml"), `
render:
  width: 100
  whitespace: pre
table:
  border_type: rounded
`)
	writeFile(t, filepath.Join(project, ".textgrid.yaml"), `
table:
  border_type: heavy
  outer_border: false
`)
	chdir(t, project)
	t.Setenv("TEXTGRID_WIDTH", "72")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 72, cfg.Render.Width, "env wins over files")
	assert.Equal(t, "pre", cfg.Render.Whitespace, "user value survives when project is silent")
	assert.Equal(t, "heavy", cfg.Table.BorderType, "project wins over user")
	assert.False(t, cfg.Table.OuterBorder)
	assert.True(t, cfg.Table.Header, "unset booleans keep defaults")
}

func TestLoadFromPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, `
table:
  padding: {top: 0, right: 2, bottom: 0, left: 2}
export:
  csv_quoting: all
  csv_delimiter: ";"
watch:
  debounce: 1s
`)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, widgets.HorizontalPadding(2), cfg.Table.Padding)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)

	opts := cfg.CSVOptions()
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, table.QuoteAll, opts.Quoting)
}

func TestLoadFromPathErrors(t *testing.T) {
	isolate(t)

	_, err := config.LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigLoad))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "render: [unclosed")
	_, err = config.LoadFromPath(bad)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigLoad))
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TEXTGRID_BORDER", "double")
	t.Setenv("TEXTGRID_HYPERLINKS", "off")
	t.Setenv("TEXTGRID_LOG_LEVEL", "DEBUG")
	t.Setenv("TEXTGRID_WATCH_DEBOUNCE", "500ms")
	t.Setenv("TEXTGRID_TAB_WIDTH", "not-a-number")
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "double", cfg.Table.BorderType)
	assert.False(t, cfg.Output.Hyperlinks)
	assert.False(t, cfg.Markdown.Hyperlinks)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, config.DefaultTabWidth, cfg.Render.TabWidth, "unparseable values are ignored")
}

func TestConfigEnvFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "textgrid", "config.env"), `
# comment
export TEXTGRID_COLOR="ansi256"
TEXTGRID_SERVER_BIND=0.0.0.0:9000
`)
	t.Setenv("TEXTGRID_SERVER_BIND", "127.0.0.1:1")
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "ansi256", cfg.Output.ColorLevel)
	assert.Equal(t, "127.0.0.1:1", cfg.Server.Bind, "process env wins over config.env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"negative width", func(c *config.Config) { c.Render.Width = -1 }, "render.width"},
		{"negative tab width", func(c *config.Config) { c.Render.TabWidth = -4 }, "render.tab_width"},
		{"whitespace", func(c *config.Config) { c.Render.Whitespace = "squash" }, "render.whitespace"},
		{"align", func(c *config.Config) { c.Render.Align = "middle" }, "render.align"},
		{"overflow", func(c *config.Config) { c.Render.Overflow = "hide" }, "render.overflow"},
		{"theme", func(c *config.Config) { c.Render.Theme = "neon" }, "render.theme"},
		{"code theme", func(c *config.Config) { c.Markdown.CodeTheme = "crayon" }, "markdown.code_theme"},
		{"border type", func(c *config.Config) { c.Table.BorderType = "wavy" }, "table.border_type"},
		{"cell borders", func(c *config.Config) { c.Table.CellBorders = "diagonal" }, "table.cell_borders"},
		{"padding", func(c *config.Config) { c.Table.Padding.Left = -1 }, "table.padding"},
		{"color", func(c *config.Config) { c.Output.ColorLevel = "sepia" }, "output.color_level"},
		{"delimiter", func(c *config.Config) { c.Export.CSVDelimiter = "::" }, "export.csv_delimiter"},
		{"quoting", func(c *config.Config) { c.Export.CSVQuoting = "sometimes" }, "export.csv_quoting"},
		{"bind", func(c *config.Config) { c.Server.Bind = " " }, "server.bind"},
		{"rate", func(c *config.Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
		{"body", func(c *config.Config) { c.Server.MaxBodyBytes = 0 }, "server.max_body_bytes"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"debounce", func(c *config.Config) { c.Watch.Debounce = -time.Second }, "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			e, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeConfigInvalid, e.Code)
			assert.Equal(t, tt.field, e.Context["field"])
		})
	}
}

func TestRenderContextAndTextOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Render.TabWidth = 4

	assert.Equal(t, 4, cfg.RenderContext().TabWidth)
	assert.Len(t, cfg.TextOptions(), 3)
	assert.Len(t, cfg.MarkdownOptions(), 3)
}

func TestCodeThemeAccepted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Markdown.CodeTheme = "monokai"
	assert.NoError(t, cfg.Validate())
}

func TestTableDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Table.BorderType = "ascii"
	cfg.Table.OuterBorder = false

	tbl, err := table.New(func(b *table.Builder) {
		cfg.TableDefaults(nil)(b)
		b.Body(func(s *table.SectionBuilder) { s.Row("a", "b") })
	})
	require.NoError(t, err)

	lines := tbl.Render(cfg.RenderContext(), 20)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0].String(), "|")
}
