package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/markdown"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/table"
	"github.com/odvcencio/textgrid/pkg/theme"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

// Default configuration values exported for documentation and validation
const (
	DefaultTabWidth     = rendering.DefaultTabWidth
	DefaultBorderType   = "square"
	DefaultColorLevel   = "auto"
	DefaultServerBind   = "127.0.0.1:4580"
	DefaultRateLimit    = 20.0
	DefaultRateBurst    = 40
	DefaultMaxBodyBytes = 1 << 20
	DefaultMaxWidth     = 1000
	DefaultLogLevel     = "info"
	DefaultDebounce     = 150 * time.Millisecond
)

// Config represents the complete textgrid configuration
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Table    TableConfig    `yaml:"table"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Output   OutputConfig   `yaml:"output"`
	Export   ExportConfig   `yaml:"export"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

// RenderConfig controls text layout.
type RenderConfig struct {
	// Width is the render width in cells; zero means the terminal width.
	Width      int    `yaml:"width"`
	TabWidth   int    `yaml:"tab_width"`
	Whitespace string `yaml:"whitespace"`
	Align      string `yaml:"align"`
	Overflow   string `yaml:"overflow"`
	Theme      string `yaml:"theme"`
}

// TableConfig holds defaults for tables built from files.
type TableConfig struct {
	BorderType  string          `yaml:"border_type"`
	CellBorders string          `yaml:"cell_borders"`
	OuterBorder bool            `yaml:"outer_border"`
	Padding     widgets.Padding `yaml:"padding"`
	Header      bool            `yaml:"header"`
}

// MarkdownConfig controls markdown rendering.
type MarkdownConfig struct {
	// CodeTheme names a chroma style; empty uses the theme's palette.
	CodeTheme  string `yaml:"code_theme"`
	ShowHTML   bool   `yaml:"show_html"`
	Hyperlinks bool   `yaml:"hyperlinks"`
}

// OutputConfig controls how rendered lines are written.
type OutputConfig struct {
	// ColorLevel is one of auto, none, ansi16, ansi256 or truecolor.
	ColorLevel string `yaml:"color_level"`
	Hyperlinks bool   `yaml:"hyperlinks"`
}

// ExportConfig holds CSV and XLSX export settings.
type ExportConfig struct {
	CSVDelimiter string `yaml:"csv_delimiter"`
	CSVQuoting   string `yaml:"csv_quoting"`
	Sheet        string `yaml:"sheet"`
}

// ServerConfig configures the HTTP render service.
type ServerConfig struct {
	Bind         string  `yaml:"bind"`
	RateLimit    float64 `yaml:"rate_limit"`
	RateBurst    int     `yaml:"rate_burst"`
	MaxBodyBytes int64   `yaml:"max_body_bytes"`
	MaxWidth     int     `yaml:"max_width"`
	Trace        bool    `yaml:"trace"`
}

// LoggingConfig configures the structured event log.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Dir, when set, receives <run>.jsonl and errors.jsonl files instead of
	// logging to stderr.
	Dir string `yaml:"dir"`
}

// WatchConfig configures --watch.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			TabWidth:   DefaultTabWidth,
			Whitespace: "normal",
			Align:      "none",
			Overflow:   "ellipses",
			Theme:      "default",
		},
		Table: TableConfig{
			BorderType:  DefaultBorderType,
			CellBorders: "all",
			OuterBorder: true,
			Padding:     widgets.HorizontalPadding(1),
			Header:      true,
		},
		Markdown: MarkdownConfig{
			Hyperlinks: true,
		},
		Output: OutputConfig{
			ColorLevel: DefaultColorLevel,
			Hyperlinks: true,
		},
		Export: ExportConfig{
			CSVDelimiter: ",",
			CSVQuoting:   "minimal",
			Sheet:        table.DefaultSheet,
		},
		Server: ServerConfig{
			Bind:         DefaultServerBind,
			RateLimit:    DefaultRateLimit,
			RateBurst:    DefaultRateBurst,
			MaxBodyBytes: DefaultMaxBodyBytes,
			MaxWidth:     DefaultMaxWidth,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, then the user config, then ./.textgrid.yaml, then TEXTGRID_*
// environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	configEnv := loadConfigEnvVars()

	if dir := userConfigDir(); dir != "" {
		userConfigPath := filepath.Join(dir, "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, "loading user config").
				WithContext("path", userConfigPath)
		}
	}

	projectConfigPath := filepath.Join(".", ".textgrid.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, "loading project config").
			WithContext("path", projectConfigPath)
	}

	applyEnvOverrides(cfg, configEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	configEnv := loadConfigEnvVars()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, fmt.Sprintf("loading config from %s", path))
	}

	applyEnvOverrides(cfg, configEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UserConfigPath returns the path of the user config file, or "" when no
// config directory can be determined.
func UserConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return ""
}

// userConfigDir returns ~/.config/textgrid, honouring XDG_CONFIG_HOME.
func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "textgrid")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "textgrid")
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides. Values from the
// process environment win over those in config.env.
func applyEnvOverrides(cfg *Config, configEnv map[string]string) {
	get := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(configEnv[key])
	}

	if v := get("TEXTGRID_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Render.Width = n
		}
	}
	if v := get("TEXTGRID_TAB_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Render.TabWidth = n
		}
	}
	if v := get("TEXTGRID_WHITESPACE"); v != "" {
		cfg.Render.Whitespace = v
	}
	if v := get("TEXTGRID_THEME"); v != "" {
		cfg.Render.Theme = v
	}
	if v := get("TEXTGRID_BORDER"); v != "" {
		cfg.Table.BorderType = v
	}
	if v := get("TEXTGRID_COLOR"); v != "" {
		cfg.Output.ColorLevel = v
	}
	if val, ok := envBool(get("TEXTGRID_HYPERLINKS")); ok {
		cfg.Output.Hyperlinks = val
		cfg.Markdown.Hyperlinks = val
	}
	if v := get("TEXTGRID_CODE_THEME"); v != "" {
		cfg.Markdown.CodeTheme = v
	}
	if v := get("TEXTGRID_SERVER_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := get("TEXTGRID_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.RateLimit = f
		}
	}
	if val, ok := envBool(get("TEXTGRID_TRACE")); ok {
		cfg.Server.Trace = val
	}
	if v := get("TEXTGRID_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := get("TEXTGRID_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := get("TEXTGRID_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch.Debounce = d
		}
	}
}

func envBool(val string) (bool, bool) {
	if val == "" {
		return false, false
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	invalid := func(field string, value any, msg string) error {
		return errors.New(errors.ErrCodeConfigInvalid, field+": "+msg).
			WithContext("field", field).
			WithContext("value", value)
	}

	if c.Render.Width < 0 {
		return invalid("render.width", c.Render.Width, "cannot be negative")
	}
	if c.Render.TabWidth < 0 {
		return invalid("render.tab_width", c.Render.TabWidth, "cannot be negative")
	}
	if _, err := rendering.ParseWhitespace(c.Render.Whitespace); err != nil {
		return invalid("render.whitespace", c.Render.Whitespace, "unknown whitespace mode")
	}
	if _, err := rendering.ParseTextAlign(c.Render.Align); err != nil {
		return invalid("render.align", c.Render.Align, "unknown alignment")
	}
	if _, err := rendering.ParseOverflowWrap(c.Render.Overflow); err != nil {
		return invalid("render.overflow", c.Render.Overflow, "unknown overflow policy")
	}
	if _, err := theme.Lookup(c.Render.Theme); err != nil {
		return invalid("render.theme", c.Render.Theme, "unknown theme")
	}

	if c.Markdown.CodeTheme != "" {
		if _, err := markdown.NewHighlighter(nil, c.Markdown.CodeTheme); err != nil {
			return invalid("markdown.code_theme", c.Markdown.CodeTheme, "unknown chroma style")
		}
	}

	if _, err := rendering.ParseBorderType(c.Table.BorderType); err != nil {
		return invalid("table.border_type", c.Table.BorderType, "unknown border type")
	}
	if _, err := table.ParseBorders(c.Table.CellBorders); err != nil {
		return invalid("table.cell_borders", c.Table.CellBorders, "unknown border set")
	}
	if err := c.Table.Padding.Validate(); err != nil {
		return invalid("table.padding", c.Table.Padding, "cannot be negative")
	}

	validLevels := map[string]bool{
		"auto": true, "none": true, "ansi16": true, "ansi256": true, "truecolor": true,
	}
	if !validLevels[strings.ToLower(c.Output.ColorLevel)] {
		return invalid("output.color_level", c.Output.ColorLevel, "must be auto, none, ansi16, ansi256 or truecolor")
	}

	if len([]rune(c.Export.CSVDelimiter)) != 1 {
		return invalid("export.csv_delimiter", c.Export.CSVDelimiter, "must be a single character")
	}
	if _, err := table.ParseCSVQuoting(c.Export.CSVQuoting); err != nil {
		return invalid("export.csv_quoting", c.Export.CSVQuoting, "must be all, minimal, nonnumeric or none")
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return invalid("server.bind", c.Server.Bind, "cannot be empty")
	}
	if c.Server.RateLimit < 0 {
		return invalid("server.rate_limit", c.Server.RateLimit, "cannot be negative")
	}
	if c.Server.RateBurst < 0 {
		return invalid("server.rate_burst", c.Server.RateBurst, "cannot be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid("server.max_body_bytes", c.Server.MaxBodyBytes, "must be positive")
	}
	if c.Server.MaxWidth <= 0 {
		return invalid("server.max_width", c.Server.MaxWidth, "must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}

	if c.Watch.Debounce < 0 {
		return invalid("watch.debounce", c.Watch.Debounce, "cannot be negative")
	}
	return nil
}

// RenderContext returns the context widgets are rendered with.
func (c *Config) RenderContext() rendering.RenderContext {
	return rendering.RenderContext{TabWidth: c.Render.TabWidth}
}

// TextOptions converts the render section into text widget options.
// Call Validate first; unknown names fall back to defaults.
func (c *Config) TextOptions() []widgets.TextOption {
	var opts []widgets.TextOption
	if ws, err := rendering.ParseWhitespace(c.Render.Whitespace); err == nil {
		opts = append(opts, widgets.WithWhitespace(ws))
	}
	if a, err := rendering.ParseTextAlign(c.Render.Align); err == nil {
		opts = append(opts, widgets.WithTextAlign(a))
	}
	if o, err := rendering.ParseOverflowWrap(c.Render.Overflow); err == nil {
		opts = append(opts, widgets.WithOverflow(o))
	}
	return opts
}

// Theme returns a fresh copy of the configured theme.
func (c *Config) Theme() (*theme.Theme, error) {
	return theme.Lookup(c.Render.Theme)
}

// MarkdownOptions converts the markdown section into renderer options.
func (c *Config) MarkdownOptions() []markdown.Option {
	return []markdown.Option{
		markdown.WithCodeStyle(c.Markdown.CodeTheme),
		markdown.WithHyperlinks(c.Markdown.Hyperlinks && c.Output.Hyperlinks),
		markdown.WithHTML(c.Markdown.ShowHTML),
	}
}

// TableDefaults returns the builder defaults for tables declared in files
// or requests. t, when non-nil, styles the header row and borders.
func (c *Config) TableDefaults(t *theme.Theme) func(*table.Builder) {
	return func(b *table.Builder) {
		if bt, err := rendering.ParseBorderType(c.Table.BorderType); err == nil {
			b.BorderType(bt)
		}
		if borders, err := table.ParseBorders(c.Table.CellBorders); err == nil {
			b.SetBorders(borders)
		}
		b.OuterBorder(c.Table.OuterBorder)
		b.SetPadding(c.Table.Padding)
		if ws, err := rendering.ParseWhitespace(c.Render.Whitespace); err == nil {
			b.SetWhitespace(ws)
		}
		if a, err := rendering.ParseTextAlign(c.Render.Align); err == nil {
			b.SetAlign(a)
		}
		if o, err := rendering.ParseOverflowWrap(c.Render.Overflow); err == nil {
			b.SetOverflow(o)
		}
		if t != nil {
			b.BorderStyle(t.TableBorder)
			b.Header(func(s *table.SectionBuilder) { s.SetStyle(t.TableHeader) })
		}
	}
}

// CSVOptions converts the export section into table CSV options.
func (c *Config) CSVOptions() table.CSVOptions {
	opts := table.DefaultCSVOptions()
	if r := []rune(c.Export.CSVDelimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	if q, err := table.ParseCSVQuoting(c.Export.CSVQuoting); err == nil {
		opts.Quoting = q
	}
	return opts
}

func loadConfigEnvVars() map[string]string {
	dir := userConfigDir()
	if dir == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.env"))
	if err != nil {
		return nil
	}

	vars := make(map[string]string)
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimSpace(line)
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		vars[key] = value
	}
	return vars
}
