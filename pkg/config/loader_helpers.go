package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadAndMerge loads a YAML file and merges it into the config.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Strings and durations override
// when non-zero; booleans and numbers whose zero value is meaningful
// override only when present in raw.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if boolFieldSet(raw, "render", "width") {
		base.Render.Width = override.Render.Width
	}
	if boolFieldSet(raw, "render", "tab_width") {
		base.Render.TabWidth = override.Render.TabWidth
	}
	if override.Render.Whitespace != "" {
		base.Render.Whitespace = override.Render.Whitespace
	}
	if override.Render.Align != "" {
		base.Render.Align = override.Render.Align
	}
	if override.Render.Overflow != "" {
		base.Render.Overflow = override.Render.Overflow
	}
	if override.Render.Theme != "" {
		base.Render.Theme = override.Render.Theme
	}

	if override.Table.BorderType != "" {
		base.Table.BorderType = override.Table.BorderType
	}
	if override.Table.CellBorders != "" {
		base.Table.CellBorders = override.Table.CellBorders
	}
	if boolFieldSet(raw, "table", "outer_border") {
		base.Table.OuterBorder = override.Table.OuterBorder
	}
	if boolFieldSet(raw, "table", "padding") {
		base.Table.Padding = override.Table.Padding
	}
	if boolFieldSet(raw, "table", "header") {
		base.Table.Header = override.Table.Header
	}

	if override.Markdown.CodeTheme != "" {
		base.Markdown.CodeTheme = override.Markdown.CodeTheme
	}
	if boolFieldSet(raw, "markdown", "show_html") {
		base.Markdown.ShowHTML = override.Markdown.ShowHTML
	}
	if boolFieldSet(raw, "markdown", "hyperlinks") {
		base.Markdown.Hyperlinks = override.Markdown.Hyperlinks
	}

	if override.Output.ColorLevel != "" {
		base.Output.ColorLevel = override.Output.ColorLevel
	}
	if boolFieldSet(raw, "output", "hyperlinks") {
		base.Output.Hyperlinks = override.Output.Hyperlinks
	}

	if override.Export.CSVDelimiter != "" {
		base.Export.CSVDelimiter = override.Export.CSVDelimiter
	}
	if override.Export.CSVQuoting != "" {
		base.Export.CSVQuoting = override.Export.CSVQuoting
	}
	if override.Export.Sheet != "" {
		base.Export.Sheet = override.Export.Sheet
	}

	if override.Server.Bind != "" {
		base.Server.Bind = override.Server.Bind
	}
	if boolFieldSet(raw, "server", "rate_limit") {
		base.Server.RateLimit = override.Server.RateLimit
	}
	if boolFieldSet(raw, "server", "rate_burst") {
		base.Server.RateBurst = override.Server.RateBurst
	}
	if override.Server.MaxBodyBytes != 0 {
		base.Server.MaxBodyBytes = override.Server.MaxBodyBytes
	}
	if override.Server.MaxWidth != 0 {
		base.Server.MaxWidth = override.Server.MaxWidth
	}
	if boolFieldSet(raw, "server", "trace") {
		base.Server.Trace = override.Server.Trace
	}

	if override.Logging.Level != "" {
		base.Logging.Level = strings.ToLower(override.Logging.Level)
	}
	if override.Logging.Dir != "" {
		base.Logging.Dir = expandHomeDir(override.Logging.Dir)
	}

	if override.Watch.Debounce != 0 {
		base.Watch.Debounce = override.Watch.Debounce
	}
}

func boolFieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}

func expandHomeDir(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
