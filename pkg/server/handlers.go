package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/table"
	"github.com/odvcencio/textgrid/pkg/telemetry"
	"github.com/odvcencio/textgrid/pkg/terminal"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

const defaultWidth = 80

// Output formats.
const (
	FormatPlain = "plain"
	FormatANSI  = "ansi"
	FormatHTML  = "html"
)

// RenderRequest is the body of the /v1/render endpoints.
type RenderRequest struct {
	// Text is the source for text and markdown rendering.
	Text string `json:"text,omitempty"`
	// Table is the document for table rendering.
	Table *table.Document `json:"table,omitempty"`

	Width  int    `json:"width,omitempty"`
	Format string `json:"format,omitempty"`
	// Level is the ANSI color level; defaults to truecolor.
	Level      string `json:"level,omitempty"`
	Hyperlinks *bool  `json:"hyperlinks,omitempty"`

	// Text layout overrides.
	Whitespace string              `json:"whitespace,omitempty"`
	Align      string              `json:"align,omitempty"`
	Overflow   string              `json:"overflow,omitempty"`
	Style      table.StyleDocument `json:"style,omitempty"`
}

// RenderResponse carries rendered output.
type RenderResponse struct {
	RequestID string `json:"requestId"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Lines     int    `json:"lines"`
	Output    string `json:"output"`
}

// ExportRequest is the body of the /v1/export endpoints.
type ExportRequest struct {
	Table     *table.Document `json:"table"`
	Delimiter string          `json:"delimiter,omitempty"`
	Quoting   string          `json:"quoting,omitempty"`
	Sheet     string          `json:"sheet,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			limit = n
		}
	}
	events := s.logger.Recent(limit)
	if events == nil {
		events = []logging.Event{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleRenderText(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "text", func(req *RenderRequest) (rendering.Widget, error) {
		style, err := req.Style.TextStyle()
		if err != nil {
			return nil, err
		}
		opts := s.cfg.TextOptions()
		if req.Whitespace != "" {
			ws, err := rendering.ParseWhitespace(req.Whitespace)
			if err != nil {
				return nil, invalidField("whitespace", err)
			}
			opts = append(opts, widgets.WithWhitespace(ws))
		}
		if req.Align != "" {
			a, err := rendering.ParseTextAlign(req.Align)
			if err != nil {
				return nil, invalidField("align", err)
			}
			opts = append(opts, widgets.WithTextAlign(a))
		}
		if req.Overflow != "" {
			o, err := rendering.ParseOverflowWrap(req.Overflow)
			if err != nil {
				return nil, invalidField("overflow", err)
			}
			opts = append(opts, widgets.WithOverflow(o))
		}
		return widgets.NewText(req.Text, style, opts...)
	})
}

func (s *Server) handleRenderMarkdown(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "markdown", func(req *RenderRequest) (rendering.Widget, error) {
		return s.markdown.Render(req.Text)
	})
}

func (s *Server) handleRenderTable(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "table", func(req *RenderRequest) (rendering.Widget, error) {
		if req.Table == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "table document required").
				WithContext("field", "table")
		}
		return req.Table.Build(s.cfg.TableDefaults(s.theme))
	})
}

func invalidField(field string, err error) error {
	return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid "+field).WithContext("field", field)
}

// render decodes a RenderRequest, builds its widget, lays it out and writes
// the encoded output. With ?raw=true the output is the response body.
func (s *Server) render(w http.ResponseWriter, r *http.Request, kind string, build func(*RenderRequest) (rendering.Widget, error)) {
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(AttrKind.String(kind))

	var req RenderRequest
	if err := decodeJSONBody(w, r, &req, s.cfg.Server.MaxBodyBytes); err != nil {
		s.fail(w, r, kind, err)
		return
	}
	width, err := s.width(req.Width)
	if err != nil {
		s.fail(w, r, kind, err)
		return
	}
	encode, format, err := s.encoder(req)
	if err != nil {
		s.fail(w, r, kind, err)
		return
	}

	start := time.Now()
	widget, err := build(&req)
	if err != nil {
		s.fail(w, r, kind, err)
		return
	}
	lines := widget.Render(s.cfg.RenderContext(), width)
	output := encode(lines)
	elapsed := time.Since(start)

	metricRenderDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	metricRenderedLines.WithLabelValues(kind).Add(float64(len(lines)))
	span.SetAttributes(AttrFormat.String(format), AttrWidth.Int(width), AttrLines.Int(len(lines)))
	s.hub.Publish(telemetry.Event{
		Type:      telemetry.EventRenderCompleted,
		RequestID: requestID(r.Context()),
		Kind:      kind,
		Width:     width,
		Lines:     len(lines),
		Duration:  elapsed,
		Data:      map[string]any{"format": format},
	})

	if raw, _ := strconv.ParseBool(r.URL.Query().Get("raw")); raw {
		contentType := "text/plain; charset=utf-8"
		if format == FormatHTML {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(output))
		return
	}
	respondJSON(w, http.StatusOK, RenderResponse{
		RequestID: requestID(r.Context()),
		Format:    format,
		Width:     width,
		Lines:     len(lines),
		Output:    output,
	})
}

func (s *Server) width(requested int) (int, error) {
	w := requested
	if w == 0 {
		w = s.cfg.Render.Width
	}
	if w == 0 {
		w = defaultWidth
	}
	if w < 0 || w > s.cfg.Server.MaxWidth {
		return 0, errors.Newf(errors.ErrCodeInvalidWidth, "width must be between 1 and %d", s.cfg.Server.MaxWidth).
			WithContext("field", "width").
			WithContext("width", requested)
	}
	return w, nil
}

func (s *Server) encoder(req RenderRequest) (func(rendering.Lines) string, string, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	switch format {
	case "", FormatPlain:
		return func(lines rendering.Lines) string {
			return terminal.Render(lines, terminal.LevelNone)
		}, FormatPlain, nil
	case FormatHTML:
		return terminal.RenderHTML, FormatHTML, nil
	case FormatANSI:
		level := terminal.LevelTrueColor
		if req.Level != "" {
			l, err := terminal.ParseLevel(req.Level)
			if err != nil {
				return nil, "", invalidField("level", err)
			}
			level = l
		}
		links := s.cfg.Output.Hyperlinks
		if req.Hyperlinks != nil {
			links = *req.Hyperlinks
		}
		renderer := terminal.Renderer{Level: level, Hyperlinks: links && level != terminal.LevelNone}
		return renderer.Render, FormatANSI, nil
	}
	return nil, "", errors.Newf(errors.ErrCodeInvalidInput, "unknown format %q", req.Format).
		WithContext("field", "format")
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", func(req *ExportRequest, t *table.Table, buf *bytes.Buffer) (string, error) {
		opts := s.cfg.CSVOptions()
		if req.Delimiter != "" {
			d := []rune(req.Delimiter)
			if len(d) != 1 {
				return "", errors.New(errors.ErrCodeInvalidInput, "delimiter must be a single character").
					WithContext("field", "delimiter")
			}
			opts.Delimiter = d[0]
		}
		if req.Quoting != "" {
			q, err := table.ParseCSVQuoting(req.Quoting)
			if err != nil {
				return "", invalidField("quoting", err)
			}
			opts.Quoting = q
		}
		out, err := table.ContentToCSV(t, opts)
		if err != nil {
			return "", err
		}
		buf.WriteString(out)
		return "text/csv; charset=utf-8", nil
	})
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", func(req *ExportRequest, t *table.Table, buf *bytes.Buffer) (string, error) {
		sheet := req.Sheet
		if sheet == "" {
			sheet = s.cfg.Export.Sheet
		}
		if err := table.ContentToXLSX(t, buf, sheet); err != nil {
			return "", err
		}
		w.Header().Set("Content-Disposition", `attachment; filename="table.xlsx"`)
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, kind string, write func(*ExportRequest, *table.Table, *bytes.Buffer) (string, error)) {
	trace.SpanFromContext(r.Context()).SetAttributes(AttrKind.String(kind))

	var req ExportRequest
	if err := decodeJSONBody(w, r, &req, s.cfg.Server.MaxBodyBytes); err != nil {
		s.fail(w, r, kind, err)
		return
	}
	if req.Table == nil {
		s.fail(w, r, kind, errors.New(errors.ErrCodeInvalidInput, "table document required").
			WithContext("field", "table"))
		return
	}
	t, err := req.Table.Build(s.cfg.TableDefaults(nil))
	if err != nil {
		s.fail(w, r, kind, err)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	contentType, err := write(&req, t, &buf)
	if err != nil {
		s.fail(w, r, kind, err)
		return
	}
	metricRenderDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	s.hub.Publish(telemetry.Event{
		Type:      telemetry.EventExportCompleted,
		RequestID: requestID(r.Context()),
		Kind:      kind,
		Duration:  time.Since(start),
		Data:      map[string]any{"bytes": buf.Len(), "rows": t.Grid().RowCount()},
	})

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// fail reports err to the client, the span, the log and event subscribers.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, kind string, err error) {
	status := statusFor(err)
	span := trace.SpanFromContext(r.Context())
	span.RecordError(err)
	span.SetStatus(codes.Error, string(errors.GetCode(err)))

	eventType := telemetry.EventRenderFailed
	if kind == "csv" || kind == "xlsx" {
		eventType = telemetry.EventExportFailed
	}
	s.hub.Publish(telemetry.Event{
		Type:      eventType,
		RequestID: requestID(r.Context()),
		Kind:      kind,
		Data:      map[string]any{"code": string(errors.GetCode(err)), "status": status},
	})
	if status >= http.StatusInternalServerError {
		s.logger.Error(logging.CategoryServer, "request_error", err,
			map[string]any{"request_id": requestID(r.Context()), "kind": kind})
	}
	respondError(w, r, status, err)
}
