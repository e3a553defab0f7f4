package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odvcencio/textgrid/pkg/config"
	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/telemetry"
)

const tableBody = `{"table": {"header": [["name", "size"]], "body": [["a", 12]]}`

func newServer(t *testing.T, mutate func(*config.Config), opts Options) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	s := newServer(t, nil, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
}

func TestRequestIDPropagates(t *testing.T) {
	s := newServer(t, nil, Options{})
	req := httptest.NewRequest(http.MethodPost, "/v1/render/text", strings.NewReader(`{"text":"x"}`))
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", decode[RenderResponse](t, rec).RequestID)
}

func TestRenderTextPlain(t *testing.T) {
	s := newServer(t, nil, Options{})
	rec := do(t, s, http.MethodPost, "/v1/render/text", `{"text":"hello world","width":5}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[RenderResponse](t, rec)
	assert.Equal(t, FormatPlain, resp.Format)
	assert.Equal(t, 5, resp.Width)
	assert.Equal(t, 2, resp.Lines)
	assert.Equal(t, []string{"hello", "world"}, trimmedLines(resp.Output))
}

func TestRenderTextOverrides(t *testing.T) {
	s := newServer(t, nil, Options{})
	rec := do(t, s, http.MethodPost, "/v1/render/text",
		`{"text":"ab","width":6,"align":"right","format":"ansi","level":"truecolor","style":{"fg":"#ff0000"}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[RenderResponse](t, rec)
	assert.Contains(t, resp.Output, "38;2;255;0;0")
	assert.Equal(t, "    ab", ansi.Strip(resp.Output))
}

func TestRenderMarkdownHTML(t *testing.T) {
	s := newServer(t, nil, Options{})
	rec := do(t, s, http.MethodPost, "/v1/render/markdown", `{"text":"# Title\n\nsome *body*","format":"html","width":30}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[RenderResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.Output, "<pre"))
	assert.Contains(t, resp.Output, "Title")
	assert.Contains(t, resp.Output, "body")
}

func TestRenderTableRaw(t *testing.T) {
	s := newServer(t, nil, Options{})
	rec := do(t, s, http.MethodPost, "/v1/render/table?raw=true", tableBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "12")
	assert.True(t, strings.HasPrefix(out, "┌"), out)
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
		field  string
	}{
		{"width too wide", "/v1/render/text", `{"text":"x","width":5000}`, 400, "INVALID_WIDTH", "width"},
		{"negative width", "/v1/render/text", `{"text":"x","width":-1}`, 400, "INVALID_WIDTH", "width"},
		{"unknown format", "/v1/render/text", `{"text":"x","format":"pdf"}`, 400, "INVALID_INPUT", "format"},
		{"unknown level", "/v1/render/text", `{"text":"x","format":"ansi","level":"sepia"}`, 400, "INVALID_INPUT", "level"},
		{"bad align", "/v1/render/text", `{"text":"x","align":"middle"}`, 400, "INVALID_INPUT", "align"},
		{"bad json", "/v1/render/text", `{"text":`, 400, "INVALID_INPUT", ""},
		{"empty body", "/v1/render/text", ``, 400, "INVALID_INPUT", ""},
		{"missing table", "/v1/render/table", `{}`, 400, "INVALID_INPUT", "table"},
		{"bad border", "/v1/render/table", `{"table":{"border":"wavy"}}`, 400, "INVALID_INPUT", "border"},
		{"bad span", "/v1/render/table", `{"table":{"body":[[{"text":"x","column_span":0}]]}}`, 200, "", ""},
		{"negative span", "/v1/render/table", `{"table":{"body":[[{"text":"x","row_span":-2}]]}}`, 400, "INVALID_SPAN_COUNT", ""},
	}
	s := newServer(t, nil, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				return
			}
			resp := decode[errorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.field, resp.Field)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	s := newServer(t, func(c *config.Config) { c.Server.MaxBodyBytes = 16 }, Options{})
	rec := do(t, s, http.MethodPost, "/v1/render/text", `{"text":"`+strings.Repeat("x", 64)+`"}`)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "BODY_TOO_LARGE", resp.Code)
	assert.NotEmpty(t, resp.Remediation)
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, func(c *config.Config) {
		c.Server.RateLimit = 0.001
		c.Server.RateBurst = 1
	}, Options{})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/v1/render/text", `{"text":"a"}`).Code)
	rec := do(t, s, http.MethodPost, "/v1/render/text", `{"text":"a"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decode[errorResponse](t, rec).Code)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code, "health checks are not limited")
}

func TestExportCSV(t *testing.T) {
	s := newServer(t, nil, Options{})

	rec := do(t, s, http.MethodPost, "/v1/export/csv", tableBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "name,size\na,12\n", rec.Body.String())

	body := `{"delimiter":";","quoting":"all",` + strings.TrimPrefix(tableBody, "{")
	rec = do(t, s, http.MethodPost, "/v1/export/csv", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "\"name\";\"size\"\n\"a\";\"12\"\n", rec.Body.String())

	rec = do(t, s, http.MethodPost, "/v1/export/csv", `{"delimiter":";;",`+strings.TrimPrefix(tableBody, "{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportXLSX(t *testing.T) {
	s := newServer(t, nil, Options{})
	rec := do(t, s, http.MethodPost, "/v1/export/xlsx", `{"sheet":"Data",`+strings.TrimPrefix(tableBody, "{"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "table.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Data", "A1")
	require.NoError(t, err)
	assert.Equal(t, "name", v)
	v, err = f.GetCellValue("Data", "B2")
	require.NoError(t, err)
	assert.Equal(t, "12", v)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, nil, Options{})
	do(t, s, http.MethodPost, "/v1/render/text", `{"text":"x"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `textgrid_http_requests_total{code="200",route="/v1/render/text"}`)
	assert.Contains(t, rec.Body.String(), "textgrid_render_duration_seconds")
}

func TestDebugEvents(t *testing.T) {
	logger := logging.New(io.Discard, "test")
	logger.SetMinLevel(logging.LevelDebug)
	s := newServer(t, nil, Options{Logger: logger})

	do(t, s, http.MethodGet, "/healthz", "")
	rec := do(t, s, http.MethodGet, "/debug/events?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Events []logging.Event `json:"events"`
	}](t, rec)
	require.NotEmpty(t, resp.Events)
	assert.Equal(t, "request", resp.Events[0].EventType)
	assert.Equal(t, "GET /healthz", resp.Events[0].Message)
	assert.NotEmpty(t, resp.Events[0].RequestID)
}

func TestPublishesTelemetry(t *testing.T) {
	hub := telemetry.NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()
	s := newServer(t, nil, Options{Hub: hub})

	do(t, s, http.MethodPost, "/v1/render/table", tableBody)
	do(t, s, http.MethodPost, "/v1/render/text", `{"text":"x","width":-3}`)

	ev := <-ch
	assert.Equal(t, telemetry.EventRenderCompleted, ev.Type)
	assert.Equal(t, "table", ev.Kind)
	assert.Equal(t, 5, ev.Lines)
	ev = <-ch
	assert.Equal(t, telemetry.EventRenderFailed, ev.Type)
	assert.Equal(t, "INVALID_WIDTH", ev.Data["code"])
}

func TestEventStream(t *testing.T) {
	s := newServer(t, nil, Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, ": connected"), line)

	post, err := http.Post(ts.URL+"/v1/render/text", "application/json", strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, err)
	post.Body.Close()

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			break
		}
	}
	assert.Equal(t, "event: render.completed\n", line)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"kind":"text"`)
}

func TestServeStopsOnCancel(t *testing.T) {
	s := newServer(t, nil, Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestTracingExportsSpans(t *testing.T) {
	var spans bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.Server.Trace = true
	s, err := New(cfg, Options{TraceOutput: &spans, Version: "test"})
	require.NoError(t, err)

	do(t, s, http.MethodPost, "/v1/render/text", `{"text":"x"}`)
	require.NoError(t, s.Shutdown())

	out := spans.String()
	assert.Contains(t, out, "POST /v1/render/text")
	assert.Contains(t, out, "textgrid.render.kind")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxWidth = 0
	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func trimmedLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}
