package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Writer serializes rendered lines and status messages to one stream.
// It is safe for concurrent use; each call writes whole lines.
type Writer struct {
	out      io.Writer
	renderer Renderer
	mu       sync.Mutex

	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	successStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
}

// New creates a Writer for stdout using detected capabilities.
func New() *Writer {
	info := Detect(os.Stdout)
	return NewWithOutput(os.Stdout, info.Renderer(info.Level, true))
}

// NewWithOutput creates a Writer for out. Status colors follow the
// renderer's level.
func NewWithOutput(out io.Writer, renderer Renderer) *Writer {
	lr := lipgloss.NewRenderer(out)
	lr.SetColorProfile(renderer.Level.Profile())

	return &Writer{
		out:      out,
		renderer: renderer,

		errorStyle: lr.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		warnStyle: lr.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),
		successStyle: lr.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}),
		infoStyle: lr.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),
		dimStyle: lr.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// Renderer returns the renderer lines are written with.
func (w *Writer) Renderer() Renderer {
	return w.renderer
}

// Lines writes rendered lines followed by a newline.
func (w *Writer) Lines(lines rendering.Lines) error {
	text := w.renderer.Render(lines)
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintln(w.out, text)
	return err
}

// Widget renders widget at width and writes it.
func (w *Writer) Widget(ctx rendering.RenderContext, widget rendering.Widget, width int) error {
	return w.Lines(widget.Render(ctx, width))
}

// Println writes text with a newline.
func (w *Writer) Println(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error prints an error message in red.
func (w *Writer) Error(format string, args ...interface{}) {
	w.status(w.errorStyle, "error: ", format, args...)
}

// Warn prints a warning message in yellow.
func (w *Writer) Warn(format string, args ...interface{}) {
	w.status(w.warnStyle, "warning: ", format, args...)
}

// Success prints a success message in green.
func (w *Writer) Success(format string, args ...interface{}) {
	w.status(w.successStyle, "✓ ", format, args...)
}

// Info prints an info message in blue.
func (w *Writer) Info(format string, args ...interface{}) {
	w.status(w.infoStyle, "", format, args...)
}

// Dim prints dimmed/secondary text.
func (w *Writer) Dim(format string, args ...interface{}) {
	w.status(w.dimStyle, "", format, args...)
}

func (w *Writer) status(style lipgloss.Style, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, style.Render(prefix+msg))
}
