package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/textgrid/pkg/cellwidth"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Pager shows rendered lines full screen with a status bar. Content can
// be replaced while it runs.
type Pager struct {
	screen tcell.Screen
	title  string

	mu    sync.Mutex
	lines rendering.Lines
	top   int
}

// NewPager creates a pager on screen. A nil screen uses the terminal.
func NewPager(screen tcell.Screen, title string, lines rendering.Lines) (*Pager, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("opening terminal: %w", err)
		}
		screen = s
	}
	return &Pager{screen: screen, title: title, lines: lines}, nil
}

// SetLines replaces the content, keeping the scroll position where possible.
func (p *Pager) SetLines(lines rendering.Lines) {
	p.mu.Lock()
	p.lines = lines
	p.top = p.clampTop(p.top)
	p.mu.Unlock()
	_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Top returns the index of the first visible line.
func (p *Pager) Top() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.top
}

// Run takes over the screen until the user quits or ctx is done.
func (p *Pager) Run(ctx context.Context) error {
	if err := p.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer p.screen.Fini()
	p.screen.HideCursor()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-done:
		}
	}()

	for {
		p.Draw()
		switch ev := p.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			p.screen.Sync()
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventKey:
			if !p.HandleKey(ev.Key(), ev.Rune()) {
				return nil
			}
		}
	}
}

// HandleKey applies a key press and reports whether the pager keeps
// running.
func (p *Pager) HandleKey(key tcell.Key, r rune) bool {
	_, height := p.screen.Size()
	page := max(height-1, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyDown, tcell.KeyEnter:
		p.top = p.clampTop(p.top + 1)
	case tcell.KeyUp:
		p.top = p.clampTop(p.top - 1)
	case tcell.KeyPgDn:
		p.top = p.clampTop(p.top + page)
	case tcell.KeyPgUp:
		p.top = p.clampTop(p.top - page)
	case tcell.KeyHome:
		p.top = 0
	case tcell.KeyEnd:
		p.top = p.clampTop(len(p.lines))
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'j':
			p.top = p.clampTop(p.top + 1)
		case 'k':
			p.top = p.clampTop(p.top - 1)
		case ' ', 'f':
			p.top = p.clampTop(p.top + page)
		case 'b':
			p.top = p.clampTop(p.top - page)
		case 'g':
			p.top = 0
		case 'G':
			p.top = p.clampTop(len(p.lines))
		}
	}
	return true
}

// clampTop keeps the last page full. Callers hold mu.
func (p *Pager) clampTop(top int) int {
	_, height := p.screen.Size()
	maxTop := max(len(p.lines)-max(height-1, 1), 0)
	return min(max(top, 0), maxTop)
}

// Draw paints the visible lines and the status bar.
func (p *Pager) Draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.screen.Clear()
	width, height := p.screen.Size()
	body := max(height-1, 0)
	for y := 0; y < body && p.top+y < len(p.lines); y++ {
		drawLine(p.screen, y, width, p.lines[p.top+y])
	}

	if height < 1 {
		return
	}
	last := min(p.top+body, len(p.lines))
	status := fmt.Sprintf(" %s  %d-%d/%d ", p.title, min(p.top+1, last), last, len(p.lines))
	statusStyle := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range status {
		if x >= width {
			break
		}
		p.screen.SetContent(x, height-1, r, nil, statusStyle)
		x += max(cellwidth.Rune(r), 1)
	}
	for ; x < width; x++ {
		p.screen.SetContent(x, height-1, ' ', nil, statusStyle)
	}
	p.screen.Show()
}

func drawLine(screen tcell.Screen, y, width int, line rendering.Line) {
	x := 0
	for _, span := range line.Spans {
		style := cellStyle(span.Style())
		var main rune
		var comb []rune
		mainWidth := 0
		flush := func() {
			if mainWidth > 0 && x+mainWidth <= width {
				screen.SetContent(x, y, main, comb, style)
			}
			x += mainWidth
			main, comb, mainWidth = 0, nil, 0
		}
		for _, r := range span.Text() {
			w := cellwidth.Rune(r)
			if w == 0 {
				if mainWidth > 0 {
					comb = append(comb, r)
				}
				continue
			}
			flush()
			main, mainWidth = r, w
		}
		flush()
		if x >= width {
			return
		}
	}
}

func cellStyle(s rendering.TextStyle) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(cellColor(s.FG)).
		Background(cellColor(s.BG))
	if s.Has(rendering.AttrBold) {
		style = style.Bold(true)
	}
	if s.Has(rendering.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Has(rendering.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Has(rendering.AttrDim) {
		style = style.Dim(true)
	}
	if s.Has(rendering.AttrBlink) {
		style = style.Blink(true)
	}
	if s.Has(rendering.AttrReverse) {
		style = style.Reverse(true)
	}
	if s.Has(rendering.AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}
	if s.Hyperlink != "" {
		style = style.Url(s.Hyperlink)
	}
	return style
}

func cellColor(c rendering.Color) tcell.Color {
	switch c.Mode {
	case rendering.ColorMode16, rendering.ColorMode256:
		return tcell.PaletteColor(int(c.Value))
	case rendering.ColorModeRGB:
		r, g, b := c.RGBComponents()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	default:
		return tcell.ColorDefault
	}
}
