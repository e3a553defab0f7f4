package terminal

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 79
	fallbackHeight = 24
)

// Info describes the terminal an output stream is attached to.
type Info struct {
	Width       int
	Height      int
	Level       Level
	Hyperlinks  bool
	Interactive bool
}

// Detect inspects out and the environment. Streams that are not terminals
// get COLUMNS/LINES or 79x24, and no color unless the environment forces it.
func Detect(out io.Writer) Info {
	info := Info{Width: fallbackWidth, Height: fallbackHeight}
	if n := envInt("COLUMNS"); n > 0 {
		info.Width = n
	}
	if n := envInt("LINES"); n > 0 {
		info.Height = n
	}

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		info.Interactive = true
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			info.Width, info.Height = w, h
		}
	}

	info.Level = levelForProfile(termenv.NewOutput(out).EnvColorProfile())
	info.Hyperlinks = info.Level != LevelNone && hyperlinkTerminal()
	return info
}

// Resolve turns a configured level name into a Level; "auto" and "" use
// the detected level.
func (i Info) Resolve(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return i.Level, nil
	}
	return ParseLevel(name)
}

// Renderer returns a renderer at level. Links are emitted only when
// allowed and the terminal is known to support them.
func (i Info) Renderer(level Level, allowLinks bool) Renderer {
	return Renderer{Level: level, Hyperlinks: allowLinks && i.Hyperlinks && level != LevelNone}
}

// hyperlinkTerminal reports whether the terminal emulator is known to
// support OSC 8 links.
func hyperlinkTerminal() bool {
	if os.Getenv("WT_SESSION") != "" {
		return true
	}
	switch strings.ToLower(os.Getenv("TERM_PROGRAM")) {
	case "hyper", "wezterm", "vscode", "ghostty":
		return true
	case "iterm.app":
		major, _, _ := strings.Cut(os.Getenv("TERM_PROGRAM_VERSION"), ".")
		v, err := strconv.Atoi(major)
		return err == nil && v >= 3
	}
	return false
}

func envInt(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0
	}
	return n
}
