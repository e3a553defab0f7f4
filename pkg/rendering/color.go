package rendering

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorMode defines how a color is represented.
type ColorMode uint8

const (
	// ColorModeNone means no color was specified; it inherits when styles combine.
	ColorModeNone ColorMode = iota
	// ColorModeDefault resets to the terminal default color.
	ColorModeDefault
	// ColorMode16 uses basic 16 ANSI colors (0-15).
	ColorMode16
	// ColorMode256 uses extended 256 color palette.
	ColorMode256
	// ColorModeRGB uses 24-bit true color.
	ColorModeRGB
)

// Color represents a terminal color.
type Color struct {
	Mode  ColorMode
	Value uint32 // For 16/256: color index, For RGB: 0xRRGGBB
}

// Pre-defined colors for convenience.
var (
	ColorNone    = Color{Mode: ColorModeNone}
	ColorDefault = Color{Mode: ColorModeDefault}

	ColorBlack   = Color{Mode: ColorMode16, Value: 0}
	ColorRed     = Color{Mode: ColorMode16, Value: 1}
	ColorGreen   = Color{Mode: ColorMode16, Value: 2}
	ColorYellow  = Color{Mode: ColorMode16, Value: 3}
	ColorBlue    = Color{Mode: ColorMode16, Value: 4}
	ColorMagenta = Color{Mode: ColorMode16, Value: 5}
	ColorCyan    = Color{Mode: ColorMode16, Value: 6}
	ColorWhite   = Color{Mode: ColorMode16, Value: 7}

	ColorBrightBlack   = Color{Mode: ColorMode16, Value: 8}
	ColorBrightRed     = Color{Mode: ColorMode16, Value: 9}
	ColorBrightGreen   = Color{Mode: ColorMode16, Value: 10}
	ColorBrightYellow  = Color{Mode: ColorMode16, Value: 11}
	ColorBrightBlue    = Color{Mode: ColorMode16, Value: 12}
	ColorBrightMagenta = Color{Mode: ColorMode16, Value: 13}
	ColorBrightCyan    = Color{Mode: ColorMode16, Value: 14}
	ColorBrightWhite   = Color{Mode: ColorMode16, Value: 15}
)

var namedColors = map[string]Color{
	"black":          ColorBlack,
	"red":            ColorRed,
	"green":          ColorGreen,
	"yellow":         ColorYellow,
	"blue":           ColorBlue,
	"magenta":        ColorMagenta,
	"cyan":           ColorCyan,
	"white":          ColorWhite,
	"gray":           ColorBrightBlack,
	"grey":           ColorBrightBlack,
	"bright_black":   ColorBrightBlack,
	"bright_red":     ColorBrightRed,
	"bright_green":   ColorBrightGreen,
	"bright_yellow":  ColorBrightYellow,
	"bright_blue":    ColorBrightBlue,
	"bright_magenta": ColorBrightMagenta,
	"bright_cyan":    ColorBrightCyan,
	"bright_white":   ColorBrightWhite,
	"default":        ColorDefault,
}

// Color256 creates a 256-palette color (0-255).
func Color256(index uint8) Color {
	return Color{Mode: ColorMode256, Value: uint32(index)}
}

// RGB creates a 24-bit true color.
func RGB(r, g, b uint8) Color {
	return Color{Mode: ColorModeRGB, Value: uint32(r)<<16 | uint32(g)<<8 | uint32(b)}
}

// Hex creates a color from hex value (0xRRGGBB).
func Hex(hex uint32) Color {
	return Color{Mode: ColorModeRGB, Value: hex & 0xFFFFFF}
}

// IsSet reports whether the color was specified.
func (c Color) IsSet() bool {
	return c.Mode != ColorModeNone
}

// RGBComponents returns the red, green, blue components of an RGB color.
func (c Color) RGBComponents() (r, g, b uint8) {
	return uint8(c.Value >> 16), uint8(c.Value >> 8), uint8(c.Value)
}

// String renders the color in the form ParseColor accepts.
func (c Color) String() string {
	switch c.Mode {
	case ColorModeNone:
		return ""
	case ColorModeDefault:
		return "default"
	case ColorMode16, ColorMode256:
		return strconv.Itoa(int(c.Value))
	default:
		return fmt.Sprintf("#%06x", c.Value)
	}
}

// ParseColor accepts a color name ("red", "bright_blue"), a palette index
// ("0".."255") or a hex triplet ("#ff8800"). The empty string is ColorNone.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ColorNone, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return ColorNone, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return ColorNone, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return Hex(uint32(v)), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return ColorNone, fmt.Errorf("unknown color %q", s)
	}
	if n < 16 {
		return Color{Mode: ColorMode16, Value: uint32(n)}, nil
	}
	return Color256(uint8(n)), nil
}
