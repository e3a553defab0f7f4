package rendering

import (
	"fmt"
	"strings"
)

// BorderTypeSection is the glyph set for one band of a bordered box.
// Field names list the directions a glyph's strokes point to.
type BorderTypeSection struct {
	ES, ESW, SW     string
	NES, NESW, NSW  string
	NE, NEW, NW     string
	EW, NS          string
	S, N, W, E      string
	corners         [16]string
}

// NewBorderTypeSection builds a section from 15 glyphs in the order
// es esw sw nes nesw nsw ne new nw ew ns s n w e.
func NewBorderTypeSection(glyphs string) (BorderTypeSection, error) {
	r := []rune(glyphs)
	if len(r) != 15 {
		return BorderTypeSection{}, fmt.Errorf("border section needs 15 glyphs, got %d", len(r))
	}
	g := func(i int) string { return string(r[i]) }
	s := BorderTypeSection{
		ES: g(0), ESW: g(1), SW: g(2),
		NES: g(3), NESW: g(4), NSW: g(5),
		NE: g(6), NEW: g(7), NW: g(8),
		EW: g(9), NS: g(10),
		S: g(11), N: g(12), W: g(13), E: g(14),
	}
	// indexed by n<<3 | e<<2 | s<<1 | w
	s.corners = [16]string{
		" ", s.W, s.S, s.SW,
		s.E, s.EW, s.ES, s.ESW,
		s.N, s.NW, s.NS, s.NSW,
		s.NE, s.NEW, s.NES, s.NESW,
	}
	return s, nil
}

func mustSection(glyphs string) BorderTypeSection {
	s, err := NewBorderTypeSection(glyphs)
	if err != nil {
		panic(err)
	}
	return s
}

// Corner returns the glyph whose strokes point in the given directions.
func (s BorderTypeSection) Corner(n, e, south, w bool) string {
	i := 0
	if n {
		i |= 8
	}
	if e {
		i |= 4
	}
	if south {
		i |= 2
	}
	if w {
		i |= 1
	}
	return s.corners[i]
}

// BorderType is a complete border style. Head is used for header rows,
// HeadBottom for the line under the header, Body for body rows, BodyBottom
// for the line above the footer and Foot for footer rows.
type BorderType struct {
	Name       string
	Head       BorderTypeSection
	HeadBottom BorderTypeSection
	Body       BorderTypeSection
	BodyBottom BorderTypeSection
	Foot       BorderTypeSection
}

func uniformBorder(name, glyphs string) BorderType {
	s := mustSection(glyphs)
	return BorderType{Name: name, Head: s, HeadBottom: s, Body: s, BodyBottom: s, Foot: s}
}

// Border type presets.
var (
	BorderSquare  = uniformBorder("square", "┌┬┐├┼┤└┴┘─│╷╵╴╶")
	BorderRounded = uniformBorder("rounded", "╭┬╮├┼┤╰┴╯─│╷╵╴╶")
	BorderHeavy   = uniformBorder("heavy", "┏┳┓┣╋┫┗┻┛━┃╻╹╸╺")
	BorderDouble  = uniformBorder("double", "╔╦╗╠╬╣╚╩╝═║    ")
	BorderASCII   = uniformBorder("ascii", "+++++++++-|    ")
	BorderBlank   = uniformBorder("blank", strings.Repeat(" ", 15))

	BorderSquareDoubleSectionSeparator = BorderType{
		Name:       "square-double-section-separator",
		Head:       mustSection("┌┬┐├┼┤└┴┘─│╷╵╴╶"),
		HeadBottom: mustSection("╒╤╕╞╪╡╘╧╛═│╷╵  "),
		Body:       mustSection("┌┬┐├┼┤└┴┘─│╷╵╴╶"),
		BodyBottom: mustSection("╒╤╕╞╪╡╘╧╛═│╷╵  "),
		Foot:       mustSection("┌┬┐├┼┤└┴┘─│╷╵╴╶"),
	}

	BorderHeavyHeadFoot = BorderType{
		Name:       "heavy-head-foot",
		Head:       mustSection("┏┳┓┣╋┫┗┻┛━┃╻╹╸╺"),
		HeadBottom: mustSection("┍┯┑┡╇┩┗┻┛━╿╷╹╸╺"),
		Body:       mustSection("┌┬┐├┼┤└┴┘─│╷╵╴╶"),
		BodyBottom: mustSection("┏┳┓┢╈┪┕┷┙━╽╻╵╸╺"),
		Foot:       mustSection("┏┳┓┣╋┫┗┻┛━┃╻╹╸╺"),
	}

	BorderASCIIDoubleSectionSeparator = BorderType{
		Name:       "ascii-double-section-separator",
		Head:       mustSection("+++++++++-|    "),
		HeadBottom: mustSection("+++++++++=|    "),
		Body:       mustSection("+++++++++-|    "),
		BodyBottom: mustSection("+++++++++=|    "),
		Foot:       mustSection("+++++++++-|    "),
	}
)

var borderTypes = []BorderType{
	BorderSquare, BorderRounded, BorderHeavy, BorderDouble, BorderASCII, BorderBlank,
	BorderSquareDoubleSectionSeparator, BorderHeavyHeadFoot, BorderASCIIDoubleSectionSeparator,
}

// ParseBorderType looks up a preset by name.
func ParseBorderType(name string) (BorderType, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, bt := range borderTypes {
		if bt.Name == key {
			return bt, nil
		}
	}
	return BorderType{}, fmt.Errorf("unknown border type %q", name)
}
