package table

import (
	"math"
	"strings"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

// CSVQuoting selects which fields are quoted.
type CSVQuoting int

const (
	// QuoteMinimal quotes fields containing the delimiter, the quote
	// character or a line terminator character.
	QuoteMinimal CSVQuoting = iota
	// QuoteAll quotes every field.
	QuoteAll
	// QuoteNonNumeric quotes every field containing anything but digits.
	QuoteNonNumeric
	// QuoteNone never quotes; special characters need an escape character.
	QuoteNone
)

// ParseCSVQuoting reads "all", "minimal", "nonnumeric" or "none".
func ParseCSVQuoting(s string) (CSVQuoting, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "", "minimal":
		return QuoteMinimal, nil
	case "all":
		return QuoteAll, nil
	case "nonnumeric":
		return QuoteNonNumeric, nil
	case "none":
		return QuoteNone, nil
	}
	return QuoteMinimal, errors.Newf(errors.ErrCodeInvalidInput, "unknown csv quoting %q", s)
}

// CSVOptions configures ContentToCSV.
type CSVOptions struct {
	Delimiter rune
	QuoteChar rune
	// EscapeChar prefixes special characters when quoting is QuoteNone or
	// DoubleQuote is false. Zero means no escape character.
	EscapeChar rune
	// DoubleQuote doubles quote characters inside quoted fields.
	DoubleQuote    bool
	LineTerminator string
	Quoting        CSVQuoting
}

// DefaultCSVOptions returns comma separated, minimally quoted options.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:      ',',
		QuoteChar:      '"',
		LineTerminator: "\n",
		Quoting:        QuoteMinimal,
	}
}

// ContentToCSV writes the text of every cell as CSV. Slots covered by a
// spanning cell are empty fields. Only text cells can be exported.
func ContentToCSV(t *Table, opts CSVOptions) (string, error) {
	rows, err := contentRows(t)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteRune(opts.Delimiter)
			}
			field, err := opts.field(cell)
			if err != nil {
				return "", err
			}
			sb.WriteString(field)
		}
		sb.WriteString(opts.LineTerminator)
	}
	return sb.String(), nil
}

func (o CSVOptions) field(cell string) (string, error) {
	quote := string(o.QuoteChar)
	esc := ""
	if o.EscapeChar != 0 {
		esc = string(o.EscapeChar)
	}
	special := string(o.Delimiter) + o.LineTerminator
	hasQuote := strings.Contains(cell, quote)
	hasSpecial := strings.ContainsAny(cell, special)

	out := cell
	if esc != "" {
		out = strings.ReplaceAll(out, esc, esc+esc)
	}

	if hasQuote {
		switch {
		case o.DoubleQuote && o.Quoting != QuoteNone:
			out = strings.ReplaceAll(out, quote, quote+quote)
		case esc != "":
			out = strings.ReplaceAll(out, quote, esc+quote)
		default:
			return "", errNeedsEscape(cell)
		}
	}

	var needsQuote bool
	switch o.Quoting {
	case QuoteAll:
		needsQuote = true
	case QuoteMinimal:
		needsQuote = ((esc == "" || o.DoubleQuote) && hasQuote) || hasSpecial
	case QuoteNonNumeric:
		needsQuote = strings.ContainsFunc(cell, func(r rune) bool { return r < '0' || r > '9' })
	case QuoteNone:
		if hasSpecial {
			if esc == "" {
				return "", errNeedsEscape(cell)
			}
			var sb strings.Builder
			for _, r := range out {
				if strings.ContainsRune(special, r) {
					sb.WriteString(esc)
				}
				sb.WriteRune(r)
			}
			out = sb.String()
		}
	}

	if needsQuote {
		return quote + out + quote, nil
	}
	return out, nil
}

func errNeedsEscape(cell string) error {
	return errors.New(errors.ErrCodeExport, "content requires escaping, but no escape character is set").
		WithContext("field", cell)
}

// contentRows returns the plain text of every declared slot, row by row.
func contentRows(t *Table) ([][]string, error) {
	g := t.grid
	ctx := rendering.DefaultContext()
	rows := make([][]string, len(g.rows))
	for y, row := range g.rows {
		rows[y] = make([]string, len(row))
		for x, c := range row {
			if c.Kind != KindContent {
				continue
			}
			text, err := cellText(ctx, g.Content(c).Widget)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeExport, "cannot export cell").
					WithContext("row", y).
					WithContext("column", x)
			}
			rows[y][x] = text
		}
	}
	return rows, nil
}

// cellText renders a text cell unwrapped and unaligned.
func cellText(ctx rendering.RenderContext, w rendering.Widget) (string, error) {
	if p, ok := w.(*widgets.Padded); ok {
		w = p.Content()
	}
	if widgets.IsEmpty(w) {
		return "", nil
	}
	t, ok := w.(*widgets.Text)
	if !ok {
		return "", errors.Newf(errors.ErrCodeExport, "only text cells can be exported, got %T", w)
	}
	return t.WithAlign(rendering.TextAlignNone, nil).Render(ctx, math.MaxInt32).String(), nil
}
