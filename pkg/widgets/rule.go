package widgets

import (
	"strings"

	"github.com/odvcencio/textgrid/pkg/cellwidth"
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// DefaultRuleChar draws horizontal rules.
const DefaultRuleChar = "─"

// HorizontalRule is a line across the full width with an optional title
// inset into it.
type HorizontalRule struct {
	title        rendering.Widget
	ruleChar     string
	ruleStyle    rendering.TextStyle
	titleAlign   rendering.TextAlign
	titlePadding int
	overflowTop  bool
}

// RuleOption configures a HorizontalRule.
type RuleOption func(*HorizontalRule)

// WithRuleTitle sets the title widget.
func WithRuleTitle(w rendering.Widget) RuleOption {
	return func(r *HorizontalRule) { r.title = w }
}

// WithRuleChar sets the string the rule is drawn with. It may be longer
// than one cell.
func WithRuleChar(c string) RuleOption {
	return func(r *HorizontalRule) { r.ruleChar = c }
}

// WithRuleStyle styles the rule characters.
func WithRuleStyle(s rendering.TextStyle) RuleOption {
	return func(r *HorizontalRule) { r.ruleStyle = s }
}

// WithTitleAlign positions the title. The default is centered.
func WithTitleAlign(a rendering.TextAlign) RuleOption {
	return func(r *HorizontalRule) { r.titleAlign = a }
}

// WithTitlePadding sets the gap between the title and the rule.
func WithTitlePadding(n int) RuleOption {
	return func(r *HorizontalRule) { r.titlePadding = n }
}

// WithTitleOverflowTop controls where extra title lines go: above the rule
// when true, below it when false.
func WithTitleOverflowTop(top bool) RuleOption {
	return func(r *HorizontalRule) { r.overflowTop = top }
}

// NewHorizontalRule builds a rule. It fails if the rule character is empty
// or contains a line break, or the title padding is negative.
func NewHorizontalRule(opts ...RuleOption) (*HorizontalRule, error) {
	r := &HorizontalRule{
		title:        Empty,
		ruleChar:     DefaultRuleChar,
		titleAlign:   rendering.TextAlignCenter,
		titlePadding: 1,
		overflowTop:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.title == nil {
		r.title = Empty
	}
	switch {
	case r.ruleChar == "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "rule characters cannot be empty")
	case strings.ContainsAny(r.ruleChar, "\r\n"):
		return nil, errors.New(errors.ErrCodeInvalidInput, "rule characters cannot contain line breaks")
	case cellwidth.String(r.ruleChar) == 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "rule characters must have a visible width")
	case r.titlePadding < 0:
		return nil, errors.New(errors.ErrCodeInvalidPadding, "title padding cannot be negative").
			WithContext("padding", r.titlePadding)
	}
	return r, nil
}

// Measure always fills the available width.
func (r *HorizontalRule) Measure(_ rendering.RenderContext, width int) rendering.WidthRange {
	return rendering.FixedRange(width)
}

func (r *HorizontalRule) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	pad := r.titlePadding
	minBar := 4 + 2*pad
	title := rendering.WithAlign(r.title, rendering.TextAlignNone, nil).Render(ctx, max(width-minBar, 0))
	if len(title) == 0 {
		return rendering.Lines{r.rule(width)}
	}

	titleLine := title[0]
	if r.overflowTop {
		titleLine = title[len(title)-1]
	}

	ruleWidth := width - titleLine.Width() - 2*pad
	var left int
	switch r.titleAlign {
	case rendering.TextAlignLeft:
		left = 1
	case rendering.TextAlignRight:
		left = ruleWidth - 1
	default:
		left = ruleWidth / 2
	}

	var spans []rendering.Span
	spans = append(spans, r.rule(left).Spans...)
	if pad > 0 {
		spans = append(spans, rendering.Space(pad, r.ruleStyle))
	}
	spans = append(spans, titleLine.Spans...)
	if pad > 0 {
		spans = append(spans, rendering.Space(pad, r.ruleStyle))
	}
	spans = append(spans, r.rule(ruleWidth-left).Spans...)
	ruleLine := rendering.NewLine(spans...)

	if len(title) == 1 {
		return rendering.Lines{ruleLine}
	}
	if r.overflowTop {
		extra := title[:len(title)-1].SetSize(width, len(title)-1, rendering.VerticalAlignTop, rendering.TextAlignCenter)
		return append(extra, ruleLine)
	}
	extra := title[1:].SetSize(width, len(title)-1, rendering.VerticalAlignTop, rendering.TextAlignCenter)
	return append(rendering.Lines{ruleLine}, extra...)
}

// rule repeats the rule string to exactly width cells.
func (r *HorizontalRule) rule(width int) rendering.Line {
	if width <= 0 {
		return rendering.Line{}
	}
	cw := cellwidth.String(r.ruleChar)
	text := strings.Repeat(r.ruleChar, width/cw)
	if rem := width % cw; rem > 0 {
		head, _ := cellwidth.Default.Take(r.ruleChar, rem)
		text += head
		text += strings.Repeat(" ", rem-cellwidth.String(head))
	}
	lines := rendering.ParseText(text, r.ruleStyle)
	if len(lines) == 0 {
		return rendering.Line{}
	}
	return lines[0]
}
