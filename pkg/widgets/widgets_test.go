package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

func TestEmpty(t *testing.T) {
	assert.Equal(t, rendering.WidthRange{}, Empty.Measure(ctx, 10))
	assert.Empty(t, Empty.Render(ctx, 10))
	assert.True(t, IsEmpty(Empty))
	assert.False(t, IsEmpty(PlainText("x")))
}

func TestNewPaddingRejectsNegative(t *testing.T) {
	_, err := NewPadding(0, -1, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidPadding))

	p, err := NewPadding(1, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Width())
}

func TestPadded(t *testing.T) {
	w := WithPadding(PlainText("ab"), Padding{Top: 1, Right: 2, Bottom: 1, Left: 3}, true)

	assert.Equal(t, rendering.WidthRange{Min: 7, Max: 7}, w.Measure(ctx, 10))
	assert.Equal(t, "\n   ab  \n", render(t, w, 10))
}

func TestPaddedMerges(t *testing.T) {
	inner := WithPadding(PlainText("x"), HorizontalPadding(1), true)
	outer := WithPadding(inner, Padding{Left: 2}, true)

	p, ok := outer.(*Padded)
	require.True(t, ok)
	assert.Equal(t, Padding{Left: 3, Right: 1}, p.Padding())
	_, nested := p.Content().(*Padded)
	assert.False(t, nested)
	assert.Equal(t, "   x ", render(t, outer, 10))
}

func TestPaddedEmptyLines(t *testing.T) {
	content := PlainText("a\n\nb")

	padded := WithPadding(content, Padding{Left: 1}, true)
	assert.Equal(t, " a\n \n b", render(t, padded, 10))

	unpadded := WithPadding(content, Padding{Left: 1}, false)
	assert.Equal(t, " a\n\n b", render(t, unpadded, 10))
}

func TestPaddingEmptyIsNoop(t *testing.T) {
	w := PlainText("x")
	assert.Same(t, w, WithPadding(w, Padding{}, true))
}

func TestCaption(t *testing.T) {
	c := NewCaption(PlainText("content"), CaptionText("top", rendering.TextAlignCenter), nil)
	assert.Equal(t, "  top  \ncontent", render(t, c, 20))
	assert.Equal(t, rendering.WidthRange{Min: 7, Max: 7}, c.Measure(ctx, 20))
}

func TestHorizontalRule(t *testing.T) {
	plain, err := NewHorizontalRule()
	require.NoError(t, err)
	assert.Equal(t, "─────", render(t, plain, 5))
	assert.Equal(t, rendering.WidthRange{Min: 5, Max: 5}, plain.Measure(ctx, 5))

	titled, err := NewHorizontalRule(WithRuleTitle(PlainText("ab")))
	require.NoError(t, err)
	assert.Equal(t, "─── ab ───", render(t, titled, 10))

	left, err := NewHorizontalRule(WithRuleTitle(PlainText("ab")), WithTitleAlign(rendering.TextAlignLeft))
	require.NoError(t, err)
	assert.Equal(t, "─ ab ─────", render(t, left, 10))

	multi, err := NewHorizontalRule(WithRuleChar("=-"))
	require.NoError(t, err)
	assert.Equal(t, "=-=-=", render(t, multi, 5))
}

func TestHorizontalRuleMultilineTitle(t *testing.T) {
	top, err := NewHorizontalRule(WithRuleTitle(PlainText("a\nb")))
	require.NoError(t, err)
	assert.Equal(t, "    a     \n─── b ────", render(t, top, 10))

	bottom, err := NewHorizontalRule(WithRuleTitle(PlainText("a\nb")), WithTitleOverflowTop(false))
	require.NoError(t, err)
	assert.Equal(t, "─── a ────\n    b     ", render(t, bottom, 10))
}

func TestHorizontalRuleValidation(t *testing.T) {
	_, err := NewHorizontalRule(WithRuleChar(""))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = NewHorizontalRule(WithRuleChar("a\nb"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = NewHorizontalRule(WithTitlePadding(-1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidPadding))
}

func TestPanel(t *testing.T) {
	p, err := NewPanel(PlainText("my panel content"),
		WithTitle(TitleText("title")),
		WithBottomTitle(TitleText("subtitle")),
		WithPanelTitleAlign(rendering.TextAlignLeft),
		WithBottomTitleAlign(rendering.TextAlignRight))
	require.NoError(t, err)

	want := "╭─ title ────────╮\n" +
		"│my panel content│\n" +
		"╰───── subtitle ─╯"
	assert.Equal(t, want, render(t, p, 80))
}

func TestPanelExpandAndPadding(t *testing.T) {
	p, err := NewPanel(PlainText("x"),
		WithExpand(true),
		WithBorder(rendering.BorderSquare),
		WithPanelPadding(HorizontalPadding(1)))
	require.NoError(t, err)

	want := "┌─────┐\n" +
		"│ x   │\n" +
		"└─────┘"
	assert.Equal(t, want, render(t, p, 7))
}

func TestPanelWithoutBorder(t *testing.T) {
	p, err := NewPanel(PlainText("body"), WithoutBorder())
	require.NoError(t, err)
	assert.Equal(t, "body", render(t, p, 10))
}

func TestPanelRejectsNegativePadding(t *testing.T) {
	_, err := NewPanel(PlainText("x"), WithPanelPadding(Padding{Top: -1}))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidPadding))
}

func TestVerticalLayout(t *testing.T) {
	v, err := NewVerticalLayout([]rendering.Widget{PlainText("a"), Empty, PlainText("bb")}, WithSpacing(1))
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, "a\n\n\n\nbb", render(t, v, 10))
	assert.Equal(t, rendering.WidthRange{Min: 2, Max: 2}, v.Measure(ctx, 10))
}

func TestVerticalLayoutAligned(t *testing.T) {
	v, err := NewVerticalLayout([]rendering.Widget{PlainText("a"), PlainText("bb")},
		WithSpacing(1), WithLayoutAlign(rendering.TextAlignRight))
	require.NoError(t, err)
	assert.Equal(t, " a\n  \nbb", render(t, v, 10))

	_, err = NewVerticalLayout(nil, WithSpacing(-1))
	assert.Error(t, err)
}

func TestConcurrentRender(t *testing.T) {
	w := mustText(t, "the quick brown fox jumps over the lazy dog",
		WithWhitespace(rendering.WhitespaceNormal),
		WithTextAlign(rendering.TextAlignJustify))
	want := render(t, w, 11)

	done := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- w.Render(ctx, 11).String() }()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}
