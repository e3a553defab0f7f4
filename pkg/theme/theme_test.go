package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/textgrid/pkg/rendering"
)

func TestDefaultTheme(t *testing.T) {
	th := DefaultTheme()

	for level := 1; level <= 6; level++ {
		assert.False(t, th.Heading(level).IsZero(), "heading %d style not set", level)
	}
	assert.True(t, th.Strong.Has(rendering.AttrBold))
	assert.True(t, th.CodeSpan.BG.IsSet())
	assert.False(t, th.Code.Keyword.IsZero())
	assert.Equal(t, "•", th.Symbols.Bullet)
	assert.True(t, th.CodeBlockBorder)
}

func TestPlainThemeHasNoStyles(t *testing.T) {
	th := PlainTheme()

	assert.True(t, th.Strong.IsZero())
	assert.True(t, th.Heading(1).IsZero())
	assert.Equal(t, DefaultTheme().Symbols, th.Symbols)
}

func TestASCIITheme(t *testing.T) {
	th := ASCIITheme()

	assert.Equal(t, "*", th.Symbols.Bullet)
	assert.Equal(t, "=", th.HeadingRule(1))
	assert.Equal(t, rendering.BorderASCIIDoubleSectionSeparator.Name, th.BorderType().Name)
	assert.Equal(t, rendering.BorderSquareDoubleSectionSeparator.Name, DefaultTheme().BorderType().Name)
}

func TestHeadingLevelClamped(t *testing.T) {
	th := DefaultTheme()

	assert.Equal(t, th.Heading(1), th.Heading(0))
	assert.Equal(t, th.Heading(6), th.Heading(9))
	assert.Equal(t, " ", th.HeadingRule(12))
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		th, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, th.Name)
	}

	th, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "default", th.Name)

	_, err = Lookup("neon")
	assert.Error(t, err)
}

func TestLookupReturnsCopies(t *testing.T) {
	a, err := Lookup("default")
	require.NoError(t, err)
	a.Symbols.Bullet = "-"

	b, err := Lookup("default")
	require.NoError(t, err)
	assert.Equal(t, "•", b.Symbols.Bullet)
}
