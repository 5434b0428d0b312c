package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameToRune_curatedTableLookup(t *testing.T) {
	r, ok := nameToRune("Euro")
	assert.True(t, ok)
	assert.Equal(t, '€', r)
}

func TestNameToRune_uniPrefixFourHexDigits(t *testing.T) {
	r, ok := nameToRune("uni20AC") // Euro sign
	assert.True(t, ok)
	assert.Equal(t, '€', r)
}

func TestNameToRune_uPrefixFourToSixHexDigits(t *testing.T) {
	r, ok := nameToRune("u20AC")
	assert.True(t, ok)
	assert.Equal(t, '€', r)

	r, ok = nameToRune("u1F600")
	assert.True(t, ok)
	assert.Equal(t, rune(0x1F600), r)
}

func TestNameToRune_suffixIsStrippedBeforeLookup(t *testing.T) {
	r, ok := nameToRune("ampersand.sc")
	assert.True(t, ok)
	assert.Equal(t, '&', r)
}

func TestNameToRune_unknownNameFails(t *testing.T) {
	_, ok := nameToRune("thisGlyphNameDoesNotExist")
	assert.False(t, ok)
}

func TestNameToRune_uniPrefixNonHexFallsThroughToTable(t *testing.T) {
	// "unicorn" starts with "uni" but the next four characters
	// ("corn") aren't valid hex digits, so the uniXXXX rule must not
	// match; since "unicorn" also isn't in the curated table, lookup
	// fails rather than misparsing a hex value out of it.
	_, ok := nameToRune("unicorn")
	assert.False(t, ok)
}

func TestParseHexRune_rejectsShortInput(t *testing.T) {
	_, ok := parseHexRune("1F6")
	assert.False(t, ok)
}

func TestParseHexRune_rejectsNonHex(t *testing.T) {
	_, ok := parseHexRune("ZZZZ")
	assert.False(t, ok)
}
