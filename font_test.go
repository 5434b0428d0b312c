package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFont_simpleFontWithWidthsAndDifferences(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	fontDict := cosDict{
		"Subtype":   cosName("Type1"),
		"BaseFont":  cosName("Helvetica"),
		"FirstChar": int64(65),
		"Widths":    cosArray{int64(600), int64(650)},
		"Encoding": cosDict{
			"BaseEncoding": cosName("WinAnsiEncoding"),
			"Differences":  cosArray{int64(65), cosName("Euro")},
		},
	}
	fi := d.resolveFont(fontDict, objRef{num: 1})
	assert.False(t, fi.isCID)
	assert.Equal(t, 1, fi.CodeWidth())
	assert.Equal(t, float64(600), fi.Width(65))
	assert.Equal(t, float64(650), fi.Width(66))
	assert.Equal(t, float64(0), fi.Width(999))

	text, ok := fi.Decode(65)
	assert.True(t, ok)
	assert.Equal(t, "€", text) // mapped via /Differences to "Euro"
}

func TestResolveFont_simpleFontFallsBackToBaseEncoding(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	fontDict := cosDict{
		"Subtype":  cosName("Type1"),
		"BaseFont": cosName("Helvetica"),
	}
	fi := d.resolveFont(fontDict, objRef{num: 1})
	text, ok := fi.Decode('A')
	assert.True(t, ok)
	assert.Equal(t, "A", text)
}

func TestResolveFont_cidFontIsTwoByteAndUsesDW(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	fontDict := cosDict{
		"Subtype": cosName("Type0"),
		"DescendantFonts": cosArray{
			cosDict{
				"DW": int64(500),
				"W":  cosArray{int64(3), cosArray{int64(700), int64(800)}},
			},
		},
	}
	fi := d.resolveFont(fontDict, objRef{num: 1})
	assert.True(t, fi.isCID)
	assert.Equal(t, 2, fi.CodeWidth())
	assert.Equal(t, float64(700), fi.Width(3))
	assert.Equal(t, float64(800), fi.Width(4))
	assert.Equal(t, float64(500), fi.Width(99)) // falls back to /DW
}

func TestParseCIDWidths_uniformRangeShape(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	widths := parseCIDWidths(d, cosArray{int64(10), int64(12), int64(333)})
	assert.Equal(t, float64(333), widths[10])
	assert.Equal(t, float64(333), widths[11])
	assert.Equal(t, float64(333), widths[12])
	_, ok := widths[13]
	assert.False(t, ok)
}

func TestParseDifferences_assignsSequentialCodes(t *testing.T) {
	d := newTestDocument(map[objRef]interface{}{})
	diffs := parseDifferences(d, cosArray{int64(100), cosName("A"), cosName("B"), int64(200), cosName("C")})
	assert.Equal(t, "A", diffs[100])
	assert.Equal(t, "B", diffs[101])
	assert.Equal(t, "C", diffs[200])
}

func TestFontInfo_Decode_unmappedCodeDrops(t *testing.T) {
	fi := &FontInfo{isCID: true}
	_, ok := fi.Decode(7)
	assert.False(t, ok)
}

func TestFontInfo_Decode_symbolicFallsBackToLatin1(t *testing.T) {
	fi := &FontInfo{symbolic: true}
	text, ok := fi.Decode('A')
	assert.True(t, ok)
	assert.Equal(t, "A", text)
}
