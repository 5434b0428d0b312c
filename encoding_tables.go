package pdftext

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// baseEncoding decodes a single byte under one of the four base
// encodings a simple font's /Encoding can name. WinAnsiEncoding and
// MacRomanEncoding are single-byte code pages golang.org/x/text
// already ships tables for (Windows-1252 and Macintosh respectively),
// so those two are delegated there rather than hand-copied; Standard
// and MacExpert are PostScript-native encodings x/text doesn't carry,
// so those go through the glyph-name table below and AGL.
func baseEncoding(name string, code byte) (rune, bool) {
	switch name {
	case "WinAnsiEncoding":
		return decodeCharmap(charmap.Windows1252, code)
	case "MacRomanEncoding":
		return decodeCharmap(charmap.Macintosh, code)
	case "MacExpertEncoding":
		if n := macExpertEncodingNames[code]; n != "" {
			return nameToRune(n)
		}
		return 0, false
	default: // StandardEncoding, and the fallback for any other encoding name
		if n := standardEncodingNames[code]; n != "" {
			return nameToRune(n)
		}
		return 0, false
	}
}

func decodeCharmap(cm *charmap.Charmap, code byte) (rune, bool) {
	r := cm.DecodeByte(code)
	if r == utf8.RuneError {
		return 0, false
	}
	return r, true
}

// standardEncodingNames covers the ASCII range (shared by every text
// encoding PDF defines) plus StandardEncoding's high half. Unlisted
// codes decode as unmapped, which the font resolver reports as a
// dropped codepoint rather than guessing.
var standardEncodingNames = buildASCIINames(map[byte]string{
	0x27: "quoteright", 0x60: "quoteleft",
	0xA1: "exclamdown", 0xA2: "cent", 0xA3: "sterling", 0xA4: "fraction",
	0xA5: "yen", 0xA6: "florin", 0xA7: "section", 0xA8: "currency",
	0xA9: "quotesingle", 0xAA: "quotedblleft", 0xAB: "guillemotleft",
	0xAC: "guilsinglleft", 0xAD: "guilsinglright", 0xAE: "fi", 0xAF: "fl",
	0xB1: "endash", 0xB2: "dagger", 0xB3: "daggerdbl", 0xB4: "periodcentered",
	0xB6: "paragraph", 0xB7: "bullet", 0xB8: "quotesinglbase",
	0xB9: "quotedblbase", 0xBA: "quotedblright", 0xBB: "guillemotright",
	0xBC: "ellipsis", 0xBD: "perthousand", 0xBF: "questiondown",
	0xC1: "grave", 0xC2: "acute", 0xC3: "circumflex", 0xC4: "tilde",
	0xC5: "macron", 0xC6: "breve", 0xC7: "dotaccent", 0xC8: "dieresis",
	0xCA: "ring", 0xCB: "cedilla", 0xCD: "hungarumlaut", 0xCE: "ogonek",
	0xCF: "caron", 0xD0: "emdash", 0xE1: "AE", 0xE3: "ordfeminine",
	0xE8: "Lslash", 0xE9: "Oslash", 0xEA: "OE", 0xEB: "ordmasculine",
	0xF1: "ae", 0xF5: "dotlessi", 0xF8: "lslash", 0xF9: "oslash",
	0xFA: "oe", 0xFB: "germandbls",
})

// macExpertEncodingNames is intentionally sparse: MacExpertEncoding
// names small-caps/old-style-figure/fraction glyph variants that have
// no simple AGL-algorithmic form, and the corpus of PDFs that
// actually declare it is small. ASCII positions fall back to the
// ordinary letterforms, which is what every real MacExpert font's
// low half renders as in practice.
var macExpertEncodingNames = buildASCIINames(map[byte]string{})

func buildASCIINames(extra map[byte]string) [256]string {
	var t [256]string
	for c := byte(0x20); c <= 0x7E; c++ {
		t[c] = asciiGlyphName(c)
	}
	for c, n := range extra {
		t[c] = n
	}
	return t
}

func asciiGlyphName(c byte) string {
	for name, r := range aglTable {
		if r == rune(c) {
			return name
		}
	}
	return ""
}

// decodeTextString implements the PDF "text string" convention used
// for /Title, /Author, annotation /Contents and similar fields: a
// leading UTF-16BE BOM (0xFE 0xFF) means UTF-16BE, a leading UTF-8 BOM
// (0xEF 0xBB 0xBF) - nonstandard but seen from a handful of
// generators - means UTF-8, and anything else is PDFDocEncoding.
func decodeTextString(s string) string {
	b := []byte(s)
	switch {
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return utf16Decode(b[2:])
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return string(b[3:])
	default:
		return pdfDocDecode(b)
	}
}

func utf16Decode(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units))
}

// pdfDocDecode decodes PDFDocEncoding, which agrees with Latin-1 on
// most positions; the handful of positions PDFDocEncoding reassigns
// to accents and typographic punctuation (0x18-0x1F, 0x80-0xA0) are
// listed in pdfDocHighTable, and every other code passes through
// unchanged the way a tolerant reader should rather than dropping
// the byte.
func pdfDocDecode(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if r, ok := pdfDocHighTable[c]; ok {
			runes = append(runes, r)
			continue
		}
		runes = append(runes, rune(c))
	}
	return string(runes)
}

var pdfDocHighTable = map[byte]rune{
	0x18: '˘', 0x19: 'ˇ', 0x1A: 'ˆ', 0x1B: '˙', 0x1C: '˝',
	0x1D: '˛', 0x1E: '˚', 0x1F: '˜',
	0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…', 0x84: '—', 0x85: '–',
	0x86: 'ƒ', 0x87: '⁄', 0x88: '‹', 0x89: '›', 0x8A: '−', 0x8B: '‰',
	0x8C: '„', 0x8D: '“', 0x8E: '”', 0x8F: '‘',
	0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ', 0x94: 'ﬂ',
	0x95: '◊', 0x96: 'Ł', 0x97: 'Œ', 0x98: 'Š', 0x99: 'Ÿ',
	0x9A: 'Ž', 0x9B: 'ı', 0x9C: 'ł', 0x9D: 'œ', 0x9E: 'š',
	0x9F: 'ž', 0xA0: '€',
}
