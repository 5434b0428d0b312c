package pdftext

import "strconv"

// nameToRune implements Adobe Glyph List resolution (used to turn a
// font's /Differences glyph names, and the StandardEncoding/
// MacExpertEncoding base vectors, into Unicode code points): first
// the two algorithmic rules ("uniXXXX", 4 or more uppercase hex
// digits, and "uXXXX"/"uXXXXX"/"uXXXXXX", 4-6 hex digits), then the
// curated table of names that don't follow either pattern. Names
// with a period suffix (e.g. "A.sc", "g.alt1") are resolved by
// dropping everything from the first period onward, per the Adobe
// Glyph List's "glyph name components" rule.
func nameToRune(name string) (rune, bool) {
	if dot := indexByte(name, '.'); dot > 0 {
		name = name[:dot]
	}
	if len(name) >= 7 && name[:3] == "uni" {
		if r, ok := parseHexRune(name[3:7]); ok {
			return r, true
		}
	}
	if len(name) >= 5 && len(name) <= 7 && name[0] == 'u' {
		if r, ok := parseHexRune(name[1:]); ok {
			return r, true
		}
	}
	if r, ok := aglTable[name]; ok {
		return r, true
	}
	return 0, false
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func parseHexRune(hex string) (rune, bool) {
	if len(hex) < 4 {
		return 0, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

// aglTable is the common, non-algorithmic subset of the Adobe Glyph
// List: Latin-1 letters and punctuation, typographic marks, and the
// handful of ligatures that show up in body text extracted from real
// PDFs. It deliberately omits the thousands of symbol/math/CJK
// component names the full AGL carries, since /Differences entries
// for those are rare outside specialist fonts and an unresolved name
// degrades gracefully (see FontInfo.Decode in font.go) rather than
// corrupting the page.
var aglTable = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"quoteright": '’', "quoteleft": '‘', "parenleft": '(', "parenright": ')',
	"asterisk": '*', "plus": '+', "comma": ',', "hyphen": '-', "period": '.',
	"slash": '/', "zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>',
	"question": '?', "at": '@', "bracketleft": '[', "backslash": '\\',
	"bracketright": ']', "asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"A": 'A', "B": 'B', "C": 'C', "D": 'D', "E": 'E', "F": 'F', "G": 'G', "H": 'H', "I": 'I',
	"J": 'J', "K": 'K', "L": 'L', "M": 'M', "N": 'N', "O": 'O', "P": 'P', "Q": 'Q', "R": 'R',
	"S": 'S', "T": 'T', "U": 'U', "V": 'V', "W": 'W', "X": 'X', "Y": 'Y', "Z": 'Z',
	"a": 'a', "b": 'b', "c": 'c', "d": 'd', "e": 'e', "f": 'f', "g": 'g', "h": 'h', "i": 'i',
	"j": 'j', "k": 'k', "l": 'l', "m": 'm', "n": 'n', "o": 'o', "p": 'p', "q": 'q', "r": 'r',
	"s": 's', "t": 't', "u": 'u', "v": 'v', "w": 'w', "x": 'x', "y": 'y', "z": 'z',
	"exclamdown": '¡', "cent": '¢', "sterling": '£',
	"currency": '¤', "yen": '¥', "brokenbar": '¦',
	"section": '§', "dieresis": '¨', "copyright": '©',
	"ordfeminine": 'ª', "guillemotleft": '«', "logicalnot": '¬',
	"registered": '®', "macron": '¯', "degree": '°',
	"plusminus": '±', "acute": '´', "mu": 'µ', "paragraph": '¶',
	"periodcentered": '·', "cedilla": '¸', "ordmasculine": 'º',
	"guillemotright": '»', "questiondown": '¿',
	"Agrave": 'À', "Aacute": 'Á', "Acircumflex": 'Â', "Atilde": 'Ã',
	"Adieresis": 'Ä', "Aring": 'Å', "AE": 'Æ', "Ccedilla": 'Ç',
	"Egrave": 'È', "Eacute": 'É', "Ecircumflex": 'Ê', "Edieresis": 'Ë',
	"Igrave": 'Ì', "Iacute": 'Í', "Icircumflex": 'Î', "Idieresis": 'Ï',
	"Eth": 'Ð', "Ntilde": 'Ñ', "Ograve": 'Ò', "Oacute": 'Ó',
	"Ocircumflex": 'Ô', "Otilde": 'Õ', "Odieresis": 'Ö', "multiply": '×',
	"Oslash": 'Ø', "Ugrave": 'Ù', "Uacute": 'Ú', "Ucircumflex": 'Û',
	"Udieresis": 'Ü', "Yacute": 'Ý', "Thorn": 'Þ', "germandbls": 'ß',
	"agrave": 'à', "aacute": 'á', "acircumflex": 'â', "atilde": 'ã',
	"adieresis": 'ä', "aring": 'å', "ae": 'æ', "ccedilla": 'ç',
	"egrave": 'è', "eacute": 'é', "ecircumflex": 'ê', "edieresis": 'ë',
	"igrave": 'ì', "iacute": 'í', "icircumflex": 'î', "idieresis": 'ï',
	"eth": 'ð', "ntilde": 'ñ', "ograve": 'ò', "oacute": 'ó',
	"ocircumflex": 'ô', "otilde": 'õ', "odieresis": 'ö', "divide": '÷',
	"oslash": 'ø', "ugrave": 'ù', "uacute": 'ú', "ucircumflex": 'û',
	"udieresis": 'ü', "yacute": 'ý', "thorn": 'þ', "ydieresis": 'ÿ',
	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ', "ffl": 'ﬄ',
	"endash": '–', "emdash": '—', "quotedblleft": '“', "quotedblright": '”',
	"quotesinglbase": '‚', "quotedblbase": '„', "bullet": '•',
	"ellipsis": '…', "perthousand": '‰', "trademark": '™',
	"fraction": '⁄', "florin": 'ƒ', "dagger": '†', "daggerdbl": '‡',
	"minus": '−', "Euro": '€',
}
