package pdftext

// FontInfo resolves a font dictionary's glyph codes to Unicode text
// and advance widths, the two things the content-stream interpreter
// (content.go) needs for every Tj/TJ/'/" show-text operator.
type FontInfo struct {
	ref objRef

	isCID     bool // Type0/Identity-H composite font: 2-byte codes
	baseEnc   string
	diffs     map[byte]string // /Differences overrides, simple fonts only
	toUnicode *cmap            // nil when the font has no /ToUnicode

	firstChar   int
	widths      []float64 // simple fonts: indexed by code-FirstChar
	missingW    float64
	defaultW    float64 // CID fonts: /DW, else a non-zero /MissingWidth, else 1000
	cidWidths   map[uint32]float64

	symbolic bool
}

// resolveFont builds a FontInfo for the font named by the given
// /Resources /Font entry, caching nothing itself - the document's
// object cache already makes repeated lookups of the same font
// dictionary cheap.
func (d *Document) resolveFont(fontDict cosDict, ref objRef) *FontInfo {
	fi := &FontInfo{ref: ref, missingW: 0}

	subtype := valueName(fontDict["Subtype"])
	flags := 0
	if desc, ok := d.resolve(fontDict["FontDescriptor"]).raw.(cosDict); ok {
		flags = int(numberToInt64(desc["Flags"]))
	}
	fi.symbolic = flags&4 != 0 && flags&32 == 0

	if subtype == "Type0" {
		fi.isCID = true
		d.resolveCIDFont(fi, fontDict)
	} else {
		d.resolveSimpleFont(fi, fontDict)
	}

	if tu, ok := d.resolve(fontDict["ToUnicode"]).raw.(*cosStream); ok {
		if data, err := d.decodeStream(tu); err == nil {
			fi.toUnicode = parseCMap(data)
		}
	}
	return fi
}

func (d *Document) resolveSimpleFont(fi *FontInfo, fontDict cosDict) {
	fi.baseEnc = "StandardEncoding"
	if fi.symbolic {
		fi.baseEnc = ""
	}
	encVal := d.resolve(fontDict["Encoding"])
	switch encVal.Kind() {
	case KindName:
		fi.baseEnc = encVal.Name()
	case KindDict:
		encDict, _ := encVal.raw.(cosDict)
		if base := valueName(encDict["BaseEncoding"]); base != "" {
			fi.baseEnc = base
		}
		fi.diffs = parseDifferences(d, encDict["Differences"])
	}

	fi.firstChar = int(numberToInt64(fontDict["FirstChar"]))
	if arr, ok := d.resolve(fontDict["Widths"]).raw.(cosArray); ok {
		fi.widths = make([]float64, len(arr))
		for i, w := range arr {
			fi.widths[i] = d.resolve(w).Float64()
		}
	}
	if desc, ok := d.resolve(fontDict["FontDescriptor"]).raw.(cosDict); ok {
		fi.missingW = d.resolve(desc["MissingWidth"]).Float64()
	}
}

func (d *Document) resolveCIDFont(fi *FontInfo, fontDict cosDict) {
	fi.defaultW = 1000
	descendants, ok := d.resolve(fontDict["DescendantFonts"]).raw.(cosArray)
	if !ok || len(descendants) == 0 {
		return
	}
	cidFontVal := d.resolve(descendants[0])
	cidFont, ok := cidFontVal.raw.(cosDict)
	if !ok {
		return
	}
	if dw, present := cidFont["DW"]; present {
		fi.defaultW = d.resolve(dw).Float64()
	} else if desc, ok := d.resolve(cidFont["FontDescriptor"]).raw.(cosDict); ok {
		if mw := d.resolve(desc["MissingWidth"]).Float64(); mw != 0 {
			fi.defaultW = mw
		}
	}
	fi.cidWidths = parseCIDWidths(d, cidFont["W"])
}

// parseCIDWidths implements the /W array's two entry shapes:
// "c [w1 w2 ... wn]" (consecutive codes starting at c) and
// "cFirst cLast w" (a uniform range).
func parseCIDWidths(d *Document, wv interface{}) map[uint32]float64 {
	arr, ok := d.resolve(wv).raw.(cosArray)
	if !ok {
		return nil
	}
	widths := map[uint32]float64{}
	i := 0
	for i < len(arr) {
		start := uint32(d.resolve(arr[i]).Int64())
		i++
		if i >= len(arr) {
			break
		}
		next := d.resolve(arr[i])
		if next.Kind() == KindArray {
			list, _ := next.raw.(cosArray)
			for j, w := range list {
				widths[start+uint32(j)] = d.resolve(w).Float64()
			}
			i++
			continue
		}
		end := uint32(next.Int64())
		i++
		if i >= len(arr) {
			break
		}
		w := d.resolve(arr[i]).Float64()
		i++
		for c := start; c <= end; c++ {
			widths[c] = w
		}
	}
	return widths
}

func parseDifferences(d *Document, dv interface{}) map[byte]string {
	arr, ok := d.resolve(dv).raw.(cosArray)
	if !ok {
		return nil
	}
	diffs := map[byte]string{}
	var code int64
	for _, e := range arr {
		v := d.resolve(e)
		switch v.Kind() {
		case KindNumber:
			code = v.Int64()
		case KindName:
			if code >= 0 && code < 256 {
				diffs[byte(code)] = v.Name()
			}
			code++
		}
	}
	return diffs
}

func valueName(v interface{}) string {
	n, _ := v.(cosName)
	return string(n)
}

// Decode turns a raw code (a single byte for a simple font, 2 bytes
// for an Identity-H CID font) into text. /ToUnicode wins when
// present; otherwise a simple font falls back to /Differences, then
// the base encoding vector. A code that resolves nowhere is dropped
// with a warning rather than emitting a replacement character, per
// the reader's tolerance for partial font information.
func (fi *FontInfo) Decode(code uint32) (string, bool) {
	if fi.toUnicode != nil {
		if s, ok := fi.toUnicode.lookup(code); ok {
			return s, true
		}
	}
	if fi.isCID {
		logWarnf("CID font: no /ToUnicode mapping for code %d", code)
		return "", false
	}
	b := byte(code)
	if fi.diffs != nil {
		if name, ok := fi.diffs[b]; ok {
			if r, ok := nameToRune(name); ok {
				return string(r), true
			}
		}
	}
	if fi.baseEnc != "" {
		if r, ok := baseEncoding(fi.baseEnc, b); ok {
			return string(r), true
		}
	}
	if fi.symbolic {
		// Symbolic fonts with no usable encoding map codes 1:1 onto
		// the font's private character set; the best a generic reader
		// can do is treat the code as Latin-1, which renders correctly
		// for the very common case of a symbolic font that is really
		// just WinAnsi text marked symbolic.
		return string(rune(b)), true
	}
	logWarnf("no glyph mapping for code %d in font, dropping", code)
	return "", false
}

// HasReliableWidths reports whether this font carries real glyph
// advance-width data - /Widths for a simple font, /W entries or a
// non-zero /DW for a CID font - as opposed to leaving every code's
// width at the all-zero default a font with neither specifies.
func (fi *FontInfo) HasReliableWidths() bool {
	if fi.isCID {
		return len(fi.cidWidths) > 0 || fi.defaultW != 0
	}
	return len(fi.widths) > 0 || fi.missingW != 0
}

// Width returns the glyph's advance width in 1/1000 text-space units,
// the unit every font's /Widths or /W array is expressed in.
func (fi *FontInfo) Width(code uint32) float64 {
	if fi.isCID {
		if w, ok := fi.cidWidths[code]; ok {
			return w
		}
		return fi.defaultW
	}
	idx := int(code) - fi.firstChar
	if idx >= 0 && idx < len(fi.widths) && fi.widths[idx] != 0 {
		return fi.widths[idx]
	}
	if fi.missingW != 0 {
		return fi.missingW
	}
	return 0
}

// CodeWidth reports how many bytes one glyph code occupies in a show
// string for this font: 2 for Identity-H/V CID fonts, 1 otherwise.
// Non-Identity CMap-encoded CID fonts (mixed 1/2-byte codespaces) are
// out of scope - see Non-goals.
func (fi *FontInfo) CodeWidth() int {
	if fi.isCID {
		return 2
	}
	return 1
}
