package pdftext

// cmap is a parsed /ToUnicode CMap: the small set of single-code
// mappings from bfchar blocks, plus the contiguous-range mappings
// from bfrange blocks. Only the bfchar/bfrange operators matter for
// text extraction; codespacerange and usecmap are parsed (so the
// interpreter doesn't choke on their operands) and then ignored.
type cmap struct {
	single map[uint32]string
	ranges []cmapRange
}

type cmapRange struct {
	lo, hi uint32
	dst    string   // base destination for the low end of the range
	dstSet []string // per-code destinations, when bfrange named an array instead of a base string
}

// parseCMap runs the shared content-stream/CMap token grammar
// (interp.go) over a decoded /ToUnicode stream and collects its
// bfchar and bfrange blocks. Malformed entries are skipped rather
// than aborting the whole CMap, since one bad range shouldn't cost
// every other glyph in the font its Unicode mapping.
func parseCMap(data []byte) *cmap {
	cm := &cmap{single: map[uint32]string{}}
	_ = interpret(data, func(op string, operands []Value) error {
		switch op {
		case "endbfchar":
			for i := 0; i+1 < len(operands); i += 2 {
				code, ok := hexStringCode(operands[i])
				if !ok {
					continue
				}
				cm.single[code] = utf16Decode([]byte(operands[i+1].RawString()))
			}
		case "endbfrange":
			for i := 0; i+2 < len(operands); i += 3 {
				lo, ok1 := hexStringCode(operands[i])
				hi, ok2 := hexStringCode(operands[i+1])
				if !ok1 || !ok2 {
					continue
				}
				switch operands[i+2].Kind() {
				case KindString:
					cm.ranges = append(cm.ranges, cmapRange{lo: lo, hi: hi, dst: utf16Decode([]byte(operands[i+2].RawString()))})
				case KindArray:
					n := operands[i+2].Len()
					set := make([]string, n)
					for j := 0; j < n; j++ {
						set[j] = utf16Decode([]byte(operands[i+2].Index(j).RawString()))
					}
					cm.ranges = append(cm.ranges, cmapRange{lo: lo, hi: hi, dstSet: set})
				}
			}
		}
		return nil
	})
	return cm
}

func hexStringCode(v Value) (uint32, bool) {
	s := v.RawString()
	if s == "" {
		return 0, false
	}
	var n uint32
	for i := 0; i < len(s); i++ {
		n = n<<8 | uint32(s[i])
	}
	return n, true
}

// lookup resolves one character code to Unicode text: an exact
// bfchar match wins, then a bfrange that contains the code, computed
// by adding (code-lo) onto the range's base destination code point.
// A computed code point beyond U+10FFFF is dropped with a warning.
func (c *cmap) lookup(code uint32) (string, bool) {
	if s, ok := c.single[code]; ok {
		return s, true
	}
	for _, r := range c.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		if r.dstSet != nil {
			idx := int(code - r.lo)
			if idx < len(r.dstSet) {
				return r.dstSet[idx], true
			}
			return "", false
		}
		runes := []rune(r.dst)
		if len(runes) == 0 {
			return "", false
		}
		last := runes[len(runes)-1] + rune(code-r.lo)
		if last < 0 || last > 0x10FFFF {
			logWarnf("ToUnicode bfrange maps code %d past U+10FFFF, dropping", code)
			return "", false
		}
		runes[len(runes)-1] = last
		return string(runes), true
	}
	return "", false
}
