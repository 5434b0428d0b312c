package pdftext

import (
	"bytes"
	"strconv"
)

// tokenKind enumerates the lexical categories produced by the PDF
// tokenizer. The same tokenizer drives both COS object parsing
// (xref.go, resolver.go) and content-stream interpretation
// (content.go), since PDF uses one lexical grammar for both.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString  // literal "(...)" or hex "<...>" string, already unescaped
	tokName    // "/Foo", leading slash stripped, #XX escapes decoded
	tokArrayStart
	tokArrayEnd
	tokDictStart // "<<"
	tokDictEnd   // ">>"
	tokKeyword   // bare identifier: obj, endobj, stream, R, true, false, null,
	             // or a content-stream operator such as Tj, re, cm
)

type token struct {
	kind   tokenKind
	num    float64
	isInt  bool
	str    string
	offset int64
}

// buffer is a pull-based cursor over a resident byte slice. It never
// copies the underlying data except when unescaping a literal/hex
// string, and it supports token pushback via unreadToken (a LIFO
// stack, so several tokens can be pending), which the "N G obj"/
// "N G R" lookahead needs.
type buffer struct {
	data    []byte
	pos     int64
	pending []token // LIFO pushback stack; "N G R" lookahead needs depth 2
}

func newBuffer(data []byte, pos int64) *buffer {
	return &buffer{data: data, pos: pos}
}

func (b *buffer) seek(pos int64) {
	b.pos = pos
	b.pending = nil
}

func (b *buffer) eof() bool {
	return len(b.pending) == 0 && b.pos >= int64(len(b.data))
}

func isWhitespace(c byte) bool {
	switch c {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhitespace(c) && !isDelimiter(c)
}

func (b *buffer) skipWhitespaceAndComments() {
	for b.pos < int64(len(b.data)) {
		c := b.data[b.pos]
		if isWhitespace(c) {
			b.pos++
			continue
		}
		if c == '%' {
			for b.pos < int64(len(b.data)) && b.data[b.pos] != '\n' && b.data[b.pos] != '\r' {
				b.pos++
			}
			continue
		}
		break
	}
}

// unreadToken pushes a token back so the next readToken call returns
// it again. Pushed-back tokens form a LIFO stack, so several can be
// pending at once (looking past "N G" for "obj" vs "R" pushes back
// two).
func (b *buffer) unreadToken(t token) {
	b.pending = append(b.pending, t)
}

func (b *buffer) readToken() token {
	if n := len(b.pending); n > 0 {
		t := b.pending[n-1]
		b.pending = b.pending[:n-1]
		return t
	}
	b.skipWhitespaceAndComments()
	start := b.pos
	if b.pos >= int64(len(b.data)) {
		return token{kind: tokEOF, offset: start}
	}
	c := b.data[b.pos]
	switch {
	case c == '/':
		return b.readName(start)
	case c == '(':
		return b.readLiteralString(start)
	case c == '<':
		if b.pos+1 < int64(len(b.data)) && b.data[b.pos+1] == '<' {
			b.pos += 2
			return token{kind: tokDictStart, offset: start}
		}
		return b.readHexString(start)
	case c == '>':
		if b.pos+1 < int64(len(b.data)) && b.data[b.pos+1] == '>' {
			b.pos += 2
			return token{kind: tokDictEnd, offset: start}
		}
		b.pos++
		return b.readToken()
	case c == '[':
		b.pos++
		return token{kind: tokArrayStart, offset: start}
	case c == ']':
		b.pos++
		return token{kind: tokArrayEnd, offset: start}
	case c == '{' || c == '}':
		b.pos++
		return token{kind: tokKeyword, str: string(c), offset: start}
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return b.readNumberOrKeyword(start)
	default:
		return b.readKeyword(start)
	}
}

func (b *buffer) readName(start int64) token {
	b.pos++ // consume '/'
	var buf bytes.Buffer
	for b.pos < int64(len(b.data)) && isRegular(b.data[b.pos]) {
		c := b.data[b.pos]
		if c == '#' && b.pos+2 < int64(len(b.data)) && isHexDigit(b.data[b.pos+1]) && isHexDigit(b.data[b.pos+2]) {
			v := hexVal(b.data[b.pos+1])<<4 | hexVal(b.data[b.pos+2])
			buf.WriteByte(v)
			b.pos += 3
			continue
		}
		buf.WriteByte(c)
		b.pos++
	}
	return token{kind: tokName, str: buf.String(), offset: start}
}

func (b *buffer) readNumberOrKeyword(start int64) token {
	p := b.pos
	if b.data[p] == '+' || b.data[p] == '-' {
		p++
	}
	isInt := true
	digits := 0
	for p < int64(len(b.data)) {
		c := b.data[p]
		if c >= '0' && c <= '9' {
			digits++
			p++
			continue
		}
		if c == '.' {
			isInt = false
			p++
			continue
		}
		if c == '-' || c == '+' {
			// malformed numbers like "1-2" appear in the wild; stop the
			// literal at the first repeated sign.
			break
		}
		break
	}
	if digits == 0 {
		return b.readKeyword(start)
	}
	text := string(b.data[b.pos:p])
	b.pos = p
	if isInt {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return token{kind: tokNumber, num: float64(n), isInt: true, offset: start}
		}
	}
	n, _ := strconv.ParseFloat(text, 64)
	return token{kind: tokNumber, num: n, isInt: false, offset: start}
}

func (b *buffer) readKeyword(start int64) token {
	p := b.pos
	for p < int64(len(b.data)) && isRegular(b.data[p]) {
		p++
	}
	if p == b.pos {
		// Lone delimiter we don't special-case (e.g. stray ')'); consume
		// one byte so the caller always makes forward progress.
		p++
	}
	text := string(b.data[b.pos:p])
	b.pos = p
	return token{kind: tokKeyword, str: text, offset: start}
}

func (b *buffer) readLiteralString(start int64) token {
	b.pos++ // consume '('
	var buf bytes.Buffer
	depth := 1
	for b.pos < int64(len(b.data)) {
		c := b.data[b.pos]
		switch c {
		case '\\':
			b.pos++
			if b.pos >= int64(len(b.data)) {
				goto done
			}
			esc := b.data[b.pos]
			switch esc {
			case 'n':
				buf.WriteByte('\n')
				b.pos++
			case 'r':
				buf.WriteByte('\r')
				b.pos++
			case 't':
				buf.WriteByte('\t')
				b.pos++
			case 'b':
				buf.WriteByte('\b')
				b.pos++
			case 'f':
				buf.WriteByte('\f')
				b.pos++
			case '(', ')', '\\':
				buf.WriteByte(esc)
				b.pos++
			case '\r':
				b.pos++
				if b.pos < int64(len(b.data)) && b.data[b.pos] == '\n' {
					b.pos++
				}
			case '\n':
				b.pos++
			default:
				if esc >= '0' && esc <= '7' {
					v := byte(0)
					n := 0
					for n < 3 && b.pos < int64(len(b.data)) && b.data[b.pos] >= '0' && b.data[b.pos] <= '7' {
						v = v*8 + (b.data[b.pos] - '0')
						b.pos++
						n++
					}
					buf.WriteByte(v)
				} else {
					buf.WriteByte(esc)
					b.pos++
				}
			}
		case '(':
			depth++
			buf.WriteByte(c)
			b.pos++
		case ')':
			depth--
			b.pos++
			if depth == 0 {
				goto done
			}
			buf.WriteByte(c)
		case '\r':
			// Bare CR and CRLF both normalize to LF inside literal strings.
			buf.WriteByte('\n')
			b.pos++
			if b.pos < int64(len(b.data)) && b.data[b.pos] == '\n' {
				b.pos++
			}
		default:
			buf.WriteByte(c)
			b.pos++
		}
	}
done:
	return token{kind: tokString, str: buf.String(), offset: start}
}

func (b *buffer) readHexString(start int64) token {
	b.pos++ // consume '<'
	var buf bytes.Buffer
	var hi byte
	haveHi := false
	for b.pos < int64(len(b.data)) {
		c := b.data[b.pos]
		b.pos++
		if c == '>' {
			break
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			continue
		}
		if !haveHi {
			hi = hexVal(c)
			haveHi = true
			continue
		}
		buf.WriteByte(hi<<4 | hexVal(c))
		haveHi = false
	}
	if haveHi {
		// Odd digit count: the final nibble is padded with 0, per spec.
		buf.WriteByte(hi << 4)
	}
	return token{kind: tokString, str: buf.String(), offset: start}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// findLast returns the offset of the last occurrence of pat in data,
// or -1. Used to locate the final "startxref" keyword, which per spec
// must be searched for from the end of the file.
func findLast(data []byte, pat []byte) int64 {
	idx := bytes.LastIndex(data, pat)
	if idx < 0 {
		return -1
	}
	return int64(idx)
}

// findNext returns the offset of the next occurrence of pat at or
// after from, or -1. Used by the stream-length fallback to locate
// "endstream" when /Length is missing, wrong, or an indirect
// reference that itself fails to resolve.
func findNext(data []byte, pat []byte, from int64) int64 {
	if from < 0 || from > int64(len(data)) {
		return -1
	}
	idx := bytes.Index(data[from:], pat)
	if idx < 0 {
		return -1
	}
	return from + int64(idx)
}
