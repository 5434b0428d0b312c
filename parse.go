package pdftext

// parseValue parses one complete COS object starting at the buffer's
// current position: a scalar, an array, a dictionary (or the stream
// that follows one), or an indirect reference "N G R". It does not
// resolve references — that happens lazily, in Document.resolve.
//
// stream lookup needs the owning document to find /Length when it is
// itself an indirect reference, so parseValue takes the document
// (may be nil, e.g. in the recovery scanner's first pass, in which
// case an indirect /Length falls back to the endstream scan).
func (b *buffer) parseValue(doc *Document) (interface{}, error) {
	t := b.readToken()
	return b.parseValueFrom(t, doc)
}

func (b *buffer) parseValueFrom(t token, doc *Document) (interface{}, error) {
	switch t.kind {
	case tokEOF:
		return nil, parseErrorf(t.offset, "unexpected end of file while parsing object")
	case tokString:
		return t.str, nil
	case tokName:
		return cosName(t.str), nil
	case tokArrayStart:
		return b.parseArray(doc)
	case tokDictStart:
		return b.parseDictOrStream(doc, t.offset)
	case tokNumber:
		if t.isInt && t.num >= 0 {
			return b.parseNumberOrRef(t)
		}
		return t.num, nil
	case tokKeyword:
		switch t.str {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		default:
			// Bare keywords outside a content stream (e.g. a corrupt
			// object body) resolve to null: the reader tolerates this
			// rather than failing the whole document.
			return nil, nil
		}
	case tokArrayEnd, tokDictEnd:
		return nil, parseErrorf(t.offset, "unexpected %v", t.kind)
	}
	return nil, nil
}

// parseNumberOrRef disambiguates "123" from "123 0 R" by looking two
// tokens ahead: a non-negative integer followed by another integer
// followed by the keyword "R" is a reference, anything else is just
// a number and the lookahead tokens are pushed back in order.
func (b *buffer) parseNumberOrRef(first token) (interface{}, error) {
	second := b.readToken()
	if second.kind != tokNumber || !second.isInt || second.num < 0 {
		b.unreadToken(second)
		return first.num, nil
	}
	third := b.readToken()
	if third.kind == tokKeyword && third.str == "R" {
		return objRef{num: uint32(first.num), gen: uint16(second.num)}, nil
	}
	// Not a reference: push back in reverse so the next read sees
	// `second` first, then `third`.
	b.unreadToken(third)
	b.unreadToken(second)
	return first.num, nil
}

func (b *buffer) parseArray(doc *Document) (cosArray, error) {
	arr := cosArray{}
	for {
		t := b.readToken()
		if t.kind == tokArrayEnd || t.kind == tokEOF {
			return arr, nil
		}
		v, err := b.parseValueFrom(t, doc)
		if err != nil {
			return arr, err
		}
		arr = append(arr, v)
	}
}

func (b *buffer) parseDict(doc *Document) (cosDict, error) {
	d := cosDict{}
	for {
		kt := b.readToken()
		if kt.kind == tokDictEnd || kt.kind == tokEOF {
			return d, nil
		}
		if kt.kind != tokName {
			// Malformed key; skip the stray token and keep going rather
			// than aborting the whole dictionary.
			continue
		}
		v, err := b.parseValue(doc)
		if err != nil {
			return d, err
		}
		d[cosName(kt.str)] = v
	}
}

// parseDictOrStream parses a dictionary that has already consumed its
// "<<". If the dictionary is immediately followed by the "stream"
// keyword, the raw payload bytes are captured too: a literal /Length
// is trusted only after being sanity-checked against the following
// "endstream".
func (b *buffer) parseDictOrStream(doc *Document, start int64) (interface{}, error) {
	d, err := b.parseDict(doc)
	if err != nil {
		return d, err
	}
	save := b.pos
	savedPending := append([]token(nil), b.pending...)
	t := b.readToken()
	if t.kind != tokKeyword || t.str != "stream" {
		b.pos = save
		b.pending = savedPending
		return d, nil
	}
	// Per spec, "stream" is followed by CRLF or LF (never bare CR)
	// before the payload begins.
	p := b.pos
	if p < int64(len(b.data)) && b.data[p] == '\r' {
		p++
	}
	if p < int64(len(b.data)) && b.data[p] == '\n' {
		p++
	}
	payloadStart := p
	length, ok := b.resolvedLength(doc, d)
	var payloadEnd int64
	if ok && payloadStart+length <= int64(len(b.data)) {
		payloadEnd = payloadStart + length
		// Sanity check: "endstream" should appear shortly after. If it
		// doesn't, the declared /Length is wrong and we fall back to
		// scanning for the keyword instead.
		probe := findNext(b.data, []byte("endstream"), payloadEnd)
		if probe < 0 || probe-payloadEnd > 2 {
			ok = false
		}
	} else {
		ok = false
	}
	if !ok {
		end := findNext(b.data, []byte("endstream"), payloadStart)
		if end < 0 {
			end = int64(len(b.data))
		}
		payloadEnd = end
		for payloadEnd > payloadStart && (b.data[payloadEnd-1] == '\n' || b.data[payloadEnd-1] == '\r') {
			payloadEnd--
		}
	}
	raw := b.data[payloadStart:payloadEnd]
	b.pos = payloadEnd
	if end := findNext(b.data, []byte("endstream"), b.pos); end == b.pos {
		b.pos = end + int64(len("endstream"))
	} else if end >= 0 {
		b.pos = end + int64(len("endstream"))
	}
	return &cosStream{dict: d, raw: raw}, nil
}

// resolvedLength reads /Length, following one indirect reference
// through doc if necessary. It returns ok=false when /Length is
// absent, negative, or an unresolved reference (doc is nil during the
// recovery scanner's first pass).
func (b *buffer) resolvedLength(doc *Document, d cosDict) (int64, bool) {
	lv, present := d["Length"]
	if !present {
		return 0, false
	}
	switch n := lv.(type) {
	case int64:
		if n < 0 {
			return 0, false
		}
		return n, true
	case float64:
		if n < 0 {
			return 0, false
		}
		return int64(n), true
	case objRef:
		if doc == nil {
			return 0, false
		}
		resolved, err := doc.getObject(n)
		if err != nil {
			return 0, false
		}
		switch rn := resolved.(type) {
		case int64:
			return rn, rn >= 0
		case float64:
			return int64(rn), rn >= 0
		}
	}
	return 0, false
}

// parseIndirectObject parses a whole "N G obj ... endobj" body
// starting right after the "obj" keyword has already been consumed by
// the caller (xref.go / resolver.go both locate the offset and
// consume the header themselves, since the header format differs
// slightly between a classic-table entry and an /ObjStm compressed
// object).
func (b *buffer) parseIndirectObject(doc *Document) (interface{}, error) {
	v, err := b.parseValue(doc)
	if err != nil {
		return v, err
	}
	// Consume a trailing "endobj" if present; tolerate its absence.
	save := b.pos
	savedPending := append([]token(nil), b.pending...)
	t := b.readToken()
	if t.kind != tokKeyword || t.str != "endobj" {
		b.pos = save
		b.pending = savedPending
	}
	return v, nil
}
