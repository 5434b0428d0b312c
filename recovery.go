package pdftext

import "bytes"

// recoverByScanning rebuilds the object table by scanning the whole
// file for "N G obj" headers instead of trusting any xref table or
// stream. It is the fallback used when the xref chain is missing,
// truncated, or points outside the file - the common shape of a PDF
// that was truncated mid-upload or mid-append.
//
// Scanning left to right and overwriting on each match means the
// last physical occurrence of a given object number wins, which
// matches incremental-update semantics (a later byte offset is a
// later save) even though there is no xref to say so explicitly.
func (d *Document) recoverByScanning(reason string) error {
	logWarnf("recovering object table by full-file scan: %s", reason)

	entries := map[objRef]xrefEntry{}
	data := d.data
	objKeyword := []byte("obj")

	pos := int64(0)
	for {
		idx := bytes.Index(data[pos:], objKeyword)
		if idx < 0 {
			break
		}
		at := pos + int64(idx)
		// Confirm this "obj" is a standalone keyword, not part of a
		// longer identifier, and back up over "N G " before it.
		if at+3 < int64(len(data)) && isRegular(data[at+3]) {
			pos = at + 3
			continue
		}
		num, gen, headerStart, ok := scanBackForObjectHeader(data, at)
		pos = at + 3
		if !ok {
			continue
		}
		entries[objRef{num: num, gen: gen}] = xrefEntry{inUse: true, offset: headerStart, gen: gen}
	}

	if len(entries) == 0 {
		return parseErrorf(-1, "no indirect objects found: %s", reason)
	}

	trailer := d.recoverTrailer(entries)
	if _, ok := trailer["Root"]; !ok {
		root := findCatalogByScanning(d, entries)
		if root == nil {
			return parseErrorf(-1, "could not locate /Root or a /Catalog object: %s", reason)
		}
		trailer["Root"] = *root
	}

	d.xref = entries
	d.trailer = trailer
	return nil
}

// scanBackForObjectHeader looks backward from the byte offset of the
// "obj" keyword for "<num> <gen>" and returns the start of that
// header plus the parsed numbers.
func scanBackForObjectHeader(data []byte, objAt int64) (num uint32, gen uint16, headerStart int64, ok bool) {
	p := objAt
	for p > 0 && isWhitespace(data[p-1]) {
		p--
	}
	genEnd := p
	for p > 0 && data[p-1] >= '0' && data[p-1] <= '9' {
		p--
	}
	genStart := p
	if genStart == genEnd {
		return 0, 0, 0, false
	}
	for p > 0 && isWhitespace(data[p-1]) {
		p--
	}
	numEnd := p
	for p > 0 && data[p-1] >= '0' && data[p-1] <= '9' {
		p--
	}
	numStart := p
	if numStart == numEnd {
		return 0, 0, 0, false
	}
	g := beDecimal(data[genStart:genEnd])
	n := beDecimal(data[numStart:numEnd])
	return uint32(n), uint16(g), numStart, true
}

func beDecimal(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v*10 + int64(c-'0')
	}
	return v
}

// recoverTrailer finds the last "trailer" keyword in the file and
// parses the dict that follows it; if none exists (common in
// xref-stream-only files with no classic trailer), it instead scans
// every recovered object for one whose dict carries /Type /XRef, and
// borrows /Root, /Info, /Encrypt, and /ID straight from it.
func (d *Document) recoverTrailer(entries map[objRef]xrefEntry) cosDict {
	if at := findLast(d.data, []byte("trailer")); at >= 0 {
		b := newBuffer(d.data, at+int64(len("trailer")))
		if v, err := b.parseValue(nil); err == nil {
			if dict, ok := v.(cosDict); ok {
				return dict
			}
		}
	}
	trailer := cosDict{}
	for _, num := range sortedObjectNumbers(entries) {
		ref := findEntry(entries, num)
		if ref == nil {
			continue
		}
		b := newBuffer(d.data, ref.offset)
		b.readToken() // num
		b.readToken() // gen
		objTok := b.readToken()
		if objTok.kind != tokKeyword || objTok.str != "obj" {
			continue
		}
		v, err := b.parseValue(nil)
		if err != nil {
			continue
		}
		dict, ok := v.(cosDict)
		if !ok {
			continue
		}
		if isNameEqual(newValue(nil, dict["Type"]), "XRef") {
			for _, k := range []string{"Root", "Info", "Encrypt", "ID"} {
				if val, ok := dict[cosName(k)]; ok {
					trailer[cosName(k)] = val
				}
			}
		}
	}
	return trailer
}

func findEntry(entries map[objRef]xrefEntry, num uint32) *xrefEntry {
	for ref, e := range entries {
		if ref.num == num {
			return &e
		}
	}
	return nil
}

// findCatalogByScanning is the last resort when even a borrowed
// trailer has no /Root: it parses every recovered object looking for
// one whose /Type is /Catalog.
func findCatalogByScanning(d *Document, entries map[objRef]xrefEntry) *objRef {
	for _, num := range sortedObjectNumbers(entries) {
		ref := findEntry(entries, num)
		if ref == nil {
			continue
		}
		b := newBuffer(d.data, ref.offset)
		numTok := b.readToken()
		genTok := b.readToken()
		objTok := b.readToken()
		if objTok.kind != tokKeyword || objTok.str != "obj" {
			continue
		}
		v, err := b.parseValue(nil)
		if err != nil {
			continue
		}
		dict, ok := v.(cosDict)
		if !ok {
			continue
		}
		if isNameEqual(newValue(nil, dict["Type"]), "Catalog") {
			result := objRef{num: uint32(numTok.num), gen: uint16(genTok.num)}
			return &result
		}
	}
	return nil
}
