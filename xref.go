package pdftext

import "sort"

// xrefEntry locates one indirect object, either directly in the file
// or inside an object stream (/ObjStm), per the two entry types a
// cross-reference stream can describe (classic tables only ever
// describe the direct form).
type xrefEntry struct {
	inUse         bool
	offset        int64  // direct form: byte offset of "N G obj"
	gen           uint16 // direct form: generation number
	compressed    bool
	streamObjNum  uint32 // compressed form: containing /ObjStm object number
	indexInStream int    // compressed form: index within that stream's object list
}

// loadXref walks the startxref chain from the end of the file,
// merging classic tables and cross-reference streams into a single
// object→location map. Earlier (more recent) entries always win over
// later (/Prev, older) ones, matching incremental-update semantics:
// the last full rewrite or incremental save of an object is the one
// that counts.
func (d *Document) loadXref() error {
	start := findLast(d.data, []byte("startxref"))
	if start < 0 {
		return d.recoverByScanning("no startxref keyword found")
	}
	b := newBuffer(d.data, start+int64(len("startxref")))
	t := b.readToken()
	if t.kind != tokNumber {
		return d.recoverByScanning("startxref not followed by an offset")
	}
	offset := int64(t.num)

	visited := map[int64]bool{}
	entries := map[objRef]xrefEntry{}
	trailer := cosDict{}

	for offset != 0 {
		if visited[offset] || offset < 0 || offset >= int64(len(d.data)) {
			break
		}
		visited[offset] = true

		sectionTrailer, prev, err := d.loadXrefSection(offset, entries)
		if err != nil {
			logWarnf("xref section at %d unreadable, falling back to recovery scan: %v", offset, err)
			return d.recoverByScanning("broken xref chain")
		}
		for k, v := range sectionTrailer {
			if _, exists := trailer[k]; !exists {
				trailer[k] = v
			}
		}
		offset = prev
	}

	if len(entries) == 0 {
		return d.recoverByScanning("xref chain yielded no entries")
	}
	if _, hasRoot := trailer["Root"]; !hasRoot {
		return d.recoverByScanning("trailer has no /Root")
	}

	d.xref = entries
	d.trailer = trailer
	return nil
}

// loadXrefSection reads one xref section (classic table or stream) at
// offset, inserting any entries not already present in into (so an
// older /Prev section never overwrites a newer one), and returns that
// section's trailer dict plus its own /Prev offset (0 if none).
func (d *Document) loadXrefSection(offset int64, into map[objRef]xrefEntry) (cosDict, int64, error) {
	b := newBuffer(d.data, offset)
	t := b.readToken()
	if t.kind == tokKeyword && t.str == "xref" {
		return d.loadClassicXref(b, into)
	}
	// Otherwise this must be "N G obj <<...>> stream" holding a
	// cross-reference stream.
	b.seek(offset)
	return d.loadXrefStreamAt(b, into)
}

func (d *Document) loadClassicXref(b *buffer, into map[objRef]xrefEntry) (cosDict, int64, error) {
	for {
		save := b.pos
		savedPending := append([]token(nil), b.pending...)
		t := b.readToken()
		if t.kind == tokKeyword && t.str == "trailer" {
			trailerObj, err := b.parseValue(nil)
			if err != nil {
				return nil, 0, err
			}
			trailer, _ := trailerObj.(cosDict)
			prev := int64(0)
			if pv, ok := trailer["Prev"]; ok {
				prev = numberToInt64(pv)
			}
			// Hybrid-reference files point to a supplementary xref
			// stream via /XRefStm; merge it in before following /Prev.
			if xv, ok := trailer["XRefStm"]; ok {
				xrefStmOffset := numberToInt64(xv)
				if xrefStmOffset > 0 {
					sb := newBuffer(d.data, xrefStmOffset)
					if _, _, err := d.loadXrefStreamAt(sb, into); err != nil {
						logWarnf("hybrid /XRefStm at %d unreadable: %v", xrefStmOffset, err)
					}
				}
			}
			return trailer, prev, nil
		}
		if t.kind != tokNumber || !t.isInt {
			b.pos = save
			b.pending = savedPending
			return cosDict{}, 0, parseErrorf(save, "expected subsection header or trailer")
		}
		startObj := int64(t.num)
		countTok := b.readToken()
		if countTok.kind != tokNumber || !countTok.isInt {
			return cosDict{}, 0, parseErrorf(countTok.offset, "expected subsection count")
		}
		count := int64(countTok.num)
		for i := int64(0); i < count; i++ {
			offTok := b.readToken()
			genTok := b.readToken()
			kindTok := b.readToken()
			if offTok.kind != tokNumber || genTok.kind != tokNumber || kindTok.kind != tokKeyword {
				continue
			}
			ref := objRef{num: uint32(startObj + i), gen: uint16(genTok.num)}
			if _, exists := into[ref]; exists {
				continue
			}
			if kindTok.str == "n" {
				into[ref] = xrefEntry{inUse: true, offset: int64(offTok.num), gen: uint16(genTok.num)}
			} else {
				into[ref] = xrefEntry{inUse: false}
			}
		}
	}
}

// loadXrefStreamAt parses "N G obj << ... /Type /XRef ... >> stream
// ... endstream" at b's current position.
func (d *Document) loadXrefStreamAt(b *buffer, into map[objRef]xrefEntry) (cosDict, int64, error) {
	numTok := b.readToken()
	genTok := b.readToken()
	objTok := b.readToken()
	if numTok.kind != tokNumber || genTok.kind != tokNumber || objTok.kind != tokKeyword || objTok.str != "obj" {
		return nil, 0, parseErrorf(b.pos, "expected \"N G obj\" for xref stream")
	}
	val, err := b.parseIndirectObject(d)
	if err != nil {
		return nil, 0, err
	}
	st, ok := val.(*cosStream)
	if !ok {
		return nil, 0, parseErrorf(b.pos, "expected xref stream object")
	}
	data, err := d.decodeStream(st)
	if err != nil {
		return nil, 0, err
	}
	widths, ok := fieldWidths(st.dict)
	if !ok {
		return nil, 0, parseErrorf(b.pos, "xref stream missing /W")
	}
	index := subsectionIndex(st.dict)
	rowSize := widths[0] + widths[1] + widths[2]
	pos := 0
	for _, sub := range index {
		for i := 0; i < sub.count; i++ {
			if pos+rowSize > len(data) {
				break
			}
			row := data[pos : pos+rowSize]
			pos += rowSize
			ref := objRef{num: uint32(sub.start + i)}
			if _, exists := into[ref]; exists {
				continue
			}
			typ := int64(1)
			if widths[0] > 0 {
				typ = beInt(row[:widths[0]])
			}
			f2 := beInt(row[widths[0] : widths[0]+widths[1]])
			f3 := beInt(row[widths[0]+widths[1] : rowSize])
			switch typ {
			case 0:
				into[ref] = xrefEntry{inUse: false}
			case 1:
				into[ref] = xrefEntry{inUse: true, offset: f2, gen: uint16(f3)}
			case 2:
				into[ref] = xrefEntry{inUse: true, compressed: true, streamObjNum: uint32(f2), indexInStream: int(f3)}
			}
		}
	}
	prev := int64(0)
	if pv, ok := st.dict["Prev"]; ok {
		prev = numberToInt64(pv)
	}
	return st.dict, prev, nil
}

type xrefSubsection struct {
	start, count int
}

func subsectionIndex(d cosDict) []xrefSubsection {
	iv, ok := d["Index"]
	if !ok {
		size := int(numberToInt64(d["Size"]))
		return []xrefSubsection{{start: 0, count: size}}
	}
	arr, ok := iv.(cosArray)
	if !ok || len(arr)%2 != 0 {
		size := int(numberToInt64(d["Size"]))
		return []xrefSubsection{{start: 0, count: size}}
	}
	subs := make([]xrefSubsection, 0, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		subs = append(subs, xrefSubsection{start: int(numberToInt64(arr[i])), count: int(numberToInt64(arr[i+1]))})
	}
	return subs
}

func fieldWidths(d cosDict) ([3]int, bool) {
	var w [3]int
	wv, ok := d["W"]
	if !ok {
		return w, false
	}
	arr, ok := wv.(cosArray)
	if !ok || len(arr) < 3 {
		return w, false
	}
	for i := 0; i < 3; i++ {
		w[i] = int(numberToInt64(arr[i]))
	}
	return w, true
}

func beInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

func numberToInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// sortedObjectNumbers is used by the recovery scanner to visit
// objects in a stable order.
func sortedObjectNumbers(entries map[objRef]xrefEntry) []uint32 {
	seen := map[uint32]bool{}
	var nums []uint32
	for ref := range entries {
		if !seen[ref.num] {
			seen[ref.num] = true
			nums = append(nums, ref.num)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}
