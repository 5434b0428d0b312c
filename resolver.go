package pdftext

// maxResolveDepth bounds chains of indirect references that point to
// another indirect reference (legal but rare) so a corrupt cyclic
// file can't recurse forever.
const maxResolveDepth = 100

// getObject returns the fully parsed, decrypted object graph for ref,
// populating the document's cache on first access. The cache is
// owned by a single Document and is never written to concurrently -
// see the concurrency note in document.go.
func (d *Document) getObject(ref objRef) (interface{}, error) {
	if v, ok := d.cache[ref]; ok {
		return v, nil
	}
	entry, ok := d.xref[ref]
	if !ok || !entry.inUse {
		// A reference to an object the xref table doesn't know about
		// resolves to null rather than erroring: the tolerant-reader
		// invariant applies to the whole graph, not just /Parent walks.
		d.cache[ref] = nil
		return nil, nil
	}

	var v interface{}
	var err error
	if entry.compressed {
		// Objects inside an ObjStm are never individually encrypted -
		// the ObjStm's own stream payload was already decrypted once,
		// under the container's key, in objStmObjects. Running
		// decryptTree here a second time, keyed on this object's own
		// (unrelated) ref, would corrupt every string in it.
		v, err = d.getCompressedObject(entry)
	} else {
		v, err = d.parseObjectAt(entry.offset, ref)
		if err == nil {
			v = d.decryptTree(v, ref)
		}
	}
	if err != nil {
		logWarnf("object %d %d R failed to parse: %v", ref.num, ref.gen, err)
		d.cache[ref] = nil
		return nil, nil
	}
	d.cache[ref] = v
	return v, nil
}

func (d *Document) parseObjectAt(offset int64, want objRef) (interface{}, error) {
	b := newBuffer(d.data, offset)
	numTok := b.readToken()
	genTok := b.readToken()
	objTok := b.readToken()
	if objTok.kind != tokKeyword || objTok.str != "obj" {
		return nil, parseErrorf(offset, "expected \"N G obj\" at offset %d", offset)
	}
	if uint32(numTok.num) != want.num {
		logWarnf("xref offset %d holds object %d, expected %d; trusting the bytes on disk", offset, int64(numTok.num), want.num)
	}
	_ = genTok
	return b.parseIndirectObject(d)
}

// getCompressedObject extracts an object stored inside an /ObjStm
// object stream (PDF 1.5+ compressed object streams): it decodes the
// container stream once, parses its header table of (objNum, offset)
// pairs, then parses the one object at the requested index.
func (d *Document) getCompressedObject(entry xrefEntry) (interface{}, error) {
	containerRef := objRef{num: entry.streamObjNum}
	objs, err := d.objStmObjects(containerRef)
	if err != nil {
		return nil, err
	}
	if entry.indexInStream < 0 || entry.indexInStream >= len(objs) {
		return nil, parseErrorf(-1, "object stream index %d out of range", entry.indexInStream)
	}
	return objs[entry.indexInStream], nil
}

func (d *Document) objStmObjects(containerRef objRef) ([]interface{}, error) {
	if cached, ok := d.objStmCache[containerRef]; ok {
		return cached, nil
	}
	containerEntry, ok := d.xref[containerRef]
	if !ok || !containerEntry.inUse || containerEntry.compressed {
		return nil, parseErrorf(-1, "object stream %d not directly located in xref", containerRef.num)
	}
	raw, err := d.parseObjectAt(containerEntry.offset, containerRef)
	if err != nil {
		return nil, err
	}
	st, ok := raw.(*cosStream)
	if !ok {
		return nil, parseErrorf(-1, "object %d is not a stream", containerRef.num)
	}
	st.ref = containerRef
	data, err := d.decodeStream(st)
	if err != nil {
		return nil, err
	}
	n := int(numberToInt64(st.dict["N"]))
	first := numberToInt64(st.dict["First"])

	headerBuf := newBuffer(data, 0)
	type objLoc struct{ num uint32; off int64 }
	locs := make([]objLoc, 0, n)
	for i := 0; i < n; i++ {
		numTok := headerBuf.readToken()
		offTok := headerBuf.readToken()
		if numTok.kind != tokNumber || offTok.kind != tokNumber {
			break
		}
		locs = append(locs, objLoc{num: uint32(numTok.num), off: int64(offTok.num)})
	}

	objs := make([]interface{}, len(locs))
	for i, loc := range locs {
		ob := newBuffer(data, first+loc.off)
		v, err := ob.parseValue(d)
		if err != nil {
			logWarnf("object stream %d entry %d unreadable: %v", containerRef.num, i, err)
			continue
		}
		objs[i] = v
	}
	d.objStmCache[containerRef] = objs
	return objs, nil
}

// rawObject resolves v if it is an indirect reference, or returns it
// unchanged otherwise - used for trailer entries like /Encrypt and
// /Root that may be direct or indirect.
func (d *Document) rawObject(v interface{}) (interface{}, error) {
	ref, ok := v.(objRef)
	if !ok {
		return v, nil
	}
	obj, err := d.getObject(ref)
	return obj, err
}

// resolve follows v through at most maxResolveDepth levels of
// indirection and wraps the result as a Value. Used by Value.Index
// and Value.Key, and by the page/catalog walkers.
func (d *Document) resolve(v interface{}) Value {
	depth := 0
	for {
		ref, ok := v.(objRef)
		if !ok {
			return newValue(d, v)
		}
		depth++
		if depth > maxResolveDepth {
			logWarnf("indirect reference chain exceeded depth %d, treating as null", maxResolveDepth)
			return newValue(d, nil)
		}
		obj, err := d.getObject(ref)
		if err != nil {
			return newValue(d, nil)
		}
		v = obj
	}
}

// decryptTree walks a freshly parsed object graph in place,
// decrypting every literal/hex string leaf with ref's per-object key
// and stamping ref onto any stream found along the way so the stream
// is decrypted lazily, at StreamBytes() time, under the same key.
func (d *Document) decryptTree(v interface{}, ref objRef) interface{} {
	switch x := v.(type) {
	case string:
		if d.security == nil {
			return x
		}
		dec, err := d.decryptBytes([]byte(x), ref)
		if err != nil {
			logWarnf("string decryption failed for %d %d R: %v", ref.num, ref.gen, err)
			return x
		}
		return string(dec)
	case cosDict:
		for k, val := range x {
			x[k] = d.decryptTree(val, ref)
		}
		return x
	case cosArray:
		for i, val := range x {
			x[i] = d.decryptTree(val, ref)
		}
		return x
	case *cosStream:
		x.ref = ref
		for k, val := range x.dict {
			x.dict[k] = d.decryptTree(val, ref)
		}
		return x
	default:
		return v
	}
}
