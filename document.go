package pdftext

// Document is a parsed PDF held fully resident in memory. It owns an
// object cache that is populated lazily, on first reference, and is
// never written to from more than one goroutine: per the concurrency
// model, a single Document is processed by one goroutine at a time,
// while Processor (processor.go) bounds how many different Documents
// run concurrently.
type Document struct {
	data []byte

	crypto   Crypto
	cfg      Config
	security *securityHandler

	xref        map[objRef]xrefEntry
	trailer     cosDict
	cache       map[objRef]interface{}
	objStmCache map[objRef][]interface{}
	encryptRef  *objRef

	root     Value
	pageRefs []objRef

	// pages holds every *Page handle issued by Page, so Dispose can
	// invalidate them in place rather than leaving them to transparently
	// reparse from d.data.
	pages    []*Page
	disposed bool
}

// New parses data as a PDF and builds its object table, following the
// xref chain (or falling back to a full-file recovery scan), and
// derives the encryption key if the document is encrypted with an
// empty user password. It returns an error only when the document is
// unreadable even after recovery, or requires a password this reader
// does not support (UnsupportedError).
func New(data []byte, cfg Config) (*Document, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	d := &Document{
		data:        data,
		crypto:      cfg.Crypto,
		cfg:         cfg,
		cache:       map[objRef]interface{}{},
		objStmCache: map[objRef][]interface{}{},
	}

	if err := d.loadXref(); err != nil {
		return nil, err
	}
	if err := d.setupEncryption(); err != nil {
		return nil, err
	}

	rootVal, err := d.rawObject(d.trailer["Root"])
	if err != nil {
		return nil, err
	}
	rootDict, ok := rootVal.(cosDict)
	if !ok {
		return nil, parseErrorf(-1, "/Root does not resolve to a dictionary")
	}
	d.root = newValue(d, rootDict)

	d.pageRefs = collectPages(d, rootDict["Pages"])
	if len(d.pageRefs) == 0 {
		logWarnf("document has no reachable pages under /Root/Pages")
	}
	return d, nil
}

// PageCount reports how many pages were reachable from the page tree.
func (d *Document) PageCount() int {
	return len(d.pageRefs)
}

// Page returns a handle to the i'th page (0-based). It panics if i is
// out of range, matching Go slice-indexing convention; callers should
// guard with PageCount. Once Dispose has been called, every Page
// returned (including ones never loaded before) carries no back-pointer
// and yields empty content rather than reparsing d.data.
func (d *Document) Page(i int) *Page {
	ref := d.pageRefs[i]
	if d.disposed {
		return &Page{ref: ref, runsLoaded: true}
	}
	dict, _ := d.getObject(ref)
	p := &Page{doc: d, ref: ref, dict: toDict(dict)}
	d.pages = append(d.pages, p)
	return p
}

// Metadata returns the document's /Info dictionary and XMP metadata
// stream, decoded per metadata.go.
func (d *Document) Metadata() DocumentMetadata {
	return d.readMetadata()
}

// Dispose releases the object and object-stream caches and invalidates
// every Page handle this Document has issued: their back-pointer to
// the Document is cleared, so Text/Lines/Markdown/Tables/Links return
// empty results afterward instead of transparently reparsing from the
// underlying bytes. PageCount remains valid, and Page(i) still returns
// a (now-empty) handle rather than panicking.
func (d *Document) Dispose() {
	for _, p := range d.pages {
		p.doc = nil
		p.dict = nil
		p.runs = nil
		p.runsLoaded = true
		p.err = nil
	}
	d.pages = nil
	d.disposed = true
	d.cache = map[objRef]interface{}{}
	d.objStmCache = map[objRef][]interface{}{}
}

func toDict(v interface{}) cosDict {
	d, _ := v.(cosDict)
	return d
}
