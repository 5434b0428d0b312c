package pdftext

import "strings"

// Page is a handle to one page of a Document. Its content stream is
// parsed lazily, on first call to Text/Lines/Markdown/Tables, and
// cached on the Page itself so repeated calls don't re-run the
// content-stream interpreter.
type Page struct {
	doc  *Document
	ref  objRef
	dict cosDict

	runsLoaded bool
	runs       []PositionedRun
	err        error
}

// Err reports the error (if any) encountered while interpreting this
// page's content stream. In BestEffortMode, Document construction and
// other pages are unaffected by one page's failure; the caller learns
// about it here instead. A disposed page's Err is always nil.
func (p *Page) Err() error {
	if p.doc == nil {
		return nil
	}
	p.ensureRuns()
	return p.err
}

func (p *Page) ensureRuns() {
	if p.runsLoaded {
		return
	}
	p.runsLoaded = true

	resourcesVal := p.doc.resolve(inheritedAttr(p.doc, p.dict, "Resources"))
	resources, _ := resourcesVal.raw.(cosDict)

	data := p.contentBytes()
	id := 0
	maxDepth := p.doc.cfg.MaxFormDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if err := p.doc.extractRuns(data, resources, identityMatrix, &id, maxDepth, &p.runs); err != nil {
		p.err = err
		if p.doc.cfg.ParsingMode == StrictMode {
			return
		}
		logWarnf("page content stream error (continuing, best-effort): %v", err)
	}
}

// contentBytes concatenates a page's /Contents stream(s): a single
// stream is used directly, an array of streams is joined with a
// newline between each so a content-stream token never gets spliced
// across what was originally a stream boundary.
func (p *Page) contentBytes() []byte {
	contents := p.doc.resolve(p.dict["Contents"])
	switch contents.Kind() {
	case KindStream:
		data, _ := contents.StreamBytes()
		return data
	case KindArray:
		var parts [][]byte
		for i := 0; i < contents.Len(); i++ {
			if data, ok := contents.Index(i).StreamBytes(); ok {
				parts = append(parts, data)
			}
		}
		return bytesJoin(parts, []byte("\n"))
	default:
		return nil
	}
}

func bytesJoin(parts [][]byte, sep []byte) []byte {
	total := 0
	for i, p := range parts {
		total += len(p)
		if i > 0 {
			total += len(sep)
		}
	}
	out := make([]byte, 0, total)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep...)
		}
		out = append(out, p...)
	}
	return out
}

// Text returns the page's text in reading order, with word and
// paragraph boundaries inferred from glyph spacing. A disposed page's
// Text is always "".
func (p *Page) Text() string {
	if p.doc == nil {
		return ""
	}
	p.ensureRuns()
	return assembleText(p.runs, p.doc.cfg.StripFormPlaceholders, p.doc.cfg.MaxTotalChars)
}

// Lines returns the page's text as one string per visual line,
// top to bottom, without the paragraph-break blank lines Text()
// inserts. A disposed page's Lines is always empty.
func (p *Page) Lines() []string {
	if p.doc == nil {
		return nil
	}
	p.ensureRuns()
	clustered := clusterLines(p.runs)
	lines := make([]string, 0, len(clustered))
	for _, l := range clustered {
		text := joinRun(orderLine(l))
		if p.doc.cfg.StripFormPlaceholders {
			text = stripFormPlaceholders(text)
		}
		text = strings.TrimSpace(text)
		if text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

// Markdown returns the page rendered as Markdown: headings inferred
// from font size, bold/italic spans, lists, and hyperlinks from the
// page's Link annotations. A disposed page's Markdown is always "".
func (p *Page) Markdown() string {
	if p.doc == nil {
		return ""
	}
	p.ensureRuns()
	return renderMarkdown(p.runs, p.Links(), p.doc.cfg.StripFormPlaceholders)
}

// Tables returns the page's detected tabular regions. A disposed
// page's Tables is always empty.
func (p *Page) Tables() []Table {
	if p.doc == nil {
		return nil
	}
	p.ensureRuns()
	return detectTables(p.runs)
}

// Links returns the page's externally meaningful (URI-action) link
// annotations. A disposed page's Links is always empty.
func (p *Page) Links() []LinkAnnotation {
	if p.doc == nil {
		return nil
	}
	return p.doc.readLinks(p.dict)
}

// MediaBox returns the page's effective media box [x0 y0 x1 y1],
// walking /Parent per the page-tree inheritance rule if the page
// itself doesn't carry one. A disposed page reports the US Letter
// fallback, the same value an empty/unset MediaBox would produce.
func (p *Page) MediaBox() [4]float64 {
	box := [4]float64{0, 0, 612, 792} // US Letter, the fallback default
	if p.doc == nil {
		return box
	}
	v := inheritedAttr(p.doc, p.dict, "MediaBox")
	arr, ok := p.doc.resolve(v).raw.(cosArray)
	if !ok || len(arr) < 4 {
		return box
	}
	for i := 0; i < 4; i++ {
		box[i] = p.doc.resolve(arr[i]).Float64()
	}
	return box
}
