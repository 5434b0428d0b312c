package pdftext

// LinkAnnotation is a page-level hyperlink: a /Link annotation whose
// action is a URI action. Internal-navigation links (/Dest, or a
// /GoTo action to another page) carry no externally meaningful target
// and are not reported.
type LinkAnnotation struct {
	X0, Y0, X1, Y1 float64
	URI            string
}

func (d *Document) readLinks(pageDict cosDict) []LinkAnnotation {
	annotsVal := d.resolve(pageDict["Annots"])
	if annotsVal.Kind() != KindArray {
		return nil
	}
	var links []LinkAnnotation
	for i := 0; i < annotsVal.Len(); i++ {
		annot := annotsVal.Index(i)
		if annot.Kind() != KindDict {
			continue
		}
		if !isNameEqual(annot.Key("Subtype"), "Link") {
			continue
		}
		rect := annot.Key("Rect")
		if rect.Kind() != KindArray || rect.Len() < 4 {
			continue
		}
		x0, y0, x1, y1 := rect.Index(0).Float64(), rect.Index(1).Float64(), rect.Index(2).Float64(), rect.Index(3).Float64()
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}

		action := annot.Key("A")
		if action.Kind() != KindDict || !isNameEqual(action.Key("S"), "URI") {
			continue
		}
		uri := action.Key("URI")
		if uri.Kind() != KindString {
			continue
		}
		links = append(links, LinkAnnotation{X0: x0, Y0: y0, X1: x1, Y1: y1, URI: decodeTextString(uri.RawString())})
	}
	sortLinksByArea(links)
	return links
}
