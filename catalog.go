package pdftext

// maxPageTreeDepth bounds /Pages tree recursion against a corrupt or
// adversarial /Kids cycle; real documents never nest anywhere close
// to this deep.
const maxPageTreeDepth = 64

// collectPages walks the page tree starting from the catalog's
// /Pages entry (root is usually an indirect reference, occasionally
// a direct dict in malformed files) and returns every reachable
// /Type /Page leaf's object reference, in document order. Nodes
// already visited are skipped, so a cyclic /Kids array degrades to
// "stop walking" instead of an infinite loop or a panic.
func collectPages(d *Document, root interface{}) []objRef {
	visited := map[objRef]bool{}
	var out []objRef
	walkPageNode(d, root, objRef{}, false, visited, 0, &out)
	return out
}

func walkPageNode(d *Document, v interface{}, ref objRef, haveRef bool, visited map[objRef]bool, depth int, out *[]objRef) {
	if depth > maxPageTreeDepth {
		logWarnf("page tree exceeded depth %d, stopping walk", maxPageTreeDepth)
		return
	}
	if r, ok := v.(objRef); ok {
		if visited[r] {
			return
		}
		visited[r] = true
		obj, err := d.getObject(r)
		if err != nil || obj == nil {
			return
		}
		walkPageNode(d, obj, r, true, visited, depth+1, out)
		return
	}
	dict, ok := v.(cosDict)
	if !ok {
		return
	}
	if isNameEqual(newValue(nil, dict["Type"]), "Page") {
		if haveRef {
			*out = append(*out, ref)
		}
		return
	}
	kids, ok := dict["Kids"].(cosArray)
	if !ok {
		// Some generators omit /Type on leaves; a node with no /Kids
		// and no /Type is treated as a page if it carries page-ish
		// content keys.
		if haveRef && (dict["Contents"] != nil || dict["MediaBox"] != nil) {
			*out = append(*out, ref)
		}
		return
	}
	for _, kid := range kids {
		walkPageNode(d, kid, objRef{}, false, visited, depth+1, out)
	}
}

// inheritedAttr looks up key on dict, walking up /Parent references
// when absent, per the PDF page-tree inheritance rules for
// /Resources, /MediaBox, /CropBox and /Rotate. Cycle-safe via the
// same visited-set pattern as collectPages.
func inheritedAttr(d *Document, dict cosDict, key string) interface{} {
	visited := map[objRef]bool{}
	for {
		if v, ok := dict[cosName(key)]; ok {
			return v
		}
		parent, ok := dict["Parent"]
		if !ok {
			return nil
		}
		ref, ok := parent.(objRef)
		if !ok || visited[ref] {
			return nil
		}
		visited[ref] = true
		obj, err := d.getObject(ref)
		if err != nil {
			return nil
		}
		next, ok := obj.(cosDict)
		if !ok {
			return nil
		}
		dict = next
	}
}
