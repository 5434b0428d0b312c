package pdftext

import "strings"

// contentState is the subset of PDF graphics state the text-extraction
// interpreter tracks: the CTM and the text-state parameters (which
// are themselves part of graphics state and so are saved/restored by
// q/Q exactly like the CTM is).
type contentState struct {
	ctm matrix

	font       *FontInfo
	fontSize   float64
	charSpace  float64
	wordSpace  float64
	leading    float64
	rise       float64
	hscale     float64 // Tz/100, default 1
	renderMode int

	bold, italic bool
}

func newContentState() contentState {
	return contentState{ctm: identityMatrix, hscale: 1}
}

type interpContext struct {
	doc          *Document
	resourceStk  []cosDict
	gsStack      []contentState
	state        contentState
	tm, tlm      matrix
	inText       bool
	textObjID    int
	nextObjID    *int
	formDepth    int
	maxFormDepth int
	out          *[]PositionedRun
}

func (c *interpContext) resources() cosDict {
	if len(c.resourceStk) == 0 {
		return nil
	}
	return c.resourceStk[len(c.resourceStk)-1]
}

// extractRuns interprets a page's (or Form XObject's) content stream
// and appends every show-text operator's output as a PositionedRun.
// ctm is the coordinate transform already in effect when this stream
// starts (identity for a page, the Form's placement matrix composed
// with the caller's CTM for a nested Form).
func (d *Document) extractRuns(data []byte, resources cosDict, ctm matrix, nextObjID *int, maxFormDepth int, out *[]PositionedRun) error {
	ctx := &interpContext{
		doc:          d,
		resourceStk:  []cosDict{resources},
		state:        contentState{ctm: ctm, hscale: 1},
		nextObjID:    nextObjID,
		maxFormDepth: maxFormDepth,
		out:          out,
	}
	return interpret(data, ctx.handle)
}

func (c *interpContext) handle(op string, operands []Value) error {
	switch op {
	case "q":
		c.gsStack = append(c.gsStack, c.state)
	case "Q":
		if n := len(c.gsStack); n > 0 {
			c.state = c.gsStack[n-1]
			c.gsStack = c.gsStack[:n-1]
		}
	case "cm":
		if len(operands) >= 6 {
			m := matrixFromOperands(operands)
			c.state.ctm = mul(m, c.state.ctm)
		}
	case "gs":
		if len(operands) >= 1 {
			c.applyExtGState(operands[0].Name())
		}
	case "BT":
		c.inText = true
		c.tm = identityMatrix
		c.tlm = identityMatrix
		if c.nextObjID != nil {
			*c.nextObjID++
		}
	case "ET":
		c.inText = false
	case "Tf":
		if len(operands) >= 2 {
			c.state.font = c.resolveFontByName(operands[0].Name())
			c.state.fontSize = operands[1].Float64()
			c.setFontStyleHints(operands[0].Name())
		}
	case "Tc":
		if len(operands) >= 1 {
			c.state.charSpace = operands[0].Float64()
		}
	case "Tw":
		if len(operands) >= 1 {
			c.state.wordSpace = operands[0].Float64()
		}
	case "Tz":
		if len(operands) >= 1 {
			c.state.hscale = operands[0].Float64() / 100
		}
	case "TL":
		if len(operands) >= 1 {
			c.state.leading = operands[0].Float64()
		}
	case "Ts":
		if len(operands) >= 1 {
			c.state.rise = operands[0].Float64()
		}
	case "Tr":
		if len(operands) >= 1 {
			c.state.renderMode = int(operands[0].Int64())
		}
	case "Td":
		if len(operands) >= 2 {
			m := matrix{1, 0, 0, 1, operands[0].Float64(), operands[1].Float64()}
			c.tlm = mul(m, c.tlm)
			c.tm = c.tlm
		}
	case "TD":
		if len(operands) >= 2 {
			c.state.leading = -operands[1].Float64()
			m := matrix{1, 0, 0, 1, operands[0].Float64(), operands[1].Float64()}
			c.tlm = mul(m, c.tlm)
			c.tm = c.tlm
		}
	case "Tm":
		if len(operands) >= 6 {
			c.tlm = matrixFromOperands(operands)
			c.tm = c.tlm
		}
	case "T*":
		m := matrix{1, 0, 0, 1, 0, -c.state.leading}
		c.tlm = mul(m, c.tlm)
		c.tm = c.tlm
	case "Tj":
		if len(operands) >= 1 {
			c.showText(operands[0].RawString())
		}
	case "'":
		m := matrix{1, 0, 0, 1, 0, -c.state.leading}
		c.tlm = mul(m, c.tlm)
		c.tm = c.tlm
		if len(operands) >= 1 {
			c.showText(operands[len(operands)-1].RawString())
		}
	case "\"":
		if len(operands) >= 3 {
			c.state.wordSpace = operands[0].Float64()
			c.state.charSpace = operands[1].Float64()
			m := matrix{1, 0, 0, 1, 0, -c.state.leading}
			c.tlm = mul(m, c.tlm)
			c.tm = c.tlm
			c.showText(operands[2].RawString())
		}
	case "TJ":
		if len(operands) >= 1 {
			c.showTextArray(operands[0])
		}
	case "Do":
		if len(operands) >= 1 {
			c.doXObject(operands[0].Name())
		}
	}
	return nil
}

func matrixFromOperands(operands []Value) matrix {
	var m matrix
	for i := 0; i < 6; i++ {
		m[i] = operands[i].Float64()
	}
	return m
}

func (c *interpContext) resolveFontByName(name string) *FontInfo {
	fonts, ok := c.doc.resolve(c.resources()["Font"]).raw.(cosDict)
	if !ok {
		return nil
	}
	ref, _ := fonts[cosName(name)].(objRef)
	fontVal := c.doc.resolve(fonts[cosName(name)])
	fontDict, ok := fontVal.raw.(cosDict)
	if !ok {
		return nil
	}
	return c.doc.resolveFont(fontDict, ref)
}

func (c *interpContext) setFontStyleHints(name string) {
	fonts, ok := c.doc.resolve(c.resources()["Font"]).raw.(cosDict)
	if !ok {
		return
	}
	fontVal := c.doc.resolve(fonts[cosName(name)])
	fontDict, ok := fontVal.raw.(cosDict)
	if !ok {
		return
	}
	base := strings.ToLower(valueName(fontDict["BaseFont"]))
	c.state.bold = strings.Contains(base, "bold")
	c.state.italic = strings.Contains(base, "italic") || strings.Contains(base, "oblique")
	if desc, ok := c.doc.resolve(fontDict["FontDescriptor"]).raw.(cosDict); ok {
		flags := numberToInt64(desc["Flags"])
		if flags&(1<<18) != 0 {
			c.state.bold = true
		}
		if flags&(1<<6) != 0 {
			c.state.italic = true
		}
	}
}

// applyExtGState reads an ExtGState dict's optional /Font entry
// ([fontRef size]), the one part of ExtGState that affects text
// extraction; everything else in ExtGState (blend modes, alpha) has
// no bearing on extracted text and is ignored.
func (c *interpContext) applyExtGState(name string) {
	gsDict, ok := c.doc.resolve(c.resources()["ExtGState"]).raw.(cosDict)
	if !ok {
		return
	}
	entry := c.doc.resolve(gsDict[cosName(name)])
	dict, ok := entry.raw.(cosDict)
	if !ok {
		return
	}
	fv, ok := dict["Font"]
	if !ok {
		return
	}
	arr, ok := c.doc.resolve(fv).raw.(cosArray)
	if !ok || len(arr) < 2 {
		return
	}
	fontVal := c.doc.resolve(arr[0])
	if fontDict, ok := fontVal.raw.(cosDict); ok {
		ref, _ := arr[0].(objRef)
		c.state.font = c.doc.resolveFont(fontDict, ref)
	}
	c.state.fontSize = c.doc.resolve(arr[1]).Float64()
}

// textRenderMatrix composes the glyph-space-to-device transform per
// ISO 32000-1 §9.4.4: Trm = [Tfs*Th 0 0 Tfs 0 Trise] × Tm × CTM.
func (c *interpContext) textRenderMatrix() matrix {
	scale := matrix{c.state.fontSize * c.state.hscale, 0, 0, c.state.fontSize, 0, c.state.rise}
	return mul(scale, mul(c.tm, c.state.ctm))
}

func (c *interpContext) showText(s string) {
	c.showRun([]stringOrNumber{{str: s}})
}

func (c *interpContext) showTextArray(v Value) {
	if v.Kind() != KindArray {
		return
	}
	items := make([]stringOrNumber, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		e := v.Index(i)
		if e.Kind() == KindString {
			items = append(items, stringOrNumber{str: e.RawString()})
		} else {
			items = append(items, stringOrNumber{num: e.Float64(), isNum: true})
		}
	}
	c.showRun(items)
}

type stringOrNumber struct {
	str   string
	num   float64
	isNum bool
}

// showRun decodes and advances through one or more show-text
// fragments (a single Tj's string, or a TJ array's mix of strings and
// kerning numbers), emitting a single PositionedRun for the whole
// operator invocation - matching how the run is defined: one
// contiguous span per show-text operator.
func (c *interpContext) showRun(items []stringOrNumber) {
	if c.state.font == nil {
		return
	}
	fi := c.state.font
	origin := c.textRenderMatrix()
	ox, oy := origin.apply(0, 0)
	// Tm x CTM maps text space to user space; its scale turns the font
	// size and the text-space advance into user-space values.
	userScale := mul(c.tm, c.state.ctm).scaleOf()

	var text strings.Builder
	width := 0.0
	codeWidth := fi.CodeWidth()

	for _, item := range items {
		if item.isNum {
			tx := -item.num / 1000 * c.state.fontSize * c.state.hscale
			width += tx
			c.tm = mul(matrix{1, 0, 0, 1, tx, 0}, c.tm)
			continue
		}
		raw := []byte(item.str)
		for i := 0; i+codeWidth <= len(raw); i += codeWidth {
			var code uint32
			for k := 0; k < codeWidth; k++ {
				code = code<<8 | uint32(raw[i+k])
			}
			if dec, ok := fi.Decode(code); ok {
				text.WriteString(dec)
			}
			w0 := fi.Width(code) / 1000
			ws := 0.0
			if codeWidth == 1 && code == 32 {
				ws = c.state.wordSpace
			}
			tx := (w0*c.state.fontSize + c.state.charSpace + ws) * c.state.hscale
			width += tx
			c.tm = mul(matrix{1, 0, 0, 1, tx, 0}, c.tm)
		}
	}

	// Render mode 3/7 is invisible text; dropped unless the caller
	// opted in via Config.IncludeInvisibleText.
	invisible := c.state.renderMode == 3 || c.state.renderMode == 7
	if invisible && !c.doc.cfg.IncludeInvisibleText {
		return
	}
	if text.Len() == 0 {
		return
	}

	*c.out = append(*c.out, PositionedRun{
		Text:         text.String(),
		X:            ox,
		Y:            oy,
		FontSize:     c.state.fontSize * userScale,
		Width:        width * userScale,
		HasRealWidth: fi.HasReliableWidths(),
		Bold:         c.state.bold,
		Italic:       c.state.italic,
		TextObjectID: c.currentTextObjID(),
	})
}

func (c *interpContext) currentTextObjID() int {
	if c.nextObjID == nil {
		return 0
	}
	return *c.nextObjID
}

// doXObject dispatches a Do operator: Image XObjects carry no text
// and are skipped; Form XObjects are fully interpreted recursively,
// composing the Form's own /Matrix and inheriting (or overriding, per
// /Resources) the invoking stream's resource dictionary.
func (c *interpContext) doXObject(name string) {
	xobjs, ok := c.doc.resolve(c.resources()["XObject"]).raw.(cosDict)
	if !ok {
		return
	}
	val := c.doc.resolve(xobjs[cosName(name)])
	st, ok := val.raw.(*cosStream)
	if !ok {
		return
	}
	if !isNameEqual(newValue(nil, st.dict["Subtype"]), "Form") {
		return
	}
	if c.formDepth >= c.maxFormDepth {
		logWarnf("Form XObject recursion exceeded max depth %d, skipping", c.maxFormDepth)
		return
	}

	formMatrix := identityMatrix
	if arr, ok := st.dict["Matrix"].(cosArray); ok && len(arr) >= 6 {
		for i := 0; i < 6; i++ {
			formMatrix[i] = c.doc.resolve(arr[i]).Float64()
		}
	}
	ctm := mul(formMatrix, c.state.ctm)

	resources := c.resources()
	if r, ok := c.doc.resolve(st.dict["Resources"]).raw.(cosDict); ok {
		resources = r
	}

	data, err := c.doc.decodeStream(st)
	if err != nil {
		logWarnf("Form XObject %s unreadable: %v", name, err)
		return
	}

	sub := &interpContext{
		doc:          c.doc,
		resourceStk:  append(append([]cosDict(nil), c.resourceStk...), resources),
		state:        contentState{ctm: ctm, hscale: 1},
		nextObjID:    c.nextObjID,
		formDepth:    c.formDepth + 1,
		maxFormDepth: c.maxFormDepth,
		out:          c.out,
	}
	if err := interpret(data, sub.handle); err != nil {
		logWarnf("Form XObject %s content stream error: %v", name, err)
	}
}
