package pdftext

// PositionedRun is one contiguous span of text drawn by a single
// show-text operator under one text state: the unit the assembler
// (assembler.go) sorts and stitches back into reading order.
type PositionedRun struct {
	Text string

	// X, Y is the run's origin in unrotated default user space (the
	// page's native bottom-up coordinate system; assembler.go is
	// responsible for the top-down flip readers expect).
	X, Y float64

	FontSize float64
	Width    float64 // total advance, in user-space units

	// HasRealWidth reports whether Width was computed from the font's
	// own /Widths (or CID /W /DW) metrics rather than defaulting to 0
	// for lack of any - the assembler trusts a tighter word-gap
	// threshold in the former case, a text-length-scaled estimate in
	// the latter.
	HasRealWidth bool

	Bold, Italic bool

	// TextObjectID groups runs emitted by the same BT...ET block, so
	// the assembler can keep a single text object's runs in emission
	// order even when two text objects interleave on the same line.
	TextObjectID int
}
