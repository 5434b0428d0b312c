package pdftext

import (
	"regexp"
	"sort"
	"strings"
)

// lineClusterFactor and paragraphGapFactor are expressed as
// multiples of the line's font size, since a tight 8pt caption and a
// spaced-out 24pt heading need different absolute pixel tolerances to
// cluster (or break) correctly.
const (
	lineClusterFactor  = 0.5
	paragraphGapFactor = 1.8
)

// assembleText turns a page's unordered PositionedRuns into reading-
// order plain text: sort top-to-bottom or left-to-right as a human
// reader would scan the page, insert exactly the whitespace implied
// by the runs' actual gaps (never more, never less), and optionally
// strip e-signature placeholder anchors.
func assembleText(runs []PositionedRun, stripPlaceholders bool, maxChars int) string {
	if len(runs) == 0 {
		return ""
	}
	lines := clusterLines(runs)

	var b strings.Builder
	prevBottom := 0.0
	prevFontSize := 0.0
	for li, line := range lines {
		ordered := orderLine(line)
		lineText := joinRun(ordered)
		if li > 0 {
			gap := prevBottom - line.y
			if gap > prevFontSize*paragraphGapFactor && prevFontSize > 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(lineText)
		prevBottom = line.y
		prevFontSize = line.fontSize
	}

	out := b.String()
	if stripPlaceholders {
		out = stripFormPlaceholders(out)
	}
	if maxChars > 0 && len(out) > maxChars {
		out = out[:maxChars]
	}
	return out
}

type textLine struct {
	y        float64
	fontSize float64
	runs     []PositionedRun
}

// clusterLines sorts runs by descending Y (top of page first, in
// PDF's bottom-up coordinate system) and groups runs whose baselines
// fall within lineClusterFactor*fontSize of each other into the same
// visual line.
func clusterLines(runs []PositionedRun) []textLine {
	sorted := append([]PositionedRun(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []textLine
	for _, r := range sorted {
		fs := r.FontSize
		if fs <= 0 {
			fs = 1
		}
		if len(lines) > 0 {
			last := &lines[len(lines)-1]
			tol := maxFloat(last.fontSize, fs) * lineClusterFactor
			if last.y-r.Y <= tol {
				last.runs = append(last.runs, r)
				if fs > last.fontSize {
					last.fontSize = fs
				}
				continue
			}
		}
		lines = append(lines, textLine{y: r.Y, fontSize: fs, runs: []PositionedRun{r}})
	}
	return lines
}

// orderLine implements the "text-object-grouped x-ordering" rule:
// runs from the same BT...ET block stay together in emission order
// (so a text object's own kerned/overlapping runs are never
// reordered), while distinct text objects on the same line are placed
// left to right by their leftmost run's X.
func orderLine(line textLine) []PositionedRun {
	type group struct {
		id   int
		minX float64
		runs []PositionedRun
	}
	var groups []*group
	index := map[int]*group{}
	for _, r := range line.runs {
		g, ok := index[r.TextObjectID]
		if !ok {
			g = &group{id: r.TextObjectID, minX: r.X}
			index[r.TextObjectID] = g
			groups = append(groups, g)
		}
		if r.X < g.minX {
			g.minX = r.X
		}
		g.runs = append(g.runs, r)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].minX < groups[j].minX })

	var out []PositionedRun
	for _, g := range groups {
		out = append(out, g.runs...)
	}
	return out
}

// shouldInsertSpace decides whether the gap between two runs implies a
// word boundary. A run whose font carried real advance-width metrics
// gets a tight threshold (0.15*fontSize): the reported gap is
// trustworthy, so even a small one is meaningful. A run with no
// reliable width data falls back to a looser, text-length-scaled
// estimate (0.5*fontSize per character), since the X coordinates
// alone can't be trusted to reflect true glyph spacing. Either way, a
// sharp backward jump (more than twice the font size) is treated as a
// boundary unconditionally - the common shape of two columns a
// line-clustering pass merged onto one row.
func shouldInsertSpace(gap, fontSize float64, hasRealWidth bool, prevTextLen int) bool {
	fs := fontSize
	if fs <= 0 {
		fs = 1
	}
	if gap < -2*fs {
		return true
	}
	if hasRealWidth {
		return gap > fs*0.15
	}
	n := prevTextLen
	if n < 1 {
		n = 1
	}
	return gap > float64(n)*fs*0.5
}

// joinRun concatenates a line's ordered runs, inserting a single space
// wherever shouldInsertSpace says the gap between two runs implies a
// word boundary, and no space at all when runs are flush or
// overlapping - satisfying both "no missing word boundaries" and "no
// spurious spaces".
func joinRun(runs []PositionedRun) string {
	var b strings.Builder
	var prevEnd, prevFontSize float64
	var prevHasRealWidth bool
	var prevLen int
	havePrev := false
	for _, r := range runs {
		if havePrev {
			needsSpace := shouldInsertSpace(r.X-prevEnd, prevFontSize, prevHasRealWidth, prevLen)
			hasLeadingSpace := strings.HasPrefix(r.Text, " ")
			hasTrailingSpace := strings.HasSuffix(b.String(), " ")
			if needsSpace && !hasLeadingSpace && !hasTrailingSpace && b.Len() > 0 {
				b.WriteString(" ")
			}
		}
		b.WriteString(r.Text)
		prevEnd = r.X + r.Width
		prevFontSize = r.FontSize
		prevHasRealWidth = r.HasRealWidth
		prevLen = len(r.Text)
		havePrev = true
	}
	return b.String()
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// placeholderPattern matches the e-signature anchor conventions the
// spec calls out: double/triple-brace tags ("{{SignHere}}"), and
// bracketed anchor text ("[sig_es_:signer1:signature]"), each
// optionally padded with the whitespace the generator surrounds them
// with so removal doesn't leave a stray blank run.
var placeholderPattern = regexp.MustCompile(`[ \t]*(\{\{\{?[^{}]*\}\}\}?|\[sig_[^\[\]]*\])[ \t]*`)

func stripFormPlaceholders(s string) string {
	return placeholderPattern.ReplaceAllString(s, " ")
}
