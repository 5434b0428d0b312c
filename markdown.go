package pdftext

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// renderMarkdown re-derives structure the plain-text path throws
// away: headings from a line's font size relative to the page's body
// text, bold/italic spans, bullet/numbered lists, and hyperlinks from
// the page's Link annotations.
func renderMarkdown(runs []PositionedRun, links []LinkAnnotation, stripPlaceholders bool) string {
	if len(runs) == 0 {
		return ""
	}
	lines := clusterLines(runs)
	bodySize := dominantFontSize(lines)

	var b strings.Builder
	prevBottom := 0.0
	for li, line := range lines {
		ordered := orderLine(line)
		text := renderLineMarkdown(ordered, links)
		if stripPlaceholders {
			text = stripFormPlaceholders(text)
		}
		text = strings.TrimRight(text, " ")
		if text == "" {
			continue
		}

		if li > 0 {
			gap := prevBottom - line.y
			if gap > bodySize*paragraphGapFactor {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}

		if level := headingLevel(text, line.fontSize, bodySize); level > 0 {
			b.WriteString(strings.Repeat("#", level))
			b.WriteString(" ")
		} else if marker, rest := listMarker(text); marker != "" {
			b.WriteString(marker)
			text = rest
		}
		b.WriteString(text)
		prevBottom = line.y
	}
	return b.String()
}

// dominantFontSize picks the most common line font size, rounded to
// the nearest half point, as a proxy for "body text" - the baseline
// every heading ratio is measured against.
func dominantFontSize(lines []textLine) float64 {
	counts := map[float64]int{}
	for _, l := range lines {
		counts[roundHalf(l.fontSize)]++
	}
	best, bestCount := 10.0, 0
	for size, n := range counts {
		if n > bestCount {
			best, bestCount = size, n
		}
	}
	return best
}

func roundHalf(x float64) float64 {
	return float64(int(x*2+0.5)) / 2
}

// headingLevel classifies a line as a heading (1 = biggest) by its
// font-size ratio to the page's body text, but only when the line
// reads like a heading and not an oversized or emphasized sentence: at
// most 200 characters, and not ending in a comma or semicolon (the
// shape of a clause that just happens to sit in a larger font).
func headingLevel(text string, lineSize, bodySize float64) int {
	if bodySize <= 0 {
		return 0
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > 200 {
		return 0
	}
	if strings.HasSuffix(trimmed, ",") || strings.HasSuffix(trimmed, ";") {
		return 0
	}
	ratio := lineSize / bodySize
	switch {
	case ratio >= 2.0:
		return 1
	case ratio >= 1.6:
		return 2
	case ratio >= 1.3:
		return 3
	case ratio >= 1.15:
		return 4
	default:
		return 0
	}
}

var (
	bulletPattern  = regexp.MustCompile(`^[•◦▪\-\*]\s+`)
	numberedPattern = regexp.MustCompile(`^(\d+[.)])\s+`)
)

func listMarker(text string) (marker, rest string) {
	if loc := bulletPattern.FindStringIndex(text); loc != nil {
		return "- ", text[loc[1]:]
	}
	if loc := numberedPattern.FindStringIndex(text); loc != nil {
		return text[:loc[1]] + " ", text[loc[1]:]
	}
	return "", text
}

// renderLineMarkdown groups a line's ordered runs into spans of
// uniform bold/italic styling, wraps each span in the matching
// Markdown emphasis markers, and wraps any span whose position falls
// under a link annotation - or, failing that, any bare http(s) URL the
// span's own text contains - in a Markdown link.
func renderLineMarkdown(runs []PositionedRun, links []LinkAnnotation) string {
	var b strings.Builder
	var prevEnd, prevFontSize float64
	var prevHasRealWidth bool
	var prevLen int
	havePrev := false
	for _, r := range runs {
		if havePrev {
			needsSpace := shouldInsertSpace(r.X-prevEnd, prevFontSize, prevHasRealWidth, prevLen)
			if needsSpace && !strings.HasSuffix(b.String(), " ") {
				b.WriteString(" ")
			}
		}
		b.WriteString(renderSpanMarkdown(r, links))
		prevEnd = r.X + r.Width
		prevFontSize = r.FontSize
		prevHasRealWidth = r.HasRealWidth
		prevLen = len(r.Text)
		havePrev = true
	}
	return b.String()
}

// renderSpanMarkdown renders one run: wrapped whole in a Markdown link
// when it falls under an explicit Link annotation, auto-linked where
// its own text contains a bare URL, or escaped plain text otherwise -
// in every case with the run's bold/italic emphasis applied on top.
func renderSpanMarkdown(r PositionedRun, links []LinkAnnotation) string {
	var text string
	switch url := linkAt(links, r); {
	case url != "":
		text = fmt.Sprintf("[%s](%s)", escapeMarkdown(r.Text), url)
	case bareURLPattern.MatchString(r.Text):
		text = autoLinkURLs(r.Text)
	default:
		text = escapeMarkdown(r.Text)
	}
	switch {
	case r.Bold && r.Italic:
		return "***" + text + "***"
	case r.Bold:
		return "**" + text + "**"
	case r.Italic:
		return "*" + text + "*"
	default:
		return text
	}
}

// bareURLPattern matches an unlinked http(s) URL in running text, up
// to the next whitespace, angle bracket, square bracket or
// parenthesis; trailing sentence punctuation it takes in is trimmed
// off again by autoLinkURLs.
var bareURLPattern = regexp.MustCompile(`https?://[^\s<>\[\]()]+`)

// autoLinkURLs wraps every bare URL bareURLPattern finds in text as a
// Markdown link, escaping the surrounding plain text but leaving the
// URL itself unescaped (it's not user-authored Markdown source).
func autoLinkURLs(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range bareURLPattern.FindAllStringIndex(text, -1) {
		b.WriteString(escapeMarkdown(text[last:loc[0]]))
		url := strings.TrimRight(text[loc[0]:loc[1]], ".,;:!?")
		trailing := text[loc[0]+len(url) : loc[1]]
		fmt.Fprintf(&b, "[%s](%s)", url, url)
		b.WriteString(trailing)
		last = loc[1]
	}
	b.WriteString(escapeMarkdown(text[last:]))
	return b.String()
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\", "*", "\\*", "_", "\\_", "[", "\\[", "]", "\\]", "`", "\\`",
	)
	return replacer.Replace(s)
}

// linkAt returns the URI of the link annotation whose rectangle
// contains run r's origin point, preferring the smallest (most
// specific) matching rectangle when several overlap.
func linkAt(links []LinkAnnotation, r PositionedRun) string {
	var best LinkAnnotation
	bestArea := -1.0
	for _, l := range links {
		if r.X < l.X0 || r.X > l.X1 || r.Y < l.Y0 || r.Y > l.Y1 {
			continue
		}
		area := (l.X1 - l.X0) * (l.Y1 - l.Y0)
		if bestArea < 0 || area < bestArea {
			best, bestArea = l, area
		}
	}
	return best.URI
}

// sortLinksByArea is used by readLinks (links.go), behind Page.Links, so output
// order is deterministic (smallest/most specific targets first).
func sortLinksByArea(links []LinkAnnotation) {
	sort.SliceStable(links, func(i, j int) bool {
		ai := (links[i].X1 - links[i].X0) * (links[i].Y1 - links[i].Y0)
		aj := (links[j].X1 - links[j].X0) * (links[j].Y1 - links[j].Y0)
		return ai < aj
	})
}
