package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// run builds a PositionedRun with HasRealWidth set, the common case of
// an embedded or standard-14 font that carries real /Widths metrics;
// TestAssembleText_fallbackWidthEstimate_* exercise the HasRealWidth
// false branch explicitly.
func run(text string, x, y, fontSize, width float64, objID int) PositionedRun {
	return PositionedRun{Text: text, X: x, Y: y, FontSize: fontSize, Width: width, TextObjectID: objID, HasRealWidth: true}
}

func TestAssembleText_wordGap_insertsSingleSpace(t *testing.T) {
	runs := []PositionedRun{
		run("Hello", 0, 700, 12, 30, 1),
		run("World", 40, 700, 12, 30, 1), // gap = 40-30=10 > 12*0.15=1.8
	}
	assert.Equal(t, "Hello World", assembleText(runs, false, 0))
}

func TestAssembleText_flushRuns_noSpuriousSpace(t *testing.T) {
	runs := []PositionedRun{
		run("Hel", 0, 700, 12, 15, 1),
		run("lo", 15, 700, 12, 10, 1), // flush, gap = 0
	}
	assert.Equal(t, "Hello", assembleText(runs, false, 0))
}

func TestAssembleText_paragraphGap_insertsBlankLine(t *testing.T) {
	runs := []PositionedRun{
		run("First paragraph", 0, 700, 12, 80, 1),
		run("Second paragraph", 0, 700-12*2, 12, 90, 2), // gap = 24 > 12*1.8=21.6
	}
	assert.Equal(t, "First paragraph\n\nSecond paragraph", assembleText(runs, false, 0))
}

func TestAssembleText_sameLine_noParagraphGap(t *testing.T) {
	runs := []PositionedRun{
		run("First", 0, 700, 12, 30, 1),
		run("Second", 40, 698, 12, 40, 2), // Y within cluster tolerance (12*0.5=6.0)
	}
	assert.Equal(t, "First Second", assembleText(runs, false, 0))
}

func TestAssembleText_backwardJump_insertsSpace(t *testing.T) {
	runs := []PositionedRun{
		run("Left column", 0, 700, 12, 60, 1),
		// xGap = 5-60 = -55, well under -2*12=-24: a second column the
		// line-clustering pass merged into the same visual line.
		run("Right column", 5, 700, 12, 60, 2),
	}
	assert.Equal(t, "Left column Right column", assembleText(runs, false, 0))
}

func TestAssembleText_fallbackWidthEstimate_modestGapStaysJoined(t *testing.T) {
	runs := []PositionedRun{
		{Text: "abc", X: 0, Y: 700, FontSize: 10, Width: 20, TextObjectID: 1, HasRealWidth: false},
		// threshold = len("abc")*10*0.5 = 15; gap = 30-20 = 10 < 15: no
		// real-metric data to trust, so a modest gap stays joined...
		{Text: "def", X: 30, Y: 700, FontSize: 10, Width: 20, TextObjectID: 1, HasRealWidth: false},
	}
	assert.Equal(t, "abcdef", assembleText(runs, false, 0))
}

func TestAssembleText_fallbackWidthEstimate_overThresholdInsertsSpace(t *testing.T) {
	runs := []PositionedRun{
		{Text: "abc", X: 0, Y: 700, FontSize: 10, Width: 20, TextObjectID: 1, HasRealWidth: false},
		// threshold = len("abc")*10*0.5 = 15; gap = 40-20 = 20 > 15.
		{Text: "def", X: 40, Y: 700, FontSize: 10, Width: 20, TextObjectID: 1, HasRealWidth: false},
	}
	assert.Equal(t, "abc def", assembleText(runs, false, 0))
}

func TestAssembleText_yFlipReadingOrder_topRunsFirst(t *testing.T) {
	runs := []PositionedRun{
		run("Bottom", 0, 100, 12, 40, 1),
		run("Top", 0, 700, 12, 30, 2),
	}
	got := assembleText(runs, false, 0)
	assert.True(t, len(got) > 0)
	assert.Contains(t, got, "Top")
	lines := []rune(got)
	_ = lines
	// "Top" must appear before "Bottom" in the assembled text.
	topIdx := indexOf(got, "Top")
	bottomIdx := indexOf(got, "Bottom")
	assert.True(t, topIdx < bottomIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestAssembleText_maxChars_truncates(t *testing.T) {
	runs := []PositionedRun{run("Hello World", 0, 700, 12, 60, 1)}
	got := assembleText(runs, false, 5)
	assert.Equal(t, "Hello", got)
}

func TestAssembleText_stripPlaceholders(t *testing.T) {
	runs := []PositionedRun{run("Sign here {{SignHere}} thanks", 0, 700, 12, 200, 1)}
	got := assembleText(runs, true, 0)
	assert.NotContains(t, got, "{{SignHere}}")
}

func TestAssembleText_empty(t *testing.T) {
	assert.Equal(t, "", assembleText(nil, false, 0))
}

func TestOrderLine_groupsByTextObjectIDThenSortsByMinX(t *testing.T) {
	line := textLine{
		runs: []PositionedRun{
			run("B2", 50, 700, 12, 10, 2),
			run("A1", 0, 700, 12, 10, 1),
			run("B1", 40, 700, 12, 10, 2),
		},
	}
	ordered := orderLine(line)
	// group 1 (minX=0) sorts before group 2 (minX=40); within group 2,
	// emission order (B2 then B1) is preserved even though B1's X < B2's X.
	assert.Equal(t, []string{"A1", "B2", "B1"}, []string{ordered[0].Text, ordered[1].Text, ordered[2].Text})
}
