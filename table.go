package pdftext

import "sort"

// Table is a detected grid of aligned text: a block of consecutive
// lines whose runs fall into the same repeated set of horizontal
// column positions.
type Table struct {
	Rows      [][]string
	HasHeader bool
}

const (
	minTableRows    = 3
	minTableCols    = 2
	columnBucketPx  = 6.0
	columnOverlapPc = 0.6
)

// detectTables groups a page's runs into lines (the same clustering
// assembleText uses) and looks for runs of at least minTableRows
// consecutive lines that share a consistent set of column start
// positions - the signature of tabular content laid out with
// whitespace rather than ruling lines, which is the common case in
// PDFs generated from spreadsheets or form templates.
func detectTables(runs []PositionedRun) []Table {
	lines := clusterLines(runs)
	if len(lines) < minTableRows {
		return nil
	}

	blockStart := -1
	var tables []Table
	flush := func(end int) {
		if blockStart < 0 || end-blockStart < minTableRows {
			blockStart = -1
			return
		}
		if t, ok := buildTable(lines[blockStart:end]); ok {
			tables = append(tables, t)
		}
		blockStart = -1
	}

	var prevCols []float64
	for i, line := range lines {
		cols := columnStarts(line)
		if len(cols) >= minTableCols && columnsConsistent(prevCols, cols) {
			if blockStart < 0 {
				blockStart = i - 1
				if blockStart < 0 {
					blockStart = i
				}
			}
		} else {
			flush(i)
		}
		prevCols = cols
	}
	flush(len(lines))
	return tables
}

func columnStarts(line textLine) []float64 {
	ordered := orderLine(line)
	cols := make([]float64, 0, len(ordered))
	for _, r := range ordered {
		cols = append(cols, roundToBucket(r.X))
	}
	return dedupeSorted(cols)
}

func roundToBucket(x float64) float64 {
	return float64(int(x/columnBucketPx+0.5)) * columnBucketPx
}

func dedupeSorted(xs []float64) []float64 {
	sort.Float64s(xs)
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

func columnsConsistent(a, b []float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	matches := 0
	for _, x := range a {
		for _, y := range b {
			if abs(int(x-y)) <= int(columnBucketPx) {
				matches++
				break
			}
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(matches)/float64(smaller) >= columnOverlapPc
}

// buildTable assigns every line's cells to a shared set of column
// buckets (the union of all lines' column starts, merged where
// close) so ragged rows still line up.
func buildTable(lines []textLine) (Table, bool) {
	var allCols []float64
	for _, l := range lines {
		allCols = append(allCols, columnStarts(l)...)
	}
	allCols = mergeClose(dedupeSorted(allCols), columnBucketPx*1.5)
	if len(allCols) < minTableCols {
		return Table{}, false
	}

	rows := make([][]string, len(lines))
	boldCount := make([]int, len(lines))
	for ri, line := range lines {
		row := make([]string, len(allCols))
		ordered := orderLine(line)
		for _, r := range ordered {
			col := nearestColumn(allCols, r.X)
			if row[col] != "" {
				row[col] += " "
			}
			row[col] += r.Text
			if r.Bold {
				boldCount[ri]++
			}
		}
		rows[ri] = row
	}

	hasHeader := len(lines) > 1 && boldCount[0] > 0 && boldCount[0] > boldCount[1]
	return Table{Rows: rows, HasHeader: hasHeader}, true
}

func mergeClose(xs []float64, tol float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	out := []float64{xs[0]}
	for _, x := range xs[1:] {
		if x-out[len(out)-1] <= tol {
			continue
		}
		out = append(out, x)
	}
	return out
}

func nearestColumn(cols []float64, x float64) int {
	best, bestDist := 0, -1.0
	for i, c := range cols {
		d := c - x
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
