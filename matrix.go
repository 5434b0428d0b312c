package pdftext

import "math"

// matrix is a PDF transformation matrix [a b c d e f], applied to row
// vectors as: [x' y' 1] = [x y 1] * | a b 0 |
//                                   | c d 0 |
//                                   | e f 1 |
type matrix [6]float64

var identityMatrix = matrix{1, 0, 0, 1, 0, 0}

// mul composes m1 and m2 so that applying the result to a point is
// the same as applying m1 first and then m2 - the "new times
// current" convention the 'cm' operator and text/line-matrix updates
// both use: the freshly specified matrix is m1, the matrix already in
// effect is m2.
func mul(m1, m2 matrix) matrix {
	return matrix{
		m1[0]*m2[0] + m1[1]*m2[2],
		m1[0]*m2[1] + m1[1]*m2[3],
		m1[2]*m2[0] + m1[3]*m2[2],
		m1[2]*m2[1] + m1[3]*m2[3],
		m1[4]*m2[0] + m1[5]*m2[2] + m2[4],
		m1[4]*m2[1] + m1[5]*m2[3] + m2[5],
	}
}

// apply transforms a point by m.
func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

// scaleOf approximates the matrix's uniform scale factor. content.go
// applies it to Tm x CTM to turn a run's font size and text-space
// advance width into user-space values, the sizes heading detection
// in markdown.go compares.
func (m matrix) scaleOf() float64 {
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[2], m[3])
	return (sx + sy) / 2
}
