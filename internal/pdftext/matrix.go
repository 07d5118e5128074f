package pdftext

import "math"

// Matrix is a PDF affine transform [a b c d e f].
type Matrix [6]float64

var identity = Matrix{1, 0, 0, 1, 0, 0}

// Mult returns m × n.
func (m Matrix) Mult(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// vscale is the length of the transformed unit y vector.
func (m Matrix) vscale() float64 { return math.Hypot(m[2], m[3]) }

// hscale is the length of the transformed unit x vector.
func (m Matrix) hscale() float64 { return math.Hypot(m[0], m[1]) }

// roundSize rounds a font size to one decimal place.
func roundSize(s float64) float64 {
	return math.Round(s*10) / 10
}
