package utils

import "math"

// Near compares with a relative tolerance, falling back to an absolute one
// near zero.
func Near(a, b float64, tolI ...float64) (l bool) {
	tol := 1.e-08
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		scale = 1
	}
	return math.Abs(a-b) <= tol*scale
}
