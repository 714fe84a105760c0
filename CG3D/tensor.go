package CG3D

// contract applies the n x n row major matrix M along one axis of a tensor of
// n^3 values stored x fastest:
//
//	dst[.., q, ..] = sum_m M[q*n+m] * src[.., m, ..]
func contract(axis int, M, src, dst []float64, n int) {
	var (
		stride = [3]int{1, n, n * n}[axis]
		outer  = n * n * n / (stride * n)
	)
	for o := 0; o < outer; o++ {
		base := o * stride * n
		for s := 0; s < stride; s++ {
			off := base + s
			for q := 0; q < n; q++ {
				var (
					sum float64
					row = M[q*n : q*n+n]
				)
				for m, mv := range row {
					sum += mv * src[off+m*stride]
				}
				dst[off+q*stride] = sum
			}
		}
	}
}
