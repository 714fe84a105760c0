package CG3D

import (
	"math"

	"github.com/james-bowman/sparse"
)

// AssembleElementMatrix builds the element matrix column by column from the
// action of the operator on unit vectors.
func AssembleElementMatrix(op *ElementOperator, corners [2][3]float64) *sparse.CSR {
	var (
		npe     = op.Tables.Npe
		Tmp     = sparse.NewDOK(npe, npe)
		in, out = make([]float64, npe), make([]float64, npe)
	)
	for j := 0; j < npe; j++ {
		in[j] = 1
		op.ApplyLocal(in, out, corners, 1)
		for i, v := range out {
			if v != 0 {
				Tmp.Set(i, j, v)
			}
		}
		in[j] = 0
	}
	return Tmp.ToCSR()
}

// Asymmetry is the largest |A(i,j) - A(j,i)| relative to the largest entry.
func Asymmetry(A *sparse.CSR) (asym float64) {
	var amax float64
	A.DoNonZero(func(i, j int, v float64) {
		amax = math.Max(amax, math.Abs(v))
		asym = math.Max(asym, math.Abs(v-A.At(j, i)))
	})
	if amax > 0 {
		asym /= amax
	}
	return
}

// RowSums returns A times the vector of ones.
func RowSums(A *sparse.CSR) (sums []float64) {
	nr, _ := A.Dims()
	sums = make([]float64, nr)
	A.DoNonZero(func(i, j int, v float64) {
		sums[i] += v
	})
	return
}
