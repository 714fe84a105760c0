package CG3D

import (
	"math/rand"
	"testing"

	"github.com/notargets/gopoisson/RefElement"
	"github.com/notargets/gopoisson/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestContract(t *testing.T) {
	n := 3
	M := []float64{
		1, 2, 0,
		0, 1, -1,
		4, 0, 1,
	}
	src := make([]float64, n*n*n)
	for i := range src {
		src[i] = float64(i*i%7) - 2
	}
	dst := make([]float64, n*n*n)
	for axis := 0; axis < 3; axis++ {
		contract(axis, M, src, dst, n)
		for k := 0; k < n; k++ {
			for j := 0; j < n; j++ {
				for i := 0; i < n; i++ {
					ijk := [3]int{i, j, k}
					var exp float64
					for m := 0; m < n; m++ {
						s := ijk
						s[axis] = m
						exp += M[ijk[axis]*n+m] * src[s[0]+n*(s[1]+n*s[2])]
					}
					assert.Equal(t, exp, dst[i+n*(j+n*k)], "axis %d", axis)
				}
			}
		}
	}
}

func unitBoxOperator(t *testing.T, order int, kernel Kernel) *ElementOperator {
	tb, err := RefElement.NewTables(order)
	require.NoError(t, err)
	mapper := geometry.NewMapper(3, [3]float64{0, 0, 0}, [3]float64{1, 2, 4})
	return NewElementOperator(tb, mapper, kernel)
}

var someElement = [2][3]float64{{2, 4, 0}, {4, 6, 2}} // 0.25 x 0.5 x 1

func TestJacobian(t *testing.T) {
	op := unitBoxOperator(t, 2, Laplace{})
	assert.Equal(t, [3]float64{0.125, 0.25, 0.5}, op.Jacobian(someElement))
	assert.Panics(t, func() { op.Jacobian([2][3]float64{{2, 4, 0}, {2, 6, 2}}) })
	assert.Panics(t, func() { op.Jacobian([2][3]float64{{2, 4, 2}, {4, 6, 0}}) })
	assert.Panics(t, func() { op.ApplyLocal(make([]float64, 8), make([]float64, 27), someElement, 1) })
}

func TestApplyLocalLinearity(t *testing.T) {
	for _, kernel := range []Kernel{Laplace{}, Mass{}, Helmholtz{K: 3}} {
		var (
			op         = unitBoxOperator(t, 3, kernel)
			npe        = op.Tables.Npe
			u, v, w    = make([]float64, npe), make([]float64, npe), make([]float64, npe)
			Au, Av, Aw = make([]float64, npe), make([]float64, npe), make([]float64, npe)
			a, b       = 1.7, -0.3
		)
		for i := range u {
			u[i], v[i] = rand.NormFloat64(), rand.NormFloat64()
			w[i] = a*u[i] + b*v[i]
		}
		op.ApplyLocal(u, Au, someElement, 1)
		op.ApplyLocal(v, Av, someElement, 1)
		op.ApplyLocal(w, Aw, someElement, 1)
		for i := range Aw {
			assert.InDelta(t, a*Au[i]+b*Av[i], Aw[i], 1.e-10)
		}
		// scale multiplies, and out is overwritten
		op.ApplyLocal(u, Aw, someElement, 2)
		for i := range Aw {
			assert.InDelta(t, 2*Au[i], Aw[i], 1.e-10)
		}
	}
}

func symmetricEigenvalues(t *testing.T, op *ElementOperator) (vals []float64) {
	A := AssembleElementMatrix(op, someElement)
	assert.Less(t, Asymmetry(A), 1.e-12)
	n := op.Tables.Npe
	S := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			S.SetSym(i, j, 0.5*(A.At(i, j)+A.At(j, i)))
		}
	}
	var eig mat.EigenSym
	require.True(t, eig.Factorize(S, false))
	return eig.Values(nil)
}

func TestLaplaceElementMatrix(t *testing.T) {
	for order := 1; order <= 4; order++ {
		op := unitBoxOperator(t, order, Laplace{})
		// constants are in the null space
		for _, s := range RowSums(AssembleElementMatrix(op, someElement)) {
			assert.InDelta(t, 0, s, 1.e-11)
		}
		vals := symmetricEigenvalues(t, op)
		// one zero eigenvalue for the constants, the rest positive
		assert.InDelta(t, 0, vals[0], 1.e-10)
		assert.Greater(t, vals[1], 1.e-6)
	}
}

func TestMassElementMatrix(t *testing.T) {
	for order := 1; order <= 4; order++ {
		op := unitBoxOperator(t, order, Mass{})
		var total float64
		for _, s := range RowSums(AssembleElementMatrix(op, someElement)) {
			total += s
		}
		assert.InDelta(t, 0.25*0.5*1, total, 1.e-12)
		vals := symmetricEigenvalues(t, op)
		assert.Greater(t, vals[0], 0.)
	}
}

func TestLaplaceOfQuadratic(t *testing.T) {
	// u = x^2 is in the element space, so a(u, 1) = 0 and a(u, x) is the
	// integral of 2x over the element.
	op := unitBoxOperator(t, 2, Laplace{})
	var (
		tb  = op.Tables
		n   = tb.Nrp
		u   = make([]float64, tb.Npe)
		out = make([]float64, tb.Npe)
	)
	x0, x1 := 0.25, 0.5
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				x := x0 + (tb.R[i]+1)/2*(x1-x0)
				u[i+n*(j+n*k)] = x * x
			}
		}
	}
	op.ApplyLocal(u, out, someElement, 1)
	var sum float64
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1.e-12)
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				sum += out[i+n*(j+n*k)] * (x0 + (tb.R[i]+1)/2*(x1-x0))
			}
		}
	}
	area := 0.5 * 1.
	assert.InDelta(t, (x1*x1-x0*x0)*area, sum, 1.e-12)
}

func TestHelmholtzIsLaplacePlusMass(t *testing.T) {
	var (
		K     = 2.5
		L     = AssembleElementMatrix(unitBoxOperator(t, 2, Laplace{}), someElement)
		M     = AssembleElementMatrix(unitBoxOperator(t, 2, Mass{}), someElement)
		H     = AssembleElementMatrix(unitBoxOperator(t, 2, Helmholtz{K: K}), someElement)
		nr, _ = H.Dims()
	)
	for i := 0; i < nr; i++ {
		for j := 0; j < nr; j++ {
			assert.InDelta(t, L.At(i, j)+K*M.At(i, j), H.At(i, j), 1.e-12)
		}
	}
}
