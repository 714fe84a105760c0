package RefElement

import (
	"fmt"

	"github.com/notargets/gopoisson/utils"
	"gonum.org/v1/gonum/mat"
)

/*
Tables holds the 1-D operators of a tensor-product hexahedral reference
element [-1,1]^3 of polynomial order Order.

Nodal values live on the Nrp Gauss-Lobatto points R. Integrals are evaluated
on Nrp Gauss points Rq with weights W, exact for polynomials of degree
2*Order+1. All matrices are Nrp x Nrp, row major:

	Q   interpolates nodal values to quadrature points, Q[q*Nrp+n]
	Dg  derivative of the nodal interpolant at the quadrature points
	QT, DgT transposes, used to return quadrature values to the nodes

Tables are built once per order and never modified, so they are shared by
every rank.
*/
type Tables struct {
	Order, Nrp, Npe int
	R               []float64
	Rq, W           []float64
	Q, QT           []float64
	Dg, DgT         []float64
	W3              []float64 // tensor weights W[i]*W[j]*W[k], x fastest
	ElementSize     float64   // length of the reference interval
}

func NewTables(order int) (t *Tables, err error) {
	if order < 1 {
		err = fmt.Errorf("element order must be >= 1, have %d", order)
		return
	}
	var (
		N    = order
		Nrp  = N + 1
		Vinv mat.Dense
	)
	t = &Tables{
		Order:       N,
		Nrp:         Nrp,
		Npe:         Nrp * Nrp * Nrp,
		ElementSize: 2,
	}
	t.R = JacobiGL(0, 0, N)
	t.Rq, t.W = JacobiGQ(0, 0, N)

	V := Vandermonde1D(N, t.R)
	if err = Vinv.Inverse(V); err != nil {
		err = fmt.Errorf("unable to invert Vandermonde matrix of order %d: %w", N, err)
		return
	}
	var Q, Dg mat.Dense
	Q.Mul(Vandermonde1D(N, t.Rq), &Vinv)
	Dg.Mul(GradVandermonde1D(t.Rq, N), &Vinv)

	t.Q, t.QT = rawAndTranspose(&Q)
	t.Dg, t.DgT = rawAndTranspose(&Dg)

	// rows of Q reproduce a constant, rows of Dg annihilate it
	var wsum float64
	for q := 0; q < Nrp; q++ {
		var qsum, dsum float64
		for n := 0; n < Nrp; n++ {
			qsum += t.Q[q*Nrp+n]
			dsum += t.Dg[q*Nrp+n]
		}
		if !utils.Near(qsum, 1) || !utils.Near(dsum, 0) {
			err = fmt.Errorf("order %d interpolation is inaccurate at quadrature point %d", N, q)
			return
		}
		wsum += t.W[q]
	}
	if !utils.Near(wsum, t.ElementSize) {
		err = fmt.Errorf("order %d quadrature weights sum to %g, want %g", N, wsum, t.ElementSize)
		return
	}

	t.W3 = make([]float64, t.Npe)
	for k := 0; k < Nrp; k++ {
		for j := 0; j < Nrp; j++ {
			for i := 0; i < Nrp; i++ {
				t.W3[i+Nrp*(j+Nrp*k)] = t.W[i] * t.W[j] * t.W[k]
			}
		}
	}
	return
}

// CheckOrder panics when the tables were built for another order.
func (t *Tables) CheckOrder(order int) {
	if t.Order != order {
		panic(fmt.Sprintf("element tables are order %d, requested order %d", t.Order, order))
	}
}

func rawAndTranspose(M *mat.Dense) (raw, rawT []float64) {
	nr, nc := M.Dims()
	raw = make([]float64, nr*nc)
	rawT = make([]float64, nr*nc)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			raw[i*nc+j] = M.At(i, j)
			rawT[j*nr+i] = M.At(i, j)
		}
	}
	return
}
