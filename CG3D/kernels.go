package CG3D

import "github.com/notargets/gopoisson/RefElement"

// Workspace is the scratch space of one element evaluation. It is not safe
// for concurrent use.
type Workspace struct {
	a, b, c []float64
}

func NewWorkspace(npe int) *Workspace {
	return &Workspace{
		a: make([]float64, npe),
		b: make([]float64, npe),
		c: make([]float64, npe),
	}
}

/*
Kernel is the elemental bilinear form. Accumulate adds scale times the
element's action on the nodal values in to out, given the per axis Jacobian
J (physical size over reference size). Kernels must be linear in in.
*/
type Kernel interface {
	Accumulate(tb *RefElement.Tables, J [3]float64, in, out []float64, scale float64, ws *Workspace)
}

// Laplace is the stiffness form of -div grad: integral of grad u . grad v.
type Laplace struct{}

func (Laplace) Accumulate(tb *RefElement.Tables, J [3]float64, in, out []float64, scale float64, ws *Workspace) {
	detJ := J[0] * J[1] * J[2]
	for d := 0; d < 3; d++ {
		var fwd, back [3][]float64
		for axis := 0; axis < 3; axis++ {
			if axis == d {
				fwd[axis], back[axis] = tb.Dg, tb.DgT
			} else {
				fwd[axis], back[axis] = tb.Q, tb.QT
			}
		}
		weightedProjection(tb, fwd, back, scale*detJ/(J[d]*J[d]), in, out, ws)
	}
}

// Mass is the integral of u v, also used to build load vectors.
type Mass struct{}

func (Mass) Accumulate(tb *RefElement.Tables, J [3]float64, in, out []float64, scale float64, ws *Workspace) {
	var (
		fwd  = [3][]float64{tb.Q, tb.Q, tb.Q}
		back = [3][]float64{tb.QT, tb.QT, tb.QT}
	)
	weightedProjection(tb, fwd, back, scale*J[0]*J[1]*J[2], in, out, ws)
}

// Helmholtz is the shifted operator -div grad + K.
type Helmholtz struct {
	K float64
}

func (h Helmholtz) Accumulate(tb *RefElement.Tables, J [3]float64, in, out []float64, scale float64, ws *Workspace) {
	Laplace{}.Accumulate(tb, J, in, out, scale, ws)
	Mass{}.Accumulate(tb, J, in, out, scale*h.K, ws)
}

// weightedProjection adds B^T diag(fac*W3) F in to out, where F and B are
// the tensor products of the 1-D operators in fwd and back.
func weightedProjection(tb *RefElement.Tables, fwd, back [3][]float64, fac float64, in, out []float64, ws *Workspace) {
	n := tb.Nrp
	contract(0, fwd[0], in, ws.a, n)
	contract(1, fwd[1], ws.a, ws.b, n)
	contract(2, fwd[2], ws.b, ws.a, n)
	for i, w := range tb.W3 {
		ws.a[i] *= fac * w
	}
	contract(0, back[0], ws.a, ws.b, n)
	contract(1, back[1], ws.b, ws.c, n)
	contract(2, back[2], ws.c, ws.b, n)
	for i, v := range ws.b {
		out[i] += v
	}
}
