// Package CG3D evaluates continuous Galerkin operators on tensor product
// hexahedra without assembling a global matrix.
package CG3D

import (
	"fmt"

	"github.com/notargets/gopoisson/RefElement"
	"github.com/notargets/gopoisson/geometry"
)

type ElementOperator struct {
	Tables *RefElement.Tables
	Mapper *geometry.Mapper
	Kernel Kernel
	ws     *Workspace
}

func NewElementOperator(tb *RefElement.Tables, mapper *geometry.Mapper, kernel Kernel) *ElementOperator {
	return &ElementOperator{
		Tables: tb,
		Mapper: mapper,
		Kernel: kernel,
		ws:     NewWorkspace(tb.Npe),
	}
}

// Jacobian returns physical size over reference size along each axis for
// the element spanning the grid corners. Degenerate elements panic.
func (op *ElementOperator) Jacobian(corners [2][3]float64) (J [3]float64) {
	for axis := 0; axis < 3; axis++ {
		size := op.Mapper.Size(axis, corners[0][axis], corners[1][axis])
		if !(size > 0) {
			panic(fmt.Sprintf("element %v has non-positive size %g along axis %d", corners, size, axis))
		}
		J[axis] = size / op.Tables.ElementSize
	}
	return
}

// ApplyLocal overwrites out with scale times the element operator applied to
// in. Both buffers hold Npe nodal values, x fastest.
func (op *ElementOperator) ApplyLocal(in, out []float64, corners [2][3]float64, scale float64) {
	npe := op.Tables.Npe
	if len(in) != npe || len(out) != npe {
		panic(fmt.Sprintf("element buffers have length %d and %d, need %d", len(in), len(out), npe))
	}
	J := op.Jacobian(corners)
	for i := range out {
		out[i] = 0
	}
	op.Kernel.Accumulate(op.Tables, J, in, out, scale, op.ws)
}
