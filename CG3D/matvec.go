package CG3D

import (
	"github.com/notargets/gopoisson/boundary"
	"github.com/notargets/gopoisson/mesh"
)

/*
MatVec applies an element operator to a distributed DOF vector as a three
stage pipeline:

	PreApply   boundary entries of in are copied to the zeroed out
	Kernel     ghost refresh of in, element loop with gather and scatter-add,
	           ghost contributions added into their owners, ghost refresh of out
	PostApply  boundary entries of in are copied to out again

so constrained DOFs pass through as identity rows.
*/
type MatVec struct {
	Mesh     mesh.Mesh
	Op       *ElementOperator
	Enforcer *boundary.Enforcer
	Scale    float64

	idx             []int
	elemIn, elemOut []float64
	Applies         int // number of operator applications
}

func NewMatVec(m mesh.Mesh, op *ElementOperator, be *boundary.Enforcer) *MatVec {
	npe := m.NodesPerElement()
	if npe != op.Tables.Npe {
		panic("mesh and element tables disagree on nodes per element")
	}
	return &MatVec{
		Mesh:     m,
		Op:       op,
		Enforcer: be,
		Scale:    1,
		idx:      make([]int, npe),
		elemIn:   make([]float64, npe),
		elemOut:  make([]float64, npe),
	}
}

func (mv *MatVec) PreApply(in, out []float64) {
	if mv.Enforcer != nil {
		mv.Enforcer.PreApply(in, out)
	}
}

func (mv *MatVec) PostApply(in, out []float64) {
	if mv.Enforcer != nil {
		mv.Enforcer.PostApply(in, out)
	}
}

// Kernel adds every local element's contribution into out. It is
// collective over the active ranks through the ghost exchange.
func (mv *MatVec) Kernel(in, out []float64) {
	m := mv.Mesh
	m.SyncGhosts(in)
	for e := 0; e < m.NumElements(); e++ {
		m.ElementNodes(e, mv.idx)
		for n, i := range mv.idx {
			mv.elemIn[n] = in[i]
		}
		mv.Op.ApplyLocal(mv.elemIn, mv.elemOut, m.ElementCorners(e), mv.Scale)
		for n, i := range mv.idx {
			out[i] += mv.elemOut[n]
		}
	}
	m.AccumulateGhosts(out)
	m.SyncGhosts(out)
}

// Apply computes out = A in with identity rows at the boundary DOFs.
func (mv *MatVec) Apply(in, out []float64) {
	mv.Applies++
	for i := range out {
		out[i] = 0
	}
	mv.PreApply(in, out)
	mv.Kernel(in, out)
	mv.PostApply(in, out)
}

// ComputeVector builds a load vector from nodal values in: boundary entries
// of out hold the prescribed values, the rest the operator's action on in.
func (mv *MatVec) ComputeVector(in, out []float64) {
	for i := range out {
		out[i] = 0
	}
	mv.imposeValues(out)
	mv.Kernel(in, out)
	mv.imposeValues(out)
}

func (mv *MatVec) imposeValues(v []float64) {
	if mv.Enforcer != nil {
		mv.Enforcer.ImposeValues(v)
	}
}
