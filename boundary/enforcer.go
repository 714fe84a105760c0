package boundary

import (
	"github.com/notargets/gopoisson/geometry"
	"github.com/notargets/gopoisson/mesh"
)

/*
Enforcer realizes Dirichlet rows of an operator as identity rows. The set of
constrained local DOFs, and the prescribed value at each, is computed once
from the mesh boundary nodes and the face conditions.
*/
type Enforcer struct {
	indices []int
	values  []float64
}

func NewEnforcer(m mesh.Mesh, mapper *geometry.Mapper, conds Conditions) (be *Enforcer) {
	be = &Enforcer{}
	for _, bn := range m.BoundaryNodes() {
		p := conds.Policy(bn.Faces)
		if p == nil {
			continue
		}
		be.indices = append(be.indices, bn.Index)
		be.values = append(be.values, p.ValueAt(mapper.PointToPhysical(bn.Grid)))
	}
	return
}

// Indices is the boundary index set, ghost DOFs included.
func (be *Enforcer) Indices() []int { return be.indices }

// Enforce copies in into out on the boundary index set.
func (be *Enforcer) Enforce(in, out []float64) {
	for _, i := range be.indices {
		out[i] = in[i]
	}
}

func (be *Enforcer) PreApply(in, out []float64)  { be.Enforce(in, out) }
func (be *Enforcer) PostApply(in, out []float64) { be.Enforce(in, out) }

// ImposeValues sets the prescribed boundary values into v.
func (be *Enforcer) ImposeValues(v []float64) {
	for n, i := range be.indices {
		v[i] = be.values[n]
	}
}
