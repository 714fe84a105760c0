package solver

import (
	"math"

	"github.com/notargets/gopoisson/parallel"
	"gonum.org/v1/gonum/floats"
)

/*
Reduction computes global scalars over the active ranks. Every reduced value
is broadcast from active rank 0 before it is returned, so all active ranks
branch on the same number. Only the first LocalDofs entries of a vector,
the owned DOFs, take part.
*/
type Reduction struct {
	active, global parallel.Comm
	LocalDofs      int
}

// NewReduction takes the active comm, nil on an inactive rank, and the comm
// of all ranks.
func NewReduction(active, global parallel.Comm, localDofs int) *Reduction {
	return &Reduction{active: active, global: global, LocalDofs: localDofs}
}

func (rd *Reduction) IsActive() bool { return rd.active != nil }

func (rd *Reduction) ActiveRank() int {
	if rd.active == nil {
		return -1
	}
	return rd.active.Rank()
}

func (rd *Reduction) GlobalInfNorm(v []float64) float64 {
	var local float64
	if rd.LocalDofs > 0 {
		local = floats.Norm(v[:rd.LocalDofs], math.Inf(1))
	}
	return rd.BroadcastScalar(rd.active.AllReduce(local, parallel.Max), 0)
}

func (rd *Reduction) GlobalDot(a, b []float64) float64 {
	var local float64
	if rd.LocalDofs > 0 {
		local = floats.Dot(a[:rd.LocalDofs], b[:rd.LocalDofs])
	}
	return rd.BroadcastScalar(rd.active.AllReduce(local, parallel.Sum), 0)
}

func (rd *Reduction) BroadcastScalar(v float64, root int) float64 {
	return rd.active.Bcast(v, root)
}

// GlobalBarrierBroadcast broadcasts over active and inactive ranks alike.
func (rd *Reduction) GlobalBarrierBroadcast(v float64, root int) float64 {
	return rd.global.Bcast(v, root)
}
