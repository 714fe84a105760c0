// Package solver holds the distributed conjugate gradient solver and the
// global reductions it is built on.
package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

type Status int

const (
	Converged Status = iota
	Exhausted
	Breakdown
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Breakdown:
		return "breakdown"
	}
	return "unknown"
}

// Operator applies the global operator, boundary rows included. It is
// collective over the active ranks.
type Operator interface {
	Apply(in, out []float64)
}

// VectorSpace hands out zeroed DOF vectors. Only the first LocalDofCount
// entries are owned by this rank.
type VectorSpace interface {
	LocalDofCount() int
	CreateVector() []float64
	DestroyVector(v []float64)
}

type Reducer interface {
	IsActive() bool
	ActiveRank() int
	GlobalInfNorm(v []float64) float64
	GlobalDot(a, b []float64) float64
	BroadcastScalar(v float64, root int) float64
	GlobalBarrierBroadcast(v float64, root int) float64
}

type Result struct {
	Status     Status
	Tolerance  float64 // achieved relative residual
	Iterations int
}

type CG struct {
	Op      Operator
	Space   VectorSpace
	Red     Reducer
	Metrics *Metrics // optional
}

func NewCG(op Operator, space VectorSpace, red Reducer, metrics *Metrics) *CG {
	return &CG{Op: op, Space: space, Red: red, Metrics: metrics}
}

/*
Solve runs unpreconditioned CG on A x = b, starting from and updating x. The
stopping test is on the inf-norm residual relative to the inf-norm of b, or
to 1 when b is zero.

Solve is collective over all ranks. Inactive ranks only join the final
broadcast of the result, so every rank returns the same Result.
*/
func (cg *CG) Solve(x, b []float64, maxIterations int, tolerance float64, field string) (res Result) {
	res = Result{Status: Exhausted, Tolerance: tolerance}
	if cg.Red.IsActive() {
		var applies int
		res, applies = cg.iterate(x, b, maxIterations, tolerance, field)
		if cg.Red.ActiveRank() == 0 {
			cg.Metrics.observe(field, res, applies)
		}
	}
	res.Tolerance = cg.Red.GlobalBarrierBroadcast(res.Tolerance, 0)
	res.Status = Status(cg.Red.GlobalBarrierBroadcast(float64(res.Status), 0))
	res.Iterations = int(cg.Red.GlobalBarrierBroadcast(float64(res.Iterations), 0))
	return
}

func (cg *CG) iterate(x, b []float64, maxIterations int, tolerance float64, field string) (res Result, applies int) {
	var (
		sp      = cg.Space
		rd      = cg.Red
		n       = sp.LocalDofCount()
		verbose = rd.ActiveRank() == 0
	)
	var (
		p, Ax, Ap = sp.CreateVector(), sp.CreateVector(), sp.CreateVector()
		r0, r1    = sp.CreateVector(), sp.CreateVector()
	)
	defer func() {
		for _, v := range [][]float64{p, Ax, Ap, r0, r1} {
			sp.DestroyVector(v)
		}
	}()
	apply := func(in, out []float64) {
		cg.Op.Apply(in, out)
		applies++
	}

	normb := rd.GlobalInfNorm(b)
	if normb == 0 {
		normb = 1
	}
	if verbose {
		klog.V(1).Infof("cg[%s]: normb = %g", field, normb)
	}
	apply(x, Ax)
	floats.SubTo(r0[:n], b[:n], Ax[:n])
	copy(p[:n], r0[:n])

	residual := rd.GlobalInfNorm(r0) / normb
	res = Result{Status: Exhausted, Tolerance: residual}
	if verbose {
		klog.V(1).Infof("cg[%s]: initial residual %g", field, residual)
	}
	if residual <= tolerance {
		res.Status = Converged
		return
	}

	rho := rd.GlobalDot(r0, r0)
	for i := 1; i <= maxIterations; i++ {
		apply(p, Ap)
		pAp := rd.GlobalDot(p, Ap)
		if pAp == 0 || !isFinite(pAp) {
			res.Status = Breakdown
			break
		}
		alpha := rd.BroadcastScalar(rho/pAp, 0)
		floats.AddScaled(x[:n], alpha, p[:n])
		floats.AddScaledTo(r1[:n], r0[:n], -alpha, Ap[:n])

		residual = rd.GlobalInfNorm(r1) / normb
		res.Tolerance, res.Iterations = residual, i
		if verbose && i%10 == 0 {
			klog.V(1).Infof("cg[%s]: iteration %d residual %g", field, i, residual)
		}
		if residual <= tolerance {
			res.Status = Converged
			break
		}

		rhoPrev := rho
		rho = rd.GlobalDot(r1, r1)
		if rhoPrev == 0 || !isFinite(rho) {
			res.Status = Breakdown
			break
		}
		beta := rd.BroadcastScalar(rho/rhoPrev, 0)
		floats.Scale(beta, p[:n])
		floats.Add(p[:n], r1[:n])
		copy(r0[:n], r1[:n])
	}
	if verbose {
		klog.V(1).Infof("cg[%s]: %s after %d iterations, residual %g", field, res.Status, res.Iterations, res.Tolerance)
	}
	return
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
