package Poisson3D

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/notargets/gopoisson/CG3D"
	"github.com/notargets/gopoisson/InputParameters"
	"github.com/notargets/gopoisson/RefElement"
	"github.com/notargets/gopoisson/boundary"
	"github.com/notargets/gopoisson/geometry"
	"github.com/notargets/gopoisson/mesh"
	"github.com/notargets/gopoisson/parallel"
	"github.com/notargets/gopoisson/solver"
	"k8s.io/klog/v2"
)

const fieldName = "u"

/*
Poisson3D solves -div grad u = f on a box with the continuous Galerkin
discretization of a uniform octree level. Each rank of the process group
builds its own slab of the mesh; the element tables and coordinate map are
shared read-only.
*/
type Poisson3D struct {
	Config  InputParameters.Config
	Problem Problem
	Tables  *RefElement.Tables
	Mapper  *geometry.Mapper
	Metrics *solver.Metrics // optional

	// RankWrapper, when set, runs each rank's share of Solve on that rank's
	// goroutine. It must call body exactly once.
	RankWrapper func(rank int, body func() error) error
}

type Summary struct {
	Result          solver.Result
	MaxError        float64   // max nodal error against the exact solution
	Solution        []float64 // global node order, x fastest
	NodesPerAxis    int
	ActiveRanks     int
	OperatorApplies int
	Elapsed         time.Duration
}

func NewPoisson3D(cfg InputParameters.Config, metrics *solver.Metrics) (c *Poisson3D, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	c = &Poisson3D{Config: cfg, Metrics: metrics}
	if c.Problem, err = NewProblem(cfg.Problem); err != nil {
		return
	}
	if c.Tables, err = RefElement.NewTables(cfg.ElementOrder); err != nil {
		return
	}
	c.Tables.CheckOrder(cfg.ElementOrder)
	c.Mapper = geometry.NewMapper(uint(cfg.MaxDepth), cfg.DomainMin, cfg.DomainMax)
	return
}

// Solve runs the solver on Config.Processes ranks and collects the result.
func (c *Poisson3D) Solve() (s *Summary, err error) {
	var (
		cfg   = c.Config
		NN    = (1<<cfg.MeshLevel)*cfg.ElementOrder + 1
		mu    sync.Mutex
		start = time.Now()
	)
	s = &Summary{
		NodesPerAxis: NN,
		Solution:     make([]float64, NN*NN*NN),
	}
	err = parallel.NewWorld(cfg.Processes).Run(func(p *parallel.Process) error {
		body := func() error { return c.solveRank(p, s, &mu) }
		if c.RankWrapper != nil {
			return c.RankWrapper(p.Rank, body)
		}
		return body()
	})
	s.Elapsed = time.Since(start)
	return
}

func (c *Poisson3D) solveRank(p *parallel.Process, s *Summary, mu *sync.Mutex) (err error) {
	var (
		cfg = c.Config
		m   *mesh.StructuredMesh
	)
	if m, err = mesh.NewStructuredMesh(cfg.MeshLevel, cfg.MaxDepth, cfg.ElementOrder, p.World); err != nil {
		return
	}
	if p.Rank == 0 {
		klog.V(1).Infof("%s: %d^3 elements of order %d on %d of %d ranks, %d global DOFs",
			c.Problem.Name(), m.NE, cfg.ElementOrder, m.ActiveSize(), p.Size, m.GlobalDofCount())
	}
	var (
		be        = boundary.NewEnforcer(m, c.Mapper, c.Problem.Conditions())
		stiffness = CG3D.NewMatVec(m, CG3D.NewElementOperator(c.Tables, c.Mapper, CG3D.Laplace{}), be)
		mass      = CG3D.NewMatVec(m, CG3D.NewElementOperator(c.Tables, c.Mapper, CG3D.Mass{}), be)
		red       = solver.NewReduction(m.ActiveComm(), m.GlobalComm(), m.LocalDofCount())
		fields    = mesh.NewFields(m)
	)
	for _, name := range []string{fieldName, "f", "rhs", "error"} {
		if _, err = fields.Add(name); err != nil {
			return
		}
	}
	var (
		u   = fields.MustGet(fieldName)
		f   = fields.MustGet("f")
		rhs = fields.MustGet("rhs")
		e   = fields.MustGet("error")
	)
	// boundary values are lifted into the initial guess so the residual
	// vanishes on constrained DOFs
	be.ImposeValues(u)
	mesh.SetVectorByFunction(m, f, c.Mapper, c.Problem.Source)
	if m.IsActive() {
		mass.ComputeVector(f, rhs)
	}

	res := solver.NewCG(stiffness, m, red, c.Metrics).Solve(u, rhs, cfg.SolveMaxIters, cfg.SolveTol, fieldName)

	var maxErr float64
	if m.IsActive() {
		mesh.SetVectorByFunction(m, e, c.Mapper, c.Problem.Exact)
		for i := 0; i < m.LocalDofCount(); i++ {
			e[i] = math.Abs(e[i] - u[i])
		}
		maxErr = red.GlobalInfNorm(e)
	}
	maxErr = red.GlobalBarrierBroadcast(maxErr, 0)

	mu.Lock()
	for i := 0; i < m.LocalDofCount(); i++ {
		s.Solution[m.GlobalNodeIndex(i)] = u[i]
	}
	if p.Rank == 0 {
		s.Result = res
		s.MaxError = maxErr
		s.ActiveRanks = m.ActiveSize()
		s.OperatorApplies = stiffness.Applies
	}
	mu.Unlock()

	fields.Release()
	if m.Created != m.Destroyed {
		err = fmt.Errorf("%d DOF vectors were not released", m.Created-m.Destroyed)
	}
	return
}

func (c *Poisson3D) PrintInitialization() {
	NE := 1 << c.Config.MeshLevel
	fmt.Printf("Poisson Equation in 3 Dimensions\n")
	fmt.Printf("Using %d go routines in parallel\n", c.Config.Processes)
	fmt.Printf("Solving %s\n", c.Problem.Name())
	fmt.Printf("Polynomial Degree N = %d (1 is linear), Elements = %d^3, Max Depth = %d\n",
		c.Config.ElementOrder, NE, c.Config.MaxDepth)
	fmt.Printf("Domain = %v - %v\n\n", c.Mapper.DomainMin(), c.Mapper.DomainMax())
}

func (c *Poisson3D) PrintFinal(s *Summary) {
	fmt.Printf("Status = %s after %d iterations, relative residual = %10.3e\n",
		s.Result.Status, s.Result.Iterations, s.Result.Tolerance)
	fmt.Printf("Max nodal error = %10.3e on %d active ranks\n", s.MaxError, s.ActiveRanks)
	dofs := s.NodesPerAxis * s.NodesPerAxis * s.NodesPerAxis
	if applies := s.OperatorApplies; applies > 0 {
		rate := float64(s.Elapsed.Microseconds()) / float64(dofs*applies)
		fmt.Printf("Rate of execution = %8.5f us/(DOF*operator application) over %d applications\n", rate, applies)
	}
}
