package Poisson3D

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/notargets/gopoisson/InputParameters"
	"github.com/notargets/gopoisson/solver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(problem string, processes int) (cfg InputParameters.Config) {
	cfg = InputParameters.Defaults()
	cfg.Problem = problem
	cfg.MaxDepth = 4
	cfg.MeshLevel = 2
	cfg.ElementOrder = 2
	cfg.SolveTol = 1.e-6
	cfg.SolveMaxIters = 100
	cfg.Processes = processes
	return
}

func solve(t *testing.T, cfg InputParameters.Config, metrics *solver.Metrics) *Summary {
	c, err := NewPoisson3D(cfg, metrics)
	require.NoError(t, err)
	s, err := c.Solve()
	require.NoError(t, err)
	return s
}

func TestParabolicX(t *testing.T) {
	s := solve(t, smallConfig("ParabolicX", 1), nil)
	assert.Equal(t, solver.Converged, s.Result.Status)
	assert.LessOrEqual(t, s.Result.Tolerance, 1.e-6)
	assert.Less(t, s.MaxError, 1.e-3)
	// sample interior nodes against x(1-x)
	NN := s.NodesPerAxis
	for _, ijk := range [][3]int{{4, 4, 4}, {2, 1, 7}, {6, 8, 0}, {1, 3, 5}} {
		x := float64(ijk[0]) / float64(NN-1)
		u := s.Solution[ijk[0]+NN*(ijk[1]+NN*ijk[2])]
		assert.InDelta(t, x*(1-x), u, 1.e-3, "node %v", ijk)
	}
}

// A grid of depth 4 refined to level 3, where the adaptive octree settles
// for a constant source, with order 2 elements.
func TestParabolicXDepthFour(t *testing.T) {
	cfg := smallConfig("ParabolicX", 3)
	cfg.MeshLevel = 3
	s := solve(t, cfg, nil)
	assert.Equal(t, solver.Converged, s.Result.Status)
	assert.LessOrEqual(t, s.Result.Iterations, 100)
	assert.Less(t, s.MaxError, 1.e-3)
	NN := s.NodesPerAxis
	require.Equal(t, 17, NN)
	for _, ijk := range [][3]int{{8, 8, 8}, {4, 2, 14}, {12, 16, 0}, {1, 3, 5}} {
		x := float64(ijk[0]) / float64(NN-1)
		u := s.Solution[ijk[0]+NN*(ijk[1]+NN*ijk[2])]
		assert.InDelta(t, x*(1-x), u, 1.e-3, "node %v", ijk)
	}
	{ // the default input converges within its own iteration limit
		cfg := InputParameters.Defaults()
		cfg.Processes = 2
		s := solve(t, cfg, nil)
		assert.Equal(t, solver.Converged, s.Result.Status)
		assert.Less(t, s.MaxError, 1.e-3)
	}
}

func TestRankCountIndependence(t *testing.T) {
	config := func(np int) (cfg InputParameters.Config) {
		cfg = smallConfig("SineProduct", np)
		cfg.SolveTol = 1.e-12
		return
	}
	ref := solve(t, config(1), nil)
	require.Equal(t, solver.Converged, ref.Result.Status)
	assert.Less(t, ref.MaxError, 0.1)
	// 6 ranks for 4 element layers leaves two ranks inactive
	for _, np := range []int{2, 3, 6} {
		s := solve(t, config(np), nil)
		assert.Equal(t, ref.Result.Status, s.Result.Status)
		assert.Equal(t, min(np, 4), s.ActiveRanks)
		assert.InDeltaSlice(t, ref.Solution, s.Solution, 1.e-8, "np=%d", np)
		assert.InDelta(t, ref.MaxError, s.MaxError, 1.e-8)
	}
}

func TestLinearLifting(t *testing.T) {
	cfg := smallConfig("Linear", 3)
	cfg.SolveMaxIters = 400
	cfg.SolveTol = 1.e-12
	s := solve(t, cfg, nil)
	assert.Equal(t, solver.Converged, s.Result.Status)
	assert.Less(t, s.MaxError, 1.e-6)
}

func TestZeroProblem(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := solver.NewMetrics(reg)
	s := solve(t, smallConfig("Zero", 2), metrics)
	assert.Equal(t, solver.Converged, s.Result.Status)
	assert.Equal(t, 0, s.Result.Iterations)
	assert.Equal(t, 0., s.MaxError)
	for _, u := range s.Solution {
		assert.Equal(t, 0., u)
	}
	assert.Equal(t, 1., testutil.ToFloat64(metrics.Solves.WithLabelValues("u", "converged")))
	assert.Equal(t, 1., testutil.ToFloat64(metrics.OperatorApplies))
}

func TestSetupErrors(t *testing.T) {
	_, err := NewPoisson3D(smallConfig("Helmholtz", 1), nil)
	assert.Error(t, err)
	cfg := smallConfig("Zero", 1)
	cfg.MeshLevel = 5
	_, err = NewPoisson3D(cfg, nil)
	assert.Error(t, err)

	p, err := NewProblem("parabolicx")
	require.NoError(t, err)
	assert.Equal(t, "ParabolicX", p.Name())
	assert.Equal(t, []string{"Linear", "ParabolicX", "SineProduct", "Zero"}, ProblemNames())
}

func TestRankWrapper(t *testing.T) {
	var (
		mu    sync.Mutex
		ranks []int
	)
	c, err := NewPoisson3D(smallConfig("ParabolicX", 3), nil)
	require.NoError(t, err)
	c.RankWrapper = func(rank int, body func() error) error {
		mu.Lock()
		ranks = append(ranks, rank)
		mu.Unlock()
		return body()
	}
	s, err := c.Solve()
	require.NoError(t, err)
	assert.Equal(t, solver.Converged, s.Result.Status)
	sort.Ints(ranks)
	assert.Equal(t, []int{0, 1, 2}, ranks)

	c.RankWrapper = func(rank int, body func() error) error {
		if err := body(); err != nil {
			return err
		}
		if rank == 1 {
			return errors.New("counter failed")
		}
		return nil
	}
	_, err = c.Solve()
	assert.ErrorContains(t, err, "rank 1: counter failed")
}
