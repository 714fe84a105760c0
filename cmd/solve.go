/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/notargets/gopoisson/CG3D"
	"github.com/notargets/gopoisson/InputParameters"
	"github.com/notargets/gopoisson/model_problems/Poisson3D"
	"github.com/notargets/gopoisson/solver"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

type SolveOptions struct {
	ICFile        string
	Processes     int // overrides the input file when > 0
	Profile       string
	PerfCounters  bool
	PrintSolution bool
	CheckOperator bool
	MetricsFile   string
}

const exampleFile = `
########################################
Title: "Test Case"
Problem: ParabolicX # ParabolicX, SineProduct, Linear or Zero
MaxDepth: 4
MeshLevel: 2
ElementOrder: 2
SolveTol: 1.e-6
SolveMaxIters: 100
Processes: 4
########################################
`

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a manufactured Poisson problem with distributed matrix free CG",
	Long: `Solve a manufactured Poisson problem with distributed matrix free CG.
Parameters not given in the input file take their default values.` + "\nExample File:" + exampleFile,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err  error
			opts = &SolveOptions{}
		)
		if opts.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		opts.Processes = viper.GetInt("solve.processes")
		opts.Profile, _ = cmd.Flags().GetString("profile")
		opts.PerfCounters, _ = cmd.Flags().GetBool("perfCounters")
		opts.PrintSolution, _ = cmd.Flags().GetBool("printSolution")
		opts.CheckOperator, _ = cmd.Flags().GetBool("checkOperator")
		opts.MetricsFile, _ = cmd.Flags().GetString("metricsFile")
		if err = RunSolve(opts); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- MaxDepth\n\t- ElementOrder\n\t- SolveTol")
	SolveCmd.Flags().IntP("processes", "n", 0, "number of parallel ranks, overrides Processes from the input file")
	SolveCmd.Flags().String("profile", "", "write a profile of the solve to the current directory: cpu or mem")
	SolveCmd.Flags().Bool("perfCounters", false, "count CPU instructions of the solve with hardware counters (linux)")
	SolveCmd.Flags().Bool("printSolution", false, "print the solution along the x centerline")
	SolveCmd.Flags().Bool("checkOperator", false, "assemble one element matrix and report its symmetry")
	SolveCmd.Flags().String("metricsFile", "", "write solver metrics in prometheus text format to this file")
	if err := viper.BindPFlag("solve.processes", SolveCmd.Flags().Lookup("processes")); err != nil {
		panic(err)
	}
}

func processInput(opts *SolveOptions) (cfg InputParameters.Config, err error) {
	cfg = InputParameters.Defaults()
	if len(opts.ICFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(opts.ICFile); err != nil {
			return
		}
		if err = cfg.Parse(data); err != nil {
			err = fmt.Errorf("unable to parse %s: %w", opts.ICFile, err)
			return
		}
	}
	if opts.Processes > 0 {
		cfg.Processes = opts.Processes
	}
	err = cfg.Validate()
	return
}

func RunSolve(opts *SolveOptions) (err error) {
	var cfg InputParameters.Config
	if cfg, err = processInput(opts); err != nil {
		return
	}
	cfg.Print()
	var (
		registry = prometheus.NewRegistry()
		c        *Poisson3D.Poisson3D
		s        *Poisson3D.Summary
	)
	if c, err = Poisson3D.NewPoisson3D(cfg, solver.NewMetrics(registry)); err != nil {
		return
	}
	if opts.CheckOperator {
		checkOperator(c)
	}
	c.PrintInitialization()

	switch opts.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile type %q, use cpu or mem", opts.Profile)
	}

	var counter *rankCounter
	if opts.PerfCounters {
		counter = &rankCounter{count: countInstructions}
		c.RankWrapper = counter.wrap
	}
	if s, err = c.Solve(); err != nil {
		return
	}
	if counter != nil {
		if counter.err != nil {
			return counter.err
		}
		fmt.Printf("CPU instructions = %d, summed over %d ranks\n", counter.total, c.Config.Processes)
	}
	c.PrintFinal(s)
	if opts.PrintSolution {
		printCenterline(c, s)
	}
	if len(opts.MetricsFile) != 0 {
		err = prometheus.WriteToTextfile(opts.MetricsFile, registry)
	}
	return
}

// rankCounter sums a per thread counter over the rank goroutines of a solve.
// A rank whose counter does not start still runs its share, otherwise the
// other ranks would block in their collectives.
type rankCounter struct {
	count func(fn func() error) (uint64, error)
	mu    sync.Mutex
	total uint64
	err   error
}

func (rc *rankCounter) wrap(rank int, body func() error) (err error) {
	var ran bool
	n, cerr := rc.count(func() error {
		ran = true
		err = body()
		return err
	})
	if !ran {
		err = body()
	}
	rc.mu.Lock()
	rc.total += n
	if cerr != nil && cerr != err {
		rc.err = multierr.Append(rc.err, fmt.Errorf("rank %d: %w", rank, cerr))
	}
	rc.mu.Unlock()
	return
}

func checkOperator(c *Poisson3D.Poisson3D) {
	var (
		h       = float64(int(1) << (c.Config.MaxDepth - c.Config.MeshLevel))
		corners = [2][3]float64{{0, 0, 0}, {h, h, h}}
	)
	for _, kernel := range []struct {
		name string
		k    CG3D.Kernel
	}{{"Laplace", CG3D.Laplace{}}, {"Mass", CG3D.Mass{}}} {
		A := CG3D.AssembleElementMatrix(CG3D.NewElementOperator(c.Tables, c.Mapper, kernel.k), corners)
		var maxRowSum float64
		for _, rs := range CG3D.RowSums(A) {
			maxRowSum = math.Max(maxRowSum, math.Abs(rs))
		}
		nr, nc := A.Dims()
		fmt.Printf("%-8s element matrix %dx%d, %d non zeros, asymmetry = %8.3e, max |row sum| = %8.3e\n",
			kernel.name, nr, nc, A.NNZ(), CG3D.Asymmetry(A), maxRowSum)
	}
}

func printCenterline(c *Poisson3D.Poisson3D, s *Poisson3D.Summary) {
	var (
		NN   = s.NodesPerAxis
		mid  = NN / 2
		dg   = c.Mapper.GridExtent() / float64(NN-1)
		gMid = float64(mid) * dg
	)
	fmt.Printf("%12s%16s%16s\n", "x", "u", "exact")
	for i := 0; i < NN; i++ {
		x := c.Mapper.PointToPhysical([3]float64{float64(i) * dg, gMid, gMid})
		fmt.Printf("%12.5f%16.8f%16.8f\n", x[0], s.Solution[i+NN*(mid+NN*mid)], c.Problem.Exact(x))
	}
}
