package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"go.uber.org/multierr"
)

// Parameters obtained from the YAML input file
type Config struct {
	Title          string     `yaml:"Title"`
	Problem        string     `yaml:"Problem"`
	MaxDepth       int        `yaml:"MaxDepth"`  // octree depth, the grid spans [0, 2^MaxDepth]
	MeshLevel      int        `yaml:"MeshLevel"` // uniform leaf level, <= MaxDepth
	WaveletTol     float64    `yaml:"WaveletTol"`
	PartitionTol   float64    `yaml:"PartitionTol"`
	SolveTol       float64    `yaml:"SolveTol"`
	SolveMaxIters  int        `yaml:"SolveMaxIters"`
	ElementOrder   int        `yaml:"ElementOrder"`
	Dimension      int        `yaml:"Dimension"`
	Solver         string     `yaml:"Solver"`
	TrialFunction  string     `yaml:"TrialFunction"`
	TestFunction   string     `yaml:"TestFunction"`
	ElementalNodes string     `yaml:"ElementalNodes"`
	Quadrature     string     `yaml:"Quadrature"`
	DomainMin      [3]float64 `yaml:"DomainMin"`
	DomainMax      [3]float64 `yaml:"DomainMax"`
	Processes      int        `yaml:"Processes"`
}

func Defaults() Config {
	return Config{
		Title:          "Poisson 3D",
		Problem:        "ParabolicX",
		MaxDepth:       6,
		MeshLevel:      3, // converges within SolveMaxIters at SolveTol
		WaveletTol:     0.1,
		PartitionTol:   0.3,
		SolveTol:       1.e-6,
		SolveMaxIters:  100,
		ElementOrder:   2,
		Dimension:      3,
		Solver:         "CG",
		TrialFunction:  "Legendre",
		TestFunction:   "Legendre",
		ElementalNodes: "Lobatto",
		Quadrature:     "Gauss",
		DomainMin:      [3]float64{0, 0, 0},
		DomainMax:      [3]float64{1, 1, 1},
		Processes:      1,
	}
}

// Parse overlays the values in data onto the receiver, so unset keys keep
// their current values.
func (c *Config) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// Validate checks every precondition of the solver setup. Each failed check
// is a separate error, see multierr.Errors.
func (c *Config) Validate() (err error) {
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}
	check(c.Dimension == 3, "Dimension must be 3, have %d", c.Dimension)
	check(c.ElementOrder >= 1, "ElementOrder must be >= 1, have %d", c.ElementOrder)
	check(c.MaxDepth >= 0 && c.MaxDepth <= 30, "MaxDepth must be within [0, 30], have %d", c.MaxDepth)
	check(c.MeshLevel >= 0 && c.MeshLevel <= c.MaxDepth, "MeshLevel must be within [0, MaxDepth=%d], have %d", c.MaxDepth, c.MeshLevel)
	check(c.SolveTol > 0, "SolveTol must be positive, have %g", c.SolveTol)
	check(c.SolveMaxIters >= 0, "SolveMaxIters must not be negative, have %d", c.SolveMaxIters)
	check(c.Processes >= 1, "Processes must be >= 1, have %d", c.Processes)
	for axis := 0; axis < 3; axis++ {
		check(c.DomainMax[axis] > c.DomainMin[axis], "domain axis %d is degenerate: [%g, %g]",
			axis, c.DomainMin[axis], c.DomainMax[axis])
	}
	for _, id := range []struct{ name, have, want string }{
		{"Solver", c.Solver, "CG"},
		{"TrialFunction", c.TrialFunction, "Legendre"},
		{"TestFunction", c.TestFunction, "Legendre"},
		{"ElementalNodes", c.ElementalNodes, "Lobatto"},
		{"Quadrature", c.Quadrature, "Gauss"},
	} {
		check(strings.EqualFold(id.have, id.want), "unsupported %s %q, only %q is available", id.name, id.have, id.want)
	}
	return
}

func (c *Config) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", c.Title)
	fmt.Printf("[%s]\t\t= Problem\n", c.Problem)
	fmt.Printf("[%d]\t\t\t= Max Depth\n", c.MaxDepth)
	fmt.Printf("[%d]\t\t\t= Mesh Level\n", c.MeshLevel)
	fmt.Printf("[%d]\t\t\t= Element Order\n", c.ElementOrder)
	fmt.Printf("%8.5g\t\t= Solve Tolerance\n", c.SolveTol)
	fmt.Printf("[%d]\t\t\t= Solve Max Iterations\n", c.SolveMaxIters)
	fmt.Printf("%8.5f\t\t= Wavelet Tolerance\n", c.WaveletTol)
	fmt.Printf("%8.5f\t\t= Partition Tolerance\n", c.PartitionTol)
	fmt.Printf("[%s/%s/%s/%s/%s]\t= Solver/Trial/Test/Nodes/Quadrature\n",
		c.Solver, c.TrialFunction, c.TestFunction, c.ElementalNodes, c.Quadrature)
	fmt.Printf("%v - %v\t= Domain\n", c.DomainMin, c.DomainMax)
	fmt.Printf("[%d]\t\t\t= Processes\n", c.Processes)
}
