package Poisson3D

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/notargets/gopoisson/boundary"
	"github.com/notargets/gopoisson/mesh"
)

// Problem is a manufactured solution of -div grad u = f.
type Problem interface {
	Name() string
	Source(x [3]float64) float64
	Exact(x [3]float64) float64
	Conditions() boundary.Conditions
}

type manufactured struct {
	name          string
	source, exact func(x [3]float64) float64
	conditions    func(exact func(x [3]float64) float64) boundary.Conditions
}

func (p *manufactured) Name() string                    { return p.name }
func (p *manufactured) Source(x [3]float64) float64     { return p.source(x) }
func (p *manufactured) Exact(x [3]float64) float64      { return p.exact(x) }
func (p *manufactured) Conditions() boundary.Conditions { return p.conditions(p.exact) }

func dirichletEverywhere(exact func(x [3]float64) float64) boundary.Conditions {
	return boundary.AllFaces(boundary.Dirichlet{Value: exact})
}

var problems = map[string]*manufactured{
	"parabolicx": {
		name:   "ParabolicX",
		source: func(x [3]float64) float64 { return 2 },
		exact:  func(x [3]float64) float64 { return x[0] * (1 - x[0]) },
		conditions: func(exact func(x [3]float64) float64) (c boundary.Conditions) {
			c = boundary.AllFaces(boundary.Neumann{})
			c[mesh.XMin] = boundary.Dirichlet{Value: exact}
			c[mesh.XMax] = boundary.Dirichlet{Value: exact}
			return
		},
	},
	"sineproduct": {
		name: "SineProduct",
		source: func(x [3]float64) float64 {
			return 3 * math.Pi * math.Pi * math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1]) * math.Sin(math.Pi*x[2])
		},
		exact: func(x [3]float64) float64 {
			return math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1]) * math.Sin(math.Pi*x[2])
		},
		conditions: dirichletEverywhere,
	},
	"zero": {
		name:       "Zero",
		source:     func(x [3]float64) float64 { return 0 },
		exact:      func(x [3]float64) float64 { return 0 },
		conditions: dirichletEverywhere,
	},
	"linear": {
		name:       "Linear",
		source:     func(x [3]float64) float64 { return 0 },
		exact:      func(x [3]float64) float64 { return x[0] + x[1] + x[2] },
		conditions: dirichletEverywhere,
	},
}

func NewProblem(name string) (Problem, error) {
	p, ok := problems[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q, choose one of %v", name, ProblemNames())
	}
	return p, nil
}

func ProblemNames() (names []string) {
	for _, p := range problems {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return
}
