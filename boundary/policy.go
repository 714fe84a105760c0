// Package boundary holds the boundary condition policies of the domain faces
// and the enforcer that applies them to DOF vectors.
package boundary

import "github.com/notargets/gopoisson/mesh"

// Policy is the condition applied on one face of the domain.
type Policy interface {
	// ValueAt is the prescribed value at a physical location on the face.
	ValueAt(x [3]float64) float64
	// Constrains reports whether nodes on the face are fixed DOFs.
	Constrains() bool
}

// Dirichlet fixes the solution to Value; a nil Value means zero.
type Dirichlet struct {
	Value func(x [3]float64) float64
}

func (d Dirichlet) ValueAt(x [3]float64) float64 {
	if d.Value == nil {
		return 0
	}
	return d.Value(x)
}

func (d Dirichlet) Constrains() bool { return true }

func Homogeneous() Dirichlet { return Dirichlet{} }

// Neumann is the homogeneous natural condition. The weak form already
// satisfies it, so it fixes no DOFs.
type Neumann struct{}

func (Neumann) ValueAt(x [3]float64) float64 { return 0 }
func (Neumann) Constrains() bool             { return false }

// Conditions assigns a policy to each face of the domain box.
type Conditions [mesh.NumFaces]Policy

func AllFaces(p Policy) (c Conditions) {
	for f := range c {
		c[f] = p
	}
	return
}

// Policy returns the policy governing a node lying on the faces in fm: the
// first constraining face in face order, or nil when none constrains.
func (c Conditions) Policy(fm mesh.FaceMask) Policy {
	for f := mesh.Face(0); f < mesh.NumFaces; f++ {
		if fm.Has(f) && c[f] != nil && c[f].Constrains() {
			return c[f]
		}
	}
	return nil
}
