package mesh

import (
	"github.com/notargets/gopoisson/geometry"
	"github.com/notargets/gopoisson/parallel"
)

type Face uint8

const (
	XMin Face = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
	NumFaces
)

func (f Face) String() string {
	return [...]string{"XMin", "XMax", "YMin", "YMax", "ZMin", "ZMax"}[f]
}

type FaceMask uint8

func (fm FaceMask) Has(f Face) bool      { return fm&(1<<f) != 0 }
func (fm FaceMask) With(f Face) FaceMask { return fm | 1<<f }

type BoundaryNode struct {
	Index int        // local DOF index
	Grid  [3]float64 // grid coordinate
	Faces FaceMask
}

// Mesh is the distributed mesh as seen from one rank. Local vectors hold
// LocalDofCount owned entries followed by GhostDofCount ghost entries that
// mirror DOFs owned by neighboring ranks.
type Mesh interface {
	LocalDofCount() int
	GhostDofCount() int
	CreateVector() []float64
	DestroyVector(v []float64)

	NumElements() int
	NodesPerElement() int
	// ElementNodes fills idx with the local DOF indices of element e, in
	// tensor order with x fastest.
	ElementNodes(e int, idx []int)
	// ElementCorners returns the min and max grid coordinates of element e.
	ElementCorners(e int) [2][3]float64
	NodeGridCoord(i int) [3]float64
	BoundaryNodes() []BoundaryNode

	IsActive() bool
	ActiveRank() int
	ActiveSize() int
	ActiveComm() parallel.Comm // nil on inactive ranks
	GlobalComm() parallel.Comm

	// SyncGhosts copies owner values into the ghost entries of v.
	SyncGhosts(v []float64)
	// AccumulateGhosts adds the ghost entries of v into their owners.
	AccumulateGhosts(v []float64)
}

// SetVectorByFunction evaluates fn at the physical location of every local
// node, ghosts included.
func SetVectorByFunction(m Mesh, v []float64, mapper *geometry.Mapper, fn func(x [3]float64) float64) {
	n := m.LocalDofCount() + m.GhostDofCount()
	for i := 0; i < n; i++ {
		v[i] = fn(mapper.PointToPhysical(m.NodeGridCoord(i)))
	}
}
