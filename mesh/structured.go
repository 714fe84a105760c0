package mesh

import (
	"fmt"

	"github.com/notargets/gopoisson/parallel"
	"github.com/notargets/gopoisson/utils"
)

/*
StructuredMesh is a uniform leaf level of the octree: NE = 2^Level hexahedral
elements of order Order along each axis, with continuous nodes shared between
neighbors. The grid spans [0, 2^MaxDepth] on each axis, so one element covers
H = 2^(MaxDepth-Level) grid units.

Element layers along z are split across the ranks of the global comm with a
PartitionMap. A rank holding no layers is inactive. Each active rank owns the
node planes of its layers except the top plane, which belongs to the next
rank and is kept locally as a ghost plane; the last active rank owns its top
plane too.

Local DOF layout: owned planes first, then the ghost plane, each plane in
x fastest order.
*/
type StructuredMesh struct {
	Order, Level, MaxDepth int
	NE, NN, Nrp            int     // elements per axis, nodes per axis, nodes per element edge
	H                      float64 // element size in grid units

	zElem      [2]int // local element layers [begin, end)
	zOwned     [2]int // owned node planes [begin, end)
	ghostPlane int    // -1 without a ghost plane
	lower      int    // rank owning the layer below, -1 at the bottom
	upper      int    // rank owning the ghost plane, -1 without one
	nPlane     int
	nOwned     int
	nGhost     int

	global, active parallel.Comm
	partition      *utils.PartitionMap

	boundary []BoundaryNode
	free     [][]float64
	// Created and Destroyed count vector allocations, for leak checks
	Created, Destroyed int
}

// NewStructuredMesh is collective over global.
func NewStructuredMesh(level, maxDepth, order int, global parallel.Comm) (m *StructuredMesh, err error) {
	switch {
	case order < 1:
		err = fmt.Errorf("element order must be >= 1, have %d", order)
	case level < 0 || level > maxDepth:
		err = fmt.Errorf("mesh level %d must be within [0, max depth %d]", level, maxDepth)
	case maxDepth > 30:
		err = fmt.Errorf("max depth %d exceeds 30", maxDepth)
	case global == nil:
		err = fmt.Errorf("global communicator is required")
	}
	if err != nil {
		return
	}
	m = &StructuredMesh{
		Order:      order,
		Level:      level,
		MaxDepth:   maxDepth,
		NE:         1 << level,
		Nrp:        order + 1,
		H:          float64(int(1) << (maxDepth - level)),
		global:     global,
		ghostPlane: -1,
		lower:      -1,
		upper:      -1,
	}
	m.NN = m.NE*order + 1
	m.nPlane = m.NN * m.NN
	m.partition = utils.NewPartitionMap(global.Size(), m.NE)
	m.zElem[0], m.zElem[1] = m.partition.GetBucketRange(global.Rank())

	color := -1
	if m.zElem[1] > m.zElem[0] {
		color = 0
		m.zOwned = [2]int{m.zElem[0] * order, m.zElem[1] * order}
		if m.zElem[1] == m.NE {
			m.zOwned[1]++
		} else {
			m.ghostPlane = m.zElem[1] * order
			m.nGhost = m.nPlane
			m.upper, _, _ = m.partition.GetBucket(m.zElem[1])
		}
		if m.zElem[0] > 0 {
			m.lower, _, _ = m.partition.GetBucket(m.zElem[0] - 1)
		}
		m.nOwned = (m.zOwned[1] - m.zOwned[0]) * m.nPlane
	}
	m.active = global.Split(color)
	if m.active != nil && m.active.Size() != m.partition.ActiveBuckets() {
		panic(fmt.Sprintf("active group has %d ranks, partition has %d non empty buckets",
			m.active.Size(), m.partition.ActiveBuckets()))
	}
	m.boundary = m.findBoundaryNodes()
	return
}

func (m *StructuredMesh) LocalDofCount() int            { return m.nOwned }
func (m *StructuredMesh) GhostDofCount() int            { return m.nGhost }
func (m *StructuredMesh) NumElements() int              { return m.NE * m.NE * (m.zElem[1] - m.zElem[0]) }
func (m *StructuredMesh) NodesPerElement() int          { return m.Nrp * m.Nrp * m.Nrp }
func (m *StructuredMesh) IsActive() bool                { return m.active != nil }
func (m *StructuredMesh) ActiveComm() parallel.Comm     { return m.active }
func (m *StructuredMesh) GlobalComm() parallel.Comm     { return m.global }
func (m *StructuredMesh) BoundaryNodes() []BoundaryNode { return m.boundary }

// GlobalDofCount is the number of nodes in the whole mesh.
func (m *StructuredMesh) GlobalDofCount() int { return m.nPlane * m.NN }

func (m *StructuredMesh) ActiveRank() int {
	if m.active == nil {
		return -1
	}
	return m.active.Rank()
}

func (m *StructuredMesh) ActiveSize() int {
	if m.active == nil {
		return 0
	}
	return m.active.Size()
}

// CreateVector returns a zeroed vector covering owned and ghost DOFs.
func (m *StructuredMesh) CreateVector() (v []float64) {
	m.Created++
	if n := len(m.free); n > 0 {
		v = m.free[n-1]
		m.free = m.free[:n-1]
		for i := range v {
			v[i] = 0
		}
		return
	}
	return make([]float64, m.nOwned+m.nGhost)
}

func (m *StructuredMesh) DestroyVector(v []float64) {
	if len(v) != m.nOwned+m.nGhost {
		panic(fmt.Sprintf("vector of length %d does not belong to this mesh (%d)", len(v), m.nOwned+m.nGhost))
	}
	m.Destroyed++
	m.free = append(m.free, v)
}

// localIndex maps a global node (i, j, k) to its local DOF, -1 if the node
// is not stored on this rank.
func (m *StructuredMesh) localIndex(i, j, k int) int {
	switch {
	case k >= m.zOwned[0] && k < m.zOwned[1]:
		return i + m.NN*(j+m.NN*(k-m.zOwned[0]))
	case k == m.ghostPlane:
		return m.nOwned + i + m.NN*j
	}
	return -1
}

func (m *StructuredMesh) globalNode(local int) (i, j, k int) {
	if local >= m.nOwned {
		local -= m.nOwned
		return local % m.NN, local / m.NN, m.ghostPlane
	}
	i = local % m.NN
	j = (local / m.NN) % m.NN
	k = local/m.nPlane + m.zOwned[0]
	return
}

// GlobalNodeIndex is the position of a local DOF in the global x fastest
// node ordering.
func (m *StructuredMesh) GlobalNodeIndex(local int) int {
	i, j, k := m.globalNode(local)
	return i + m.NN*(j+m.NN*k)
}

func (m *StructuredMesh) NodeGridCoord(local int) (g [3]float64) {
	i, j, k := m.globalNode(local)
	dh := m.H / float64(m.Order)
	return [3]float64{float64(i) * dh, float64(j) * dh, float64(k) * dh}
}

func (m *StructuredMesh) elementIJK(e int) (ex, ey, ez int) {
	ex = e % m.NE
	ey = (e / m.NE) % m.NE
	ez = m.partition.GetGlobalK(e/(m.NE*m.NE), m.global.Rank())
	return
}

func (m *StructuredMesh) ElementNodes(e int, idx []int) {
	var (
		ex, ey, ez = m.elementIJK(e)
		p, n       = m.Order, m.Nrp
	)
	for c := 0; c < n; c++ {
		for b := 0; b < n; b++ {
			for a := 0; a < n; a++ {
				idx[a+n*(b+n*c)] = m.localIndex(ex*p+a, ey*p+b, ez*p+c)
			}
		}
	}
}

func (m *StructuredMesh) ElementCorners(e int) (corners [2][3]float64) {
	ex, ey, ez := m.elementIJK(e)
	corners[0] = [3]float64{float64(ex) * m.H, float64(ey) * m.H, float64(ez) * m.H}
	corners[1] = [3]float64{corners[0][0] + m.H, corners[0][1] + m.H, corners[0][2] + m.H}
	return
}

func (m *StructuredMesh) findBoundaryNodes() (bn []BoundaryNode) {
	last := m.NN - 1
	for local := 0; local < m.nOwned+m.nGhost; local++ {
		var (
			i, j, k = m.globalNode(local)
			mask    FaceMask
		)
		for f, onFace := range [NumFaces]bool{i == 0, i == last, j == 0, j == last, k == 0, k == last} {
			if onFace {
				mask = mask.With(Face(f))
			}
		}
		if mask != 0 {
			bn = append(bn, BoundaryNode{Index: local, Grid: m.NodeGridCoord(local), Faces: mask})
		}
	}
	return
}

func (m *StructuredMesh) SyncGhosts(v []float64) {
	if m.active == nil {
		return
	}
	if m.lower >= 0 {
		m.active.Send(m.lower, v[:m.nPlane])
	}
	if m.upper >= 0 {
		copy(v[m.nOwned:m.nOwned+m.nGhost], m.active.Recv(m.upper))
	}
}

func (m *StructuredMesh) AccumulateGhosts(v []float64) {
	if m.active == nil {
		return
	}
	if m.upper >= 0 {
		m.active.Send(m.upper, v[m.nOwned:m.nOwned+m.nGhost])
	}
	if m.lower >= 0 {
		for i, val := range m.active.Recv(m.lower) {
			v[i] += val
		}
	}
}
