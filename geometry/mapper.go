package geometry

import "fmt"

// Mapper converts octree grid coordinates, which run over [0, 2^maxDepth]
// on each axis, into coordinates of the physical domain box and back.
type Mapper struct {
	domainMin, domainMax [3]float64
	gridExtent           float64
}

func NewMapper(maxDepth uint, domainMin, domainMax [3]float64) *Mapper {
	if maxDepth > 62 {
		panic(fmt.Sprintf("max depth %d overflows the grid extent", maxDepth))
	}
	return NewMapperExtent(float64(uint64(1)<<maxDepth), domainMin, domainMax)
}

// NewMapperExtent panics on a non-positive grid extent or an empty domain
// axis; both are construction errors.
func NewMapperExtent(gridExtent float64, domainMin, domainMax [3]float64) *Mapper {
	if gridExtent <= 0 {
		panic(fmt.Sprintf("grid extent must be positive, have %g", gridExtent))
	}
	for axis := 0; axis < 3; axis++ {
		if !(domainMax[axis] > domainMin[axis]) {
			panic(fmt.Sprintf("degenerate domain on axis %d: [%g, %g]",
				axis, domainMin[axis], domainMax[axis]))
		}
	}
	return &Mapper{
		domainMin:  domainMin,
		domainMax:  domainMax,
		gridExtent: gridExtent,
	}
}

func (m *Mapper) GridExtent() float64     { return m.gridExtent }
func (m *Mapper) DomainMin() [3]float64   { return m.domainMin }
func (m *Mapper) DomainMax() [3]float64   { return m.domainMax }
func (m *Mapper) Extent(axis int) float64 { return m.domainMax[axis] - m.domainMin[axis] }

func (m *Mapper) GridToPhysical(axis int, g float64) float64 {
	return m.domainMin[axis] + (g/m.gridExtent)*(m.domainMax[axis]-m.domainMin[axis])
}

func (m *Mapper) PhysicalToGrid(axis int, x float64) float64 {
	return (x - m.domainMin[axis]) / (m.domainMax[axis] - m.domainMin[axis]) * m.gridExtent
}

func (m *Mapper) PointToPhysical(g [3]float64) (x [3]float64) {
	for axis := 0; axis < 3; axis++ {
		x[axis] = m.GridToPhysical(axis, g[axis])
	}
	return
}

func (m *Mapper) PointToGrid(x [3]float64) (g [3]float64) {
	for axis := 0; axis < 3; axis++ {
		g[axis] = m.PhysicalToGrid(axis, x[axis])
	}
	return
}

// Size is the physical length spanned by the grid interval [g0, g1].
func (m *Mapper) Size(axis int, g0, g1 float64) float64 {
	return m.GridToPhysical(axis, g1) - m.GridToPhysical(axis, g0)
}
