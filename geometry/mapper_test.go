package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapper(t *testing.T) {
	{ // Unit cube, depth 4
		m := NewMapper(4, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})
		assert.Equal(t, 16., m.GridExtent())
		assert.InDelta(t, 0.0, m.GridToPhysical(0, 0), 1.e-15)
		assert.InDelta(t, 1.0, m.GridToPhysical(1, 16), 1.e-15)
		assert.InDelta(t, 0.25, m.GridToPhysical(2, 4), 1.e-15)
		assert.InDelta(t, 0.0625, m.Size(0, 3, 4), 1.e-15)
	}
	{ // Stretched, shifted box
		m := NewMapper(6, [3]float64{-1, 2, 10}, [3]float64{3, 2.5, 20})
		x := m.PointToPhysical([3]float64{32, 64, 16})
		assert.InDeltaSlice(t, []float64{1, 2.5, 12.5}, x[:], 1.e-14)
		assert.InDelta(t, 4./64., m.Size(0, 0, 1), 1.e-15)
		assert.InDelta(t, 10., m.Extent(2), 1.e-15)
		assert.Equal(t, [3]float64{-1, 2, 10}, m.DomainMin())
		assert.Equal(t, [3]float64{3, 2.5, 20}, m.DomainMax())
	}
	{ // Round trip
		m := NewMapper(5, [3]float64{-3, 0.1, 7}, [3]float64{4, 0.2, 9})
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 1000; i++ {
			g := [3]float64{32 * rng.Float64(), 32 * rng.Float64(), 32 * rng.Float64()}
			gg := m.PointToGrid(m.PointToPhysical(g))
			assert.InDeltaSlice(t, g[:], gg[:], 1.e-10)
		}
	}
	{ // Preconditions
		assert.Panics(t, func() { NewMapperExtent(0, [3]float64{}, [3]float64{1, 1, 1}) })
		assert.Panics(t, func() { NewMapper(3, [3]float64{0, 1, 0}, [3]float64{1, 1, 1}) })
		assert.Panics(t, func() { NewMapper(63, [3]float64{}, [3]float64{1, 1, 1}) })
	}
}
