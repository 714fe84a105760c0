package parallel

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectives(t *testing.T) {
	for _, np := range []int{1, 2, 3, 7} {
		w := NewWorld(np)
		var (
			mu      sync.Mutex
			sums    = make([]float64, np)
			maxes   = make([]float64, np)
			mins    = make([]float64, np)
			bcasts  = make([]float64, np)
			expSum  float64
			expMax  = float64(np - 1)
			lastBct = float64(100 * (np - 1))
		)
		for r := 0; r < np; r++ {
			expSum += float64(r) + 0.5
		}
		err := w.Run(func(p *Process) error {
			c := p.World
			s := c.AllReduce(float64(c.Rank())+0.5, Sum)
			m := c.AllReduce(float64(c.Rank()), Max)
			n := c.AllReduce(float64(c.Rank()), Min)
			b := c.Bcast(float64(100*c.Rank()), c.Size()-1)
			c.Barrier()
			mu.Lock()
			sums[c.Rank()], maxes[c.Rank()], mins[c.Rank()], bcasts[c.Rank()] = s, m, n, b
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		for r := 0; r < np; r++ {
			assert.Equal(t, expSum, sums[r])
			assert.Equal(t, expMax, maxes[r])
			assert.Equal(t, 0., mins[r])
			assert.Equal(t, lastBct, bcasts[r])
		}
	}
}

func TestRepeatedCollectivesAreIdentical(t *testing.T) {
	// Many back to back reductions reuse the same slots; every rank must
	// always see the same value.
	np := 4
	w := NewWorld(np)
	results := make([][]float64, np)
	err := w.Run(func(p *Process) error {
		for i := 0; i < 200; i++ {
			v := p.World.AllReduce(0.1*float64(i+p.Rank), Sum)
			results[p.Rank] = append(results[p.Rank], v)
		}
		return nil
	})
	require.NoError(t, err)
	for r := 1; r < np; r++ {
		assert.Equal(t, results[0], results[r])
	}
}

func TestSendRecv(t *testing.T) {
	np := 5
	w := NewWorld(np)
	got := make([][]float64, np)
	err := w.Run(func(p *Process) error {
		c := p.World
		right := (c.Rank() + 1) % np
		left := (c.Rank() + np - 1) % np
		buf := []float64{float64(c.Rank()), float64(c.Rank() * 10)}
		c.Send(right, buf)
		buf[0] = -1 // Send copies
		got[c.Rank()] = c.Recv(left)
		return nil
	})
	require.NoError(t, err)
	for r := 0; r < np; r++ {
		left := (r + np - 1) % np
		assert.Equal(t, []float64{float64(left), float64(left * 10)}, got[r])
	}
}

func TestSplit(t *testing.T) {
	np := 6
	w := NewWorld(np)
	var (
		subRank = make([]int, np)
		subSize = make([]int, np)
		subSum  = make([]float64, np)
		isNil   = make([]bool, np)
	)
	err := w.Run(func(p *Process) error {
		color := -1
		if p.Rank < 4 {
			color = 0
		}
		sub := p.World.Split(color)
		if sub == nil {
			isNil[p.Rank] = true
		} else {
			subRank[p.Rank] = sub.Rank()
			subSize[p.Rank] = sub.Size()
			subSum[p.Rank] = sub.AllReduce(1, Sum)
		}
		// A second split must produce an independent group
		odd := p.World.Split(p.Rank % 2)
		_ = odd.AllReduce(float64(p.Rank), Sum)
		p.World.Barrier()
		return nil
	})
	require.NoError(t, err)
	for r := 0; r < np; r++ {
		if r < 4 {
			assert.False(t, isNil[r])
			assert.Equal(t, r, subRank[r])
			assert.Equal(t, 4, subSize[r])
			assert.Equal(t, 4., subSum[r])
		} else {
			assert.True(t, isNil[r])
		}
	}
}

func TestRunCombinesErrors(t *testing.T) {
	w := NewWorld(3)
	err := w.Run(func(p *Process) error {
		if p.Rank != 1 {
			return errors.New("failed")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank 0: failed")
	assert.Contains(t, err.Error(), "rank 2: failed")
	assert.NotContains(t, err.Error(), "rank 1")
	assert.Panics(t, func() { NewWorld(0) })
}
