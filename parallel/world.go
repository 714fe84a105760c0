package parallel

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// World is a fixed set of ranks. Each call to Run starts a fresh group.
type World struct {
	size int
}

type Process struct {
	Rank  int
	Size  int
	World Comm // all ranks of the run
}

func NewWorld(size int) *World {
	if size < 1 {
		panic(fmt.Sprintf("world needs at least one rank, have %d", size))
	}
	return &World{size: size}
}

func (w *World) Size() int { return w.size }

// Run executes fn on every rank in its own goroutine and waits for all of
// them. Errors from individual ranks are combined.
func (w *World) Run(fn func(p *Process) error) (err error) {
	var (
		g    = newGroup(w.size)
		wg   = sync.WaitGroup{}
		errs = make([]error, w.size)
	)
	for rank := 0; rank < w.size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			p := &Process{
				Rank:  rank,
				Size:  w.size,
				World: &comm{g: g, rank: rank},
			}
			if rerr := fn(p); rerr != nil {
				errs[rank] = fmt.Errorf("rank %d: %w", rank, rerr)
			}
		}(rank)
	}
	wg.Wait()
	return multierr.Combine(errs...)
}
