// Package parallel runs SPMD programs with one goroutine per rank and gives
// them MPI-like collectives over a process group.
package parallel

import (
	"fmt"
	"math"
	"sync"

	"github.com/notargets/gopoisson/utils"
)

type Op uint8

const (
	Sum Op = iota
	Max
	Min
)

func (op Op) apply(a, b float64) float64 {
	switch op {
	case Max:
		return math.Max(a, b)
	case Min:
		return math.Min(a, b)
	default:
		return a + b
	}
}

func (op Op) String() string {
	switch op {
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return "sum"
	}
}

// Comm is one rank's handle on a process group. Every collective must be
// reached by all members of the group, in the same order, or the group
// deadlocks.
type Comm interface {
	Rank() int
	Size() int
	// AllReduce combines v over the group. Partial values are combined in
	// rank order so every member gets a bitwise identical result.
	AllReduce(v float64, op Op) float64
	// Bcast returns root's value on every member.
	Bcast(v float64, root int) float64
	Barrier()
	// Send queues a copy of data for rank to. It does not wait for the
	// matching Recv.
	Send(to int, data []float64)
	Recv(from int) []float64
	// Split is collective. Members passing the same non-negative color form
	// a new group ranked in the order of their rank here. A negative color
	// returns nil.
	Split(color int) Comm
}

const linkDepth = 16

type splitKey struct {
	gen, color int
}

type group struct {
	size   int
	slots  []float64
	colors []int
	bar    *barrier
	mail   *utils.MailBox[[]float64]
	mu     sync.Mutex
	splits map[splitKey]*group
}

func newGroup(size int) (g *group) {
	g = &group{
		size:   size,
		slots:  make([]float64, size),
		colors: make([]int, size),
		bar:    newBarrier(size),
		mail:   utils.NewMailBox[[]float64](size, linkDepth),
		splits: make(map[splitKey]*group),
	}
	return
}

type comm struct {
	g      *group
	rank   int
	splits int
}

func (c *comm) Rank() int { return c.rank }
func (c *comm) Size() int { return c.g.size }

func (c *comm) AllReduce(v float64, op Op) (r float64) {
	g := c.g
	g.slots[c.rank] = v
	g.bar.wait()
	r = g.slots[0]
	for i := 1; i < g.size; i++ {
		r = op.apply(r, g.slots[i])
	}
	g.bar.wait()
	return
}

func (c *comm) Bcast(v float64, root int) (r float64) {
	g := c.g
	c.checkRank(root)
	if c.rank == root {
		g.slots[root] = v
	}
	g.bar.wait()
	r = g.slots[root]
	g.bar.wait()
	return
}

func (c *comm) Barrier() { c.g.bar.wait() }

func (c *comm) Send(to int, data []float64) {
	c.checkRank(to)
	msg := make([]float64, len(data))
	copy(msg, data)
	c.g.mail.PostMessage(c.rank, to, msg)
}

func (c *comm) Recv(from int) []float64 {
	c.checkRank(from)
	return c.g.mail.ReceiveMessage(c.rank, from)
}

func (c *comm) Split(color int) (sub Comm) {
	g := c.g
	g.colors[c.rank] = color
	g.bar.wait()
	if color >= 0 {
		var members []int
		for r, col := range g.colors {
			if col == color {
				members = append(members, r)
			}
		}
		key := splitKey{gen: c.splits, color: color}
		g.mu.Lock()
		ng, ok := g.splits[key]
		if !ok {
			ng = newGroup(len(members))
			g.splits[key] = ng
		}
		g.mu.Unlock()
		for i, r := range members {
			if r == c.rank {
				sub = &comm{g: ng, rank: i}
			}
		}
	}
	c.splits++
	g.bar.wait()
	return
}

func (c *comm) checkRank(r int) {
	if r < 0 || r >= c.g.size {
		panic(fmt.Sprintf("rank %d out of range for group of size %d", r, c.g.size))
	}
}

// barrier is a reusable (cyclic) barrier for a fixed number of goroutines.
type barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	gen   uint64
}

func newBarrier(n int) (b *barrier) {
	b = &barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return
}

func (b *barrier) wait() {
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
	} else {
		for gen == b.gen {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}
