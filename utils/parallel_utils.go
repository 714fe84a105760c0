package utils

import "fmt"

// MailBox carries messages between NP goroutines ("threads"). Every ordered
// pair of threads has its own queue, so messages from one sender to one
// receiver arrive in the order they were posted.
type MailBox[T any] struct {
	NP           int
	MessageChans [][]chan T // [sender][receiver]
}

// NewMailBox sizes each queue to hold depth messages before PostMessage blocks.
func NewMailBox[T any](NP, depth int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([][]chan T, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make([]chan T, NP)
		for k := 0; k < NP; k++ {
			mb.MessageChans[n][k] = make(chan T, depth)
		}
	}
	return mb
}

func (mb *MailBox[T]) PostMessage(myThread, targetThread int, msg T) {
	mb.checkThread(targetThread)
	mb.MessageChans[myThread][targetThread] <- msg
}

// ReceiveMessage blocks until fromThread has posted a message to myThread.
func (mb *MailBox[T]) ReceiveMessage(myThread, fromThread int) T {
	mb.checkThread(fromThread)
	return <-mb.MessageChans[fromThread][myThread]
}

func (mb *MailBox[T]) checkThread(n int) {
	if n < 0 || n > mb.NP-1 {
		panic(fmt.Sprintf("Target thread %d out of bounds", n))
	}
}

// PartitionMap splits MaxIndex items (element layers) into ParallelDegree
// contiguous buckets, one per rank. Buckets differ in size by at most one and
// any empty buckets are at the end, so the ranks that own work are always the
// lowest numbered ones.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // [begin, end) of each bucket
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		panic("partition map needs at least one bucket")
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// Split1D returns the range of bucket bn. The remainder of MaxIndex /
// ParallelDegree is spread over the leading buckets.
func (pm *PartitionMap) Split1D(bn int) (bucket [2]int) {
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
		extra     int
	)
	if bn < remainder {
		extra = 1
		bucket[0] = bn * (Npart + 1)
	} else {
		bucket[0] = remainder*(Npart+1) + (bn-remainder)*Npart
	}
	bucket[1] = bucket[0] + Npart + extra
	return
}

func (pm *PartitionMap) GetBucketRange(bn int) (kMin, kMax int) {
	return pm.Partitions[bn][0], pm.Partitions[bn][1]
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		return pm.MaxIndex
	}
	kMin, kMax := pm.GetBucketRange(bn)
	return kMax - kMin
}

// GetBucket finds the bucket holding index k, starting from the proportional
// guess and walking at most one bucket away.
func (pm *PartitionMap) GetBucket(k int) (bn, kMin, kMax int) {
	_, bn, kMin, kMax = pm.getBucketWithTryCount(k)
	return
}

func (pm *PartitionMap) getBucketWithTryCount(k int) (tryCount, bn, kMin, kMax int) {
	if k < 0 || k >= pm.MaxIndex {
		return 0, -1, 0, 0
	}
	bn = int(float64(pm.ParallelDegree*k) / float64(pm.MaxIndex))
	for !(pm.Partitions[bn][0] <= k && pm.Partitions[bn][1] > k) {
		if pm.Partitions[bn][0] > k {
			bn--
		} else {
			bn++
		}
		if bn == -1 || bn == pm.ParallelDegree {
			return 0, -1, 0, 0
		}
		tryCount++
	}
	kMin, kMax = pm.Partitions[bn][0], pm.Partitions[bn][1]
	return
}

// ActiveBuckets is the number of non-empty buckets.
func (pm *PartitionMap) ActiveBuckets() (n int) {
	for bn := range pm.Partitions {
		if pm.GetBucketDimension(bn) > 0 {
			n++
		}
	}
	return
}

func (pm *PartitionMap) GetGlobalK(kLocal, bn int) (kGlobal int) {
	if bn == -1 {
		return kLocal
	}
	return pm.Partitions[bn][0] + kLocal
}
