package utils

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	getHisto := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for np := 0; np < pm.ParallelDegree; np++ {
			histo[pm.GetBucketDimension(np)]++
		}
		return
	}
	getTotal := func(histo map[int]int) (total int) {
		for key, count := range histo {
			total += key * count
		}
		return
	}
	{ // Balance
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 1; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 7)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Buckets are contiguous and empty buckets trail
		pm := NewPartitionMap(6, 4)
		assert.Equal(t, 4, pm.ActiveBuckets())
		var last int
		for bn := 0; bn < 6; bn++ {
			kMin, kMax := pm.GetBucketRange(bn)
			assert.Equal(t, last, kMin)
			last = kMax
			if bn >= 4 {
				assert.Equal(t, 0, pm.GetBucketDimension(bn))
			}
		}
		assert.Equal(t, 4, last)
	}
	{ // Inverted bucket probe
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
				assert.Equal(t, k, pm.GetGlobalK(k-min, bn))
			}
		}
		pm := NewPartitionMap(3, 9)
		bn, _, _ := pm.GetBucket(9)
		assert.Equal(t, -1, bn)
	}
}

func TestMailBox(t *testing.T) {
	var (
		NP = 4
		mb = NewMailBox[[]float64](NP, 2)
		wg = sync.WaitGroup{}
		// got[n] holds what thread n received from its left neighbor
		got = make([][]float64, NP)
	)
	for n := 0; n < NP; n++ {
		wg.Add(1)
		go func(myThread int) {
			defer wg.Done()
			right, left := (myThread+1)%NP, (myThread+NP-1)%NP
			mb.PostMessage(myThread, right, []float64{float64(myThread)})
			mb.PostMessage(myThread, right, []float64{float64(10 * myThread)})
			first := mb.ReceiveMessage(myThread, left)
			second := mb.ReceiveMessage(myThread, left)
			got[myThread] = append(first, second...)
		}(n)
	}
	wg.Wait()
	for n := 0; n < NP; n++ {
		left := float64((n + NP - 1) % NP)
		assert.Equal(t, []float64{left, 10 * left}, got[n])
	}
	assert.Panics(t, func() { mb.PostMessage(0, NP, nil) })
	assert.Panics(t, func() { mb.ReceiveMessage(0, -1) })
}
