package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Buckets tile the index range with a maximum imbalance of one
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
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 1000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
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
	{ // Degenerate degrees clamp sanely
		pm := NewPartitionMap(8, 3)
		assert.Equal(t, 1, pm.ParallelDegree)
		kMin, kMax := pm.GetBucketRange(0)
		assert.Equal(t, 0, kMin)
		assert.Equal(t, 3, kMax)
		assert.Equal(t, 3, pm.GetBucketDimension(-1))
	}
	{ // Contiguous coverage in bucket order
		pm := NewPartitionMap(4, 10)
		var next int
		for np := 0; np < pm.ParallelDegree; np++ {
			kMin, kMax := pm.GetBucketRange(np)
			assert.Equal(t, next, kMin)
			next = kMax
		}
		assert.Equal(t, 10, next)
	}
}

func TestDOK(t *testing.T) {
	d := NewDOK(3, 3)
	d.Set(0, 1, 1)
	d.Set(1, 0, 1)
	d.Set(2, 2, 1)
	assert.Equal(t, 3, d.NNZ())
	csr := d.ToCSR()
	assert.Equal(t, 1., csr.At(0, 1))
	assert.Equal(t, 0., csr.At(0, 2))
	var visited int
	csr.DoRowNonZero(0, func(_, j int, v float64) {
		visited++
		assert.Equal(t, 1, j)
	})
	assert.Equal(t, 1, visited)
	d.SetReadOnly("Graph")
	assert.Panics(t, func() { d.Set(0, 0, 1) })
}
