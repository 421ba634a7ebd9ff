package ipc

import (
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/broadphase"
	"github.com/andreayres/ipc-toolkit/ccd"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// CollisionFreeStepsize returns the largest fraction t of the motion
// from V0 to V1 that is certified free of collisions between
// non-adjacent primitive pairs. The result is in [0, 1]; an empty
// candidate set yields exactly 1.
func CollisionFreeStepsize(m *mesh.Mesh, V0, V1 *mat.Dense, method broadphase.Method, o ccd.Options) float64 {
	return CollisionFreeStepsizeCandidates(broadphase.Detect(m, V0, V1, 0, method), m, V0, V1, o)
}

// CollisionFreeStepsizeCandidates reduces the minimum time of impact
// over an already-built candidate set.
//
// The earliest TOI found so far is shared between workers and read by
// every candidate as its tmax, so once any candidate establishes a
// bound the remaining queries only search the shrunken interval. The
// bound only ever decreases; reading a stale value costs extra
// root-finding work, never a wrong minimum.
func CollisionFreeStepsizeCandidates(c *broadphase.Candidates, m *mesh.Mesh, V0, V1 *mat.Dense, o ccd.Options) float64 {
	n := c.Len()
	if n == 0 {
		return 1
	}

	var earliest atomic.Uint64
	earliest.Store(math.Float64bits(1))

	workers := workerCount(n)
	taskRange(workers, n, func(_, start, end int) {
		for i := start; i < end; i++ {
			bound := math.Float64frombits(earliest.Load())
			if bound == 0 {
				return
			}
			opts := o
			opts.TMax = bound
			impacting, toi := c.At(i).CCD(m, V0, V1, opts)
			if !impacting {
				continue
			}
			for {
				cur := earliest.Load()
				if toi >= math.Float64frombits(cur) {
					break
				}
				if earliest.CompareAndSwap(cur, math.Float64bits(toi)) {
					break
				}
			}
		}
	})

	return math.Float64frombits(earliest.Load())
}

// IsStepCollisionFree reports whether the full motion from V0 to V1 is
// free of collisions between non-adjacent primitive pairs.
func IsStepCollisionFree(m *mesh.Mesh, V0, V1 *mat.Dense, method broadphase.Method, o ccd.Options) bool {
	return IsStepCollisionFreeCandidates(broadphase.Detect(m, V0, V1, 0, method), m, V0, V1, o)
}

// IsStepCollisionFreeCandidates certifies an already-built candidate
// set, stopping at the first impact.
func IsStepCollisionFreeCandidates(c *broadphase.Candidates, m *mesh.Mesh, V0, V1 *mat.Dense, o ccd.Options) bool {
	o.TMax = 1
	for i := 0; i < c.Len(); i++ {
		if impacting, _ := c.At(i).CCD(m, V0, V1, o); impacting {
			return false
		}
	}
	return true
}
