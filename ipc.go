// Package ipc builds smoothly differentiable barrier potentials over
// close pairs of surface mesh primitives and certifies collision-free
// fractions of a proposed motion with conservative continuous collision
// detection, following the incremental potential contact formulation
// (Li et al., "Incremental Potential Contact", 2020).
//
// The package operates on whole-mesh configurations stored as n by dim
// dense matrices and reduces over candidate pairs and constraints in
// parallel, one contiguous range per worker with per-worker accumulators
// merged at the end.
package ipc

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/constraint"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// BarrierPotential sums the barrier potential of every constraint in the
// set at configuration V. An empty set yields 0.
func BarrierPotential(m *mesh.Mesh, V *mat.Dense, set *constraint.Set, dhat float64) float64 {
	m.MustMatch(V)
	n := set.Len()
	if n == 0 {
		return 0
	}

	workers := workerCount(n)
	sums := make([]float64, workers)
	taskRange(workers, n, func(worker, start, end int) {
		local := 0.0
		for i := start; i < end; i++ {
			local += set.At(i).Potential(m, V, dhat)
		}
		sums[worker] = local
	})

	total := 0.0
	for _, s := range sums {
		total += s
	}
	return total
}

// BarrierPotentialGradient assembles the gradient of the barrier
// potential with respect to the vertex positions, as a vector of
// num vertices by dim entries. An empty set yields the zero vector.
func BarrierPotentialGradient(m *mesh.Mesh, V *mat.Dense, set *constraint.Set, dhat float64) *mat.VecDense {
	m.MustMatch(V)
	dim := mesh.Dim(V)
	dofs := m.NumVertices * dim
	n := set.Len()
	if n == 0 {
		return mat.NewVecDense(dofs, nil)
	}

	workers := workerCount(n)
	grads := make([][]float64, workers)
	taskRange(workers, n, func(worker, start, end int) {
		local := make([]float64, dofs)
		for i := start; i < end; i++ {
			c := set.At(i)
			scatterGradient(c.Gradient(m, V, dhat), c.VertexIndices(m), dim, local)
		}
		grads[worker] = local
	})

	total := make([]float64, dofs)
	for _, g := range grads {
		if g == nil {
			continue
		}
		for i, v := range g {
			total[i] += v
		}
	}
	return mat.NewVecDense(dofs, total)
}

// BarrierPotentialHessian assembles the Hessian of the barrier potential
// with respect to the vertex positions as a sparse matrix. With
// projectPSD every local block is projected to positive semidefinite
// before scattering, which makes the assembled matrix positive
// semidefinite as well. An empty set yields an all-zero matrix of full
// extent.
func BarrierPotentialHessian(m *mesh.Mesh, V *mat.Dense, set *constraint.Set, dhat float64, projectPSD bool) *sparse.CSR {
	m.MustMatch(V)
	dim := mesh.Dim(V)
	dofs := m.NumVertices * dim
	n := set.Len()
	if n == 0 {
		return tripletsToCSR(dofs)
	}

	workers := workerCount(n)
	lists := make([][]triplet, workers)
	taskRange(workers, n, func(worker, start, end int) {
		var ts []triplet
		for i := start; i < end; i++ {
			c := set.At(i)
			ts = scatterHessian(c.Hessian(m, V, dhat, projectPSD), c.VertexIndices(m), dim, ts)
		}
		lists[worker] = ts
	})

	return tripletsToCSR(dofs, lists...)
}

// BarrierShapeDerivative differentiates the barrier potential gradient
// with respect to rest-shape parameters: the position block reuses the
// unprojected Hessian assembly, and each constraint adds the outer
// product of its gradient, with the narrow-phase weight divided out,
// and its weight gradient. Every constraint must carry a nonzero weight
// and a weight gradient sized to the configuration.
func BarrierShapeDerivative(m *mesh.Mesh, V *mat.Dense, set *constraint.Set, dhat float64) *sparse.CSR {
	m.MustMatch(V)
	dim := mesh.Dim(V)
	dofs := m.NumVertices * dim
	n := set.Len()
	if n == 0 {
		return tripletsToCSR(dofs)
	}

	for i := 0; i < n; i++ {
		c := set.At(i)
		if c.Weight() == 0 {
			panic("ipc: shape derivative requires nonzero constraint weights")
		}
		if wg := c.WeightGradient(); wg == nil || wg.Len() != dofs {
			panic("ipc: shape derivative requires weight gradients sized to the configuration")
		}
	}

	workers := workerCount(n)
	lists := make([][]triplet, workers)
	taskRange(workers, n, func(worker, start, end int) {
		var ts []triplet
		for i := start; i < end; i++ {
			c := set.At(i)
			indices := c.VertexIndices(m)
			ts = scatterHessian(c.Hessian(m, V, dhat, false), indices, dim, ts)

			w := c.Weight()
			grad := c.Gradient(m, V, dhat)
			c.WeightGradient().DoNonZero(func(j, _ int, wv float64) {
				for k, vi := range indices {
					for d := 0; d < dim; d++ {
						ts = append(ts, triplet{vi*dim + d, j, grad[k*dim+d] / w * wv})
					}
				}
			})
		}
		lists[worker] = ts
	})

	return tripletsToCSR(dofs, lists...)
}

// MinimumDistance returns the smallest squared distance over the
// constraints in the set, or +Inf for an empty set.
func MinimumDistance(m *mesh.Mesh, V *mat.Dense, set *constraint.Set) float64 {
	m.MustMatch(V)
	n := set.Len()
	if n == 0 {
		return math.Inf(1)
	}

	workers := workerCount(n)
	mins := make([]float64, workers)
	for i := range mins {
		mins[i] = math.Inf(1)
	}
	taskRange(workers, n, func(worker, start, end int) {
		local := math.Inf(1)
		for i := start; i < end; i++ {
			if d := set.At(i).Distance(m, V); d < local {
				local = d
			}
		}
		mins[worker] = local
	})

	minDist := math.Inf(1)
	for _, d := range mins {
		minDist = min(minDist, d)
	}
	return minDist
}
