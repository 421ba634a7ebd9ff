package ipc

import (
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// triplet is one (row, col, value) entry destined for a sparse matrix.
// Lists of triplets may contain duplicates; values at the same position
// always add.
type triplet struct {
	row, col int
	v        float64
}

// scatterGradient adds a constraint-local gradient into a global
// degrees-of-freedom vector. The local layout is dim coordinates per
// vertex, in the order of the constraint's vertex indices.
func scatterGradient(local []float64, indices []int, dim int, global []float64) {
	for k, vi := range indices {
		for d := 0; d < dim; d++ {
			global[vi*dim+d] += local[k*dim+d]
		}
	}
}

// scatterHessian appends a constraint-local Hessian block to a triplet
// list under the same index mapping as scatterGradient.
func scatterHessian(local *mat.SymDense, indices []int, dim int, out []triplet) []triplet {
	n := len(indices) * dim
	for i := 0; i < n; i++ {
		row := indices[i/dim]*dim + i%dim
		for j := 0; j < n; j++ {
			col := indices[j/dim]*dim + j%dim
			out = append(out, triplet{row, col, local.At(i, j)})
		}
	}
	return out
}

// compactTriplets sorts a triplet list by position and sums duplicates,
// returning the shortened list. The input slice is reused.
func compactTriplets(ts []triplet) []triplet {
	if len(ts) == 0 {
		return ts
	}
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].row != ts[j].row {
			return ts[i].row < ts[j].row
		}
		return ts[i].col < ts[j].col
	})

	out := ts[:1]
	for _, t := range ts[1:] {
		last := &out[len(out)-1]
		if t.row == last.row && t.col == last.col {
			last.v += t.v
			continue
		}
		out = append(out, t)
	}
	return out
}

// tripletsToCSR merges per-worker triplet lists, compacts duplicate
// positions and converts the result to compressed sparse row form.
func tripletsToCSR(dofs int, lists ...[]triplet) *sparse.CSR {
	var merged []triplet
	for _, l := range lists {
		merged = append(merged, l...)
	}
	merged = compactTriplets(merged)

	rows := make([]int, len(merged))
	cols := make([]int, len(merged))
	data := make([]float64, len(merged))
	for i, t := range merged {
		rows[i], cols[i], data[i] = t.row, t.col, t.v
	}
	return sparse.NewCOO(dofs, dofs, rows, cols, data).ToCSR()
}
