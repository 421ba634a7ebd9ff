// Package constraint defines the active contact pairs of a configuration
// and their contributions to the barrier potential: value, gradient, and
// hessian with respect to the stacked coordinates of the vertices each
// pair reads.
//
// Distances are squared throughout. A pair with minimum distance dmin
// evaluates the barrier on the shifted argument D - dmin^2 with support
// width 2*dmin*dhat + dhat^2, so the potential diverges at distance dmin
// instead of zero and deactivates at distance dmin + dhat.
package constraint

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/barrier"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// Constraint is one active contact pair.
type Constraint interface {
	// VertexIndices lists the distinct vertices the pair reads, in the
	// order the local gradient and hessian blocks are laid out.
	VertexIndices(m *mesh.Mesh) []int

	// Distance returns the squared distance of the pair in V.
	Distance(m *mesh.Mesh, V *mat.Dense) float64

	// Potential evaluates the pair's barrier term at activation width
	// dhat.
	Potential(m *mesh.Mesh, V *mat.Dense, dhat float64) float64

	// Gradient differentiates Potential with respect to the stacked
	// coordinates of VertexIndices.
	Gradient(m *mesh.Mesh, V *mat.Dense, dhat float64) []float64

	// Hessian is the second derivative of Potential, optionally
	// projected to positive semidefinite by clamping negative
	// eigenvalues.
	Hessian(m *mesh.Mesh, V *mat.Dense, dhat float64, projectPSD bool) *mat.SymDense

	// Weight scales the pair's contribution to the potential.
	Weight() float64

	// WeightGradient is the derivative of the weight with respect to
	// the flattened rest positions, or nil when identically zero.
	WeightGradient() *sparse.Vector
}

// Base carries the bookkeeping shared by every constraint type.
type Base struct {
	// MinDistance is the offset dmin the pair must keep.
	MinDistance float64
	// W is the contribution weight; the narrow phase uses it for the
	// multiplicity of deduplicated pairs.
	W float64
	// WGrad is the derivative of W with respect to the rest positions
	// flattened row-major (vertex i, coordinate k at i*dim+k). Nil
	// means identically zero.
	WGrad *sparse.Vector
}

func (b *Base) Weight() float64 { return b.W }

func (b *Base) WeightGradient() *sparse.Vector { return b.WGrad }

// supportWidth is the barrier activation width seen by the shifted
// squared distance.
func supportWidth(dhat, dmin float64) float64 {
	return 2*dmin*dhat + dhat*dhat
}

func (b *Base) potential(d2, dhat float64) float64 {
	return b.W * barrier.Barrier(d2-b.MinDistance*b.MinDistance, supportWidth(dhat, b.MinDistance))
}

// chainGradient maps the squared-distance gradient through the barrier.
func (b *Base) chainGradient(d2 float64, d2g []float64, dhat float64) []float64 {
	g := barrier.Gradient(d2-b.MinDistance*b.MinDistance, supportWidth(dhat, b.MinDistance))
	out := make([]float64, len(d2g))
	for i, v := range d2g {
		out[i] = b.W * g * v
	}
	return out
}

// chainHessian maps the squared-distance derivatives through the
// barrier: H = w*(b''*g*g^T + b'*Hd).
func (b *Base) chainHessian(d2 float64, d2g []float64, d2h *mat.SymDense, dhat float64, projectPSD bool) *mat.SymDense {
	s := d2 - b.MinDistance*b.MinDistance
	width := supportWidth(dhat, b.MinDistance)
	g1 := barrier.Gradient(s, width)
	g2 := barrier.Hessian(s, width)

	n := len(d2g)
	h := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			h.SetSym(i, j, b.W*(g2*d2g[i]*d2g[j]+g1*d2h.At(i, j)))
		}
	}
	if projectPSD {
		h = projectToPSD(h)
	}
	return h
}

// projectToPSD clamps the negative eigenvalues of a symmetric matrix to
// zero. Matrices that are already positive semidefinite are returned
// unchanged.
func projectToPSD(h *mat.SymDense) *mat.SymDense {
	var es mat.EigenSym
	if !es.Factorize(h, true) {
		panic("ipc: eigendecomposition failed during psd projection")
	}
	vals := es.Values(nil)

	negative := false
	for _, v := range vals {
		if v < 0 {
			negative = true
			break
		}
	}
	if !negative {
		return h
	}

	var vecs mat.Dense
	es.VectorsTo(&vecs)

	n := len(vals)
	scaled := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		v := vals[j]
		if v < 0 {
			v = 0
		}
		for i := 0; i < n; i++ {
			scaled.Set(i, j, vecs.At(i, j)*v)
		}
	}
	var full mat.Dense
	full.Mul(scaled, vecs.T())

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, full.At(i, j))
		}
	}
	return out
}
