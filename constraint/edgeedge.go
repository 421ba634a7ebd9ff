package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/barrier"
	"github.com/andreayres/ipc-toolkit/distance"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// EdgeEdge is the barrier between two edges sharing no vertex.
//
// The edge-edge distance is only C0 where the closest-point pair slides
// onto an endpoint, which happens exactly when the edges approach
// parallel. The potential is therefore multiplied by a mollifier driven
// by the squared cross product of the edge directions: it vanishes
// smoothly as the edges become parallel, restoring C1 continuity.
type EdgeEdge struct {
	Base
	EA, EB int
	// EpsX is the mollifier activation threshold, fixed from the rest
	// configuration so it does not move with the current positions.
	EpsX float64
}

// NewEdgeEdge builds a unit-weight edge-edge constraint with the given
// mollifier threshold.
func NewEdgeEdge(ea, eb int, epsX float64) *EdgeEdge {
	return &EdgeEdge{Base: Base{W: 1}, EA: ea, EB: eb, EpsX: epsX}
}

// MollifierThreshold returns the mollifier activation threshold for a
// pair of edges in the rest configuration.
func MollifierThreshold(ea0, ea1, eb0, eb1 mgl64.Vec3) float64 {
	return 1e-3 * ea1.Sub(ea0).LenSqr() * eb1.Sub(eb0).LenSqr()
}

// mollifier evaluates m(x) and its first two derivatives with respect
// to x. Above the threshold the mollifier is identically one.
func mollifier(x, eps float64) (m, m1, m2 float64) {
	if x >= eps {
		return 1, 0, 0
	}
	r := x / eps
	return r * (2 - r), 2 / eps * (1 - r), -2 / (eps * eps)
}

func (c *EdgeEdge) VertexIndices(m *mesh.Mesh) []int {
	ea, eb := m.Edges[c.EA], m.Edges[c.EB]
	return []int{ea[0], ea[1], eb[0], eb[1]}
}

func (c *EdgeEdge) points(m *mesh.Mesh, V *mat.Dense) (ea0, ea1, eb0, eb1 mgl64.Vec3) {
	ea, eb := m.Edges[c.EA], m.Edges[c.EB]
	return mesh.Point(V, ea[0]), mesh.Point(V, ea[1]),
		mesh.Point(V, eb[0]), mesh.Point(V, eb[1])
}

func (c *EdgeEdge) Distance(m *mesh.Mesh, V *mat.Dense) float64 {
	ea0, ea1, eb0, eb1 := c.points(m, V)
	return distance.EdgeEdge(ea0, ea1, eb0, eb1)
}

func (c *EdgeEdge) Potential(m *mesh.Mesh, V *mat.Dense, dhat float64) float64 {
	ea0, ea1, eb0, eb1 := c.points(m, V)
	mol, _, _ := mollifier(distance.CrossSquaredNorm(ea0, ea1, eb0, eb1), c.EpsX)
	return mol * c.potential(distance.EdgeEdge(ea0, ea1, eb0, eb1), dhat)
}

func (c *EdgeEdge) Gradient(m *mesh.Mesh, V *mat.Dense, dhat float64) []float64 {
	ea0, ea1, eb0, eb1 := c.points(m, V)

	x := distance.CrossSquaredNorm(ea0, ea1, eb0, eb1)
	mol, m1, _ := mollifier(x, c.EpsX)

	r := distance.ClassifyEdgeEdge(ea0, ea1, eb0, eb1)
	d2 := distance.EdgeEdge(ea0, ea1, eb0, eb1)
	d2g := distance.EdgeEdgeGradient(r, ea0, ea1, eb0, eb1)

	s := d2 - c.MinDistance*c.MinDistance
	width := supportWidth(dhat, c.MinDistance)
	b := barrier.Barrier(s, width)
	b1 := barrier.Gradient(s, width)

	out := make([]float64, len(d2g))
	if m1 != 0 {
		xg := distance.CrossSquaredNormGradient(ea0, ea1, eb0, eb1)
		for i := range out {
			out[i] = c.W * (b*m1*xg[i] + mol*b1*d2g[i])
		}
		return out
	}
	for i := range out {
		out[i] = c.W * mol * b1 * d2g[i]
	}
	return out
}

func (c *EdgeEdge) Hessian(m *mesh.Mesh, V *mat.Dense, dhat float64, projectPSD bool) *mat.SymDense {
	ea0, ea1, eb0, eb1 := c.points(m, V)

	x := distance.CrossSquaredNorm(ea0, ea1, eb0, eb1)
	mol, m1, m2 := mollifier(x, c.EpsX)

	r := distance.ClassifyEdgeEdge(ea0, ea1, eb0, eb1)
	d2 := distance.EdgeEdge(ea0, ea1, eb0, eb1)
	d2g := distance.EdgeEdgeGradient(r, ea0, ea1, eb0, eb1)
	d2h := distance.EdgeEdgeHessian(r, ea0, ea1, eb0, eb1)

	s := d2 - c.MinDistance*c.MinDistance
	width := supportWidth(dhat, c.MinDistance)
	b := barrier.Barrier(s, width)
	b1 := barrier.Gradient(s, width)
	b2 := barrier.Hessian(s, width)

	n := len(d2g)
	h := mat.NewSymDense(n, nil)

	if m1 == 0 && m2 == 0 {
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				h.SetSym(i, j, c.W*(b2*d2g[i]*d2g[j]+b1*d2h.At(i, j)))
			}
		}
	} else {
		xg := distance.CrossSquaredNormGradient(ea0, ea1, eb0, eb1)
		xh := distance.CrossSquaredNormHessian(ea0, ea1, eb0, eb1)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := b*(m2*xg[i]*xg[j]+m1*xh.At(i, j)) +
					m1*b1*(xg[i]*d2g[j]+d2g[i]*xg[j]) +
					mol*(b2*d2g[i]*d2g[j]+b1*d2h.At(i, j))
				h.SetSym(i, j, c.W*v)
			}
		}
	}

	if projectPSD {
		h = projectToPSD(h)
	}
	return h
}
