package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/distance"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// VertexVertex is the barrier between two vertices.
type VertexVertex struct {
	Base
	VA, VB int
}

// NewVertexVertex builds a unit-weight vertex-vertex constraint.
func NewVertexVertex(va, vb int) *VertexVertex {
	return &VertexVertex{Base: Base{W: 1}, VA: va, VB: vb}
}

func (c *VertexVertex) VertexIndices(*mesh.Mesh) []int { return []int{c.VA, c.VB} }

func (c *VertexVertex) points(V *mat.Dense) (p0, p1 mgl64.Vec3) {
	return mesh.Point(V, c.VA), mesh.Point(V, c.VB)
}

func (c *VertexVertex) Distance(_ *mesh.Mesh, V *mat.Dense) float64 {
	p0, p1 := c.points(V)
	return distance.PointPoint(p0, p1)
}

func (c *VertexVertex) Potential(m *mesh.Mesh, V *mat.Dense, dhat float64) float64 {
	return c.potential(c.Distance(m, V), dhat)
}

func (c *VertexVertex) Gradient(_ *mesh.Mesh, V *mat.Dense, dhat float64) []float64 {
	p0, p1 := c.points(V)
	return c.chainGradient(
		distance.PointPoint(p0, p1),
		distance.PointPointGradient(mesh.Dim(V), p0, p1), dhat)
}

func (c *VertexVertex) Hessian(_ *mesh.Mesh, V *mat.Dense, dhat float64, projectPSD bool) *mat.SymDense {
	p0, p1 := c.points(V)
	dim := mesh.Dim(V)
	return c.chainHessian(
		distance.PointPoint(p0, p1),
		distance.PointPointGradient(dim, p0, p1),
		distance.PointPointHessian(dim, p0, p1), dhat, projectPSD)
}

// EdgeVertex is the barrier between an edge and a vertex outside it.
type EdgeVertex struct {
	Base
	E, V int
}

// NewEdgeVertex builds a unit-weight edge-vertex constraint.
func NewEdgeVertex(e, v int) *EdgeVertex {
	return &EdgeVertex{Base: Base{W: 1}, E: e, V: v}
}

func (c *EdgeVertex) VertexIndices(m *mesh.Mesh) []int {
	e := m.Edges[c.E]
	return []int{c.V, e[0], e[1]}
}

func (c *EdgeVertex) points(m *mesh.Mesh, V *mat.Dense) (p, e0, e1 mgl64.Vec3) {
	e := m.Edges[c.E]
	return mesh.Point(V, c.V), mesh.Point(V, e[0]), mesh.Point(V, e[1])
}

func (c *EdgeVertex) Distance(m *mesh.Mesh, V *mat.Dense) float64 {
	p, e0, e1 := c.points(m, V)
	return distance.PointEdge(p, e0, e1)
}

func (c *EdgeVertex) Potential(m *mesh.Mesh, V *mat.Dense, dhat float64) float64 {
	return c.potential(c.Distance(m, V), dhat)
}

func (c *EdgeVertex) Gradient(m *mesh.Mesh, V *mat.Dense, dhat float64) []float64 {
	p, e0, e1 := c.points(m, V)
	r := distance.ClassifyPointEdge(p, e0, e1)
	return c.chainGradient(
		distance.PointEdge(p, e0, e1),
		distance.PointEdgeGradient(mesh.Dim(V), r, p, e0, e1), dhat)
}

func (c *EdgeVertex) Hessian(m *mesh.Mesh, V *mat.Dense, dhat float64, projectPSD bool) *mat.SymDense {
	p, e0, e1 := c.points(m, V)
	r := distance.ClassifyPointEdge(p, e0, e1)
	dim := mesh.Dim(V)
	return c.chainHessian(
		distance.PointEdge(p, e0, e1),
		distance.PointEdgeGradient(dim, r, p, e0, e1),
		distance.PointEdgeHessian(dim, r, p, e0, e1), dhat, projectPSD)
}

// FaceVertex is the barrier between a triangle and a vertex outside it.
type FaceVertex struct {
	Base
	F, V int
}

// NewFaceVertex builds a unit-weight face-vertex constraint.
func NewFaceVertex(f, v int) *FaceVertex {
	return &FaceVertex{Base: Base{W: 1}, F: f, V: v}
}

func (c *FaceVertex) VertexIndices(m *mesh.Mesh) []int {
	f := m.Faces[c.F]
	return []int{c.V, f[0], f[1], f[2]}
}

func (c *FaceVertex) points(m *mesh.Mesh, V *mat.Dense) (p, t0, t1, t2 mgl64.Vec3) {
	f := m.Faces[c.F]
	return mesh.Point(V, c.V), mesh.Point(V, f[0]), mesh.Point(V, f[1]), mesh.Point(V, f[2])
}

func (c *FaceVertex) Distance(m *mesh.Mesh, V *mat.Dense) float64 {
	p, t0, t1, t2 := c.points(m, V)
	return distance.PointTriangle(p, t0, t1, t2)
}

func (c *FaceVertex) Potential(m *mesh.Mesh, V *mat.Dense, dhat float64) float64 {
	return c.potential(c.Distance(m, V), dhat)
}

func (c *FaceVertex) Gradient(m *mesh.Mesh, V *mat.Dense, dhat float64) []float64 {
	p, t0, t1, t2 := c.points(m, V)
	r := distance.ClassifyPointTriangle(p, t0, t1, t2)
	return c.chainGradient(
		distance.PointTriangle(p, t0, t1, t2),
		distance.PointTriangleGradient(r, p, t0, t1, t2), dhat)
}

func (c *FaceVertex) Hessian(m *mesh.Mesh, V *mat.Dense, dhat float64, projectPSD bool) *mat.SymDense {
	p, t0, t1, t2 := c.points(m, V)
	r := distance.ClassifyPointTriangle(p, t0, t1, t2)
	return c.chainHessian(
		distance.PointTriangle(p, t0, t1, t2),
		distance.PointTriangleGradient(r, p, t0, t1, t2),
		distance.PointTriangleHessian(r, p, t0, t1, t2), dhat, projectPSD)
}
