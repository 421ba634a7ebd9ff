// Package broadphase enumerates candidate primitive pairs whose inflated
// bounding boxes overlap, either swept over a linear trajectory for
// continuous collision detection or in a single configuration for
// intersection testing.
//
// Two providers are available: a hashed uniform grid and a quadratic
// brute force reference. Both apply the same pair admission rules, so
// they return the same candidate sets up to ordering.
package broadphase

import (
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/ccd"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// ContinuousCollisionCandidate is a primitive pair that can be queried
// for contact along the trajectory V0 to V1.
type ContinuousCollisionCandidate interface {
	CCD(m *mesh.Mesh, V0, V1 *mat.Dense, o ccd.Options) (bool, float64)
}

// VertexVertex pairs two vertices. Emitted only between vertices that
// belong to no edge.
type VertexVertex struct {
	VA, VB int
}

// EdgeVertex pairs an edge with a vertex outside it.
type EdgeVertex struct {
	E, V int
}

// EdgeEdge pairs two edges that share no vertex.
type EdgeEdge struct {
	EA, EB int
}

// FaceVertex pairs a face with a vertex outside it.
type FaceVertex struct {
	F, V int
}

// EdgeFace pairs an edge with a face it is not part of. Used by the
// static intersection test, not by continuous collision detection.
type EdgeFace struct {
	E, F int
}

func (c VertexVertex) CCD(m *mesh.Mesh, V0, V1 *mat.Dense, o ccd.Options) (bool, float64) {
	return ccd.PointPoint(
		mesh.Point(V0, c.VA), mesh.Point(V0, c.VB),
		mesh.Point(V1, c.VA), mesh.Point(V1, c.VB), o)
}

func (c EdgeVertex) CCD(m *mesh.Mesh, V0, V1 *mat.Dense, o ccd.Options) (bool, float64) {
	e := m.Edges[c.E]
	return ccd.PointEdge(mesh.Dim(V0),
		mesh.Point(V0, c.V), mesh.Point(V0, e[0]), mesh.Point(V0, e[1]),
		mesh.Point(V1, c.V), mesh.Point(V1, e[0]), mesh.Point(V1, e[1]), o)
}

func (c EdgeEdge) CCD(m *mesh.Mesh, V0, V1 *mat.Dense, o ccd.Options) (bool, float64) {
	ea, eb := m.Edges[c.EA], m.Edges[c.EB]
	return ccd.EdgeEdge(
		mesh.Point(V0, ea[0]), mesh.Point(V0, ea[1]),
		mesh.Point(V0, eb[0]), mesh.Point(V0, eb[1]),
		mesh.Point(V1, ea[0]), mesh.Point(V1, ea[1]),
		mesh.Point(V1, eb[0]), mesh.Point(V1, eb[1]), o)
}

func (c FaceVertex) CCD(m *mesh.Mesh, V0, V1 *mat.Dense, o ccd.Options) (bool, float64) {
	f := m.Faces[c.F]
	return ccd.PointTriangle(
		mesh.Point(V0, c.V),
		mesh.Point(V0, f[0]), mesh.Point(V0, f[1]), mesh.Point(V0, f[2]),
		mesh.Point(V1, c.V),
		mesh.Point(V1, f[0]), mesh.Point(V1, f[1]), mesh.Point(V1, f[2]), o)
}

// Candidates aggregates the continuous collision candidates of a step.
type Candidates struct {
	VV []VertexVertex
	EV []EdgeVertex
	EE []EdgeEdge
	FV []FaceVertex
}

// Len returns the total number of candidates.
func (c *Candidates) Len() int {
	return len(c.VV) + len(c.EV) + len(c.EE) + len(c.FV)
}

// At addresses the candidates as one flat list, vertex-vertex first.
func (c *Candidates) At(i int) ContinuousCollisionCandidate {
	if i < len(c.VV) {
		return c.VV[i]
	}
	i -= len(c.VV)
	if i < len(c.EV) {
		return c.EV[i]
	}
	i -= len(c.EV)
	if i < len(c.EE) {
		return c.EE[i]
	}
	i -= len(c.EE)
	return c.FV[i]
}

// IntersectionCandidates aggregates the pairs a static intersection test
// must examine: edge-edge in 2D, edge-face in 3D.
type IntersectionCandidates struct {
	EE []EdgeEdge
	EF []EdgeFace
}

// canCollide applies the pair admission rule: primitives sharing a vertex
// never collide, and when the mesh carries a vertex filter at least one
// cross pair of vertices must pass it.
func canCollide(m *mesh.Mesh, va, vb []int) bool {
	for _, a := range va {
		for _, b := range vb {
			if a == b {
				return false
			}
		}
	}
	if m.CanCollide == nil {
		return true
	}
	for _, a := range va {
		for _, b := range vb {
			if m.CanCollide(a, b) {
				return true
			}
		}
	}
	return false
}
