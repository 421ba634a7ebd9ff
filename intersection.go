package ipc

import (
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/broadphase"
	"github.com/andreayres/ipc-toolkit/mesh"
	"github.com/andreayres/ipc-toolkit/predicates"
)

// HasIntersections reports whether the configuration already intersects
// itself: crossing edge pairs in 2D, edges piercing faces in 3D. Mere
// proximity does not count; the tests are exact. The search stops at
// the first confirmed intersection.
func HasIntersections(m *mesh.Mesh, V *mat.Dense, method broadphase.Method) bool {
	m.MustMatch(V)

	// The inflation is proportional to the scene extent so the query
	// behaves identically under uniform rescaling.
	inflation := 1e-2 * mesh.BoundingBoxDiagonal(V)
	cands := broadphase.DetectIntersections(m, V, inflation, method)

	if mesh.Dim(V) == 2 {
		for _, c := range cands.EE {
			ea, eb := m.Edges[c.EA], m.Edges[c.EB]
			if predicates.SegmentsIntersect(
				mesh.Point2(V, ea[0]), mesh.Point2(V, ea[1]),
				mesh.Point2(V, eb[0]), mesh.Point2(V, eb[1])) {
				return true
			}
		}
		return false
	}

	for _, c := range cands.EF {
		e, f := m.Edges[c.E], m.Faces[c.F]
		if predicates.SegmentIntersectsTriangle(
			mesh.Point(V, e[0]), mesh.Point(V, e[1]),
			mesh.Point(V, f[0]), mesh.Point(V, f[1]), mesh.Point(V, f[2])) {
			return true
		}
	}
	return false
}
