package ipc

import (
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/broadphase"
	"github.com/andreayres/ipc-toolkit/constraint"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// Constraints runs broad and narrow phase over the static configuration
// V and returns the set of active barrier constraints. rest supplies
// the rest positions from which edge-edge mollifier thresholds are
// computed; dmin is an additional clearance every pair must keep beyond
// the barrier activation distance dhat.
func Constraints(m *mesh.Mesh, rest, V *mat.Dense, dhat, dmin float64, method broadphase.Method) *constraint.Set {
	m.MustMatch(rest)
	m.MustMatch(V)

	// Two boxes each inflated by r see every gap of at most 2r, so half
	// the activation distance catches every pair the barrier can touch.
	inflation := (dhat + dmin) / 2
	cands := broadphase.Detect(m, V, V, inflation, method)
	return constraint.Build(m, rest, V, cands, dhat, dmin)
}
