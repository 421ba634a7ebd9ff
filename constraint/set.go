package constraint

import (
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/broadphase"
	"github.com/andreayres/ipc-toolkit/distance"
	"github.com/andreayres/ipc-toolkit/mesh"
)

// Set holds the active constraints of one configuration, grouped by kind.
type Set struct {
	VV []*VertexVertex
	EV []*EdgeVertex
	EE []*EdgeEdge
	FV []*FaceVertex
}

// Len returns the total number of constraints.
func (s *Set) Len() int {
	return len(s.VV) + len(s.EV) + len(s.EE) + len(s.FV)
}

// At returns constraint i, counting vertex-vertex first, then
// edge-vertex, edge-edge and face-vertex.
func (s *Set) At(i int) Constraint {
	if i < len(s.VV) {
		return s.VV[i]
	}
	i -= len(s.VV)
	if i < len(s.EV) {
		return s.EV[i]
	}
	i -= len(s.EV)
	if i < len(s.EE) {
		return s.EE[i]
	}
	return s.FV[i-len(s.EE)]
}

// builder accumulates constraints during narrow phase. Reduced
// vertex-vertex and edge-vertex constraints are deduplicated by feature
// pair, and each duplicate bumps the weight of the constraint it merges
// into so the assembled potential counts every contributing candidate.
type builder struct {
	m    *mesh.Mesh
	dmin float64
	vv   map[[2]int]*VertexVertex
	ev   map[[2]int]*EdgeVertex
	set  *Set
}

func (b *builder) addVertexVertex(va, vb int) {
	if vb < va {
		va, vb = vb, va
	}
	key := [2]int{va, vb}
	if c, ok := b.vv[key]; ok {
		c.W++
		return
	}
	c := NewVertexVertex(va, vb)
	c.MinDistance = b.dmin
	b.vv[key] = c
	b.set.VV = append(b.set.VV, c)
}

func (b *builder) addEdgeVertex(e, v int) {
	key := [2]int{e, v}
	if c, ok := b.ev[key]; ok {
		c.W++
		return
	}
	c := NewEdgeVertex(e, v)
	c.MinDistance = b.dmin
	b.ev[key] = c
	b.set.EV = append(b.set.EV, c)
}

// Build runs the narrow phase: it evaluates the distance of every
// candidate pair against the barrier support and keeps the active ones
// as constraints. Candidates whose closest feature is a sub-feature of
// the pair (a point near an edge endpoint, a point over a triangle edge
// or corner) are reduced to the constraint of that sub-feature, so the
// assembled potential stays C1 as closest features change between
// iterations. Edge-edge pairs are never reduced; their mollifier
// threshold is fixed from the rest configuration.
func Build(m *mesh.Mesh, rest, V *mat.Dense, c *broadphase.Candidates, dhat, dmin float64) *Set {
	// The barrier reaches zero at d*d == (dhat+dmin)^2.
	active := (dhat + dmin) * (dhat + dmin)

	b := &builder{
		m:    m,
		dmin: dmin,
		vv:   make(map[[2]int]*VertexVertex),
		ev:   make(map[[2]int]*EdgeVertex),
		set:  &Set{},
	}

	for _, cand := range c.VV {
		pa, pb := mesh.Point(V, cand.VA), mesh.Point(V, cand.VB)
		if distance.PointPoint(pa, pb) < active {
			b.addVertexVertex(cand.VA, cand.VB)
		}
	}

	for _, cand := range c.EV {
		e := m.Edges[cand.E]
		p := mesh.Point(V, cand.V)
		e0, e1 := mesh.Point(V, e[0]), mesh.Point(V, e[1])
		if distance.PointEdge(p, e0, e1) >= active {
			continue
		}
		switch distance.ClassifyPointEdge(p, e0, e1) {
		case distance.PointEdgeE0:
			b.addVertexVertex(cand.V, e[0])
		case distance.PointEdgeE1:
			b.addVertexVertex(cand.V, e[1])
		default:
			b.addEdgeVertex(cand.E, cand.V)
		}
	}

	for _, cand := range c.EE {
		ea, eb := m.Edges[cand.EA], m.Edges[cand.EB]
		ea0, ea1 := mesh.Point(V, ea[0]), mesh.Point(V, ea[1])
		eb0, eb1 := mesh.Point(V, eb[0]), mesh.Point(V, eb[1])
		if distance.EdgeEdge(ea0, ea1, eb0, eb1) >= active {
			continue
		}
		epsX := MollifierThreshold(
			mesh.Point(rest, ea[0]), mesh.Point(rest, ea[1]),
			mesh.Point(rest, eb[0]), mesh.Point(rest, eb[1]))
		ee := NewEdgeEdge(cand.EA, cand.EB, epsX)
		ee.MinDistance = dmin
		b.set.EE = append(b.set.EE, ee)
	}

	for _, cand := range c.FV {
		f := m.Faces[cand.F]
		p := mesh.Point(V, cand.V)
		t0, t1, t2 := mesh.Point(V, f[0]), mesh.Point(V, f[1]), mesh.Point(V, f[2])
		if distance.PointTriangle(p, t0, t1, t2) >= active {
			continue
		}
		switch distance.ClassifyPointTriangle(p, t0, t1, t2) {
		case distance.PointTriangleT0:
			b.addVertexVertex(cand.V, f[0])
		case distance.PointTriangleT1:
			b.addVertexVertex(cand.V, f[1])
		case distance.PointTriangleT2:
			b.addVertexVertex(cand.V, f[2])
		case distance.PointTriangleE0:
			b.addEdgeVertex(m.FaceEdges[cand.F][0], cand.V)
		case distance.PointTriangleE1:
			b.addEdgeVertex(m.FaceEdges[cand.F][1], cand.V)
		case distance.PointTriangleE2:
			b.addEdgeVertex(m.FaceEdges[cand.F][2], cand.V)
		default:
			fv := NewFaceVertex(cand.F, cand.V)
			fv.MinDistance = dmin
			b.set.FV = append(b.set.FV, fv)
		}
	}

	return b.set
}
