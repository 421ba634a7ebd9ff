package broadphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/mesh"
)

// Method selects the broad phase provider.
type Method int

const (
	// HashGrid hashes inflated primitive boxes into a power-of-two
	// array of cells and tests only co-resident pairs.
	HashGrid Method = iota
	// BruteForce tests every admissible pair. Quadratic; serves as the
	// reference the grid is validated against.
	BruteForce
)

// box is an axis-aligned bounding box.
type box struct {
	min, max mgl64.Vec3
}

func (b box) overlaps(o box) bool {
	return b.min.X() <= o.max.X() && o.min.X() <= b.max.X() &&
		b.min.Y() <= o.max.Y() && o.min.Y() <= b.max.Y() &&
		b.min.Z() <= o.max.Z() && o.min.Z() <= b.max.Z()
}

func (b box) union(o box) box {
	return box{
		min: mgl64.Vec3{
			math.Min(b.min.X(), o.min.X()),
			math.Min(b.min.Y(), o.min.Y()),
			math.Min(b.min.Z(), o.min.Z()),
		},
		max: mgl64.Vec3{
			math.Max(b.max.X(), o.max.X()),
			math.Max(b.max.Y(), o.max.Y()),
			math.Max(b.max.Z(), o.max.Z()),
		},
	}
}

// sweptBox bounds a point over its linear trajectory, inflated on all
// sides.
func sweptBox(p0, p1 mgl64.Vec3, inflation float64) box {
	return box{
		min: mgl64.Vec3{
			math.Min(p0.X(), p1.X()) - inflation,
			math.Min(p0.Y(), p1.Y()) - inflation,
			math.Min(p0.Z(), p1.Z()) - inflation,
		},
		max: mgl64.Vec3{
			math.Max(p0.X(), p1.X()) + inflation,
			math.Max(p0.Y(), p1.Y()) + inflation,
			math.Max(p0.Z(), p1.Z()) + inflation,
		},
	}
}

func vertexBoxes(m *mesh.Mesh, V0, V1 *mat.Dense, inflation float64) []box {
	boxes := make([]box, m.NumVertices)
	for i := range boxes {
		boxes[i] = sweptBox(mesh.Point(V0, i), mesh.Point(V1, i), inflation)
	}
	return boxes
}

func edgeBoxes(m *mesh.Mesh, vb []box) []box {
	boxes := make([]box, len(m.Edges))
	for i, e := range m.Edges {
		boxes[i] = vb[e[0]].union(vb[e[1]])
	}
	return boxes
}

func faceBoxes(m *mesh.Mesh, vb []box) []box {
	boxes := make([]box, len(m.Faces))
	for i, f := range m.Faces {
		boxes[i] = vb[f[0]].union(vb[f[1]]).union(vb[f[2]])
	}
	return boxes
}

// codimVertices flags vertices that belong to no edge. Only those take
// part in vertex-vertex detection and, in 3D, edge-vertex detection.
func codimVertices(m *mesh.Mesh) []bool {
	codim := make([]bool, m.NumVertices)
	for i := range codim {
		codim[i] = true
	}
	for _, e := range m.Edges {
		codim[e[0]] = false
		codim[e[1]] = false
	}
	return codim
}

// Detect enumerates the continuous collision candidates of the linear
// trajectory from V0 to V1, with every primitive box inflated on all
// sides by inflation. In 2D the candidates are vertex-vertex and
// edge-vertex pairs; in 3D additionally edge-edge and face-vertex.
func Detect(m *mesh.Mesh, V0, V1 *mat.Dense, inflation float64, method Method) *Candidates {
	m.MustMatch(V0)
	m.MustMatch(V1)
	if mesh.Dim(V0) != mesh.Dim(V1) {
		panic("ipc: start and end configurations have different dimensions")
	}

	vb := vertexBoxes(m, V0, V1, inflation)
	eb := edgeBoxes(m, vb)
	fb := faceBoxes(m, vb)
	dim := mesh.Dim(V0)

	switch method {
	case BruteForce:
		return bruteCandidates(m, dim, vb, eb, fb)
	case HashGrid:
		return gridCandidates(m, dim, vb, eb, fb)
	}
	panic("ipc: unknown broad phase method")
}

// DetectIntersections enumerates the pairs a static self-intersection
// test must examine: edge-edge in 2D, edge-face in 3D. Boxes come from
// the single configuration V inflated by inflation.
func DetectIntersections(m *mesh.Mesh, V *mat.Dense, inflation float64, method Method) IntersectionCandidates {
	m.MustMatch(V)

	vb := vertexBoxes(m, V, V, inflation)
	eb := edgeBoxes(m, vb)
	fb := faceBoxes(m, vb)
	dim := mesh.Dim(V)

	var ic IntersectionCandidates
	switch method {
	case BruteForce:
		if dim == 2 {
			for a := range m.Edges {
				for b := a + 1; b < len(m.Edges); b++ {
					if eb[a].overlaps(eb[b]) && canCollide(m, m.Edges[a][:], m.Edges[b][:]) {
						ic.EE = append(ic.EE, EdgeEdge{a, b})
					}
				}
			}
		} else {
			for ei, e := range m.Edges {
				for fi, f := range m.Faces {
					if eb[ei].overlaps(fb[fi]) && canCollide(m, e[:], f[:]) {
						ic.EF = append(ic.EF, EdgeFace{ei, fi})
					}
				}
			}
		}
	case HashGrid:
		if dim == 2 {
			g := newGrid(eb)
			for i, b := range eb {
				g.insertEdge(i, b)
			}
			seen := make([]bool, len(eb))
			var hits []int
			for a := range m.Edges {
				hits = g.scan(eb[a], pickEdges, seen, hits[:0])
				for _, b := range hits {
					if b <= a || !eb[a].overlaps(eb[b]) {
						continue
					}
					if canCollide(m, m.Edges[a][:], m.Edges[b][:]) {
						ic.EE = append(ic.EE, EdgeEdge{a, b})
					}
				}
			}
		} else {
			g := newGrid(eb, fb)
			for i, b := range fb {
				g.insertFace(i, b)
			}
			seen := make([]bool, len(fb))
			var hits []int
			for ei, e := range m.Edges {
				hits = g.scan(eb[ei], pickFaces, seen, hits[:0])
				for _, fi := range hits {
					if !eb[ei].overlaps(fb[fi]) {
						continue
					}
					if canCollide(m, e[:], m.Faces[fi][:]) {
						ic.EF = append(ic.EF, EdgeFace{ei, fi})
					}
				}
			}
		}
	default:
		panic("ipc: unknown broad phase method")
	}
	return ic
}

func bruteCandidates(m *mesh.Mesh, dim int, vb, eb, fb []box) *Candidates {
	codim := codimVertices(m)
	c := &Candidates{}

	for a := 0; a < m.NumVertices; a++ {
		if !codim[a] {
			continue
		}
		for b := a + 1; b < m.NumVertices; b++ {
			if !codim[b] || !vb[a].overlaps(vb[b]) {
				continue
			}
			if canCollide(m, []int{a}, []int{b}) {
				c.VV = append(c.VV, VertexVertex{a, b})
			}
		}
	}

	for ei, e := range m.Edges {
		for v := 0; v < m.NumVertices; v++ {
			if dim == 3 && !codim[v] {
				continue
			}
			if !eb[ei].overlaps(vb[v]) {
				continue
			}
			if canCollide(m, e[:], []int{v}) {
				c.EV = append(c.EV, EdgeVertex{ei, v})
			}
		}
	}

	if dim == 3 {
		for a := range m.Edges {
			for b := a + 1; b < len(m.Edges); b++ {
				if !eb[a].overlaps(eb[b]) {
					continue
				}
				if canCollide(m, m.Edges[a][:], m.Edges[b][:]) {
					c.EE = append(c.EE, EdgeEdge{a, b})
				}
			}
		}
		for fi, f := range m.Faces {
			for v := 0; v < m.NumVertices; v++ {
				if !fb[fi].overlaps(vb[v]) {
					continue
				}
				if canCollide(m, f[:], []int{v}) {
					c.FV = append(c.FV, FaceVertex{fi, v})
				}
			}
		}
	}
	return c
}

func gridCandidates(m *mesh.Mesh, dim int, vb, eb, fb []box) *Candidates {
	codim := codimVertices(m)
	g := newGrid(vb, eb, fb)

	for i, b := range vb {
		g.insertVertex(i, b)
	}
	if dim == 3 {
		for i, b := range eb {
			g.insertEdge(i, b)
		}
	}

	c := &Candidates{}
	seenV := make([]bool, len(vb))
	seenE := make([]bool, len(eb))
	var hits []int

	for a := 0; a < m.NumVertices; a++ {
		if !codim[a] {
			continue
		}
		hits = g.scan(vb[a], pickVertices, seenV, hits[:0])
		for _, b := range hits {
			if b <= a || !codim[b] || !vb[a].overlaps(vb[b]) {
				continue
			}
			if canCollide(m, []int{a}, []int{b}) {
				c.VV = append(c.VV, VertexVertex{a, b})
			}
		}
	}

	for ei, e := range m.Edges {
		hits = g.scan(eb[ei], pickVertices, seenV, hits[:0])
		for _, v := range hits {
			if dim == 3 && !codim[v] {
				continue
			}
			if !eb[ei].overlaps(vb[v]) {
				continue
			}
			if canCollide(m, e[:], []int{v}) {
				c.EV = append(c.EV, EdgeVertex{ei, v})
			}
		}
	}

	if dim == 3 {
		for a := range m.Edges {
			hits = g.scan(eb[a], pickEdges, seenE, hits[:0])
			for _, b := range hits {
				if b <= a || !eb[a].overlaps(eb[b]) {
					continue
				}
				if canCollide(m, m.Edges[a][:], m.Edges[b][:]) {
					c.EE = append(c.EE, EdgeEdge{a, b})
				}
			}
		}
		for fi, f := range m.Faces {
			hits = g.scan(fb[fi], pickVertices, seenV, hits[:0])
			for _, v := range hits {
				if !fb[fi].overlaps(vb[v]) {
					continue
				}
				if canCollide(m, f[:], []int{v}) {
					c.FV = append(c.FV, FaceVertex{fi, v})
				}
			}
		}
	}
	return c
}

type cellKey struct {
	x, y, z int
}

type cell struct {
	vertices []int
	edges    []int
	faces    []int
}

func pickVertices(c *cell) []int { return c.vertices }
func pickEdges(c *cell) []int    { return c.edges }
func pickFaces(c *cell) []int    { return c.faces }

// grid is a uniform spatial grid whose cells are hashed into a fixed
// power-of-two array, so unbounded worlds need no bounded index space.
type grid struct {
	cellSize float64
	cells    []cell
	mask     int
}

// newGrid sizes the grid for the boxes it will hold: cells twice the
// mean box extent, and a cell count on the order of the primitive count.
func newGrid(boxSets ...[]box) *grid {
	n := 0
	extent := 0.0
	for _, boxes := range boxSets {
		n += len(boxes)
		for _, b := range boxes {
			d := b.max.Sub(b.min)
			extent += math.Max(d.X(), math.Max(d.Y(), d.Z()))
		}
	}
	cellSize := 1.0
	if n > 0 && extent > 0 {
		cellSize = 2 * extent / float64(n)
	}
	numCells := nextPowerOfTwo(max(64, 2*n))
	return &grid{
		cellSize: cellSize,
		cells:    make([]cell, numCells),
		mask:     numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func (g *grid) cellOf(p mgl64.Vec3) cellKey {
	return cellKey{
		x: int(math.Floor(p.X() / g.cellSize)),
		y: int(math.Floor(p.Y() / g.cellSize)),
		z: int(math.Floor(p.Z() / g.cellSize)),
	}
}

func (g *grid) hash(k cellKey) int {
	h := (k.x * 73856093) ^ (k.y * 19349663) ^ (k.z * 83492791)
	return h & g.mask
}

// visit calls fn with the hashed index of every cell the box covers.
func (g *grid) visit(b box, fn func(int)) {
	lo, hi := g.cellOf(b.min), g.cellOf(b.max)
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				fn(g.hash(cellKey{x, y, z}))
			}
		}
	}
}

func (g *grid) insertVertex(i int, b box) {
	g.visit(b, func(h int) { g.cells[h].vertices = append(g.cells[h].vertices, i) })
}

func (g *grid) insertEdge(i int, b box) {
	g.visit(b, func(h int) { g.cells[h].edges = append(g.cells[h].edges, i) })
}

func (g *grid) insertFace(i int, b box) {
	g.visit(b, func(h int) { g.cells[h].faces = append(g.cells[h].faces, i) })
}

// scan collects the distinct indices picked from every cell the box
// covers, appending to hits. seen must be sized for the picked family
// and is left cleared.
func (g *grid) scan(b box, pick func(*cell) []int, seen []bool, hits []int) []int {
	g.visit(b, func(h int) {
		for _, i := range pick(&g.cells[h]) {
			if !seen[i] {
				seen[i] = true
				hits = append(hits, i)
			}
		}
	})
	for _, i := range hits {
		seen[i] = false
	}
	return hits
}
