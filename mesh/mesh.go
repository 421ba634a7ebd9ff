// Package mesh holds the surface mesh description shared by the broad phase,
// the narrow phase and the potential assembly: vertex count, edge and face
// connectivity, and the collision filter deciding which vertex pairs may ever
// collide. Vertex positions live outside the mesh, as one dense matrix row
// per vertex, so several configurations (step start, step end, rest shape)
// can reference the same connectivity.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Mesh is the connectivity of a 2D or 3D surface mesh. It is never mutated
// by this library.
type Mesh struct {
	// NumVertices is the number of surface vertices; configuration matrices
	// must have exactly this many rows.
	NumVertices int
	// Edges lists vertex index pairs, one row per surface edge.
	Edges [][2]int
	// Faces lists vertex index triples, one row per surface triangle.
	// Empty for 2D meshes.
	Faces [][3]int
	// FaceEdges maps each face to its three edge indices: FaceEdges[f][k] is the
	// row of Edges joining Faces[f][k] and Faces[f][(k+1)%3].
	FaceEdges [][3]int
	// CanCollide reports whether the two given vertices (and the edges or
	// faces containing them) are allowed to collide. A nil filter allows
	// every pair.
	CanCollide func(i, j int) bool
}

// New builds a mesh from vertex count, edges and faces. If edges is nil and
// faces are given, the unique undirected edges are derived from the faces.
// The face-to-edge map is always rebuilt so that narrow-phase reductions from
// triangles to their boundary edges can name an edge index.
func New(numVertices int, edges [][2]int, faces [][3]int) *Mesh {
	m := &Mesh{NumVertices: numVertices, Edges: edges, Faces: faces}

	index := make(map[[2]int]int, len(edges)+3*len(faces))
	for i, e := range edges {
		index[sortedPair(e[0], e[1])] = i
	}

	if len(faces) > 0 {
		m.FaceEdges = make([][3]int, len(faces))
		for f, face := range faces {
			for k := 0; k < 3; k++ {
				key := sortedPair(face[k], face[(k+1)%3])
				ei, ok := index[key]
				if !ok {
					ei = len(m.Edges)
					m.Edges = append(m.Edges, [2]int{key[0], key[1]})
					index[key] = ei
				}
				m.FaceEdges[f][k] = ei
			}
		}
	}

	return m
}

// sortedPair normalizes an undirected vertex pair for map lookups.
func sortedPair(a, b int) [2]int {
	if b < a {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Filter returns the active collision filter, substituting an allow-all
// filter when CanCollide is nil.
func (m *Mesh) Filter() func(i, j int) bool {
	if m.CanCollide != nil {
		return m.CanCollide
	}
	return func(int, int) bool { return true }
}

// MustMatch panics unless V holds one row per mesh vertex with a 2D or 3D
// column count and every coordinate finite. Mismatches are caller bugs, not
// runtime conditions; a NaN that slipped through would not fail loudly, it
// would silently empty the candidate and constraint sets.
func (m *Mesh) MustMatch(V *mat.Dense) {
	r, c := V.Dims()
	if r != m.NumVertices {
		panic("ipc: configuration has a row count different from the mesh vertex count")
	}
	if c != 2 && c != 3 {
		panic("ipc: configuration must have 2 or 3 columns")
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := V.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				panic("ipc: configuration contains a non-finite coordinate")
			}
		}
	}
}

// Dim returns the coordinate dimension (column count) of a configuration.
func Dim(V *mat.Dense) int {
	_, c := V.Dims()
	return c
}

// Point returns vertex i of V embedded in 3D; 2D configurations get z = 0.
// The squared-distance kernels are invariant under this embedding, which is
// how one set of formulas serves both dimensions.
func Point(V *mat.Dense, i int) mgl64.Vec3 {
	if Dim(V) == 2 {
		return mgl64.Vec3{V.At(i, 0), V.At(i, 1), 0}
	}
	return mgl64.Vec3{V.At(i, 0), V.At(i, 1), V.At(i, 2)}
}

// Point2 returns vertex i of a 2D configuration.
func Point2(V *mat.Dense, i int) mgl64.Vec2 {
	return mgl64.Vec2{V.At(i, 0), V.At(i, 1)}
}

// BoundingBoxDiagonal returns the length of the diagonal of the axis-aligned
// box enclosing every vertex of V. Used to pick scale-invariant inflation
// radii.
func BoundingBoxDiagonal(V *mat.Dense) float64 {
	r, c := V.Dims()
	if r == 0 {
		return 0
	}
	var diag2 float64
	for j := 0; j < c; j++ {
		lo, hi := V.At(0, j), V.At(0, j)
		for i := 1; i < r; i++ {
			v := V.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		diag2 += (hi - lo) * (hi - lo)
	}
	return math.Sqrt(diag2)
}
