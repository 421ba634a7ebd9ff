package mesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

func TestNew_DerivesEdgesFromFaces(t *testing.T) {
	m := New(4, nil, [][3]int{{0, 1, 2}, {0, 2, 3}})

	wantEdges := [][2]int{{0, 1}, {1, 2}, {0, 2}, {2, 3}, {0, 3}}
	if len(m.Edges) != len(wantEdges) {
		t.Fatalf("derived %d edges, want %d", len(m.Edges), len(wantEdges))
	}
	for i, want := range wantEdges {
		if m.Edges[i] != want {
			t.Errorf("edge %d = %v, want %v", i, m.Edges[i], want)
		}
	}

	wantFaceEdges := [][3]int{{0, 1, 2}, {2, 3, 4}}
	for f, want := range wantFaceEdges {
		if m.FaceEdges[f] != want {
			t.Errorf("face %d edges = %v, want %v", f, m.FaceEdges[f], want)
		}
	}
}

func TestNew_ReusesGivenEdges(t *testing.T) {
	m := New(3, [][2]int{{1, 0}}, [][3]int{{0, 1, 2}})

	// The shared edge is found regardless of its stored orientation; only
	// the two missing boundary edges are added.
	if len(m.Edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(m.Edges))
	}
	if m.FaceEdges[0][0] != 0 {
		t.Errorf("face edge 0 = %d, want the given edge 0", m.FaceEdges[0][0])
	}
}

func TestNew_FaceEdgesJoinConsecutiveVertices(t *testing.T) {
	m := New(5, nil, [][3]int{{0, 1, 2}, {2, 1, 4}, {0, 2, 3}})
	for f, face := range m.Faces {
		for k := 0; k < 3; k++ {
			e := m.Edges[m.FaceEdges[f][k]]
			a, b := face[k], face[(k+1)%3]
			if !(e == [2]int{a, b} || e == [2]int{b, a}) {
				t.Errorf("face %d edge %d = %v, want to join %d and %d", f, k, e, a, b)
			}
		}
	}
}

func TestMustMatch(t *testing.T) {
	m := New(3, nil, nil)

	m.MustMatch(mat.NewDense(3, 2, nil))
	m.MustMatch(mat.NewDense(3, 3, nil))

	tests := []struct {
		name string
		V    *mat.Dense
	}{
		{"wrong row count", mat.NewDense(4, 3, nil)},
		{"wrong column count", mat.NewDense(3, 4, nil)},
		{"non-finite coordinate", mat.NewDense(3, 3, []float64{
			0, 0, 0,
			1, math.NaN(), 0,
			0, 1, 0,
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected a panic")
				}
			}()
			m.MustMatch(tt.V)
		})
	}
}

func TestPoint_Embeds2DWithZeroZ(t *testing.T) {
	V := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if got := Point(V, 1); got != (mgl64.Vec3{3, 4, 0}) {
		t.Errorf("Point = %v, want [3 4 0]", got)
	}
	if got := Point2(V, 0); got != (mgl64.Vec2{1, 2}) {
		t.Errorf("Point2 = %v, want [1 2]", got)
	}
}

func TestBoundingBoxDiagonal(t *testing.T) {
	V2 := mat.NewDense(3, 2, []float64{
		0, 0,
		3, 1,
		3, 4,
	})
	if got := BoundingBoxDiagonal(V2); math.Abs(got-5) > 1e-15 {
		t.Errorf("2d diagonal = %g, want 5", got)
	}

	V3 := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		1, 2, 2,
	})
	if got := BoundingBoxDiagonal(V3); math.Abs(got-3) > 1e-15 {
		t.Errorf("3d diagonal = %g, want 3", got)
	}
}

func TestFilter(t *testing.T) {
	m := New(2, nil, nil)
	if !m.Filter()(0, 1) {
		t.Error("nil filter must allow every pair")
	}

	m.CanCollide = func(i, j int) bool { return i != 0 && j != 0 }
	if m.Filter()(0, 1) {
		t.Error("filter must reject pairs containing vertex 0")
	}
	if !m.Filter()(1, 2) {
		t.Error("filter must keep pairs it accepts")
	}
}
