package distance

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Test helper functions

func flat(pts ...mgl64.Vec3) []float64 {
	x := make([]float64, 0, 3*len(pts))
	for _, p := range pts {
		x = append(x, p.X(), p.Y(), p.Z())
	}
	return x
}

func unflat(x []float64) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(x)/3)
	for i := range pts {
		pts[i] = mgl64.Vec3{x[3*i], x[3*i+1], x[3*i+2]}
	}
	return pts
}

// fdGradient computes a central finite difference gradient of f.
func fdGradient(f func([]float64) float64, x []float64) []float64 {
	const h = 1e-6
	g := make([]float64, len(x))
	for i := range x {
		xp := append([]float64(nil), x...)
		xm := append([]float64(nil), x...)
		xp[i] += h
		xm[i] -= h
		g[i] = (f(xp) - f(xm)) / (2 * h)
	}
	return g
}

func maxAbsDiff(a, b []float64) float64 {
	var m float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}

func TestPointPoint(t *testing.T) {
	tests := []struct {
		name     string
		p0, p1   mgl64.Vec3
		expected float64
	}{
		{"coincident", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 2, 3}, 0},
		{"unit x", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 1},
		{"diagonal", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 3, 5}, 1 + 4 + 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointPoint(tt.p0, tt.p1); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("PointPoint(%v, %v) = %v, want %v", tt.p0, tt.p1, got, tt.expected)
			}
		})
	}
}

func TestClassifyPointEdge(t *testing.T) {
	e0 := mgl64.Vec3{-1, 0, 0}
	e1 := mgl64.Vec3{1, 0.1, 0.2}

	tests := []struct {
		name     string
		p        mgl64.Vec3
		expected PointEdgeRegion
	}{
		{"interior", mgl64.Vec3{0.3, 1.2, -0.4}, PointEdgeInterior},
		{"before e0", mgl64.Vec3{-2, 1, 0}, PointEdgeE0},
		{"past e1", mgl64.Vec3{3, 0, 0}, PointEdgeE1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPointEdge(tt.p, e0, e1); got != tt.expected {
				t.Errorf("ClassifyPointEdge(%v) = %v, want %v", tt.p, got, tt.expected)
			}
		})
	}

	t.Run("degenerate edge", func(t *testing.T) {
		q := mgl64.Vec3{1, 1, 1}
		if got := ClassifyPointEdge(mgl64.Vec3{5, 0, 0}, q, q); got != PointEdgeE0 {
			t.Errorf("degenerate edge classified as %v, want PointEdgeE0", got)
		}
	})
}

func TestPointEdge(t *testing.T) {
	e0 := mgl64.Vec3{-1, 0, 0}
	e1 := mgl64.Vec3{1, 0, 0}

	tests := []struct {
		name     string
		p        mgl64.Vec3
		expected float64
	}{
		{"above interior", mgl64.Vec3{0.25, 2, 0}, 4},
		{"beyond e0", mgl64.Vec3{-3, 0, 0}, 4},
		{"beyond e1", mgl64.Vec3{2, 1, 0}, 2},
		{"on edge", mgl64.Vec3{0.5, 0, 0}, 0},
		{"off plane", mgl64.Vec3{0, 1, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointEdge(tt.p, e0, e1); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("PointEdge(%v) = %v, want %v", tt.p, got, tt.expected)
			}
		})
	}
}

func TestClassifyPointTriangle(t *testing.T) {
	t0 := mgl64.Vec3{0, 0, 0}
	t1 := mgl64.Vec3{2, 0, 0}
	t2 := mgl64.Vec3{0, 2, 0}

	tests := []struct {
		name     string
		p        mgl64.Vec3
		expected PointTriangleRegion
	}{
		{"interior", mgl64.Vec3{0.5, 0.5, 0.8}, PointTriangleInterior},
		{"vertex t0", mgl64.Vec3{-1, -1, 0.3}, PointTriangleT0},
		{"vertex t1", mgl64.Vec3{3, -0.5, 0.4}, PointTriangleT1},
		{"vertex t2", mgl64.Vec3{-0.5, 3, 0}, PointTriangleT2},
		{"edge t0t1", mgl64.Vec3{1, -1, 0.5}, PointTriangleE0},
		{"edge t1t2", mgl64.Vec3{1.5, 1.5, -0.2}, PointTriangleE1},
		{"edge t2t0", mgl64.Vec3{-1, 1, 0.1}, PointTriangleE2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPointTriangle(tt.p, t0, t1, t2); got != tt.expected {
				t.Errorf("ClassifyPointTriangle(%v) = %v, want %v", tt.p, got, tt.expected)
			}
		})
	}
}

func TestPointTriangle(t *testing.T) {
	t0 := mgl64.Vec3{0, 0, 0}
	t1 := mgl64.Vec3{2, 0, 0}
	t2 := mgl64.Vec3{0, 2, 0}

	tests := []struct {
		name     string
		p        mgl64.Vec3
		expected float64
	}{
		{"above interior", mgl64.Vec3{0.5, 0.5, 0.8}, 0.64},
		{"near vertex t1", mgl64.Vec3{3, -0.5, 0.4}, 1 + 0.25 + 0.16},
		{"near edge t0t1", mgl64.Vec3{1, -1, 0.5}, 1 + 0.25},
		{"on surface", mgl64.Vec3{0.25, 0.25, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointTriangle(tt.p, t0, t1, t2); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("PointTriangle(%v) = %v, want %v", tt.p, got, tt.expected)
			}
		})
	}
}

func TestClassifyEdgeEdge(t *testing.T) {
	tests := []struct {
		name               string
		ea0, ea1, eb0, eb1 mgl64.Vec3
		expected           EdgeEdgeRegion
	}{
		{
			"crossing interiors",
			mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{0, -1, 1}, mgl64.Vec3{0, 1, 1},
			EdgeEdgeAB,
		},
		{
			"endpoint endpoint",
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{2, 0.5, 0}, mgl64.Vec3{3, 1, 0},
			EdgeEdgeA1B0,
		},
		{
			"endpoint of A against interior of B",
			mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 3, 0},
			mgl64.Vec3{-2, 0, 0}, mgl64.Vec3{2, 0, 0},
			EdgeEdgeA0B,
		},
		{
			"parallel overlapping",
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{0.25, 1, 0}, mgl64.Vec3{1.25, 1, 0},
			EdgeEdgeAB0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyEdgeEdge(tt.ea0, tt.ea1, tt.eb0, tt.eb1); got != tt.expected {
				t.Errorf("ClassifyEdgeEdge = %v, want %v", got, tt.expected)
			}
		})
	}

	t.Run("degenerate edge A", func(t *testing.T) {
		p := mgl64.Vec3{0, 2, 0}
		got := ClassifyEdgeEdge(p, p, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0})
		if got != EdgeEdgeA0B {
			t.Errorf("ClassifyEdgeEdge(point, edge) = %v, want EdgeEdgeA0B", got)
		}
	})
}

func TestEdgeEdge(t *testing.T) {
	tests := []struct {
		name               string
		ea0, ea1, eb0, eb1 mgl64.Vec3
		expected           float64
	}{
		{
			"crossing interiors",
			mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{0, -1, 1}, mgl64.Vec3{0, 1, 1},
			1,
		},
		{
			"endpoint endpoint",
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{2, 0.5, 0}, mgl64.Vec3{3, 1, 0},
			1.25,
		},
		{
			"parallel overlapping",
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{0.25, 1, 0}, mgl64.Vec3{1.25, 1, 0},
			1,
		},
		{
			"touching",
			mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0},
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EdgeEdge(tt.ea0, tt.ea1, tt.eb0, tt.eb1); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("EdgeEdge = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEdgeEdgeSwapSymmetry(t *testing.T) {
	segs := [][4]mgl64.Vec3{
		{{-1, 0.1, 0}, {1, 0, 0.2}, {0.3, -1, 1}, {-0.2, 1, 1.1}},
		{{0, 0, 0}, {1, 0, 0}, {2, 0.5, 0}, {3, 1, 0}},
		{{0.5, 0.2, -0.3}, {0.7, 1.4, 0.1}, {-0.5, 0.3, 0.9}, {1.5, 0.4, 0.8}},
	}
	for i, s := range segs {
		ab := EdgeEdge(s[0], s[1], s[2], s[3])
		ba := EdgeEdge(s[2], s[3], s[0], s[1])
		if math.Abs(ab-ba) > 1e-12 {
			t.Errorf("case %d: EdgeEdge(A,B) = %v, EdgeEdge(B,A) = %v", i, ab, ba)
		}
	}
}

func TestDegenerateEdgeMatchesPointEdge(t *testing.T) {
	e0 := mgl64.Vec3{-1, 0, 0}
	e1 := mgl64.Vec3{1, 0.2, 0.1}
	points := []mgl64.Vec3{
		{0, 2, 0},
		{-3, 0.5, 0},
		{2, -1, 1},
	}
	for i, p := range points {
		want := PointEdge(p, e0, e1)
		got := EdgeEdge(p, p, e0, e1)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("point %d: EdgeEdge(p,p,e) = %v, PointEdge = %v", i, got, want)
		}
	}
}

func TestGradientsMatchFiniteDifferences(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		grad func(pts []mgl64.Vec3) []float64
		f    func(pts []mgl64.Vec3) float64
	}{
		{
			"point point",
			flat(mgl64.Vec3{0.1, 0.2, 0.3}, mgl64.Vec3{1.3, -0.4, 0.5}),
			func(p []mgl64.Vec3) []float64 { return PointPointGradient(3, p[0], p[1]) },
			func(p []mgl64.Vec3) float64 { return PointPoint(p[0], p[1]) },
		},
		{
			"point edge interior",
			flat(mgl64.Vec3{0.3, 1.2, -0.4}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0.1, 0.2}),
			func(p []mgl64.Vec3) []float64 {
				return PointEdgeGradient(3, ClassifyPointEdge(p[0], p[1], p[2]), p[0], p[1], p[2])
			},
			func(p []mgl64.Vec3) float64 { return PointEdge(p[0], p[1], p[2]) },
		},
		{
			"point edge endpoint",
			flat(mgl64.Vec3{-2, 1, 0.3}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0.1, 0.2}),
			func(p []mgl64.Vec3) []float64 {
				return PointEdgeGradient(3, ClassifyPointEdge(p[0], p[1], p[2]), p[0], p[1], p[2])
			},
			func(p []mgl64.Vec3) float64 { return PointEdge(p[0], p[1], p[2]) },
		},
		{
			"point triangle interior",
			flat(mgl64.Vec3{0.5, 0.5, 0.8}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 2, 0}),
			func(p []mgl64.Vec3) []float64 {
				return PointTriangleGradient(ClassifyPointTriangle(p[0], p[1], p[2], p[3]), p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) float64 { return PointTriangle(p[0], p[1], p[2], p[3]) },
		},
		{
			"point triangle edge region",
			flat(mgl64.Vec3{1, -1, 0.5}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 2, 0}),
			func(p []mgl64.Vec3) []float64 {
				return PointTriangleGradient(ClassifyPointTriangle(p[0], p[1], p[2], p[3]), p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) float64 { return PointTriangle(p[0], p[1], p[2], p[3]) },
		},
		{
			"point triangle vertex region",
			flat(mgl64.Vec3{3, -0.5, 0.4}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 2, 0}),
			func(p []mgl64.Vec3) []float64 {
				return PointTriangleGradient(ClassifyPointTriangle(p[0], p[1], p[2], p[3]), p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) float64 { return PointTriangle(p[0], p[1], p[2], p[3]) },
		},
		{
			"edge edge interiors",
			flat(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.1, -1, 1}, mgl64.Vec3{-0.1, 1, 1.2}),
			func(p []mgl64.Vec3) []float64 {
				return EdgeEdgeGradient(ClassifyEdgeEdge(p[0], p[1], p[2], p[3]), p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) float64 { return EdgeEdge(p[0], p[1], p[2], p[3]) },
		},
		{
			"edge edge endpoint pair",
			flat(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0.5, 0.3}, mgl64.Vec3{3, 1, 0}),
			func(p []mgl64.Vec3) []float64 {
				return EdgeEdgeGradient(ClassifyEdgeEdge(p[0], p[1], p[2], p[3]), p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) float64 { return EdgeEdge(p[0], p[1], p[2], p[3]) },
		},
		{
			"edge edge endpoint interior",
			flat(mgl64.Vec3{0.2, 1, 0}, mgl64.Vec3{0.1, 3, 0.5}, mgl64.Vec3{-2, 0, 0}, mgl64.Vec3{2, 0.1, 0}),
			func(p []mgl64.Vec3) []float64 {
				return EdgeEdgeGradient(ClassifyEdgeEdge(p[0], p[1], p[2], p[3]), p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) float64 { return EdgeEdge(p[0], p[1], p[2], p[3]) },
		},
		{
			"cross squared norm",
			flat(mgl64.Vec3{-1, 0.3, 0}, mgl64.Vec3{1, 0, 0.2}, mgl64.Vec3{0, -1, 1}, mgl64.Vec3{0.4, 1, 1}),
			func(p []mgl64.Vec3) []float64 { return CrossSquaredNormGradient(p[0], p[1], p[2], p[3]) },
			func(p []mgl64.Vec3) float64 { return CrossSquaredNorm(p[0], p[1], p[2], p[3]) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.grad(unflat(tt.x))
			want := fdGradient(func(x []float64) float64 { return tt.f(unflat(x)) }, tt.x)
			if d := maxAbsDiff(got, want); d > 1e-5 {
				t.Errorf("gradient differs from finite differences by %v\n got %v\nwant %v", d, got, want)
			}
		})
	}
}

func TestHessiansMatchFiniteDifferences(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		hess func(pts []mgl64.Vec3) *mat.SymDense
		grad func(pts []mgl64.Vec3) []float64
	}{
		{
			"point point",
			flat(mgl64.Vec3{0.1, 0.2, 0.3}, mgl64.Vec3{1.3, -0.4, 0.5}),
			func(p []mgl64.Vec3) *mat.SymDense { return PointPointHessian(3, p[0], p[1]) },
			func(p []mgl64.Vec3) []float64 { return PointPointGradient(3, p[0], p[1]) },
		},
		{
			"point edge interior",
			flat(mgl64.Vec3{0.3, 1.2, -0.4}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0.1, 0.2}),
			func(p []mgl64.Vec3) *mat.SymDense {
				return PointEdgeHessian(3, PointEdgeInterior, p[0], p[1], p[2])
			},
			func(p []mgl64.Vec3) []float64 {
				return PointEdgeGradient(3, PointEdgeInterior, p[0], p[1], p[2])
			},
		},
		{
			"point triangle interior",
			flat(mgl64.Vec3{0.5, 0.5, 0.8}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 2, 0}),
			func(p []mgl64.Vec3) *mat.SymDense {
				return PointTriangleHessian(PointTriangleInterior, p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) []float64 {
				return PointTriangleGradient(PointTriangleInterior, p[0], p[1], p[2], p[3])
			},
		},
		{
			"edge edge interiors",
			flat(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.1, -1, 1}, mgl64.Vec3{-0.1, 1, 1.2}),
			func(p []mgl64.Vec3) *mat.SymDense {
				return EdgeEdgeHessian(EdgeEdgeAB, p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) []float64 {
				return EdgeEdgeGradient(EdgeEdgeAB, p[0], p[1], p[2], p[3])
			},
		},
		{
			"cross squared norm",
			flat(mgl64.Vec3{-1, 0.3, 0}, mgl64.Vec3{1, 0, 0.2}, mgl64.Vec3{0, -1, 1}, mgl64.Vec3{0.4, 1, 1}),
			func(p []mgl64.Vec3) *mat.SymDense {
				return CrossSquaredNormHessian(p[0], p[1], p[2], p[3])
			},
			func(p []mgl64.Vec3) []float64 {
				return CrossSquaredNormGradient(p[0], p[1], p[2], p[3])
			},
		},
	}

	const h = 1e-6
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.x)
			got := tt.hess(unflat(tt.x))
			var worst float64
			for j := 0; j < n; j++ {
				xp := append([]float64(nil), tt.x...)
				xm := append([]float64(nil), tt.x...)
				xp[j] += h
				xm[j] -= h
				gp := tt.grad(unflat(xp))
				gm := tt.grad(unflat(xm))
				for i := 0; i < n; i++ {
					fd := (gp[i] - gm[i]) / (2 * h)
					if d := math.Abs(got.At(i, j) - fd); d > worst {
						worst = d
					}
				}
			}
			if worst > 1e-5 {
				t.Errorf("Hessian differs from finite differences by %v", worst)
			}
		})
	}
}

func TestVertexRegionLeavesInactiveRowsZero(t *testing.T) {
	p := mgl64.Vec3{-2, 1, 0.3}
	e0 := mgl64.Vec3{-1, 0, 0}
	e1 := mgl64.Vec3{1, 0.1, 0.2}

	g := PointEdgeGradient(3, PointEdgeE0, p, e0, e1)
	for i := 6; i < 9; i++ {
		if g[i] != 0 {
			t.Errorf("gradient entry %d for unused endpoint = %v, want 0", i, g[i])
		}
	}

	h := PointEdgeHessian(3, PointEdgeE0, p, e0, e1)
	for i := 6; i < 9; i++ {
		for j := 0; j < 9; j++ {
			if h.At(i, j) != 0 {
				t.Errorf("Hessian entry (%d,%d) for unused endpoint = %v, want 0", i, j, h.At(i, j))
			}
		}
	}
}

func TestPlanarGradientIsEmbeddedRestriction(t *testing.T) {
	p := mgl64.Vec3{0.3, 0.7, 0}
	e0 := mgl64.Vec3{-1, 0, 0}
	e1 := mgl64.Vec3{1, 0, 0}

	g2 := PointEdgeGradient(2, PointEdgeInterior, p, e0, e1)
	g3 := PointEdgeGradient(3, PointEdgeInterior, p, e0, e1)
	restricted := []float64{g3[0], g3[1], g3[3], g3[4], g3[6], g3[7]}
	if d := maxAbsDiff(g2, restricted); d > 1e-14 {
		t.Errorf("planar gradient differs from embedded restriction by %v", d)
	}

	h2 := PointEdgeHessian(2, PointEdgeInterior, p, e0, e1)
	h3 := PointEdgeHessian(3, PointEdgeInterior, p, e0, e1)
	pick := []int{0, 1, 3, 4, 6, 7}
	for i, gi := range pick {
		for j, gj := range pick {
			if d := math.Abs(h2.At(i, j) - h3.At(gi, gj)); d > 1e-14 {
				t.Errorf("planar Hessian (%d,%d) differs from embedded restriction by %v", i, j, d)
			}
		}
	}
}
