// Package distance provides the squared-distance kernels between mesh
// primitives (points, edges, triangles) together with their first and second
// derivatives with respect to the primitive vertex positions.
//
// Every function in this package returns a *squared* distance. The barrier
// formulation consumes squared distances directly; taking the square root is
// the caller's concern (continuous collision detection does, the potential
// does not).
//
// Each pair kind first classifies which sub-feature pair realizes the
// minimum (a vertex, an edge interior, the triangle interior) and then
// evaluates the smooth kernel of that region. Derivatives differentiate the
// selected kernel, matching the piecewise definition of the distance.
//
// References:
//   - Ericson: "Real-Time Collision Detection" (2005), closest-point region
//     tests for triangles and segment pairs.
//   - Sunday: "Distance between 3D Lines and Segments", the clamped
//     segment-segment parameterization.
package distance

import (
	"github.com/go-gl/mathgl/mgl64"
)

// parallelEps is the relative threshold below which two edge directions are
// treated as parallel when classifying edge-edge proximity. It scales with
// the product of the squared edge lengths, so it is dimensionless.
const parallelEps = 1e-12

// PointPoint returns the squared distance between two points.
func PointPoint(p0, p1 mgl64.Vec3) float64 {
	d := p0.Sub(p1)
	return d.Dot(d)
}

// PointLine returns the squared distance between a point and the infinite
// line through e0 and e1. The edge must not be degenerate.
func PointLine(p, e0, e1 mgl64.Vec3) float64 {
	e := e1.Sub(e0)
	c := e.Cross(p.Sub(e0))
	return c.Dot(c) / e.Dot(e)
}

// LineLine returns the squared distance between the two infinite lines
// through (ea0, ea1) and (eb0, eb1). Parallel lines yield zero; callers
// classify first and never select this kernel for parallel edges.
func LineLine(ea0, ea1, eb0, eb1 mgl64.Vec3) float64 {
	n := ea1.Sub(ea0).Cross(eb1.Sub(eb0))
	t := eb0.Sub(ea0).Dot(n)
	return t * t / n.Dot(n)
}

// PointPlane returns the squared distance between a point and the plane
// spanned by the triangle (t0, t1, t2).
func PointPlane(p, t0, t1, t2 mgl64.Vec3) float64 {
	n := t1.Sub(t0).Cross(t2.Sub(t0))
	t := p.Sub(t0).Dot(n)
	return t * t / n.Dot(n)
}

// PointEdgeRegion identifies which feature of an edge is closest to a point.
type PointEdgeRegion uint8

const (
	// PointEdgeE0 means the edge endpoint e0 is closest.
	PointEdgeE0 PointEdgeRegion = iota
	// PointEdgeE1 means the edge endpoint e1 is closest.
	PointEdgeE1
	// PointEdgeInterior means the closest point lies strictly inside the edge.
	PointEdgeInterior
)

// ClassifyPointEdge returns the closest feature of edge (e0, e1) to p.
// A degenerate (zero length) edge classifies as PointEdgeE0.
func ClassifyPointEdge(p, e0, e1 mgl64.Vec3) PointEdgeRegion {
	e := e1.Sub(e0)
	ee := e.Dot(e)
	if ee == 0 {
		return PointEdgeE0
	}
	ratio := e.Dot(p.Sub(e0)) / ee
	switch {
	case ratio < 0:
		return PointEdgeE0
	case ratio > 1:
		return PointEdgeE1
	default:
		return PointEdgeInterior
	}
}

// PointEdge returns the squared distance between a point and a segment.
func PointEdge(p, e0, e1 mgl64.Vec3) float64 {
	switch ClassifyPointEdge(p, e0, e1) {
	case PointEdgeE0:
		return PointPoint(p, e0)
	case PointEdgeE1:
		return PointPoint(p, e1)
	default:
		return PointLine(p, e0, e1)
	}
}

// PointTriangleRegion identifies which feature of a triangle is closest to a
// point. Edge k joins vertex k and vertex (k+1)%3.
type PointTriangleRegion uint8

const (
	PointTriangleT0 PointTriangleRegion = iota
	PointTriangleT1
	PointTriangleT2
	PointTriangleE0
	PointTriangleE1
	PointTriangleE2
	PointTriangleInterior
)

// ClassifyPointTriangle returns the closest feature of triangle (t0, t1, t2)
// to p, using the Voronoi region tests from Ericson.
func ClassifyPointTriangle(p, t0, t1, t2 mgl64.Vec3) PointTriangleRegion {
	ab := t1.Sub(t0)
	ac := t2.Sub(t0)
	ap := p.Sub(t0)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return PointTriangleT0
	}

	bp := p.Sub(t1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return PointTriangleT1
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return PointTriangleE0
	}

	cp := p.Sub(t2)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return PointTriangleT2
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return PointTriangleE2
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return PointTriangleE1
	}

	return PointTriangleInterior
}

// PointTriangle returns the squared distance between a point and a triangle.
func PointTriangle(p, t0, t1, t2 mgl64.Vec3) float64 {
	switch ClassifyPointTriangle(p, t0, t1, t2) {
	case PointTriangleT0:
		return PointPoint(p, t0)
	case PointTriangleT1:
		return PointPoint(p, t1)
	case PointTriangleT2:
		return PointPoint(p, t2)
	case PointTriangleE0:
		return PointLine(p, t0, t1)
	case PointTriangleE1:
		return PointLine(p, t1, t2)
	case PointTriangleE2:
		return PointLine(p, t2, t0)
	default:
		return PointPlane(p, t0, t1, t2)
	}
}

// EdgeEdgeRegion identifies which feature pair of two edges realizes their
// minimum distance: an endpoint of A against an endpoint of B, an endpoint
// against the other edge's interior, or both interiors.
type EdgeEdgeRegion uint8

const (
	EdgeEdgeA0B0 EdgeEdgeRegion = iota
	EdgeEdgeA0B1
	EdgeEdgeA1B0
	EdgeEdgeA1B1
	EdgeEdgeAB0
	EdgeEdgeAB1
	EdgeEdgeA0B
	EdgeEdgeA1B
	EdgeEdgeAB
)

// ClassifyEdgeEdge returns the closest feature pair of segments (ea0, ea1)
// and (eb0, eb1). Near-parallel and degenerate (zero length) edges never
// classify as EdgeEdgeAB, so the line-line kernel is only selected where it
// is smooth.
func ClassifyEdgeEdge(ea0, ea1, eb0, eb1 mgl64.Vec3) EdgeEdgeRegion {
	u := ea1.Sub(ea0)
	v := eb1.Sub(eb0)
	w := ea0.Sub(eb0)
	a := u.Dot(u)
	b := u.Dot(v)
	c := v.Dot(v)
	d := u.Dot(w)
	e := v.Dot(w)

	// Degenerate edges reduce to point-edge and point-point tests.
	if a == 0 && c == 0 {
		return EdgeEdgeA0B0
	}
	if a == 0 {
		switch ClassifyPointEdge(ea0, eb0, eb1) {
		case PointEdgeE0:
			return EdgeEdgeA0B0
		case PointEdgeE1:
			return EdgeEdgeA0B1
		default:
			return EdgeEdgeA0B
		}
	}
	if c == 0 {
		switch ClassifyPointEdge(eb0, ea0, ea1) {
		case PointEdgeE0:
			return EdgeEdgeA0B0
		case PointEdgeE1:
			return EdgeEdgeA1B0
		default:
			return EdgeEdgeAB0
		}
	}

	det := a*c - b*b
	sNum, sDen := det, det
	tNum, tDen := det, det
	if det < parallelEps*a*c {
		// Near-parallel: pin s to ea0 and classify against edge B.
		sNum, sDen = 0, 1
		tNum, tDen = e, c
	} else {
		sNum = b*e - c*d
		tNum = a*e - b*d
		if sNum < 0 {
			sNum = 0
			tNum, tDen = e, c
		} else if sNum > sDen {
			sNum = sDen
			tNum, tDen = e+b, c
		}
	}

	if tNum < 0 {
		tNum = 0
		switch {
		case -d < 0:
			sNum = 0
		case -d > a:
			sNum = sDen
		default:
			sNum, sDen = -d, a
		}
	} else if tNum > tDen {
		tNum = tDen
		switch {
		case -d+b < 0:
			sNum = 0
		case -d+b > a:
			sNum = sDen
		default:
			sNum, sDen = -d+b, a
		}
	}

	sEnd := endpointOf(sNum, sDen)
	tEnd := endpointOf(tNum, tDen)
	switch {
	case sEnd == 0 && tEnd == 0:
		return EdgeEdgeA0B0
	case sEnd == 0 && tEnd == 1:
		return EdgeEdgeA0B1
	case sEnd == 1 && tEnd == 0:
		return EdgeEdgeA1B0
	case sEnd == 1 && tEnd == 1:
		return EdgeEdgeA1B1
	case sEnd == 0:
		return EdgeEdgeA0B
	case sEnd == 1:
		return EdgeEdgeA1B
	case tEnd == 0:
		return EdgeEdgeAB0
	case tEnd == 1:
		return EdgeEdgeAB1
	default:
		return EdgeEdgeAB
	}
}

// endpointOf reports whether a clamped parameter sits at 0, at 1, or strictly
// inside (-1).
func endpointOf(num, den float64) int {
	switch {
	case num <= 0:
		return 0
	case num >= den:
		return 1
	default:
		return -1
	}
}

// EdgeEdge returns the squared distance between two segments.
func EdgeEdge(ea0, ea1, eb0, eb1 mgl64.Vec3) float64 {
	switch ClassifyEdgeEdge(ea0, ea1, eb0, eb1) {
	case EdgeEdgeA0B0:
		return PointPoint(ea0, eb0)
	case EdgeEdgeA0B1:
		return PointPoint(ea0, eb1)
	case EdgeEdgeA1B0:
		return PointPoint(ea1, eb0)
	case EdgeEdgeA1B1:
		return PointPoint(ea1, eb1)
	case EdgeEdgeAB0:
		return PointLine(eb0, ea0, ea1)
	case EdgeEdgeAB1:
		return PointLine(eb1, ea0, ea1)
	case EdgeEdgeA0B:
		return PointLine(ea0, eb0, eb1)
	case EdgeEdgeA1B:
		return PointLine(ea1, eb0, eb1)
	default:
		return LineLine(ea0, ea1, eb0, eb1)
	}
}

// CrossSquaredNorm returns the squared norm of cross(ea1-ea0, eb1-eb0), the
// degeneracy measure used by the edge-edge mollifier.
func CrossSquaredNorm(ea0, ea1, eb0, eb1 mgl64.Vec3) float64 {
	n := ea1.Sub(ea0).Cross(eb1.Sub(eb0))
	return n.Dot(n)
}
