package predicates

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SegmentsIntersect reports whether the closed 2D segments (p0, p1) and
// (q0, q1) share at least one point. Endpoint touches and collinear overlap
// count as intersections.
func SegmentsIntersect(p0, p1, q0, q1 mgl64.Vec2) bool {
	d1 := Orient2D(q0, q1, p0)
	d2 := Orient2D(q0, q1, p1)
	d3 := Orient2D(p0, p1, q0)
	d4 := Orient2D(p0, p1, q1)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(q0, q1, p0):
		return true
	case d2 == 0 && onSegment(q0, q1, p1):
		return true
	case d3 == 0 && onSegment(p0, p1, q0):
		return true
	case d4 == 0 && onSegment(p0, p1, q1):
		return true
	}
	return false
}

// onSegment reports whether c, known to be collinear with (a, b), lies
// within the segment's bounding box.
func onSegment(a, b, c mgl64.Vec2) bool {
	return math.Min(a[0], b[0]) <= c[0] && c[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= c[1] && c[1] <= math.Max(a[1], b[1])
}

// SegmentIntersectsTriangle reports whether the closed 3D segment (s0, s1)
// shares at least one point with the closed triangle (t0, t1, t2). Touches
// and coplanar overlap count as intersections. The triangle must not be
// degenerate.
func SegmentIntersectsTriangle(s0, s1, t0, t1, t2 mgl64.Vec3) bool {
	o0 := Orient3D(t0, t1, t2, s0)
	o1 := Orient3D(t0, t1, t2, s1)

	if o0 != 0 && o0 == o1 {
		// Both endpoints strictly on the same side of the plane.
		return false
	}
	if o0 == 0 && o1 == 0 {
		return coplanarSegmentTriangle(s0, s1, t0, t1, t2)
	}

	// The segment crosses or touches the supporting plane. It meets the
	// triangle exactly when the segment's line passes through the closed
	// triangle, which the three edge orientations decide.
	u := Orient3D(s0, s1, t0, t1)
	v := Orient3D(s0, s1, t1, t2)
	w := Orient3D(s0, s1, t2, t0)
	return (u >= 0 && v >= 0 && w >= 0) || (u <= 0 && v <= 0 && w <= 0)
}

// coplanarSegmentTriangle handles the segment lying in the triangle's
// plane: project both onto the dominant axis plane of the normal and solve
// in 2D. The projection preserves incidence because all five points are
// coplanar.
func coplanarSegmentTriangle(s0, s1, t0, t1, t2 mgl64.Vec3) bool {
	n := t1.Sub(t0).Cross(t2.Sub(t0))
	drop := 0
	if abs(n[1]) > abs(n[drop]) {
		drop = 1
	}
	if abs(n[2]) > abs(n[drop]) {
		drop = 2
	}

	p0 := dropAxis(s0, drop)
	p1 := dropAxis(s1, drop)
	a := dropAxis(t0, drop)
	b := dropAxis(t1, drop)
	c := dropAxis(t2, drop)

	if SegmentsIntersect(p0, p1, a, b) ||
		SegmentsIntersect(p0, p1, b, c) ||
		SegmentsIntersect(p0, p1, c, a) {
		return true
	}
	// No edge crossing: the segment is either fully inside or fully outside.
	return pointInTriangle(p0, a, b, c)
}

func dropAxis(v mgl64.Vec3, axis int) mgl64.Vec2 {
	switch axis {
	case 0:
		return mgl64.Vec2{v[1], v[2]}
	case 1:
		return mgl64.Vec2{v[0], v[2]}
	default:
		return mgl64.Vec2{v[0], v[1]}
	}
}

// pointInTriangle reports whether p lies in the closed triangle (a, b, c).
func pointInTriangle(p, a, b, c mgl64.Vec2) bool {
	o1 := Orient2D(a, b, p)
	o2 := Orient2D(b, c, p)
	o3 := Orient2D(c, a, p)
	return (o1 >= 0 && o2 >= 0 && o3 >= 0) || (o1 <= 0 && o2 <= 0 && o3 <= 0)
}
