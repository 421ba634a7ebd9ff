package ccd

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/andreayres/ipc-toolkit/distance"
)

// The planar point-edge oracle is not a certified root-finder. It locates
// the times at which point and edge become collinear, which for linear
// trajectories are the roots of a quadratic, keeps the earliest root where
// the point actually lies within the edge, and then walks the root back by
// bisection until the pair sits at the requested minimum distance.

func cross2(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// solveQuadratic returns the real roots of a*t^2 + b*t + c in ascending
// order. A degenerate polynomial that vanishes identically reports the
// single root 0.
func solveQuadratic(a, b, c float64) []float64 {
	if a == 0 {
		if b == 0 {
			if c == 0 {
				return []float64{0}
			}
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
	r0, r1 := q/a, c/q
	if q == 0 {
		r0, r1 = 0, 0
	}
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	return []float64{r0, r1}
}

func pointEdgeOracle2D(pT0, e0T0, e1T0, pT1, e0T1, e1T1 mgl64.Vec3, o Options) oracleFunc {
	p := pT0.Vec2()
	e0 := e0T0.Vec2()
	e1 := e1T0.Vec2()
	dp := pT1.Vec2().Sub(p)
	de0 := e0T1.Vec2().Sub(e0)
	de1 := e1T1.Vec2().Sub(e1)

	// Edge direction u(t) and point offset w(t) are linear in t, so the
	// collinearity condition cross(u(t), w(t)) = 0 is quadratic.
	u0 := e1.Sub(e0)
	du := de1.Sub(de0)
	w0 := p.Sub(e0)
	dw := dp.Sub(de0)

	a := cross2(du, dw)
	b := cross2(u0, dw) + cross2(du, w0)
	c := cross2(u0, w0)

	at := func(t float64) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
		return pT0.Add(pT1.Sub(pT0).Mul(t)),
			e0T0.Add(e0T1.Sub(e0T0).Mul(t)),
			e1T0.Add(e1T1.Sub(e1T0).Mul(t))
	}

	// onEdge reports whether the point projects inside the edge at time t.
	onEdge := func(t float64) bool {
		pt, e0t, e1t := at(t)
		ut := e1t.Sub(e0t)
		uu := ut.Dot(ut)
		if uu == 0 {
			return pt.Sub(e0t).Len() == 0
		}
		alpha := pt.Sub(e0t).Dot(ut) / uu
		return alpha >= 0 && alpha <= 1
	}

	return func(minDistance float64, noZeroTOI bool) (bool, float64) {
		for _, root := range solveQuadratic(a, b, c) {
			if root < 0 || root > o.TMax {
				continue
			}
			if noZeroTOI && root == 0 {
				continue
			}
			if !onEdge(root) {
				continue
			}
			if minDistance == 0 {
				return true, root
			}
			// Bisect distance(t) = minDistance over [0, root]. The
			// caller guarantees the pair starts outside the margin.
			lo, hi := 0.0, root
			for i := 0; i < 64 && hi-lo > o.Tolerance*root; i++ {
				mid := 0.5 * (lo + hi)
				pt, e0t, e1t := at(mid)
				if math.Sqrt(distance.PointEdge(pt, e0t, e1t)) > minDistance {
					lo = mid
				} else {
					hi = mid
				}
			}
			return true, lo
		}
		return false, 0
	}
}
