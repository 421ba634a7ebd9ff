package ccd

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/andreayres/ipc-toolkit/distance"
)

// The root-finding oracle is an additive conservative advancement: starting
// from the initial configuration, repeatedly take the largest time step that
// provably cannot close the remaining gap (the gap shrinks at most as fast
// as the summed per-side displacement bound), until either the interval is
// exhausted or the gap falls below a fixed fraction of its initial value.
// The reported time therefore always satisfies distance > min distance, and
// an impact is never reported at time zero because at least one step is
// taken before the gap test applies.

// removeMean subtracts the average displacement. The relative trajectories
// are unaffected and the per-side displacement bound only gets tighter.
func removeMean(dx *[4]mgl64.Vec3) {
	mean := dx[0].Add(dx[1]).Add(dx[2]).Add(dx[3]).Mul(0.25)
	for i := range dx {
		dx[i] = dx[i].Sub(mean)
	}
}

// conservativeAdvance is the shared advancement loop. x and dx hold the four
// stacked points of the pair and their displacements over the unit interval,
// distSq evaluates the pair's squared distance, and maxDispMag bounds how
// fast the pair can approach. Iteration budget exhaustion is a negative
// result.
func conservativeAdvance(
	x, dx [4]mgl64.Vec3,
	distSq func([4]mgl64.Vec3) float64,
	maxDispMag, minDistance float64,
	o Options,
) (bool, float64) {
	if maxDispMag == 0 {
		return false, 0
	}

	minDistSq := minDistance * minDistance
	dSq := distSq(x)
	d := math.Sqrt(dSq)
	// dFunc = (d - min)(d + min); working with it avoids catastrophic
	// cancellation when d and minDistance are close.
	dFunc := dSq - minDistSq
	gap := o.Tolerance * dFunc / (d + minDistance)

	var toi float64
	for iter := 0; iter < o.MaxIterations; iter++ {
		step := (1 - o.Tolerance) * dFunc / ((d + minDistance) * maxDispMag)

		for i := range x {
			x[i] = x[i].Add(dx[i].Mul(step))
		}
		dSq = distSq(x)
		d = math.Sqrt(dSq)
		dFunc = dSq - minDistSq

		if toi > 0 && dFunc/(d+minDistance) < gap {
			return true, toi
		}

		toi += step
		if toi > o.TMax {
			return false, 0
		}
	}
	return false, 0
}

// edgeEdgeOracle builds the advancement oracle for an edge-edge trajectory.
// Point-point and point-edge queries reuse it by passing zero-length edges.
// The forbid-zero flag of the oracle contract is inherently satisfied, so it
// is ignored.
func edgeEdgeOracle(
	ea0T0, ea1T0, eb0T0, eb1T0,
	ea0T1, ea1T1, eb0T1, eb1T1 mgl64.Vec3,
	o Options,
) oracleFunc {
	x := [4]mgl64.Vec3{ea0T0, ea1T0, eb0T0, eb1T0}
	dx := [4]mgl64.Vec3{
		ea0T1.Sub(ea0T0),
		ea1T1.Sub(ea1T0),
		eb0T1.Sub(eb0T0),
		eb1T1.Sub(eb1T0),
	}
	removeMean(&dx)
	maxDispMag := math.Max(dx[0].Len(), dx[1].Len()) +
		math.Max(dx[2].Len(), dx[3].Len())

	distSq := func(q [4]mgl64.Vec3) float64 {
		return distance.EdgeEdge(q[0], q[1], q[2], q[3])
	}
	return func(minDistance float64, _ bool) (bool, float64) {
		return conservativeAdvance(x, dx, distSq, maxDispMag, minDistance, o)
	}
}

// pointTriangleOracle builds the advancement oracle for a point-triangle
// trajectory.
func pointTriangleOracle(
	pT0, t0T0, t1T0, t2T0,
	pT1, t0T1, t1T1, t2T1 mgl64.Vec3,
	o Options,
) oracleFunc {
	x := [4]mgl64.Vec3{pT0, t0T0, t1T0, t2T0}
	dx := [4]mgl64.Vec3{
		pT1.Sub(pT0),
		t0T1.Sub(t0T0),
		t1T1.Sub(t1T0),
		t2T1.Sub(t2T0),
	}
	removeMean(&dx)
	maxDispMag := dx[0].Len() +
		math.Max(dx[1].Len(), math.Max(dx[2].Len(), dx[3].Len()))

	distSq := func(q [4]mgl64.Vec3) float64 {
		return distance.PointTriangle(q[0], q[1], q[2], q[3])
	}
	return func(minDistance float64, _ bool) (bool, float64) {
		return conservativeAdvance(x, dx, distSq, maxDispMag, minDistance, o)
	}
}
