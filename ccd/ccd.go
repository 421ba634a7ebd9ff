// Package ccd implements conservative continuous collision detection for
// the primitive pairs of a surface mesh trajectory.
//
// Every query takes the positions of a pair at the start and end of a
// linearized step and reports whether the pair comes into contact within
// the step, together with a time of impact at which the pair is still
// strictly separated. Conservativeness comes from querying the underlying
// root-finding oracle with a minimum separation of (1-r)*d0, where d0 is
// the distance at the start of the step and r is the conservative
// rescaling factor: the reported time stops short of actual contact by a
// fraction of the initial distance, so stepping to it never produces an
// intersecting state.
package ccd

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/andreayres/ipc-toolkit/distance"
)

// Defaults used by Options for fields left at their zero value.
const (
	DefaultTolerance             = 1e-6
	DefaultMaxIterations         = 10_000_000
	DefaultConservativeRescaling = 0.8
)

// smallTOI is the threshold below which a first answer is distrusted and
// the oracle is queried again without the separation margin.
const smallTOI = 1e-6

// oracleFunc is the root-finder contract: report whether the pair reaches
// the given minimum distance within the query interval and, if so, a time
// at which the pair is still at or outside that distance. A true result
// with a zero time is additionally forbidden when noZeroTOI is set.
type oracleFunc func(minDistance float64, noZeroTOI bool) (bool, float64)

// Options tune a continuous collision query. The zero value asks for a
// full unit step with the default tolerance, iteration budget, and
// conservative rescaling.
type Options struct {
	// TMax restricts the query to the interval [0, TMax] of the step.
	// Zero means the full step, TMax = 1.
	TMax float64

	// Tolerance is the relative precision of the reported time of
	// impact.
	Tolerance float64

	// MaxIterations caps the work of the root-finding oracle. A query
	// that exhausts the budget reports no impact.
	MaxIterations int

	// ConservativeRescaling is the fraction r in (0, 1) of the initial
	// distance that must remain between the pair at the reported time.
	ConservativeRescaling float64
}

func (o Options) withDefaults() Options {
	if o.TMax == 0 {
		o.TMax = 1
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.ConservativeRescaling == 0 {
		o.ConservativeRescaling = DefaultConservativeRescaling
	}
	o.validate()
	return o
}

func (o Options) validate() {
	if o.TMax < 0 || o.TMax > 1 {
		panic("ipc: ccd tmax must be in [0, 1]")
	}
	if o.Tolerance < 0 {
		panic("ipc: ccd tolerance must be positive")
	}
	if o.MaxIterations < 0 {
		panic("ipc: ccd iteration budget must be positive")
	}
	if o.ConservativeRescaling <= 0 || o.ConservativeRescaling >= 1 {
		panic("ipc: ccd conservative rescaling must be in (0, 1)")
	}
}

// query runs the conservative retry policy around an oracle. The first
// pass keeps a margin of (1-r)*d0; if it reports an impact suspiciously
// close to time zero, the oracle is asked again without the margin but
// with zero times forbidden, and that answer, shrunk by r, replaces the
// first.
func query(oracle oracleFunc, initialDistance, rescaling float64) (bool, float64) {
	if math.IsNaN(initialDistance) || math.IsInf(initialDistance, 0) {
		panic("ipc: ccd requires a finite initial distance")
	}
	if initialDistance == 0 {
		slog.Warn("ccd query with zero initial distance, returning toi=0")
		return true, 0
	}

	minDistance := (1 - rescaling) * initialDistance

	impacting, toi := oracle(minDistance, false)
	if impacting && toi < smallTOI {
		impacting, toi = oracle(0, true)
		if impacting {
			toi *= rescaling
		}
	}
	return impacting, toi
}

// PointPoint detects contact between two moving points.
func PointPoint(p0T0, p1T0, p0T1, p1T1 mgl64.Vec3, o Options) (bool, float64) {
	o = o.withDefaults()
	initial := math.Sqrt(distance.PointPoint(p0T0, p1T0))
	oracle := edgeEdgeOracle(
		p0T0, p0T0, p1T0, p1T0,
		p0T1, p0T1, p1T1, p1T1, o)
	return query(oracle, initial, o.ConservativeRescaling)
}

// PointEdge detects contact between a moving point and a moving edge.
// dim selects the ambient dimension: 3 runs the conservative advancement
// oracle on a degenerate edge-edge pair, 2 runs an approximate planar
// root-finder and requires all z coordinates to be zero.
func PointEdge(dim int, pT0, e0T0, e1T0, pT1, e0T1, e1T1 mgl64.Vec3, o Options) (bool, float64) {
	o = o.withDefaults()

	var oracle oracleFunc
	switch dim {
	case 3:
		oracle = edgeEdgeOracle(
			pT0, pT0, e0T0, e1T0,
			pT1, pT1, e0T1, e1T1, o)
	case 2:
		mustPlanar(pT0, e0T0, e1T0, pT1, e0T1, e1T1)
		oracle = pointEdgeOracle2D(pT0, e0T0, e1T0, pT1, e0T1, e1T1, o)
	default:
		panic("ipc: point-edge ccd requires dimension 2 or 3")
	}

	initial := math.Sqrt(distance.PointEdge(pT0, e0T0, e1T0))
	return query(oracle, initial, o.ConservativeRescaling)
}

// EdgeEdge detects contact between two moving edges.
func EdgeEdge(
	ea0T0, ea1T0, eb0T0, eb1T0,
	ea0T1, ea1T1, eb0T1, eb1T1 mgl64.Vec3,
	o Options,
) (bool, float64) {
	o = o.withDefaults()
	initial := math.Sqrt(distance.EdgeEdge(ea0T0, ea1T0, eb0T0, eb1T0))
	oracle := edgeEdgeOracle(
		ea0T0, ea1T0, eb0T0, eb1T0,
		ea0T1, ea1T1, eb0T1, eb1T1, o)
	return query(oracle, initial, o.ConservativeRescaling)
}

// PointTriangle detects contact between a moving point and a moving
// triangle.
func PointTriangle(
	pT0, t0T0, t1T0, t2T0,
	pT1, t0T1, t1T1, t2T1 mgl64.Vec3,
	o Options,
) (bool, float64) {
	o = o.withDefaults()
	initial := math.Sqrt(distance.PointTriangle(pT0, t0T0, t1T0, t2T0))
	oracle := pointTriangleOracle(
		pT0, t0T0, t1T0, t2T0,
		pT1, t0T1, t1T1, t2T1, o)
	return query(oracle, initial, o.ConservativeRescaling)
}

func mustPlanar(pts ...mgl64.Vec3) {
	for _, p := range pts {
		if p.Z() != 0 {
			panic("ipc: 2D ccd requires zero z coordinates")
		}
	}
}
