package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/hyperdual"
)

// Derivatives are taken with hyperdual forward evaluation of the region
// kernel selected by the classifier. A hyperdual number carries the value,
// two first-order perturbations and their mixed second-order term, so one
// evaluation per variable pair fills the Hessian exactly, with no truncation
// error. Regions that do not involve a vertex contribute zero rows for it.
//
// Gradients and Hessians are laid out over the stacked vertex coordinates of
// the pair, dim entries per vertex, in the argument order of the primal
// function. For dim == 2 the points carry z == 0 and the derivatives are the
// exact restriction of the 3D kernel to the plane.

// hvec is a vector of three hyperdual coordinates.
type hvec [3]hyperdual.Number

func (a hvec) sub(b hvec) hvec {
	return hvec{
		hyperdual.Sub(a[0], b[0]),
		hyperdual.Sub(a[1], b[1]),
		hyperdual.Sub(a[2], b[2]),
	}
}

func (a hvec) dot(b hvec) hyperdual.Number {
	return hyperdual.Add(
		hyperdual.Add(hyperdual.Mul(a[0], b[0]), hyperdual.Mul(a[1], b[1])),
		hyperdual.Mul(a[2], b[2]),
	)
}

func (a hvec) cross(b hvec) hvec {
	return hvec{
		hyperdual.Sub(hyperdual.Mul(a[1], b[2]), hyperdual.Mul(a[2], b[1])),
		hyperdual.Sub(hyperdual.Mul(a[2], b[0]), hyperdual.Mul(a[0], b[2])),
		hyperdual.Sub(hyperdual.Mul(a[0], b[1]), hyperdual.Mul(a[1], b[0])),
	}
}

func hPointPoint(p0, p1 hvec) hyperdual.Number {
	d := p0.sub(p1)
	return d.dot(d)
}

func hPointLine(p, e0, e1 hvec) hyperdual.Number {
	e := e1.sub(e0)
	c := e.cross(p.sub(e0))
	return hyperdual.Mul(c.dot(c), hyperdual.Inv(e.dot(e)))
}

func hLineLine(ea0, ea1, eb0, eb1 hvec) hyperdual.Number {
	n := ea1.sub(ea0).cross(eb1.sub(eb0))
	t := eb0.sub(ea0).dot(n)
	return hyperdual.Mul(hyperdual.Mul(t, t), hyperdual.Inv(n.dot(n)))
}

func hPointPlane(p, t0, t1, t2 hvec) hyperdual.Number {
	n := t1.sub(t0).cross(t2.sub(t0))
	t := p.sub(t0).dot(n)
	return hyperdual.Mul(hyperdual.Mul(t, t), hyperdual.Inv(n.dot(n)))
}

func hCrossSquaredNorm(ea0, ea1, eb0, eb1 hvec) hyperdual.Number {
	n := ea1.sub(ea0).cross(eb1.sub(eb0))
	return n.dot(n)
}

// kernel binds the smooth function of a region to the subset of pair
// vertices it depends on. active holds vertex indices in ascending order and
// the function receives the active vertices in that order.
type kernel struct {
	active []int
	f      func(q []hvec) hyperdual.Number
}

// valueGrad evaluates f and its gradient with respect to the first dim
// coordinates of each point.
func valueGrad(pts []mgl64.Vec3, dim int, f func(q []hvec) hyperdual.Number) (float64, []float64) {
	n := len(pts) * dim
	base := make([]hvec, len(pts))
	for i, p := range pts {
		base[i] = hvec{{Real: p.X()}, {Real: p.Y()}, {Real: p.Z()}}
	}
	grad := make([]float64, n)
	var val float64
	for i := 0; i < n; i++ {
		base[i/dim][i%dim].E1mag = 1
		r := f(base)
		base[i/dim][i%dim].E1mag = 0
		grad[i] = r.E1mag
		if i == 0 {
			val = r.Real
		}
	}
	return val, grad
}

// valueGradHess evaluates f, its gradient and its Hessian with respect to
// the first dim coordinates of each point, one evaluation per unordered
// variable pair.
func valueGradHess(pts []mgl64.Vec3, dim int, f func(q []hvec) hyperdual.Number) (float64, []float64, *mat.SymDense) {
	n := len(pts) * dim
	base := make([]hvec, len(pts))
	for i, p := range pts {
		base[i] = hvec{{Real: p.X()}, {Real: p.Y()}, {Real: p.Z()}}
	}
	grad := make([]float64, n)
	hess := mat.NewSymDense(n, nil)
	var val float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			base[i/dim][i%dim].E1mag = 1
			base[j/dim][j%dim].E2mag = 1
			r := f(base)
			base[i/dim][i%dim].E1mag = 0
			base[j/dim][j%dim].E2mag = 0
			hess.SetSym(i, j, r.E1E2mag)
			if i == j {
				grad[i] = r.E1mag
				if i == 0 {
					val = r.Real
				}
			}
		}
	}
	return val, grad, hess
}

// gradientOf evaluates the region kernel over its active vertices and
// scatters the result into a gradient over all pair vertices.
func gradientOf(k kernel, pts []mgl64.Vec3, dim int) []float64 {
	sub := make([]mgl64.Vec3, len(k.active))
	for i, a := range k.active {
		sub[i] = pts[a]
	}
	_, g := valueGrad(sub, dim, k.f)
	if len(k.active) == len(pts) {
		return g
	}
	out := make([]float64, len(pts)*dim)
	for bi, pi := range k.active {
		copy(out[pi*dim:(pi+1)*dim], g[bi*dim:(bi+1)*dim])
	}
	return out
}

// hessianOf evaluates the region kernel over its active vertices and
// scatters the result into a Hessian over all pair vertices.
func hessianOf(k kernel, pts []mgl64.Vec3, dim int) *mat.SymDense {
	sub := make([]mgl64.Vec3, len(k.active))
	for i, a := range k.active {
		sub[i] = pts[a]
	}
	_, _, h := valueGradHess(sub, dim, k.f)
	if len(k.active) == len(pts) {
		return h
	}
	out := mat.NewSymDense(len(pts)*dim, nil)
	for bi, pi := range k.active {
		for bj := bi; bj < len(k.active); bj++ {
			pj := k.active[bj]
			for a := 0; a < dim; a++ {
				b := 0
				if bi == bj {
					b = a
				}
				for ; b < dim; b++ {
					out.SetSym(pi*dim+a, pj*dim+b, h.At(bi*dim+a, bj*dim+b))
				}
			}
		}
	}
	return out
}

var (
	kernelPointPoint = kernel{[]int{0, 1}, func(q []hvec) hyperdual.Number {
		return hPointPoint(q[0], q[1])
	}}
	kernelPointLine = kernel{[]int{0, 1, 2}, func(q []hvec) hyperdual.Number {
		return hPointLine(q[0], q[1], q[2])
	}}
	kernelLineLine = kernel{[]int{0, 1, 2, 3}, func(q []hvec) hyperdual.Number {
		return hLineLine(q[0], q[1], q[2], q[3])
	}}
	kernelPointPlane = kernel{[]int{0, 1, 2, 3}, func(q []hvec) hyperdual.Number {
		return hPointPlane(q[0], q[1], q[2], q[3])
	}}
	kernelCrossSquaredNorm = kernel{[]int{0, 1, 2, 3}, func(q []hvec) hyperdual.Number {
		return hCrossSquaredNorm(q[0], q[1], q[2], q[3])
	}}
)

func pointEdgeKernel(r PointEdgeRegion) kernel {
	switch r {
	case PointEdgeE0:
		return kernel{[]int{0, 1}, func(q []hvec) hyperdual.Number {
			return hPointPoint(q[0], q[1])
		}}
	case PointEdgeE1:
		return kernel{[]int{0, 2}, func(q []hvec) hyperdual.Number {
			return hPointPoint(q[0], q[1])
		}}
	default:
		return kernelPointLine
	}
}

func pointTriangleKernel(r PointTriangleRegion) kernel {
	pp := func(q []hvec) hyperdual.Number { return hPointPoint(q[0], q[1]) }
	pl := func(q []hvec) hyperdual.Number { return hPointLine(q[0], q[1], q[2]) }
	switch r {
	case PointTriangleT0:
		return kernel{[]int{0, 1}, pp}
	case PointTriangleT1:
		return kernel{[]int{0, 2}, pp}
	case PointTriangleT2:
		return kernel{[]int{0, 3}, pp}
	case PointTriangleE0:
		return kernel{[]int{0, 1, 2}, pl}
	case PointTriangleE1:
		return kernel{[]int{0, 2, 3}, pl}
	case PointTriangleE2:
		// The line through an edge does not depend on endpoint order, so the
		// (t0, t2) edge evaluates with ascending vertex indices.
		return kernel{[]int{0, 1, 3}, pl}
	default:
		return kernelPointPlane
	}
}

func edgeEdgeKernel(r EdgeEdgeRegion) kernel {
	pp := func(q []hvec) hyperdual.Number { return hPointPoint(q[0], q[1]) }
	pl := func(q []hvec) hyperdual.Number { return hPointLine(q[0], q[1], q[2]) }
	// plRev treats the last active vertex as the point and the first two as
	// the edge.
	plRev := func(q []hvec) hyperdual.Number { return hPointLine(q[2], q[0], q[1]) }
	switch r {
	case EdgeEdgeA0B0:
		return kernel{[]int{0, 2}, pp}
	case EdgeEdgeA0B1:
		return kernel{[]int{0, 3}, pp}
	case EdgeEdgeA1B0:
		return kernel{[]int{1, 2}, pp}
	case EdgeEdgeA1B1:
		return kernel{[]int{1, 3}, pp}
	case EdgeEdgeAB0:
		return kernel{[]int{0, 1, 2}, plRev}
	case EdgeEdgeAB1:
		return kernel{[]int{0, 1, 3}, plRev}
	case EdgeEdgeA0B:
		return kernel{[]int{0, 2, 3}, pl}
	case EdgeEdgeA1B:
		return kernel{[]int{1, 2, 3}, pl}
	default:
		return kernelLineLine
	}
}

// PointPointGradient returns the gradient of the squared point-point
// distance with respect to the stacked coordinates of (p0, p1).
func PointPointGradient(dim int, p0, p1 mgl64.Vec3) []float64 {
	return gradientOf(kernelPointPoint, []mgl64.Vec3{p0, p1}, dim)
}

// PointPointHessian returns the Hessian of the squared point-point distance
// with respect to the stacked coordinates of (p0, p1).
func PointPointHessian(dim int, p0, p1 mgl64.Vec3) *mat.SymDense {
	return hessianOf(kernelPointPoint, []mgl64.Vec3{p0, p1}, dim)
}

// PointEdgeGradient returns the gradient of the squared point-edge distance
// in region r with respect to the stacked coordinates of (p, e0, e1).
func PointEdgeGradient(dim int, r PointEdgeRegion, p, e0, e1 mgl64.Vec3) []float64 {
	return gradientOf(pointEdgeKernel(r), []mgl64.Vec3{p, e0, e1}, dim)
}

// PointEdgeHessian returns the Hessian of the squared point-edge distance in
// region r with respect to the stacked coordinates of (p, e0, e1).
func PointEdgeHessian(dim int, r PointEdgeRegion, p, e0, e1 mgl64.Vec3) *mat.SymDense {
	return hessianOf(pointEdgeKernel(r), []mgl64.Vec3{p, e0, e1}, dim)
}

// PointTriangleGradient returns the gradient of the squared point-triangle
// distance in region r with respect to the stacked coordinates of
// (p, t0, t1, t2).
func PointTriangleGradient(r PointTriangleRegion, p, t0, t1, t2 mgl64.Vec3) []float64 {
	return gradientOf(pointTriangleKernel(r), []mgl64.Vec3{p, t0, t1, t2}, 3)
}

// PointTriangleHessian returns the Hessian of the squared point-triangle
// distance in region r with respect to the stacked coordinates of
// (p, t0, t1, t2).
func PointTriangleHessian(r PointTriangleRegion, p, t0, t1, t2 mgl64.Vec3) *mat.SymDense {
	return hessianOf(pointTriangleKernel(r), []mgl64.Vec3{p, t0, t1, t2}, 3)
}

// EdgeEdgeGradient returns the gradient of the squared edge-edge distance in
// region r with respect to the stacked coordinates of (ea0, ea1, eb0, eb1).
func EdgeEdgeGradient(r EdgeEdgeRegion, ea0, ea1, eb0, eb1 mgl64.Vec3) []float64 {
	return gradientOf(edgeEdgeKernel(r), []mgl64.Vec3{ea0, ea1, eb0, eb1}, 3)
}

// EdgeEdgeHessian returns the Hessian of the squared edge-edge distance in
// region r with respect to the stacked coordinates of (ea0, ea1, eb0, eb1).
func EdgeEdgeHessian(r EdgeEdgeRegion, ea0, ea1, eb0, eb1 mgl64.Vec3) *mat.SymDense {
	return hessianOf(edgeEdgeKernel(r), []mgl64.Vec3{ea0, ea1, eb0, eb1}, 3)
}

// CrossSquaredNormGradient returns the gradient of the edge-edge cross
// product squared norm with respect to the stacked coordinates of
// (ea0, ea1, eb0, eb1).
func CrossSquaredNormGradient(ea0, ea1, eb0, eb1 mgl64.Vec3) []float64 {
	return gradientOf(kernelCrossSquaredNorm, []mgl64.Vec3{ea0, ea1, eb0, eb1}, 3)
}

// CrossSquaredNormHessian returns the Hessian of the edge-edge cross product
// squared norm with respect to the stacked coordinates of
// (ea0, ea1, eb0, eb1).
func CrossSquaredNormHessian(ea0, ea1, eb0, eb1 mgl64.Vec3) *mat.SymDense {
	return hessianOf(kernelCrossSquaredNorm, []mgl64.Vec3{ea0, ea1, eb0, eb1}, 3)
}
