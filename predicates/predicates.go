// Package predicates provides exact geometric orientation and intersection
// tests.
//
// Each orientation predicate evaluates its determinant in floating point
// first, together with a forward error bound (the static filter stage of
// Shewchuk's adaptive predicates). When the magnitude clears the bound the
// floating point sign is provably correct. Otherwise the determinant is
// re-evaluated in exact rational arithmetic, which is slower but never
// wrong. The intersection tests are built purely from orientation signs and
// coordinate comparisons, so they inherit exactness.
package predicates

import (
	"math/big"

	"github.com/go-gl/mathgl/mgl64"
)

// epsilon is the double precision roundoff unit, 2^-53.
const epsilon = 0x1p-53

// Error bound coefficients from Shewchuk's robust predicates.
const (
	ccwErrBound = (3 + 16*epsilon) * epsilon
	o3dErrBound = (7 + 56*epsilon) * epsilon
)

// Orient2D returns the sign of the signed area of triangle (a, b, c):
// +1 when the triangle winds counterclockwise, -1 when clockwise and 0 when
// the three points are exactly collinear.
func Orient2D(a, b, c mgl64.Vec2) int {
	detLeft := (a[0] - c[0]) * (b[1] - c[1])
	detRight := (a[1] - c[1]) * (b[0] - c[0])
	det := detLeft - detRight

	var detSum float64
	if detLeft > 0 {
		if detRight <= 0 {
			return sgn(det)
		}
		detSum = detLeft + detRight
	} else if detLeft < 0 {
		if detRight >= 0 {
			return sgn(det)
		}
		detSum = -detLeft - detRight
	} else {
		return sgn(det)
	}

	errBound := ccwErrBound * detSum
	if det >= errBound || -det >= errBound {
		return sgn(det)
	}
	return orient2DExact(a, b, c)
}

// Orient3D returns the sign of the signed volume of tetrahedron
// (a, b, c, d): +1 when d lies below the plane through (a, b, c) oriented
// counterclockwise, -1 when above and 0 when the four points are exactly
// coplanar.
func Orient3D(a, b, c, d mgl64.Vec3) int {
	adx := a[0] - d[0]
	ady := a[1] - d[1]
	adz := a[2] - d[2]
	bdx := b[0] - d[0]
	bdy := b[1] - d[1]
	bdz := b[2] - d[2]
	cdx := c[0] - d[0]
	cdy := c[1] - d[1]
	cdz := c[2] - d[2]

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	cdxady := cdx * ady
	adxcdy := adx * cdy
	adxbdy := adx * bdy
	bdxady := bdx * ady

	det := adz*(bdxcdy-cdxbdy) + bdz*(cdxady-adxcdy) + cdz*(adxbdy-bdxady)

	permanent := (abs(bdxcdy)+abs(cdxbdy))*abs(adz) +
		(abs(cdxady)+abs(adxcdy))*abs(bdz) +
		(abs(adxbdy)+abs(bdxady))*abs(cdz)
	errBound := o3dErrBound * permanent
	if det > errBound || -det > errBound {
		return sgn(det)
	}
	return orient3DExact(a, b, c, d)
}

func sgn(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// ratDiff returns x - y as an exact rational.
func ratDiff(x, y float64) *big.Rat {
	rx := new(big.Rat).SetFloat64(x)
	ry := new(big.Rat).SetFloat64(y)
	if rx == nil || ry == nil {
		panic("ipc: exact predicate requires finite coordinates")
	}
	return rx.Sub(rx, ry)
}

func orient2DExact(a, b, c mgl64.Vec2) int {
	acx := ratDiff(a[0], c[0])
	acy := ratDiff(a[1], c[1])
	bcx := ratDiff(b[0], c[0])
	bcy := ratDiff(b[1], c[1])

	left := new(big.Rat).Mul(acx, bcy)
	right := new(big.Rat).Mul(acy, bcx)
	return left.Sub(left, right).Sign()
}

func orient3DExact(a, b, c, d mgl64.Vec3) int {
	adx := ratDiff(a[0], d[0])
	ady := ratDiff(a[1], d[1])
	adz := ratDiff(a[2], d[2])
	bdx := ratDiff(b[0], d[0])
	bdy := ratDiff(b[1], d[1])
	bdz := ratDiff(b[2], d[2])
	cdx := ratDiff(c[0], d[0])
	cdy := ratDiff(c[1], d[1])
	cdz := ratDiff(c[2], d[2])

	minor := func(p, q, r, s *big.Rat) *big.Rat {
		left := new(big.Rat).Mul(p, q)
		right := new(big.Rat).Mul(r, s)
		return left.Sub(left, right)
	}

	det := new(big.Rat).Mul(adz, minor(bdx, cdy, cdx, bdy))
	det.Add(det, new(big.Rat).Mul(bdz, minor(cdx, ady, adx, cdy)))
	det.Add(det, new(big.Rat).Mul(cdz, minor(adx, bdy, bdx, ady)))
	return det.Sign()
}
