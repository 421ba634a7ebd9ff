// Package barrier implements the clamped logarithmic barrier used by the
// contact potential.
//
// The barrier is defined over a distance measure d and an activation
// distance dhat:
//
//	b(d) = -(d - dhat)^2 * ln(d / dhat)   for 0 < d < dhat
//	b(d) = 0                              for d >= dhat
//	b(d) = +Inf                           for d <= 0
//
// It vanishes with two continuous derivatives at d = dhat, so constraints
// activate smoothly, and it diverges as d approaches zero, which is what
// keeps the potential from admitting interpenetration. The potential
// evaluates the barrier on squared distances, shifted so that a minimum
// separation distance maps to zero; this package is agnostic to that choice
// and treats d as a plain scalar.
package barrier

import "math"

// Barrier returns b(d) for the activation distance dhat.
func Barrier(d, dhat float64) float64 {
	if d <= 0 {
		return math.Inf(1)
	}
	if d >= dhat {
		return 0
	}
	dMinusDhat := d - dhat
	return -dMinusDhat * dMinusDhat * math.Log(d/dhat)
}

// Gradient returns db/dd. Outside the support (0, dhat) the barrier is
// constant and the derivative is zero.
func Gradient(d, dhat float64) float64 {
	if d <= 0 || d >= dhat {
		return 0
	}
	return (dhat - d) * (2*math.Log(d/dhat) - dhat/d + 1)
}

// Hessian returns d2b/dd2. Outside the support (0, dhat) it is zero.
func Hessian(d, dhat float64) float64 {
	if d <= 0 || d >= dhat {
		return 0
	}
	dhatD := dhat / d
	return (dhatD+2)*dhatD - 2*math.Log(d/dhat) - 3
}
