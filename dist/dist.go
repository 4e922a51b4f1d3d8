// Public domain.

// Package dist implements the spherical probability distributions used in
// fitting apparent polar wander paths:  the Von Mises-Fisher distribution,
// concentrated about a mean direction, and the Watson girdle distribution,
// dispersed along a great circle perpendicular to an axis.
//
// Both distributions are parameterized by a direction in degrees of
// longitude and latitude and a concentration κ.  Concentrations of
// magnitude below Eps are indistinguishable from uniform on the sphere
// and are treated as exactly uniform.
package dist

import (
	"math"

	"github.com/soniakeys/coord"
)

// Eps is the concentration magnitude below which a distribution is
// treated as uniform on the sphere.
const Eps = 1e-6

// logUniformSphere is the log density of the uniform distribution on the
// unit sphere, log(1/4π).
var logUniformSphere = -math.Log(4 * math.Pi)

// Rand is an interface allowing the random number source used by the
// samplers to be swapped.  It is satisfied by *rand.Rand of
// golang.org/x/exp/rand.
type Rand interface {
	Float64() float64
	Seed(uint64)
}

// uniformCart draws a uniform-on-sphere cartesian unit vector.
func uniformCart(rnd Rand) coord.Cart {
	z := 2*rnd.Float64() - 1
	s := math.Sqrt(1 - z*z)
	sp, cp := math.Sincos(2 * math.Pi * rnd.Float64())
	return coord.Cart{X: s * cp, Y: s * sp, Z: z}
}
