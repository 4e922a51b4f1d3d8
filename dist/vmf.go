// Public domain.

package dist

import (
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/sphere"
)

// VonMisesFisher is the spherical analogue of a gaussian:  a distribution
// of directions concentrated about a mean direction, tighter for larger κ.
// κ below Eps gives the uniform distribution on the sphere.
type VonMisesFisher struct {
	mu    coord.Cart // unit vector of the mean direction
	kappa float64
	rot   coord.M3 // frame rotation taking coordinate north to mu
}

// NewVonMisesFisher constructs the distribution with mean direction
// (lon, lat) and concentration kappa ≥ 0.
func NewVonMisesFisher(lon, lat unit.Angle, kappa float64) (*VonMisesFisher, error) {
	if kappa < 0 {
		return nil, fmt.Errorf("dist: negative VMF concentration %.6g", kappa)
	}
	mu, err := sphere.Cartesian(lon, lat, 1)
	if err != nil {
		return nil, err
	}
	colat := unit.Angle(math.Pi/2) - lat
	return &VonMisesFisher{
		mu:    mu,
		kappa: kappa,
		rot:   sphere.RotationMatrix(0, colat, lon),
	}, nil
}

// Sample draws a direction.
//
// The colatitude coordinate relative to the mean is drawn by inverting
// its cumulative distribution, the azimuth uniformly, and the resulting
// vector is rotated from coordinate north to the mean direction.
func (d *VonMisesFisher) Sample(rnd Rand) (lon, lat unit.Angle) {
	zeta := rnd.Float64()
	var z float64
	if d.kappa < Eps {
		z = 2*zeta - 1
	} else {
		// safe against overflow for large κ
		z = 1 + math.Log(zeta+(1-zeta)*math.Exp(-2*d.kappa))/d.kappa
	}
	s := math.Sqrt(1 - z*z)
	sp, cp := math.Sincos(2 * math.Pi * rnd.Float64())
	c := coord.Cart{X: s * cp, Y: s * sp, Z: z}
	var r coord.Cart
	r.Mult3(&d.rot, &c)
	lon, lat, _, _ = sphere.Spherical(&r)
	return
}

// LogP evaluates the log density at direction (lon, lat).  Latitudes
// outside [-90°, 90°] have density zero.
func (d *VonMisesFisher) LogP(lon, lat unit.Angle) float64 {
	if d.kappa < Eps {
		return logUniformSphere
	}
	if dg := lat.Deg(); dg < -90 || dg > 90 {
		return math.Inf(-1)
	}
	x, err := sphere.Cartesian(lon, lat, 1)
	if err != nil {
		return math.Inf(-1)
	}
	cosTheta := x.Dot(&d.mu)
	return math.Log(d.kappa/(2*math.Pi*-math.Expm1(-2*d.kappa))) +
		d.kappa*(cosTheta-1)
}

// confidence level defining the a95 radius of a pole estimate
const a95Confidence = 0.95

// KappaFromA95 recovers the Von Mises-Fisher concentration implied by a
// reported 95% confidence radius, solving
//
//	0.95 = (1 - exp(-κ(1-cos a95))) / (1 - exp(-2κ))
//
// for κ by bisection.  Radii wide enough that even the uniform
// distribution satisfies the confidence level give κ = 0.
func KappaFromA95(a95 unit.Angle) (float64, error) {
	if r := a95.Rad(); r <= 0 || r > math.Pi {
		return 0, fmt.Errorf("dist: confidence radius %.6g° out of range",
			a95.Deg())
	}
	omc := 1 - a95.Cos()
	if omc/2 >= a95Confidence {
		return 0, nil
	}
	cdf := func(kappa float64) float64 {
		return math.Expm1(-kappa*omc) / math.Expm1(-2*kappa)
	}
	lo, hi := 0., 1.
	for cdf(hi) < a95Confidence {
		hi *= 2
		if hi > 1e12 {
			return 0, fmt.Errorf("dist: no concentration solves a95 %.6g°",
				a95.Deg())
		}
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if cdf(mid) < a95Confidence {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
