// Public domain.

package dist

import (
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/sphere"
)

// WatsonGirdle is the Watson distribution with non-positive concentration:
// directions dispersed along the great circle perpendicular to an axis,
// more tightly for more negative κ.  κ of magnitude below Eps gives the
// uniform distribution on the sphere.
//
// The density is proportional to exp(κ(μ·x)²) where μ is the axis.
type WatsonGirdle struct {
	axis    coord.Cart
	kappa   float64
	logNorm float64
}

// NewWatsonGirdle constructs the distribution with axis (lon, lat) and
// concentration kappa ≤ 0.
func NewWatsonGirdle(lon, lat unit.Angle, kappa float64) (*WatsonGirdle, error) {
	if kappa > 0 {
		return nil, fmt.Errorf(
			"dist: positive Watson concentration %.6g not supported", kappa)
	}
	axis, err := sphere.Cartesian(lon, lat, 1)
	if err != nil {
		return nil, err
	}
	d := &WatsonGirdle{axis: axis, kappa: kappa}
	if a := -kappa; a < Eps {
		d.logNorm = math.Log(4 * math.Pi)
	} else {
		// ∫ exp(κ(μ·x)²) dΩ = 4π · √π · erf(√|κ|) / (2√|κ|)
		sa := math.Sqrt(a)
		d.logNorm = math.Log(4 * math.Pi * math.Sqrt(math.Pi) *
			math.Erf(sa) / (2 * sa))
	}
	return d, nil
}

// Sample draws a direction by rejection from the uniform distribution on
// the sphere.  The acceptance probability exp(κ(μ·x)²) is bounded by one
// for κ ≤ 0, so no envelope constant is needed.
func (d *WatsonGirdle) Sample(rnd Rand) (lon, lat unit.Angle) {
	for {
		c := uniformCart(rnd)
		if -d.kappa < Eps {
			lon, lat, _, _ = sphere.Spherical(&c)
			return
		}
		t := c.Dot(&d.axis)
		if rnd.Float64() < math.Exp(d.kappa*t*t) {
			lon, lat, _, _ = sphere.Spherical(&c)
			return
		}
	}
}

// LogP evaluates the log density at direction (lon, lat).  Latitudes
// outside [-90°, 90°] have density zero.
func (d *WatsonGirdle) LogP(lon, lat unit.Angle) float64 {
	if dg := lat.Deg(); dg < -90 || dg > 90 {
		return math.Inf(-1)
	}
	if -d.kappa < Eps {
		return logUniformSphere
	}
	x, err := sphere.Cartesian(lon, lat, 1)
	if err != nil {
		return math.Inf(-1)
	}
	t := x.Dot(&d.axis)
	return d.kappa*t*t - d.logNorm
}
