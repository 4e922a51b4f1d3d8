// Public domain.

// Package pole defines the directional entities of the polar wander
// model:  generic poles on the sphere, paleomagnetic pole observations
// carrying angular and age uncertainty, and Euler rotation poles.
package pole

import (
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/dist"
	"github.com/duserzym/mcplates/sphere"
)

// Pole is a direction on the sphere with a magnitude.  The zero value is
// not useful; construct with New.
type Pole struct {
	lon, lat unit.Angle
	norm     float64
	c        coord.Cart
}

// New constructs a pole.  Latitude must be in [-90°, 90°] and norm must
// be non-negative.
func New(lon, lat unit.Angle, norm float64) (*Pole, error) {
	c, err := sphere.Cartesian(lon, lat, norm)
	if err != nil {
		return nil, err
	}
	return &Pole{lon: sphere.ClampLon(lon), lat: lat, norm: norm, c: c}, nil
}

// Lon returns the longitude in [0°, 360°).
func (p *Pole) Lon() unit.Angle { return p.lon }

// Lat returns the latitude.
func (p *Pole) Lat() unit.Angle { return p.lat }

// Norm returns the magnitude.
func (p *Pole) Norm() float64 { return p.norm }

// Cart returns the cartesian position.
func (p *Pole) Cart() coord.Cart { return p.c }

// Rotate replaces the pole's position with its rotation by angle about
// the given Euler pole, in place.
//
// Rotate is meant for short-lived single-owner poles constructed inside
// a kinematic walk.  Observation data should never be rotated in place.
func (p *Pole) Rotate(e *EulerPole, angle unit.Angle) error {
	r, err := sphere.RotatePoint(&p.c, &e.c, angle)
	if err != nil {
		return err
	}
	lon, lat, norm, err := sphere.Spherical(&r)
	if err != nil {
		return err
	}
	p.c = r
	p.lon, p.lat, p.norm = lon, lat, norm
	return nil
}

// AgeType discriminates the two supported forms of age uncertainty.
type AgeType string

const (
	GaussianAge AgeType = "gaussian" // age ~ Normal(nominal, σ)
	UniformAge  AgeType = "uniform"  // age ~ Uniform(lower, upper)
)

// ParseAgeType recognizes the age uncertainty discriminators used in
// input records.
func ParseAgeType(s string) (AgeType, error) {
	switch AgeType(s) {
	case GaussianAge:
		return GaussianAge, nil
	case UniformAge:
		return UniformAge, nil
	}
	return "", fmt.Errorf("pole: unrecognized age uncertainty type %q", s)
}

// PaleomagneticPole is an observed paleomagnetic pole:  a unit direction
// with a reported 95% confidence radius and an age in millions of years,
// uncertain in one of the two AgeType forms.
type PaleomagneticPole struct {
	Pole
	a95      unit.Angle
	kappa    float64
	age      float64
	ageType  AgeType
	sigmaAge float64 // 1σ, gaussian type only
	ageLower float64 // uniform type only
	ageUpper float64
}

// NewGaussianAge constructs an observation whose age is gaussian
// distributed.  The reported uncertainty twoSigma is a 2σ value; half of
// it is kept as the standard deviation.
func NewGaussianAge(lon, lat, a95 unit.Angle, age, twoSigma float64) (*PaleomagneticPole, error) {
	p, err := newPaleo(lon, lat, a95, age)
	if err != nil {
		return nil, err
	}
	if twoSigma <= 0 {
		return nil, fmt.Errorf("pole: non-positive age 2σ %.6g", twoSigma)
	}
	p.ageType = GaussianAge
	p.sigmaAge = twoSigma / 2
	return p, nil
}

// NewUniformAge constructs an observation whose age is uniformly
// distributed between lower and upper.
func NewUniformAge(lon, lat, a95 unit.Angle, age, lower, upper float64) (*PaleomagneticPole, error) {
	p, err := newPaleo(lon, lat, a95, age)
	if err != nil {
		return nil, err
	}
	if lower >= upper {
		return nil, fmt.Errorf("pole: empty age interval [%.6g, %.6g]",
			lower, upper)
	}
	p.ageType = UniformAge
	p.ageLower = lower
	p.ageUpper = upper
	return p, nil
}

func newPaleo(lon, lat, a95 unit.Angle, age float64) (*PaleomagneticPole, error) {
	base, err := New(lon, lat, 1)
	if err != nil {
		return nil, err
	}
	kappa, err := dist.KappaFromA95(a95)
	if err != nil {
		return nil, err
	}
	return &PaleomagneticPole{Pole: *base, a95: a95, kappa: kappa, age: age}, nil
}

// A95 returns the 95% confidence radius of the pole direction.
func (p *PaleomagneticPole) A95() unit.Angle { return p.a95 }

// Kappa returns the Von Mises-Fisher concentration implied by A95.
func (p *PaleomagneticPole) Kappa() float64 { return p.kappa }

// Age returns the nominal age in Myr.
func (p *PaleomagneticPole) Age() float64 { return p.age }

// AgeUncertainty returns the age distribution of the observation:  the
// discriminating type, the 1σ value for gaussian ages, and the bounds
// for uniform ages.  The fields not selected by the type are zero.
func (p *PaleomagneticPole) AgeUncertainty() (t AgeType, sigma, lower, upper float64) {
	return p.ageType, p.sigmaAge, p.ageLower, p.ageUpper
}

// EulerPole is the fixed axis about which a plate rotates, with an
// angular rate in degrees per Myr, positive per the right-hand rule
// about the axis direction.  Immutable once constructed.
type EulerPole struct {
	Pole
	rate float64
}

// NewEuler constructs an Euler pole from its axis direction and rate.
func NewEuler(lon, lat unit.Angle, rate float64) (*EulerPole, error) {
	base, err := New(lon, lat, 1)
	if err != nil {
		return nil, err
	}
	return &EulerPole{Pole: *base, rate: rate}, nil
}

// Rate returns the angular rate in degrees per Myr.
func (e *EulerPole) Rate() float64 { return e.rate }

// SpeedAt returns the linear speed of the given site implied by the
// rotation, in km/Myr (numerically equal to mm/yr).  The speed scales
// with the sine of the angular separation between axis and site:  zero
// at the axis, greatest a quarter circle away.
func (e *EulerPole) SpeedAt(site *Pole) float64 {
	// spherical law of cosines for the separation
	cosSep := e.lat.Sin()*site.lat.Sin() +
		e.lat.Cos()*site.lat.Cos()*(e.lon-site.lon).Cos()
	sep := math.Acos(math.Max(-1, math.Min(1, cosSep)))
	return unit.AngleFromDeg(e.rate).Rad() * math.Sin(sep) * globe.Earth76.Er
}
