// Public domain.

package apw

import (
	"fmt"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/lmfit"
	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/pole"
	"github.com/duserzym/mcplates/sphere"
)

// GreatCircleFit fits the observed pole positions against linear motion
// along a single great circle over age, a quick non-Bayesian gauge of
// how far the record departs from one constant rotation.  It returns
// the rms of the great circle residuals and the fitted position at each
// observation's nominal age.
func GreatCircleFit(poles []*pole.PaleomagneticPole) (rms unit.Angle, fitted []Direction, err error) {
	if len(poles) < 2 {
		return 0, nil, fmt.Errorf(
			"apw: great circle fit requires at least 2 poles, got %d", len(poles))
	}
	ages := make([]float64, len(poles))
	s := make(coord.EquaS, len(poles))
	for i, p := range poles {
		ages[i] = p.Age()
		s[i] = coord.Equa{RA: unit.RAFromDeg(p.Lon().Deg()), Dec: p.Lat()}
	}
	lmf := lmfit.New(ages, s)
	if lmf == nil {
		return 0, nil, fmt.Errorf("apw: great circle fit is degenerate")
	}
	fitted = make([]Direction, len(poles))
	for i, age := range ages {
		e := lmf.Pos(age)
		fitted[i] = Direction{
			Lon: sphere.ClampLon(unit.Angle(e.RA)).Deg(),
			Lat: e.Dec.Deg(),
		}
	}
	return lmf.Rms(), fitted, nil
}
