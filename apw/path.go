// Public domain.

package apw

import (
	"fmt"
	"sort"

	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/pole"
)

// sortedChangepoints appends the present day to the changepoint ages and
// orders the result oldest first, one interval end per rotation regime.
func sortedChangepoints(changepoints []float64) []float64 {
	cps := make([]float64, len(changepoints), len(changepoints)+1)
	copy(cps, changepoints)
	cps = append(cps, 0)
	sort.Sort(sort.Reverse(sort.Float64Slice(cps)))
	return cps
}

// PolePosition computes the position at the target age of a pole
// anchored at (startLon, startLat) at startAge, under a piecewise
// sequence of constant-rate Euler rotations.  Regime i runs from the end
// of regime i-1 (or startAge) down to changepoint i; the last regime
// runs to the present day.
//
// Exactly len(eulers)-1 changepoints are required, and at least one
// Euler pole.
func PolePosition(startLon, startLat unit.Angle, startAge, age float64,
	eulers []*pole.EulerPole, changepoints []float64) (lon, lat unit.Angle, err error) {

	if len(eulers) < 1 {
		err = fmt.Errorf("apw: at least one Euler pole required")
		return
	}
	if len(changepoints) != len(eulers)-1 {
		err = fmt.Errorf("apw: %d Euler poles require %d changepoints, got %d",
			len(eulers), len(eulers)-1, len(changepoints))
		return
	}

	p, err := pole.New(startLon, startLat, 1)
	if err != nil {
		return
	}
	cps := sortedChangepoints(changepoints)
	time := startAge
	for i, e := range eulers {
		c := cps[i]
		if age < c {
			// the target age is past this regime:  rotate through
			// the whole interval and keep walking
			if err = p.Rotate(e, unit.AngleFromDeg(e.Rate()*(time-c))); err != nil {
				return
			}
			time = c
			continue
		}
		// the target age falls inside this regime
		if err = p.Rotate(e, unit.AngleFromDeg(e.Rate()*(time-age))); err != nil {
			return
		}
		break
	}
	return p.Lon(), p.Lat(), nil
}

// PositionFn is the deterministic link between raw sample values and a
// pole position.  All angles are in degrees; directions are (lon, lat)
// pairs.  It is pure:  derived entirely from the Euler pole count and
// the anchor age it was generated with.
type PositionFn func(start [2]float64, age float64,
	dirs [][2]float64, rates, changepoints []float64) (lon, lat float64, err error)

// PathFn generates the position function for a path with nEuler rotation
// regimes anchored at startAge.  The returned function rejects argument
// slices whose lengths do not match nEuler.
func PathFn(nEuler int, startAge float64) PositionFn {
	return func(start [2]float64, age float64,
		dirs [][2]float64, rates, changepoints []float64) (float64, float64, error) {

		if len(dirs) != nEuler || len(rates) != nEuler {
			return 0, 0, fmt.Errorf(
				"apw: expected %d Euler directions and rates, got %d and %d",
				nEuler, len(dirs), len(rates))
		}
		eulers := make([]*pole.EulerPole, nEuler)
		for i, d := range dirs {
			e, err := pole.NewEuler(
				unit.AngleFromDeg(d[0]), unit.AngleFromDeg(d[1]), rates[i])
			if err != nil {
				return 0, 0, err
			}
			eulers[i] = e
		}
		lon, lat, err := PolePosition(
			unit.AngleFromDeg(start[0]), unit.AngleFromDeg(start[1]),
			startAge, age, eulers, changepoints)
		if err != nil {
			return 0, 0, err
		}
		return lon.Deg(), lat.Deg(), nil
	}
}
