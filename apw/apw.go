// Public domain.

// Package apw reconstructs apparent polar wander paths:  sequences of
// paleomagnetic pole positions implied by piecewise constant-rate
// rotations about Euler poles, fit against age-uncertain pole
// observations by Bayesian inference.
//
// The package declares the probabilistic model as data (ModelSpec) and
// leaves drawing posterior samples to an external engine behind the
// Sampler interface.  Once a trace is attached, query methods
// reconstruct posterior direction, rate, changepoint, and age samples,
// and synthesize pole clouds, path polylines, and plate speed
// distributions from them.
package apw

import (
	"errors"
	"fmt"

	"github.com/duserzym/mcplates/pole"
	"github.com/duserzym/mcplates/sphere"
	"github.com/soniakeys/unit"
)

// ErrNoModel reports an operation requiring a created model.
var ErrNoModel = errors.New("apw: no model has been created")

// ErrNoTrace reports a query before sampling or loading a trace.
var ErrNoTrace = errors.New("apw: no trace available")

// Trace is a set of posterior samples indexed by declared variable name
// and by draw.  Values rows are one draw each:  two columns for
// directions, one for scalars.
type Trace interface {
	Len() int
	Values(name string) ([][]float64, error)
}

// Sampler is the external inference engine boundary.  Sample consumes a
// model description, draws n samples discarding warm-up, persists the
// result under the model's name, and returns the persisted trace.
type Sampler interface {
	Sample(spec *ModelSpec, n int) (Trace, error)
}

// APWPath is a polar wander fitting session over a fixed list of
// observations.  The path is anchored at the oldest observation.
//
// A session moves through three stages:  construction, CreateModel, and
// then either SampleMCMC or LoadMCMC; the query methods require the
// third stage and fail with ErrNoTrace before it.
type APWPath struct {
	name     string
	poles    []*pole.PaleomagneticPole
	nEuler   int
	startAge float64
	start    *pole.PaleomagneticPole

	spec  *ModelSpec
	trace Trace
}

// New creates a session named name over the given observations, fitting
// nEuler rotation regimes.
func New(name string, poles []*pole.PaleomagneticPole, nEuler int) (*APWPath, error) {
	if nEuler < 1 {
		return nil, fmt.Errorf("apw: number of Euler rotations must be at least 1, got %d", nEuler)
	}
	if len(poles) == 0 {
		return nil, fmt.Errorf("apw: no pole observations")
	}
	a := &APWPath{name: name, poles: poles, nEuler: nEuler}
	a.start = poles[0]
	for _, p := range poles[1:] {
		if p.Age() > a.start.Age() {
			a.start = p
		}
	}
	a.startAge = a.start.Age()
	return a, nil
}

// Name returns the session name, which keys the persisted trace.
func (a *APWPath) Name() string { return a.name }

// Model returns the declarative model description.
func (a *APWPath) Model() (*ModelSpec, error) {
	if a.spec == nil {
		return nil, ErrNoModel
	}
	return a.spec, nil
}

// SampleMCMC runs the external sampler over the created model and
// attaches the resulting trace.
func (a *APWPath) SampleMCMC(s Sampler, n int) error {
	if a.spec == nil {
		return ErrNoModel
	}
	tr, err := s.Sample(a.spec, n)
	if err != nil {
		return err
	}
	return a.LoadMCMC(tr)
}

// LoadMCMC attaches a previously persisted trace.  The trace must carry
// every variable the model declares.
func (a *APWPath) LoadMCMC(t Trace) error {
	if a.spec == nil {
		return ErrNoModel
	}
	for _, v := range a.spec.Vars {
		rows, err := t.Values(v.Name)
		if err != nil {
			return fmt.Errorf("apw: trace is missing %s: %v", v.Name, err)
		}
		if len(rows) != t.Len() {
			return fmt.Errorf("apw: trace of %s has %d draws, expected %d",
				v.Name, len(rows), t.Len())
		}
	}
	a.trace = t
	return nil
}

// Direction is a posterior direction sample in degrees.
type Direction struct {
	Lon, Lat float64
}

// EulerDirections returns the posterior direction samples of each Euler
// pole, longitudes normalized to [0°, 360°).
func (a *APWPath) EulerDirections() ([][]Direction, error) {
	if a.trace == nil {
		return nil, ErrNoTrace
	}
	out := make([][]Direction, a.nEuler)
	for i := range out {
		rows, err := a.trace.Values(fmt.Sprintf("euler_%d", i))
		if err != nil {
			return nil, err
		}
		ds := make([]Direction, len(rows))
		for k, r := range rows {
			lon := sphere.ClampLon(unit.AngleFromDeg(r[0]))
			ds[k] = Direction{Lon: lon.Deg(), Lat: r[1]}
		}
		out[i] = ds
	}
	return out, nil
}

// EulerRates returns the posterior rate samples of each Euler pole, in
// degrees per Myr.
func (a *APWPath) EulerRates() ([][]float64, error) {
	if a.trace == nil {
		return nil, ErrNoTrace
	}
	out := make([][]float64, a.nEuler)
	for i := range out {
		col, err := a.scalar(fmt.Sprintf("rate_%d", i))
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

// Changepoints returns the posterior samples of each changepoint age.
func (a *APWPath) Changepoints() ([][]float64, error) {
	if a.trace == nil {
		return nil, ErrNoTrace
	}
	out := make([][]float64, a.nEuler-1)
	for i := range out {
		col, err := a.scalar(fmt.Sprintf("changepoint_%d", i))
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

// Ages returns the posterior age samples of each observation.
func (a *APWPath) Ages() ([][]float64, error) {
	if a.trace == nil {
		return nil, ErrNoTrace
	}
	out := make([][]float64, len(a.poles))
	for i := range out {
		col, err := a.scalar(fmt.Sprintf("a_%d", i))
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

// PlateSpeeds returns, per Euler pole, the posterior distribution of the
// linear speed of the given site, in km/Myr.
func (a *APWPath) PlateSpeeds(site *pole.Pole) ([][]float64, error) {
	dirs, err := a.EulerDirections()
	if err != nil {
		return nil, err
	}
	rates, err := a.EulerRates()
	if err != nil {
		return nil, err
	}
	out := make([][]float64, a.nEuler)
	for i := range out {
		speeds := make([]float64, len(rates[i]))
		for k, rate := range rates[i] {
			d := dirs[i][k]
			e, err := pole.NewEuler(
				unit.AngleFromDeg(d.Lon), unit.AngleFromDeg(d.Lat), rate)
			if err != nil {
				return nil, err
			}
			speeds[k] = e.SpeedAt(site)
		}
		out[i] = speeds
	}
	return out, nil
}

// pathSegments is the number of fixed ages synthetic paths are
// evaluated at.
const pathSegments = 100

// SyntheticPoles evaluates the fitted path at each observation's own
// posterior age for n evenly strided posterior draws, producing one
// synthetic pole cloud per observation.  Returned matrices are indexed
// [draw][observation].  n must be within [1, draws].
func (a *APWPath) SyntheticPoles(n int) (lons, lats, ages [][]float64, err error) {
	draws, err := a.drawArgs(n)
	if err != nil {
		return nil, nil, nil, err
	}
	ageCols := make([][]float64, len(a.poles))
	for j := range a.poles {
		if ageCols[j], err = a.scalar(fmt.Sprintf("a_%d", j)); err != nil {
			return nil, nil, nil, err
		}
	}

	lons = make([][]float64, n)
	lats = make([][]float64, n)
	ages = make([][]float64, n)
	for i, d := range draws {
		lons[i] = make([]float64, len(a.poles))
		lats[i] = make([]float64, len(a.poles))
		ages[i] = make([]float64, len(a.poles))
		for j := range a.poles {
			age := ageCols[j][d.index]
			lon, lat, err := a.spec.Position(d.start, age, d.dirs, d.rates, d.cps)
			if err != nil {
				return nil, nil, nil, err
			}
			lons[i][j], lats[i][j], ages[i][j] = lon, lat, age
		}
	}
	return lons, lats, ages, nil
}

// SyntheticPaths evaluates the fitted path at 100 fixed ages from the
// oldest to the youngest observed age for n evenly strided posterior
// draws, producing n path polylines indexed [draw][segment].
func (a *APWPath) SyntheticPaths(n int) (lons, lats [][]float64, err error) {
	draws, err := a.drawArgs(n)
	if err != nil {
		return nil, nil, err
	}
	minAge, maxAge := a.ageRange()
	ages := make([]float64, pathSegments)
	for j := range ages {
		ages[j] = maxAge + (minAge-maxAge)*float64(j)/float64(pathSegments-1)
	}

	lons = make([][]float64, n)
	lats = make([][]float64, n)
	for i, d := range draws {
		lons[i] = make([]float64, pathSegments)
		lats[i] = make([]float64, pathSegments)
		for j, age := range ages {
			lon, lat, err := a.spec.Position(d.start, age, d.dirs, d.rates, d.cps)
			if err != nil {
				return nil, nil, err
			}
			lons[i][j], lats[i][j] = lon, lat
		}
	}
	return lons, lats, nil
}

// drawArg is the positional argument bundle of one selected draw,
// assembled in the declaration order:  directions, rates, changepoints.
type drawArg struct {
	index int
	start [2]float64
	dirs  [][2]float64
	rates []float64
	cps   []float64
}

// drawArgs selects n evenly strided draws:  stride max(1, ⌊draws/n⌋),
// beginning at draw 0.  Deterministic, not a random subsample.
func (a *APWPath) drawArgs(n int) ([]drawArg, error) {
	if a.trace == nil {
		return nil, ErrNoTrace
	}
	total := a.trace.Len()
	if n < 1 || n > total {
		return nil, fmt.Errorf(
			"apw: requested %d synthetic samples from %d draws", n, total)
	}
	stride := total / n
	if stride < 1 {
		stride = 1
	}

	startRows, err := a.trace.Values("start")
	if err != nil {
		return nil, err
	}
	dirRows := make([][][]float64, a.nEuler)
	rateCols := make([][]float64, a.nEuler)
	for i := 0; i < a.nEuler; i++ {
		if dirRows[i], err = a.trace.Values(fmt.Sprintf("euler_%d", i)); err != nil {
			return nil, err
		}
		if rateCols[i], err = a.scalar(fmt.Sprintf("rate_%d", i)); err != nil {
			return nil, err
		}
	}
	cpCols := make([][]float64, a.nEuler-1)
	for i := range cpCols {
		if cpCols[i], err = a.scalar(fmt.Sprintf("changepoint_%d", i)); err != nil {
			return nil, err
		}
	}

	args := make([]drawArg, n)
	index := 0
	for i := range args {
		d := drawArg{
			index: index,
			start: [2]float64{startRows[index][0], startRows[index][1]},
			dirs:  make([][2]float64, a.nEuler),
			rates: make([]float64, a.nEuler),
			cps:   make([]float64, a.nEuler-1),
		}
		for j := 0; j < a.nEuler; j++ {
			d.dirs[j] = [2]float64{dirRows[j][index][0], dirRows[j][index][1]}
			d.rates[j] = rateCols[j][index]
		}
		for j := range d.cps {
			d.cps[j] = cpCols[j][index]
		}
		args[i] = d
		index += stride
	}
	return args, nil
}

// scalar reads a one-column variable from the trace as a flat slice.
func (a *APWPath) scalar(name string) ([]float64, error) {
	rows, err := a.trace.Values(name)
	if err != nil {
		return nil, err
	}
	col := make([]float64, len(rows))
	for i, r := range rows {
		if len(r) < 1 {
			return nil, fmt.Errorf("apw: empty draw %d of %s", i, name)
		}
		col[i] = r[0]
	}
	return col, nil
}
