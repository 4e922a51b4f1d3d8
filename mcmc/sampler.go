// Public domain.

// Package mcmc draws from the posterior of a declared wander path model
// by componentwise random walk Metropolis, and persists the resulting
// traces so a long run need not be repeated.
package mcmc

import (
	"fmt"
	"math"

	idist "bitbucket.org/dtolpin/infergo/dist"
	"bitbucket.org/dtolpin/infergo/model"
	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/apw"
	"github.com/duserzym/mcplates/dist"
)

// Rand is the random number source of the sampler.  It is satisfied by
// *rand.Rand of golang.org/x/exp/rand.
type Rand interface {
	Float64() float64
	NormFloat64() float64
	Seed(uint64)
}

// Sampler draws from path model posteriors.  A fifth of the requested
// iterations is discarded as burn-in.  With a non-nil store, each run is
// persisted under the model name and the returned trace is read back
// through the store.
type Sampler struct {
	store *Store
	rnd   Rand
}

var (
	_ apw.Sampler = (*Sampler)(nil)
	_ apw.Trace   = (*Trace)(nil)
)

// New creates a sampler.  store may be nil for purely in-memory use.
func New(store *Store, rnd Rand) *Sampler {
	return &Sampler{store: store, rnd: rnd}
}

// joint scores a flat parameter vector:  the log prior of every declared
// variable plus the Von Mises-Fisher log likelihood of each observation,
// evaluated at the position the path predicts for the observation's age
// variable.  The likelihood is built centered on the reported direction
// and evaluated at the prediction, which is equivalent because the
// density depends only on the angle between the two.
type joint struct {
	spec   *apw.ModelSpec
	dim    int
	priors []func(x []float64) float64
	like   []*dist.VonMisesFisher

	// offsets into the flat vector
	start int
	dirs  []int
	rates []int
	cps   []int
	ages  []int
}

var _ model.Model = (*joint)(nil)

func newJoint(spec *apw.ModelSpec) (*joint, error) {
	j := &joint{spec: spec}
	offset := make(map[string]int)
	for _, v := range spec.Vars {
		v := v
		off := j.dim
		offset[v.Name] = off
		j.dim += v.Dim
		switch v.Kind {
		case apw.KindVMF:
			d, err := dist.NewVonMisesFisher(
				unit.AngleFromDeg(v.Param[0]), unit.AngleFromDeg(v.Param[1]),
				v.Param[2])
			if err != nil {
				return nil, fmt.Errorf("mcmc: prior of %s: %v", v.Name, err)
			}
			j.priors = append(j.priors, func(x []float64) float64 {
				return d.LogP(unit.AngleFromDeg(x[off]), unit.AngleFromDeg(x[off+1]))
			})
		case apw.KindWatson:
			d, err := dist.NewWatsonGirdle(
				unit.AngleFromDeg(v.Param[0]), unit.AngleFromDeg(v.Param[1]),
				v.Param[2])
			if err != nil {
				return nil, fmt.Errorf("mcmc: prior of %s: %v", v.Name, err)
			}
			j.priors = append(j.priors, func(x []float64) float64 {
				return d.LogP(unit.AngleFromDeg(x[off]), unit.AngleFromDeg(x[off+1]))
			})
		case apw.KindExponential:
			lambda := v.Param[0]
			j.priors = append(j.priors, func(x []float64) float64 {
				if x[off] < 0 {
					return math.Inf(-1)
				}
				return idist.Expon.Logp(lambda, x[off])
			})
		case apw.KindUniform:
			lo, hi := v.Param[0], v.Param[1]
			logp := -math.Log(hi - lo)
			j.priors = append(j.priors, func(x []float64) float64 {
				if x[off] < lo || x[off] > hi {
					return math.Inf(-1)
				}
				return logp
			})
		case apw.KindNormal:
			mu, sigma := v.Param[0], v.Param[1]
			j.priors = append(j.priors, func(x []float64) float64 {
				return idist.Normal.Logp(mu, sigma, x[off])
			})
		default:
			return nil, fmt.Errorf("mcmc: %s has unsupported distribution kind %d",
				v.Name, v.Kind)
		}
	}

	lookup := func(name string) (int, error) {
		off, ok := offset[name]
		if !ok {
			return 0, fmt.Errorf("mcmc: model declares no variable %s", name)
		}
		return off, nil
	}
	var err error
	if j.start, err = lookup("start"); err != nil {
		return nil, err
	}
	j.dirs = make([]int, spec.NEuler)
	j.rates = make([]int, spec.NEuler)
	for i := 0; i < spec.NEuler; i++ {
		if j.dirs[i], err = lookup(fmt.Sprintf("euler_%d", i)); err != nil {
			return nil, err
		}
		if j.rates[i], err = lookup(fmt.Sprintf("rate_%d", i)); err != nil {
			return nil, err
		}
	}
	j.cps = make([]int, spec.NEuler-1)
	for i := range j.cps {
		if j.cps[i], err = lookup(fmt.Sprintf("changepoint_%d", i)); err != nil {
			return nil, err
		}
	}
	j.ages = make([]int, len(spec.Obs))
	for i, o := range spec.Obs {
		if j.ages[i], err = lookup(o.AgeVar); err != nil {
			return nil, err
		}
		d, err := dist.NewVonMisesFisher(
			unit.AngleFromDeg(o.Lon), unit.AngleFromDeg(o.Lat), o.Kappa)
		if err != nil {
			return nil, fmt.Errorf("mcmc: likelihood of %s: %v", o.Name, err)
		}
		j.like = append(j.like, d)
	}
	return j, nil
}

// Observe returns the joint log density at x.
func (j *joint) Observe(x []float64) float64 {
	ll := 0.
	for _, p := range j.priors {
		ll += p(x)
		if math.IsInf(ll, -1) {
			return ll
		}
	}
	start := [2]float64{x[j.start], x[j.start+1]}
	dirs := make([][2]float64, len(j.dirs))
	rates := make([]float64, len(j.rates))
	for i, off := range j.dirs {
		dirs[i] = [2]float64{x[off], x[off+1]}
		rates[i] = x[j.rates[i]]
	}
	cps := make([]float64, len(j.cps))
	for i, off := range j.cps {
		cps[i] = x[off]
	}
	for i, off := range j.ages {
		lon, lat, err := j.spec.Position(start, x[off], dirs, rates, cps)
		if err != nil {
			return math.Inf(-1)
		}
		ll += j.like[i].LogP(unit.AngleFromDeg(lon), unit.AngleFromDeg(lat))
	}
	return ll
}

// initVector flattens the declared initial values.
func initVector(spec *apw.ModelSpec) []float64 {
	var x []float64
	for _, v := range spec.Vars {
		x = append(x, v.Init...)
	}
	return x
}

// stepVector assigns a proposal standard deviation to each component,
// scaled to the spread of its prior.  Directions step 5° per component.
func stepVector(spec *apw.ModelSpec) []float64 {
	var step []float64
	for _, v := range spec.Vars {
		switch v.Kind {
		case apw.KindVMF, apw.KindWatson:
			step = append(step, 5, 5)
		case apw.KindExponential:
			step = append(step, .5/v.Param[0])
		case apw.KindUniform:
			step = append(step, (v.Param[1]-v.Param[0])/25)
		case apw.KindNormal:
			step = append(step, v.Param[1]/2)
		}
	}
	return step
}

// warmStart nudges x toward a posterior mode by greedy coordinate
// search.  Failure to improve is not an error; the chain then simply
// starts from the declared initial values.
func warmStart(j *joint, x, step []float64) {
	best := j.Observe(x)
	if math.IsInf(best, -1) {
		return
	}
	for pass := 0; pass < 25; pass++ {
		improved := false
		for i := range x {
			keep := x[i]
			for _, c := range [2]float64{keep - step[i], keep + step[i]} {
				x[i] = c
				if ll := j.Observe(x); ll > best {
					best = ll
					keep = c
					improved = true
				}
			}
			x[i] = keep
		}
		if !improved {
			break
		}
	}
}

// Sample runs n Metropolis iterations over the model and returns the
// trace of the n - n/5 draws after burn-in.  Each iteration proposes a
// gaussian step on every component in turn.
func (s *Sampler) Sample(spec *apw.ModelSpec, n int) (apw.Trace, error) {
	if n < 5 {
		return nil, fmt.Errorf("mcmc: at least 5 iterations required, got %d", n)
	}
	j, err := newJoint(spec)
	if err != nil {
		return nil, err
	}
	x := initVector(spec)
	if len(x) != j.dim {
		return nil, fmt.Errorf("mcmc: initial values cover %d of %d components",
			len(x), j.dim)
	}
	step := stepVector(spec)
	warmStart(j, x, step)

	burn := n / 5
	t := &Trace{Draws: n - burn, Data: map[string][][]float64{}}
	for _, v := range spec.Vars {
		t.Names = append(t.Names, v.Name)
		t.Data[v.Name] = make([][]float64, 0, t.Draws)
	}

	ll := j.Observe(x)
	for it := 0; it < n; it++ {
		for i := range x {
			keep := x[i]
			x[i] = keep + step[i]*s.rnd.NormFloat64()
			llNew := j.Observe(x)
			if !math.IsInf(llNew, -1) &&
				(llNew >= ll || s.rnd.Float64() < math.Exp(llNew-ll)) {
				ll = llNew
			} else {
				x[i] = keep
			}
		}
		if it < burn {
			continue
		}
		off := 0
		for _, v := range spec.Vars {
			row := make([]float64, v.Dim)
			copy(row, x[off:off+v.Dim])
			t.Data[v.Name] = append(t.Data[v.Name], row)
			off += v.Dim
		}
	}

	if s.store == nil {
		return t, nil
	}
	if err = s.store.Save(spec.Name, t); err != nil {
		return nil, err
	}
	return s.store.Load(spec.Name)
}
