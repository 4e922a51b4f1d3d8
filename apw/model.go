// Public domain.

package apw

import (
	"fmt"

	"github.com/duserzym/mcplates/pole"
)

// DistKind identifies the distribution of a declared random variable.
type DistKind int

const (
	// KindVMF is Von Mises-Fisher over a direction.
	// Param: mean longitude°, mean latitude°, concentration κ.
	KindVMF DistKind = iota
	// KindWatson is a Watson girdle over a direction.
	// Param: axis longitude°, axis latitude°, concentration κ ≤ 0.
	KindWatson
	// KindExponential is over a non-negative scalar.  Param: rate λ.
	KindExponential
	// KindUniform is over a bounded scalar.  Param: lower, upper.
	KindUniform
	// KindNormal is over a scalar.  Param: mean, standard deviation.
	KindNormal
)

// Variable declares one random variable of the model:  a name, a
// distribution kind with its parameters, and a starting value for
// samplers.  Directions have Dim 2 and are (longitude°, latitude°);
// scalars have Dim 1.
type Variable struct {
	Name  string
	Kind  DistKind
	Dim   int
	Param []float64
	Init  []float64
}

// Observation binds one observed pole to the model:  the position
// function evaluated at the observation's age variable, scored against
// the reported direction with a Von Mises-Fisher likelihood of the
// given concentration.  The reported direction is held fixed.
type Observation struct {
	Name     string // p_i
	AgeVar   string // a_i
	Lon, Lat float64
	Kappa    float64
}

// ModelSpec is the full declarative description of the probabilistic
// model:  the prior variables, the observation likelihoods, and the pure
// position function linking them.  Any sampling engine can consume it
// through an adapter; the description itself carries no engine state.
type ModelSpec struct {
	Name     string
	NEuler   int
	StartAge float64
	Vars     []Variable
	Obs      []Observation
	Position PositionFn
}

// Var returns the declared variable with the given name.
func (m *ModelSpec) Var(name string) (Variable, bool) {
	for _, v := range m.Vars {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// CreateModel declares the probabilistic graph for the path:  a VMF
// prior on the starting pole direction taken from the oldest
// observation, Watson girdle priors on the Euler pole directions about
// the site axis, exponential priors on the rotation rates, uniform
// changepoints bounded by the observed age range, and per-observation
// age variables of the observation's uncertainty type.
//
// rateScale must be positive and watsonKappa non-positive.
func (a *APWPath) CreateModel(site *pole.Pole, watsonKappa, rateScale float64) error {
	if rateScale <= 0 {
		return fmt.Errorf("apw: rate scale must be positive, got %.6g", rateScale)
	}
	if watsonKappa > 0 {
		return fmt.Errorf(
			"apw: positive Watson concentration %.6g not supported", watsonKappa)
	}

	minAge, maxAge := a.ageRange()
	m := &ModelSpec{
		Name:     a.name,
		NEuler:   a.nEuler,
		StartAge: a.startAge,
		Position: PathFn(a.nEuler, a.startAge),
	}

	m.Vars = append(m.Vars, Variable{
		Name: "start",
		Kind: KindVMF,
		Dim:  2,
		Param: []float64{a.start.Lon().Deg(), a.start.Lat().Deg(),
			a.start.Kappa()},
		Init: []float64{a.start.Lon().Deg(), a.start.Lat().Deg()},
	})

	for i := 0; i < a.nEuler; i++ {
		m.Vars = append(m.Vars, Variable{
			Name:  fmt.Sprintf("euler_%d", i),
			Kind:  KindWatson,
			Dim:   2,
			Param: []float64{site.Lon().Deg(), site.Lat().Deg(), watsonKappa},
			Init:  []float64{0, 0},
		})
	}
	for i := 0; i < a.nEuler; i++ {
		m.Vars = append(m.Vars, Variable{
			Name:  fmt.Sprintf("rate_%d", i),
			Kind:  KindExponential,
			Dim:   1,
			Param: []float64{rateScale},
			Init:  []float64{1 / rateScale},
		})
	}
	for i := 0; i < a.nEuler-1; i++ {
		// spread starting changepoints evenly through the age range
		frac := float64(i+1) / float64(a.nEuler)
		m.Vars = append(m.Vars, Variable{
			Name:  fmt.Sprintf("changepoint_%d", i),
			Kind:  KindUniform,
			Dim:   1,
			Param: []float64{minAge, maxAge},
			Init:  []float64{maxAge - frac*(maxAge-minAge)},
		})
	}
	for i, p := range a.poles {
		name := fmt.Sprintf("a_%d", i)
		switch typ, sigma, lower, upper := p.AgeUncertainty(); typ {
		case pole.GaussianAge:
			m.Vars = append(m.Vars, Variable{
				Name:  name,
				Kind:  KindNormal,
				Dim:   1,
				Param: []float64{p.Age(), sigma},
				Init:  []float64{p.Age()},
			})
		case pole.UniformAge:
			init := p.Age()
			if init <= lower || init >= upper {
				init = (lower + upper) / 2
			}
			m.Vars = append(m.Vars, Variable{
				Name:  name,
				Kind:  KindUniform,
				Dim:   1,
				Param: []float64{lower, upper},
				Init:  []float64{init},
			})
		default:
			return fmt.Errorf("apw: pole %d has no age uncertainty type", i)
		}
		m.Obs = append(m.Obs, Observation{
			Name:   fmt.Sprintf("p_%d", i),
			AgeVar: name,
			Lon:    p.Lon().Deg(),
			Lat:    p.Lat().Deg(),
			Kappa:  p.Kappa(),
		})
	}

	a.spec = m
	return nil
}

func (a *APWPath) ageRange() (min, max float64) {
	min = a.poles[0].Age()
	max = min
	for _, p := range a.poles[1:] {
		if age := p.Age(); age < min {
			min = age
		} else if age > max {
			max = age
		}
	}
	return
}
