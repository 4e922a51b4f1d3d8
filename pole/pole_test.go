// Public domain.

package pole_test

import (
	"math"
	"testing"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/dist"
	"github.com/duserzym/mcplates/pole"
)

func TestNewRejects(t *testing.T) {
	if _, err := pole.New(0, unit.AngleFromDeg(91), 1); err == nil {
		t.Error("latitude 91 accepted")
	}
	if _, err := pole.New(0, 0, -1); err == nil {
		t.Error("negative norm accepted")
	}
}

func TestLonClamped(t *testing.T) {
	p, err := pole.New(unit.AngleFromDeg(-90), unit.AngleFromDeg(10), 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Lon().Deg(); math.Abs(got-270) > 1e-9 {
		t.Errorf("longitude %g, want 270", got)
	}
}

func TestRotateAboutNorthPole(t *testing.T) {
	e, err := pole.NewEuler(0, unit.AngleFromDeg(90), 1)
	if err != nil {
		t.Fatal(err)
	}
	p, err := pole.New(unit.AngleFromDeg(40), unit.AngleFromDeg(-20), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err = p.Rotate(e, unit.AngleFromDeg(30)); err != nil {
		t.Fatal(err)
	}
	if got := p.Lon().Deg(); math.Abs(got-70) > 1e-9 {
		t.Errorf("longitude %g, want 70", got)
	}
	if got := p.Lat().Deg(); math.Abs(got+20) > 1e-9 {
		t.Errorf("latitude %g, want -20", got)
	}
}

func TestAgeConstructors(t *testing.T) {
	a95 := unit.AngleFromDeg(5)
	g, err := pole.NewGaussianAge(0, 0, a95, 1100, 8)
	if err != nil {
		t.Fatal(err)
	}
	typ, sigma, _, _ := g.AgeUncertainty()
	if typ != pole.GaussianAge {
		t.Errorf("age type %q", typ)
	}
	if sigma != 4 {
		t.Errorf("σ %g, want half the reported 2σ", sigma)
	}
	kappa, err := dist.KappaFromA95(a95)
	if err != nil {
		t.Fatal(err)
	}
	if g.Kappa() != kappa {
		t.Errorf("κ %g, want %g", g.Kappa(), kappa)
	}

	u, err := pole.NewUniformAge(0, 0, a95, 1095, 1090, 1100)
	if err != nil {
		t.Fatal(err)
	}
	typ, _, lower, upper := u.AgeUncertainty()
	if typ != pole.UniformAge || lower != 1090 || upper != 1100 {
		t.Errorf("got %q [%g, %g]", typ, lower, upper)
	}

	if _, err = pole.NewGaussianAge(0, 0, a95, 1100, 0); err == nil {
		t.Error("zero 2σ accepted")
	}
	if _, err = pole.NewUniformAge(0, 0, a95, 1095, 1100, 1090); err == nil {
		t.Error("inverted age bounds accepted")
	}
}

func TestParseAgeType(t *testing.T) {
	if typ, err := pole.ParseAgeType("gaussian"); err != nil || typ != pole.GaussianAge {
		t.Errorf("gaussian: %v %v", typ, err)
	}
	if typ, err := pole.ParseAgeType("uniform"); err != nil || typ != pole.UniformAge {
		t.Errorf("uniform: %v %v", typ, err)
	}
	if _, err := pole.ParseAgeType("lognormal"); err == nil {
		t.Error("unrecognized type accepted")
	}
}

func TestSpeedAt(t *testing.T) {
	// axis at the north pole, 1°/Myr: a site on the equator moves at
	// one degree of arc per Myr
	e, err := pole.NewEuler(0, unit.AngleFromDeg(90), 1)
	if err != nil {
		t.Fatal(err)
	}
	site, err := pole.New(unit.AngleFromDeg(267.9), 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Pi / 180 * globe.Earth76.Er
	if got := e.SpeedAt(site); math.Abs(got-want) > 1e-9 {
		t.Errorf("equator speed %g, want %g", got, want)
	}

	// a site at the axis does not move
	atAxis, _ := pole.New(unit.AngleFromDeg(123), unit.AngleFromDeg(90), 1)
	if got := e.SpeedAt(atAxis); math.Abs(got) > 1e-9 {
		t.Errorf("axis speed %g, want 0", got)
	}
}
