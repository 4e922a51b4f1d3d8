// Public domain.

package dist_test

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"

	"github.com/duserzym/mcplates/dist"
)

func testRand(seed uint64) *xrand.Rand {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(seed)
	return rnd
}

func TestVMFRejectsNegativeKappa(t *testing.T) {
	if _, err := dist.NewVonMisesFisher(0, 0, -1); err == nil {
		t.Error("negative concentration accepted")
	}
}

// At κ=0 the distribution is uniform on the sphere:  the z coordinate of
// draws is uniform on [-1, 1] and the hemispheres are equally likely.
func TestVMFUniform(t *testing.T) {
	d, err := dist.NewVonMisesFisher(
		unit.AngleFromDeg(120), unit.AngleFromDeg(-30), 0)
	if err != nil {
		t.Fatal(err)
	}
	rnd := testRand(1)
	const n = 20000
	var sumZ float64
	north := 0
	for i := 0; i < n; i++ {
		_, lat := d.Sample(rnd)
		sumZ += lat.Sin()
		if lat > 0 {
			north++
		}
	}
	if m := sumZ / n; math.Abs(m) > .02 {
		t.Errorf("mean z %.4f, want near 0", m)
	}
	if f := float64(north) / n; math.Abs(f-.5) > .02 {
		t.Errorf("northern fraction %.4f, want near .5", f)
	}
}

// With κ recovered from an a95 radius, the fraction of draws within that
// radius of the mean must match the confidence level.
func TestVMFConcentration(t *testing.T) {
	a95 := unit.AngleFromDeg(10)
	kappa, err := dist.KappaFromA95(a95)
	if err != nil {
		t.Fatal(err)
	}
	meanLon := unit.AngleFromDeg(30)
	meanLat := unit.AngleFromDeg(50)
	d, err := dist.NewVonMisesFisher(meanLon, meanLat, kappa)
	if err != nil {
		t.Fatal(err)
	}
	rnd := testRand(2)
	const n = 20000
	within := 0
	for i := 0; i < n; i++ {
		lon, lat := d.Sample(rnd)
		// angular separation from the mean by the spherical law of cosines
		cosSep := meanLat.Sin()*lat.Sin() +
			meanLat.Cos()*lat.Cos()*(lon-meanLon).Cos()
		if math.Acos(cosSep) <= a95.Rad() {
			within++
		}
	}
	if f := float64(within) / n; math.Abs(f-.95) > .015 {
		t.Errorf("fraction within a95 = %.4f, want near .95", f)
	}
}

// The density must integrate to one over the sphere.
func TestVMFDensityNormalized(t *testing.T) {
	d, err := dist.NewVonMisesFisher(0, unit.AngleFromDeg(90), 25)
	if err != nil {
		t.Fatal(err)
	}
	const steps = 20000
	dTheta := math.Pi / steps
	var sum float64
	for i := 0; i < steps; i++ {
		theta := (float64(i) + .5) * dTheta
		lat := unit.Angle(math.Pi/2 - theta)
		sum += math.Exp(d.LogP(0, lat)) * 2 * math.Pi * math.Sin(theta) * dTheta
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Errorf("density integrates to %.6f, want 1", sum)
	}
}

func TestKappaFromA95(t *testing.T) {
	prev := math.Inf(1)
	for _, deg := range []float64{2, 5, 10, 30} {
		a95 := unit.AngleFromDeg(deg)
		kappa, err := dist.KappaFromA95(a95)
		if err != nil {
			t.Fatal(err)
		}
		// the returned κ must satisfy the confidence-radius equation
		cdf := math.Expm1(-kappa*(1-a95.Cos())) / math.Expm1(-2*kappa)
		if math.Abs(cdf-.95) > 1e-9 {
			t.Errorf("a95 %g°: κ %.4g gives confidence %.12f", deg, kappa, cdf)
		}
		if kappa >= prev {
			t.Errorf("a95 %g°: κ %.4g not decreasing in radius", deg, kappa)
		}
		prev = kappa
	}
	// radius wide enough for the uniform distribution
	kappa, err := dist.KappaFromA95(unit.AngleFromDeg(170))
	if err != nil {
		t.Fatal(err)
	}
	if kappa != 0 {
		t.Errorf("a95 170°: κ = %g, want 0", kappa)
	}
	if _, err = dist.KappaFromA95(0); err == nil {
		t.Error("zero radius accepted")
	}
	if _, err = dist.KappaFromA95(unit.AngleFromDeg(200)); err == nil {
		t.Error("radius over 180° accepted")
	}
}

func TestWatsonRejectsPositiveKappa(t *testing.T) {
	if _, err := dist.NewWatsonGirdle(0, 0, 1); err == nil {
		t.Error("positive concentration accepted")
	}
}

func TestWatsonUniform(t *testing.T) {
	d, err := dist.NewWatsonGirdle(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := -math.Log(4 * math.Pi)
	if p := d.LogP(unit.AngleFromDeg(77), unit.AngleFromDeg(-12)); math.Abs(p-want) > 1e-12 {
		t.Errorf("κ=0 log density %g, want %g", p, want)
	}
}

// With the axis at coordinate north, draws concentrate toward the
// equator:  the sample mean of z² must match its analytic expectation.
func TestWatsonGirdleConcentration(t *testing.T) {
	kappa := -10.
	d, err := dist.NewWatsonGirdle(0, unit.AngleFromDeg(90), kappa)
	if err != nil {
		t.Fatal(err)
	}

	// E[z²] by numeric quadrature of t²e^(κt²) / e^(κt²) over [-1,1]
	const steps = 200000
	dt := 2. / steps
	var num, den float64
	for i := 0; i < steps; i++ {
		tt := -1 + (float64(i)+.5)*dt
		w := math.Exp(kappa * tt * tt)
		num += tt * tt * w * dt
		den += w * dt
	}
	want := num / den

	rnd := testRand(3)
	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		_, lat := d.Sample(rnd)
		z := lat.Sin()
		sum += z * z
	}
	if got := sum / n; math.Abs(got-want) > .01 {
		t.Errorf("mean z² %.4f, want %.4f", got, want)
	}
}

func TestWatsonDensityNormalized(t *testing.T) {
	d, err := dist.NewWatsonGirdle(0, unit.AngleFromDeg(90), -5)
	if err != nil {
		t.Fatal(err)
	}
	const steps = 20000
	dTheta := math.Pi / steps
	var sum float64
	for i := 0; i < steps; i++ {
		theta := (float64(i) + .5) * dTheta
		lat := unit.Angle(math.Pi/2 - theta)
		sum += math.Exp(d.LogP(0, lat)) * 2 * math.Pi * math.Sin(theta) * dTheta
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Errorf("density integrates to %.6f, want 1", sum)
	}
}
