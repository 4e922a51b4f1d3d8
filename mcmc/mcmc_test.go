// Public domain.

package mcmc_test

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"

	"github.com/duserzym/mcplates/apw"
	"github.com/duserzym/mcplates/mcmc"
	"github.com/duserzym/mcplates/pole"
)

func testRand(seed uint64) mcmc.Rand {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(seed)
	return rnd
}

func testModel(t *testing.T, name string) *apw.ModelSpec {
	t.Helper()
	a95 := unit.AngleFromDeg(10)
	p0, err := pole.NewGaussianAge(
		unit.AngleFromDeg(10), unit.AngleFromDeg(60), a95, 1100, 10)
	if err != nil {
		t.Fatal(err)
	}
	p1, err := pole.NewGaussianAge(
		unit.AngleFromDeg(30), unit.AngleFromDeg(50), a95, 1040, 8)
	if err != nil {
		t.Fatal(err)
	}
	a, err := apw.New(name, []*pole.PaleomagneticPole{p0, p1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	site, err := pole.New(unit.AngleFromDeg(268), unit.AngleFromDeg(47), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err = a.CreateModel(site, -1, 2.5); err != nil {
		t.Fatal(err)
	}
	m, err := a.Model()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestStoreRoundTrip(t *testing.T) {
	st := mcmc.Store{Dir: t.TempDir()}
	if st.Has("x") {
		t.Fatal("Has before Save")
	}
	want := &mcmc.Trace{
		Names: []string{"start", "rate_0"},
		Draws: 2,
		Data: map[string][][]float64{
			"start":  {{10, 60}, {11, 59}},
			"rate_0": {{.4}, {.5}},
		},
	}
	if err := st.Save("x", want); err != nil {
		t.Fatal(err)
	}
	if !st.Has("x") {
		t.Fatal("Has after Save")
	}
	got, err := st.Load("x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len %d, want 2", got.Len())
	}
	rows, err := got.Values("start")
	if err != nil {
		t.Fatal(err)
	}
	if rows[1][0] != 11 || rows[1][1] != 59 {
		t.Errorf("start draw 1 = %v", rows[1])
	}
	if _, err = got.Values("euler_0"); err == nil {
		t.Error("Values of an absent variable succeeded")
	}
	if _, err = st.Load("y"); err == nil {
		t.Error("Load of an unsaved name succeeded")
	}
}

func TestSampleSurface(t *testing.T) {
	m := testModel(t, "surface")
	s := mcmc.New(nil, testRand(1))
	tr, err := s.Sample(m, 50)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Len() != 40 {
		t.Fatalf("Len %d, want 40 after burn-in", tr.Len())
	}
	for _, v := range m.Vars {
		rows, err := tr.Values(v.Name)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 40 {
			t.Fatalf("%s has %d draws", v.Name, len(rows))
		}
		for _, row := range rows {
			if len(row) != v.Dim {
				t.Fatalf("%s draw has %d components, want %d",
					v.Name, len(row), v.Dim)
			}
			for _, c := range row {
				if math.IsNaN(c) || math.IsInf(c, 0) {
					t.Fatalf("%s drew %v", v.Name, row)
				}
			}
		}
	}
}

// Components with bounded priors never step outside their support:  the
// prior contributes density zero there and the proposal is rejected.
func TestSampleRespectsSupport(t *testing.T) {
	m := testModel(t, "support")
	s := mcmc.New(nil, testRand(2))
	tr, err := s.Sample(m, 60)
	if err != nil {
		t.Fatal(err)
	}
	rates, err := tr.Values("rate_0")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rates {
		if r[0] < 0 {
			t.Fatalf("negative rate %g recorded", r[0])
		}
	}
	for _, name := range []string{"start", "euler_0"} {
		rows, err := tr.Values(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, row := range rows {
			if row[1] < -90 || row[1] > 90 {
				t.Fatalf("%s latitude %g recorded", name, row[1])
			}
		}
	}
}

func TestSamplePersists(t *testing.T) {
	st := mcmc.Store{Dir: t.TempDir()}
	m := testModel(t, "persist")
	s := mcmc.New(&st, testRand(3))
	tr, err := s.Sample(m, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Has("persist") {
		t.Fatal("no trace persisted")
	}
	loaded, err := st.Load("persist")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != tr.Len() {
		t.Fatalf("persisted %d draws, returned %d", loaded.Len(), tr.Len())
	}
}

func TestSampleRejectsShortRun(t *testing.T) {
	m := testModel(t, "short")
	s := mcmc.New(nil, testRand(4))
	if _, err := s.Sample(m, 4); err == nil {
		t.Error("4 iterations accepted")
	}
}
