// Public domain.

// Package apwprog implements the apwfit command.
package apwprog

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	xrand "golang.org/x/exp/rand"

	"github.com/soniakeys/exit"
	"github.com/soniakeys/unit"

	"github.com/duserzym/mcplates/apw"
	"github.com/duserzym/mcplates/mcmc"
	"github.com/duserzym/mcplates/pole"
)

const versionString = "apwfit version 0.1 Go source."
const copyrightString = "Public domain."

func Main() {
	defer exit.Handler()

	cl := parseCommandLine()
	poles, err := readPoles(cl.fnPoles, skipSet(cl.skip))
	if err != nil {
		exit.Log(err)
	}
	if len(poles) < 2 {
		exit.Log("at least 2 usable pole records required")
	}
	fmt.Printf("%d poles, %s, ages %.0f to %.0f\n", len(poles), cl.name,
		poles[0].Age(), poles[len(poles)-1].Age())

	// quick non-Bayesian gauge of drift before committing to a long run
	if rms, _, err := apw.GreatCircleFit(poles); err == nil {
		fmt.Printf("great circle fit rms %.2f°\n", rms.Deg())
	}

	a, err := apw.New(cl.name, poles, cl.nEuler)
	if err != nil {
		exit.Log(err)
	}
	site, err := pole.New(unit.AngleFromDeg(cl.siteLon),
		unit.AngleFromDeg(cl.siteLat), 1)
	if err != nil {
		exit.Log(err)
	}
	if err = a.CreateModel(site, cl.kappa, cl.rate); err != nil {
		exit.Log(err)
	}

	store := mcmc.Store{Dir: cl.dir}
	if store.Has(a.Name()) && !cl.force {
		fmt.Println("loading saved trace")
		tr, err := store.Load(a.Name())
		if err != nil {
			exit.Log(err)
		}
		if err = a.LoadMCMC(tr); err != nil {
			exit.Log(err)
		}
	} else {
		rnd := xrand.New(&xrand.PCGSource{})
		if cl.repeatable {
			rnd.Seed(3)
		} else {
			rnd.Seed(uint64(time.Now().UnixNano()))
		}
		fmt.Printf("sampling %d iterations\n", cl.iter)
		if err = a.SampleMCMC(mcmc.New(&store, rnd), cl.iter); err != nil {
			exit.Log(err)
		}
	}

	if err = writeOutputs(cl, a, site); err != nil {
		exit.Log(err)
	}
}

type commandLine struct {
	fnPoles    string  // pole compilation CSV
	name       string  // model name, keys the trace and output files
	dir        string  // trace and output directory
	skip       string  // comma separated pole names to exclude
	nEuler     int     // rotation regimes
	iter       int     // sampler iterations
	synth      int     // posterior draws to reconstruct
	kappa      float64 // Watson girdle concentration
	rate       float64 // exponential rate prior scale
	siteLon    float64
	siteLat    float64
	force      bool
	repeatable bool
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.name, "name", "", "")
	flag.StringVar(&cl.dir, "d", ".", "")
	flag.StringVar(&cl.skip, "x", "", "")
	flag.IntVar(&cl.nEuler, "n", 2, "")
	flag.IntVar(&cl.iter, "i", 100000, "")
	flag.IntVar(&cl.synth, "s", 500, "")
	flag.Float64Var(&cl.kappa, "k", 0, "")
	flag.Float64Var(&cl.rate, "r", 2.5, "")
	flag.Float64Var(&cl.siteLon, "slon", 0, "")
	flag.Float64Var(&cl.siteLat, "slat", 0, "")
	flag.BoolVar(&cl.force, "f", false, "")
	flag.BoolVar(&cl.repeatable, "repeatable", false, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: apwfit [options] <polefile>    fit wander path to pole compilation
       apwfit -v                      display version and copyright

Options:
       -name <model name>     default: pole file base name
       -d <directory>         trace and output directory, default .
       -x <name,name,...>     pole records to exclude
       -n <rotations>         rotation regimes to fit, default 2
       -i <iterations>        sampler iterations, default 100000
       -s <draws>             posterior draws to reconstruct, default 500
       -k <concentration>     Watson girdle concentration, <= 0, default 0
       -r <scale>             rotation rate prior scale, default 2.5
       -slon, -slat <deg>     prior axis site, default 0, 0
       -f                     resample even if a saved trace exists
       -repeatable            fixed random seed
`)
	}
	flag.Parse()
	if *dv {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	cl.fnPoles = flag.Arg(0)
	if cl.name == "" {
		base := filepath.Base(cl.fnPoles)
		cl.name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &cl
}

func skipSet(spec string) map[string]bool {
	m := map[string]bool{}
	for _, s := range strings.Split(spec, ",") {
		if s = strings.TrimSpace(s); s > "" {
			m[s] = true
		}
	}
	return m
}

// readPoles loads a pole compilation CSV.  Required named columns are
// Name, PLon, PLat, A95, AgeNominal and AgeType; gaussian ages read
// Gaussian2Sigma, uniform ages read AgeLower and AgeUpper.  Records in
// skip are dropped.  The result is sorted oldest first.
func readPoles(fn string, skip map[string]bool) ([]*pole.PaleomagneticPole, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) < 2 {
		return nil, fmt.Errorf("%s: header and at least one record expected", fn)
	}

	col := map[string]int{}
	for i, h := range recs[0] {
		col[strings.TrimSpace(h)] = i
	}
	for _, h := range []string{"Name", "PLon", "PLat", "A95", "AgeNominal",
		"AgeType"} {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("%s: no column %s", fn, h)
		}
	}
	field := func(rec []string, h string) (float64, error) {
		i, ok := col[h]
		if !ok || i >= len(rec) {
			return 0, fmt.Errorf("no field %s", h)
		}
		return strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
	}

	var poles []*pole.PaleomagneticPole
	for n, rec := range recs[1:] {
		name := strings.TrimSpace(rec[col["Name"]])
		if skip[name] {
			continue
		}
		lon, err := field(rec, "PLon")
		if err == nil {
			var lat, a95, age float64
			if lat, err = field(rec, "PLat"); err == nil {
				if a95, err = field(rec, "A95"); err == nil {
					age, err = field(rec, "AgeNominal")
				}
			}
			if err == nil {
				var p *pole.PaleomagneticPole
				switch typ, tErr := pole.ParseAgeType(
					strings.TrimSpace(rec[col["AgeType"]])); {
				case tErr != nil:
					err = tErr
				case typ == pole.GaussianAge:
					var ts float64
					if ts, err = field(rec, "Gaussian2Sigma"); err == nil {
						p, err = pole.NewGaussianAge(unit.AngleFromDeg(lon),
							unit.AngleFromDeg(lat), unit.AngleFromDeg(a95),
							age, ts)
					}
				default:
					var lo, hi float64
					if lo, err = field(rec, "AgeLower"); err == nil {
						if hi, err = field(rec, "AgeUpper"); err == nil {
							p, err = pole.NewUniformAge(unit.AngleFromDeg(lon),
								unit.AngleFromDeg(lat), unit.AngleFromDeg(a95),
								age, lo, hi)
						}
					}
				}
				if err == nil {
					poles = append(poles, p)
					continue
				}
			}
		}
		return nil, fmt.Errorf("%s record %d (%s): %v", fn, n+1, name, err)
	}
	sort.Slice(poles, func(i, j int) bool {
		return poles[i].Age() > poles[j].Age()
	})
	return poles, nil
}

// writeOutputs reconstructs the fitted path from the posterior and
// writes the reconstruction CSVs next to the trace.
func writeOutputs(cl *commandLine, a *apw.APWPath, site *pole.Pole) error {
	n := cl.synth

	lons, lats, err := a.SyntheticPaths(n)
	if err != nil {
		return err
	}
	rows := [][]string{}
	for i := range lons {
		for j := range lons[i] {
			rows = append(rows, []string{
				strconv.Itoa(i), strconv.Itoa(j),
				fm(lons[i][j]), fm(lats[i][j])})
		}
	}
	if err = writeCSV(cl, "paths", []string{"draw", "segment", "lon", "lat"},
		rows); err != nil {
		return err
	}

	plons, plats, ages, err := a.SyntheticPoles(n)
	if err != nil {
		return err
	}
	rows = rows[:0]
	for i := range plons {
		for j := range plons[i] {
			rows = append(rows, []string{
				strconv.Itoa(i), strconv.Itoa(j),
				fm(plons[i][j]), fm(plats[i][j]), fm(ages[i][j])})
		}
	}
	if err = writeCSV(cl, "poles",
		[]string{"draw", "observation", "lon", "lat", "age"}, rows); err != nil {
		return err
	}

	dirs, err := a.EulerDirections()
	if err != nil {
		return err
	}
	rates, err := a.EulerRates()
	if err != nil {
		return err
	}
	speeds, err := a.PlateSpeeds(site)
	if err != nil {
		return err
	}
	rows = rows[:0]
	for i := range dirs {
		for k := range dirs[i] {
			rows = append(rows, []string{
				strconv.Itoa(i), strconv.Itoa(k),
				fm(dirs[i][k].Lon), fm(dirs[i][k].Lat),
				fm(rates[i][k]), fm(speeds[i][k])})
		}
	}
	if err = writeCSV(cl, "eulers",
		[]string{"rotation", "draw", "lon", "lat", "rate", "speed"},
		rows); err != nil {
		return err
	}

	cps, err := a.Changepoints()
	if err != nil {
		return err
	}
	rows = rows[:0]
	for i := range cps {
		for k, age := range cps[i] {
			rows = append(rows, []string{
				strconv.Itoa(i), strconv.Itoa(k), fm(age)})
		}
	}
	if err = writeCSV(cl, "changepoints",
		[]string{"boundary", "draw", "age"}, rows); err != nil {
		return err
	}

	return writeAges(cl, a)
}

func writeAges(cl *commandLine, a *apw.APWPath) error {
	ages, err := a.Ages()
	if err != nil {
		return err
	}
	rows := [][]string{}
	for j := range ages {
		for k, age := range ages[j] {
			rows = append(rows, []string{
				strconv.Itoa(j), strconv.Itoa(k), fm(age)})
		}
	}
	return writeCSV(cl, "ages", []string{"observation", "draw", "age"}, rows)
}

func writeCSV(cl *commandLine, kind string, header []string, rows [][]string) error {
	fn := filepath.Join(cl.dir, cl.name+"_"+kind+".csv")
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err = w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err = w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err = w.Error(); err != nil {
		f.Close()
		return err
	}
	fmt.Println("writing", fn)
	return f.Close()
}

func fm(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
