// Public domain.

package mcmc

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Trace is a recorded set of posterior draws, keyed by variable name.
// Each variable holds Draws rows of its dimension.
type Trace struct {
	Names []string
	Draws int
	Data  map[string][][]float64
}

// Len returns the number of recorded draws.
func (t *Trace) Len() int { return t.Draws }

// Values returns the draws of the named variable.
func (t *Trace) Values(name string) ([][]float64, error) {
	rows, ok := t.Data[name]
	if !ok {
		return nil, fmt.Errorf("mcmc: no samples of %s in trace", name)
	}
	return rows, nil
}

// Store persists traces in a directory, one gzipped gob file per model
// name.
type Store struct {
	Dir string
}

func (s Store) path(name string) string {
	return filepath.Join(s.Dir, name+".trace.gz")
}

// Has reports whether a trace has been saved under the model name.
func (s Store) Has(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// Save writes the trace under the model name, replacing any previous
// trace of that name.
func (s Store) Save(name string, t *Trace) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return err
	}
	z := gzip.NewWriter(f)
	if err = gob.NewEncoder(z).Encode(t); err != nil {
		f.Close()
		return err
	}
	if err = z.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a previously saved trace.
func (s Store) Load(name string) (*Trace, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	z, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	var t Trace
	if err = gob.NewDecoder(z).Decode(&t); err != nil {
		return nil, err
	}
	return &t, z.Close()
}
