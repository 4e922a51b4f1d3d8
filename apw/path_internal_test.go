// Public domain.

package apw

import "testing"

func TestSortedChangepoints(t *testing.T) {
	for _, in := range [][]float64{{1050, 1070}, {1070, 1050}} {
		got := sortedChangepoints(in)
		want := []float64{1070, 1050, 0}
		if len(got) != len(want) {
			t.Fatalf("%v: got %v", in, got)
		}
		for i, w := range want {
			if got[i] != w {
				t.Errorf("%v: got %v, want %v", in, got, want)
				break
			}
		}
	}
}
