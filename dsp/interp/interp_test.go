package interp

import "testing"

func TestLinear2(t *testing.T) {
	for _, tc := range []struct {
		frac float64
		want float64
	}{
		{frac: 0, want: 2},
		{frac: 0.25, want: 2.5},
		{frac: 1, want: 4},
		{frac: 1.5, want: 5},
	} {
		if got := Linear2(tc.frac, 2, 4); got != tc.want {
			t.Fatalf("Linear2(%v) = %v, want %v", tc.frac, got, tc.want)
		}
	}
}

func TestSplit(t *testing.T) {
	for _, tc := range []struct {
		pos  float64
		n    int
		i    int
		frac float64
	}{
		{pos: -3, n: 4, i: 0, frac: 0},
		{pos: 1.75, n: 4, i: 1, frac: 0.75},
		{pos: 3, n: 4, i: 2, frac: 1},
		{pos: 9, n: 4, i: 2, frac: 1},
		{pos: 0.5, n: 1, i: 0, frac: 0},
	} {
		i, frac := Split(tc.pos, tc.n)
		if i != tc.i || frac != tc.frac {
			t.Fatalf("Split(%v, %d) = %d, %v, want %d, %v", tc.pos, tc.n, i, frac, tc.i, tc.frac)
		}
	}
}

func TestAt(t *testing.T) {
	x := []float64{0, 10, 20}

	for _, tc := range []struct {
		pos  float64
		want float64
	}{
		{pos: -1, want: 0},
		{pos: 0.25, want: 2.5},
		{pos: 1.5, want: 15},
		{pos: 2, want: 20},
		{pos: 9, want: 20},
	} {
		if got := At(x, tc.pos); got != tc.want {
			t.Fatalf("At(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}

	if got := At([]float64{7}, 3); got != 7 {
		t.Fatalf("At on single entry = %v, want 7", got)
	}
}
