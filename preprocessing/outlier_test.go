package preprocessing

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestQuantileLinear(t *testing.T) {
	x := []float64{4, 1, 3, 2}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, tt := range tests {
		if got := Quantile(tt.p, x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Quantile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !math.IsNaN(Quantile(0.5, nil)) {
		t.Error("empty input should give NaN")
	}
}

func TestIQRFilterKeepsRowsWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n, c = 300, 4
	data := make([]float64, n*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	// 明らかな外れ値
	data[0] = 50
	data[c*10+2] = -40
	X := mat.NewDense(n, c, data)

	f := NewIQRFilter(DefaultIQRFactor)
	keep, err := f.FitMask(X)
	if err != nil {
		t.Fatal(err)
	}
	if keep[0] || keep[10] {
		t.Error("rows with planted outliers must be dropped")
	}
	for i := 0; i < n; i++ {
		if !keep[i] {
			continue
		}
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if v < f.Lower[j] || v > f.Upper[j] {
				t.Fatalf("row %d col %d value %v outside [%v, %v]", i, j, v, f.Lower[j], f.Upper[j])
			}
		}
	}
}

func TestIQRFilterRejectsNegativeK(t *testing.T) {
	if err := NewIQRFilter(-1).Fit(mat.NewDense(2, 1, []float64{1, 2})); err == nil {
		t.Error("expected validation error")
	}
}
