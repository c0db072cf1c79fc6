package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// DefaultIQRFactor is the Tukey fence multiplier.
const DefaultIQRFactor = 1.5

// IQRFilter removes rows in which any column lies outside
// [Q1 − k·IQR, Q3 + k·IQR]. Quartiles use linear interpolation between
// order statistics, the pandas default.
type IQRFilter struct {
	state *model.StateManager

	K     float64
	Q1    []float64
	Q3    []float64
	Lower []float64
	Upper []float64
}

// NewIQRFilter returns a filter with fence multiplier k.
func NewIQRFilter(k float64) *IQRFilter {
	return &IQRFilter{state: model.NewStateManager(), K: k}
}

// Quantile returns the p-quantile of x by linear interpolation between the
// closest ranks: position (n−1)·p of the sorted data.
func Quantile(p float64, x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Fit computes the per-column bounds.
func (f *IQRFilter) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("IQRFilter.Fit", "empty data", errors.ErrEmptyData)
	}
	if f.K < 0 {
		return errors.NewValidationError("k", "must be non-negative", f.K)
	}

	f.Q1 = make([]float64, c)
	f.Q3 = make([]float64, c)
	f.Lower = make([]float64, c)
	f.Upper = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		q1, q3 := Quantile(0.25, col), Quantile(0.75, col)
		iqr := q3 - q1
		f.Q1[j], f.Q3[j] = q1, q3
		f.Lower[j] = q1 - f.K*iqr
		f.Upper[j] = q3 + f.K*iqr
	}

	f.state.SetDimensions(c, r)
	f.state.SetFitted()
	return nil
}

// Mask reports, per row, whether every value lies within the bounds.
func (f *IQRFilter) Mask(X mat.Matrix) ([]bool, error) {
	if err := f.state.RequireFitted("IQRFilter", "Mask"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := f.state.RequireFeatures("IQRFilter.Mask", c); err != nil {
		return nil, err
	}

	keep := make([]bool, r)
	for i := 0; i < r; i++ {
		keep[i] = true
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if v < f.Lower[j] || v > f.Upper[j] {
				keep[i] = false
				break
			}
		}
	}
	return keep, nil
}

// FitMask is Fit followed by Mask on the same data.
func (f *IQRFilter) FitMask(X mat.Matrix) ([]bool, error) {
	if err := f.Fit(X); err != nil {
		return nil, err
	}
	return f.Mask(X)
}

func (f *IQRFilter) String() string {
	return fmt.Sprintf("IQRFilter(k=%g)", f.K)
}
