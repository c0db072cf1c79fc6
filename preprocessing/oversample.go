package preprocessing

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// RandomOverSampler duplicates randomly chosen minority-class rows, with
// replacement, until every class has as many rows as the largest one.
// The output keeps the original rows first, followed by the duplicates
// in ascending class order.
type RandomOverSampler struct {
	RandomState int64
}

// NewRandomOverSampler returns an oversampler seeded with seed.
func NewRandomOverSampler(seed int64) *RandomOverSampler {
	return &RandomOverSampler{RandomState: seed}
}

// ResampleIndices returns the row indices of the balanced sample.
func (o *RandomOverSampler) ResampleIndices(y []int) ([]int, error) {
	if len(y) == 0 {
		return nil, errors.NewModelError("RandomOverSampler", "empty data", errors.ErrEmptyData)
	}
	byClass := make(map[int][]int)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	majority := 0
	for c, idx := range byClass {
		classes = append(classes, c)
		if len(idx) > majority {
			majority = len(idx)
		}
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(o.RandomState))
	out := make([]int, len(y), majority*len(classes))
	for i := range y {
		out[i] = i
	}
	for _, c := range classes {
		idx := byClass[c]
		for k := len(idx); k < majority; k++ {
			out = append(out, idx[rng.Intn(len(idx))])
		}
	}
	return out, nil
}

// FitResample returns the balanced X and y.
func (o *RandomOverSampler) FitResample(X mat.Matrix, y []int) (*mat.Dense, []int, error) {
	r, _ := X.Dims()
	if r != len(y) {
		return nil, nil, errors.NewDimensionError("RandomOverSampler.FitResample", r, len(y), 0)
	}
	idx, err := o.ResampleIndices(y)
	if err != nil {
		return nil, nil, err
	}
	return TakeRows(X, idx), TakeInts(y, idx), nil
}

// TakeRows copies the given rows of X into a new matrix.
func TakeRows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

// TakeInts returns y[idx[0]], y[idx[1]], ...
func TakeInts(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}

// ClassCounts returns the number of occurrences of every label.
func ClassCounts(y []int) map[int]int {
	counts := make(map[int]int)
	for _, c := range y {
		counts[c]++
	}
	return counts
}
