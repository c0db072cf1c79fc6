package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	mlerrors "github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// CheckXy validates the shapes of a training pair: y must be an n×1 column
// of integer labels matching the rows of X.
func CheckXy(op string, X, y mat.Matrix) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, mlerrors.ErrEmptyData
	}
	if yRows != nSamples {
		return 0, 0, mlerrors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return 0, 0, mlerrors.NewDimensionError(op, 1, yCols, 1)
	}
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) || math.IsNaN(v) {
			return 0, 0, mlerrors.NewValidationError("y", "class labels must be integers", v)
		}
	}
	return nSamples, nFeatures, nil
}

// EncodeClasses returns the sorted distinct labels of y and, for every
// sample, the index of its label in that list.
func EncodeClasses(y mat.Matrix) (classes []int, yIdx []int) {
	n, _ := y.Dims()
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		seen[int(y.At(i, 0))] = true
	}
	classes = make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	yIdx = make([]int, n)
	for i := 0; i < n; i++ {
		yIdx[i] = pos[int(y.At(i, 0))]
	}
	return classes, yIdx
}

// ClassWeights returns one weight per class. "balanced" gives
// n_samples / (n_classes * count); anything else gives 1.
func ClassWeights(mode string, yIdx []int, nClasses int) []float64 {
	w := make([]float64, nClasses)
	if mode != "balanced" {
		for i := range w {
			w[i] = 1
		}
		return w
	}
	counts := make([]int, nClasses)
	for _, c := range yIdx {
		counts[c]++
	}
	for i, c := range counts {
		if c > 0 {
			w[i] = float64(len(yIdx)) / float64(nClasses*c)
		}
	}
	return w
}

// LabelColumn builds the n×1 prediction matrix from class indices.
func LabelColumn(classes []int, idx []int) *mat.Dense {
	out := mat.NewDense(len(idx), 1, nil)
	for i, k := range idx {
		out.Set(i, 0, float64(classes[k]))
	}
	return out
}

// ArgMax returns the index of the first maximal element.
func ArgMax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// MeanAccuracy is the Score shared by every classifier: the fraction of
// rows where pred equals y.
func MeanAccuracy(pred, y mat.Matrix) (float64, error) {
	n, _ := pred.Dims()
	yRows, _ := y.Dims()
	if n != yRows {
		return 0, mlerrors.NewDimensionError("Score", yRows, n, 0)
	}
	if n == 0 {
		return 0, mlerrors.ErrEmptyData
	}
	correct := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
