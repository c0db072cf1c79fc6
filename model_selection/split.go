// Package model_selection provides cross-validation splitters, cross-validated
// scoring and hyperparameter search in the manner of sklearn.model_selection.
package model_selection

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// KFoldSplitter defines interface for cross-validation splitters
type KFoldSplitter interface {
	Split(y []int) ([]CVFold, error)
	GetNSplits() int
}

// CVFold represents a single fold in cross-validation
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed int64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split generates train/test indices for each fold. Only len(y) is used.
func (kf *KFold) Split(y []int) ([]CVFold, error) {
	nSamples := len(y)
	if nSamples < kf.NSplits {
		return nil, errors.NewValidationError("n_splits", "cannot exceed the number of samples", kf.NSplits)
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewSource(kf.RandomSeed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits
	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])
		folds[i] = CVFold{TrainIndices: complement(nSamples, test), TestIndices: test}
		current += testSize
	}
	return folds, nil
}

// StratifiedKFold implements stratified k-fold cross-validation: every fold
// receives a share of each class proportional to its frequency.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewStratifiedKFold creates a new stratified k-fold splitter
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed int64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// GetNSplits returns the number of splits
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split generates stratified train/test indices for each fold.
func (skf *StratifiedKFold) Split(y []int) ([]CVFold, error) {
	nSamples := len(y)
	if nSamples < skf.NSplits {
		return nil, errors.NewValidationError("n_splits", "cannot exceed the number of samples", skf.NSplits)
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}
	labels := make([]int, 0, len(classIndices))
	for label := range classIndices {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	if skf.Shuffle {
		r := rand.New(rand.NewSource(skf.RandomSeed))
		for _, label := range labels {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	tests := make([][]int, skf.NSplits)
	// 余りの割り当て開始位置をクラスごとにずらしてフォールドサイズを揃える
	offset := 0
	for _, label := range labels {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits

		current := 0
		for k := 0; k < skf.NSplits; k++ {
			fold := (k + offset) % skf.NSplits
			testSize := foldSize
			if k < remainder {
				testSize++
			}
			tests[fold] = append(tests[fold], indices[current:current+testSize]...)
			current += testSize
		}
		offset = (offset + remainder) % skf.NSplits
	}

	folds := make([]CVFold, skf.NSplits)
	for i, test := range tests {
		sort.Ints(test)
		folds[i] = CVFold{TrainIndices: complement(nSamples, test), TestIndices: test}
	}
	return folds, nil
}

func complement(n int, test []int) []int {
	inTest := make([]bool, n)
	for _, idx := range test {
		inTest[idx] = true
	}
	train := make([]int, 0, n-len(test))
	for i := 0; i < n; i++ {
		if !inTest[i] {
			train = append(train, i)
		}
	}
	return train
}

// TrainTestSplit splits X and y into train and test parts. With stratify the
// class proportions are preserved in both parts.
func TrainTestSplit(X mat.Matrix, y []int, testSize float64, seed int64, stratify bool) (XTrain, XTest *mat.Dense, yTrain, yTest []int, err error) {
	n, _ := X.Dims()
	if n != len(y) {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, len(y), 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	r := rand.New(rand.NewSource(seed))
	var testIdx []int
	if stratify {
		byClass := make(map[int][]int)
		for i, label := range y {
			byClass[label] = append(byClass[label], i)
		}
		labels := make([]int, 0, len(byClass))
		for label := range byClass {
			labels = append(labels, label)
		}
		sort.Ints(labels)
		for _, label := range labels {
			idx := byClass[label]
			r.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
			k := int(float64(len(idx))*testSize + 0.5)
			testIdx = append(testIdx, idx[:k]...)
		}
	} else {
		perm := r.Perm(n)
		testIdx = perm[:int(float64(n)*testSize+0.5)]
	}
	if len(testIdx) == 0 || len(testIdx) == n {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "split leaves an empty part")
	}
	sort.Ints(testIdx)
	trainIdx := complement(n, testIdx)

	XTrain, yTrain = Subset(X, y, trainIdx)
	XTest, yTest = Subset(X, y, testIdx)
	return XTrain, XTest, yTrain, yTest, nil
}

// Subset copies the rows idx of X and y.
func Subset(X mat.Matrix, y []int, idx []int) (*mat.Dense, []int) {
	_, c := X.Dims()
	xs := mat.NewDense(len(idx), c, nil)
	ys := make([]int, len(idx))
	for i, r := range idx {
		for j := 0; j < c; j++ {
			xs.Set(i, j, X.At(r, j))
		}
		ys[i] = y[r]
	}
	return xs, ys
}

// LabelMatrix returns y as an n×1 matrix, the shape estimators consume.
func LabelMatrix(y []int) *mat.Dense {
	m := mat.NewDense(len(y), 1, nil)
	for i, v := range y {
		m.Set(i, 0, float64(v))
	}
	return m
}
