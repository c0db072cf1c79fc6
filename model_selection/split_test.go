package model_selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestKFold(t *testing.T) {
	t.Run("Basic KFold split", func(t *testing.T) {
		n := 100
		y := make([]int, n)
		for i := range y {
			y[i] = i % 2
		}

		kf := NewKFold(5, false, 42)
		assert.Equal(t, 5, kf.GetNSplits())

		folds, err := kf.Split(y)
		require.NoError(t, err)
		assert.Equal(t, 5, len(folds))

		for i, fold := range folds {
			assert.Equal(t, 80, len(fold.TrainIndices), "Fold %d train size", i)
			assert.Equal(t, 20, len(fold.TestIndices), "Fold %d test size", i)

			testSet := make(map[int]bool)
			for _, idx := range fold.TestIndices {
				testSet[idx] = true
			}
			for _, idx := range fold.TrainIndices {
				assert.False(t, testSet[idx], "Train index %d in test set", idx)
			}
		}

		// 各インデックスはちょうど1回テストに入る
		allIndices := make(map[int]int)
		for _, fold := range folds {
			for _, idx := range fold.TestIndices {
				allIndices[idx]++
			}
		}
		for i := 0; i < n; i++ {
			assert.Equal(t, 1, allIndices[i], "Index %d coverage", i)
		}
	})

	t.Run("KFold with shuffle", func(t *testing.T) {
		y := make([]int, 50)

		foldsNoShuffle, err := NewKFold(5, false, 42).Split(y)
		require.NoError(t, err)
		foldsShuffle, err := NewKFold(5, true, 42).Split(y)
		require.NoError(t, err)

		different := false
		for i := 0; i < 5 && !different; i++ {
			for j := range foldsNoShuffle[i].TestIndices {
				if foldsNoShuffle[i].TestIndices[j] != foldsShuffle[i].TestIndices[j] {
					different = true
					break
				}
			}
		}
		assert.True(t, different, "Shuffled folds should have different order")
	})

	t.Run("Uneven split", func(t *testing.T) {
		// 23 samples with 5 folds: 3 folds with 5 samples, 2 folds with 4 samples
		folds, err := NewKFold(5, false, 42).Split(make([]int, 23))
		require.NoError(t, err)

		sizes := make([]int, 5)
		for i, fold := range folds {
			sizes[i] = len(fold.TestIndices)
		}
		assert.Equal(t, []int{5, 5, 5, 4, 4}, sizes)
	})

	t.Run("Too few samples", func(t *testing.T) {
		_, err := NewKFold(5, false, 42).Split(make([]int, 3))
		assert.Error(t, err)
	})
}

func TestStratifiedKFold(t *testing.T) {
	t.Run("Preserves class proportions", func(t *testing.T) {
		// 70 of class 0, 30 of class 1
		n := 100
		y := make([]int, n)
		for i := 70; i < n; i++ {
			y[i] = 1
		}

		skf := NewStratifiedKFold(5, true, 42)
		folds, err := skf.Split(y)
		require.NoError(t, err)
		require.Len(t, folds, 5)

		for i, fold := range folds {
			count1 := 0
			for _, idx := range fold.TestIndices {
				count1 += y[idx]
			}
			assert.Equal(t, 20, len(fold.TestIndices), "Fold %d test size", i)
			assert.Equal(t, 6, count1, "Fold %d class 1 count", i)
		}
	})

	t.Run("Remainders spread across folds", func(t *testing.T) {
		// 各クラス 7 件: 余りが同じフォールドに偏らない
		y := make([]int, 14)
		for i := 7; i < 14; i++ {
			y[i] = 1
		}
		folds, err := NewStratifiedKFold(5, false, 0).Split(y)
		require.NoError(t, err)

		for i, fold := range folds {
			assert.GreaterOrEqual(t, len(fold.TestIndices), 2, "Fold %d", i)
			assert.LessOrEqual(t, len(fold.TestIndices), 4, "Fold %d", i)
		}
	})

	t.Run("Deterministic for a seed", func(t *testing.T) {
		y := make([]int, 60)
		for i := range y {
			y[i] = i % 3
		}
		a, err := NewStratifiedKFold(5, true, 7).Split(y)
		require.NoError(t, err)
		b, err := NewStratifiedKFold(5, true, 7).Split(y)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestTrainTestSplit(t *testing.T) {
	n := 100
	X := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(-i))
		if i < 40 {
			y[i] = 1
		}
	}

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.2, 42, true)
	require.NoError(t, err)

	rTrain, _ := XTrain.Dims()
	rTest, _ := XTest.Dims()
	assert.Equal(t, 80, rTrain)
	assert.Equal(t, 20, rTest)
	assert.Len(t, yTrain, 80)
	assert.Len(t, yTest, 20)

	ones := 0
	for _, v := range yTest {
		ones += v
	}
	assert.Equal(t, 8, ones, "stratified test part keeps 40% positives")

	// 行とラベルの対応が保たれている
	for i := 0; i < rTest; i++ {
		row := int(XTest.At(i, 0))
		assert.Equal(t, y[row], yTest[i])
		assert.Equal(t, -float64(row), XTest.At(i, 1))
	}

	_, _, _, _, err = TrainTestSplit(X, y, 1.5, 42, true)
	assert.Error(t, err)
	_, _, _, _, err = TrainTestSplit(X, y[:10], 0.2, 42, false)
	assert.Error(t, err)
}
