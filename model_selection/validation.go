package model_selection

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/core/parallel"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// FoldResampler rebalances a training fold before fitting.
type FoldResampler func(X *mat.Dense, y []int) (*mat.Dense, []int, error)

// CVResult stores cross-validation results
type CVResult struct {
	TestScores []float64
	FitTimes   []time.Duration
}

// GetMeanScore returns mean test score
func (cv *CVResult) GetMeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return math.NaN()
	}
	return stat.Mean(cv.TestScores, nil)
}

// GetStdScore returns the population standard deviation of the test
// scores, matching numpy's default.
func (cv *CVResult) GetStdScore() float64 {
	if len(cv.TestScores) == 0 {
		return math.NaN()
	}
	_, std := stat.PopMeanStdDev(cv.TestScores, nil)
	return std
}

type cvConfig struct {
	nJobs     int
	resampler FoldResampler
}

// CVOption configures CrossValScore.
type CVOption func(*cvConfig)

// WithCVJobs evaluates folds on up to n goroutines (n <= 0: all CPUs).
func WithCVJobs(n int) CVOption {
	return func(c *cvConfig) { c.nJobs = n }
}

// WithFoldResampler applies r to each training fold only.
func WithFoldResampler(r FoldResampler) CVOption {
	return func(c *cvConfig) { c.resampler = r }
}

// CrossValScore fits a clone of est on each training fold and scores it on
// the held-out fold with est.Score (accuracy).
func CrossValScore(ctx context.Context, est model.TunableClassifier, X mat.Matrix, y []int, cv KFoldSplitter, opts ...CVOption) (*CVResult, error) {
	cfg := cvConfig{nJobs: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	n, _ := X.Dims()
	if n != len(y) {
		return nil, errors.NewDimensionError("CrossValScore", n, len(y), 0)
	}
	folds, err := cv.Split(y)
	if err != nil {
		return nil, err
	}

	result := &CVResult{
		TestScores: make([]float64, len(folds)),
		FitTimes:   make([]time.Duration, len(folds)),
	}
	err = parallel.ForEach(ctx, len(folds), cfg.nJobs, func(_ context.Context, i int) error {
		score, elapsed, err := fitAndScore(est.Clone(), X, y, folds[i], cfg.resampler)
		if err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		result.TestScores[i] = score
		result.FitTimes[i] = elapsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func fitAndScore(est model.Classifier, X mat.Matrix, y []int, fold CVFold, resampler FoldResampler) (score float64, elapsed time.Duration, err error) {
	defer errors.Recover(&err, "fitAndScore")

	XTrain, yTrain := Subset(X, y, fold.TrainIndices)
	XTest, yTest := Subset(X, y, fold.TestIndices)
	if resampler != nil {
		if XTrain, yTrain, err = resampler(XTrain, yTrain); err != nil {
			return 0, 0, err
		}
	}

	start := time.Now()
	if err = est.Fit(XTrain, LabelMatrix(yTrain)); err != nil {
		return 0, 0, err
	}
	elapsed = time.Since(start)

	score, err = est.Score(XTest, LabelMatrix(yTest))
	return score, elapsed, err
}
