package linear_model

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

func init() {
	errors.SetWarningHandler(func(error) {})
}

// noisyBinary: feature 0 and 1 carry the signal, the rest is noise.
func noisyBinary(n, p int, seed int64) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, r.NormFloat64())
		}
		if X.At(i, 0)+0.5*X.At(i, 1)+0.3*r.NormFloat64() > 0 {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func TestLogisticRegression_SolverPenaltyCompatibility(t *testing.T) {
	X, y := noisyBinary(60, 3, 1)

	tests := []struct {
		solver  string
		penalty interface{}
		l1Ratio interface{}
		wantErr bool
	}{
		{"lbfgs", "l2", nil, false},
		{"lbfgs", nil, nil, false},
		{"lbfgs", "l1", nil, true},
		{"lbfgs", "elasticnet", 0.5, true},
		{"liblinear", "l1", nil, false},
		{"liblinear", "l2", nil, false},
		{"liblinear", nil, nil, true},
		{"liblinear", "elasticnet", 0.5, true},
		{"saga", "l1", nil, false},
		{"saga", "l2", nil, false},
		{"saga", nil, nil, false},
		{"saga", "elasticnet", 0.5, false},
		{"saga", "elasticnet", nil, true},
	}

	for _, tt := range tests {
		name := tt.solver + "/" + model.FormatParamValue(tt.penalty)
		t.Run(name, func(t *testing.T) {
			lr := NewLogisticRegression()
			require.NoError(t, lr.SetParams(map[string]interface{}{
				"solver":   tt.solver,
				"penalty":  tt.penalty,
				"l1_ratio": tt.l1Ratio,
				"max_iter": 500,
			}))
			err := lr.Fit(X, y)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			score, err := lr.Score(X, y)
			require.NoError(t, err)
			assert.Greater(t, score, 0.8)
		})
	}
}

func TestLogisticRegression_L1Sparsity(t *testing.T) {
	X, y := noisyBinary(200, 8, 2)

	lr := NewLogisticRegression(WithLRSolver("saga"), WithLRPenalty("l1"), WithLRC(0.05), WithLRMaxIter(2000))
	require.NoError(t, lr.Fit(X, y))

	zeros := 0
	for _, w := range lr.Coef()[0][2:] {
		if w == 0 {
			zeros++
		}
	}
	assert.Greater(t, zeros, 0, "strong L1 should zero out some noise coefficients: %v", lr.Coef()[0])
	assert.NotZero(t, lr.Coef()[0][0])
}

func TestLogisticRegression_SolversAgree(t *testing.T) {
	X, y := noisyBinary(150, 3, 3)

	lbfgs := NewLogisticRegression(WithLRMaxIter(1000), WithLRTol(1e-8))
	require.NoError(t, lbfgs.Fit(X, y))
	saga := NewLogisticRegression(WithLRSolver("saga"), WithLRMaxIter(5000), WithLRTol(1e-8))
	require.NoError(t, saga.Fit(X, y))

	for j := range lbfgs.Coef()[0] {
		assert.InDelta(t, lbfgs.Coef()[0][j], saga.Coef()[0][j], 1e-2, "coef %d", j)
	}
	assert.InDelta(t, lbfgs.Intercept()[0], saga.Intercept()[0], 1e-2)
}

func TestLogisticRegression_BalancedClassWeight(t *testing.T) {
	// 9:1 の不均衡
	n := 100
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i)/float64(n))
		if i >= 90 {
			y.Set(i, 0, 1)
		}
	}

	plain := NewLogisticRegression()
	require.NoError(t, plain.Fit(X, y))
	balanced := NewLogisticRegression(WithLRClassWeight("balanced"))
	require.NoError(t, balanced.Fit(X, y))

	pPlain, _ := plain.PredictProba(X)
	pBal, _ := balanced.PredictProba(X)
	assert.Greater(t, pBal.At(95, 1), pPlain.At(95, 1))
}

func TestLogisticRegression_MulticlassLiblinear(t *testing.T) {
	X := mat.NewDense(9, 2, []float64{
		0, 0, 0, 1, 1, 0,
		5, 5, 5, 6, 6, 5,
		0, 9, 1, 9, 0, 10,
	})
	y := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})

	lr := NewLogisticRegression(WithLRSolver("liblinear"), WithLRC(10), WithLRMaxIter(2000))
	require.NoError(t, lr.Fit(X, y))
	assert.Len(t, lr.Coef(), 3)
	assert.Len(t, lr.NIter(), 3)

	proba, err := lr.PredictProba(X)
	require.NoError(t, err)
	for i := 0; i < 9; i++ {
		sum := 0.0
		for k := 0; k < 3; k++ {
			sum += proba.At(i, k)
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestLogisticRegression_SingleClass(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{1, 1, 1})
	err := NewLogisticRegression().Fit(X, y)
	assert.True(t, errors.Is(err, errors.ErrSingleClass))
}

func TestLogisticRegression_CloneAndGob(t *testing.T) {
	X, y := noisyBinary(80, 3, 4)
	lr := NewLogisticRegression(WithLRC(0.5), WithLRRandomState(42))
	require.NoError(t, lr.Fit(X, y))

	clone := lr.Clone()
	assert.Equal(t, lr.GetParams(), clone.GetParams())
	_, err := clone.Predict(X)
	assert.Error(t, err)

	var buf bytes.Buffer
	var est model.Classifier = lr
	require.NoError(t, gob.NewEncoder(&buf).Encode(&est))
	var restored model.Classifier
	require.NoError(t, gob.NewDecoder(&buf).Decode(&restored))

	want, _ := lr.PredictProba(X)
	got, err := restored.(*LogisticRegression).PredictProba(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
	assert.False(t, math.IsNaN(got.At(0, 0)))
}
