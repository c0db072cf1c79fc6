package svm

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

// clusters returns k Gaussian clusters on a circle of radius 4 in 2D.
func clusters(n, k int, seed int64) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		c := i % k
		angle := 2 * math.Pi * float64(c) / float64(k)
		X.Set(i, 0, 4*math.Cos(angle)+r.NormFloat64())
		X.Set(i, 1, 4*math.Sin(angle)+r.NormFloat64())
		y.Set(i, 0, float64(c))
	}
	return X, y
}

func TestSVC_TwoPointsLinear(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{0, 0, 2, 0})
	y := mat.NewDense(2, 1, []float64{0, 1})

	svc := NewSVC(WithKernel("linear"), WithC(1000))
	require.NoError(t, svc.Fit(X, y))

	// 最大マージン超平面は x0 = 1
	probe := mat.NewDense(3, 2, []float64{0, 0, 1, 0, 2, 0})
	d, err := svc.DecisionFunction(probe)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, d.At(0, 0), 1e-6)
	assert.InDelta(t, 0.0, d.At(1, 0), 1e-6)
	assert.InDelta(t, 1.0, d.At(2, 0), 1e-6)
	assert.Equal(t, []int{1, 1}, svc.NSupport())
}

func TestSVC_KernelsSeparateClusters(t *testing.T) {
	X, y := clusters(120, 2, 1)
	for _, kernel := range []string{"linear", "rbf", "poly"} {
		t.Run(kernel, func(t *testing.T) {
			svc := NewSVC(WithKernel(kernel), WithDegree(3))
			require.NoError(t, svc.Fit(X, y))
			score, err := svc.Score(X, y)
			require.NoError(t, err)
			assert.Greater(t, score, 0.95)
		})
	}
}

func TestSVC_Multiclass(t *testing.T) {
	X, y := clusters(150, 3, 2)
	svc := NewSVC(WithC(10))
	require.NoError(t, svc.Fit(X, y))

	assert.Equal(t, []int{0, 1, 2}, svc.Classes())
	assert.Len(t, svc.NIter(), 3, "one problem per class pair")
	for _, n := range svc.NSupport() {
		assert.Positive(t, n)
	}

	score, err := svc.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9)

	d, err := svc.DecisionFunction(X)
	require.NoError(t, err)
	_, c := d.Dims()
	assert.Equal(t, 3, c)
}

func TestSVC_GammaModes(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{0, 0, 0, 2, 2, 0, 2, 2})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	// 全要素の分散は 1
	svc := NewSVC()
	require.NoError(t, svc.Fit(X, y))
	assert.InDelta(t, 0.5, svc.Gamma(), 1e-12)

	svc = NewSVC(WithGamma("auto"))
	require.NoError(t, svc.Fit(X, y))
	assert.InDelta(t, 0.5, svc.Gamma(), 1e-12)

	svc = NewSVC(WithGamma(0.01))
	require.NoError(t, svc.Fit(X, y))
	assert.Equal(t, 0.01, svc.Gamma())
	assert.Equal(t, 0.01, svc.GetParams()["gamma"])
}

func TestSVC_InvalidParams(t *testing.T) {
	X, y := clusters(20, 2, 3)
	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{"kernel", map[string]interface{}{"kernel": "precomputed"}},
		{"C", map[string]interface{}{"C": 0.0}},
		{"gamma negative", map[string]interface{}{"gamma": -1.0}},
		{"class_weight", map[string]interface{}{"class_weight": "auto"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSVC()
			require.NoError(t, svc.SetParams(tt.params))
			err := svc.Fit(X, y)
			var ve *errors.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}

	assert.Error(t, NewSVC().SetParams(map[string]interface{}{"gamma": "tiny"}))
	assert.Error(t, NewSVC().SetParams(map[string]interface{}{"nu": 0.5}))
}

func TestSVC_MaxIterWarns(t *testing.T) {
	var got []error
	errors.SetZerologWarnFunc(nil)
	errors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })

	X, y := clusters(100, 2, 4)
	svc := NewSVC(WithMaxIter(1))
	require.NoError(t, svc.Fit(X, y))

	require.NotEmpty(t, got)
	var cw *errors.ConvergenceWarning
	assert.True(t, errors.As(got[0], &cw))
	assert.Equal(t, []int{1}, svc.NIter())
}

func TestSVC_BalancedWeights(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	n := 100
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := 0.0
		if i >= 90 {
			label = 1
		}
		X.Set(i, 0, label*1.5+r.NormFloat64())
		y.Set(i, 0, label)
	}

	recall := func(s *SVC) float64 {
		require.NoError(t, s.Fit(X, y))
		pred, err := s.Predict(X)
		require.NoError(t, err)
		hit := 0
		for i := 90; i < n; i++ {
			if pred.At(i, 0) == 1 {
				hit++
			}
		}
		return float64(hit) / 10
	}
	plain := recall(NewSVC(WithKernel("linear")))
	balanced := recall(NewSVC(WithKernel("linear"), WithClassWeight("balanced")))
	assert.GreaterOrEqual(t, balanced, plain)
	assert.Positive(t, balanced)
}

func TestSVC_CloneAndGob(t *testing.T) {
	X, y := clusters(90, 3, 6)
	svc := NewSVC(WithC(5), WithGamma("auto"), WithRandomState(42))
	require.NoError(t, svc.Fit(X, y))

	c := svc.Clone()
	assert.Equal(t, svc.GetParams(), c.GetParams())
	_, err := c.Predict(X)
	assert.Error(t, err, "clone must be unfitted")

	var buf bytes.Buffer
	var enc model.Classifier = svc
	require.NoError(t, gob.NewEncoder(&buf).Encode(&enc))
	var dec model.Classifier
	require.NoError(t, gob.NewDecoder(&buf).Decode(&dec))

	want, err := svc.Predict(X)
	require.NoError(t, err)
	got, err := dec.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
	assert.Equal(t, 42, dec.(*SVC).GetParams()["random_state"])
}

func TestSVC_NotFitted(t *testing.T) {
	X, _ := clusters(4, 2, 7)
	_, err := NewSVC().Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}
