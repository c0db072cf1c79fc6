package neural

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

func separable(n int, seed int64) (*mat.Dense, []float64) {
	r := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a, b := r.NormFloat64(), r.NormFloat64()
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		if a+b > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func TestGradientCheck(t *testing.T) {
	X := mat.NewDense(6, 3, []float64{
		0.1, -0.2, 0.3,
		-0.5, 0.4, 0.0,
		0.9, 0.1, -0.7,
		-0.3, -0.8, 0.2,
		0.6, 0.5, 0.5,
		-0.1, 0.3, -0.4,
	})
	y := []float64{1, 0, 1, 0, 1, 0}

	m := NewSequential([]Layer{
		Dense(4, Tanh), BatchNormalization(), LeakyReLU(0.1), Dense(1, Sigmoid),
	}, WithSeed(7), WithLogger(log.Nop()))
	require.NoError(t, m.Build(3))

	loss := func() float64 { return BinaryCrossEntropy(m.forward(X, true), y) }
	p := m.forward(X, true)
	m.backward(bceGrad(p, y, m.lastFromLogits()))

	const h = 1e-6
	for pi, param := range m.allParams() {
		if !param.Trainable {
			continue
		}
		analytic := mat.DenseCopyOf(param.Grad)
		raw := param.Value.RawMatrix().Data
		for k := range raw {
			orig := raw[k]
			raw[k] = orig + h
			up := loss()
			raw[k] = orig - h
			down := loss()
			raw[k] = orig
			numeric := (up - down) / (2 * h)
			got := analytic.RawMatrix().Data[k]
			assert.InDelta(t, numeric, got, 1e-6, "param %d element %d", pi, k)
		}
	}
}

func TestSequential_LearnsSeparableData(t *testing.T) {
	X, y := separable(300, 1)
	m := NewSequential([]Layer{
		Dense(16, ReLU), BatchNormalization(), Dropout(0.1), Dense(1, Sigmoid),
	}, WithSeed(42), WithLogger(log.Nop()))
	m.Compile(Adam(0.01))

	h, err := m.Fit(context.Background(), X, y, FitConfig{Epochs: 40, BatchSize: 32, ValidationSplit: 0.2})
	require.NoError(t, err)
	assert.Len(t, h.Loss, 40)
	assert.Len(t, h.ValLoss, 40)
	assert.Less(t, h.Loss[39], h.Loss[0])

	Xt, yt := separable(200, 2)
	_, acc, err := m.Evaluate(Xt, yt)
	require.NoError(t, err)
	assert.Greater(t, acc, 0.9)

	p, err := m.Predict(Xt)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		assert.True(t, p.At(i, 0) >= 0 && p.At(i, 0) <= 1)
	}
}

func TestSequential_EarlyStopping(t *testing.T) {
	X, y := separable(50, 3)
	m := NewSequential([]Layer{Dense(4, ReLU), Dense(1, Sigmoid)}, WithLogger(log.Nop()))
	// 学習率0なので val_loss は改善しない
	m.Compile(Adam(0))

	h, err := m.Fit(context.Background(), X, y, FitConfig{
		Epochs:          50,
		BatchSize:       8,
		ValidationSplit: 0.2,
		EarlyStopping:   &EarlyStopping{Patience: 2, RestoreBestWeights: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, h.StoppedEpoch)
	assert.Equal(t, 0, h.BestEpoch)
	assert.Len(t, h.Loss, 3)
}

func TestSequential_WeightsRoundTrip(t *testing.T) {
	X, y := separable(40, 4)
	m := NewSequential([]Layer{Dense(8, ReLU), BatchNormalization(), Dense(1, Sigmoid)}, WithLogger(log.Nop()))
	require.NoError(t, m.Build(2))
	saved := m.GetWeights()
	before, err := m.Predict(X)
	require.NoError(t, err)

	m.Compile(Adam(0.05))
	_, err = m.Fit(context.Background(), X, y, FitConfig{Epochs: 5, BatchSize: 8})
	require.NoError(t, err)
	changed, err := m.Predict(X)
	require.NoError(t, err)
	assert.False(t, mat.EqualApprox(before, changed, 1e-12))

	m.SetWeights(saved)
	after, err := m.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(before, after))
}

func TestSequential_Errors(t *testing.T) {
	X, y := separable(10, 5)

	_, err := NewSequential(nil).Fit(context.Background(), X, y, FitConfig{Epochs: 1, BatchSize: 1})
	assert.Error(t, err, "no layers")

	_, err = NewSequential([]Layer{Dense(2, ReLU)}).Fit(context.Background(), X, y, FitConfig{Epochs: 1, BatchSize: 1})
	assert.Error(t, err, "last layer must have one unit")

	m := NewSequential([]Layer{Dense(1, Sigmoid)}, WithLogger(log.Nop()))
	_, err = m.Fit(context.Background(), X, y[:5], FitConfig{Epochs: 1, BatchSize: 1})
	assert.Error(t, err)
	_, err = m.Fit(context.Background(), X, y, FitConfig{Epochs: 1, BatchSize: 1, ValidationSplit: 1})
	assert.Error(t, err)

	_, err = m.Predict(X)
	assert.Error(t, err, "not built")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Fit(ctx, X, y, FitConfig{Epochs: 3, BatchSize: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArchitectures(t *testing.T) {
	archs := Architectures()
	names := make([]string, len(archs))
	for i, a := range archs {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"Improved Sigmoid", "RELU + BatchNorm", "Leaky RELU", "Deep Network"}, names)
	assert.Equal(t, 0.0005, archs[3].LearningRate)
	assert.Equal(t, 64, archs[3].BatchSize)

	m, err := archs[0].New(27, WithLogger(log.Nop()))
	require.NoError(t, err)
	trainable, nonTrainable := m.CountParams()
	assert.Equal(t, 27*128+128+128*64+64+64*32+32+32+1, trainable)
	assert.Zero(t, nonTrainable)

	m, err = archs[1].New(27, WithLogger(log.Nop()))
	require.NoError(t, err)
	_, nonTrainable = m.CountParams()
	assert.Equal(t, 2*(128+64), nonTrainable, "moving mean and variance")

	var buf bytes.Buffer
	require.NoError(t, m.Summary(&buf))
	assert.Contains(t, buf.String(), "BatchNormalization")
	assert.Contains(t, buf.String(), "(None, 128)")
}

func TestBinaryCrossEntropyClipping(t *testing.T) {
	p := mat.NewDense(2, 1, []float64{1, 0})
	loss := BinaryCrossEntropy(p, []float64{0, 1})
	assert.InDelta(t, -math.Log(1e-7), loss, 1e-6)
}
