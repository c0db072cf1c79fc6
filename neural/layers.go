// Package neural implements a small sequential feed-forward network for
// binary classification: Dense, Dropout, BatchNormalization and LeakyReLU
// layers trained with Adam on binary cross-entropy, with early stopping.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Param is a weight tensor and its gradient. Non-trainable params (moving
// statistics) are skipped by the optimizer but saved with the weights.
type Param struct {
	Value     *mat.Dense
	Grad      *mat.Dense
	Trainable bool

	m, v *mat.Dense // Adam moments
}

func newParam(r, c int, trainable bool) *Param {
	p := &Param{Value: mat.NewDense(r, c, nil), Trainable: trainable}
	if trainable {
		p.Grad = mat.NewDense(r, c, nil)
	}
	return p
}

// Layer is one stage of a Sequential model.
type Layer interface {
	// build allocates weights for the given input width and returns the output width.
	build(inputDim int, rng *rand.Rand) int
	forward(X *mat.Dense, training bool) *mat.Dense
	backward(grad *mat.Dense) *mat.Dense
	params() []*Param
	kind() string
}

// Activations accepted by Dense.
const (
	Linear  = "linear"
	ReLU    = "relu"
	Sigmoid = "sigmoid"
	Tanh    = "tanh"
)

type dense struct {
	units      int
	activation string
	W, b       *Param

	input, output *mat.Dense
	// fromLogits: backward receives dLoss/dZ directly (sigmoid + cross-entropy).
	fromLogits bool
}

// Dense returns a fully connected layer with Glorot-uniform weights and
// zero bias.
func Dense(units int, activation string) Layer {
	return &dense{units: units, activation: activation}
}

func (d *dense) kind() string { return "Dense" }

func (d *dense) build(inputDim int, rng *rand.Rand) int {
	d.W = newParam(inputDim, d.units, true)
	d.b = newParam(1, d.units, true)
	limit := math.Sqrt(6 / float64(inputDim+d.units))
	raw := d.W.Value.RawMatrix().Data
	for i := range raw {
		raw[i] = (2*rng.Float64() - 1) * limit
	}
	return d.units
}

func (d *dense) forward(X *mat.Dense, _ bool) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, d.units, nil)
	out.Mul(X, d.W.Value)
	bias := d.b.Value.RawRowView(0)
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		for j := range row {
			row[j] = activate(d.activation, row[j]+bias[j])
		}
	}
	d.input, d.output = X, out
	return out
}

func activate(name string, z float64) float64 {
	switch name {
	case ReLU:
		return math.Max(0, z)
	case Sigmoid:
		if z >= 0 {
			return 1 / (1 + math.Exp(-z))
		}
		ez := math.Exp(z)
		return ez / (1 + ez)
	case Tanh:
		return math.Tanh(z)
	default:
		return z
	}
}

// derivative in terms of the activation output a.
func derivative(name string, a float64) float64 {
	switch name {
	case ReLU:
		if a > 0 {
			return 1
		}
		return 0
	case Sigmoid:
		return a * (1 - a)
	case Tanh:
		return 1 - a*a
	default:
		return 1
	}
}

func (d *dense) backward(grad *mat.Dense) *mat.Dense {
	r, c := grad.Dims()
	dZ := mat.NewDense(r, c, nil)
	if d.fromLogits {
		dZ.Copy(grad)
	} else {
		dZ.Apply(func(i, j int, g float64) float64 {
			return g * derivative(d.activation, d.output.At(i, j))
		}, grad)
	}
	d.W.Grad.Mul(d.input.T(), dZ)
	db := d.b.Grad.RawRowView(0)
	for j := range db {
		db[j] = 0
	}
	for i := 0; i < r; i++ {
		for j, v := range dZ.RawRowView(i) {
			db[j] += v
		}
	}
	_, in := d.input.Dims()
	dX := mat.NewDense(r, in, nil)
	dX.Mul(dZ, d.W.Value.T())
	return dX
}

func (d *dense) params() []*Param { return []*Param{d.W, d.b} }

type dropout struct {
	rate float64
	rng  *rand.Rand
	mask *mat.Dense
}

// Dropout zeroes a fraction rate of its inputs during training and scales
// the rest by 1/(1-rate). It is the identity at inference.
func Dropout(rate float64) Layer { return &dropout{rate: rate} }

func (d *dropout) kind() string { return fmt.Sprintf("Dropout(%.1f)", d.rate) }

func (d *dropout) build(inputDim int, rng *rand.Rand) int {
	d.rng = rng
	return inputDim
}

func (d *dropout) forward(X *mat.Dense, training bool) *mat.Dense {
	if !training || d.rate == 0 {
		d.mask = nil
		return X
	}
	r, c := X.Dims()
	d.mask = mat.NewDense(r, c, nil)
	keep := 1 / (1 - d.rate)
	raw := d.mask.RawMatrix().Data
	for i := range raw {
		if d.rng.Float64() >= d.rate {
			raw[i] = keep
		}
	}
	out := mat.NewDense(r, c, nil)
	out.MulElem(X, d.mask)
	return out
}

func (d *dropout) backward(grad *mat.Dense) *mat.Dense {
	if d.mask == nil {
		return grad
	}
	r, c := grad.Dims()
	out := mat.NewDense(r, c, nil)
	out.MulElem(grad, d.mask)
	return out
}

func (d *dropout) params() []*Param { return nil }

// batchNorm normalizes each feature over the batch during training and with
// moving statistics at inference.
type batchNorm struct {
	momentum, eps float64
	gamma, beta   *Param
	movingMean    *Param
	movingVar     *Param

	xhat   *mat.Dense
	invStd []float64
}

// BatchNormalization returns a batch-norm layer with momentum 0.99 and
// epsilon 1e-3.
func BatchNormalization() Layer { return &batchNorm{momentum: 0.99, eps: 1e-3} }

func (b *batchNorm) kind() string { return "BatchNormalization" }

func (b *batchNorm) build(inputDim int, _ *rand.Rand) int {
	b.gamma = newParam(1, inputDim, true)
	b.beta = newParam(1, inputDim, true)
	b.movingMean = newParam(1, inputDim, false)
	b.movingVar = newParam(1, inputDim, false)
	for j := 0; j < inputDim; j++ {
		b.gamma.Value.Set(0, j, 1)
		b.movingVar.Value.Set(0, j, 1)
	}
	return inputDim
}

func (b *batchNorm) forward(X *mat.Dense, training bool) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	gamma := b.gamma.Value.RawRowView(0)
	beta := b.beta.Value.RawRowView(0)
	mm := b.movingMean.Value.RawRowView(0)
	mv := b.movingVar.Value.RawRowView(0)

	if !training {
		for j := 0; j < c; j++ {
			inv := 1 / math.Sqrt(mv[j]+b.eps)
			for i := 0; i < r; i++ {
				out.Set(i, j, gamma[j]*(X.At(i, j)-mm[j])*inv+beta[j])
			}
		}
		return out
	}

	b.xhat = mat.NewDense(r, c, nil)
	b.invStd = make([]float64, c)
	n := float64(r)
	for j := 0; j < c; j++ {
		mean := 0.0
		for i := 0; i < r; i++ {
			mean += X.At(i, j)
		}
		mean /= n
		v := 0.0
		for i := 0; i < r; i++ {
			d := X.At(i, j) - mean
			v += d * d
		}
		v /= n
		inv := 1 / math.Sqrt(v+b.eps)
		b.invStd[j] = inv
		for i := 0; i < r; i++ {
			xh := (X.At(i, j) - mean) * inv
			b.xhat.Set(i, j, xh)
			out.Set(i, j, gamma[j]*xh+beta[j])
		}
		mm[j] = b.momentum*mm[j] + (1-b.momentum)*mean
		mv[j] = b.momentum*mv[j] + (1-b.momentum)*v
	}
	return out
}

func (b *batchNorm) backward(grad *mat.Dense) *mat.Dense {
	r, c := grad.Dims()
	n := float64(r)
	gamma := b.gamma.Value.RawRowView(0)
	dGamma := b.gamma.Grad.RawRowView(0)
	dBeta := b.beta.Grad.RawRowView(0)
	dX := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		sumDy, sumDyXhat := 0.0, 0.0
		for i := 0; i < r; i++ {
			dy := grad.At(i, j)
			sumDy += dy
			sumDyXhat += dy * b.xhat.At(i, j)
		}
		dGamma[j] = sumDyXhat
		dBeta[j] = sumDy
		// dx = γ/σ · (dy - mean(dy) - x̂·mean(dy·x̂))
		k := gamma[j] * b.invStd[j] / n
		for i := 0; i < r; i++ {
			dX.Set(i, j, k*(n*grad.At(i, j)-sumDy-b.xhat.At(i, j)*sumDyXhat))
		}
	}
	return dX
}

func (b *batchNorm) params() []*Param {
	return []*Param{b.gamma, b.beta, b.movingMean, b.movingVar}
}

type leakyReLU struct {
	alpha float64
	input *mat.Dense
}

// LeakyReLU returns max(x, alpha·x).
func LeakyReLU(alpha float64) Layer { return &leakyReLU{alpha: alpha} }

func (l *leakyReLU) kind() string { return "LeakyReLU" }

func (l *leakyReLU) build(inputDim int, _ *rand.Rand) int { return inputDim }

func (l *leakyReLU) forward(X *mat.Dense, _ bool) *mat.Dense {
	l.input = X
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return l.alpha * v
	}, X)
	return out
}

func (l *leakyReLU) backward(grad *mat.Dense) *mat.Dense {
	r, c := grad.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, g float64) float64 {
		if l.input.At(i, j) > 0 {
			return g
		}
		return l.alpha * g
	}, grad)
	return out
}

func (l *leakyReLU) params() []*Param { return nil }
