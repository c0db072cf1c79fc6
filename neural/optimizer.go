package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Optimizer updates trainable params from their gradients.
type Optimizer interface {
	Step(params []*Param)
}

// AdamOptimizer implements Adam with bias correction.
type AdamOptimizer struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t int
}

// Adam returns an Adam optimizer with beta1=0.9, beta2=0.999, epsilon=1e-7.
func Adam(learningRate float64) *AdamOptimizer {
	return &AdamOptimizer{LearningRate: learningRate, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-7}
}

// Step applies one update to every trainable param.
func (a *AdamOptimizer) Step(params []*Param) {
	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for _, p := range params {
		if !p.Trainable {
			continue
		}
		if p.m == nil {
			r, c := p.Value.Dims()
			p.m = mat.NewDense(r, c, nil)
			p.v = mat.NewDense(r, c, nil)
		}
		w := p.Value.RawMatrix().Data
		g := p.Grad.RawMatrix().Data
		m := p.m.RawMatrix().Data
		v := p.v.RawMatrix().Data
		for i := range w {
			m[i] = a.Beta1*m[i] + (1-a.Beta1)*g[i]
			v[i] = a.Beta2*v[i] + (1-a.Beta2)*g[i]*g[i]
			w[i] -= a.LearningRate * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.Epsilon)
		}
	}
}
