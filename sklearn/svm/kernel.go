package svm

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel computes k(x, z).
type Kernel interface {
	Eval(x, z []float64) float64
}

// LinearKernel is x·z.
type LinearKernel struct{}

func (LinearKernel) Eval(x, z []float64) float64 { return floats.Dot(x, z) }

// PolyKernel is (gamma x·z + coef0)^degree.
type PolyKernel struct {
	Gamma  float64
	Coef0  float64
	Degree int
}

func (k PolyKernel) Eval(x, z []float64) float64 {
	return math.Pow(k.Gamma*floats.Dot(x, z)+k.Coef0, float64(k.Degree))
}

// RBFKernel is exp(-gamma ||x-z||^2).
type RBFKernel struct {
	Gamma float64
}

func (k RBFKernel) Eval(x, z []float64) float64 {
	d := 0.0
	for i := range x {
		t := x[i] - z[i]
		d += t * t
	}
	return math.Exp(-k.Gamma * d)
}

// SigmoidKernel is tanh(gamma x·z + coef0).
type SigmoidKernel struct {
	Gamma float64
	Coef0 float64
}

func (k SigmoidKernel) Eval(x, z []float64) float64 {
	return math.Tanh(k.Gamma*floats.Dot(x, z) + k.Coef0)
}

// kernelCache keeps recently used kernel rows of the training set and
// evicts the oldest row once the byte budget is spent.
type kernelCache struct {
	X       [][]float64
	kernel  Kernel
	rows    map[int][]float64
	order   []int
	maxRows int
}

func newKernelCache(X [][]float64, k Kernel, cacheMB float64) *kernelCache {
	n := len(X)
	maxRows := int(cacheMB * 1024 * 1024 / float64(8*n))
	if maxRows < 2 {
		maxRows = 2
	}
	return &kernelCache{X: X, kernel: k, rows: make(map[int][]float64), maxRows: maxRows}
}

func (c *kernelCache) row(i int) []float64 {
	if r, ok := c.rows[i]; ok {
		return r
	}
	if len(c.order) >= c.maxRows {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.rows, oldest)
	}
	r := make([]float64, len(c.X))
	for j := range c.X {
		r[j] = c.kernel.Eval(c.X[i], c.X[j])
	}
	c.rows[i] = r
	c.order = append(c.order, i)
	return r
}
