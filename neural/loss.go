package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const probEpsilon = 1e-7

// BinaryCrossEntropy returns the mean loss of the n×1 probabilities p
// against 0/1 targets y. Probabilities are clipped to [1e-7, 1-1e-7].
func BinaryCrossEntropy(p *mat.Dense, y []float64) float64 {
	s := 0.0
	for i, t := range y {
		q := math.Min(math.Max(p.At(i, 0), probEpsilon), 1-probEpsilon)
		s -= t*math.Log(q) + (1-t)*math.Log(1-q)
	}
	return s / float64(len(y))
}

// bceGrad is dLoss/dp, or dLoss/dz when the output is a fused sigmoid.
func bceGrad(p *mat.Dense, y []float64, fromLogits bool) *mat.Dense {
	n := float64(len(y))
	g := mat.NewDense(len(y), 1, nil)
	for i, t := range y {
		q := p.At(i, 0)
		if fromLogits {
			g.Set(i, 0, (q-t)/n)
			continue
		}
		q = math.Min(math.Max(q, probEpsilon), 1-probEpsilon)
		g.Set(i, 0, (q-t)/(q*(1-q))/n)
	}
	return g
}

// binaryAccuracy counts p > 0.5 as the positive class.
func binaryAccuracy(p *mat.Dense, y []float64) float64 {
	hit := 0
	for i, t := range y {
		pred := 0.0
		if p.At(i, 0) > 0.5 {
			pred = 1
		}
		if pred == t {
			hit++
		}
	}
	return float64(hit) / float64(len(y))
}
