package neighbors

import (
	"math"
)

// DistanceFunc returns the distance between two points.
type DistanceFunc func(a, b []float64) float64

// axisBounded reports whether |a_d - b_d| <= dist(a, b) holds on every
// axis, which is what the k-d tree needs to prune.
func axisBounded(metric string) bool {
	return metric != "hamming"
}

func resolveMetric(metric string, p float64) DistanceFunc {
	switch metric {
	case "manhattan":
		return manhattan
	case "chebyshev":
		return chebyshev
	case "hamming":
		return hamming
	case "minkowski":
		switch p {
		case 1:
			return manhattan
		case 2:
			return euclidean
		}
		return func(a, b []float64) float64 { return minkowski(a, b, p) }
	default:
		return euclidean
	}
}

func euclidean(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func manhattan(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += math.Abs(a[i] - b[i])
	}
	return s
}

func chebyshev(a, b []float64) float64 {
	m := 0.0
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}
	return m
}

func minkowski(a, b []float64, p float64) float64 {
	s := 0.0
	for i := range a {
		s += math.Pow(math.Abs(a[i]-b[i]), p)
	}
	return math.Pow(s, 1/p)
}

// hamming is the fraction of differing coordinates.
func hamming(a, b []float64) float64 {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return float64(n) / float64(len(a))
}
