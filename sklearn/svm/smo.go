package svm

import (
	"math"
)

const tau = 1e-12

// binaryModel is one fitted two-class machine: f(x) = Σ Coef_i k(SV_i, x) - Rho.
// Positive values vote for the first class of the pair.
type binaryModel struct {
	Pos, Neg int // class indices
	SV       [][]float64
	Coef     []float64
	Rho      float64
}

func (m *binaryModel) decision(k Kernel, x []float64) float64 {
	s := -m.Rho
	for i, sv := range m.SV {
		s += m.Coef[i] * k.Eval(sv, x)
	}
	return s
}

// smoProblem is the C-SVC dual with labels y in {+1, -1}:
//
//	min ½ αᵀQα - eᵀα  s.t. 0 <= α_i <= C_i, yᵀα = 0, Q_ij = y_i y_j k(x_i, x_j).
type smoProblem struct {
	y       []float64
	C       []float64
	cache   *kernelCache
	qd      []float64
	tol     float64
	maxIter int
}

// solve runs SMO with second-order working-set selection and returns the
// dual coefficients, rho, the iterations used and whether it converged.
func (p *smoProblem) solve() (alpha []float64, rho float64, iters int, converged bool) {
	n := len(p.y)
	alpha = make([]float64, n)
	G := make([]float64, n)
	for i := range G {
		G[i] = -1
	}

	for iters = 0; iters < p.maxIter; iters++ {
		i, j := p.selectWorkingSet(alpha, G)
		if j < 0 {
			converged = true
			break
		}
		p.update(alpha, G, i, j)
	}
	if !converged {
		// 最終反復後の停止条件を確認
		_, j := p.selectWorkingSet(alpha, G)
		converged = j < 0
	}
	return alpha, p.rho(alpha, G), iters, converged
}

func (p *smoProblem) upper(alpha []float64, t int) bool { return alpha[t] >= p.C[t] }
func (p *smoProblem) lower(alpha []float64, t int) bool { return alpha[t] <= 0 }

func (p *smoProblem) selectWorkingSet(alpha, G []float64) (int, int) {
	gmax := math.Inf(-1)
	gmaxIdx := -1
	for t := range p.y {
		if p.y[t] == 1 {
			if !p.upper(alpha, t) && -G[t] >= gmax {
				gmax, gmaxIdx = -G[t], t
			}
		} else if !p.lower(alpha, t) && G[t] >= gmax {
			gmax, gmaxIdx = G[t], t
		}
	}
	if gmaxIdx < 0 {
		return -1, -1
	}

	i := gmaxIdx
	Ki := p.cache.row(i)
	gmax2 := math.Inf(-1)
	gminIdx := -1
	objMin := math.Inf(1)
	for t := range p.y {
		var gradDiff float64
		if p.y[t] == 1 {
			if p.lower(alpha, t) {
				continue
			}
			gradDiff = gmax + G[t]
			gmax2 = math.Max(gmax2, G[t])
		} else {
			if p.upper(alpha, t) {
				continue
			}
			gradDiff = gmax - G[t]
			gmax2 = math.Max(gmax2, -G[t])
		}
		if gradDiff > 0 {
			quad := p.qd[i] + p.qd[t] - 2*Ki[t]
			if quad <= 0 {
				quad = tau
			}
			if obj := -(gradDiff * gradDiff) / quad; obj <= objMin {
				objMin, gminIdx = obj, t
			}
		}
	}
	if gmax+gmax2 < p.tol || gminIdx < 0 {
		return i, -1
	}
	return i, gminIdx
}

func (p *smoProblem) update(alpha, G []float64, i, j int) {
	Ki := p.cache.row(i)
	Kj := p.cache.row(j)
	yi, yj := p.y[i], p.y[j]
	Ci, Cj := p.C[i], p.C[j]
	oldI, oldJ := alpha[i], alpha[j]

	quad := p.qd[i] + p.qd[j] - 2*Ki[j]
	if quad <= 0 {
		quad = tau
	}
	if yi != yj {
		delta := (-G[i] - G[j]) / quad
		diff := alpha[i] - alpha[j]
		alpha[i] += delta
		alpha[j] += delta
		if diff > 0 {
			if alpha[j] < 0 {
				alpha[j], alpha[i] = 0, diff
			}
		} else if alpha[i] < 0 {
			alpha[i], alpha[j] = 0, -diff
		}
		if diff > Ci-Cj {
			if alpha[i] > Ci {
				alpha[i], alpha[j] = Ci, Ci-diff
			}
		} else if alpha[j] > Cj {
			alpha[j], alpha[i] = Cj, Cj+diff
		}
	} else {
		delta := (G[i] - G[j]) / quad
		sum := alpha[i] + alpha[j]
		alpha[i] -= delta
		alpha[j] += delta
		if sum > Ci {
			if alpha[i] > Ci {
				alpha[i], alpha[j] = Ci, sum-Ci
			}
		} else if alpha[j] < 0 {
			alpha[j], alpha[i] = 0, sum
		}
		if sum > Cj {
			if alpha[j] > Cj {
				alpha[j], alpha[i] = Cj, sum-Cj
			}
		} else if alpha[i] < 0 {
			alpha[i], alpha[j] = 0, sum
		}
	}

	dI := alpha[i] - oldI
	dJ := alpha[j] - oldJ
	for k := range G {
		G[k] += p.y[k] * (yi*Ki[k]*dI + yj*Kj[k]*dJ)
	}
}

func (p *smoProblem) rho(alpha, G []float64) float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	nFree, sumFree := 0, 0.0
	for i := range p.y {
		yG := p.y[i] * G[i]
		switch {
		case p.upper(alpha, i):
			if p.y[i] == -1 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case p.lower(alpha, i):
			if p.y[i] == 1 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nFree++
			sumFree += yG
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}
