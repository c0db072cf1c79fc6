package linear_model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// logisticObjective is the mean weighted log-loss plus
// alpha * (l2/2 * ||w||^2). The intercept column is never penalized and the
// L1 part is handled by the proximal solver.
type logisticObjective struct {
	X         *mat.Dense // n × q design matrix
	y         []int      // class index per sample (0/1 when k == 1)
	sw        []float64  // sample weights
	swSum     float64
	k         int // weight rows
	q         int // columns per row
	penalized int // leading columns subject to the penalty
	alpha     float64
	l2        float64
}

func (o *logisticObjective) isPenalized(i int) bool {
	return i%o.q < o.penalized
}

// log1pExp computes log(1 + exp(z)) without overflow.
func log1pExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// eval returns the objective at theta and, when grad is non-nil, writes
// the gradient into it.
func (o *logisticObjective) eval(theta, grad []float64) float64 {
	n, _ := o.X.Dims()
	W := mat.NewDense(o.k, o.q, theta)
	Z := mat.NewDense(n, o.k, nil)
	Z.Mul(o.X, W.T())

	var R *mat.Dense
	if grad != nil {
		R = mat.NewDense(n, o.k, nil)
	}

	loss := 0.0
	for i := 0; i < n; i++ {
		s := o.sw[i] / o.swSum
		z := Z.RawRowView(i)
		if o.k == 1 {
			yi := float64(o.y[i])
			loss += s * (log1pExp(z[0]) - yi*z[0])
			if R != nil {
				R.Set(i, 0, s*(errors.Sigmoid(z[0])-yi))
			}
			continue
		}
		maxZ := z[0]
		for _, v := range z[1:] {
			maxZ = math.Max(maxZ, v)
		}
		sum := 0.0
		for _, v := range z {
			sum += math.Exp(v - maxZ)
		}
		lse := maxZ + math.Log(sum)
		loss += s * (lse - z[o.y[i]])
		if R != nil {
			r := R.RawRowView(i)
			for c, v := range z {
				r[c] = s * math.Exp(v-lse)
			}
			r[o.y[i]] -= s
		}
	}

	reg := 0.0
	for i, v := range theta {
		if o.isPenalized(i) {
			reg += v * v
		}
	}
	loss += 0.5 * o.alpha * o.l2 * reg

	if grad != nil {
		G := mat.NewDense(o.k, o.q, grad)
		G.Mul(R.T(), o.X)
		for i, v := range theta {
			if o.isPenalized(i) {
				grad[i] += o.alpha * o.l2 * v
			}
		}
	}
	return loss
}

// lipschitz bounds the gradient's Lipschitz constant with the largest
// eigenvalue of X^T S X, estimated by power iteration.
func (o *logisticObjective) lipschitz() float64 {
	n, q := o.X.Dims()
	v := mat.NewVecDense(q, nil)
	for i := 0; i < q; i++ {
		v.SetVec(i, 1/math.Sqrt(float64(q)))
	}
	u := mat.NewVecDense(n, nil)
	lambda := 0.0
	for iter := 0; iter < 50; iter++ {
		u.MulVec(o.X, v)
		for i := 0; i < n; i++ {
			u.SetVec(i, u.AtVec(i)*o.sw[i]/o.swSum)
		}
		v.MulVec(o.X.T(), u)
		norm := mat.Norm(v, 2)
		if norm == 0 {
			break
		}
		lambda = norm
		v.ScaleVec(1/norm, v)
	}
	curvature := 0.25
	if o.k > 1 {
		curvature = 0.5
	}
	L := curvature*lambda*1.01 + o.alpha*o.l2
	if L <= 0 {
		L = 1
	}
	return L
}
