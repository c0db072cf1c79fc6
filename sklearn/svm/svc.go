// Package svm provides a C-support vector classifier trained with SMO.
package svm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// SVC is a C-support vector classifier compatible with scikit-learn's SVC.
// Multiclass problems are decomposed one-vs-one and predicted by voting.
//
// gamma is "scale" (1 / (n_features * X.var())), "auto" (1 / n_features)
// or a positive number.
type SVC struct {
	state *model.StateManager

	C           float64
	kernel      string
	degree      int
	gammaMode   string // "scale", "auto" or "value"
	gammaValue  float64
	coef0       float64
	shrinking   bool
	tol         float64
	cacheSize   float64 // MB
	classWeight string
	maxIter     int   // -1 for no limit
	randomState int64 // -1 for None

	classes_   []int
	nFeatures_ int
	gamma_     float64
	models_    []binaryModel
	nSupport_  []int
	nIter_     []int
}

// Option configures an SVC.
type Option func(*SVC)

// NewSVC creates an SVC with scikit-learn's defaults.
func NewSVC(opts ...Option) *SVC {
	s := &SVC{
		state:       model.NewStateManager(),
		C:           1.0,
		kernel:      "rbf",
		degree:      3,
		gammaMode:   "scale",
		coef0:       0,
		shrinking:   true,
		tol:         1e-3,
		cacheSize:   200,
		classWeight: "none",
		maxIter:     -1,
		randomState: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithC sets the regularization parameter.
func WithC(c float64) Option { return func(s *SVC) { s.C = c } }

// WithKernel sets the kernel: "linear", "poly", "rbf" or "sigmoid".
func WithKernel(kernel string) Option { return func(s *SVC) { s.kernel = kernel } }

// WithDegree sets the polynomial degree.
func WithDegree(d int) Option { return func(s *SVC) { s.degree = d } }

// WithGamma sets gamma to "scale", "auto" or a float64.
func WithGamma(gamma interface{}) Option {
	return func(s *SVC) {
		// 不正な値は Fit で検出する
		_ = s.setGamma(gamma)
	}
}

// WithCoef0 sets the independent term of the poly and sigmoid kernels.
func WithCoef0(c float64) Option { return func(s *SVC) { s.coef0 = c } }

// WithShrinking toggles the shrinking heuristic flag.
func WithShrinking(b bool) Option { return func(s *SVC) { s.shrinking = b } }

// WithTol sets the stopping tolerance.
func WithTol(tol float64) Option { return func(s *SVC) { s.tol = tol } }

// WithClassWeight sets "balanced" or "none".
func WithClassWeight(mode string) Option { return func(s *SVC) { s.classWeight = mode } }

// WithMaxIter caps the SMO iterations per binary problem; -1 means no limit.
func WithMaxIter(n int) Option { return func(s *SVC) { s.maxIter = n } }

// WithRandomState sets the seed.
func WithRandomState(seed int64) Option { return func(s *SVC) { s.randomState = seed } }

// Name returns the estimator name.
func (s *SVC) Name() string { return "SVC" }

func (s *SVC) setGamma(v interface{}) error {
	switch g := v.(type) {
	case string:
		if err := model.ParamOneOf("gamma", g, "scale", "auto"); err != nil {
			s.gammaMode = "invalid"
			return err
		}
		s.gammaMode = g
		return nil
	default:
		f, err := model.ParamFloat("gamma", v)
		if err != nil {
			s.gammaMode = "invalid"
			return err
		}
		s.gammaMode, s.gammaValue = "value", f
		return nil
	}
}

func (s *SVC) validate() error {
	if s.C <= 0 {
		return errors.NewValidationError("C", "must be positive", s.C)
	}
	if err := model.ParamOneOf("kernel", s.kernel, "linear", "poly", "rbf", "sigmoid"); err != nil {
		return err
	}
	if s.degree < 0 {
		return errors.NewValidationError("degree", "must be non-negative", s.degree)
	}
	if s.gammaMode == "invalid" {
		return errors.NewValidationError("gamma", "must be 'scale', 'auto' or a positive float", nil)
	}
	if s.gammaMode == "value" && s.gammaValue <= 0 {
		return errors.NewValidationError("gamma", "must be positive", s.gammaValue)
	}
	if s.tol <= 0 {
		return errors.NewValidationError("tol", "must be positive", s.tol)
	}
	return model.ParamOneOf("class_weight", s.classWeight, "none", "balanced")
}

// resolveGamma computes the effective gamma for the training matrix X.
func (s *SVC) resolveGamma(X mat.Matrix) float64 {
	r, c := X.Dims()
	switch s.gammaMode {
	case "auto":
		return 1 / float64(c)
	case "scale":
		all := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				all = append(all, X.At(i, j))
			}
		}
		_, std := stat.PopMeanStdDev(all, nil)
		v := std * std
		if v == 0 {
			return 1
		}
		return 1 / (float64(c) * v)
	default:
		return s.gammaValue
	}
}

func (s *SVC) kernelFunc() Kernel {
	switch s.kernel {
	case "linear":
		return LinearKernel{}
	case "poly":
		return PolyKernel{Gamma: s.gamma_, Coef0: s.coef0, Degree: s.degree}
	case "sigmoid":
		return SigmoidKernel{Gamma: s.gamma_, Coef0: s.coef0}
	default:
		return RBFKernel{Gamma: s.gamma_}
	}
}

// Fit trains one binary machine per class pair.
func (s *SVC) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "SVC.Fit")

	if err := s.validate(); err != nil {
		return err
	}
	nSamples, nFeatures, err := model.CheckXy("SVC.Fit", X, y)
	if err != nil {
		return err
	}
	s.state.Reset()

	classes, yIdx := model.EncodeClasses(y)
	if len(classes) < 2 {
		return errors.Wrapf(errors.ErrSingleClass, "SVC.Fit: got class %d only", classes[0])
	}
	s.classes_ = classes
	s.nFeatures_ = nFeatures
	s.gamma_ = s.resolveGamma(X)
	cw := model.ClassWeights(s.classWeight, yIdx, len(classes))

	rows := make([][]float64, nSamples)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}

	maxIter := s.maxIter
	if maxIter < 0 {
		maxIter = int(math.Max(1e7, 100*float64(nSamples)))
	}

	k := s.kernelFunc()
	s.models_ = s.models_[:0]
	s.nIter_ = s.nIter_[:0]
	s.nSupport_ = make([]int, len(classes))
	isSupport := make([]bool, nSamples)
	for a := 0; a < len(classes); a++ {
		for b := a + 1; b < len(classes); b++ {
			var sub [][]float64
			var ys, cs []float64
			var global []int
			for i, c := range yIdx {
				switch c {
				case a:
					ys = append(ys, 1)
				case b:
					ys = append(ys, -1)
				default:
					continue
				}
				sub = append(sub, rows[i])
				cs = append(cs, s.C*cw[c])
				global = append(global, i)
			}
			m, support, iters := s.fitPair(k, sub, ys, cs, maxIter)
			m.Pos, m.Neg = a, b
			s.models_ = append(s.models_, m)
			s.nIter_ = append(s.nIter_, iters)
			for _, t := range support {
				isSupport[global[t]] = true
			}
		}
	}
	for i, ok := range isSupport {
		if ok {
			s.nSupport_[yIdx[i]]++
		}
	}

	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()
	return nil
}

// fitPair solves one binary problem and returns the machine together with
// the positions of its support vectors in X.
func (s *SVC) fitPair(k Kernel, X [][]float64, y, C []float64, maxIter int) (binaryModel, []int, int) {
	qd := make([]float64, len(X))
	for i, x := range X {
		qd[i] = k.Eval(x, x)
	}
	p := &smoProblem{
		y:       y,
		C:       C,
		cache:   newKernelCache(X, k, s.cacheSize),
		qd:      qd,
		tol:     s.tol,
		maxIter: maxIter,
	}
	alpha, rho, iters, converged := p.solve()
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("smo", iters,
			"Solver terminated early (max_iter reached). Consider pre-processing your data with StandardScaler or MinMaxScaler."))
	}

	var m binaryModel
	var support []int
	for i, a := range alpha {
		if a > 0 {
			m.SV = append(m.SV, X[i])
			m.Coef = append(m.Coef, a*y[i])
			support = append(support, i)
		}
	}
	m.Rho = rho
	return m, support, iters
}

func (s *SVC) checkPredict(op string, X mat.Matrix) (int, error) {
	if err := s.state.RequireFitted(s.Name(), op); err != nil {
		return 0, err
	}
	r, c := X.Dims()
	if err := s.state.RequireFeatures("SVC."+op, c); err != nil {
		return 0, err
	}
	if r == 0 {
		return 0, errors.ErrEmptyData
	}
	return r, nil
}

// DecisionFunction returns the raw pairwise decision values. For binary
// problems it is an n×1 column where positive values mean Classes()[1];
// otherwise there is one column per class pair (0,1), (0,2), ..., positive
// values favouring the first class of the pair.
func (s *SVC) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	r, err := s.checkPredict("DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	k := s.kernelFunc()
	out := mat.NewDense(r, len(s.models_), nil)
	x := make([]float64, s.nFeatures_)
	for i := 0; i < r; i++ {
		mat.Row(x, i, X)
		for j := range s.models_ {
			d := s.models_[j].decision(k, x)
			if len(s.classes_) == 2 {
				d = -d
			}
			out.Set(i, j, d)
		}
	}
	return out, nil
}

// Predict returns the class with the most one-vs-one votes; ties go to
// the smaller class.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, err := s.checkPredict("Predict", X)
	if err != nil {
		return nil, err
	}
	k := s.kernelFunc()
	idx := make([]int, r)
	votes := make([]float64, len(s.classes_))
	x := make([]float64, s.nFeatures_)
	for i := 0; i < r; i++ {
		mat.Row(x, i, X)
		for c := range votes {
			votes[c] = 0
		}
		for j := range s.models_ {
			m := &s.models_[j]
			if m.decision(k, x) > 0 {
				votes[m.Pos]++
			} else {
				votes[m.Neg]++
			}
		}
		idx[i] = model.ArgMax(votes)
	}
	return model.LabelColumn(s.classes_, idx), nil
}

// Score returns the mean accuracy.
func (s *SVC) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.MeanAccuracy(pred, y)
}

// Classes returns the sorted class labels.
func (s *SVC) Classes() []int { return s.classes_ }

// NFeaturesIn returns the number of columns seen by Fit.
func (s *SVC) NFeaturesIn() int {
	n, _ := s.state.GetDimensions()
	return n
}

// NSupport returns the number of support vectors per class.
func (s *SVC) NSupport() []int { return s.nSupport_ }

// NIter returns the SMO iterations of each pairwise problem.
func (s *SVC) NIter() []int { return s.nIter_ }

// Gamma returns the gamma used by the fitted kernel.
func (s *SVC) Gamma() float64 { return s.gamma_ }

func (s *SVC) gammaParam() interface{} {
	if s.gammaMode == "value" {
		return s.gammaValue
	}
	return s.gammaMode
}

// GetParams returns the hyperparameters.
func (s *SVC) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"C":            s.C,
		"kernel":       s.kernel,
		"degree":       s.degree,
		"gamma":        s.gammaParam(),
		"coef0":        s.coef0,
		"shrinking":    s.shrinking,
		"tol":          s.tol,
		"cache_size":   s.cacheSize,
		"class_weight": nil,
		"max_iter":     s.maxIter,
		"random_state": nil,
	}
	if s.classWeight == "balanced" {
		params["class_weight"] = "balanced"
	}
	if s.randomState >= 0 {
		params["random_state"] = int(s.randomState)
	}
	return params
}

// SetParams sets hyperparameters by their scikit-learn names.
func (s *SVC) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "C":
			s.C, err = model.ParamFloat(key, value)
		case "kernel":
			s.kernel, err = model.ParamString(key, value)
		case "degree":
			s.degree, err = model.ParamInt(key, value)
		case "gamma":
			err = s.setGamma(value)
		case "coef0":
			s.coef0, err = model.ParamFloat(key, value)
		case "shrinking":
			s.shrinking, err = model.ParamBool(key, value)
		case "tol":
			s.tol, err = model.ParamFloat(key, value)
		case "cache_size":
			s.cacheSize, err = model.ParamFloat(key, value)
		case "class_weight":
			s.classWeight, err = model.ParamString(key, value)
		case "max_iter":
			s.maxIter, err = model.ParamInt(key, value)
		case "random_state":
			var seed int
			var ok bool
			seed, ok, err = model.ParamOptionalInt(key, value)
			if !ok {
				seed = -1
			}
			s.randomState = int64(seed)
		default:
			err = errors.NewValidationError(key, "unknown parameter for SVC", value)
		}
		if err != nil {
			return err
		}
	}
	s.state.Reset()
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (s *SVC) Clone() model.TunableClassifier {
	c := *s
	c.state = model.NewStateManager()
	c.classes_, c.models_, c.nSupport_, c.nIter_ = nil, nil, nil, nil
	c.nFeatures_, c.gamma_ = 0, 0
	return &c
}

func (s *SVC) String() string {
	return fmt.Sprintf("SVC(C=%g, kernel=%s, gamma=%v, degree=%d)", s.C, s.kernel, s.gammaParam(), s.degree)
}
