package linear_model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// LogisticRegression implements logistic regression for classification
// Compatible with scikit-learn's LogisticRegression
//
// Solvers:
//   - "lbfgs": L-BFGS from gonum/optimize; penalties "l2" and None.
//   - "liblinear": proximal gradient, one-vs-rest; penalties "l1" and "l2".
//   - "saga": proximal gradient; every penalty, "elasticnet" needs l1_ratio.
//
// Incompatible combinations are rejected by Fit, as scikit-learn does.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	penalty      string  // Regularization: "l2", "l1", "elasticnet", "none"
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	classWeight  string  // Class weight: "balanced", "none"
	randomState  int64   // Random seed, -1 for None
	solver       string  // Solver: "lbfgs", "liblinear", "saga"
	maxIter      int     // Maximum iterations
	l1Ratio      float64 // L1 ratio for elastic net, -1 for None
	tol          float64 // Tolerance for stopping

	// Model parameters
	coef_      [][]float64 // Coefficients (n_classes x n_features or 1 x n_features for binary)
	intercept_ []float64   // Intercept terms
	classes_   []int       // Unique class labels
	nClasses_  int         // Number of classes
	nFeatures_ int         // Number of features
	nIter_     []int       // Actual iterations per fitted problem
	ovr_       bool        // One-vs-rest probabilities (liblinear multiclass)
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		classWeight:  "none",
		randomState:  -1,
		solver:       "lbfgs",
		maxIter:      100,
		l1Ratio:      -1,
		tol:          1e-4,
	}

	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRSolver sets the optimization solver
func WithLRSolver(solver string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.solver = solver
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRL1Ratio sets the elastic-net mixing parameter
func WithLRL1Ratio(r float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.l1Ratio = r
	}
}

// WithLRClassWeight sets the class weighting ("balanced" or "none")
func WithLRClassWeight(mode string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.classWeight = mode
	}
}

// WithLRRandomState sets the random seed
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

// Name returns the estimator name.
func (lr *LogisticRegression) Name() string { return "LogisticRegression" }

// checkSolver applies scikit-learn's solver/penalty compatibility rules.
func (lr *LogisticRegression) checkSolver() error {
	if err := model.ParamOneOf("solver", lr.solver, "lbfgs", "liblinear", "saga"); err != nil {
		return err
	}
	if err := model.ParamOneOf("penalty", lr.penalty, "l1", "l2", "elasticnet", "none"); err != nil {
		return err
	}
	if err := model.ParamOneOf("class_weight", lr.classWeight, "none", "balanced"); err != nil {
		return err
	}
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}
	if lr.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", lr.maxIter)
	}

	switch {
	case lr.solver == "lbfgs" && lr.penalty != "l2" && lr.penalty != "none":
		return errors.NewValueError("LogisticRegression.Fit",
			fmt.Sprintf("Solver lbfgs supports only 'l2' or None penalties, got %s penalty.", lr.penalty))
	case lr.solver == "liblinear" && lr.penalty == "none":
		return errors.NewValueError("LogisticRegression.Fit", "penalty=None is not supported for the liblinear solver")
	case lr.penalty == "elasticnet" && lr.solver != "saga":
		return errors.NewValueError("LogisticRegression.Fit",
			fmt.Sprintf("Only 'saga' solver supports elasticnet penalty, got solver=%s.", lr.solver))
	case lr.penalty == "elasticnet" && (lr.l1Ratio < 0 || lr.l1Ratio > 1):
		return errors.NewValueError("LogisticRegression.Fit",
			"l1_ratio must be specified and between 0 and 1 when penalty is 'elasticnet'")
	}
	return nil
}

// penaltyWeights splits the penalty into its L1 and L2 coefficients.
func (lr *LogisticRegression) penaltyWeights() (l1, l2 float64) {
	switch lr.penalty {
	case "l1":
		return 1, 0
	case "l2":
		return 0, 1
	case "elasticnet":
		return lr.l1Ratio, 1 - lr.l1Ratio
	default:
		return 0, 0
	}
}

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LogisticRegression.Fit")

	if err := lr.checkSolver(); err != nil {
		return err
	}
	nSamples, nFeatures, err := model.CheckXy("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}
	lr.state.Reset()

	classes, yIdx := model.EncodeClasses(y)
	if len(classes) < 2 {
		return errors.Wrapf(errors.ErrSingleClass, "LogisticRegression.Fit: got class %d only", classes[0])
	}
	lr.classes_ = classes
	lr.nClasses_ = len(classes)
	lr.nFeatures_ = nFeatures

	cw := model.ClassWeights(lr.classWeight, yIdx, len(classes))
	sw := make([]float64, nSamples)
	for i := range sw {
		sw[i] = cw[yIdx[i]]
	}
	Xa := lr.design(X)

	switch {
	case lr.nClasses_ == 2:
		yBin := make([]int, nSamples)
		copy(yBin, yIdx)
		theta, iters := lr.solve(Xa, yBin, sw, 1)
		lr.setCoef([][]float64{theta})
		lr.nIter_ = []int{iters}
		lr.ovr_ = false
	case lr.solver == "liblinear":
		// 多クラスは one-vs-rest
		rows := make([][]float64, lr.nClasses_)
		lr.nIter_ = make([]int, lr.nClasses_)
		for k := range rows {
			yBin := make([]int, nSamples)
			for i, c := range yIdx {
				if c == k {
					yBin[i] = 1
				}
			}
			rows[k], lr.nIter_[k] = lr.solve(Xa, yBin, sw, 1)
		}
		lr.setCoef(rows)
		lr.ovr_ = true
	default:
		theta, iters := lr.solve(Xa, yIdx, sw, lr.nClasses_)
		q := len(theta) / lr.nClasses_
		rows := make([][]float64, lr.nClasses_)
		for k := range rows {
			rows[k] = theta[k*q : (k+1)*q]
		}
		lr.setCoef(rows)
		lr.nIter_ = []int{iters}
		lr.ovr_ = false
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// design returns X with a trailing column of ones when an intercept is fitted.
func (lr *LogisticRegression) design(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	if !lr.fitIntercept {
		return mat.DenseCopyOf(X)
	}
	Xa := mat.NewDense(r, c+1, nil)
	Xa.Slice(0, r, 0, c).(*mat.Dense).Copy(X)
	for i := 0; i < r; i++ {
		Xa.Set(i, c, 1)
	}
	return Xa
}

func (lr *LogisticRegression) setCoef(rows [][]float64) {
	lr.coef_ = make([][]float64, len(rows))
	lr.intercept_ = make([]float64, len(rows))
	for k, row := range rows {
		lr.coef_[k] = append([]float64(nil), row[:lr.nFeatures_]...)
		if lr.fitIntercept {
			lr.intercept_[k] = row[lr.nFeatures_]
		}
	}
}

// solve minimizes the penalized loss for k weight rows (k == 1: binary
// logistic loss with y in {0,1}; k > 1: multinomial).
func (lr *LogisticRegression) solve(Xa *mat.Dense, y []int, sw []float64, k int) ([]float64, int) {
	_, q := Xa.Dims()
	l1, l2 := lr.penaltyWeights()
	swSum := 0.0
	for _, w := range sw {
		swSum += w
	}
	obj := &logisticObjective{
		X:         Xa,
		y:         y,
		sw:        sw,
		swSum:     swSum,
		k:         k,
		q:         q,
		penalized: lr.nFeatures_,
		alpha:     1 / (lr.C * swSum),
		l2:        l2,
	}
	theta := make([]float64, k*q)

	if lr.solver == "lbfgs" {
		return lr.solveLBFGS(obj, theta)
	}
	return lr.solveProximal(obj, theta, l1)
}

func (lr *LogisticRegression) solveLBFGS(obj *logisticObjective, theta []float64) ([]float64, int) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return obj.eval(x, nil) },
		Grad: func(grad, x []float64) { obj.eval(x, grad) },
	}
	settings := &optimize.Settings{
		MajorIterations:   lr.maxIter,
		GradientThreshold: lr.tol,
	}
	result, err := optimize.Minimize(problem, theta, settings, &optimize.LBFGS{})
	if result == nil {
		errors.Warn(errors.NewConvergenceWarning("lbfgs", 0, fmt.Sprint(err)))
		return theta, 0
	}
	iters := result.Stats.MajorIterations
	switch {
	case result.Status == optimize.IterationLimit:
		errors.Warn(errors.NewConvergenceWarning("lbfgs", iters,
			"lbfgs failed to converge. Increase the number of iterations (max_iter) or scale the data."))
	case err != nil:
		errors.Warn(errors.NewConvergenceWarning("lbfgs", iters, err.Error()))
	}
	return result.X, iters
}

// solveProximal runs FISTA with soft-thresholding for the L1 part.
func (lr *LogisticRegression) solveProximal(obj *logisticObjective, theta []float64, l1 float64) ([]float64, int) {
	L := obj.lipschitz()
	step := 1 / L
	shrink := step * obj.alpha * l1

	n := len(theta)
	prev := make([]float64, n)
	copy(prev, theta)
	yv := make([]float64, n)
	copy(yv, theta)
	grad := make([]float64, n)
	next := make([]float64, n)
	t := 1.0

	for iter := 1; iter <= lr.maxIter; iter++ {
		obj.eval(yv, grad)
		for i := range next {
			next[i] = yv[i] - step*grad[i]
			if shrink > 0 && obj.isPenalized(i) {
				next[i] = softThreshold(next[i], shrink)
			}
		}
		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		maxDelta, maxW := 0.0, 0.0
		for i := range next {
			d := next[i] - prev[i]
			yv[i] = next[i] + ((t-1)/tNext)*d
			maxDelta = math.Max(maxDelta, math.Abs(d))
			maxW = math.Max(maxW, math.Abs(next[i]))
		}
		copy(prev, next)
		t = tNext
		if maxDelta <= lr.tol*math.Max(1, maxW) {
			return prev, iter
		}
	}
	errors.Warn(errors.NewConvergenceWarning(lr.solver, lr.maxIter,
		"The max_iter was reached which means the coef_ did not converge"))
	return prev, lr.maxIter
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}

// DecisionFunction returns the linear scores, one column per weight row.
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	if err := lr.state.RequireFitted(lr.Name(), "DecisionFunction"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := lr.state.RequireFeatures("LogisticRegression.DecisionFunction", c); err != nil {
		return nil, err
	}
	if r == 0 {
		return nil, errors.ErrEmptyData
	}
	W := mat.NewDense(len(lr.coef_), c, nil)
	for k, row := range lr.coef_ {
		W.SetRow(k, row)
	}
	scores := mat.NewDense(r, len(lr.coef_), nil)
	scores.Mul(X, W.T())
	scores.Apply(func(_, j int, v float64) float64 { return v + lr.intercept_[j] }, scores)
	return scores, nil
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	r, _ := scores.Dims()
	idx := make([]int, r)
	for i := 0; i < r; i++ {
		if lr.nClasses_ == 2 {
			if scores.At(i, 0) > 0 {
				idx[i] = 1
			}
			continue
		}
		idx[i] = model.ArgMax(scores.RawRowView(i))
	}
	return model.LabelColumn(lr.classes_, idx), nil
}

// PredictProba returns probability estimates for each class
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	r, _ := scores.Dims()
	probas := mat.NewDense(r, lr.nClasses_, nil)
	for i := 0; i < r; i++ {
		if lr.nClasses_ == 2 {
			p1 := errors.Sigmoid(scores.At(i, 0))
			probas.Set(i, 0, 1-p1)
			probas.Set(i, 1, p1)
			continue
		}
		row := scores.RawRowView(i)
		out := probas.RawRowView(i)
		if lr.ovr_ {
			sum := 0.0
			for k, z := range row {
				out[k] = errors.Sigmoid(z)
				sum += out[k]
			}
			for k := range out {
				out[k] /= sum
			}
			continue
		}
		softmax(row, out)
	}
	return probas, nil
}

func softmax(z, out []float64) {
	maxZ := z[0]
	for _, v := range z[1:] {
		maxZ = math.Max(maxZ, v)
	}
	sum := 0.0
	for k, v := range z {
		out[k] = math.Exp(v - maxZ)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.MeanAccuracy(pred, y)
}

// Classes returns the sorted class labels.
func (lr *LogisticRegression) Classes() []int { return lr.classes_ }

// NFeaturesIn returns the number of columns seen by Fit.
func (lr *LogisticRegression) NFeaturesIn() int {
	n, _ := lr.state.GetDimensions()
	return n
}

// Coef returns the fitted coefficients, one row per class (a single row
// for binary problems).
func (lr *LogisticRegression) Coef() [][]float64 { return lr.coef_ }

// Intercept returns the fitted intercepts.
func (lr *LogisticRegression) Intercept() []float64 { return lr.intercept_ }

// NIter returns the iterations used by each fitted problem.
func (lr *LogisticRegression) NIter() []int { return lr.nIter_ }

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"class_weight":  nil,
		"random_state":  nil,
		"solver":        lr.solver,
		"max_iter":      lr.maxIter,
		"l1_ratio":      nil,
		"tol":           lr.tol,
	}
	if lr.penalty == "none" {
		params["penalty"] = nil
	}
	if lr.classWeight == "balanced" {
		params["class_weight"] = "balanced"
	}
	if lr.randomState >= 0 {
		params["random_state"] = int(lr.randomState)
	}
	if lr.l1Ratio >= 0 {
		params["l1_ratio"] = lr.l1Ratio
	}
	return params
}

// SetParams sets the model hyperparameters. Solver/penalty compatibility
// is checked by Fit.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "penalty":
			lr.penalty, err = model.ParamString(key, value)
		case "C":
			lr.C, err = model.ParamFloat(key, value)
		case "fit_intercept":
			lr.fitIntercept, err = model.ParamBool(key, value)
		case "class_weight":
			lr.classWeight, err = model.ParamString(key, value)
		case "random_state":
			var seed int
			var ok bool
			seed, ok, err = model.ParamOptionalInt(key, value)
			if !ok {
				seed = -1
			}
			lr.randomState = int64(seed)
		case "solver":
			lr.solver, err = model.ParamString(key, value)
		case "max_iter":
			lr.maxIter, err = model.ParamInt(key, value)
		case "l1_ratio":
			if value == nil {
				lr.l1Ratio = -1
			} else {
				lr.l1Ratio, err = model.ParamFloat(key, value)
			}
		case "tol":
			lr.tol, err = model.ParamFloat(key, value)
		default:
			err = errors.NewValidationError(key, "unknown parameter for LogisticRegression", value)
		}
		if err != nil {
			return err
		}
	}
	lr.state.Reset()
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (lr *LogisticRegression) Clone() model.TunableClassifier {
	c := *lr
	c.state = model.NewStateManager()
	c.coef_, c.intercept_, c.classes_, c.nIter_ = nil, nil, nil, nil
	c.nClasses_, c.nFeatures_ = 0, 0
	return &c
}

func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(C=%g, penalty=%s, solver=%s, max_iter=%d)", lr.C, lr.penalty, lr.solver, lr.maxIter)
}
