// Package ensemble provides bagged tree ensembles.
package ensemble

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/core/parallel"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/sklearn/tree"
)

// RandomForestClassifier averages the class probabilities of CART trees
// grown on bootstrap samples with random feature subsets.
type RandomForestClassifier struct {
	state *model.StateManager

	nEstimators         int
	criterion           string
	maxDepth            int // -1 for None
	minSamplesSplit     int
	minSamplesLeaf      int
	maxFeatures         interface{} // nil, "sqrt", "log2", int or float64
	minImpurityDecrease float64
	bootstrap           bool
	classWeight         string // "none", "balanced" or "balanced_subsample"
	randomState         int64  // -1 for None
	nJobs               int

	classes_    []int
	nFeatures_  int
	estimators_ []*tree.DecisionTreeClassifier
}

// Option configures a RandomForestClassifier.
type Option func(*RandomForestClassifier)

// NewRandomForestClassifier creates a forest with scikit-learn's defaults.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		state:           model.NewStateManager(),
		nEstimators:     100,
		criterion:       "gini",
		maxDepth:        -1,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     "sqrt",
		bootstrap:       true,
		classWeight:     "none",
		randomState:     -1,
		nJobs:           -1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestClassifier) { rf.nEstimators = n }
}

// WithMaxDepth sets the maximum tree depth; negative means unlimited.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestClassifier) {
		if depth < 0 {
			depth = -1
		}
		rf.maxDepth = depth
	}
}

// WithMaxFeatures sets the features considered per split.
func WithMaxFeatures(v interface{}) Option {
	return func(rf *RandomForestClassifier) { rf.maxFeatures = v }
}

// WithMinSamplesSplit sets min_samples_split.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestClassifier) { rf.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets min_samples_leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestClassifier) { rf.minSamplesLeaf = n }
}

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) Option {
	return func(rf *RandomForestClassifier) { rf.bootstrap = b }
}

// WithRandomState sets the random seed.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestClassifier) { rf.randomState = seed }
}

// WithNJobs bounds the goroutines building trees (<= 0: all CPUs).
func WithNJobs(n int) Option {
	return func(rf *RandomForestClassifier) { rf.nJobs = n }
}

// Name returns the estimator name.
func (rf *RandomForestClassifier) Name() string { return "RandomForestClassifier" }

func (rf *RandomForestClassifier) newTree(seed int64) (*tree.DecisionTreeClassifier, error) {
	t := tree.NewDecisionTreeClassifier(
		tree.WithCriterion(rf.criterion),
		tree.WithMaxDepth(rf.maxDepth),
		tree.WithMinSamplesSplit(rf.minSamplesSplit),
		tree.WithMinSamplesLeaf(rf.minSamplesLeaf),
		tree.WithMinImpurityDecrease(rf.minImpurityDecrease),
		tree.WithRandomState(seed),
	)
	// max_features の検証は木に任せる
	if err := t.SetParams(map[string]interface{}{"max_features": rf.maxFeatures}); err != nil {
		return nil, err
	}
	return t, nil
}

func (rf *RandomForestClassifier) validate() error {
	if rf.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", rf.nEstimators)
	}
	if err := model.ParamOneOf("class_weight", rf.classWeight, "none", "balanced", "balanced_subsample"); err != nil {
		return err
	}
	_, err := rf.newTree(0)
	return err
}

// Fit grows nEstimators trees in parallel. Each tree gets its own seed
// drawn from random_state, so the fitted forest does not depend on
// scheduling.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestClassifier.Fit")

	if err := rf.validate(); err != nil {
		return err
	}
	nSamples, nFeatures, err := model.CheckXy("RandomForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	rf.state.Reset()

	classes, yIdx := model.EncodeClasses(y)
	Xd := mat.DenseCopyOf(X)

	seed := rf.randomState
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	seeds := make([]int64, rf.nEstimators)
	for i := range seeds {
		seeds[i] = rng.Int63n(1 << 31)
	}

	full := model.ClassWeights(rf.classWeight, yIdx, len(classes))
	trees := make([]*tree.DecisionTreeClassifier, rf.nEstimators)
	err = parallel.ForEach(context.Background(), rf.nEstimators, rf.nJobs, func(_ context.Context, i int) error {
		t, err := rf.newTree(seeds[i])
		if err != nil {
			return err
		}
		w := rf.sampleWeights(seeds[i], yIdx, len(classes), full)
		if err := t.FitWithSampleWeight(Xd, y, w); err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}

	rf.classes_ = classes
	rf.nFeatures_ = nFeatures
	rf.estimators_ = trees
	rf.state.SetDimensions(nFeatures, nSamples)
	rf.state.SetFitted()
	return nil
}

// sampleWeights combines bootstrap counts with class weights.
func (rf *RandomForestClassifier) sampleWeights(seed int64, yIdx []int, nClasses int, full []float64) []float64 {
	n := len(yIdx)
	w := make([]float64, n)
	if !rf.bootstrap {
		for i := range w {
			w[i] = full[yIdx[i]]
		}
		return w
	}

	r := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		w[r.Intn(n)]++
	}
	cw := full
	if rf.classWeight == "balanced_subsample" {
		var drawn []int
		for i, c := range w {
			for k := 0; k < int(c); k++ {
				drawn = append(drawn, yIdx[i])
			}
		}
		cw = model.ClassWeights("balanced", drawn, nClasses)
	}
	for i := range w {
		w[i] *= cw[yIdx[i]]
	}
	return w
}

// PredictProba averages the tree probabilities.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted(rf.Name(), "PredictProba"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := rf.state.RequireFeatures("RandomForestClassifier.PredictProba", c); err != nil {
		return nil, err
	}
	if r == 0 {
		return nil, errors.ErrEmptyData
	}
	avg := mat.NewDense(r, len(rf.classes_), nil)
	for _, t := range rf.estimators_ {
		p, err := t.PredictProba(X)
		if err != nil {
			return nil, err
		}
		avg.Add(avg, p)
	}
	avg.Scale(1/float64(len(rf.estimators_)), avg)
	return avg, nil
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	p := proba.(*mat.Dense)
	r, _ := p.Dims()
	idx := make([]int, r)
	for i := 0; i < r; i++ {
		idx[i] = model.ArgMax(p.RawRowView(i))
	}
	return model.LabelColumn(rf.classes_, idx), nil
}

// Score returns the mean accuracy on the given samples.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.MeanAccuracy(pred, y)
}

// Classes returns the sorted class labels.
func (rf *RandomForestClassifier) Classes() []int { return rf.classes_ }

// NFeaturesIn returns the number of columns seen by Fit.
func (rf *RandomForestClassifier) NFeaturesIn() int {
	n, _ := rf.state.GetDimensions()
	return n
}

// Estimators returns the fitted trees.
func (rf *RandomForestClassifier) Estimators() []*tree.DecisionTreeClassifier { return rf.estimators_ }

// FeatureImportances returns the mean of the per-tree impurity
// importances, renormalized to sum to 1.
func (rf *RandomForestClassifier) FeatureImportances() ([]float64, error) {
	if err := rf.state.RequireFitted(rf.Name(), "FeatureImportances"); err != nil {
		return nil, err
	}
	imp := make([]float64, rf.nFeatures_)
	for _, t := range rf.estimators_ {
		for j, v := range t.GetFeatureImportances() {
			imp[j] += v
		}
	}
	sum := 0.0
	for _, v := range imp {
		sum += v
	}
	if sum > 0 {
		for j := range imp {
			imp[j] /= sum
		}
	}
	return imp, nil
}

// GetParams returns the hyperparameters with scikit-learn names.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"n_estimators":          rf.nEstimators,
		"criterion":             rf.criterion,
		"max_depth":             nil,
		"min_samples_split":     rf.minSamplesSplit,
		"min_samples_leaf":      rf.minSamplesLeaf,
		"max_features":          rf.maxFeatures,
		"min_impurity_decrease": rf.minImpurityDecrease,
		"bootstrap":             rf.bootstrap,
		"class_weight":          nil,
		"random_state":          nil,
		"n_jobs":                nil,
	}
	if rf.maxDepth > 0 {
		params["max_depth"] = rf.maxDepth
	}
	if rf.classWeight != "none" {
		params["class_weight"] = rf.classWeight
	}
	if rf.randomState >= 0 {
		params["random_state"] = int(rf.randomState)
	}
	if rf.nJobs > 0 {
		params["n_jobs"] = rf.nJobs
	}
	return params
}

// SetParams sets hyperparameters by scikit-learn name.
func (rf *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "n_estimators":
			rf.nEstimators, err = model.ParamInt(key, value)
		case "criterion":
			rf.criterion, err = model.ParamString(key, value)
		case "max_depth":
			var d int
			var ok bool
			d, ok, err = model.ParamOptionalInt(key, value)
			if !ok {
				d = -1
			}
			rf.maxDepth = d
		case "min_samples_split":
			rf.minSamplesSplit, err = model.ParamInt(key, value)
		case "min_samples_leaf":
			rf.minSamplesLeaf, err = model.ParamInt(key, value)
		case "max_features":
			rf.maxFeatures = value
		case "min_impurity_decrease":
			rf.minImpurityDecrease, err = model.ParamFloat(key, value)
		case "bootstrap":
			rf.bootstrap, err = model.ParamBool(key, value)
		case "class_weight":
			rf.classWeight, err = model.ParamString(key, value)
		case "random_state":
			var seed int
			var ok bool
			seed, ok, err = model.ParamOptionalInt(key, value)
			if !ok {
				seed = -1
			}
			rf.randomState = int64(seed)
		case "n_jobs":
			var n int
			var ok bool
			n, ok, err = model.ParamOptionalInt(key, value)
			if !ok {
				n = -1
			}
			rf.nJobs = n
		default:
			err = errors.NewValidationError(key, "unknown parameter for RandomForestClassifier", value)
		}
		if err != nil {
			return err
		}
	}
	rf.state.Reset()
	return rf.validate()
}

// Clone returns an unfitted forest with the same hyperparameters.
func (rf *RandomForestClassifier) Clone() model.TunableClassifier {
	c := *rf
	c.state = model.NewStateManager()
	c.classes_, c.estimators_ = nil, nil
	c.nFeatures_ = 0
	return &c
}

func (rf *RandomForestClassifier) String() string {
	depth := "None"
	if rf.maxDepth > 0 {
		depth = strconv.Itoa(rf.maxDepth)
	}
	return fmt.Sprintf("RandomForestClassifier(n_estimators=%d, max_depth=%s, max_features=%v)",
		rf.nEstimators, depth, model.FormatParamValue(rf.maxFeatures))
}
