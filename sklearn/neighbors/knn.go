// Package neighbors provides a k-nearest-neighbours classifier.
package neighbors

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/core/parallel"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// predictThreshold is the row count above which queries are answered in parallel.
const predictThreshold = 64

// KNeighborsClassifier votes among the k nearest training rows.
// Neighbours at equal distance are ordered by training row, so "brute",
// "kd_tree" and "ball_tree" return identical predictions.
type KNeighborsClassifier struct {
	state *model.StateManager

	nNeighbors int
	weights    string  // "uniform" or "distance"
	algorithm  string  // "auto", "ball_tree", "kd_tree", "brute"
	leafSize   int
	p          float64 // Minkowski power
	metric     string  // "minkowski", "euclidean", "manhattan", "chebyshev", "hamming"
	nJobs      int

	X_       [][]float64
	yIdx_    []int
	classes_ []int
	tree_    *kdNode
	dist_    DistanceFunc
}

// Option configures a KNeighborsClassifier.
type Option func(*KNeighborsClassifier)

// NewKNeighborsClassifier returns a classifier with scikit-learn's defaults
// (5 neighbours, uniform weights, Minkowski p=2).
func NewKNeighborsClassifier(opts ...Option) *KNeighborsClassifier {
	k := &KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: 5,
		weights:    "uniform",
		algorithm:  "auto",
		leafSize:   30,
		p:          2,
		metric:     "minkowski",
		nJobs:      -1,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// WithNNeighbors sets k.
func WithNNeighbors(n int) Option { return func(k *KNeighborsClassifier) { k.nNeighbors = n } }

// WithWeights sets "uniform" or "distance".
func WithWeights(w string) Option { return func(k *KNeighborsClassifier) { k.weights = w } }

// WithAlgorithm sets the neighbour search strategy.
func WithAlgorithm(a string) Option { return func(k *KNeighborsClassifier) { k.algorithm = a } }

// WithLeafSize sets the tree leaf size.
func WithLeafSize(n int) Option { return func(k *KNeighborsClassifier) { k.leafSize = n } }

// WithP sets the Minkowski power.
func WithP(p float64) Option { return func(k *KNeighborsClassifier) { k.p = p } }

// WithMetric sets the distance metric.
func WithMetric(m string) Option { return func(k *KNeighborsClassifier) { k.metric = m } }

// Name returns the estimator name.
func (k *KNeighborsClassifier) Name() string { return "KNeighborsClassifier" }

func (k *KNeighborsClassifier) validate(nSamples int) error {
	if k.nNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", k.nNeighbors)
	}
	if k.nNeighbors > nSamples {
		return errors.NewValidationError("n_neighbors",
			fmt.Sprintf("Expected n_neighbors <= n_samples_fit, but n_neighbors = %d, n_samples_fit = %d", k.nNeighbors, nSamples),
			k.nNeighbors)
	}
	if err := model.ParamOneOf("weights", k.weights, "uniform", "distance"); err != nil {
		return err
	}
	if err := model.ParamOneOf("algorithm", k.algorithm, "auto", "ball_tree", "kd_tree", "brute"); err != nil {
		return err
	}
	if err := model.ParamOneOf("metric", k.metric, "minkowski", "euclidean", "manhattan", "chebyshev", "hamming"); err != nil {
		return err
	}
	if k.leafSize < 1 {
		return errors.NewValidationError("leaf_size", "must be at least 1", k.leafSize)
	}
	if k.p < 1 {
		return errors.NewValidationError("p", "must be at least 1", k.p)
	}
	if k.algorithm == "kd_tree" && !axisBounded(k.metric) {
		return errors.NewValueError("KNeighborsClassifier.Fit",
			fmt.Sprintf("Metric '%s' not valid for algorithm 'kd_tree'", k.metric))
	}
	return nil
}

// Fit stores the training rows and, unless the search is brute force,
// builds a k-d tree over them.
func (k *KNeighborsClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "KNeighborsClassifier.Fit")

	nSamples, nFeatures, err := model.CheckXy("KNeighborsClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if err := k.validate(nSamples); err != nil {
		return err
	}
	k.state.Reset()

	k.classes_, k.yIdx_ = model.EncodeClasses(y)
	k.X_ = make([][]float64, nSamples)
	for i := range k.X_ {
		k.X_[i] = mat.Row(nil, i, X)
	}
	k.build()

	k.state.SetDimensions(nFeatures, nSamples)
	k.state.SetFitted()
	return nil
}

// build resolves the metric and the search structure from the stored rows.
func (k *KNeighborsClassifier) build() {
	k.dist_ = resolveMetric(k.metric, k.p)
	k.tree_ = nil
	if k.algorithm != "brute" && axisBounded(k.metric) && len(k.X_) > k.leafSize {
		idx := make([]int, len(k.X_))
		for i := range idx {
			idx[i] = i
		}
		k.tree_ = buildKD(k.X_, idx, k.leafSize, 0)
	}
}

// kneighbors returns the k nearest training rows of q, nearest first.
func (k *KNeighborsClassifier) kneighbors(q []float64) []neighbor {
	best := &kBest{k: k.nNeighbors, items: make([]neighbor, 0, k.nNeighbors)}
	if k.tree_ != nil {
		k.tree_.search(k.X_, q, k.dist_, best)
		return best.items
	}
	for i, x := range k.X_ {
		best.push(neighbor{idx: i, dist: k.dist_(q, x)})
	}
	return best.items
}

// votes returns the normalized class weights of q's neighbourhood.
func (k *KNeighborsClassifier) votes(q []float64, out []float64) {
	for c := range out {
		out[c] = 0
	}
	nbrs := k.kneighbors(q)
	if k.weights == "distance" {
		// 距離0の近傍があればそれだけで決める
		exact := false
		for _, n := range nbrs {
			if n.dist == 0 {
				exact = true
				out[k.yIdx_[n.idx]]++
			}
		}
		if !exact {
			for _, n := range nbrs {
				out[k.yIdx_[n.idx]] += 1 / n.dist
			}
		}
	} else {
		for _, n := range nbrs {
			out[k.yIdx_[n.idx]]++
		}
	}
	sum := 0.0
	for _, v := range out {
		sum += v
	}
	for c := range out {
		out[c] /= sum
	}
}

// PredictProba returns the neighbourhood class proportions.
func (k *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := k.state.RequireFitted(k.Name(), "PredictProba"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := k.state.RequireFeatures("KNeighborsClassifier.PredictProba", c); err != nil {
		return nil, err
	}
	if r == 0 {
		return nil, errors.ErrEmptyData
	}
	proba := mat.NewDense(r, len(k.classes_), nil)
	fill := func(start, end int) {
		q := make([]float64, c)
		for i := start; i < end; i++ {
			mat.Row(q, i, X)
			k.votes(q, proba.RawRowView(i))
		}
	}
	if k.nJobs == 1 {
		fill(0, r)
	} else {
		parallel.ParallelizeWithThreshold(r, predictThreshold, fill)
	}
	return proba, nil
}

// Predict returns the majority (or distance-weighted) class; ties go to
// the smaller label.
func (k *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := k.PredictProba(X)
	if err != nil {
		return nil, err
	}
	p := proba.(*mat.Dense)
	r, _ := p.Dims()
	idx := make([]int, r)
	for i := range idx {
		idx[i] = model.ArgMax(p.RawRowView(i))
	}
	return model.LabelColumn(k.classes_, idx), nil
}

// KNeighbors returns the row indices and distances of the k nearest
// training rows of every query row.
func (k *KNeighborsClassifier) KNeighbors(X mat.Matrix) ([][]int, [][]float64, error) {
	if err := k.state.RequireFitted(k.Name(), "KNeighbors"); err != nil {
		return nil, nil, err
	}
	r, c := X.Dims()
	if err := k.state.RequireFeatures("KNeighborsClassifier.KNeighbors", c); err != nil {
		return nil, nil, err
	}
	indices := make([][]int, r)
	dists := make([][]float64, r)
	q := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(q, i, X)
		for _, n := range k.kneighbors(q) {
			indices[i] = append(indices[i], n.idx)
			dists[i] = append(dists[i], n.dist)
		}
	}
	return indices, dists, nil
}

// Score returns the mean accuracy.
func (k *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := k.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.MeanAccuracy(pred, y)
}

// Classes returns the sorted class labels.
func (k *KNeighborsClassifier) Classes() []int { return k.classes_ }

// NFeaturesIn returns the number of columns seen by Fit.
func (k *KNeighborsClassifier) NFeaturesIn() int {
	n, _ := k.state.GetDimensions()
	return n
}

// GetParams returns the hyperparameters.
func (k *KNeighborsClassifier) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"n_neighbors": k.nNeighbors,
		"weights":     k.weights,
		"algorithm":   k.algorithm,
		"leaf_size":   k.leafSize,
		"p":           k.p,
		"metric":      k.metric,
		"n_jobs":      nil,
	}
	if k.p == math.Trunc(k.p) {
		params["p"] = int(k.p)
	}
	if k.nJobs > 0 {
		params["n_jobs"] = k.nJobs
	}
	return params
}

// SetParams sets hyperparameters by their scikit-learn names.
func (k *KNeighborsClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "n_neighbors":
			k.nNeighbors, err = model.ParamInt(key, value)
		case "weights":
			k.weights, err = model.ParamString(key, value)
		case "algorithm":
			k.algorithm, err = model.ParamString(key, value)
		case "leaf_size":
			k.leafSize, err = model.ParamInt(key, value)
		case "p":
			k.p, err = model.ParamFloat(key, value)
		case "metric":
			k.metric, err = model.ParamString(key, value)
		case "n_jobs":
			var ok bool
			k.nJobs, ok, err = model.ParamOptionalInt(key, value)
			if !ok {
				k.nJobs = -1
			}
		default:
			err = errors.NewValidationError(key, "unknown parameter for KNeighborsClassifier", value)
		}
		if err != nil {
			return err
		}
	}
	k.state.Reset()
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (k *KNeighborsClassifier) Clone() model.TunableClassifier {
	c := *k
	c.state = model.NewStateManager()
	c.X_, c.yIdx_, c.classes_, c.tree_, c.dist_ = nil, nil, nil, nil, nil
	return &c
}

func (k *KNeighborsClassifier) String() string {
	return fmt.Sprintf("KNeighborsClassifier(n_neighbors=%d, weights=%s, metric=%s, p=%g)", k.nNeighbors, k.weights, k.metric, k.p)
}
