// Package tree implements CART decision trees compatible with
// scikit-learn's DecisionTreeClassifier.
package tree

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

const (
	// 同じとみなす特徴量値の差
	featureThreshold = 1e-7
	epsilon          = 2.220446049250313e-16
)

// Node is one node of a fitted tree. Nodes are stored in a flat slice;
// leaves have Left == Right == -1.
type Node struct {
	Feature          int
	Threshold        float64
	Left, Right      int
	Impurity         float64
	NSamples         int
	WeightedNSamples float64
	// Value is the weighted class distribution of the node, summing to 1.
	Value []float64
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.Left < 0 }

// DecisionTreeClassifier is a CART classifier.
type DecisionTreeClassifier struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	criterion           string  // "gini", "entropy" or "log_loss"
	splitter            string  // "best" or "random"
	maxDepth            int     // -1 for None
	minSamplesSplit     int     // Minimum samples to split an internal node
	minSamplesLeaf      int     // Minimum samples in each leaf
	maxFeaturesMode     string  // "", "sqrt", "log2", "int" or "float"
	maxFeaturesValue    float64 // count or fraction for "int" / "float"
	minImpurityDecrease float64 // Minimum weighted impurity decrease of a split
	classWeight         string  // "none" or "balanced"
	randomState         int64   // -1 for None

	// Fitted attributes
	classes_            []int
	nClasses_           int
	nFeatures_          int
	nodes_              []Node
	featureImportances_ []float64
}

// Option is a functional option for DecisionTreeClassifier
type Option func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a tree with scikit-learn's defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		criterion:       "gini",
		splitter:        "best",
		maxDepth:        -1,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		classWeight:     "none",
		randomState:     -1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// WithCriterion sets the split quality function
func WithCriterion(criterion string) Option {
	return func(dt *DecisionTreeClassifier) { dt.criterion = criterion }
}

// WithSplitter sets the split strategy ("best" or "random")
func WithSplitter(splitter string) Option {
	return func(dt *DecisionTreeClassifier) { dt.splitter = splitter }
}

// WithMaxDepth sets the maximum depth; a negative value means unlimited
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) {
		if depth < 0 {
			depth = -1
		}
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples to split a node
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples in a leaf
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features considered per split. It
// accepts nil, "sqrt", "log2", an int count or a float fraction.
func WithMaxFeatures(v interface{}) Option {
	return func(dt *DecisionTreeClassifier) {
		_ = dt.setMaxFeatures(v)
	}
}

// WithMinImpurityDecrease sets the minimum impurity decrease of a split
func WithMinImpurityDecrease(v float64) Option {
	return func(dt *DecisionTreeClassifier) { dt.minImpurityDecrease = v }
}

// WithClassWeight sets the class weighting ("balanced" or "none")
func WithClassWeight(mode string) Option {
	return func(dt *DecisionTreeClassifier) { dt.classWeight = mode }
}

// WithRandomState sets the random seed
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeClassifier) { dt.randomState = seed }
}

// Name returns the estimator name.
func (dt *DecisionTreeClassifier) Name() string { return "DecisionTreeClassifier" }

func (dt *DecisionTreeClassifier) validate() error {
	if err := model.ParamOneOf("criterion", dt.criterion, "gini", "entropy", "log_loss"); err != nil {
		return err
	}
	if err := model.ParamOneOf("splitter", dt.splitter, "best", "random"); err != nil {
		return err
	}
	if err := model.ParamOneOf("class_weight", dt.classWeight, "none", "balanced"); err != nil {
		return err
	}
	if dt.maxDepth == 0 {
		return errors.NewValidationError("max_depth", "must be positive or None", dt.maxDepth)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", dt.minSamplesLeaf)
	}
	if dt.minImpurityDecrease < 0 {
		return errors.NewValidationError("min_impurity_decrease", "must be non-negative", dt.minImpurityDecrease)
	}
	return nil
}

// Fit builds the tree from the training set (X, y).
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	return dt.FitWithSampleWeight(X, y, nil)
}

// FitWithSampleWeight builds the tree with per-sample weights. Samples with
// zero weight do not reach any node but their labels still count as
// classes. A nil slice weights every sample by 1.
func (dt *DecisionTreeClassifier) FitWithSampleWeight(X, y mat.Matrix, sampleWeight []float64) (err error) {
	defer errors.Recover(&err, "DecisionTreeClassifier.Fit")

	if err := dt.validate(); err != nil {
		return err
	}
	nSamples, nFeatures, err := model.CheckXy("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if sampleWeight != nil && len(sampleWeight) != nSamples {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, len(sampleWeight), 0)
	}

	dt.state.Reset()
	classes, yIdx := model.EncodeClasses(y)
	cw := model.ClassWeights(dt.classWeight, yIdx, len(classes))

	w := make([]float64, nSamples)
	samples := make([]int, 0, nSamples)
	for i := range w {
		w[i] = cw[yIdx[i]]
		if sampleWeight != nil {
			if sampleWeight[i] < 0 {
				return errors.NewValidationError("sample_weight", "must be non-negative", sampleWeight[i])
			}
			w[i] *= sampleWeight[i]
		}
		if w[i] != 0 {
			samples = append(samples, i)
		}
	}
	if len(samples) == 0 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "all sample weights are zero")
	}

	seed := dt.randomState
	if seed < 0 {
		seed = time.Now().UnixNano()
	}

	b := &builder{
		dt:          dt,
		X:           rowMajor(X),
		p:           nFeatures,
		y:           yIdx,
		w:           w,
		nClasses:    len(classes),
		maxFeatures: dt.resolveMaxFeatures(nFeatures),
		rng:         rand.New(rand.NewSource(seed)),
		importances: make([]float64, nFeatures),
	}
	for _, i := range samples {
		b.totalWeight += w[i]
	}
	b.build(samples, 0)

	dt.classes_ = classes
	dt.nClasses_ = len(classes)
	dt.nFeatures_ = nFeatures
	dt.nodes_ = b.nodes
	dt.featureImportances_ = normalize(b.importances)
	dt.state.SetDimensions(nFeatures, nSamples)
	dt.state.SetFitted()
	return nil
}

func normalize(v []float64) []float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	if sum > 0 {
		for i := range v {
			v[i] /= sum
		}
	}
	return v
}

// rowMajor returns the contents of X as a row-major slice, reusing the
// backing array of a compact *mat.Dense.
func rowMajor(X mat.Matrix) []float64 {
	r, c := X.Dims()
	if d, ok := X.(*mat.Dense); ok {
		raw := d.RawMatrix()
		if raw.Stride == c {
			return raw.Data[:r*c]
		}
	}
	return mat.DenseCopyOf(X).RawMatrix().Data
}

func (dt *DecisionTreeClassifier) resolveMaxFeatures(p int) int {
	var k int
	switch dt.maxFeaturesMode {
	case "sqrt":
		k = int(math.Sqrt(float64(p)))
	case "log2":
		k = int(math.Log2(float64(p)))
	case "int":
		k = int(dt.maxFeaturesValue)
	case "float":
		k = int(dt.maxFeaturesValue * float64(p))
	default:
		k = p
	}
	if k < 1 {
		k = 1
	}
	if k > p {
		k = p
	}
	return k
}

// builder grows a tree depth first.
type builder struct {
	dt          *DecisionTreeClassifier
	X           []float64
	p           int
	y           []int
	w           []float64
	nClasses    int
	maxFeatures int
	rng         *rand.Rand
	totalWeight float64
	nodes       []Node
	importances []float64
}

type splitRecord struct {
	found     bool
	feature   int
	threshold float64
	proxy     float64
	impL      float64
	impR      float64
	wL        float64
	wR        float64
}

func (b *builder) impurity(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	if b.dt.criterion == "gini" {
		sq := 0.0
		for _, c := range counts {
			p := c / total
			sq += p * p
		}
		return 1 - sq
	}
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

func (b *builder) build(samples []int, depth int) int {
	counts := make([]float64, b.nClasses)
	wN := 0.0
	for _, s := range samples {
		counts[b.y[s]] += b.w[s]
		wN += b.w[s]
	}
	imp := b.impurity(counts, wN)

	value := make([]float64, b.nClasses)
	for k, c := range counts {
		value[k] = c / wN
	}
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Feature:          -1,
		Left:             -1,
		Right:            -1,
		Impurity:         imp,
		NSamples:         len(samples),
		WeightedNSamples: wN,
		Value:            value,
	})

	dt := b.dt
	n := len(samples)
	if (dt.maxDepth > 0 && depth >= dt.maxDepth) ||
		n < dt.minSamplesSplit ||
		n < 2*dt.minSamplesLeaf ||
		imp <= epsilon {
		return id
	}

	sp := b.findSplit(samples, counts, wN)
	if !sp.found {
		return id
	}
	improvement := (wN / b.totalWeight) * (imp - (sp.wR/wN)*sp.impR - (sp.wL/wN)*sp.impL)
	if improvement+epsilon < dt.minImpurityDecrease {
		return id
	}

	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, s := range samples {
		if b.X[s*b.p+sp.feature] <= sp.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	b.importances[sp.feature] += wN*imp - sp.wL*sp.impL - sp.wR*sp.impR

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[id].Feature = sp.feature
	b.nodes[id].Threshold = sp.threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

// findSplit visits features in random order until maxFeatures
// non-constant features have been evaluated.
func (b *builder) findSplit(samples []int, counts []float64, wN float64) splitRecord {
	best := splitRecord{proxy: math.Inf(-1)}
	order := b.rng.Perm(b.p)
	visited := 0
	sorted := make([]int, len(samples))
	left := make([]float64, b.nClasses)
	right := make([]float64, b.nClasses)

	for _, f := range order {
		if visited >= b.maxFeatures {
			break
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, s := range samples {
			v := b.X[s*b.p+f]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi <= lo+featureThreshold {
			continue
		}
		visited++

		if b.dt.splitter == "random" {
			b.randomSplit(samples, f, lo, hi, counts, wN, &best)
			continue
		}

		copy(sorted, samples)
		sort.Slice(sorted, func(i, j int) bool {
			return b.X[sorted[i]*b.p+f] < b.X[sorted[j]*b.p+f]
		})
		for k := range left {
			left[k] = 0
			right[k] = counts[k]
		}
		wL := 0.0
		n := len(sorted)
		for i := 0; i < n-1; i++ {
			s := sorted[i]
			left[b.y[s]] += b.w[s]
			right[b.y[s]] -= b.w[s]
			wL += b.w[s]

			xi := b.X[s*b.p+f]
			xn := b.X[sorted[i+1]*b.p+f]
			if xn <= xi+featureThreshold {
				continue
			}
			nLeft := i + 1
			if nLeft < b.dt.minSamplesLeaf || n-nLeft < b.dt.minSamplesLeaf {
				continue
			}
			wR := wN - wL
			impL := b.impurity(left, wL)
			impR := b.impurity(right, wR)
			proxy := -wL*impL - wR*impR
			if proxy > best.proxy {
				thr := xi/2 + xn/2
				if thr == xn || math.IsInf(thr, 0) {
					thr = xi
				}
				best = splitRecord{found: true, feature: f, threshold: thr, proxy: proxy, impL: impL, impR: impR, wL: wL, wR: wR}
			}
		}
	}
	return best
}

func (b *builder) randomSplit(samples []int, f int, lo, hi float64, counts []float64, wN float64, best *splitRecord) {
	thr := lo + b.rng.Float64()*(hi-lo)
	if thr == hi {
		thr = lo
	}
	left := make([]float64, b.nClasses)
	wL := 0.0
	nLeft := 0
	for _, s := range samples {
		if b.X[s*b.p+f] <= thr {
			left[b.y[s]] += b.w[s]
			wL += b.w[s]
			nLeft++
		}
	}
	if nLeft < b.dt.minSamplesLeaf || len(samples)-nLeft < b.dt.minSamplesLeaf {
		return
	}
	right := make([]float64, b.nClasses)
	for k := range right {
		right[k] = counts[k] - left[k]
	}
	wR := wN - wL
	impL := b.impurity(left, wL)
	impR := b.impurity(right, wR)
	proxy := -wL*impL - wR*impR
	if proxy > best.proxy {
		*best = splitRecord{found: true, feature: f, threshold: thr, proxy: proxy, impL: impL, impR: impR, wL: wL, wR: wR}
	}
}

func (dt *DecisionTreeClassifier) leaf(row []float64) *Node {
	node := &dt.nodes_[0]
	for !node.IsLeaf() {
		if row[node.Feature] <= node.Threshold {
			node = &dt.nodes_[node.Left]
		} else {
			node = &dt.nodes_[node.Right]
		}
	}
	return node
}

func (dt *DecisionTreeClassifier) checkPredict(method string, X mat.Matrix) error {
	if err := dt.state.RequireFitted(dt.Name(), method); err != nil {
		return err
	}
	r, c := X.Dims()
	if r == 0 {
		return errors.ErrEmptyData
	}
	return dt.state.RequireFeatures("DecisionTreeClassifier."+method, c)
}

// PredictProba returns the class distribution of the leaf each sample
// falls into, one column per class.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkPredict("PredictProba", X); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	out := mat.NewDense(r, dt.nClasses_, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		out.SetRow(i, dt.leaf(row).Value)
	}
	return out, nil
}

// Predict returns the most probable class of each sample.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkPredict("Predict", X); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	idx := make([]int, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		idx[i] = model.ArgMax(dt.leaf(row).Value)
	}
	return model.LabelColumn(dt.classes_, idx), nil
}

// Score returns the mean accuracy on the given samples.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.MeanAccuracy(pred, y)
}

// Classes returns the sorted class labels.
func (dt *DecisionTreeClassifier) Classes() []int { return dt.classes_ }

// NFeaturesIn returns the number of columns seen by Fit.
func (dt *DecisionTreeClassifier) NFeaturesIn() int {
	n, _ := dt.state.GetDimensions()
	return n
}

// GetFeatureImportances returns the normalized total impurity decrease
// contributed by each feature, or nil before fitting.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	return dt.featureImportances_
}

// FeatureImportances implements model.FeatureImportancer.
func (dt *DecisionTreeClassifier) FeatureImportances() ([]float64, error) {
	if err := dt.state.RequireFitted(dt.Name(), "FeatureImportances"); err != nil {
		return nil, err
	}
	return dt.featureImportances_, nil
}

// GetDepth returns the depth of the fitted tree (a single leaf has depth 0).
func (dt *DecisionTreeClassifier) GetDepth() int {
	if len(dt.nodes_) == 0 {
		return 0
	}
	var walk func(id, d int) int
	walk = func(id, d int) int {
		n := dt.nodes_[id]
		if n.IsLeaf() {
			return d
		}
		l := walk(n.Left, d+1)
		if r := walk(n.Right, d+1); r > l {
			return r
		}
		return l
	}
	return walk(0, 0)
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	n := 0
	for i := range dt.nodes_ {
		if dt.nodes_[i].IsLeaf() {
			n++
		}
	}
	return n
}

// Nodes returns the fitted nodes; index 0 is the root.
func (dt *DecisionTreeClassifier) Nodes() []Node { return dt.nodes_ }

func (dt *DecisionTreeClassifier) setMaxFeatures(v interface{}) error {
	switch x := v.(type) {
	case nil:
		dt.maxFeaturesMode, dt.maxFeaturesValue = "", 0
	case string:
		switch x {
		case "none", "":
			dt.maxFeaturesMode, dt.maxFeaturesValue = "", 0
		case "sqrt", "auto":
			dt.maxFeaturesMode, dt.maxFeaturesValue = "sqrt", 0
		case "log2":
			dt.maxFeaturesMode, dt.maxFeaturesValue = "log2", 0
		default:
			return errors.NewValidationError("max_features", "must be None, 'sqrt', 'log2', an int or a float", v)
		}
	case float64, float32:
		f, _ := model.ParamFloat("max_features", v)
		if f <= 0 || f > 1 {
			return errors.NewValidationError("max_features", "fraction must be in (0, 1]", v)
		}
		dt.maxFeaturesMode, dt.maxFeaturesValue = "float", f
	default:
		n, err := model.ParamInt("max_features", v)
		if err != nil {
			return err
		}
		if n < 1 {
			return errors.NewValidationError("max_features", "must be at least 1", v)
		}
		dt.maxFeaturesMode, dt.maxFeaturesValue = "int", float64(n)
	}
	return nil
}

func (dt *DecisionTreeClassifier) maxFeaturesParam() interface{} {
	switch dt.maxFeaturesMode {
	case "sqrt", "log2":
		return dt.maxFeaturesMode
	case "int":
		return int(dt.maxFeaturesValue)
	case "float":
		return dt.maxFeaturesValue
	default:
		return nil
	}
}

// GetParams returns the hyperparameters with scikit-learn names.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"criterion":             dt.criterion,
		"splitter":              dt.splitter,
		"max_depth":             nil,
		"min_samples_split":     dt.minSamplesSplit,
		"min_samples_leaf":      dt.minSamplesLeaf,
		"max_features":          dt.maxFeaturesParam(),
		"min_impurity_decrease": dt.minImpurityDecrease,
		"class_weight":          nil,
		"random_state":          nil,
	}
	if dt.maxDepth > 0 {
		params["max_depth"] = dt.maxDepth
	}
	if dt.classWeight == "balanced" {
		params["class_weight"] = "balanced"
	}
	if dt.randomState >= 0 {
		params["random_state"] = int(dt.randomState)
	}
	return params
}

// SetParams sets hyperparameters by scikit-learn name and resets the
// fitted state.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "criterion":
			dt.criterion, err = model.ParamString(key, value)
		case "splitter":
			dt.splitter, err = model.ParamString(key, value)
		case "max_depth":
			var d int
			var ok bool
			d, ok, err = model.ParamOptionalInt(key, value)
			if err == nil {
				if !ok {
					d = -1
				} else if d < 1 {
					err = errors.NewValidationError(key, "must be positive or None", value)
				}
				dt.maxDepth = d
			}
		case "min_samples_split":
			dt.minSamplesSplit, err = model.ParamInt(key, value)
		case "min_samples_leaf":
			dt.minSamplesLeaf, err = model.ParamInt(key, value)
		case "max_features":
			err = dt.setMaxFeatures(value)
		case "min_impurity_decrease":
			dt.minImpurityDecrease, err = model.ParamFloat(key, value)
		case "class_weight":
			dt.classWeight, err = model.ParamString(key, value)
		case "random_state":
			var seed int
			var ok bool
			seed, ok, err = model.ParamOptionalInt(key, value)
			if !ok {
				seed = -1
			}
			dt.randomState = int64(seed)
		default:
			err = errors.NewValidationError(key, "unknown parameter for DecisionTreeClassifier", value)
		}
		if err != nil {
			return err
		}
	}
	dt.state.Reset()
	return dt.validate()
}

// Clone returns an unfitted tree with the same hyperparameters.
func (dt *DecisionTreeClassifier) Clone() model.TunableClassifier {
	c := *dt
	c.state = model.NewStateManager()
	c.classes_, c.nodes_, c.featureImportances_ = nil, nil, nil
	c.nClasses_, c.nFeatures_ = 0, 0
	return &c
}

// String returns a short description, e.g. DecisionTreeClassifier(criterion=gini, max_depth=None).
func (dt *DecisionTreeClassifier) String() string {
	depth := "None"
	if dt.maxDepth > 0 {
		depth = strconv.Itoa(dt.maxDepth)
	}
	return fmt.Sprintf("DecisionTreeClassifier(criterion=%s, max_depth=%s, min_samples_split=%d, min_samples_leaf=%d)",
		dt.criterion, depth, dt.minSamplesSplit, dt.minSamplesLeaf)
}
