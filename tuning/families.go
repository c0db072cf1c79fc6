package tuning

import (
	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/model_selection"
	"github.com/YuminosukeSato/mentoraid/sklearn/ensemble"
	"github.com/YuminosukeSato/mentoraid/sklearn/linear_model"
	"github.com/YuminosukeSato/mentoraid/sklearn/neighbors"
	"github.com/YuminosukeSato/mentoraid/sklearn/svm"
	"github.com/YuminosukeSato/mentoraid/sklearn/tree"
)

// Family is one classifier family of the tuning run: the baseline
// configuration, the estimator the search starts from and its grid.
type Family struct {
	Name string // e.g. "Random Forest"
	Key  string // artifact prefix and config key, e.g. "rf"

	Default func() model.TunableClassifier
	Search  func() model.TunableClassifier
	Grid    model_selection.ParamGrid

	// NIter > 0 samples that many grid points; 0 searches the whole grid.
	NIter int
}

// ArtifactName is the file the tuned estimator is written to.
func (f Family) ArtifactName() string {
	return f.Key + "_tuned_model.gob"
}

// DefaultFamilies returns the five families in run order.
func DefaultFamilies(seed int64) []Family {
	return []Family{
		{
			Name: "Random Forest",
			Key:  "rf",
			Default: func() model.TunableClassifier {
				return ensemble.NewRandomForestClassifier(
					ensemble.WithNEstimators(100), ensemble.WithRandomState(seed), ensemble.WithNJobs(-1))
			},
			Search: func() model.TunableClassifier {
				return ensemble.NewRandomForestClassifier(ensemble.WithRandomState(seed), ensemble.WithNJobs(-1))
			},
			Grid: model_selection.ParamGrid{
				"n_estimators":      {100, 200},
				"max_depth":         {20, 30, nil},
				"min_samples_split": {2, 5},
				"min_samples_leaf":  {1, 2},
				"max_features":      {"sqrt", "log2"},
			},
		},
		{
			Name: "Decision Tree",
			Key:  "dt",
			Default: func() model.TunableClassifier {
				return tree.NewDecisionTreeClassifier(tree.WithRandomState(seed))
			},
			Search: func() model.TunableClassifier {
				return tree.NewDecisionTreeClassifier(tree.WithRandomState(seed))
			},
			Grid: model_selection.ParamGrid{
				"max_depth":         {10, 20, 30, nil},
				"min_samples_split": {2, 5, 10},
				"min_samples_leaf":  {1, 2, 4},
				"criterion":         {"gini", "entropy"},
			},
		},
		{
			Name: "Logistic Regression",
			Key:  "lr",
			Default: func() model.TunableClassifier {
				return linear_model.NewLogisticRegression(
					linear_model.WithLRMaxIter(1000), linear_model.WithLRRandomState(seed))
			},
			Search: func() model.TunableClassifier {
				return linear_model.NewLogisticRegression(linear_model.WithLRRandomState(seed))
			},
			Grid: model_selection.ParamGrid{
				"C":            {0.001, 0.01, 0.1, 1, 10, 100},
				"penalty":      {"l1", "l2", "elasticnet", nil},
				"solver":       {"lbfgs", "liblinear", "saga"},
				"max_iter":     {500, 1000, 2000},
				"class_weight": {nil, "balanced"},
			},
			NIter: 20,
		},
		{
			Name: "SVM",
			Key:  "svm",
			Default: func() model.TunableClassifier {
				return svm.NewSVC(svm.WithRandomState(seed))
			},
			Search: func() model.TunableClassifier {
				return svm.NewSVC(svm.WithRandomState(seed))
			},
			Grid: model_selection.ParamGrid{
				"C":            {0.1, 1, 10, 100, 1000},
				"gamma":        {"scale", "auto", 0.001, 0.01, 0.1, 1},
				"kernel":       {"rbf", "poly", "sigmoid"},
				"degree":       {2, 3, 4},
				"class_weight": {nil, "balanced"},
			},
			NIter: 15,
		},
		{
			Name: "KNN",
			Key:  "knn",
			Default: func() model.TunableClassifier {
				return neighbors.NewKNeighborsClassifier(neighbors.WithNNeighbors(5))
			},
			Search: func() model.TunableClassifier {
				return neighbors.NewKNeighborsClassifier()
			},
			Grid: model_selection.ParamGrid{
				"n_neighbors": {3, 5, 7, 9, 11, 15, 21, 25},
				"weights":     {"uniform", "distance"},
				"metric":      {"euclidean", "manhattan", "minkowski", "chebyshev"},
				"algorithm":   {"auto", "ball_tree", "kd_tree", "brute"},
				"leaf_size":   {10, 20, 30, 40, 50},
				"p":           {1, 2, 3},
			},
			NIter: 20,
		},
	}
}

// WithGrids replaces the grids of the families whose Key appears in grids.
func WithGrids(families []Family, grids map[string]model_selection.ParamGrid) []Family {
	out := make([]Family, len(families))
	for i, f := range families {
		if g, ok := grids[f.Key]; ok && len(g) > 0 {
			f.Grid = g
		}
		out[i] = f
	}
	return out
}
