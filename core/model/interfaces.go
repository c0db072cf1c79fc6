// Package model defines the estimator contracts shared by every classifier
// and transformer in the module, together with fitted-state bookkeeping,
// hyperparameter coercion and artifact persistence.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict returns an n×1 column of predicted labels.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is a supervised model.
type Estimator interface {
	Fitter
	Predictor
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy on the given samples.
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer

	// Classes returns the sorted class labels seen during fitting.
	Classes() []int
}

// FeatureCounter reports the number of input columns seen by Fit, 0 when
// the estimator is not fitted.
type FeatureCounter interface {
	NFeaturesIn() int
}

// ProbabilisticClassifier is a Classifier that also estimates class
// membership probabilities, one column per entry of Classes().
type ProbabilisticClassifier interface {
	Classifier

	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters keyed by their
	// scikit-learn names. A nil value means "None".
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters. Unknown keys and values of
	// the wrong kind are errors; the estimator is left unfitted.
	SetParams(params map[string]interface{}) error
}

// TunableClassifier is what a hyperparameter search needs: a classifier whose
// parameters can be read and written, and which can produce an unfitted copy
// of itself.
type TunableClassifier interface {
	Classifier
	ParameterGetter
	ParameterSetter

	// Clone returns an unfitted estimator with the same hyperparameters.
	Clone() TunableClassifier
}

// FeatureImportancer is implemented by models exposing per-feature scores.
type FeatureImportancer interface {
	FeatureImportances() ([]float64, error)
}
