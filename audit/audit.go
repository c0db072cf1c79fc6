// Package audit checks that a persisted model artifact and a persisted
// feature-name list describe the same input columns.
package audit

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// Diff is the difference between a model's features and a feature list.
type Diff struct {
	InModelOnly []string
	InFileOnly  []string
	// OrderMismatch is the first position where the ordered lists differ,
	// -1 when they are identical.
	OrderMismatch int
}

// Empty reports whether the lists are identical in content and order.
func (d Diff) Empty() bool {
	return len(d.InModelOnly) == 0 && len(d.InFileOnly) == 0 && d.OrderMismatch < 0
}

// Compare diffs the model's feature names against list. The label column
// is removed from list first.
func Compare(modelFeatures, list []string) Diff {
	inModel, inList, order := model.CompareFeatures(modelFeatures, model.StripLabel(list))
	return Diff{InModelOnly: inModel, InFileOnly: inList, OrderMismatch: order}
}

// Report is the outcome of auditing one artifact.
type Report struct {
	ModelPath     string
	FeaturesPath  string
	ModelName     string
	ModelFeatures []string
	ListFeatures  []string // label column removed
	Diff          Diff
	// FittedFeatures is the input width the estimator was fitted on, -1
	// when the estimator does not report it.
	FittedFeatures int
}

// WidthMismatch reports whether the artifact's feature names disagree in
// count with the fitted estimator.
func (r *Report) WidthMismatch() bool {
	return r.FittedFeatures >= 0 && r.FittedFeatures != len(r.ModelFeatures)
}

// OK reports whether the feature list, the artifact metadata and the
// fitted estimator all agree.
func (r *Report) OK() bool {
	return r.Diff.Empty() && !r.WidthMismatch()
}

// Run loads the artifact at modelPath and the JSON feature list at
// featuresPath and compares them. Load failures are returned as errors.
func Run(modelPath, featuresPath string) (*Report, error) {
	a, err := model.LoadArtifact(modelPath)
	if err != nil {
		return nil, err
	}
	list, err := model.LoadFeatureNames(featuresPath)
	if err != nil {
		return nil, errors.Wrap(err, "load feature list")
	}
	if len(a.FeatureNames) == 0 {
		return nil, errors.NewValueError("audit.Run", modelPath+" records no feature names")
	}
	fitted := -1
	if n, ok := a.FittedFeatures(); ok {
		fitted = n
	}
	return &Report{
		ModelPath:      modelPath,
		FeaturesPath:   featuresPath,
		ModelName:      a.Name,
		ModelFeatures:  a.FeatureNames,
		ListFeatures:   model.StripLabel(list),
		Diff:           Compare(a.FeatureNames, list),
		FittedFeatures: fitted,
	}, nil
}

// Print writes the report in the console layout:
//
//	feature_names.json has 27 features
//	Model expects: 27 features
//	Fitted estimator expects: 27 features
//
//	Model expected features:
//	1. Marital status
//	...
//	================================================================================
//	Difference:
//	Features in MODEL but NOT in feature_names.json: {...}
func (r *Report) Print(w io.Writer) {
	file := filepath.Base(r.FeaturesPath)
	fmt.Fprintf(w, "%s has %d features\n", file, len(r.ListFeatures))
	fmt.Fprintf(w, "Model expects: %d features\n", len(r.ModelFeatures))
	if r.FittedFeatures >= 0 {
		fmt.Fprintf(w, "Fitted estimator expects: %d features\n", r.FittedFeatures)
	}
	if r.WidthMismatch() {
		fmt.Fprintf(w, "WARNING: artifact lists %d feature names but the estimator was fitted on %d columns\n",
			len(r.ModelFeatures), r.FittedFeatures)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Model expected features:")
	for i, f := range r.ModelFeatures {
		fmt.Fprintf(w, "%d. %s\n", i+1, f)
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintln(w, "Difference:")
	if len(r.Diff.InModelOnly) > 0 {
		fmt.Fprintf(w, "Features in MODEL but NOT in %s: %s\n", file, pySet(r.Diff.InModelOnly))
	}
	if len(r.Diff.InFileOnly) > 0 {
		fmt.Fprintf(w, "Features in %s but NOT in MODEL: %s\n", file, pySet(r.Diff.InFileOnly))
	}
	if len(r.Diff.InModelOnly) == 0 && len(r.Diff.InFileOnly) == 0 && r.Diff.OrderMismatch >= 0 {
		fmt.Fprintf(w, "Same features, order differs from position %d\n", r.Diff.OrderMismatch+1)
	}
}

func pySet(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
