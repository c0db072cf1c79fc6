package audit

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/sklearn/tree"
)

func names27() []string {
	out := make([]string, 27)
	for i := range out {
		out[i] = fmt.Sprintf("col_%02d", i)
	}
	return out
}

func TestCompare(t *testing.T) {
	full := names27()
	missing := append(append([]string{}, full[:5]...), full[6:]...)
	swapped := append([]string{}, full...)
	swapped[3], swapped[4] = swapped[4], swapped[3]

	tests := []struct {
		name string
		list []string
		want Diff
	}{
		{"identical", full, Diff{InModelOnly: []string{}, InFileOnly: []string{}, OrderMismatch: -1}},
		{"identical with label", append(append([]string{}, full...), "Target"), Diff{InModelOnly: []string{}, InFileOnly: []string{}, OrderMismatch: -1}},
		{"one missing", missing, Diff{InModelOnly: []string{"col_05"}, InFileOnly: []string{}, OrderMismatch: 5}},
		{"one extra", append(append([]string{}, full...), "Nationality"), Diff{InModelOnly: []string{}, InFileOnly: []string{"Nationality"}, OrderMismatch: 27}},
		{"reordered", swapped, Diff{InModelOnly: []string{}, InFileOnly: []string{}, OrderMismatch: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(full, tt.list)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compare mismatch (-want +got):\n%s", diff)
			}
			if got.Empty() != (tt.want.OrderMismatch < 0) {
				t.Errorf("Empty() = %v", got.Empty())
			}
		})
	}
}

func writeFixtures(t *testing.T, modelFeatures, list []string) (modelPath, listPath string) {
	t.Helper()
	return writeFixturesWidth(t, modelFeatures, list, len(modelFeatures))
}

// writeFixturesWidth fits the stored estimator on n columns regardless of
// how many names the artifact records.
func writeFixturesWidth(t *testing.T, modelFeatures, list []string, n int) (modelPath, listPath string) {
	t.Helper()
	dir := t.TempDir()
	X := mat.NewDense(4, n, nil)
	for i := 0; i < 4; i++ {
		X.Set(i, 0, float64(i))
	}
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	clf := tree.NewDecisionTreeClassifier(tree.WithRandomState(42))
	if err := clf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	modelPath = filepath.Join(dir, "svm_tuned_model.gob")
	err := model.SaveArtifact(&model.Artifact{Name: "SVM", FeatureNames: modelFeatures, Classes: []string{"Dropout", "Graduate"}, Estimator: clf}, modelPath)
	if err != nil {
		t.Fatal(err)
	}
	listPath = filepath.Join(dir, "feature_names.json")
	if err := model.SaveFeatureNames(listPath, list); err != nil {
		t.Fatal(err)
	}
	return modelPath, listPath
}

func TestRunAndPrintIdentical(t *testing.T) {
	full := names27()
	mp, lp := writeFixtures(t, full, append(append([]string{}, full...), "Target"))

	r, err := Run(mp, lp)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Diff.Empty() {
		t.Errorf("expected no difference, got %+v", r.Diff)
	}

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	for _, want := range []string{
		"feature_names.json has 27 features\n",
		"Model expects: 27 features\n",
		"Fitted estimator expects: 27 features\n",
		"Model expected features:\n1. col_00\n",
		"27. col_26\n",
		strings.Repeat("=", 80) + "\nDifference:\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NOT in") || strings.Contains(out, "WARNING") {
		t.Errorf("identical lists should print no difference lines:\n%s", out)
	}
	if r.FittedFeatures != 27 || !r.OK() {
		t.Errorf("FittedFeatures = %d, OK = %v", r.FittedFeatures, r.OK())
	}
}

func TestRunDetectsEstimatorWidthMismatch(t *testing.T) {
	full := names27()
	// メタデータは 27 列だが推定器は 26 列で学習済み
	mp, lp := writeFixturesWidth(t, full, full, 26)

	r, err := Run(mp, lp)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Diff.Empty() {
		t.Errorf("name lists agree, got %+v", r.Diff)
	}
	if r.FittedFeatures != 26 {
		t.Errorf("FittedFeatures = %d, want 26", r.FittedFeatures)
	}
	if !r.WidthMismatch() || r.OK() {
		t.Errorf("WidthMismatch = %v, OK = %v; want true, false", r.WidthMismatch(), r.OK())
	}

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	for _, want := range []string{
		"Model expects: 27 features\n",
		"Fitted estimator expects: 26 features\n",
		"WARNING: artifact lists 27 feature names but the estimator was fitted on 26 columns\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunAndPrintMissing(t *testing.T) {
	full := names27()
	mp, lp := writeFixtures(t, full, full[1:])

	r, err := Run(mp, lp)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	if !strings.Contains(out, "feature_names.json has 26 features\n") {
		t.Errorf("wrong count line:\n%s", out)
	}
	if !strings.Contains(out, "Features in MODEL but NOT in feature_names.json: {'col_00'}\n") {
		t.Errorf("missing difference line:\n%s", out)
	}
	if strings.Contains(out, "but NOT in MODEL") {
		t.Errorf("unexpected extra line:\n%s", out)
	}
}

func TestRunLoadFailures(t *testing.T) {
	full := names27()
	mp, lp := writeFixtures(t, full, full)
	dir := t.TempDir()

	if _, err := Run(filepath.Join(dir, "none.gob"), lp); err == nil {
		t.Error("expected error for missing model")
	}
	if _, err := Run(mp, filepath.Join(dir, "none.json")); err == nil {
		t.Error("expected error for missing feature list")
	}
}
