package metrics

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

const (
	dropout  = 0
	graduate = 1
	enrolled = 2
)

var classNames = map[int]string{dropout: "Dropout", graduate: "Graduate", enrolled: "Enrolled"}

// 10 students: 4 dropouts (one missed), 6 graduates (one flagged as dropout)
func heldOut() (yTrue, yPred []int) {
	yTrue = []int{0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	yPred = []int{0, 0, 1, 0, 1, 1, 0, 1, 1, 1}
	return yTrue, yPred
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var got []error
	errors.SetZerologWarnFunc(nil)
	errors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })
	return &got
}

func TestAccuracy(t *testing.T) {
	yTrue, yPred := heldOut()
	tests := []struct {
		name    string
		yTrue   []int
		yPred   []int
		want    float64
		wantErr bool
	}{
		{"held-out fold", yTrue, yPred, 0.8, false},
		{"all correct", yTrue, yTrue, 1, false},
		{"every student predicted graduate", yTrue, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 0.6, false},
		{"length mismatch", yTrue, yPred[:9], 0, true},
		{"empty", nil, nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !approx(got, tt.want) {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccuracyMatrix(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{dropout, graduate, graduate, dropout})
	yPred := mat.NewDense(4, 1, []float64{dropout, graduate, dropout, dropout})
	got, err := AccuracyMatrix(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.75 {
		t.Errorf("AccuracyMatrix() = %v, want 0.75", got)
	}

	var de *errors.DimensionError
	if _, err := AccuracyMatrix(yTrue, mat.NewDense(3, 1, nil)); !errors.As(err, &de) {
		t.Errorf("expected DimensionError, got %v", err)
	}
	if _, err := AccuracyMatrix(nil, yPred); err == nil {
		t.Error("expected error for nil labels")
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue, yPred := heldOut()
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	want := &ConfusionMatrix{Labels: []int{0, 1}, Counts: [][]int{{3, 1}, {1, 5}}}
	if diff := cmp.Diff(want, cm); diff != "" {
		t.Errorf("confusion matrix (-want +got):\n%s", diff)
	}
	if cm.Total() != 10 || cm.Correct() != 8 {
		t.Errorf("Total=%d Correct=%d, want 10 and 8", cm.Total(), cm.Correct())
	}
	if cm.Support(dropout) != 4 || cm.Support(graduate) != 6 || cm.Support(enrolled) != 0 {
		t.Errorf("supports = %d/%d/%d", cm.Support(dropout), cm.Support(graduate), cm.Support(enrolled))
	}

	// 予測にのみ現れるラベルも行列に含まれる
	cm, err = NewConfusionMatrix([]int{0, 1, 1}, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, cm.Labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}

	if _, err := NewConfusionMatrix([]int{0}, []int{0, 1}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestPerClassScores(t *testing.T) {
	yTrue, yPred := heldOut()
	tests := []struct {
		name     string
		fn       func([]int, []int, int) (float64, error)
		positive int
		want     float64
	}{
		{"precision graduate", Precision, graduate, 5.0 / 6},
		{"recall graduate", Recall, graduate, 5.0 / 6},
		{"f1 graduate", F1Score, graduate, 5.0 / 6},
		{"precision dropout", Precision, dropout, 0.75},
		{"recall dropout", Recall, dropout, 0.75},
		{"f1 dropout", F1Score, dropout, 0.75},
	}
	for _, tt := range tests {
		got, err := tt.fn(yTrue, yPred, tt.positive)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrecisionRecallF1Averages(t *testing.T) {
	yTrue, yPred := heldOut()
	macro := (0.75 + 5.0/6) / 2
	weighted := 0.4*0.75 + 0.6*5.0/6
	tests := []struct {
		average string
		want    Scores
	}{
		{AverageBinary, Scores{5.0 / 6, 5.0 / 6, 5.0 / 6}},
		{AverageMacro, Scores{macro, macro, macro}},
		{AverageWeighted, Scores{weighted, weighted, weighted}},
	}
	for _, tt := range tests {
		got, err := PrecisionRecallF1(yTrue, yPred, tt.average)
		if err != nil {
			t.Fatalf("%s: %v", tt.average, err)
		}
		if diff := cmp.Diff(tt.want, got, cmp.Comparer(approx)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.average, diff)
		}
	}

	_, err := PrecisionRecallF1(yTrue, yPred, "micro")
	var ve *errors.ValidationError
	if !errors.As(err, &ve) || ve.ParamName != "average" {
		t.Errorf("expected ValidationError for average, got %v", err)
	}
}

func TestUndefinedMetricWarning(t *testing.T) {
	warnings := captureWarnings(t)

	// 全員を卒業と予測すると Dropout の precision は未定義
	yTrue, _ := heldOut()
	allGraduate := make([]int, len(yTrue))
	for i := range allGraduate {
		allGraduate[i] = graduate
	}
	got, err := Precision(yTrue, allGraduate, dropout)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("precision = %v, want 0", got)
	}
	if len(*warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(*warnings))
	}
	var uw *errors.UndefinedMetricWarning
	if !errors.As((*warnings)[0], &uw) || uw.Metric != "precision" {
		t.Errorf("unexpected warning %v", (*warnings)[0])
	}

	if r, _ := Recall(yTrue, allGraduate, enrolled); r != 0 {
		t.Errorf("recall of absent class = %v, want 0", r)
	}
	if len(*warnings) != 2 {
		t.Errorf("got %d warnings, want 2", len(*warnings))
	}
}

func TestClassificationReport(t *testing.T) {
	yTrue, yPred := heldOut()
	report, err := ClassificationReport(yTrue, yPred, classNames)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string][]string{
		"Dropout":  {"Dropout", "0.75", "0.75", "0.75", "4"},
		"Graduate": {"Graduate", "0.83", "0.83", "0.83", "6"},
		"accuracy": {"accuracy", "0.80", "10"},
		"macro":    {"macro", "avg", "0.79", "0.79", "0.79", "10"},
		"weighted": {"weighted", "avg", "0.80", "0.80", "0.80", "10"},
	}
	lines := strings.Split(report, "\n")
	if fields := strings.Fields(lines[0]); !cmp.Equal(fields, []string{"precision", "recall", "f1-score", "support"}) {
		t.Errorf("header = %q", lines[0])
	}
	seen := 0
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		w, ok := want[fields[0]]
		if !ok {
			t.Errorf("unexpected line %q", line)
			continue
		}
		seen++
		if diff := cmp.Diff(w, fields); diff != "" {
			t.Errorf("%s line (-want +got):\n%s", fields[0], diff)
		}
	}
	if seen != len(want) {
		t.Errorf("saw %d report lines, want %d:\n%s", seen, len(want), report)
	}
}

func TestClassificationReportUnnamedLabel(t *testing.T) {
	report, err := ClassificationReport([]int{0, 1, 2}, []int{0, 1, 2}, map[int]string{0: "Dropout", 1: "Graduate"})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, line := range strings.Split(report, "\n") {
		if f := strings.Fields(line); len(f) > 0 && f[0] == "2" {
			found = true
		}
	}
	if !found {
		t.Errorf("label 2 should print as a number:\n%s", report)
	}
}
