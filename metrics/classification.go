// Package metrics provides the classification scores used to compare the
// tuned estimators: accuracy, precision, recall, F1, confusion matrices and
// a sklearn-style classification report.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// Averaging modes of PrecisionRecallF1.
const (
	AverageBinary   = "binary"
	AverageMacro    = "macro"
	AverageWeighted = "weighted"
)

func columnValues(op string, m mat.Matrix) ([]float64, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	return mat.Col(nil, 0, m), nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("Accuracy", "empty labels")
	}
	if len(yTrue) != len(yPred) {
		return 0, errors.NewDimensionError("Accuracy", len(yTrue), len(yPred), 0)
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// AccuracyMatrix computes accuracy on the first column of n×1 label matrices,
// the shape returned by Predict.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, err := columnValues("AccuracyMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := columnValues("AccuracyMatrix", yPred)
	if err != nil {
		return 0, err
	}
	if len(t) != len(p) {
		return 0, errors.NewDimensionError("AccuracyMatrix", len(t), len(p), 0)
	}
	correct := 0
	for i := range t {
		if t[i] == p[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(t)), nil
}

// ConfusionMatrix counts predictions per (true, predicted) label pair.
// Labels are the sorted union of both inputs.
type ConfusionMatrix struct {
	Labels []int
	Counts [][]int // Counts[i][j]: true Labels[i] predicted as Labels[j]
}

// NewConfusionMatrix builds the confusion matrix of two label vectors.
func NewConfusionMatrix(yTrue, yPred []int) (*ConfusionMatrix, error) {
	if len(yTrue) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty labels")
	}
	if len(yTrue) != len(yPred) {
		return nil, errors.NewDimensionError("ConfusionMatrix", len(yTrue), len(yPred), 0)
	}
	seen := make(map[int]bool)
	for i := range yTrue {
		seen[yTrue[i]] = true
		seen[yPred[i]] = true
	}
	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	pos := make(map[int]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		counts[pos[yTrue[i]]][pos[yPred[i]]]++
	}
	return &ConfusionMatrix{Labels: labels, Counts: counts}, nil
}

func (cm *ConfusionMatrix) index(label int) int {
	for i, l := range cm.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Total is the number of samples counted.
func (cm *ConfusionMatrix) Total() int {
	n := 0
	for _, row := range cm.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Correct is the number of samples on the diagonal.
func (cm *ConfusionMatrix) Correct() int {
	n := 0
	for i := range cm.Labels {
		n += cm.Counts[i][i]
	}
	return n
}

// Support returns the number of true samples of label.
func (cm *ConfusionMatrix) Support(label int) int {
	i := cm.index(label)
	if i < 0 {
		return 0
	}
	total := 0
	for _, c := range cm.Counts[i] {
		total += c
	}
	return total
}

// Precision is tp / (tp + fp) for label. A zero denominator yields 0 and an
// UndefinedMetricWarning.
func (cm *ConfusionMatrix) Precision(label int) float64 {
	i := cm.index(label)
	if i < 0 {
		return 0
	}
	predicted := 0
	for r := range cm.Counts {
		predicted += cm.Counts[r][i]
	}
	if predicted == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples", 0))
		return 0
	}
	return float64(cm.Counts[i][i]) / float64(predicted)
}

// Recall is tp / (tp + fn) for label.
func (cm *ConfusionMatrix) Recall(label int) float64 {
	i := cm.index(label)
	support := cm.Support(label)
	if i < 0 || support == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples", 0))
		return 0
	}
	return float64(cm.Counts[i][i]) / float64(support)
}

// F1 is the harmonic mean of precision and recall for label.
func (cm *ConfusionMatrix) F1(label int) float64 {
	p, r := cm.Precision(label), cm.Recall(label)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Scores is a precision/recall/F1 triple.
type Scores struct {
	Precision float64
	Recall    float64
	F1        float64
}

// Average combines the per-label scores. "binary" reports label 1 only,
// "macro" is the unweighted mean over labels and "weighted" weights each
// label by its support.
func (cm *ConfusionMatrix) Average(average string) (Scores, error) {
	switch average {
	case AverageBinary:
		return Scores{cm.Precision(1), cm.Recall(1), cm.F1(1)}, nil
	case AverageMacro, AverageWeighted:
	default:
		return Scores{}, errors.NewValidationError("average", "must be binary, macro or weighted", average)
	}
	var s Scores
	total := float64(cm.Total())
	for _, l := range cm.Labels {
		w := 1 / float64(len(cm.Labels))
		if average == AverageWeighted {
			w = float64(cm.Support(l)) / total
		}
		s.Precision += w * cm.Precision(l)
		s.Recall += w * cm.Recall(l)
		s.F1 += w * cm.F1(l)
	}
	return s, nil
}

// PrecisionRecallF1 scores yPred against yTrue with the given averaging.
func PrecisionRecallF1(yTrue, yPred []int, average string) (Scores, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return Scores{}, err
	}
	return cm.Average(average)
}

// Precision returns the precision of the positive label.
func Precision(yTrue, yPred []int, positive int) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return cm.Precision(positive), nil
}

// Recall returns the recall of the positive label.
func Recall(yTrue, yPred []int, positive int) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return cm.Recall(positive), nil
}

// F1Score returns the F1 score of the positive label.
func F1Score(yTrue, yPred []int, positive int) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return cm.F1(positive), nil
}

// ClassificationReport renders per-class precision, recall, F1 and support
// followed by accuracy and macro/weighted averages. names maps labels to
// display names; missing entries print the number.
func ClassificationReport(yTrue, yPred []int, names map[int]string) (string, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, l := range cm.Labels {
		name, ok := names[l]
		if !ok {
			name = fmt.Sprintf("%d", l)
		}
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", name, cm.Precision(l), cm.Recall(l), cm.F1(l), cm.Support(l))
	}
	total := cm.Total()
	macro, _ := cm.Average(AverageMacro)
	weighted, _ := cm.Average(AverageWeighted)
	fmt.Fprintf(&b, "\n%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", float64(cm.Correct())/float64(total), total)
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "macro avg", macro.Precision, macro.Recall, macro.F1, total)
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "weighted avg", weighted.Precision, weighted.Recall, weighted.F1, total)
	return b.String(), nil
}
