package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "mentoraid: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "mentoraid: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewFeatureMismatchError(t *testing.T) {
	err := NewFeatureMismatchError([]string{"GDP"}, []string{"Nationality"}, 3)

	var mismatch *FeatureMismatchError
	if !As(err, &mismatch) {
		t.Fatalf("expected *FeatureMismatchError, got %T", err)
	}
	msg := err.Error()
	for _, want := range []string{"in model only: [GDP]", "in list only: [Nationality]", "position 4"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}

func TestWarnPrefersZerologFunc(t *testing.T) {
	var fallback, structured []error
	SetWarningHandler(func(w error) { fallback = append(fallback, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewConvergenceWarning("lbfgs", 100, ""))
	if len(fallback) != 1 {
		t.Fatalf("fallback handler called %d times, want 1", len(fallback))
	}

	SetZerologWarnFunc(func(w error) { structured = append(structured, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewDataLeakageWarning("oversampling", "applied before fold splitting"))
	if len(structured) != 1 || len(fallback) != 1 {
		t.Errorf("structured=%d fallback=%d, want 1 and 1", len(structured), len(fallback))
	}
}

func TestFitFailedWarningUnwrap(t *testing.T) {
	cause := NewValidationError("penalty", "l1 is not supported by lbfgs", "l1")
	w := NewFitFailedWarning("LogisticRegression", "{penalty: l1}", cause)

	var vErr *ValidationError
	if !As(w, &vErr) {
		t.Fatal("FitFailedWarning should unwrap to its cause")
	}
	if vErr.ParamName != "penalty" {
		t.Errorf("ParamName = %q, want penalty", vErr.ParamName)
	}
}

func TestSigmoid(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{1000, 1},
		{-1000, 0},
	}
	for _, tt := range tests {
		got := Sigmoid(tt.z)
		if math.Abs(got-tt.want) > 1e-12 || math.IsNaN(got) {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(1, 0); got != 0 {
		t.Errorf("SafeDivide(1, 0) = %v, want 0", got)
	}
	if got := SafeDivide(3, 4); got != 0.75 {
		t.Errorf("SafeDivide(3, 4) = %v, want 0.75", got)
	}
}
