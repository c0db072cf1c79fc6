package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	mlerrors "github.com/YuminosukeSato/mentoraid/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	logger.Debug("debug message")
	logger.Info("info message", OperationKey, OperationFit, SamplesKey, 42)
	logger.Error("error message", fmt.Errorf("boom"), FamilyKey, "SVM")

	if strings.Contains(buffer.String(), "debug message") {
		t.Error("debug message should be filtered at info level")
	}
	if !logger.ContainsField(OperationKey, OperationFit) {
		t.Error("expected ml.operation=fit")
	}
	if !logger.ContainsField(SamplesKey, 42.0) {
		t.Error("expected data.samples=42")
	}
	if !logger.ContainsField(ErrorKey, "boom") {
		t.Error("expected error field")
	}
}

func TestTestLoggerWith(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)
	child := logger.With(RunIDKey, "run-1")
	child.Info("child message")

	entries, err := logger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0][RunIDKey] != "run-1" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, LevelInfo)

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	logger.With(ComponentKey, "tuning").Info("search finished", AccuracyKey, 0.95)
	logger.Error("fit failed", mlerrors.NewValueError("Fit", "bad input"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d: %q", len(lines), buf.String())
	}

	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["message"] != "search finished" || first[ComponentKey] != "tuning" || first[AccuracyKey] != 0.95 {
		t.Errorf("unexpected first record: %v", first)
	}

	var second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if _, ok := second[StacktraceKey]; !ok {
		t.Errorf("expected stacktrace on error record: %v", second)
	}
}

func TestSetLoggerRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewZerolog(&buf, LevelDebug))
	defer SetLogger(Nop())

	mlerrors.Warn(mlerrors.NewConvergenceWarning("lbfgs", 100, ""))

	if !strings.Contains(buf.String(), "ConvergenceWarning") {
		t.Errorf("warning not routed through zerolog: %q", buf.String())
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ToLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToLogLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
