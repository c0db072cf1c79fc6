package preprocessing

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLabelEncoderFixedOrder(t *testing.T) {
	e := NewLabelEncoder(DropoutClasses...)
	codes, err := e.FitTransform([]string{"Graduate", "Dropout", "Enrolled"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 0, 2}, codes); diff != "" {
		t.Errorf("codes (-want +got):\n%s", diff)
	}
	if _, err := e.Transform([]string{"Unknown"}); err == nil {
		t.Error("expected error for unknown label")
	}
	labels, err := e.InverseTransform([]int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Dropout", "Graduate"}, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
}

func TestLabelEncoderLearnsSortedClasses(t *testing.T) {
	e := NewLabelEncoder()
	codes, err := e.FitTransform([]string{"b", "a", "c", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 0, 2, 0}, codes); diff != "" {
		t.Errorf("codes (-want +got):\n%s", diff)
	}
}

func TestLabelEncoderSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label_encoder.json")
	if err := NewLabelEncoder(DropoutClasses...).Save(path); err != nil {
		t.Fatal(err)
	}
	e, err := LoadLabelEncoder(path)
	if err != nil {
		t.Fatal(err)
	}
	if code, ok := e.Code("Enrolled"); !ok || code != 2 {
		t.Errorf("Code(Enrolled) = %d, %v", code, ok)
	}
}
