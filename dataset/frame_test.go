package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleCSV = `Marital status,Age at enrollment,Nationality,Target
1,20,1,Dropout
2,35,1,Graduate
1,19,6,Enrolled
`

func TestReadCSV(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if f.NRows() != 3 {
		t.Fatalf("NRows = %d, want 3", f.NRows())
	}
	if diff := cmp.Diff([]string{"Marital status", "Age at enrollment", "Nationality"}, f.NumericColumns()); diff != "" {
		t.Errorf("numeric columns (-want +got):\n%s", diff)
	}
	target, err := f.Text("Target")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Dropout", "Graduate", "Enrolled"}, target); diff != "" {
		t.Errorf("target (-want +got):\n%s", diff)
	}
	if _, err := f.Float("Target"); err == nil {
		t.Error("Target must not be numeric")
	}
}

func TestReadCSVSemicolon(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("a;b\n1;x\n"), WithDelimiter(';'))
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsNumeric("a") || f.IsNumeric("b") {
		t.Errorf("unexpected column kinds: %v", f.Columns())
	}
}

func TestReadCSVDuplicateHeader(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,a\n1,2\n")); err == nil {
		t.Error("expected duplicate column error")
	}
}

func TestFrameDropFilterTake(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	dropped := f.Drop("Nationality", "Not there")
	if diff := cmp.Diff([]string{"Marital status", "Age at enrollment", "Target"}, dropped.Columns()); diff != "" {
		t.Errorf("Drop (-want +got):\n%s", diff)
	}

	kept, err := f.Filter([]bool{true, false, true})
	if err != nil {
		t.Fatal(err)
	}
	age, _ := kept.Float("Age at enrollment")
	if diff := cmp.Diff([]float64{20, 19}, age); diff != "" {
		t.Errorf("Filter (-want +got):\n%s", diff)
	}

	taken := f.Take([]int{1, 1, 0})
	target, _ := taken.Text("Target")
	if diff := cmp.Diff([]string{"Graduate", "Graduate", "Dropout"}, target); diff != "" {
		t.Errorf("Take (-want +got):\n%s", diff)
	}
}

func TestFrameMatrix(t *testing.T) {
	f, _ := ReadCSV(strings.NewReader(sampleCSV))
	m, err := f.Matrix([]string{"Age at enrollment", "Marital status"})
	if err != nil {
		t.Fatal(err)
	}
	r, c := m.Dims()
	if r != 3 || c != 2 || m.At(1, 0) != 35 || m.At(1, 1) != 2 {
		t.Errorf("unexpected matrix %v", m)
	}
	if _, err := f.Matrix([]string{"Target"}); err == nil {
		t.Error("text column must not become a matrix")
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.RequireColumns("Target", "Nationality"); err != nil {
		t.Error(err)
	}
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
