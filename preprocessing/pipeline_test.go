package preprocessing

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/YuminosukeSato/mentoraid/dataset"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

// syntheticDropoutCSV builds a small table with the redundant columns,
// two informative columns and the three outcome classes.
func syntheticDropoutCSV(n int, seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	header := append([]string{"Age at enrollment", "Curricular units 2nd sem (grade)"}, RedundantColumns...)
	header = append(header, "Target")

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	labels := []string{"Dropout", "Graduate", "Graduate", "Enrolled"}
	for i := 0; i < n; i++ {
		label := labels[i%len(labels)]
		grade := 10 + rng.NormFloat64()
		if label == "Dropout" {
			grade -= 3
		}
		row := []string{
			fmt.Sprintf("%d", 18+rng.Intn(8)),
			fmt.Sprintf("%.3f", grade),
		}
		for range RedundantColumns {
			row = append(row, fmt.Sprintf("%.3f", rng.Float64()))
		}
		row = append(row, label)
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestPrepare(t *testing.T) {
	frame, err := dataset.ReadCSV(strings.NewReader(syntheticDropoutCSV(200, 7)))
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := log.NewTestLogger(log.LevelDebug)

	p, err := Prepare(frame, DefaultPipelineConfig(), logger)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Age at enrollment", "Curricular units 2nd sem (grade)"}
	if strings.Join(p.FeatureNames, "|") != strings.Join(want, "|") {
		t.Errorf("FeatureNames = %v, want %v", p.FeatureNames, want)
	}
	for _, c := range p.YRaw {
		if c == 2 {
			t.Fatal("Enrolled rows must be removed")
		}
	}
	counts := ClassCounts(p.Y)
	if len(counts) != 2 || counts[0] != counts[1] {
		t.Errorf("classes not balanced: %v", counts)
	}
	r, c := p.X.Dims()
	if r != len(p.Y) || c != 2 {
		t.Errorf("X dims = %dx%d", r, c)
	}
	if !logger.ContainsMessage("Classes rebalanced") {
		t.Error("expected rebalance log record")
	}
}

func TestPrepareWithoutOversampling(t *testing.T) {
	frame, err := dataset.ReadCSV(strings.NewReader(syntheticDropoutCSV(120, 3)))
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultPipelineConfig()
	cfg.Oversample = false
	p, err := Prepare(frame, cfg, log.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if p.X != p.XRaw || len(p.Y) != len(p.YRaw) {
		t.Error("without oversampling X must be the raw matrix")
	}
}

func TestPrepareMissingLabel(t *testing.T) {
	frame, _ := dataset.ReadCSV(strings.NewReader("a,b\n1,2\n"))
	if _, err := Prepare(frame, DefaultPipelineConfig(), log.Nop()); err == nil {
		t.Error("expected error for missing Target column")
	}
}
