package tuning

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImprovement(t *testing.T) {
	assert.InDelta(t, 13.69, Improvement(0.8752, 0.9950), 0.01)
	assert.InDelta(t, -50.0, Improvement(0.8, 0.4), 1e-12)
	assert.True(t, math.IsNaN(Improvement(0, 0.5)))
	assert.Equal(t, "+13.69%", FormatImprovement(13.6883))
	assert.Equal(t, "-0.50%", FormatImprovement(-0.5))
}

func TestResultRow(t *testing.T) {
	r := Result{
		Model:           "SVM",
		DefaultAccuracy: 0.87521,
		TunedAccuracy:   0.99498,
		Improvement:     13.685,
		BestParams:      "{'C': 100, 'kernel': 'rbf'}",
		TuningTime:      1234 * time.Millisecond,
	}
	assert.Equal(t, []string{"SVM", "0.8752", "0.9950", "+13.69%", "{'C': 100, 'kernel': 'rbf'}", "1.2s"}, r.Row())

	r.TuningTimeLabel = "N/A (multiple architectures tested)"
	assert.Equal(t, "N/A (multiple architectures tested)", r.Row()[5])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Result{
		{Model: "KNN", DefaultAccuracy: 0.8174, TunedAccuracy: 0.9121, Improvement: 11.58, BestParams: "{'n_neighbors': 3, 'weights': 'distance'}", TuningTime: 3 * time.Second},
	})
	require.NoError(t, err)

	want := "Model,Default Accuracy,Tuned Accuracy,Improvement,Best Params,Tuning Time\n" +
		"KNN,0.8174,0.9121,+11.58%,\"{'n_neighbors': 3, 'weights': 'distance'}\",3.0s\n"
	assert.Equal(t, want, buf.String())
}

func TestKeyFindings(t *testing.T) {
	results := []Result{
		{Model: "A", Improvement: 13.69},
		{Model: "B", Improvement: 1.91},
		{Model: "C", Improvement: 0.11},
		{Model: "D", Improvement: 5.004}, // prints as +5.00%
		{Model: "E", Improvement: -3},
	}
	got := KeyFindings(results)
	levels := make([]string, len(got))
	for i, f := range got {
		levels[i] = f.Level
	}
	assert.Equal(t, []string{"significant", "moderate", "minimal", "moderate", "minimal"}, levels)
	assert.Equal(t, "🎉 A: Significant improvement (+13.69%)", got[0].String())
	assert.Equal(t, "✓ B: Moderate improvement (+1.91%)", got[1].String())
	assert.Equal(t, "→ C: Minimal change (+0.11%)", got[2].String())
}

func TestWinner(t *testing.T) {
	_, ok := Winner(nil)
	assert.False(t, ok)

	best, ok := Winner([]Result{
		{Model: "RF", TunedAccuracy: 0.9816},
		{Model: "SVM", TunedAccuracy: 0.9950},
		{Model: "broken", TunedAccuracy: math.NaN()},
		{Model: "tie", TunedAccuracy: 0.9950},
	})
	require.True(t, ok)
	assert.Equal(t, "SVM", best.Model)
}

func TestRenderTableAndSummary(t *testing.T) {
	results := []Result{
		{Model: "Random Forest", DefaultAccuracy: 0.9632, TunedAccuracy: 0.9816, Improvement: 1.91, BestParams: "{}"},
		{Model: "SVM", DefaultAccuracy: 0.8752, TunedAccuracy: 0.9950, Improvement: 13.69, BestParams: "{}"},
	}
	var buf bytes.Buffer
	RenderTable(&buf, results)
	WriteSummary(&buf, results)
	out := buf.String()

	assert.NotContains(t, out, "TUNED ACCURACY")
	for _, want := range []string{"Model", "Default Accuracy", "Tuned Accuracy", "Best Params", "Random Forest", "0.9950", "+13.69%", "Key Findings", "Overall Winner: SVM"} {
		assert.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}
}
