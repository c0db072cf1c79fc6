package tuning

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// CSVHeader is the column order of tuning_results.csv.
var CSVHeader = []string{"Model", "Default Accuracy", "Tuned Accuracy", "Improvement", "Best Params", "Tuning Time"}

// Result is the default-vs-tuned comparison for one family.
type Result struct {
	Model string

	DefaultAccuracy float64
	DefaultStd      float64
	TunedAccuracy   float64
	Improvement     float64 // percent

	BestParams string

	DefaultTime time.Duration
	TuningTime  time.Duration
	// TuningTimeLabel overrides the formatted tuning time when set.
	TuningTimeLabel string

	NFailed      int
	ArtifactPath string
}

// Improvement returns (tuned - def) / def * 100.
func Improvement(def, tuned float64) float64 {
	if def == 0 {
		return math.NaN()
	}
	return (tuned - def) / def * 100
}

// FormatImprovement renders a percentage with an explicit sign, e.g. "+13.69%".
func FormatImprovement(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}

// Row returns r in CSVHeader order.
func (r Result) Row() []string {
	tuningTime := r.TuningTimeLabel
	if tuningTime == "" {
		tuningTime = fmt.Sprintf("%.1fs", r.TuningTime.Seconds())
	}
	return []string{
		r.Model,
		fmt.Sprintf("%.4f", r.DefaultAccuracy),
		fmt.Sprintf("%.4f", r.TunedAccuracy),
		FormatImprovement(r.Improvement),
		r.BestParams,
		tuningTime,
	}
}

// WriteCSV writes the header and one row per result.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, r := range results {
		if err := cw.Write(r.Row()); err != nil {
			return errors.Wrapf(err, "write csv row %s", r.Model)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// SaveCSV writes results to path, creating the parent directory.
func SaveCSV(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create results file")
	}
	defer f.Close()
	return WriteCSV(f, results)
}

// RenderTable writes the results as a console table.
func RenderTable(w io.Writer, results []Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("FINAL RESULTS - DEFAULT vs TUNED COMPARISON")
	header := make(table.Row, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, r := range results {
		cells := r.Row()
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 60},
	})
	t.SetStyle(table.StyleLight)
	// 見出しは CSV と同じ表記のまま出す
	t.Style().Format.Header = text.FormatDefault
	t.Render()
}

// Finding classifies the improvement of one result.
type Finding struct {
	Model       string
	Improvement string
	Level       string // "significant", "moderate" or "minimal"
}

func (f Finding) String() string {
	switch f.Level {
	case "significant":
		return fmt.Sprintf("🎉 %s: Significant improvement (%s)", f.Model, f.Improvement)
	case "moderate":
		return fmt.Sprintf("✓ %s: Moderate improvement (%s)", f.Model, f.Improvement)
	default:
		return fmt.Sprintf("→ %s: Minimal change (%s)", f.Model, f.Improvement)
	}
}

// KeyFindings grades every result by its printed (rounded) improvement:
// above 5% is significant, above 1% moderate.
func KeyFindings(results []Result) []Finding {
	out := make([]Finding, 0, len(results))
	for _, r := range results {
		label := FormatImprovement(r.Improvement)
		p, err := strconv.ParseFloat(strings.TrimSuffix(label, "%"), 64)
		if err != nil {
			p = math.NaN()
		}
		f := Finding{Model: r.Model, Improvement: label, Level: "minimal"}
		switch {
		case p > 5:
			f.Level = "significant"
		case p > 1:
			f.Level = "moderate"
		}
		out = append(out, f)
	}
	return out
}

// Winner returns the result with the highest tuned accuracy; the first
// one wins ties. ok is false for an empty slice.
func Winner(results []Result) (best Result, ok bool) {
	for i, r := range results {
		if math.IsNaN(r.TunedAccuracy) {
			continue
		}
		if !ok || r.TunedAccuracy > best.TunedAccuracy {
			best, ok = results[i], true
		}
	}
	return best, ok
}

// WriteSummary prints the key findings and the overall winner.
func WriteSummary(w io.Writer, results []Result) {
	fmt.Fprintln(w, "\n📊 Key Findings:")
	for _, f := range KeyFindings(results) {
		fmt.Fprintf(w, "   %s\n", f)
	}
	if best, ok := Winner(results); ok {
		fmt.Fprintf(w, "\n🏆 Overall Winner: %s (%.4f tuned accuracy)\n", best.Model, best.TunedAccuracy)
	}
}
