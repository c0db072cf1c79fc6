package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

var studyDate = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

func TestMentorAidStudySections(t *testing.T) {
	doc := MentorAidStudy(studyDate)
	require.NoError(t, doc.Validate())

	want := append([]string{"Table of Contents"}, TableOfContents...)
	want = append(want, "Appendix A: Complete Feature List", "Appendix B: Technical Stack")
	if diff := cmp.Diff(want, doc.Headings(1)); diff != "" {
		t.Errorf("top-level headings mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, ModelFeatures, 27)
}

func TestMentorAidStudyDeterministic(t *testing.T) {
	render := func(now time.Time) string {
		var buf bytes.Buffer
		require.NoError(t, RenderMarkdown(&buf, MentorAidStudy(now)))
		return buf.String()
	}
	first := render(studyDate)
	assert.Equal(t, first, render(studyDate))
	assert.Contains(t, first, "Generated: November 03, 2025")

	other := render(studyDate.AddDate(0, 1, 0))
	a, b := strings.Split(first, "\n"), strings.Split(other, "\n")
	require.Equal(t, len(a), len(b))
	var changed []string
	for i := range a {
		if a[i] != b[i] {
			changed = append(changed, b[i])
		}
	}
	assert.Equal(t, []string{"Generated: December 03, 2025"}, changed)
}

func TestMentorAidStudyContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, MentorAidStudy(studyDate, WithChart("charts/accuracy.png"))))
	md := buf.String()

	assert.Contains(t, md, "| Best Model (After Tuning) | SVM with RBF Kernel |")
	assert.Contains(t, md, "| 1 🥇 | SVM (RBF Kernel) | 87.52% | 99.50% | +13.69% |")
	assert.Contains(t, md, "| 8 | RELU NN (Default) | 70% | - | Not tuned |")
	assert.Contains(t, md, "![Default vs tuned accuracy](charts/accuracy.png)")
	assert.Contains(t, md, "1. Executive Summary\n2. Dataset Overview\n")
	for _, b := range MentorAidStudy(studyDate).Blocks {
		assert.NotEqual(t, KindImage, b.Kind, "image without WithChart")
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	logger, out := log.NewTestLogger(log.LevelInfo)
	opts := Options{
		HTMLPath:     filepath.Join(dir, "docs", "MentorAid_ML_Documentation.html"),
		MarkdownPath: filepath.Join(dir, "docs", "MentorAid_ML_Documentation.md"),
		ChartPath:    filepath.Join(dir, "docs", "img", "accuracy.png"),
		Logger:       logger,
	}
	require.NoError(t, Generate(opts, studyDate))

	html, err := os.ReadFile(opts.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>MentorAid ML Documentation</title>")
	assert.Contains(t, string(html), `<img src="img/accuracy.png"`)

	md, err := os.ReadFile(opts.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# MentorAid")

	info, err := os.Stat(opts.ChartPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.True(t, logger.ContainsMessage("Documentation saved"), out.String())
}

func TestGenerateWithoutOptionalOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := Options{HTMLPath: filepath.Join(dir, "doc.html"), Logger: log.Nop()}
	require.NoError(t, Generate(opts, studyDate))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.html", entries[0].Name())
}

func TestGenerateRequiresHTMLPath(t *testing.T) {
	assert.Error(t, Generate(Options{}, studyDate))
}

func TestAccuracyChartEmpty(t *testing.T) {
	assert.Error(t, AccuracyChart(filepath.Join(t.TempDir(), "x.png"), nil))
}
