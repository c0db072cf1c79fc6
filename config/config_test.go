package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mentoraid/model_selection"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join("ml-models", "datasets", "dataset.csv"), cfg.Dataset.Path)
	assert.Equal(t, filepath.Join("ml-models", "MentorAid_ML_Documentation.html"), cfg.Report.HTMLPath)
	assert.Equal(t, filepath.Join("ml-models", "trained-models", "svm_tuned_model.gob"), cfg.Audit.ModelPath)
	assert.Equal(t, filepath.Join("ml-models", "trained-models", "feature_names.json"), cfg.Audit.FeaturesPath)
	assert.Equal(t, 5, cfg.Tuning.Folds)
	assert.Equal(t, int64(42), cfg.Tuning.RandomState)
	assert.Equal(t, 1.5, cfg.Preprocessing.IQRFactor)
	assert.Equal(t, ',', cfg.DelimiterRune())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Parse(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentoraid.yaml")
	doc := `
log_level: debug
dataset:
  path: data/students.csv
  delimiter: ";"
tuning:
  folds: 3
  resample_inside_folds: true
  neural:
    enabled: false
grids:
  dt:
    max_depth: [3, null]
    criterion: [gini]
report:
  markdown_path: out/doc.md
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "data/students.csv", cfg.Dataset.Path)
	assert.Equal(t, ';', cfg.DelimiterRune())
	assert.Equal(t, 3, cfg.Tuning.Folds)
	assert.True(t, cfg.Tuning.ResampleInsideFolds)
	assert.False(t, cfg.Tuning.Neural.Enabled)
	// untouched fields keep their defaults
	assert.Equal(t, int64(42), cfg.Tuning.RandomState)
	assert.True(t, cfg.Tuning.SaveModels)
	assert.Equal(t, Default().Report.HTMLPath, cfg.Report.HTMLPath)
	assert.Equal(t, "out/doc.md", cfg.Report.MarkdownPath)

	want := model_selection.ParamGrid{
		"max_depth": {3, nil},
		"criterion": {"gini"},
	}
	if diff := cmp.Diff(want, cfg.Grids["dt"]); diff != "" {
		t.Errorf("dt grid mismatch (-want +got):\n%s", diff)
	}

	for _, f := range cfg.Families() {
		if f.Key == "dt" {
			assert.Equal(t, 2, f.Grid.Size())
		} else {
			assert.Greater(t, f.Grid.Size(), 2, f.Key)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		param string
	}{
		{"bad log level", "log_level: loud", "log_level"},
		{"empty dataset path", "dataset: {path: \"\"}", "dataset.path"},
		{"long delimiter", "dataset: {delimiter: \";;\"}", "dataset.delimiter"},
		{"zero iqr factor", "preprocessing: {iqr_factor: 0}", "preprocessing.iqr_factor"},
		{"one fold", "tuning: {folds: 1}", "tuning.folds"},
		{"neural test size", "tuning: {neural: {test_size: 1.5}}", "tuning.neural"},
		{"unknown family", "grids: {xgb: {max_depth: [1]}}", "grids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("tunning:\n  folds: 3\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPipelineConfig(t *testing.T) {
	cfg := Default()
	cfg.Preprocessing.IQRFactor = 3
	cfg.Preprocessing.Oversample = false

	pc := cfg.PipelineConfig()
	assert.Equal(t, 3.0, pc.IQRFactor)
	assert.False(t, pc.Oversample)
	assert.Equal(t, "Target", pc.LabelColumn)
}
