// Package config loads the MentorAid settings from YAML. Every field has a
// default, so an empty or missing file reproduces the study's fixed paths.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/mentoraid/model_selection"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
	"github.com/YuminosukeSato/mentoraid/preprocessing"
	"github.com/YuminosukeSato/mentoraid/tuning"
)

// DatasetConfig locates the student records.
type DatasetConfig struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
}

// PreprocessingConfig overrides parts of preprocessing.DefaultPipelineConfig.
type PreprocessingConfig struct {
	IQRFactor   float64 `yaml:"iqr_factor"`
	Oversample  bool    `yaml:"oversample"`
	RandomState int64   `yaml:"random_state"`
}

// ReportConfig holds the documentation outputs. Empty Markdown or chart
// paths disable those outputs.
type ReportConfig struct {
	HTMLPath     string `yaml:"html_path"`
	MarkdownPath string `yaml:"markdown_path"`
	ChartPath    string `yaml:"chart_path"`
}

// AuditConfig holds the default inputs of the feature audit.
type AuditConfig struct {
	ModelPath    string `yaml:"model_path"`
	FeaturesPath string `yaml:"features_path"`
}

// Config is the root of the YAML file.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	LogConsole bool   `yaml:"log_console"`

	Dataset       DatasetConfig       `yaml:"dataset"`
	Preprocessing PreprocessingConfig `yaml:"preprocessing"`
	Tuning        tuning.Config       `yaml:"tuning"`

	// Grids replaces the search grid of a family, keyed by family key
	// ("rf", "dt", "lr", "svm", "knn"). null values mean None.
	Grids map[string]model_selection.ParamGrid `yaml:"grids"`

	Report ReportConfig `yaml:"report"`
	Audit  AuditConfig  `yaml:"audit"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	tc := tuning.DefaultConfig()
	pc := preprocessing.DefaultPipelineConfig()
	return &Config{
		LogLevel:   "info",
		LogConsole: true,
		Dataset: DatasetConfig{
			Path:      filepath.Join("ml-models", "datasets", "dataset.csv"),
			Delimiter: ",",
		},
		Preprocessing: PreprocessingConfig{
			IQRFactor:   pc.IQRFactor,
			Oversample:  pc.Oversample,
			RandomState: pc.RandomState,
		},
		Tuning: tc,
		Report: ReportConfig{
			HTMLPath:  filepath.Join("ml-models", "MentorAid_ML_Documentation.html"),
			ChartPath: filepath.Join("ml-models", "images", "tuning_accuracy.png"),
		},
		Audit: AuditConfig{
			ModelPath:    filepath.Join(tc.OutputDir, "svm_tuned_model.gob"),
			FeaturesPath: filepath.Join(tc.OutputDir, tuning.FeatureNamesFile),
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would only fail deep inside a run.
func (c *Config) Validate() error {
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log_level", "must be debug, info, warn or error", c.LogLevel)
	}
	if c.Dataset.Path == "" {
		return errors.NewValidationError("dataset.path", "must not be empty", c.Dataset.Path)
	}
	if utf8.RuneCountInString(c.Dataset.Delimiter) != 1 {
		return errors.NewValidationError("dataset.delimiter", "must be a single character", c.Dataset.Delimiter)
	}
	if c.Preprocessing.IQRFactor <= 0 {
		return errors.NewValidationError("preprocessing.iqr_factor", "must be positive", c.Preprocessing.IQRFactor)
	}
	if c.Tuning.Folds < 2 {
		return errors.NewValidationError("tuning.folds", "must be at least 2", c.Tuning.Folds)
	}
	if c.Tuning.OutputDir == "" {
		return errors.NewValidationError("tuning.output_dir", "must not be empty", c.Tuning.OutputDir)
	}
	if n := c.Tuning.Neural; n.Enabled && (n.Epochs <= 0 || n.TestSize <= 0 || n.TestSize >= 1) {
		return errors.NewValidationError("tuning.neural", "epochs must be positive and test_size in (0, 1)", n)
	}
	if c.Report.HTMLPath == "" {
		return errors.NewValidationError("report.html_path", "must not be empty", c.Report.HTMLPath)
	}

	known := make(map[string]bool)
	var keys []string
	for _, f := range tuning.DefaultFamilies(c.Tuning.RandomState) {
		known[f.Key] = true
		keys = append(keys, f.Key)
	}
	unknown := make([]string, 0)
	for k := range c.Grids {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.NewValidationError("grids",
			"unknown model families "+strings.Join(unknown, ", ")+"; expected one of "+strings.Join(keys, ", "), unknown)
	}
	return nil
}

// DelimiterRune returns the dataset field separator.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Dataset.Delimiter)
	return r
}

// PipelineConfig applies the preprocessing overrides to the study defaults.
func (c *Config) PipelineConfig() preprocessing.PipelineConfig {
	pc := preprocessing.DefaultPipelineConfig()
	pc.IQRFactor = c.Preprocessing.IQRFactor
	pc.Oversample = c.Preprocessing.Oversample
	pc.RandomState = c.Preprocessing.RandomState
	return pc
}

// Families returns the model families with the configured grid overrides.
func (c *Config) Families() []tuning.Family {
	return tuning.WithGrids(tuning.DefaultFamilies(c.Tuning.RandomState), c.Grids)
}
