// Package tuning compares every classifier family at its default
// configuration against the best configuration found by cross-validated
// search, persists the tuned estimators and reports the comparison.
package tuning

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/metrics"
	"github.com/YuminosukeSato/mentoraid/model_selection"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
	"github.com/YuminosukeSato/mentoraid/preprocessing"
)

// NeuralConfig controls the architecture search.
type NeuralConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Epochs          int     `yaml:"epochs"`
	Patience        int     `yaml:"patience"`
	ValidationSplit float64 `yaml:"validation_split"`
	TestSize        float64 `yaml:"test_size"`
	// Baseline is the accuracy the best architecture is compared against.
	Baseline float64 `yaml:"baseline"`
}

// Config controls a tuning run.
type Config struct {
	OutputDir   string `yaml:"output_dir"`
	Folds       int    `yaml:"folds"`
	RandomState int64  `yaml:"random_state"`
	NJobs       int    `yaml:"n_jobs"`

	// ResampleInsideFolds oversamples each training fold instead of the
	// whole data set before splitting.
	ResampleInsideFolds bool `yaml:"resample_inside_folds"`
	SaveModels          bool `yaml:"save_models"`

	Neural NeuralConfig `yaml:"neural"`
}

// DefaultConfig returns the settings of the dropout study.
func DefaultConfig() Config {
	return Config{
		OutputDir:   filepath.Join("ml-models", "trained-models"),
		Folds:       5,
		RandomState: 42,
		NJobs:       -1,
		SaveModels:  true,
		Neural: NeuralConfig{
			Enabled:         true,
			Epochs:          50,
			Patience:        10,
			ValidationSplit: 0.2,
			TestSize:        0.2,
			Baseline:        0.70,
		},
	}
}

const (
	ResultsFile      = "tuning_results.csv"
	FeatureNamesFile = "feature_names.json"
	LabelEncoderFile = "label_encoder.json"
)

// Runner executes a tuning run.
type Runner struct {
	cfg      Config
	families []Family
	logger   log.Logger
	out      io.Writer
	runID    string

	leakOnce sync.Once
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFamilies replaces the default families.
func WithFamilies(f []Family) RunnerOption {
	return func(r *Runner) { r.families = f }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithOutput sets where the results table and key findings are printed.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) { r.out = w }
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) { r.runID = id }
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.families == nil {
		r.families = DefaultFamilies(cfg.RandomState)
	}
	if r.logger == nil {
		r.logger = log.GetLogger()
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	r.logger = r.logger.With(log.ComponentKey, "tuning", log.RunIDKey, r.runID)
	return r
}

// RunID identifies the run in logs and artifacts.
func (r *Runner) RunID() string { return r.runID }

func (r *Runner) cv() model_selection.KFoldSplitter {
	return model_selection.NewStratifiedKFold(r.cfg.Folds, true, r.cfg.RandomState)
}

func (r *Runner) resampler() model_selection.FoldResampler {
	if !r.cfg.ResampleInsideFolds {
		return nil
	}
	seed := r.cfg.RandomState
	return func(X *mat.Dense, y []int) (*mat.Dense, []int, error) {
		return preprocessing.NewRandomOverSampler(seed).FitResample(X, y)
	}
}

// data returns the rows the searches see: the oversampled set, or the
// raw rows when resampling happens inside the folds.
func (r *Runner) data(p *preprocessing.Prepared) (*mat.Dense, []int) {
	if r.cfg.ResampleInsideFolds {
		return p.XRaw, p.YRaw
	}
	r.leakOnce.Do(func() {
		errors.Warn(errors.NewDataLeakageWarning("oversampling",
			"minority rows were duplicated before fold splitting; cross-validated scores are optimistic"))
	})
	return p.X, p.Y
}

// Run tunes every family on p, then the neural architectures, and writes
// the results, the artifacts and the feature and label files to
// cfg.OutputDir.
func (r *Runner) Run(ctx context.Context, p *preprocessing.Prepared) ([]Result, error) {
	if p == nil || p.X == nil {
		return nil, errors.ErrEmptyData
	}
	if r.cfg.Folds < 2 {
		return nil, errors.NewValidationError("folds", "must be at least 2", r.cfg.Folds)
	}
	X, y := r.data(p)
	nSamples, nFeatures := X.Dims()
	r.logger.Info("Starting hyperparameter tuning",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.FoldsKey, r.cfg.Folds,
		log.RandomSeedKey, r.cfg.RandomState,
	)

	var results []Result
	for _, f := range r.families {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, search, err := r.RunFamily(ctx, f, X, y)
		if err != nil {
			return results, errors.Wrapf(err, "tune %s", f.Name)
		}
		r.logTrainingReport(ctx, f, search.BestEstimator, X, y, p.Encoder)
		if r.cfg.SaveModels {
			path := filepath.Join(r.cfg.OutputDir, f.ArtifactName())
			if err := r.saveArtifact(f, search, p, path); err != nil {
				return results, err
			}
			res.ArtifactPath = path
		}
		results = append(results, res)
	}

	if nn, err := r.RunNeural(ctx, p); err != nil {
		return results, errors.Wrap(err, "neural architecture search")
	} else if nn != nil {
		results = append(results, *nn)
	}

	if err := r.writeOutputs(p, results); err != nil {
		return results, err
	}
	RenderTable(r.out, results)
	WriteSummary(r.out, results)
	return results, nil
}

// RunFamily measures the default configuration and searches f.Grid.
func (r *Runner) RunFamily(ctx context.Context, f Family, X mat.Matrix, y []int) (Result, *model_selection.SearchCV, error) {
	logger := r.logger.With(log.ModelNameKey, f.Name, log.FamilyKey, f.Key)
	res := Result{Model: f.Name}

	var cvOpts []model_selection.CVOption
	cvOpts = append(cvOpts, model_selection.WithCVJobs(r.cfg.NJobs))
	if rs := r.resampler(); rs != nil {
		cvOpts = append(cvOpts, model_selection.WithFoldResampler(rs))
	}
	start := time.Now()
	def, err := model_selection.CrossValScore(ctx, f.Default(), X, y, r.cv(), cvOpts...)
	if err != nil {
		return res, nil, errors.Wrap(err, "default configuration")
	}
	res.DefaultTime = time.Since(start)
	res.DefaultAccuracy = def.GetMeanScore()
	res.DefaultStd = def.GetStdScore()
	logger.Info("Default configuration scored",
		log.PhaseKey, log.PhaseValidation,
		log.AccuracyKey, res.DefaultAccuracy,
		log.StdKey, res.DefaultStd,
		log.DurationSecondsKey, res.DefaultTime.Seconds(),
	)

	opts := []model_selection.SearchOption{
		model_selection.WithSearchCV(r.cv()),
		model_selection.WithSearchJobs(r.cfg.NJobs),
		model_selection.WithSearchLogger(logger),
	}
	if rs := r.resampler(); rs != nil {
		opts = append(opts, model_selection.WithSearchResampler(rs))
	}
	var search *model_selection.SearchCV
	if f.NIter > 0 {
		search = model_selection.NewRandomizedSearchCV(f.Search(), f.Grid, f.NIter, r.cfg.RandomState, opts...)
	} else {
		search = model_selection.NewGridSearchCV(f.Search(), f.Grid, opts...)
	}
	start = time.Now()
	if err := search.Fit(ctx, X, y); err != nil {
		return res, nil, err
	}
	res.TuningTime = time.Since(start)
	res.TunedAccuracy = search.BestScore
	res.Improvement = Improvement(res.DefaultAccuracy, res.TunedAccuracy)
	res.BestParams = model.FormatParams(search.BestParams)
	res.NFailed = search.NFailed()

	logger.Info("Tuning completed",
		log.AccuracyKey, res.TunedAccuracy,
		log.ImprovementKey, res.Improvement,
		log.HyperParamsKey, res.BestParams,
		log.DurationSecondsKey, res.TuningTime.Seconds(),
		"failed_candidates", res.NFailed,
	)
	return res, search, nil
}

// logTrainingReport writes the classification report of the refit estimator
// on the tuning data at debug level.
func (r *Runner) logTrainingReport(ctx context.Context, f Family, est model.TunableClassifier, X mat.Matrix, y []int, enc *preprocessing.LabelEncoder) {
	if est == nil || !r.logger.Enabled(ctx, log.LevelDebug) {
		return
	}
	pred, err := est.Predict(X)
	if err != nil {
		r.logger.Debug("Training set report unavailable", err, log.ModelNameKey, f.Name)
		return
	}
	yPred := make([]int, len(y))
	for i := range yPred {
		yPred[i] = int(pred.At(i, 0))
	}
	names := make(map[int]string)
	if enc != nil {
		for code, name := range enc.Classes() {
			names[code] = name
		}
	}
	report, err := metrics.ClassificationReport(y, yPred, names)
	if err != nil {
		return
	}
	r.logger.Debug("Training set report", log.ModelNameKey, f.Name, "report", report)
}

func (r *Runner) saveArtifact(f Family, search *model_selection.SearchCV, p *preprocessing.Prepared, path string) error {
	est := search.BestEstimator
	if est == nil {
		return errors.NewModelError("saveArtifact", f.Name+" has no refit estimator", nil)
	}
	classes, err := p.Encoder.InverseTransform(est.Classes())
	if err != nil {
		return err
	}
	a := &model.Artifact{
		Name:         f.Name,
		RunID:        r.runID,
		CreatedAt:    time.Now().UTC(),
		FeatureNames: p.FeatureNames,
		Classes:      classes,
		Params:       model.StringParams(search.BestParams),
		Estimator:    est,
	}
	if err := model.SaveArtifact(a, path); err != nil {
		return errors.Wrapf(err, "save %s", f.Name)
	}
	r.logger.Info("Model saved",
		log.OperationKey, log.OperationSave,
		log.ModelNameKey, f.Name,
		log.PathKey, path,
	)
	return nil
}

func (r *Runner) writeOutputs(p *preprocessing.Prepared, results []Result) error {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", r.cfg.OutputDir)
	}
	csvPath := filepath.Join(r.cfg.OutputDir, ResultsFile)
	if err := SaveCSV(csvPath, results); err != nil {
		return err
	}
	if err := model.SaveFeatureNames(filepath.Join(r.cfg.OutputDir, FeatureNamesFile), p.FeatureNames); err != nil {
		return err
	}
	if err := p.Encoder.Save(filepath.Join(r.cfg.OutputDir, LabelEncoderFile)); err != nil {
		return err
	}
	r.logger.Info("Results saved", log.PathKey, csvPath, "rows", len(results))
	return nil
}
