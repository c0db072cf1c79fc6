package model_selection

import (
	"context"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/core/parallel"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

// CandidateResult is the cross-validated outcome of one parameter setting.
// A failed candidate has NaN scores, Rank 0 and a non-nil Err.
type CandidateResult struct {
	Params        map[string]interface{}
	Scores        []float64
	MeanTestScore float64
	StdTestScore  float64
	FitTime       time.Duration
	Rank          int
	Err           error
}

// SearchCV evaluates a list of parameter settings by cross-validation and
// keeps the best one. Use NewGridSearchCV or NewRandomizedSearchCV.
type SearchCV struct {
	Estimator model.TunableClassifier
	Grid      ParamGrid
	CV        KFoldSplitter
	NJobs     int
	Refit     bool

	// randomized search only
	NIter       int
	RandomState int64
	randomized  bool

	logger    log.Logger
	resampler FoldResampler

	CVResults     []CandidateResult
	BestIndex     int
	BestParams    map[string]interface{}
	BestScore     float64
	BestEstimator model.TunableClassifier
	RefitTime     time.Duration
}

// SearchOption configures a SearchCV.
type SearchOption func(*SearchCV)

// WithSearchCV sets the splitter. The default is 5-fold stratified,
// shuffled with seed 42.
func WithSearchCV(cv KFoldSplitter) SearchOption {
	return func(s *SearchCV) { s.CV = cv }
}

// WithSearchJobs bounds the number of candidates evaluated concurrently
// (n <= 0: all CPUs).
func WithSearchJobs(n int) SearchOption {
	return func(s *SearchCV) { s.NJobs = n }
}

// WithSearchLogger sets the logger.
func WithSearchLogger(l log.Logger) SearchOption {
	return func(s *SearchCV) { s.logger = l }
}

// WithSearchResampler rebalances every training fold before fitting.
func WithSearchResampler(r FoldResampler) SearchOption {
	return func(s *SearchCV) { s.resampler = r }
}

// WithRefit controls whether the best setting is refit on all data.
func WithRefit(refit bool) SearchOption {
	return func(s *SearchCV) { s.Refit = refit }
}

func newSearch(est model.TunableClassifier, grid ParamGrid, opts []SearchOption) *SearchCV {
	s := &SearchCV{
		Estimator: est,
		Grid:      grid,
		CV:        NewStratifiedKFold(5, true, 42),
		NJobs:     -1,
		Refit:     true,
		BestIndex: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	return s
}

// NewGridSearchCV searches every point of grid.
func NewGridSearchCV(est model.TunableClassifier, grid ParamGrid, opts ...SearchOption) *SearchCV {
	return newSearch(est, grid, opts)
}

// NewRandomizedSearchCV searches nIter distinct points of grid drawn
// without replacement with randomState.
func NewRandomizedSearchCV(est model.TunableClassifier, grid ParamGrid, nIter int, randomState int64, opts ...SearchOption) *SearchCV {
	s := newSearch(est, grid, opts)
	s.NIter = nIter
	s.RandomState = randomState
	s.randomized = true
	return s
}

// Candidates returns the parameter settings the search will evaluate.
func (s *SearchCV) Candidates() []map[string]interface{} {
	if s.randomized {
		return ParameterSampler{Grid: s.Grid, NIter: s.NIter, RandomState: s.RandomState}.Sample()
	}
	return s.Grid.All()
}

// Fit runs the search. A grid naming unknown parameters is rejected before
// any fitting. Candidates that fail to fit score NaN and raise a
// FitFailedWarning; if all of them fail Fit returns ErrAllCandidatesFailed.
func (s *SearchCV) Fit(ctx context.Context, X mat.Matrix, y []int) error {
	if err := s.Grid.Validate(s.Estimator); err != nil {
		return errors.Wrap(err, "malformed parameter grid")
	}
	if s.randomized && s.NIter <= 0 {
		return errors.NewValidationError("n_iter", "must be positive", s.NIter)
	}

	name := estimatorName(s.Estimator)
	logger := s.logger.With(log.ModelNameKey, name, log.OperationKey, log.OperationSearch)

	candidates := s.Candidates()
	logger.Info("Fitting candidates",
		log.FoldsKey, s.CV.GetNSplits(),
		log.CandidatesKey, len(candidates),
		"fits", s.CV.GetNSplits()*len(candidates),
	)

	s.CVResults = make([]CandidateResult, len(candidates))
	err := parallel.ForEach(ctx, len(candidates), s.NJobs, func(ctx context.Context, i int) error {
		s.CVResults[i] = s.evaluate(ctx, candidates[i], X, y)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.CVResults[i].Err != nil {
			errors.Warn(errors.NewFitFailedWarning(name, model.FormatParams(candidates[i]), s.CVResults[i].Err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.rank()
	if s.BestIndex < 0 {
		return errors.Wrapf(errors.ErrAllCandidatesFailed, "%s: %d candidates", name, len(candidates))
	}
	best := s.CVResults[s.BestIndex]
	s.BestParams = best.Params
	s.BestScore = best.MeanTestScore
	logger.Info("Search finished",
		log.AccuracyKey, s.BestScore,
		log.StdKey, best.StdTestScore,
		log.HyperParamsKey, model.FormatParams(s.BestParams),
	)

	if !s.Refit {
		return nil
	}
	est := s.Estimator.Clone()
	if err := est.SetParams(s.BestParams); err != nil {
		return err
	}
	// リサンプラー指定時は全データにも同じ処理を適用してから再学習
	Xfit, yfit := X, y
	if s.resampler != nil {
		Xr, yr, err := s.resampler(mat.DenseCopyOf(X), y)
		if err != nil {
			return errors.Wrap(err, "resample before refit")
		}
		Xfit, yfit = Xr, yr
	}
	start := time.Now()
	if err := errors.SafeExecute(name+".Fit", func() error {
		return est.Fit(Xfit, LabelMatrix(yfit))
	}); err != nil {
		return errors.Wrap(err, "refit best estimator")
	}
	s.RefitTime = time.Since(start)
	s.BestEstimator = est
	return nil
}

func (s *SearchCV) evaluate(ctx context.Context, params map[string]interface{}, X mat.Matrix, y []int) CandidateResult {
	res := CandidateResult{Params: params, MeanTestScore: math.NaN(), StdTestScore: math.NaN()}
	res.Err = errors.SafeExecute("SearchCV.evaluate", func() error {
		est := s.Estimator.Clone()
		if err := est.SetParams(params); err != nil {
			return err
		}
		var opts []CVOption
		if s.resampler != nil {
			opts = append(opts, WithFoldResampler(s.resampler))
		}
		cv, err := CrossValScore(ctx, est, X, y, s.CV, opts...)
		if err != nil {
			return err
		}
		res.Scores = cv.TestScores
		res.MeanTestScore = cv.GetMeanScore()
		res.StdTestScore = cv.GetStdScore()
		for _, d := range cv.FitTimes {
			res.FitTime += d
		}
		return nil
	})
	return res
}

// rank assigns ranks by descending mean score, ties sharing the lowest
// rank, and picks the first best candidate in evaluation order.
func (s *SearchCV) rank() {
	order := make([]int, 0, len(s.CVResults))
	for i, r := range s.CVResults {
		if r.Err == nil && !math.IsNaN(r.MeanTestScore) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.CVResults[order[a]].MeanTestScore > s.CVResults[order[b]].MeanTestScore
	})
	s.BestIndex = -1
	for pos, i := range order {
		rank := pos + 1
		if pos > 0 && s.CVResults[order[pos-1]].MeanTestScore == s.CVResults[i].MeanTestScore {
			rank = s.CVResults[order[pos-1]].Rank
		}
		s.CVResults[i].Rank = rank
	}
	if len(order) > 0 {
		s.BestIndex = order[0]
	}
}

// NFailed returns the number of candidates that could not be evaluated.
func (s *SearchCV) NFailed() int {
	n := 0
	for _, r := range s.CVResults {
		if r.Err != nil {
			n++
		}
	}
	return n
}

type named interface {
	Name() string
}

func estimatorName(est interface{}) string {
	if n, ok := est.(named); ok {
		return n.Name()
	}
	return "estimator"
}
