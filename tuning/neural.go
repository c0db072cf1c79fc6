package tuning

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/model_selection"
	"github.com/YuminosukeSato/mentoraid/neural"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
	"github.com/YuminosukeSato/mentoraid/preprocessing"
)

// ArchitectureScore is the held-out accuracy of one trained architecture.
type ArchitectureScore struct {
	Name     string
	Accuracy float64
	Loss     float64
	Epochs   int
	Duration time.Duration
}

// RunNeural trains every architecture on a stratified split of the data
// and returns the best one as a Result measured against the configured
// baseline. It returns nil when the neural search is disabled.
func (r *Runner) RunNeural(ctx context.Context, p *preprocessing.Prepared) (*Result, error) {
	logger := r.logger.With(log.FamilyKey, "neural")
	if !r.cfg.Neural.Enabled {
		logger.Warn("Neural network search disabled, skipping architecture search")
		return nil, nil
	}
	scores, err := r.NeuralScores(ctx, p, neural.Architectures())
	if err != nil {
		return nil, err
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Accuracy > best.Accuracy {
			best = s
		}
	}
	base := r.cfg.Neural.Baseline
	res := &Result{
		Model:           fmt.Sprintf("Neural Network (%s)", best.Name),
		DefaultAccuracy: base,
		TunedAccuracy:   best.Accuracy,
		Improvement:     Improvement(base, best.Accuracy),
		BestParams:      fmt.Sprintf("Architecture: %s, BatchNorm, Dropout, EarlyStopping", best.Name),
		TuningTimeLabel: "N/A (multiple architectures tested)",
	}
	for _, s := range scores {
		res.TuningTime += s.Duration
	}
	logger.Info("Best neural network",
		log.ModelNameKey, best.Name,
		log.AccuracyKey, best.Accuracy,
		log.ImprovementKey, res.Improvement,
	)
	return res, nil
}

// NeuralScores trains each architecture in turn and evaluates it on the
// held-out split.
func (r *Runner) NeuralScores(ctx context.Context, p *preprocessing.Prepared, archs []neural.Architecture) ([]ArchitectureScore, error) {
	if len(archs) == 0 {
		return nil, errors.NewValueError("NeuralScores", "no architectures")
	}
	cfg := r.cfg.Neural
	X, y := r.data(p)
	if err := checkBinary(y); err != nil {
		return nil, err
	}
	XTrain, XTest, yTrain, yTest, err := model_selection.TrainTestSplit(X, y, cfg.TestSize, r.cfg.RandomState, true)
	if err != nil {
		return nil, err
	}
	if r.cfg.ResampleInsideFolds {
		if XTrain, yTrain, err = preprocessing.NewRandomOverSampler(r.cfg.RandomState).FitResample(XTrain, yTrain); err != nil {
			return nil, err
		}
	}
	_, nFeatures := XTrain.Dims()

	scores := make([]ArchitectureScore, 0, len(archs))
	for _, a := range archs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := r.trainArchitecture(ctx, a, nFeatures, XTrain, toFloat(yTrain), XTest, toFloat(yTest))
		if err != nil {
			return nil, errors.Wrapf(err, "architecture %s", a.Name)
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func (r *Runner) trainArchitecture(ctx context.Context, a neural.Architecture, nFeatures int, XTrain *mat.Dense, yTrain []float64, XTest *mat.Dense, yTest []float64) (ArchitectureScore, error) {
	logger := r.logger.With(log.ModelNameKey, a.Name, log.PhaseKey, log.PhaseTraining)
	net, err := a.New(nFeatures, neural.WithSeed(r.cfg.RandomState), neural.WithLogger(logger))
	if err != nil {
		return ArchitectureScore{}, err
	}
	start := time.Now()
	hist, err := net.Fit(ctx, XTrain, yTrain, neural.FitConfig{
		Epochs:          r.cfg.Neural.Epochs,
		BatchSize:       a.BatchSize,
		ValidationSplit: r.cfg.Neural.ValidationSplit,
		EarlyStopping: &neural.EarlyStopping{
			Patience:           r.cfg.Neural.Patience,
			RestoreBestWeights: true,
		},
	})
	if err != nil {
		return ArchitectureScore{}, err
	}
	elapsed := time.Since(start)
	loss, acc, err := net.Evaluate(XTest, yTest)
	if err != nil {
		return ArchitectureScore{}, err
	}
	logger.Info("Architecture evaluated",
		log.AccuracyKey, acc,
		log.LossKey, loss,
		log.EpochKey, len(hist.Loss),
		log.DurationSecondsKey, elapsed.Seconds(),
	)
	return ArchitectureScore{Name: a.Name, Accuracy: acc, Loss: loss, Epochs: len(hist.Loss), Duration: elapsed}, nil
}

// checkBinary rejects labels other than 0 and 1; the networks end in a
// single sigmoid unit.
func checkBinary(y []int) error {
	for _, v := range y {
		if v != 0 && v != 1 {
			return errors.NewValueError("RunNeural", fmt.Sprintf("binary labels required, got %d", v))
		}
	}
	return nil
}

func toFloat(y []int) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = float64(v)
	}
	return out
}
