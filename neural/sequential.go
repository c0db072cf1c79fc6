package neural

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

// Sequential is a stack of layers ending in a single sigmoid unit.
type Sequential struct {
	layers    []Layer
	optimizer Optimizer
	rng       *rand.Rand
	inputDim  int
	built     bool
	logger    log.Logger
}

// SequentialOption configures a Sequential model.
type SequentialOption func(*Sequential)

// WithSeed seeds weight initialization, dropout masks and shuffling.
func WithSeed(seed int64) SequentialOption {
	return func(s *Sequential) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger sets the per-epoch logger.
func WithLogger(l log.Logger) SequentialOption {
	return func(s *Sequential) { s.logger = l }
}

// NewSequential stacks layers; weights are allocated by Build.
func NewSequential(layers []Layer, opts ...SequentialOption) *Sequential {
	s := &Sequential{
		layers: layers,
		rng:    rand.New(rand.NewSource(42)),
		logger: log.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build allocates weights for inputDim features.
func (s *Sequential) Build(inputDim int) error {
	if len(s.layers) == 0 {
		return errors.NewValueError("Sequential.Build", "model has no layers")
	}
	last, ok := s.layers[len(s.layers)-1].(*dense)
	if !ok || last.units != 1 {
		return errors.NewValueError("Sequential.Build", "the last layer must be Dense with one unit")
	}
	dim := inputDim
	for _, l := range s.layers {
		dim = l.build(dim, s.rng)
	}
	last.fromLogits = last.activation == Sigmoid
	s.inputDim = inputDim
	s.built = true
	return nil
}

// Compile sets the optimizer.
func (s *Sequential) Compile(opt Optimizer) {
	s.optimizer = opt
}

func (s *Sequential) allParams() []*Param {
	var ps []*Param
	for _, l := range s.layers {
		ps = append(ps, l.params()...)
	}
	return ps
}

// GetWeights returns a deep copy of every param, trainable or not.
func (s *Sequential) GetWeights() []*mat.Dense {
	ps := s.allParams()
	out := make([]*mat.Dense, len(ps))
	for i, p := range ps {
		out[i] = mat.DenseCopyOf(p.Value)
	}
	return out
}

// SetWeights restores weights captured by GetWeights.
func (s *Sequential) SetWeights(w []*mat.Dense) {
	for i, p := range s.allParams() {
		p.Value.Copy(w[i])
	}
}

func (s *Sequential) forward(X *mat.Dense, training bool) *mat.Dense {
	out := X
	for _, l := range s.layers {
		out = l.forward(out, training)
	}
	return out
}

func (s *Sequential) backward(grad *mat.Dense) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].backward(grad)
	}
}

func (s *Sequential) lastFromLogits() bool {
	return s.layers[len(s.layers)-1].(*dense).fromLogits
}

// EarlyStopping stops training when val_loss has not improved for
// Patience epochs and optionally restores the best weights.
type EarlyStopping struct {
	Patience           int
	RestoreBestWeights bool
}

// FitConfig controls Fit.
type FitConfig struct {
	Epochs          int
	BatchSize       int
	ValidationSplit float64 // last fraction of rows, taken before shuffling
	EarlyStopping   *EarlyStopping
}

// History records per-epoch metrics.
type History struct {
	Loss        []float64
	Accuracy    []float64
	ValLoss     []float64
	ValAccuracy []float64
	// StoppedEpoch is the 0-based epoch early stopping fired at, or -1.
	StoppedEpoch int
	BestEpoch    int
}

func rowsOf(X *mat.Dense, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}

func pick(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}

// Fit trains on X (n×features) and 0/1 targets y.
func (s *Sequential) Fit(ctx context.Context, X *mat.Dense, y []float64, cfg FitConfig) (*History, error) {
	n, c := X.Dims()
	if n == 0 {
		return nil, errors.ErrEmptyData
	}
	if len(y) != n {
		return nil, errors.NewDimensionError("Sequential.Fit", n, len(y), 0)
	}
	if cfg.Epochs < 1 || cfg.BatchSize < 1 {
		return nil, errors.NewValidationError("epochs/batch_size", "must be positive", fmt.Sprintf("%d/%d", cfg.Epochs, cfg.BatchSize))
	}
	if cfg.ValidationSplit < 0 || cfg.ValidationSplit >= 1 {
		return nil, errors.NewValidationError("validation_split", "must be in [0, 1)", cfg.ValidationSplit)
	}
	if !s.built {
		if err := s.Build(c); err != nil {
			return nil, err
		}
	} else if c != s.inputDim {
		return nil, errors.NewDimensionError("Sequential.Fit", s.inputDim, c, 1)
	}
	if s.optimizer == nil {
		s.optimizer = Adam(0.001)
	}

	splitAt := int(math.Ceil(float64(n) * (1 - cfg.ValidationSplit)))
	train := make([]int, splitAt)
	for i := range train {
		train[i] = i
	}
	var Xval *mat.Dense
	var yVal []float64
	if splitAt < n {
		val := make([]int, 0, n-splitAt)
		for i := splitAt; i < n; i++ {
			val = append(val, i)
		}
		Xval, yVal = rowsOf(X, val), pick(y, val)
	}

	h := &History{StoppedEpoch: -1}
	best := math.Inf(1)
	var bestWeights []*mat.Dense
	wait := 0
	params := s.allParams()
	fromLogits := s.lastFromLogits()

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return h, err
		}
		s.rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })

		lossSum, hit := 0.0, 0.0
		for start := 0; start < len(train); start += cfg.BatchSize {
			end := min(start+cfg.BatchSize, len(train))
			bx := rowsOf(X, train[start:end])
			by := pick(y, train[start:end])

			p := s.forward(bx, true)
			s.backward(bceGrad(p, by, fromLogits))
			s.optimizer.Step(params)

			m := float64(end - start)
			lossSum += BinaryCrossEntropy(p, by) * m
			hit += binaryAccuracy(p, by) * m
		}
		h.Loss = append(h.Loss, lossSum/float64(len(train)))
		h.Accuracy = append(h.Accuracy, hit/float64(len(train)))

		monitor := h.Loss[epoch]
		if Xval != nil {
			vl, va := s.evaluate(Xval, yVal)
			h.ValLoss = append(h.ValLoss, vl)
			h.ValAccuracy = append(h.ValAccuracy, va)
			monitor = vl
		}
		s.logger.Debug("Epoch finished",
			log.EpochKey, epoch+1,
			log.LossKey, h.Loss[epoch],
			log.AccuracyKey, h.Accuracy[epoch],
		)

		es := cfg.EarlyStopping
		if es == nil {
			continue
		}
		wait++
		if monitor < best {
			best = monitor
			h.BestEpoch = epoch
			wait = 0
			if es.RestoreBestWeights {
				bestWeights = s.GetWeights()
			}
			continue
		}
		if wait >= es.Patience && epoch > 0 {
			h.StoppedEpoch = epoch
			if bestWeights != nil {
				s.SetWeights(bestWeights)
			}
			break
		}
	}
	return h, nil
}

func (s *Sequential) evaluate(X *mat.Dense, y []float64) (loss, acc float64) {
	p := s.forward(X, false)
	return BinaryCrossEntropy(p, y), binaryAccuracy(p, y)
}

// Evaluate returns the loss and accuracy on held-out data.
func (s *Sequential) Evaluate(X *mat.Dense, y []float64) (loss, acc float64, err error) {
	if err := s.checkInput(X, "Evaluate"); err != nil {
		return 0, 0, err
	}
	r, _ := X.Dims()
	if len(y) != r {
		return 0, 0, errors.NewDimensionError("Sequential.Evaluate", r, len(y), 0)
	}
	loss, acc = s.evaluate(X, y)
	return loss, acc, nil
}

// Predict returns the n×1 positive-class probabilities.
func (s *Sequential) Predict(X *mat.Dense) (*mat.Dense, error) {
	if err := s.checkInput(X, "Predict"); err != nil {
		return nil, err
	}
	return s.forward(X, false), nil
}

func (s *Sequential) checkInput(X *mat.Dense, op string) error {
	if !s.built {
		return errors.NewNotFittedError("Sequential", op)
	}
	r, c := X.Dims()
	if r == 0 {
		return errors.ErrEmptyData
	}
	if c != s.inputDim {
		return errors.NewDimensionError("Sequential."+op, s.inputDim, c, 1)
	}
	return nil
}

// CountParams returns the number of trainable and non-trainable weights.
func (s *Sequential) CountParams() (trainable, nonTrainable int) {
	for _, p := range s.allParams() {
		r, c := p.Value.Dims()
		if p.Trainable {
			trainable += r * c
		} else {
			nonTrainable += r * c
		}
	}
	return trainable, nonTrainable
}

// Summary writes a layer table with output widths and parameter counts.
func (s *Sequential) Summary(w io.Writer) error {
	if !s.built {
		return errors.NewNotFittedError("Sequential", "Summary")
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Layer", "Output Shape", "Param #"})
	dim := s.inputDim
	for _, l := range s.layers {
		n := 0
		for _, p := range l.params() {
			r, c := p.Value.Dims()
			n += r * c
		}
		if d, ok := l.(*dense); ok {
			dim = d.units
		}
		t.AppendRow(table.Row{l.kind(), fmt.Sprintf("(None, %d)", dim), n})
	}
	trainable, nonTrainable := s.CountParams()
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("trainable %d", trainable), trainable + nonTrainable})
	t.Render()
	return nil
}
