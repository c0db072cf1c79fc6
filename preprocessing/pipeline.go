package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/dataset"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

// RedundantColumns are removed before training; they duplicate information
// carried by the second-semester columns or carry almost none.
var RedundantColumns = []string{
	"Curricular units 1st sem (credited)",
	"Curricular units 1st sem (enrolled)",
	"Curricular units 1st sem (evaluations)",
	"Curricular units 1st sem (approved)",
	"Curricular units 1st sem (grade)",
	"Curricular units 2nd sem (approved)",
	"Nationality",
}

// PipelineConfig parameterises Prepare.
type PipelineConfig struct {
	LabelColumn  string
	Classes      []string // label order; codes are indices
	DiscardClass string   // rows with this label are removed after encoding
	IQRFactor    float64
	DropColumns  []string
	Oversample   bool
	RandomState  int64
}

// DefaultPipelineConfig returns the dropout-study preparation.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LabelColumn:  "Target",
		Classes:      DropoutClasses,
		DiscardClass: "Enrolled",
		IQRFactor:    DefaultIQRFactor,
		DropColumns:  RedundantColumns,
		Oversample:   true,
		RandomState:  42,
	}
}

// Prepared is the output of Prepare.
type Prepared struct {
	FeatureNames []string

	// X and Y are the model inputs: balanced when oversampling is enabled.
	X *mat.Dense
	Y []int

	// XRaw and YRaw are the same rows before oversampling.
	XRaw *mat.Dense
	YRaw []int

	Encoder *LabelEncoder
	Scaler  *StandardScaler
	Filter  *IQRFilter

	RowsLoaded   int
	RowsFiltered int
}

// Prepare runs the fixed preparation on frame:
//
//  1. drop rows outside the IQR fences of any numeric column
//  2. z-score every numeric column of the kept rows
//  3. encode the label and drop rows of cfg.DiscardClass
//  4. drop cfg.DropColumns (absent names are ignored)
//  5. oversample minority classes, when enabled
func Prepare(frame *dataset.Frame, cfg PipelineConfig, logger log.Logger) (*Prepared, error) {
	if logger == nil {
		logger = log.GetLogger()
	}
	logger = logger.With(log.ComponentKey, "preprocessing", log.PhaseKey, log.PhasePreprocessing)

	if err := frame.RequireColumns(cfg.LabelColumn); err != nil {
		return nil, err
	}
	out := &Prepared{RowsLoaded: frame.NRows()}

	numeric := frame.NumericColumns()
	Xnum, err := frame.Matrix(numeric)
	if err != nil {
		return nil, errors.Wrap(err, "numeric columns")
	}
	out.Filter = NewIQRFilter(cfg.IQRFactor)
	keep, err := out.Filter.FitMask(Xnum)
	if err != nil {
		return nil, err
	}
	if frame, err = frame.Filter(keep); err != nil {
		return nil, err
	}
	out.RowsFiltered = frame.NRows()
	logger.Info("Outliers removed",
		log.SamplesKey, out.RowsFiltered,
		"rows_dropped", out.RowsLoaded-out.RowsFiltered,
	)

	Xkept, err := frame.Matrix(numeric)
	if err != nil {
		return nil, errors.Wrap(err, "no rows left after outlier removal")
	}
	out.Scaler = NewStandardScalerDefault()
	scaled, err := out.Scaler.FitTransform(Xkept)
	if err != nil {
		return nil, err
	}
	for j, name := range numeric {
		if err := frame.AddNumeric(name, mat.Col(nil, j, scaled)); err != nil {
			return nil, err
		}
	}

	labels, err := frame.Text(cfg.LabelColumn)
	if err != nil {
		return nil, err
	}
	out.Encoder = NewLabelEncoder(cfg.Classes...)
	codes, err := out.Encoder.FitTransform(labels)
	if err != nil {
		return nil, err
	}
	if cfg.DiscardClass != "" {
		discard, ok := out.Encoder.Code(cfg.DiscardClass)
		if !ok {
			return nil, errors.NewValueError("Prepare", "unknown discard class "+cfg.DiscardClass)
		}
		keepLabel := make([]bool, len(codes))
		kept := codes[:0:0]
		for i, c := range codes {
			keepLabel[i] = c != discard
			if keepLabel[i] {
				kept = append(kept, c)
			}
		}
		if frame, err = frame.Filter(keepLabel); err != nil {
			return nil, err
		}
		codes = kept
	}

	frame = frame.Drop(cfg.DropColumns...)
	for _, c := range frame.Columns() {
		if c == cfg.LabelColumn {
			continue
		}
		if !frame.IsNumeric(c) {
			return nil, errors.NewValueError("Prepare", "feature column "+c+" is not numeric")
		}
		out.FeatureNames = append(out.FeatureNames, c)
	}

	if out.XRaw, err = frame.Matrix(out.FeatureNames); err != nil {
		return nil, err
	}
	out.YRaw = codes
	if len(ClassCounts(codes)) < 2 {
		return nil, errors.ErrSingleClass
	}
	logger.Info("Features prepared",
		log.FeaturesKey, len(out.FeatureNames),
		log.SamplesKey, len(codes),
		log.ClassesKey, ClassCounts(codes),
	)

	out.X, out.Y = out.XRaw, out.YRaw
	if cfg.Oversample {
		sampler := NewRandomOverSampler(cfg.RandomState)
		if out.X, out.Y, err = sampler.FitResample(out.XRaw, out.YRaw); err != nil {
			return nil, err
		}
		logger.Info("Classes rebalanced",
			log.SamplesKey, len(out.Y),
			log.ClassesKey, ClassCounts(out.Y),
		)
	}
	return out, nil
}
