package model_selection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/metrics"
)

// thresholdClassifier predicts 1 when the first feature exceeds Threshold.
// Fail makes Fit return an error, Panic makes it panic.
type thresholdClassifier struct {
	Threshold float64
	Fail      bool
	Panic     bool
	fitted    bool
}

func (c *thresholdClassifier) Name() string { return "thresholdClassifier" }

func (c *thresholdClassifier) Fit(X, y mat.Matrix) error {
	if c.Panic {
		panic("boom")
	}
	if c.Fail {
		return fmt.Errorf("incompatible parameters")
	}
	c.fitted = true
	return nil
}

func (c *thresholdClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		if X.At(i, 0) > c.Threshold {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

func (c *thresholdClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

func (c *thresholdClassifier) Classes() []int { return []int{0, 1} }

func (c *thresholdClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{"threshold": c.Threshold, "fail": c.Fail, "panic": c.Panic}
}

func (c *thresholdClassifier) SetParams(params map[string]interface{}) error {
	for k, v := range params {
		var err error
		switch k {
		case "threshold":
			c.Threshold, err = model.ParamFloat(k, v)
		case "fail":
			c.Fail, err = model.ParamBool(k, v)
		case "panic":
			c.Panic, err = model.ParamBool(k, v)
		default:
			err = fmt.Errorf("unknown parameter %q", k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *thresholdClassifier) Clone() model.TunableClassifier {
	return &thresholdClassifier{Threshold: c.Threshold, Fail: c.Fail, Panic: c.Panic}
}

// stepData places n samples on [0, 1) with label 1 from 0.5 upwards.
func stepData(n int) (*mat.Dense, []int) {
	X := mat.NewDense(n, 1, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		v := float64(i) / float64(n)
		X.Set(i, 0, v)
		if v >= 0.5 {
			y[i] = 1
		}
	}
	return X, y
}
