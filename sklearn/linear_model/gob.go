package linear_model

import (
	"bytes"
	"encoding/gob"

	"github.com/YuminosukeSato/mentoraid/core/model"
)

func init() {
	gob.Register(&LogisticRegression{})
}

type logisticSnapshot struct {
	Penalty      string
	C            float64
	FitIntercept bool
	ClassWeight  string
	RandomState  int64
	Solver       string
	MaxIter      int
	L1Ratio      float64
	Tol          float64

	State     model.ModelState
	Coef      [][]float64
	Intercept []float64
	Classes   []int
	NFeatures int
	NIter     []int
	OVR       bool
}

// GobEncode implements gob.GobEncoder.
func (lr *LogisticRegression) GobEncode() ([]byte, error) {
	snap := logisticSnapshot{
		Penalty:      lr.penalty,
		C:            lr.C,
		FitIntercept: lr.fitIntercept,
		ClassWeight:  lr.classWeight,
		RandomState:  lr.randomState,
		Solver:       lr.solver,
		MaxIter:      lr.maxIter,
		L1Ratio:      lr.l1Ratio,
		Tol:          lr.tol,
		State:        lr.state.GetState(),
		Coef:         lr.coef_,
		Intercept:    lr.intercept_,
		Classes:      lr.classes_,
		NFeatures:    lr.nFeatures_,
		NIter:        lr.nIter_,
		OVR:          lr.ovr_,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (lr *LogisticRegression) GobDecode(data []byte) error {
	var snap logisticSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	*lr = LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      snap.Penalty,
		C:            snap.C,
		fitIntercept: snap.FitIntercept,
		classWeight:  snap.ClassWeight,
		randomState:  snap.RandomState,
		solver:       snap.Solver,
		maxIter:      snap.MaxIter,
		l1Ratio:      snap.L1Ratio,
		tol:          snap.Tol,
		coef_:        snap.Coef,
		intercept_:   snap.Intercept,
		classes_:     snap.Classes,
		nClasses_:    len(snap.Classes),
		nFeatures_:   snap.NFeatures,
		nIter_:       snap.NIter,
		ovr_:         snap.OVR,
	}
	lr.state.SetState(snap.State)
	return nil
}
