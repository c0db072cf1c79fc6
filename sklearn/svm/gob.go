package svm

import (
	"bytes"
	"encoding/gob"

	"github.com/YuminosukeSato/mentoraid/core/model"
)

func init() {
	gob.Register(&SVC{})
}

type svcSnapshot struct {
	C           float64
	Kernel      string
	Degree      int
	GammaMode   string
	GammaValue  float64
	Coef0       float64
	Shrinking   bool
	Tol         float64
	CacheSize   float64
	ClassWeight string
	MaxIter     int
	RandomState int64

	State     model.ModelState
	Classes   []int
	NFeatures int
	Gamma     float64
	Models    []binaryModel
	NSupport  []int
	NIter     []int
}

// GobEncode implements gob.GobEncoder.
func (s *SVC) GobEncode() ([]byte, error) {
	snap := svcSnapshot{
		C:           s.C,
		Kernel:      s.kernel,
		Degree:      s.degree,
		GammaMode:   s.gammaMode,
		GammaValue:  s.gammaValue,
		Coef0:       s.coef0,
		Shrinking:   s.shrinking,
		Tol:         s.tol,
		CacheSize:   s.cacheSize,
		ClassWeight: s.classWeight,
		MaxIter:     s.maxIter,
		RandomState: s.randomState,
		State:       s.state.GetState(),
		Classes:     s.classes_,
		NFeatures:   s.nFeatures_,
		Gamma:       s.gamma_,
		Models:      s.models_,
		NSupport:    s.nSupport_,
		NIter:       s.nIter_,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (s *SVC) GobDecode(data []byte) error {
	var snap svcSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	*s = SVC{
		state:       model.NewStateManager(),
		C:           snap.C,
		kernel:      snap.Kernel,
		degree:      snap.Degree,
		gammaMode:   snap.GammaMode,
		gammaValue:  snap.GammaValue,
		coef0:       snap.Coef0,
		shrinking:   snap.Shrinking,
		tol:         snap.Tol,
		cacheSize:   snap.CacheSize,
		classWeight: snap.ClassWeight,
		maxIter:     snap.MaxIter,
		randomState: snap.RandomState,
		classes_:    snap.Classes,
		nFeatures_:  snap.NFeatures,
		gamma_:      snap.Gamma,
		models_:     snap.Models,
		nSupport_:   snap.NSupport,
		nIter_:      snap.NIter,
	}
	s.state.SetState(snap.State)
	return nil
}
