package tree

import (
	"bytes"
	"encoding/gob"

	"github.com/YuminosukeSato/mentoraid/core/model"
)

func init() {
	gob.Register(&DecisionTreeClassifier{})
}

// treeSnapshot is the gob form of a DecisionTreeClassifier.
type treeSnapshot struct {
	Criterion           string
	Splitter            string
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MaxFeaturesMode     string
	MaxFeaturesValue    float64
	MinImpurityDecrease float64
	ClassWeight         string
	RandomState         int64

	State              model.ModelState
	Classes            []int
	NFeatures          int
	Nodes              []Node
	FeatureImportances []float64
}

// GobEncode implements gob.GobEncoder.
func (dt *DecisionTreeClassifier) GobEncode() ([]byte, error) {
	snap := treeSnapshot{
		Criterion:           dt.criterion,
		Splitter:            dt.splitter,
		MaxDepth:            dt.maxDepth,
		MinSamplesSplit:     dt.minSamplesSplit,
		MinSamplesLeaf:      dt.minSamplesLeaf,
		MaxFeaturesMode:     dt.maxFeaturesMode,
		MaxFeaturesValue:    dt.maxFeaturesValue,
		MinImpurityDecrease: dt.minImpurityDecrease,
		ClassWeight:         dt.classWeight,
		RandomState:         dt.randomState,
		State:               dt.state.GetState(),
		Classes:             dt.classes_,
		NFeatures:           dt.nFeatures_,
		Nodes:               dt.nodes_,
		FeatureImportances:  dt.featureImportances_,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (dt *DecisionTreeClassifier) GobDecode(data []byte) error {
	var snap treeSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	*dt = DecisionTreeClassifier{
		state:               model.NewStateManager(),
		criterion:           snap.Criterion,
		splitter:            snap.Splitter,
		maxDepth:            snap.MaxDepth,
		minSamplesSplit:     snap.MinSamplesSplit,
		minSamplesLeaf:      snap.MinSamplesLeaf,
		maxFeaturesMode:     snap.MaxFeaturesMode,
		maxFeaturesValue:    snap.MaxFeaturesValue,
		minImpurityDecrease: snap.MinImpurityDecrease,
		classWeight:         snap.ClassWeight,
		randomState:         snap.RandomState,
		classes_:            snap.Classes,
		nClasses_:           len(snap.Classes),
		nFeatures_:          snap.NFeatures,
		nodes_:              snap.Nodes,
		featureImportances_: snap.FeatureImportances,
	}
	dt.state.SetState(snap.State)
	return nil
}
