package ensemble

import (
	"bytes"
	"encoding/gob"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/sklearn/tree"
)

func init() {
	gob.Register(&RandomForestClassifier{})
}

type forestSnapshot struct {
	NEstimators         int
	Criterion           string
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MaxFeaturesKind     string // "", "sqrt", "log2", "int", "float"
	MaxFeaturesNum      float64
	MinImpurityDecrease float64
	Bootstrap           bool
	ClassWeight         string
	RandomState         int64
	NJobs               int

	State      model.ModelState
	Classes    []int
	NFeatures  int
	Estimators []*tree.DecisionTreeClassifier
}

func encodeMaxFeatures(v interface{}) (string, float64) {
	switch x := v.(type) {
	case nil:
		return "", 0
	case string:
		return x, 0
	case float64:
		return "float", x
	case float32:
		return "float", float64(x)
	default:
		n, _ := model.ParamInt("max_features", v)
		return "int", float64(n)
	}
}

func decodeMaxFeatures(kind string, num float64) interface{} {
	switch kind {
	case "":
		return nil
	case "int":
		return int(num)
	case "float":
		return num
	default:
		return kind
	}
}

// GobEncode implements gob.GobEncoder.
func (rf *RandomForestClassifier) GobEncode() ([]byte, error) {
	kind, num := encodeMaxFeatures(rf.maxFeatures)
	snap := forestSnapshot{
		NEstimators:         rf.nEstimators,
		Criterion:           rf.criterion,
		MaxDepth:            rf.maxDepth,
		MinSamplesSplit:     rf.minSamplesSplit,
		MinSamplesLeaf:      rf.minSamplesLeaf,
		MaxFeaturesKind:     kind,
		MaxFeaturesNum:      num,
		MinImpurityDecrease: rf.minImpurityDecrease,
		Bootstrap:           rf.bootstrap,
		ClassWeight:         rf.classWeight,
		RandomState:         rf.randomState,
		NJobs:               rf.nJobs,
		State:               rf.state.GetState(),
		Classes:             rf.classes_,
		NFeatures:           rf.nFeatures_,
		Estimators:          rf.estimators_,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (rf *RandomForestClassifier) GobDecode(data []byte) error {
	var snap forestSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	*rf = RandomForestClassifier{
		state:               model.NewStateManager(),
		nEstimators:         snap.NEstimators,
		criterion:           snap.Criterion,
		maxDepth:            snap.MaxDepth,
		minSamplesSplit:     snap.MinSamplesSplit,
		minSamplesLeaf:      snap.MinSamplesLeaf,
		maxFeatures:         decodeMaxFeatures(snap.MaxFeaturesKind, snap.MaxFeaturesNum),
		minImpurityDecrease: snap.MinImpurityDecrease,
		bootstrap:           snap.Bootstrap,
		classWeight:         snap.ClassWeight,
		randomState:         snap.RandomState,
		nJobs:               snap.NJobs,
		classes_:            snap.Classes,
		nFeatures_:          snap.NFeatures,
		estimators_:         snap.Estimators,
	}
	rf.state.SetState(snap.State)
	return nil
}
