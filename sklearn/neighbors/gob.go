package neighbors

import (
	"bytes"
	"encoding/gob"

	"github.com/YuminosukeSato/mentoraid/core/model"
)

func init() {
	gob.Register(&KNeighborsClassifier{})
}

// The k-d tree is rebuilt on decode; only the training rows are stored.
type knnSnapshot struct {
	NNeighbors int
	Weights    string
	Algorithm  string
	LeafSize   int
	P          float64
	Metric     string
	NJobs      int

	State   model.ModelState
	X       [][]float64
	YIdx    []int
	Classes []int
}

// GobEncode implements gob.GobEncoder.
func (k *KNeighborsClassifier) GobEncode() ([]byte, error) {
	snap := knnSnapshot{
		NNeighbors: k.nNeighbors,
		Weights:    k.weights,
		Algorithm:  k.algorithm,
		LeafSize:   k.leafSize,
		P:          k.p,
		Metric:     k.metric,
		NJobs:      k.nJobs,
		State:      k.state.GetState(),
		X:          k.X_,
		YIdx:       k.yIdx_,
		Classes:    k.classes_,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (k *KNeighborsClassifier) GobDecode(data []byte) error {
	var snap knnSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	*k = KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: snap.NNeighbors,
		weights:    snap.Weights,
		algorithm:  snap.Algorithm,
		leafSize:   snap.LeafSize,
		p:          snap.P,
		metric:     snap.Metric,
		nJobs:      snap.NJobs,
		X_:         snap.X,
		yIdx_:      snap.YIdx,
		classes_:   snap.Classes,
	}
	k.state.SetState(snap.State)
	if len(k.X_) > 0 {
		k.build()
	}
	return nil
}
