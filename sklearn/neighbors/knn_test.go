package neighbors

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

func randomData(n, p int, seed int64) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < p; j++ {
			v := r.NormFloat64()
			X.Set(i, j, v)
			s += v
		}
		if s > 0 {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func TestKNN_SimpleVote(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0, 1, 2, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	knn := NewKNeighborsClassifier(WithNNeighbors(3))
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(2, 1, []float64{1.5, 10.5}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))

	proba, err := knn.PredictProba(mat.NewDense(1, 1, []float64{6.4}))
	require.NoError(t, err)
	// 近傍は 10, 11, 2 → 1クラスが 2/3
	assert.InDelta(t, 1.0/3, proba.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0/3, proba.At(0, 1), 1e-12)
}

func TestKNN_DistanceWeights(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 3, 4})
	y := mat.NewDense(3, 1, []float64{0, 1, 1})

	uniform := NewKNeighborsClassifier(WithNNeighbors(3))
	require.NoError(t, uniform.Fit(X, y))
	distance := NewKNeighborsClassifier(WithNNeighbors(3), WithWeights("distance"))
	require.NoError(t, distance.Fit(X, y))

	q := mat.NewDense(1, 1, []float64{0.5})
	pu, err := uniform.Predict(q)
	require.NoError(t, err)
	pd, err := distance.Predict(q)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pu.At(0, 0))
	assert.Equal(t, 0.0, pd.At(0, 0))

	// 訓練点と一致するクエリはその点だけで決まる
	proba, err := distance.PredictProba(mat.NewDense(1, 1, []float64{3}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, proba.At(0, 1))
}

func TestKNN_Metrics(t *testing.T) {
	a := []float64{0, 0}
	b := []float64{3, 4}
	tests := []struct {
		metric string
		p      float64
		want   float64
	}{
		{"euclidean", 2, 5},
		{"manhattan", 2, 7},
		{"chebyshev", 2, 4},
		{"minkowski", 1, 7},
		{"minkowski", 2, 5},
		{"minkowski", 3, 4.497941445275415},
		{"hamming", 2, 1},
	}
	for _, tt := range tests {
		got := resolveMetric(tt.metric, tt.p)(a, b)
		assert.InDelta(t, tt.want, got, 1e-9, "%s p=%g", tt.metric, tt.p)
	}
}

func TestKNN_TreeMatchesBrute(t *testing.T) {
	X, y := randomData(300, 3, 1)
	Q, _ := randomData(50, 3, 2)

	for _, metric := range []string{"euclidean", "manhattan", "chebyshev", "minkowski"} {
		brute := NewKNeighborsClassifier(WithNNeighbors(7), WithMetric(metric), WithP(3), WithAlgorithm("brute"))
		require.NoError(t, brute.Fit(X, y))
		tree := NewKNeighborsClassifier(WithNNeighbors(7), WithMetric(metric), WithP(3), WithAlgorithm("kd_tree"), WithLeafSize(10))
		require.NoError(t, tree.Fit(X, y))
		require.NotNil(t, tree.tree_)

		wantIdx, wantDist, err := brute.KNeighbors(Q)
		require.NoError(t, err)
		gotIdx, gotDist, err := tree.KNeighbors(Q)
		require.NoError(t, err)
		if diff := cmp.Diff(wantIdx, gotIdx); diff != "" {
			t.Errorf("%s neighbours mismatch (-brute +tree):\n%s", metric, diff)
		}
		assert.Equal(t, wantDist, gotDist)
	}
}

func TestKNN_Accuracy(t *testing.T) {
	X, y := randomData(400, 2, 3)
	knn := NewKNeighborsClassifier(WithNNeighbors(9))
	require.NoError(t, knn.Fit(X, y))
	score, err := knn.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9)
}

func TestKNN_InvalidParams(t *testing.T) {
	X, y := randomData(10, 2, 4)
	tests := []map[string]interface{}{
		{"n_neighbors": 0},
		{"n_neighbors": 11},
		{"weights": "gaussian"},
		{"metric": "cosine"},
		{"algorithm": "lsh"},
		{"leaf_size": 0},
		{"p": 0.5},
		{"metric": "hamming", "algorithm": "kd_tree"},
	}
	for _, params := range tests {
		knn := NewKNeighborsClassifier()
		require.NoError(t, knn.SetParams(params))
		assert.Error(t, knn.Fit(X, y), "%v", params)
	}
	assert.Error(t, NewKNeighborsClassifier().SetParams(map[string]interface{}{"radius": 1.0}))
}

func TestKNN_GobRoundTrip(t *testing.T) {
	X, y := randomData(120, 3, 5)
	knn := NewKNeighborsClassifier(WithNNeighbors(5), WithAlgorithm("ball_tree"), WithLeafSize(8))
	require.NoError(t, knn.Fit(X, y))

	var buf bytes.Buffer
	var est model.Classifier = knn
	require.NoError(t, gob.NewEncoder(&buf).Encode(&est))
	var dec model.Classifier
	require.NoError(t, gob.NewDecoder(&buf).Decode(&dec))

	want, err := knn.Predict(X)
	require.NoError(t, err)
	got, err := dec.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
	assert.NotNil(t, dec.(*KNeighborsClassifier).tree_, "tree is rebuilt on decode")
}

func TestKNN_CloneAndParams(t *testing.T) {
	knn := NewKNeighborsClassifier()
	require.NoError(t, knn.SetParams(map[string]interface{}{"p": 1, "n_jobs": nil, "metric": "minkowski"}))
	params := knn.GetParams()
	assert.Equal(t, 1, params["p"])
	assert.Nil(t, params["n_jobs"])

	X, y := randomData(20, 2, 6)
	require.NoError(t, knn.Fit(X, y))
	c := knn.Clone()
	_, err := c.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}
