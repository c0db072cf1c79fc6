package tuning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mentoraid/model_selection"
)

func TestDefaultFamilies(t *testing.T) {
	families := DefaultFamilies(42)
	require.Len(t, families, 5)

	wantOrder := []string{"Random Forest", "Decision Tree", "Logistic Regression", "SVM", "KNN"}
	wantIter := []int{0, 0, 20, 15, 20}
	wantSize := []int{48, 72, 432, 540, 3840}
	for i, f := range families {
		t.Run(f.Name, func(t *testing.T) {
			assert.Equal(t, wantOrder[i], f.Name)
			assert.Equal(t, wantIter[i], f.NIter)
			assert.Equal(t, wantSize[i], f.Grid.Size())
			assert.NoError(t, f.Grid.Validate(f.Search()), "grid names must be known parameters")
			assert.Equal(t, f.Key+"_tuned_model.gob", f.ArtifactName())

			def := f.Default()
			assert.NotSame(t, def, f.Default(), "Default must build a fresh estimator")
		})
	}
}

func TestDefaultConfigurations(t *testing.T) {
	families := DefaultFamilies(42)
	rf := families[0].Default().GetParams()
	assert.Equal(t, 100, rf["n_estimators"])
	assert.EqualValues(t, 42, rf["random_state"])

	lr := families[2].Default().GetParams()
	assert.Equal(t, 1000, lr["max_iter"])

	knn := families[4].Default().GetParams()
	assert.Equal(t, 5, knn["n_neighbors"])
}

func TestWithGrids(t *testing.T) {
	families := DefaultFamilies(42)
	custom := model_selection.ParamGrid{"max_depth": {2, 3}}
	out := WithGrids(families, map[string]model_selection.ParamGrid{"dt": custom, "rf": {}})

	assert.Equal(t, 2, out[1].Grid.Size())
	assert.Equal(t, families[0].Grid.Size(), out[0].Grid.Size(), "an empty override keeps the default grid")
	assert.Equal(t, 72, families[1].Grid.Size(), "input slice must not be modified")
}
