package model_selection

import (
	"math/rand"
	"sort"

	"github.com/YuminosukeSato/mentoraid/core/model"
	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// ParamGrid maps hyperparameter names to the values to try. A nil entry in
// a value list is "None".
type ParamGrid map[string][]interface{}

// Keys returns the parameter names in sorted order.
func (g ParamGrid) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of points in the grid.
func (g ParamGrid) Size() int {
	if len(g) == 0 {
		return 0
	}
	n := 1
	for _, v := range g {
		n *= len(v)
	}
	return n
}

// At returns the i-th grid point. Points are enumerated over the sorted
// keys with the last key varying fastest.
func (g ParamGrid) At(i int) map[string]interface{} {
	keys := g.Keys()
	params := make(map[string]interface{}, len(keys))
	for k := len(keys) - 1; k >= 0; k-- {
		values := g[keys[k]]
		params[keys[k]] = values[i%len(values)]
		i /= len(values)
	}
	return params
}

// All enumerates every grid point in order.
func (g ParamGrid) All() []map[string]interface{} {
	out := make([]map[string]interface{}, g.Size())
	for i := range out {
		out[i] = g.At(i)
	}
	return out
}

// Validate checks that the grid is non-empty and that every key is a
// parameter of est.
func (g ParamGrid) Validate(est model.ParameterGetter) error {
	if len(g) == 0 {
		return errors.NewValidationError("param_grid", "must not be empty", nil)
	}
	known := est.GetParams()
	for _, k := range g.Keys() {
		if _, ok := known[k]; !ok {
			return errors.NewValidationError(k, "is not a parameter of the estimator", g[k])
		}
		if len(g[k]) == 0 {
			return errors.NewValidationError(k, "has no values to try", g[k])
		}
	}
	return nil
}

// ParameterSampler draws NIter distinct grid points, without replacement,
// using RandomState. When NIter exceeds the grid size the whole grid is
// returned.
type ParameterSampler struct {
	Grid        ParamGrid
	NIter       int
	RandomState int64
}

// Sample returns the selected grid points in draw order.
func (s ParameterSampler) Sample() []map[string]interface{} {
	size := s.Grid.Size()
	n := s.NIter
	if n > size {
		n = size
	}
	r := rand.New(rand.NewSource(s.RandomState))
	perm := r.Perm(size)
	out := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		out[i] = s.Grid.At(perm[i])
	}
	return out
}
