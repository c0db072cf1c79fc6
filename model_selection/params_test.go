package model_selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParamGridEnumeration(t *testing.T) {
	grid := ParamGrid{
		"max_depth": {10, nil},
		"criterion": {"gini", "entropy"},
	}

	if got := grid.Size(); got != 4 {
		t.Fatalf("Size() = %d, want 4", got)
	}

	// ソート済みキーの最後のキーが最も速く変化する
	want := []map[string]interface{}{
		{"criterion": "gini", "max_depth": 10},
		{"criterion": "gini", "max_depth": nil},
		{"criterion": "entropy", "max_depth": 10},
		{"criterion": "entropy", "max_depth": nil},
	}
	if diff := cmp.Diff(want, grid.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

type paramsOnly map[string]interface{}

func (p paramsOnly) GetParams() map[string]interface{} { return p }

func TestParamGridValidate(t *testing.T) {
	est := paramsOnly{"C": 1.0, "kernel": "rbf"}

	tests := []struct {
		name    string
		grid    ParamGrid
		wantErr bool
	}{
		{"known keys", ParamGrid{"C": {0.1, 1.0}}, false},
		{"unknown key", ParamGrid{"C": {1.0}, "n_estimators": {10}}, true},
		{"empty grid", ParamGrid{}, true},
		{"empty values", ParamGrid{"kernel": {}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate(est)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParameterSampler(t *testing.T) {
	grid := ParamGrid{
		"a": {1, 2, 3, 4},
		"b": {"x", "y", "z"},
	}

	s := ParameterSampler{Grid: grid, NIter: 5, RandomState: 42}
	first := s.Sample()
	if len(first) != 5 {
		t.Fatalf("len(Sample()) = %d, want 5", len(first))
	}

	seen := make(map[string]bool)
	for _, p := range first {
		key := p["b"].(string) + string(rune('0'+p["a"].(int)))
		if seen[key] {
			t.Errorf("duplicate draw %v", p)
		}
		seen[key] = true
	}

	if diff := cmp.Diff(first, s.Sample()); diff != "" {
		t.Errorf("Sample() not deterministic (-first +second):\n%s", diff)
	}

	all := ParameterSampler{Grid: grid, NIter: 100, RandomState: 1}.Sample()
	if len(all) != grid.Size() {
		t.Errorf("oversized NIter returned %d points, want %d", len(all), grid.Size())
	}
}
