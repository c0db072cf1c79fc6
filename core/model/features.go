package model

import (
	"encoding/json"
	"os"
	"sort"

	mlerrors "github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// LabelColumnName is the name of the outcome column in the dropout dataset.
const LabelColumnName = "Target"

// StripLabel returns names without LabelColumnName.
func StripLabel(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != LabelColumnName {
			out = append(out, n)
		}
	}
	return out
}

// CompareFeatures diffs two ordered feature lists.
//
// inModelOnly and inListOnly are sorted set differences. orderMismatch is
// the first index at which the lists disagree, or -1 when they are
// identical in content and order.
func CompareFeatures(modelFeatures, listFeatures []string) (inModelOnly, inListOnly []string, orderMismatch int) {
	modelSet := make(map[string]struct{}, len(modelFeatures))
	for _, f := range modelFeatures {
		modelSet[f] = struct{}{}
	}
	listSet := make(map[string]struct{}, len(listFeatures))
	for _, f := range listFeatures {
		listSet[f] = struct{}{}
	}

	inModelOnly = []string{}
	for f := range modelSet {
		if _, ok := listSet[f]; !ok {
			inModelOnly = append(inModelOnly, f)
		}
	}
	inListOnly = []string{}
	for f := range listSet {
		if _, ok := modelSet[f]; !ok {
			inListOnly = append(inListOnly, f)
		}
	}
	sort.Strings(inModelOnly)
	sort.Strings(inListOnly)

	orderMismatch = -1
	n := len(modelFeatures)
	if len(listFeatures) < n {
		n = len(listFeatures)
	}
	for i := 0; i < n; i++ {
		if modelFeatures[i] != listFeatures[i] {
			orderMismatch = i
			break
		}
	}
	if orderMismatch < 0 && len(modelFeatures) != len(listFeatures) {
		orderMismatch = n
	}
	return inModelOnly, inListOnly, orderMismatch
}

// SaveFeatureNames writes names as an indented JSON array.
func SaveFeatureNames(path string, names []string) error {
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return mlerrors.Wrap(err, "encode feature names")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return mlerrors.Wrapf(err, "write %s", path)
	}
	return nil
}

// LoadFeatureNames reads a JSON array of column names.
func LoadFeatureNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mlerrors.Wrapf(err, "read %s", path)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, mlerrors.Wrapf(err, "decode %s", path)
	}
	return names, nil
}
