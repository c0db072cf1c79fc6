package preprocessing

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// Dropout dataset outcome classes in code order.
var DropoutClasses = []string{"Dropout", "Graduate", "Enrolled"}

// LabelEncoder maps string labels to consecutive integer codes.
//
// With a fixed class list the codes follow that order (Dropout=0,
// Graduate=1, Enrolled=2); otherwise Fit assigns codes in sorted order like
// scikit-learn's LabelEncoder.
type LabelEncoder struct {
	ClassNames []string `json:"classes"`
	index      map[string]int
}

// NewLabelEncoder returns an encoder with a fixed class order. With no
// classes, Fit learns them from data.
func NewLabelEncoder(classes ...string) *LabelEncoder {
	e := &LabelEncoder{ClassNames: append([]string(nil), classes...)}
	e.reindex()
	return e
}

func (e *LabelEncoder) reindex() {
	e.index = make(map[string]int, len(e.ClassNames))
	for i, c := range e.ClassNames {
		e.index[c] = i
	}
}

// Fit learns the classes when none were fixed. With fixed classes it only
// checks that every label is known.
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(e.ClassNames) == 0 {
		seen := make(map[string]struct{})
		for _, l := range labels {
			seen[l] = struct{}{}
		}
		for l := range seen {
			e.ClassNames = append(e.ClassNames, l)
		}
		sort.Strings(e.ClassNames)
		e.reindex()
		return nil
	}
	for _, l := range labels {
		if _, ok := e.index[l]; !ok {
			return errors.NewValueError("LabelEncoder.Fit", "unknown label "+l)
		}
	}
	return nil
}

// Transform encodes labels.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if len(e.ClassNames) == 0 {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		code, ok := e.index[l]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unknown label "+l)
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform is Fit followed by Transform.
func (e *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// InverseTransform decodes codes back to labels.
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.ClassNames) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", "code out of range")
		}
		out[i] = e.ClassNames[c]
	}
	return out, nil
}

// Code returns the code of label.
func (e *LabelEncoder) Code(label string) (int, bool) {
	c, ok := e.index[label]
	return c, ok
}

// Classes returns the class names in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.ClassNames...)
}

// Save writes the encoder as JSON.
func (e *LabelEncoder) Save(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode label encoder")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write label encoder")
}

// LoadLabelEncoder reads an encoder written by Save.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read label encoder %s", path)
	}
	var e LabelEncoder
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrapf(err, "decode label encoder %s", path)
	}
	e.reindex()
	return &e, nil
}
