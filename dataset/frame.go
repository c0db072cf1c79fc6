// Package dataset holds tabular data loaded from CSV as an ordered set of
// typed columns.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	mlerrors "github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// Frame is a column-oriented table. A column is numeric when every cell
// parsed as a float64; otherwise it is kept as text.
type Frame struct {
	columns []string
	numeric map[string][]float64
	text    map[string][]string
	nRows   int
}

// NewFrame returns an empty frame with n rows.
func NewFrame(nRows int) *Frame {
	return &Frame{
		numeric: make(map[string][]float64),
		text:    make(map[string][]string),
		nRows:   nRows,
	}
}

// AddNumeric appends a numeric column. It replaces an existing column of
// the same name in place.
func (f *Frame) AddNumeric(name string, values []float64) error {
	if len(values) != f.nRows {
		return mlerrors.NewDimensionError("Frame.AddNumeric", f.nRows, len(values), 0)
	}
	if !f.Has(name) {
		f.columns = append(f.columns, name)
	}
	delete(f.text, name)
	f.numeric[name] = values
	return nil
}

// AddText appends a text column.
func (f *Frame) AddText(name string, values []string) error {
	if len(values) != f.nRows {
		return mlerrors.NewDimensionError("Frame.AddText", f.nRows, len(values), 0)
	}
	if !f.Has(name) {
		f.columns = append(f.columns, name)
	}
	delete(f.numeric, name)
	f.text[name] = values
	return nil
}

// NRows returns the number of rows.
func (f *Frame) NRows() int { return f.nRows }

// Columns returns the column names in file order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, num := f.numeric[name]
	_, txt := f.text[name]
	return num || txt
}

// IsNumeric reports whether name is a numeric column.
func (f *Frame) IsNumeric(name string) bool {
	_, ok := f.numeric[name]
	return ok
}

// NumericColumns returns the numeric column names in order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, c := range f.columns {
		if f.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

// Float returns the values of a numeric column. The slice is shared.
func (f *Frame) Float(name string) ([]float64, error) {
	v, ok := f.numeric[name]
	if !ok {
		if f.Has(name) {
			return nil, mlerrors.NewValueError("Frame.Float", "column "+name+" is not numeric")
		}
		return nil, mlerrors.NewValueError("Frame.Float", "no column named "+name)
	}
	return v, nil
}

// Text returns the values of a text column. The slice is shared.
func (f *Frame) Text(name string) ([]string, error) {
	v, ok := f.text[name]
	if !ok {
		if f.Has(name) {
			return nil, mlerrors.NewValueError("Frame.Text", "column "+name+" is not text")
		}
		return nil, mlerrors.NewValueError("Frame.Text", "no column named "+name)
	}
	return v, nil
}

// RequireColumns returns an error naming the first column that is missing.
func (f *Frame) RequireColumns(names ...string) error {
	for _, n := range names {
		if !f.Has(n) {
			return mlerrors.NewValueError("Frame.RequireColumns", "missing column "+n)
		}
	}
	return nil
}

// Filter returns a new frame with the rows for which keep is true.
func (f *Frame) Filter(keep []bool) (*Frame, error) {
	if len(keep) != f.nRows {
		return nil, mlerrors.NewDimensionError("Frame.Filter", f.nRows, len(keep), 0)
	}
	idx := make([]int, 0, f.nRows)
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return f.Take(idx), nil
}

// Take returns a new frame with the given rows, in the given order.
// Indices may repeat.
func (f *Frame) Take(idx []int) *Frame {
	out := NewFrame(len(idx))
	out.columns = f.Columns()
	for name, src := range f.numeric {
		dst := make([]float64, len(idx))
		for i, r := range idx {
			dst[i] = src[r]
		}
		out.numeric[name] = dst
	}
	for name, src := range f.text {
		dst := make([]string, len(idx))
		for i, r := range idx {
			dst[i] = src[r]
		}
		out.text[name] = dst
	}
	return out
}

// Drop returns a new frame without the named columns. Names that are not
// present are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := NewFrame(f.nRows)
	for _, c := range f.columns {
		if drop[c] {
			continue
		}
		out.columns = append(out.columns, c)
		if v, ok := f.numeric[c]; ok {
			out.numeric[c] = v
		} else {
			out.text[c] = f.text[c]
		}
	}
	return out
}

// Matrix assembles the named numeric columns into an nRows×len(cols) matrix.
func (f *Frame) Matrix(cols []string) (*mat.Dense, error) {
	if f.nRows == 0 || len(cols) == 0 {
		return nil, mlerrors.ErrEmptyData
	}
	m := mat.NewDense(f.nRows, len(cols), nil)
	for j, c := range cols {
		v, err := f.Float(c)
		if err != nil {
			return nil, err
		}
		m.SetCol(j, v)
	}
	return m, nil
}
