package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	mlerrors "github.com/YuminosukeSato/mentoraid/pkg/errors"
)

type readConfig struct {
	delimiter rune
}

// ReadOption configures ReadCSV.
type ReadOption func(*readConfig)

// WithDelimiter sets the field separator. The default is ','.
func WithDelimiter(d rune) ReadOption {
	return func(c *readConfig) {
		c.delimiter = d
	}
}

// ReadCSV parses a CSV document with a header row into a Frame.
func ReadCSV(r io.Reader, opts ...ReadOption) (*Frame, error) {
	cfg := readConfig{delimiter: ','}
	for _, opt := range opts {
		opt(&cfg)
	}

	reader := csv.NewReader(r)
	reader.Comma = cfg.delimiter

	records, err := reader.ReadAll()
	if err != nil {
		return nil, mlerrors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return nil, mlerrors.Wrap(mlerrors.ErrEmptyData, "csv has no header")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, mlerrors.NewValueError("ReadCSV", "duplicate column "+h)
		}
		seen[h] = true
	}

	rows := records[1:]
	frame := NewFrame(len(rows))
	for j, name := range header {
		floats := make([]float64, len(rows))
		strs := make([]string, len(rows))
		numeric := len(rows) > 0
		for i, rec := range rows {
			cell := strings.TrimSpace(rec[j])
			strs[i] = cell
			if !numeric {
				continue
			}
			v, perr := strconv.ParseFloat(cell, 64)
			if perr != nil {
				numeric = false
				continue
			}
			floats[i] = v
		}
		if numeric {
			err = frame.AddNumeric(name, floats)
		} else {
			err = frame.AddText(name, strs)
		}
		if err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// LoadCSV opens path and parses it with ReadCSV.
func LoadCSV(path string, opts ...ReadOption) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, mlerrors.Wrapf(err, "open dataset %s", path)
	}
	defer file.Close()

	frame, err := ReadCSV(file, opts...)
	if err != nil {
		return nil, mlerrors.Wrapf(err, "load dataset %s", path)
	}
	return frame, nil
}
