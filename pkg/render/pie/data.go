package pie

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/render/pie/layout"
)

// Input formats for [ReadSlices].
const (
	InputCSV  = "csv"
	InputJSON = "json"
)

// DetectInput guesses the input format from a file name. Anything that is
// not .json is read as CSV.
func DetectInput(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return InputJSON
	}
	return InputCSV
}

// ReadSlices reads pie data.
//
// CSV input has one "label,value" record per line; a first record whose
// value column is not a number is taken as a header. JSON input is either
// an array of {"label": ..., "value": ...} objects or an object mapping
// labels to values, the latter ordered by key.
func ReadSlices(r io.Reader, format string) ([]layout.Slice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input")
	}
	switch format {
	case InputJSON:
		return readJSON(data)
	case InputCSV:
		return readCSV(data)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", format)
}

func readCSV(data []byte) ([]layout.Slice, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse csv")
	}

	var out []layout.Slice
	for i, rec := range records {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: value %q", i+1, rec[1])
		}
		s := layout.Slice{Label: strings.TrimSpace(rec[0]), Value: v}
		if err := errors.ValidateSliceValue(s.Label, s.Value); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func readJSON(data []byte) ([]layout.Slice, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var m map[string]float64
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse json")
		}
		out := make([]layout.Slice, 0, len(m))
		for label, v := range m {
			out = append(out, layout.Slice{Label: label, Value: v})
		}
		sortByLabel(out)
		return out, validateAll(out)
	}

	var out []layout.Slice
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse json")
	}
	return out, validateAll(out)
}

func sortByLabel(s []layout.Slice) {
	slices.SortFunc(s, func(a, b layout.Slice) int { return strings.Compare(a.Label, b.Label) })
}

func validateAll(s []layout.Slice) error {
	for _, v := range s {
		if err := errors.ValidateSliceValue(v.Label, v.Value); err != nil {
			return err
		}
	}
	return nil
}
