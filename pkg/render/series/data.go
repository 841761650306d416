package series

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/optima/pkg/errors"
)

// ReadSeries reads a CSV table whose first column is x and whose other
// columns are one series each. The header row names the series. Empty
// cells are skipped, so series may have different lengths.
func ReadSeries(r io.Reader) ([]Series, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}

	out := make([]Series, len(header)-1)
	for i := range out {
		out[i].Name = header[i+1]
	}
	for n, row := range rows {
		x, err := parseCell(row[0], n+2)
		if err != nil {
			return nil, err
		}
		for i, cell := range row[1:] {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			y, err := parseCell(cell, n+2)
			if err != nil {
				return nil, err
			}
			out[i].Points = append(out[i].Points, Point{X: x, Y: y})
		}
	}
	return out, nil
}

// ReadBars reads a CSV table with one bar per row: the first column is the
// bar name and the header names the segments.
func ReadBars(r io.Reader) ([]Bar, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}

	out := make([]Bar, len(rows))
	for n, row := range rows {
		out[n].Name = strings.TrimSpace(row[0])
		for i, cell := range row[1:] {
			v, err := parseCell(cell, n+2)
			if err != nil {
				return nil, err
			}
			out[n].Segments = append(out[n].Segments, Segment{Label: header[i+1], Value: v})
		}
	}
	return out, nil
}

func readTable(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse csv")
	}
	if len(records) < 2 {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "csv needs a header and at least one row")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "csv needs at least two columns")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, records[1:], nil
}

func parseCell(cell string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: value %q", line, cell)
	}
	return v, nil
}
