package rfi

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const sampleCols = 2

// LoadSample reads a comma separated frequency/power table without header.
// A file that cannot be opened or parsed yields a *LoadError, a table with
// the wrong number of rows or columns yields a *ShapeError.
func LoadSample(path string, numRows int) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return ReadSample(f, path, numRows)
}

// ReadSample parses a sample table from r. path is only used to label errors.
func ReadSample(r io.Reader, path string, numRows int) (*Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	s := &Sample{
		Path:      path,
		Frequency: make([]float64, 0, numRows),
		Power:     make([]float64, 0, numRows),
	}
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		rows++
		if len(record) != sampleCols {
			return nil, &ShapeError{Path: path, Rows: rows, Cols: len(record), WantRows: numRows, WantCols: sampleCols}
		}
		if rows > numRows {
			continue // keep counting for the error message
		}
		freq, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("row %d: %w", rows, err)}
		}
		pow, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("row %d: %w", rows, err)}
		}
		s.Frequency = append(s.Frequency, freq)
		s.Power = append(s.Power, pow)
	}
	if rows != numRows {
		return nil, &ShapeError{Path: path, Rows: rows, Cols: sampleCols, WantRows: numRows, WantCols: sampleCols}
	}
	return s, nil
}
