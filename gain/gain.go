// Package gain holds the amplifier gain to subtract from raw readings,
// either one value for the whole band or one value per frequency bin.
package gain

import (
	"fmt"

	"github.com/hb9tf/rfiscan/rfi"
)

// Table is a gain correction in dB.
type Table struct {
	// Scalar applies to every bin when PerFrequency is nil.
	Scalar       float64
	PerFrequency []float64
	Source       string
}

// Scalar returns a table subtracting db from every bin.
func Scalar(db float64) Table {
	return Table{Scalar: db, Source: fmt.Sprintf("%g dB", db)}
}

// DefaultBandGains are the amplifier gains per band: +20 dB in band 0 and
// +40 dB in bands 1 and 2.
var DefaultBandGains = []float64{20, 40, 40}

// ForBand returns the scalar table for band from gains.
func ForBand(gains []float64, band rfi.Band) (Table, error) {
	if int(band) < 0 || int(band) >= len(gains) {
		return Table{}, fmt.Errorf("no gain configured for band %d", band)
	}
	return Scalar(gains[band]), nil
}

// Load reads a gain file in the sample layout: frequency in the first
// column, correction in dB in the second, numRows rows.
func Load(path string, numRows int) (Table, error) {
	s, err := rfi.LoadSample(path, numRows)
	if err != nil {
		return Table{}, err
	}
	return Table{PerFrequency: s.Power, Source: path}, nil
}

// At returns the correction for bin i.
func (t Table) At(i int) float64 {
	if t.PerFrequency != nil {
		return t.PerFrequency[i]
	}
	return t.Scalar
}

// Vector returns the correction expanded to n bins.
func (t Table) Vector(n int) ([]float64, error) {
	if t.PerFrequency != nil {
		if len(t.PerFrequency) != n {
			return nil, &rfi.ShapeError{Path: t.Source, Rows: len(t.PerFrequency), Cols: 2, WantRows: n, WantCols: 2}
		}
		return append([]float64(nil), t.PerFrequency...), nil
	}
	v := make([]float64, n)
	for i := range v {
		v[i] = t.Scalar
	}
	return v, nil
}
