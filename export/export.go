package export

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hb9tf/rfiscan/rfi"
	"github.com/hb9tf/rfiscan/scan"
)

// Row is one aggregated power value at one frequency. For a mean spectrum
// Start and End span the corrected time range, for a spectrogram column
// both are the slot time.
type Row struct {
	Identifier   string
	Polarisation string
	Azimuth      int
	Band         int
	Start        time.Time
	End          time.Time
	Frequency    float64
	DBm          float64
	Missing      bool
}

type Exporter interface {
	Write(context.Context, <-chan Row) error
}

// MeanRows turns a mean spectrum into rows.
func MeanRows(id string, p rfi.Params, start, end time.Time, freq, mean []float64) []Row {
	rows := make([]Row, 0, len(freq))
	for i := range freq {
		rows = append(rows, Row{
			Identifier:   id,
			Polarisation: string(p.Polarisation),
			Azimuth:      int(p.Azimuth),
			Band:         int(p.Band),
			Start:        start,
			End:          end,
			Frequency:    freq[i],
			DBm:          mean[i],
		})
	}
	return rows
}

// MatrixRows turns a spectrogram matrix into rows, column by column.
// Rows of gap slots are flagged Missing.
func MatrixRows(id string, p rfi.Params, slots []scan.Slot, freq []float64, m *mat.Dense) []Row {
	nr, nc := m.Dims()
	rows := make([]Row, 0, nr*nc)
	for c := 0; c < nc; c++ {
		for r := 0; r < nr; r++ {
			rows = append(rows, Row{
				Identifier:   id,
				Polarisation: string(p.Polarisation),
				Azimuth:      int(p.Azimuth),
				Band:         int(p.Band),
				Start:        slots[c].Time,
				End:          slots[c].Time,
				Frequency:    freq[r],
				DBm:          m.At(r, c),
				Missing:      slots[c].Missing(),
			})
		}
	}
	return rows
}

// Send hands rows to the exporter over a closed, pre-filled channel.
func Send(ctx context.Context, e Exporter, rows []Row) error {
	ch := make(chan Row, len(rows))
	for _, r := range rows {
		ch <- r
	}
	close(ch)
	return e.Write(ctx, ch)
}
