package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/golang/glog"
)

// CSV writes rows to W. Short writes only frequency and power per line
// without header, the layout of the averaged output files.
type CSV struct {
	W     io.Writer
	Short bool
}

func (c *CSV) Write(ctx context.Context, rows <-chan Row) error {
	w := csv.NewWriter(c.W)
	if !c.Short {
		w.Write([]string{
			"Identifier",
			"Polarisation",
			"Azimuth",
			"Band",
			"StartUnixMilli",
			"EndUnixMilli",
			"Frequency",
			"dBm",
			"Missing",
		})
	}

	for r := range rows {
		var record []string
		if c.Short {
			record = []string{
				fmt.Sprintf("%f", r.Frequency),
				fmt.Sprintf("%f", r.DBm),
			}
		} else {
			record = []string{
				r.Identifier,
				r.Polarisation,
				fmt.Sprintf("%d", r.Azimuth),
				fmt.Sprintf("%d", r.Band),
				fmt.Sprintf("%d", r.Start.UnixMilli()),
				fmt.Sprintf("%d", r.End.UnixMilli()),
				fmt.Sprintf("%f", r.Frequency),
				fmt.Sprintf("%f", r.DBm),
				fmt.Sprintf("%t", r.Missing),
			}
		}
		if err := w.Write(record); err != nil {
			glog.Warningf("error while writing CSV line: %s\n", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("error flushing CSV: %w", err)
	}
	return nil
}
