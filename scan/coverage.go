package scan

import (
	"time"

	"github.com/golang/glog"

	"github.com/hb9tf/rfiscan/rfi"
)

// Coverage summarises how complete a scan result is.
type Coverage struct {
	Present  int
	Missing  int
	Expected int
}

// Coverage counts present and missing slots. Expected is the number of
// ticks between the first and the last file found.
func (r *Result) Coverage() Coverage {
	present := r.Present()
	return Coverage{
		Present:  present,
		Missing:  len(r.Slots) - present,
		Expected: TickCount(r.Start, r.End),
	}
}

// Completeness is the share of expected files present, in percent.
func (c Coverage) Completeness() float64 {
	if c.Expected == 0 {
		return 0
	}
	return float64(c.Present) / float64(c.Expected) * 100
}

// SurveyEntry is the outcome of scanning one polarisation and azimuth.
type SurveyEntry struct {
	Polarisation rfi.Polarisation
	Azimuth      rfi.Azimuth
	Result       *Result
	Err          error
}

// Survey scans every polarisation and azimuth for one band. A configuration
// without enough files is recorded with its error and does not stop the
// survey.
func (s *Scanner) Survey(start, end time.Time, band rfi.Band, dir string) []SurveyEntry {
	var entries []SurveyEntry
	for _, pol := range rfi.Polarisations {
		for _, az := range rfi.Azimuths {
			p := rfi.Params{
				Start:        start,
				End:          end,
				Polarisation: pol,
				Azimuth:      az,
				Band:         band,
				DataDir:      dir,
			}
			res, err := s.Scan(p)
			if err != nil {
				glog.Warningf("survey of %s az %d: %s", pol, az, err)
			} else {
				s.Metrics.SetCompleteness(string(pol), int(az), int(band), res.Coverage().Completeness()/100)
			}
			entries = append(entries, SurveyEntry{
				Polarisation: pol,
				Azimuth:      az,
				Result:       res,
				Err:          err,
			})
		}
	}
	return entries
}
