// Package naming maps a timestamp and telescope configuration to the name of
// the data file the spectrum analyzer writes for it, and back.
package naming

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/hb9tf/rfiscan/rfi"
)

const (
	DefaultPrefix    = "MRT"
	DefaultExtension = "TXT"

	timeFmt = "20060102_1504"
)

// Codec encodes names of the form <prefix>_<YYYYMMDD>_<HHMM><POL><AZ>[_<BAND>].<ext>.
type Codec struct {
	Prefix    string
	Extension string
}

// Default is the codec for files written by the deployed instrument.
var Default = Codec{Prefix: DefaultPrefix, Extension: DefaultExtension}

// Name returns the bare file name without directory.
func (c Codec) Name(t time.Time, pol rfi.Polarisation, az rfi.Azimuth, band rfi.Band) string {
	var b strings.Builder
	b.WriteString(c.Prefix)
	b.WriteByte('_')
	b.WriteString(t.Format(timeFmt))
	b.WriteString(string(pol))
	if az == rfi.Reference {
		fmt.Fprintf(&b, "%03d", int(az))
	} else {
		b.WriteString(strconv.Itoa(int(az)))
	}
	if band != rfi.FullSpectrum {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(int(band)))
	}
	b.WriteByte('.')
	b.WriteString(c.Extension)
	return b.String()
}

// Encode returns the full path of the file for t inside dir. Exactly one
// separator is placed between dir and the name.
func (c Codec) Encode(t time.Time, pol rfi.Polarisation, az rfi.Azimuth, band rfi.Band, dir string) string {
	return strings.TrimRight(dir, "/") + "/" + c.Name(t, pol, az, band)
}

// Name is what Decode recovers from a file path.
type Name struct {
	Time         time.Time
	Polarisation rfi.Polarisation
	Azimuth      rfi.Azimuth
	Band         rfi.Band
}

// Decode parses a path produced by Encode. Timestamps are returned in loc.
func (c Codec) Decode(p string, loc *time.Location) (*Name, error) {
	base := path.Base(p)
	rest, ok := strings.CutPrefix(base, c.Prefix+"_")
	if !ok {
		return nil, fmt.Errorf("%q does not start with %q", base, c.Prefix+"_")
	}
	rest, ok = strings.CutSuffix(rest, "."+c.Extension)
	if !ok {
		return nil, fmt.Errorf("%q does not end with %q", base, "."+c.Extension)
	}
	if len(rest) < len(timeFmt)+2 {
		return nil, fmt.Errorf("%q is too short", base)
	}
	t, err := time.ParseInLocation(timeFmt, rest[:len(timeFmt)], loc)
	if err != nil {
		return nil, fmt.Errorf("unable to parse timestamp in %q: %s", base, err)
	}
	rest = rest[len(timeFmt):]

	n := &Name{
		Time:         t,
		Polarisation: rfi.Polarisation(rest[:1]),
		Band:         rfi.FullSpectrum,
	}
	rest = rest[1:]
	azRaw, bandRaw, hasBand := strings.Cut(rest, "_")
	az, err := strconv.Atoi(azRaw)
	if err != nil {
		return nil, fmt.Errorf("unable to parse azimuth in %q: %s", base, err)
	}
	n.Azimuth = rfi.Azimuth(az)
	if hasBand {
		band, err := strconv.Atoi(bandRaw)
		if err != nil {
			return nil, fmt.Errorf("unable to parse band in %q: %s", base, err)
		}
		n.Band = rfi.Band(band)
	}
	return n, nil
}
