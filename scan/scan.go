// Package scan walks the nominal 15 minute grid of a time interval and
// finds the data files the analyzer actually wrote, tolerating missing
// files and timestamps that drifted by a few minutes.
package scan

import (
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/hb9tf/rfiscan/metrics"
	"github.com/hb9tf/rfiscan/naming"
	"github.com/hb9tf/rfiscan/rfi"
)

const (
	// Tick is the nominal interval between two measurement files.
	Tick = 15 * time.Minute
	// ProbeStep is the resolution of filename timestamps.
	ProbeStep = time.Minute
)

// Slot is one entry of the timeline: a file, or a gap when Path is empty.
type Slot struct {
	Time time.Time
	Path string
}

// Missing reports whether the slot is a gap placeholder.
func (s Slot) Missing() bool {
	return s.Path == ""
}

// Result is the ordered slot list along with the timestamps of the first
// and last file found.
type Result struct {
	Slots []Slot
	Start time.Time
	End   time.Time
}

// Present returns the number of slots backed by a file.
func (r *Result) Present() int {
	n := 0
	for _, s := range r.Slots {
		if !s.Missing() {
			n++
		}
	}
	return n
}

// First returns the first slot backed by a file.
func (r *Result) First() Slot {
	for _, s := range r.Slots {
		if !s.Missing() {
			return s
		}
	}
	return Slot{}
}

// Last returns the last slot backed by a file.
func (r *Result) Last() Slot {
	for i := len(r.Slots) - 1; i >= 0; i-- {
		if !r.Slots[i].Missing() {
			return r.Slots[i]
		}
	}
	return Slot{}
}

// TickCount is the number of nominal ticks from start to end, both included.
func TickCount(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start)/Tick) + 1
}

// Scanner finds data files for one configuration.
type Scanner struct {
	Codec naming.Codec
	// Exists reports whether a data file is present. Defaults to a
	// regular file check on the local filesystem.
	Exists  func(path string) bool
	Metrics *metrics.Recorder
}

// New returns a scanner for files named by codec.
func New(codec naming.Codec) *Scanner {
	return &Scanner{Codec: codec}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *Scanner) exists(path string) bool {
	if s.Exists != nil {
		return s.Exists(path)
	}
	return fileExists(path)
}

// probe searches minute by minute from `from` up to and including `to` and
// returns the first timestamp with a file.
func (s *Scanner) probe(p rfi.Params, from, to time.Time) (time.Time, string, bool) {
	if to.Before(from) {
		return time.Time{}, "", false
	}
	maxSteps := int(to.Sub(from)/ProbeStep) + 1
	t := from
	for i := 0; i < maxSteps; i++ {
		path := s.Codec.Encode(t, p.Polarisation, p.Azimuth, p.Band, p.DataDir)
		if s.exists(path) {
			return t, path, true
		}
		glog.V(2).Infof("no file at %s", path)
		t = t.Add(ProbeStep)
	}
	return time.Time{}, "", false
}

// Scan lists the files in the interval without gap markers. Start is the
// timestamp of the first file and End the one of the last file.
//
// After a tick without file, the search restarts one minute after the
// previous file and moves forward minute by minute until the next file or
// p.End, whichever comes first. The walk is not capped at the next nominal
// tick: a file whose clock drifted by more than a minute is kept and the
// tick phase follows it, instead of the scan reporting ErrNotFound. The
// number of probes is bounded by the remaining interval.
func (s *Scanner) Scan(p rfi.Params) (*Result, error) {
	begin := time.Now()
	defer func() { s.Metrics.ObserveDuration("scan", time.Since(begin)) }()

	res, err := s.scan(p)
	if err != nil {
		return nil, err
	}
	for range res.Slots {
		s.Metrics.RecordSlot(metrics.SlotPresent)
	}
	return res, nil
}

func (s *Scanner) scan(p rfi.Params) (*Result, error) {
	first, path, ok := s.probe(p, p.Start, p.End)
	if !ok {
		return nil, fmt.Errorf("%s %s az %d band %d between %s and %s: %w",
			p.DataDir, p.Polarisation, p.Azimuth, p.Band, p.Start, p.End, rfi.ErrNotFound)
	}

	res := &Result{
		Slots: []Slot{{Time: first, Path: path}},
		Start: first,
	}
	last := first
	t := first.Add(Tick)
	for !t.After(p.End) {
		path := s.Codec.Encode(t, p.Polarisation, p.Azimuth, p.Band, p.DataDir)
		if s.exists(path) {
			res.Slots = append(res.Slots, Slot{Time: t, Path: path})
			last = t
			t = t.Add(Tick)
			continue
		}
		glog.V(1).Infof("expected file %s missing, resynchronising", path)
		next, path, ok := s.probe(p, last.Add(ProbeStep), p.End)
		if !ok {
			break
		}
		res.Slots = append(res.Slots, Slot{Time: next, Path: path})
		last = next
		t = next.Add(Tick)
	}
	res.End = last

	if len(res.Slots) < 2 {
		return nil, fmt.Errorf("only %s between %s and %s: %w", res.Slots[0].Path, p.Start, p.End, rfi.ErrInsufficientData)
	}
	glog.Infof("found %d files from %s to %s", len(res.Slots), res.Start, res.End)
	return res, nil
}

// ScanStrict lists one slot per nominal tick of the requested interval,
// starting at p.Start, with gap markers where no file exists. Each file is
// placed on the tick it falls into, so files at least one tick apart never
// share a slot. Start and End still name the first and last file found.
func (s *Scanner) ScanStrict(p rfi.Params) (*Result, error) {
	begin := time.Now()
	defer func() { s.Metrics.ObserveDuration("scan_strict", time.Since(begin)) }()

	found, err := s.scan(p)
	if err != nil {
		return nil, err
	}

	n := TickCount(p.Start, p.End)
	slots := make([]Slot, n)
	for i := range slots {
		slots[i].Time = p.Start.Add(time.Duration(i) * Tick)
	}
	for _, f := range found.Slots {
		idx := int(f.Time.Sub(p.Start) / Tick)
		if !slots[idx].Missing() {
			glog.Warningf("%s and %s fall on the same tick, keeping the first", slots[idx].Path, f.Path)
			continue
		}
		slots[idx] = f
	}

	res := &Result{Slots: slots, Start: found.Start, End: found.End}
	if res.Present() < 2 {
		return nil, fmt.Errorf("files between %s and %s collapse onto one tick: %w", p.Start, p.End, rfi.ErrInsufficientData)
	}
	for _, slot := range res.Slots {
		if slot.Missing() {
			s.Metrics.RecordSlot(metrics.SlotMissing)
		} else {
			s.Metrics.RecordSlot(metrics.SlotPresent)
		}
	}
	if missing := n - res.Present(); missing > 0 {
		glog.Infof("%d of %d ticks have no file", missing, n)
	}
	return res, nil
}
