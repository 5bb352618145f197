package rfi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadSample(t *testing.T) {
	in := "1000000.0,-80.5\n2000000.0, -81\n3000000.0,-82.25\n"
	s, err := ReadSample(strings.NewReader(in), "x.TXT", 3)
	if err != nil {
		t.Fatalf("ReadSample() returned error: %s", err)
	}
	wantFreq := []float64{1e6, 2e6, 3e6}
	wantPow := []float64{-80.5, -81, -82.25}
	for i := range wantFreq {
		if s.Frequency[i] != wantFreq[i] || s.Power[i] != wantPow[i] {
			t.Errorf("row %d = (%f, %f), want (%f, %f)", i, s.Frequency[i], s.Power[i], wantFreq[i], wantPow[i])
		}
	}
}

func TestReadSampleShape(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"too few rows", "1,-80\n2,-80\n"},
		{"too many rows", "1,-80\n2,-80\n3,-80\n4,-80\n"},
		{"three columns", "1,-80,0\n2,-80,0\n3,-80,0\n"},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadSample(strings.NewReader(tc.in), "bad.TXT", 3)
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("ReadSample() error = %v, want *ShapeError", err)
			}
			if se.Path != "bad.TXT" {
				t.Errorf("ShapeError.Path = %q, want %q", se.Path, "bad.TXT")
			}
		})
	}
}

func TestReadSampleBadNumber(t *testing.T) {
	_, err := ReadSample(strings.NewReader("1,-80\nabc,-80\n3,-80\n"), "bad.TXT", 3)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("ReadSample() error = %v, want *LoadError", err)
	}
}

func TestLoadSampleMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.TXT")
	_, err := LoadSample(path, 3)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("LoadSample() error = %v, want *LoadError", err)
	}
	if le.Path != path {
		t.Errorf("LoadError.Path = %q, want %q", le.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadError does not wrap os.ErrNotExist: %s", err)
	}
}

func TestParamsValidate(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2019, 3, 7, 0, 0, 0, 0, time.UTC)
	valid := Params{
		Start:        start,
		End:          start.Add(24 * time.Hour),
		Polarisation: Horizontal,
		Azimuth:      120,
		Band:         1,
		DataDir:      dir,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid params returned %s", err)
	}

	tests := []struct {
		name   string
		modify func(p *Params)
	}{
		{"bad polarisation", func(p *Params) { p.Polarisation = "X" }},
		{"bad azimuth", func(p *Params) { p.Azimuth = 90 }},
		{"bad band", func(p *Params) { p.Band = 3 }},
		{"end before start", func(p *Params) { p.End = p.Start.Add(-time.Minute) }},
		{"end equals start", func(p *Params) { p.End = p.Start }},
		{"missing dir", func(p *Params) { p.DataDir = filepath.Join(dir, "missing") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.modify(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ErrNotFound, 90},
		{fmt.Errorf("scan: %w", ErrInsufficientData), 91},
		{&LoadError{Path: "a", Err: os.ErrPermission}, 101},
		{&ShapeError{Path: "a"}, 102},
		{errors.New("other"), 1},
	}
	for _, tc := range tests {
		if got := ExitStatus(tc.err); got != tc.want {
			t.Errorf("ExitStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
