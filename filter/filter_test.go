package filter

import (
	"testing"

	"github.com/hb9tf/rfiscan/rfi"
)

func flat(v float64, n int) *rfi.Sample {
	s := &rfi.Sample{Path: "flat", Power: make([]float64, n), Frequency: make([]float64, n)}
	for i := range s.Power {
		s.Power[i] = v
		s.Frequency[i] = float64(i)
	}
	return s
}

func TestAmplifier(t *testing.T) {
	tests := []struct {
		name  string
		power float64
		want  bool
	}{
		{"healthy", -80, false},
		{"dead amplifier", -125, true},
		{"exactly at threshold", DefaultThreshold, true},
		{"just above threshold", DefaultThreshold + 0.5, false},
	}
	for _, tc := range tests {
		for _, full := range []bool{false, true} {
			a := NewAmplifier(DefaultThreshold, DefaultProbes, 21)
			a.FullScan = full
			if got := a.ShouldIgnore(flat(tc.power, 461)); got != tc.want {
				t.Errorf("%s (full scan %t): ShouldIgnore() = %t, want %t", tc.name, full, got, tc.want)
			}
		}
	}
}

func TestAmplifierDeterministic(t *testing.T) {
	s := flat(-110, 461)
	for i := range s.Power {
		if i%2 == 0 {
			s.Power[i] = -130
		}
	}
	a := NewAmplifier(DefaultThreshold, DefaultProbes, 7)
	b := NewAmplifier(DefaultThreshold, DefaultProbes, 7)
	for i := 0; i < 10; i++ {
		if ma, mb := a.Mean(s), b.Mean(s); ma != mb {
			t.Fatalf("draw %d: means differ with same seed: %f != %f", i, ma, mb)
		}
	}
}

func TestAmplifierFullScanMean(t *testing.T) {
	s := &rfi.Sample{Power: []float64{-100, -120, -140}}
	a := &Amplifier{Threshold: DefaultThreshold, FullScan: true}
	if got := a.Mean(s); got != -120 {
		t.Errorf("Mean() = %f, want -120", got)
	}
	if !a.ShouldIgnore(s) {
		t.Errorf("ShouldIgnore() = false, want true")
	}
}

type always bool

func (a always) ShouldIgnore(*rfi.Sample) bool { return bool(a) }

func TestRejected(t *testing.T) {
	s := flat(-80, 3)
	if Rejected(s, nil) {
		t.Errorf("Rejected() with no filters = true")
	}
	if !Rejected(s, []Filterer{always(true), always(false)}) {
		t.Errorf("Rejected() ignored an earlier filter")
	}
	if Rejected(s, []Filterer{always(false), always(false)}) {
		t.Errorf("Rejected() = true with all filters accepting")
	}
}
