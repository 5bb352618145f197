package filter

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/hb9tf/rfiscan/rfi"
)

type Filterer interface {
	ShouldIgnore(*rfi.Sample) bool
}

// Rejected reports whether any of the filters wants the sample dropped.
func Rejected(s *rfi.Sample, filters []Filterer) bool {
	for _, f := range filters {
		if f.ShouldIgnore(s) {
			return true
		}
	}
	return false
}

const (
	// DefaultThreshold sits a few dB above the analyzer noise floor of
	// about -120 dBm.
	DefaultThreshold = -118.0
	DefaultProbes    = 40
)

// Amplifier flags samples recorded while the amplifier was dead: the whole
// band then sits at the receiver noise floor. The mean of Probes randomly
// chosen power values (with replacement) at or below Threshold marks a
// malfunction. With FullScan the exact mean of the whole column is used.
type Amplifier struct {
	Threshold float64
	Probes    int
	FullScan  bool
	Rand      *rand.Rand
}

// NewAmplifier returns a classifier drawing from a PCG source seeded with seed.
func NewAmplifier(threshold float64, probes int, seed uint64) *Amplifier {
	return &Amplifier{
		Threshold: threshold,
		Probes:    probes,
		Rand:      rand.New(rand.NewPCG(seed, seed)),
	}
}

// Mean returns the statistic compared against the threshold.
func (a *Amplifier) Mean(s *rfi.Sample) float64 {
	if a.FullScan || a.Rand == nil || a.Probes <= 0 {
		return stat.Mean(s.Power, nil)
	}
	picks := make([]float64, a.Probes)
	for i := range picks {
		picks[i] = s.Power[a.Rand.IntN(len(s.Power))]
	}
	return stat.Mean(picks, nil)
}

func (a *Amplifier) ShouldIgnore(s *rfi.Sample) bool {
	if len(s.Power) == 0 {
		return true
	}
	return a.Mean(s) <= a.Threshold
}
