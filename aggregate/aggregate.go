// Package aggregate folds the samples of a slot list into either the mean
// spectrum or the time by frequency matrix used for spectrograms.
package aggregate

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hb9tf/rfiscan/filter"
	"github.com/hb9tf/rfiscan/gain"
	"github.com/hb9tf/rfiscan/metrics"
	"github.com/hb9tf/rfiscan/rfi"
	"github.com/hb9tf/rfiscan/scan"
)

type Mode int

const (
	// Mean averages accepted samples per frequency. Gaps and rejected
	// samples do not contribute.
	Mean Mode = iota
	// Matrix keeps one column per slot. Gaps and rejected samples become
	// a column at the noise floor.
	Matrix
)

func (m Mode) String() string {
	switch m {
	case Mean:
		return "mean"
	case Matrix:
		return "matrix"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

const (
	DefaultNumRows    = 461
	DefaultNoiseFloor = -118.0
)

// Aggregator loads and combines samples. It keeps no state between calls
// apart from what its filters carry.
type Aggregator struct {
	NumRows    int
	NoiseFloor float64
	Filters    []filter.Filterer
	// Load reads one data file. Defaults to rfi.LoadSample.
	Load    func(path string, numRows int) (*rfi.Sample, error)
	Metrics *metrics.Recorder
}

// Result holds the frequency axis and the gain corrected power in dBm.
// Mean is set in Mean mode, Matrix (NumRows x slots) in Matrix mode.
type Result struct {
	Frequency []float64
	Mean      []float64
	Matrix    *mat.Dense

	// Rejected lists the files flagged by the filters, in slot order.
	Rejected []string
	Used     int
	Missing  int
}

func (a *Aggregator) load(path string) (*rfi.Sample, error) {
	if a.Load != nil {
		return a.Load(path, a.NumRows)
	}
	return rfi.LoadSample(path, a.NumRows)
}

func (a *Aggregator) floor() []float64 {
	v := make([]float64, a.NumRows)
	for i := range v {
		v[i] = a.NoiseFloor
	}
	return v
}

// Aggregate processes slots in order. Load and shape errors abort the call
// without a partial result; samples rejected by a filter are only counted.
func (a *Aggregator) Aggregate(slots []scan.Slot, g gain.Table, mode Mode) (*Result, error) {
	begin := time.Now()
	defer func() { a.Metrics.ObserveDuration("aggregate_"+mode.String(), time.Since(begin)) }()

	present := 0
	for _, s := range slots {
		if !s.Missing() {
			present++
		}
	}
	if present < 2 {
		return nil, fmt.Errorf("%d files in slot list: %w", present, rfi.ErrInsufficientData)
	}
	correction, err := g.Vector(a.NumRows)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var sum []float64
	switch mode {
	case Mean:
		sum = make([]float64, a.NumRows)
	case Matrix:
		res.Matrix = mat.NewDense(a.NumRows, len(slots), nil)
	default:
		return nil, fmt.Errorf("unsupported aggregation mode %s", mode)
	}
	floor := a.floor()

	for col, slot := range slots {
		if slot.Missing() {
			res.Missing++
			if res.Matrix != nil {
				res.Matrix.SetCol(col, floor)
			}
			continue
		}

		sample, err := a.load(slot.Path)
		if err != nil {
			return nil, err
		}
		if res.Frequency == nil {
			res.Frequency = append([]float64(nil), sample.Frequency...)
		}
		if filter.Rejected(sample, a.Filters) {
			glog.Warningf("%s has invalid signal power (possibly amplifier malfunction), rejecting", slot.Path)
			a.Metrics.RecordSample(metrics.SampleRejected)
			res.Rejected = append(res.Rejected, slot.Path)
			if res.Matrix != nil {
				res.Matrix.SetCol(col, floor)
			}
			continue
		}
		a.Metrics.RecordSample(metrics.SampleAccepted)
		res.Used++

		power := append([]float64(nil), sample.Power...)
		floats.Sub(power, correction)
		if res.Matrix != nil {
			res.Matrix.SetCol(col, power)
		} else {
			floats.Add(sum, power)
		}
	}

	if mode == Mean {
		if res.Used == 0 {
			return nil, fmt.Errorf("all %d samples rejected: %w", len(res.Rejected), rfi.ErrInsufficientData)
		}
		floats.Scale(1/float64(res.Used), sum)
		res.Mean = sum
	}
	glog.Infof("aggregated %d samples (%s mode), %d rejected, %d gaps", res.Used, mode, len(res.Rejected), res.Missing)
	return res, nil
}
