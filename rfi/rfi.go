// Package rfi holds the data model shared by the scanner, the classifier and
// the aggregator: the run parameters, the loaded samples and the error
// taxonomy.
package rfi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Polarisation of the antenna feed.
type Polarisation string

const (
	Horizontal Polarisation = "H"
	Vertical   Polarisation = "V"
)

func (p Polarisation) String() string {
	switch p {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return string(p)
}

// Azimuth is the antenna pointing direction in degrees.
type Azimuth int

// Reference is the azimuth that gets zero padded in filenames.
const Reference Azimuth = 0

var Azimuths = []Azimuth{0, 120, 240}

var Polarisations = []Polarisation{Horizontal, Vertical}

// Band is one of the three scan ranges of the spectrum analyzer. Band 0 is
// the full spectrum.
type Band int

const FullSpectrum Band = 0

var bandDescriptions = map[Band]string{
	0: "1 MHz -- 1 GHz (bandwidth: 999 MHz)",
	1: "325 MHz -- 329 MHz (bandwidth: 4 MHz)",
	2: "327.275 MHz -- 327.525 MHz (bandwidth: 250 kHz)",
}

func (b Band) String() string {
	if d, ok := bandDescriptions[b]; ok {
		return d
	}
	return "band " + strconv.Itoa(int(b))
}

var (
	// ErrNotFound is returned when no data file matches within the requested interval.
	ErrNotFound = errors.New("no data files found within time interval")
	// ErrInsufficientData is returned when fewer than two usable files exist.
	ErrInsufficientData = errors.New("fewer than two data files in time interval")
)

// LoadError names a data file that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error when loading file %s: %s", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ShapeError names a file whose table does not have the expected layout.
type ShapeError struct {
	Path     string
	Rows     int
	Cols     int
	WantRows int
	WantCols int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("error when loading data from file %s: got %d rows x %d columns, want %d x %d", e.Path, e.Rows, e.Cols, e.WantRows, e.WantCols)
}

// Params is one validated telescope configuration over a time range.
type Params struct {
	Start        time.Time    `validate:"required"`
	End          time.Time    `validate:"required,gtfield=Start"`
	Polarisation Polarisation `validate:"oneof=H V"`
	Azimuth      Azimuth      `validate:"oneof=0 120 240"`
	Band         Band         `validate:"oneof=0 1 2"`
	DataDir      string       `validate:"required,dir"`
}

var validate = validator.New()

// Validate checks the parameters and reports the first offending field.
func (p Params) Validate() error {
	err := validate.Struct(p)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid %s (value: %v, rule: %s)", fe.Field(), fe.Value(), fe.Tag())
	}
	return err
}

// Sample is one measurement file: a frequency column in Hz and a power
// column in dBm, one row per frequency bin.
type Sample struct {
	Path      string
	Frequency []float64
	Power     []float64
}

// ExitStatus maps an error to the process exit status used by the command
// line tools: 90 not found, 91 insufficient data, 101 load failure,
// 102 shape mismatch, 1 anything else.
func ExitStatus(err error) int {
	var le *LoadError
	var se *ShapeError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotFound):
		return 90
	case errors.Is(err, ErrInsufficientData):
		return 91
	case errors.As(err, &se):
		return 102
	case errors.As(err, &le):
		return 101
	}
	return 1
}
