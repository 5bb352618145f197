// Package config loads the engine constants shared by the rfiscan binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hb9tf/rfiscan/aggregate"
	"github.com/hb9tf/rfiscan/filter"
	"github.com/hb9tf/rfiscan/gain"
	"github.com/hb9tf/rfiscan/metrics"
	"github.com/hb9tf/rfiscan/naming"
	"github.com/hb9tf/rfiscan/rfi"
	"github.com/hb9tf/rfiscan/scan"
)

type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Files  FilesConfig  `yaml:"files"`
	Gain   GainConfig   `yaml:"gain"`
}

// EngineConfig holds the instrument constants and classifier settings.
type EngineConfig struct {
	NumRows              int     `yaml:"num_rows" default:"461" validate:"gte=1"`
	NoiseFloor           float64 `yaml:"noise_floor" default:"-118"`
	MalfunctionThreshold float64 `yaml:"malfunction_threshold" default:"-118"`
	ProbeCount           int     `yaml:"probe_count" default:"40" validate:"gte=1"`
	FullScan             bool    `yaml:"full_scan"`
	Seed                 uint64  `yaml:"seed" default:"21"`
	RandomSeed           bool    `yaml:"random_seed"`
}

type FilesConfig struct {
	Prefix    string `yaml:"prefix" default:"MRT" validate:"required"`
	Extension string `yaml:"extension" default:"TXT" validate:"required"`
	// Location names the time zone of the filename timestamps.
	Location string `yaml:"location" default:"Local"`
}

type GainConfig struct {
	// Bands is the scalar gain per band, used when no table is configured.
	Bands []float64 `yaml:"bands" default:"[20,40,40]" validate:"len=3"`
	// TableTemplate is a fmt pattern taking the band number, e.g.
	// "AmpGain_band%d.csv". Empty disables per-frequency correction.
	TableTemplate string `yaml:"table_template"`
}

var validate = validator.New()

// Default returns the configuration of the deployed instrument.
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		panic(fmt.Sprintf("config defaults: %s", err))
	}
	return c
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	if _, err := time.LoadLocation(c.Files.Location); err != nil {
		return fmt.Errorf("files.location: %w", err)
	}
	return err
}

// TimeLocation returns the zone of filename timestamps.
func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Files.Location)
	if err != nil {
		return time.Local
	}
	return loc
}

// Codec returns the filename codec.
func (c *Config) Codec() naming.Codec {
	return naming.Codec{Prefix: c.Files.Prefix, Extension: c.Files.Extension}
}

// Scanner returns a scanner reporting to rec, which may be nil.
func (c *Config) Scanner(rec *metrics.Recorder) *scan.Scanner {
	s := scan.New(c.Codec())
	s.Metrics = rec
	return s
}

// Classifier returns the amplifier health classifier. Unless RandomSeed is
// set, the configured seed makes runs reproducible.
func (c *Config) Classifier() *filter.Amplifier {
	seed := c.Engine.Seed
	if c.Engine.RandomSeed {
		seed = uint64(time.Now().UnixNano())
	}
	a := filter.NewAmplifier(c.Engine.MalfunctionThreshold, c.Engine.ProbeCount, seed)
	a.FullScan = c.Engine.FullScan
	return a
}

// Aggregator returns an aggregator using the classifier.
func (c *Config) Aggregator(rec *metrics.Recorder) *aggregate.Aggregator {
	return &aggregate.Aggregator{
		NumRows:    c.Engine.NumRows,
		NoiseFloor: c.Engine.NoiseFloor,
		Filters:    []filter.Filterer{c.Classifier()},
		Metrics:    rec,
	}
}

// GainTable returns the per-frequency table for band if a template is
// configured, else the scalar band gain. Relative table paths are resolved
// against dir when dir is not empty.
func (c *Config) GainTable(band rfi.Band, dir string) (gain.Table, error) {
	if c.Gain.TableTemplate == "" {
		return gain.ForBand(c.Gain.Bands, band)
	}
	path := fmt.Sprintf(c.Gain.TableTemplate, int(band))
	if dir != "" && !strings.HasPrefix(path, "/") {
		path = strings.TrimRight(dir, "/") + "/" + path
	}
	return gain.Load(path, c.Engine.NumRows)
}
