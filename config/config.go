// Package config loads run settings from TOML files.
package config

import (
	"io"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/sklearn/ensemble"
)

// DefaultDataPath is read when no data path is configured.
const DefaultDataPath = "Data/housing.csv"

// Config holds every setting of a training run.
type Config struct {
	DataPath     string        `toml:"data_path"`
	TestFraction float64       `toml:"test_fraction"`
	Seed         uint64        `toml:"seed"`
	LogLevel     string        `toml:"log_level"`
	PlotPath     string        `toml:"plot_path,omitempty"`
	Trainer      TrainerConfig `toml:"trainer"`
}

// TrainerConfig mirrors the ensemble options.
type TrainerConfig struct {
	NumTrees       int     `toml:"num_trees"`
	NumLeaves      int     `toml:"num_leaves"`
	LearningRate   float64 `toml:"learning_rate"`
	MinSamplesLeaf int     `toml:"min_samples_leaf"`
	MaxDepth       int     `toml:"max_depth"`
	MaxBins        int     `toml:"max_bins"`
	Subsample      float64 `toml:"subsample"`
	Lambda         float64 `toml:"lambda"`
	NJobs          int     `toml:"n_jobs"`
}

// Default returns the settings of the reference run.
func Default() Config {
	return Config{
		DataPath:     DefaultDataPath,
		TestFraction: 0.2,
		Seed:         0,
		LogLevel:     "warn",
		Trainer: TrainerConfig{
			NumTrees:       100,
			NumLeaves:      20,
			LearningRate:   0.2,
			MinSamplesLeaf: 10,
			MaxBins:        255,
			Subsample:      1.0,
		},
	}
}

// Load reads a TOML file over the defaults. Keys the file leaves out keep
// their default value; unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.NewFileNotFoundError(path, err)
		}
		return Config{}, errors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.NewValidationError("config", "unknown keys", strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, _ := decodeErr.Position()
			return Config{}, errors.NewParseError(row, decodeErr.Error())
		}
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.DataPath == "" {
		return errors.NewValidationError("data_path", "must not be empty", c.DataPath)
	}
	if math.IsNaN(c.TestFraction) || c.TestFraction <= 0 || c.TestFraction >= 1 {
		return errors.NewValidationError("test_fraction", "must be in the open interval (0, 1)", c.TestFraction)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return ensemble.NewGradientBoostingRegressor(c.TrainerOptions()...).Validate()
}

// TrainerOptions converts the trainer table into ensemble options.
func (c Config) TrainerOptions() []ensemble.Option {
	t := c.Trainer
	return []ensemble.Option{
		ensemble.WithNumTrees(t.NumTrees),
		ensemble.WithNumLeaves(t.NumLeaves),
		ensemble.WithLearningRate(t.LearningRate),
		ensemble.WithMinSamplesLeaf(t.MinSamplesLeaf),
		ensemble.WithMaxDepth(t.MaxDepth),
		ensemble.WithMaxBins(t.MaxBins),
		ensemble.WithSubsample(t.Subsample),
		ensemble.WithLambda(t.Lambda),
		ensemble.WithNJobs(t.NJobs),
	}
}

// PipelineOptions returns the pipeline settings of c.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		TestFraction: c.TestFraction,
		Seed:         c.Seed,
		Trainer:      c.TrainerOptions(),
	}
}
