package similarity

import (
	"fmt"

	"github.com/drakos74/free-music/internal/math/som"
	"github.com/go-playground/validator/v10"
)

// Initialization strategies for the reference vectors.
const (
	InitRandom = "random"
	InitSample = "sample"
	InitKMeans = "kmeans"
	InitZero   = "zero"
)

// Distance thresholds for the neighbour expansion.
const (
	ThresholdMedian = "median"
	ThresholdMean   = "mean"
)

// kmeansIterations bounds the k-means run seeding the reference vectors.
const kmeansIterations = 50

// Config defines the similarity searcher.
type Config struct {
	Width      int           `json:"width" yaml:"width" validate:"gt=0"`
	Height     int           `json:"height" yaml:"height" validate:"gt=0"`
	Iterations int           `json:"iterations" yaml:"iterations" validate:"gt=0"`
	Features   som.Layout    `json:"features" yaml:"features" validate:"required,min=1,dive"`
	Schedule   *som.Schedule `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Mode       som.Mode      `json:"mode" yaml:"mode" validate:"omitempty,oneof=online batch"`
	Workers    int           `json:"workers" yaml:"workers" validate:"gte=0"`
	Init       string        `json:"init" yaml:"init" validate:"omitempty,oneof=random sample kmeans zero"`
	Seed       int64         `json:"seed" yaml:"seed"`
	Threshold  string        `json:"threshold" yaml:"threshold" validate:"omitempty,oneof=median mean"`
	// MaxCells bounds the number of cells visited by a query, 0 means no bound.
	MaxCells int `json:"max_cells" yaml:"max_cells" validate:"gte=0"`
	// SortFeatures orders the feature groups by name before assembling the vectors.
	SortFeatures bool `json:"sort_features" yaml:"sort_features"`
}

// DefaultConfig is a 5x5 map over the essentia low level and tonal descriptors.
func DefaultConfig() Config {
	return Config{
		Width:      5,
		Height:     5,
		Iterations: 10,
		Features: som.Layout{
			{Name: "lowlevel.spectral_contrast_coeffs.median", Size: 6},
			{Name: "lowlevel.erbbands.median", Size: 40},
			{Name: "tonal.hpcp.median", Size: 36},
			{Name: "lowlevel.melbands.median", Size: 40},
			{Name: "lowlevel.barkbands.median", Size: 27},
			{Name: "lowlevel.mfcc.mean", Size: 13},
			{Name: "lowlevel.gfcc.mean", Size: 13},
		},
		Mode:         som.Online,
		Init:         InitRandom,
		Threshold:    ThresholdMedian,
		SortFeatures: true,
	}
}

// Validate checks the config once, before any data is touched.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %v: %w", err, som.ErrConfiguration)
	}
	if err := c.Features.Validate(); err != nil {
		return err
	}
	if err := c.TrainSchedule().Validate(); err != nil {
		return err
	}
	return nil
}

// Layout returns the feature layout the vectors are assembled with.
func (c Config) Layout() som.Layout {
	if c.SortFeatures {
		return c.Features.Sorted()
	}
	return c.Features
}

// TrainSchedule returns the configured schedule or the default one for the grid.
func (c Config) TrainSchedule() som.Schedule {
	if c.Schedule != nil {
		return *c.Schedule
	}
	return som.DefaultSchedule(c.Width, c.Height)
}

// Initializer returns the reference vector initialization strategy.
func (c Config) Initializer() som.Initializer {
	switch c.Init {
	case InitSample:
		return som.SampleInit(c.Seed)
	case InitKMeans:
		return som.KMeansInit(kmeansIterations, c.Seed)
	case InitZero:
		return som.ConstInit(0)
	default:
		return som.RandomInit(c.Seed)
	}
}

func (c Config) trainOptions() som.TrainOptions {
	mode := c.Mode
	if mode == "" {
		mode = som.Online
	}
	return som.TrainOptions{
		Mode:    mode,
		Workers: c.Workers,
		Init:    c.Initializer(),
	}
}
