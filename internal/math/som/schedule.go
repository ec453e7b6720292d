package som

import (
	"fmt"
	"math"
)

// Decay defines how a parameter moves from its start to its end value.
type Decay string

const (
	// Exponential decays geometrically e.g. start * (end/start)^p.
	Exponential Decay = "exponential"
	// Linear decays linearly e.g. start + (end-start)*p.
	Linear Decay = "linear"
)

// Span is a decaying parameter.
type Span struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Schedule defines the learning rate and neighbourhood radius over the training iterations.
type Schedule struct {
	LearningRate Span  `json:"learning_rate" yaml:"learning_rate"`
	Radius       Span  `json:"radius" yaml:"radius"`
	Decay        Decay `json:"decay" yaml:"decay"`
}

// DefaultSchedule is the classic kohonen schedule for the given grid
// radius decays from half the largest grid side to 1, learning rate from 0.5 to 0.01.
func DefaultSchedule(width, height int) Schedule {
	radius := float64(width)
	if height > width {
		radius = float64(height)
	}
	radius = radius / 2
	if radius < 1 {
		radius = 1
	}
	return Schedule{
		LearningRate: Span{Start: 0.5, End: 0.01},
		Radius:       Span{Start: radius, End: 1},
		Decay:        Exponential,
	}
}

// Validate checks that the schedule can be used for training.
func (s Schedule) Validate() error {
	if s.LearningRate.Start <= 0 || s.LearningRate.End <= 0 || s.LearningRate.Start > 1 || s.LearningRate.End > 1 {
		return fmt.Errorf("learning rate must be within (0,1] '%+v': %w", s.LearningRate, ErrConfiguration)
	}
	if s.Radius.Start <= 0 || s.Radius.End <= 0 {
		return fmt.Errorf("radius must be positive '%+v': %w", s.Radius, ErrConfiguration)
	}
	switch s.Decay {
	case Exponential, Linear:
	default:
		return fmt.Errorf("unknown decay '%s': %w", s.Decay, ErrConfiguration)
	}
	return nil
}

// At returns the learning rate and radius for the given iteration out of count.
func (s Schedule) At(iteration, count int) (rate, radius float64) {
	p := progress(iteration, count)
	return s.decay(s.LearningRate, p), s.decay(s.Radius, p)
}

func (s Schedule) decay(span Span, p float64) float64 {
	if s.Decay == Linear {
		return span.Start + (span.End-span.Start)*p
	}
	return span.Start * math.Pow(span.End/span.Start, p)
}

// progress maps the iteration to [0,1], reaching 1 at the last iteration.
func progress(iteration, count int) float64 {
	if count <= 1 {
		return 0
	}
	return float64(iteration) / float64(count-1)
}

// neighbourhood is the gaussian influence of a cell at the given squared grid distance from the BMU.
func neighbourhood(d2, radius float64) float64 {
	return math.Exp(-d2 / (2 * radius * radius))
}
