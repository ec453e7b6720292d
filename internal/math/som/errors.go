package som

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrConfiguration is returned when the data does not match the configured layout
	// e.g. a vector of the wrong dimension or an invalid grid.
	ErrConfiguration = errors.New("configuration error")
	// ErrEmptyCorpus is returned when normalization or training is asked to run on no data.
	ErrEmptyCorpus = fmt.Errorf("empty corpus: %w", ErrConfiguration)
	// ErrNotReady is returned when an operation needs state that has not been computed yet.
	ErrNotReady = errors.New("not ready")
)

// CheckDim verifies that the given vector has exactly dim elements.
func CheckDim(v Vector, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("vector has dimension %d instead of %d: %w", len(v), dim, ErrConfiguration)
	}
	return nil
}

// CheckVector verifies the dimension of the vector and that all its values are finite.
func CheckVector(v Vector, dim int) error {
	if err := CheckDim(v, dim); err != nil {
		return err
	}
	for d, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("non finite value %f at dimension %d: %w", x, d, ErrConfiguration)
		}
	}
	return nil
}
