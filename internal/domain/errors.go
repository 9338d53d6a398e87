package domain

import "errors"

var (
	// ErrInvalidStructure signals an unparseable molecular notation.
	ErrInvalidStructure = errors.New("invalid structure")
	// ErrInvalidTemperature signals a non-positive or absent temperature.
	ErrInvalidTemperature = errors.New("invalid temperature")
	// ErrModelUnavailable signals that model weights failed to load.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrEmptyBatch signals a prediction batch with no queries.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrBatchTooLarge signals a prediction batch above the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
)
