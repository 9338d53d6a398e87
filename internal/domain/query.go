package domain

import (
	"fmt"
	"math"
	"strings"
)

// PredictionQuery is one solute/solvent/temperature triple to predict.
type PredictionQuery struct {
	SoluteSMILES  string
	SolventSMILES string
	TemperatureK  float64
}

// Validate checks the query fields that can be rejected without parsing.
func (q PredictionQuery) Validate() error {
	if strings.TrimSpace(q.SoluteSMILES) == "" {
		return fmt.Errorf("solute smiles is required: %w", ErrInvalidStructure)
	}
	if strings.TrimSpace(q.SolventSMILES) == "" {
		return fmt.Errorf("solvent smiles is required: %w", ErrInvalidStructure)
	}
	if q.TemperatureK <= 0 || math.IsNaN(q.TemperatureK) || math.IsInf(q.TemperatureK, 0) {
		return fmt.Errorf("temperature must be positive kelvin, got %v: %w", q.TemperatureK, ErrInvalidTemperature)
	}
	return nil
}

// PredictionResult is the outcome for one query. A failed row keeps its slot in
// the batch: PredictedLogS is NaN and Warning describes the failure.
type PredictionResult struct {
	PredictedLogS float64
	TemperatureK  float64
	Warning       string
}

// Failed reports whether the row carries the NaN failure sentinel.
func (r PredictionResult) Failed() bool {
	return math.IsNaN(r.PredictedLogS)
}

// FailedResult builds the sentinel result for a row that could not be predicted.
func FailedResult(temperatureK float64, warning string) PredictionResult {
	return PredictionResult{
		PredictedLogS: math.NaN(),
		TemperatureK:  temperatureK,
		Warning:       warning,
	}
}
