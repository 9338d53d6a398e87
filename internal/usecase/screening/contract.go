package screening

import (
	"context"

	"github.com/soluscan/soluscan/internal/domain"
)

// BatchPredictor predicts solubility for a batch of queries.
type BatchPredictor interface {
	PredictBatch(ctx context.Context, queries []domain.PredictionQuery) ([]domain.PredictionResult, error)
}

// SoluteValidator checks SMILES text without running the model.
type SoluteValidator interface {
	Validate(smiles string) error
}

// HeatmapRenderer draws the screening matrix as PNG images.
type HeatmapRenderer interface {
	RenderStatic(m domain.HeatmapMatrix, title string) ([]byte, error)
	RenderDynamic(m domain.HeatmapMatrix, title string) ([]byte, error)
}
