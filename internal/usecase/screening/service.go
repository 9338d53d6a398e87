package screening

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/soluscan/soluscan/internal/domain"
	"github.com/soluscan/soluscan/internal/metrics"
)

// Service screens one solute against the fixed solvent panel over the full
// temperature grid in a single prediction batch.
type Service struct {
	predictor BatchPredictor
	validator SoluteValidator
	renderer  HeatmapRenderer
	log       *zap.Logger
}

// New creates a screening service.
func New(predictor BatchPredictor, validator SoluteValidator, renderer HeatmapRenderer, log *zap.Logger) *Service {
	return &Service{predictor: predictor, validator: validator, renderer: renderer, log: log}
}

// Screen predicts the solute's solubility in every panel solvent at every grid
// temperature, ranks solvents at the reference temperature and renders both
// heatmaps. An unparseable solute fails the whole call; individual failed
// cells only leave NaN holes in the matrix.
func (s *Service) Screen(ctx context.Context, soluteSMILES, soluteName string) (domain.ScreenReport, error) {
	start := time.Now()

	if err := s.validator.Validate(soluteSMILES); err != nil {
		return domain.ScreenReport{}, fmt.Errorf("screen solute: %w", err)
	}

	panel := domain.SolventPanel()
	grid := domain.TemperatureGrid()

	queries := make([]domain.PredictionQuery, 0, len(panel)*len(grid))
	for _, solvent := range panel {
		for _, tempK := range grid {
			queries = append(queries, domain.PredictionQuery{
				SoluteSMILES:  soluteSMILES,
				SolventSMILES: solvent.SMILES,
				TemperatureK:  tempK,
			})
		}
	}

	results, err := s.predictor.PredictBatch(ctx, queries)
	if err != nil {
		return domain.ScreenReport{}, fmt.Errorf("screen batch: %w", err)
	}

	matrix := domain.HeatmapMatrix{
		Solvents:     panel,
		Temperatures: grid,
		Values:       make([][]float64, len(panel)),
	}
	failed := 0
	for si := range panel {
		row := make([]float64, len(grid))
		for ti := range grid {
			r := results[si*len(grid)+ti]
			row[ti] = r.PredictedLogS
			if r.Failed() {
				failed++
			}
		}
		matrix.Values[si] = row
	}
	if failed > 0 {
		s.log.Warn("screening matrix has failed cells",
			zap.String("solute", soluteSMILES),
			zap.Int("failed_cells", failed),
		)
	}

	report := domain.ScreenReport{
		SoluteSMILES:        soluteSMILES,
		SoluteName:          soluteName,
		RankingTemperatureK: domain.RankingTempK,
		Rankings:            rankAtReference(matrix),
		Matrix:              matrix,
	}

	title := soluteName
	if title == "" {
		title = soluteSMILES
	}
	if report.StaticHeatmapPNG, err = s.renderer.RenderStatic(matrix, title); err != nil {
		return domain.ScreenReport{}, fmt.Errorf("render static heatmap: %w", err)
	}
	if report.DynamicHeatmapPNG, err = s.renderer.RenderDynamic(matrix, title); err != nil {
		return domain.ScreenReport{}, fmt.Errorf("render dynamic heatmap: %w", err)
	}

	metrics.ScreeningDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

// rankAtReference orders solvents by predicted solubility at the reference
// temperature, best first. The sort is stable, so tied or failed solvents keep
// panel order; failed cells always sink to the bottom.
func rankAtReference(m domain.HeatmapMatrix) []domain.RankingRow {
	refCol := 0
	for ti, t := range m.Temperatures {
		if t == domain.RankingTempK {
			refCol = ti
			break
		}
	}

	rows := make([]domain.RankingRow, len(m.Solvents))
	for si, solvent := range m.Solvents {
		rows[si] = domain.RankingRow{
			SolventName:   solvent.Name,
			SolventSMILES: solvent.SMILES,
			PredictedLogS: m.Values[si][refCol],
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].PredictedLogS, rows[j].PredictedLogS
		if a != a { // NaN sorts last
			return false
		}
		if b != b {
			return true
		}
		return a > b
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
