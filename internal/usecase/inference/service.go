package inference

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soluscan/soluscan/internal/domain"
	"github.com/soluscan/soluscan/internal/metrics"
)

// MaxBatchSize is the default maximum number of queries per batch request.
const MaxBatchSize = 1000

// Service runs solubility predictions. A batch never fails as a whole because
// of one bad row: invalid rows come back as failed results with a warning
// while the rest are predicted normally.
type Service struct {
	graphs       Graphifier
	model        Predictor
	workers      int
	maxBatchSize int
	ready        atomic.Bool
	log          *zap.Logger
}

// New creates an inference service. model may be nil when the checkpoint
// failed to load; the service then stays permanently unready.
func New(graphs Graphifier, model Predictor, log *zap.Logger) *Service {
	return &Service{
		graphs:       graphs,
		model:        model,
		workers:      runtime.NumCPU(),
		maxBatchSize: MaxBatchSize,
		log:          log,
	}
}

// WithWorkers configures the forward-pass parallelism.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// SmokeTest runs one reference prediction end to end and marks the service
// ready on success. A model that cannot produce a finite number for a trivial
// pair must not serve traffic.
func (s *Service) SmokeTest(soluteSMILES, solventSMILES string, temperatureK float64) error {
	if s.model == nil {
		return domain.ErrModelUnavailable
	}
	solute, err := s.graphs.Featurize(soluteSMILES)
	if err != nil {
		return fmt.Errorf("smoke solute: %w", err)
	}
	solvent, err := s.graphs.Featurize(solventSMILES)
	if err != nil {
		return fmt.Errorf("smoke solvent: %w", err)
	}

	logS := s.model.Predict(solute, solvent, temperatureK)
	if math.IsNaN(logS) || math.IsInf(logS, 0) {
		return fmt.Errorf("smoke prediction for %s in %s is %g: %w",
			soluteSMILES, solventSMILES, logS, domain.ErrModelUnavailable)
	}

	s.log.Info("model smoke test passed",
		zap.String("model_version", s.model.Version()),
		zap.Float64("logs", logS),
	)
	s.ready.Store(true)
	return nil
}

// Ready reports whether the model passed its smoke test.
func (s *Service) Ready() bool { return s.ready.Load() }

// ModelVersion returns the loaded checkpoint's version, or empty when none.
func (s *Service) ModelVersion() string {
	if s.model == nil {
		return ""
	}
	return s.model.Version()
}

// PredictBatch predicts every query in the batch, degrading per row. The
// returned slice is index-aligned with queries.
func (s *Service) PredictBatch(ctx context.Context, queries []domain.PredictionQuery) ([]domain.PredictionResult, error) {
	if !s.ready.Load() {
		return nil, domain.ErrModelUnavailable
	}
	if len(queries) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(queries) > s.maxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds %d: %w",
			len(queries), s.maxBatchSize, domain.ErrBatchTooLarge)
	}
	metrics.BatchSize.Observe(float64(len(queries)))

	results := make([]domain.PredictionResult, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.predictOne(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("predict batch: %w", err)
	}
	return results, nil
}

// predictOne runs a single query. Validation or parse failures turn into a
// failed result, never an error.
func (s *Service) predictOne(q domain.PredictionQuery) domain.PredictionResult {
	if err := q.Validate(); err != nil {
		metrics.PredictionsTotal.WithLabelValues("invalid").Inc()
		return domain.FailedResult(q.TemperatureK, err.Error())
	}
	solute, err := s.graphs.Featurize(q.SoluteSMILES)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("invalid").Inc()
		return domain.FailedResult(q.TemperatureK, fmt.Sprintf("invalid solute: %v", err))
	}
	solvent, err := s.graphs.Featurize(q.SolventSMILES)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("invalid").Inc()
		return domain.FailedResult(q.TemperatureK, fmt.Sprintf("invalid solvent: %v", err))
	}

	start := time.Now()
	logS := s.model.Predict(solute, solvent, q.TemperatureK)
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	metrics.PredictionsTotal.WithLabelValues("ok").Inc()

	res := domain.PredictionResult{PredictedLogS: logS, TemperatureK: q.TemperatureK}
	if minK, maxK := s.model.TrustedTempRange(); q.TemperatureK < minK || q.TemperatureK > maxK {
		res.Warning = fmt.Sprintf(
			"temperature %.2f K is outside the trusted range [%.2f, %.2f] K; prediction may be unreliable",
			q.TemperatureK, minK, maxK)
	}
	return res
}
