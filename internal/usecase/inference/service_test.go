package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/soluscan/soluscan/internal/chem/feature"
	"github.com/soluscan/soluscan/internal/domain"
)

// --- Mocks ---

type mockGraphifier struct {
	bad map[string]bool
}

func (m *mockGraphifier) Featurize(smiles string) (*feature.Graph, error) {
	if m.bad[smiles] {
		return nil, fmt.Errorf("parse %q: %w", smiles, domain.ErrInvalidStructure)
	}
	return &feature.Graph{Nodes: [][]float64{make([]float64, feature.AtomFeatureDim)}}, nil
}

type mockPredictor struct {
	value float64
	minK  float64
	maxK  float64
}

func (m *mockPredictor) Predict(_, _ *feature.Graph, temperatureK float64) float64 {
	return m.value + temperatureK/1000
}

func (m *mockPredictor) TrustedTempRange() (minK, maxK float64) { return m.minK, m.maxK }

func (m *mockPredictor) Version() string { return "test-model" }

func newTestService(graphs *mockGraphifier, predictor Predictor) *Service {
	return New(graphs, predictor, zap.NewNop())
}

func readyService(t *testing.T, graphs *mockGraphifier, predictor Predictor) *Service {
	t.Helper()
	svc := newTestService(graphs, predictor)
	if err := svc.SmokeTest("CCO", "O", 298.15); err != nil {
		t.Fatalf("SmokeTest: %v", err)
	}
	return svc
}

// --- Tests ---

func TestPredictBatch_Unready(t *testing.T) {
	svc := newTestService(&mockGraphifier{}, &mockPredictor{minK: 243.15, maxK: 425.77})

	_, err := svc.PredictBatch(context.Background(), []domain.PredictionQuery{
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 298.15},
	})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestPredictBatch_NilModel(t *testing.T) {
	svc := newTestService(&mockGraphifier{}, nil)

	if err := svc.SmokeTest("CCO", "O", 298.15); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable from smoke test, got %v", err)
	}
	if svc.Ready() {
		t.Error("service must stay unready without a model")
	}
	if svc.ModelVersion() != "" {
		t.Error("expected empty model version without a model")
	}
}

func TestPredictBatch_EmptyBatch(t *testing.T) {
	svc := readyService(t, &mockGraphifier{}, &mockPredictor{minK: 243.15, maxK: 425.77})

	if _, err := svc.PredictBatch(context.Background(), nil); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestPredictBatch_TooLarge(t *testing.T) {
	svc := readyService(t, &mockGraphifier{}, &mockPredictor{minK: 243.15, maxK: 425.77})
	svc.WithMaxBatchSize(2)

	queries := []domain.PredictionQuery{
		{SoluteSMILES: "C", SolventSMILES: "O", TemperatureK: 300},
		{SoluteSMILES: "C", SolventSMILES: "O", TemperatureK: 310},
		{SoluteSMILES: "C", SolventSMILES: "O", TemperatureK: 320},
	}
	if _, err := svc.PredictBatch(context.Background(), queries); !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Errorf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestPredictBatch_PerRowDegradation(t *testing.T) {
	graphs := &mockGraphifier{bad: map[string]bool{"bad-solute": true, "bad-solvent": true}}
	svc := readyService(t, graphs, &mockPredictor{value: -1, minK: 243.15, maxK: 425.77})

	queries := []domain.PredictionQuery{
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 300},
		{SoluteSMILES: "bad-solute", SolventSMILES: "O", TemperatureK: 300},
		{SoluteSMILES: "CCO", SolventSMILES: "bad-solvent", TemperatureK: 300},
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: -5},
		{SoluteSMILES: "CO", SolventSMILES: "O", TemperatureK: 310},
	}

	results, err := svc.PredictBatch(context.Background(), queries)
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	if len(results) != len(queries) {
		t.Fatalf("expected %d results, got %d", len(queries), len(results))
	}

	if results[0].Failed() || results[4].Failed() {
		t.Error("valid rows must not fail")
	}
	for _, i := range []int{1, 2, 3} {
		if !results[i].Failed() {
			t.Errorf("row %d: expected failure", i)
		}
		if results[i].Warning == "" {
			t.Errorf("row %d: expected warning", i)
		}
	}
	if !strings.Contains(results[1].Warning, "solute") {
		t.Errorf("row 1 warning must mention the solute, got %q", results[1].Warning)
	}
	if !strings.Contains(results[2].Warning, "solvent") {
		t.Errorf("row 2 warning must mention the solvent, got %q", results[2].Warning)
	}

	// Order preservation: row 4 ran at 310 K, row 0 at 300 K.
	if results[4].PredictedLogS <= results[0].PredictedLogS {
		t.Error("results are not index-aligned with queries")
	}
}

func TestPredictBatch_TemperatureWarning(t *testing.T) {
	svc := readyService(t, &mockGraphifier{}, &mockPredictor{minK: 243.15, maxK: 425.77})

	results, err := svc.PredictBatch(context.Background(), []domain.PredictionQuery{
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 500},
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 298.15},
	})
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}

	if results[0].Failed() {
		t.Error("out-of-range temperature must still predict")
	}
	if !strings.Contains(results[0].Warning, "trusted range") {
		t.Errorf("expected trusted-range warning, got %q", results[0].Warning)
	}
	if results[1].Warning != "" {
		t.Errorf("in-range temperature must carry no warning, got %q", results[1].Warning)
	}
}

func TestPredictBatch_CancelledContext(t *testing.T) {
	svc := readyService(t, &mockGraphifier{}, &mockPredictor{minK: 243.15, maxK: 425.77})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queries := make([]domain.PredictionQuery, 50)
	for i := range queries {
		queries[i] = domain.PredictionQuery{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 300}
	}
	if _, err := svc.PredictBatch(ctx, queries); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSmokeTest_NonFinite(t *testing.T) {
	svc := newTestService(&mockGraphifier{}, &mockPredictor{value: math.NaN(), minK: 243.15, maxK: 425.77})

	if err := svc.SmokeTest("CCO", "O", 298.15); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
	if svc.Ready() {
		t.Error("service must stay unready after a failed smoke test")
	}
}

func TestSmokeTest_MarksReady(t *testing.T) {
	svc := newTestService(&mockGraphifier{}, &mockPredictor{minK: 243.15, maxK: 425.77})

	if svc.Ready() {
		t.Fatal("service must start unready")
	}
	if err := svc.SmokeTest("CCO", "O", 298.15); err != nil {
		t.Fatalf("SmokeTest: %v", err)
	}
	if !svc.Ready() {
		t.Error("service must be ready after a passing smoke test")
	}
	if svc.ModelVersion() != "test-model" {
		t.Errorf("unexpected model version %q", svc.ModelVersion())
	}
}
