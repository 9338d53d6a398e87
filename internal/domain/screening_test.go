package domain

import (
	"math"
	"testing"
)

func TestTemperatureGrid(t *testing.T) {
	grid := TemperatureGrid()

	if len(grid) != GridTempCount {
		t.Fatalf("expected %d temperatures, got %d", GridTempCount, len(grid))
	}
	if grid[0] != GridMinTempK || grid[len(grid)-1] != GridMaxTempK {
		t.Errorf("unexpected endpoints: %g..%g", grid[0], grid[len(grid)-1])
	}
	for i := 1; i < len(grid); i++ {
		if grid[i]-grid[i-1] != GridStepK {
			t.Errorf("non-uniform step between %g and %g", grid[i-1], grid[i])
		}
	}
}

func TestSolventPanel(t *testing.T) {
	panel := SolventPanel()

	if len(panel) != PanelSize {
		t.Fatalf("expected %d solvents, got %d", PanelSize, len(panel))
	}
	seen := make(map[string]bool)
	for _, s := range panel {
		if s.Name == "" || s.SMILES == "" {
			t.Errorf("incomplete panel entry: %+v", s)
		}
		if seen[s.SMILES] {
			t.Errorf("duplicate solvent %s", s.SMILES)
		}
		seen[s.SMILES] = true
	}

	// Callers must not be able to mutate the panel.
	panel[0].SMILES = "mutated"
	if SolventPanel()[0].SMILES == "mutated" {
		t.Error("panel must be copied on access")
	}
}

func TestPredictionQuery_Validate(t *testing.T) {
	valid := PredictionQuery{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 298.15}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := []PredictionQuery{
		{SolventSMILES: "O", TemperatureK: 298.15},
		{SoluteSMILES: "CCO", TemperatureK: 298.15},
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 0},
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: -10},
		{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: math.NaN()},
		{SoluteSMILES: "   ", SolventSMILES: "O", TemperatureK: 298.15},
	}
	for i, q := range bad {
		if err := q.Validate(); err == nil {
			t.Errorf("query %d: expected error", i)
		}
	}
}

func TestFailedResult(t *testing.T) {
	r := FailedResult(300, "bad input")

	if !r.Failed() {
		t.Error("expected failed result")
	}
	if r.TemperatureK != 300 || r.Warning != "bad input" {
		t.Errorf("unexpected result: %+v", r)
	}

	ok := PredictionResult{PredictedLogS: -1.5, TemperatureK: 300}
	if ok.Failed() {
		t.Error("finite prediction must not report failure")
	}
}
