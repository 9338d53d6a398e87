package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/soluscan/soluscan/internal/chem/feature"
	"github.com/soluscan/soluscan/internal/chem/smiles"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewFromCheckpoint(NewSeeded(42))
	if err != nil {
		t.Fatalf("NewFromCheckpoint: %v", err)
	}
	return m
}

func testGraph(t *testing.T, text string) *feature.Graph {
	t.Helper()
	mol, err := smiles.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return feature.FromMolecule(mol.AddHydrogens())
}

func TestPredict_Deterministic(t *testing.T) {
	m := testModel(t)
	solute := testGraph(t, "CCO")
	solvent := testGraph(t, "O")

	a := m.Predict(solute, solvent, 298.15)
	b := m.Predict(solute, solvent, 298.15)

	if math.IsNaN(a) || math.IsInf(a, 0) {
		t.Fatalf("prediction is not finite: %g", a)
	}
	if a != b {
		t.Errorf("expected identical predictions, got %g and %g", a, b)
	}
}

func TestPredict_TemperatureChangesOutput(t *testing.T) {
	m := testModel(t)
	solute := testGraph(t, "CCO")
	solvent := testGraph(t, "O")

	cold := m.Predict(solute, solvent, 260)
	hot := m.Predict(solute, solvent, 420)

	if cold == hot {
		t.Error("expected temperature to influence the prediction")
	}
}

// permuteGraph relabels the atoms of a graph with a random permutation,
// remapping edge endpoints accordingly.
func permuteGraph(g *feature.Graph, rng *rand.Rand) *feature.Graph {
	n := g.NumAtoms()
	perm := rng.Perm(n)

	out := &feature.Graph{
		Nodes:     make([][]float64, n),
		EdgeIndex: make([][2]int, len(g.EdgeIndex)),
		EdgeAttr:  make([][]float64, len(g.EdgeAttr)),
	}
	for i, node := range g.Nodes {
		out.Nodes[perm[i]] = node
	}
	for e, edge := range g.EdgeIndex {
		out.EdgeIndex[e] = [2]int{perm[edge[0]], perm[edge[1]]}
		out.EdgeAttr[e] = g.EdgeAttr[e]
	}
	return out
}

func TestPredict_PermutationInvariant(t *testing.T) {
	m := testModel(t)
	solvent := testGraph(t, "O")
	solute := testGraph(t, "CC(=O)Oc1ccccc1C(=O)O") // aspirin

	want := m.Predict(solute, solvent, 298.15)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		got := m.Predict(permuteGraph(solute, rng), solvent, 298.15)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("trial %d: prediction depends on atom order: %g vs %g", trial, got, want)
		}
	}
}

func TestPredict_SingleAtomGraph(t *testing.T) {
	m := testModel(t)
	solvent := testGraph(t, "O")

	// One node, no edges: message passing must cope with an empty edge set.
	lone := &feature.Graph{Nodes: [][]float64{make([]float64, feature.AtomFeatureDim)}}
	lone.Nodes[0][10] = 1 // unknown element

	got := m.Predict(lone, solvent, 298.15)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("prediction for isolated atom is not finite: %g", got)
	}
}

func TestEncodeTemperature(t *testing.T) {
	m := testModel(t)

	if got := m.EncodeTemperature(298.15); got != 0 {
		t.Errorf("mean temperature must encode to 0, got %g", got)
	}
	if got := m.EncodeTemperature(323.15); math.Abs(got-1) > 1e-12 {
		t.Errorf("mean+std must encode to 1, got %g", got)
	}
}

func TestEncodeTemperature_ZeroStd(t *testing.T) {
	c := NewSeeded(1)
	c.TempStdK = 0
	m, err := NewFromCheckpoint(c)
	if err != nil {
		t.Fatalf("NewFromCheckpoint: %v", err)
	}
	if got := m.EncodeTemperature(310); got != 310 {
		t.Errorf("zero std must pass temperature through, got %g", got)
	}
}

func TestTrustedTempRange(t *testing.T) {
	m := testModel(t)

	minK, maxK := m.TrustedTempRange()
	if minK != 243.15 || maxK != 425.77 {
		t.Errorf("unexpected trusted range [%g, %g]", minK, maxK)
	}
}

func TestSet2Set_OrderInvariant(t *testing.T) {
	c := NewSeeded(3)
	m, err := NewFromCheckpoint(c)
	if err != nil {
		t.Fatalf("NewFromCheckpoint: %v", err)
	}

	H := c.Hyper.HiddenDim
	rng := rand.New(rand.NewSource(11))
	states := make([][]float64, 6)
	for i := range states {
		states[i] = make([]float64, H)
		for k := range states[i] {
			states[i][k] = rng.NormFloat64()
		}
	}

	want := m.soluteReadout.Readout(states)

	reversed := make([][]float64, len(states))
	for i, s := range states {
		reversed[len(states)-1-i] = s
	}
	got := m.soluteReadout.Readout(reversed)

	for k := range want {
		if math.Abs(got[k]-want[k]) > 1e-12 {
			t.Fatalf("readout depends on state order at %d: %g vs %g", k, got[k], want[k])
		}
	}
}
