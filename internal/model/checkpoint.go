package model

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// checkpointSchemaVersion is the artifact layout this loader understands.
const checkpointSchemaVersion = 1

// Hyperparams fixes the network architecture. All of it must match the
// training run that produced the weights.
type Hyperparams struct {
	NodeDim       int   `json:"node_dim"`
	EdgeDim       int   `json:"edge_dim"`
	HiddenDim     int   `json:"hidden_dim"`
	MessageSteps  int   `json:"mp_steps"`
	Set2SetSteps  int   `json:"s2s_steps"`
	EdgeMLPHidden int   `json:"edge_mlp_hidden"`
	MLPDims       []int `json:"mlp_dims"`
}

// Tensor is a named weight blob with its shape. Data is row-major.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Checkpoint is the trained model artifact: architecture, normalization
// statistics, the trusted temperature range and the weight tensors.
type Checkpoint struct {
	SchemaVersion int         `json:"schema_version"`
	ModelVersion  string      `json:"model_version"`
	Hyper         Hyperparams `json:"hyperparams"`

	TargetMean float64 `json:"target_mean"`
	TargetStd  float64 `json:"target_std"`
	TempMeanK  float64 `json:"temp_mean_k"`
	TempStdK   float64 `json:"temp_std_k"`
	TempMinK   float64 `json:"temp_min_k"`
	TempMaxK   float64 `json:"temp_max_k"`

	Tensors map[string]Tensor `json:"tensors"`
}

// Load reads and validates a checkpoint file. Every expected tensor must be
// present with exactly the shape the hyperparameters dictate.
func Load(path string) (*Checkpoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var c Checkpoint
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}
	return &c, nil
}

func (c *Checkpoint) validate() error {
	if c.SchemaVersion != checkpointSchemaVersion {
		return fmt.Errorf("unsupported schema version %d, want %d", c.SchemaVersion, checkpointSchemaVersion)
	}
	h := c.Hyper
	if h.NodeDim <= 0 || h.EdgeDim <= 0 || h.HiddenDim <= 0 {
		return fmt.Errorf("non-positive dimension in hyperparams: %+v", h)
	}
	if h.MessageSteps <= 0 || h.Set2SetSteps <= 0 || h.EdgeMLPHidden <= 0 {
		return fmt.Errorf("non-positive step count in hyperparams: %+v", h)
	}
	if len(h.MLPDims) == 0 {
		return fmt.Errorf("empty mlp_dims")
	}
	if c.TargetStd <= 0 {
		return fmt.Errorf("target_std must be positive, got %g", c.TargetStd)
	}
	if c.TempStdK < 0 {
		return fmt.Errorf("temp_std_k must be non-negative, got %g", c.TempStdK)
	}
	if c.TempMinK >= c.TempMaxK {
		return fmt.Errorf("trusted temperature range [%g, %g] is empty", c.TempMinK, c.TempMaxK)
	}

	for name, shape := range expectedTensors(h) {
		t, ok := c.Tensors[name]
		if !ok {
			return fmt.Errorf("missing tensor %q", name)
		}
		if !shapeEqual(t.Shape, shape) {
			return fmt.Errorf("tensor %q has shape %v, want %v", name, t.Shape, shape)
		}
		if len(t.Data) != numel(shape) {
			return fmt.Errorf("tensor %q has %d values, shape %v needs %d",
				name, len(t.Data), shape, numel(shape))
		}
	}
	return nil
}

// expectedTensors returns the full weight table for an architecture. Names
// follow the exporter's dotted convention.
func expectedTensors(h Hyperparams) map[string][]int {
	H := h.HiddenDim
	exp := map[string][]int{
		"encoder.node_proj.weight":  {H, h.NodeDim},
		"encoder.node_proj.bias":    {H},
		"encoder.edge_mlp.0.weight": {h.EdgeMLPHidden, h.EdgeDim},
		"encoder.edge_mlp.0.bias":   {h.EdgeMLPHidden},
		"encoder.edge_mlp.2.weight": {H * H, h.EdgeMLPHidden},
		"encoder.edge_mlp.2.bias":   {H * H},
		"encoder.gru.weight_ih":     {3 * H, H},
		"encoder.gru.weight_hh":     {3 * H, H},
		"encoder.gru.bias_ih":       {3 * H},
		"encoder.gru.bias_hh":       {3 * H},
	}
	for _, side := range []string{"solute", "solvent"} {
		exp["readout."+side+".lstm.weight_ih"] = []int{4 * H, 2 * H}
		exp["readout."+side+".lstm.weight_hh"] = []int{4 * H, H}
		exp["readout."+side+".lstm.bias_ih"] = []int{4 * H}
		exp["readout."+side+".lstm.bias_hh"] = []int{4 * H}
	}
	// Head input: solute readout (2H) + solvent readout (2H) + temperature.
	in := 4*H + 1
	for i, out := range h.MLPDims {
		exp[fmt.Sprintf("head.%d.weight", i)] = []int{out, in}
		exp[fmt.Sprintf("head.%d.bias", i)] = []int{out}
		in = out
	}
	exp[fmt.Sprintf("head.%d.weight", len(h.MLPDims))] = []int{1, in}
	exp[fmt.Sprintf("head.%d.bias", len(h.MLPDims))] = []int{1}
	return exp
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// NewSeeded builds a checkpoint with small deterministic random weights. Used
// in tests where real trained weights are unavailable; the numbers are
// meaningless but the shapes and the forward pass are real.
func NewSeeded(seed int64) *Checkpoint {
	h := Hyperparams{
		NodeDim:       35,
		EdgeDim:       10,
		HiddenDim:     8,
		MessageSteps:  3,
		Set2SetSteps:  3,
		EdgeMLPHidden: 16,
		MLPDims:       []int{24, 12},
	}
	rng := rand.New(rand.NewSource(seed))
	tensors := make(map[string]Tensor)
	for name, shape := range expectedTensors(h) {
		data := make([]float64, numel(shape))
		for i := range data {
			data[i] = rng.NormFloat64() * 0.2
		}
		tensors[name] = Tensor{Shape: shape, Data: data}
	}
	return &Checkpoint{
		SchemaVersion: checkpointSchemaVersion,
		ModelVersion:  fmt.Sprintf("seeded-%d", seed),
		Hyper:         h,
		TargetMean:    -0.9832843100207638,
		TargetStd:     1.2159083883491026,
		TempMeanK:     298.15,
		TempStdK:      25.0,
		TempMinK:      243.15,
		TempMaxK:      425.77,
		Tensors:       tensors,
	}
}
