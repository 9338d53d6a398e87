package model

import (
	"fmt"
	"math"

	"github.com/soluscan/soluscan/internal/chem/feature"
)

// Model is an immutable, goroutine-safe inference engine assembled from a
// validated checkpoint. Predict allocates all working state per call, so
// concurrent callers never share buffers.
type Model struct {
	hyper Hyperparams

	enc            encoder
	soluteReadout  set2set
	solventReadout set2set
	head           []Linear

	targetMean, targetStd float64
	tempMeanK, tempStdK   float64
	tempMinK, tempMaxK    float64
	version               string
}

// NewFromCheckpoint wires the network from checkpoint tensors. The checkpoint
// must already be validated by Load.
func NewFromCheckpoint(c *Checkpoint) (*Model, error) {
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid checkpoint: %w", err)
	}
	h := c.Hyper
	H := h.HiddenDim

	m := &Model{
		hyper:      h,
		targetMean: c.TargetMean,
		targetStd:  c.TargetStd,
		tempMeanK:  c.TempMeanK,
		tempStdK:   c.TempStdK,
		tempMinK:   c.TempMinK,
		tempMaxK:   c.TempMaxK,
		version:    c.ModelVersion,
	}

	m.enc = encoder{
		nodeProj: c.linear("encoder.node_proj"),
		edgeMLP0: c.linear("encoder.edge_mlp.0"),
		edgeMLP2: c.linear("encoder.edge_mlp.2"),
		gru: gruCell{
			wih:    c.matrix("encoder.gru.weight_ih"),
			whh:    c.matrix("encoder.gru.weight_hh"),
			bih:    c.Tensors["encoder.gru.bias_ih"].Data,
			bhh:    c.Tensors["encoder.gru.bias_hh"].Data,
			hidden: H,
		},
		hidden: H,
		steps:  h.MessageSteps,
	}
	m.soluteReadout = c.readout("readout.solute", h)
	m.solventReadout = c.readout("readout.solvent", h)

	for i := 0; i <= len(h.MLPDims); i++ {
		m.head = append(m.head, c.linear(fmt.Sprintf("head.%d", i)))
	}
	return m, nil
}

func (c *Checkpoint) matrix(name string) Matrix {
	t := c.Tensors[name]
	return Matrix{Rows: t.Shape[0], Cols: t.Shape[1], Data: t.Data}
}

func (c *Checkpoint) linear(prefix string) Linear {
	return Linear{W: c.matrix(prefix + ".weight"), B: c.Tensors[prefix+".bias"].Data}
}

func (c *Checkpoint) readout(prefix string, h Hyperparams) set2set {
	return set2set{
		lstm: lstmCell{
			wih:    c.matrix(prefix + ".lstm.weight_ih"),
			whh:    c.matrix(prefix + ".lstm.weight_hh"),
			bih:    c.Tensors[prefix+".lstm.bias_ih"].Data,
			bhh:    c.Tensors[prefix+".lstm.bias_hh"].Data,
			hidden: h.HiddenDim,
		},
		steps:  h.Set2SetSteps,
		hidden: h.HiddenDim,
	}
}

// Predict runs a full forward pass and returns log10 solubility in mol/L.
func (m *Model) Predict(solute, solvent *feature.Graph, temperatureK float64) float64 {
	hs := m.enc.Encode(solute)
	hv := m.enc.Encode(solvent)
	H := m.hyper.HiddenDim
	scale := 1 / math.Sqrt(float64(H))

	// Interaction map: pairwise scaled dot products between solute and
	// solvent atom states. Each solute atom is then re-expressed as the
	// interaction-weighted mix of solvent atoms, and vice versa.
	inter := make([][]float64, len(hs))
	for i, si := range hs {
		row := make([]float64, len(hv))
		for j, vj := range hv {
			row[j] = dot(si, vj) * scale
		}
		inter[i] = row
	}

	mappedS := make([][]float64, len(hs))
	for i := range hs {
		v := make([]float64, H)
		for j, w := range inter[i] {
			for k, x := range hv[j] {
				v[k] += w * x
			}
		}
		mappedS[i] = v
	}
	mappedV := make([][]float64, len(hv))
	for j := range hv {
		v := make([]float64, H)
		for i, row := range inter {
			for k, x := range hs[i] {
				v[k] += row[j] * x
			}
		}
		mappedV[j] = v
	}

	su := m.soluteReadout.Readout(mappedS)
	sv := m.solventReadout.Readout(mappedV)

	in := make([]float64, 0, 4*H+1)
	in = append(in, su...)
	in = append(in, sv...)
	in = append(in, m.EncodeTemperature(temperatureK))

	for i, layer := range m.head {
		in = layer.Apply(in)
		if i < len(m.head)-1 {
			reluInPlace(in)
		}
	}
	return in[0]*m.targetStd + m.targetMean
}

// EncodeTemperature standardizes a temperature the way training did. A zero
// std means training used raw kelvin.
func (m *Model) EncodeTemperature(tempK float64) float64 {
	if m.tempStdK == 0 {
		return tempK
	}
	return (tempK - m.tempMeanK) / m.tempStdK
}

// TrustedTempRange returns the kelvin interval covered by training data.
// Predictions outside it still run but deserve a warning.
func (m *Model) TrustedTempRange() (minK, maxK float64) {
	return m.tempMinK, m.tempMaxK
}

// Version reports the checkpoint's model version string.
func (m *Model) Version() string { return m.version }
