// Package model implements inference for the gated-graph solubility network:
// checkpoint loading, the message-passing encoder, the Set2Set readout and the
// regression head. Everything is plain float64 slices; shapes are fixed by the
// checkpoint and validated at load time, after which no dimension checks are
// repeated on the hot path.
package model

import "math"

// Matrix is a dense row-major matrix.
type Matrix struct {
	Rows, Cols int
	Data       []float64
}

// MatVec computes m·x into a fresh slice. x must have length m.Cols.
func (m Matrix) MatVec(x []float64) []float64 {
	out := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		row := m.Data[r*m.Cols : (r+1)*m.Cols]
		sum := 0.0
		for c, v := range row {
			sum += v * x[c]
		}
		out[r] = sum
	}
	return out
}

// Linear is a fully connected layer y = W·x + b.
type Linear struct {
	W Matrix
	B []float64
}

// Apply computes the affine transform.
func (l Linear) Apply(x []float64) []float64 {
	out := l.W.MatVec(x)
	for i, b := range l.B {
		out[i] += b
	}
	return out
}

func reluInPlace(x []float64) {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }

func dot(a, b []float64) float64 {
	sum := 0.0
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}

// softmaxInPlace normalizes x into a probability distribution, shifting by the
// max for numeric stability.
func softmaxInPlace(x []float64) {
	maxVal := math.Inf(-1)
	for _, v := range x {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for i, v := range x {
		x[i] = math.Exp(v - maxVal)
		sum += x[i]
	}
	for i := range x {
		x[i] /= sum
	}
}
