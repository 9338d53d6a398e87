package model

import "math"

// gruCell is a gated recurrent unit cell with PyTorch weight layout: the
// input-to-hidden and hidden-to-hidden matrices stack the reset, update and
// candidate gates along the row axis.
type gruCell struct {
	wih, whh Matrix    // (3H x in), (3H x H)
	bih, bhh []float64 // (3H)
	hidden   int
}

// Step computes the next hidden state from input x and state h.
func (g gruCell) Step(x, h []float64) []float64 {
	gi := g.wih.MatVec(x)
	gh := g.whh.MatVec(h)
	for i, b := range g.bih {
		gi[i] += b
	}
	for i, b := range g.bhh {
		gh[i] += b
	}

	H := g.hidden
	out := make([]float64, H)
	for i := 0; i < H; i++ {
		r := sigmoid(gi[i] + gh[i])
		z := sigmoid(gi[H+i] + gh[H+i])
		n := math.Tanh(gi[2*H+i] + r*gh[2*H+i])
		out[i] = (1-z)*n + z*h[i]
	}
	return out
}

// lstmCell is a long short-term memory cell with PyTorch weight layout: gates
// stacked as input, forget, cell, output.
type lstmCell struct {
	wih, whh Matrix    // (4H x in), (4H x H)
	bih, bhh []float64 // (4H)
	hidden   int
}

// Step computes the next (hidden, cell) state pair.
func (l lstmCell) Step(x, h, c []float64) (hNext, cNext []float64) {
	gi := l.wih.MatVec(x)
	gh := l.whh.MatVec(h)
	for i, b := range l.bih {
		gi[i] += b
	}
	for i, b := range l.bhh {
		gh[i] += b
	}

	H := l.hidden
	hNext = make([]float64, H)
	cNext = make([]float64, H)
	for j := 0; j < H; j++ {
		in := sigmoid(gi[j] + gh[j])
		forget := sigmoid(gi[H+j] + gh[H+j])
		cand := math.Tanh(gi[2*H+j] + gh[2*H+j])
		out := sigmoid(gi[3*H+j] + gh[3*H+j])
		cNext[j] = forget*c[j] + in*cand
		hNext[j] = out * math.Tanh(cNext[j])
	}
	return hNext, cNext
}
