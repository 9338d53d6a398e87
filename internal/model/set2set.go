package model

// set2set is the order-invariant readout: an LSTM repeatedly emits a query,
// attention over the node states produces a weighted sum, and query plus sum
// feed the next step. The final concatenation (2H) is the graph embedding.
type set2set struct {
	lstm   lstmCell // input 2H, hidden H
	steps  int
	hidden int
}

// Readout pools a variable-size set of H-dim states into a 2H vector. The
// result does not depend on the order of states.
func (s *set2set) Readout(states [][]float64) []float64 {
	h := make([]float64, s.hidden)
	c := make([]float64, s.hidden)
	qstar := make([]float64, 2*s.hidden)

	for t := 0; t < s.steps; t++ {
		h, c = s.lstm.Step(qstar, h, c)

		attn := make([]float64, len(states))
		for i, st := range states {
			attn[i] = dot(st, h)
		}
		softmaxInPlace(attn)

		read := make([]float64, s.hidden)
		for i, st := range states {
			for k, v := range st {
				read[k] += attn[i] * v
			}
		}

		copy(qstar[:s.hidden], h)
		copy(qstar[s.hidden:], read)
	}
	return qstar
}
