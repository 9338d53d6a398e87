package model

import "github.com/soluscan/soluscan/internal/chem/feature"

// encoder is the gated-graph message-passing stack. Each round, every edge
// sends W_e·h_src to its destination (summed), and a shared GRU cell folds the
// aggregated message into each node's state.
type encoder struct {
	nodeProj Linear
	edgeMLP0 Linear // edge features -> hidden
	edgeMLP2 Linear // hidden -> H*H edge weight matrix (ReLU between)
	gru      gruCell
	hidden   int
	steps    int
}

// Encode runs message passing and returns the per-atom hidden states.
func (e *encoder) Encode(g *feature.Graph) [][]float64 {
	n := g.NumAtoms()
	states := make([][]float64, n)
	for i, node := range g.Nodes {
		states[i] = e.nodeProj.Apply(node)
	}

	// Edge weight matrices depend only on the static bond features, so they
	// are computed once and reused across rounds.
	edgeW := make([]Matrix, len(g.EdgeAttr))
	for ei, attr := range g.EdgeAttr {
		hid := e.edgeMLP0.Apply(attr)
		reluInPlace(hid)
		edgeW[ei] = Matrix{Rows: e.hidden, Cols: e.hidden, Data: e.edgeMLP2.Apply(hid)}
	}

	for step := 0; step < e.steps; step++ {
		agg := make([][]float64, n)
		for i := range agg {
			agg[i] = make([]float64, e.hidden)
		}
		for ei, edge := range g.EdgeIndex {
			msg := edgeW[ei].MatVec(states[edge[0]])
			dst := agg[edge[1]]
			for k, v := range msg {
				dst[k] += v
			}
		}

		next := make([][]float64, n)
		for i := range states {
			next[i] = e.gru.Step(agg[i], states[i])
		}
		states = next
	}
	return states
}
