// Package feature converts parsed molecules into the fixed-length numeric
// vectors the message-passing model consumes. The vector layout is frozen by
// the trained checkpoint: changing any of it invalidates the weights.
package feature

import "github.com/soluscan/soluscan/internal/chem/smiles"

const (
	// AtomFeatureDim is the per-atom vector length: 11 element one-hot +
	// 7 degree + 1 formal charge + 6 hybridization + 1 aromatic + 6 hydrogen
	// count + 3 chirality.
	AtomFeatureDim = 35
	// BondFeatureDim is the per-bond vector length: 4 order one-hot +
	// 1 conjugated + 1 in-ring + 4 stereo one-hot.
	BondFeatureDim = 10
)

// knownElements is the training vocabulary: H, C, N, O, F, P, S, Cl, Br, I.
// Anything else lands in the trailing "unknown" bucket.
var knownElements = []int{1, 6, 7, 8, 9, 15, 16, 17, 35, 53}

// Graph is a featurized molecule ready for message passing. Edges are
// directed and duplicated (i->j and j->i) with identical features, so every
// atom receives messages from all its neighbors.
type Graph struct {
	Nodes     [][]float64 // [numAtoms][AtomFeatureDim]
	EdgeIndex [][2]int    // [numEdges]{src, dst}
	EdgeAttr  [][]float64 // [numEdges][BondFeatureDim]
}

// NumAtoms returns the node count.
func (g *Graph) NumAtoms() int { return len(g.Nodes) }

// FromMolecule featurizes a hydrogen-complete molecule.
func FromMolecule(m *smiles.Molecule) *Graph {
	g := &Graph{
		Nodes:     make([][]float64, m.NumAtoms()),
		EdgeIndex: make([][2]int, 0, 2*m.NumBonds()),
		EdgeAttr:  make([][]float64, 0, 2*m.NumBonds()),
	}
	for i := range m.Atoms {
		g.Nodes[i] = atomFeatures(m, i)
	}
	for _, b := range m.Bonds {
		feat := bondFeatures(b)
		g.EdgeIndex = append(g.EdgeIndex, [2]int{b.From, b.To}, [2]int{b.To, b.From})
		g.EdgeAttr = append(g.EdgeAttr, feat, feat)
	}
	return g
}

func atomFeatures(m *smiles.Molecule, i int) []float64 {
	a := m.Atoms[i]
	f := make([]float64, 0, AtomFeatureDim)

	// Element one-hot with unknown bucket.
	known := false
	for _, num := range knownElements {
		if a.AtomicNum == num {
			f = append(f, 1)
			known = true
		} else {
			f = append(f, 0)
		}
	}
	f = append(f, boolFeature(!known))

	// Degree one-hot: 0-5, >5.
	f = append(f, oneHotCapped(m.Degree(i), 6)...)

	f = append(f, float64(a.Charge))

	// Hybridization one-hot: SP, SP2, SP3, SP3D, SP3D2, other.
	hyb := make([]float64, 6)
	switch a.Hybridization {
	case smiles.HybridizationSP:
		hyb[0] = 1
	case smiles.HybridizationSP2:
		hyb[1] = 1
	case smiles.HybridizationSP3:
		hyb[2] = 1
	case smiles.HybridizationSP3D:
		hyb[3] = 1
	case smiles.HybridizationSP3D2:
		hyb[4] = 1
	default:
		hyb[5] = 1
	}
	f = append(f, hyb...)

	f = append(f, boolFeature(a.Aromatic))

	// Hydrogen count one-hot: 0-4, >4.
	f = append(f, oneHotCapped(m.TotalNumH(i), 5)...)

	// Chirality one-hot: unspecified, CW, CCW.
	chi := make([]float64, 3)
	switch a.Chirality {
	case smiles.ChiralityCW:
		chi[1] = 1
	case smiles.ChiralityCCW:
		chi[2] = 1
	default:
		chi[0] = 1
	}
	f = append(f, chi...)

	return f
}

func bondFeatures(b smiles.Bond) []float64 {
	f := make([]float64, 0, BondFeatureDim)

	order := make([]float64, 4)
	switch b.Order {
	case smiles.BondSingle:
		order[0] = 1
	case smiles.BondDouble:
		order[1] = 1
	case smiles.BondTriple:
		order[2] = 1
	case smiles.BondAromatic:
		order[3] = 1
	}
	f = append(f, order...)

	f = append(f, boolFeature(b.Conjugated), boolFeature(b.InRing))

	stereo := make([]float64, 4)
	switch b.Stereo {
	case smiles.StereoAny:
		stereo[1] = 1
	case smiles.StereoZ:
		stereo[2] = 1
	case smiles.StereoE:
		stereo[3] = 1
	default:
		stereo[0] = 1
	}
	f = append(f, stereo...)

	return f
}

// oneHotCapped one-hot encodes v over [0, n) with a trailing overflow slot.
func oneHotCapped(v, n int) []float64 {
	f := make([]float64, n+1)
	if v >= 0 && v < n {
		f[v] = 1
	} else {
		f[n] = 1
	}
	return f
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
