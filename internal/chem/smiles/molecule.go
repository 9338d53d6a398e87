// Package smiles parses SMILES line notation into molecular graphs and derives
// the structural properties (implicit hydrogens, ring membership, hybridization,
// conjugation, stereo) the featurizer depends on.
package smiles

// Chirality is the tetrahedral chirality tag of an atom.
type Chirality int

const (
	ChiralityUnspecified Chirality = iota
	ChiralityCW                    // @@
	ChiralityCCW                   // @
)

// Hybridization is the derived orbital hybridization of an atom.
type Hybridization int

const (
	HybridizationOther Hybridization = iota
	HybridizationSP
	HybridizationSP2
	HybridizationSP3
	HybridizationSP3D
	HybridizationSP3D2
)

// BondOrder is the bond type.
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondAromatic
)

// BondStereo is the perceived double-bond stereochemistry.
type BondStereo int

const (
	StereoNone BondStereo = iota
	StereoAny
	StereoZ
	StereoE
)

// bondDir is the directional flag of a single bond (/ or \) used for E/Z
// perception. Direction is stored relative to the From -> To orientation.
type bondDir int

const (
	dirNone bondDir = iota
	dirUp
	dirDown
)

// Atom is one node of the molecular graph.
type Atom struct {
	Symbol        string // element symbol as written, normalized to title case
	AtomicNum     int    // 0 for elements outside the known table
	Charge        int
	Isotope       int
	Aromatic      bool
	Chirality     Chirality
	Hybridization Hybridization

	// NumH is the hydrogen count: explicit for bracket atoms, computed from
	// standard valences for organic-subset atoms, zero after AddHydrogens.
	NumH int

	bracket bool // bracket atoms never receive implicit hydrogens
}

// Bond is one edge of the molecular graph. From/To are atom indices; the
// canonical direction follows the order atoms appeared in the input.
type Bond struct {
	From, To   int
	Order      BondOrder
	Aromatic   bool
	InRing     bool
	Conjugated bool
	Stereo     BondStereo

	dir bondDir
}

// Molecule is a parsed molecular graph.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond

	adj [][]int // atom index -> bond indices
}

// NumAtoms returns the number of atoms.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumBonds returns the number of bonds.
func (m *Molecule) NumBonds() int { return len(m.Bonds) }

// Degree returns the number of explicit neighbors of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

// BondsOf returns the indices of bonds incident to atom i.
func (m *Molecule) BondsOf(i int) []int { return m.adj[i] }

// Other returns the opposite endpoint of bond b as seen from atom i.
func (b Bond) Other(i int) int {
	if b.From == i {
		return b.To
	}
	return b.From
}

// TotalNumH returns the hydrogen count of atom i: implicit hydrogens plus
// explicit hydrogen neighbors (relevant after AddHydrogens).
func (m *Molecule) TotalNumH(i int) int {
	n := m.Atoms[i].NumH
	for _, bi := range m.adj[i] {
		j := m.Bonds[bi].Other(i)
		if m.Atoms[j].AtomicNum == 1 {
			n++
		}
	}
	return n
}

// buildAdjacency rebuilds the atom -> bonds index.
func (m *Molecule) buildAdjacency() {
	m.adj = make([][]int, len(m.Atoms))
	for bi, b := range m.Bonds {
		m.adj[b.From] = append(m.adj[b.From], bi)
		m.adj[b.To] = append(m.adj[b.To], bi)
	}
}

// AddHydrogens returns a copy of the molecule with every implicit hydrogen
// expanded into an explicit H atom bonded by a single bond. The model is
// trained on hydrogen-complete graphs, so featurization always runs on the
// expanded form.
func (m *Molecule) AddHydrogens() *Molecule {
	out := &Molecule{
		Atoms: make([]Atom, len(m.Atoms), len(m.Atoms)+totalImplicitH(m)),
		Bonds: make([]Bond, len(m.Bonds), len(m.Bonds)+totalImplicitH(m)),
	}
	copy(out.Atoms, m.Atoms)
	copy(out.Bonds, m.Bonds)

	for i := range m.Atoms {
		for k := 0; k < m.Atoms[i].NumH; k++ {
			h := Atom{Symbol: "H", AtomicNum: 1, Hybridization: HybridizationOther}
			out.Atoms = append(out.Atoms, h)
			out.Bonds = append(out.Bonds, Bond{
				From:  i,
				To:    len(out.Atoms) - 1,
				Order: BondSingle,
			})
		}
		out.Atoms[i].NumH = 0
	}

	out.buildAdjacency()
	return out
}

func totalImplicitH(m *Molecule) int {
	n := 0
	for i := range m.Atoms {
		n += m.Atoms[i].NumH
	}
	return n
}

// atomicNumbers covers the elements the reference model saw in training plus
// the usual organic-chemistry periphery. Bracket atoms outside this table are
// rejected; elements here but outside the feature vocabulary featurize into
// the "unknown element" bucket.
var atomicNumbers = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Zn": 30, "Se": 34,
	"Br": 35, "I": 53,
}
