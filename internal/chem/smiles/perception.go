package smiles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soluscan/soluscan/internal/domain"
)

// allowedValences lists the standard valence states per element, smallest
// first. Implicit hydrogens fill up to the smallest state that covers the
// bonds already present.
var allowedValences = map[string][]int{
	"B": {3}, "C": {4}, "N": {3}, "O": {2},
	"P": {3, 5}, "S": {2, 4, 6},
	"F": {1}, "Cl": {1}, "Br": {1}, "I": {1},
}

// perceive derives ring membership, aromatic consistency, implicit hydrogens,
// hybridization, conjugation and double-bond stereo for a freshly parsed
// molecule. It mutates m in place.
func perceive(m *Molecule) error {
	markRingBonds(m)

	// An aromatic bond written between two aromatic atoms outside any ring is
	// an ordinary single bond (e.g. the biaryl link in c1ccccc1c1ccccc1).
	for i := range m.Bonds {
		b := &m.Bonds[i]
		if b.Order == BondAromatic && !b.InRing {
			b.Order = BondSingle
		}
		b.Aromatic = b.Order == BondAromatic
	}

	if err := assignImplicitHydrogens(m); err != nil {
		return err
	}
	aromatize(m)

	// Every aromatic atom must sit on at least one aromatic ring bond.
	for i := range m.Atoms {
		if !m.Atoms[i].Aromatic {
			continue
		}
		ok := false
		for _, bi := range m.adj[i] {
			if m.Bonds[bi].Aromatic {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("aromatic atom %s outside an aromatic ring: %w",
				m.Atoms[i].Symbol, domain.ErrInvalidStructure)
		}
	}

	if err := checkAromaticElectronCount(m); err != nil {
		return err
	}
	assignHybridization(m)
	assignConjugation(m)
	assignBondStereo(m)
	return nil
}

// markRingBonds flags every bond whose endpoints remain connected when the
// bond itself is removed. Molecules here are small (tens of atoms), so a BFS
// per bond is fine.
func markRingBonds(m *Molecule) {
	for bi := range m.Bonds {
		m.Bonds[bi].InRing = shortestPathWithout(m, m.Bonds[bi].From, m.Bonds[bi].To, bi) != nil
	}
}

// shortestPathWithout returns the atoms of a shortest path from src to dst
// avoiding skipBond, or nil when the bond's removal disconnects them. The
// path closed by skipBond is the smallest ring through that bond.
func shortestPathWithout(m *Molecule, src, dst, skipBond int) []int {
	parent := make([]int, len(m.Atoms))
	for i := range parent {
		parent[i] = -1
	}
	parent[src] = src
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dst {
			path := []int{dst}
			for at := dst; at != src; at = parent[at] {
				path = append(path, parent[at])
			}
			return path
		}
		for _, bi := range m.adj[cur] {
			if bi == skipBond {
				continue
			}
			next := m.Bonds[bi].Other(cur)
			if parent[next] < 0 {
				parent[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return nil
}

// smallestRings returns the smallest simple ring through each ring bond,
// deduplicated by atom set.
func smallestRings(m *Molecule) [][]int {
	var rings [][]int
	seen := make(map[string]bool)
	for bi := range m.Bonds {
		if !m.Bonds[bi].InRing {
			continue
		}
		ring := shortestPathWithout(m, m.Bonds[bi].From, m.Bonds[bi].To, bi)
		if ring == nil {
			continue
		}
		key := ringKey(ring)
		if !seen[key] {
			seen[key] = true
			rings = append(rings, ring)
		}
	}
	return rings
}

func ringKey(ring []int) string {
	s := append([]int(nil), ring...)
	sort.Ints(s)
	var b strings.Builder
	for _, i := range s {
		fmt.Fprintf(&b, "%d,", i)
	}
	return b.String()
}

// aromatize upgrades Kekulé-written rings to aromatic when they satisfy the
// Hückel 4n+2 rule, so C1=CC=CC=C1 perceives identically to c1ccccc1. All
// candidate rings are judged against the bond orders as written before any
// ring is marked, so fused systems like naphthalene do not depend on
// processing order.
func aromatize(m *Molecule) {
	var found [][]int
	for _, ring := range smallestRings(m) {
		if len(ring) < 5 || len(ring) > 7 {
			continue
		}
		if n, ok := ringPiElectrons(m, ring); ok && n%4 == 2 {
			found = append(found, ring)
		}
	}
	for _, ring := range found {
		in := make(map[int]bool, len(ring))
		for _, i := range ring {
			in[i] = true
			m.Atoms[i].Aromatic = true
		}
		for bi := range m.Bonds {
			b := &m.Bonds[bi]
			if b.InRing && in[b.From] && in[b.To] {
				b.Order = BondAromatic
				b.Aromatic = true
			}
		}
	}
}

// ringPiElectrons counts the pi electrons a Kekulé-written candidate ring
// holds: one per atom on a ring double bond (the bond may sit in a fused
// neighbor ring), two for a heteroatom lone pair, none across an exocyclic
// double bond (quinones, fulvenes). A saturated carbon or a triple bond
// disqualifies the ring. Rings already written aromatic carry no double bonds
// and fail here, which is fine: they are aromatic already.
func ringPiElectrons(m *Molecule, ring []int) (int, bool) {
	total := 0
	for _, i := range ring {
		ringDouble, exoDouble := false, false
		for _, bi := range m.adj[i] {
			switch m.Bonds[bi].Order {
			case BondTriple:
				return 0, false
			case BondDouble:
				if m.Bonds[bi].InRing {
					ringDouble = true
				} else {
					exoDouble = true
				}
			}
		}
		a := m.Atoms[i]
		switch {
		case ringDouble:
			total++
		case exoDouble:
			// Cross-conjugated, contributes nothing.
		case a.Symbol == "N" || a.Symbol == "O" || a.Symbol == "S":
			total += 2
		case a.Symbol == "C" && a.Charge == -1:
			total += 2
		case a.Symbol == "C" && a.Charge == 1:
			// Empty p orbital (tropylium).
		default:
			return 0, false
		}
	}
	return total, true
}

// checkAromaticElectronCount rejects aromatic systems whose pi-electron count
// breaks the Hückel rule, such as pyrrole written n1cccc1 instead of
// [nH]1cccc1. Counting runs over whole fused systems so that naphthalene and
// azulene (ten electrons shared across two rings) pass.
func checkAromaticElectronCount(m *Molecule) error {
	visited := make([]bool, len(m.Atoms))
	for start := range m.Atoms {
		if visited[start] || !m.Atoms[start].Aromatic {
			continue
		}
		total := 0
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			total += aromaticPiElectrons(m, cur)
			for _, bi := range m.adj[cur] {
				if !m.Bonds[bi].Aromatic {
					continue
				}
				next := m.Bonds[bi].Other(cur)
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		if total%4 != 2 {
			return fmt.Errorf("aromatic system with %d pi electrons breaks the 4n+2 rule: %w",
				total, domain.ErrInvalidStructure)
		}
	}
	return nil
}

// aromaticPiElectrons gives one aromatic atom's contribution to its ring
// system: one from a pi bond, two from an aromatizing lone pair (pyrrole
// nitrogen, furan oxygen), zero for an empty p orbital or an exocyclic double
// bond (pyridinone carbonyls).
func aromaticPiElectrons(m *Molecule, i int) int {
	a := m.Atoms[i]
	switch a.Symbol {
	case "O", "S", "Se":
		if a.Charge > 0 {
			return 1
		}
		return 2
	case "N", "P":
		if a.Charge > 0 {
			return 1
		}
		if a.NumH > 0 || m.Degree(i) == 3 {
			return 2
		}
		return 1
	case "B":
		return 0
	case "C":
		if a.Charge < 0 {
			return 2
		}
		if a.Charge > 0 {
			return 0
		}
		for _, bi := range m.adj[i] {
			if m.Bonds[bi].Order == BondDouble {
				return 0
			}
		}
		return 1
	}
	return 1
}

// assignImplicitHydrogens fills NumH for organic-subset atoms. Bracket atoms
// keep their explicit count (the SMILES contract: inside brackets the hydrogen
// count is authoritative).
func assignImplicitHydrogens(m *Molecule) error {
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.bracket {
			continue
		}
		valences, ok := allowedValences[a.Symbol]
		if !ok {
			// Organic-subset symbols always have a valence entry; anything
			// else got here through a bracket.
			continue
		}

		used := valenceUsed(m, i)
		maxVal := valences[len(valences)-1]
		if used > maxVal {
			return fmt.Errorf("valence %d exceeds maximum %d for %s: %w",
				used, maxVal, a.Symbol, domain.ErrInvalidStructure)
		}
		for _, v := range valences {
			if used <= v {
				a.NumH = v - used
				break
			}
		}
	}
	return nil
}

// valenceUsed counts the bonding electrons an atom has committed. Aromatic
// atoms are handled by sigma counting: carbon and nitrogen donate one pi
// electron on top of their sigma bonds, oxygen and sulfur aromatize through a
// lone pair.
func valenceUsed(m *Molecule, i int) int {
	a := m.Atoms[i]
	if a.Aromatic {
		sigma := m.Degree(i)
		switch a.Symbol {
		case "O", "S", "B":
			return sigma
		default:
			return sigma + 1
		}
	}

	used := 0
	for _, bi := range m.adj[i] {
		switch m.Bonds[bi].Order {
		case BondSingle:
			used++
		case BondDouble:
			used += 2
		case BondTriple:
			used += 3
		case BondAromatic:
			used += 2 // non-aromatic atom on an aromatic bond, rare but legal
		}
	}
	return used
}

func assignHybridization(m *Molecule) {
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.AtomicNum == 1 || a.AtomicNum == 0 {
			a.Hybridization = HybridizationOther
			continue
		}
		if a.Aromatic {
			a.Hybridization = HybridizationSP2
			continue
		}

		doubles, triples := 0, 0
		for _, bi := range m.adj[i] {
			switch m.Bonds[bi].Order {
			case BondDouble:
				doubles++
			case BondTriple:
				triples++
			}
		}

		heavy := m.Degree(i) + a.NumH
		switch {
		case triples > 0 || doubles >= 2:
			a.Hybridization = HybridizationSP
		case doubles == 1:
			a.Hybridization = HybridizationSP2
		case heavy >= 6:
			a.Hybridization = HybridizationSP3D2
		case heavy == 5:
			a.Hybridization = HybridizationSP3D
		default:
			a.Hybridization = HybridizationSP3
		}
	}
}

// assignConjugation approximates the conjugation perception the model was
// trained against: a bond is conjugated when it sits inside a pi system,
// counting lone pairs of N/O/S/P as pi donors.
func assignConjugation(m *Molecule) {
	hasMultiple := func(i int) bool {
		for _, bi := range m.adj[i] {
			if o := m.Bonds[bi].Order; o == BondDouble || o == BondTriple || o == BondAromatic {
				return true
			}
		}
		return false
	}
	lonePairDonor := func(i int) bool {
		switch m.Atoms[i].Symbol {
		case "N", "O", "S", "P":
			return m.Atoms[i].Charge <= 0
		}
		return false
	}
	capable := func(i int) bool {
		return m.Atoms[i].Aromatic || hasMultiple(i) || lonePairDonor(i)
	}

	for bi := range m.Bonds {
		b := &m.Bonds[bi]
		if b.Aromatic {
			b.Conjugated = true
			continue
		}
		switch b.Order {
		case BondSingle:
			// Both ends must join the pi system and at least one must carry
			// actual pi bonds; two adjacent lone pairs do not conjugate.
			b.Conjugated = capable(b.From) && capable(b.To) &&
				(hasMultiple(b.From) || hasMultiple(b.To))
		case BondDouble, BondTriple:
			b.Conjugated = extendsPiSystem(m, b.From, b.To, hasMultiple, lonePairDonor) ||
				extendsPiSystem(m, b.To, b.From, hasMultiple, lonePairDonor)
		}
	}
}

// extendsPiSystem reports whether atom i has a neighbor besides partner that
// can continue a pi system.
func extendsPiSystem(m *Molecule, i, partner int, hasMultiple, lonePairDonor func(int) bool) bool {
	for _, bi := range m.adj[i] {
		j := m.Bonds[bi].Other(i)
		if j == partner {
			continue
		}
		if m.Atoms[j].Aromatic || hasMultiple(j) || lonePairDonor(j) {
			return true
		}
	}
	return false
}

// assignBondStereo perceives E/Z for double bonds flanked by directional
// single bonds. The stored direction is relative to the bond's From -> To
// orientation; opposite effective directions on the two ends mean trans (E).
func assignBondStereo(m *Molecule) {
	for bi := range m.Bonds {
		b := &m.Bonds[bi]
		if b.Order != BondDouble || b.InRing {
			continue
		}
		dFrom := directionAt(m, b.From, bi)
		dTo := directionAt(m, b.To, bi)
		if dFrom == dirNone || dTo == dirNone {
			continue
		}
		if dFrom == dTo {
			b.Stereo = StereoZ
		} else {
			b.Stereo = StereoE
		}
	}
}

// directionAt returns the direction of a neighboring directional single bond
// as seen pointing away from atom i.
func directionAt(m *Molecule, i, doubleBond int) bondDir {
	for _, bi := range m.adj[i] {
		if bi == doubleBond {
			continue
		}
		b := m.Bonds[bi]
		if b.dir == dirNone {
			continue
		}
		if b.From == i {
			return b.dir
		}
		return flipDir(b.dir)
	}
	return dirNone
}
