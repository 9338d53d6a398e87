package smiles

import (
	"fmt"
	"strings"

	"github.com/soluscan/soluscan/internal/domain"
)

// Parse converts SMILES text into a molecular graph. It supports the organic
// subset, aromatic lowercase atoms, bracket atoms (isotope, chirality, hydrogen
// count, charge, atom class), branches, ring closures (including %nn) and
// directional bonds. Multi-fragment input (dot notation) is rejected: the model
// supports single connected structures only.
//
// All failures wrap domain.ErrInvalidStructure.
func Parse(text string) (*Molecule, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty input: %w", domain.ErrInvalidStructure)
	}

	p := &parser{
		input: text,
		prev:  -1,
		rings: make(map[int]ringOpen),
		mol:   &Molecule{},
	}
	if err := p.run(); err != nil {
		return nil, err
	}

	m := p.mol
	m.buildAdjacency()
	if err := perceive(m); err != nil {
		return nil, err
	}
	return m, nil
}

type ringOpen struct {
	atom  int
	order BondOrder
	dir   bondDir
}

type parser struct {
	input string
	pos   int
	mol   *Molecule

	prev    int   // previous atom index, -1 before the first atom
	stack   []int // branch return points
	pending BondOrder
	dir     bondDir
	rings   map[int]ringOpen
}

func (p *parser) errf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s at position %d in %q: %w", msg, p.pos, p.input, domain.ErrInvalidStructure)
}

func (p *parser) run() error {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errf("branch before any atom")
			}
			if p.pending != 0 || p.dir != dirNone {
				return p.errf("dangling bond before branch open")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.errf("unmatched branch close")
			}
			if p.pending != 0 || p.dir != dirNone {
				return p.errf("dangling bond before branch close")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '-':
			p.pending = BondSingle
			p.pos++
		case c == '=':
			p.pending = BondDouble
			p.pos++
		case c == '#':
			p.pending = BondTriple
			p.pos++
		case c == ':':
			p.pending = BondAromatic
			p.pos++
		case c == '/':
			p.pending = BondSingle
			p.dir = dirUp
			p.pos++
		case c == '\\':
			p.pending = BondSingle
			p.dir = dirDown
			p.pos++
		case c == '.':
			return p.errf("disconnected fragments are not supported")
		case c >= '0' && c <= '9':
			if err := p.ringBond(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.input) || !isDigit(p.input[p.pos+1]) || !isDigit(p.input[p.pos+2]) {
				return p.errf("%% must be followed by two digits")
			}
			n := int(p.input[p.pos+1]-'0')*10 + int(p.input[p.pos+2]-'0')
			if err := p.ringBond(n); err != nil {
				return err
			}
			p.pos += 3
		case c == '[':
			atom, err := p.bracketAtom()
			if err != nil {
				return err
			}
			p.addAtom(atom)
		default:
			atom, ok := p.organicAtom()
			if !ok {
				return p.errf("unexpected character %q", c)
			}
			p.addAtom(atom)
		}
	}

	if len(p.stack) != 0 {
		return p.errf("unclosed branch")
	}
	if len(p.rings) != 0 {
		return p.errf("unclosed ring bond")
	}
	if len(p.mol.Atoms) == 0 {
		return p.errf("no atoms")
	}
	if p.pending != 0 || p.dir != dirNone {
		return p.errf("dangling bond")
	}
	return nil
}

// organicAtom consumes a bare organic-subset atom. Two-character symbols (Cl,
// Br) take precedence over single letters.
func (p *parser) organicAtom() (Atom, bool) {
	rest := p.input[p.pos:]
	for _, sym := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, sym) {
			p.pos += 2
			return Atom{Symbol: sym, AtomicNum: atomicNumbers[sym]}, true
		}
	}

	c := rest[0]
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		sym := string(c)
		return Atom{Symbol: sym, AtomicNum: atomicNumbers[sym]}, true
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.pos++
		sym := strings.ToUpper(string(c))
		return Atom{Symbol: sym, AtomicNum: atomicNumbers[sym], Aromatic: true}, true
	}
	return Atom{}, false
}

// bracketAtom consumes "[isotope? symbol chirality? Hcount? charge? class?]".
func (p *parser) bracketAtom() (Atom, error) {
	start := p.pos
	p.pos++ // consume '['

	var atom Atom
	atom.bracket = true

	// Isotope
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		atom.Isotope = atom.Isotope*10 + int(p.input[p.pos]-'0')
		p.pos++
	}

	// Element symbol: uppercase + optional lowercase, or aromatic lowercase.
	if p.pos >= len(p.input) {
		return Atom{}, p.errf("unterminated bracket atom")
	}
	c := p.input[p.pos]
	switch {
	case c >= 'A' && c <= 'Z':
		sym := string(c)
		p.pos++
		if p.pos < len(p.input) && p.input[p.pos] >= 'a' && p.input[p.pos] <= 'z' {
			two := sym + string(p.input[p.pos])
			// Consume the lowercase letter only when it forms a known element,
			// so [CH4] does not swallow the H.
			if _, ok := atomicNumbers[two]; ok {
				sym = two
				p.pos++
			}
		}
		atom.Symbol = sym
		atom.AtomicNum = atomicNumbers[sym]
		if atom.AtomicNum == 0 {
			return Atom{}, p.errf("unknown element %q", sym)
		}
	case c == 'b' || c == 'c' || c == 'n' || c == 'o' || c == 'p' || c == 's':
		sym := strings.ToUpper(string(c))
		p.pos++
		if sym == "S" && p.pos < len(p.input) && p.input[p.pos] == 'e' {
			sym = "Se"
			p.pos++
		}
		atom.Symbol = sym
		atom.AtomicNum = atomicNumbers[sym]
		atom.Aromatic = true
	default:
		p.pos = start
		return Atom{}, p.errf("invalid bracket atom")
	}

	// Chirality
	if p.pos < len(p.input) && p.input[p.pos] == '@' {
		p.pos++
		if p.pos < len(p.input) && p.input[p.pos] == '@' {
			atom.Chirality = ChiralityCW
			p.pos++
		} else {
			atom.Chirality = ChiralityCCW
		}
	}

	// Explicit hydrogen count
	if p.pos < len(p.input) && p.input[p.pos] == 'H' {
		p.pos++
		atom.NumH = 1
		if p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			atom.NumH = int(p.input[p.pos] - '0')
			p.pos++
		}
	}

	// Charge: +, -, ++, --, +2, -3
	if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
		sign := 1
		if p.input[p.pos] == '-' {
			sign = -1
		}
		mark := p.input[p.pos]
		n := 1
		p.pos++
		for p.pos < len(p.input) && p.input[p.pos] == mark {
			n++
			p.pos++
		}
		if p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			n = int(p.input[p.pos] - '0')
			p.pos++
		}
		atom.Charge = sign * n
	}

	// Atom class, ignored.
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++
		if p.pos >= len(p.input) || !isDigit(p.input[p.pos]) {
			return Atom{}, p.errf("atom class requires digits")
		}
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
	}

	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return Atom{}, p.errf("unterminated bracket atom")
	}
	p.pos++
	return atom, nil
}

// addAtom appends the atom and bonds it to the previous one.
func (p *parser) addAtom(atom Atom) {
	p.mol.Atoms = append(p.mol.Atoms, atom)
	idx := len(p.mol.Atoms) - 1

	if p.prev >= 0 {
		p.mol.Bonds = append(p.mol.Bonds, Bond{
			From:  p.prev,
			To:    idx,
			Order: p.resolveOrder(p.prev, idx),
			dir:   p.dir,
		})
	}
	p.pending = 0
	p.dir = dirNone
	p.prev = idx
}

// resolveOrder picks the bond order between two atoms: an explicit symbol wins,
// otherwise two aromatic atoms default to an aromatic bond (demoted later if
// the bond turns out not to be in a ring) and everything else to single.
func (p *parser) resolveOrder(a, b int) BondOrder {
	if p.pending != 0 {
		return p.pending
	}
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

// ringBond opens or closes a numbered ring closure on the current atom.
func (p *parser) ringBond(n int) error {
	if p.prev < 0 {
		return p.errf("ring closure before any atom")
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, order: p.pending, dir: p.dir}
		p.pending = 0
		p.dir = dirNone
		return nil
	}
	delete(p.rings, n)

	if open.atom == p.prev {
		return p.errf("ring closure %d bonds an atom to itself", n)
	}
	order := open.order
	if order == 0 {
		order = p.pending
	} else if p.pending != 0 && p.pending != open.order {
		return p.errf("conflicting bond orders for ring closure %d", n)
	}
	if order == 0 {
		if p.mol.Atoms[open.atom].Aromatic && p.mol.Atoms[p.prev].Aromatic {
			order = BondAromatic
		} else {
			order = BondSingle
		}
	}

	// A direction written at the closing site points from the closing atom to
	// the opening atom; flip it into the stored From -> To orientation.
	dir := open.dir
	if dir == dirNone && p.dir != dirNone {
		dir = flipDir(p.dir)
	}

	p.mol.Bonds = append(p.mol.Bonds, Bond{
		From:  open.atom,
		To:    p.prev,
		Order: order,
		dir:   dir,
	})
	p.pending = 0
	p.dir = dirNone
	return nil
}

func flipDir(d bondDir) bondDir {
	switch d {
	case dirUp:
		return dirDown
	case dirDown:
		return dirUp
	}
	return dirNone
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
