package feature

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/soluscan/soluscan/internal/chem/smiles"
)

// Featurizer turns SMILES text into featurized graphs, with a TTL cache keyed
// by the raw input text. Featurization is pure, so identical text always
// yields an identical graph; the cache only saves the parse and feature work.
// The panel solvents stay warm in the cache across screening calls.
type Featurizer struct {
	cache       *gocache.Cache
	cacheMetric *prometheus.CounterVec // labeled "hit"/"miss", may be nil
}

// New creates a Featurizer. cacheMetric may be nil.
func New(cacheTTL time.Duration, cacheMetric *prometheus.CounterVec) *Featurizer {
	return &Featurizer{
		cache:       gocache.New(cacheTTL, 2*cacheTTL),
		cacheMetric: cacheMetric,
	}
}

// Featurize parses, hydrogen-expands and featurizes a molecule. Parse
// failures wrap domain.ErrInvalidStructure.
func (f *Featurizer) Featurize(smilesText string) (*Graph, error) {
	if cached, ok := f.cache.Get(smilesText); ok {
		f.countCache("hit")
		return cached.(*Graph), nil
	}
	f.countCache("miss")

	mol, err := smiles.Parse(smilesText)
	if err != nil {
		return nil, fmt.Errorf("featurize %q: %w", smilesText, err)
	}

	g := FromMolecule(mol.AddHydrogens())
	f.cache.SetDefault(smilesText, g)
	return g, nil
}

// Validate checks that the text parses as a molecule without featurizing it.
func (f *Featurizer) Validate(smilesText string) error {
	if _, ok := f.cache.Get(smilesText); ok {
		return nil
	}
	if _, err := smiles.Parse(smilesText); err != nil {
		return fmt.Errorf("validate %q: %w", smilesText, err)
	}
	return nil
}

func (f *Featurizer) countCache(result string) {
	if f.cacheMetric != nil {
		f.cacheMetric.WithLabelValues(result).Inc()
	}
}
