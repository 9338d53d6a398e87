package inference

import "github.com/soluscan/soluscan/internal/chem/feature"

// Graphifier converts SMILES text into featurized molecular graphs.
type Graphifier interface {
	Featurize(smiles string) (*feature.Graph, error)
}

// Predictor runs a forward pass for one solute/solvent/temperature triple.
type Predictor interface {
	Predict(solute, solvent *feature.Graph, temperatureK float64) float64
	TrustedTempRange() (minK, maxK float64)
	Version() string
}
