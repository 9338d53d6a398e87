package domain

// SolventPanelEntry is one fixed reference solvent.
type SolventPanelEntry struct {
	Name   string
	SMILES string
}

// solventPanel is the screening panel, ordered by dielectric constant.
// The model was trained against these 20 solvents; the set is immutable at runtime.
var solventPanel = []SolventPanelEntry{
	{Name: "n-hexane (ε = 1.88)", SMILES: "CCCCCC"},
	{Name: "1,4-dioxane (ε = 2.25)", SMILES: "C1COCCO1"},
	{Name: "toluene (ε = 2.38)", SMILES: "Cc1ccccc1"},
	{Name: "n-butyl acetate (ε = 5.01)", SMILES: "CCCCOC(=O)C"},
	{Name: "ethyl acetate (ε = 6.02)", SMILES: "CCOC(=O)C"},
	{Name: "methyl acetate (ε = 6.68)", SMILES: "COC(=O)C"},
	{Name: "THF (ε = 7.58)", SMILES: "C1CCOC1"},
	{Name: "n-pentanol (ε = 13.9)", SMILES: "CCCCCO"},
	{Name: "sec-butanol (ε = 16.3)", SMILES: "CCC(C)O"},
	{Name: "n-butanol (ε = 17.5)", SMILES: "CCCCO"},
	{Name: "isobutanol (ε = 17.9)", SMILES: "CC(C)CO"},
	{Name: "isopropanol (ε = 17.9)", SMILES: "CC(C)O"},
	{Name: "2-butanone (ε = 18.5)", SMILES: "CCC(=O)C"},
	{Name: "n-propanol (ε = 20.1)", SMILES: "CCCO"},
	{Name: "acetone (ε = 20.7)", SMILES: "CC(=O)C"},
	{Name: "ethanol (ε = 24.5)", SMILES: "CCO"},
	{Name: "methanol (ε = 32.7)", SMILES: "CO"},
	{Name: "DMF (ε = 36.7)", SMILES: "CN(C)C=O"},
	{Name: "acetonitrile (ε = 37.5)", SMILES: "CC#N"},
	{Name: "water (ε = 78.4)", SMILES: "O"},
}

// SolventPanel returns a copy of the fixed 20-solvent screening panel.
func SolventPanel() []SolventPanelEntry {
	panel := make([]SolventPanelEntry, len(solventPanel))
	copy(panel, solventPanel)
	return panel
}
