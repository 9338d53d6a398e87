package domain

// Temperature grid and ranking reference for solvent screening.
const (
	GridMinTempK  = 250.0
	GridMaxTempK  = 450.0
	GridStepK     = 10.0
	RankingTempK  = 300.0
	GridTempCount = 21 // 250..450 inclusive, step 10
	PanelSize     = 20
)

// TemperatureGrid returns the fixed heatmap temperature grid in kelvin.
func TemperatureGrid() []float64 {
	grid := make([]float64, 0, GridTempCount)
	for t := GridMinTempK; t <= GridMaxTempK; t += GridStepK {
		grid = append(grid, t)
	}
	return grid
}

// HeatmapMatrix is the dense (solvent x temperature) LogS matrix for one solute.
// Rows follow panel order, columns follow the temperature grid. Every cell is
// populated; a cell is NaN only when the underlying prediction failed.
type HeatmapMatrix struct {
	Solvents     []SolventPanelEntry
	Temperatures []float64
	Values       [][]float64 // [len(Solvents)][len(Temperatures)]
}

// RankingRow is one solvent ranked at the reference temperature.
type RankingRow struct {
	Rank          int
	SolventName   string
	SolventSMILES string
	PredictedLogS float64
}

// ScreenReport is the full outcome of screening one solute against the panel.
type ScreenReport struct {
	SoluteSMILES        string
	SoluteName          string
	RankingTemperatureK float64
	Rankings            []RankingRow
	Matrix              HeatmapMatrix
	StaticHeatmapPNG    []byte
	DynamicHeatmapPNG   []byte
}
