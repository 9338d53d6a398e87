package chi

import (
	"math"

	"github.com/soluscan/soluscan/internal/domain"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeInvalidStructure   errorCode = "invalid_structure"
	codeInvalidTemperature errorCode = "invalid_temperature"
	codeBatchTooLarge      errorCode = "batch_too_large"
	codeModelUnavailable   errorCode = "model_unavailable"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type predictQuery struct {
	SoluteSMILES  string  `json:"solute_smiles"`
	SolventSMILES string  `json:"solvent_smiles"`
	TemperatureK  float64 `json:"temperature_k"`
}

type predictRequest struct {
	Queries []predictQuery `json:"queries"`
}

// predictResult carries PredictedLogS as a pointer: a failed row serializes as
// null, since JSON has no NaN.
type predictResult struct {
	PredictedLogS *float64 `json:"predicted_logs"`
	TemperatureK  float64  `json:"temperature_k"`
	Warning       string   `json:"warning,omitempty"`
}

type predictResponse struct {
	Results      []predictResult `json:"results"`
	ModelVersion string          `json:"model_version"`
}

type screenRequest struct {
	SoluteSMILES string `json:"solute_smiles"`
	SoluteName   string `json:"solute_name,omitempty"`
}

type rankingRow struct {
	Rank          int      `json:"rank"`
	SolventName   string   `json:"solvent_name"`
	SolventSMILES string   `json:"solvent_smiles"`
	PredictedLogS *float64 `json:"predicted_logs"`
}

type heatmapMatrix struct {
	Solvents      []solventEntry `json:"solvents"`
	TemperaturesK []float64      `json:"temperatures_k"`
	Values        [][]*float64   `json:"values"`
}

type solventEntry struct {
	Name   string `json:"name"`
	SMILES string `json:"smiles"`
}

type screenResponse struct {
	SoluteSMILES        string        `json:"solute_smiles"`
	SoluteName          string        `json:"solute_name,omitempty"`
	RankingTemperatureK float64       `json:"ranking_temperature_k"`
	Rankings            []rankingRow  `json:"rankings"`
	Matrix              heatmapMatrix `json:"matrix"`
	StaticHeatmapPNG    []byte        `json:"static_heatmap_png"`
	DynamicHeatmapPNG   []byte        `json:"dynamic_heatmap_png"`
}

type healthResponse struct {
	Status       string            `json:"status"`
	ModelVersion string            `json:"model_version,omitempty"`
	Checks       map[string]string `json:"checks"`
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func predictResultToDTO(r domain.PredictionResult) predictResult {
	return predictResult{
		PredictedLogS: finitePtr(r.PredictedLogS),
		TemperatureK:  r.TemperatureK,
		Warning:       r.Warning,
	}
}

func screenReportToDTO(rep domain.ScreenReport) screenResponse {
	rankings := make([]rankingRow, len(rep.Rankings))
	for i, r := range rep.Rankings {
		rankings[i] = rankingRow{
			Rank:          r.Rank,
			SolventName:   r.SolventName,
			SolventSMILES: r.SolventSMILES,
			PredictedLogS: finitePtr(r.PredictedLogS),
		}
	}

	solvents := make([]solventEntry, len(rep.Matrix.Solvents))
	for i, s := range rep.Matrix.Solvents {
		solvents[i] = solventEntry{Name: s.Name, SMILES: s.SMILES}
	}
	values := make([][]*float64, len(rep.Matrix.Values))
	for i, row := range rep.Matrix.Values {
		out := make([]*float64, len(row))
		for j, v := range row {
			out[j] = finitePtr(v)
		}
		values[i] = out
	}

	return screenResponse{
		SoluteSMILES:        rep.SoluteSMILES,
		SoluteName:          rep.SoluteName,
		RankingTemperatureK: rep.RankingTemperatureK,
		Rankings:            rankings,
		Matrix: heatmapMatrix{
			Solvents:      solvents,
			TemperaturesK: rep.Matrix.Temperatures,
			Values:        values,
		},
		StaticHeatmapPNG:  rep.StaticHeatmapPNG,
		DynamicHeatmapPNG: rep.DynamicHeatmapPNG,
	}
}
