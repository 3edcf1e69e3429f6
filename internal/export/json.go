package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/episim/internal/epi"
)

type RunData struct {
	Scenario    string             `json:"scenario"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Points      int                `json:"points"`
	Times       []float64          `json:"times"`
	Susceptible []float64          `json:"susceptible"`
	Infected    []float64          `json:"infected"`
	Recovered   []float64          `json:"recovered"`
	Deceased    []float64          `json:"deceased"`
	Metrics     map[string]float64 `json:"metrics"`
}

func WriteJSON(w io.Writer, scenarioName, integrator string, dt, duration float64, tr *epi.Trajectory, metrics map[string]float64) error {
	data := RunData{
		Scenario:    scenarioName,
		Integrator:  integrator,
		Dt:          dt,
		Duration:    duration,
		Points:      tr.Len(),
		Times:       tr.Times,
		Susceptible: tr.S,
		Infected:    tr.I,
		Recovered:   tr.R,
		Deceased:    tr.D,
		Metrics:     metrics,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
