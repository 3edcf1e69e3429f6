package scenario

import (
	"math"

	"github.com/san-kum/episim/internal/epi"
)

// Curve is a vaccinated-fraction ramp: zero before Start, then rising by
// Rate per day up to MaxCoverage. Coverage is monotone non-decreasing and
// bounded in [0,1].
type Curve struct {
	Start       float64 `yaml:"start"`
	Rate        float64 `yaml:"rate"`
	MaxCoverage float64 `yaml:"max_coverage"`
}

func (c Curve) Coverage(t float64) float64 {
	if t <= c.Start {
		return 0
	}
	v := c.Rate * (t - c.Start)
	return math.Min(v, c.MaxCoverage)
}

func (c Curve) Validate() error {
	switch {
	case c.Start < 0 || math.IsNaN(c.Start) || math.IsInf(c.Start, 0):
		return &epi.ParameterError{Field: "vaccination.start", Value: c.Start, Reason: "must be finite and non-negative"}
	case c.Rate < 0 || math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0):
		return &epi.ParameterError{Field: "vaccination.rate", Value: c.Rate, Reason: "must be finite and non-negative"}
	case c.MaxCoverage < 0 || c.MaxCoverage > 1 || math.IsNaN(c.MaxCoverage):
		return &epi.ParameterError{Field: "vaccination.max_coverage", Value: c.MaxCoverage, Reason: "must be within [0,1]"}
	}
	return nil
}
