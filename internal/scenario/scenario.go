package scenario

import (
	"fmt"
	"math"

	"github.com/san-kum/episim/internal/epi"
)

// Name identifies one of the closed set of scenarios.
type Name string

const (
	StrictLockdown         Name = "strict-lockdown"
	NoMeasures             Name = "no-measures"
	ProgressiveVaccination Name = "progressive-vaccination"
	Custom                 Name = "custom"
)

// Config is a resolved, validated parameter set for one run. Values are
// copied by value everywhere; the engine never mutates a Config.
type Config struct {
	Scenario Name    `yaml:"scenario"`
	N        float64 `yaml:"population"`
	I0       float64 `yaml:"initial_infected"`
	R0       float64 `yaml:"initial_recovered"`
	Beta     float64 `yaml:"beta"`
	Gamma    float64 `yaml:"gamma"`
	Mu       float64 `yaml:"mu"`
	Duration float64 `yaml:"duration"`
	Dt       float64 `yaml:"dt"`

	// Vaccination is set only for the progressive-vaccination
	// scenario; Beta then acts as the baseline rate beta0.
	Vaccination *Curve `yaml:"vaccination,omitempty"`
}

// Validate checks every field against its valid range. The first failing
// field is reported; nothing is clamped.
func (c Config) Validate() error {
	checks := []struct {
		field  string
		value  float64
		ok     bool
		reason string
	}{
		{"population", c.N, c.N >= 1, "must be at least 1"},
		{"dt", c.Dt, c.Dt > 0, "must be positive"},
		{"duration", c.Duration, c.Duration > 0, "must be positive"},
		{"dt", c.Dt, c.Dt <= c.Duration, "must not exceed duration"},
		{"initial_infected", c.I0, c.I0 >= 0, "must be non-negative"},
		{"initial_recovered", c.R0, c.R0 >= 0, "must be non-negative"},
		{"initial_infected", c.I0 + c.R0, c.I0+c.R0 <= c.N, "I0+R0 must not exceed population"},
		{"beta", c.Beta, c.Beta >= 0 && !math.IsNaN(c.Beta) && !math.IsInf(c.Beta, 0), "must be finite and non-negative"},
		{"gamma", c.Gamma, c.Gamma >= 0 && !math.IsNaN(c.Gamma) && !math.IsInf(c.Gamma, 0), "must be finite and non-negative"},
		{"mu", c.Mu, c.Mu >= 0 && !math.IsNaN(c.Mu) && !math.IsInf(c.Mu, 0), "must be finite and non-negative"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return &epi.ParameterError{Field: ch.field, Value: ch.value, Reason: ch.reason}
		}
	}
	if c.Vaccination != nil {
		if err := c.Vaccination.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// S0 is the derived initial susceptible count.
func (c Config) S0() float64 {
	return c.N - c.I0 - c.R0
}

// InitialState builds the compartment vector at t=0.
func (c Config) InitialState() epi.State {
	x := make(epi.State, epi.NumCompartments)
	x[epi.S] = c.S0()
	x[epi.I] = c.I0
	x[epi.R] = c.R0
	x[epi.D] = 0
	return x
}

// BetaFunc returns the transmission rate as a function of time: constant
// for fixed scenarios, beta0*(1-v(t)) when a vaccination curve is set.
func (c Config) BetaFunc() epi.RateFunc {
	if c.Vaccination == nil {
		return epi.ConstantRate(c.Beta)
	}
	curve := *c.Vaccination
	beta0 := c.Beta
	return func(t float64) float64 {
		return beta0 * (1 - curve.Coverage(t))
	}
}

// Resolve looks up a named scenario and returns its validated parameter
// set. Custom callers build a Config directly and call Validate.
func Resolve(name Name) (Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown scenario: %s", name)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// List returns the known scenario names in a fixed order.
func List() []Name {
	return []Name{StrictLockdown, NoMeasures, ProgressiveVaccination, Custom}
}
