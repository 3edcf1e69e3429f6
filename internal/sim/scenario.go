package sim

import (
	"context"

	"github.com/san-kum/episim/internal/epi"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/model"
	"github.com/san-kum/episim/internal/scenario"
)

// RunScenario is the engine's boundary call: validate a scenario config,
// assemble the SIRD system with the RK4 integrator, and run it.
func RunScenario(ctx context.Context, cfg scenario.Config) (*epi.Trajectory, error) {
	return RunScenarioWith(ctx, cfg, integrators.NewRK4())
}

// RunScenarioWith runs a scenario under a caller-chosen integrator.
func RunScenarioWith(ctx context.Context, cfg scenario.Config, integ epi.Integrator) (*epi.Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sys := model.NewSIRDVarying(cfg.N, cfg.BetaFunc(), cfg.Gamma, cfg.Mu)
	s := New(sys, integ, cfg.N)
	return s.Run(ctx, cfg.InitialState(), Config{Dt: cfg.Dt, Duration: cfg.Duration})
}
