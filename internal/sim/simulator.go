package sim

import (
	"context"
	"math"

	"github.com/san-kum/episim/internal/epi"
)

const DefaultConservationTol = 1e-6

type Config struct {
	Dt       float64
	Duration float64

	// ConservationTol is the relative tolerance on total population
	// after clamping. Zero means DefaultConservationTol.
	ConservationTol float64
}

// Simulator advances a compartmental system over a fixed time grid.
// Each run is a pure function of its inputs: identical configs produce
// bit-identical trajectories.
type Simulator struct {
	sys        epi.System
	integrator epi.Integrator
	population float64
}

func New(sys epi.System, integrator epi.Integrator, population float64) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		population: population,
	}
}

// Run integrates from x0 over [0, Duration]. The grid has
// ceil(Duration/Dt)+1 points; the final step is shortened so the last
// point lands exactly on Duration.
//
// After every step each compartment is clamped to zero from below and the
// state is rescaled so the compartments sum to the population total.
// Discretization cannot make counts negative or leak people; it can only
// lose accuracy. If the pre-rescale total drifts beyond the tolerance on
// two consecutive steps, the step size is too coarse for the rates and
// Run fails with an InstabilityError.
func (s *Simulator) Run(ctx context.Context, x0 epi.State, cfg Config) (*epi.Trajectory, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	tol := cfg.ConservationTol
	if tol == 0 {
		tol = DefaultConservationTol
	}

	steps := int(math.Ceil(cfg.Duration / cfg.Dt))
	tr := epi.NewTrajectory(steps + 1)

	x := x0.Clone()
	t := 0.0
	tr.Append(t, x)

	violations := 0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return tr, ctx.Err()
		default:
		}

		dt := cfg.Dt
		next := float64(i+1) * cfg.Dt
		if next > cfg.Duration {
			next = cfg.Duration
			dt = cfg.Duration - t
		}

		x = s.integrator.Step(s.sys, x, t, dt)

		for j := range x {
			if x[j] < 0 {
				x[j] = 0
			}
		}

		total := x.Sum()
		drift := math.Abs(total-s.population) / s.population
		if drift > tol {
			violations++
			if violations >= 2 {
				return nil, &epi.InstabilityError{Step: i, Time: next, Drift: drift}
			}
		} else {
			violations = 0
		}

		if total > 0 && total != s.population {
			scale := s.population / total
			for j := range x {
				x[j] *= scale
			}
		}

		t = next
		tr.Append(t, x)
	}

	return tr, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return &epi.ParameterError{Field: "dt", Value: cfg.Dt, Reason: "must be positive"}
	}
	if cfg.Duration <= 0 {
		return &epi.ParameterError{Field: "duration", Value: cfg.Duration, Reason: "must be positive"}
	}
	if cfg.Dt > cfg.Duration {
		return &epi.ParameterError{Field: "dt", Value: cfg.Dt, Reason: "must not exceed duration"}
	}
	return nil
}
