package sim

import (
	"context"
	"sync"

	"github.com/san-kum/episim/internal/epi"
	"github.com/san-kum/episim/internal/scenario"
)

// SweepResult pairs a scenario variant with its trajectory.
type SweepResult struct {
	Config     scenario.Config
	Trajectory *epi.Trajectory
	Err        error
}

// Sweep runs the base scenario once per (beta, gamma) pair, concurrently.
// Each run gets its own simulator; results come back in grid order
// (betas outer, gammas inner) regardless of completion order.
func Sweep(ctx context.Context, base scenario.Config, betas, gammas []float64) []SweepResult {
	if len(gammas) == 0 {
		gammas = []float64{base.Gamma}
	}

	results := make([]SweepResult, len(betas)*len(gammas))

	var wg sync.WaitGroup
	for bi, beta := range betas {
		for gi, gamma := range gammas {
			wg.Add(1)
			go func(idx int, beta, gamma float64) {
				defer wg.Done()

				cfg := base
				cfg.Beta = beta
				cfg.Gamma = gamma

				tr, err := RunScenario(ctx, cfg)
				results[idx] = SweepResult{Config: cfg, Trajectory: tr, Err: err}
			}(bi*len(gammas)+gi, beta, gamma)
		}
	}
	wg.Wait()

	return results
}
