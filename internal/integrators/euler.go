package integrators

import "github.com/san-kum/episim/internal/epi"

// Euler is forward Euler. Kept for method comparison; it diverges
// measurably from RK4 near the infection peak at coarse steps.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys epi.System, x epi.State, t, dt float64) epi.State {
	dx := sys.Derive(x, t)
	result := make(epi.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
