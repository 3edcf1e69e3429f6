package epi

import "math"

// Compartment indices into a State vector.
const (
	S = iota
	I
	R
	D
	NumCompartments
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sum returns the total population across all compartments.
func (s State) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// RateFunc is a time-dependent rate coefficient. Constant rates wrap a
// fixed value; the vaccination scenario supplies a decaying transmission
// rate.
type RateFunc func(t float64) float64

func ConstantRate(v float64) RateFunc {
	return func(float64) float64 { return v }
}

// System defines a compartmental ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// Integrator advances a state vector by one fixed time step.
type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// Trajectory holds the full output of one simulation run: the time grid
// and one parallel series per compartment. It stores no parameters; the
// rates used to produce it must be re-supplied to derive metrics.
type Trajectory struct {
	Times []float64
	S     []float64
	I     []float64
	R     []float64
	D     []float64
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times: make([]float64, 0, capacity),
		S:     make([]float64, 0, capacity),
		I:     make([]float64, 0, capacity),
		R:     make([]float64, 0, capacity),
		D:     make([]float64, 0, capacity),
	}
}

func (tr *Trajectory) Append(t float64, x State) {
	tr.Times = append(tr.Times, t)
	tr.S = append(tr.S, x[S])
	tr.I = append(tr.I, x[I])
	tr.R = append(tr.R, x[R])
	tr.D = append(tr.D, x[D])
}

func (tr *Trajectory) Len() int {
	if tr == nil {
		return 0
	}
	return len(tr.Times)
}

// Consistent reports whether all series share the time grid's length.
func (tr *Trajectory) Consistent() bool {
	if tr == nil {
		return false
	}
	n := len(tr.Times)
	return len(tr.S) == n && len(tr.I) == n && len(tr.R) == n && len(tr.D) == n
}

// At reconstructs the state vector at point i.
func (tr *Trajectory) At(i int) State {
	return State{tr.S[i], tr.I[i], tr.R[i], tr.D[i]}
}
