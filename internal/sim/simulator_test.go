package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/episim/internal/epi"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/model"
	"github.com/san-kum/episim/internal/scenario"
)

func referenceConfig() scenario.Config {
	// R0_basic = beta/gamma = 4: near-total eventual infection.
	return scenario.Config{
		Scenario: scenario.Custom,
		N:        1000, I0: 1, R0: 0,
		Beta: 0.4, Gamma: 0.1, Mu: 0,
		Duration: 160, Dt: 1,
	}
}

func mustRun(t *testing.T, cfg scenario.Config) *epi.Trajectory {
	t.Helper()
	tr, err := RunScenario(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return tr
}

func TestTrajectoryGrid(t *testing.T) {
	cfg := referenceConfig()
	tr := mustRun(t, cfg)

	if tr.Len() != 161 {
		t.Errorf("expected 161 points, got %d", tr.Len())
	}
	if tr.Times[0] != 0 {
		t.Errorf("first time = %g, want 0", tr.Times[0])
	}
	if tr.Times[tr.Len()-1] != 160 {
		t.Errorf("last time = %g, want 160", tr.Times[tr.Len()-1])
	}
	if !tr.Consistent() {
		t.Error("series lengths differ")
	}
}

func TestTrajectoryGridPartialLastStep(t *testing.T) {
	cfg := referenceConfig()
	cfg.Duration = 10.5
	cfg.Dt = 1
	tr := mustRun(t, cfg)

	// ceil(10.5/1)+1 points, last one clamped to the duration.
	if tr.Len() != 12 {
		t.Errorf("expected 12 points, got %d", tr.Len())
	}
	if tr.Times[tr.Len()-1] != 10.5 {
		t.Errorf("last time = %g, want 10.5", tr.Times[tr.Len()-1])
	}
}

func TestConservation(t *testing.T) {
	cfg := referenceConfig()
	cfg.Mu = 0.02
	tr := mustRun(t, cfg)

	for i := range tr.Times {
		total := tr.S[i] + tr.I[i] + tr.R[i] + tr.D[i]
		if math.Abs(total-cfg.N)/cfg.N > 1e-6 {
			t.Fatalf("conservation violated at t=%g: total=%g", tr.Times[i], total)
		}
	}
}

func TestNonNegativity(t *testing.T) {
	cfg := referenceConfig()
	cfg.Mu = 0.02
	tr := mustRun(t, cfg)

	for i := range tr.Times {
		for _, v := range []float64{tr.S[i], tr.I[i], tr.R[i], tr.D[i]} {
			if v < 0 {
				t.Fatalf("negative compartment at t=%g: %g", tr.Times[i], v)
			}
		}
	}
}

func TestMonotoneRecoveredDeceased(t *testing.T) {
	cfg := referenceConfig()
	cfg.Mu = 0.02
	tr := mustRun(t, cfg)

	for i := 1; i < tr.Len(); i++ {
		if tr.R[i] < tr.R[i-1]-1e-9 {
			t.Fatalf("recovered decreased at t=%g: %g -> %g", tr.Times[i], tr.R[i-1], tr.R[i])
		}
		if tr.D[i] < tr.D[i-1]-1e-9 {
			t.Fatalf("deceased decreased at t=%g: %g -> %g", tr.Times[i], tr.D[i-1], tr.D[i])
		}
	}
}

func TestZeroTransmission(t *testing.T) {
	cfg := referenceConfig()
	cfg.Beta = 0
	cfg.I0 = 100
	cfg.Mu = 0.05
	tr := mustRun(t, cfg)

	s0 := cfg.S0()
	for i := range tr.Times {
		if math.Abs(tr.S[i]-s0) > 1e-9*s0 {
			t.Fatalf("susceptible changed with beta=0 at t=%g: %g", tr.Times[i], tr.S[i])
		}
	}
	for i := 1; i < tr.Len(); i++ {
		if tr.I[i] > tr.I[i-1]+1e-9 {
			t.Fatalf("infected grew with beta=0 at t=%g", tr.Times[i])
		}
	}
}

func TestNoInitialInfected(t *testing.T) {
	cfg := referenceConfig()
	cfg.I0 = 0
	cfg.R0 = 100
	tr := mustRun(t, cfg)

	for i := range tr.Times {
		if tr.I[i] != 0 || tr.D[i] != 0 {
			t.Fatalf("epidemic appeared from nothing at t=%g: I=%g D=%g", tr.Times[i], tr.I[i], tr.D[i])
		}
		if tr.S[i] != 900 || tr.R[i] != 100 {
			t.Fatalf("state drifted at t=%g: S=%g R=%g", tr.Times[i], tr.S[i], tr.R[i])
		}
	}
}

func TestRunawayInfectionIsValid(t *testing.T) {
	// gamma=mu=0: infected can only grow.
	cfg := referenceConfig()
	cfg.Gamma = 0
	cfg.Mu = 0
	tr := mustRun(t, cfg)

	for i := 1; i < tr.Len(); i++ {
		if tr.I[i] < tr.I[i-1]-1e-9 {
			t.Fatalf("infected decreased at t=%g with no outflow", tr.Times[i])
		}
	}
}

func TestReferenceScenarioSummary(t *testing.T) {
	cfg := referenceConfig()
	tr := mustRun(t, cfg)

	peak := 0.0
	peakIdx := 0
	for i, v := range tr.I {
		if v > peak {
			peak = v
			peakIdx = i
		}
	}

	if peak <= 200 {
		t.Errorf("peak infected = %g, want > 200", peak)
	}
	peakTime := tr.Times[peakIdx]
	if peakTime < 24 || peakTime > 44 {
		t.Errorf("peak time = %g, want within [24, 44]", peakTime)
	}

	attack := (cfg.N - tr.S[tr.Len()-1]) / cfg.N
	if attack <= 0.9 {
		t.Errorf("attack rate = %g, want > 0.9", attack)
	}

	if tr.D[tr.Len()-1] != 0 {
		t.Errorf("deceased = %g with mu=0", tr.D[tr.Len()-1])
	}
}

func TestIdempotence(t *testing.T) {
	cfg := referenceConfig()
	a := mustRun(t, cfg)
	b := mustRun(t, cfg)

	if a.Len() != b.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Times {
		if a.S[i] != b.S[i] || a.I[i] != b.I[i] || a.R[i] != b.R[i] || a.D[i] != b.D[i] {
			t.Fatalf("trajectories differ at index %d", i)
		}
	}
}

func TestVaccinationLowersAttackRate(t *testing.T) {
	base := scenario.Config{
		Scenario: scenario.Custom,
		N:        1000, I0: 1,
		Beta: 0.5, Gamma: 0.15, Mu: 0.015,
		Duration: 160, Dt: 0.1,
	}
	vacc := base
	vacc.Scenario = scenario.ProgressiveVaccination
	vacc.Vaccination = &scenario.Curve{Start: 30, Rate: 0.01, MaxCoverage: 0.9}

	trBase := mustRun(t, base)
	trVacc := mustRun(t, vacc)

	attackBase := (base.N - trBase.S[trBase.Len()-1]) / base.N
	attackVacc := (vacc.N - trVacc.S[trVacc.Len()-1]) / vacc.N

	if attackVacc >= attackBase {
		t.Errorf("vaccination did not lower attack rate: %g vs %g", attackVacc, attackBase)
	}
}

func TestInvalidConfig(t *testing.T) {
	sys := model.NewSIRD(1000, 0.3, 0.1, 0)
	s := New(sys, integrators.NewRK4(), 1000)
	x0 := epi.State{999, 1, 0, 0}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 10}},
		{"negative dt", Config{Dt: -1, Duration: 10}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"dt exceeds duration", Config{Dt: 20, Duration: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), x0, tt.cfg)
			if !errors.Is(err, epi.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

// leakySystem violates conservation on purpose: its derivatives drain
// people out of the population entirely.
type leakySystem struct{}

func (leakySystem) Dim() int { return epi.NumCompartments }

func (leakySystem) Derive(x epi.State, t float64) epi.State {
	return epi.State{-x[epi.S], 0, 0, 0}
}

func TestInstabilityDetection(t *testing.T) {
	s := New(leakySystem{}, integrators.NewEuler(), 1000)
	x0 := epi.State{1000, 0, 0, 0}

	_, err := s.Run(context.Background(), x0, Config{Dt: 0.5, Duration: 10})
	if err == nil {
		t.Fatal("expected instability error")
	}
	if !errors.Is(err, epi.ErrUnstable) {
		t.Errorf("expected ErrUnstable, got %v", err)
	}

	var ierr *epi.InstabilityError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InstabilityError, got %T", err)
	}
	if ierr.Drift <= 0 {
		t.Errorf("drift not recorded: %+v", ierr)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sys := model.NewSIRD(1000, 0.3, 0.1, 0)
	s := New(sys, integrators.NewRK4(), 1000)

	tr, err := s.Run(ctx, epi.State{999, 1, 0, 0}, Config{Dt: 0.1, Duration: 100})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if tr.Len() != 1 {
		t.Errorf("expected only the initial point, got %d", tr.Len())
	}
}

func TestSweepGridOrder(t *testing.T) {
	base := referenceConfig()
	base.Duration = 20

	betas := []float64{0.2, 0.4}
	gammas := []float64{0.1, 0.2}

	results := Sweep(context.Background(), base, betas, gammas)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	want := []struct{ beta, gamma float64 }{
		{0.2, 0.1}, {0.2, 0.2}, {0.4, 0.1}, {0.4, 0.2},
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("sweep run %d failed: %v", i, res.Err)
		}
		if res.Config.Beta != want[i].beta || res.Config.Gamma != want[i].gamma {
			t.Errorf("result %d: beta=%g gamma=%g, want %g/%g",
				i, res.Config.Beta, res.Config.Gamma, want[i].beta, want[i].gamma)
		}
		if res.Trajectory.Len() == 0 {
			t.Errorf("result %d has empty trajectory", i)
		}
	}
}
