// Package epi provides core primitives for compartmental epidemic
// simulation.
//
// The package defines the fundamental interfaces and types shared by the
// engine:
//
//   - [State]: compartment vector (S, I, R, D)
//   - [System]: interface for the governing ODEs (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [RateFunc]: time-dependent rate coefficient
//   - [Trajectory]: full time-series output of one run
//
// # Example
//
//	sys := model.NewSIRD(1000, 0.4, 0.1, 0.02)
//	integ := integrators.NewRK4()
//	s := sim.New(sys, integ, 1000)
//	tr, _ := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Trajectories are produced whole by a single run and are read-only
// afterward. Simulator instances are NOT thread-safe; concurrent sweeps
// construct one simulator per goroutine.
package epi
