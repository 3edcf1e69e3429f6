package model

import (
	"fmt"

	"github.com/san-kum/episim/internal/epi"
)

// SIRD is the compartmental epidemic model:
//
//	dS/dt = -beta(t)*S*I/N
//	dI/dt =  beta(t)*S*I/N - gamma*I - mu*I
//	dR/dt =  gamma*I
//	dD/dt =  mu*I
//
// With mu=0 it reduces to plain SIR. Beta is a function of time to
// support the progressive-vaccination scenario; fixed scenarios use a
// constant rate.
type SIRD struct {
	N     float64
	Beta  epi.RateFunc
	Gamma float64
	Mu    float64
}

func NewSIRD(n, beta, gamma, mu float64) *SIRD {
	return &SIRD{N: n, Beta: epi.ConstantRate(beta), Gamma: gamma, Mu: mu}
}

// NewSIRDVarying builds a model with a time-varying transmission rate.
func NewSIRDVarying(n float64, beta epi.RateFunc, gamma, mu float64) *SIRD {
	return &SIRD{N: n, Beta: beta, Gamma: gamma, Mu: mu}
}

func (m *SIRD) Dim() int {
	return epi.NumCompartments
}

func (m *SIRD) Derive(x epi.State, t float64) epi.State {
	s, i := x[epi.S], x[epi.I]

	infection := m.Beta(t) * s * i / m.N
	recovery := m.Gamma * i
	death := m.Mu * i

	return epi.State{
		-infection,
		infection - recovery - death,
		recovery,
		death,
	}
}

func (m *SIRD) GetParams() map[string]float64 {
	return map[string]float64{
		"gamma": m.Gamma,
		"mu":    m.Mu,
	}
}

func (m *SIRD) SetParam(name string, value float64) error {
	switch name {
	case "gamma":
		m.Gamma = value
	case "mu":
		m.Mu = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
