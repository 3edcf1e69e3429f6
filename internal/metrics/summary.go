package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/episim/internal/epi"
)

// EndedThreshold is the absolute infected count below which the epidemic
// is considered over. Informational only.
const EndedThreshold = 1.0

// Summary holds the derived metrics of one trajectory.
type Summary struct {
	// Re is the effective reproduction number series, one value per
	// trajectory point: beta(t)/(gamma+mu) * S(t)/N.
	Re []float64

	PeakInfected float64
	PeakIndex    int
	PeakTime     float64

	// AttackRate is the cumulative fraction ever infected,
	// (N - S(t_n)) / N.
	AttackRate float64

	Deceased     float64
	DeceasedRate float64

	Ended bool
}

// Summarize derives metrics from a trajectory. The rates that produced
// the trajectory must be re-supplied; trajectories store no parameters.
func Summarize(tr *epi.Trajectory, beta epi.RateFunc, gamma, mu, n float64) (*Summary, error) {
	if tr.Len() == 0 {
		return nil, fmt.Errorf("summarize: %w", epi.ErrEmptyTrajectory)
	}
	if !tr.Consistent() {
		return nil, fmt.Errorf("summarize: series lengths differ: %w", epi.ErrEmptyTrajectory)
	}

	s := &Summary{Re: make([]float64, tr.Len())}

	outflow := gamma + mu
	for i, t := range tr.Times {
		contact := beta(t) * tr.S[i] / n
		if outflow == 0 {
			// Runaway-infection degenerate case: no recovery or
			// death means unbounded secondary infections while
			// contact persists.
			if contact > 0 {
				s.Re[i] = math.Inf(1)
			}
			continue
		}
		s.Re[i] = contact / outflow
	}

	for i, inf := range tr.I {
		if inf > s.PeakInfected {
			s.PeakInfected = inf
			s.PeakIndex = i
		}
	}
	s.PeakTime = tr.Times[s.PeakIndex]

	last := tr.Len() - 1
	s.AttackRate = (n - tr.S[last]) / n
	s.Deceased = tr.D[last]
	s.DeceasedRate = tr.D[last] / n
	s.Ended = tr.I[last] < EndedThreshold

	return s, nil
}

// ThresholdIndex returns the first index at which Re drops below 1, or -1
// if it never does. For constant beta this coincides with the infection
// peak (herd-immunity threshold).
func (s *Summary) ThresholdIndex() int {
	for i, re := range s.Re {
		if re < 1 {
			return i
		}
	}
	return -1
}

// Scalars flattens the summary for run metadata.
func (s *Summary) Scalars() map[string]float64 {
	ended := 0.0
	if s.Ended {
		ended = 1
	}
	return map[string]float64{
		"peak_infected": s.PeakInfected,
		"peak_time":     s.PeakTime,
		"attack_rate":   s.AttackRate,
		"deceased":      s.Deceased,
		"deceased_rate": s.DeceasedRate,
		"ended":         ended,
	}
}
