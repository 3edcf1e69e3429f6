package metrics_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/episim/internal/epi"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/scenario"
	"github.com/san-kum/episim/internal/sim"
)

func makeTrajectory(points ...[5]float64) *epi.Trajectory {
	tr := epi.NewTrajectory(len(points))
	for _, p := range points {
		tr.Append(p[0], epi.State{p[1], p[2], p[3], p[4]})
	}
	return tr
}

var _ = Describe("Summarize", func() {
	const n = 1000.0

	It("rejects an empty trajectory", func() {
		_, err := metrics.Summarize(epi.NewTrajectory(0), epi.ConstantRate(0.4), 0.1, 0, n)
		Expect(err).To(MatchError(epi.ErrEmptyTrajectory))
	})

	It("rejects mismatched series lengths", func() {
		tr := makeTrajectory([5]float64{0, 999, 1, 0, 0})
		tr.I = append(tr.I, 5)

		_, err := metrics.Summarize(tr, epi.ConstantRate(0.4), 0.1, 0, n)
		Expect(err).To(MatchError(epi.ErrEmptyTrajectory))
	})

	It("computes the effective reproduction number series", func() {
		tr := makeTrajectory(
			[5]float64{0, 1000, 0, 0, 0},
			[5]float64{1, 500, 300, 150, 50},
		)

		s, err := metrics.Summarize(tr, epi.ConstantRate(0.4), 0.1, 0.1, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Re).To(HaveLen(2))
		// beta/(gamma+mu) * S/N = 0.4/0.2 * 1 = 2 at t=0
		Expect(s.Re[0]).To(BeNumerically("~", 2.0, 1e-12))
		Expect(s.Re[1]).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("evaluates a time-varying beta at each grid point", func() {
		tr := makeTrajectory(
			[5]float64{0, 1000, 0, 0, 0},
			[5]float64{1, 1000, 0, 0, 0},
		)
		beta := func(t float64) float64 { return 0.4 - 0.2*t }

		s, err := metrics.Summarize(tr, beta, 0.1, 0.1, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Re[0]).To(BeNumerically("~", 2.0, 1e-12))
		Expect(s.Re[1]).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("reports infinite Re in the runaway case", func() {
		tr := makeTrajectory([5]float64{0, 999, 1, 0, 0})

		s, err := metrics.Summarize(tr, epi.ConstantRate(0.4), 0, 0, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(s.Re[0], 1)).To(BeTrue())
	})

	It("finds the peak and keeps the first occurrence on ties", func() {
		tr := makeTrajectory(
			[5]float64{0, 900, 100, 0, 0},
			[5]float64{1, 700, 300, 0, 0},
			[5]float64{2, 400, 300, 300, 0},
			[5]float64{3, 400, 100, 500, 0},
		)

		s, err := metrics.Summarize(tr, epi.ConstantRate(0.4), 0.1, 0, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.PeakInfected).To(Equal(300.0))
		Expect(s.PeakIndex).To(Equal(1))
		Expect(s.PeakTime).To(Equal(1.0))
	})

	It("derives final attack rate and death toll", func() {
		tr := makeTrajectory(
			[5]float64{0, 999, 1, 0, 0},
			[5]float64{1, 100, 0.5, 879.5, 20},
		)

		s, err := metrics.Summarize(tr, epi.ConstantRate(0.4), 0.1, 0.01, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.AttackRate).To(BeNumerically("~", 0.9, 1e-12))
		Expect(s.Deceased).To(Equal(20.0))
		Expect(s.DeceasedRate).To(BeNumerically("~", 0.02, 1e-12))
		Expect(s.Ended).To(BeTrue())
	})

	It("flags an ongoing epidemic", func() {
		tr := makeTrajectory([5]float64{0, 500, 400, 100, 0})

		s, err := metrics.Summarize(tr, epi.ConstantRate(0.4), 0.1, 0, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Ended).To(BeFalse())
	})

	It("flattens scalars for run metadata", func() {
		tr := makeTrajectory(
			[5]float64{0, 999, 1, 0, 0},
			[5]float64{1, 900, 0.2, 98.8, 1},
		)

		s, err := metrics.Summarize(tr, epi.ConstantRate(0.4), 0.1, 0.01, n)
		Expect(err).NotTo(HaveOccurred())

		scalars := s.Scalars()
		Expect(scalars).To(HaveKey("peak_infected"))
		Expect(scalars["attack_rate"]).To(BeNumerically("~", 0.1, 1e-12))
		Expect(scalars["ended"]).To(Equal(1.0))
	})
})

var _ = Describe("ThresholdIndex", func() {
	It("crosses 1 within a step of the infection peak", func() {
		cfg := scenario.Config{
			Scenario: scenario.Custom,
			N:        1000, I0: 1,
			Beta: 0.4, Gamma: 0.1, Mu: 0,
			Duration: 160, Dt: 1,
		}

		tr, err := sim.RunScenario(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		s, err := metrics.Summarize(tr, cfg.BetaFunc(), cfg.Gamma, cfg.Mu, cfg.N)
		Expect(err).NotTo(HaveOccurred())

		cross := s.ThresholdIndex()
		Expect(cross).To(BeNumerically(">", 0))
		// Herd-immunity threshold: Re falls through 1 as infection
		// peaks.
		Expect(math.Abs(float64(cross - s.PeakIndex))).To(BeNumerically("<=", 2))
	})

	It("returns -1 when Re never falls below 1", func() {
		tr := makeTrajectory(
			[5]float64{0, 1000, 0, 0, 0},
			[5]float64{1, 990, 10, 0, 0},
		)

		s, err := metrics.Summarize(tr, epi.ConstantRate(0.8), 0.1, 0, 1000)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ThresholdIndex()).To(Equal(-1))
	})
})
