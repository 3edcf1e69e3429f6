package scenario

const (
	DefaultPopulation = 1000.0
	DefaultInfected   = 1.0
	DefaultDuration   = 160.0
	DefaultDt         = 0.1
)

var presets = map[Name]Config{
	StrictLockdown: {
		Scenario: StrictLockdown,
		N:        DefaultPopulation, I0: DefaultInfected,
		Beta: 0.2, Gamma: 0.2, Mu: 0.01,
		Duration: DefaultDuration, Dt: DefaultDt,
	},
	NoMeasures: {
		Scenario: NoMeasures,
		N:        DefaultPopulation, I0: DefaultInfected,
		Beta: 0.7, Gamma: 0.1, Mu: 0.02,
		Duration: DefaultDuration, Dt: DefaultDt,
	},
	ProgressiveVaccination: {
		Scenario: ProgressiveVaccination,
		N:        DefaultPopulation, I0: DefaultInfected,
		Beta: 0.5, Gamma: 0.15, Mu: 0.015,
		Duration: DefaultDuration, Dt: DefaultDt,
		Vaccination: &Curve{Start: 30, Rate: 0.01, MaxCoverage: 0.9},
	},
	Custom: {
		Scenario: Custom,
		N:        DefaultPopulation, I0: DefaultInfected,
		Beta: 0.3, Gamma: 0.05, Mu: 0.02,
		Duration: DefaultDuration, Dt: DefaultDt,
	},
}
