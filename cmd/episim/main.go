package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/episim/internal/epi"
	"github.com/san-kum/episim/internal/export"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/scenario"
	"github.com/san-kum/episim/internal/sim"
	"github.com/san-kum/episim/internal/storage"
	"github.com/san-kum/episim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	population  float64
	infected    float64
	recovered   float64
	beta        float64
	gamma       float64
	mu          float64
	days        float64
	dt          float64
	integrator  string
	configFile  string
	noMortality bool
	// beta sweep bounds
	betaFrom  float64
	betaTo    float64
	betaSteps int
	// optional gamma sweep bounds
	gammaFrom  float64
	gammaTo    float64
	gammaSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "episim",
		Short: "compartmental epidemic simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".episim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE:  listScenarios,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run's trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run's curves as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization and parameter tuning",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [scenario]",
		Short: "compare euler and rk4 on the same scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "sweep transmission (and optionally recovery) rates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepRates,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&betaFrom, "beta-from", 0.1, "sweep start for beta")
	sweepCmd.Flags().Float64Var(&betaTo, "beta-to", 0.7, "sweep end for beta")
	sweepCmd.Flags().IntVar(&betaSteps, "beta-steps", 7, "number of beta values")
	sweepCmd.Flags().Float64Var(&gammaFrom, "gamma-from", 0, "sweep start for gamma (0 = keep fixed)")
	sweepCmd.Flags().Float64Var(&gammaTo, "gamma-to", 0, "sweep end for gamma")
	sweepCmd.Flags().IntVar(&gammaSteps, "gamma-steps", 1, "number of gamma values")

	rootCmd.AddCommand(runCmd, scenariosCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, liveCmd, compareCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&population, "population", scenario.DefaultPopulation, "total population N")
	cmd.Flags().Float64Var(&infected, "infected", scenario.DefaultInfected, "initial infected I0")
	cmd.Flags().Float64Var(&recovered, "recovered", 0, "initial recovered R0")
	cmd.Flags().Float64Var(&beta, "beta", 0.3, "transmission rate")
	cmd.Flags().Float64Var(&gamma, "gamma", 0.05, "recovery rate")
	cmd.Flags().Float64Var(&mu, "mu", 0.02, "mortality rate")
	cmd.Flags().Float64Var(&days, "days", scenario.DefaultDuration, "simulated duration in days")
	cmd.Flags().Float64Var(&dt, "dt", scenario.DefaultDt, "timestep in days")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4)")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	cmd.Flags().BoolVar(&noMortality, "no-mortality", false, "force mu=0 (plain SIR)")
}

// buildConfig resolves the scenario from the positional arg, config file,
// and flags. Flags set explicitly on the command line win over both.
func buildConfig(cmd *cobra.Command, args []string) (scenario.Config, error) {
	name := scenario.Custom
	if len(args) > 0 {
		name = scenario.Name(args[0])
	}

	cfg, err := scenario.Resolve(name)
	if err != nil {
		return scenario.Config{}, err
	}

	if configFile != "" {
		cfg, err = scenario.Load(configFile)
		if err != nil {
			return scenario.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("population") {
		cfg.N = population
	}
	if cmd.Flags().Changed("infected") {
		cfg.I0 = infected
	}
	if cmd.Flags().Changed("recovered") {
		cfg.R0 = recovered
	}
	if cmd.Flags().Changed("beta") {
		cfg.Beta = beta
	}
	if cmd.Flags().Changed("gamma") {
		cfg.Gamma = gamma
	}
	if cmd.Flags().Changed("mu") {
		cfg.Mu = mu
	}
	if cmd.Flags().Changed("days") {
		cfg.Duration = days
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if noMortality {
		cfg.Mu = 0
	}

	if err := cfg.Validate(); err != nil {
		return scenario.Config{}, err
	}
	return cfg, nil
}

func getIntegrator(name string) (epi.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	integ, err := getIntegrator(integrator)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s scenario...\n", cfg.Scenario)
	start := time.Now()

	tr, err := sim.RunScenarioWith(context.Background(), cfg, integ)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	summary, err := metrics.Summarize(tr, cfg.BetaFunc(), cfg.Gamma, cfg.Mu, cfg.N)
	if err != nil {
		return err
	}

	runID, err := st.Save(string(cfg.Scenario), cfg.Dt, cfg.Duration, integrator, tr, summary.Scalars())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("points: %d\n\n", tr.Len())
	printSummary(tr, summary)

	return nil
}

func printSummary(tr *epi.Trajectory, s *metrics.Summary) {
	last := tr.Len() - 1
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "final susceptible\t%.0f\n", tr.S[last])
	fmt.Fprintf(w, "final infected\t%.0f\n", tr.I[last])
	fmt.Fprintf(w, "final recovered\t%.0f\n", tr.R[last])
	fmt.Fprintf(w, "final deceased\t%.0f (%.2f%%)\n", s.Deceased, s.DeceasedRate*100)
	fmt.Fprintf(w, "peak infection\t%.0f on day %.0f\n", s.PeakInfected, s.PeakTime)
	fmt.Fprintf(w, "attack rate\t%.2f%%\n", s.AttackRate*100)
	fmt.Fprintf(w, "epidemic ended\t%v\n", s.Ended)
	if i := s.ThresholdIndex(); i >= 0 {
		fmt.Fprintf(w, "Re below 1\tday %.0f\n", tr.Times[i])
	}
	w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tBETA\tGAMMA\tMU\tNOTES")
	for _, name := range scenario.List() {
		cfg, err := scenario.Resolve(name)
		if err != nil {
			return err
		}
		notes := ""
		if cfg.Vaccination != nil {
			notes = fmt.Sprintf("beta decays from day %.0f", cfg.Vaccination.Start)
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.3f\t%s\n", name, cfg.Beta, cfg.Gamma, cfg.Mu, notes)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDAYS\tDT\tINTEG\tPEAK\tATTACK")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%.2f\t%s\t%.0f\t%.1f%%\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Metrics["peak_infected"],
			run.Metrics["attack_rate"]*100,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", tr.Len())

	series := []struct {
		caption string
		data    []float64
	}{
		{"susceptible", tr.S},
		{"infected", tr.I},
		{"recovered", tr.R},
		{"deceased", tr.D},
	}

	for _, sr := range series {
		graph := asciigraph.Plot(sr.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "susceptible", "infected", "recovered", "deceased"}); err != nil {
		return err
	}
	for i := range tr.Times {
		row := []string{
			strconv.FormatFloat(tr.Times[i], 'f', 6, 64),
			strconv.FormatFloat(tr.S[i], 'f', 6, 64),
			strconv.FormatFloat(tr.I[i], 'f', 6, 64),
			strconv.FormatFloat(tr.R[i], 'f', 6, 64),
			strconv.FormatFloat(tr.D[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, meta.Scenario, meta.Integrator, meta.Dt, meta.Duration, tr, meta.Metrics)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to export")
	}
	return export.WriteSVG(os.Stdout, tr, tr.At(0).Sum())
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(cfg))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.2f, days=%.0f)\n\n", cfg.Scenario, cfg.Dt, cfg.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tPEAK\tPEAK DAY\tATTACK\tDECEASED\tTIME")

	for _, name := range []string{"euler", "rk4"} {
		integ, err := getIntegrator(name)
		if err != nil {
			return err
		}

		start := time.Now()
		tr, err := sim.RunScenarioWith(context.Background(), cfg, integ)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		s, err := metrics.Summarize(tr, cfg.BetaFunc(), cfg.Gamma, cfg.Mu, cfg.N)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.2f%%\t%.1f\t%v\n",
			name, s.PeakInfected, s.PeakTime, s.AttackRate*100, s.Deceased, elapsed)
	}
	return w.Flush()
}

func sweepRates(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	betas := rangeValues(betaFrom, betaTo, betaSteps)
	var gammas []float64
	if gammaSteps > 1 && gammaTo > 0 {
		gammas = rangeValues(gammaFrom, gammaTo, gammaSteps)
	}

	results := sim.Sweep(context.Background(), cfg, betas, gammas)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BETA\tGAMMA\tPEAK\tPEAK DAY\tATTACK\tDECEASED")
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(w, "%.3f\t%.3f\terror: %v\n", res.Config.Beta, res.Config.Gamma, res.Err)
			continue
		}
		s, err := metrics.Summarize(res.Trajectory, res.Config.BetaFunc(), res.Config.Gamma, res.Config.Mu, res.Config.N)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%.3f\t%.3f\t%.1f\t%.1f\t%.2f%%\t%.1f\n",
			res.Config.Beta, res.Config.Gamma, s.PeakInfected, s.PeakTime, s.AttackRate*100, s.Deceased)
	}
	return w.Flush()
}

func rangeValues(from, to float64, steps int) []float64 {
	if steps < 2 {
		return []float64{from}
	}
	vals := make([]float64, steps)
	step := (to - from) / float64(steps-1)
	for i := range vals {
		vals[i] = from + float64(i)*step
	}
	return vals
}
