package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/episim/internal/epi"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/model"
	"github.com/san-kum/episim/internal/scenario"
)

const (
	graphWidth      = 70
	graphHeight     = 10
	historyCapacity = 600
)

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps a scenario live and renders infection and Re curves.
// Parameters tune via tab/arrow keys; every adjustment rebuilds the
// system, so the engine itself never sees mutable state.
type Model struct {
	cfg     scenario.Config
	initial scenario.Config

	sys   *model.SIRD
	integ epi.Integrator
	state epi.State
	t     float64

	infHistory []float64
	reHistory  []float64

	running   bool
	paramKeys []string
	selected  int
}

func NewModel(cfg scenario.Config) Model {
	m := Model{
		cfg:        cfg,
		initial:    cfg,
		integ:      integrators.NewRK4(),
		paramKeys:  []string{"beta", "gamma", "mu"},
		running:    true,
		infHistory: make([]float64, 0, historyCapacity),
		reHistory:  make([]float64, 0, historyCapacity),
	}
	m.rebuild()
	return m
}

// rebuild constructs a fresh system from the current config and restarts
// the trajectory.
func (m *Model) rebuild() {
	m.sys = model.NewSIRDVarying(m.cfg.N, m.cfg.BetaFunc(), m.cfg.Gamma, m.cfg.Mu)
	m.state = m.cfg.InitialState()
	m.t = 0
	m.infHistory = m.infHistory[:0]
	m.reHistory = m.reHistory[:0]
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.cfg = m.initial
			m.rebuild()
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running && m.t < m.cfg.Duration {
			m.step()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) adjustParam(factor float64) {
	switch m.paramKeys[m.selected] {
	case "beta":
		m.cfg.Beta *= factor
	case "gamma":
		m.cfg.Gamma *= factor
	case "mu":
		m.cfg.Mu *= factor
	}
	// Re-simulate from t=0 so the curves stay consistent with the
	// new rates.
	elapsed := m.t
	m.rebuild()
	for m.t < elapsed {
		m.step()
	}
}

// step advances one frame: a handful of dt-steps with the same clamping
// the batch engine applies.
func (m *Model) step() {
	perFrame := int(math.Max(1, 0.5/m.cfg.Dt))
	for i := 0; i < perFrame && m.t < m.cfg.Duration; i++ {
		m.state = m.integ.Step(m.sys, m.state, m.t, m.cfg.Dt)
		for j := range m.state {
			if m.state[j] < 0 {
				m.state[j] = 0
			}
		}
		if total := m.state.Sum(); total > 0 && total != m.cfg.N {
			scale := m.cfg.N / total
			for j := range m.state {
				m.state[j] *= scale
			}
		}
		m.t += m.cfg.Dt
	}

	m.infHistory = append(m.infHistory, m.state[epi.I])
	if len(m.infHistory) > historyCapacity {
		m.infHistory = m.infHistory[1:]
	}
	m.reHistory = append(m.reHistory, m.currentRe())
	if len(m.reHistory) > historyCapacity {
		m.reHistory = m.reHistory[1:]
	}
}

func (m *Model) currentRe() float64 {
	outflow := m.cfg.Gamma + m.cfg.Mu
	if outflow == 0 {
		return 0
	}
	return m.sys.Beta(m.t) / outflow * m.state[epi.S] / m.cfg.N
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(string(m.cfg.Scenario))) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	} else if m.t >= m.cfg.Duration {
		status = "DONE"
	}
	s.WriteString(status + "\n")

	if len(m.infHistory) > 1 {
		chart := asciigraph.Plot(m.infHistory,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("infected"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.reHistory) > 1 {
		chart := asciigraph.Plot(m.reHistory,
			asciigraph.Height(4),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("Re(t)"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Day") + valueStyle.Render(fmt.Sprintf("%.1f / %.0f", m.t, m.cfg.Duration)) + "\n")
	s.WriteString(labelStyle.Render("Susceptible") + valueStyle.Render(fmt.Sprintf("%.0f", m.state[epi.S])) + "\n")
	s.WriteString(labelStyle.Render("Infected") + valueStyle.Render(fmt.Sprintf("%.0f", m.state[epi.I])) + "\n")
	s.WriteString(labelStyle.Render("Recovered") + valueStyle.Render(fmt.Sprintf("%.0f", m.state[epi.R])) + "\n")
	s.WriteString(labelStyle.Render("Deceased") + valueStyle.Render(fmt.Sprintf("%.0f", m.state[epi.D])) + "\n")
	s.WriteString(labelStyle.Render("Re(t)") + valueStyle.Render(fmt.Sprintf("%.2f", m.currentRe())) + "\n")

	s.WriteString("\nPARAMETERS\n")
	values := []float64{m.cfg.Beta, m.cfg.Gamma, m.cfg.Mu}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-8s %.4f", k, values[i])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit Tab:Param ↑↓:Tune"))
	return s.String()
}
