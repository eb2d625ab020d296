// Package viz renders a running simulation in the terminal: an x/y
// projection of the particle cloud inside the box, live stats, and a
// temperature history chart.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/argonmd/internal/forcefield"
	"github.com/san-kum/argonmd/internal/integrator"
	"github.com/san-kum/argonmd/internal/sim"
	"github.com/san-kum/argonmd/internal/system"
	"github.com/san-kum/argonmd/internal/thermostat"
)

const (
	canvasWidth     = 48
	canvasHeight    = 24
	historyCapacity = 600
	stepsPerFrame   = 10
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the bubbletea model driving the live view. It owns the particle
// system and steps it between frames.
type Model struct {
	cfg    sim.Config
	sys    *system.System
	vv     *integrator.VelocityVerlet
	step   int
	pe     float64
	temp   float64
	drift  float64
	e0     float64
	paused bool
	done   bool

	tempHistory   []float64
	energyHistory []float64
}

// NewModel builds the live view for a prepared system. The thermostat and
// force field mirror what the runner would construct from cfg.
func NewModel(cfg sim.Config, sys *system.System) Model {
	lj := forcefield.NewLennardJones()
	lj.Cutoff = cfg.Cutoff
	lj.Workers = cfg.Workers

	thermo := thermostat.Berendsen{Target: cfg.TargetTemp, Tau: cfg.Tau}
	vv := integrator.NewVelocityVerlet(lj, sys.Box, thermo)
	pe := vv.Prime(sys)

	return Model{
		cfg:           cfg,
		sys:           sys,
		vv:            vv,
		pe:            pe,
		temp:          thermostat.Temperature(sys),
		e0:            pe + sys.KineticEnergy(),
		tempHistory:   make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
	}
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
			m.paused = !m.paused
		}
	case TickMsg:
		if !m.paused && !m.done {
			m.advance()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < stepsPerFrame && m.step < m.cfg.TotalSteps; i++ {
		pe, temp, err := m.vv.Step(m.sys, m.cfg.Dt)
		if err != nil {
			m.done = true
			return
		}
		m.step++
		m.pe = pe
		m.temp = temp
	}
	if m.step >= m.cfg.TotalSteps {
		m.done = true
	}

	total := m.pe + m.sys.KineticEnergy()
	if m.e0 != 0 {
		m.drift = (total - m.e0) / m.e0
		if m.drift < 0 {
			m.drift = -m.drift
		}
	}

	m.tempHistory = append(m.tempHistory, m.temp)
	if len(m.tempHistory) > historyCapacity {
		m.tempHistory = m.tempHistory[1:]
	}
	m.energyHistory = append(m.energyHistory, total)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.renderCanvas())

	var s strings.Builder
	s.WriteString(headerStyle.Render("ARGON MD") + "\n")
	status := "RUNNING"
	if m.paused {
		status = "PAUSED"
	} else if m.done {
		status = "DONE"
	}
	s.WriteString(status + "\n\n")

	if len(m.tempHistory) > 1 {
		chart := asciigraph.Plot(m.tempHistory,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Caption("Temperature"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	ke := m.sys.KineticEnergy()
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d/%d", m.step, m.cfg.TotalSteps)) + "\n")
	s.WriteString(labelStyle.Render("Atoms") + valueStyle.Render(fmt.Sprintf("%d", m.sys.N())) + "\n")
	s.WriteString(labelStyle.Render("Temperature") + valueStyle.Render(fmt.Sprintf("%.2f K", m.temp)) + "\n")
	s.WriteString(labelStyle.Render("Potential") + valueStyle.Render(fmt.Sprintf("%.4f", m.pe)) + "\n")
	s.WriteString(labelStyle.Render("Kinetic") + valueStyle.Render(fmt.Sprintf("%.4f", ke)) + "\n")
	s.WriteString(labelStyle.Render("Total") + valueStyle.Render(fmt.Sprintf("%.4f", m.pe+ke)) + "\n")
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e", m.drift)) + "\n")
	s.WriteString(helpStyle.Render("\nSP:Pause  Q:Quit"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// renderCanvas projects particle x/y onto a rune grid inside a box outline.
// Overlapping projections brighten from · to ●.
func (m Model) renderCanvas() string {
	grid := make([][]rune, canvasHeight)
	for y := range grid {
		grid[y] = make([]rune, canvasWidth)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	counts := make(map[[2]int]int)
	l := m.sys.Box.L
	for i := range m.sys.Particles {
		p := m.sys.Particles[i].Pos
		x := int(p[0] / l * float64(canvasWidth))
		y := int(p[1] / l * float64(canvasHeight))
		if x >= 0 && x < canvasWidth && y >= 0 && y < canvasHeight {
			counts[[2]int{x, y}]++
		}
	}
	for cell, n := range counts {
		c := '·'
		if n >= 3 {
			c = '●'
		} else if n == 2 {
			c = '•'
		}
		grid[cell[1]][cell[0]] = c
	}

	var sb strings.Builder
	sb.WriteString("+" + strings.Repeat("-", canvasWidth) + "+\n")
	for y := 0; y < canvasHeight; y++ {
		sb.WriteString("|")
		sb.WriteString(string(grid[y]))
		sb.WriteString("|\n")
	}
	sb.WriteString("+" + strings.Repeat("-", canvasWidth) + "+")
	return sb.String()
}

// Run starts the live view and blocks until the user quits.
func Run(cfg sim.Config, sys *system.System) error {
	_, err := tea.NewProgram(NewModel(cfg, sys), tea.WithAltScreen()).Run()
	return err
}
