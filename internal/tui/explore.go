// Package tui is the interactive gain explorer: a slider over the loop
// gain K that recomputes closed-loop poles, stability, and the step
// response on every change. All computation stays in the pure analysis
// packages; this layer only re-invokes them.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ctrlab/internal/sim"
	"github.com/san-kum/ctrlab/internal/ss"
	"github.com/san-kum/ctrlab/internal/stability"
	"github.com/san-kum/ctrlab/internal/tf"
	"github.com/san-kum/ctrlab/internal/viz"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const sliderWidth = 50

type model struct {
	plant *tf.TransferFunction
	name  string

	kMax  float64
	steps int
	idx   int

	dt       float64
	duration float64

	// recomputed on every gain change
	gain    float64
	poles   []complex128
	class   stability.Class
	step    []float64
	calcErr error

	width  int
	height int
}

// Explore runs the gain explorer for a plant.
func Explore(plant *tf.TransferFunction, name string, kMax, dt, duration float64) error {
	m := model{
		plant:    plant,
		name:     name,
		kMax:     kMax,
		steps:    100,
		dt:       dt,
		duration: duration,
		width:    80,
		height:   24,
	}
	m.recompute()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.idx > 0 {
				m.idx--
				m.recompute()
			}
		case "right", "l":
			if m.idx < m.steps {
				m.idx++
				m.recompute()
			}
		case "pgdown", "H":
			m.idx -= 10
			if m.idx < 0 {
				m.idx = 0
			}
			m.recompute()
		case "pgup", "L":
			m.idx += 10
			if m.idx > m.steps {
				m.idx = m.steps
			}
			m.recompute()
		case "0":
			m.idx = 0
			m.recompute()
		}
	}
	return m, nil
}

func (m *model) recompute() {
	m.gain = m.kMax * float64(m.idx) / float64(m.steps)
	m.calcErr = nil
	m.step = nil

	closed, err := m.plant.Feedback(m.gain)
	if err != nil {
		m.calcErr = err
		return
	}

	poles, err := closed.Poles()
	if err != nil {
		m.calcErr = err
		return
	}
	m.poles = poles
	m.class = ss.ClassifyEigenvalues(poles, stability.DefaultTol)

	if m.class == stability.Unstable {
		// A diverging step response flattens the chart into noise;
		// poles and verdict carry the story.
		return
	}
	sys, err := ss.FromTransferFunction(closed)
	if err != nil {
		m.calcErr = err
		return
	}
	res, err := sim.StepResponse(sys, m.dt, m.duration)
	if err != nil {
		m.calcErr = err
		return
	}
	m.step = res.Output
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("gain explorer: %s", m.name)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("G(s) = %s\n\n", m.plant))

	filled := int(float64(sliderWidth) * float64(m.idx) / float64(m.steps))
	bar := barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", sliderWidth-filled)
	b.WriteString(fmt.Sprintf("K = %8.3f  [%s]\n\n", m.gain, bar))

	if m.calcErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("error: %v", m.calcErr)))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("closed loop: %s\n", viz.Verdict(m.class)))
		b.WriteString("poles:\n")
		for _, p := range m.poles {
			b.WriteString(fmt.Sprintf("  %8.4f %+8.4fj\n", real(p), imag(p)))
		}
		if m.step != nil {
			b.WriteString("\n")
			b.WriteString(viz.Sparkline(m.step, 60, 8, "closed-loop step response"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("←/→ adjust gain · shift for coarse steps · 0 reset · q quit"))
	return b.String()
}
