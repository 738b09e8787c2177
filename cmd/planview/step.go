package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/jsonplan/engine"
	"github.com/wippyai/jsonplan/plan"
	"github.com/wippyai/jsonplan/writer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	chunkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newStepCmd(g *globals) *cobra.Command {
	var (
		every int
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "step <sample>",
		Short: "Advance a serialization one chunk per key press",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lookupSample(args[0])
			if err != nil {
				return err
			}
			prog, err := s.build(g.options())
			if err != nil {
				return fmt.Errorf("compile %s: %w", args[0], err)
			}

			st := newStepper(prog, engine.EveryN(every), g.options().EscapeHTML)
			if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
				return st.runAll(cmd.OutOrStdout())
			}
			_, err = tea.NewProgram(newStepModel(args[0], st), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().IntVar(&every, "every", 1, "conversions per chunk")
	cmd.Flags().BoolVar(&plain, "plain", false, "print chunks instead of starting the interactive view")
	return cmd
}

// stepper owns one execution of a program and records what each chunk wrote.
type stepper struct {
	prog   *program
	state  *engine.State
	w      *writer.Writer
	policy engine.Policy
	chunks []string
	err    error
}

func newStepper(prog *program, policy engine.Policy, escapeHTML bool) *stepper {
	return &stepper{
		prog:   prog,
		state:  engine.NewState(prog.plan),
		w:      writer.New(nil, writer.Options{EscapeHTML: escapeHTML}),
		policy: policy,
	}
}

func (s *stepper) done() bool { return s.state.Done() || s.err != nil }

func (s *stepper) step() {
	if s.done() {
		return
	}
	before := s.w.Buffered()
	_, err := s.state.Step(s.w, s.prog.root, s.policy)
	s.chunks = append(s.chunks, string(s.w.Bytes()[before:]))
	s.err = err
}

func (s *stepper) reset() {
	s.state.Reset()
	s.w.Reset(nil)
	s.chunks = nil
	s.err = nil
}

// runAll prints every chunk on its own line.
func (s *stepper) runAll(out io.Writer) error {
	for !s.done() {
		s.step()
		fmt.Fprintf(out, "%4d pc=%-4d %s\n", len(s.chunks), s.state.PC(), s.chunks[len(s.chunks)-1])
	}
	if s.err != nil {
		return s.err
	}
	fmt.Fprintf(out, "done: %d chunks, %d conversions, %d bytes\n",
		len(s.chunks), s.state.Converted(), s.w.Buffered())
	return nil
}

type stepModel struct {
	name     string
	st       *stepper
	viewport viewport.Model
	ready    bool
}

func newStepModel(name string, st *stepper) *stepModel {
	return &stepModel{name: name, st: st}
}

func (m *stepModel) Init() tea.Cmd {
	return nil
}

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "n", "enter":
			m.st.step()
			m.refresh()
			return m, nil
		case "a":
			for !m.st.done() {
				m.st.step()
			}
			m.refresh()
			return m, nil
		case "r":
			m.st.reset()
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-6, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh renders the output so far with the latest chunk highlighted.
func (m *stepModel) refresh() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for i, c := range m.st.chunks {
		if i == len(m.st.chunks)-1 {
			b.WriteString(chunkStyle.Render(c))
		} else {
			b.WriteString(c)
		}
	}
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String()))
	m.viewport.GotoBottom()
}

func (m *stepModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("planview"))
	fmt.Fprintf(&b, " %s  chunk %d  converted %d  bytes %d\n",
		m.name, len(m.st.chunks), m.st.state.Converted(), m.st.w.Buffered())

	switch {
	case m.st.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.st.err)))
	case m.st.state.Done():
		b.WriteString(stepStyle.Render("done"))
	default:
		b.WriteString(stepStyle.Render("next " + plan.FormatStep(m.st.prog.plan, m.st.state.PC())))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("space step • a run all • r reset • ↑/↓ scroll • q quit"))
	return b.String()
}
