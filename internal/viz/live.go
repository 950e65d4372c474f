package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/dnamc/internal/experiment"
	"github.com/san-kum/dnamc/internal/helix"
	"github.com/san-kum/dnamc/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 20
	historyCapacity = 400
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(56)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// SweepMsg reports one finished sweep with the chain shape after it.
type SweepMsg struct {
	Sample  sim.Sample
	Origins []r3.Vec
}

// DoneMsg ends a live run.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

// Model shows a running simulation: phase, progress, acceptance, extension
// and link history, and a projection of the chain.
type Model struct {
	title     string
	total     int
	phase     sim.Phase
	sweep     int
	accepted  int
	trials    int
	extension []float64
	link      []float64
	origins   []r3.Vec
	canvas    *Canvas
	view      *ChainView
	done      bool
	err       error
	result    *sim.Result
	showHelp  bool
	cancel    context.CancelFunc
}

// NewModel creates a view for a run with total sampling sweeps. cancel,
// if set, is called when the user quits.
func NewModel(title string, total int, cancel context.CancelFunc) Model {
	return Model{
		title:     title,
		total:     total,
		extension: make([]float64, 0, historyCapacity),
		link:      make([]float64, 0, historyCapacity),
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		view:      NewChainView(),
		cancel:    cancel,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func push(h []float64, v float64) []float64 {
	if len(h) == historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "left", "h":
			m.view.Rotate(-0.15, 0)
		case "right", "l":
			m.view.Rotate(0.15, 0)
		case "up", "k":
			m.view.Rotate(0, 0.15)
		case "down", "j":
			m.view.Rotate(0, -0.15)
		case "+", "=":
			m.view.ZoomIn()
		case "-", "_":
			m.view.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case SweepMsg:
		s := msg.Sample
		if s.Phase != m.phase {
			m.extension = m.extension[:0]
			m.link = m.link[:0]
		}
		m.phase, m.sweep = s.Phase, s.Sweep
		if s.Phase == sim.PhaseSample {
			m.accepted += s.Accepted
			m.trials += s.Trials
		}
		m.extension = push(m.extension, s.Coord.Z)
		if s.HasLink {
			m.link = push(m.link, s.Link/(2*math.Pi))
		}
		if msg.Origins != nil {
			m.origins = msg.Origins
		}
	case DoneMsg:
		m.done, m.result, m.err = true, msg.Result, msg.Err
	}
	return m, nil
}

func (m Model) status() string {
	switch {
	case m.done && m.err != nil:
		return StatusFailed.Render("FAILED: " + m.err.Error())
	case m.done:
		return StatusDone.Render("DONE")
	}
	return StatusRunning.Render(strings.ToUpper(m.phase.String()))
}

func (m Model) View() string {
	m.view.Render(m.canvas, m.origins)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(Title.Render(m.title) + "\n")
	s.WriteString(m.status() + "\n\n")

	if m.phase == sim.PhaseSample && m.total > 0 {
		frac := float64(m.sweep+1) / float64(m.total)
		s.WriteString(ProgressBar(frac, 30) + fmt.Sprintf(" %d/%d\n\n", m.sweep+1, m.total))
	} else {
		s.WriteString(Row("Sweep", "%d", m.sweep+1) + "\n\n")
	}

	if len(m.extension) > 1 {
		chart := asciigraph.Plot(m.extension, asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption("z (Å)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.extension) > 0 {
		s.WriteString(Row("Extension", "%.1f Å", m.extension[len(m.extension)-1]) + "\n")
	}
	if len(m.link) > 0 {
		s.WriteString(Row("Link", "%.3f turns", m.link[len(m.link)-1]) + "\n")
		s.WriteString(MetricLabel.Render("") + Sparkline(m.link, 40) + "\n")
	}
	if m.trials > 0 {
		s.WriteString(Row("Acceptance", "%.2f%%", 100*float64(m.accepted)/float64(m.trials)) + "\n")
	}

	s.WriteString("\n" + Separator(40) + "\n")
	if m.showHelp {
		s.WriteString(KeyHint.Render("←/→ yaw  ↑/↓ pitch  +/- zoom\nq quit (cancels a running simulation)") + "\n")
	} else {
		s.WriteString(KeyHint.Render("? help  q quit") + "\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Forwarder is a sim.Observer that sends sweeps to a tea program at most
// once per interval, plus every phase change.
type Forwarder struct {
	send     func(tea.Msg)
	origins  func() []r3.Vec
	interval time.Duration
	last     time.Time
	phase    sim.Phase
	started  bool
}

func NewForwarder(send func(tea.Msg), origins func() []r3.Vec, interval time.Duration) *Forwarder {
	return &Forwarder{send: send, origins: origins, interval: interval}
}

func (f *Forwarder) OnSweep(s sim.Sample) {
	now := time.Now()
	if f.started && s.Phase == f.phase && now.Sub(f.last) < f.interval {
		return
	}
	f.started, f.phase, f.last = true, s.Phase, now

	msg := SweepMsg{Sample: s}
	if f.origins != nil {
		msg.Origins = f.origins()
	}
	f.send(msg)
}

// RunLive runs exp in the background while showing it in the terminal.
// Quitting the view cancels the run.
func RunLive(ctx context.Context, exp *experiment.Experiment, title string) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title, exp.Config().NumStep, cancel), tea.WithAltScreen())
	origins := func() []r3.Vec {
		if s := exp.GetSimulator(); s != nil {
			if c, ok := s.Chain().(*helix.Chain); ok {
				return c.Origins()
			}
		}
		return nil
	}
	exp.AddObserver(NewForwarder(p.Send, origins, 50*time.Millisecond))

	type outcome struct {
		res *sim.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := exp.Run(ctx)
		p.Send(DoneMsg{Result: res, Err: err})
		done <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	cancel()
	out := <-done
	return out.res, out.err
}
