package viz

import (
	"fmt"
	"image"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/control"
	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/experiment"
	"github.com/san-kum/reactorlab/internal/models"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	trailLength     = 200

	rodStep  = 0.0005
	rodLimit = 0.1
)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State dynamo.State
	Time  float64
	Value float64
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps one system live and draws it. Kinetics runs carry a manual
// rod controller on top of the configured one.
type Model struct {
	dyn           dynamo.System
	integrator    dynamo.Integrator
	controller    dynamo.Controller
	rods          *control.Manual
	scene         *PendulumScene
	state         dynamo.State
	u             dynamo.Control
	t, dt         float64
	speed         int
	canvas        *Canvas
	running       bool
	modelName     string
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	initialState  dynamo.State
	series        []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	message       string
}

// NewModel wires a live view for a run configuration.
func NewModel(cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}

	reg := experiment.NewRegistry()
	dyn, err := reg.GetModel(cfg)
	if err != nil {
		return Model{}, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return Model{}, err
	}
	ctrl, err := reg.GetController(cfg, dyn.ControlDim())
	if err != nil {
		return Model{}, err
	}

	m := Model{
		dyn:        dyn,
		integrator: integ,
		controller: ctrl,
		state:      dynamo.State(cfg.GetInitState()),
		u:          make(dynamo.Control, dyn.ControlDim()),
		dt:         cfg.Dt,
		speed:      1,
		canvas:     NewCanvas(width, height),
		running:    true,
		modelName:  cfg.Model,
		series:     make([]float64, 0, historyCapacity),
		history:    make([]Snapshot, 0, historyCapacity),
		playHead:   -1,
	}
	m.params = make(map[string]float64)
	m.initialParams = make(map[string]float64)
	m.initialState = m.state.Clone()

	switch sys := dyn.(type) {
	case *models.PointKinetics:
		m.rods = control.NewManual(rodLimit)
		m.controller = control.NewSum(ctrl, m.rods)
	case *models.DoublePendulum:
		m.scene = NewPendulumScene(sys, trailLength)
	}

	if c, ok := dyn.(dynamo.Configurable); ok {
		for k, v := range c.GetParams() {
			if k == "n0" {
				continue
			}
			m.params[k] = v
			m.initialParams[k] = v
			m.paramKeys = append(m.paramKeys, k)
		}
	}
	sort.Strings(m.paramKeys)

	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
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
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			m.speed = min(m.speed*2, 64)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "i":
			m.moveRods(-rodStep)
		case "o":
			m.moveRods(rodStep)
		case "s":
			m.moveRods(-rodLimit)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.speed; i++ {
					m.step()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, m.canvas.Frame(2, Palette))
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) moveRods(delta float64) {
	if m.rods == nil {
		return
	}
	m.rods.Nudge(delta)
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	newVal := m.params[key] * factor
	if c, ok := m.dyn.(dynamo.Configurable); ok {
		if err := c.SetParam(key, newVal); err != nil {
			m.message = err.Error()
			return
		}
	}
	m.params[key] = newVal
}

// value is the quantity plotted over time: log10 N for kinetics, total
// energy for the pendulum.
func (m *Model) value(x dynamo.State) float64 {
	if m.rods != nil {
		if x[0] <= 0 {
			return math.Inf(-1)
		}
		return math.Log10(x[0])
	}
	if h, ok := m.dyn.(dynamo.Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}

func (m *Model) step() {
	m.u = m.controller.Compute(m.state, m.t)
	next := m.integrator.Step(m.dyn, m.state, m.u, m.t, m.dt)
	if !next.IsValid() {
		m.running = false
		m.message = fmt.Sprintf("state diverged at t=%.2fs", m.t)
		return
	}
	m.state = next
	m.t += m.dt

	v := m.value(m.state)
	m.series = append(m.series, v)
	if len(m.series) > historyCapacity {
		m.series = m.series[1:]
	}

	m.history = append(m.history, Snapshot{State: m.state.Clone(), Time: m.t, Value: v})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial state, parameters and rod position.
func (m *Model) reset() {
	m.t = 0
	m.state = m.initialState.Clone()
	m.series = m.series[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.u = make(dynamo.Control, m.dyn.ControlDim())
	m.message = ""
	if m.rods != nil {
		m.rods.Reset()
	}
	if m.scene != nil {
		m.scene.Trail.Reset()
	}
	if r, ok := m.controller.(interface{ Reset() }); ok {
		r.Reset()
	}
	for k, v := range m.initialParams {
		m.params[k] = v
		if c, ok := m.dyn.(dynamo.Configurable); ok {
			_ = c.SetParam(k, v)
		}
	}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		return
	}
	m.recording = false
	if err := m.saveGIF("reactorlab.gif"); err != nil {
		m.message = err.Error()
	} else {
		m.message = fmt.Sprintf("saved %d frames to reactorlab.gif", len(m.frames))
	}
	m.frames = nil
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return fmt.Errorf("nothing recorded")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeGIF(f, m.frames, 2)
}

// shown is the state on screen, which differs from the live state while
// replaying.
func (m *Model) shown() (dynamo.State, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.State, snap.Time
	}
	return m.state, m.t
}

func (m *Model) draw() {
	m.canvas.Clear()
	state, _ := m.shown()

	switch {
	case m.scene != nil:
		m.scene.Draw(m.canvas, state)
	case m.rods != nil:
		rod := 0.0
		if len(m.u) > 0 && m.u[0] < 0 {
			rod = -m.u[0] / rodLimit
		}
		DrawCore(m.canvas, state[0]/m.initialState[0], rod)
	}
}

func (m Model) status(st styles) string {
	switch {
	case m.recording:
		return st.recording.Render("● REC")
	case m.playHead != -1:
		return st.paused.Render(fmt.Sprintf("REPLAY (%.1fs)", m.history[m.playHead].Time-m.t))
	case !m.running:
		return st.paused.Render("PAUSED")
	}
	return st.running.Render("RUNNING")
}

func (m Model) View() string {
	st := currentStyles()
	state, t := m.shown()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(strings.ReplaceAll(m.modelName, "_", " "))) + "\n")
	s.WriteString(m.status(st) + fmt.Sprintf("  x%d", m.speed) + "\n\n")

	if len(m.series) > 1 && !math.IsInf(m.series[0], 0) {
		caption := "Energy"
		if m.rods != nil {
			caption = "log10 N"
		}
		chart := asciigraph.Plot(m.series, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption(caption))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", t))

	if m.rods != nil {
		row("N", fmt.Sprintf("%.4e", state[0]))
		row("C", fmt.Sprintf("%.4e", state[1]))
		u := 0.0
		if len(m.u) > 0 {
			u = m.u[0]
		}
		row("Rods", fmt.Sprintf("%+.4f", u))
		insertion := math.Max(0, -u/rodLimit)
		s.WriteString(st.label.Render("Insertion") + st.value.Render(ProgressBar(insertion, 16)) + "\n")
		if pk, ok := m.dyn.(*models.PointKinetics); ok {
			period := pk.Period(state)
			if !math.IsInf(period, 0) && period > 0 && period < 20 {
				row("Period", st.alarm.Render(fmt.Sprintf("%.1fs", period)))
			} else {
				row("Period", fmt.Sprintf("%.1fs", period))
			}
		}
	} else if m.scene != nil {
		row("Energy", fmt.Sprintf("%.4f", m.scene.Model.Energy(state)))
		row("θ1 θ2", fmt.Sprintf("%.2f %.2f", state[0], state[1]))
	}

	s.WriteString("\n" + st.muted.Render("PARAMETERS") + "\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-16s %.5g", k, m.params[k])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.muted.Render(line) + "\n")
		}
	}

	if m.message != "" {
		s.WriteString("\n" + st.paused.Render(m.message) + "\n")
	}

	keys := "SP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Replay ↑↓:Tune +-:Speed"
	if m.rods != nil {
		keys += "\nI/O:Rods in/out  S:Scram"
	}
	s.WriteString(st.help.Render(keys))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		st.canvas.Render(m.canvas.String()),
		st.stats.Render(s.String()))

	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space    pause / resume
  R        reset state, parameters and rods
  Tab      select parameter
  Up/Down  change parameter by 5%
  + / -    steps per frame
  [ / ]    step back / forward through history
  I / O    insert / withdraw control rods
  S        scram (full insertion)
  G        start / stop GIF recording
  T        cycle theme
  Q        quit
`

// Run starts the live view for a run configuration.
func Run(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
