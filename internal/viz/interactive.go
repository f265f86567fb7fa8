package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/reactorlab/internal/config"
)

var modelInfo = map[string]string{
	config.ModelKinetics:       "point kinetics, one delayed group",
	config.ModelDoublePendulum: "chaotic double pendulum",
}

const (
	stateMenu = iota
	statePreset
	stateConfig
	stateSim
)

// field is one editable entry of the config screen.
type field struct {
	name string
	ptr  *float64
}

type launcher struct {
	state      int
	cursor     int
	entries    []string
	model      string
	presets    []string
	cfg        *config.Config
	fields     []field
	editing    bool
	editBuf    string
	err        string
	liveModel  Model
	liveActive bool
}

func NewLauncher() *launcher {
	return &launcher{state: stateMenu, entries: config.Models()}
}

func (l launcher) Init() tea.Cmd { return nil }

func (l launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.state == stateSim {
		newLive, cmd := l.liveModel.Update(msg)
		l.liveModel = newLive.(Model)
		return l, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch l.state {
		case stateMenu:
			return l.menuKey(key)
		case statePreset:
			return l.presetKey(key)
		case stateConfig:
			return l.configKey(key)
		}
	}
	return l, nil
}

func (l *launcher) moveCursor(key string, n int) {
	switch key {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < n-1 {
			l.cursor++
		}
	}
}

func (l launcher) menuKey(msg tea.KeyMsg) (launcher, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return l, tea.Quit
	case "enter", " ":
		l.model = l.entries[l.cursor]
		l.presets = config.ListPresets(l.model)
		l.state, l.cursor = statePreset, 0
	default:
		l.moveCursor(msg.String(), len(l.entries))
	}
	return l, nil
}

func (l launcher) presetKey(msg tea.KeyMsg) (launcher, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return l, tea.Quit
	case "q", "esc":
		l.state, l.cursor = stateMenu, 0
	case "enter", " ":
		cfg, err := config.GetPreset(l.model, l.presets[l.cursor])
		if err != nil {
			l.err = err.Error()
			return l, nil
		}
		l.cfg = cfg
		l.fields = fieldsFor(cfg)
		l.state, l.cursor = stateConfig, 0
	default:
		l.moveCursor(msg.String(), len(l.presets))
	}
	return l, nil
}

func fieldsFor(cfg *config.Config) []field {
	if cfg.Model == config.ModelDoublePendulum {
		return []field{
			{"theta1", &cfg.InitState.Theta},
			{"theta2", &cfg.InitState.Theta2},
			{"omega1", &cfg.InitState.Omega},
			{"omega2", &cfg.InitState.Omega2},
			{"dt", &cfg.Dt},
		}
	}
	return []field{
		{"rho", &cfg.Kinetics.Rho},
		{"beta", &cfg.Kinetics.Beta},
		{"lambda", &cfg.Kinetics.Lambda},
		{"dt", &cfg.Dt},
	}
}

func (l launcher) configKey(msg tea.KeyMsg) (launcher, tea.Cmd) {
	if l.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(l.editBuf, 64); err == nil {
				*l.fields[l.cursor].ptr = v
				l.err = ""
			} else {
				l.err = fmt.Sprintf("not a number: %q", l.editBuf)
			}
			l.editing, l.editBuf = false, ""
		case "esc":
			l.editing, l.editBuf = false, ""
		case "backspace":
			if len(l.editBuf) > 0 {
				l.editBuf = l.editBuf[:len(l.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				l.editBuf += s
			}
		}
		return l, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return l, tea.Quit
	case "q", "esc":
		l.state, l.cursor = statePreset, 0
	case "enter", " ":
		l.editing, l.editBuf = true, strconv.FormatFloat(*l.fields[l.cursor].ptr, 'g', -1, 64)
	case "s":
		live, err := NewModel(l.cfg)
		if err != nil {
			l.err = err.Error()
			return l, nil
		}
		l.liveModel, l.state = live, stateSim
		return l, live.Init()
	default:
		l.moveCursor(msg.String(), len(l.fields))
	}
	return l, nil
}

func (l launcher) View() string {
	switch l.state {
	case stateMenu:
		return l.viewList("REACTORLAB", "simulation lab", l.entries, func(s string) string { return modelInfo[s] })
	case statePreset:
		return l.viewList(strings.ToUpper(l.model), "choose a preset", l.presets, nil)
	case stateConfig:
		return l.viewConfig()
	case stateSim:
		return l.liveModel.View()
	}
	return ""
}

func (l launcher) viewList(title, subtitle string, items []string, desc func(string) string) string {
	st := currentStyles()
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render(title) + "\n    " + st.muted.Render(subtitle) + "\n\n")
	for i, name := range items {
		d := ""
		if desc != nil {
			d = desc(name)
		}
		if i == l.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.active.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-18s", name)), st.active.Render(d)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.muted.Render(fmt.Sprintf("%-18s", name)), st.muted.Render(d)))
		}
	}
	b.WriteString("\n    " + st.help.Render("j/k navigate  enter select  q back"))
	if l.err != "" {
		b.WriteString("\n    " + st.alarm.Render(l.err))
	}
	return b.String()
}

func (l launcher) viewConfig() string {
	st := currentStyles()
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render(strings.ToUpper(l.model)) + "\n    " + st.muted.Render(modelInfo[l.model]) + "\n\n")
	for i, f := range l.fields {
		val := fmt.Sprintf("%10.5g", *f.ptr)
		if l.editing && i == l.cursor {
			val = fmt.Sprintf("%10s", l.editBuf+"_")
		}
		if i == l.cursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", st.active.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-10s", f.name)), st.active.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", st.muted.Render(fmt.Sprintf("%-10s", f.name)), st.muted.Render(val)))
		}
	}
	b.WriteString("\n    " + st.help.Render("j/k select  enter edit  s start  esc back"))
	if l.err != "" {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(l.err))
	}
	return b.String()
}

// RunInteractive opens the model menu and then the live view.
func RunInteractive() error {
	_, err := tea.NewProgram(NewLauncher(), tea.WithAltScreen()).Run()
	return err
}
