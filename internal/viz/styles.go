package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt from CurrentTheme on every frame so theme switches
// apply immediately.
type styles struct {
	header, label, value, active, graph, help, muted lipgloss.Style
	running, paused, recording, alarm                lipgloss.Style
	canvas, stats                                    lipgloss.Style
}

func currentStyles() styles {
	th := CurrentTheme
	return styles{
		header:    lipgloss.NewStyle().Foreground(th.Primary).Bold(true).MarginBottom(1),
		label:     lipgloss.NewStyle().Foreground(th.Muted).Width(12),
		value:     lipgloss.NewStyle().Foreground(th.Text),
		active:    lipgloss.NewStyle().Foreground(th.Accent).Bold(true),
		graph:     lipgloss.NewStyle().Foreground(th.Primary).Padding(1, 0),
		help:      lipgloss.NewStyle().Foreground(th.Muted).MarginTop(1),
		muted:     lipgloss.NewStyle().Foreground(th.Muted),
		running:   lipgloss.NewStyle().Foreground(th.Success).Bold(true),
		paused:    lipgloss.NewStyle().Foreground(th.Warning).Bold(true),
		recording: lipgloss.NewStyle().Foreground(th.Error).Bold(true).Blink(true),
		alarm:     lipgloss.NewStyle().Foreground(th.Error).Bold(true),
		canvas:    lipgloss.NewStyle().Foreground(th.Primary).Padding(1, 2),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(th.Muted).
			Padding(1, 2).
			Width(46),
	}
}

// ProgressBar renders fraction in [0, 1] as a bar of width cells.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline draws values with one block character per sample, resampled
// to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / span * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}
