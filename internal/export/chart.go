// Package export renders runs to image files: PNG charts, GIF animations
// and SVG.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// Series is one named curve sampled at the chart's times.
type Series struct {
	Name   string
	Values []float64
}

// span returns a fixed range when values are constant, which go-chart
// cannot scale on its own.
func span(values []float64) chart.Range {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi > lo {
		return nil
	}
	pad := math.Abs(lo) * 0.01
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// TimeSeriesPNG plots primary against times on the left axis and, when it
// has values, secondary on the right axis.
func TimeSeriesPNG(w io.Writer, title string, times []float64, primary, secondary Series) error {
	if len(times) < 2 {
		return fmt.Errorf("time series needs at least 2 samples, got %d", len(times))
	}
	if len(primary.Values) != len(times) {
		return fmt.Errorf("series %s has %d values for %d times", primary.Name, len(primary.Values), len(times))
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1280,
		Height: 720,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20},
		},
		XAxis: chart.XAxis{Name: "time [s]"},
		YAxis: chart.YAxis{Name: primary.Name, Range: span(primary.Values)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    primary.Name,
				XValues: times,
				YValues: primary.Values,
			},
		},
	}

	if len(secondary.Values) > 0 {
		if len(secondary.Values) != len(times) {
			return fmt.Errorf("series %s has %d values for %d times", secondary.Name, len(secondary.Values), len(times))
		}
		graph.YAxisSecondary = chart.YAxis{Name: secondary.Name, Range: span(secondary.Values)}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    secondary.Name,
			YAxis:   chart.YAxisSecondary,
			XValues: times,
			YValues: secondary.Values,
		})
	}

	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// TrajectoryPNG plots the path (xs[i], ys[i]) in order, e.g. the trace of
// the second pendulum bob.
func TrajectoryPNG(w io.Writer, title string, xs, ys []float64) error {
	if len(xs) < 2 || len(xs) != len(ys) {
		return fmt.Errorf("trajectory needs matching coordinates, got %d and %d", len(xs), len(ys))
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 900,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20},
		},
		XAxis: chart.XAxis{Name: "x", Range: span(xs)},
		YAxis: chart.YAxis{Name: "y", Range: span(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

// SweepPNG is a bar chart of one value per sweep point.
func SweepPNG(w io.Writer, title string, labels []string, values []float64) error {
	if len(labels) != len(values) || len(values) == 0 {
		return fmt.Errorf("sweep chart needs one label per value, got %d and %d", len(labels), len(values))
	}

	bars := make([]chart.Value, len(values))
	for i := range values {
		bars[i] = chart.Value{Label: labels[i], Value: values[i]}
	}

	graph := chart.BarChart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{Top: 50},
		},
		Width:    1024,
		Height:   512,
		BarWidth: 40,
		Bars:     bars,
	}
	return graph.Render(chart.PNG, w)
}
