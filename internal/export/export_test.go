package export

import (
	"bytes"
	"image/gif"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/reactorlab/internal/analysis"
	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/models"
	"github.com/san-kum/reactorlab/internal/viz"
)

func ramp(n int, f func(float64) float64) ([]float64, []float64) {
	times := make([]float64, n)
	values := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * 0.1
		values[i] = f(times[i])
	}
	return times, values
}

func TestTimeSeriesPNG(t *testing.T) {
	times, n := ramp(50, func(t float64) float64 { return 1e10 * math.Exp(0.02*t) })
	_, c := ramp(50, func(t float64) float64 { return 8e11 + 1e9*t })

	var buf bytes.Buffer
	err := TimeSeriesPNG(&buf, "kinetics", times, Series{Name: "N", Values: n}, Series{Name: "C", Values: c})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 720, img.Bounds().Dy())
}

func TestTimeSeriesPNGConstant(t *testing.T) {
	times, n := ramp(10, func(float64) float64 { return 1e10 })

	var buf bytes.Buffer
	require.NoError(t, TimeSeriesPNG(&buf, "steady", times, Series{Name: "N", Values: n}, Series{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestTimeSeriesPNGErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, TimeSeriesPNG(&buf, "x", []float64{0}, Series{Values: []float64{1}}, Series{}))
	assert.Error(t, TimeSeriesPNG(&buf, "x", []float64{0, 1}, Series{Values: []float64{1}}, Series{}))
	assert.Error(t, TimeSeriesPNG(&buf, "x", []float64{0, 1}, Series{Values: []float64{1, 2}}, Series{Values: []float64{3}}))
	assert.Zero(t, buf.Len())
}

func TestTrajectoryPNG(t *testing.T) {
	xs := make([]float64, 100)
	ys := make([]float64, 100)
	for i := range xs {
		a := float64(i) * 0.1
		xs[i], ys[i] = math.Cos(a), math.Sin(a)
	}

	var buf bytes.Buffer
	require.NoError(t, TrajectoryPNG(&buf, "trace", xs, ys))
	_, err := png.Decode(&buf)
	require.NoError(t, err)

	assert.Error(t, TrajectoryPNG(&buf, "trace", xs, ys[:10]))
}

func TestSweepPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SweepPNG(&buf, "peak", []string{"-0.001", "0.001"}, []float64{1, 2}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.Error(t, SweepPNG(&buf, "peak", []string{"a"}, []float64{1, 2}))
}

func swing(n int) []dynamo.State {
	states := make([]dynamo.State, n)
	for i := range states {
		a := float64(i) * 0.1
		states[i] = dynamo.State{math.Sin(a), math.Cos(a), 0, 0}
	}
	return states
}

func TestAnimationGIF(t *testing.T) {
	dp := models.NewDoublePendulum()
	opts := DefaultAnimationOptions()
	opts.Every = 2

	var buf bytes.Buffer
	last, err := AnimationGIF(&buf, dp, swing(20), opts)
	require.NoError(t, err)
	require.NotNil(t, last)

	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, g.Image, 10)
	assert.Equal(t, opts.Delay, g.Delay[0])
}

func TestAnimationGIFEmpty(t *testing.T) {
	var buf bytes.Buffer
	_, err := AnimationGIF(&buf, models.NewDoublePendulum(), nil, DefaultAnimationOptions())
	assert.Error(t, err)
}

func TestCanvasToSVG(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 2))

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)

	assert.Contains(t, svg, `width="8" height="8"`)
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

func TestTrajectoryToSVG(t *testing.T) {
	points := []analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}

	var sb strings.Builder
	require.NoError(t, TrajectoryToSVG(&sb, points, 100, 50, "#ff0000"))
	out := sb.String()
	assert.Contains(t, out, `stroke="#ff0000"`)
	assert.Equal(t, 2, strings.Count(out, " L"))

	assert.Error(t, TrajectoryToSVG(&sb, points[:1], 100, 50, "#fff"))
}
