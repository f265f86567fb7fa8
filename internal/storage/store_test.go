package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

func TestStore(t *testing.T) {
	spec.Run(t, "Store", testStore, spec.Report(report.Terminal{}))
}

func testStore(t *testing.T, describe spec.G, it spec.S) {
	var subject *Store
	var result *dynamo.Result
	var run Run
	var clock time.Time

	it.Before(func() {
		subject = New(t.TempDir(), nil)
		require.NoError(t, subject.Init())

		clock = time.Unix(1700000000, 0)
		subject.now = func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}

		result = &dynamo.Result{
			States: []dynamo.State{
				{1e10, 8.125e11},
				{1.00005e10, 8.1250001e11},
			},
			Controls:   []dynamo.Control{{0.001}},
			Times:      []float64{0, 0.01},
			StepsTaken: 1,
			Metrics: map[string]float64{
				"peak_n": 1.00005e10,
			},
		}
		run = Run{
			Model:      "kinetics",
			Integrator: "euler",
			Controller: "step",
			Dt:         0.01,
			Duration:   0.01,
			Seed:       42,
			Labels:     []string{"n", "c"},
			Params:     map[string]float64{"rho": 0.005},
		}
	})

	describe("Save()", func() {
		it("names the run after the model and timestamp", func() {
			id, err := subject.Save(run, result)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(id, "kinetics_"))
			assert.Equal(t, "kinetics_1700000001000000000", id)
		})

		it("drops metrics JSON cannot represent", func() {
			result.Metrics["broken"] = math.NaN()
			id, err := subject.Save(run, result)
			require.NoError(t, err)

			meta, err := subject.Load(id)
			require.NoError(t, err)
			assert.NotContains(t, meta.Metrics, "broken")
			assert.Equal(t, 1.00005e10, meta.Metrics["peak_n"])
		})

		it("writes a labelled CSV header", func() {
			id, err := subject.Save(run, result)
			require.NoError(t, err)

			data, err := os.ReadFile(filepath.Join(subject.Dir(), id, "states.csv"))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), "time,n,c,u0\n"))
		})
	})

	describe("Load()", func() {
		it("reads back the metadata", func() {
			id, err := subject.Save(run, result)
			require.NoError(t, err)

			meta, err := subject.Load(id)
			require.NoError(t, err)
			assert.Equal(t, "kinetics", meta.Model)
			assert.Equal(t, int64(42), meta.Seed)
			assert.Equal(t, 1, meta.Steps)
			assert.Equal(t, []string{"n", "c"}, meta.Labels)
		})

		it("reports missing runs", func() {
			_, err := subject.Load("nope")
			assert.ErrorIs(t, err, ErrRunNotFound)
		})
	})

	describe("LoadStates()", func() {
		it("round-trips values exactly", func() {
			id, err := subject.Save(run, result)
			require.NoError(t, err)

			states, times, err := subject.LoadStates(id)
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 0.01}, times)
			require.Len(t, states, 2)
			assert.Equal(t, []float64{1.00005e10, 8.1250001e11}, states[1])
		})

		it("reports missing runs", func() {
			_, _, err := subject.LoadStates("nope")
			assert.ErrorIs(t, err, ErrRunNotFound)
		})
	})

	describe("List()", func() {
		it("is empty for a fresh directory", func() {
			runs, err := New(filepath.Join(t.TempDir(), "missing"), nil).List()
			require.NoError(t, err)
			assert.Empty(t, runs)
		})

		it("orders runs oldest first", func() {
			first, err := subject.Save(run, result)
			require.NoError(t, err)
			run.Model = "double_pendulum"
			second, err := subject.Save(run, result)
			require.NoError(t, err)

			runs, err := subject.List()
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, first, runs[0].ID)
			assert.Equal(t, second, runs[1].ID)

			latest, err := subject.Latest()
			require.NoError(t, err)
			assert.Equal(t, second, latest)
		})

		it("skips directories without metadata", func() {
			require.NoError(t, os.MkdirAll(filepath.Join(subject.Dir(), "junk"), 0755))
			_, err := subject.Save(run, result)
			require.NoError(t, err)

			runs, err := subject.List()
			require.NoError(t, err)
			assert.Len(t, runs, 1)
		})
	})

	describe("Latest()", func() {
		it("fails with no runs", func() {
			_, err := subject.Latest()
			assert.ErrorIs(t, err, ErrRunNotFound)
		})
	})

	describe("ExportJSON()", func() {
		it("includes states and metrics", func() {
			id, err := subject.Save(run, result)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, subject.ExportJSON(&buf, id))

			var data ExportData
			require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
			assert.Equal(t, "kinetics", data.Model)
			assert.Equal(t, 2, data.Steps)
			assert.Equal(t, 1e10, data.States[0][0])
			assert.Equal(t, 1.00005e10, data.Metrics["peak_n"])
		})

		it("reports missing runs", func() {
			assert.ErrorIs(t, subject.ExportJSON(&bytes.Buffer{}, "nope"), ErrRunNotFound)
		})
	})

	describe("ExportCSV()", func() {
		it("copies the stored file", func() {
			id, err := subject.Save(run, result)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, subject.ExportCSV(&buf, id))
			assert.Equal(t, "time,n,c,u0\n0,1e+10,8.125e+11,0.001\n0.01,1.00005e+10,8.1250001e+11,0\n", buf.String())
		})
	})
}
