// Package storage keeps finished runs on disk, one directory per run with
// metadata.json and states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func New(baseDir string, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{baseDir: baseDir, logger: logger, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// Run describes how a result was produced.
type Run struct {
	Model      string
	Integrator string
	Controller string
	Dt         float64
	Duration   float64
	Seed       int64
	Labels     []string
	Params     map[string]float64
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Labels     []string           `json:"labels,omitempty"`
	Params     map[string]float64 `json:"params,omitempty"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
}

// finite drops NaN and Inf entries, which JSON cannot carry.
func finite(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// Save writes a run and returns its id, <model>_<unixnano>.
func (s *Store) Save(run Run, result *dynamo.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", run.Model, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      run.Model,
		Timestamp:  ts,
		Seed:       run.Seed,
		Dt:         run.Dt,
		Duration:   run.Duration,
		Integrator: run.Integrator,
		Controller: run.Controller,
		Labels:     run.Labels,
		Params:     finite(run.Params),
		Steps:      result.StepsTaken,
		Metrics:    finite(result.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteCSV(f, run.Labels, result); err != nil {
		return "", err
	}

	s.logger.Debugw("run saved", "id", runID, "dir", runDir, "states", len(result.States))
	return runID, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per recorded state: time, state components, then
// the control applied from that state (zero on the last row).
func WriteCSV(w io.Writer, labels []string, result *dynamo.Result) error {
	cw := csv.NewWriter(w)

	if len(result.States) == 0 {
		cw.Flush()
		return cw.Error()
	}

	header := []string{"time"}
	for i := range result.States[0] {
		if i < len(labels) {
			header = append(header, labels[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}

	numControls := 0
	if len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
	}
	for i := 0; i < numControls; i++ {
		header = append(header, fmt.Sprintf("u%d", i))
	}

	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, val := range result.States[i] {
			row = append(row, formatFloat(val))
		}

		if i < len(result.Controls) {
			for _, val := range result.Controls[i] {
				row = append(row, formatFloat(val))
			}
		} else {
			for j := 0; j < numControls; j++ {
				row = append(row, "0")
			}
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debugw("skipping run directory", "dir", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads back the states and times of a run.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.open(runID, "states.csv")
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	// state columns sit between time and the controls
	stateCols := len(records[0]) - 1
	if len(meta.Labels) > 0 && len(meta.Labels) < stateCols {
		stateCols = len(meta.Labels)
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < stateCols+1 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("run %s: bad time %q: %w", runID, record[0], err)
		}

		state := make([]float64, stateCols)
		for j := 0; j < stateCols; j++ {
			state[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: bad value %q: %w", runID, record[j+1], err)
			}
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// Latest returns the most recent run id.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: no runs in %s", ErrRunNotFound, s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) open(runID, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s/%s", ErrRunNotFound, runID, name)
	}
	return f, err
}
