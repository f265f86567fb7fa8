// Package automation runs scripted sequences of experiments and Monte
// Carlo trials around a run configuration.
package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/experiment"
	"github.com/san-kum/reactorlab/internal/storage"
)

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step starts from a preset (or the model default) and overrides what it
// sets. Zero values and absent keys leave the preset untouched.
type Step struct {
	Name             string             `yaml:"name"`
	Model            string             `yaml:"model"`
	Preset           string             `yaml:"preset"`
	Integrator       string             `yaml:"integrator"`
	Controller       string             `yaml:"controller"`
	Dt               float64            `yaml:"dt"`
	Duration         float64            `yaml:"duration"`
	Params           map[string]float64 `yaml:"params"`
	ControllerParams map[string]float64 `yaml:"controller_params"`
}

type StepResult struct {
	Name   string
	Config *config.Config
	Result *dynamo.Result
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return &sc, nil
}

// Config resolves the step into a validated run configuration.
func (s Step) Config() (*config.Config, error) {
	model := s.Model
	if model == "" {
		model = config.ModelKinetics
	}

	var (
		cfg *config.Config
		err error
	)
	if s.Preset != "" {
		cfg, err = config.GetPreset(model, s.Preset)
	} else {
		cfg, err = config.ForModel(model)
	}
	if err != nil {
		return nil, err
	}

	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Controller != "" {
		cfg.Controller = s.Controller
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	for name, v := range s.ControllerParams {
		if err := cfg.ControllerParams.Set(name, v); err != nil {
			return nil, err
		}
	}
	for name, v := range s.Params {
		if err := cfg.SetModelParam(name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes every step in order. With a non-nil store each
// result is saved. On error the results of the completed steps are
// returned with it.
func RunScenario(ctx context.Context, sc *Scenario, st *storage.Store, logger *zap.SugaredLogger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		logger.Infow("scenario step", "scenario", sc.Name, "step", name, "index", i+1, "of", len(sc.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("%s setup: %w", name, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s run: %w", name, err)
		}

		sr := StepResult{Name: name, Config: cfg, Result: result}
		if st != nil {
			sr.RunID, err = st.Save(storage.Run{
				Model:      cfg.Model,
				Integrator: cfg.Integrator,
				Controller: cfg.Controller,
				Dt:         cfg.Dt,
				Duration:   cfg.Duration,
				Seed:       cfg.Seed,
				Labels:     experiment.StateLabels(cfg.Model),
				Params:     experiment.ModelParams(cfg),
			}, result)
			if err != nil {
				return results, fmt.Errorf("%s save: %w", name, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
