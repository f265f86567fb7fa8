// Package experiment turns a run configuration into a wired simulator.
package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/dynamo"
)

type validator interface {
	Validate() error
}

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *zap.SugaredLogger
	simulator *dynamo.Simulator
	x0        dynamo.State
}

func New(cfg *config.Config, logger *zap.SugaredLogger) *Experiment {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Setup validates the configuration and builds the model, integrator,
// controller and default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	dyn, err := e.registry.GetModel(e.cfg)
	if err != nil {
		return err
	}
	if v, ok := dyn.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", e.cfg.Model, err)
		}
	}

	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := e.registry.GetController(e.cfg, dyn.ControlDim())
	if err != nil {
		return err
	}

	e.simulator = dynamo.New(dyn, integ, ctrl)
	for _, m := range e.registry.DefaultMetrics(e.cfg, dyn) {
		e.simulator.AddMetric(m)
	}
	e.x0 = dynamo.State(e.cfg.GetInitState())

	e.logger.Debugw("experiment ready",
		"model", e.cfg.Model,
		"integrator", e.cfg.Integrator,
		"controller", e.cfg.Controller,
		"dt", e.cfg.Dt,
		"duration", e.cfg.Duration,
	)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	result, err := e.simulator.Run(ctx, e.x0, e.cfg.SimConfig())
	if err != nil {
		e.logger.Warnw("run stopped", "model", e.cfg.Model, "error", err)
		return result, err
	}

	e.logger.Infow("run finished",
		"model", e.cfg.Model,
		"steps", result.StepsTaken,
		"states", len(result.States),
		"elapsed", time.Since(start),
	)
	return result, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) InitialState() dynamo.State { return e.x0.Clone() }

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}
