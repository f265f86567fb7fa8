package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/control"
	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/integrators"
	"github.com/san-kum/reactorlab/internal/metrics"
)

type Registry struct {
	models map[string]func(*config.Config) dynamo.System
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func(*config.Config) dynamo.System),
	}

	r.models[config.ModelKinetics] = func(c *config.Config) dynamo.System { return c.KineticsModel() }
	r.models[config.ModelDoublePendulum] = func(c *config.Config) dynamo.System { return c.PendulumModel() }

	return r
}

func (r *Registry) GetModel(cfg *config.Config) (dynamo.System, error) {
	fn, ok := r.models[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", cfg.Model, r.ListModels())
	}
	return fn(cfg), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) GetController(cfg *config.Config, controlDim int) (dynamo.Controller, error) {
	p := cfg.ControllerParams
	return control.New(cfg.Controller, control.Params{
		Dim:    controlDim,
		Kp:     p.Kp,
		Ki:     p.Ki,
		Kd:     p.Kd,
		Target: p.Target,
		Limit:  p.Limit,
		Amount: p.Amount,
		At:     p.At,
		Rate:   p.Rate,
	})
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KineticsExcursion is the multiple of N0 past which a kinetics sample
// counts against the stability metric.
const KineticsExcursion = 1e3

// DefaultMetrics are the metrics recorded for every run of a model.
func (r *Registry) DefaultMetrics(cfg *config.Config, dyn dynamo.System) []dynamo.Metric {
	switch cfg.Model {
	case config.ModelKinetics:
		m := []dynamo.Metric{
			metrics.NewPeak("peak_n", 0),
			metrics.NewPeak("peak_c", 1),
			metrics.NewControlEffort(cfg.Kinetics.Beta),
			metrics.NewPeakInsertion(cfg.Kinetics.Beta),
			metrics.NewRelativeStability(0, KineticsExcursion),
		}
		if cfg.Controller == "pid" {
			m = append(m, metrics.NewTracking(0, cfg.ControllerParams.Target))
		}
		return m
	case config.ModelDoublePendulum:
		return []dynamo.Metric{
			metrics.NewEnergyDrift(dyn),
			metrics.NewStability(10.0),
		}
	}
	return nil
}

// StateLabels names the state components of a model, in state order.
func StateLabels(model string) []string {
	switch model {
	case config.ModelKinetics:
		return []string{"n", "c"}
	case config.ModelDoublePendulum:
		return []string{"theta1", "theta2", "omega1", "omega2"}
	}
	return nil
}

// ModelParams returns the tunable parameters of the configured model.
func ModelParams(cfg *config.Config) map[string]float64 {
	dyn, err := NewRegistry().GetModel(cfg)
	if err != nil {
		return nil
	}
	if c, ok := dyn.(dynamo.Configurable); ok {
		return c.GetParams()
	}
	return nil
}
