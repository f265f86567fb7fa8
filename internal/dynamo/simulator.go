package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// System returns the simulated dynamics.
func (s *Simulator) System() System { return s.dyn }

// Run integrates from x0 over cfg.Duration. On cancellation the partial
// result is returned together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("initial state has %d components, system wants %d: %w",
			len(x0), s.dyn.StateDim(), ErrDimensionMismatch)
	}

	steps := cfg.Steps()
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	for i := 0; s.more(i, steps, t, cfg); i++ {
		select {
		case <-ctx.Done():
			s.finish(result, x, initialEnergy)
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		var newX State
		if cfg.Adaptive {
			h := math.Min(dt, cfg.Duration-t)
			var taken, next float64
			newX, taken, next = s.adaptiveStep(x, u, t, h, cfg)
			t += taken
			dt = math.Max(math.Min(next, cfg.MaxDt), cfg.MinDt)
		} else {
			newX = s.integrator.Step(s.dyn, x, u, t, dt)
			// Multiplying avoids accumulating rounding in t over long runs.
			t = float64(i+1) * cfg.Dt
		}

		if cfg.ValidateState && !newX.IsValid() {
			s.finish(result, x, initialEnergy)
			return result, &SimulationError{Step: i, Time: t, State: newX, Wrapped: ErrInvalidState}
		}

		x = newX
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	s.finish(result, x, initialEnergy)
	return result, nil
}

func (s *Simulator) more(i, steps int, t float64, cfg Config) bool {
	if cfg.Adaptive {
		return cfg.Duration-t > cfg.MinDt
	}
	return i < steps
}

func (s *Simulator) finish(result *Result, x State, initialEnergy float64) {
	finalEnergy := s.computeEnergy(x)
	if ref := DriftReference(s.dyn, initialEnergy); ref != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / ref
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// ValidateConfig checks the stepping parameters of a run.
func ValidateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g: %w", cfg.Dt, ErrParameterBounds)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g: %w", cfg.Duration, ErrParameterBounds)
	}
	if cfg.Adaptive {
		if cfg.Tolerance <= 0 {
			return fmt.Errorf("tolerance must be positive for adaptive stepping: %w", ErrParameterBounds)
		}
		if cfg.MinDt <= 0 || cfg.MaxDt < cfg.MinDt {
			return fmt.Errorf("adaptive step bounds [%g, %g] invalid: %w", cfg.MinDt, cfg.MaxDt, ErrParameterBounds)
		}
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if ec, ok := s.dyn.(Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}

// adaptiveStep takes one accepted step and reports the size actually taken
// along with a suggestion for the next one. Without an embedded error
// estimate it falls back to step doubling, halving until the two estimates
// agree within tolerance or the step reaches MinDt.
func (s *Simulator) adaptiveStep(x State, u Control, t, dt float64, cfg Config) (State, float64, float64) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		newX, next, err := adaptive.StepAdaptive(s.dyn, x, u, t, dt, cfg.Tolerance)
		if err == nil {
			return newX, dt, next
		}
	}

	h := dt
	for {
		x1 := s.integrator.Step(s.dyn, x, u, t, h)
		xHalf := s.integrator.Step(s.dyn, x, u, t, h/2)
		x2 := s.integrator.Step(s.dyn, xHalf, u, t+h/2, h/2)

		err := x1.Sub(x2).Norm()
		if err > cfg.Tolerance && h/2 >= cfg.MinDt {
			h /= 2
			continue
		}

		next := h
		if err < cfg.Tolerance/10 {
			next = h * 2
		}
		return x2, h, next
	}
}

// RunWithCallback steps without recording; callback returning false stops
// the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	steps := cfg.Steps()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		u := s.controller.Compute(x, t)

		if !callback(x, u, t) {
			return nil
		}

		x = s.integrator.Step(s.dyn, x, u, t, cfg.Dt)

		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: i, Time: t + cfg.Dt, State: x, Wrapped: ErrInvalidState}
		}
	}

	return nil
}
