package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type decay struct{}

func (d *decay) Derive(x State, u Control, time float64) State {
	return State{-x[0]}
}

func (d *decay) StateDim() int   { return 1 }
func (d *decay) ControlDim() int { return 0 }

type growth struct{}

func (g *growth) Derive(x State, u Control, time float64) State {
	return State{x[0]}
}

func (g *growth) StateDim() int   { return 1 }
func (g *growth) ControlDim() int { return 0 }

type blowup struct{}

func (b *blowup) Derive(x State, u Control, time float64) State {
	return State{x[0] * 1e300}
}

func (b *blowup) StateDim() int   { return 1 }
func (b *blowup) ControlDim() int { return 0 }

type forwardEuler struct{}

func (f *forwardEuler) Step(dyn System, x State, u Control, time float64, dt float64) State {
	dx := dyn.Derive(x, u, time)
	return State{x[0] + dt*dx[0]}
}

type zero struct{}

func (z *zero) Compute(x State, time float64) Control {
	return Control{}
}

type counter struct{ n int }

func (c *counter) Name() string                          { return "count" }
func (c *counter) Observe(x State, u Control, t float64) { c.n++ }
func (c *counter) Value() float64                        { return float64(c.n) }
func (c *counter) Reset()                                { c.n = 0 }

func TestSimulatorRun(t *testing.T) {
	sim := New(&decay{}, &forwardEuler{}, &zero{})

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	// (1 - dt)^10 exactly for forward Euler on dx/dt = -x
	expected := math.Pow(0.9, 10)
	if math.Abs(result.Final()[0]-expected) > 1e-12 {
		t.Errorf("expected final state %.12f, got %.12f", expected, result.Final()[0])
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %v", result.Times[10])
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&decay{}, &forwardEuler{}, &zero{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"adaptive without tolerance", Config{Dt: 0.1, Duration: 1.0, Adaptive: true, MinDt: 1e-6, MaxDt: 1}},
		{"adaptive inverted bounds", Config{Dt: 0.1, Duration: 1.0, Adaptive: true, Tolerance: 1e-6, MinDt: 1, MaxDt: 1e-3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), State{1.0}, tt.cfg)
			if !errors.Is(err, ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSimulatorDimensionMismatch(t *testing.T) {
	sim := New(&decay{}, &forwardEuler{}, &zero{})

	_, err := sim.Run(context.Background(), State{1.0, 2.0}, DefaultConfig())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimulatorCancel(t *testing.T) {
	sim := New(&decay{}, &forwardEuler{}, &zero{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.States) != 1 {
		t.Errorf("expected partial result with initial state only")
	}
}

func TestSimulatorInvalidState(t *testing.T) {
	sim := New(&blowup{}, &forwardEuler{}, &zero{})

	cfg := DefaultConfig()
	result, err := sim.Run(context.Background(), State{1e10}, cfg)

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected wrapped ErrInvalidState")
	}
	for _, s := range result.States {
		if !s.IsValid() {
			t.Errorf("result should only hold valid states")
		}
	}
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&decay{}, &forwardEuler{}, &zero{})
	c := &counter{}
	sim.AddMetric(c)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Metrics["count"] != 10 {
		t.Errorf("expected metric to observe 10 pre-step states, got %v", result.Metrics["count"])
	}
}

func TestSimulatorAdaptive(t *testing.T) {
	sim := New(&decay{}, &forwardEuler{}, &zero{})

	cfg := Config{Dt: 0.1, Duration: 1.0, Adaptive: true, Tolerance: 1e-4, MinDt: 1e-6, MaxDt: 0.2}
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	last := result.Times[len(result.Times)-1]
	if math.Abs(last-1.0) > 1e-6 {
		t.Errorf("adaptive run should end at duration, got %v", last)
	}
	if math.Abs(result.Final()[0]-math.Exp(-1)) > 0.05 {
		t.Errorf("adaptive result too far from exp(-1): %v", result.Final()[0])
	}
}

func TestSimulatorAdaptiveHonorsTolerance(t *testing.T) {
	sim := New(&growth{}, &forwardEuler{}, &zero{})

	tol := 1e-9
	cfg := Config{Dt: 0.1, Duration: 0.01, Adaptive: true, Tolerance: tol, MinDt: 1e-8, MaxDt: 0.1}
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Times) < 2 {
		t.Fatalf("expected at least one accepted step")
	}

	h := result.Times[1]
	if h >= cfg.Dt {
		t.Errorf("step of %v should have been shrunk before acceptance", h)
	}
	if local := math.Abs(result.States[1][0] - math.Exp(h)); local > 2*tol {
		t.Errorf("first accepted step h=%v has local error %v above tolerance %v", h, local, tol)
	}
	if last := result.Times[len(result.Times)-1]; math.Abs(last-cfg.Duration) > 1e-6 {
		t.Errorf("adaptive run should end at duration, got %v", last)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	sim := New(&decay{}, &forwardEuler{}, &zero{})

	calls := 0
	err := sim.RunWithCallback(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0}, func(x State, u Control, t float64) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 callbacks, got %d", calls)
	}
}

func TestEnsembleKeepsOrder(t *testing.T) {
	members := make([]Member, 4)
	for i := range members {
		members[i] = Member{
			System:     &decay{},
			Integrator: &forwardEuler{},
			Controller: &zero{},
			X0:         State{float64(i + 1)},
		}
	}

	results, err := NewEnsemble(members, 7).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		want := float64(i+1) * math.Pow(0.9, 10)
		if math.Abs(r.Final()[0]-want) > 1e-12 {
			t.Errorf("member %d: expected %v, got %v", i, want, r.Final()[0])
		}
	}
}

func TestEnsemblePropagatesError(t *testing.T) {
	members := []Member{
		{System: &decay{}, Integrator: &forwardEuler{}, Controller: &zero{}, X0: State{1}},
		{System: &decay{}, Integrator: &forwardEuler{}, Controller: &zero{}, X0: State{1, 2}},
	}

	_, err := NewEnsemble(members, 0).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
