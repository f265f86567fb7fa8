package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}

	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Fatal("RK45 produced invalid state")
	}
	if math.Abs(x[0]-math.Cos(10)) > 1e-8 {
		t.Errorf("RK45 position error too large: got %v, want %v", x[0], math.Cos(10))
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	x, newDt, err := integrator.StepAdaptive(dyn, x0, nil, 0, 0.1, 1e-8)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}

	// the full requested interval is covered even if the step was split
	if math.Abs(x[0]-math.Cos(0.1)) > 1e-7 {
		t.Errorf("adaptive step did not reach t=0.1: x0=%v want %v", x[0], math.Cos(0.1))
	}
}

func TestRK45_ShrinksOnLargeStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &exponential{rate: -50}

	x, _, err := integrator.StepAdaptive(dyn, dynamo.State{1.0}, nil, 0, 0.5, 1e-6)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	want := math.Exp(-25)
	if math.Abs(x[0]-want) > 1e-6 {
		t.Errorf("got %v, want %v", x[0], want)
	}
}

func TestRK45_MoreAccurateThanRK4(t *testing.T) {
	rk4 := NewRK4()
	rk45 := NewRK45()
	dyn := &harmonicOscillator{}

	x4 := dynamo.State{1.0, 0.0}
	x45 := dynamo.State{1.0, 0.0}
	dt := 0.1

	for i := 0; i < 100; i++ {
		x4 = rk4.Step(dyn, x4, nil, float64(i)*dt, dt)
		x45 = rk45.Step(dyn, x45, nil, float64(i)*dt, dt)
	}

	e4 := math.Abs(dyn.Energy(x4) - 0.5)
	e45 := math.Abs(dyn.Energy(x45) - 0.5)
	if e45 > e4 {
		t.Errorf("expected RK45 drift (%e) below RK4 drift (%e)", e45, e4)
	}
}
