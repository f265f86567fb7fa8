package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

func TestEulerRecurrence(t *testing.T) {
	dyn := &exponential{rate: -2}
	integ := NewEuler()

	x := dynamo.State{1.0}
	dt := 0.1
	for i := 0; i < 5; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	// x_{n+1} = (1 + rate*dt) x_n
	want := math.Pow(0.8, 5)
	if math.Abs(x[0]-want) > 1e-15 {
		t.Errorf("got %.17f, want %.17f", x[0], want)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	dyn := &exponential{rate: -1}

	errAt := func(dt float64) float64 {
		integ := NewEuler()
		x := dynamo.State{1.0}
		n := int(math.Round(1.0 / dt))
		for i := 0; i < n; i++ {
			x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
		}
		return math.Abs(x[0] - math.Exp(-1))
	}

	ratio := errAt(0.01) / errAt(0.005)
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("halving dt should halve the error, ratio=%.3f", ratio)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if integ == nil {
			t.Errorf("New(%q) returned nil", name)
		}
	}
	if _, err := New("radau"); err == nil {
		t.Errorf("expected error for unknown integrator")
	}
}
