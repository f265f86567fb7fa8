package integrators

import (
	"testing"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// twoGroup mirrors the shape of the point-kinetics right-hand side.
type twoGroup struct{}

func (b *twoGroup) StateDim() int   { return 2 }
func (b *twoGroup) ControlDim() int { return 0 }
func (b *twoGroup) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-0.0015*x[0] + 0.08*x[1], 0.0065*x[0] - 0.08*x[1]}
}

func benchmarkStepper(b *testing.B, integrator dynamo.Integrator) {
	dyn := &twoGroup{}
	x := dynamo.State{1e10, 8.125e8}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkEuler(b *testing.B) { benchmarkStepper(b, NewEuler()) }
func BenchmarkRK4(b *testing.B)   { benchmarkStepper(b, NewRK4()) }
func BenchmarkRK45(b *testing.B)  { benchmarkStepper(b, NewRK45()) }
