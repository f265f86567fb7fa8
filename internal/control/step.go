package control

import (
	"fmt"
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Step inserts Amount of reactivity at time At and holds it. A negative
// amount is a scram.
type Step struct {
	Amount float64
	At     float64
}

func NewStep(amount, at float64) *Step {
	return &Step{Amount: amount, At: at}
}

func (s *Step) Compute(x dynamo.State, t float64) dynamo.Control {
	if t < s.At {
		return dynamo.Control{0}
	}
	return dynamo.Control{s.Amount}
}

func (s *Step) GetParams() map[string]float64 {
	return map[string]float64{"amount": s.Amount, "at": s.At}
}

func (s *Step) SetParam(name string, value float64) error {
	switch name {
	case "amount":
		s.Amount = value
	case "at":
		s.At = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}

// Ramp inserts reactivity at Rate per second starting at At, saturating at
// Limit in magnitude.
type Ramp struct {
	Rate  float64
	At    float64
	Limit float64
}

func NewRamp(rate, at, limit float64) *Ramp {
	return &Ramp{Rate: rate, At: at, Limit: math.Abs(limit)}
}

func (r *Ramp) Compute(x dynamo.State, t float64) dynamo.Control {
	if t < r.At {
		return dynamo.Control{0}
	}
	v := r.Rate * (t - r.At)
	if r.Limit > 0 {
		v = math.Max(-r.Limit, math.Min(r.Limit, v))
	}
	return dynamo.Control{v}
}
