package control

import (
	"fmt"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Params carries the knobs every controller may read.
type Params struct {
	Dim    int
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64
	Limit  float64
	Amount float64
	At     float64
	Rate   float64
}

// New builds a controller by name.
func New(name string, p Params) (dynamo.Controller, error) {
	switch name {
	case "", "none":
		return NewNone(p.Dim), nil
	case "constant":
		return NewConstant(p.Dim, p.Amount), nil
	case "step":
		return NewStep(p.Amount, p.At), nil
	case "ramp":
		return NewRamp(p.Rate, p.At, p.Limit), nil
	case "pid":
		pid := NewPID(p.Kp, p.Ki, p.Kd, p.Target)
		pid.Limit = p.Limit
		return pid, nil
	case "manual":
		return NewManual(p.Limit), nil
	default:
		return nil, fmt.Errorf("unknown controller: %s (available: %v)", name, Names())
	}
}

func Names() []string {
	return []string{"constant", "manual", "none", "pid", "ramp", "step"}
}
