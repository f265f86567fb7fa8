package control

import (
	"fmt"
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// PID drives state[0] towards Target. The error is divided by Target (when
// non-zero) so gains stay meaningful for populations around 1e10. Output is
// clamped to +/-Limit when Limit is positive.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	Limit    float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) errorAt(x dynamo.State) float64 {
	err := p.Target - x[0]
	if p.Target != 0 {
		err /= math.Abs(p.Target)
	}
	return err
}

func (p *PID) clamp(u float64) float64 {
	if p.Limit <= 0 {
		return u
	}
	return math.Max(-p.Limit, math.Min(p.Limit, u))
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) == 0 {
		return dynamo.Control{0}
	}

	err := p.errorAt(x)

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return dynamo.Control{p.clamp(p.Kp * err)}
	}

	dt := t - p.prevT
	if dt <= 0 {
		return dynamo.Control{p.clamp(p.Kp * err)}
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t

	return dynamo.Control{p.clamp(p.Kp*err + p.Ki*p.integral + p.Kd*derivative)}
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":     p.Kp,
		"ki":     p.Ki,
		"kd":     p.Kd,
		"target": p.Target,
		"limit":  p.Limit,
	}
}

func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	case "limit":
		p.Limit = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
