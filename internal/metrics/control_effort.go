package metrics

import (
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// ControlEffort measures inserted external reactivity. With a positive beta
// the value is in dollars (rho/beta), otherwise in raw input units.
// control_effort is the mean over steps; peak_insertion is the largest
// single insertion.
type ControlEffort struct {
	name    string
	peak    bool
	beta    float64
	sum     float64
	max     float64
	samples int
}

func NewControlEffort(beta float64) *ControlEffort {
	return &ControlEffort{name: "control_effort", beta: beta}
}

func NewPeakInsertion(beta float64) *ControlEffort {
	return &ControlEffort{name: "peak_insertion", beta: beta, peak: true}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	step := 0.0
	for _, val := range u {
		step += math.Abs(val)
	}
	if c.beta > 0 {
		step /= c.beta
	}
	c.sum += step
	c.max = math.Max(c.max, step)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	if c.peak {
		return c.max
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.max = 0
	c.samples = 0
}
