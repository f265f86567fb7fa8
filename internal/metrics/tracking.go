package metrics

import (
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Tracking is the mean relative deviation of one state component from a
// setpoint.
type Tracking struct {
	index   int
	target  float64
	sum     float64
	samples int
}

func NewTracking(index int, target float64) *Tracking {
	return &Tracking{index: index, target: target}
}

func (tr *Tracking) Name() string { return "tracking_error" }

func (tr *Tracking) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if tr.index >= len(x) {
		return
	}
	dev := math.Abs(x[tr.index] - tr.target)
	if tr.target != 0 {
		dev /= math.Abs(tr.target)
	}
	tr.sum += dev
	tr.samples++
}

func (tr *Tracking) Value() float64 {
	if tr.samples == 0 {
		return 0
	}
	return tr.sum / float64(tr.samples)
}

func (tr *Tracking) Reset() {
	tr.sum = 0
	tr.samples = 0
}
