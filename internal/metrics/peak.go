package metrics

import (
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Peak records the largest value a state component reaches, e.g. the peak
// neutron density of a transient.
type Peak struct {
	name  string
	index int
	max   float64
	seen  bool
}

func NewPeak(name string, index int) *Peak {
	return &Peak{name: name, index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if p.index >= len(x) {
		return
	}
	if !p.seen || x[p.index] > p.max {
		p.max = x[p.index]
		p.seen = true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.max
}

func (p *Peak) Reset() {
	p.max = 0
	p.seen = false
}
