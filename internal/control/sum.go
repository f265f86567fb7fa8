package control

import "github.com/san-kum/reactorlab/internal/dynamo"

// Sum adds the outputs of several controllers component-wise, e.g. a
// scheduled scram on top of the operator's manual rods.
type Sum struct {
	parts []dynamo.Controller
}

func NewSum(parts ...dynamo.Controller) *Sum {
	return &Sum{parts: parts}
}

func (s *Sum) Compute(x dynamo.State, t float64) dynamo.Control {
	var out dynamo.Control
	for _, p := range s.parts {
		u := p.Compute(x, t)
		for len(out) < len(u) {
			out = append(out, 0)
		}
		for i, v := range u {
			out[i] += v
		}
	}
	return out
}

// Reset resets every part that keeps state.
func (s *Sum) Reset() {
	for _, p := range s.parts {
		if r, ok := p.(interface{ Reset() }); ok {
			r.Reset()
		}
	}
}
