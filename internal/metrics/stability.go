package metrics

import (
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Stability is the fraction of samples that stay within a bound. The
// absolute form checks every component against a fixed threshold. The
// relative form checks one component against ratio times its first observed
// magnitude, which suits populations such as N that span many decades.
type Stability struct {
	name       string
	threshold  float64
	index      int
	ratio      float64
	base       float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
		index:     -1,
	}
}

func NewRelativeStability(index int, ratio float64) *Stability {
	return &Stability{
		name:  "stability",
		index: index,
		ratio: ratio,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if s.index >= 0 {
		if s.index >= len(x) {
			return
		}
		if s.samples == 0 {
			s.base = math.Abs(x[s.index])
		}
		s.samples++
		if v := math.Abs(x[s.index]); math.IsNaN(v) || v > s.ratio*s.base {
			s.violations++
		}
		return
	}

	s.samples++
	for _, val := range x {
		if math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.base = 0
	s.violations = 0
	s.samples = 0
}
