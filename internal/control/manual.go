package control

import (
	"math"
	"sync"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Manual returns whatever reactivity the operator last set. The live view
// adjusts it from key presses while the simulation steps.
type Manual struct {
	mu    sync.Mutex
	rho   float64
	limit float64
}

func NewManual(limit float64) *Manual {
	return &Manual{limit: math.Abs(limit)}
}

// Nudge moves the inserted reactivity by delta, clamped to the limit.
func (m *Manual) Nudge(delta float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rho += delta
	if m.limit > 0 {
		m.rho = math.Max(-m.limit, math.Min(m.limit, m.rho))
	}
	return m.rho
}

func (m *Manual) Reset() {
	m.mu.Lock()
	m.rho = 0
	m.mu.Unlock()
}

func (m *Manual) Value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rho
}

func (m *Manual) Compute(state dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{m.Value()}
}
