package control

import "github.com/san-kum/reactorlab/internal/dynamo"

// Constant holds the same input for the whole run. On the reactor it is a
// fixed external reactivity added to the core's own rho, e.g. rods parked
// part-way in.
type Constant struct {
	dim   int
	value float64
}

func NewConstant(dim int, value float64) *Constant {
	return &Constant{dim: dim, value: value}
}

// NewNone leaves the system uncontrolled: zero external reactivity.
func NewNone(dim int) *Constant {
	return NewConstant(dim, 0)
}

func (c *Constant) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, c.dim)
	for i := range u {
		u[i] = c.value
	}
	return u
}
