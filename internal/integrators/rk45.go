package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}

	dpA = [7][6]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	}

	// fifth-order weights (equal to the last row of dpA, FSAL)
	dpB = [7]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0}

	// fifth minus fourth order weights
	dpE = [7]float64{
		35.0/384.0 - 5179.0/57600.0,
		0,
		500.0/1113.0 - 7571.0/16695.0,
		125.0/192.0 - 393.0/640.0,
		-2187.0/6784.0 + 92097.0/339200.0,
		11.0/84.0 - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

const rk45MaxRejects = 32

// RK45 is the Dormand-Prince embedded pair. StepAdaptive rejects and retries
// steps whose error estimate exceeds the tolerance.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	k        [7]dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one fifth-order step of exactly dt, with no error control.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	xNew, _ := r.attempt(dyn, x, u, t, dt)
	return xNew
}

// StepAdaptive advances by dt when the local error allows it; otherwise the
// step is shrunk until accepted. It returns the state after the accepted step
// and the suggested size of the next one. The accepted size is never larger
// than dt, so callers asking for dt get at most dt of progress.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	h := dt
	for i := 0; i < rk45MaxRejects; i++ {
		xNew, errNorm := r.attempt(dyn, x, u, t, h)
		ratio := errNorm / tol

		if ratio <= 1 {
			if h < dt {
				// a shrunk step only covers part of the request; finish it
				rest, next, err := r.StepAdaptive(dyn, xNew, u, t+h, dt-h, tol)
				return rest, next, err
			}
			scale := r.maxScale
			if ratio > 0 {
				scale = math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
			}
			return xNew, h * scale, nil
		}

		h *= math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	}
	return x, h, fmt.Errorf("rk45: no acceptable step after %d attempts near t=%g", rk45MaxRejects, t)
}

func (r *RK45) ensureScratch(n int) {
	if len(r.k[0]) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
	}
}

func (r *RK45) attempt(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, h float64) (dynamo.State, float64) {
	n := len(x)
	r.ensureScratch(n)

	stage := make(dynamo.State, n)
	for s := 0; s < 7; s++ {
		for i := 0; i < n; i++ {
			acc := x[i]
			for j := 0; j < s; j++ {
				acc += h * dpA[s][j] * r.k[j][i]
			}
			stage[i] = acc
		}
		copy(r.k[s], dyn.Derive(stage, u, t+dpC[s]*h))
	}

	xNew := make(dynamo.State, n)
	errMax := 0.0
	for i := 0; i < n; i++ {
		sum, est := 0.0, 0.0
		for s := 0; s < 7; s++ {
			sum += dpB[s] * r.k[s][i]
			est += dpE[s] * r.k[s][i]
		}
		xNew[i] = x[i] + h*sum
		scale := 1e-10 + math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		errMax = math.Max(errMax, math.Abs(h*est)/scale)
	}
	return xNew, errMax
}
