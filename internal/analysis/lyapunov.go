package analysis

import (
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// renormSeparation is the separation at which the perturbed trajectory is
// pulled back towards the reference one.
const renormSeparation = 1e-3

// LyapunovExponent estimates the largest Lyapunov exponent by following a
// reference trajectory and a copy displaced by perturbation in x[0]. The
// separation is renormalized back to the initial distance whenever it grows
// past renormSeparation, and the accumulated log growth is divided by the
// elapsed time.
func LyapunovExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 {
		return 0
	}
	x0p := x0.Clone()
	x0p[0] += perturbation
	return lyapunovForPerturbation(dyn, integ, x0, x0p, dt, duration, perturbation)
}

// LyapunovSpectrum perturbs each state component independently. The values
// are per-direction growth rates, not a Gram-Schmidt spectrum.
func LyapunovSpectrum(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) []float64 {
	n := len(x0)
	spectrum := make([]float64, n)

	for i := 0; i < n; i++ {
		xp := x0.Clone()
		xp[i] += perturbation
		spectrum[i] = lyapunovForPerturbation(dyn, integ, x0, xp, dt, duration, perturbation)
	}

	return spectrum
}

func lyapunovForPerturbation(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0, x0p dynamo.State,
	dt, duration, d0 float64,
) float64 {
	if d0 <= 0 || dt <= 0 || duration <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0p.Clone()
	ctrl := make(dynamo.Control, dyn.ControlDim())

	steps := int(math.Round(duration / dt))
	sumLog := 0.0

	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(dyn, x, ctrl, t, dt)
		xp = integ.Step(dyn, xp, ctrl, t, dt)

		sep := xp.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) {
			continue
		}

		if sep > renormSeparation || i == steps-1 {
			sumLog += math.Log(sep / d0)
			scale := d0 / sep
			for j := range xp {
				xp[j] = x[j] + (xp[j]-x[j])*scale
			}
		}
	}

	return sumLog / (float64(steps) * dt)
}

// Divergence integrates two trajectories started eps apart in x[0] and
// returns the times and Euclidean separations, sampled every `every` steps.
func Divergence(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	eps, dt, duration float64,
	every int,
) (times, seps []float64) {
	if len(x0) == 0 || dt <= 0 {
		return nil, nil
	}
	if every < 1 {
		every = 1
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += eps
	ctrl := make(dynamo.Control, dyn.ControlDim())

	steps := int(math.Round(duration / dt))
	times = append(times, 0)
	seps = append(seps, eps)

	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(dyn, x, ctrl, t, dt)
		xp = integ.Step(dyn, xp, ctrl, t, dt)
		if (i+1)%every == 0 {
			times = append(times, float64(i+1)*dt)
			seps = append(seps, xp.Sub(x).Norm())
		}
	}
	return times, seps
}
