package analysis

import (
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/integrators"
	"github.com/san-kum/reactorlab/internal/models"
)

// KineticsExact evaluates the closed-form solution of the linear
// point-kinetics system with constant reactivity, starting from x0:
//
//	x(t) = (e^{r1 t}(A - r2 I) - e^{r2 t}(A - r1 I)) x0 / (r1 - r2)
//
// The eigenvalues r1 > r2 are always real and distinct since beta > 0.
func KineticsExact(p *models.PointKinetics, x0 dynamo.State, t float64) dynamo.State {
	a := (p.Rho - p.Beta) / p.GenerationTime
	b := p.Beta / p.GenerationTime
	l := p.Lambda

	r1, r2 := KineticsEigenvalues(p)
	e1, e2 := math.Exp(r1*t), math.Exp(r2*t)

	n0, c0 := x0[0], x0[1]
	// (A - r I) x0
	n1 := (a-r2)*n0 + l*c0
	c1 := b*n0 + (-l-r2)*c0
	n2 := (a-r1)*n0 + l*c0
	c2 := b*n0 + (-l-r1)*c0

	d := r1 - r2
	return dynamo.State{
		(e1*n1 - e2*n2) / d,
		(e1*c1 - e2*c2) / d,
	}
}

// KineticsEigenvalues returns the eigenvalues of the kinetics matrix,
// largest first. 1/r1 is the stable reactor period.
func KineticsEigenvalues(p *models.PointKinetics) (float64, float64) {
	a := (p.Rho - p.Beta) / p.GenerationTime
	b := p.Beta / p.GenerationTime
	l := p.Lambda

	tr := a - l
	disc := math.Sqrt((a+l)*(a+l) + 4*l*b)
	return (tr + disc) / 2, (tr - disc) / 2
}

// ConvergencePoint is the Euler error for one step size.
type ConvergencePoint struct {
	Dt       float64
	Steps    int
	MaxError float64 // max relative error in N over the run
	EndError float64 // relative error in N at the final time
}

// EulerErrorSweep runs explicit Euler for each dt and compares N against
// KineticsExact.
func EulerErrorSweep(p *models.PointKinetics, duration float64, dts []float64) []ConvergencePoint {
	euler := integrators.NewEuler()
	x0 := p.InitialState()
	out := make([]ConvergencePoint, 0, len(dts))

	for _, dt := range dts {
		if dt <= 0 {
			continue
		}
		steps := int(math.Round(duration / dt))
		x := x0.Clone()
		pt := ConvergencePoint{Dt: dt, Steps: steps}

		for i := 0; i < steps; i++ {
			t := float64(i) * dt
			x = euler.Step(p, x, nil, t, dt)
			exact := KineticsExact(p, x0, t+dt)
			rel := math.Abs(x[0]-exact[0]) / math.Abs(exact[0])
			pt.MaxError = math.Max(pt.MaxError, rel)
			if i == steps-1 {
				pt.EndError = rel
			}
		}
		out = append(out, pt)
	}
	return out
}

// ConvergenceOrder estimates the observed order at each sweep point from
// its predecessor: log(e_{i-1}/e_i) / log(dt_{i-1}/dt_i). The result is
// aligned with points; entry 0 and any pair with a zero error or equal steps
// are NaN.
func ConvergenceOrder(points []ConvergencePoint) []float64 {
	orders := make([]float64, len(points))
	for i := range orders {
		orders[i] = math.NaN()
		if i == 0 {
			continue
		}
		p, q := points[i-1], points[i]
		if p.EndError == 0 || q.EndError == 0 || p.Dt == q.Dt {
			continue
		}
		orders[i] = math.Log(p.EndError/q.EndError) / math.Log(p.Dt/q.Dt)
	}
	return orders
}
