package models

import (
	"fmt"
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Reference parameters of the kinetics demo.
const (
	DefaultN0             = 1e10
	DefaultRho            = 0.005
	DefaultBeta           = 0.0065
	DefaultLambda         = 0.08
	DefaultGenerationTime = 1.0
)

// PointKinetics is the zero-dimensional reactor model with a single delayed
// neutron precursor group. State is (N, C): neutron density and precursor
// density.
//
//	dN/dt = (rho + u - beta)/Lg * N + lambda*C
//	dC/dt = beta/Lg * N - lambda*C
//
// u is reactivity inserted from outside (rods). With the default generation
// time Lg = 1 the equations are the normalized form used by the demo.
type PointKinetics struct {
	N0             float64
	Rho            float64
	Beta           float64
	Lambda         float64
	GenerationTime float64
}

func NewPointKinetics() *PointKinetics {
	return &PointKinetics{
		N0:             DefaultN0,
		Rho:            DefaultRho,
		Beta:           DefaultBeta,
		Lambda:         DefaultLambda,
		GenerationTime: DefaultGenerationTime,
	}
}

func (p *PointKinetics) StateDim() int   { return 2 }
func (p *PointKinetics) ControlDim() int { return 1 }

func (p *PointKinetics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n, c := x[0], x[1]

	rho := p.Rho
	if len(u) > 0 {
		rho += u[0]
	}

	dn := (rho-p.Beta)/p.GenerationTime*n + p.Lambda*c
	dc := p.Beta/p.GenerationTime*n - p.Lambda*c
	return dynamo.State{dn, dc}
}

// InitialState puts the precursors in equilibrium with N0:
// C0 = N0*beta/(lambda*Lg).
func (p *PointKinetics) InitialState() dynamo.State {
	return dynamo.State{p.N0, p.N0 * p.Beta / (p.Lambda * p.GenerationTime)}
}

// Period is the instantaneous reactor period N/(dN/dt) with no inserted
// reactivity. A stationary population has an infinite period.
func (p *PointKinetics) Period(x dynamo.State) float64 {
	dn := p.Derive(x, nil, 0)[0]
	if dn == 0 {
		return math.Inf(1)
	}
	return x[0] / dn
}

// Validate rejects parameter sets the recurrence cannot represent.
func (p *PointKinetics) Validate() error {
	switch {
	case p.N0 < 0:
		return fmt.Errorf("n0 must be non-negative, got %g: %w", p.N0, dynamo.ErrParameterBounds)
	case p.Beta <= 0 || p.Beta >= 1:
		return fmt.Errorf("beta must lie in (0, 1), got %g: %w", p.Beta, dynamo.ErrParameterBounds)
	case p.Lambda <= 0:
		return fmt.Errorf("lambda must be positive, got %g: %w", p.Lambda, dynamo.ErrParameterBounds)
	case p.GenerationTime <= 0:
		return fmt.Errorf("generation time must be positive, got %g: %w", p.GenerationTime, dynamo.ErrParameterBounds)
	}
	return nil
}

// Dollars expresses the static reactivity in units of beta.
func (p *PointKinetics) Dollars() float64 {
	return p.Rho / p.Beta
}

func (p *PointKinetics) GetParams() map[string]float64 {
	return map[string]float64{
		"n0":              p.N0,
		"rho":             p.Rho,
		"beta":            p.Beta,
		"lambda":          p.Lambda,
		"generation_time": p.GenerationTime,
	}
}

func (p *PointKinetics) SetParam(name string, value float64) error {
	switch name {
	case "n0":
		p.N0 = value
	case "rho":
		p.Rho = value
	case "beta":
		p.Beta = value
	case "lambda":
		p.Lambda = value
	case "generation_time":
		p.GenerationTime = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
