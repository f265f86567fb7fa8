package models

import (
	"fmt"
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81
)

// DoublePendulum is two point masses on massless rigid arms. State is
// (theta1, theta2, omega1, omega2); both angles are measured from the
// downward vertical.
type DoublePendulum struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
		Gravity: DefaultGravity,
	}
}

func (d *DoublePendulum) StateDim() int   { return 4 }
func (d *DoublePendulum) ControlDim() int { return 0 }

func (d *DoublePendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	s, c := math.Sincos(theta1 - theta2)
	den := m1 + m2*s*s

	alpha1 := (m2*g*math.Sin(theta2)*c -
		m2*s*(l1*omega1*omega1*c+l2*omega2*omega2) -
		(m1+m2)*g*math.Sin(theta1)) / l1 / den

	alpha2 := ((m1+m2)*(l1*omega1*omega1*s-g*math.Sin(theta2)+g*math.Sin(theta1)*c) +
		m2*l2*omega2*omega2*s*c) / l2 / den

	return dynamo.State{omega1, omega2, alpha1, alpha2}
}

func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := v1sq + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(theta1-theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	pe := -(m1+m2)*g*l1*math.Cos(theta1) - m2*g*l2*math.Cos(theta2)
	return ke + pe
}

// EnergyScale is the potential energy depth of the hanging configuration.
func (d *DoublePendulum) EnergyScale() float64 {
	return (d.M1+d.M2)*d.Gravity*d.L1 + d.M2*d.Gravity*d.L2
}

// Bobs holds Cartesian bob positions with the pivot at the origin and y up.
type Bobs struct {
	X1, Y1, X2, Y2 float64
}

func (d *DoublePendulum) Positions(x dynamo.State) Bobs {
	s1, c1 := math.Sincos(x[0])
	s2, c2 := math.Sincos(x[1])
	b := Bobs{X1: d.L1 * s1, Y1: -d.L1 * c1}
	b.X2 = b.X1 + d.L2*s2
	b.Y2 = b.Y1 - d.L2*c2
	return b
}

// Reach is the furthest the outer bob can get from the pivot.
func (d *DoublePendulum) Reach() float64 {
	return d.L1 + d.L2
}

func (d *DoublePendulum) Validate() error {
	if d.M1 <= 0 || d.M2 <= 0 {
		return fmt.Errorf("masses must be positive: %w", dynamo.ErrParameterBounds)
	}
	if d.L1 <= 0 || d.L2 <= 0 {
		return fmt.Errorf("arm lengths must be positive: %w", dynamo.ErrParameterBounds)
	}
	if d.Gravity < 0 {
		return fmt.Errorf("gravity must be non-negative: %w", dynamo.ErrParameterBounds)
	}
	return nil
}

func (d *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"m1":      d.M1,
		"m2":      d.M2,
		"l1":      d.L1,
		"l2":      d.L2,
		"gravity": d.Gravity,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	switch name {
	case "m1":
		d.M1 = value
	case "m2":
		d.M2 = value
	case "l1":
		d.L1 = value
	case "l2":
		d.L2 = value
	case "gravity":
		d.Gravity = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
