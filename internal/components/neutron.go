package components

import "fmt"

type Vec3 [3]float64

type Neutron struct {
	Position Vec3
	Thermal  bool
}

// NewNeutron returns a thermal neutron at pos.
func NewNeutron(pos Vec3) *Neutron {
	return &Neutron{Position: pos, Thermal: true}
}

func NewFastNeutron(pos Vec3) *Neutron {
	return &Neutron{Position: pos}
}

// Thermalize slows a fast neutron down. It reports whether the neutron
// changed.
func (n *Neutron) Thermalize() bool {
	if n.Thermal {
		return false
	}
	n.Thermal = true
	return true
}

func (n *Neutron) String() string {
	desc := fmt.Sprintf("The current position of the Neutron is %v. \n", n.Position)
	if n.Thermal {
		desc += "It can currently be specified as a thermal neutron. "
		desc += "It therefore can be reliably used for fission absorbtion."
	} else {
		desc += "It can currently be specified as a fast neutron. "
		desc += "It is therefore unlikely to be useable for fission absorbtion."
	}
	return desc
}
