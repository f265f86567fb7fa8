package metrics

import (
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// EnergyDrift tracks the largest relative departure from the first observed
// energy. Systems that are not Hamiltonian report zero. Systems that expose an
// EnergyScale are normalized by at least that scale, so a start at E0 = 0
// still reports a finite drift.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	dyn           dynamo.System
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		dyn:  dyn,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	ec, ok := e.dyn.(dynamo.Hamiltonian)
	if !ok {
		return
	}

	energy := ec.Energy(x)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if ref := dynamo.DriftReference(e.dyn, e.initialEnergy); ref != 0 {
		drift := math.Abs(energy-e.initialEnergy) / ref
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
