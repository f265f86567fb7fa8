package components

import (
	"fmt"
	"math/rand"

	"github.com/mroth/weightedrand"
)

// Range is a closed enrichment interval expressed as a mass fraction.
type Range struct {
	Low  float64 `yaml:"low" toml:"low"`
	High float64 `yaml:"high" toml:"high"`
}

func (r Range) Validate() error {
	if r.Low > r.High {
		return fmt.Errorf("%w: low %v above high %v", ErrInvalidRange, r.Low, r.High)
	}
	if r.Low < 0 || r.High > 1 {
		return fmt.Errorf("%w: [%v, %v] outside [0, 1]", ErrInvalidRange, r.Low, r.High)
	}
	return nil
}

func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Sample draws uniformly from the range.
func (r Range) Sample(rng *rand.Rand) float64 {
	return r.Low + rng.Float64()*(r.High-r.Low)
}

type FissileMaterial struct {
	Name       string   `yaml:"name"`
	Symbol     string   `yaml:"symbol"`
	Aliases    []string `yaml:"aliases"`
	Enrichment Range    `yaml:"enrichment"`
}

func NewFissileMaterial(name string, enrichment Range) (*FissileMaterial, error) {
	if err := enrichment.Validate(); err != nil {
		return nil, fmt.Errorf("material %s: %w", name, err)
	}
	return &FissileMaterial{Name: name, Symbol: name, Enrichment: enrichment}, nil
}

func (m *FissileMaterial) String() string {
	return fmt.Sprintf("This fissile material is called %s. \nIt has a typical enrichment from %v to %v",
		m.Name, m.Enrichment.Low, m.Enrichment.High)
}

// prompt neutrons per fission, weighted 60/30/10
var promptNeutrons = mustChooser(
	weightedrand.NewChoice(1, 60),
	weightedrand.NewChoice(2, 30),
	weightedrand.NewChoice(3, 10),
)

func mustChooser(choices ...weightedrand.Choice) *weightedrand.Chooser {
	c, err := weightedrand.NewChooser(choices...)
	if err != nil {
		panic(err)
	}
	return c
}

// InduceFission splits one nucleus and returns the number of prompt
// neutrons released.
func (m *FissileMaterial) InduceFission(rng *rand.Rand) int {
	n, _ := promptNeutrons.PickSource(rng).(int)
	return n
}

type NonFissileMaterial struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

func (m *NonFissileMaterial) String() string {
	return fmt.Sprintf("This non-fissile material is called %s", m.Name)
}
