package components

import (
	"fmt"
	"math/rand"
)

// Dimensions of a rod in meters. Zero means unspecified.
type Dimensions struct {
	Length   float64
	Diameter float64
}

type FuelRod struct {
	Material   *FissileMaterial
	Enrichment float64
	Size       Dimensions
}

type RodOption func(*rodOptions)

type rodOptions struct {
	enrichment *Range
	size       Dimensions
}

// WithEnrichment samples from r instead of the material's typical range.
func WithEnrichment(r Range) RodOption {
	return func(o *rodOptions) { o.enrichment = &r }
}

func WithSize(length, diameter float64) RodOption {
	return func(o *rodOptions) { o.size = Dimensions{Length: length, Diameter: diameter} }
}

// NewFuelRod samples the rod enrichment once, uniformly, from the material
// range or the range given with WithEnrichment.
func NewFuelRod(material *FissileMaterial, rng *rand.Rand, opts ...RodOption) (*FuelRod, error) {
	if material == nil {
		return nil, fmt.Errorf("fuel rod: %w: nil material", ErrUnknownMaterial)
	}

	var o rodOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := material.Enrichment
	if o.enrichment != nil {
		r = *o.enrichment
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("fuel rod of %s: %w", material.Name, err)
	}
	if o.size.Length < 0 || o.size.Diameter < 0 {
		return nil, fmt.Errorf("fuel rod of %s: negative size %+v", material.Name, o.size)
	}

	return &FuelRod{
		Material:   material,
		Enrichment: r.Sample(rng),
		Size:       o.size,
	}, nil
}

func (r *FuelRod) String() string {
	return fmt.Sprintf("The material used in this rod is %s. \nThe enrichment in this rod is %v",
		r.Material.Name, r.Enrichment)
}
