// Package plant builds a component assembly from a TOML plant sheet.
package plant

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/san-kum/reactorlab/internal/components"
)

// Sheet describes what to build.
//
//	name = "demo"
//	seed = 7
//	moderator = "light water"
//
//	[[rods]]
//	material = "u235"
//	count = 4
//	enrichment = { low = 0.03, high = 0.04 }
//
//	[[neutrons]]
//	position = [0.0, 0.0, 0.5]
//	thermal = false
type Sheet struct {
	Name      string        `toml:"name"`
	Seed      int64         `toml:"seed"`
	Moderator string        `toml:"moderator"`
	Rods      []RodGroup    `toml:"rods"`
	Neutrons  []NeutronSpec `toml:"neutrons"`
}

type RodGroup struct {
	Material   string            `toml:"material"`
	Count      int               `toml:"count"`
	Length     float64           `toml:"length"`
	Diameter   float64           `toml:"diameter"`
	Enrichment *components.Range `toml:"enrichment"`
}

type NeutronSpec struct {
	Position [3]float64 `toml:"position"`
	Thermal  bool       `toml:"thermal"`
}

func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Sheet, error) {
	var s Sheet
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse plant sheet: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Sheet) Validate() error {
	if len(s.Rods) == 0 {
		return fmt.Errorf("plant sheet %q: no rod groups", s.Name)
	}
	for i, g := range s.Rods {
		if g.Material == "" {
			return fmt.Errorf("rod group %d: material is required", i)
		}
		if g.Count < 1 {
			return fmt.Errorf("rod group %d (%s): count must be at least 1, got %d", i, g.Material, g.Count)
		}
	}
	return nil
}

func Marshal(s *Sheet) ([]byte, error) {
	return toml.Marshal(s)
}

// DefaultSheet is a single U-235 rod in light water.
func DefaultSheet() *Sheet {
	return &Sheet{
		Name:      "demo",
		Seed:      1,
		Moderator: "light water",
		Rods:      []RodGroup{{Material: "u235", Count: 1}},
	}
}
