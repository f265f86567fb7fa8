package plant

import (
	"fmt"
	"io"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/reactorlab/internal/components"
)

type Assembly struct {
	Name      string
	Moderator *components.Moderator
	Rods      []*components.FuelRod
	Neutrons  []*components.Neutron
}

// Build resolves every sheet entry against the catalog and constructs the
// rods. Each rod group gets its own generator seeded from the sheet seed, so
// the result does not depend on build order.
func Build(cat *components.Catalog, s *Sheet) (*Assembly, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	a := &Assembly{Name: s.Name}
	if s.Moderator != "" {
		mod, err := cat.Moderator(s.Moderator)
		if err != nil {
			return nil, err
		}
		a.Moderator = mod
	}

	master := rand.New(rand.NewSource(s.Seed))
	seeds := make([]int64, len(s.Rods))
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	groups := make([][]*components.FuelRod, len(s.Rods))
	var g errgroup.Group
	for i, group := range s.Rods {
		i, group := i, group
		g.Go(func() error {
			rods, err := buildGroup(cat, group, rand.New(rand.NewSource(seeds[i])))
			if err != nil {
				return fmt.Errorf("rod group %d: %w", i, err)
			}
			groups[i] = rods
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rods := range groups {
		a.Rods = append(a.Rods, rods...)
	}
	for _, n := range s.Neutrons {
		a.Neutrons = append(a.Neutrons, &components.Neutron{
			Position: components.Vec3(n.Position),
			Thermal:  n.Thermal,
		})
	}
	return a, nil
}

func buildGroup(cat *components.Catalog, group RodGroup, rng *rand.Rand) ([]*components.FuelRod, error) {
	material, err := cat.Fissile(group.Material)
	if err != nil {
		return nil, err
	}

	var opts []components.RodOption
	if group.Enrichment != nil {
		opts = append(opts, components.WithEnrichment(*group.Enrichment))
	}
	if group.Length != 0 || group.Diameter != 0 {
		opts = append(opts, components.WithSize(group.Length, group.Diameter))
	}

	rods := make([]*components.FuelRod, 0, group.Count)
	for j := 0; j < group.Count; j++ {
		rod, err := components.NewFuelRod(material, rng, opts...)
		if err != nil {
			return nil, err
		}
		rods = append(rods, rod)
	}
	return rods, nil
}

func (a *Assembly) MeanEnrichment() float64 {
	if len(a.Rods) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range a.Rods {
		sum += r.Enrichment
	}
	return sum / float64(len(a.Rods))
}

// Moderate passes every free neutron through the moderator and returns how
// many were thermalized.
func (a *Assembly) Moderate() int {
	if a.Moderator == nil {
		return 0
	}
	n := 0
	for _, neutron := range a.Neutrons {
		if a.Moderator.Slow(neutron) {
			n++
		}
	}
	return n
}

// Describe writes the description of every component, blank-line separated.
func (a *Assembly) Describe(w io.Writer) error {
	var parts []fmt.Stringer
	if a.Moderator != nil {
		parts = append(parts, a.Moderator)
	}
	for _, r := range a.Rods {
		parts = append(parts, r)
	}
	for _, n := range a.Neutrons {
		parts = append(parts, n)
	}

	for i, p := range parts {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	return nil
}
