package components

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	cat, err := LoadCatalog()
	require.NoError(t, err)

	for _, name := range []string{"U-235", "u235", "U235", "uranium_235"} {
		m, err := cat.Fissile(name)
		require.NoError(t, err, name)
		assert.Equal(t, "U-235", m.Name)
	}

	_, err = cat.Fissile("unobtainium")
	assert.ErrorIs(t, err, ErrUnknownMaterial)

	mod, err := cat.Moderator("D2O")
	require.NoError(t, err)
	assert.Equal(t, "heavy water", mod.Name)

	nf, err := cat.NonFissile("thorium")
	require.NoError(t, err)
	assert.Equal(t, "Th-232", nf.Name)

	fissile, _, moderators := cat.Names()
	assert.Contains(t, fissile, "Pu-239")
	assert.Len(t, moderators, 3)
}

func TestParseCatalogRejectsBadRange(t *testing.T) {
	_, err := ParseCatalog([]byte("fissile:\n  - name: X\n    enrichment: {low: 0.5, high: 0.1}\n"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestFissileMaterialString(t *testing.T) {
	m, err := NewFissileMaterial("U-235", Range{Low: 0.03, High: 0.05})
	require.NoError(t, err)
	assert.Equal(t, "This fissile material is called U-235. \nIt has a typical enrichment from 0.03 to 0.05", m.String())
}

func TestInduceFission(t *testing.T) {
	m, err := NewFissileMaterial("U-235", Range{Low: 0.03, High: 0.05})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	counts := map[int]int{}
	const trials = 20000
	for i := 0; i < trials; i++ {
		counts[m.InduceFission(rng)]++
	}

	assert.Len(t, counts, 3)
	assert.InDelta(t, 0.6, float64(counts[1])/trials, 0.03)
	assert.InDelta(t, 0.3, float64(counts[2])/trials, 0.03)
	assert.InDelta(t, 0.1, float64(counts[3])/trials, 0.03)
}

func TestFuelRod(t *testing.T) {
	m, err := NewFissileMaterial("U-235", Range{Low: 0.03, High: 0.05})
	require.NoError(t, err)

	t.Run("material range", func(t *testing.T) {
		rod, err := NewFuelRod(m, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		assert.True(t, m.Enrichment.Contains(rod.Enrichment))
		assert.Contains(t, rod.String(), "The material used in this rod is U-235. \nThe enrichment in this rod is 0.0")
	})

	t.Run("custom range", func(t *testing.T) {
		custom := Range{Low: 0.1, High: 0.2}
		rod, err := NewFuelRod(m, rand.New(rand.NewSource(1)), WithEnrichment(custom), WithSize(4, 0.01))
		require.NoError(t, err)
		assert.True(t, custom.Contains(rod.Enrichment))
		assert.Equal(t, Dimensions{Length: 4, Diameter: 0.01}, rod.Size)
		assert.Equal(t, Range{Low: 0.03, High: 0.05}, m.Enrichment)
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		a, err := NewFuelRod(m, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		b, err := NewFuelRod(m, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		assert.Equal(t, a.Enrichment, b.Enrichment)
	})

	t.Run("degenerate range", func(t *testing.T) {
		rod, err := NewFuelRod(m, rand.New(rand.NewSource(1)), WithEnrichment(Range{Low: 0.04, High: 0.04}))
		require.NoError(t, err)
		assert.Equal(t, 0.04, rod.Enrichment)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := NewFuelRod(m, rand.New(rand.NewSource(1)), WithEnrichment(Range{Low: 0.3, High: 0.2}))
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = NewFuelRod(m, rand.New(rand.NewSource(1)), WithEnrichment(Range{Low: 0.3, High: 1.2}))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("nil material", func(t *testing.T) {
		_, err := NewFuelRod(nil, rand.New(rand.NewSource(1)))
		assert.ErrorIs(t, err, ErrUnknownMaterial)
	})
}

func TestNeutron(t *testing.T) {
	n := NewNeutron(Vec3{1, 2, 3})
	assert.True(t, n.Thermal)
	assert.False(t, n.Thermalize())
	assert.Contains(t, n.String(), "thermal neutron")

	fast := NewFastNeutron(Vec3{})
	assert.Contains(t, fast.String(), "fast neutron")
	assert.True(t, fast.Thermalize())
	assert.True(t, fast.Thermal)
	assert.False(t, fast.Thermalize())
}

func TestModerator(t *testing.T) {
	mod := &Moderator{Name: "graphite"}
	assert.Equal(t, "This moderator is graphite", mod.String())

	n := NewFastNeutron(Vec3{0, 0, 0})
	assert.True(t, mod.Slow(n))
	assert.True(t, n.Thermal)
	assert.False(t, mod.Slow(n))
}
