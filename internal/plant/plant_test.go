package plant

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/reactorlab/internal/components"
)

const sampleSheet = `
name = "test core"
seed = 7
moderator = "h2o"

[[rods]]
material = "u235"
count = 3
length = 4.0
diameter = 0.0095

[[rods]]
material = "Pu-239"
count = 2
enrichment = { low = 0.06, high = 0.07 }

[[neutrons]]
position = [0.0, 0.0, 0.5]
thermal = false
`

func catalog(t *testing.T) *components.Catalog {
	t.Helper()
	cat, err := components.LoadCatalog()
	require.NoError(t, err)
	return cat
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleSheet))
	require.NoError(t, err)

	assert.Equal(t, "test core", s.Name)
	assert.EqualValues(t, 7, s.Seed)
	require.Len(t, s.Rods, 2)
	assert.Equal(t, 3, s.Rods[0].Count)
	require.NotNil(t, s.Rods[1].Enrichment)
	assert.Equal(t, 0.06, s.Rods[1].Enrichment.Low)
	require.Len(t, s.Neutrons, 1)
	assert.False(t, s.Neutrons[0].Thermal)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
	}{
		{"no rods", `name = "empty"`},
		{"zero count", "[[rods]]\nmaterial = \"u235\"\ncount = 0\n"},
		{"missing material", "[[rods]]\ncount = 2\n"},
		{"unknown field", "reactor = \"x\"\n[[rods]]\nmaterial = \"u235\"\ncount = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.sheet))
			assert.Error(t, err)
		})
	}
}

func TestBuild(t *testing.T) {
	s, err := Parse([]byte(sampleSheet))
	require.NoError(t, err)

	a, err := Build(catalog(t), s)
	require.NoError(t, err)

	require.Len(t, a.Rods, 5)
	assert.Equal(t, "light water", a.Moderator.Name)
	for _, r := range a.Rods[:3] {
		assert.Equal(t, "U-235", r.Material.Name)
		assert.True(t, r.Material.Enrichment.Contains(r.Enrichment))
		assert.Equal(t, 4.0, r.Size.Length)
	}
	for _, r := range a.Rods[3:] {
		assert.Equal(t, "Pu-239", r.Material.Name)
		assert.True(t, components.Range{Low: 0.06, High: 0.07}.Contains(r.Enrichment))
	}

	mean := a.MeanEnrichment()
	assert.Greater(t, mean, 0.03)
	assert.Less(t, mean, 0.07)

	assert.Equal(t, 1, a.Moderate())
	assert.Equal(t, 0, a.Moderate())
}

func TestBuildDeterministic(t *testing.T) {
	s, err := Parse([]byte(sampleSheet))
	require.NoError(t, err)

	a, err := Build(catalog(t), s)
	require.NoError(t, err)
	b, err := Build(catalog(t), s)
	require.NoError(t, err)

	for i := range a.Rods {
		assert.Equal(t, a.Rods[i].Enrichment, b.Rods[i].Enrichment)
	}
}

func TestBuildUnknownMaterial(t *testing.T) {
	s := DefaultSheet()
	s.Rods[0].Material = "adamantium"
	_, err := Build(catalog(t), s)
	assert.ErrorIs(t, err, components.ErrUnknownMaterial)

	s = DefaultSheet()
	s.Rods[0].Enrichment = &components.Range{Low: 0.9, High: 0.1}
	_, err = Build(catalog(t), s)
	assert.ErrorIs(t, err, components.ErrInvalidRange)
}

func TestDescribe(t *testing.T) {
	a, err := Build(catalog(t), DefaultSheet())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Describe(&buf))
	out := buf.String()
	assert.Contains(t, out, "This moderator is light water")
	assert.Contains(t, out, "The material used in this rod is U-235. \nThe enrichment in this rod is ")
}

func TestLoadRoundTrip(t *testing.T) {
	data, err := Marshal(DefaultSheet())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plant.toml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	s, err := Load(path)
	require.NoError(t, err)
	want := DefaultSheet()
	assert.Equal(t, want.Name, s.Name)
	assert.Equal(t, want.Seed, s.Seed)
	assert.Equal(t, want.Moderator, s.Moderator)
	assert.Equal(t, want.Rods, s.Rods)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
