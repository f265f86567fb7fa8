package components

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the set of known materials and moderators.
type Catalog struct {
	FissileMaterials    []*FissileMaterial    `yaml:"fissile"`
	NonFissileMaterials []*NonFissileMaterial `yaml:"non_fissile"`
	Moderators          []*Moderator          `yaml:"moderators"`
}

var (
	builtin     *Catalog
	builtinErr  error
	builtinOnce sync.Once
)

// LoadCatalog returns the embedded catalog. It is parsed once.
func LoadCatalog() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = ParseCatalog(catalogYAML)
	})
	return builtin, builtinErr
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, m := range c.FissileMaterials {
		if err := m.Enrichment.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", m.Name, err)
		}
		if m.Symbol == "" {
			m.Symbol = m.Name
		}
	}
	return &c, nil
}

// normalizeKey folds case and separators so "U-235", "u235" and "u_235"
// name the same entry.
func normalizeKey(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
}

func matches(name string, aliases []string, key string) bool {
	if normalizeKey(name) == key {
		return true
	}
	for _, a := range aliases {
		if normalizeKey(a) == key {
			return true
		}
	}
	return false
}

func (c *Catalog) Fissile(name string) (*FissileMaterial, error) {
	key := normalizeKey(name)
	for _, m := range c.FissileMaterials {
		if matches(m.Name, m.Aliases, key) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: fissile %q", ErrUnknownMaterial, name)
}

func (c *Catalog) NonFissile(name string) (*NonFissileMaterial, error) {
	key := normalizeKey(name)
	for _, m := range c.NonFissileMaterials {
		if matches(m.Name, m.Aliases, key) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: non-fissile %q", ErrUnknownMaterial, name)
}

func (c *Catalog) Moderator(name string) (*Moderator, error) {
	key := normalizeKey(name)
	for _, m := range c.Moderators {
		if matches(m.Name, m.Aliases, key) || (m.Formula != "" && normalizeKey(m.Formula) == key) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: moderator %q", ErrUnknownMaterial, name)
}

// Names lists every catalog entry name, sorted, grouped by kind.
func (c *Catalog) Names() (fissile, nonFissile, moderators []string) {
	for _, m := range c.FissileMaterials {
		fissile = append(fissile, m.Name)
	}
	for _, m := range c.NonFissileMaterials {
		nonFissile = append(nonFissile, m.Name)
	}
	for _, m := range c.Moderators {
		moderators = append(moderators, m.Name)
	}
	sort.Strings(fissile)
	sort.Strings(nonFissile)
	sort.Strings(moderators)
	return
}
