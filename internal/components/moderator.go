package components

import "fmt"

type Moderator struct {
	Name    string   `yaml:"name"`
	Formula string   `yaml:"formula"`
	Aliases []string `yaml:"aliases"`
}

func (m *Moderator) String() string {
	return fmt.Sprintf("This moderator is %s", m.Name)
}

// Slow passes a neutron through the moderator.
func (m *Moderator) Slow(n *Neutron) bool {
	return n.Thermalize()
}
