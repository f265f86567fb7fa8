// Package components models the building blocks of a nuclear power plant
// sketch: fissile and non-fissile materials, moderators, neutrons and fuel
// rods. Materials and moderators come from an embedded catalog:
//
//	cat, _ := components.LoadCatalog()
//	u235, _ := cat.Fissile("u235")
//	rod, _ := components.NewFuelRod(u235, rand.New(rand.NewSource(1)))
//	fmt.Println(rod)
//
// Descriptors are immutable once built. The only state transition is a
// neutron going from fast to thermal.
package components
