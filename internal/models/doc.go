// Package models holds the dynamical systems the lab integrates.
//
//   - [PointKinetics]: one-delayed-group reactor point kinetics
//   - [DoublePendulum]: chaotic planar double pendulum
//
// Both implement [dynamo.System] and [dynamo.Configurable]; the pendulum is
// also a [dynamo.Hamiltonian].
package models
