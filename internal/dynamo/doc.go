// Package dynamo provides the simulation primitives shared by the reactor
// kinetics and pendulum demos.
//
// The package defines the interfaces and types for numerical integration of
// ordinary differential equations (dX/dt = f(X, u, t)):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems
//   - [Integrator]: numerical stepping scheme
//   - [Controller]: external input (reactivity insertion, torque)
//   - [Simulator]: orchestrates a single run
//   - [Ensemble]: runs several simulators concurrently
//
// # Example
//
//	dyn := models.NewPointKinetics()
//	sim := dynamo.New(dyn, integrators.NewEuler(), control.NewNone(1))
//	result, err := sim.Run(ctx, dyn.InitialState(), dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel runs use [Ensemble],
// which builds one simulator per member.
package dynamo
