// Package control provides external inputs for dynamical systems.
//
// For the reactor model the input is inserted reactivity (control rods);
// every type implements [dynamo.Controller]:
//
//   - [None]: no input
//   - [Step]: rod withdrawal or scram at a fixed time
//   - [Ramp]: linear insertion up to a limit
//   - [PID]: power regulation around a setpoint
//   - [Manual]: operator-set reactivity for the live view
//
// # Usage
//
//	pid := control.NewPID(0.01, 0.001, 0, 1e10)
//	sim := dynamo.New(dyn, integ, pid)
//
// PID and Step implement [dynamo.Configurable] for live tuning.
package control
