// Package analysis characterizes trajectories produced by the lab models.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [LyapunovSpectrum]: one estimate per perturbed state component
//   - [PowerSpectrum]: FFT power spectrum of a sampled state component
//   - [Divergence]: separation of two nearby starts over time
//   - [GeneratePhasePortrait]: 2D phase space trajectories
//   - [GeneratePoincareSection]: stroboscopic section of phase space
//   - [KineticsExact]: closed-form point-kinetics solution
//   - [EulerErrorSweep]: convergence of explicit Euler against it
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(dyn, integ, x0, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // nearby starts separate exponentially
//	}
package analysis
