// Package viz draws simulations in the terminal.
//
//   - [Canvas]: Braille dot canvas, also rasterized for GIF frames
//   - [PendulumScene] and [DrawCore]: the two model scenes
//   - [Model]: Bubble Tea live view stepping a system in real time
//   - [RunInteractive]: model and preset menu in front of the live view
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	I/O   - Insert/withdraw control rods (kinetics)
//	S     - Scram (kinetics)
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
package viz
