// Package viz renders simulations in the terminal.
//
//   - [Model]: Bubble Tea view of a running simulation, fed by a [Forwarder]
//   - [Picker]: preset menu shown by `dnamc live` without a preset
//   - [Canvas] and [ChainView]: braille projection of the chain backbone
//
// # Key Bindings
//
//	←/→   - Rotate the chain about the pulling axis
//	↑/↓   - Tilt the view
//	+/-   - Zoom
//	?     - Toggle help
//	q     - Quit; a running simulation is canceled
package viz
