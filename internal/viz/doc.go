// Package viz draws the turbine in the terminal.
//
// A braille [Canvas] carries both the 3D blade plot, projected through a
// [Camera], and the 2D fan animation. [Dashboard] is the Bubble Tea program
// that ties the calculator controls, metric tiles and both views together.
//
// # Key Bindings
//
//	Tab/↑↓ - Select control
//	←/→    - Adjust slider or cycle a choice
//	Enter  - Type an exact value
//	M B A  - Cycle material, blade count, adjustment
//	x y z  - Rotate the 3D view (shift reverses)
//	+ -    - Zoom the 3D view
//	Space  - Pause/resume the fan
//	G      - Export the fan animation as GIF
//	S      - Save the design
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
