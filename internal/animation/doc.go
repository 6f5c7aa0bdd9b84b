// Package animation produces the rotating fan shown beside the calculator.
//
// A fan animation is a bounded sequence of blade angles ([Sequence]), each
// rendered to a paletted raster ([DrawFrame]) and either streamed by a
// [Player] at a fixed frame rate or encoded as a looping GIF ([EncodeGIF]).
//
// The defaults reproduce the classic panel: 30 frames at 30 fps, three blades
// of length 1.2 around a 0.08 hub, drawn inside ±1.5 axis limits.
package animation
