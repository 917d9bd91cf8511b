// Package viz runs the parallax field live in a terminal.
//
// The [Model] mounts a renderer on an in-process host whose surface is a
// braille canvas, and feeds it terminal input:
//
//   - mouse motion steers like a pointer
//   - a left-button drag swipes like a touch
//   - arrow keys tilt a simulated device
//
// # Key Bindings
//
//	Arrows/HJKL - Tilt the device
//	0           - Level the device
//	Space       - User gesture (retries the gyro permission)
//	S           - Save PNG and SVG snapshots
//	T           - Cycle color themes
//	?           - Show help overlay
//	Q           - Quit
package viz
