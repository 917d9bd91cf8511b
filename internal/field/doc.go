// Package field provides the simulation core of the parallax background.
//
// The package owns the scene data model and its per-frame update:
//
//   - [Star]: a particle flying toward the viewer, recycled at depth zero
//   - [Shape]: a floating wireframe gem anchored to a viewport fraction
//   - [Scene]: fixed-size pools of stars and shapes plus the time accumulator
//   - [Classify]: the constrained/full viewport tier derived from width
//
// # Example
//
//	p := field.DefaultParams()
//	scene, _ := field.NewScene(field.Viewport{Width: 1280, Height: 720}, p, rng)
//	for {
//		scene.Step()
//	}
//
// # Thread Safety
//
// Scene instances are NOT thread-safe. They are meant to be stepped and read
// from a single frame loop.
package field
