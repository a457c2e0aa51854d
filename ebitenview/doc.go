// Package ebitenview draws arbor scene graphs with [Ebitengine].
//
// [Renderer] implements arbor.Backend and arbor.Clearer on top of
// DrawTriangles32. It is a software-projected, per-face lit rasterizer with
// no depth buffer, meant for demos, debugging and tools rather than
// production rendering. Draw order is exactly the order of the arbor render
// queue, which makes it a convenient way to look at layer and blend
// ordering.
//
// The quickest way to see a world on screen is [Run]:
//
//	world := eng.NewWorld("world")
//	// ... add a camera, lights and meshes ...
//	err := ebitenview.Run(world, ebitenview.RunConfig{
//		Title: "arbor", Width: 800, Height: 600, ShowStats: true,
//	})
//
// [Orbit] moves a camera around a target with [gween] tweens, and
// [TweenGroup] animates node translation, scale, alpha and spin.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package ebitenview
