// Package arbor is a retained-mode 3D scene-graph rendering core.
//
// Applications build a tree of nodes and ask a [RenderContext] to render the
// tree, or any subtree, through a camera. Rendering walks the graph once,
// establishes camera-space transforms and frustum visibility, and queues one
// item per drawable into a bucketed [RenderQueue]. The queue is then drained
// in sort order into a [Backend], which issues the actual draw calls.
//
// # Quick start
//
//	eng, err := arbor.NewEngine(arbor.DefaultConfig())
//	if err != nil { ... }
//
//	world := eng.NewWorld("world")
//	cam := eng.NewCamera("cam")
//	cam.SetPerspective(60, 16.0/9, 0.1, 100)
//	cam.SetTranslation(0, 0, 10)
//	world.AddChild(cam)
//	world.SetActiveCamera(cam)
//
//	app := arbor.NewAppearance()
//	mesh := eng.NewMesh("tri", arbor.VertexData{Positions: pts},
//		arbor.Submesh{Appearance: app, Indices: []uint16{0, 1, 2}})
//	world.AddChild(mesh)
//
//	ctx := eng.NewRenderContext(backend)
//	err = ctx.RenderWorld(world)
//
// The ebitenview sub-package provides a Backend that draws with
// [Ebitengine], plus a game loop and an orbit camera.
//
// # Scene graph
//
// Every element is a [Node]. Worlds and groups hold ordered children;
// cameras, lights, meshes and sprites are leaves. Create nodes through the
// [Engine] that will render them: [Engine.NewGroup], [Engine.NewWorld],
// [Engine.NewCamera], [Engine.NewLight], [Engine.NewMesh],
// [Engine.NewSprite]. Nodes of different engines cannot be mixed.
//
// Each node has a local transform T * R * S * M, a scope mask, render and
// pick enable bits, and an alpha factor that multiplies down the tree.
//
// # Draw order
//
// Draw order is decided by a 32-bit sort key. The top bits hold the
// appearance layer and a blending flag, so every item of a lower layer draws
// before any item of a higher one and blended items draw after opaque ones
// of the same layer. The remaining bits group items with identical state.
//
// # Caching
//
// Composed local transforms and node-to-node paths are kept in a
// fixed-size, best-effort [TCache] owned by the engine. Transform setters
// invalidate it; callers never need to.
//
// # Memory
//
// Queue and cache memory is charged to an [Allocator]. With
// [Config.MemoryLimit] set, exceeding the budget aborts the render call with
// [ErrOutOfMemory] and draws nothing.
//
// [Ebitengine]: https://ebitengine.org
package arbor
