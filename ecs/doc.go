// Package ecs connects arbor scene graphs to a [Donburi] world.
//
// Entities that carry both [NodeComponent] and [TransformComponent] have
// their transform written to the arbor node by [SyncTransforms], so game
// logic can move things in ECS systems while arbor does the rendering.
//
// [NewDonburiSink] bridges render pass reports into the world as typed
// events. Subscribe to [RenderEventType] in your ECS systems to receive
// them.
//
// Usage:
//
//	ctx.SetEventSink(ecs.NewDonburiSink(world))
//	e := ecs.NewNodeEntity(world, mesh)
//	// ... systems update TransformComponent ...
//	ecs.SyncTransforms(world)
//	ctx.RenderWorld(scene)
//	ecs.RenderEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
