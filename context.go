package arbor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Backend issues the actual draw calls. It is invoked once per queued item
// during commit, in sort order, and must not mutate the scene graph.
type Backend interface {
	// DrawMesh draws submesh of a mesh node. modelView maps the mesh's
	// local space to camera space.
	DrawMesh(ctx *RenderContext, mesh *Node, modelView mgl32.Mat4, submesh int) error
	// DrawSprite draws a sprite node. modelView maps the sprite's local
	// space to camera space.
	DrawSprite(ctx *RenderContext, sprite *Node, modelView mgl32.Mat4) error
}

// Clearer is implemented by backends that can clear the target before a
// world is rendered.
type Clearer interface {
	Clear(background Color) error
}

// EventSink is the interface for optional ECS integration. When set on a
// RenderContext, every finished or aborted render pass is reported to it.
type EventSink interface {
	EmitRenderEvent(event RenderEvent)
}

// RenderEvent describes one render pass for an EventSink.
type RenderEvent struct {
	RootID   uint32
	RootName string
	Stats    Stats
	// Err is the error the pass returned, or nil.
	Err error
}

type immediateLight struct {
	light   *Node
	toWorld mgl32.Mat4
}

// RenderContext renders trees through a camera into a Backend. It owns the
// render queue and the light managers of its passes. A context is not safe
// for concurrent use.
type RenderContext struct {
	eng     *Engine
	backend Backend
	queue   *RenderQueue

	camera        *Node
	cameraToWorld mgl32.Mat4
	worldToCamera mgl32.Mat4

	immediate    []immediateLight
	lights       LightManager
	worldLights  LightManager
	activeLights *LightManager

	stats Stats
	sink  EventSink
}

// NewRenderContext creates a render context drawing into backend.
func (e *Engine) NewRenderContext(backend Backend) *RenderContext {
	if backend == nil {
		panic("arbor: render context needs a backend")
	}
	q := NewRenderQueue(e.alloc)
	q.SetDebugChecks(e.debug)
	return &RenderContext{
		eng:           e,
		backend:       backend,
		queue:         q,
		cameraToWorld: mgl32.Ident4(),
		worldToCamera: mgl32.Ident4(),
	}
}

// Close returns the queue memory to the engine allocator.
func (c *RenderContext) Close() {
	c.queue.Release()
}

// SetCamera sets the camera for RenderNode. cameraToWorld places the camera
// in the coordinate system the rendered nodes are given in.
func (c *RenderContext) SetCamera(cam *Node, cameraToWorld mgl32.Mat4) error {
	if cam == nil {
		c.camera = nil
		return nil
	}
	cam.mustBeCamera()
	inv, ok := invertTransform(cameraToWorld)
	if !ok {
		return fmt.Errorf("arbor: set camera: %w", ErrSingularTransform)
	}
	c.camera = cam
	c.cameraToWorld = cameraToWorld
	c.worldToCamera = inv
	return nil
}

// Camera returns the current camera, or nil.
func (c *RenderContext) Camera() *Node { return c.camera }

// AddLight adds a light for RenderNode at the given light-to-world
// transform. Immediate-mode lights persist until ResetLights.
func (c *RenderContext) AddLight(light *Node, lightToWorld mgl32.Mat4) {
	light.mustBeLight()
	c.immediate = append(c.immediate, immediateLight{light: light, toWorld: lightToWorld})
}

// ResetLights removes every immediate-mode light.
func (c *RenderContext) ResetLights() {
	clear(c.immediate)
	c.immediate = c.immediate[:0]
}

// Queue returns the render queue. It is empty outside render calls.
func (c *RenderContext) Queue() *RenderQueue { return c.queue }

// Projection returns the projection matrix of the current camera.
func (c *RenderContext) Projection() mgl32.Mat4 {
	if c.camera == nil {
		return mgl32.Ident4()
	}
	m, _ := c.camera.Projection()
	return m
}

// Lights returns the lights registered for the current pass. Valid while
// the backend is drawing.
func (c *RenderContext) Lights() []RegisteredLight {
	if c.activeLights == nil {
		return nil
	}
	return c.activeLights.Lights()
}

// EffectiveAlpha returns the alpha factor of n multiplied by every ancestor
// up to the root of the pass being drawn.
func (c *RenderContext) EffectiveAlpha(n *Node) float32 {
	return alphaToFloat(totalAlphaFactor(n, c.queue.root))
}

// Stats returns the statistics of the last render call.
func (c *RenderContext) Stats() Stats { return c.stats }

// SetEventSink sets the optional ECS bridge. A nil sink disables reporting.
func (c *RenderContext) SetEventSink(sink EventSink) {
	c.sink = sink
}

func (c *RenderContext) emit(root *Node, err error) {
	if c.sink == nil {
		return
	}
	c.sink.EmitRenderEvent(RenderEvent{RootID: root.ID, RootName: root.Name, Stats: c.stats, Err: err})
}
