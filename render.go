package arbor

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// --- World ---

func (n *Node) mustBeWorld() {
	if n.Type != NodeTypeWorld {
		panic(fmt.Sprintf("arbor: %s is not a world", n))
	}
}

// SetActiveCamera sets the camera RenderWorld renders through. The camera
// must be a descendant of the world by the time the world is rendered.
func (n *Node) SetActiveCamera(cam *Node) {
	n.mustBeWorld()
	if cam != nil {
		cam.mustBeCamera()
	}
	n.activeCamera = cam
}

// ActiveCamera returns the world's active camera, or nil.
func (n *Node) ActiveCamera() *Node {
	n.mustBeWorld()
	return n.activeCamera
}

// SetBackground sets the color the target is cleared to by RenderWorld.
func (n *Node) SetBackground(c Color) {
	n.mustBeWorld()
	n.background = c
}

// Background returns the world background color.
func (n *Node) Background() Color {
	n.mustBeWorld()
	return n.background
}

// --- Render calls ---

// RenderNode renders the subtree rooted at n through the camera set with
// SetCamera. nodeToWorld places n in the same coordinate system as the
// camera. Immediate-mode lights added with AddLight are available to the
// backend; lights inside the subtree are not registered.
//
// On failure nothing is drawn, the queue is left empty and the error is
// returned.
func (c *RenderContext) RenderNode(n *Node, nodeToWorld mgl32.Mat4) error {
	if c.camera == nil {
		return fmt.Errorf("arbor: render %s: %w", n, ErrNoCamera)
	}
	c.lights.Clear()
	for _, il := range c.immediate {
		c.lights.Insert(il.light, c.worldToCamera.Mul4(il.toWorld), il.light.scope)
	}
	c.activeLights = &c.lights

	p := c.newPass(n, nil)
	start := setupState{
		toCamera: c.worldToCamera.Mul4(nodeToWorld),
		mask:     CullMaskAll,
	}
	return c.render(n, func() error {
		return p.setupRender(n, nil, start)
	}, nil)
}

// RenderWorld renders world through its active camera. Once setup has
// succeeded the target is cleared to the world background when the backend
// implements Clearer. Every enabled light in the world is registered for the pass.
func (c *RenderContext) RenderWorld(world *Node) error {
	world.mustBeWorld()
	cam := world.activeCamera
	if cam == nil {
		return fmt.Errorf("arbor: render %s: %w", world, ErrNoCamera)
	}
	if !cam.IsDescendantOf(world) {
		return fmt.Errorf("arbor: render %s: %w", world, ErrCameraNotInWorld)
	}
	camToWorld := cam.toAncestor(world)
	if err := c.SetCamera(cam, camToWorld); err != nil {
		return fmt.Errorf("arbor: render %s: %w", world, err)
	}
	c.worldLights.Clear()
	c.activeLights = &c.worldLights

	p := c.newPass(world, &c.worldLights)
	start := setupState{toCamera: mgl32.Ident4(), mask: CullMaskAll}
	return c.render(world, func() error {
		return p.setupRender(cam, nil, start)
	}, func() error {
		cl, ok := c.backend.(Clearer)
		if !ok {
			return nil
		}
		if err := cl.Clear(world.background); err != nil {
			return fmt.Errorf("arbor: clear: %w", err)
		}
		return nil
	})
}

func (c *RenderContext) newPass(root *Node, lights *LightManager) *renderPass {
	c.stats = Stats{}
	return &renderPass{
		queue:   c.queue,
		root:    root,
		lights:  lights,
		frustum: c.camera.Frustum(),
		scope:   c.camera.scope,
		stats:   &c.stats,
	}
}

// render runs setup, then clearTarget (when non-nil), then commits. The queue is
// cleared before and after; a failed setup neither clears nor draws.
func (c *RenderContext) render(root *Node, setup, clearTarget func() error) error {
	debug := c.eng.debug
	var t0 time.Time
	if debug {
		t0 = time.Now()
	}

	c.queue.Clear()
	c.queue.root = root
	c.queue.lights = c.activeLights
	c.queue.SetDebugChecks(debug)

	err := setup()
	if err == nil && clearTarget != nil {
		err = clearTarget()
	}
	if err != nil {
		c.queue.Clear()
		Logger().Warn("arbor: render pass aborted", "root", root.Name, "error", err)
		err = fmt.Errorf("arbor: render %s: %w", root, err)
		c.emit(root, err)
		return err
	}
	if debug {
		c.stats.SetupTime = time.Since(t0)
		t0 = time.Now()
	}

	err = c.queue.Commit(c.doRender)
	c.queue.Clear()
	c.stats.Cache = c.eng.tc.Stats()
	if debug {
		c.stats.CommitTime = time.Since(t0)
		c.stats.log(root)
	}
	if err != nil {
		err = fmt.Errorf("arbor: draw %s: %w", root, err)
	}
	c.emit(root, err)
	return err
}

// doRender dispatches one queued item to the backend.
func (c *RenderContext) doRender(it *RenderItem) error {
	c.stats.Drawn++
	switch it.Node.Type {
	case NodeTypeMesh:
		return c.backend.DrawMesh(c, it.Node, it.ToCamera, it.SubMesh)
	case NodeTypeSprite:
		return c.backend.DrawSprite(c, it.Node, it.ToCamera)
	default:
		panic(fmt.Sprintf("arbor: %s cannot be drawn", it.Node))
	}
}
