package ecs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/arbor"
)

// RenderEventType is the Donburi event type for arbor render pass reports.
var RenderEventType = events.NewEventType[arbor.RenderEvent]()

// NodeData links an entity to an arbor node.
type NodeData struct {
	Node *arbor.Node
}

// TransformData is the local transform an entity drives on its node.
type TransformData struct {
	Translation mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3

	// applied is the value last written to the node; SyncTransforms skips
	// entities whose transform has not changed since.
	applied *TransformData
}

var (
	// NodeComponent holds the arbor node of an entity.
	NodeComponent = donburi.NewComponentType[NodeData]()
	// TransformComponent holds the transform written to the node.
	TransformComponent = donburi.NewComponentType[TransformData]()
)

var transformQuery = donburi.NewQuery(filter.Contains(NodeComponent, TransformComponent))

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an arbor.EventSink backed by a Donburi world.
// Render events are published to RenderEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) arbor.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitRenderEvent(event arbor.RenderEvent) {
	RenderEventType.Publish(s.world, event)
}

// NewNodeEntity creates an entity for node whose TransformComponent starts
// from the node's current local transform.
func NewNodeEntity(world donburi.World, node *arbor.Node) donburi.Entity {
	e := world.Create(NodeComponent, TransformComponent)
	entry := world.Entry(e)
	NodeComponent.SetValue(entry, NodeData{Node: node})
	TransformComponent.SetValue(entry, TransformData{
		Translation: node.Translation(),
		Orientation: node.Orientation(),
		Scale:       node.Scale(),
	})
	return e
}

// SyncTransforms writes every changed TransformComponent to its node and
// returns the number of nodes updated. Entities whose node has been disposed
// are removed from the world.
func SyncTransforms(world donburi.World) int {
	updated := 0
	var stale []donburi.Entity
	transformQuery.Each(world, func(entry *donburi.Entry) {
		n := NodeComponent.Get(entry).Node
		if n == nil || n.IsDisposed() {
			stale = append(stale, entry.Entity())
			return
		}
		tr := TransformComponent.Get(entry)
		if tr.applied != nil && sameTransform(tr, tr.applied) {
			return
		}
		n.SetTranslation(tr.Translation[0], tr.Translation[1], tr.Translation[2])
		n.SetOrientationQuat(tr.Orientation)
		n.SetScale(tr.Scale[0], tr.Scale[1], tr.Scale[2])
		tr.applied = &TransformData{Translation: tr.Translation, Orientation: tr.Orientation, Scale: tr.Scale}
		updated++
	})
	for _, e := range stale {
		world.Remove(e)
	}
	if updated > 0 {
		arbor.Logger().Debug("ecs: synced transforms", "nodes", updated)
	}
	return updated
}

func sameTransform(a, b *TransformData) bool {
	return a.Translation == b.Translation && a.Orientation == b.Orientation && a.Scale == b.Scale
}
