package arbor

import "errors"

var (
	// ErrOutOfMemory is returned when the engine allocator refuses an
	// allocation for a render item, a queue bucket, or a cache table.
	ErrOutOfMemory = errors.New("arbor: out of memory")

	// ErrSingularTransform is returned when a transform that has to be
	// inverted (walking toward the camera, or resolving a path) has a zero
	// determinant.
	ErrSingularTransform = errors.New("arbor: transform is not invertible")

	// ErrNoCamera is returned by RenderNode before SetCamera and by
	// RenderWorld when the world has no active camera.
	ErrNoCamera = errors.New("arbor: no camera")

	// ErrCameraNotInWorld is returned by RenderWorld when the active camera
	// is not a descendant of the world being rendered.
	ErrCameraNotInWorld = errors.New("arbor: active camera is not in the world")

	// ErrNotConnected is returned by TransformTo when the two nodes share no
	// common ancestor.
	ErrNotConnected = errors.New("arbor: nodes are not in the same tree")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("arbor: invalid config")
)
