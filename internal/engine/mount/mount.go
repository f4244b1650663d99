// Package mount defines the contract between a viewer session and the
// platform pieces it attaches to: the container a drawable surface is
// mounted into, and the surface itself.
package mount

import (
	"github.com/Faultbox/stepview/internal/engine/camera"
	"github.com/Faultbox/stepview/internal/engine/lighting"
	"github.com/Faultbox/stepview/internal/engine/picking"
	"github.com/Faultbox/stepview/internal/engine/scene"
)

// Surface is a drawable render target bound to GPU resources.
type Surface interface {
	// SetSize resizes the drawing buffer to width x height pixels.
	SetSize(width, height int)
	// Rect returns the surface's bounding rectangle in pointer coordinates.
	Rect() picking.Rect
	// Render draws every node of g through cam under rig.
	Render(g *scene.Graph, cam *camera.Camera, rig lighting.Rig)
	// Dispose releases the GPU resources. The surface must not be used afterwards.
	Dispose()
}

// Pointer holds a session's pointer callbacks. Nil fields are ignored.
type Pointer struct {
	Move  func(clientX, clientY float32)
	Leave func()
	Drag  func(deltaX, deltaY float32)
	Wheel func(delta float32)
}

// Target is a container surfaces are attached to.
type Target interface {
	// Size returns the container's current size in pixels.
	Size() (width, height int)
	// Surfaces returns the currently attached surfaces.
	Surfaces() []Surface
	Attach(s Surface)
	Detach(s Surface)
	// OnResize registers fn for size changes and returns its unregister func.
	OnResize(fn func(width, height int)) (cancel func())
	// OnPointer registers pointer callbacks and returns their unregister func.
	OnPointer(p Pointer) (cancel func())
}
