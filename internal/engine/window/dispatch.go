package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/stepview/internal/engine/input"
	"github.com/Faultbox/stepview/internal/engine/mount"
)

// dispatcher tracks attached surfaces and fans input events out to
// resize and pointer subscribers.
type dispatcher struct {
	surfaces []mount.Surface
	resizers map[int]func(width, height int)
	pointers map[int]mount.Pointer
	keys     map[int]func(sdl.Scancode)
	nextID   int
	dragging bool
}

func newDispatcher() dispatcher {
	return dispatcher{
		resizers: make(map[int]func(int, int)),
		pointers: make(map[int]mount.Pointer),
		keys:     make(map[int]func(sdl.Scancode)),
	}
}

// Surfaces returns the attached surfaces.
func (d *dispatcher) Surfaces() []mount.Surface {
	return append([]mount.Surface(nil), d.surfaces...)
}

// Attach adds s to the attached surfaces.
func (d *dispatcher) Attach(s mount.Surface) {
	d.surfaces = append(d.surfaces, s)
}

// Detach removes s. Detaching a surface that is not attached does nothing.
func (d *dispatcher) Detach(s mount.Surface) {
	for i, cur := range d.surfaces {
		if cur == s {
			d.surfaces = append(d.surfaces[:i:i], d.surfaces[i+1:]...)
			return
		}
	}
}

// OnResize registers fn for window size changes.
func (d *dispatcher) OnResize(fn func(width, height int)) func() {
	id := d.id()
	d.resizers[id] = fn
	return func() { delete(d.resizers, id) }
}

// OnPointer registers pointer callbacks.
func (d *dispatcher) OnPointer(p mount.Pointer) func() {
	id := d.id()
	d.pointers[id] = p
	return func() { delete(d.pointers, id) }
}

// OnKey registers fn for key presses.
func (d *dispatcher) OnKey(fn func(sdl.Scancode)) func() {
	id := d.id()
	d.keys[id] = fn
	return func() { delete(d.keys, id) }
}

func (d *dispatcher) id() int {
	d.nextID++
	return d.nextID
}

func (d *dispatcher) dispatch(e input.Event) {
	switch e.Type {
	case input.EventWindowResize:
		for _, fn := range d.resizers {
			fn(e.Width, e.Height)
		}

	case input.EventKeyDown:
		for _, fn := range d.keys {
			fn(e.Key)
		}

	case input.EventWindowLeave:
		d.dragging = false
		for _, p := range d.pointers {
			if p.Leave != nil {
				p.Leave()
			}
		}

	case input.EventMouseDown:
		if e.Button == sdl.BUTTON_LEFT {
			d.dragging = true
		}

	case input.EventMouseUp:
		if e.Button == sdl.BUTTON_LEFT {
			d.dragging = false
		}

	case input.EventMouseMove:
		x, y := float32(e.MouseX), float32(e.MouseY)
		for _, p := range d.pointers {
			if p.Move != nil {
				p.Move(x, y)
			}
			if d.dragging && p.Drag != nil {
				p.Drag(float32(e.DeltaX), float32(e.DeltaY))
			}
		}

	case input.EventMouseWheel:
		for _, p := range d.pointers {
			if p.Wheel != nil {
				p.Wheel(e.Wheel)
			}
		}
	}
}
