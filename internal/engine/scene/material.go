package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

var materialSeq atomic.Uint64

// Material is a flat-shaded surface description. Each Material has a unique
// ID so renderers and tests can tell instances apart.
type Material struct {
	Name     string
	Color    mgl32.Vec4
	Emissive mgl32.Vec3

	id       uint64
	disposed bool
}

// NewMaterial creates a material with the given base color.
func NewMaterial(name string, color mgl32.Vec4) *Material {
	return &Material{Name: name, Color: color, id: materialSeq.Add(1)}
}

// ID returns the material's unique instance ID.
func (m *Material) ID() uint64 { return m.id }

// Clone returns a new, independent material with the same appearance.
func (m *Material) Clone() *Material {
	return &Material{
		Name:     m.Name,
		Color:    m.Color,
		Emissive: m.Emissive,
		id:       materialSeq.Add(1),
	}
}

// Dispose marks the material released. Disposing twice is harmless.
func (m *Material) Dispose() { m.disposed = true }

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool { return m.disposed }
