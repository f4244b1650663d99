// Package lighting describes the fixed light rig of a viewer session.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ambient is a uniform light reaching every surface.
type Ambient struct {
	Color     mgl32.Vec3
	Intensity float32
}

// Directional is a light at infinity shining along Direction.
type Directional struct {
	Color     mgl32.Vec3
	Intensity float32
	Direction mgl32.Vec3 // Normalized, points from the light toward the scene
}

// Rig is the ambient plus directional pair every session uses.
type Rig struct {
	Ambient Ambient
	Sun     Directional
}

// NewRig creates a white rig with the sun placed at the given longitude and
// latitude (degrees), shining toward the origin.
func NewRig(ambient, directional, longitude, latitude float32) Rig {
	white := mgl32.Vec3{1, 1, 1}
	return Rig{
		Ambient: Ambient{Color: white, Intensity: ambient},
		Sun: Directional{
			Color:     white,
			Intensity: directional,
			Direction: SunDirection(longitude, latitude).Mul(-1),
		},
	}
}

// DefaultRig places the sun above and in front of the default camera.
func DefaultRig(ambient, directional float32) Rig {
	return NewRig(ambient, directional, 35, 50)
}

// SunDirection converts longitude/latitude angles to a unit vector pointing
// towards the sun. Longitude rotates around Y, latitude is elevation from the horizon.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lonRad := float64(mgl32.DegToRad(longitude))
	latRad := float64(mgl32.DegToRad(latitude))

	return mgl32.Vec3{
		float32(math.Cos(latRad) * math.Sin(lonRad)),
		float32(math.Sin(latRad)),
		float32(math.Cos(latRad) * math.Cos(lonRad)),
	}
}

// Shade returns the lit color of a surface with albedo and normal n under r.
func (r Rig) Shade(albedo, n mgl32.Vec3) mgl32.Vec3 {
	diffuse := max(n.Normalize().Dot(r.Sun.Direction.Mul(-1)), 0)
	light := r.Ambient.Color.Mul(r.Ambient.Intensity).
		Add(r.Sun.Color.Mul(r.Sun.Intensity * diffuse))
	return mgl32.Vec3{albedo[0] * light[0], albedo[1] * light[1], albedo[2] * light[2]}
}
