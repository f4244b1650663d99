// Package picking provides ray casting and hover highlighting for the viewer.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepview/internal/engine/camera"
	"github.com/Faultbox/stepview/internal/engine/scene"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// Rect is a surface's bounding rectangle in pointer (client) coordinates.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// PointerToNDC converts client coordinates to normalized device coordinates
// (-1 to 1, Y up) relative to rect. ok is false for a zero-area rect.
func PointerToNDC(clientX, clientY float32, rect Rect) (x, y float32, ok bool) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return 0, 0, false
	}
	x = (clientX-rect.X)/rect.Width*2 - 1
	y = -((clientY-rect.Y)/rect.Height)*2 + 1
	return x, y, true
}

// FromCamera casts a ray from cam through the given NDC point.
func FromCamera(cam *camera.Camera, ndcX, ndcY float32) Ray {
	near := cam.Unproject(mgl32.Vec3{ndcX, ndcY, -1})
	far := cam.Unproject(mgl32.Vec3{ndcX, ndcY, 1})
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform returns the ray mapped by m. The direction is renormalized, so
// distances along the result are in the target space's units.
func (r Ray) Transform(m mgl32.Mat4) Ray {
	o := mgl32.TransformCoordinate(r.Origin, m)
	d := mgl32.TransformNormal(r.Direction, m).Normalize()
	return Ray{Origin: o, Direction: d}
}

// IntersectPlaneY intersects the ray with a horizontal plane at the given Y level.
// Returns the intersection X and Z, the distance, and whether the hit is in front of the origin.
func (r Ray) IntersectPlaneY(planeY float32) (x, z, t float32, ok bool) {
	if gomath.Abs(float64(r.Direction[1])) < 1e-6 {
		return 0, 0, 0, false // Ray parallel to plane
	}

	t = (planeY - r.Origin[1]) / r.Direction[1]
	if t < 0 {
		return 0, 0, 0, false // Intersection behind ray origin
	}

	return r.Origin[0] + t*r.Direction[0], r.Origin[2] + t*r.Direction[2], t, true
}

// IntersectBox tests the ray against an axis-aligned box using the slab method.
// If the ray starts inside the box, the exit distance is returned.
func (r Ray) IntersectBox(box scene.Box) (t float32, hit bool) {
	if box.Empty() {
		return 0, false
	}
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] == 0 {
			if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - r.Origin[axis]) / r.Direction[axis]
		t2 := (box.Max[axis] - r.Origin[axis]) / r.Direction[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle tests the ray against triangle abc from either side
// (Möller-Trumbore). It returns the distance to the hit.
func (r Ray) IntersectTriangle(a, b, c mgl32.Vec3) (t float32, hit bool) {
	const epsilon = 1e-7

	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = edge2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
