// Package camera provides the perspective camera and orbit controls used by the viewer.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking at a target point.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FOV    float32 // Vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *Camera {
	return &Camera{
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// SetViewport updates the aspect ratio for a surface of the given pixel size.
// Zero-height surfaces keep the previous aspect.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the camera-to-clip matrix.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// Unproject maps a normalized device coordinate back to world space.
func (c *Camera) Unproject(ndc mgl32.Vec3) mgl32.Vec3 {
	inv := c.ProjectionMatrix().Mul4(c.ViewMatrix()).Inv()
	p := inv.Mul4x1(ndc.Vec4(1))
	if p[3] != 0 {
		return p.Vec3().Mul(1 / p[3])
	}
	return p.Vec3()
}

// OrbitControls orbits a camera around its target with optional damping.
// Input handlers accumulate deltas; Update applies them once per frame.
type OrbitControls struct {
	cam *Camera

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// DampingFactor in (0, 1] eases pending rotation out over several frames.
	// Zero applies input immediately.
	DampingFactor float32

	deltaYaw   float32
	deltaPitch float32
	zoomScale  float32
}

// NewOrbitControls creates controls driving cam.
func NewOrbitControls(cam *Camera, damping float32) *OrbitControls {
	return &OrbitControls{
		cam:             cam,
		MinDistance:     0.5,
		MaxDistance:     500,
		MinPitch:        -1.55,
		MaxPitch:        1.55,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		DampingFactor:   damping,
		zoomScale:       1,
	}
}

// Camera returns the driven camera.
func (o *OrbitControls) Camera() *Camera { return o.cam }

// Reset places the camera at eye looking at target and drops pending input.
func (o *OrbitControls) Reset(eye, target mgl32.Vec3) {
	o.cam.Position = eye
	o.cam.Target = target
	o.deltaYaw, o.deltaPitch, o.zoomScale = 0, 0, 1
}

// HandleDrag queues rotation from a pointer drag delta in pixels.
func (o *OrbitControls) HandleDrag(deltaX, deltaY float32) {
	o.deltaYaw -= deltaX * o.DragSensitivity
	o.deltaPitch += deltaY * o.DragSensitivity
}

// HandleZoom queues a dolly from a scroll wheel delta. Positive zooms in.
func (o *OrbitControls) HandleZoom(delta float32) {
	o.zoomScale *= 1 - delta*o.ZoomSensitivity
	if o.zoomScale < 0.1 {
		o.zoomScale = 0.1
	}
}

// Update applies pending input to the camera. It reports whether the camera moved.
func (o *OrbitControls) Update() bool {
	if o.deltaYaw == 0 && o.deltaPitch == 0 && o.zoomScale == 1 {
		return false
	}

	offset := o.cam.Position.Sub(o.cam.Target)
	distance := offset.Len()
	if distance == 0 {
		distance = o.MinDistance
	}
	yaw := float32(gomath.Atan2(float64(offset[0]), float64(offset[2])))
	pitch := float32(gomath.Asin(float64(clamp(offset[1]/distance, -1, 1))))

	step := float32(1)
	if o.DampingFactor > 0 {
		step = o.DampingFactor
	}
	yaw += o.deltaYaw * step
	pitch = clamp(pitch+o.deltaPitch*step, o.MinPitch, o.MaxPitch)
	distance = clamp(distance*o.zoomScale, o.MinDistance, o.MaxDistance)

	if o.DampingFactor > 0 {
		o.deltaYaw *= 1 - o.DampingFactor
		o.deltaPitch *= 1 - o.DampingFactor
		if abs(o.deltaYaw) < 1e-5 {
			o.deltaYaw = 0
		}
		if abs(o.deltaPitch) < 1e-5 {
			o.deltaPitch = 0
		}
	} else {
		o.deltaYaw, o.deltaPitch = 0, 0
	}
	o.zoomScale = 1

	cosPitch := gomath.Cos(float64(pitch))
	o.cam.Position = o.cam.Target.Add(mgl32.Vec3{
		distance * float32(cosPitch*gomath.Sin(float64(yaw))),
		distance * float32(gomath.Sin(float64(pitch))),
		distance * float32(cosPitch*gomath.Cos(float64(yaw))),
	})
	return true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
