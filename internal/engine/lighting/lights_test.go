package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     mgl32.Vec3
	}{
		{"zenith", 0, 90, mgl32.Vec3{0, 1, 0}},
		{"front horizon", 0, 0, mgl32.Vec3{0, 0, 1}},
		{"east horizon", 90, 0, mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.lon, tt.lat)
			assert.True(t, got.ApproxEqualThreshold(tt.want, 1e-6), "got %v", got)
			assert.InDelta(t, 1, got.Len(), 1e-6)
		})
	}
}

func TestRigShade(t *testing.T) {
	r := NewRig(0.5, 0.5, 0, 90) // Sun straight overhead
	albedo := mgl32.Vec3{1, 0.5, 0}

	up := r.Shade(albedo, mgl32.Vec3{0, 1, 0})
	assert.True(t, up.ApproxEqualThreshold(albedo, 1e-5), "fully lit: %v", up)

	down := r.Shade(albedo, mgl32.Vec3{0, -1, 0})
	assert.True(t, down.ApproxEqualThreshold(albedo.Mul(0.5), 1e-5), "ambient only: %v", down)
}

func TestDefaultRig(t *testing.T) {
	r := DefaultRig(0.6, 0.8)
	assert.Equal(t, float32(0.6), r.Ambient.Intensity)
	assert.Equal(t, float32(0.8), r.Sun.Intensity)
	assert.Less(t, r.Sun.Direction[1], float32(0), "sun shines downward")
}
