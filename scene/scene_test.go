package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraValidate(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name    string
		cam     *Camera
		wantErr bool
	}{
		{"perspective", NewPerspective(75, 1, 0.1, 100), false},
		{"nil", nil, true},
		{"zero near", NewPerspective(75, 1, 0, 100), true},
		{"far before near", NewPerspective(75, 1, 10, 1), true},
		{"equal planes", NewPerspective(75, 1, 5, 5), true},
		{"nan far", NewPerspective(75, 1, 0.1, nan), true},
		{"inf far", NewPerspective(75, 1, 0.1, float32(math.Inf(1))), true},
		{"bad fov", NewPerspective(180, 1, 0.1, 100), true},
		{"ortho ignores fov", &Camera{Projection: Orthographic, Near: 1, Far: 50, OrthoHeight: 10}, false},
		{"ortho zero height", &Camera{Projection: Orthographic, Near: 1, Far: 50}, true},
		{"ortho negative height", &Camera{Projection: Orthographic, Near: 1, Far: 50, OrthoHeight: -2}, true},
		{"ortho nan height", &Camera{Projection: Orthographic, Near: 1, Far: 50, OrthoHeight: nan}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cam.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCameraProjectsDepthRange(t *testing.T) {
	cam := NewPerspective(60, 1, 1, 50)
	cam.Position = mgl32.Vec3{0, 0, 0}
	cam.Target = mgl32.Vec3{0, 0, -1}

	ndcZ := func(dist float32) float32 {
		clip := cam.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, -dist, 1})
		return clip[2] / clip[3]
	}
	assert.InDelta(t, -1, ndcZ(1), 1e-5)
	assert.InDelta(t, 1, ndcZ(50), 1e-4)

	cam.SetAspect(1600, 800)
	assert.Equal(t, float32(2), cam.Aspect)
	cam.SetAspect(10, 0)
	assert.Equal(t, float32(2), cam.Aspect)
}

func TestWithOverrideRestores(t *testing.T) {
	s := New()
	n := NewNode("n", NewBox(1, 1, 1), NewStandardMaterial(mgl32.Vec3{1, 0, 0}))
	s.Add(n)
	normal := NewNormalMaterial()

	err := s.WithOverride(normal, func() error {
		assert.Same(t, normal, s.MaterialFor(n))
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Nil(t, s.OverrideMaterial())
	assert.Same(t, n.Material, s.MaterialFor(n))

	assert.Panics(t, func() {
		_ = s.WithOverride(normal, func() error { panic("draw failed") })
	})
	assert.Nil(t, s.OverrideMaterial())
}

func TestMeshes(t *testing.T) {
	tests := []struct {
		mesh      *Mesh
		triangles int
	}{
		{NewBox(1, 2, 3), 12},
		{NewPlane(10, 10, 2, 3), 12},
		{NewSphere(1, 8, 4), 48},
	}
	for _, tt := range tests {
		t.Run(tt.mesh.Name, func(t *testing.T) {
			m := tt.mesh
			assert.Equal(t, tt.triangles, m.TriangleCount())
			require.Len(t, m.Normals, len(m.Positions))
			for _, i := range m.Indices {
				require.Less(t, int(i), len(m.Positions))
			}
			for _, n := range m.Normals {
				assert.InDelta(t, 1, n.Len(), 1e-5)
			}
		})
	}
}

func TestPackNormal(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0.5, 1, 0}, PackNormal(mgl32.Vec3{0, 1, -1}))
}

func TestShade(t *testing.T) {
	dir := DirectionalLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 2, Position: mgl32.Vec3{0, 5, 0}}
	amb := AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}

	lit := Shade(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 0}, amb, dir)
	assert.InDelta(t, 3/math.Pi, lit[0], 1e-5)

	// facing away only receives ambient light
	dark := Shade(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, -1, 0}, amb, dir)
	assert.InDelta(t, 1/math.Pi, dark[0], 1e-5)
}

func TestOrbit(t *testing.T) {
	cam := NewPerspective(75, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	o := NewOrbit(cam)
	assert.InDelta(t, 5, o.Distance, 1e-5)

	o.Zoom(100)
	assert.Equal(t, float32(15), o.Distance)
	o.Zoom(0.001)
	assert.Equal(t, float32(1), o.Distance)

	o.Rotate(0, 10)
	assert.Less(t, o.Polar, math.Pi)
	o.Apply(cam)
	assert.InDelta(t, 1, cam.Position.Sub(cam.Target).Len(), 1e-5)
}
