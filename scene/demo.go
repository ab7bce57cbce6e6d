package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Lighting configures the demo scene's lights and background.
type Lighting struct {
	Background           mgl32.Vec3
	AmbientColor         mgl32.Vec3
	AmbientIntensity     float32
	DirectionalColor     mgl32.Vec3
	DirectionalIntensity float32
}

// DefaultLighting matches the stock parameter panel.
func DefaultLighting() Lighting {
	return Lighting{
		Background:           mgl32.Vec3{0x1B / 255.0, 0x43 / 255.0, 0xBA / 255.0},
		AmbientColor:         mgl32.Vec3{1, 1, 1},
		AmbientIntensity:     1.1,
		DirectionalColor:     mgl32.Vec3{1, 1, 1},
		DirectionalIntensity: 12,
	}
}

// Apply copies the lighting into the scene.
func (l Lighting) Apply(s *Scene) {
	s.Background = l.Background
	s.Ambient = AmbientLight{Color: l.AmbientColor, Intensity: l.AmbientIntensity}
	s.Directional.Color = l.DirectionalColor
	s.Directional.Intensity = l.DirectionalIntensity
}

// NewDemoScene builds the stock scene: an orange sphere and a pink box on a
// white ground plane, lit from above.
func NewDemoScene(l Lighting) *Scene {
	s := New()

	sphere := NewNode("sphere", NewSphere(1, 32, 32), NewStandardMaterial(mgl32.Vec3{1, 0.647, 0}))
	sphere.Position = mgl32.Vec3{-1, 2, 1}

	box := NewNode("box", NewBox(1.5, 1.5, 1.5), NewStandardMaterial(mgl32.Vec3{1, 0.412, 0.706}))
	box.Position = mgl32.Vec3{2, 0.75, 2}
	box.Rotation = mgl32.Vec3{0, math.Pi / 3, 0}

	ground := NewNode("ground", NewPlane(10, 10, 100, 100), NewStandardMaterial(mgl32.Vec3{1, 1, 1}))
	ground.Rotation = mgl32.Vec3{-math.Pi / 2, 0, 0}

	s.Add(sphere, box, ground)
	s.Directional = DirectionalLight{Position: mgl32.Vec3{5, 5, 5}, Target: ground.Position}
	l.Apply(s)
	return s
}
