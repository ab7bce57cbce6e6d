package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AmbientLight lights every surface uniformly.
type AmbientLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

// DirectionalLight shines from Position towards Target.
type DirectionalLight struct {
	Color     mgl32.Vec3
	Intensity float32
	Position  mgl32.Vec3
	Target    mgl32.Vec3
}

// Direction returns the unit vector pointing from the surface towards the light.
func (l DirectionalLight) Direction() mgl32.Vec3 {
	d := l.Position.Sub(l.Target)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

// Shade returns the lit color of a surface with the given albedo and
// world-space normal under the ambient and directional lights. The diffuse
// term is Lambertian (albedo / pi).
func Shade(albedo, normal mgl32.Vec3, ambient AmbientLight, dir DirectionalLight) mgl32.Vec3 {
	ndotl := float32(math.Max(0, float64(normal.Dot(dir.Direction()))))
	irradiance := ambient.Color.Mul(ambient.Intensity).
		Add(dir.Color.Mul(dir.Intensity * ndotl))
	brdf := albedo.Mul(1 / math.Pi)
	return mgl32.Vec3{brdf[0] * irradiance[0], brdf[1] * irradiance[1], brdf[2] * irradiance[2]}
}
