package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit moves a camera on a sphere around a target. It is the camera
// controller used by the interactive viewer and the auto-orbiting recorders.
type Orbit struct {
	Target      mgl32.Vec3
	Distance    float32
	Azimuth     float64 // radians around +Y
	Polar       float64 // radians from +Y
	MinDistance float32
	MaxDistance float32
}

// NewOrbit returns an orbit that reproduces the camera's current position.
func NewOrbit(c *Camera) *Orbit {
	offset := c.Position.Sub(c.Target)
	d := offset.Len()
	o := &Orbit{Target: c.Target, Distance: d, MinDistance: 1, MaxDistance: 15}
	if d > 0 {
		o.Polar = math.Acos(float64(offset[1] / d))
		o.Azimuth = math.Atan2(float64(offset[0]), float64(offset[2]))
	}
	return o
}

// Rotate adds to the azimuth and polar angles. The polar angle stays clear of
// the poles.
func (o *Orbit) Rotate(dAzimuth, dPolar float64) {
	o.Azimuth += dAzimuth
	o.Polar = math.Max(0.01, math.Min(math.Pi-0.01, o.Polar+dPolar))
}

// Zoom scales the distance, clamped to [MinDistance, MaxDistance].
func (o *Orbit) Zoom(factor float32) {
	d := o.Distance * factor
	if o.MinDistance > 0 && d < o.MinDistance {
		d = o.MinDistance
	}
	if o.MaxDistance > 0 && d > o.MaxDistance {
		d = o.MaxDistance
	}
	o.Distance = d
}

// Apply writes the orbit position into the camera.
func (o *Orbit) Apply(c *Camera) {
	sp := math.Sin(o.Polar)
	offset := mgl32.Vec3{
		float32(sp * math.Sin(o.Azimuth)),
		float32(math.Cos(o.Polar)),
		float32(sp * math.Cos(o.Azimuth)),
	}.Mul(o.Distance)
	c.Target = o.Target
	c.Position = o.Target.Add(offset)
}
