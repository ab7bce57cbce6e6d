// Package scene holds the renderable inputs of the pipeline: meshes,
// materials, lights, the camera and the demo scene. It is deliberately small;
// the pipeline only needs something to draw and a camera to draw it with.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection is the projection kind of a camera.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// Camera is shared read-only by every pass of a frame. Only the driver moves
// it, and only between frames.
type Camera struct {
	Projection Projection
	Near       float32
	Far        float32
	// FovY is the vertical field of view in degrees (perspective only).
	FovY   float32
	Aspect float32
	// OrthoHeight is the visible height in world units (orthographic only).
	OrthoHeight float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
}

// NewPerspective returns a perspective camera looking at the origin.
func NewPerspective(fovY, aspect, near, far float32) *Camera {
	return &Camera{
		Projection: Perspective,
		FovY:       fovY,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
		Position:   mgl32.Vec3{0, 0, 5},
		Up:         mgl32.Vec3{0, 1, 0},
	}
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Validate fails when depth encoding would be undefined: near and far must be
// finite with 0 < near < far. It also rejects a degenerate projection.
func (c *Camera) Validate() error {
	if c == nil {
		return fmt.Errorf("camera is nil")
	}
	if !finite(c.Near) || !finite(c.Far) {
		return fmt.Errorf("camera near/far must be finite, got %v/%v", c.Near, c.Far)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("camera requires 0 < near < far, got %v/%v", c.Near, c.Far)
	}
	if c.Projection == Perspective && (c.FovY <= 0 || c.FovY >= 180) {
		return fmt.Errorf("camera field of view %v out of range", c.FovY)
	}
	if c.Projection == Orthographic && (!finite(c.OrthoHeight) || c.OrthoHeight <= 0) {
		return fmt.Errorf("orthographic camera height must be positive, got %v", c.OrthoHeight)
	}
	return nil
}

// SetAspect updates the aspect ratio from a drawing buffer size.
func (c *Camera) SetAspect(width, height int) {
	if height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// View returns the world-to-view matrix.
func (c *Camera) View() mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.Target, up)
}

// ProjectionMatrix returns the view-to-clip matrix.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	if c.Projection == Orthographic {
		h := c.OrthoHeight / 2
		w := h * aspect
		return mgl32.Ortho(-w, w, -h, h, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// ViewProjection returns ProjectionMatrix() * View().
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.View())
}
