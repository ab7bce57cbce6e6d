package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TargetDesc describes an off-screen render target.
type TargetDesc struct {
	Label  string
	Width  int
	Height int

	Color Format
	// Depth is FormatNone for targets without a depth attachment.
	Depth Format
	// DepthTexture exposes the depth attachment as a sampleable texture
	// instead of a renderbuffer.
	DepthTexture bool

	Filter  Filter
	Mipmaps bool
	Stencil bool
	// Samples must be 0; antialiasing is done by a dedicated pass.
	Samples int
}

// WithSize returns a copy of d resized to width x height.
func (d TargetDesc) WithSize(width, height int) TargetDesc {
	d.Width = width
	d.Height = height
	return d
}

// Validate checks the descriptor for impossible combinations.
func (d TargetDesc) Validate() error {
	switch {
	case d.Width <= 0 || d.Height <= 0:
		return fmt.Errorf("%w: target %q has size %dx%d", ErrInvalidConfig, d.Label, d.Width, d.Height)
	case d.Color == FormatNone || d.Color.IsDepth():
		return fmt.Errorf("%w: target %q has color format %s", ErrInvalidConfig, d.Label, d.Color)
	case d.Depth != FormatNone && !d.Depth.IsDepth():
		return fmt.Errorf("%w: target %q has depth format %s", ErrInvalidConfig, d.Label, d.Depth)
	case d.DepthTexture && d.Depth == FormatNone:
		return fmt.Errorf("%w: target %q samples a missing depth attachment", ErrInvalidConfig, d.Label)
	case d.Samples != 0:
		return fmt.Errorf("%w: target %q requests %d samples, multisampling is disabled", ErrInvalidConfig, d.Label, d.Samples)
	}
	return nil
}

// Texture is a sampleable image owned by a backend.
type Texture interface {
	Width() int
	Height() int
	Format() Format
}

// Sampler is a Texture with CPU-side texel access. Coordinates outside the
// texture are clamped to the edge.
type Sampler interface {
	Texture
	At(x, y int) mgl32.Vec4
}

// RenderTarget is an off-screen color/depth attachment pair. Its size is
// fixed at creation; a resized target is a new target.
type RenderTarget interface {
	Desc() TargetDesc
	Width() int
	Height() int
	ColorTexture() Texture
	// DepthTexture is nil unless the descriptor requested one.
	DepthTexture() Texture
	Destroy()
}

// CheckSize returns ErrStaleTarget when t does not match width x height.
func CheckSize(t RenderTarget, width, height int) error {
	if t == nil {
		return fmt.Errorf("%w: missing target", ErrDisposed)
	}
	if t.Width() != width || t.Height() != height {
		return fmt.Errorf("%w: %q is %dx%d, active resolution is %dx%d",
			ErrStaleTarget, t.Desc().Label, t.Width(), t.Height(), width, height)
	}
	return nil
}
