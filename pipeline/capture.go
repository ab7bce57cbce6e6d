package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
)

// DepthTargetDesc describes the depth capture: a sampleable 16-bit depth
// attachment without mipmaps.
func DepthTargetDesc(width, height int) render.TargetDesc {
	return render.TargetDesc{
		Label:        "aux.depth",
		Width:        width,
		Height:       height,
		Color:        render.FormatRGBA8,
		Depth:        render.FormatDepth16,
		DepthTexture: true,
		Filter:       render.FilterNearest,
	}
}

// NormalTargetDesc describes the normal capture: half-float color with
// nearest filtering and no stencil.
func NormalTargetDesc(width, height int) render.TargetDesc {
	return render.TargetDesc{
		Label:  "aux.normal",
		Width:  width,
		Height: height,
		Color:  render.FormatRGBA16F,
		Depth:  render.FormatDepth24,
		Filter: render.FilterNearest,
	}
}

// AuxiliaryBufferCapture renders the scene twice per frame into its own
// targets: once for depth and once, with every surface overridden by the
// normal material, for view-space normals.
type AuxiliaryBufferCapture struct {
	backend        render.Backend
	depth          render.RenderTarget
	normal         render.RenderTarget
	normalMaterial *scene.Material
}

// NewAuxiliaryBufferCapture allocates both capture targets at width x height.
func NewAuxiliaryBufferCapture(b render.Backend, width, height int) (*AuxiliaryBufferCapture, error) {
	c := &AuxiliaryBufferCapture{backend: b, normalMaterial: scene.NewNormalMaterial()}
	set, err := c.allocate(width, height)
	if err != nil {
		return nil, err
	}
	c.install(set)
	return c, nil
}

func (c *AuxiliaryBufferCapture) allocate(width, height int) (targetSet, error) {
	set, err := allocate(c.backend, DepthTargetDesc(width, height), NormalTargetDesc(width, height))
	if err != nil {
		return nil, fmt.Errorf("auxiliary capture targets: %w", err)
	}
	return set, nil
}

// install swaps in a new target set and returns the previous one.
func (c *AuxiliaryBufferCapture) install(set targetSet) targetSet {
	old := targetSet{c.depth, c.normal}
	c.depth, c.normal = set[0], set[1]
	return old
}

// DepthTexture returns the sampleable depth of the last capture.
func (c *AuxiliaryBufferCapture) DepthTexture() render.Texture {
	if c.depth == nil {
		return nil
	}
	return c.depth.DepthTexture()
}

// NormalTexture returns the packed view-space normals of the last capture.
func (c *AuxiliaryBufferCapture) NormalTexture() render.Texture {
	if c.normal == nil {
		return nil
	}
	return c.normal.ColorTexture()
}

// Targets returns the depth and normal targets.
func (c *AuxiliaryBufferCapture) Targets() []render.RenderTarget {
	return []render.RenderTarget{c.depth, c.normal}
}

// Size returns the size of the capture targets.
func (c *AuxiliaryBufferCapture) Size() (int, int) {
	if c.depth == nil {
		return 0, 0
	}
	return c.depth.Width(), c.depth.Height()
}

// Capture runs the depth pass then the normal pass. The previously bound
// target and the scene's material override are restored on every path.
func (c *AuxiliaryBufferCapture) Capture(f *render.Frame, obs Observer) error {
	if c.depth == nil || c.normal == nil {
		return fmt.Errorf("auxiliary capture: %w", render.ErrDisposed)
	}
	if err := f.Camera.Validate(); err != nil {
		return fmt.Errorf("auxiliary capture: %w: %v", render.ErrInvalidConfig, err)
	}
	w, h := f.Resolution()
	for _, t := range c.Targets() {
		if err := render.CheckSize(t, w, h); err != nil {
			return fmt.Errorf("auxiliary capture: %w", err)
		}
	}

	prev := c.backend.RenderTarget()
	defer c.backend.SetRenderTarget(prev)

	notify(obs, PassAuxDepth, f)
	c.backend.SetRenderTarget(c.depth)
	if err := c.backend.RenderScene(f.Scene, f.Camera); err != nil {
		return fmt.Errorf("depth pass: %w", err)
	}

	notify(obs, PassAuxNormal, f)
	c.backend.SetRenderTarget(c.normal)
	err := f.Scene.WithOverride(c.normalMaterial, func() error {
		return c.backend.RenderScene(f.Scene, f.Camera)
	})
	if err != nil {
		return fmt.Errorf("normal pass: %w", err)
	}
	log.Debug("captured auxiliary buffers", "frame", f.Index, "width", w, "height", h)
	return nil
}

// Destroy releases both capture targets.
func (c *AuxiliaryBufferCapture) Destroy() {
	targetSet{c.depth, c.normal}.destroy()
	c.depth, c.normal = nil, nil
}
