package pipeline

import (
	"testing"

	"github.com/richinsley/gomoebius/effect"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
	"github.com/richinsley/gomoebius/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureFrame(b render.Backend, v render.Viewport) *render.Frame {
	return &render.Frame{
		Viewport: v,
		Camera:   testCamera(v),
		Scene:    scene.NewDemoScene(scene.DefaultLighting()),
		Backend:  b,
	}
}

func TestCaptureTargets(t *testing.T) {
	depth := DepthTargetDesc(8, 4)
	assert.Equal(t, render.FormatDepth16, depth.Depth)
	assert.True(t, depth.DepthTexture)
	assert.False(t, depth.Mipmaps)
	require.NoError(t, depth.Validate())

	normal := NormalTargetDesc(8, 4)
	assert.Equal(t, render.FormatRGBA16F, normal.Color)
	assert.Equal(t, render.FilterNearest, normal.Filter)
	assert.False(t, normal.Stencil)
	require.NoError(t, normal.Validate())
}

func TestCaptureRestoresState(t *testing.T) {
	b := soft.New()
	v := render.Viewport{Width: 8, Height: 8, PixelRatio: 1}
	c, err := NewAuxiliaryBufferCapture(b, 8, 8)
	require.NoError(t, err)
	defer c.Destroy()

	other, err := b.NewRenderTarget(ComposerTargetDesc(render.FormatRGBA8, "other", 8, 8))
	require.NoError(t, err)
	b.SetRenderTarget(other)

	f := captureFrame(b, v)
	rec := &Recorder{}
	require.NoError(t, c.Capture(f, rec))
	assert.Equal(t, []string{PassAuxDepth, PassAuxNormal}, rec.Passes())
	assert.Same(t, other.(*soft.Target), b.RenderTarget().(*soft.Target))
	assert.Nil(t, f.Scene.OverrideMaterial())

	// the camera looks down at the ground, so the center has geometry in front
	// of the far plane
	depth := c.DepthTexture().(*soft.Texture)
	assert.Less(t, depth.At(4, 4)[0], float32(1))

	// a failing normal pass still restores the override and the bound target
	c.normal.Destroy()
	err = c.Capture(f, nil)
	assert.ErrorIs(t, err, render.ErrDisposed)
	assert.Same(t, other.(*soft.Target), b.RenderTarget().(*soft.Target))
	assert.Nil(t, f.Scene.OverrideMaterial())
}

func TestCaptureRejectsStaleTargets(t *testing.T) {
	b := soft.New()
	c, err := NewAuxiliaryBufferCapture(b, 8, 8)
	require.NoError(t, err)
	defer c.Destroy()

	f := captureFrame(b, render.Viewport{Width: 8, Height: 8, PixelRatio: 2})
	assert.ErrorIs(t, c.Capture(f, nil), render.ErrStaleTarget)

	f = captureFrame(b, render.Viewport{Width: 8, Height: 8, PixelRatio: 1})
	f.Camera.Far = f.Camera.Near
	assert.ErrorIs(t, c.Capture(f, nil), render.ErrInvalidConfig)

	c.Destroy()
	assert.Nil(t, c.DepthTexture())
	assert.Nil(t, c.NormalTexture())
	assert.ErrorIs(t, c.Capture(f, nil), render.ErrDisposed)
}

func TestComposerEffectOrder(t *testing.T) {
	b := soft.New()
	c, err := NewComposer(b, ComposerConfig{}, 4, 4)
	require.NoError(t, err)
	defer c.Destroy()
	assert.Equal(t, render.FormatRGBA8, c.Targets()[0].Desc().Color)

	tone, err := effect.NewToneMap(effect.DefaultToneMap)
	require.NoError(t, err)
	aa, err := effect.NewAntialias(effect.AntialiasConfig{}, nil)
	require.NoError(t, err)
	aux, err := NewAuxiliaryBufferCapture(b, 4, 4)
	require.NoError(t, err)
	defer aux.Destroy()
	outline, err := effect.NewOutline(effect.OutlineConfig{}, aux, nil)
	require.NoError(t, err)

	require.NoError(t, c.AddEffect(tone))
	assert.ErrorIs(t, c.AddEffect(outline), render.ErrInvalidConfig)
	tone2, err := effect.NewToneMap(effect.DefaultToneMap)
	require.NoError(t, err)
	assert.ErrorIs(t, c.AddEffect(tone2), render.ErrInvalidConfig)
	require.NoError(t, c.AddEffect(aa))

	kinds := []effect.Kind{}
	for _, e := range c.Effects() {
		kinds = append(kinds, e.Kind())
	}
	assert.Equal(t, []effect.Kind{effect.KindToneMap, effect.KindAntialias}, kinds)
	assert.NotNil(t, aa.Program(), "added effects are compiled")
}

func TestComposerHalfFloat(t *testing.T) {
	b := soft.New()
	c, err := NewComposer(b, ComposerConfig{Format: render.FormatRGBA16F}, 4, 4)
	require.NoError(t, err)
	defer c.Destroy()
	for _, rt := range c.Targets() {
		assert.Equal(t, render.FormatRGBA16F, rt.Desc().Color)
		assert.Equal(t, 0, rt.Desc().Samples)
	}
}
