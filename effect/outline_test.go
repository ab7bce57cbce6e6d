package effect

import (
	"image"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
	"github.com/richinsley/gomoebius/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// windowDepth is the depth buffer value of a point dist units in front of a
// perspective camera.
func windowDepth(dist, near, far float32) float32 {
	return (1/dist - 1/near) / (1/far - 1/near)
}

func TestLinearDepth(t *testing.T) {
	near, far := float32(1), float32(50)
	assert.InDelta(t, 0, linearDepth(0, near, far, false), 1e-6)
	assert.InDelta(t, 1, linearDepth(1, near, far, false), 1e-6)
	assert.InDelta(t, (5.0-1)/49, linearDepth(windowDepth(5, near, far), near, far, false), 1e-5)
	assert.Equal(t, float32(0.25), linearDepth(0.25, near, far, true))
}

func TestOutlineConfigValidate(t *testing.T) {
	assert.NoError(t, OutlineConfig{Frequency: 0.04, Amplitude: 2}.Validate())
	assert.NoError(t, OutlineConfig{Frequency: MaxFrequency, Amplitude: MaxAmplitude}.Validate())
	for _, c := range []OutlineConfig{
		{Frequency: -0.01, Amplitude: 1},
		{Frequency: 0.2, Amplitude: 1},
		{Frequency: 0.04, Amplitude: 5.5},
		{Frequency: 0.04, Amplitude: -1},
	} {
		assert.ErrorIs(t, c.Validate(), render.ErrInvalidConfig, "%+v", c)
	}
}

func TestNewOutlineRequiresAux(t *testing.T) {
	_, err := NewOutline(OutlineConfig{}, nil, nil)
	assert.ErrorIs(t, err, render.ErrInvalidConfig)
	_, err = NewOutline(OutlineConfig{}, &auxStub{}, nil)
	assert.ErrorIs(t, err, render.ErrInvalidConfig)
}

func newOutline(t *testing.T, f *fixture, cfg OutlineConfig, noise render.Texture) *Effect {
	t.Helper()
	e, err := NewOutline(cfg, f.aux, noise)
	require.NoError(t, err)
	require.NoError(t, e.Compile(f.b))
	return e
}

func TestOutlineDrawsDepthEdges(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 16, Height: 16, PixelRatio: 1})
	near, far := f.frame.Camera.Near, f.frame.Camera.Far
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			dist := float32(5)
			if x >= 8 {
				dist = 20
			}
			f.depth.Set(x, y, mgl32.Vec4{windowDepth(dist, near, far)})
		}
	}
	f.fillInput(mgl32.Vec4{1, 1, 1, 1})
	black, white := mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec4{1, 1, 1, 1}

	for _, amp := range []float32{0.4, 2, MaxAmplitude} {
		for _, freq := range []float32{0, 0.04, MaxFrequency} {
			e := newOutline(t, f, OutlineConfig{Frequency: freq, Amplitude: amp}, nil)
			require.NoError(t, e.Execute(f.frame, f.in.ColorTexture(), f.out))

			band := int(math32.Ceil(amp))
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					// the step lies between columns 7 and 8, so only Sobel
					// windows centered on 7 or 8 see it
					wx, _ := warp(x, y, freq, amp)
					col := int(math32.Floor(wx))
					want := white
					if col == 7 || col == 8 {
						want = black
					}
					assert.Equal(t, want, f.outAt(x, y), "amp %v freq %v pixel (%d,%d)", amp, freq, x, y)
					if x < 7-band || x > 8+band {
						assert.Equal(t, white, f.outAt(x, y), "amp %v freq %v: ink outside the warp band at (%d,%d)", amp, freq, x, y)
					}
				}
			}
			// the first row shifts by less than half a pixel at any allowed setting
			assert.Equal(t, black, f.outAt(7, 0), "amp %v freq %v", amp, freq)
			assert.Equal(t, black, f.outAt(8, 0), "amp %v freq %v", amp, freq)
			if freq == 0 {
				for y := 0; y < 16; y++ {
					assert.Equal(t, black, f.outAt(7, y), "amp %v unwarped row %d", amp, y)
					assert.Equal(t, black, f.outAt(8, y), "amp %v unwarped row %d", amp, y)
				}
			}
			e.Destroy()
		}
	}
}

func TestOutlineWarpStaysWithinAmplitude(t *testing.T) {
	for _, amp := range []float32{0.4, 2, MaxAmplitude} {
		for y := 0; y < 32; y++ {
			for x := 0; x < 32; x++ {
				wx, wy := warp(x, y, MaxFrequency, amp)
				assert.LessOrEqual(t, math32.Abs(wx-float32(x)-0.5), amp+1e-4)
				assert.LessOrEqual(t, math32.Abs(wy-float32(y)-0.5), amp+1e-4)
			}
		}
	}
	wx, wy := warp(3, 9, 0.04, 0)
	assert.Equal(t, float32(3.5), wx)
	assert.Equal(t, float32(9.5), wy)
}

func TestGLSLMod(t *testing.T) {
	assert.Equal(t, float32(4), mod(-60, 8))
	assert.Equal(t, float32(0), mod(-64, 8))
	assert.Equal(t, float32(1), mod(1089, 8))
	assert.InDelta(t, 7.5, mod(-0.5, 8), 1e-6)
}

// Frames taller than 1024 px drive the cross hatch argument negative.
func TestOutlineCrossHatchOnTallFrames(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 4, Height: 1100, PixelRatio: 1})
	f.depth.Fill(mgl32.Vec4{0.5})
	f.fillInput(mgl32.Vec4{0.05, 0.05, 0.05, 1})

	e := newOutline(t, f, OutlineConfig{}, nil)
	require.NoError(t, e.Execute(f.frame, f.in.ColorTexture(), f.out))

	// 0.5-1086.5+1026 = -60, which is 4 mod 8
	assert.InDelta(t, 0.05, f.outAt(0, 1086)[0], 1.0/255)
	// 0.5-1090.5+1026 = -64, which is 0 mod 8
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, f.outAt(0, 1090))

	inked := 0
	for y := 1030; y < 1100; y++ {
		if f.outAt(0, y)[0] == 0 {
			inked++
		}
	}
	// one hatch line and one cross hatch line every 8 rows
	assert.LessOrEqual(t, inked, 2*(70/8+1))
}

func TestOutlineDrawsNormalEdges(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 8, Height: 8, PixelRatio: 1})
	f.depth.Fill(mgl32.Vec4{0.5})
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			f.normal.Set(x, y, scene.PackNormal(mgl32.Vec3{1, 0, 0}).Vec4(1))
		}
	}
	f.fillInput(mgl32.Vec4{1, 1, 1, 1})

	e := newOutline(t, f, OutlineConfig{}, nil)
	require.NoError(t, e.Execute(f.frame, f.in.ColorTexture(), f.out))
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, f.outAt(3, 2))
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, f.outAt(1, 2))
}

func TestOutlineHatchesDarkRegions(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 8, Height: 8, PixelRatio: 1})
	f.depth.Fill(mgl32.Vec4{0.5})
	dark := mgl32.Vec4{0.05, 0.05, 0.05, 1}
	f.fillInput(dark)

	e := newOutline(t, f, OutlineConfig{}, nil)
	require.NoError(t, e.Execute(f.frame, f.in.ColorTexture(), f.out))

	// without a noise texture the hatch offset is 2: lines where x+y = 5 mod 8
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, f.outAt(2, 3))
	// cross hatch: x-y = 6 mod 8
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, f.outAt(7, 1))
	untouched := f.outAt(0, 0)
	assert.InDelta(t, 0.05, untouched[0], 1.0/255)

	// bright input is never hatched
	f.fillInput(mgl32.Vec4{0.8, 0.8, 0.8, 1})
	require.NoError(t, e.Execute(f.frame, f.in.ColorTexture(), f.out))
	assert.InDelta(t, 0.8, f.outAt(2, 3)[0], 1.0/255)
}

func TestOutlineNoiseShiftsHatching(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 8, Height: 8, PixelRatio: 1})
	f.depth.Fill(mgl32.Vec4{0.5})
	f.fillInput(mgl32.Vec4{0.2, 0.2, 0.2, 1})

	// a black noise texture moves the offset from 2 to 0
	noise, err := f.b.NewTexture(image.NewRGBA(image.Rect(0, 0, 4, 4)), render.TextureDesc{Label: "noise", Repeat: true})
	require.NoError(t, err)
	e := newOutline(t, f, OutlineConfig{}, noise)
	assert.True(t, e.Uniforms().Bool("uHasNoise"))
	require.NoError(t, e.Execute(f.frame, f.in.ColorTexture(), f.out))

	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, f.outAt(3, 4), "pixel centers sum to 8")
	assert.InDelta(t, 0.2, f.outAt(2, 3)[0], 1.0/255)
}

func TestOutlineResolutionFollowsViewport(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 8, Height: 6, PixelRatio: 3})
	e := newOutline(t, f, OutlineConfig{Frequency: 0.04, Amplitude: 2}, nil)

	require.NoError(t, e.Update(f.frame))
	assert.Equal(t, mgl32.Vec2{16, 12}, e.Resolution(), "pixel ratio capped at 2")
	assert.Equal(t, float32(1), e.Uniforms().Float("cameraNear"))
	assert.Equal(t, float32(50), e.Uniforms().Float("cameraFar"))
	assert.False(t, e.Uniforms().Bool("cameraOrthographic"))

	f.frame.Viewport = render.Viewport{Width: 10, Height: 10, PixelRatio: 1}
	require.NoError(t, e.Update(f.frame))
	assert.Equal(t, mgl32.Vec2{10, 10}, e.Resolution())
}

func TestOutlineFollowsRecreatedBuffers(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1})
	e := newOutline(t, f, OutlineConfig{}, nil)

	replacement := target(t, f.b, render.TargetDesc{Label: "depth2", Width: 4, Height: 4,
		Color: render.FormatRGBA8, Depth: render.FormatDepth16, DepthTexture: true})
	f.aux.depth = replacement.DepthTexture()
	require.NoError(t, e.Update(f.frame))
	assert.Same(t, replacement.DepthTexture().(*soft.Texture), e.Uniforms().Texture("uDepth").(*soft.Texture))

	f.aux.depth = nil
	assert.ErrorIs(t, e.Update(f.frame), render.ErrDisposed)
}

func TestOutlineRejectsInvalidCamera(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1})
	e := newOutline(t, f, OutlineConfig{}, nil)
	f.frame.Camera.Far = f.frame.Camera.Near
	assert.Error(t, e.Update(f.frame))
}

func TestSetOutline(t *testing.T) {
	f := newFixture(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1})
	e := newOutline(t, f, OutlineConfig{Frequency: 0.04, Amplitude: 2}, nil)
	require.NoError(t, e.SetOutline(OutlineConfig{Frequency: 0.1, Amplitude: 4}))
	assert.Equal(t, OutlineConfig{Frequency: 0.1, Amplitude: 4}, e.OutlineConfig())

	assert.Error(t, e.SetOutline(OutlineConfig{Frequency: 1}))
	assert.Equal(t, OutlineConfig{Frequency: 0.1, Amplitude: 4}, e.OutlineConfig())
}
