package pipeline

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/effect"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
	"github.com/richinsley/gomoebius/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCamera(v render.Viewport) *scene.Camera {
	w, h := v.Resolution()
	cam := scene.NewPerspective(75, float32(w)/float32(h), 0.1, 100)
	cam.Position = mgl32.Vec3{6, 5, 8}
	cam.Target = mgl32.Vec3{0, 1, 0}
	return cam
}

func newTestPipeline(t *testing.T, v render.Viewport, obs Observer) (*Pipeline, *soft.Backend) {
	t.Helper()
	b := soft.New()
	p, err := New(Config{
		Backend:  b,
		Scene:    scene.NewDemoScene(scene.DefaultLighting()),
		Camera:   testCamera(v),
		Viewport: v,
		Params:   DefaultParams(),
		Observer: obs,
	})
	require.NoError(t, err)
	t.Cleanup(p.Dispose)
	return p, b
}

var framePasses = []string{
	PassAuxDepth, PassAuxNormal, PassMain,
	"effect.outline", "effect.tonemap", "effect.antialias",
	PassPresent,
}

func TestPassOrder(t *testing.T) {
	rec := &Recorder{}
	p, _ := newTestPipeline(t, render.Viewport{Width: 16, Height: 9, PixelRatio: 1}, rec)

	require.NoError(t, p.Step(1.0/60))
	assert.Equal(t, framePasses, rec.Passes())

	rec.Reset()
	require.NoError(t, p.Step(1.0/60))
	require.NoError(t, p.Step(1.0/60))
	assert.Equal(t, append(append([]string(nil), framePasses...), framePasses...), rec.Passes())
	assert.Equal(t, int64(3), p.Scheduler().Frames())
}

func TestSchedulerStates(t *testing.T) {
	p, _ := newTestPipeline(t, render.Viewport{Width: 8, Height: 8, PixelRatio: 1}, nil)
	states := map[string]State{}
	p.Scheduler().AddObserver(ObserverFunc(func(name string, _ *render.Frame) {
		states[name] = p.Scheduler().State()
	}))

	assert.Equal(t, Idle, p.Scheduler().State())
	require.NoError(t, p.Step(0.1))
	assert.Equal(t, Idle, p.Scheduler().State())

	assert.Equal(t, AuxCapture, states[PassAuxDepth])
	assert.Equal(t, AuxCapture, states[PassAuxNormal])
	assert.Equal(t, MainRender, states[PassMain])
	assert.Equal(t, PostEffects, states["effect.outline"])
	assert.Equal(t, PostEffects, states["effect.antialias"])
	assert.Equal(t, Presented, states[PassPresent])
}

func TestObserversFanOut(t *testing.T) {
	first := &Recorder{}
	p, _ := newTestPipeline(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1}, first)
	second, third := &Recorder{}, &Recorder{}
	p.Scheduler().AddObserver(second)
	p.Scheduler().AddObserver(third)

	require.NoError(t, p.Step(0.1))
	assert.Equal(t, framePasses, first.Passes())
	assert.Equal(t, framePasses, second.Passes())
	assert.Equal(t, framePasses, third.Passes())
}

func TestResizeIsAtomic(t *testing.T) {
	p, b := newTestPipeline(t, render.Viewport{Width: 16, Height: 9, PixelRatio: 1}, nil)
	require.NoError(t, p.Step(0.1))
	assert.Equal(t, 4, b.LiveTargets())

	old := append(p.Capture().Targets(), p.Scheduler().composer.Targets()...)

	type sizes struct{ capture, composer, frame [2]int }
	var seen []sizes
	p.Scheduler().AddObserver(ObserverFunc(func(name string, f *render.Frame) {
		if name != PassAuxDepth {
			return
		}
		var s sizes
		s.capture[0], s.capture[1] = p.Capture().Size()
		s.composer[0], s.composer[1] = p.Scheduler().composer.Size()
		s.frame[0], s.frame[1] = f.Resolution()
		seen = append(seen, s)
	}))

	p.Resize(render.Viewport{Width: 10, Height: 10, PixelRatio: 2})
	require.NoError(t, p.Step(0.1))

	require.Len(t, seen, 1)
	want := [2]int{20, 20}
	assert.Equal(t, sizes{want, want, want}, seen[0])
	assert.Equal(t, 1, p.Scheduler().Resizes())
	assert.Equal(t, 4, b.LiveTargets(), "old targets released")
	for _, rt := range old {
		assert.True(t, rt.(*soft.Target).Destroyed(), rt.Desc().Label)
	}
	assert.Equal(t, mgl32.Vec2{20, 20}, p.Effects()[0].Resolution())
	assert.Equal(t, 20, p.Output().Width())
	assert.InDelta(t, 1, p.Camera().Aspect, 1e-6)

	// same viewport again: nothing is recreated
	p.Resize(render.Viewport{Width: 10, Height: 10, PixelRatio: 2})
	require.NoError(t, p.Step(0.1))
	assert.Equal(t, 1, p.Scheduler().Resizes())
}

func TestReadyFlag(t *testing.T) {
	p, b := newTestPipeline(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1}, nil)
	assert.True(t, Ready())

	p.Dispose()
	assert.False(t, Ready())
	assert.Equal(t, 0, b.LiveTargets())
	assert.ErrorIs(t, p.Step(0.1), render.ErrDisposed)
	assert.ErrorIs(t, p.Apply(DefaultParams()), render.ErrDisposed)
	p.Dispose()
}

func TestReadyCountsLivePipelines(t *testing.T) {
	require.False(t, Ready())
	a, _ := newTestPipeline(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1}, nil)
	b, _ := newTestPipeline(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1}, nil)

	a.Dispose()
	assert.True(t, Ready(), "second pipeline is still live")
	a.Dispose()
	assert.True(t, Ready(), "disposing twice withdraws once")
	b.Dispose()
	assert.False(t, Ready())
}

func TestNewReleasesOnFailure(t *testing.T) {
	b := soft.New()
	v := render.Viewport{Width: 4, Height: 4, PixelRatio: 1}
	base := Config{
		Backend:  b,
		Scene:    scene.NewDemoScene(scene.DefaultLighting()),
		Camera:   testCamera(v),
		Viewport: v,
		Params:   DefaultParams(),
	}

	cfg := base
	cfg.ComposerFormat = render.FormatDepth16
	_, err := New(cfg)
	assert.ErrorIs(t, err, render.ErrInvalidConfig)
	assert.Equal(t, 0, b.LiveTargets())

	cfg = base
	cfg.Params.ToneMap.Contrast = 0
	_, err = New(cfg)
	assert.ErrorIs(t, err, render.ErrInvalidConfig)

	cfg = base
	cfg.Backend = nil
	_, err = New(cfg)
	assert.ErrorIs(t, err, render.ErrInvalidConfig)

	cfg = base
	cfg.Camera = testCamera(v)
	cfg.Camera.Near = -1
	_, err = New(cfg)
	assert.ErrorIs(t, err, render.ErrInvalidConfig)
	assert.Equal(t, 0, b.LiveTargets())
}

func TestApplyIsAllOrNothing(t *testing.T) {
	p, _ := newTestPipeline(t, render.Viewport{Width: 4, Height: 4, PixelRatio: 1}, nil)
	ids := make([]any, 0, 3)
	for _, e := range p.Effects() {
		ids = append(ids, e.ID())
	}

	bad := DefaultParams()
	bad.Outline = effect.OutlineConfig{Frequency: 0.1, Amplitude: 1}
	bad.ToneMap.MaxLuminance = 0
	assert.ErrorIs(t, p.Apply(bad), render.ErrInvalidConfig)
	assert.Equal(t, DefaultParams(), p.Params())

	good := DefaultParams()
	good.Outline = effect.OutlineConfig{Frequency: 0.1, Amplitude: 1}
	good.Antialias.Preset = effect.PresetLow
	good.ToneMap.Enabled = false
	require.NoError(t, p.Apply(good))
	assert.Equal(t, good, p.Params())
	for i, e := range p.Effects() {
		assert.Equal(t, ids[i], e.ID(), "effects are updated in place")
	}
	require.NoError(t, p.Step(0.1))
}

func TestOutputIsPresented(t *testing.T) {
	p, b := newTestPipeline(t, render.Viewport{Width: 12, Height: 8, PixelRatio: 1}, nil)
	require.NoError(t, p.Step(0.1))

	screen, err := b.ReadPixels(nil)
	require.NoError(t, err)
	out, err := b.ReadPixels(p.Output())
	require.NoError(t, err)
	assert.Equal(t, out.Pix, screen.Pix)
	assert.Equal(t, 12, screen.Bounds().Dx())
}
