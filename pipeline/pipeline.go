// Package pipeline assembles the per-frame render pipeline: auxiliary buffer
// capture, main scene render, the ordered effect chain and present.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/richinsley/gomoebius/effect"
	"github.com/richinsley/gomoebius/inputs"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
)

// Params are the parameters that may change between frames.
type Params struct {
	Outline   effect.OutlineConfig
	ToneMap   effect.ToneMapParams
	Antialias effect.AntialiasConfig
}

// Validate checks every parameter group.
func (p Params) Validate() error {
	if err := p.Outline.Validate(); err != nil {
		return err
	}
	if err := p.ToneMap.Validate(); err != nil {
		return err
	}
	if p.Antialias.Preset < effect.PresetLow || p.Antialias.Preset > effect.PresetUltra {
		return fmt.Errorf("%w: antialias preset %v", render.ErrInvalidConfig, p.Antialias.Preset)
	}
	return nil
}

// DefaultParams returns the stock look.
func DefaultParams() Params {
	return Params{
		Outline:   effect.OutlineConfig{Frequency: 0.04, Amplitude: 2},
		ToneMap:   effect.DefaultToneMap,
		Antialias: effect.AntialiasConfig{Preset: effect.PresetUltra},
	}
}

// Config is everything New needs.
type Config struct {
	Backend  render.Backend
	Scene    *scene.Scene
	Camera   *scene.Camera
	Viewport render.Viewport
	Params   Params

	// ComposerFormat defaults to rgba8.
	ComposerFormat render.Format
	// Noise is the hatching noise image; a procedural one is used when nil.
	Noise image.Image
	// Observer, when set, is told about every pass.
	Observer Observer
}

// Pipeline owns every render target and effect of the stylized renderer.
type Pipeline struct {
	backend  render.Backend
	scene    *scene.Scene
	camera   *scene.Camera
	viewport render.Viewport

	capture   *AuxiliaryBufferCapture
	composer  *Composer
	scheduler *Scheduler
	noise     render.Texture

	outline   *effect.Effect
	toneMap   *effect.Effect
	antialias *effect.Effect

	frame    int64
	time     float64
	disposed bool
}

type destroyer interface{ Destroy() }

// New builds the pipeline. Either every resource is created or none is: on
// error everything allocated so far is released.
func New(cfg Config) (p *Pipeline, err error) {
	switch {
	case cfg.Backend == nil:
		return nil, fmt.Errorf("%w: no backend", render.ErrInvalidConfig)
	case cfg.Scene == nil:
		return nil, fmt.Errorf("%w: no scene", render.ErrInvalidConfig)
	}
	if err := cfg.Camera.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", render.ErrInvalidConfig, err)
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	var cleanup []func()
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				cleanup[i]()
			}
		}
	}()

	b := cfg.Backend
	w, h := cfg.Viewport.Resolution()
	p = &Pipeline{backend: b, scene: cfg.Scene, camera: cfg.Camera, viewport: cfg.Viewport}

	p.capture, err = NewAuxiliaryBufferCapture(b, w, h)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, p.capture.Destroy)

	p.composer, err = NewComposer(b, ComposerConfig{Format: cfg.ComposerFormat}, w, h)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, p.composer.Destroy)

	noise := cfg.Noise
	if noise == nil {
		noise = inputs.ProceduralNoise(inputs.DefaultNoiseSize, 1)
	}
	p.noise, err = b.NewTexture(noise, render.TextureDesc{Label: "noise", Filter: render.FilterNearest, Repeat: true})
	if err != nil {
		return nil, fmt.Errorf("noise texture: %w", err)
	}
	if d, ok := p.noise.(destroyer); ok {
		cleanup = append(cleanup, d.Destroy)
	}

	if p.outline, err = effect.NewOutline(cfg.Params.Outline, p.capture, p.noise); err != nil {
		return nil, err
	}
	if p.toneMap, err = effect.NewToneMap(cfg.Params.ToneMap); err != nil {
		return nil, err
	}
	if p.antialias, err = effect.NewAntialias(cfg.Params.Antialias, p.capture); err != nil {
		return nil, err
	}
	for _, e := range []*effect.Effect{p.outline, p.toneMap, p.antialias} {
		if err = p.composer.AddEffect(e); err != nil {
			return nil, err
		}
	}

	p.scheduler = NewScheduler(b, p.capture, p.composer, cfg.Observer)
	live.Add(1)
	log.Info("pipeline ready", "backend", b.Name(), "width", w, "height", h)
	return p, nil
}

// Step renders one frame dt seconds after the previous one.
func (p *Pipeline) Step(dt float64) error {
	if p.disposed {
		return fmt.Errorf("pipeline: %w", render.ErrDisposed)
	}
	p.time += dt
	f := &render.Frame{
		Index:    p.frame,
		Time:     p.time,
		Delta:    dt,
		Viewport: p.viewport,
		Camera:   p.camera,
		Scene:    p.scene,
		Backend:  p.backend,
	}
	w, h := f.Resolution()
	p.camera.SetAspect(w, h)
	if err := p.scheduler.Step(f); err != nil {
		return fmt.Errorf("frame %d: %w", p.frame, err)
	}
	p.frame++
	return nil
}

// Apply changes the effect parameters. It must be called between frames.
// Nothing changes unless the whole set is valid.
func (p *Pipeline) Apply(params Params) error {
	if p.disposed {
		return fmt.Errorf("pipeline: %w", render.ErrDisposed)
	}
	if err := params.Validate(); err != nil {
		return err
	}
	return errors.Join(
		p.outline.SetOutline(params.Outline),
		p.toneMap.SetToneMap(params.ToneMap),
		p.antialias.SetAntialias(params.Antialias),
	)
}

// Params returns the parameters currently in effect.
func (p *Pipeline) Params() Params {
	return Params{
		Outline:   p.outline.OutlineConfig(),
		ToneMap:   p.toneMap.ToneMapParams(),
		Antialias: p.antialias.AntialiasConfig(),
	}
}

// Resize records a new viewport. Targets are recreated at the start of the
// next frame.
func (p *Pipeline) Resize(v render.Viewport) {
	p.viewport = v
	p.scheduler.RequestResize(v)
}

// Viewport returns the viewport the next frame renders at.
func (p *Pipeline) Viewport() render.Viewport { return p.viewport }

// Output returns the target holding the last composited frame.
func (p *Pipeline) Output() render.RenderTarget {
	return p.composer.Output()
}

// Effects returns the composite chain in execution order.
func (p *Pipeline) Effects() []*effect.Effect {
	return p.composer.Effects()
}

func (p *Pipeline) Capture() *AuxiliaryBufferCapture { return p.capture }
func (p *Pipeline) Scheduler() *Scheduler            { return p.scheduler }
func (p *Pipeline) Camera() *scene.Camera            { return p.camera }
func (p *Pipeline) Scene() *scene.Scene              { return p.scene }

// Dispose releases every resource and withdraws the pipeline from Ready.
func (p *Pipeline) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.composer.Destroy()
	p.capture.Destroy()
	if d, ok := p.noise.(destroyer); ok {
		d.Destroy()
	}
	live.Add(-1)
	log.Info("pipeline disposed", "frames", p.scheduler.Frames())
}
