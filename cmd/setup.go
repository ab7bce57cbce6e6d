package main

import (
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/inputs"
	"github.com/richinsley/gomoebius/options"
	"github.com/richinsley/gomoebius/pipeline"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
)

const (
	cameraFovY = 75
	cameraNear = 0.1
	cameraFar  = 100
)

// passLogger reports every pass at debug level.
var passLogger = pipeline.ObserverFunc(func(name string, f *render.Frame) {
	log.Debug("pass", "name", name, "frame", f.Index)
})

func newCamera(v render.Viewport) *scene.Camera {
	w, h := v.Resolution()
	cam := scene.NewPerspective(cameraFovY, float32(w)/float32(h), cameraNear, cameraFar)
	cam.Position = mgl32.Vec3{6, 5, 8}
	cam.Target = mgl32.Vec3{0, 1, 0}
	return cam
}

// loadNoise reads a hatch noise texture. Images larger than the procedural
// noise are downsampled to its size.
func loadNoise(path string) (image.Image, error) {
	img, err := inputs.LoadImage(path, false)
	if err != nil {
		return nil, fmt.Errorf("noise texture: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= inputs.DefaultNoiseSize && b.Dy() <= inputs.DefaultNoiseSize {
		return img, nil
	}
	log.Debug("scaling noise texture", "path", path, "width", b.Dx(), "height", b.Dy())
	return inputs.Scale(img, inputs.DefaultNoiseSize, inputs.DefaultNoiseSize), nil
}

// newPipeline builds the demo scene and the pipeline on b. The returned orbit
// drives the pipeline's camera.
func newPipeline(b render.Backend, cfg *options.Config, v render.Viewport) (*pipeline.Pipeline, *scene.Orbit, error) {
	lighting, err := cfg.SceneLighting()
	if err != nil {
		return nil, nil, err
	}
	format, err := cfg.ComposerFormat()
	if err != nil {
		return nil, nil, err
	}

	var noise image.Image
	if cfg.Outline.NoiseTexture != "" {
		if noise, err = loadNoise(cfg.Outline.NoiseTexture); err != nil {
			return nil, nil, err
		}
	}

	cam := newCamera(v)
	p, err := pipeline.New(pipeline.Config{
		Backend:        b,
		Scene:          scene.NewDemoScene(lighting),
		Camera:         cam,
		Viewport:       v,
		Params:         cfg.Params(),
		ComposerFormat: format,
		Noise:          noise,
		Observer:       passLogger,
	})
	if err != nil {
		return nil, nil, err
	}
	return p, scene.NewOrbit(cam), nil
}

// applyConfig installs a reloaded configuration between frames. Window and
// recording settings only take effect on restart.
func applyConfig(p *pipeline.Pipeline, cfg *options.Config) error {
	lighting, err := cfg.SceneLighting()
	if err != nil {
		return err
	}
	if err := p.Apply(cfg.Params()); err != nil {
		return err
	}
	lighting.Apply(p.Scene())
	log.Info("applied config", "preset", cfg.Antialias.Preset, "tonemap", cfg.ToneMap.Enabled)
	return nil
}
