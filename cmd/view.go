package main

import (
	"math"
	"sync/atomic"

	"github.com/charmbracelet/log"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/gomoebius/effect"
	"github.com/richinsley/gomoebius/glfwcontext"
	"github.com/richinsley/gomoebius/graphics"
	"github.com/richinsley/gomoebius/options"
	"github.com/richinsley/gomoebius/pipeline"
	"github.com/richinsley/gomoebius/renderer"
	"github.com/richinsley/gomoebius/scene"
	"github.com/spf13/cobra"
)

const (
	orbitSpeed = 0.01 // radians per pixel dragged
	zoomStep   = 0.9
)

func newViewCmd(a *app) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open an interactive window",
		Long: `Open a window rendering the demo scene.

Drag to orbit, scroll to zoom. T toggles tone mapping, 1-4 select the
antialias preset, Esc quits. Edits to --config are applied live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("width") {
				a.cfg.Window.Width = width
			}
			if cmd.Flags().Changed("height") {
				a.cfg.Window.Height = height
			}
			return a.runView(cmd)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "window width (overrides config)")
	cmd.Flags().IntVar(&height, "height", 0, "window height (overrides config)")
	return cmd
}

// mouseDrag turns absolute cursor positions into per-frame deltas while the
// button is held.
type mouseDrag struct {
	lastX, lastY float64
	active       bool
}

func (d *mouseDrag) update(p graphics.Pointer) (dx, dy float64) {
	if !p.Down {
		d.active = false
		return 0, 0
	}
	if d.active {
		dx, dy = p.X-d.lastX, p.Y-d.lastY
	}
	d.lastX, d.lastY, d.active = p.X, p.Y, true
	return dx, dy
}

func (a *app) runView(cmd *cobra.Command) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(glfwcontext.Options{
		Width:   a.cfg.Window.Width,
		Height:  a.cfg.Window.Height,
		Title:   a.cfg.Window.Title,
		Visible: true,
	})
	if err != nil {
		return err
	}
	defer ctx.Shutdown()
	ctx.MakeCurrent()

	r, err := renderer.New(ctx)
	if err != nil {
		return err
	}
	defer r.Destroy()

	p, orbit, err := newPipeline(r, a.cfg, graphics.Viewport(ctx))
	if err != nil {
		return err
	}
	defer p.Dispose()

	var reloaded atomic.Pointer[options.Config]
	if a.configPath != "" {
		w, err := options.Watch(a.configPath, func(cfg *options.Config, err error) {
			if err != nil {
				log.Warn("ignoring invalid config", "err", err)
				return
			}
			reloaded.Store(cfg)
		})
		if err != nil {
			return err
		}
		defer w.Close()
	}

	registerKeys(ctx, p)

	var drag mouseDrag
	last := ctx.Time()
	for !ctx.ShouldClose() {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		if cfg := reloaded.Swap(nil); cfg != nil {
			if err := applyConfig(p, cfg); err != nil {
				log.Warn("config not applied", "err", err)
			}
		}
		if v := graphics.Viewport(ctx); v != p.Viewport() {
			log.Debug("viewport changed", "width", v.Width, "height", v.Height, "dpr", v.PixelRatio)
			p.Resize(v)
		}
		steerOrbit(orbit, &drag, ctx)
		orbit.Apply(p.Camera())

		now := ctx.Time()
		if err := p.Step(now - last); err != nil {
			return err
		}
		last = now
		ctx.EndFrame()
	}
	return nil
}

func steerOrbit(o *scene.Orbit, drag *mouseDrag, ctx *glfwcontext.Context) {
	dx, dy := drag.update(ctx.Pointer())
	if dx != 0 || dy != 0 {
		o.Rotate(-dx*orbitSpeed, -dy*orbitSpeed)
	}
	if s := ctx.TakeScroll(); s != 0 {
		o.Zoom(float32(math.Pow(zoomStep, s)))
	}
}

// registerKeys binds the parameter shortcuts. GLFW runs key callbacks from
// PollEvents, so parameter changes always land between frames.
func registerKeys(ctx *glfwcontext.Context, p *pipeline.Pipeline) {
	apply := func(change func(*pipeline.Params)) {
		params := p.Params()
		change(&params)
		if err := p.Apply(params); err != nil {
			log.Warn("parameter change rejected", "err", err)
		}
	}
	ctx.RegisterKeyCallback(glfw.KeyT, func() {
		apply(func(params *pipeline.Params) {
			params.ToneMap.Enabled = !params.ToneMap.Enabled
			log.Info("tone mapping", "enabled", params.ToneMap.Enabled)
		})
	})
	for i, key := range []glfw.Key{glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4} {
		preset := effect.Preset(i)
		ctx.RegisterKeyCallback(key, func() {
			apply(func(params *pipeline.Params) {
				params.Antialias.Preset = preset
				log.Info("antialias", "preset", preset)
			})
		})
	}
}
