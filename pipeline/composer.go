package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/richinsley/gomoebius/effect"
	"github.com/richinsley/gomoebius/render"
)

// ComposerConfig selects the frame buffer format of the composite chain.
type ComposerConfig struct {
	// Format is FormatRGBA8 unless configured otherwise.
	Format render.Format
}

// ComposerTargetDesc describes one of the composer's ping-pong buffers.
// Multisampling stays off; the antialias effect handles edges.
func ComposerTargetDesc(format render.Format, label string, width, height int) render.TargetDesc {
	if format == render.FormatNone {
		format = render.FormatRGBA8
	}
	return render.TargetDesc{
		Label:  label,
		Width:  width,
		Height: height,
		Color:  format,
		Depth:  render.FormatDepth24,
		Filter: render.FilterLinear,
	}
}

// Composer renders the main scene into an input buffer and runs its effects
// over it, ping-ponging between two buffers.
type Composer struct {
	backend render.Backend
	cfg     ComposerConfig
	buffers [2]render.RenderTarget
	effects []*effect.Effect
	output  int
}

// NewComposer allocates the composer buffers at width x height.
func NewComposer(b render.Backend, cfg ComposerConfig, width, height int) (*Composer, error) {
	if cfg.Format == render.FormatNone {
		cfg.Format = render.FormatRGBA8
	}
	if cfg.Format.IsDepth() {
		return nil, fmt.Errorf("%w: composer format %s", render.ErrInvalidConfig, cfg.Format)
	}
	c := &Composer{backend: b, cfg: cfg}
	set, err := c.allocate(width, height)
	if err != nil {
		return nil, err
	}
	c.install(set)
	return c, nil
}

func (c *Composer) allocate(width, height int) (targetSet, error) {
	set, err := allocate(c.backend,
		ComposerTargetDesc(c.cfg.Format, "composer.input", width, height),
		ComposerTargetDesc(c.cfg.Format, "composer.output", width, height))
	if err != nil {
		return nil, fmt.Errorf("composer targets: %w", err)
	}
	return set, nil
}

func (c *Composer) install(set targetSet) targetSet {
	old := targetSet{c.buffers[0], c.buffers[1]}
	c.buffers[0], c.buffers[1] = set[0], set[1]
	c.output = 0
	return old
}

// AddEffect appends e to the chain and compiles it. Effects must be added in
// ascending kind order: outline, tone map, antialias.
func (c *Composer) AddEffect(e *effect.Effect) error {
	if n := len(c.effects); n > 0 && e.Kind() <= c.effects[n-1].Kind() {
		return fmt.Errorf("%w: effect %s cannot follow %s", render.ErrInvalidConfig, e.Kind(), c.effects[n-1].Kind())
	}
	if err := e.Compile(c.backend); err != nil {
		return err
	}
	c.effects = append(c.effects, e)
	return nil
}

// Effects returns the chain in execution order.
func (c *Composer) Effects() []*effect.Effect {
	return append([]*effect.Effect(nil), c.effects...)
}

// Targets returns both ping-pong buffers.
func (c *Composer) Targets() []render.RenderTarget {
	return []render.RenderTarget{c.buffers[0], c.buffers[1]}
}

// Size returns the size of the composer buffers.
func (c *Composer) Size() (int, int) {
	if c.buffers[0] == nil {
		return 0, 0
	}
	return c.buffers[0].Width(), c.buffers[0].Height()
}

// RenderMain draws the scene into the input buffer.
func (c *Composer) RenderMain(f *render.Frame) error {
	in := c.buffers[0]
	w, h := f.Resolution()
	if err := render.CheckSize(in, w, h); err != nil {
		return fmt.Errorf("main pass: %w", err)
	}
	prev := c.backend.RenderTarget()
	defer c.backend.SetRenderTarget(prev)
	c.backend.SetRenderTarget(in)
	if err := c.backend.RenderScene(f.Scene, f.Camera); err != nil {
		return fmt.Errorf("main pass: %w", err)
	}
	c.output = 0
	return nil
}

// RunEffects runs every effect in order, each reading the previous one's
// output.
func (c *Composer) RunEffects(f *render.Frame, obs Observer) error {
	cur := 0
	for _, e := range c.effects {
		notify(obs, EffectPass(e.Kind().String()), f)
		out := c.buffers[1-cur]
		if err := e.Execute(f, c.buffers[cur].ColorTexture(), out); err != nil {
			return err
		}
		cur = 1 - cur
	}
	c.output = cur
	log.Debug("ran effects", "frame", f.Index, "count", len(c.effects))
	return nil
}

// Output returns the buffer holding the composited frame.
func (c *Composer) Output() render.RenderTarget {
	return c.buffers[c.output]
}

// Refresh recomputes every effect's per-frame uniforms without running it.
func (c *Composer) Refresh(f *render.Frame) error {
	for _, e := range c.effects {
		if err := e.Update(f); err != nil {
			return fmt.Errorf("effect %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Destroy releases the buffers and the effect programs.
func (c *Composer) Destroy() {
	for _, e := range c.effects {
		e.Destroy()
	}
	c.effects = nil
	targetSet{c.buffers[0], c.buffers[1]}.destroy()
	c.buffers = [2]render.RenderTarget{}
}
