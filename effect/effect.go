// Package effect implements the full-screen effects of the composite chain.
//
// The chain is a closed set of variants: Outline, ToneMap and Antialias. Each
// is an *Effect carrying a Kind tag; per-frame uniform refresh and the CPU
// kernel are dispatched on that tag. The declared order of the kinds is the
// order the composer must run them in.
package effect

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/richinsley/gomoebius/render"
)

// Kind tags an effect variant. Kinds are ordered: a composer runs effects in
// ascending Kind order.
type Kind int

const (
	KindOutline Kind = iota
	KindToneMap
	KindAntialias
)

func (k Kind) String() string {
	switch k {
	case KindOutline:
		return "outline"
	case KindToneMap:
		return "tonemap"
	case KindAntialias:
		return "antialias"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Effect is one full-screen pass of the composite chain. It owns its uniform
// set; textures in that set are borrowed from the components that own them.
type Effect struct {
	id       uuid.UUID
	name     string
	kind     Kind
	source   string
	uniforms *render.UniformSet
	blend    render.BlendMode
	required []string

	backend render.Backend
	program render.Program

	outline   *outline
	toneMap   *toneMap
	antialias *antialias
}

func newEffect(kind Kind, name, source string, required []string) *Effect {
	return &Effect{
		id:       uuid.New(),
		name:     name,
		kind:     kind,
		source:   source,
		uniforms: render.NewUniformSet(),
		blend:    render.DefaultBlend,
		required: required,
	}
}

// ID is assigned at construction and stays fixed for the effect's lifetime.
func (e *Effect) ID() uuid.UUID { return e.id }

func (e *Effect) Name() string                 { return e.name }
func (e *Effect) Kind() Kind                   { return e.kind }
func (e *Effect) Uniforms() *render.UniformSet { return e.uniforms }
func (e *Effect) Program() render.Program      { return e.program }

// Kernel returns the CPU evaluation of the effect.
func (e *Effect) Kernel() render.Kernel {
	switch e.kind {
	case KindOutline:
		return outlineKernel
	case KindToneMap:
		return toneMapKernel
	case KindAntialias:
		return antialiasKernel
	}
	return nil
}

// Compile builds the effect program on b. Compiling twice on the same backend
// is a no-op.
func (e *Effect) Compile(b render.Backend) error {
	if e.program != nil && e.backend == b {
		return nil
	}
	if e.program != nil {
		e.program.Destroy()
		e.program = nil
	}
	p, err := b.CompileEffect(render.EffectSource{
		Name:     e.name,
		Fragment: e.source,
		Kernel:   e.Kernel(),
		Blend:    e.blend,
	})
	if err != nil {
		return fmt.Errorf("effect %s: %w", e.name, err)
	}
	e.backend = b
	e.program = p
	log.Debug("compiled effect", "effect", e.name, "backend", b.Name())
	return nil
}

// Update refreshes the time-varying uniforms for frame f.
func (e *Effect) Update(f *render.Frame) error {
	switch e.kind {
	case KindOutline:
		return e.outline.update(e.uniforms, f)
	case KindToneMap:
		return nil
	case KindAntialias:
		return e.antialias.update(e.uniforms, f)
	}
	return fmt.Errorf("effect %s: unknown kind %v", e.name, e.kind)
}

// Execute refreshes the uniforms and runs the effect from input into output.
func (e *Effect) Execute(f *render.Frame, input render.Texture, output render.RenderTarget) error {
	if e.program == nil {
		return fmt.Errorf("effect %s: %w: not compiled", e.name, render.ErrDisposed)
	}
	if err := e.Update(f); err != nil {
		return fmt.Errorf("effect %s: %w", e.name, err)
	}
	if err := e.uniforms.Require(e.required...); err != nil {
		return fmt.Errorf("effect %s: %w", e.name, err)
	}
	w, h := f.Resolution()
	if err := render.CheckSize(output, w, h); err != nil {
		return fmt.Errorf("effect %s: %w", e.name, err)
	}
	return f.Backend.RunEffect(e.program, e.uniforms, input, output)
}

// Destroy releases the compiled program.
func (e *Effect) Destroy() {
	if e.program != nil {
		e.program.Destroy()
		e.program = nil
	}
	e.backend = nil
}

// luma is the Rec. 709 luminance used by every effect for edge and hatch tests.
func luma(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}
