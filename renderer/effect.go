package renderer

import (
	"fmt"

	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/shader"
	"github.com/richinsley/gomoebius/translator"
)

// effectProgram is a translated effect fragment linked with the full-screen
// vertex stage. Uniform locations are resolved through the translator's name
// mapping and cached on first use.
type effectProgram struct {
	name    string
	program uint32
	names   map[string]string
	locs    map[string]int32
	blend   render.BlendMode
	owner   *Renderer
}

func (p *effectProgram) Name() string { return p.name }

func (p *effectProgram) Destroy() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}

func (p *effectProgram) location(name string) int32 {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := int32(-1)
	if mapped, ok := p.names[name]; ok {
		loc = uniformLocation(p.program, mapped)
	}
	p.locs[name] = loc
	return loc
}

func (r *Renderer) CompileEffect(src render.EffectSource) (render.Program, error) {
	code, names, err := translator.Fragment(shader.GetEffectShader(src.Fragment), r.isGLES)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", render.ErrShaderCompile, src.Name, err)
	}
	program, err := newProgram(shader.FullscreenVertex(r.isGLES), code)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", src.Name, err)
	}
	log.Debug("linked effect program", "effect", src.Name, "uniforms", len(names))
	return &effectProgram{
		name:    src.Name,
		program: program,
		names:   names,
		locs:    make(map[string]int32),
		blend:   src.Blend,
		owner:   r,
	}, nil
}

// RunEffect draws p over output with input bound as inputBuffer on unit 0.
func (r *Renderer) RunEffect(p render.Program, u *render.UniformSet, input render.Texture, output render.RenderTarget) error {
	prog, ok := p.(*effectProgram)
	if !ok || prog.owner != r {
		return render.ErrBackendMismatch
	}
	if prog.program == 0 {
		return fmt.Errorf("program %s: %w", prog.name, render.ErrDisposed)
	}
	in, err := r.texture(input)
	if err != nil {
		return err
	}
	out, ok := output.(*Target)
	if !ok || out.owner != r {
		return render.ErrBackendMismatch
	}
	if out.color == in {
		return fmt.Errorf("effect %s reads and writes %q", prog.name, out.desc.Label)
	}

	prev := r.bound
	r.SetRenderTarget(out)
	defer r.SetRenderTarget(prev)

	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(prog.program)

	unit := uint32(0)
	bind := func(loc int32, tex uint32) {
		gl.ActiveTexture(gl.TEXTURE0 + unit)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		if loc != -1 {
			gl.Uniform1i(loc, int32(unit))
		}
		unit++
	}
	bind(prog.location("inputBuffer"), in.id)
	if loc := prog.location("resolution"); loc != -1 {
		gl.Uniform2f(loc, float32(out.desc.Width), float32(out.desc.Height))
	}
	if loc := prog.location("blendFunc"); loc != -1 {
		gl.Uniform1i(loc, int32(prog.blend.Func))
	}
	if loc := prog.location("blendOpacity"); loc != -1 {
		gl.Uniform1f(loc, prog.blend.Opacity)
	}

	for _, name := range u.Names() {
		v, _ := u.Get(name)
		loc := prog.location(name)
		switch v.Kind {
		case render.UniformFloat:
			if loc != -1 {
				gl.Uniform1f(loc, v.Float)
			}
		case render.UniformInt:
			if loc != -1 {
				gl.Uniform1i(loc, v.Int)
			}
		case render.UniformVec2:
			if loc != -1 {
				gl.Uniform2f(loc, v.Vec[0], v.Vec[1])
			}
		case render.UniformVec3:
			if loc != -1 {
				gl.Uniform3f(loc, v.Vec[0], v.Vec[1], v.Vec[2])
			}
		case render.UniformVec4:
			if loc != -1 {
				gl.Uniform4f(loc, v.Vec[0], v.Vec[1], v.Vec[2], v.Vec[3])
			}
		case render.UniformTexture:
			var id uint32
			if v.Texture != nil {
				tex, err := r.texture(v.Texture)
				if err != nil {
					return fmt.Errorf("uniform %s: %w", name, err)
				}
				id = tex.id
			}
			bind(loc, id)
		}
	}

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	for i := uint32(0); i < unit; i++ {
		gl.ActiveTexture(gl.TEXTURE0 + i)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	return nil
}
