// Package renderer is the OpenGL 4.1 / GLES 3 implementation of
// render.Backend.
package renderer

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gomoebius/graphics"
	"github.com/richinsley/gomoebius/inputs"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
	"github.com/richinsley/gomoebius/shader"
)

var (
	glOnce    sync.Once
	glInitErr error
)

// Renderer draws with the GL context current on the calling thread.
type Renderer struct {
	context     graphics.Context
	isGLES      bool
	quadVAO     uint32
	quadVBO     uint32
	blitProgram uint32
	blitTexLoc  int32

	standard *sceneProgram
	normal   *sceneProgram
	meshes   map[*scene.Mesh]*meshBuffers

	bound     *Target
	destroyed bool
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// New initializes GL on ctx and builds the shared programs and the
// full-screen quad.
func New(ctx graphics.Context) (*Renderer, error) {
	ctx.MakeCurrent()
	glOnce.Do(func() { glInitErr = gl.Init() })
	if glInitErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", glInitErr)
	}
	log.Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	r := &Renderer{
		context: ctx,
		isGLES:  ctx.IsGLES(),
		meshes:  make(map[*scene.Mesh]*meshBuffers),
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	var err error
	r.blitProgram, err = newProgram(shader.FullscreenVertex(r.isGLES), shader.BlitFragment(r.isGLES))
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	r.blitTexLoc = gl.GetUniformLocation(r.blitProgram, gl.Str("u_texture\x00"))

	if r.standard, err = newSceneProgram(shader.SceneVertex(r.isGLES), shader.StandardFragment(r.isGLES)); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("failed to create standard material program: %w", err)
	}
	if r.normal, err = newSceneProgram(shader.SceneVertex(r.isGLES), shader.NormalFragment(r.isGLES)); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("failed to create normal material program: %w", err)
	}
	return r, nil
}

func (r *Renderer) Name() string { return "opengl" }

func (r *Renderer) NewRenderTarget(desc render.TargetDesc) (render.RenderTarget, error) {
	if r.destroyed {
		return nil, fmt.Errorf("renderer: %w", render.ErrDisposed)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return newTarget(r, desc)
}

func (r *Renderer) NewTexture(img image.Image, desc render.TextureDesc) (render.Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: texture %q has no image", render.ErrInvalidConfig, desc.Label)
	}
	rgba := inputs.ToRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return newTexture(r, w, h, render.FormatRGBA8, desc.Filter, false, desc.Repeat, rgba.Pix), nil
}

func (r *Renderer) SetRenderTarget(t render.RenderTarget) {
	if t == nil {
		r.bound = nil
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		fw, fh := r.context.GetFramebufferSize()
		gl.Viewport(0, 0, int32(fw), int32(fh))
		return
	}
	gt, ok := t.(*Target)
	if !ok {
		log.Warn("ignoring foreign render target", "backend", r.Name())
		return
	}
	r.bound = gt
	gt.BindForWriting()
}

func (r *Renderer) RenderTarget() render.RenderTarget {
	if r.bound == nil {
		return nil
	}
	return r.bound
}

func (r *Renderer) texture(t render.Texture) (*Texture, error) {
	gt, ok := t.(*Texture)
	if !ok || gt.owner != r {
		return nil, render.ErrBackendMismatch
	}
	if gt.id == 0 {
		return nil, fmt.Errorf("texture: %w", render.ErrDisposed)
	}
	return gt, nil
}

// Present draws src over the default framebuffer.
func (r *Renderer) Present(src render.Texture) error {
	tex, err := r.texture(src)
	if err != nil {
		return err
	}
	prev := r.bound
	r.SetRenderTarget(nil)
	gl.Disable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.Uniform1i(r.blitTexLoc, 0)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if prev != nil {
		r.SetRenderTarget(prev)
	}
	return nil
}

// ReadPixels reads the color attachment of t, or the default framebuffer for
// a nil t, as 8-bit RGBA with the top row first.
func (r *Renderer) ReadPixels(t render.RenderTarget) (*image.RGBA, error) {
	var fbo uint32
	w, h := r.context.GetFramebufferSize()
	if t != nil {
		gt, ok := t.(*Target)
		if !ok || gt.owner != r {
			return nil, render.ErrBackendMismatch
		}
		fbo, w, h = gt.fbo, gt.desc.Width, gt.desc.Height
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fbo)
	if fbo != 0 {
		gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels failed: 0x%x", e)
	}
	flipRows(img)
	return img, nil
}

func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

// Destroy releases the shared GL objects. Targets and textures are owned by
// their creators.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	for _, m := range r.meshes {
		m.destroy()
	}
	r.meshes = nil
	if r.standard != nil {
		r.standard.destroy()
	}
	if r.normal != nil {
		r.normal.destroy()
	}
	if r.blitProgram != 0 {
		gl.DeleteProgram(r.blitProgram)
	}
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: failed to link program: %v", render.ErrShaderCompile, logText)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: failed to compile shader: %v", render.ErrShaderCompile, logText)
	}
	return shader, nil
}

var _ render.Backend = (*Renderer)(nil)
