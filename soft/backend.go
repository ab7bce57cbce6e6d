// Package soft is a CPU reference backend. It rasterizes the scene with a
// z-buffered triangle rasterizer and evaluates effects through their CPU
// kernels, so the whole pipeline can run and be verified without a GPU.
package soft

import (
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
	"golang.org/x/image/draw"
)

// Backend implements render.Backend on the CPU. It is not safe for
// concurrent use; like a GL context it belongs to one goroutine.
type Backend struct {
	bound  *Target
	screen *Texture
	live   int

	destroyed bool
}

// New returns a software backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string { return "soft" }

// LiveTargets returns the number of render targets created and not yet
// destroyed.
func (b *Backend) LiveTargets() int { return b.live }

func (b *Backend) NewRenderTarget(desc render.TargetDesc) (render.RenderTarget, error) {
	if b.destroyed {
		return nil, fmt.Errorf("soft: %w", render.ErrDisposed)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	t := &Target{desc: desc, owner: b}
	t.color = newTexture(b, desc.Label+".color", desc.Width, desc.Height, desc.Color)
	if desc.Depth != render.FormatNone {
		t.depth = newTexture(b, desc.Label+".depth", desc.Width, desc.Height, desc.Depth)
		t.depth.Fill(mgl32.Vec4{1, 1, 1, 1})
	}
	b.live++
	log.Debug("created render target", "label", desc.Label, "width", desc.Width, "height", desc.Height, "color", desc.Color)
	return t, nil
}

func (b *Backend) NewTexture(img image.Image, desc render.TextureDesc) (render.Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: texture %q has no image", render.ErrInvalidConfig, desc.Label)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t := newTexture(b, desc.Label, bounds.Dx(), bounds.Dy(), render.FormatRGBA8)
	t.repeat = desc.Repeat
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			o := rgba.PixOffset(x, y)
			p := rgba.Pix[o : o+4]
			t.pix[y*t.width+x] = mgl32.Vec4{
				float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255,
			}
		}
	}
	return t, nil
}

type program struct {
	name   string
	kernel render.Kernel
	blend  render.BlendMode
	owner  *Backend
}

func (p *program) Name() string { return p.name }
func (p *program) Destroy()     { p.kernel = nil }

func (b *Backend) CompileEffect(src render.EffectSource) (render.Program, error) {
	if src.Kernel == nil {
		return nil, fmt.Errorf("%w: effect %s has no CPU kernel", render.ErrShaderCompile, src.Name)
	}
	return &program{name: src.Name, kernel: src.Kernel, blend: src.Blend, owner: b}, nil
}

func (b *Backend) SetRenderTarget(t render.RenderTarget) {
	if t == nil {
		b.bound = nil
		return
	}
	st, ok := t.(*Target)
	if !ok {
		log.Warn("ignoring foreign render target", "backend", b.Name())
		return
	}
	b.bound = st
}

func (b *Backend) RenderTarget() render.RenderTarget {
	if b.bound == nil {
		return nil
	}
	return b.bound
}

func (b *Backend) RenderScene(sc *scene.Scene, cam *scene.Camera) error {
	t := b.bound
	if t == nil {
		return fmt.Errorf("soft: no render target bound")
	}
	if t.destroyed {
		return fmt.Errorf("soft: target %q: %w", t.desc.Label, render.ErrDisposed)
	}
	if err := cam.Validate(); err != nil {
		return err
	}
	t.color.Fill(sc.Background.Vec4(1))
	if t.depth != nil {
		t.depth.Fill(mgl32.Vec4{1, 1, 1, 1})
	}
	view, proj := cam.View(), cam.ProjectionMatrix()
	for _, n := range sc.Nodes {
		if !n.Visible || n.Mesh == nil {
			continue
		}
		d := drawState{color: t.color, depth: t.depth, mat: sc.MaterialFor(n), scene: sc}
		d.drawNode(n, view, proj)
	}
	return nil
}

func (b *Backend) texture(t render.Texture) (*Texture, error) {
	st, ok := t.(*Texture)
	if !ok || st.owner != b {
		return nil, render.ErrBackendMismatch
	}
	if st.destroyed {
		return nil, fmt.Errorf("texture %q: %w", st.label, render.ErrDisposed)
	}
	return st, nil
}

func (b *Backend) RunEffect(p render.Program, u *render.UniformSet, input render.Texture, output render.RenderTarget) error {
	prog, ok := p.(*program)
	if !ok || prog.owner != b {
		return render.ErrBackendMismatch
	}
	if prog.kernel == nil {
		return fmt.Errorf("program %s: %w", prog.name, render.ErrDisposed)
	}
	in, err := b.texture(input)
	if err != nil {
		return err
	}
	out, ok := output.(*Target)
	if !ok || out.owner != b {
		return render.ErrBackendMismatch
	}
	if out.destroyed {
		return fmt.Errorf("target %q: %w", out.desc.Label, render.ErrDisposed)
	}
	if out.color == in {
		return fmt.Errorf("effect %s reads and writes %q", prog.name, out.desc.Label)
	}
	for name, tex := range uniformTextures(u) {
		if _, err := b.texture(tex); err != nil {
			return fmt.Errorf("uniform %s: %w", name, err)
		}
	}
	for y := 0; y < out.desc.Height; y++ {
		for x := 0; x < out.desc.Width; x++ {
			fx := prog.kernel(in, x, y, u)
			out.color.Set(x, y, prog.blend.Apply(in.At(x, y), fx))
		}
	}
	return nil
}

func uniformTextures(u *render.UniformSet) map[string]render.Texture {
	m := make(map[string]render.Texture)
	for _, name := range u.Names() {
		if t := u.Texture(name); t != nil {
			m[name] = t
		}
	}
	return m
}

func (b *Backend) Present(src render.Texture) error {
	in, err := b.texture(src)
	if err != nil {
		return err
	}
	if b.screen == nil || b.screen.width != in.width || b.screen.height != in.height {
		b.screen = newTexture(b, "screen", in.width, in.height, render.FormatRGBA8)
	}
	for i, v := range in.pix {
		b.screen.pix[i] = quantize(render.FormatRGBA8, v)
	}
	return nil
}

func (b *Backend) ReadPixels(t render.RenderTarget) (*image.RGBA, error) {
	var tex *Texture
	if t == nil {
		tex = b.screen
	} else if st, ok := t.(*Target); ok && st.owner == b {
		tex = st.color
	} else {
		return nil, render.ErrBackendMismatch
	}
	if tex == nil {
		return nil, fmt.Errorf("soft: nothing presented")
	}
	return toRGBA(tex), nil
}

// toRGBA converts t to an 8-bit image, flipping rows so the top row comes
// first.
func toRGBA(t *Texture) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			v := quantize(render.FormatRGBA8, t.pix[y*t.width+x])
			o := img.PixOffset(x, t.height-1-y)
			img.Pix[o+0] = uint8(v[0]*255 + 0.5)
			img.Pix[o+1] = uint8(v[1]*255 + 0.5)
			img.Pix[o+2] = uint8(v[2]*255 + 0.5)
			img.Pix[o+3] = uint8(v[3]*255 + 0.5)
		}
	}
	return img
}

func (b *Backend) Destroy() {
	b.destroyed = true
	b.bound = nil
	b.screen = nil
	if b.live > 0 {
		log.Warn("soft backend destroyed with live render targets", "count", b.live)
	}
}

var _ render.Backend = (*Backend)(nil)
