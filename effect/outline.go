package effect

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
	"github.com/richinsley/gomoebius/shader"
)

// Declared parameter ranges of the outline stylization.
const (
	MaxFrequency = 0.15
	MaxAmplitude = 5.0
)

// Edge and hatching thresholds shared with the GLSL source.
const (
	depthEdgeThreshold  = 0.02
	normalEdgeThreshold = 0.6
	hatchThreshold      = 0.35
	crossHatchThreshold = 0.15
	hatchSpacing        = 8
)

// OutlineConfig holds the free stylization parameters. They reach the shader
// unmodified.
type OutlineConfig struct {
	Frequency float32
	Amplitude float32
}

// Validate rejects values outside the declared ranges.
func (c OutlineConfig) Validate() error {
	if math32.IsNaN(c.Frequency) || c.Frequency < 0 || c.Frequency > MaxFrequency {
		return fmt.Errorf("%w: outline frequency %v outside [0, %v]", render.ErrInvalidConfig, c.Frequency, MaxFrequency)
	}
	if math32.IsNaN(c.Amplitude) || c.Amplitude < 0 || c.Amplitude > MaxAmplitude {
		return fmt.Errorf("%w: outline amplitude %v outside [0, %v]", render.ErrInvalidConfig, c.Amplitude, MaxAmplitude)
	}
	return nil
}

// AuxiliaryBuffers is the outline's back-reference to the depth and normal
// captures. The textures are re-read every frame so recreated targets are
// picked up without rebuilding the effect.
type AuxiliaryBuffers interface {
	DepthTexture() render.Texture
	NormalTexture() render.Texture
}

type outline struct {
	aux   AuxiliaryBuffers
	noise render.Texture
}

var outlineUniforms = []string{
	"cameraNear", "cameraFar", "cameraOrthographic",
	"uDepth", "uNormal", "uResolution",
	"uFrequency", "uAmplitude", "uNoiseTex", "uHasNoise",
}

// NewOutline builds the outline effect. aux must already provide both
// textures; noise is optional.
func NewOutline(cfg OutlineConfig, aux AuxiliaryBuffers, noise render.Texture) (*Effect, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if aux == nil || aux.DepthTexture() == nil || aux.NormalTexture() == nil {
		return nil, fmt.Errorf("%w: outline requires depth and normal textures", render.ErrInvalidConfig)
	}
	e := newEffect(KindOutline, "Outline", shader.OutlineFragment, outlineUniforms)
	e.outline = &outline{aux: aux, noise: noise}
	e.uniforms.SetFloat("cameraNear", 0)
	e.uniforms.SetFloat("cameraFar", 0)
	e.uniforms.SetBool("cameraOrthographic", false)
	e.uniforms.SetTexture("uDepth", aux.DepthTexture())
	e.uniforms.SetTexture("uNormal", aux.NormalTexture())
	e.uniforms.SetVec2("uResolution", mgl32.Vec2{})
	e.uniforms.SetTexture("uNoiseTex", noise)
	e.uniforms.SetBool("uHasNoise", noise != nil)
	e.setOutline(cfg)
	return e, nil
}

func (e *Effect) setOutline(cfg OutlineConfig) {
	e.uniforms.SetFloat("uFrequency", cfg.Frequency)
	e.uniforms.SetFloat("uAmplitude", cfg.Amplitude)
}

// SetOutline updates the stylization parameters in place.
func (e *Effect) SetOutline(cfg OutlineConfig) error {
	if e.kind != KindOutline {
		return fmt.Errorf("effect %s is not an outline", e.name)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.setOutline(cfg)
	return nil
}

// OutlineConfig returns the parameters currently in the uniform set.
func (e *Effect) OutlineConfig() OutlineConfig {
	return OutlineConfig{Frequency: e.uniforms.Float("uFrequency"), Amplitude: e.uniforms.Float("uAmplitude")}
}

// update runs every frame, resize or not: the resolution uniform is derived
// from the live viewport here and nowhere else.
func (o *outline) update(u *render.UniformSet, f *render.Frame) error {
	if err := f.Camera.Validate(); err != nil {
		return err
	}
	w, h := f.Resolution()
	u.SetVec2("uResolution", mgl32.Vec2{float32(w), float32(h)})
	u.SetFloat("cameraNear", f.Camera.Near)
	u.SetFloat("cameraFar", f.Camera.Far)
	u.SetBool("cameraOrthographic", f.Camera.Projection == scene.Orthographic)

	depth, normal := o.aux.DepthTexture(), o.aux.NormalTexture()
	if depth == nil || normal == nil {
		return fmt.Errorf("%w: auxiliary buffers missing", render.ErrDisposed)
	}
	u.SetTexture("uDepth", depth)
	u.SetTexture("uNormal", normal)
	return nil
}

// Resolution returns the resolution uniform.
func (e *Effect) Resolution() mgl32.Vec2 {
	return e.uniforms.Vec2("uResolution")
}

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

func hash(x, y float32) float32 {
	return fract(math32.Sin(x*12.9898+y*78.233) * 43758.5453)
}

// mod follows GLSL: the result has the sign of y, unlike math32.Mod.
func mod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

// warp returns the wobbled sampling position for the pixel (x, y). The shift
// on each axis is less than amp.
func warp(x, y int, freq, amp float32) (float32, float32) {
	fx, fy := float32(x)+0.5, float32(y)+0.5
	h := hash(float32(x), float32(y))
	return fx + h*math32.Sin(fy*freq)*amp, fy + h*math32.Cos(fx*freq)*amp
}

// linearDepth converts a window-space depth sample into [0,1] distance between
// near and far.
func linearDepth(d, near, far float32, ortho bool) float32 {
	if ortho {
		return d
	}
	viewZ := (near * far) / ((far-near)*d - far)
	return (viewZ + near) / (near - far)
}

var sobelX = [3][3]float32{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
var sobelY = [3][3]float32{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

// texel maps a pixel center of the output onto a texel of t.
func texel(t render.Sampler, fx, fy float32, res mgl32.Vec2) (int, int) {
	sx := int(math32.Floor(fx / res[0] * float32(t.Width())))
	sy := int(math32.Floor(fy / res[1] * float32(t.Height())))
	return sx, sy
}

// outlineEdge returns the Sobel magnitudes of linear depth and of the packed
// normal around the output position (fx, fy).
func outlineEdge(u *render.UniformSet, fx, fy float32) (float32, float32) {
	depth, dok := u.Sampler("uDepth")
	normal, nok := u.Sampler("uNormal")
	if !dok || !nok {
		return 0, 0
	}
	near, far := u.Float("cameraNear"), u.Float("cameraFar")
	ortho := u.Bool("cameraOrthographic")
	res := u.Vec2("uResolution")

	var dgx, dgy float32
	dx, dy := texel(depth, fx, fy, res)
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			d := linearDepth(depth.At(dx+i, dy+j)[0], near, far, ortho)
			dgx += sobelX[j+1][i+1] * d
			dgy += sobelY[j+1][i+1] * d
		}
	}

	var ngx, ngy mgl32.Vec3
	nx, ny := texel(normal, fx, fy, res)
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			n := normal.At(nx+i, ny+j).Vec3()
			ngx = ngx.Add(n.Mul(sobelX[j+1][i+1]))
			ngy = ngy.Add(n.Mul(sobelY[j+1][i+1]))
		}
	}
	depthEdge := math32.Sqrt(dgx*dgx + dgy*dgy)
	normalEdge := math32.Sqrt(ngx.Dot(ngx) + ngy.Dot(ngy))
	return depthEdge, normalEdge
}

var ink = mgl32.Vec4{0, 0, 0, 1}

func outlineKernel(in render.Sampler, x, y int, u *render.UniformSet) mgl32.Vec4 {
	fx, fy := float32(x)+0.5, float32(y)+0.5
	wx, wy := warp(x, y, u.Float("uFrequency"), u.Float("uAmplitude"))

	color := in.At(x, y)
	depthEdge, normalEdge := outlineEdge(u, wx, wy)
	if depthEdge > depthEdgeThreshold || normalEdge > normalEdgeThreshold {
		return mgl32.Vec4{ink[0], ink[1], ink[2], color[3]}
	}

	l := luma(color[0], color[1], color[2])
	if l >= hatchThreshold {
		return color
	}
	n := float32(0.5)
	if noise, ok := u.Sampler("uNoiseTex"); ok && u.Bool("uHasNoise") {
		n = noise.At(x%noise.Width(), y%noise.Height())[0]
	}
	offset := n * 4
	if mod(fx+fy+offset, hatchSpacing) < 1 {
		return mgl32.Vec4{ink[0], ink[1], ink[2], color[3]}
	}
	if l < crossHatchThreshold && mod(fx-fy+1024+offset, hatchSpacing) < 1 {
		return mgl32.Vec4{ink[0], ink[1], ink[2], color[3]}
	}
	return color
}
