package soft

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/render"
)

// Texture is a CPU texture. Texels are stored bottom row first, matching GL
// texture coordinates, and every write is quantized to the texture's format.
type Texture struct {
	label  string
	width  int
	height int
	format render.Format
	repeat bool
	pix    []mgl32.Vec4

	owner     *Backend
	destroyed bool
}

func newTexture(owner *Backend, label string, width, height int, format render.Format) *Texture {
	return &Texture{
		label:  label,
		width:  width,
		height: height,
		format: format,
		pix:    make([]mgl32.Vec4, width*height),
		owner:  owner,
	}
}

func (t *Texture) Label() string         { return t.label }
func (t *Texture) Width() int            { return t.width }
func (t *Texture) Height() int           { return t.height }
func (t *Texture) Format() render.Format { return t.format }

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// At returns the texel at (x, y). Out of range coordinates are clamped, or
// wrapped for repeating textures.
func (t *Texture) At(x, y int) mgl32.Vec4 {
	if t.repeat {
		x, y = wrap(x, t.width), wrap(y, t.height)
	} else {
		x, y = clampInt(x, 0, t.width-1), clampInt(y, 0, t.height-1)
	}
	return t.pix[y*t.width+x]
}

// Set stores v at (x, y) after quantizing it to the texture format.
func (t *Texture) Set(x, y int, v mgl32.Vec4) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	t.pix[y*t.width+x] = quantize(t.format, v)
}

// Fill sets every texel to v.
func (t *Texture) Fill(v mgl32.Vec4) {
	q := quantize(t.format, v)
	for i := range t.pix {
		t.pix[i] = q
	}
}

func unorm(v float32, levels float32) float32 {
	return math32.Round(mgl32.Clamp(v, 0, 1)*levels) / levels
}

// half rounds v to the nearest value representable as an IEEE half float.
func half(v float32) float32 {
	if v == 0 || math32.IsNaN(v) || math32.IsInf(v, 0) {
		return v
	}
	if v > 65504 {
		return 65504
	}
	if v < -65504 {
		return -65504
	}
	frac, exp := math.Frexp(float64(v))
	if exp < -13 {
		// subnormal range: fixed step of 2^-24
		return float32(math.Round(float64(v)*(1<<24)) / (1 << 24))
	}
	return float32(math.Ldexp(math.Round(frac*2048)/2048, exp))
}

func quantize(f render.Format, v mgl32.Vec4) mgl32.Vec4 {
	switch f {
	case render.FormatRGBA8:
		return mgl32.Vec4{unorm(v[0], 255), unorm(v[1], 255), unorm(v[2], 255), unorm(v[3], 255)}
	case render.FormatRGBA16F:
		return mgl32.Vec4{half(v[0]), half(v[1]), half(v[2]), half(v[3])}
	case render.FormatDepth16:
		d := unorm(v[0], 65535)
		return mgl32.Vec4{d, d, d, 1}
	case render.FormatDepth24:
		d := unorm(v[0], 16777215)
		return mgl32.Vec4{d, d, d, 1}
	case render.FormatDepth32F:
		d := mgl32.Clamp(v[0], 0, 1)
		return mgl32.Vec4{d, d, d, 1}
	}
	return v
}

var _ render.Sampler = (*Texture)(nil)
