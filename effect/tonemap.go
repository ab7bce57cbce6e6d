package effect

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/shader"
)

// ToneMapParams are the parameters of the GT tone curve.
//
// The curve has three segments: a power toe below LinearSectionStart, a
// linear section of slope Contrast, and an exponential shoulder approaching
// MaxLuminance. BlackTightnessC shapes the toe and BlackTightnessB lifts the
// blacks, fading out toward MaxLuminance.
type ToneMapParams struct {
	MaxLuminance        float32 `toml:"max_luminance"`
	Contrast            float32 `toml:"contrast"`
	LinearSectionStart  float32 `toml:"linear_section_start"`
	LinearSectionLength float32 `toml:"linear_section_length"`
	BlackTightnessC     float32 `toml:"black_tightness_c"`
	BlackTightnessB     float32 `toml:"black_tightness_b"`
	Enabled             bool    `toml:"enabled"`
}

// DefaultToneMap is the stock parameter set.
var DefaultToneMap = ToneMapParams{
	MaxLuminance:        1.0,
	Contrast:            1.0,
	LinearSectionStart:  0.17,
	LinearSectionLength: 0.3,
	BlackTightnessC:     1.69,
	BlackTightnessB:     0.05,
	Enabled:             true,
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate rejects parameter sets for which the curve is not monotonic
// non-decreasing over the non-negative reals.
func (p ToneMapParams) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: tonemap "+format, append([]any{render.ErrInvalidConfig}, args...)...)
	}
	if !finite(p.MaxLuminance, p.Contrast, p.LinearSectionStart, p.LinearSectionLength, p.BlackTightnessB, p.BlackTightnessC) {
		return bad("parameters must be finite")
	}
	switch {
	case p.MaxLuminance < 1:
		return bad("max luminance %v must be >= 1", p.MaxLuminance)
	case p.Contrast < 1:
		return bad("contrast %v must be >= 1", p.Contrast)
	case p.LinearSectionStart < 0 || p.LinearSectionStart >= 1:
		return bad("linear section start %v outside [0, 1)", p.LinearSectionStart)
	case p.LinearSectionLength < 0:
		return bad("linear section length %v must be >= 0", p.LinearSectionLength)
	case p.LinearSectionStart+p.LinearSectionLength > 1:
		return bad("linear section start + length = %v exceeds 1", p.LinearSectionStart+p.LinearSectionLength)
	case p.BlackTightnessC < 1:
		return bad("black tightness c %v must be >= 1", p.BlackTightnessC)
	case p.BlackTightnessB < 0 || p.BlackTightnessB > p.MaxLuminance:
		return bad("black tightness b %v outside [0, %v]", p.BlackTightnessB, p.MaxLuminance)
	}
	return nil
}

// curve is the precomputed form of a parameter set.
type curve struct {
	p, a, m, c, b float32
	s0, s1, cp    float32
}

func newCurve(p ToneMapParams) curve {
	P, a, m := p.MaxLuminance, p.Contrast, p.LinearSectionStart
	l0 := (P - m) * p.LinearSectionLength / a
	s0 := m + l0
	s1 := m + a*l0
	var cp float32
	if P > s1 {
		cp = -(a * P / (P - s1)) / P
	}
	return curve{p: P, a: a, m: m, c: p.BlackTightnessC, b: p.BlackTightnessB, s0: s0, s1: s1, cp: cp}
}

func (c curve) eval(x float32) float32 {
	if x <= 0 || math32.IsNaN(x) {
		x = 0
	}
	var g float32
	switch {
	case x < c.m:
		g = c.m * math32.Pow(x/c.m, c.c)
	case x < c.s0:
		g = c.m + c.a*(x-c.m)
	default:
		g = c.p - (c.p-c.s1)*math32.Exp(c.cp*(x-c.s0))
	}
	return g + c.b*(1-g/c.p)
}

// Map applies the curve to a single channel value. A disabled parameter set
// maps every value to itself.
func (p ToneMapParams) Map(x float32) float32 {
	if !p.Enabled {
		return x
	}
	return newCurve(p).eval(x)
}

type toneMap struct{}

// NewToneMap builds the tone mapping effect.
func NewToneMap(p ToneMapParams) (*Effect, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := newEffect(KindToneMap, "ToneMap", shader.ToneMapFragment, []string{
		"maxLuminance", "contrast", "linearSectionStart", "linearSectionLength",
		"blackTightnessC", "blackTightnessB", "enabled",
	})
	e.toneMap = &toneMap{}
	e.setToneMap(p)
	return e, nil
}

func (e *Effect) setToneMap(p ToneMapParams) {
	e.uniforms.SetFloat("maxLuminance", p.MaxLuminance)
	e.uniforms.SetFloat("contrast", p.Contrast)
	e.uniforms.SetFloat("linearSectionStart", p.LinearSectionStart)
	e.uniforms.SetFloat("linearSectionLength", p.LinearSectionLength)
	e.uniforms.SetFloat("blackTightnessC", p.BlackTightnessC)
	e.uniforms.SetFloat("blackTightnessB", p.BlackTightnessB)
	e.uniforms.SetBool("enabled", p.Enabled)
}

// SetToneMap replaces the curve parameters. Invalid sets leave the current
// parameters untouched.
func (e *Effect) SetToneMap(p ToneMapParams) error {
	if e.kind != KindToneMap {
		return fmt.Errorf("effect %s is not a tone map", e.name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	e.setToneMap(p)
	return nil
}

// ToneMapParams reads the parameters back from the uniform set.
func (e *Effect) ToneMapParams() ToneMapParams {
	return toneMapParams(e.uniforms)
}

func toneMapParams(u *render.UniformSet) ToneMapParams {
	return ToneMapParams{
		MaxLuminance:        u.Float("maxLuminance"),
		Contrast:            u.Float("contrast"),
		LinearSectionStart:  u.Float("linearSectionStart"),
		LinearSectionLength: u.Float("linearSectionLength"),
		BlackTightnessC:     u.Float("blackTightnessC"),
		BlackTightnessB:     u.Float("blackTightnessB"),
		Enabled:             u.Bool("enabled"),
	}
}

func toneMapKernel(in render.Sampler, x, y int, u *render.UniformSet) mgl32.Vec4 {
	c := in.At(x, y)
	p := toneMapParams(u)
	if !p.Enabled {
		return c
	}
	cv := newCurve(p)
	return mgl32.Vec4{cv.eval(c[0]), cv.eval(c[1]), cv.eval(c[2]), c[3]}
}
