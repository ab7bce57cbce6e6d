package render

import "github.com/go-gl/mathgl/mgl32"

// BlendFunc selects how an effect's output is combined with its input.
type BlendFunc int

const (
	// BlendNormal replaces the input with the effect color, scaled by opacity.
	BlendNormal BlendFunc = iota
	// BlendMultiply multiplies the input by the effect color.
	BlendMultiply
	// BlendSkip passes the input through untouched.
	BlendSkip
)

func (f BlendFunc) String() string {
	switch f {
	case BlendMultiply:
		return "multiply"
	case BlendSkip:
		return "skip"
	}
	return "normal"
}

// BlendMode is the declared blend behavior of an effect.
type BlendMode struct {
	Func    BlendFunc
	Opacity float32
}

// DefaultBlend is a fully opaque normal blend.
var DefaultBlend = BlendMode{Func: BlendNormal, Opacity: 1}

// Apply combines the input color with the effect color. Backends that run
// effects on the GPU implement the same arithmetic in the shader main.
func (b BlendMode) Apply(in, fx mgl32.Vec4) mgl32.Vec4 {
	var out mgl32.Vec4
	switch b.Func {
	case BlendSkip:
		return in
	case BlendMultiply:
		out = mgl32.Vec4{in[0] * fx[0], in[1] * fx[1], in[2] * fx[2], in[3] * fx[3]}
	default:
		out = fx
	}
	if b.Opacity >= 1 {
		return out
	}
	return in.Mul(1 - b.Opacity).Add(out.Mul(b.Opacity))
}
