package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportResolution(t *testing.T) {
	tests := []struct {
		name         string
		vp           Viewport
		wantW, wantH int
	}{
		{"standard density", Viewport{800, 600, 1}, 800, 600},
		{"retina", Viewport{800, 600, 2}, 1600, 1200},
		{"capped at two", Viewport{800, 600, 3}, 1600, 1200},
		{"fractional", Viewport{801, 601, 1.5}, 1202, 902},
		{"unknown ratio", Viewport{640, 480, 0}, 640, 480},
		{"nan ratio", Viewport{640, 480, math.NaN()}, 640, 480},
		{"minimized", Viewport{0, 0, 1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.vp.Resolution()
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestUniformSet(t *testing.T) {
	u := NewUniformSet()
	u.SetFloat("a", 1.5)
	u.SetBool("b", true)
	u.SetVec2("res", mgl32.Vec2{4, 2})

	assert.Equal(t, float32(1.5), u.Float("a"))
	assert.True(t, u.Bool("b"))
	assert.Equal(t, mgl32.Vec2{4, 2}, u.Vec2("res"))
	assert.Equal(t, []string{"a", "b", "res"}, u.Names())

	// kind changes in place
	u.SetInt("a", 3)
	assert.Equal(t, int32(3), u.Int("a"))
	assert.Zero(t, u.Float("a"))
	assert.Equal(t, 3, u.Len())

	u.SetTexture("tex", nil)
	assert.True(t, u.Has("tex"))
	assert.Nil(t, u.Texture("tex"))
	_, ok := u.Sampler("tex")
	assert.False(t, ok)

	u.SetVec3("light", mgl32.Vec3{1, 2, 3})
	u.SetVec4("tint", mgl32.Vec4{1, 0, 0, 1})
	light, ok := u.Get("light")
	require.True(t, ok)
	assert.Equal(t, UniformVec3, light.Kind)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 0}, light.Vec)
	tint, _ := u.Get("tint")
	assert.Equal(t, UniformVec4, tint.Kind)
	assert.Zero(t, u.Vec2("tint"), "typed getters ignore other kinds")

	require.NoError(t, u.Require("a", "tex"))
	assert.ErrorIs(t, u.Require("a", "missing"), ErrInvalidConfig)
}

func TestTargetDescValidate(t *testing.T) {
	ok := TargetDesc{Label: "t", Width: 4, Height: 4, Color: FormatRGBA8, Depth: FormatDepth16, DepthTexture: true}
	require.NoError(t, ok.Validate())

	bad := map[string]TargetDesc{
		"zero size":      ok.WithSize(0, 4),
		"depth as color": {Label: "t", Width: 4, Height: 4, Color: FormatDepth24},
		"color as depth": {Label: "t", Width: 4, Height: 4, Color: FormatRGBA8, Depth: FormatRGBA8},
		"missing depth":  {Label: "t", Width: 4, Height: 4, Color: FormatRGBA8, DepthTexture: true},
		"multisampled":   {Label: "t", Width: 4, Height: 4, Color: FormatRGBA8, Samples: 4},
	}
	for name, d := range bad {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, d.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" RGBA16F ")
	require.NoError(t, err)
	assert.Equal(t, FormatRGBA16F, f)
	assert.True(t, f.IsFloat())

	_, err = ParseFormat("depth24")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBlendApply(t *testing.T) {
	in := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	fx := mgl32.Vec4{1, 0, 0.5, 1}

	assert.Equal(t, fx, DefaultBlend.Apply(in, fx))
	assert.Equal(t, in, BlendMode{Func: BlendSkip, Opacity: 1}.Apply(in, fx))
	assert.Equal(t, mgl32.Vec4{0.5, 0, 0.25, 1}, BlendMode{Func: BlendMultiply, Opacity: 1}.Apply(in, fx))

	half := BlendMode{Func: BlendNormal, Opacity: 0.5}.Apply(in, fx)
	assert.InDelta(t, 0.75, half[0], 1e-6)
	assert.InDelta(t, 0.25, half[1], 1e-6)
}
