package render

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/scene"
)

// Kernel is the CPU evaluation of an effect's fragment program for the pixel
// (x, y). in is the effect's input color buffer.
type Kernel func(in Sampler, x, y int, u *UniformSet) mgl32.Vec4

// EffectSource is everything a backend needs to build an effect program.
type EffectSource struct {
	Name string
	// Fragment is the effect body in GLSL ES 3.00. It defines
	// `vec4 effect(vec4 inputColor, vec2 uv)`.
	Fragment string
	Kernel   Kernel
	Blend    BlendMode
}

// Program is a compiled effect program.
type Program interface {
	Name() string
	Destroy()
}

// TextureDesc describes a texture uploaded from an image.
type TextureDesc struct {
	Label  string
	Filter Filter
	Repeat bool
}

// Backend executes passes. It mirrors the small slice of a GPU API the
// pipeline needs: bind a target, draw the scene into it, run a full-screen
// program, present.
type Backend interface {
	Name() string

	NewRenderTarget(desc TargetDesc) (RenderTarget, error)
	NewTexture(img image.Image, desc TextureDesc) (Texture, error)
	CompileEffect(src EffectSource) (Program, error)

	// SetRenderTarget binds t for drawing; nil binds the default framebuffer.
	SetRenderTarget(t RenderTarget)
	RenderTarget() RenderTarget

	// RenderScene clears the bound target to the scene background and draws
	// every visible node.
	RenderScene(sc *scene.Scene, cam *scene.Camera) error

	// RunEffect evaluates p over every pixel of output, reading input.
	RunEffect(p Program, u *UniformSet, input Texture, output RenderTarget) error

	// Present shows src on the default framebuffer.
	Present(src Texture) error

	// ReadPixels returns the color attachment of t as 8-bit RGBA, top row first.
	ReadPixels(t RenderTarget) (*image.RGBA, error)

	Destroy()
}
