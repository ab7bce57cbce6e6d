package graphics

import "github.com/richinsley/gomoebius/render"

// Pointer is the cursor in logical window coordinates, origin top left.
type Pointer struct {
	X, Y float64
	// Down is true while the primary button is held.
	Down bool
}

// Context defines the interface for an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	// GetWindowSize returns the logical size; it differs from the framebuffer
	// size on high density displays.
	GetWindowSize() (int, int)
	Time() float64
	IsGLES() bool
	Pointer() Pointer
}

// Viewport derives the pipeline viewport from a context: the logical window
// size plus the ratio of framebuffer to window pixels.
func Viewport(ctx Context) render.Viewport {
	ww, wh := ctx.GetWindowSize()
	fw, _ := ctx.GetFramebufferSize()
	ratio := 1.0
	if ww > 0 {
		ratio = float64(fw) / float64(ww)
	}
	return render.Viewport{Width: ww, Height: wh, PixelRatio: ratio}
}
