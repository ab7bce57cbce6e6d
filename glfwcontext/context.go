// Package glfwcontext hosts the renderer in a GLFW window.
package glfwcontext

import (
	"runtime"

	"github.com/charmbracelet/log"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/gomoebius/graphics"
)

// Options configures the window.
type Options struct {
	Width   int
	Height  int
	Title   string
	Visible bool
}

// Context wraps a GLFW window: key bindings, scroll accumulation and pointer
// state for the orbit camera.
type Context struct {
	window *glfw.Window
	scroll float64
	keys   map[glfw.Key]func()
}

var _ graphics.Context = (*Context)(nil)

func windowHints(visible bool) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	// the framebuffer follows the monitor's content scale; the pipeline caps it
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)
	// antialiasing is a post pass
	glfw.WindowHint(glfw.Samples, 0)
	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
}

// New opens a window with an OpenGL 4.1 core context.
func New(opts Options) (*Context, error) {
	windowHints(opts.Visible)
	title := opts.Title
	if title == "" {
		title = "gomoebius"
	}
	win, err := glfw.CreateWindow(opts.Width, opts.Height, title, nil, nil)
	if err != nil {
		return nil, err
	}
	c := &Context{window: win, keys: make(map[glfw.Key]func())}
	win.SetKeyCallback(c.onKey)
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		c.scroll += yoff
	})
	fw, fh := win.GetFramebufferSize()
	log.Debug("window created", "width", opts.Width, "height", opts.Height, "framebuffer", [2]int{fw, fh})
	return c, nil
}

// RegisterKeyCallback runs f whenever key is pressed. Callbacks run from
// EndFrame, between frames.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keys[key] = f
}

func (c *Context) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
		return
	}
	if f, ok := c.keys[key]; ok {
		f()
	}
}

// TakeScroll returns the vertical scroll accumulated since the last call.
func (c *Context) TakeScroll() float64 {
	s := c.scroll
	c.scroll = 0
	return s
}

// Pointer returns the cursor position in window coordinates.
func (c *Context) Pointer() graphics.Pointer {
	x, y := c.window.GetCursorPos()
	return graphics.Pointer{
		X:    x,
		Y:    y,
		Down: c.window.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press,
	}
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool { return c.window.ShouldClose() }
func (c *Context) IsGLES() bool      { return false }
func (c *Context) Time() float64     { return glfw.GetTime() }

// EndFrame swaps buffers and dispatches pending input events.
func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) { return c.window.GetFramebufferSize() }
func (c *Context) GetWindowSize() (int, int)      { return c.window.GetSize() }

// InitGraphics initializes GLFW. It must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Debug("GLFW initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. It must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Debug("GLFW terminated")
}
