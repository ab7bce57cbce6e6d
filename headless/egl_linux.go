//go:build linux

package headless

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gomoebius/graphics"
)

/*
#cgo LDFLAGS: -lEGL -lGLESv2
#include <EGL/egl.h>
#include <EGL/eglext.h>

// extension entry points are resolved at runtime and called through these
// wrappers.
static PFNEGLQUERYDEVICESEXTPROC eglQueryDevicesEXT_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC eglGetPlatformDisplayEXT_ptr = NULL;

static void initialize_egl_extension_pointers() {
    eglQueryDevicesEXT_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
    eglGetPlatformDisplayEXT_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
}

static EGLDisplay get_platform_display(EGLenum platform, void *native_display, const EGLint *attrib_list) {
    if (eglGetPlatformDisplayEXT_ptr) {
        return eglGetPlatformDisplayEXT_ptr(platform, native_display, attrib_list);
    }
    return EGL_NO_DISPLAY;
}

static EGLBoolean query_devices(EGLint max_devices, EGLDeviceEXT *devices, EGLint *num_devices) {
    if (eglQueryDevicesEXT_ptr) {
        return eglQueryDevicesEXT_ptr(max_devices, devices, num_devices);
    }
    return EGL_FALSE;
}
*/
import "C"

// Headless is a window-less EGL context rendering into a pbuffer surface.
// Recording uses it where no display server is available.
type Headless struct {
	display C.EGLDisplay
	context C.EGLContext
	surface C.EGLSurface
	width   int
	height  int
	start   time.Time
}

var _ graphics.Context = (*Headless)(nil)

var noDisplay = C.EGLDisplay(C.EGL_NO_DISPLAY)

// display enumerates EGL devices and takes the first one that yields a
// display, falling back to EGL_DEFAULT_DISPLAY without the device extension.
func display() (C.EGLDisplay, error) {
	C.initialize_egl_extension_pointers()

	var n C.EGLint
	if C.query_devices(0, nil, &n) == C.EGL_FALSE || n == 0 {
		log.Warn("EGL device enumeration unavailable, using the default display")
		d := C.eglGetDisplay(C.EGLNativeDisplayType(C.EGL_DEFAULT_DISPLAY))
		if d == noDisplay {
			return noDisplay, fmt.Errorf("no default EGL display")
		}
		return d, nil
	}

	devices := make([]C.EGLDeviceEXT, n)
	if C.query_devices(n, &devices[0], &n) == C.EGL_FALSE {
		return noDisplay, fmt.Errorf("query EGL devices failed")
	}
	log.Debug("EGL devices", "count", int(n))
	for i := 0; i < int(n); i++ {
		d := C.get_platform_display(C.EGL_PLATFORM_DEVICE_EXT, unsafe.Pointer(devices[i]), nil)
		if d != noDisplay {
			log.Debug("using EGL device", "index", i)
			return d, nil
		}
	}
	return noDisplay, fmt.Errorf("none of %d EGL devices provides a display", int(n))
}

// chooseConfig picks an RGBA8 pbuffer config with a 24-bit depth buffer.
func chooseConfig(d C.EGLDisplay) (C.EGLConfig, error) {
	attribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_DEPTH_SIZE, 24,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES3_BIT,
		C.EGL_NONE,
	}
	var cfg C.EGLConfig
	var n C.EGLint
	if C.eglChooseConfig(d, &attribs[0], &cfg, 1, &n) == C.EGL_FALSE || n == 0 {
		return cfg, fmt.Errorf("no matching EGL config")
	}
	return cfg, nil
}

// NewHeadless creates an OpenGL ES 3 context with a width x height pbuffer
// and makes it current. Partially created resources are released on error.
func NewHeadless(width, height int) (_ *Headless, err error) {
	h := &Headless{
		display: noDisplay,
		context: C.EGLContext(C.EGL_NO_CONTEXT),
		surface: C.EGLSurface(C.EGL_NO_SURFACE),
		width:   width,
		height:  height,
		start:   time.Now(),
	}
	defer func() {
		if err != nil {
			h.Shutdown()
		}
	}()

	d, err := display()
	if err != nil {
		return nil, fmt.Errorf("egl display: %w", err)
	}
	var major, minor C.EGLint
	if C.eglInitialize(d, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("eglInitialize failed")
	}
	h.display = d
	log.Info("EGL initialized", "version", fmt.Sprintf("%d.%d", major, minor), "width", width, "height", height)

	cfg, err := chooseConfig(d)
	if err != nil {
		return nil, err
	}

	surfaceAttribs := []C.EGLint{C.EGL_WIDTH, C.EGLint(width), C.EGL_HEIGHT, C.EGLint(height), C.EGL_NONE}
	h.surface = C.eglCreatePbufferSurface(d, cfg, &surfaceAttribs[0])
	if h.surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		return nil, fmt.Errorf("eglCreatePbufferSurface failed")
	}

	contextAttribs := []C.EGLint{C.EGL_CONTEXT_CLIENT_VERSION, 3, C.EGL_NONE}
	h.context = C.eglCreateContext(d, cfg, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if h.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		return nil, fmt.Errorf("eglCreateContext failed")
	}

	if C.eglMakeCurrent(d, h.surface, h.surface, h.context) == C.EGL_FALSE {
		return nil, fmt.Errorf("eglMakeCurrent failed")
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	return h, nil
}

// Shutdown releases the context, the surface and the display.
func (h *Headless) Shutdown() {
	if h.display == noDisplay {
		return
	}
	C.eglMakeCurrent(h.display, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
	if h.context != C.EGLContext(C.EGL_NO_CONTEXT) {
		C.eglDestroyContext(h.display, h.context)
	}
	if h.surface != C.EGLSurface(C.EGL_NO_SURFACE) {
		C.eglDestroySurface(h.display, h.surface)
	}
	C.eglTerminate(h.display)
	h.display = noDisplay
}

func (h *Headless) MakeCurrent() {
	C.eglMakeCurrent(h.display, h.surface, h.surface, h.context)
}

// EndFrame swaps the pbuffer; nothing is ever shown.
func (h *Headless) EndFrame() {
	C.eglSwapBuffers(h.display, h.surface)
}

func (h *Headless) ShouldClose() bool { return false }
func (h *Headless) IsGLES() bool      { return true }

func (h *Headless) GetFramebufferSize() (int, int) { return h.width, h.height }
func (h *Headless) GetWindowSize() (int, int)      { return h.width, h.height }

func (h *Headless) Time() float64 {
	return time.Since(h.start).Seconds()
}

// Pointer is always at rest: there is no input device.
func (h *Headless) Pointer() graphics.Pointer {
	return graphics.Pointer{}
}
