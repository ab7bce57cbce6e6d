package renderer

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gomoebius/render"
)

func getWrapMode(repeat bool) int32 {
	if repeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func getFilterMode(filter render.Filter, mipmaps bool) (minFilter, magFilter int32) {
	switch {
	case filter == render.FilterNearest && mipmaps:
		return gl.NEAREST_MIPMAP_NEAREST, gl.NEAREST
	case filter == render.FilterNearest:
		return gl.NEAREST, gl.NEAREST
	case mipmaps:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	default:
		return gl.LINEAR, gl.LINEAR
	}
}

// getTextureFormat maps a render format to the internal format, pixel format
// and pixel type used to allocate it.
func getTextureFormat(f render.Format) (internalFormat int32, pixelFormat, pixelType uint32) {
	switch f {
	case render.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT
	case render.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case render.FormatDepth16:
		return gl.DEPTH_COMPONENT16, gl.DEPTH_COMPONENT, gl.UNSIGNED_SHORT
	case render.FormatDepth24:
		return gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT
	case render.FormatDepth32F:
		return gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}
