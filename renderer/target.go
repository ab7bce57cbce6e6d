package renderer

import (
	"fmt"

	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gomoebius/render"
)

// Texture is a GL 2D texture.
type Texture struct {
	id     uint32
	width  int
	height int
	format render.Format
	owner  *Renderer
}

func (t *Texture) Width() int            { return t.width }
func (t *Texture) Height() int           { return t.height }
func (t *Texture) Format() render.Format { return t.format }

// ID returns the GL texture name, 0 once destroyed.
func (t *Texture) ID() uint32 { return t.id }

func (t *Texture) Destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func newTexture(owner *Renderer, width, height int, format render.Format, filter render.Filter, mipmaps, repeat bool, pixels []byte) *Texture {
	t := &Texture{width: width, height: height, format: format, owner: owner}
	internalFormat, pixelFormat, pixelType := getTextureFormat(format)
	if pixels != nil {
		pixelFormat, pixelType = gl.RGBA, gl.UNSIGNED_BYTE
	}

	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	if pixels != nil {
		gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(width), int32(height), 0, pixelFormat, pixelType, gl.Ptr(pixels))
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(width), int32(height), 0, pixelFormat, pixelType, nil)
	}

	minFilter, magFilter := getFilterMode(filter, mipmaps)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, getWrapMode(repeat))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, getWrapMode(repeat))
	if format.IsDepth() {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.NONE)
	}
	if mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// Target is a framebuffer object with a color texture and an optional depth
// attachment, either a sampleable texture or a renderbuffer.
type Target struct {
	desc    render.TargetDesc
	fbo     uint32
	color   *Texture
	depth   *Texture
	depthRB uint32
	owner   *Renderer
}

func newTarget(owner *Renderer, desc render.TargetDesc) (*Target, error) {
	t := &Target{desc: desc, owner: owner}
	t.color = newTexture(owner, desc.Width, desc.Height, desc.Color, desc.Filter, desc.Mipmaps, false, nil)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color.id, 0)

	switch {
	case desc.Depth != render.FormatNone && desc.DepthTexture:
		t.depth = newTexture(owner, desc.Width, desc.Height, desc.Depth, render.FilterNearest, false, false, nil)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.depth.id, 0)
	case desc.Depth != render.FormatNone:
		internalFormat, _, _ := getTextureFormat(desc.Depth)
		attachment := uint32(gl.DEPTH_ATTACHMENT)
		if desc.Stencil {
			internalFormat = gl.DEPTH24_STENCIL8
			attachment = gl.DEPTH_STENCIL_ATTACHMENT
		}
		gl.GenRenderbuffers(1, &t.depthRB)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depthRB)
		gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(internalFormat), int32(desc.Width), int32(desc.Height))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, t.depthRB)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Destroy()
		return nil, fmt.Errorf("framebuffer %q is not complete: 0x%x", desc.Label, status)
	}
	log.Debug("created framebuffer", "label", desc.Label, "width", desc.Width, "height", desc.Height, "color", desc.Color, "depth", desc.Depth)
	return t, nil
}

func (t *Target) Desc() render.TargetDesc      { return t.desc }
func (t *Target) Width() int                   { return t.desc.Width }
func (t *Target) Height() int                  { return t.desc.Height }
func (t *Target) ColorTexture() render.Texture { return t.color }

func (t *Target) DepthTexture() render.Texture {
	if t.depth == nil {
		return nil
	}
	return t.depth
}

// BindForWriting binds the FBO and sets the viewport to cover it.
func (t *Target) BindForWriting() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.desc.Width), int32(t.desc.Height))
}

func (t *Target) Destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.depthRB != 0 {
		gl.DeleteRenderbuffers(1, &t.depthRB)
		t.depthRB = 0
	}
	if t.color != nil {
		t.color.Destroy()
	}
	if t.depth != nil {
		t.depth.Destroy()
	}
	if t.owner != nil && t.owner.bound == t {
		t.owner.bound = nil
	}
}

var _ render.RenderTarget = (*Target)(nil)
