package soft

import (
	"github.com/richinsley/gomoebius/render"
)

// Target is a render target of the software backend.
type Target struct {
	desc  render.TargetDesc
	color *Texture
	depth *Texture

	owner     *Backend
	destroyed bool
}

func (t *Target) Desc() render.TargetDesc { return t.desc }
func (t *Target) Width() int              { return t.desc.Width }
func (t *Target) Height() int             { return t.desc.Height }

func (t *Target) ColorTexture() render.Texture {
	return t.color
}

// DepthTexture returns the depth attachment when the descriptor asked for a
// sampleable one.
func (t *Target) DepthTexture() render.Texture {
	if !t.desc.DepthTexture || t.depth == nil {
		return nil
	}
	return t.depth
}

// Destroyed reports whether Destroy has been called.
func (t *Target) Destroyed() bool {
	return t.destroyed
}

func (t *Target) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.color.destroyed = true
	if t.depth != nil {
		t.depth.destroyed = true
	}
	t.owner.live--
	if t.owner.bound == t {
		t.owner.bound = nil
	}
}

var _ render.RenderTarget = (*Target)(nil)
