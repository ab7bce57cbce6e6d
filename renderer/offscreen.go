package renderer

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gomoebius/render"
)

// Readback reads RGBA frames out of a render target through a ring of pixel
// pack buffers. Each Read queues a transfer into the current buffer and maps
// the oldest one once the ring is full, so results arrive len(ring)-1 frames late without stalling
// the pipeline.
type Readback struct {
	width    int
	height   int
	pbos     []uint32
	pboIndex int
	queued   int
}

// NewReadback allocates numPBOs pixel pack buffers of width x height RGBA.
func NewReadback(width, height, numPBOs int) (*Readback, error) {
	if numPBOs < 2 {
		return nil, fmt.Errorf("number of PBOs must be at least 2")
	}
	rb := &Readback{width: width, height: height, pbos: make([]uint32, numPBOs)}
	gl.GenBuffers(int32(numPBOs), &rb.pbos[0])
	size := width * height * 4
	for _, pbo := range rb.pbos {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pbo)
		gl.BufferData(gl.PIXEL_PACK_BUFFER, size, nil, gl.STREAM_READ)
	}
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	return rb, nil
}

// Read queues the color attachment of t and returns the oldest completed
// frame, bottom row first. It returns nil until the ring has filled.
func (rb *Readback) Read(t render.RenderTarget) ([]byte, error) {
	gt, ok := t.(*Target)
	if !ok {
		return nil, render.ErrBackendMismatch
	}
	if gt.desc.Width != rb.width || gt.desc.Height != rb.height {
		return nil, fmt.Errorf("%w: readback is %dx%d, target %q is %dx%d",
			render.ErrStaleTarget, rb.width, rb.height, gt.desc.Label, gt.desc.Width, gt.desc.Height)
	}

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, gt.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, rb.pbos[rb.pboIndex])
	gl.ReadPixels(0, 0, int32(rb.width), int32(rb.height), gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	rb.pboIndex = (rb.pboIndex + 1) % len(rb.pbos)
	rb.queued++
	if rb.queued < len(rb.pbos) {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
		return nil, nil
	}
	// ring is full: pboIndex now names the oldest transfer
	rb.queued--
	return rb.mapBuffer(rb.pboIndex)
}

// Flush returns every frame still queued, oldest first.
func (rb *Readback) Flush() ([][]byte, error) {
	n := len(rb.pbos)
	var frames [][]byte
	for rb.queued > 0 {
		oldest := (rb.pboIndex - rb.queued + n) % n
		pix, err := rb.mapBuffer(oldest)
		if err != nil {
			return frames, err
		}
		frames = append(frames, pix)
		rb.queued--
	}
	return frames, nil
}

func (rb *Readback) mapBuffer(i int) ([]byte, error) {
	size := rb.width * rb.height * 4
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, rb.pbos[i])
	defer gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	ptr := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, size, gl.MAP_READ_BIT)
	if ptr == nil {
		return nil, fmt.Errorf("failed to map PBO %d", i)
	}
	pix := make([]byte, size)
	copy(pix, unsafe.Slice((*byte)(ptr), size))
	gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
	return pix, nil
}

func (rb *Readback) Destroy() {
	if len(rb.pbos) > 0 {
		gl.DeleteBuffers(int32(len(rb.pbos)), &rb.pbos[0])
		rb.pbos = nil
	}
}
