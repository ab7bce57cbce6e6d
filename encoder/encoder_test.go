package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero size", Options{Width: 0, Height: 10, FPS: 30, OutputFile: "a.mp4"}},
		{"zero fps", Options{Width: 10, Height: 10, FPS: 0, OutputFile: "a.mp4"}},
		{"no output", Options{Width: 10, Height: 10, FPS: 30}},
		{"bad codec", Options{Width: 10, Height: 10, FPS: 30, OutputFile: "a.mp4", Codec: "vp9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestGetArgs(t *testing.T) {
	e, err := New(Options{Width: 64, Height: 32, FPS: 24, OutputFile: "out.MP4", Codec: "hevc"})
	require.NoError(t, err)

	in, out := e.getArgs()
	assert.Equal(t, "rawvideo", in["f"])
	assert.Equal(t, "rgba", in["pix_fmt"])
	assert.Equal(t, "64x32", in["s"])
	assert.Equal(t, 24, in["r"])
	assert.Equal(t, "vflip", out["vf"])
	assert.Equal(t, "hvc1", out["tag:v"])
	assert.Equal(t, "25M", out["b:v"])
	assert.Equal(t, videoCodec("hevc"), out["c:v"])

	e.opts.TopFirst = true
	_, out = e.getArgs()
	assert.NotContains(t, out, "vf")
}

func TestEncodeRequiresStart(t *testing.T) {
	e, err := New(Options{Width: 2, Height: 2, FPS: 1, OutputFile: "x.mp4"})
	require.NoError(t, err)

	assert.Error(t, e.Encode(&Frame{Pixels: make([]byte, 16)}))
	assert.NoError(t, e.Close())
	assert.NoError(t, e.Close())
}
