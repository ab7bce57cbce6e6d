package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeContext struct {
	ww, wh, fw, fh int
}

func (f *fakeContext) MakeCurrent() {}
func (f *fakeContext) Shutdown() {}
func (f *fakeContext) ShouldClose() bool { return false }
func (f *fakeContext) EndFrame() {}
func (f *fakeContext) GetFramebufferSize() (int, int) { return f.fw, f.fh }
func (f *fakeContext) GetWindowSize() (int, int) { return f.ww, f.wh }
func (f *fakeContext) Time() float64 { return 0 }
func (f *fakeContext) IsGLES() bool { return false }
func (f *fakeContext) Pointer() Pointer { return Pointer{} }

func TestViewport(t *testing.T) {
	tests := []struct {
		name               string
		ctx                *fakeContext
		wantW, wantH       int
		wantResW, wantResH int
	}{
		{"standard density", &fakeContext{800, 600, 800, 600}, 800, 600, 800, 600},
		{"retina", &fakeContext{800, 600, 1600, 1200}, 800, 600, 1600, 1200},
		{"3x display is capped", &fakeContext{400, 300, 1200, 900}, 400, 300, 800, 600},
		{"minimized", &fakeContext{0, 0, 0, 0}, 0, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Viewport(tt.ctx)
			assert.Equal(t, tt.wantW, v.Width)
			assert.Equal(t, tt.wantH, v.Height)
			w, h := v.Resolution()
			assert.Equal(t, tt.wantResW, w)
			assert.Equal(t, tt.wantResH, h)
		})
	}
}
