package render

import "github.com/richinsley/gomoebius/scene"

// Frame is the per-frame context handed to every pass. Camera and Scene are
// read-only for the duration of the frame.
type Frame struct {
	Index    int64
	Time     float64
	Delta    float64
	Viewport Viewport
	Camera   *scene.Camera
	Scene    *scene.Scene
	Backend  Backend
}

// Resolution returns the frame's drawing buffer size.
func (f *Frame) Resolution() (int, int) {
	return f.Viewport.Resolution()
}
