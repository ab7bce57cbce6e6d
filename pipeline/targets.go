package pipeline

import "github.com/richinsley/gomoebius/render"

// targetSet is a group of render targets allocated together. Resizing builds
// a complete new set before any old target is released.
type targetSet []render.RenderTarget

func (s targetSet) destroy() {
	for _, t := range s {
		if t != nil {
			t.Destroy()
		}
	}
}

// allocate creates one target per descriptor, releasing the ones already
// created when any of them fails.
func allocate(b render.Backend, descs ...render.TargetDesc) (targetSet, error) {
	set := make(targetSet, 0, len(descs))
	for _, d := range descs {
		t, err := b.NewRenderTarget(d)
		if err != nil {
			set.destroy()
			return nil, err
		}
		set = append(set, t)
	}
	return set, nil
}
