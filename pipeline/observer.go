package pipeline

import (
	"sync"

	"github.com/richinsley/gomoebius/render"
)

// Pass names reported to an Observer, in the order they run each frame.
const (
	PassAuxDepth  = "aux.depth"
	PassAuxNormal = "aux.normal"
	PassMain      = "main"
	PassPresent   = "present"
)

// EffectPass returns the pass name reported for an effect.
func EffectPass(name string) string {
	return "effect." + name
}

// Observer is told about every pass just before it runs.
type Observer interface {
	Pass(name string, f *render.Frame)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(name string, f *render.Frame)

func (fn ObserverFunc) Pass(name string, f *render.Frame) { fn(name, f) }

func notify(obs Observer, name string, f *render.Frame) {
	if obs != nil {
		obs.Pass(name, f)
	}
}

// Recorder is an Observer that keeps the sequence of pass names.
type Recorder struct {
	mu     sync.Mutex
	passes []string
}

func (r *Recorder) Pass(name string, _ *render.Frame) {
	r.mu.Lock()
	r.passes = append(r.passes, name)
	r.mu.Unlock()
}

// Passes returns a copy of the recorded pass names.
func (r *Recorder) Passes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.passes...)
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.passes = r.passes[:0]
	r.mu.Unlock()
}

// multiObserver fans a pass out to several observers.
type multiObserver []Observer

func (m multiObserver) Pass(name string, f *render.Frame) {
	for _, o := range m {
		notify(o, name, f)
	}
}
