package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/richinsley/gomoebius/render"
)

// State is the scheduler's position within a frame.
type State int

const (
	Idle State = iota
	AuxCapture
	MainRender
	PostEffects
	Presented
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AuxCapture:
		return "aux-capture"
	case MainRender:
		return "main-render"
	case PostEffects:
		return "post-effects"
	case Presented:
		return "presented"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Scheduler drives one frame at a time through capture, main render, effects
// and present. Resize requests are applied at the start of the next Step,
// never inside a frame.
type Scheduler struct {
	backend  render.Backend
	capture  *AuxiliaryBufferCapture
	composer *Composer
	observer Observer

	state   State
	pending *render.Viewport
	frames  int64
	resizes int
}

// NewScheduler wires a scheduler around an existing capture and composer.
func NewScheduler(b render.Backend, capture *AuxiliaryBufferCapture, composer *Composer, obs Observer) *Scheduler {
	return &Scheduler{backend: b, capture: capture, composer: composer, observer: obs}
}

// State returns the current state. Outside Step it is always Idle.
func (s *Scheduler) State() State { return s.state }

// Frames returns the number of frames presented.
func (s *Scheduler) Frames() int64 { return s.frames }

// Resizes returns how many times the targets were recreated.
func (s *Scheduler) Resizes() int { return s.resizes }

// AddObserver adds o to the observers told about every pass.
func (s *Scheduler) AddObserver(o Observer) {
	switch cur := s.observer.(type) {
	case nil:
		s.observer = o
	case multiObserver:
		s.observer = append(cur, o)
	default:
		s.observer = multiObserver{cur, o}
	}
}

// RequestResize queues a viewport change for the next frame.
func (s *Scheduler) RequestResize(v render.Viewport) {
	s.pending = &v
}

func (s *Scheduler) enter(st State, pass string, f *render.Frame) {
	s.state = st
	log.Debug("scheduler", "state", st, "frame", f.Index)
	if pass != "" {
		notify(s.observer, pass, f)
	}
}

// Step renders and presents one frame. f.Viewport is the live viewport; a
// pending resize request replaces it for this frame.
func (s *Scheduler) Step(f *render.Frame) (err error) {
	if s.state != Idle {
		return fmt.Errorf("scheduler: step called in state %s", s.state)
	}
	defer func() { s.state = Idle }()

	if s.pending != nil {
		f.Viewport = *s.pending
		s.pending = nil
	}
	if err := s.sync(f); err != nil {
		return err
	}

	s.enter(AuxCapture, "", f)
	if err := s.capture.Capture(f, s.observer); err != nil {
		return err
	}

	s.enter(MainRender, PassMain, f)
	if err := s.composer.RenderMain(f); err != nil {
		return err
	}

	s.enter(PostEffects, "", f)
	if err := s.composer.RunEffects(f, s.observer); err != nil {
		return err
	}

	s.enter(Presented, PassPresent, f)
	if err := s.backend.Present(s.composer.Output().ColorTexture()); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	s.frames++
	return nil
}

// sync recreates every target when the frame resolution differs from the
// allocated size, then refreshes the resolution-dependent uniforms.
func (s *Scheduler) sync(f *render.Frame) error {
	w, h := f.Resolution()
	cw, ch := s.capture.Size()
	pw, ph := s.composer.Size()
	if cw == w && ch == h && pw == w && ph == h {
		return nil
	}
	if err := s.resize(w, h); err != nil {
		return err
	}
	return s.composer.Refresh(f)
}

// resize allocates the complete new target set before releasing anything, so
// a failure leaves the previous set in place.
func (s *Scheduler) resize(w, h int) error {
	aux, err := s.capture.allocate(w, h)
	if err != nil {
		return err
	}
	comp, err := s.composer.allocate(w, h)
	if err != nil {
		aux.destroy()
		return err
	}
	oldAux := s.capture.install(aux)
	oldComp := s.composer.install(comp)
	oldAux.destroy()
	oldComp.destroy()
	s.resizes++
	log.Info("resized render targets", "width", w, "height", h)
	return nil
}
