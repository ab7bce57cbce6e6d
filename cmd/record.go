package main

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/richinsley/gomoebius/encoder"
	"github.com/richinsley/gomoebius/glfwcontext"
	"github.com/richinsley/gomoebius/graphics"
	"github.com/richinsley/gomoebius/headless"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/renderer"
	"github.com/spf13/cobra"
)

// autoOrbitSpeed is the camera's azimuth speed in radians per second when
// nobody is steering it.
const autoOrbitSpeed = 0.3

func newRecordCmd(a *app) *cobra.Command {
	var (
		width, height int
		fps           int
		duration      float64
		output        string
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Render off-screen and encode a video with ffmpeg",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("width") {
				a.cfg.Window.Width = width
			}
			if flags.Changed("height") {
				a.cfg.Window.Height = height
			}
			if flags.Changed("fps") {
				a.cfg.Record.FPS = fps
			}
			if flags.Changed("duration") {
				a.cfg.Record.Duration = duration
			}
			if flags.Changed("output") {
				a.cfg.Record.Output = output
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runRecord(cmd)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "frame width (overrides config)")
	cmd.Flags().IntVar(&height, "height", 0, "frame height (overrides config)")
	cmd.Flags().IntVar(&fps, "fps", 0, "frames per second (overrides config)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "seconds to record (overrides config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output video file (overrides config)")
	return cmd
}

// offscreenContext prefers a window-less EGL context and falls back to a
// hidden GLFW window where EGL is unavailable.
func offscreenContext(width, height int) (ctx graphics.Context, cleanup func(), err error) {
	h, herr := headless.NewHeadless(width, height)
	if herr == nil {
		return h, h.Shutdown, nil
	}
	log.Debug("headless EGL unavailable, using a hidden window", "err", herr)

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, errors.Join(herr, err)
	}
	win, err := glfwcontext.New(glfwcontext.Options{Width: width, Height: height})
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, errors.Join(herr, err)
	}
	win.MakeCurrent()
	return win, func() {
		win.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

func (a *app) runRecord(cmd *cobra.Command) error {
	rc := a.cfg.Record
	width, height := a.cfg.Window.Width, a.cfg.Window.Height

	ctx, cleanup, err := offscreenContext(width, height)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := renderer.New(ctx)
	if err != nil {
		return err
	}
	defer r.Destroy()

	// off-screen frames are exactly the requested size
	v := render.Viewport{Width: width, Height: height, PixelRatio: 1}
	p, orbit, err := newPipeline(r, a.cfg, v)
	if err != nil {
		return err
	}
	defer p.Dispose()

	rb, err := renderer.NewReadback(width, height, rc.NumPBOs)
	if err != nil {
		return err
	}
	defer rb.Destroy()

	enc, err := encoder.New(encoder.Options{
		Width:      width,
		Height:     height,
		FPS:        rc.FPS,
		OutputFile: rc.Output,
		Codec:      rc.Codec,
		Bitrate:    rc.Bitrate,
		FFmpegPath: rc.FFmpegPath,
	})
	if err != nil {
		return err
	}
	if err := enc.Start(); err != nil {
		return err
	}

	var pts int64
	send := func(pix []byte) error {
		if pix == nil {
			return nil
		}
		err := enc.Encode(&encoder.Frame{Pixels: pix, PTS: pts})
		pts++
		return err
	}

	total := int(rc.Duration * float64(rc.FPS))
	dt := 1 / float64(rc.FPS)
	start := time.Now()
	log.Info("recording", "frames", total, "size", [2]int{width, height}, "out", rc.Output)

	renderErr := func() error {
		for i := 0; i < total; i++ {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			orbit.Rotate(autoOrbitSpeed*dt, 0)
			orbit.Apply(p.Camera())
			if err := p.Step(dt); err != nil {
				return err
			}
			pix, err := rb.Read(p.Output())
			if err != nil {
				return err
			}
			if err := send(pix); err != nil {
				return err
			}
			ctx.EndFrame()
		}
		rest, err := rb.Flush()
		for _, pix := range rest {
			if serr := send(pix); serr != nil {
				return serr
			}
		}
		return err
	}()

	if err := errors.Join(renderErr, enc.Close()); err != nil {
		return err
	}
	elapsed := time.Since(start)
	log.Info("recording finished", "frames", pts, "elapsed", elapsed.Round(time.Millisecond),
		"fps", float64(pts)/elapsed.Seconds())
	return nil
}
