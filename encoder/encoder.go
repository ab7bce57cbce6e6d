package encoder

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame represents a single rendered video frame's data, ready for encoding.
// Pixels are tightly packed RGBA8 rows, bottom row first (GL readback order).
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Options configures an Encoder.
type Options struct {
	Width      int
	Height     int
	FPS        int
	OutputFile string
	// Codec is "h264" (default) or "hevc".
	Codec string
	// Bitrate is passed to ffmpeg as b:v, e.g. "25M".
	Bitrate string
	// FFmpegPath overrides the ffmpeg binary looked up on PATH.
	FFmpegPath string
	// TopFirst marks Pixels as top row first, disabling the vertical flip.
	TopFirst bool
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", o.Width, o.Height)
	}
	if o.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", o.FPS)
	}
	if o.OutputFile == "" {
		return errors.New("no output file")
	}
	switch o.Codec {
	case "", "h264", "hevc":
	default:
		return fmt.Errorf("unsupported codec %q", o.Codec)
	}
	return nil
}

// Encoder pipes raw RGBA frames into an ffmpeg process. Encode is the
// producer side; a single goroutine started by Start is the consumer.
type Encoder struct {
	opts   Options
	frames chan *Frame
	done   chan error

	started   bool
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// New validates opts and prepares an encoder. Nothing runs until Start.
func New(opts Options) (*Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	if opts.Codec == "" {
		opts.Codec = "h264"
	}
	if opts.Bitrate == "" {
		opts.Bitrate = "25M"
	}
	return &Encoder{
		opts:   opts,
		frames: make(chan *Frame, 5),
		done:   make(chan error, 1),
	}, nil
}

// frameSize is the byte length every Frame.Pixels must have.
func (e *Encoder) frameSize() int {
	return e.opts.Width * e.opts.Height * 4
}

// videoCodec picks the encoder for the platform, preferring hardware.
func videoCodec(codec string) string {
	hevc := codec == "hevc"
	switch runtime.GOOS {
	case "darwin":
		if hevc {
			return "hevc_videotoolbox"
		}
		return "h264_videotoolbox"
	default:
		if hevc {
			return "libx265"
		}
		return "libx264"
	}
}

func (e *Encoder) getArgs() (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", e.opts.Width, e.opts.Height),
		"r":       e.opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		"c:v":     videoCodec(e.opts.Codec),
		"pix_fmt": "yuv420p",
		"b:v":     e.opts.Bitrate,
	}
	if !e.opts.TopFirst {
		outputArgs["vf"] = "vflip"
	}
	if e.opts.Codec == "hevc" && strings.EqualFold(filepath.Ext(e.opts.OutputFile), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Start launches ffmpeg and the consumer goroutine.
func (e *Encoder) Start() error {
	if e.started {
		return errors.New("encoder: already started")
	}
	e.started = true

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := e.getArgs()
	log.Info("starting ffmpeg", "codec", outputArgs["c:v"], "size", inputArgs["s"], "fps", e.opts.FPS, "out", e.opts.OutputFile)

	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(e.opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if e.opts.FFmpegPath != "" {
		cmd = cmd.SetFfmpegPath(e.opts.FFmpegPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := cmd.Run()
		// unblock the writer if ffmpeg exits early
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	go e.run(pipeWriter, errc)
	return nil
}

// run is the consumer: it drains frames into the pipe until the channel closes.
func (e *Encoder) run(w *io.PipeWriter, errc <-chan error) {
	var writeErr error
	for frame := range e.frames {
		if writeErr != nil {
			continue
		}
		if _, err := w.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("write frame %d: %w", frame.PTS, err)
			log.Error("ffmpeg pipe closed", "frame", frame.PTS, "err", err)
		}
	}
	w.Close()

	runErr := <-errc
	if runErr != nil {
		runErr = fmt.Errorf("ffmpeg: %w", runErr)
	}
	e.done <- errors.Join(writeErr, runErr)
}

// Encode queues a frame. It blocks when the consumer falls behind.
func (e *Encoder) Encode(frame *Frame) error {
	if !e.started {
		return errors.New("encoder: not started")
	}
	if e.closed {
		return errors.New("encoder: closed")
	}
	if frame == nil || len(frame.Pixels) != e.frameSize() {
		return fmt.Errorf("encoder: frame must hold %d bytes", e.frameSize())
	}
	e.frames <- frame
	return nil
}

// Close flushes queued frames, waits for ffmpeg to finish and returns its error.
func (e *Encoder) Close() error {
	e.closeOnce.Do(func() {
		e.closed = true
		close(e.frames)
		if e.started {
			e.closeErr = <-e.done
		}
	})
	return e.closeErr
}
