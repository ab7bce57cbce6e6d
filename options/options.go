// Package options loads the renderer configuration from a TOML file and
// watches it for live edits.
package options

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/richinsley/gomoebius/effect"
	"github.com/richinsley/gomoebius/pipeline"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
)

// Window is the initial window (or recording frame) size in logical pixels.
type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// Outline mirrors effect.OutlineConfig plus the optional noise texture path.
type Outline struct {
	Frequency    float32 `toml:"frequency"`
	Amplitude    float32 `toml:"amplitude"`
	NoiseTexture string  `toml:"noise_texture"`
}

// Antialias selects the preset and predication source by name.
type Antialias struct {
	Preset      effect.Preset      `toml:"preset"`
	Predication effect.Predication `toml:"predication"`
}

// Lighting uses hex colors ("#1B43BA").
type Lighting struct {
	Background           string  `toml:"background"`
	AmbientColor         string  `toml:"ambient_color"`
	AmbientIntensity     float32 `toml:"ambient_intensity"`
	DirectionalColor     string  `toml:"directional_color"`
	DirectionalIntensity float32 `toml:"directional_intensity"`
}

// Record holds the offline recording settings.
type Record struct {
	Output     string  `toml:"output"`
	FPS        int     `toml:"fps"`
	Duration   float64 `toml:"duration"`
	Codec      string  `toml:"codec"`
	Bitrate    string  `toml:"bitrate"`
	FFmpegPath string  `toml:"ffmpeg_path"`
	NumPBOs    int     `toml:"num_pbos"`
}

// Config is the whole configuration file.
type Config struct {
	Window    Window               `toml:"window"`
	Composer  string               `toml:"composer_format"`
	Outline   Outline              `toml:"outline"`
	ToneMap   effect.ToneMapParams `toml:"tonemap"`
	Antialias Antialias            `toml:"antialias"`
	Lighting  Lighting             `toml:"lighting"`
	Record    Record               `toml:"record"`
}

// Default returns the stock configuration.
func Default() *Config {
	p := pipeline.DefaultParams()
	return &Config{
		Window:   Window{Width: 1280, Height: 720, Title: "gomoebius"},
		Composer: render.FormatRGBA8.String(),
		Outline: Outline{
			Frequency: p.Outline.Frequency,
			Amplitude: p.Outline.Amplitude,
		},
		ToneMap:   p.ToneMap,
		Antialias: Antialias{Preset: p.Antialias.Preset, Predication: p.Antialias.Predication},
		Lighting: Lighting{
			Background:           "#1B43BA",
			AmbientColor:         "#FFFFFF",
			AmbientIntensity:     1.1,
			DirectionalColor:     "#FFFFFF",
			DirectionalIntensity: 12,
		},
		Record: Record{
			Output:   "out.mp4",
			FPS:      60,
			Duration: 10,
			Codec:    "h264",
			Bitrate:  "25M",
			NumPBOs:  3,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", render.ErrInvalidConfig, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys in %s: %v", render.ErrInvalidConfig, path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseColor(name, hex string) (mgl32.Vec3, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("%w: %s color %q: %v", render.ErrInvalidConfig, name, hex, err)
	}
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", render.ErrInvalidConfig, c.Window.Width, c.Window.Height))
	}
	if _, err := c.ComposerFormat(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SceneLighting(); err != nil {
		errs = append(errs, err)
	}
	if c.Lighting.AmbientIntensity < 0 || c.Lighting.DirectionalIntensity < 0 {
		errs = append(errs, fmt.Errorf("%w: light intensities must be non-negative", render.ErrInvalidConfig))
	}
	if c.Record.FPS <= 0 {
		errs = append(errs, fmt.Errorf("%w: record fps %d", render.ErrInvalidConfig, c.Record.FPS))
	}
	if c.Record.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%w: record duration %v", render.ErrInvalidConfig, c.Record.Duration))
	}
	if c.Record.NumPBOs < 2 {
		errs = append(errs, fmt.Errorf("%w: num_pbos must be at least 2", render.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// ComposerFormat parses the composer frame buffer type.
func (c *Config) ComposerFormat() (render.Format, error) {
	if c.Composer == "" {
		return render.FormatRGBA8, nil
	}
	f, err := render.ParseFormat(c.Composer)
	if err != nil {
		return 0, err
	}
	if f != render.FormatRGBA8 && f != render.FormatRGBA16F {
		return 0, fmt.Errorf("%w: composer format must be rgba8 or rgba16f, got %s", render.ErrInvalidConfig, f)
	}
	return f, nil
}

// Params converts the effect sections.
func (c *Config) Params() pipeline.Params {
	return pipeline.Params{
		Outline: effect.OutlineConfig{
			Frequency: c.Outline.Frequency,
			Amplitude: c.Outline.Amplitude,
		},
		ToneMap: c.ToneMap,
		Antialias: effect.AntialiasConfig{
			Preset:      c.Antialias.Preset,
			Predication: c.Antialias.Predication,
		},
	}
}

// SceneLighting converts the lighting section.
func (c *Config) SceneLighting() (scene.Lighting, error) {
	var l scene.Lighting
	var err error
	if l.Background, err = parseColor("background", c.Lighting.Background); err != nil {
		return l, err
	}
	if l.AmbientColor, err = parseColor("ambient", c.Lighting.AmbientColor); err != nil {
		return l, err
	}
	if l.DirectionalColor, err = parseColor("directional", c.Lighting.DirectionalColor); err != nil {
		return l, err
	}
	l.AmbientIntensity = c.Lighting.AmbientIntensity
	l.DirectionalIntensity = c.Lighting.DirectionalIntensity
	return l, nil
}
