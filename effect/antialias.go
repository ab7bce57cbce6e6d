package effect

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/shader"
)

// Preset names a quality level of the morphological antialias.
type Preset int

const (
	PresetLow Preset = iota
	PresetMedium
	PresetHigh
	PresetUltra
)

var presetNames = []string{"low", "medium", "high", "ultra"}

func (p Preset) String() string {
	if p < 0 || int(p) >= len(presetNames) {
		return fmt.Sprintf("Preset(%d)", int(p))
	}
	return presetNames[p]
}

// ParsePreset accepts the preset names case-insensitively.
func ParsePreset(s string) (Preset, error) {
	for i, n := range presetNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Preset(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown antialias preset %q", render.ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Preset) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Preset) UnmarshalText(b []byte) error {
	v, err := ParsePreset(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type presetValues struct {
	edgeThreshold        float32
	maxSearchSteps       int32
	predicationThreshold float32
}

var presets = [...]presetValues{
	PresetLow:    {0.15, 4, 0.02},
	PresetMedium: {0.1, 8, 0.01},
	PresetHigh:   {0.1, 16, 0.01},
	PresetUltra:  {0.05, 32, 0.005},
}

const (
	predicationScale    = 2.0
	predicationStrength = 0.4
)

// Predication selects the optional geometric input that tightens edge
// detection.
type Predication int

const (
	PredicationDisabled Predication = iota
	PredicationDepth
)

func (p Predication) String() string {
	if p == PredicationDepth {
		return "depth"
	}
	return "disabled"
}

// MarshalText implements encoding.TextMarshaler.
func (p Predication) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The empty string and
// "none" mean disabled.
func (p *Predication) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "none", "disabled", "off":
		*p = PredicationDisabled
	case "depth":
		*p = PredicationDepth
	default:
		return fmt.Errorf("%w: unknown predication mode %q", render.ErrInvalidConfig, b)
	}
	return nil
}

// AntialiasConfig configures the antialias effect.
type AntialiasConfig struct {
	Preset      Preset
	Predication Predication
}

type antialias struct {
	aux AuxiliaryBuffers
	cfg AntialiasConfig
}

// NewAntialias builds the antialias effect. aux is only consulted when depth
// predication is enabled.
func NewAntialias(cfg AntialiasConfig, aux AuxiliaryBuffers) (*Effect, error) {
	if cfg.Preset < PresetLow || cfg.Preset > PresetUltra {
		return nil, fmt.Errorf("%w: antialias preset %v", render.ErrInvalidConfig, cfg.Preset)
	}
	if cfg.Predication == PredicationDepth && (aux == nil || aux.DepthTexture() == nil) {
		return nil, fmt.Errorf("%w: depth predication requires a depth texture", render.ErrInvalidConfig)
	}
	e := newEffect(KindAntialias, "Antialias", shader.AntialiasFragment, []string{
		"edgeThreshold", "maxSearchSteps", "predicationMode",
		"predicationThreshold", "predicationScale", "predicationStrength", "uDepth",
	})
	e.antialias = &antialias{aux: aux}
	e.uniforms.SetFloat("predicationScale", predicationScale)
	e.uniforms.SetFloat("predicationStrength", predicationStrength)
	e.uniforms.SetTexture("uDepth", nil)
	e.setAntialias(cfg)
	return e, nil
}

func (e *Effect) setAntialias(cfg AntialiasConfig) {
	v := presets[cfg.Preset]
	e.uniforms.SetFloat("edgeThreshold", v.edgeThreshold)
	e.uniforms.SetInt("maxSearchSteps", v.maxSearchSteps)
	e.uniforms.SetFloat("predicationThreshold", v.predicationThreshold)
	e.uniforms.SetInt("predicationMode", int32(cfg.Predication))
	e.antialias.cfg = cfg
}

// SetAntialias changes the preset in place; the effect keeps its identity.
func (e *Effect) SetAntialias(cfg AntialiasConfig) error {
	if e.kind != KindAntialias {
		return fmt.Errorf("effect %s is not an antialias", e.name)
	}
	if cfg.Preset < PresetLow || cfg.Preset > PresetUltra {
		return fmt.Errorf("%w: antialias preset %v", render.ErrInvalidConfig, cfg.Preset)
	}
	if cfg.Predication == PredicationDepth && (e.antialias.aux == nil || e.antialias.aux.DepthTexture() == nil) {
		return fmt.Errorf("%w: depth predication requires a depth texture", render.ErrInvalidConfig)
	}
	e.setAntialias(cfg)
	return nil
}

// AntialiasConfig returns the configuration currently loaded.
func (e *Effect) AntialiasConfig() AntialiasConfig {
	if e.antialias == nil {
		return AntialiasConfig{}
	}
	return e.antialias.cfg
}

func (a *antialias) update(u *render.UniformSet, f *render.Frame) error {
	if Predication(u.Int("predicationMode")) != PredicationDepth {
		return nil
	}
	depth := a.aux.DepthTexture()
	if depth == nil {
		return fmt.Errorf("%w: predication depth missing", render.ErrDisposed)
	}
	u.SetTexture("uDepth", depth)
	return nil
}

func lumaAt(in render.Sampler, x, y int) float32 {
	c := in.At(x, y)
	return luma(c[0], c[1], c[2])
}

func inBounds(in render.Sampler, x, y int) bool {
	return x >= 0 && y >= 0 && x < in.Width() && y < in.Height()
}

// searchEdge walks from (x, y) along (sx, sy) while the edge toward the
// neighbor (nx, ny) persists, returning the number of steps taken.
func searchEdge(in render.Sampler, x, y, sx, sy, nx, ny, maxSteps int, threshold float32) int {
	steps := 0
	for steps < maxSteps {
		px, py := x+sx*(steps+1), y+sy*(steps+1)
		if !inBounds(in, px, py) || !inBounds(in, px+nx, py+ny) {
			break
		}
		if math32.Abs(lumaAt(in, px, py)-lumaAt(in, px+nx, py+ny)) < threshold {
			break
		}
		steps++
	}
	return steps
}

var neighbors = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func antialiasKernel(in render.Sampler, x, y int, u *render.UniformSet) mgl32.Vec4 {
	c := in.At(x, y)
	threshold := u.Float("edgeThreshold")
	if Predication(u.Int("predicationMode")) == PredicationDepth {
		if depth, ok := u.Sampler("uDepth"); ok {
			dx := x * depth.Width() / max(in.Width(), 1)
			dy := y * depth.Height() / max(in.Height(), 1)
			d := depth.At(dx, dy)[0]
			var geo float32
			for _, n := range neighbors {
				geo = math32.Max(geo, math32.Abs(d-depth.At(dx+n[0], dy+n[1])[0]))
			}
			if geo > u.Float("predicationThreshold") {
				geo = 1
			} else {
				geo = 0
			}
			threshold *= u.Float("predicationScale") * (1 - u.Float("predicationStrength")*geo)
		}
	}
	maxSteps := int(u.Int("maxSearchSteps"))
	l := luma(c[0], c[1], c[2])

	var sum mgl32.Vec4
	edges := 0
	for _, n := range neighbors {
		nx, ny := x+n[0], y+n[1]
		if !inBounds(in, nx, ny) {
			continue
		}
		nb := in.At(nx, ny)
		if math32.Abs(l-luma(nb[0], nb[1], nb[2])) < threshold {
			continue
		}
		// walk perpendicular to the neighbor direction
		px, py := n[1], n[0]
		d1 := searchEdge(in, x, y, px, py, n[0], n[1], maxSteps, threshold)
		d2 := searchEdge(in, x, y, -px, -py, n[0], n[1], maxSteps, threshold)
		w := 0.5 / (1 + float32(min(d1, d2)))
		sum = sum.Add(c.Mul(1 - w).Add(nb.Mul(w)))
		edges++
	}
	if edges == 0 {
		return c
	}
	out := sum.Mul(1 / float32(edges))
	out[3] = c[3]
	return out
}
