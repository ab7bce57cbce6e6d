package render

import "math"

// MaxPixelRatio caps the device pixel ratio used to size render targets.
const MaxPixelRatio = 2.0

// Viewport is the logical window size plus the display's device pixel ratio.
type Viewport struct {
	Width      int
	Height     int
	PixelRatio float64
}

// EffectivePixelRatio returns the device pixel ratio clamped to
// (0, MaxPixelRatio]. Unknown ratios count as 1.
func (v Viewport) EffectivePixelRatio() float64 {
	dpr := v.PixelRatio
	if dpr <= 0 || math.IsNaN(dpr) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	return math.Min(dpr, MaxPixelRatio)
}

// Resolution returns the drawing buffer size in device pixels.
func (v Viewport) Resolution() (int, int) {
	dpr := v.EffectivePixelRatio()
	w := int(math.Round(float64(v.Width) * dpr))
	h := int(math.Round(float64(v.Height) * dpr))
	return max(w, 1), max(h, 1)
}
