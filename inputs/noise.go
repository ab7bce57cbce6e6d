package inputs

import (
	"image"
	"image/color"
	"math"
)

// DefaultNoiseSize is the edge length of the procedural noise texture.
const DefaultNoiseSize = 128

func lattice(x, y int, seed uint64) float64 {
	h := uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xC2B2AE3D27D4EB4F ^ seed*0x165667B19E3779F9
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	return float64(h>>11) / float64(1<<53)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// valueNoise samples tileable value noise with the given lattice period.
func valueNoise(x, y float64, period int, seed uint64) float64 {
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	tx, ty := smooth(x-float64(x0)), smooth(y-float64(y0))
	at := func(i, j int) float64 {
		return lattice(((i%period)+period)%period, ((j%period)+period)%period, seed)
	}
	a := at(x0, y0) + (at(x0+1, y0)-at(x0, y0))*tx
	b := at(x0, y0+1) + (at(x0+1, y0+1)-at(x0, y0+1))*tx
	return a + (b-a)*ty
}

// ProceduralNoise returns a deterministic, seamlessly tiling grayscale
// value-noise image of size x size. It stands in for a noise texture file.
func ProceduralNoise(size int, seed uint64) *image.RGBA {
	if size <= 0 {
		size = DefaultNoiseSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	octaves := []struct {
		period int
		weight float64
	}{{4, 0.5}, {8, 0.25}, {16, 0.15}, {32, 0.1}}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var v float64
			for _, o := range octaves {
				s := float64(o.period) / float64(size)
				v += o.weight * valueNoise(float64(x)*s, float64(y)*s, o.period, seed)
			}
			g := uint8(math.Round(math.Min(math.Max(v, 0), 1) * 255))
			img.SetRGBA(x, y, color.RGBA{g, g, g, 255})
		}
	}
	return img
}
