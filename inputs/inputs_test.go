package inputs

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProceduralNoiseDeterministic(t *testing.T) {
	a := ProceduralNoise(32, 7)
	b := ProceduralNoise(32, 7)
	c := ProceduralNoise(32, 8)

	assert.Equal(t, a.Pix, b.Pix)
	assert.NotEqual(t, a.Pix, c.Pix)
	assert.Equal(t, image.Rect(0, 0, DefaultNoiseSize, DefaultNoiseSize), ProceduralNoise(0, 1).Rect)

	// grayscale and not flat
	seen := map[uint8]bool{}
	for i := 0; i < len(a.Pix); i += 4 {
		assert.Equal(t, a.Pix[i], a.Pix[i+1])
		assert.Equal(t, a.Pix[i], a.Pix[i+2])
		assert.Equal(t, uint8(255), a.Pix[i+3])
		seen[a.Pix[i]] = true
	}
	assert.Greater(t, len(seen), 8)
}

func TestValueNoiseTiles(t *testing.T) {
	for _, p := range [][2]float64{{0.25, 0.5}, {1.75, 3.1}, {3.9, 0.01}} {
		v := valueNoise(p[0], p[1], 4, 3)
		assert.InDelta(t, v, valueNoise(p[0]+4, p[1], 4, 3), 1e-12)
		assert.InDelta(t, v, valueNoise(p[0], p[1]-8, 4, 3), 1e-12)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestLoadImageFlip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})

	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, err := LoadImage(path, false)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))

	img, err = LoadImage(path, true)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 1))

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestToRGBAAndScale(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 2, 6, 6))
	gray.SetGray(2, 2, color.Gray{200})

	rgba := ToRGBA(gray)
	assert.Equal(t, image.Rect(0, 0, 4, 4), rgba.Rect)
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, rgba.RGBAAt(0, 0))

	assert.Equal(t, image.Rect(0, 0, 8, 2), Scale(rgba, 8, 2).Rect)
}
