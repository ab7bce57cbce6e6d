package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinsley/gomoebius/effect"
	"github.com/richinsley/gomoebius/inputs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	a := &app{}
	require.NoError(t, a.loadConfig())
	assert.Equal(t, effect.PresetUltra, a.cfg.Antialias.Preset)

	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[antialias]\npreset = \"medium\"\n"), 0o644))
	a = &app{configPath: path}
	require.NoError(t, a.loadConfig())
	assert.Equal(t, effect.PresetMedium, a.cfg.Antialias.Preset)

	require.NoError(t, os.WriteFile(path, []byte("[outline]\namplitude = -1\n"), 0o644))
	assert.Error(t, a.loadConfig())
}

func TestSnapshotWritesPNG(t *testing.T) {
	a := &app{}
	require.NoError(t, a.loadConfig())

	out := filepath.Join(t.TempDir(), "snap.png")
	require.NoError(t, a.runSnapshot(32, 18, 1, 0, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
}

func TestLoadNoise(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.png")
	writePNG(t, small, 16, 8)
	img, err := loadNoise(small)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())

	large := filepath.Join(dir, "large.png")
	writePNG(t, large, 4*inputs.DefaultNoiseSize, inputs.DefaultNoiseSize)
	img, err = loadNoise(large)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, inputs.DefaultNoiseSize, inputs.DefaultNoiseSize), img.Bounds())

	_, err = loadNoise(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
