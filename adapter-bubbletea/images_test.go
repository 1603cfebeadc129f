package adapter_bubbletea

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionut-t/mdlive/config"
)

func checkerboard(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func newTestImages(t *testing.T, cfg config.Images) (*imageRenderer, string) {
	t.Helper()
	dir := t.TempDir()
	return newImageRenderer(cfg, dir, nil), dir
}

func TestRenderHalfBlocks(t *testing.T) {
	rows := renderHalfBlocks(checkerboard(3, 3))

	require.Len(t, rows, 2)
	assert.Equal(t, 3, lipgloss.Width(rows[0]))
	assert.Equal(t, 3, lipgloss.Width(rows[1]))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#ff0000"), hexColor(color.RGBA{R: 255, A: 255}))
}

func TestImageRenderer_LoadLocal(t *testing.T) {
	images, dir := newTestImages(t, config.Default().Images)

	f, err := os.Create(filepath.Join(dir, "pic.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, checkerboard(4, 2)))
	require.NoError(t, f.Close())

	img, err := images.load(context.Background(), "pic.png")

	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestImageRenderer_Errors(t *testing.T) {
	cfg := config.Default().Images
	cfg.FetchRemote = false
	images, _ := newTestImages(t, cfg)

	_, err := images.load(context.Background(), "https://example.com/a.png")
	assert.ErrorIs(t, err, errRemoteImagesDisabled)

	_, err = images.load(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, errUnsupportedScheme)

	_, err = images.load(context.Background(), "  ")
	assert.ErrorIs(t, err, errEmptyLocation)

	_, err = images.load(context.Background(), "missing.png")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImageRenderer_RequestOnce(t *testing.T) {
	cfg := config.Default().Images
	cfg.Timeout = config.Duration(time.Second)
	images, dir := newTestImages(t, cfg)

	f, err := os.Create(filepath.Join(dir, "pic.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, checkerboard(8, 8)))
	require.NoError(t, f.Close())

	cmd := images.request("pic.png")
	require.NotNil(t, cmd)
	assert.Nil(t, images.request("pic.png"))

	msg, ok := cmd().(imageLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	images.store(msg)

	entry, ok := images.entry("pic.png")
	require.True(t, ok)
	assert.False(t, entry.loading)
	assert.NotEmpty(t, entry.rows)
	assert.LessOrEqual(t, len(entry.rows), cfg.MaxHeight)
}

func TestImageRenderer_Disabled(t *testing.T) {
	cfg := config.Default().Images
	cfg.Enabled = false
	images, _ := newTestImages(t, cfg)

	assert.Nil(t, images.request("pic.png"))
}
