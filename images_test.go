package pubsite

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0x80, 0xff})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOptimizeImageDownscales(t *testing.T) {
	data, resized, err := optimizeImage(bytes.NewReader(encodePNG(t, testImage(400, 200))), "wide.png", 100)
	require.NoError(t, err)
	require.True(t, resized)

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestOptimizeImageKeepsJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(300, 300), nil))

	data, resized, err := optimizeImage(&buf, "photo.jpg", 150)
	require.NoError(t, err)
	require.True(t, resized)

	_, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestOptimizeImageSmallUntouched(t *testing.T) {
	data, resized, err := optimizeImage(bytes.NewReader(encodePNG(t, testImage(80, 40))), "small.png", 100)
	require.NoError(t, err)
	assert.False(t, resized)
	assert.Nil(t, data)
}

func TestOptimizeImageInvalid(t *testing.T) {
	_, _, err := optimizeImage(strings.NewReader("not an image"), "bad.png", 100)
	require.Error(t, err)
}

func TestIsOptimizable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"a.png", true},
		{"a.gif", false},
		{"a.svg", false},
		{"styles.css", false},
	}
	for _, tt := range tests {
		if got := isOptimizable(tt.name); got != tt.want {
			t.Errorf("isOptimizable(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCopyStatic(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	wide := encodePNG(t, testImage(300, 100))
	small := encodePNG(t, testImage(50, 50))
	writeContent(t, src, map[string]string{
		"img/wide.png":     string(wide),
		"img/small.png":    string(small),
		"img/broken.jpg":   "garbage",
		"robots-extra.txt": "hello",
	})

	s := &Site{Config: SiteConfig{ImageMaxWidth: 120}, logger: discardLogger()}
	n, err := s.copyStatic(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := os.Open(filepath.Join(dst, "img", "wide.png"))
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)

	got, err := os.ReadFile(filepath.Join(dst, "img", "small.png"))
	require.NoError(t, err)
	assert.Equal(t, small, got)

	got, err = os.ReadFile(filepath.Join(dst, "img", "broken.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(got))

	got, err = os.ReadFile(filepath.Join(dst, "robots-extra.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}
