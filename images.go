package pubsite

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eringen/pubsite/internal/logfields"
	"golang.org/x/image/draw"
)

const jpegQuality = 82

// isOptimizable reports whether name is an image format the optimizer re-encodes.
func isOptimizable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// optimizeImage decodes src and, when it is wider than maxWidth, scales it
// down preserving aspect ratio and re-encodes it in its original format.
// resized is false when the image already fits; data is then nil.
func optimizeImage(src io.Reader, name string, maxWidth int) (data []byte, resized bool, err error) {
	img, format, err := image.Decode(src)
	if err != nil {
		return nil, false, fmt.Errorf("decode image %s: %w", name, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return nil, false, nil
	}

	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, false, fmt.Errorf("encode image %s: %w", name, err)
	}
	return buf.Bytes(), true, nil
}

// copyStatic copies src into dst, downscaling oversize images on the way.
// It returns how many images were resized.
func (s *Site) copyStatic(src, dst string) (int, error) {
	resized := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if isOptimizable(path) {
			ok, err := s.copyImage(path, target)
			if err != nil {
				return err
			}
			if ok {
				resized++
			}
			return nil
		}
		return copyFile(path, target)
	})
	if err != nil {
		return resized, fmt.Errorf("pubsite: copy static: %w", err)
	}
	return resized, nil
}

func (s *Site) copyImage(path, target string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	data, resized, err := optimizeImage(f, filepath.Base(path), s.Config.ImageMaxWidth)
	if err != nil {
		// Undecodable files are still published as-is.
		s.logger.Warn("image not optimized", logfields.Source(path), logfields.Error(err))
		return false, copyFile(path, target)
	}
	if !resized {
		return false, copyFile(path, target)
	}
	return true, os.WriteFile(target, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
