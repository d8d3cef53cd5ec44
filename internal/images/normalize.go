package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for provider formats.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxEdge is the longest edge, in pixels, kept when embedding an image.
const MaxEdge = 1600

// MaxPixels caps the decoded size of a source image. Compressed formats can
// declare dimensions far larger than their body.
const MaxPixels = 40_000_000

const jpegQuality = 85

// ErrTooLarge is returned for images whose declared dimensions exceed MaxPixels.
var ErrTooLarge = errors.New("image dimensions too large")

// Normalize decodes raw, downsizes it so neither edge exceeds MaxEdge and
// re-encodes it as JPEG. Small JPEGs are returned unchanged. Images larger than
// MaxPixels are rejected before decoding.
func Normalize(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("normalize image: empty body")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("normalize image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("normalize image: %dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}
	if format == "jpeg" && cfg.Width <= MaxEdge && cfg.Height <= MaxEdge {
		return raw, nil
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("normalize image: %w", err)
	}

	w, h := scaleDown(cfg.Width, cfg.Height, MaxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == cfg.Width && h == cfg.Height {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("normalize image: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Dimensions reports the pixel size of an encoded image.
func Dimensions(raw []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Fit returns the largest size with the aspect ratio of w x h that fits inside
// boxW x boxH, together with the offsets that center it in the box.
func Fit(w, h int, boxW, boxH int64) (fw, fh, offX, offY int64) {
	if w <= 0 || h <= 0 {
		return boxW, boxH, 0, 0
	}
	fw, fh = boxW, boxW*int64(h)/int64(w)
	if fh > boxH {
		fh = boxH
		fw = boxH * int64(w) / int64(h)
	}
	return fw, fh, (boxW - fw) / 2, (boxH - fh) / 2
}

func scaleDown(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
