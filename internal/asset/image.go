package asset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image too large")
)

const svgContentType = "image/svg+xml"

// Image is a dropped image ready to become an image layer.
type Image struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	ContentType string  `json:"contentType"`
	DataURL     string  `json:"dataUrl"`
}

// Prober reads the natural size of dropped images.
type Prober struct {
	maxBytes int64
}

// NewProber creates a prober rejecting images larger than maxBytes.
func NewProber(maxBytes int64) *Prober {
	return &Prober{maxBytes: maxBytes}
}

// Probe decodes just enough of data to learn its format and size.
func (p *Prober) Probe(data []byte) (Image, error) {
	if int64(len(data)) > p.maxBytes {
		return Image{}, fmt.Errorf("%w: %d bytes, max %d", ErrImageTooLarge, len(data), p.maxBytes)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty file", ErrUnsupportedImage)
	}

	img, err := probeRaster(data)
	if errors.Is(err, image.ErrFormat) && isSVG(data) {
		img, err = probeSVG(data)
	}
	if errors.Is(err, image.ErrFormat) {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if err != nil {
		return Image{}, err
	}

	img.DataURL = DataURL(img.ContentType, data)
	slog.Debug("probed image", "type", img.ContentType, "width", img.Width, "height", img.Height, "bytes", len(data))
	return img, nil
}

func probeRaster(data []byte) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return Image{}, err
	}
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, fmt.Errorf("%w: %s has no size", ErrUnsupportedImage, format)
	}
	return Image{
		Width:       float64(cfg.Width),
		Height:      float64(cfg.Height),
		ContentType: "image/" + format,
	}, nil
}

func isSVG(data []byte) bool {
	return bytes.Contains(data, []byte("<svg"))
}

func probeSVG(data []byte) (Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return Image{}, fmt.Errorf("%w: svg: %v", ErrUnsupportedImage, err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return Image{}, fmt.Errorf("%w: svg without a view box", ErrUnsupportedImage)
	}
	return Image{
		Width:       icon.ViewBox.W,
		Height:      icon.ViewBox.H,
		ContentType: svgContentType,
	}, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
