package asset

import (
	"bytes"
	"image"
	"image/gif"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encoded(t *testing.T, encode func(*bytes.Buffer, image.Image) error, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestProbeRaster(t *testing.T) {
	tests := []struct {
		name        string
		encode      func(*bytes.Buffer, image.Image) error
		contentType string
	}{
		{"png", func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }, "image/png"},
		{"gif", func(b *bytes.Buffer, m image.Image) error { return gif.Encode(b, m, nil) }, "image/gif"},
		{"bmp", func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }, "image/bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encoded(t, tt.encode, 30, 20)

			img, err := NewProber(1 << 20).Probe(data)
			require.NoError(t, err)
			assert.Equal(t, 30.0, img.Width)
			assert.Equal(t, 20.0, img.Height)
			assert.Equal(t, tt.contentType, img.ContentType)
			assert.True(t, strings.HasPrefix(img.DataURL, "data:"+tt.contentType+";base64,"))
		})
	}
}

func TestProbeSVG(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120 80">
  <rect x="10" y="10" width="100" height="60" fill="#e94560"/>
</svg>`)

	img, err := NewProber(1 << 20).Probe(svg)
	require.NoError(t, err)
	assert.Equal(t, 120.0, img.Width)
	assert.Equal(t, 80.0, img.Height)
	assert.Equal(t, "image/svg+xml", img.ContentType)
}

func TestProbeRejects(t *testing.T) {
	p := NewProber(64)

	_, err := p.Probe(bytes.Repeat([]byte{0}, 65))
	require.ErrorIs(t, err, ErrImageTooLarge)

	_, err = p.Probe(nil)
	require.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = p.Probe([]byte("definitely not an image"))
	require.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQID", DataURL("image/png", []byte{1, 2, 3}))
}
