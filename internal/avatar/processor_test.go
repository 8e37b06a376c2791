package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	return img
}

func TestProcessor_Normalize(t *testing.T) {
	p := NewProcessor()

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, makeImage(640, 480)))

	var jpegBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpegBuf, makeImage(100, 300), nil))

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "png input", input: pngBuf.Bytes()},
		{name: "jpeg input", input: jpegBuf.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Normalize(tt.input, 250, 250)
			require.NoError(t, err)

			decoded, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, 250, decoded.Bounds().Dx())
			assert.Equal(t, 250, decoded.Bounds().Dy())
		})
	}
}

func TestProcessor_Normalize_NotAnImage(t *testing.T) {
	p := NewProcessor()

	_, err := p.Normalize([]byte("definitely not image bytes"), 250, 250)
	assert.ErrorIs(t, err, ErrInvalidImage)
}
