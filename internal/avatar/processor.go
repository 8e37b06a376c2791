package avatar

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// ErrInvalidImage is returned when the uploaded bytes do not decode as a
// supported image format.
var ErrInvalidImage = errors.New("please upload an image")

// Processor re-encodes uploaded images to fixed-size PNGs for storage.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Normalize decodes JPEG or PNG input, scales it to width x height, and
// returns the result PNG-encoded.
func (p *Processor) Normalize(data []byte, width, height int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
