package scene

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
)

// Decode decodes a PNG, JPEG, GIF, WebP or BMP image.
// Any failure, including empty input, is an ASSET_DECODE error.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New(errors.ErrCodeAssetDecode, "empty image data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeAssetDecode, err, "decode image")
	}
	return img, format, nil
}

// LoadBackground reads and decodes a background image file.
func LoadBackground(path string) (Background, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Background{}, errors.Wrap(errors.ErrCodeConfig, err, "read background")
	}
	img, format, err := Decode(data)
	if err != nil {
		return Background{}, errors.Wrap(errors.ErrCodeConfig, err, "background %s", path)
	}
	return Background{Image: img, Data: data, Format: format, Source: path}, nil
}
