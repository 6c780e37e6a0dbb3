// Package fonts provides the label fonts used by the scene sinks.
//
// The Go font family ships as Go packages, so SVG output can carry it as an
// @font-face data URI and PNG output can rasterize labels without looking up
// system fonts.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name of the embedded font.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers that ignore @font-face.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

var regularBase64 = sync.OnceValue(func() string {
	return base64.StdEncoding.EncodeToString(goregular.TTF)
})

// RegularBase64 returns the regular TTF as a base64 string.
func RegularBase64() string { return regularBase64() }

var (
	regular = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(goregular.TTF) })
	bold    = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gobold.TTF) })
)

// Face returns the regular face at size points (72 DPI).
func Face(size float64) (font.Face, error) { return newFace(regular, size) }

// BoldFace returns the bold face at size points (72 DPI).
func BoldFace(size float64) (font.Face, error) { return newFace(bold, size) }

func newFace(load func() (*opentype.Font, error), size float64) (font.Face, error) {
	f, err := load()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}
