package assets

import (
	"bytes"
	"hash/fnv"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
)

// PlaceholderSize is the edge length in pixels of a generated crest.
const PlaceholderSize = 128

var (
	placeholderMu    sync.Mutex
	placeholderCache = make(map[string][]byte)
)

// Placeholder returns a PNG crest standing in for an emblem that could not
// be downloaded. The crest is a shield tinted by a hash of key, so the same
// club always gets the same color within and across renders.
func Placeholder(key string) []byte {
	placeholderMu.Lock()
	defer placeholderMu.Unlock()
	if data, ok := placeholderCache[key]; ok {
		return data
	}
	data := drawPlaceholder(crestColor(key))
	placeholderCache[key] = data
	return data
}

func crestColor(key string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(key))
	sum := h.Sum32()
	// Keep channels in the mid range so the white outline stays visible.
	return color.RGBA{
		R: uint8(64 + sum%128),
		G: uint8(64 + (sum>>8)%128),
		B: uint8(64 + (sum>>16)%128),
		A: 255,
	}
}

func drawPlaceholder(fill color.RGBA) []byte {
	const s = float64(PlaceholderSize)
	dc := gg.NewContext(PlaceholderSize, PlaceholderSize)

	// Shield: flat top, straight sides, pointed base.
	dc.MoveTo(s*0.15, s*0.12)
	dc.LineTo(s*0.85, s*0.12)
	dc.LineTo(s*0.85, s*0.55)
	dc.QuadraticTo(s*0.85, s*0.8, s*0.5, s*0.92)
	dc.QuadraticTo(s*0.15, s*0.8, s*0.15, s*0.55)
	dc.ClosePath()
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(s * 0.05)
	dc.Stroke()

	// Horizontal band.
	dc.DrawRectangle(s*0.15, s*0.38, s*0.7, s*0.12)
	dc.SetRGBA(1, 1, 1, 0.6)
	dc.Fill()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		// Encoding an in-memory RGBA image cannot fail.
		panic(err)
	}
	return buf.Bytes()
}
