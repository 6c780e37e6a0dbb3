package scene

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/fogleman/gg"
)

// BenchHeight is the fraction of the canvas below the pitch reserved for
// reserve players.
const BenchHeight = 0.18

var (
	pitchMu    sync.Mutex
	pitchCache = make(map[image.Point]Background)
)

// DefaultPitch draws a striped football pitch with a bench strip along the
// bottom edge. Results are memoized per size.
func DefaultPitch(width, height int) (Background, error) {
	if width <= 0 || height <= 0 {
		return Background{}, fmt.Errorf("invalid pitch size %dx%d", width, height)
	}
	key := image.Pt(width, height)

	pitchMu.Lock()
	defer pitchMu.Unlock()
	if bg, ok := pitchCache[key]; ok {
		return bg, nil
	}

	dc := drawPitch(width, height)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return Background{}, fmt.Errorf("encode pitch: %w", err)
	}
	bg := Background{Image: dc.Image(), Data: buf.Bytes(), Format: "png", Source: "pitch"}
	pitchCache[key] = bg
	return bg, nil
}

func drawPitch(width, height int) *gg.Context {
	w, h := float64(width), float64(height)
	dc := gg.NewContext(width, height)

	// Bench strip.
	benchTop := h * (1 - BenchHeight)
	dc.SetHexColor("#2f3b2f")
	dc.DrawRectangle(0, benchTop, w, h-benchTop)
	dc.Fill()

	// Grass stripes.
	const stripes = 10
	stripeH := benchTop / stripes
	for i := range stripes {
		if i%2 == 0 {
			dc.SetHexColor("#3a8d3a")
		} else {
			dc.SetHexColor("#359035")
		}
		dc.DrawRectangle(0, float64(i)*stripeH, w, stripeH)
		dc.Fill()
	}

	// Markings.
	m := w * 0.03
	left, right := m, w-m
	top, bottom := m, benchTop-m
	midY := (top + bottom) / 2
	fieldW := right - left
	fieldH := bottom - top

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.SetLineWidth(max(1, w/400))

	dc.DrawRectangle(left, top, fieldW, fieldH)
	dc.Stroke()
	dc.DrawLine(left, midY, right, midY)
	dc.Stroke()
	dc.DrawCircle(w/2, midY, fieldH*0.1)
	dc.Stroke()
	dc.DrawCircle(w/2, midY, max(1.5, w/300))
	dc.Fill()

	boxW, boxH := fieldW*0.5, fieldH*0.14
	areaW, areaH := fieldW*0.24, fieldH*0.05
	for _, y := range []float64{top, bottom - boxH} {
		dc.DrawRectangle(w/2-boxW/2, y, boxW, boxH)
		dc.Stroke()
	}
	for _, y := range []float64{top, bottom - areaH} {
		dc.DrawRectangle(w/2-areaW/2, y, areaW, areaH)
		dc.Stroke()
	}
	return dc
}
