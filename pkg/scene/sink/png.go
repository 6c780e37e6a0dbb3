package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/palpiteiro/palpiteiro/pkg/fonts"
	"github.com/palpiteiro/palpiteiro/pkg/scene"
)

const labelFontSize = 12.0

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	labels bool
}

// WithScale sets the PNG scale factor (default 1.0).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithoutPNGLabels leaves player names off the image.
func WithoutPNGLabels() PNGOption {
	return func(r *pngRenderer) { r.labels = false }
}

// RenderPNG rasterizes s.
func RenderPNG(s *scene.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1.0, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid scale %g", r.scale)
	}

	img, err := r.draw(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r pngRenderer) draw(s *scene.Scene) (image.Image, error) {
	w := int(math.Round(float64(s.Width) * r.scale))
	h := int(math.Round(float64(s.Height) * r.scale))
	dc := gg.NewContext(w, h)

	if s.Background.Image != nil {
		dc.DrawImage(imaging.Resize(s.Background.Image, w, h, imaging.Lanczos), 0, 0)
	} else {
		dc.SetColor(color.White)
		dc.Clear()
	}

	for _, o := range s.Overlays {
		if o.Image == nil {
			continue
		}
		left, bottom, right, top := o.Bounds()
		bw := int(math.Round((right - left) * float64(w)))
		bh := int(math.Round((top - bottom) * float64(h)))
		if bw <= 0 || bh <= 0 {
			continue
		}
		fit := imaging.Fit(o.Image, bw, bh, imaging.Lanczos)
		// Center the fitted image inside its box.
		x := left*float64(w) + float64(bw-fit.Bounds().Dx())/2
		y := (1-top)*float64(h) + float64(bh-fit.Bounds().Dy())/2
		dc.DrawImage(fit, int(math.Round(x)), int(math.Round(y)))
	}

	if r.labels {
		if err := r.drawLabels(dc, s, w, h); err != nil {
			return nil, err
		}
	}
	return dc.Image(), nil
}

func (r pngRenderer) drawLabels(dc *gg.Context, s *scene.Scene, w, h int) error {
	regular, err := fonts.Face(labelFontSize * r.scale)
	if err != nil {
		return fmt.Errorf("load label font: %w", err)
	}
	bold, err := fonts.BoldFace(labelFontSize * r.scale)
	if err != nil {
		return fmt.Errorf("load label font: %w", err)
	}

	offset := (scene.HitTargetRadius + labelOffset) * r.scale
	for _, t := range s.HitTargets {
		if t.Captain {
			dc.SetFontFace(bold)
		} else {
			dc.SetFontFace(regular)
		}
		x := t.X * float64(w)
		y := (1-t.Y)*float64(h) + offset

		// Outline first so the label reads on both grass and photos.
		dc.SetColor(color.Black)
		for _, d := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			dc.DrawStringAnchored(t.Label, x+d[0]*r.scale, y+d[1]*r.scale, 0.5, 0.5)
		}
		dc.SetColor(color.White)
		dc.DrawStringAnchored(t.Label, x, y, 0.5, 0.5)
	}
	return nil
}
