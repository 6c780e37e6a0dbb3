package sink

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"mime"

	"github.com/palpiteiro/palpiteiro/pkg/fonts"
	"github.com/palpiteiro/palpiteiro/pkg/scene"
)

const playerInteractionCSS = `
    .player { cursor: default; }
    .hit { fill: transparent; stroke: none; }
    .label { font-family: %[1]s; font-size: 12px; fill: #fff; paint-order: stroke; stroke: #000; stroke-width: 3px; text-anchor: middle; pointer-events: none; }
    .label.captain { font-weight: bold; }
    .tooltip { pointer-events: none; transition: opacity 0.15s ease; }
    .tooltip[visibility="hidden"] { opacity: 0; }
    .tooltip[visibility="visible"] { opacity: 1; }`

const playerInteractionJS = `
    document.querySelectorAll('.player').forEach(el => {
      const tip = document.querySelector('.tooltip[data-for="' + el.dataset.player + '"]');
      if (!tip) return;
      el.addEventListener('mouseenter', () => tip.setAttribute('visibility', 'visible'));
      el.addEventListener('mouseleave', () => tip.setAttribute('visibility', 'hidden'));
    });`

const labelOffset = 14.0

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	tooltips  bool
	labels    bool
	embedFont bool
}

// WithTooltips adds scripted hover tooltips on top of the native <title>.
func WithTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = true } }

// WithoutLabels hides the player names.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithEmbeddedFont embeds the label font as an @font-face data URI.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// RenderSVG renders s as a self-contained SVG document.
func RenderSVG(s *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := float64(s.Width), float64(s.Height)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d"`,
		s.Width, s.Height, s.Width, s.Height)
	if s.Fixed {
		buf.WriteString(` data-fixed="true"`)
	}
	buf.WriteString(">\n")

	if r.embedFont && r.labels {
		fmt.Fprintf(&buf, "  <defs><style>@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s); }</style></defs>\n",
			fonts.FontFamily, fonts.RegularBase64())
	}

	if len(s.Background.Data) > 0 {
		fmt.Fprintf(&buf, `  <image x="0" y="0" width="%.1f" height="%.1f" preserveAspectRatio="none" href="%s"/>`+"\n",
			w, h, dataURI(s.Background.Data, s.Background.Format))
	}

	for _, o := range s.Overlays {
		renderOverlay(&buf, s, o)
	}
	for _, t := range s.HitTargets {
		r.renderHitTarget(&buf, s, t)
	}

	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", fmt.Sprintf(playerInteractionCSS, fonts.FallbackFontFamily))
	if r.tooltips {
		for _, t := range s.HitTargets {
			renderTooltip(&buf, s, t)
		}
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", playerInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderOverlay(buf *bytes.Buffer, s *scene.Scene, o scene.Overlay) {
	if len(o.Data) == 0 {
		return
	}
	left, bottom, right, top := o.Bounds()
	fmt.Fprintf(buf, `  <image class="%s" data-player="%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" preserveAspectRatio="xMidYMid meet" href="%s"/>`+"\n",
		o.Kind, o.PlayerID,
		s.PixelX(left), s.PixelY(top),
		(right-left)*float64(s.Width), (top-bottom)*float64(s.Height),
		dataURI(o.Data, o.Format))
}

func (r svgRenderer) renderHitTarget(buf *bytes.Buffer, s *scene.Scene, t scene.HitTarget) {
	cx, cy := s.PixelX(t.X), s.PixelY(t.Y)
	fmt.Fprintf(buf, `  <g class="player" id="player-%d" data-player="%d">`+"\n", t.PlayerID, t.PlayerID)
	fmt.Fprintf(buf, `    <circle class="hit" cx="%.1f" cy="%.1f" r="%d"><title>%s</title></circle>`+"\n",
		cx, cy, scene.HitTargetRadius, escapeXML(t.Hover))
	if r.labels {
		class := "label"
		if t.Captain {
			class += " captain"
		}
		fmt.Fprintf(buf, `    <text class="%s" x="%.1f" y="%.1f">%s</text>`+"\n",
			class, cx, cy+scene.HitTargetRadius+labelOffset, escapeXML(t.Label))
	}
	buf.WriteString("  </g>\n")
}

func renderTooltip(buf *bytes.Buffer, s *scene.Scene, t scene.HitTarget) {
	const tw, th = 64.0, 22.0
	x := min(max(s.PixelX(t.X)-tw/2, 2), float64(s.Width)-tw-2)
	y := max(s.PixelY(t.Y)-scene.HitTargetRadius-th-4, 2)
	fmt.Fprintf(buf, `  <g class="tooltip" data-for="%d" visibility="hidden" transform="translate(%.1f,%.1f)">`+"\n", t.PlayerID, x, y)
	fmt.Fprintf(buf, `    <rect width="%.0f" height="%.0f" rx="4" fill="#222" fill-opacity="0.85"/>`+"\n", tw, th)
	fmt.Fprintf(buf, `    <text x="%.0f" y="15" fill="#fff" font-family="%s" font-size="12" text-anchor="middle">%s</text>`+"\n",
		tw/2, fonts.FallbackFontFamily, escapeXML(t.Hover))
	buf.WriteString("  </g>\n")
}

func dataURI(data []byte, format string) string {
	typ := mime.TypeByExtension("." + format)
	if typ == "" {
		typ = "image/" + format
	}
	return "data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
