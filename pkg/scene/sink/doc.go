// Package sink provides output format renderers for composed scenes.
//
// # Overview
//
// A "sink" transforms a [scene.Scene] into a final output format:
//
//   - SVG: interactive vector output with hover tooltips
//   - PNG: raster output drawn in-process
//   - JSON: scene data export for external tools
//   - PDF: print-ready output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] produces an SVG with every image embedded as a data URI, so the
// file is self-contained. Each player gets an invisible hit target with an
// always-visible name label below it and a tooltip showing the price on
// hover. The viewBox is fixed: there is no pan or zoom.
//
//	svg := sink.RenderSVG(s, sink.WithTooltips())
//
// # PNG Output
//
// [RenderPNG] rasterizes the scene with gg. The background is stretched to
// the canvas and each overlay is fit into its box keeping its aspect ratio.
// Labels are drawn, hover text is not.
//
//	png, err := sink.RenderPNG(s, sink.WithScale(2))
//
// # PDF Output
//
// [RenderPDF] renders SVG first and converts it with rsvg-convert:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [scene.Scene]: github.com/palpiteiro/palpiteiro/pkg/scene.Scene
package sink
