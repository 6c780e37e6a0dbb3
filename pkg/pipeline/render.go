package pipeline

import (
	"context"
	"fmt"

	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/scene"
	"github.com/palpiteiro/palpiteiro/pkg/scene/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, s *scene.Scene, laid *formation.Result, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(s, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(s)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, s, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(s, sink.WithJSONLayout(laid), sink.WithJSONGame(opts.Game))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Tooltips {
		svgOpts = append(svgOpts, sink.WithTooltips())
	}
	return svgOpts
}

// LoadBackground returns the configured background image, or a drawn pitch
// when none is set.
func LoadBackground(opts Options) (scene.Background, error) {
	if opts.Background != "" {
		return scene.LoadBackground(opts.Background)
	}
	return scene.DefaultPitch(opts.Width, opts.Height)
}
